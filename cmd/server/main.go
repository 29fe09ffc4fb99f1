/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the zakat calculation service. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load zakat rule configuration (JSON file or defaults)
  3. Initialize SQLite store
  4. Create API handler with dependencies
  5. Start the reminder scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: zakat.db)
           Use ":memory:" for in-memory database
  -config  Optional JSON rule configuration path; omitted sections and
           a missing flag fall back to the built-in defaults

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the reminder scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/zakat.db"

  # Run with custom rule tables
  ./server -config="./rules.json"

  # Run on different port
  ./server -port=3000

ENVIRONMENT:
  No environment variables currently. All config via flags.
  Future: DATABASE_URL, PORT, LOG_LEVEL

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - factory/config.go: JSON rule configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amanah/zakat-engine/api"
	"github.com/amanah/zakat-engine/factory"
	"github.com/amanah/zakat-engine/notify"
	"github.com/amanah/zakat-engine/store/sqlite"
	"github.com/amanah/zakat-engine/zakat"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "zakat.db", "SQLite database path")
	configPath := flag.String("config", "", "JSON rule configuration path (optional)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// Load rule configuration
	cfg := zakat.DefaultConfig()
	if *configPath != "" {
		doc, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to read config file: %v", err)
		}
		cfg, err = factory.NewConfigFactory().ParseConfig(string(doc))
		if err != nil {
			log.Fatalf("Failed to parse config file: %v", err)
		}
		logger.Info("loaded rule configuration", "path", *configPath)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Wire dependencies
	engine := zakat.NewEngine(cfg)
	notifier := notify.NewLogNotifier(logger)
	handler := api.NewHandler(store, engine, notifier)

	// Start the reminder scheduler
	scheduler := api.NewReminderScheduler(store, notifier, logger)
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

/*
scheduler.go - Background reminder delivery

PURPOSE:
  Periodically scans for annual recalculation reminders whose due date has
  passed and delivers them through the configured notifier.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each tick loads unsent reminders past their due date
  - Marks a reminder sent only after delivery succeeds, so a failed
    delivery is retried on the next tick

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewReminderScheduler(store, notifier, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: CreateReminder endpoint
  - store/sqlite/sqlite.go: ListDueReminders, MarkReminderSent
  - notify/notify.go: Delivery abstraction
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/amanah/zakat-engine/notify"
	"github.com/amanah/zakat-engine/store/sqlite"
)

// ReminderScheduler delivers due reminders in the background.
type ReminderScheduler struct {
	Store         *sqlite.Store
	Notifier      notify.Notifier
	CheckInterval time.Duration
	Enabled       bool

	logger *slog.Logger
	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewReminderScheduler creates a new scheduler. Nil notifier and logger
// fall back to the log notifier and slog.Default.
func NewReminderScheduler(store *sqlite.Store, notifier notify.Notifier, logger *slog.Logger) *ReminderScheduler {
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderScheduler{
		Store:         store,
		Notifier:      notifier,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		logger:        logger,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.logger.Info("reminder scheduler disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	rs.logger.Info("reminder scheduler started", "check_interval", rs.CheckInterval.String())
}

// Stop stops the scheduler.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.logger.Info("reminder scheduler stopped")
	}
}

func (rs *ReminderScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.deliverDue()

	for {
		select {
		case <-rs.ticker.C:
			rs.deliverDue()
		case <-rs.stop:
			return
		}
	}
}

func (rs *ReminderScheduler) deliverDue() {
	ctx := context.Background()
	now := time.Now().UTC()

	due, err := rs.Store.ListDueReminders(ctx, now)
	if err != nil {
		rs.logger.Error("failed to list due reminders", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	delivered := 0
	for _, r := range due {
		err := rs.Notifier.Send(ctx, notify.Notification{
			Kind:      notify.KindReminder,
			UserID:    r.UserID,
			Subject:   "Zakat recalculation due",
			Body:      r.Message,
			CreatedAt: now,
		})
		if err != nil {
			// Left unsent so the next tick retries it.
			rs.logger.Error("failed to deliver reminder", "reminder_id", r.ID, "error", err)
			continue
		}

		if err := rs.Store.MarkReminderSent(ctx, r.ID, now); err != nil {
			rs.logger.Error("failed to mark reminder sent", "reminder_id", r.ID, "error", err)
			continue
		}
		delivered++
	}

	rs.logger.Info("reminder scan complete", "due", len(due), "delivered", delivered)
}

// RunNow triggers an immediate scan (for testing/admin).
func (rs *ReminderScheduler) RunNow() {
	rs.deliverDue()
}

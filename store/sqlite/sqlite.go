/*
Package sqlite provides a SQLite-backed implementation of the storage layer.

PURPOSE:
  Persists zakat calculations, payments, annual reminders, and generated
  reports using SQLite. In production, the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  zakat_calculations: Every persisted calculation with its inputs and result
  zakat_payments:     Payments recorded against calculations
  zakat_reminders:    Annual recalculation reminders with a due date
  zakat_reports:      Generated period reports

MONEY COLUMNS:
  Currency amounts are stored as TEXT in decimal string form, never REAL.
  They round-trip through shopspring/decimal without precision loss.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/zakat.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - api/handlers.go: The HTTP layer that writes these records
  - api/scheduler.go: The reminder scan consuming ListDueReminders
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store implements the persistence layer using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Persisted calculations
	CREATE TABLE IF NOT EXISTS zakat_calculations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		category TEXT NOT NULL,
		input_json TEXT NOT NULL,
		result_json TEXT NOT NULL,
		total_zakat TEXT NOT NULL,
		is_above_nisab BOOLEAN NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_calculations_user
		ON zakat_calculations(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_calculations_category
		ON zakat_calculations(category);

	-- Payments recorded against calculations
	CREATE TABLE IF NOT EXISTS zakat_payments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		calculation_id TEXT,
		amount TEXT NOT NULL,
		method TEXT,
		note TEXT,
		paid_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_user
		ON zakat_payments(user_id, paid_at DESC);
	CREATE INDEX IF NOT EXISTS idx_payments_calculation
		ON zakat_payments(calculation_id) WHERE calculation_id IS NOT NULL;

	-- Annual recalculation reminders
	CREATE TABLE IF NOT EXISTS zakat_reminders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		message TEXT NOT NULL,
		due_at TEXT NOT NULL,
		sent BOOLEAN NOT NULL DEFAULT FALSE,
		sent_at TEXT,
		created_at TEXT NOT NULL
	);

	-- Hot path: the scheduler scans unsent reminders past their due date
	CREATE INDEX IF NOT EXISTS idx_reminders_due
		ON zakat_reminders(due_at) WHERE sent = FALSE;
	CREATE INDEX IF NOT EXISTS idx_reminders_user
		ON zakat_reminders(user_id);

	-- Generated period reports
	CREATE TABLE IF NOT EXISTS zakat_reports (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		report_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_user
		ON zakat_reports(user_id, created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CALCULATIONS
// =============================================================================

// CalculationRecord is one persisted calculation. InputJSON holds the
// request assets, ResultJSON the full engine output.
type CalculationRecord struct {
	ID           string
	UserID       string
	Category     string
	InputJSON    string
	ResultJSON   string
	TotalZakat   decimal.Decimal
	IsAboveNisab bool
	CreatedAt    time.Time
}

// SaveCalculation persists a calculation record.
func (s *Store) SaveCalculation(ctx context.Context, c CalculationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO zakat_calculations
		(id, user_id, category, input_json, result_json, total_zakat, is_above_nisab, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.Category, c.InputJSON, c.ResultJSON,
		c.TotalZakat.String(), c.IsAboveNisab,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save calculation: %w", err)
	}
	return nil
}

// GetCalculation retrieves a calculation by ID. Returns nil when not found.
func (s *Store) GetCalculation(ctx context.Context, id string) (*CalculationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c CalculationRecord
	var totalZakat, createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, category, input_json, result_json, total_zakat, is_above_nisab, created_at
		 FROM zakat_calculations WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.UserID, &c.Category, &c.InputJSON, &c.ResultJSON,
		&totalZakat, &c.IsAboveNisab, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.TotalZakat = mustDecimal(totalZakat)
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

// ListCalculations returns calculations, newest first. An empty userID
// lists across users; limit <= 0 means no limit.
func (s *Store) ListCalculations(ctx context.Context, userID string, limit int) ([]CalculationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, category, input_json, result_json, total_zakat, is_above_nisab, created_at
		FROM zakat_calculations
	`
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []CalculationRecord
	for rows.Next() {
		var c CalculationRecord
		var totalZakat, createdAt string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Category, &c.InputJSON, &c.ResultJSON,
			&totalZakat, &c.IsAboveNisab, &createdAt); err != nil {
			return nil, err
		}
		c.TotalZakat = mustDecimal(totalZakat)
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, c)
	}
	return records, rows.Err()
}

// =============================================================================
// PAYMENTS
// =============================================================================

// PaymentRecord is one recorded zakat payment. CalculationID is optional;
// a payment can stand alone.
type PaymentRecord struct {
	ID            string
	UserID        string
	CalculationID string
	Amount        decimal.Decimal
	Method        string
	Note          string
	PaidAt        time.Time
	CreatedAt     time.Time
}

// SavePayment persists a payment record.
func (s *Store) SavePayment(ctx context.Context, p PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO zakat_payments
		(id, user_id, calculation_id, amount, method, note, paid_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	paidAt := p.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.UserID, nullString(p.CalculationID),
		p.Amount.String(), p.Method, p.Note,
		paidAt.Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

// GetPayment retrieves a payment by ID. Returns nil when not found.
func (s *Store) GetPayment(ctx context.Context, id string) (*PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p PaymentRecord
	var calculationID sql.NullString
	var amount, paidAt, createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, calculation_id, amount, method, note, paid_at, created_at
		 FROM zakat_payments WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.UserID, &calculationID, &amount, &p.Method, &p.Note, &paidAt, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.CalculationID = calculationID.String
	p.Amount = mustDecimal(amount)
	p.PaidAt, _ = time.Parse(time.RFC3339, paidAt)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}

// ListPayments returns payments, newest first. An empty userID lists
// across users.
func (s *Store) ListPayments(ctx context.Context, userID string) ([]PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, calculation_id, amount, method, note, paid_at, created_at
		FROM zakat_payments
	`
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY paid_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PaymentRecord
	for rows.Next() {
		var p PaymentRecord
		var calculationID sql.NullString
		var amount, paidAt, createdAt string
		if err := rows.Scan(&p.ID, &p.UserID, &calculationID, &amount,
			&p.Method, &p.Note, &paidAt, &createdAt); err != nil {
			return nil, err
		}
		p.CalculationID = calculationID.String
		p.Amount = mustDecimal(amount)
		p.PaidAt, _ = time.Parse(time.RFC3339, paidAt)
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, p)
	}
	return records, rows.Err()
}

// =============================================================================
// REMINDERS
// =============================================================================

// ReminderRecord is one annual recalculation reminder.
type ReminderRecord struct {
	ID        string
	UserID    string
	Message   string
	DueAt     time.Time
	Sent      bool
	SentAt    *time.Time
	CreatedAt time.Time
}

// SaveReminder persists a reminder record.
func (s *Store) SaveReminder(ctx context.Context, r ReminderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO zakat_reminders (id, user_id, message, due_at, sent, sent_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var sentAt *string
	if r.SentAt != nil {
		t := r.SentAt.Format(time.RFC3339)
		sentAt = &t
	}

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.UserID, r.Message,
		r.DueAt.Format(time.RFC3339),
		r.Sent, sentAt,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save reminder: %w", err)
	}
	return nil
}

// GetReminder retrieves a reminder by ID. Returns nil when not found.
func (s *Store) GetReminder(ctx context.Context, id string) (*ReminderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.scanOneReminder(s.db.QueryRowContext(ctx,
		`SELECT id, user_id, message, due_at, sent, sent_at, created_at
		 FROM zakat_reminders WHERE id = ?`,
		id,
	))
}

// ListReminders returns reminders ordered by due date. An empty userID
// lists across users.
func (s *Store) ListReminders(ctx context.Context, userID string) ([]ReminderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, message, due_at, sent, sent_at, created_at
		FROM zakat_reminders
	`
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY due_at ASC"

	return s.queryReminders(ctx, query, args...)
}

// ListDueReminders returns unsent reminders whose due date has passed.
// The scheduler calls this on every tick.
func (s *Store) ListDueReminders(ctx context.Context, now time.Time) ([]ReminderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, message, due_at, sent, sent_at, created_at
		FROM zakat_reminders
		WHERE sent = FALSE AND due_at <= ?
		ORDER BY due_at ASC
	`

	return s.queryReminders(ctx, query, now.UTC().Format(time.RFC3339))
}

// MarkReminderSent flags a reminder as delivered.
func (s *Store) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE zakat_reminders SET sent = TRUE, sent_at = ? WHERE id = ?",
		sentAt.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("reminder %s not found", id)
	}
	return nil
}

// DeleteReminder removes a reminder.
func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM zakat_reminders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("reminder %s not found", id)
	}
	return nil
}

func (s *Store) queryReminders(ctx context.Context, query string, args ...any) ([]ReminderRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ReminderRecord
	for rows.Next() {
		var r ReminderRecord
		var dueAt, createdAt string
		var sentAt sql.NullString
		if err := rows.Scan(&r.ID, &r.UserID, &r.Message, &dueAt, &r.Sent, &sentAt, &createdAt); err != nil {
			return nil, err
		}
		r.DueAt, _ = time.Parse(time.RFC3339, dueAt)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if sentAt.Valid {
			t, _ := time.Parse(time.RFC3339, sentAt.String)
			r.SentAt = &t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) scanOneReminder(row *sql.Row) (*ReminderRecord, error) {
	var r ReminderRecord
	var dueAt, createdAt string
	var sentAt sql.NullString

	err := row.Scan(&r.ID, &r.UserID, &r.Message, &dueAt, &r.Sent, &sentAt, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.DueAt, _ = time.Parse(time.RFC3339, dueAt)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if sentAt.Valid {
		t, _ := time.Parse(time.RFC3339, sentAt.String)
		r.SentAt = &t
	}
	return &r, nil
}

// =============================================================================
// REPORTS
// =============================================================================

// ReportRecord is one generated period report. ReportJSON carries the
// assembled report document.
type ReportRecord struct {
	ID          string
	UserID      string
	PeriodStart time.Time
	PeriodEnd   time.Time
	ReportJSON  string
	CreatedAt   time.Time
}

// SaveReport persists a report record.
func (s *Store) SaveReport(ctx context.Context, r ReportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO zakat_reports (id, user_id, period_start, period_end, report_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.UserID,
		r.PeriodStart.Format(time.RFC3339),
		r.PeriodEnd.Format(time.RFC3339),
		r.ReportJSON,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetReport retrieves a report by ID. Returns nil when not found.
func (s *Store) GetReport(ctx context.Context, id string) (*ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r ReportRecord
	var periodStart, periodEnd, createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, period_start, period_end, report_json, created_at
		 FROM zakat_reports WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.UserID, &periodStart, &periodEnd, &r.ReportJSON, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.PeriodStart, _ = time.Parse(time.RFC3339, periodStart)
	r.PeriodEnd, _ = time.Parse(time.RFC3339, periodEnd)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &r, nil
}

// ListReports returns reports, newest first. An empty userID lists
// across users.
func (s *Store) ListReports(ctx context.Context, userID string) ([]ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, period_start, period_end, report_json, created_at
		FROM zakat_reports
	`
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ReportRecord
	for rows.Next() {
		var r ReportRecord
		var periodStart, periodEnd, createdAt string
		if err := rows.Scan(&r.ID, &r.UserID, &periodStart, &periodEnd, &r.ReportJSON, &createdAt); err != nil {
			return nil, err
		}
		r.PeriodStart, _ = time.Parse(time.RFC3339, periodStart)
		r.PeriodEnd, _ = time.Parse(time.RFC3339, periodEnd)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"zakat_calculations", "zakat_payments", "zakat_reminders", "zakat_reports"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// mustDecimal parses a stored decimal string. Stored values are written by
// decimal.String, so a parse failure means the row was tampered with;
// zero is the safe fallback for reads.
func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

/*
Package notify delivers zakat notifications to payers.

PURPOSE:
  A minimal delivery abstraction used in two places: the API emits a
  notification after persisting an above-nisab aggregate calculation, and
  the reminder scheduler emits one for every due annual reminder.

DELIVERY:
  The only built-in implementation writes structured log records. Real
  channels (email, SMS, push) implement the same one-method interface and
  plug in at process wiring time.
*/
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Kind classifies a notification for routing and display.
type Kind string

const (
	KindZakatDue Kind = "zakat_due"
	KindReminder Kind = "reminder"
)

// Notification is one message to a payer.
type Notification struct {
	Kind      Kind      `json:"kind"`
	UserID    string    `json:"user_id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier delivers notifications. Implementations must be safe for
// concurrent use; both the API handlers and the scheduler share one.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications as structured log records. It is the
// default channel and never fails.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier. A nil logger selects
// slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Send logs the notification.
func (l *LogNotifier) Send(ctx context.Context, n Notification) error {
	l.logger.InfoContext(ctx, "notification",
		"kind", string(n.Kind),
		"user_id", n.UserID,
		"subject", n.Subject,
		"body", n.Body,
	)
	return nil
}

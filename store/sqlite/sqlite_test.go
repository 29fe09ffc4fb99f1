package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// CALCULATIONS
// =============================================================================

func TestCalculations_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := CalculationRecord{
		ID:           "calc-1",
		UserID:       "user-1",
		Category:     "total",
		InputJSON:    `[{"type":"CASH","name":"Savings","amount":"10000"}]`,
		ResultJSON:   `{"total_zakat":"250"}`,
		TotalZakat:   decimal.NewFromInt(250),
		IsAboveNisab: true,
	}
	require.NoError(t, store.SaveCalculation(ctx, record))

	got, err := store.GetCalculation(ctx, "calc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)
	assert.True(t, got.TotalZakat.Equal(decimal.NewFromInt(250)), "decimal round-trips through TEXT")
	assert.True(t, got.IsAboveNisab)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCalculations_GetMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetCalculation(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCalculations_ListFiltersByUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, user := range []string{"alice", "bob", "alice"} {
		require.NoError(t, store.SaveCalculation(ctx, CalculationRecord{
			ID:         "calc-" + string(rune('a'+i)),
			UserID:     user,
			Category:   "total",
			InputJSON:  "[]",
			ResultJSON: "{}",
			TotalZakat: decimal.NewFromInt(int64(i)),
		}))
	}

	alice, err := store.ListCalculations(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Len(t, alice, 2)

	all, err := store.ListCalculations(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := store.ListCalculations(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestPayments_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	paidAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SavePayment(ctx, PaymentRecord{
		ID:            "pay-1",
		UserID:        "user-1",
		CalculationID: "calc-1",
		Amount:        decimal.NewFromFloat(250.03),
		Method:        "bank_transfer",
		Note:          "annual zakat",
		PaidAt:        paidAt,
	}))

	got, err := store.GetPayment(ctx, "pay-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Amount.Equal(decimal.NewFromFloat(250.03)))
	assert.Equal(t, "calc-1", got.CalculationID)
	assert.True(t, got.PaidAt.Equal(paidAt))
}

func TestPayments_EmptyCalculationIDStoredAsNull(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SavePayment(ctx, PaymentRecord{
		ID:     "pay-2",
		UserID: "user-1",
		Amount: decimal.NewFromInt(10),
	}))

	got, err := store.GetPayment(ctx, "pay-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.CalculationID)
}

// =============================================================================
// REMINDERS
// =============================================================================

func TestReminders_DueScanAndMarkSent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.SaveReminder(ctx, ReminderRecord{
		ID: "rem-due", UserID: "user-1", Message: "recalculate",
		DueAt: now.Add(-time.Hour),
	}))
	require.NoError(t, store.SaveReminder(ctx, ReminderRecord{
		ID: "rem-future", UserID: "user-1", Message: "next year",
		DueAt: now.Add(24 * time.Hour),
	}))

	due, err := store.ListDueReminders(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "rem-due", due[0].ID)

	require.NoError(t, store.MarkReminderSent(ctx, "rem-due", now))

	due, err = store.ListDueReminders(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due)

	got, err := store.GetReminder(ctx, "rem-due")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Sent)
	require.NotNil(t, got.SentAt)
}

func TestReminders_MarkSentUnknownID(t *testing.T) {
	store := newTestStore(t)

	err := store.MarkReminderSent(context.Background(), "nope", time.Now())
	assert.Error(t, err)
}

// =============================================================================
// REPORTS AND RESET
// =============================================================================

func TestReports_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveReport(ctx, ReportRecord{
		ID: "rep-1", UserID: "user-1",
		PeriodStart: start, PeriodEnd: end,
		ReportJSON: `{"total_assessed":"250"}`,
	}))

	got, err := store.GetReport(ctx, "rep-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.PeriodStart.Equal(start))
	assert.True(t, got.PeriodEnd.Equal(end))

	list, err := store.ListReports(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestReset_ClearsEveryTable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCalculation(ctx, CalculationRecord{
		ID: "c", UserID: "u", Category: "total", InputJSON: "[]", ResultJSON: "{}",
	}))
	require.NoError(t, store.SavePayment(ctx, PaymentRecord{
		ID: "p", UserID: "u", Amount: decimal.NewFromInt(1),
	}))
	require.NoError(t, store.SaveReminder(ctx, ReminderRecord{
		ID: "r", UserID: "u", Message: "m", DueAt: time.Now(),
	}))
	require.NoError(t, store.SaveReport(ctx, ReportRecord{
		ID: "rep", UserID: "u", PeriodStart: time.Now(), PeriodEnd: time.Now().Add(time.Hour), ReportJSON: "{}",
	}))

	require.NoError(t, store.Reset(ctx))

	calcs, err := store.ListCalculations(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, calcs)

	payments, err := store.ListPayments(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, payments)

	reminders, err := store.ListReminders(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, reminders)

	reports, err := store.ListReports(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, reports)
}

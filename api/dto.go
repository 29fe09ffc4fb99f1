/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *DTO: Response types returned to clients

VALIDATION:
  Request types carry validator/v10 struct tags for the structural rules;
  business rules (non-negative amounts, known irrigation methods) run in
  the zakat package so the same checks protect every entry point.

MONEY FIELDS:
  Request amounts are decimal.Decimal, which unmarshals from both JSON
  numbers and strings without float rounding.

SEE ALSO:
  - handlers.go: Uses these types
  - zakat/validation.go: Business validation of assets
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amanah/zakat-engine/store/sqlite"
	"github.com/amanah/zakat-engine/zakat"
)

// =============================================================================
// CALCULATION REQUESTS
// =============================================================================

// AmountRequest covers the cash and business inventory endpoints.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// MetalRequest covers the gold and silver endpoints.
type MetalRequest struct {
	QuantityGrams decimal.Decimal `json:"quantity_grams"`
	PricePerGram  decimal.Decimal `json:"price_per_gram"`
}

// CountRequest covers the livestock endpoints.
type CountRequest struct {
	Count int `json:"count"`
}

// CropsRequest covers the crops endpoint.
type CropsRequest struct {
	Tons             decimal.Decimal        `json:"tons"`
	IrrigationMethod zakat.IrrigationMethod `json:"irrigation_method" validate:"required"`
}

// TotalRequest covers the aggregate endpoint. When Persist is set the
// result is stored and, if zakat is due, a notification goes out.
type TotalRequest struct {
	UserID  string        `json:"user_id"`
	Assets  []zakat.Asset `json:"assets" validate:"required,min=1"`
	Persist bool          `json:"persist"`
}

// ValidateRequest covers the validation endpoint.
type ValidateRequest struct {
	Assets []zakat.Asset `json:"assets" validate:"required,min=1"`
}

// =============================================================================
// RECORD REQUESTS
// =============================================================================

// CreatePaymentRequest records a zakat payment.
type CreatePaymentRequest struct {
	UserID        string          `json:"user_id" validate:"required"`
	CalculationID string          `json:"calculation_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Note          string          `json:"note"`
	PaidAt        string          `json:"paid_at"` // RFC 3339, defaults to now
}

// CreateReminderRequest schedules an annual recalculation reminder.
type CreateReminderRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Message string `json:"message"`
	DueAt   string `json:"due_at" validate:"required"` // RFC 3339
}

// CreateReportRequest generates a period report from stored calculations
// and payments.
type CreateReportRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	PeriodStart string `json:"period_start" validate:"required"` // RFC 3339
	PeriodEnd   string `json:"period_end" validate:"required"`   // RFC 3339
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ZakatTypeDTO is one zakat type code with its display description.
type ZakatTypeDTO struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// CalculationDTO is a stored calculation in API responses. Result is the
// raw engine output as persisted.
type CalculationDTO struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Category     string          `json:"category"`
	Input        json.RawMessage `json:"input"`
	Result       json.RawMessage `json:"result"`
	TotalZakat   decimal.Decimal `json:"total_zakat"`
	IsAboveNisab bool            `json:"is_above_nisab"`
	CreatedAt    string          `json:"created_at"`
}

// PaymentDTO is a stored payment in API responses.
type PaymentDTO struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	CalculationID string          `json:"calculation_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method,omitempty"`
	Note          string          `json:"note,omitempty"`
	PaidAt        string          `json:"paid_at"`
	CreatedAt     string          `json:"created_at"`
}

// ReminderDTO is a stored reminder in API responses.
type ReminderDTO struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Message   string  `json:"message"`
	DueAt     string  `json:"due_at"`
	Sent      bool    `json:"sent"`
	SentAt    *string `json:"sent_at,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// ReportDTO is a stored report in API responses.
type ReportDTO struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	Report      json.RawMessage `json:"report"`
	CreatedAt   string          `json:"created_at"`
}

// ReportDocument is the generated report body stored in ReportRecord.
type ReportDocument struct {
	UserID           string          `json:"user_id"`
	PeriodStart      string          `json:"period_start"`
	PeriodEnd        string          `json:"period_end"`
	CalculationCount int             `json:"calculation_count"`
	TotalAssessed    decimal.Decimal `json:"total_assessed"`
	PaymentCount     int             `json:"payment_count"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	Outstanding      decimal.Decimal `json:"outstanding"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details string   `json:"details,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toCalculationDTO(c sqlite.CalculationRecord) CalculationDTO {
	return CalculationDTO{
		ID:           c.ID,
		UserID:       c.UserID,
		Category:     c.Category,
		Input:        json.RawMessage(c.InputJSON),
		Result:       json.RawMessage(c.ResultJSON),
		TotalZakat:   c.TotalZakat,
		IsAboveNisab: c.IsAboveNisab,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}

func toPaymentDTO(p sqlite.PaymentRecord) PaymentDTO {
	return PaymentDTO{
		ID:            p.ID,
		UserID:        p.UserID,
		CalculationID: p.CalculationID,
		Amount:        p.Amount,
		Method:        p.Method,
		Note:          p.Note,
		PaidAt:        p.PaidAt.Format(time.RFC3339),
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}

func toReminderDTO(r sqlite.ReminderRecord) ReminderDTO {
	dto := ReminderDTO{
		ID:        r.ID,
		UserID:    r.UserID,
		Message:   r.Message,
		DueAt:     r.DueAt.Format(time.RFC3339),
		Sent:      r.Sent,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if r.SentAt != nil {
		s := r.SentAt.Format(time.RFC3339)
		dto.SentAt = &s
	}
	return dto
}

func toReportDTO(r sqlite.ReportRecord) ReportDTO {
	return ReportDTO{
		ID:          r.ID,
		UserID:      r.UserID,
		PeriodStart: r.PeriodStart.Format(time.RFC3339),
		PeriodEnd:   r.PeriodEnd.Format(time.RFC3339),
		Report:      json.RawMessage(r.ReportJSON),
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeValidationError(w http.ResponseWriter, errs []string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:  "Validation failed",
		Errors: errs,
	})
}

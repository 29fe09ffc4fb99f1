/*
handlers.go - HTTP API handlers for the zakat calculation service

PURPOSE:
  Exposes the zakat engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Calculations:
    POST   /api/zakat/cash               Cash zakat
    POST   /api/zakat/gold               Gold zakat
    POST   /api/zakat/silver             Silver zakat
    POST   /api/zakat/camels             Camel zakat
    POST   /api/zakat/cattle             Cattle zakat
    POST   /api/zakat/sheep-goats        Sheep/goats zakat
    POST   /api/zakat/crops              Crops zakat
    POST   /api/zakat/business-inventory Business inventory zakat
    POST   /api/zakat/total              Aggregate across assets
    POST   /api/zakat/validate           Validate assets without calculating

  Reference:
    GET    /api/zakat/types              List zakat type codes
    GET    /api/zakat/types/{code}       Describe one code

  Records:
    GET    /api/calculations             Stored calculations
    GET    /api/calculations/{id}
    POST   /api/payments                 Record a payment
    GET    /api/payments
    GET    /api/payments/{id}
    POST   /api/reminders                Schedule a reminder
    GET    /api/reminders
    GET    /api/reminders/{id}
    POST   /api/reports                  Generate a period report
    GET    /api/reports
    GET    /api/reports/{id}

  Admin:
    POST   /api/reset                    Database reset (dev only)

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (engine, store)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Background reminder delivery
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amanah/zakat-engine/notify"
	"github.com/amanah/zakat-engine/store/sqlite"
	"github.com/amanah/zakat-engine/zakat"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Engine   *zakat.Engine
	Notifier notify.Notifier

	validate *validator.Validate
}

// NewHandler creates a new handler. A nil notifier falls back to the
// log-backed one.
func NewHandler(store *sqlite.Store, engine *zakat.Engine, notifier notify.Notifier) *Handler {
	if notifier == nil {
		notifier = notify.NewLogNotifier(nil)
	}
	return &Handler{
		Store:    store,
		Engine:   engine,
		Notifier: notifier,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// =============================================================================
// SINGLE-CATEGORY CALCULATIONS
// =============================================================================

// CalculateCash computes cash zakat.
func (h *Handler) CalculateCash(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Amount.IsNegative() {
		writeValidationError(w, []string{"amount must be non-negative"})
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.CalculateCashZakat(req.Amount))
}

// CalculateBusinessInventory computes business inventory zakat.
func (h *Handler) CalculateBusinessInventory(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Amount.IsNegative() {
		writeValidationError(w, []string{"amount must be non-negative"})
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.CalculateBusinessInventoryZakat(req.Amount))
}

// CalculateGold computes gold zakat.
func (h *Handler) CalculateGold(w http.ResponseWriter, r *http.Request) {
	h.calculateMetal(w, r, h.Engine.CalculateGoldZakat)
}

// CalculateSilver computes silver zakat.
func (h *Handler) CalculateSilver(w http.ResponseWriter, r *http.Request) {
	h.calculateMetal(w, r, h.Engine.CalculateSilverZakat)
}

func (h *Handler) calculateMetal(w http.ResponseWriter, r *http.Request, calc func(grams, price decimal.Decimal) zakat.CategoryResult) {
	var req MetalRequest
	if !h.decode(w, r, &req) {
		return
	}

	var errs []string
	if req.QuantityGrams.IsNegative() {
		errs = append(errs, "quantity_grams must be non-negative")
	}
	if req.PricePerGram.IsNegative() {
		errs = append(errs, "price_per_gram must be non-negative")
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	writeJSON(w, http.StatusOK, calc(req.QuantityGrams, req.PricePerGram))
}

// CalculateCamels computes camel zakat.
func (h *Handler) CalculateCamels(w http.ResponseWriter, r *http.Request) {
	h.calculateLivestock(w, r, h.Engine.CalculateCamelZakat)
}

// CalculateCattle computes cattle zakat.
func (h *Handler) CalculateCattle(w http.ResponseWriter, r *http.Request) {
	h.calculateLivestock(w, r, h.Engine.CalculateCattleZakat)
}

// CalculateSheepGoats computes sheep/goats zakat.
func (h *Handler) CalculateSheepGoats(w http.ResponseWriter, r *http.Request) {
	h.calculateLivestock(w, r, h.Engine.CalculateSheepGoatsZakat)
}

func (h *Handler) calculateLivestock(w http.ResponseWriter, r *http.Request, calc func(count int) zakat.CategoryResult) {
	var req CountRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Count < 0 {
		writeValidationError(w, []string{"count must be a non-negative integer"})
		return
	}
	writeJSON(w, http.StatusOK, calc(req.Count))
}

// CalculateCrops computes crops zakat. The irrigation method is required;
// an unrecognized value is a 400, never a silent default.
func (h *Handler) CalculateCrops(w http.ResponseWriter, r *http.Request) {
	var req CropsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Tons.IsNegative() {
		writeValidationError(w, []string{"tons must be non-negative"})
		return
	}

	result, err := h.Engine.CalculateCropsZakat(req.Tons, req.IrrigationMethod)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid irrigation method", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// AGGREGATE CALCULATION
// =============================================================================

// CalculateTotal assesses a full asset list. With persist set, the result
// is stored; an above-nisab result also triggers a notification.
func (h *Handler) CalculateTotal(w http.ResponseWriter, r *http.Request) {
	var req TotalRequest
	if !h.decode(w, r, &req) {
		return
	}

	if v := zakat.ValidateAssets(req.Assets); !v.IsValid {
		writeValidationError(w, v.Errors)
		return
	}

	result, err := h.Engine.CalculateTotalZakat(req.Assets)
	if err != nil {
		if zakat.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Invalid assets", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Calculation failed", err)
		return
	}

	if req.Persist {
		if err := h.persistTotal(r, req, result); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to persist calculation", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) persistTotal(r *http.Request, req TotalRequest, result *zakat.AggregateResult) error {
	inputJSON, err := json.Marshal(req.Assets)
	if err != nil {
		return err
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return err
	}

	due := result.TotalZakat.IsPositive()
	record := sqlite.CalculationRecord{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		Category:     "total",
		InputJSON:    string(inputJSON),
		ResultJSON:   string(resultJSON),
		TotalZakat:   result.TotalZakat,
		IsAboveNisab: due,
	}
	if err := h.Store.SaveCalculation(r.Context(), record); err != nil {
		return err
	}

	if due {
		// Delivery failure is logged by the notifier; the calculation is
		// already stored and must not be rolled back for it.
		h.Notifier.Send(r.Context(), notify.Notification{
			Kind:      notify.KindZakatDue,
			UserID:    req.UserID,
			Subject:   "Zakat assessment complete",
			Body:      fmt.Sprintf("Your zakat assessment found %s due. Calculation %s has the breakdown.", result.TotalZakat.String(), record.ID),
			CreatedAt: time.Now().UTC(),
		})
	}
	return nil
}

// ValidateAssets checks an asset list without calculating anything.
func (h *Handler) ValidateAssets(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, zakat.ValidateAssets(req.Assets))
}

// =============================================================================
// ZAKAT TYPE REFERENCE
// =============================================================================

// ListZakatTypes returns every configured zakat type code with its
// description.
func (h *Handler) ListZakatTypes(w http.ResponseWriter, r *http.Request) {
	descriptions := h.Engine.Config().TypeDescriptions

	dtos := make([]ZakatTypeDTO, 0, len(descriptions))
	for code, desc := range descriptions {
		dtos = append(dtos, ZakatTypeDTO{Code: code, Description: desc})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetZakatType describes one zakat type code. Unknown codes pass through
// with the code as its own description, matching the engine's display
// fallback.
func (h *Handler) GetZakatType(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	writeJSON(w, http.StatusOK, ZakatTypeDTO{
		Code:        code,
		Description: h.Engine.Config().GetZakatTypeDescription(code),
	})
}

// =============================================================================
// CALCULATION RECORDS
// =============================================================================

// ListCalculations returns stored calculations, optionally filtered by
// user_id, newest first.
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListCalculations(r.Context(), r.URL.Query().Get("user_id"), 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calculations", err)
		return
	}

	dtos := make([]CalculationDTO, len(records))
	for i, c := range records {
		dtos[i] = toCalculationDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCalculation returns one stored calculation.
func (h *Handler) GetCalculation(w http.ResponseWriter, r *http.Request) {
	record, err := h.Store.GetCalculation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get calculation", err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "Calculation not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toCalculationDTO(*record))
}

// =============================================================================
// PAYMENTS
// =============================================================================

// CreatePayment records a zakat payment, optionally linked to a stored
// calculation.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !req.Amount.IsPositive() {
		writeValidationError(w, []string{"amount must be positive"})
		return
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != "" {
		t, err := time.Parse(time.RFC3339, req.PaidAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid paid_at format (use RFC 3339)", err)
			return
		}
		paidAt = t
	}

	if req.CalculationID != "" {
		calc, err := h.Store.GetCalculation(r.Context(), req.CalculationID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to look up calculation", err)
			return
		}
		if calc == nil {
			writeError(w, http.StatusNotFound, "Calculation not found", nil)
			return
		}
	}

	record := sqlite.PaymentRecord{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		CalculationID: req.CalculationID,
		Amount:        req.Amount,
		Method:        req.Method,
		Note:          req.Note,
		PaidAt:        paidAt,
	}
	if err := h.Store.SavePayment(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save payment", err)
		return
	}

	record.CreatedAt = time.Now().UTC()
	writeJSON(w, http.StatusCreated, toPaymentDTO(record))
}

// ListPayments returns recorded payments, optionally filtered by user_id.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListPayments(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	dtos := make([]PaymentDTO, len(records))
	for i, p := range records {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPayment returns one recorded payment.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	record, err := h.Store.GetPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get payment", err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "Payment not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(*record))
}

// =============================================================================
// REMINDERS
// =============================================================================

// CreateReminder schedules an annual recalculation reminder. The
// background scheduler delivers it once due_at passes.
func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req CreateReminderRequest
	if !h.decode(w, r, &req) {
		return
	}

	dueAt, err := time.Parse(time.RFC3339, req.DueAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid due_at format (use RFC 3339)", err)
		return
	}

	message := req.Message
	if message == "" {
		message = "A year has passed since your last zakat assessment. Time to recalculate."
	}

	record := sqlite.ReminderRecord{
		ID:      uuid.NewString(),
		UserID:  req.UserID,
		Message: message,
		DueAt:   dueAt,
	}
	if err := h.Store.SaveReminder(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save reminder", err)
		return
	}

	record.CreatedAt = time.Now().UTC()
	writeJSON(w, http.StatusCreated, toReminderDTO(record))
}

// ListReminders returns reminders ordered by due date.
func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListReminders(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reminders", err)
		return
	}

	dtos := make([]ReminderDTO, len(records))
	for i, rec := range records {
		dtos[i] = toReminderDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetReminder returns one reminder.
func (h *Handler) GetReminder(w http.ResponseWriter, r *http.Request) {
	record, err := h.Store.GetReminder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get reminder", err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "Reminder not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toReminderDTO(*record))
}

// DeleteReminder cancels a scheduled reminder.
func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.Store.GetReminder(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get reminder", err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "Reminder not found", nil)
		return
	}

	if err := h.Store.DeleteReminder(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete reminder", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// REPORTS
// =============================================================================

// CreateReport generates a period report: calculations and payments in the
// window, totals assessed and paid, and the outstanding balance.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if !h.decode(w, r, &req) {
		return
	}

	periodStart, err := time.Parse(time.RFC3339, req.PeriodStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period_start format (use RFC 3339)", err)
		return
	}
	periodEnd, err := time.Parse(time.RFC3339, req.PeriodEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period_end format (use RFC 3339)", err)
		return
	}
	if !periodEnd.After(periodStart) {
		writeValidationError(w, []string{"period_end must be after period_start"})
		return
	}

	doc, err := h.buildReport(r, req.UserID, periodStart, periodEnd)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build report", err)
		return
	}

	reportJSON, err := json.Marshal(doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode report", err)
		return
	}

	record := sqlite.ReportRecord{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		ReportJSON:  string(reportJSON),
	}
	if err := h.Store.SaveReport(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save report", err)
		return
	}

	record.CreatedAt = time.Now().UTC()
	writeJSON(w, http.StatusCreated, toReportDTO(record))
}

func (h *Handler) buildReport(r *http.Request, userID string, periodStart, periodEnd time.Time) (ReportDocument, error) {
	doc := ReportDocument{
		UserID:      userID,
		PeriodStart: periodStart.Format(time.RFC3339),
		PeriodEnd:   periodEnd.Format(time.RFC3339),
	}

	calcs, err := h.Store.ListCalculations(r.Context(), userID, 0)
	if err != nil {
		return doc, err
	}
	for _, c := range calcs {
		if c.CreatedAt.Before(periodStart) || c.CreatedAt.After(periodEnd) {
			continue
		}
		doc.CalculationCount++
		doc.TotalAssessed = doc.TotalAssessed.Add(c.TotalZakat)
	}

	payments, err := h.Store.ListPayments(r.Context(), userID)
	if err != nil {
		return doc, err
	}
	for _, p := range payments {
		if p.PaidAt.Before(periodStart) || p.PaidAt.After(periodEnd) {
			continue
		}
		doc.PaymentCount++
		doc.TotalPaid = doc.TotalPaid.Add(p.Amount)
	}

	doc.Outstanding = doc.TotalAssessed.Sub(doc.TotalPaid)
	if doc.Outstanding.IsNegative() {
		doc.Outstanding = decimal.Zero
	}
	return doc, nil
}

// ListReports returns generated reports, newest first.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListReports(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reports", err)
		return
	}

	dtos := make([]ReportDTO, len(records))
	for i, rec := range records {
		dtos[i] = toReportDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetReport returns one generated report.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	record, err := h.Store.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get report", err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "Report not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(*record))
}

// =============================================================================
// ADMIN
// =============================================================================

// ResetDatabase clears all stored data (dev only).
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

// decode parses and structurally validates a request body. It writes the
// error response itself and reports whether the handler may proceed.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			errs := make([]string, len(fieldErrs))
			for i, fe := range fieldErrs {
				errs[i] = fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
			}
			writeValidationError(w, errs)
		} else {
			writeError(w, http.StatusBadRequest, "Invalid request", err)
		}
		return false
	}
	return true
}

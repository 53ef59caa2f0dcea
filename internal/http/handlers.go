package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ledger/internal/core"
	"ledger/internal/services"
	"ledger/internal/storage"
)

type transactionResponse struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Kind        string `json:"kind"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Date:        tx.Date.ISO(),
		Kind:        string(tx.Kind),
		AmountCents: tx.Amount.Cents,
		Category:    tx.Category,
		Description: tx.Description,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= 500 {
		slog.ErrorContext(r.Context(), "Request failed", "method", r.Method, "url", r.URL.Path, "error", err)
	} else {
		slog.WarnContext(r.Context(), "Request rejected", "method", r.Method, "url", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrMissingField),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrConfiguration):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// handleCreateTransaction records one transaction. All fields arrive as
// strings and go through the shared record validation.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date        string `json:"date"`
		Kind        string `json:"kind"`
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	fields := map[string]string{
		services.FieldDate:        req.Date,
		services.FieldKind:        req.Kind,
		services.FieldAmount:      req.Amount,
		services.FieldCategory:    req.Category,
		services.FieldDescription: req.Description,
	}

	id, err := s.ledger.ValidateAndAdd(r.Context(), fields)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateSummaryFor(req.Date)
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := s.recentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	rows, err := s.ledger.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]transactionResponse, 0, len(rows))
	for _, tx := range rows {
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid transaction id"})
		return
	}

	if err := s.ledger.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	// The deleted row's month is unknown here, so drop everything.
	s.summaryCache.InvalidateAll()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = core.MonthOf(time.Now())
	}

	if summary, ok := s.summaryCache.Get(month); ok {
		writeJSON(w, http.StatusOK, summaryResponse(summary))
		return
	}

	summary, err := s.ledger.Summary(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.summaryCache.Set(month, summary)
	writeJSON(w, http.StatusOK, summaryResponse(summary))
}

func summaryResponse(sum core.MonthSummary) map[string]any {
	return map[string]any{
		"month":         sum.Month,
		"income_cents":  sum.Income.Cents,
		"expense_cents": sum.Expense.Cents,
		"balance_cents": sum.Balance.Cents,
	}
}

func (s *Server) handleGetSalary(w http.ResponseWriter, r *http.Request) {
	setting, err := s.scheduler.ActiveSetting(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if setting == nil {
		writeJSON(w, http.StatusOK, map[string]any{"configured": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"configured":   true,
		"payday":       setting.Payday,
		"amount_cents": setting.Amount.Cents,
		"start_date":   setting.StartDate.ISO(),
	})
}

func (s *Server) handleSetSalary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Payday    int    `json:"payday"`
		Amount    string `json:"amount"`
		StartDate string `json:"start_date"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	start := core.DateOf(time.Now())
	if req.StartDate != "" {
		start, err = core.ParseDate(req.StartDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	if err := s.scheduler.SetSalary(r.Context(), req.Payday, amount, start); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDefaults(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.applier.ActiveDefaults(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	type defaultResponse struct {
		ID          int64  `json:"id"`
		Kind        string `json:"kind"`
		AmountCents int64  `json:"amount_cents"`
		Category    string `json:"category"`
		Description string `json:"description,omitempty"`
	}
	out := make([]defaultResponse, 0, len(defaults))
	for _, d := range defaults {
		out = append(out, defaultResponse{
			ID:          d.ID,
			Kind:        string(d.Kind),
			AmountCents: d.Amount.Cents,
			Category:    d.Category,
			Description: d.Description,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddDefault(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind        string `json:"kind"`
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := s.applier.AddDefault(r.Context(), core.DailyDefault{
		Kind:        kind,
		Amount:      amount,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.monitor.Config(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := map[string]any{"configured": cfg.Budget != nil}
	if cfg.Budget != nil {
		resp["budget_cents"] = cfg.Budget.Cents
	}
	if cfg.LastAlertMonth != "" {
		resp["last_alert_month"] = cfg.LastAlertMonth
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount string `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.monitor.SetThreshold(r.Context(), amount); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBudgetStatus reports the current month's budget position. A true
// is_over is a freshly fired alert; repeats within the month come back false.
func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.monitor.Status(r.Context(), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"is_over":      status.IsOver,
		"month":        status.Month,
		"budget_cents": status.Budget.Cents,
		"spend_cents":  status.Current.Cents,
	})
}

// invalidateSummaryFor drops the cached summary for the month a write landed
// in. An empty or unparsable date means the write defaulted to today.
func (s *Server) invalidateSummaryFor(date string) {
	month := core.MonthOf(time.Now())
	if date != "" {
		if d, err := core.ParseDate(date); err == nil {
			month = d.Month()
		}
	}
	s.summaryCache.InvalidateMonth(month)
}

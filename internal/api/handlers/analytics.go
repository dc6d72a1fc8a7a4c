package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartspend/backend/internal/analytics"
	"github.com/smartspend/backend/internal/api/middleware"
	"github.com/smartspend/backend/internal/domain"
)

// summaryWindowDays is the fixed lookback for spending summaries.
const summaryWindowDays = 30

// TransactionWindowReader fetches a user's transactions inside a time window.
type TransactionWindowReader interface {
	FindInWindow(ctx context.Context, userID string, start time.Time) ([]domain.Transaction, error)
}

// AnalyticsHandler serves aggregated spending views.
type AnalyticsHandler struct {
	reader TransactionWindowReader
	log    zerolog.Logger
	now    func() time.Time
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(reader TransactionWindowReader, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{reader: reader, log: log, now: time.Now}
}

// SpendingSummary handles GET /api/analytics/spending-summary/:userID.
func (h *AnalyticsHandler) SpendingSummary(w http.ResponseWriter, r *http.Request, userID string) {
	start := h.now().UTC().AddDate(0, 0, -summaryWindowDays)

	txs, err := h.reader.FindInWindow(r.Context(), userID, start)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch spending summary")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to fetch spending summary")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, analytics.Summarize(txs))
}

// SpendingTrends handles GET /api/analytics/spending-trends/:userID?days=30.
func (h *AnalyticsHandler) SpendingTrends(w http.ResponseWriter, r *http.Request, userID string) {
	days := summaryWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid days")
			return
		}
		days = parsed
	}
	if days <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "days must be positive")
		return
	}

	end := h.now().UTC()
	start := end.AddDate(0, 0, -days)

	txs, err := h.reader.FindInWindow(r.Context(), userID, start)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch spending trends")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to fetch spending trends")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, analytics.Trend(txs, start, end))
}

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

// defaultTimeframe labels the fixed 30-day insight window.
const defaultTimeframe = "current_month"

// InsightRepository stores and retrieves generated insights.
type InsightRepository interface {
	Replace(ctx context.Context, userID string, insights []domain.StoredInsight) error
	ListByUser(ctx context.Context, userID string, limit int64) ([]domain.StoredInsight, error)
}

// InsightsHandler computes and serves spending insights.
type InsightsHandler struct {
	reader    TransactionWindowReader
	insights  InsightRepository
	generator *analytics.Generator
	log       zerolog.Logger
	now       func() time.Time
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(reader TransactionWindowReader, insights InsightRepository, generator *analytics.Generator, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{
		reader:    reader,
		insights:  insights,
		generator: generator,
		log:       log,
		now:       time.Now,
	}
}

// Generate handles POST /api/ai/insights/:userID. It recomputes the user's
// insights over the last 30 days and replaces the stored set.
func (h *InsightsHandler) Generate(w http.ResponseWriter, r *http.Request, userID string) {
	end := h.now().UTC()
	start := end.AddDate(0, 0, -summaryWindowDays)

	txs, err := h.reader.FindInWindow(r.Context(), userID, start)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch transactions for insights")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate insights")
		return
	}

	summary := analytics.Summarize(txs)
	trends := analytics.Trend(txs, start, end)
	insights := h.generator.Generate(r.Context(), summary, trends, defaultTimeframe)

	stored := make([]domain.StoredInsight, 0, len(insights))
	for _, in := range insights {
		stored = append(stored, domain.NewStoredInsight(userID, defaultTimeframe, in))
	}
	if err := h.insights.Replace(r.Context(), userID, stored); err != nil {
		h.log.Error().Err(err).Msg("Failed to store insights")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate insights")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"insights":     insights,
		"generated_at": end.Format(time.RFC3339),
	})
}

// List handles GET /api/ai/insights/:userID?limit=10.
func (h *InsightsHandler) List(w http.ResponseWriter, r *http.Request, userID string) {
	limit := int64(10)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	insights, err := h.insights.ListByUser(r.Context(), userID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to retrieve insights")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to retrieve insights")
		return
	}
	if insights == nil {
		insights = []domain.StoredInsight{}
	}
	middleware.WriteJSON(w, http.StatusOK, insights)
}

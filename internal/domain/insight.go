package domain

import (
	"time"

	"github.com/google/uuid"
)

// Insight priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Insight is one ranked spending observation with a recommendation.
type Insight struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
	Priority       string `json:"priority"`
	Category       string `json:"category"`
}

// StoredInsight is an Insight persisted for a user, retrievable later.
type StoredInsight struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	InsightType    string    `json:"insight_type"`
	Timeframe      string    `json:"timeframe"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Recommendation string    `json:"recommendation"`
	Priority       string    `json:"priority"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewStoredInsight wraps an Insight for persistence under the given user.
func NewStoredInsight(userID, timeframe string, in Insight) StoredInsight {
	return StoredInsight{
		ID:             uuid.NewString(),
		UserID:         userID,
		InsightType:    in.Category,
		Timeframe:      timeframe,
		Title:          in.Title,
		Description:    in.Description,
		Recommendation: in.Recommendation,
		Priority:       in.Priority,
		CreatedAt:      time.Now().UTC(),
	}
}

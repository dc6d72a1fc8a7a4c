package service

import (
	"context"
	"time"

	"github.com/smartspend/backend/internal/classify"
	"github.com/smartspend/backend/internal/domain"
)

// TransactionRepository is the persistence surface the services consume.
type TransactionRepository interface {
	Insert(ctx context.Context, tx domain.Transaction) error
	InsertMany(ctx context.Context, txs []domain.Transaction) error
	Exists(ctx context.Context, userID string, amount float64, date time.Time, description string) (bool, error)
	FindByUser(ctx context.Context, userID string, limit int64) ([]domain.Transaction, error)
}

// CategoryClassifier refines a single transaction's category.
type CategoryClassifier interface {
	Classify(ctx context.Context, in classify.Input, allowOverride bool) (string, bool)
}

// Enricher refines categories across a batch of transactions in place.
type Enricher interface {
	Enrich(ctx context.Context, txs []*domain.Transaction, allowOverride bool) map[string]string
}

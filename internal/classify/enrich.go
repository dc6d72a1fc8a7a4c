package classify

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/smartspend/backend/internal/domain"
	"github.com/smartspend/backend/internal/taxonomy"
)

// Enricher drives the classifier over a collection of candidate transactions,
// resolving cache hits locally and batching cache misses into bulk requests.
type Enricher struct {
	classifier *Classifier
	log        zerolog.Logger
}

// NewEnricher creates an enrichment orchestrator over the given classifier.
func NewEnricher(classifier *Classifier, log zerolog.Logger) *Enricher {
	return &Enricher{classifier: classifier, log: log}
}

// Enrich refines categories for every eligible transaction, applying results
// back onto the supplied records as value replacements. The returned map
// holds the (disambiguated) transaction id → new category pairs that were
// applied. Cache hits cost no network round trip; misses travel in chunked
// bulk requests and successful results are written through to the cache.
func (e *Enricher) Enrich(ctx context.Context, transactions []*domain.Transaction, allowOverride bool) map[string]string {
	updated := make(map[string]string)
	if len(transactions) == 0 || !e.classifier.Available() {
		return updated
	}

	cache := e.classifier.Cache()

	var pending []BatchEntry
	entryLookup := make(map[string]*domain.Transaction)
	cacheKeys := make(map[string]string)

	for index, tx := range transactions {
		if !allowOverride && !taxonomy.IsPlaceholder(tx.Category) {
			continue
		}

		key := Fingerprint(tx.Description, tx.Merchant, tx.Amount, tx.Type)

		// Colliding natural ids (retries, repeated imports) must never alias
		// two different transactions in the response-matching step.
		base := tx.ID
		if base == "" {
			base = fmt.Sprintf("tx-%d", index)
		}
		id := base
		for suffix := 1; taken(id, entryLookup, cacheKeys, updated); suffix++ {
			id = fmt.Sprintf("%s::%d", base, suffix)
		}

		if cached, ok := cache.Get(key); ok {
			*tx = tx.WithCategory(cached)
			updated[id] = cached
			continue
		}

		entryLookup[id] = tx
		cacheKeys[id] = key
		pending = append(pending, BatchEntry{
			ID:              id,
			Description:     tx.Description,
			Merchant:        tx.Merchant,
			Amount:          math.Round(tx.Amount*100) / 100,
			Type:            tx.Type,
			CurrentCategory: tx.Category,
		})
	}

	if len(pending) == 0 {
		return updated
	}

	results := e.classifier.ClassifyBulk(ctx, pending, DefaultBatchSize)

	for id, category := range results {
		tx, ok := entryLookup[id]
		if !ok {
			continue
		}
		if key, ok := cacheKeys[id]; ok {
			cache.Set(key, category)
		}
		*tx = tx.WithCategory(category)
		updated[id] = category
	}

	return updated
}

func taken(id string, entryLookup map[string]*domain.Transaction, cacheKeys, updated map[string]string) bool {
	if _, ok := entryLookup[id]; ok {
		return true
	}
	if _, ok := cacheKeys[id]; ok {
		return true
	}
	_, ok := updated[id]
	return ok
}

package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/smartspend/backend/internal/taxonomy"
)

// DefaultBatchSize is how many transactions travel in one bulk request.
const DefaultBatchSize = 25

// Input carries the facts of one transaction to classify.
type Input struct {
	Description     string
	Merchant        string
	Amount          float64
	Type            string
	CurrentCategory string
}

// BatchEntry is one transaction inside a bulk round trip. IDs are opaque and
// already disambiguated by the caller.
type BatchEntry struct {
	ID              string  `json:"id"`
	Description     string  `json:"description"`
	Merchant        string  `json:"merchant"`
	Amount          float64 `json:"amount"`
	Type            string  `json:"type"`
	CurrentCategory string  `json:"current_category"`
}

// Classifier refines transaction categories through an external
// chat-completion provider. Every failure path degrades to "no result";
// classification is never fatal to the caller.
type Classifier struct {
	client *chatClient
	cache  *Cache
	log    zerolog.Logger
}

// NewClassifier wires a classifier against the given provider config and
// write-through cache.
func NewClassifier(cfg Config, cache *Cache, log zerolog.Logger) *Classifier {
	return &Classifier{
		client: newChatClient(cfg),
		cache:  cache,
		log:    log,
	}
}

// Available reports whether the provider is configured.
func (c *Classifier) Available() bool {
	return c.client.cfg.Available()
}

// Cache exposes the write-through cache so the enrichment orchestrator can
// probe it before spending a network call.
func (c *Classifier) Cache() *Cache {
	return c.cache
}

// Complete sends one raw chat completion through the provider. Callers that
// build their own prompts (insight generation) share the provider transport
// and its in-flight cap.
func (c *Classifier) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("Complete: provider not configured")
	}
	return c.client.complete(ctx, system, user)
}

// Classify returns a refined canonical category for one transaction, or
// ok=false when no confident result was obtained. No network call happens
// when the provider is unconfigured, when the current category is already
// concrete and override is not allowed, or on a cache hit.
func (c *Classifier) Classify(ctx context.Context, in Input, allowOverride bool) (string, bool) {
	if !c.Available() {
		return "", false
	}
	if !allowOverride && !taxonomy.IsPlaceholder(in.CurrentCategory) {
		return "", false
	}

	key := Fingerprint(in.Description, in.Merchant, in.Amount, in.Type)
	if cached, ok := c.cache.Get(key); ok {
		return cached, true
	}

	content, err := c.client.complete(ctx, singleSystemPrompt, singleUserPrompt(in))
	if err != nil {
		c.log.Warn().Err(err).Msg("Classification request failed")
		return "", false
	}

	candidate := parseCategoryContent(content)
	if candidate == "" {
		return "", false
	}

	category, ok := taxonomy.Normalize(candidate)
	if !ok {
		c.log.Info().Str("candidate", candidate).Msg("Provider returned unrecognised category")
		return "", false
	}

	c.cache.Set(key, category)
	return category, true
}

// ClassifyBulk classifies entries in chunks of batchSize, each chunk one
// provider request. Chunks fan out concurrently under the in-flight cap and
// merge their normalized results; a failed chunk contributes nothing and
// does not stop the others.
func (c *Classifier) ClassifyBulk(ctx context.Context, entries []BatchEntry, batchSize int) map[string]string {
	results := make(map[string]string)
	if len(entries) == 0 || !c.Available() {
		return results
	}
	if batchSize < 1 {
		batchSize = 1
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for start := 0; start < len(entries); start += batchSize {
		end := int(math.Min(float64(start+batchSize), float64(len(entries))))
		chunk := entries[start:end]

		wg.Add(1)
		go func() {
			defer wg.Done()
			batch := c.classifyChunk(ctx, chunk)
			if len(batch) == 0 {
				return
			}
			mu.Lock()
			for id, category := range batch {
				results[id] = category
			}
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results
}

func (c *Classifier) classifyChunk(ctx context.Context, chunk []BatchEntry) map[string]string {
	payload := make([]BatchEntry, len(chunk))
	copy(payload, chunk)
	for i := range payload {
		if payload[i].Merchant == "" {
			payload[i].Merchant = "Unknown"
		}
		if payload[i].Type == "" {
			payload[i].Type = "Unknown"
		}
		if payload[i].CurrentCategory == "" {
			payload[i].CurrentCategory = "None"
		}
	}

	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		c.log.Warn().Err(err).Msg("Failed to encode bulk classification payload")
		return nil
	}

	content, err := c.client.complete(ctx, bulkSystemPrompt, bulkUserPrompt+"\n\n"+string(encoded))
	if err != nil {
		c.log.Warn().Err(err).Msg("Bulk classification request failed")
		return nil
	}

	normalized := make(map[string]string)
	for id, candidate := range parseBulkContent(content) {
		category, ok := taxonomy.Normalize(candidate)
		if !ok {
			c.log.Info().Str("id", id).Str("candidate", candidate).Msg("Provider returned unrecognised category")
			continue
		}
		normalized[id] = category
	}
	return normalized
}

var singleSystemPrompt = "You are an expert financial assistant that categorizes banking transactions. " +
	"Choose the single most appropriate category from the provided list and respond with valid JSON."

func singleUserPrompt(in Input) string {
	merchant := in.Merchant
	if merchant == "" {
		merchant = "Unknown"
	}
	txType := in.Type
	if txType == "" {
		txType = "Unknown"
	}
	current := in.CurrentCategory
	if current == "" {
		current = "None"
	}

	var b strings.Builder
	b.WriteString("Classify the following bank transaction into the best matching category. ")
	b.WriteString("Respond with a JSON object like {\"category\": \"Category Name\"}.\n\n")
	fmt.Fprintf(&b, "Description: %s\n", in.Description)
	fmt.Fprintf(&b, "Merchant: %s\n", merchant)
	fmt.Fprintf(&b, "Amount: %.2f\n", in.Amount)
	fmt.Fprintf(&b, "Type: %s\n", txType)
	fmt.Fprintf(&b, "Current category guess: %s\n\n", current)
	b.WriteString("Valid categories: " + strings.Join(taxonomy.Canonical, ", "))
	return b.String()
}

var bulkSystemPrompt = "You are an expert financial assistant that categorizes banking transactions. " +
	"Choose the single most appropriate category from the provided list and respond with valid JSON. " +
	"Valid categories: " + strings.Join(taxonomy.Canonical, ", ")

const bulkUserPrompt = "For each transaction below, respond with a JSON array where every item has the keys " +
	"'id' and 'category'. Match categories exactly from the approved list. If you are unsure, choose 'Others'."

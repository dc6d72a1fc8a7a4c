package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/smartspend/backend/internal/domain"
)

func TestEnrichCacheHitAvoidsNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no provider call expected on a warm cache")
	}))
	defer server.Close()

	cache := NewCache(DefaultCacheSize, DefaultCacheTTL)
	cache.Set(Fingerprint("Zomato order", "Zomato", 450, "expense"), "Food & Dining")

	c := NewClassifier(testConfig(server.URL), cache, zerolog.Nop())
	e := NewEnricher(c, zerolog.Nop())

	tx := domain.Transaction{
		ID:          "tx-1",
		Description: "Zomato order",
		Merchant:    "Zomato",
		Amount:      450,
		Type:        domain.TypeExpense,
		Category:    "Others",
	}
	updated := e.Enrich(context.Background(), []*domain.Transaction{&tx}, false)

	if tx.Category != "Food & Dining" {
		t.Errorf("category = %q, want cached value applied", tx.Category)
	}
	if updated["tx-1"] != "Food & Dining" {
		t.Errorf("updated = %v, want tx-1 → Food & Dining", updated)
	}
}

func TestEnrichAppliesBulkResultsAndWritesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatContentResponse(`[{"id": "tx-1", "category": "Travel"}]`))
	}))
	defer server.Close()

	cache := NewCache(DefaultCacheSize, DefaultCacheTTL)
	c := NewClassifier(testConfig(server.URL), cache, zerolog.Nop())
	e := NewEnricher(c, zerolog.Nop())

	tx := domain.Transaction{
		ID:          "tx-1",
		Description: "Uber ride",
		Merchant:    "Uber",
		Amount:      230,
		Type:        domain.TypeExpense,
		Category:    "Others",
	}
	updated := e.Enrich(context.Background(), []*domain.Transaction{&tx}, false)

	if tx.Category != "Travel" {
		t.Errorf("category = %q, want Travel", tx.Category)
	}
	if updated["tx-1"] != "Travel" {
		t.Errorf("updated = %v", updated)
	}

	key := Fingerprint("Uber ride", "Uber", 230, domain.TypeExpense)
	if cached, ok := cache.Get(key); !ok || cached != "Travel" {
		t.Errorf("cache write-through missing: (%q, %v)", cached, ok)
	}
}

func TestEnrichSkipsConcreteCategoriesWithoutOverride(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, chatContentResponse(`[]`))
	}))
	defer server.Close()

	c := NewClassifier(testConfig(server.URL), NewCache(DefaultCacheSize, DefaultCacheTTL), zerolog.Nop())
	e := NewEnricher(c, zerolog.Nop())

	tx := domain.Transaction{ID: "tx-1", Description: "Flat rent", Category: "Rent", Type: domain.TypeExpense}
	updated := e.Enrich(context.Background(), []*domain.Transaction{&tx}, false)

	if len(updated) != 0 {
		t.Errorf("updated = %v, want empty", updated)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("expected no provider calls, got %d", n)
	}
}

func TestEnrichDisambiguatesCollidingIDs(t *testing.T) {
	var sentIDs []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(body, &req); err != nil || len(req.Messages) < 2 {
			t.Errorf("malformed chat request: %v", err)
		}

		// Answer for both disambiguated ids so each record gets a category.
		fmt.Fprint(w, chatContentResponse(`[{"id": "dup", "category": "Travel"}, {"id": "dup::1", "category": "Shopping"}]`))
		sentIDs = append(sentIDs, "seen")
	}))
	defer server.Close()

	c := NewClassifier(testConfig(server.URL), NewCache(DefaultCacheSize, DefaultCacheTTL), zerolog.Nop())
	e := NewEnricher(c, zerolog.Nop())

	first := domain.Transaction{ID: "dup", Description: "Uber ride", Amount: 100, Type: domain.TypeExpense, Category: "Others"}
	second := domain.Transaction{ID: "dup", Description: "Amazon order", Amount: 900, Type: domain.TypeExpense, Category: "Others"}

	updated := e.Enrich(context.Background(), []*domain.Transaction{&first, &second}, false)

	if len(sentIDs) != 1 {
		t.Fatalf("expected one bulk call, got %d", len(sentIDs))
	}
	if updated["dup"] != "Travel" || updated["dup::1"] != "Shopping" {
		t.Errorf("updated = %v, want dup → Travel and dup::1 → Shopping", updated)
	}
	if first.Category != "Travel" || second.Category != "Shopping" {
		t.Errorf("applied categories = (%q, %q)", first.Category, second.Category)
	}
}

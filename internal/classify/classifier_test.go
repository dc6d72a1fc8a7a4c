package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func chatContentResponse(content string) string {
	payload := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	}
	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func testConfig(baseURL string) Config {
	return Config{
		APIKey:  "test-key",
		Model:   "test-model",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}
}

func TestClassifySingle(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		fmt.Fprint(w, chatContentResponse(`{"category": "Food & Dining"}`))
	}))
	defer server.Close()

	c := NewClassifier(testConfig(server.URL), NewCache(DefaultCacheSize, DefaultCacheTTL), zerolog.Nop())

	in := Input{Description: "Zomato order", Merchant: "Zomato", Amount: 450, Type: "expense", CurrentCategory: "Others"}
	got, ok := c.Classify(context.Background(), in, false)
	if !ok || got != "Food & Dining" {
		t.Fatalf("Classify = (%q, %v), want (Food & Dining, true)", got, ok)
	}

	// Second call must be served from the cache with no network round trip.
	got, ok = c.Classify(context.Background(), in, false)
	if !ok || got != "Food & Dining" {
		t.Fatalf("cached Classify = (%q, %v)", got, ok)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 provider call, got %d", n)
	}
}

func TestClassifySkipsConcreteCategoryWithoutOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no provider call expected")
	}))
	defer server.Close()

	c := NewClassifier(testConfig(server.URL), NewCache(DefaultCacheSize, DefaultCacheTTL), zerolog.Nop())

	in := Input{Description: "Flat rent", CurrentCategory: "Rent"}
	if got, ok := c.Classify(context.Background(), in, false); ok {
		t.Errorf("Classify = (%q, %v), want no result", got, ok)
	}
}

func TestClassifyUnconfiguredProvider(t *testing.T) {
	c := NewClassifier(Config{}, NewCache(DefaultCacheSize, DefaultCacheTTL), zerolog.Nop())

	if got, ok := c.Classify(context.Background(), Input{Description: "x"}, true); ok {
		t.Errorf("Classify = (%q, %v), want no result when unconfigured", got, ok)
	}
	if results := c.ClassifyBulk(context.Background(), []BatchEntry{{ID: "a"}}, 25); len(results) != 0 {
		t.Errorf("ClassifyBulk = %v, want empty when unconfigured", results)
	}
}

func TestClassifyProviderFailureIsNotFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClassifier(testConfig(server.URL), NewCache(DefaultCacheSize, DefaultCacheTTL), zerolog.Nop())

	if got, ok := c.Classify(context.Background(), Input{Description: "x", CurrentCategory: "Others"}, false); ok {
		t.Errorf("Classify = (%q, %v), want no result on provider failure", got, ok)
	}
}

func TestClassifyUnrecognisedCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatContentResponse(`{"category": "Cryptozoology"}`))
	}))
	defer server.Close()

	c := NewClassifier(testConfig(server.URL), NewCache(DefaultCacheSize, DefaultCacheTTL), zerolog.Nop())

	if got, ok := c.Classify(context.Background(), Input{Description: "x", CurrentCategory: "Others"}, false); ok {
		t.Errorf("Classify = (%q, %v), want no result for unknown label", got, ok)
	}
}

func TestClassifyBulkBatchCount(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, chatContentResponse(`[]`))
	}))
	defer server.Close()

	c := NewClassifier(testConfig(server.URL), NewCache(DefaultCacheSize, DefaultCacheTTL), zerolog.Nop())

	tests := []struct {
		entries   int
		batchSize int
		want      int32
	}{
		{1, 25, 1},
		{25, 25, 1},
		{26, 25, 2},
		{100, 25, 4},
		{7, 3, 3},
	}

	for _, tt := range tests {
		atomic.StoreInt32(&calls, 0)
		entries := make([]BatchEntry, tt.entries)
		for i := range entries {
			entries[i] = BatchEntry{ID: fmt.Sprintf("tx-%d", i), Description: "d"}
		}
		c.ClassifyBulk(context.Background(), entries, tt.batchSize)
		if n := atomic.LoadInt32(&calls); n != tt.want {
			t.Errorf("entries=%d batch=%d: %d calls, want %d", tt.entries, tt.batchSize, n, tt.want)
		}
	}
}

func TestClassifyBulkNormalizesAndMerges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := "```json\n" +
			`{"results": [{"id": "a", "category": "food"}, {"id": "b", "category": "Nonsense"}]}` +
			"\n```"
		fmt.Fprint(w, chatContentResponse(content))
	}))
	defer server.Close()

	c := NewClassifier(testConfig(server.URL), NewCache(DefaultCacheSize, DefaultCacheTTL), zerolog.Nop())

	results := c.ClassifyBulk(context.Background(), []BatchEntry{
		{ID: "a", Description: "lunch"},
		{ID: "b", Description: "???"},
	}, 25)

	if len(results) != 1 || results["a"] != "Food & Dining" {
		t.Errorf("ClassifyBulk = %v, want only a → Food & Dining", results)
	}
}

func TestClassifyBulkFailedBatchDoesNotStopOthers(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, chatContentResponse(`[{"id": "tx-1", "category": "Travel"}]`))
	}))
	defer server.Close()

	c := NewClassifier(testConfig(server.URL), NewCache(DefaultCacheSize, DefaultCacheTTL), zerolog.Nop())

	results := c.ClassifyBulk(context.Background(), []BatchEntry{
		{ID: "tx-0", Description: "a"},
		{ID: "tx-1", Description: "b"},
	}, 1)

	// One of the two single-entry batches fails; the other still lands.
	if len(results) != 1 {
		t.Errorf("ClassifyBulk = %v, want exactly one surviving result", results)
	}
}

package classify

import "testing"

func TestParseCategoryContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"json object category key", `{"category": "Food & Dining"}`, "Food & Dining"},
		{"json object label key", `{"label": "Travel"}`, "Travel"},
		{"json object result key", `{"result": "Rent"}`, "Rent"},
		{"json array of strings", `["Shopping", "Travel"]`, "Shopping"},
		{"json array of objects", `[{"category": "Groceries"}]`, "Groceries"},
		{"code fenced json", "```json\n{\"category\": \"Entertainment\"}\n```", "Entertainment"},
		{"free text", "Food & Dining is the best match.", "Food & Dining is the best match"},
		{"free text multi line", "Transportation\nBecause it is an Uber ride.", "Transportation"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseCategoryContent(tt.content); got != tt.want {
				t.Errorf("parseCategoryContent(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestParseBulkContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]string
	}{
		{
			"bare array",
			`[{"id": "a", "category": "Travel"}, {"id": "b", "category": "Rent"}]`,
			map[string]string{"a": "Travel", "b": "Rent"},
		},
		{
			"wrapped in transactions",
			`{"transactions": [{"id": "a", "category": "Travel"}]}`,
			map[string]string{"a": "Travel"},
		},
		{
			"wrapped in items",
			`{"items": [{"id": "a", "category": "Travel"}]}`,
			map[string]string{"a": "Travel"},
		},
		{
			"wrapped in results",
			`{"results": [{"id": "a", "category": "Travel"}]}`,
			map[string]string{"a": "Travel"},
		},
		{
			"single object",
			`{"id": "a", "category": "Travel"}`,
			map[string]string{"a": "Travel"},
		},
		{
			"code fenced",
			"```json\n[{\"id\": \"a\", \"category\": \"Travel\"}]\n```",
			map[string]string{"a": "Travel"},
		},
		{
			"items missing fields are skipped",
			`[{"id": "a"}, {"category": "Travel"}, {"id": "b", "category": "Rent"}, "junk"]`,
			map[string]string{"b": "Rent"},
		},
		{
			"not json",
			"sorry, I cannot help with that",
			map[string]string{},
		},
		{"empty", "", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseBulkContent(tt.content)
			if len(got) != len(tt.want) {
				t.Fatalf("parseBulkContent() = %v, want %v", got, tt.want)
			}
			for id, category := range tt.want {
				if got[id] != category {
					t.Errorf("parseBulkContent()[%q] = %q, want %q", id, got[id], category)
				}
			}
		})
	}
}

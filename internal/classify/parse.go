package classify

import (
	"encoding/json"
	"regexp"
	"strings"
)

var categoryTokenPattern = regexp.MustCompile(`([A-Za-z &]+)`)

// stripCodeFences drops Markdown fence lines the model sometimes wraps its
// JSON in despite instructions.
func stripCodeFences(content string) string {
	text := strings.TrimSpace(content)
	if !strings.Contains(text, "```") {
		return text
	}
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// parseCategoryContent extracts a candidate category label from a single-
// transaction response: whole-payload JSON first (object keys category/label/
// result, or the first element of an array), then a letters-and-ampersand
// scan of the first line.
func parseCategoryContent(content string) string {
	text := stripCodeFences(content)
	if text == "" {
		return ""
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		switch v := parsed.(type) {
		case map[string]interface{}:
			if label := labelFromObject(v); label != "" {
				return label
			}
		case []interface{}:
			if len(v) > 0 {
				switch first := v[0].(type) {
				case string:
					return first
				case map[string]interface{}:
					if label := labelFromObject(first); label != "" {
						return label
					}
				}
			}
		}
	}

	lines := strings.Split(text, "\n")
	firstLine := strings.TrimSpace(lines[0])
	if match := categoryTokenPattern.FindString(firstLine); match != "" {
		return strings.TrimSpace(match)
	}
	return firstLine
}

func labelFromObject(obj map[string]interface{}) string {
	for _, key := range []string{"category", "label", "result"} {
		if value, ok := obj[key].(string); ok {
			return value
		}
	}
	return ""
}

// parseBulkContent extracts the id→category pairs from a bulk response. The
// payload may be a bare JSON array, an array wrapped in an object under
// transactions/items/results, or a single object; anything else contributes
// nothing.
func parseBulkContent(content string) map[string]string {
	results := make(map[string]string)

	text := stripCodeFences(content)
	if text == "" {
		return results
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return results
	}

	var items []interface{}
	switch v := parsed.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		for _, key := range []string{"transactions", "items", "results"} {
			if wrapped, ok := v[key].([]interface{}); ok {
				items = wrapped
				break
			}
		}
		if items == nil {
			items = []interface{}{v}
		}
	default:
		return results
	}

	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		id, idOK := obj["id"].(string)
		category, catOK := obj["category"].(string)
		if idOK && catOK {
			results[id] = category
		}
	}
	return results
}

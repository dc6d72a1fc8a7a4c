// Package taxonomy holds the canonical spending-category set and every rule
// that maps free-text category signals onto it.
package taxonomy

import "strings"

// Canonical is the fixed, ordered category taxonomy. All free-text category
// signals normalize toward one of these names.
var Canonical = []string{
	"Food & Dining",
	"Transportation",
	"Shopping",
	"Entertainment",
	"Bills & Utilities",
	"Healthcare",
	"Education",
	"Income",
	"Savings",
	"Investments",
	"Travel",
	"Groceries",
	"Rent",
	"Others",
}

// aliases maps each canonical name to lowercase tokens accepted as synonyms.
var aliases = map[string][]string{
	"Food & Dining":     {"food", "dining", "restaurant", "restaurants", "eating out"},
	"Transportation":    {"transport", "commute", "fuel", "taxi", "cab", "ride"},
	"Shopping":          {"retail", "ecommerce", "store", "mall", "purchase"},
	"Entertainment":     {"movies", "music", "games", "subscriptions", "leisure"},
	"Bills & Utilities": {"utilities", "utility", "bill", "bills", "recharge", "electricity", "water", "gas"},
	"Healthcare":        {"medical", "health", "doctor", "pharmacy", "hospital"},
	"Education":         {"learning", "courses", "tuition", "study"},
	"Income":            {"salary", "paycheck", "pay", "income", "credit", "deposit"},
	"Savings":           {"savings", "saving"},
	"Investments":       {"investment", "investments", "stocks", "mutual funds", "sip"},
	"Travel":            {"travel", "trip", "hotel", "flight", "vacation"},
	"Groceries":         {"grocery", "groceries", "supermarket"},
	"Rent":              {"rent", "rental", "lease"},
	"Others":            {"other", "misc", "miscellaneous", "general", "uncategorized", "unknown"},
}

// placeholders are generic/unknown markers that never block reclassification.
var placeholders = map[string]struct{}{
	"others":        {},
	"other":         {},
	"misc":          {},
	"miscellaneous": {},
	"uncategorized": {},
	"unknown":       {},
	"general":       {},
	"auto":          {},
	"autodetect":    {},
	"category":      {},
}

// Normalize maps an arbitrary category string onto the canonical taxonomy.
// The ladder is: exact name match, exact alias match, canonical name as a
// substring, alias as a substring. Returns false when nothing matches
// confidently; callers keep their prior value in that case.
func Normalize(text string) (string, bool) {
	clean := strings.ToLower(strings.TrimSpace(text))
	if clean == "" {
		return "", false
	}

	for _, canonical := range Canonical {
		if clean == strings.ToLower(canonical) {
			return canonical, true
		}
	}

	for _, canonical := range Canonical {
		for _, alias := range aliases[canonical] {
			if clean == alias {
				return canonical, true
			}
		}
	}

	for _, canonical := range Canonical {
		if strings.Contains(clean, strings.ToLower(canonical)) {
			return canonical, true
		}
	}

	for _, canonical := range Canonical {
		for _, alias := range aliases[canonical] {
			if strings.Contains(clean, alias) {
				return canonical, true
			}
		}
	}

	return "", false
}

// IsPlaceholder reports whether a category is a generic/unknown marker that a
// classifier is allowed to replace without an explicit override.
func IsPlaceholder(category string) bool {
	clean := strings.ToLower(strings.TrimSpace(category))
	if clean == "" {
		return true
	}
	_, ok := placeholders[clean]
	return ok
}

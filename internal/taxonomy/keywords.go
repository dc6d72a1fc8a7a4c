package taxonomy

import "strings"

// keywordRule pairs a canonical category with the lowercase tokens that signal
// it inside a transaction description or merchant name. Order matters: the
// first rule with a hit wins.
type keywordRule struct {
	category string
	keywords []string
}

var keywordRules = []keywordRule{
	{"Food & Dining", []string{"zomato", "swiggy", "restaurant", "food", "cafe", "pizza", "burger", "mcdonald", "kfc", "dominos", "starbucks"}},
	{"Transportation", []string{"uber", "ola", "metro", "bus", "taxi", "fuel", "petrol", "diesel", "transport"}},
	{"Shopping", []string{"amazon", "flipkart", "myntra", "shopping", "mall", "store", "purchase"}},
	{"Entertainment", []string{"netflix", "spotify", "movie", "cinema", "entertainment", "bookmyshow", "game"}},
	{"Bills & Utilities", []string{"electricity", "water", "gas", "internet", "mobile", "recharge", "bill", "utility"}},
	{"Healthcare", []string{"hospital", "pharmacy", "doctor", "medical", "health", "medicine", "clinic"}},
	{"Investments", investmentKeywords},
}

// investmentKeywords include the broker names that force Investments at read
// time regardless of the stored label.
var investmentKeywords = []string{
	"investment", "sip", "mutual fund", "mutualfund", "stock", "stocks", "equity",
	"portfolio", "brokerage", "demat", "lic policy", "ppf", "nps", "zerodha", "groww",
	"upstox", "paytm money", "icici direct", "hdfc securities",
}

// KeywordCategory scans a transaction's description and merchant for known
// category tokens. The first matching rule wins; no match yields Others.
func KeywordCategory(description, merchant string) string {
	descLower := strings.ToLower(description)
	merchLower := strings.ToLower(merchant)

	for _, rule := range keywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(descLower, keyword) || strings.Contains(merchLower, keyword) {
				return rule.category
			}
		}
	}
	return "Others"
}

// EffectiveCategory re-derives a transaction's category at read time. Anything
// whose description or merchant carries an investment-broker token counts as
// Investments no matter what label was stored; otherwise the stored category
// stands, defaulting to Others when empty.
func EffectiveCategory(category, description, merchant string) string {
	descLower := strings.ToLower(description)
	merchLower := strings.ToLower(merchant)

	for _, keyword := range investmentKeywords {
		if strings.Contains(descLower, keyword) || strings.Contains(merchLower, keyword) {
			return "Investments"
		}
	}

	category = strings.TrimSpace(category)
	if category == "" {
		return "Others"
	}
	return category
}

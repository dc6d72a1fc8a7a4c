// Package analytics aggregates persisted transactions into spending
// summaries, daily trend series and ranked insights.
package analytics

import (
	"math"
	"sort"

	"github.com/smartspend/backend/internal/domain"
	"github.com/smartspend/backend/internal/taxonomy"
)

const topCategoryLimit = 5

// CategoryTotal is one category's share of the window's expenses.
type CategoryTotal struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// Summary aggregates one user's transactions over a window.
type Summary struct {
	TotalExpenses     float64            `json:"total_expenses"`
	TotalIncome       float64            `json:"total_income"`
	NetSavings        float64            `json:"net_savings"`
	TransactionCount  int                `json:"transaction_count"`
	TopCategories     []CategoryTotal    `json:"top_categories"`
	CategoryBreakdown map[string]float64 `json:"category_breakdown"`
}

// Summarize rolls transactions up into expense/income totals and a per-category
// expense breakdown. Categories are re-derived so investment-flavoured records
// group under Investments regardless of the stored label.
func Summarize(txs []domain.Transaction) Summary {
	var totalExpenses, totalIncome float64
	spending := make(map[string]float64)

	for _, tx := range txs {
		switch tx.Type {
		case domain.TypeExpense:
			totalExpenses += tx.Amount
			category := taxonomy.EffectiveCategory(tx.Category, tx.Description, tx.Merchant)
			spending[category] += tx.Amount
		case domain.TypeIncome:
			totalIncome += tx.Amount
		}
	}

	type pair struct {
		category string
		amount   float64
	}
	pairs := make([]pair, 0, len(spending))
	for category, amount := range spending {
		pairs = append(pairs, pair{category, amount})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].amount != pairs[j].amount {
			return pairs[i].amount > pairs[j].amount
		}
		return pairs[i].category < pairs[j].category
	})
	if len(pairs) > topCategoryLimit {
		pairs = pairs[:topCategoryLimit]
	}

	top := make([]CategoryTotal, 0, len(pairs))
	for _, p := range pairs {
		percentage := 0.0
		if totalExpenses > 0 {
			percentage = round1(p.amount / totalExpenses * 100)
		}
		top = append(top, CategoryTotal{
			Category:   p.category,
			Amount:     round2(p.amount),
			Percentage: percentage,
		})
	}

	breakdown := make(map[string]float64, len(spending))
	for category, amount := range spending {
		breakdown[category] = round2(amount)
	}

	return Summary{
		TotalExpenses:     round2(totalExpenses),
		TotalIncome:       round2(totalIncome),
		NetSavings:        round2(totalIncome - totalExpenses),
		TransactionCount:  len(txs),
		TopCategories:     top,
		CategoryBreakdown: breakdown,
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

package analytics

import (
	"time"

	"github.com/smartspend/backend/internal/domain"
)

const dayKeyFormat = "2006-01-02"

// TrendPoint is one day's total expense spend.
type TrendPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// Trends is the daily spend series over a window.
type Trends struct {
	Points               []TrendPoint `json:"trends"`
	AverageDailySpending float64      `json:"average_daily_spending"`
}

// Trend buckets expense transactions into inclusive UTC day buckets between
// start and end, zero-filling quiet days. An end before start degrades to a
// single bucket on the start day.
func Trend(txs []domain.Transaction, start, end time.Time) Trends {
	startDay := dayOf(start)
	endDay := dayOf(end)
	if endDay.Before(startDay) {
		endDay = startDay
	}

	daily := make(map[string]float64)
	for _, tx := range txs {
		if tx.Type != domain.TypeExpense {
			continue
		}
		if tx.Date.Before(start) || dayOf(tx.Date).After(endDay) {
			continue
		}
		key := tx.Date.UTC().Format(dayKeyFormat)
		daily[key] += tx.Amount
	}

	var points []TrendPoint
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayKeyFormat)
		points = append(points, TrendPoint{Date: key, Amount: round2(daily[key])})
	}

	var total float64
	for _, amount := range daily {
		total += amount
	}
	average := 0.0
	if len(points) > 0 {
		average = round2(total / float64(len(points)))
	}

	return Trends{Points: points, AverageDailySpending: average}
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

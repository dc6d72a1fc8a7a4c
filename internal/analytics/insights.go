package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/smartspend/backend/internal/domain"
)

const maxInsights = 6

// DefaultEmergencyFundMultiplier is how many months of expenses the emergency
// fund target covers when no multiplier is configured.
const DefaultEmergencyFundMultiplier = 6

// timeframeMonths maps the named analysis windows onto whole months. Unknown
// timeframes derive the month count from the trend series length.
var timeframeMonths = map[string]float64{
	"current_month": 1,
	"last_month":    1,
	"3_months":      3,
	"6_months":      6,
	"1_year":        12,
	"65_days":       2,
}

// ChatCompleter is the provider surface insight generation can draw on.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Generator produces ranked spending insights, preferring the configured
// provider and falling back to the deterministic rule ladder.
type Generator struct {
	chat       ChatCompleter
	multiplier float64
	log        zerolog.Logger
}

// NewGenerator wires an insight generator. chat may be nil to force the rule
// ladder. A zero multiplier disables the emergency fund target; only a
// negative one falls back to the default.
func NewGenerator(chat ChatCompleter, emergencyFundMultiplier float64, log zerolog.Logger) *Generator {
	if emergencyFundMultiplier < 0 {
		emergencyFundMultiplier = DefaultEmergencyFundMultiplier
	}
	return &Generator{chat: chat, multiplier: emergencyFundMultiplier, log: log}
}

// Generate returns at most six insights for the aggregated window, never none.
func (g *Generator) Generate(ctx context.Context, summary Summary, trends Trends, timeframe string) []domain.Insight {
	if g.chat != nil {
		insights, err := g.fromProvider(ctx, summary, trends, timeframe)
		if err != nil {
			g.log.Warn().Err(err).Msg("Provider insight generation failed; using rule ladder")
		} else if len(insights) > 0 {
			return insights
		}
	}
	return g.ruleBased(summary, trends, timeframe)
}

const insightSystemPrompt = "You are an expert financial advisor for Indian retail customers. " +
	"You analyse aggregated spending data and respond with actionable insights as valid JSON."

func (g *Generator) fromProvider(ctx context.Context, summary Summary, trends Trends, timeframe string) ([]domain.Insight, error) {
	payload, err := json.MarshalIndent(map[string]interface{}{
		"timeframe": timeframe,
		"summary":   summary,
		"trends":    trends,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("fromProvider: encoding payload: %w", err)
	}

	user := "Generate up to 6 spending insights for the data below. Respond with a JSON array where every " +
		"item has the keys 'title', 'description', 'recommendation', 'priority' (low, medium or high) and " +
		"'category'.\n\n" + string(payload)

	content, err := g.chat.Complete(ctx, insightSystemPrompt, user)
	if err != nil {
		return nil, err
	}
	return parseInsightContent(content), nil
}

// parseInsightContent tolerantly decodes a provider response into insights.
// Code fences are stripped, items without a title are dropped and unknown
// priorities downgrade to medium.
func parseInsightContent(content string) []domain.Insight {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		lines = append(lines, line)
	}
	cleaned := strings.TrimSpace(strings.Join(lines, "\n"))

	var raw []domain.Insight
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil
	}

	var insights []domain.Insight
	for _, in := range raw {
		if strings.TrimSpace(in.Title) == "" {
			continue
		}
		switch strings.ToLower(in.Priority) {
		case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh:
			in.Priority = strings.ToLower(in.Priority)
		default:
			in.Priority = domain.PriorityMedium
		}
		if in.Category == "" {
			in.Category = "general"
		}
		insights = append(insights, in)
		if len(insights) == maxInsights {
			break
		}
	}
	return insights
}

// ruleBased walks the fixed insight ladder over the aggregates.
func (g *Generator) ruleBased(summary Summary, trends Trends, timeframe string) []domain.Insight {
	var insights []domain.Insight

	months, ok := timeframeMonths[timeframe]
	if !ok {
		months = math.Round(float64(len(trends.Points)) / 30)
		if months < 1 {
			months = 1
		}
	}

	savingsRate := 0.0
	if summary.TotalIncome > 0 {
		savingsRate = summary.NetSavings / summary.TotalIncome * 100
	}
	avgMonthlyIncome := summary.TotalIncome / months
	avgMonthlyExpenses := summary.TotalExpenses / months
	monthlySurplus := math.Max(0, summary.NetSavings/months)

	investmentPercentage := 0.0
	if summary.TotalExpenses > 0 {
		investmentPercentage = round1(summary.CategoryBreakdown["Investments"] / summary.TotalExpenses * 100)
	}

	label := timeframeLabel(timeframe)

	if summary.TotalIncome > 0 {
		switch {
		case savingsRate < 10:
			insights = append(insights, domain.Insight{
				Title:          "Low Savings Rate Alert",
				Description:    fmt.Sprintf("Your current savings rate is %.1f%%. Financial experts recommend saving at least 20%% of your income.", savingsRate),
				Recommendation: "Consider reducing discretionary spending or finding additional income sources. Start with small cuts in entertainment and dining expenses.",
				Priority:       domain.PriorityHigh,
				Category:       "savings",
			})
		case savingsRate < 20:
			insights = append(insights, domain.Insight{
				Title:          "Moderate Savings Opportunity",
				Description:    fmt.Sprintf("You're saving %.1f%% of your income. You're on the right track but there's room for improvement.", savingsRate),
				Recommendation: "Try the 50/30/20 rule: 50% needs, 30% wants, 20% savings. Look for areas to optimize your spending.",
				Priority:       domain.PriorityMedium,
				Category:       "savings",
			})
		default:
			insights = append(insights, domain.Insight{
				Title:          "Excellent Savings Discipline",
				Description:    fmt.Sprintf("Great job! You're saving %.1f%% of your income, which exceeds the recommended 20%%.", savingsRate),
				Recommendation: "Consider investing your excess savings in mutual funds or SIPs for better long-term returns.",
				Priority:       domain.PriorityLow,
				Category:       "optimization",
			})
		}
	}

	if monthlySurplus >= 1000 {
		sipBase := monthlySurplus * 0.4
		if avgMonthlyIncome > 0 {
			sipBase = math.Min(sipBase, avgMonthlyIncome*0.25)
		}
		sipCap := roundToStep(monthlySurplus*0.8, 500)
		sipAmount := math.Min(math.Min(roundToStep(sipBase, 500), sipCap), 25000)

		emergencyTarget := avgMonthlyExpenses * g.multiplier
		monthsToEmergency := 0.0
		if sipAmount > 0 {
			monthsToEmergency = emergencyTarget / sipAmount
		}

		recommendation := "Use a high-yield savings account to build an emergency fund."
		switch {
		case monthsToEmergency > 0:
			recommendation = fmt.Sprintf(
				"Set up a ₹%s SIP into diversified mutual funds: 60%% Nifty 50/ Sensex index fund, 25%% flexi-cap fund, 15%% short-term debt. "+
					"This plan can fund your emergency corpus in about %.0f months.",
				formatINR(sipAmount), monthsToEmergency,
			)
		case emergencyTarget > 0:
			recommendation = fmt.Sprintf(
				"Build a %s-month safety net (~₹%s) in a high-yield savings account like AU Small Finance, IDFC FIRST, or State Bank's Digital FD.",
				strconv.FormatFloat(g.multiplier, 'f', -1, 64), formatINR(emergencyTarget),
			)
		}

		priority := domain.PriorityLow
		if savingsRate < 20 {
			priority = domain.PriorityMedium
		}

		insights = append(insights, domain.Insight{
			Title: fmt.Sprintf("Automate a ₹%s Monthly SIP", formatINR(sipAmount)),
			Description: fmt.Sprintf(
				"Across the %s, you retained roughly ₹%s per month after expenses. "+
					"Channeling a portion into disciplined investing will compound faster than idle cash.",
				strings.ToLower(label), formatINR(monthlySurplus),
			),
			Recommendation: recommendation,
			Priority:       priority,
			Category:       "investment",
		})

		if monthlySurplus >= 4000 {
			equityAllocation := roundToStep(monthlySurplus*0.5, 1000)
			highYieldBuffer := roundToStep(monthlySurplus*0.2, 500)

			riskNote := "You're already investing consistently - consider widening your mix."
			priority := domain.PriorityLow
			if investmentPercentage < 15 {
				riskNote = fmt.Sprintf("Your current investment allocation is light at %.1f%% of expenses.", investmentPercentage)
				priority = domain.PriorityMedium
			}

			insights = append(insights, domain.Insight{
				Title: "Grow with Low-Cost Equity",
				Description: fmt.Sprintf(
					"%s With ₹%s free each month, you can comfortably add equities without straining cash flow.",
					riskNote, formatINR(monthlySurplus),
				),
				Recommendation: fmt.Sprintf(
					"Deploy ₹%s into large-cap ETFs (Nifty 50, Sensex) via Zerodha/ Groww, keep ₹%s "+
						"in a sweep-in savings account (Yes Optima, Kotak ActivMoney) for near-term goals, and route the balance into a conservative hybrid fund.",
					formatINR(equityAllocation), formatINR(highYieldBuffer),
				),
				Priority: priority,
				Category: "investment",
			})
		}
	}

	if len(summary.TopCategories) > 0 {
		top := summary.TopCategories[0]
		switch {
		case top.Percentage > 40:
			insights = append(insights, domain.Insight{
				Title:          fmt.Sprintf("High %s Spending", top.Category),
				Description:    fmt.Sprintf("%s accounts for %.1f%% (₹%.0f) of your total expenses. This seems unusually high.", top.Category, top.Percentage, top.Amount),
				Recommendation: fmt.Sprintf("Review your %s expenses. Look for subscriptions you don't use or opportunities to find better deals.", strings.ToLower(top.Category)),
				Priority:       domain.PriorityHigh,
				Category:       "spending",
			})
		case top.Percentage > 25:
			insights = append(insights, domain.Insight{
				Title:          fmt.Sprintf("%s Budget Review", top.Category),
				Description:    fmt.Sprintf("You're spending %.1f%% (₹%.0f) on %s. This is significant but manageable.", top.Percentage, top.Amount, top.Category),
				Recommendation: fmt.Sprintf("Set a monthly budget for %s and track it weekly to avoid overspending.", strings.ToLower(top.Category)),
				Priority:       domain.PriorityMedium,
				Category:       "budgeting",
			})
		}
	}

	if trends.AverageDailySpending > 0 {
		monthlyProjection := trends.AverageDailySpending * 30
		if summary.TotalIncome > 0 && monthlyProjection > summary.TotalIncome*0.8 {
			insights = append(insights, domain.Insight{
				Title:          "High Daily Spending Alert",
				Description:    fmt.Sprintf("Your average daily spending of ₹%.0f projects to ₹%.0f monthly, which is high relative to your income.", trends.AverageDailySpending, monthlyProjection),
				Recommendation: "Try setting a daily spending limit to 60% of your income split over 30 days. Use UPI payment limits to control impulse purchases.",
				Priority:       domain.PriorityHigh,
				Category:       "budgeting",
			})
		} else {
			insights = append(insights, domain.Insight{
				Title:          "Spending Pattern Analysis",
				Description:    fmt.Sprintf("Your average daily spending is ₹%.0f, which seems reasonable for your income level.", trends.AverageDailySpending),
				Recommendation: "Maintain this spending pattern and consider automating your savings to ensure consistent wealth building.",
				Priority:       domain.PriorityLow,
				Category:       "optimization",
			})
		}
	}

	insights = append(insights, domain.Insight{
		Title:          "Digital Payment Benefits",
		Description:    "You're using UPI for most transactions, which provides excellent tracking and cashback opportunities.",
		Recommendation: "Link your UPI to a rewards credit card or use payment apps that offer cashback to maximize your benefits on routine expenses.",
		Priority:       domain.PriorityMedium,
		Category:       "optimization",
	})

	if len(insights) == 0 {
		insights = append(insights, domain.Insight{
			Title:          "Start Your Financial Journey",
			Description:    "Begin tracking your expenses consistently to unlock personalized insights and recommendations.",
			Recommendation: "Record all your transactions for the next 30 days to get meaningful financial insights and budget recommendations.",
			Priority:       domain.PriorityMedium,
			Category:       "general",
		})
	}

	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

// roundToStep floors amount to the step size, never returning less than one
// step for positive inputs.
func roundToStep(amount, step float64) float64 {
	if amount <= 0 {
		return 0
	}
	rounded := math.Floor(amount/step) * step
	return math.Max(step, rounded)
}

func timeframeLabel(timeframe string) string {
	words := strings.Split(strings.ReplaceAll(timeframe, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// formatINR renders an amount as a whole-rupee figure with thousands commas.
func formatINR(amount float64) string {
	s := strconv.FormatFloat(math.Round(amount), 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

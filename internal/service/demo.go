package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartspend/backend/internal/domain"
)

// ErrDemoReset signals that existing transactions could not be wiped before
// regeneration.
var ErrDemoReset = errors.New("could not reset user transactions")

// DemoDataRepository is the persistence surface demo generation probes before
// seeding.
type DemoDataRepository interface {
	CountByUser(ctx context.Context, userID string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// demoSeed is one blueprint entry for generated demo data.
type demoSeed struct {
	description   string
	merchant      string
	amount        float64
	txType        string
	category      string
	paymentMethod string
	offsetDays    int
}

// demoSeeds is a month of plausible activity: salary, rent, SIPs, utilities
// and discretionary spend, dated relative to the generation instant.
var demoSeeds = []demoSeed{
	{"Monthly Salary Credit", "Acme Corp Payroll", 125000, domain.TypeIncome, "Income", "Bank Transfer", 3},
	{"Flat Rent - Koramangala", "Urban Homes", 32000, domain.TypeExpense, "Rent", "UPI", 2},
	{"Systematic Investment Plan", "Groww Investments", 15000, domain.TypeExpense, "Investments", "Bank Transfer", 1},
	{"Weekend Groceries", "Big Bazaar", 5400, domain.TypeExpense, "Groceries", "UPI", 5},
	{"Daily Commute - Metro Card", "BMRCL", 2400, domain.TypeExpense, "Transportation", "UPI", 6},
	{"Friday Dinner with Friends", "Toit Brewpub", 2600, domain.TypeExpense, "Food & Dining", "Credit Card", 7},
	{"Electricity Bill - BESCOM", "BESCOM", 4200, domain.TypeExpense, "Bills & Utilities", "NetBanking", 8},
	{"Monthly Phone Bill", "Airtel", 999, domain.TypeExpense, "Bills & Utilities", "UPI", 9},
	{"Streaming Subscription Renewal", "Netflix", 649, domain.TypeExpense, "Entertainment", "Credit Card", 10},
	{"Coffee with client", "Starbucks", 450, domain.TypeExpense, "Food & Dining", "UPI", 11},
	{"Cashback Reward", "HDFC Bank", 1500, domain.TypeIncome, "Income", "Bank Transfer", 12},
	{"Health Insurance Premium", "Star Health", 7200, domain.TypeExpense, "Healthcare", "UPI", 13},
	{"Weekend Getaway Booking", "Airbnb", 9800, domain.TypeExpense, "Travel", "Credit Card", 14},
	{"Quarterly Bonus", "Acme Corp Payroll", 40000, domain.TypeIncome, "Income", "Bank Transfer", 20},
	{"Equity Top-up", "Zerodha Securities", 10000, domain.TypeExpense, "Investments", "NetBanking", 22},
}

// DemoGenerateResult is the outcome of one demo-data generation request.
type DemoGenerateResult struct {
	AlreadyPresent    bool
	ExistingCount     int64
	Created           int
	SkippedDuplicates int
	Failed            int
	TotalRequested    int
	Preview           []domain.Transaction
}

// DemoService seeds a user's account with the demo blueprint through the
// regular bulk-create flow.
type DemoService struct {
	repo         DemoDataRepository
	transactions *TransactionService
	log          zerolog.Logger
	now          func() time.Time
}

// NewDemoService wires a DemoService.
func NewDemoService(repo DemoDataRepository, transactions *TransactionService, log zerolog.Logger) *DemoService {
	return &DemoService{
		repo:         repo,
		transactions: transactions,
		log:          log,
		now:          time.Now,
	}
}

// Generate seeds the blueprint for the user. Existing data short-circuits the
// seeding unless overwrite is set, in which case the user's transactions are
// wiped first.
func (s *DemoService) Generate(ctx context.Context, userID string, overwrite bool) (DemoGenerateResult, error) {
	existing, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return DemoGenerateResult{}, fmt.Errorf("Generate: counting existing transactions: %w", err)
	}

	if existing > 0 && !overwrite {
		return DemoGenerateResult{AlreadyPresent: true, ExistingCount: existing}, nil
	}
	if existing > 0 {
		if _, err := s.repo.DeleteByUser(ctx, userID); err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("Failed wiping user transactions before regeneration")
			return DemoGenerateResult{}, fmt.Errorf("Generate: %w", ErrDemoReset)
		}
	}

	base := s.now().UTC()
	inputs := make([]domain.TransactionInput, 0, len(demoSeeds))
	for _, seed := range demoSeeds {
		date := base.AddDate(0, 0, -seed.offsetDays)
		inputs = append(inputs, domain.TransactionInput{
			UserID:        userID,
			Amount:        seed.amount,
			Category:      seed.category,
			Description:   seed.description,
			Merchant:      seed.merchant,
			Date:          &date,
			Type:          seed.txType,
			PaymentMethod: seed.paymentMethod,
		})
	}

	bulk := s.transactions.BulkCreate(ctx, inputs, true)
	return DemoGenerateResult{
		Created:           bulk.CreatedCount,
		SkippedDuplicates: bulk.SkippedDuplicates,
		Failed:            bulk.FailedCount,
		TotalRequested:    bulk.TotalRequested,
		Preview:           bulk.CreatedTransactions,
	}, nil
}

// Package service implements the application flows over the repositories,
// the statement parser and the classifier.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartspend/backend/internal/classify"
	"github.com/smartspend/backend/internal/domain"
	"github.com/smartspend/backend/internal/taxonomy"
)

const previewLimit = 10

// TransactionService handles single and bulk transaction creation plus reads.
type TransactionService struct {
	repo       TransactionRepository
	classifier CategoryClassifier
	log        zerolog.Logger
	now        func() time.Time
}

// NewTransactionService wires a TransactionService.
func NewTransactionService(repo TransactionRepository, classifier CategoryClassifier, log zerolog.Logger) *TransactionService {
	return &TransactionService{
		repo:       repo,
		classifier: classifier,
		log:        log,
		now:        time.Now,
	}
}

// buildTransaction turns caller input into a canonical record. Classification
// may override the supplied category; investment-flavoured records always
// settle on the re-derived category.
func (s *TransactionService) buildTransaction(ctx context.Context, in domain.TransactionInput) (domain.Transaction, error) {
	if in.UserID == "" {
		return domain.Transaction{}, fmt.Errorf("user_id is required")
	}
	if in.Amount <= 0 {
		return domain.Transaction{}, fmt.Errorf("amount must be positive")
	}
	if strings.TrimSpace(in.Description) == "" {
		return domain.Transaction{}, fmt.Errorf("description is required")
	}

	date := s.now().UTC()
	if in.Date != nil {
		date = in.Date.UTC()
	}
	txType := in.Type
	if txType == "" {
		txType = domain.TypeExpense
	}
	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "UPI"
	}

	aiCategory, classified := s.classifier.Classify(ctx, classify.Input{
		Description:     in.Description,
		Merchant:        in.Merchant,
		Amount:          in.Amount,
		Type:            txType,
		CurrentCategory: in.Category,
	}, true)

	candidate := aiCategory
	if candidate == "" {
		candidate = strings.TrimSpace(in.Category)
	}
	if candidate == "" {
		candidate = "Others"
	}
	normalized := taxonomy.EffectiveCategory(candidate, in.Description, in.Merchant)

	category := normalized
	if classified && !strings.EqualFold(normalized, "Investments") {
		category = aiCategory
	}

	return domain.Transaction{
		ID:            domain.NewID(),
		UserID:        in.UserID,
		Amount:        in.Amount,
		Category:      category,
		Description:   in.Description,
		Merchant:      in.Merchant,
		Date:          date,
		Type:          txType,
		PaymentMethod: paymentMethod,
		Location:      in.Location,
	}, nil
}

// Create builds and persists a single transaction.
func (s *TransactionService) Create(ctx context.Context, in domain.TransactionInput) (domain.Transaction, error) {
	tx, err := s.buildTransaction(ctx, in)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("Create: %w", err)
	}
	if err := s.repo.Insert(ctx, tx); err != nil {
		return domain.Transaction{}, fmt.Errorf("Create: persisting transaction: %w", err)
	}
	return tx, nil
}

// BulkCreate prepares every input, skips persisted duplicates when asked, and
// inserts the remainder in one batch. Preparation failures and a failed batch
// insert are reported as error strings; duplicate checks fail open.
func (s *TransactionService) BulkCreate(ctx context.Context, inputs []domain.TransactionInput, skipDuplicates bool) domain.BulkCreateResult {
	var (
		prepared []domain.Transaction
		errs     []string
	)
	for i, in := range inputs {
		tx, err := s.buildTransaction(ctx, in)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Transaction %d: %v", i+1, err))
			continue
		}
		prepared = append(prepared, tx)
	}

	skipped := 0
	toInsert := prepared
	if skipDuplicates {
		toInsert = nil
		for _, tx := range prepared {
			exists, err := s.repo.Exists(ctx, tx.UserID, tx.Amount, tx.Date, tx.Description)
			if err != nil {
				s.log.Warn().Err(err).Msg("Duplicate check failed during bulk create")
				exists = false
			}
			if exists {
				skipped++
				continue
			}
			toInsert = append(toInsert, tx)
		}
	}

	created := 0
	var inserted []domain.Transaction
	if len(toInsert) > 0 {
		if err := s.repo.InsertMany(ctx, toInsert); err != nil {
			s.log.Error().Err(err).Msg("Failed to insert bulk transactions")
			errs = append(errs, "Database error during bulk insert")
		} else {
			created = len(toInsert)
			inserted = toInsert
		}
	}

	preview := append([]domain.Transaction{}, inserted...)
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}
	failed := len(inputs) - created - skipped
	if failed < 0 {
		failed = 0
	}

	return domain.BulkCreateResult{
		TotalRequested:      len(inputs),
		CreatedCount:        created,
		SkippedDuplicates:   skipped,
		FailedCount:         failed,
		Errors:              append([]string{}, errs...),
		CreatedTransactions: preview,
	}
}

// List returns a user's transactions newest first, re-deriving each category
// at read time so stored labels that clash with broker keywords surface as
// Investments.
func (s *TransactionService) List(ctx context.Context, userID string, limit int64) ([]domain.Transaction, error) {
	txs, err := s.repo.FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	for i := range txs {
		txs[i].Category = taxonomy.EffectiveCategory(txs[i].Category, txs[i].Description, txs[i].Merchant)
	}
	return txs, nil
}

package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartspend/backend/internal/domain"
)

// PaymentRepository is the persistence surface for UPI payment intents.
type PaymentRepository interface {
	Insert(ctx context.Context, p domain.PaymentRecord) error
	FindByID(ctx context.Context, id string) (domain.PaymentRecord, error)
	UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time) error
}

// PaymentService tracks UPI payment intents and records completed payments as
// expense transactions.
type PaymentService struct {
	payments     PaymentRepository
	transactions TransactionRepository
	log          zerolog.Logger
	now          func() time.Time
}

// NewPaymentService wires a PaymentService.
func NewPaymentService(payments PaymentRepository, transactions TransactionRepository, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		payments:     payments,
		transactions: transactions,
		log:          log,
		now:          time.Now,
	}
}

// CreateIntent builds a UPI deep link for the requested payment and persists
// the intent in pending state. Intent ids are short so they fit UPI's tid
// query parameter.
func (s *PaymentService) CreateIntent(ctx context.Context, req domain.PaymentRequest) (domain.PaymentRecord, error) {
	if req.Amount <= 0 {
		return domain.PaymentRecord{}, fmt.Errorf("CreateIntent: amount must be positive")
	}
	if req.PayeeVPA == "" {
		return domain.PaymentRecord{}, fmt.Errorf("CreateIntent: payee_vpa is required")
	}

	id := domain.NewID()[:8]
	upiURL := fmt.Sprintf(
		"upi://pay?pa=%s&pn=%s&am=%s&cu=INR&tn=%s&tid=%s",
		req.PayeeVPA, req.PayeeName, strconv.FormatFloat(req.Amount, 'f', -1, 64), req.Description, id,
	)

	record := domain.PaymentRecord{
		ID:          id,
		UserID:      req.UserID,
		Amount:      req.Amount,
		PayeeName:   req.PayeeName,
		PayeeVPA:    req.PayeeVPA,
		Description: req.Description,
		Status:      "pending",
		UPIURL:      upiURL,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.payments.Insert(ctx, record); err != nil {
		return domain.PaymentRecord{}, fmt.Errorf("CreateIntent: persisting intent: %w", err)
	}
	return record, nil
}

// Callback records a status transition reported by the payment app. A success
// additionally books the payment as a UPI expense transaction.
func (s *PaymentService) Callback(ctx context.Context, id, status string) error {
	completed := s.now().UTC()
	if err := s.payments.UpdateStatus(ctx, id, status, &completed); err != nil {
		return fmt.Errorf("Callback: updating status: %w", err)
	}

	if status != "success" {
		return nil
	}

	record, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("Callback: fetching intent: %w", err)
	}

	tx := domain.Transaction{
		ID:            domain.NewID(),
		UserID:        record.UserID,
		Amount:        record.Amount,
		Category:      "Transfer",
		Description:   record.Description,
		Merchant:      record.PayeeName,
		Date:          s.now().UTC(),
		Type:          domain.TypeExpense,
		PaymentMethod: "UPI",
	}
	if err := s.transactions.Insert(ctx, tx); err != nil {
		return fmt.Errorf("Callback: recording payment transaction: %w", err)
	}
	return nil
}

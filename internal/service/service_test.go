package service

import (
	"context"
	"errors"
	"time"

	"github.com/smartspend/backend/internal/classify"
	"github.com/smartspend/backend/internal/domain"
)

// mockRepo is an in-test TransactionRepository with scriptable failure modes.
type mockRepo struct {
	existsFn      func(userID string, amount float64, date time.Time, description string) (bool, error)
	insertErr     error
	insertManyErr error
	findResult    []domain.Transaction
	findErr       error
	countResult   int64
	countErr      error
	deleteErr     error

	inserted []domain.Transaction
	deletes  int
}

func (m *mockRepo) Insert(ctx context.Context, tx domain.Transaction) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, tx)
	return nil
}

func (m *mockRepo) InsertMany(ctx context.Context, txs []domain.Transaction) error {
	if m.insertManyErr != nil {
		return m.insertManyErr
	}
	m.inserted = append(m.inserted, txs...)
	return nil
}

func (m *mockRepo) Exists(ctx context.Context, userID string, amount float64, date time.Time, description string) (bool, error) {
	if m.existsFn == nil {
		return false, nil
	}
	return m.existsFn(userID, amount, date, description)
}

func (m *mockRepo) FindByUser(ctx context.Context, userID string, limit int64) ([]domain.Transaction, error) {
	return m.findResult, m.findErr
}

func (m *mockRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	return m.countResult, m.countErr
}

func (m *mockRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deletes++
	deleted := m.countResult
	m.countResult = 0
	return deleted, nil
}

// stubClassifier returns a fixed answer for every classification request.
type stubClassifier struct {
	category string
	ok       bool
	calls    int
}

func (s *stubClassifier) Classify(ctx context.Context, in classify.Input, allowOverride bool) (string, bool) {
	s.calls++
	return s.category, s.ok
}

// noopEnricher leaves every transaction untouched.
type noopEnricher struct{}

func (noopEnricher) Enrich(ctx context.Context, txs []*domain.Transaction, allowOverride bool) map[string]string {
	return map[string]string{}
}

var errStoreDown = errors.New("store down")

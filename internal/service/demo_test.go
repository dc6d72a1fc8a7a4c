package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartspend/backend/internal/domain"
)

func newDemoService(repo *mockRepo) *DemoService {
	transactions := NewTransactionService(repo, &stubClassifier{}, zerolog.Nop())
	svc := NewDemoService(repo, transactions, zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestDemoGenerateSeedsFreshUser(t *testing.T) {
	repo := &mockRepo{}
	svc := newDemoService(repo)

	result, err := svc.Generate(context.Background(), "user-1", false)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if result.AlreadyPresent {
		t.Error("fresh user reported as already seeded")
	}
	if result.Created != len(demoSeeds) || result.TotalRequested != len(demoSeeds) {
		t.Errorf("created = %d, requested = %d, want %d each", result.Created, result.TotalRequested, len(demoSeeds))
	}
	if len(result.Preview) != 10 {
		t.Errorf("preview = %d, want capped at 10", len(result.Preview))
	}
	if len(repo.inserted) != len(demoSeeds) {
		t.Fatalf("persisted %d transactions, want %d", len(repo.inserted), len(demoSeeds))
	}

	var salary *domain.Transaction
	for i := range repo.inserted {
		if repo.inserted[i].Description == "Monthly Salary Credit" {
			salary = &repo.inserted[i]
		}
	}
	if salary == nil {
		t.Fatal("no salary entry persisted")
	}
	if salary.Type != domain.TypeIncome || salary.Amount != 125000 {
		t.Errorf("salary = %+v", salary)
	}
	if want := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC); !salary.Date.Equal(want) {
		t.Errorf("salary date = %v, want %v (3 days back)", salary.Date, want)
	}
}

func TestDemoGenerateSkipsSeededUser(t *testing.T) {
	repo := &mockRepo{countResult: 42}
	svc := newDemoService(repo)

	result, err := svc.Generate(context.Background(), "user-1", false)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !result.AlreadyPresent || result.ExistingCount != 42 {
		t.Errorf("result = %+v, want already-present with 42 existing", result)
	}
	if len(repo.inserted) != 0 || repo.deletes != 0 {
		t.Errorf("inserted = %d, deletes = %d, want no writes", len(repo.inserted), repo.deletes)
	}
}

func TestDemoGenerateOverwriteWipesFirst(t *testing.T) {
	repo := &mockRepo{countResult: 42}
	svc := newDemoService(repo)

	result, err := svc.Generate(context.Background(), "user-1", true)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if repo.deletes != 1 {
		t.Errorf("deletes = %d, want 1", repo.deletes)
	}
	if result.Created != len(demoSeeds) {
		t.Errorf("created = %d, want %d", result.Created, len(demoSeeds))
	}
}

func TestDemoGenerateCountFailure(t *testing.T) {
	repo := &mockRepo{countErr: errStoreDown}
	svc := newDemoService(repo)

	if _, err := svc.Generate(context.Background(), "user-1", false); !errors.Is(err, errStoreDown) {
		t.Errorf("err = %v, want wrapped store error", err)
	}
}

func TestDemoGenerateResetFailure(t *testing.T) {
	repo := &mockRepo{countResult: 3, deleteErr: errStoreDown}
	svc := newDemoService(repo)

	if _, err := svc.Generate(context.Background(), "user-1", true); !errors.Is(err, ErrDemoReset) {
		t.Errorf("err = %v, want ErrDemoReset", err)
	}
	if len(repo.inserted) != 0 {
		t.Errorf("inserted = %d, want no seeding after failed reset", len(repo.inserted))
	}
}

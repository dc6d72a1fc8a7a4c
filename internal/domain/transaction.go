package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transaction types. Amounts are always non-negative magnitudes; direction is
// carried exclusively by the type.
const (
	TypeExpense = "expense"
	TypeIncome  = "income"
)

// Transaction is the canonical financial-transaction record. It is treated as
// an immutable value: category refinement goes through WithCategory rather
// than mutating a shared alias.
type Transaction struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Amount        float64   `json:"amount"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Merchant      string    `json:"merchant"`
	Date          time.Time `json:"date"`
	Type          string    `json:"type"`
	PaymentMethod string    `json:"payment_method"`
	Location      string    `json:"location,omitempty"`
}

// NewID returns a fresh opaque transaction identifier.
func NewID() string {
	return uuid.NewString()
}

// WithCategory returns a copy of the transaction with the category replaced.
func (t Transaction) WithCategory(category string) Transaction {
	t.Category = category
	return t
}

// TransactionInput is the caller-supplied shape for creating a transaction.
// Zero-value fields receive defaults when the canonical record is built.
type TransactionInput struct {
	UserID        string     `json:"user_id"`
	Amount        float64    `json:"amount"`
	Category      string     `json:"category"`
	Description   string     `json:"description"`
	Merchant      string     `json:"merchant"`
	Date          *time.Time `json:"date,omitempty"`
	Type          string     `json:"type"`
	PaymentMethod string     `json:"payment_method"`
	Location      string     `json:"location,omitempty"`
}

// ImportResult is the outcome of one statement import pass.
type ImportResult struct {
	TotalRows            int           `json:"total_rows"`
	SuccessfulImports    int           `json:"successful_imports"`
	FailedImports        int           `json:"failed_imports"`
	DuplicateCount       int           `json:"duplicate_count"`
	Errors               []string      `json:"errors"`
	ImportedTransactions []Transaction `json:"imported_transactions"`
}

// BulkCreateResult is the outcome of a bulk transaction create.
type BulkCreateResult struct {
	TotalRequested      int           `json:"total_requested"`
	CreatedCount        int           `json:"created_count"`
	SkippedDuplicates   int           `json:"skipped_duplicates"`
	FailedCount         int           `json:"failed_count"`
	Errors              []string      `json:"errors"`
	CreatedTransactions []Transaction `json:"created_transactions"`
}

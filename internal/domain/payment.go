package domain

import "time"

// PaymentRequest is the caller-supplied shape for creating a UPI payment intent.
type PaymentRequest struct {
	Amount      float64 `json:"amount"`
	PayeeName   string  `json:"payee_name"`
	PayeeVPA    string  `json:"payee_vpa"`
	Description string  `json:"description"`
	UserID      string  `json:"user_id"`
}

// PaymentRecord tracks one UPI payment intent through its lifecycle.
type PaymentRecord struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Amount      float64    `json:"amount"`
	PayeeName   string     `json:"payee_name"`
	PayeeVPA    string     `json:"payee_vpa"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	UPIURL      string     `json:"upi_url"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

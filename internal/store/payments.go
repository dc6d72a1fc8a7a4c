package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/smartspend/backend/internal/domain"
)

const paymentsCollection = "payment_requests"

// ErrNotFound is returned when a looked-up document does not exist.
var ErrNotFound = errors.New("store: not found")

type paymentDoc struct {
	ID          string  `bson:"id"`
	UserID      string  `bson:"user_id"`
	Amount      float64 `bson:"amount"`
	PayeeName   string  `bson:"payee_name"`
	PayeeVPA    string  `bson:"payee_vpa"`
	Description string  `bson:"description"`
	Status      string  `bson:"status"`
	UPIURL      string  `bson:"upi_url"`
	CreatedAt   string  `bson:"created_at"`
	CompletedAt string  `bson:"completed_at,omitempty"`
}

func toPaymentDoc(p domain.PaymentRecord) paymentDoc {
	doc := paymentDoc{
		ID:          p.ID,
		UserID:      p.UserID,
		Amount:      p.Amount,
		PayeeName:   p.PayeeName,
		PayeeVPA:    p.PayeeVPA,
		Description: p.Description,
		Status:      p.Status,
		UPIURL:      p.UPIURL,
		CreatedAt:   encodeTime(p.CreatedAt),
	}
	if p.CompletedAt != nil {
		doc.CompletedAt = encodeTime(*p.CompletedAt)
	}
	return doc
}

func (d paymentDoc) toDomain() domain.PaymentRecord {
	p := domain.PaymentRecord{
		ID:          d.ID,
		UserID:      d.UserID,
		Amount:      d.Amount,
		PayeeName:   d.PayeeName,
		PayeeVPA:    d.PayeeVPA,
		Description: d.Description,
		Status:      d.Status,
		UPIURL:      d.UPIURL,
		CreatedAt:   decodeTime(d.CreatedAt),
	}
	if d.CompletedAt != "" {
		completed := decodeTime(d.CompletedAt)
		p.CompletedAt = &completed
	}
	return p
}

// PaymentStore persists UPI payment intents.
type PaymentStore struct {
	coll *mongo.Collection
}

// NewPaymentStore creates a PaymentStore over the given database.
func NewPaymentStore(client *mongo.Client, dbName string) *PaymentStore {
	return &PaymentStore{coll: client.Database(dbName).Collection(paymentsCollection)}
}

// Insert persists a new payment intent.
func (s *PaymentStore) Insert(ctx context.Context, p domain.PaymentRecord) error {
	if _, err := s.coll.InsertOne(ctx, toPaymentDoc(p)); err != nil {
		return fmt.Errorf("Insert: inserting payment: %w", err)
	}
	return nil
}

// FindByID looks up a payment intent by id.
func (s *PaymentStore) FindByID(ctx context.Context, id string) (domain.PaymentRecord, error) {
	var doc paymentDoc
	err := s.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.PaymentRecord{}, ErrNotFound
	}
	if err != nil {
		return domain.PaymentRecord{}, fmt.Errorf("FindByID: querying payment: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateStatus records a status transition, stamping completion time when
// completedAt is non-nil.
func (s *PaymentStore) UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time) error {
	set := bson.M{"status": status}
	if completedAt != nil {
		set["completed_at"] = encodeTime(*completedAt)
	}
	result, err := s.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("UpdateStatus: updating payment: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

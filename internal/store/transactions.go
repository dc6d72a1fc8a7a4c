package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smartspend/backend/internal/domain"
)

const transactionsCollection = "transactions"

// transactionDoc is the persisted shape of a domain.Transaction.
type transactionDoc struct {
	ID            string  `bson:"id"`
	UserID        string  `bson:"user_id"`
	Amount        float64 `bson:"amount"`
	Category      string  `bson:"category"`
	Description   string  `bson:"description"`
	Merchant      string  `bson:"merchant"`
	Date          string  `bson:"date"`
	Type          string  `bson:"type"`
	PaymentMethod string  `bson:"payment_method"`
	Location      string  `bson:"location,omitempty"`
}

func toTransactionDoc(tx domain.Transaction) transactionDoc {
	return transactionDoc{
		ID:            tx.ID,
		UserID:        tx.UserID,
		Amount:        tx.Amount,
		Category:      tx.Category,
		Description:   tx.Description,
		Merchant:      tx.Merchant,
		Date:          encodeTime(tx.Date),
		Type:          tx.Type,
		PaymentMethod: tx.PaymentMethod,
		Location:      tx.Location,
	}
}

func (d transactionDoc) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:            d.ID,
		UserID:        d.UserID,
		Amount:        d.Amount,
		Category:      d.Category,
		Description:   d.Description,
		Merchant:      d.Merchant,
		Date:          decodeTime(d.Date),
		Type:          d.Type,
		PaymentMethod: d.PaymentMethod,
		Location:      d.Location,
	}
}

// TransactionStore persists transactions in the transactions collection.
type TransactionStore struct {
	coll *mongo.Collection
}

// NewTransactionStore creates a TransactionStore over the given database.
func NewTransactionStore(client *mongo.Client, dbName string) *TransactionStore {
	return &TransactionStore{coll: client.Database(dbName).Collection(transactionsCollection)}
}

// Insert persists a single transaction.
func (s *TransactionStore) Insert(ctx context.Context, tx domain.Transaction) error {
	if _, err := s.coll.InsertOne(ctx, toTransactionDoc(tx)); err != nil {
		return fmt.Errorf("Insert: inserting transaction: %w", err)
	}
	return nil
}

// InsertMany persists a batch of transactions in one round trip.
func (s *TransactionStore) InsertMany(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	docs := make([]interface{}, len(txs))
	for i, tx := range txs {
		docs[i] = toTransactionDoc(tx)
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("InsertMany: inserting %d transactions: %w", len(txs), err)
	}
	return nil
}

// Exists reports whether a transaction with the same user, amount, date and
// description is already persisted. The date is compared against its encoded
// form, matching how documents are written.
func (s *TransactionStore) Exists(ctx context.Context, userID string, amount float64, date time.Time, description string) (bool, error) {
	filter := bson.M{
		"user_id":     userID,
		"amount":      amount,
		"date":        encodeTime(date),
		"description": description,
	}
	n, err := s.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("Exists: counting documents: %w", err)
	}
	return n > 0, nil
}

// FindByUser returns a user's transactions, newest first, capped at limit.
func (s *TransactionStore) FindByUser(ctx context.Context, userID string, limit int64) ([]domain.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("FindByUser: querying transactions: %w", err)
	}
	return decodeTransactions(ctx, cursor)
}

// FindInWindow returns a user's transactions dated at or after start.
// RFC 3339 encoding makes the range filter a string comparison.
func (s *TransactionStore) FindInWindow(ctx context.Context, userID string, start time.Time) ([]domain.Transaction, error) {
	filter := bson.M{
		"user_id": userID,
		"date":    bson.M{"$gte": encodeTime(start)},
	}
	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("FindInWindow: querying transactions: %w", err)
	}
	return decodeTransactions(ctx, cursor)
}

// DeleteByUser removes every transaction belonging to the user and reports
// how many were deleted.
func (s *TransactionStore) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("DeleteByUser: deleting transactions: %w", err)
	}
	return res.DeletedCount, nil
}

// CountByUser returns the number of persisted transactions for a user.
func (s *TransactionStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("CountByUser: counting documents: %w", err)
	}
	return n, nil
}

func decodeTransactions(ctx context.Context, cursor *mongo.Cursor) ([]domain.Transaction, error) {
	defer cursor.Close(ctx)

	var txs []domain.Transaction
	for cursor.Next(ctx) {
		var doc transactionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decodeTransactions: decoding document: %w", err)
		}
		txs = append(txs, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("decodeTransactions: cursor: %w", err)
	}
	return txs, nil
}

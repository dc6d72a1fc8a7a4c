package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smartspend/backend/internal/domain"
)

const insightsCollection = "spending_insights"

type insightDoc struct {
	ID             string `bson:"id"`
	UserID         string `bson:"user_id"`
	InsightType    string `bson:"insight_type"`
	Timeframe      string `bson:"timeframe"`
	Title          string `bson:"title"`
	Description    string `bson:"description"`
	Recommendation string `bson:"recommendation"`
	Priority       string `bson:"priority"`
	CreatedAt      string `bson:"created_at"`
}

func toInsightDoc(in domain.StoredInsight) insightDoc {
	return insightDoc{
		ID:             in.ID,
		UserID:         in.UserID,
		InsightType:    in.InsightType,
		Timeframe:      in.Timeframe,
		Title:          in.Title,
		Description:    in.Description,
		Recommendation: in.Recommendation,
		Priority:       in.Priority,
		CreatedAt:      encodeTime(in.CreatedAt),
	}
}

func (d insightDoc) toDomain() domain.StoredInsight {
	return domain.StoredInsight{
		ID:             d.ID,
		UserID:         d.UserID,
		InsightType:    d.InsightType,
		Timeframe:      d.Timeframe,
		Title:          d.Title,
		Description:    d.Description,
		Recommendation: d.Recommendation,
		Priority:       d.Priority,
		CreatedAt:      decodeTime(d.CreatedAt),
	}
}

// InsightStore persists generated insights, one current set per user.
type InsightStore struct {
	coll *mongo.Collection
}

// NewInsightStore creates an InsightStore over the given database.
func NewInsightStore(client *mongo.Client, dbName string) *InsightStore {
	return &InsightStore{coll: client.Database(dbName).Collection(insightsCollection)}
}

// Replace swaps a user's stored insights for the given set.
func (s *InsightStore) Replace(ctx context.Context, userID string, insights []domain.StoredInsight) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("Replace: clearing insights: %w", err)
	}
	if len(insights) == 0 {
		return nil
	}
	docs := make([]interface{}, len(insights))
	for i, in := range insights {
		docs[i] = toInsightDoc(in)
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("Replace: inserting %d insights: %w", len(insights), err)
	}
	return nil
}

// ListByUser returns a user's stored insights, newest first, capped at limit.
func (s *InsightStore) ListByUser(ctx context.Context, userID string, limit int64) ([]domain.StoredInsight, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: querying insights: %w", err)
	}
	defer cursor.Close(ctx)

	var insights []domain.StoredInsight
	for cursor.Next(ctx) {
		var doc insightDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("ListByUser: decoding insight: %w", err)
		}
		insights = append(insights, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("ListByUser: cursor: %w", err)
	}
	return insights, nil
}

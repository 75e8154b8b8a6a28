package promo

import (
	"context"
	"fmt"
	"time"

	"github.com/nabilnabti/tapeat-cart/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoFeed struct {
	collection *mongo.Collection
}

func NewMongoFeed(db *mongo.Database) Feed {
	return &mongoFeed{
		collection: db.Collection("promotions"),
	}
}

// ActivePromotions returns promotions for the restaurant that are active and
// inside their date window right now. Document order is preserved; it is the
// tie-break when several promotions reference the same product.
func (f *mongoFeed) ActivePromotions(ctx context.Context, restaurantID string) ([]domain.Promotion, error) {
	now := time.Now()
	filter := bson.M{
		"restaurant_id": restaurantID,
		"status":        domain.PromotionActive,
		"$and": []bson.M{
			{"$or": []bson.M{
				{"starts_at": bson.M{"$exists": false}},
				{"starts_at": nil},
				{"starts_at": bson.M{"$lte": now}},
			}},
			{"$or": []bson.M{
				{"ends_at": bson.M{"$exists": false}},
				{"ends_at": nil},
				{"ends_at": bson.M{"$gte": now}},
			}},
		},
	}

	cursor, err := f.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query promotions: %w", err)
	}
	defer cursor.Close(ctx)

	var promos []domain.Promotion
	if err := cursor.All(ctx, &promos); err != nil {
		return nil, fmt.Errorf("failed to decode promotions: %w", err)
	}

	return promos, nil
}

func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

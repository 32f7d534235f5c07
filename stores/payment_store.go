package stores

import (
	"context"
	"errors"

	"cityfix-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PaymentStore is the insert-only payment ledger. The unique index on
// transactionId (see models.EnsurePaymentIndex) is the idempotency
// guarantee: Insert surfaces a duplicate-key rejection as ErrDuplicate so
// callers can treat a concurrent replay as already processed.
type PaymentStore interface {
	Insert(ctx context.Context, record *models.PaymentRecord) error
	FindByTransactionID(ctx context.Context, transactionID string) (*models.PaymentRecord, error)
	ListByEmail(ctx context.Context, email string) ([]models.PaymentRecord, error)
}

type mongoPaymentStore struct {
	collection *mongo.Collection
}

// NewPaymentStore builds the Mongo-backed payment ledger.
func NewPaymentStore(collection *mongo.Collection) PaymentStore {
	return &mongoPaymentStore{collection: collection}
}

func (s *mongoPaymentStore) Insert(ctx context.Context, record *models.PaymentRecord) error {
	_, err := s.collection.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *mongoPaymentStore) FindByTransactionID(ctx context.Context, transactionID string) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	err := s.collection.FindOne(ctx, bson.M{"transactionId": transactionID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *mongoPaymentStore) ListByEmail(ctx context.Context, email string) ([]models.PaymentRecord, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "paidAt", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{"email": email}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.PaymentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

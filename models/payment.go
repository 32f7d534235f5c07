package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Payment product labels.
const (
	ProductBoost        = "Issue Boost"
	ProductSubscription = "Premium Subscription"
)

// PaymentRecord is an immutable ledger entry for a completed gateway
// transaction. TransactionID is the gateway's payment-intent id and is
// unique; the index created by EnsurePaymentIndex is what makes payment
// confirmation idempotent under concurrent replays.
type PaymentRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Amount        float64            `bson:"amount" json:"amount"`
	Currency      string             `bson:"currency" json:"currency"`
	Email         string             `bson:"email" json:"email"`
	Product       string             `bson:"product" json:"product"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	Status        string             `bson:"status" json:"status"`
	IssueID       string             `bson:"issueId,omitempty" json:"issueId,omitempty"`
	TrackingID    string             `bson:"trackingId,omitempty" json:"trackingId,omitempty"`
	PaidAt        time.Time          `bson:"paidAt" json:"paidAt"`
}

// EnsurePaymentIndex creates the unique index on transactionId.
func EnsurePaymentIndex(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "transactionId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}

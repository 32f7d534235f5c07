package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// Account roles.
const (
	RoleUser  = "user"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// Account statuses.
const (
	AccountActive   = "active"
	AccountBlocked  = "blocked"
	AccountInactive = "inactive"
)

// User is a citizen account. Registration is idempotent: registering an
// email that already exists is a no-op success.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Photo        string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Password     string             `bson:"password,omitempty" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Status       string             `bson:"status" json:"status"`
	IsPremium    bool               `bson:"isPremium" json:"isPremium"`
	PremiumSince *time.Time         `bson:"premiumSince,omitempty" json:"premiumSince,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Staff is a staff or admin account provisioned by an admin.
type Staff struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Photo     string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Password  string             `bson:"password,omitempty" json:"-"`
	Role      string             `bson:"role" json:"role"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// EnsureUserIndex creates the unique index on email. Registration relies on
// it to reject a concurrent duplicate account; a collection for citizens and
// one for staff each get their own.
func EnsureUserIndex(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate))
	return err == nil
}

func (s *Staff) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.Password = string(hashed)
	return nil
}

func (s *Staff) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(s.Password), []byte(candidate))
	return err == nil
}

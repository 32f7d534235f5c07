package stores

import (
	"context"
	"errors"
	"time"

	"cityfix-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore owns citizen and staff accounts and is the actor resolver for
// every protected operation.
type UserStore interface {
	Resolve(ctx context.Context, email string) (models.Actor, error)
	Register(ctx context.Context, user *models.User) (bool, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error)
	UpdateProfile(ctx context.Context, email, name, photo string) error
	SetUserStatus(ctx context.Context, email, status string) error
	SetUserRole(ctx context.Context, email, role string) error
	SetPremium(ctx context.Context, email string, since time.Time) error
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateStaff(ctx context.Context, staff *models.Staff) error
	ListStaff(ctx context.Context) ([]models.Staff, error)
	UpdateStaff(ctx context.Context, email string, fields map[string]interface{}) error
	DeleteStaff(ctx context.Context, email string) error
}

type mongoUserStore struct {
	users *mongo.Collection
	staff *mongo.Collection
}

// NewUserStore builds the Mongo-backed user/staff store.
func NewUserStore(users, staff *mongo.Collection) UserStore {
	return &mongoUserStore{users: users, staff: staff}
}

// Resolve classifies a verified email into exactly one actor variant. A
// missing record is RoleUnknownActor, not an error: "unknown" is a distinct
// outcome from "forbidden" and the caller decides what to do with it.
func (s *mongoUserStore) Resolve(ctx context.Context, email string) (models.Actor, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == nil {
		role := models.RoleCitizenActor
		if user.Role == models.RoleAdmin {
			role = models.RoleAdminActor
		}
		return models.Actor{
			Role:    role,
			Email:   user.Email,
			Name:    user.Name,
			Active:  user.Status == models.AccountActive,
			Premium: user.IsPremium,
		}, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Actor{}, err
	}

	var member models.Staff
	err = s.staff.FindOne(ctx, bson.M{"email": email}).Decode(&member)
	if err == nil {
		role := models.RoleStaffActor
		if member.Role == models.RoleAdmin {
			role = models.RoleAdminActor
		}
		return models.Actor{
			Role:   role,
			Email:  member.Email,
			Name:   member.Name,
			Active: member.Status == models.AccountActive,
		}, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Actor{}, err
	}

	return models.Actor{Role: models.RoleUnknownActor, Email: email}, nil
}

// Register inserts a new citizen account. Registering an existing email is
// a no-op; the bool reports whether a record was actually created.
func (s *mongoUserStore) Register(ctx context.Context, user *models.User) (bool, error) {
	count, err := s.users.CountDocuments(ctx, bson.M{"email": user.Email})
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	_, err = s.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *mongoUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *mongoUserStore) GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error) {
	var member models.Staff
	err := s.staff.FindOne(ctx, bson.M{"email": email}).Decode(&member)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (s *mongoUserStore) UpdateProfile(ctx context.Context, email, name, photo string) error {
	set := bson.M{"updatedAt": time.Now()}
	if name != "" {
		set["name"] = name
	}
	if photo != "" {
		set["photo"] = photo
	}

	result, err := s.users.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoUserStore) SetUserStatus(ctx context.Context, email, status string) error {
	return s.setUserField(ctx, email, bson.M{"status": status})
}

func (s *mongoUserStore) SetUserRole(ctx context.Context, email, role string) error {
	return s.setUserField(ctx, email, bson.M{"role": role})
}

func (s *mongoUserStore) SetPremium(ctx context.Context, email string, since time.Time) error {
	return s.setUserField(ctx, email, bson.M{"isPremium": true, "premiumSince": since})
}

func (s *mongoUserStore) setUserField(ctx context.Context, email string, set bson.M) error {
	set["updatedAt"] = time.Now()
	result, err := s.users.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoUserStore) ListUsers(ctx context.Context) ([]models.User, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.users.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *mongoUserStore) CreateStaff(ctx context.Context, staff *models.Staff) error {
	count, err := s.staff.CountDocuments(ctx, bson.M{"email": staff.Email})
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}

	_, err = s.staff.InsertOne(ctx, staff)
	return err
}

func (s *mongoUserStore) ListStaff(ctx context.Context) ([]models.Staff, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.staff.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []models.Staff
	if err := cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (s *mongoUserStore) UpdateStaff(ctx context.Context, email string, fields map[string]interface{}) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}

	result, err := s.staff.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoUserStore) DeleteStaff(ctx context.Context, email string) error {
	result, err := s.staff.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

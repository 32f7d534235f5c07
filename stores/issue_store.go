package stores

import (
	"context"
	"errors"
	"time"

	"cityfix-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IssueFilters narrows a listing. Zero values mean "no filter".
type IssueFilters struct {
	Search        string
	Status        string
	Priority      string
	Category      string
	ReporterEmail string
	AssignedEmail string
}

// Page is a clamped pagination request.
type Page struct {
	Page  int
	Limit int
}

// Clamp normalizes page/limit to positive values with the service defaults.
func (p Page) Clamp() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 10
	}
	return p
}

// IssuePage is one page of a listing plus pagination bookkeeping.
type IssuePage struct {
	Issues      []models.Issue `json:"issues"`
	TotalIssues int64          `json:"totalIssues"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
}

// IssueStore owns issue persistence. Preconditioned writes (assign, reject,
// upvote) are single conditional updates: the filter encodes the
// precondition so concurrent writers cannot both pass it.
type IssueStore interface {
	Insert(ctx context.Context, issue *models.Issue) (primitive.ObjectID, error)
	List(ctx context.Context, filters IssueFilters, page Page, byPriority bool) (*IssuePage, error)
	GetByID(ctx context.Context, id string) (*models.Issue, error)
	CountByReporter(ctx context.Context, email string) (int64, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	UpdateStatus(ctx context.Context, id string, status models.IssueStatus, entry models.TimelineEntry) error
	AssignStaff(ctx context.Context, id string, ref models.StaffRef, entry models.TimelineEntry) error
	Reject(ctx context.Context, id string, entry models.TimelineEntry) error
	AddUpvote(ctx context.Context, id string, email string) (int, error)
	MarkBoosted(ctx context.Context, id string, entry models.TimelineEntry) error
	Delete(ctx context.Context, id string) error
}

type mongoIssueStore struct {
	collection *mongo.Collection
}

// NewIssueStore builds the Mongo-backed issue store.
func NewIssueStore(collection *mongo.Collection) IssueStore {
	return &mongoIssueStore{collection: collection}
}

func (s *mongoIssueStore) Insert(ctx context.Context, issue *models.Issue) (primitive.ObjectID, error) {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	_, err := s.collection.InsertOne(ctx, issue)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return issue.ID, nil
}

func buildFilter(f IssueFilters) bson.M {
	filter := bson.M{}

	if f.Search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": f.Search, "$options": "i"}},
			{"description": bson.M{"$regex": f.Search, "$options": "i"}},
			{"location": bson.M{"$regex": f.Search, "$options": "i"}},
		}
	}
	if f.Status != "" && f.Status != "all" {
		filter["status"] = f.Status
	}
	if f.Priority != "" && f.Priority != "all" {
		filter["priority"] = f.Priority
	}
	if f.Category != "" && f.Category != "all" {
		filter["category"] = f.Category
	}
	if f.ReporterEmail != "" {
		filter["reporterEmail"] = f.ReporterEmail
	}
	if f.AssignedEmail != "" {
		filter["assignedTo.email"] = f.AssignedEmail
	}

	return filter
}

func (s *mongoIssueStore) List(ctx context.Context, filters IssueFilters, page Page, byPriority bool) (*IssuePage, error) {
	page = page.Clamp()
	filter := buildFilter(filters)

	totalCount, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	sortOptions := bson.D{{Key: "createdAt", Value: -1}}
	if byPriority {
		// High sorts before Normal; newest first within a priority band.
		sortOptions = bson.D{{Key: "priority", Value: 1}, {Key: "createdAt", Value: -1}}
	}

	skip := (page.Page - 1) * page.Limit
	findOptions := options.Find().
		SetSort(sortOptions).
		SetSkip(int64(skip)).
		SetLimit(int64(page.Limit))

	cursor, err := s.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	issues := make([]models.Issue, 0, page.Limit)
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	for i := range issues {
		issues[i].Upvotes = len(issues[i].UpvotedBy)
	}

	totalPages := int((totalCount + int64(page.Limit) - 1) / int64(page.Limit))

	return &IssuePage{
		Issues:      issues,
		TotalIssues: totalCount,
		CurrentPage: page.Page,
		TotalPages:  totalPages,
	}, nil
}

func (s *mongoIssueStore) GetByID(ctx context.Context, id string) (*models.Issue, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var issue models.Issue
	err = s.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&issue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	issue.Upvotes = len(issue.UpvotedBy)

	return &issue, nil
}

func (s *mongoIssueStore) CountByReporter(ctx context.Context, email string) (int64, error) {
	return s.collection.CountDocuments(ctx, bson.M{"reporterEmail": email})
}

// UpdateFields applies a generic field edit. Deliberately does not touch the
// timeline or updatedAt; only status-bearing updates do.
func (s *mongoIssueStore) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoIssueStore) UpdateStatus(ctx context.Context, id string, status models.IssueStatus, entry models.TimelineEntry) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	update := bson.M{
		"$set":  bson.M{"status": status, "updatedAt": time.Now()},
		"$push": bson.M{"timeline": entry},
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoIssueStore) AssignStaff(ctx context.Context, id string, ref models.StaffRef, entry models.TimelineEntry) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	filter := bson.M{"_id": objectID, "assignedTo": nil}
	update := bson.M{
		"$set":  bson.M{"assignedTo": ref, "updatedAt": time.Now()},
		"$push": bson.M{"timeline": entry},
	}

	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return s.preconditionFailure(ctx, objectID)
	}
	return nil
}

func (s *mongoIssueStore) Reject(ctx context.Context, id string, entry models.TimelineEntry) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	filter := bson.M{"_id": objectID, "status": models.StatusPending}
	update := bson.M{
		"$set": bson.M{
			"status":     models.StatusRejected,
			"assignedTo": nil,
			"updatedAt":  time.Now(),
		},
		"$push": bson.M{"timeline": entry},
	}

	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return s.preconditionFailure(ctx, objectID)
	}
	return nil
}

func (s *mongoIssueStore) AddUpvote(ctx context.Context, id string, email string) (int, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrInvalidID
	}

	filter := bson.M{"_id": objectID, "upvotedBy": bson.M{"$ne": email}}
	update := bson.M{"$push": bson.M{"upvotedBy": email}}

	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	if result.MatchedCount == 0 {
		if err := s.preconditionFailure(ctx, objectID); err != nil {
			return 0, err
		}
	}

	// Read the count back rather than computing it locally.
	var issue models.Issue
	if err := s.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&issue); err != nil {
		return 0, err
	}
	return len(issue.UpvotedBy), nil
}

func (s *mongoIssueStore) MarkBoosted(ctx context.Context, id string, entry models.TimelineEntry) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	update := bson.M{
		"$set": bson.M{
			"paymentStatus": models.PaymentPaid,
			"priority":      models.PriorityHigh,
			"updatedAt":     time.Now(),
		},
		"$push": bson.M{"timeline": entry},
	}

	// Only an unboosted issue can be escalated; a second concurrent
	// confirmation must not push a second timeline entry.
	filter := bson.M{"_id": objectID, "paymentStatus": bson.M{"$ne": models.PaymentPaid}}
	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return s.preconditionFailure(ctx, objectID)
	}
	return nil
}

func (s *mongoIssueStore) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// preconditionFailure disambiguates a conditional update that matched
// nothing: the document is either absent or present with the precondition
// unmet.
func (s *mongoIssueStore) preconditionFailure(ctx context.Context, id primitive.ObjectID) error {
	count, err := s.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

package stores

import (
	"context"
	"time"

	"cityfix-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CitizenSummary is the citizen dashboard read model.
type CitizenSummary struct {
	IssuesByStatus map[string]int64 `json:"issuesByStatus"`
	TotalIssues    int64            `json:"totalIssues"`
	PaymentTotal   float64          `json:"paymentTotal"`
	PaymentCount   int64            `json:"paymentCount"`
}

// StaffSummary is the staff dashboard read model. AssignedToday holds the
// issues whose STAFF_ASSIGNED timeline entry falls within the current UTC
// calendar day.
type StaffSummary struct {
	AssignedByStatus map[string]int64 `json:"assignedByStatus"`
	TotalAssigned    int64            `json:"totalAssigned"`
	AssignedToday    []models.Issue   `json:"assignedToday"`
}

// AdminSummary is the admin dashboard read model.
type AdminSummary struct {
	IssuesByStatus map[string]int64       `json:"issuesByStatus"`
	TotalIssues    int64                  `json:"totalIssues"`
	PaymentTotal   float64                `json:"paymentTotal"`
	PaymentCount   int64                  `json:"paymentCount"`
	RecentIssues   []models.Issue         `json:"recentIssues"`
	RecentPayments []models.PaymentRecord `json:"recentPayments"`
	RecentUsers    []models.User          `json:"recentUsers"`
}

// DashboardStore serves the role-scoped aggregation read models. Pure
// reads; counts reflect whatever is persisted at query time.
type DashboardStore interface {
	CitizenSummary(ctx context.Context, email string) (*CitizenSummary, error)
	StaffSummary(ctx context.Context, email string, now time.Time) (*StaffSummary, error)
	AdminSummary(ctx context.Context) (*AdminSummary, error)
}

type mongoDashboardStore struct {
	issues   *mongo.Collection
	payments *mongo.Collection
	users    *mongo.Collection
}

// NewDashboardStore builds the Mongo-backed dashboard aggregator.
func NewDashboardStore(issues, payments, users *mongo.Collection) DashboardStore {
	return &mongoDashboardStore{issues: issues, payments: payments, users: users}
}

func (s *mongoDashboardStore) CitizenSummary(ctx context.Context, email string) (*CitizenSummary, error) {
	byStatus, total, err := s.countByStatus(ctx, bson.M{"reporterEmail": email})
	if err != nil {
		return nil, err
	}

	paymentTotal, paymentCount, err := s.paymentTotals(ctx, bson.M{"email": email})
	if err != nil {
		return nil, err
	}

	return &CitizenSummary{
		IssuesByStatus: byStatus,
		TotalIssues:    total,
		PaymentTotal:   paymentTotal,
		PaymentCount:   paymentCount,
	}, nil
}

func (s *mongoDashboardStore) StaffSummary(ctx context.Context, email string, now time.Time) (*StaffSummary, error) {
	byStatus, total, err := s.countByStatus(ctx, bson.M{"assignedTo.email": email})
	if err != nil {
		return nil, err
	}

	dayStart := now.UTC().Truncate(24 * time.Hour)
	filter := bson.M{
		"assignedTo.email": email,
		"timeline": bson.M{"$elemMatch": bson.M{
			"action":    models.ActionStaffAssigned,
			"timestamp": bson.M{"$gte": dayStart},
		}},
	}

	cursor, err := s.issues.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	assignedToday := make([]models.Issue, 0)
	if err := cursor.All(ctx, &assignedToday); err != nil {
		return nil, err
	}

	return &StaffSummary{
		AssignedByStatus: byStatus,
		TotalAssigned:    total,
		AssignedToday:    assignedToday,
	}, nil
}

func (s *mongoDashboardStore) AdminSummary(ctx context.Context) (*AdminSummary, error) {
	byStatus, total, err := s.countByStatus(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	paymentTotal, paymentCount, err := s.paymentTotals(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	recentIssues, err := recentDocs[models.Issue](ctx, s.issues, "createdAt")
	if err != nil {
		return nil, err
	}
	recentPayments, err := recentDocs[models.PaymentRecord](ctx, s.payments, "paidAt")
	if err != nil {
		return nil, err
	}
	recentUsers, err := recentDocs[models.User](ctx, s.users, "createdAt")
	if err != nil {
		return nil, err
	}

	return &AdminSummary{
		IssuesByStatus: byStatus,
		TotalIssues:    total,
		PaymentTotal:   paymentTotal,
		PaymentCount:   paymentCount,
		RecentIssues:   recentIssues,
		RecentPayments: recentPayments,
		RecentUsers:    recentUsers,
	}, nil
}

func (s *mongoDashboardStore) countByStatus(ctx context.Context, match bson.M) (map[string]int64, int64, error) {
	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := s.issues.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, 0, err
	}

	byStatus := make(map[string]int64, len(rows))
	var total int64
	for _, row := range rows {
		byStatus[row.Status] = row.Count
		total += row.Count
	}
	return byStatus, total, nil
}

func (s *mongoDashboardStore) paymentTotals(ctx context.Context, match bson.M) (float64, int64, error) {
	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := s.payments.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
		Count int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Total, rows[0].Count, nil
}

func recentDocs[T any](ctx context.Context, collection *mongo.Collection, sortField string) ([]T, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: sortField, Value: -1}}).
		SetLimit(5)

	cursor, err := collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0, 5)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

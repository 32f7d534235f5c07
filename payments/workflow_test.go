package payments

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cityfix-be/models"
	"cityfix-be/stores"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeGateway struct {
	sessions map[string]*Session
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	return &CheckoutSession{ID: "cs_test", URL: "https://checkout.test/cs_test"}, nil
}

func (f *fakeGateway) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("no such session %s", sessionID)
	}
	return session, nil
}

type fakeIssueStore struct {
	stores.IssueStore
	boosted      []string
	boostEntries []models.TimelineEntry
	boostErr     error
}

func (f *fakeIssueStore) MarkBoosted(ctx context.Context, id string, entry models.TimelineEntry) error {
	if f.boostErr != nil {
		return f.boostErr
	}
	f.boosted = append(f.boosted, id)
	f.boostEntries = append(f.boostEntries, entry)
	return nil
}

type fakeUserStore struct {
	stores.UserStore
	premium map[string]time.Time
}

func (f *fakeUserStore) SetPremium(ctx context.Context, email string, since time.Time) error {
	if f.premium == nil {
		f.premium = map[string]time.Time{}
	}
	f.premium[email] = since
	return nil
}

type fakePaymentStore struct {
	records       map[string]*models.PaymentRecord
	alwaysDupe    bool
	insertedCount int
}

func (f *fakePaymentStore) Insert(ctx context.Context, record *models.PaymentRecord) error {
	if f.records == nil {
		f.records = map[string]*models.PaymentRecord{}
	}
	if f.alwaysDupe {
		return stores.ErrDuplicate
	}
	if _, ok := f.records[record.TransactionID]; ok {
		return stores.ErrDuplicate
	}
	f.records[record.TransactionID] = record
	f.insertedCount++
	return nil
}

func (f *fakePaymentStore) FindByTransactionID(ctx context.Context, transactionID string) (*models.PaymentRecord, error) {
	record, ok := f.records[transactionID]
	if !ok {
		return nil, stores.ErrNotFound
	}
	return record, nil
}

func (f *fakePaymentStore) ListByEmail(ctx context.Context, email string) ([]models.PaymentRecord, error) {
	return nil, nil
}

func paidBoostSession(issueID string) *Session {
	return &Session{
		ID:              "cs_1",
		PaymentStatus:   SessionPaid,
		PaymentIntentID: "pi_123",
		AmountTotal:     500,
		Currency:        "usd",
		CustomerEmail:   "citizen@example.com",
		Metadata: map[string]string{
			MetaProductType: ProductTypeBoost,
			MetaIssueID:     issueID,
			MetaTrackingID:  "CFX-AB12CD34",
		},
	}
}

func TestConfirmBoostSuccess(t *testing.T) {
	issueID := primitive.NewObjectID().Hex()
	gateway := &fakeGateway{sessions: map[string]*Session{"cs_1": paidBoostSession(issueID)}}
	issues := &fakeIssueStore{}
	ledger := &fakePaymentStore{}
	w := NewWorkflow(gateway, issues, &fakeUserStore{}, ledger)

	result, err := w.ConfirmBoost(context.Background(), "cs_1")
	require.NoError(t, err)

	assert.True(t, result.Processed)
	assert.False(t, result.AlreadyProcessed)
	require.Len(t, issues.boosted, 1)
	assert.Equal(t, issueID, issues.boosted[0])
	assert.Equal(t, models.ActionIssueBoosted, issues.boostEntries[0].Action)
	assert.Equal(t, "Citizen", issues.boostEntries[0].By)

	record := ledger.records["pi_123"]
	require.NotNil(t, record)
	assert.Equal(t, 5.0, record.Amount)
	assert.Equal(t, "usd", record.Currency)
	assert.Equal(t, "citizen@example.com", record.Email)
	assert.Equal(t, models.ProductBoost, record.Product)
	assert.Equal(t, issueID, record.IssueID)
	assert.Equal(t, "CFX-AB12CD34", record.TrackingID)
}

func TestConfirmBoostIdempotentReplay(t *testing.T) {
	issueID := primitive.NewObjectID().Hex()
	gateway := &fakeGateway{sessions: map[string]*Session{"cs_1": paidBoostSession(issueID)}}
	issues := &fakeIssueStore{}
	ledger := &fakePaymentStore{}
	w := NewWorkflow(gateway, issues, &fakeUserStore{}, ledger)

	first, err := w.ConfirmBoost(context.Background(), "cs_1")
	require.NoError(t, err)
	require.True(t, first.Processed)

	second, err := w.ConfirmBoost(context.Background(), "cs_1")
	require.NoError(t, err)

	assert.True(t, second.Processed)
	assert.True(t, second.AlreadyProcessed)
	// Exactly one escalation and one ledger record.
	assert.Len(t, issues.boosted, 1)
	assert.Equal(t, 1, ledger.insertedCount)
}

func TestConfirmBoostPendingSessionIsNoOp(t *testing.T) {
	session := paidBoostSession(primitive.NewObjectID().Hex())
	session.PaymentStatus = SessionUnpaid
	gateway := &fakeGateway{sessions: map[string]*Session{"cs_1": session}}
	issues := &fakeIssueStore{}
	ledger := &fakePaymentStore{}
	w := NewWorkflow(gateway, issues, &fakeUserStore{}, ledger)

	result, err := w.ConfirmBoost(context.Background(), "cs_1")
	require.NoError(t, err)

	assert.True(t, result.Pending)
	assert.False(t, result.Processed)
	assert.Empty(t, issues.boosted)
	assert.Equal(t, 0, ledger.insertedCount)
}

func TestConfirmBoostInsertRaceTreatedAsProcessed(t *testing.T) {
	// The existence check passes but a concurrent confirmation wins the
	// insert; the duplicate-key rejection must read as benign success.
	gateway := &fakeGateway{sessions: map[string]*Session{
		"cs_1": paidBoostSession(primitive.NewObjectID().Hex()),
	}}
	ledger := &fakePaymentStore{alwaysDupe: true}
	w := NewWorkflow(gateway, &fakeIssueStore{}, &fakeUserStore{}, ledger)

	result, err := w.ConfirmBoost(context.Background(), "cs_1")
	require.NoError(t, err)

	assert.True(t, result.Processed)
	assert.True(t, result.AlreadyProcessed)
}

func TestConfirmBoostConcurrentEscalationStillSettles(t *testing.T) {
	// A parallel confirmation escalated the issue first; this call must not
	// fail, and the ledger stays the arbiter of who recorded the payment.
	gateway := &fakeGateway{sessions: map[string]*Session{
		"cs_1": paidBoostSession(primitive.NewObjectID().Hex()),
	}}
	issues := &fakeIssueStore{boostErr: stores.ErrConflict}
	ledger := &fakePaymentStore{}
	w := NewWorkflow(gateway, issues, &fakeUserStore{}, ledger)

	result, err := w.ConfirmBoost(context.Background(), "cs_1")
	require.NoError(t, err)

	assert.True(t, result.Processed)
	assert.Empty(t, issues.boosted)
	assert.Equal(t, 1, ledger.insertedCount)
}

func TestConfirmSubscriptionRejectsBoostSession(t *testing.T) {
	// A paid boost session presented to the subscription endpoint must not
	// buy premium at the boost price.
	gateway := &fakeGateway{sessions: map[string]*Session{
		"cs_1": paidBoostSession(primitive.NewObjectID().Hex()),
	}}
	users := &fakeUserStore{}
	ledger := &fakePaymentStore{}
	w := NewWorkflow(gateway, &fakeIssueStore{}, users, ledger)

	result, err := w.ConfirmSubscription(context.Background(), "cs_1")
	require.ErrorIs(t, err, ErrWrongProduct)

	assert.Nil(t, result)
	assert.Empty(t, users.premium)
	assert.Equal(t, 0, ledger.insertedCount)
}

func TestConfirmBoostRejectsSubscriptionSession(t *testing.T) {
	gateway := &fakeGateway{sessions: map[string]*Session{"cs_2": {
		ID:              "cs_2",
		PaymentStatus:   SessionPaid,
		PaymentIntentID: "pi_sub_1",
		AmountTotal:     999,
		Currency:        "usd",
		CustomerEmail:   "citizen@example.com",
		Metadata:        map[string]string{MetaProductType: ProductTypeSubscription, MetaEmail: "citizen@example.com"},
	}}}
	issues := &fakeIssueStore{}
	ledger := &fakePaymentStore{}
	w := NewWorkflow(gateway, issues, &fakeUserStore{}, ledger)

	result, err := w.ConfirmBoost(context.Background(), "cs_2")
	require.ErrorIs(t, err, ErrWrongProduct)

	assert.Nil(t, result)
	assert.Empty(t, issues.boosted)
	assert.Equal(t, 0, ledger.insertedCount)
}

func TestConfirmSubscriptionSuccess(t *testing.T) {
	gateway := &fakeGateway{sessions: map[string]*Session{"cs_2": {
		ID:              "cs_2",
		PaymentStatus:   SessionPaid,
		PaymentIntentID: "pi_sub_1",
		AmountTotal:     999,
		Currency:        "usd",
		CustomerEmail:   "citizen@example.com",
		Metadata:        map[string]string{MetaProductType: ProductTypeSubscription, MetaEmail: "citizen@example.com"},
	}}}
	users := &fakeUserStore{}
	ledger := &fakePaymentStore{}
	w := NewWorkflow(gateway, &fakeIssueStore{}, users, ledger)

	result, err := w.ConfirmSubscription(context.Background(), "cs_2")
	require.NoError(t, err)

	assert.True(t, result.Processed)
	_, upgraded := users.premium["citizen@example.com"]
	assert.True(t, upgraded)

	record := ledger.records["pi_sub_1"]
	require.NotNil(t, record)
	assert.Equal(t, models.ProductSubscription, record.Product)
	assert.InDelta(t, 9.99, record.Amount, 0.001)
	assert.Empty(t, record.IssueID)
}

func TestConfirmSubscriptionReplayDoesNotDoubleCredit(t *testing.T) {
	gateway := &fakeGateway{sessions: map[string]*Session{"cs_2": {
		ID:              "cs_2",
		PaymentStatus:   SessionPaid,
		PaymentIntentID: "pi_sub_1",
		AmountTotal:     999,
		Currency:        "usd",
		CustomerEmail:   "citizen@example.com",
		Metadata:        map[string]string{MetaProductType: ProductTypeSubscription, MetaEmail: "citizen@example.com"},
	}}}
	users := &fakeUserStore{}
	ledger := &fakePaymentStore{}
	w := NewWorkflow(gateway, &fakeIssueStore{}, users, ledger)

	_, err := w.ConfirmSubscription(context.Background(), "cs_2")
	require.NoError(t, err)
	second, err := w.ConfirmSubscription(context.Background(), "cs_2")
	require.NoError(t, err)

	assert.True(t, second.AlreadyProcessed)
	assert.Equal(t, 1, ledger.insertedCount)
}

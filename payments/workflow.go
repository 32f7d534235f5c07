package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cityfix-be/models"
	"cityfix-be/stores"
)

// ConfirmResult reports how a confirmation call ended.
type ConfirmResult struct {
	// Processed is true when a ledger record exists for the transaction
	// after this call, whether written now or by an earlier call.
	Processed bool
	// AlreadyProcessed marks an idempotent replay: nothing was written.
	AlreadyProcessed bool
	// Pending means the gateway has not reported the payment as paid yet;
	// nothing was written and the caller may retry.
	Pending bool
	Record  *models.PaymentRecord
}

// Workflow reconciles external payment sessions against local state for the
// two product types. Both confirmations share one idempotency gate: the
// gateway's payment-intent id is the ledger's unique transaction id, and a
// duplicate-key rejection on insert counts as already processed. The
// pre-insert lookup is only a fast path; the index is the guarantee.
type Workflow struct {
	gateway Gateway
	issues  stores.IssueStore
	users   stores.UserStore
	ledger  stores.PaymentStore
}

// NewWorkflow wires the confirmation workflow.
func NewWorkflow(gateway Gateway, issues stores.IssueStore, users stores.UserStore, ledger stores.PaymentStore) *Workflow {
	return &Workflow{gateway: gateway, issues: issues, users: users, ledger: ledger}
}

// ErrWrongProduct means the session's metadata names a different product
// than the confirmation endpoint it was presented to.
var ErrWrongProduct = errors.New("session is for a different product")

// ConfirmBoost reconciles a boost checkout session. Safe to call more than
// once per session: the redirect handler and a user refresh may both land
// here.
func (w *Workflow) ConfirmBoost(ctx context.Context, sessionID string) (*ConfirmResult, error) {
	session, gate, err := w.checkSession(ctx, sessionID, ProductTypeBoost)
	if err != nil || gate != nil {
		return gate, err
	}

	issueID := session.Metadata[MetaIssueID]
	if issueID == "" {
		return nil, fmt.Errorf("session %s has no issue reference", sessionID)
	}

	entry := models.TimelineEntry{
		Action:    models.ActionIssueBoosted,
		Message:   "Issue boosted to high priority",
		By:        "Citizen",
		Timestamp: time.Now(),
	}
	if err := w.issues.MarkBoosted(ctx, issueID, entry); err != nil {
		// A concurrent confirmation already escalated the issue; the
		// ledger insert below resolves which call gets the record.
		if !errors.Is(err, stores.ErrConflict) {
			return nil, fmt.Errorf("marking issue boosted: %w", err)
		}
	}

	record := &models.PaymentRecord{
		Amount:        float64(session.AmountTotal) / 100,
		Currency:      session.Currency,
		Email:         session.CustomerEmail,
		Product:       models.ProductBoost,
		TransactionID: session.PaymentIntentID,
		Status:        session.PaymentStatus,
		IssueID:       issueID,
		TrackingID:    session.Metadata[MetaTrackingID],
		PaidAt:        time.Now(),
	}

	return w.insertRecord(ctx, record)
}

// ConfirmSubscription reconciles a premium subscription checkout session.
func (w *Workflow) ConfirmSubscription(ctx context.Context, sessionID string) (*ConfirmResult, error) {
	session, gate, err := w.checkSession(ctx, sessionID, ProductTypeSubscription)
	if err != nil || gate != nil {
		return gate, err
	}

	email := session.Metadata[MetaEmail]
	if email == "" {
		email = session.CustomerEmail
	}
	if email == "" {
		return nil, fmt.Errorf("session %s has no payer email", sessionID)
	}

	if err := w.users.SetPremium(ctx, email, time.Now()); err != nil {
		return nil, fmt.Errorf("setting premium flag: %w", err)
	}

	record := &models.PaymentRecord{
		Amount:        float64(session.AmountTotal) / 100,
		Currency:      session.Currency,
		Email:         email,
		Product:       models.ProductSubscription,
		TransactionID: session.PaymentIntentID,
		Status:        session.PaymentStatus,
		PaidAt:        time.Now(),
	}

	return w.insertRecord(ctx, record)
}

// checkSession retrieves the session and runs the shared idempotency gate.
// A non-nil result means the caller should return it as-is without writing.
// The session must carry the product type the caller expects: a paid boost
// session presented to the subscription endpoint buys nothing.
func (w *Workflow) checkSession(ctx context.Context, sessionID, product string) (*Session, *ConfirmResult, error) {
	session, err := w.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	if session.Metadata[MetaProductType] != product {
		return nil, nil, fmt.Errorf("session %s: %w", sessionID, ErrWrongProduct)
	}

	if session.PaymentIntentID != "" {
		record, err := w.ledger.FindByTransactionID(ctx, session.PaymentIntentID)
		if err == nil {
			return nil, &ConfirmResult{Processed: true, AlreadyProcessed: true, Record: record}, nil
		}
		if !errors.Is(err, stores.ErrNotFound) {
			return nil, nil, err
		}
	}

	if session.PaymentStatus != SessionPaid {
		return nil, &ConfirmResult{Pending: true}, nil
	}
	if session.PaymentIntentID == "" {
		return nil, nil, fmt.Errorf("paid session %s has no payment intent", sessionID)
	}

	return session, nil, nil
}

func (w *Workflow) insertRecord(ctx context.Context, record *models.PaymentRecord) (*ConfirmResult, error) {
	err := w.ledger.Insert(ctx, record)
	if err != nil {
		if errors.Is(err, stores.ErrDuplicate) {
			// A concurrent confirmation won the insert race.
			return &ConfirmResult{Processed: true, AlreadyProcessed: true}, nil
		}
		return nil, fmt.Errorf("inserting payment record: %w", err)
	}
	return &ConfirmResult{Processed: true, Record: record}, nil
}

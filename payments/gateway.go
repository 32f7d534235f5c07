package payments

import "context"

// Session payment statuses as reported by the gateway.
const (
	SessionPaid   = "paid"
	SessionUnpaid = "unpaid"
)

// Metadata keys attached to checkout sessions at creation time and read
// back during confirmation.
const (
	MetaProductType = "productType"
	MetaIssueID     = "issueId"
	MetaTrackingID  = "trackingId"
	MetaEmail       = "email"
)

// Product type metadata values.
const (
	ProductTypeBoost        = "boost"
	ProductTypeSubscription = "subscription"
)

// CheckoutLineItem is the single line item of a checkout session.
type CheckoutLineItem struct {
	Name        string
	AmountCents int64
	Currency    string
}

// CheckoutParams describes a checkout session to create.
type CheckoutParams struct {
	LineItem          CheckoutLineItem
	CustomerEmail     string
	SuccessURL        string
	CancelURL         string
	ClientReferenceID string
	Metadata          map[string]string
}

// CheckoutSession is the created session the client gets redirected to.
type CheckoutSession struct {
	ID  string
	URL string
}

// Session is the gateway's record of a checkout session. The confirmation
// workflow interprets PaymentStatus and never computes payment outcomes
// itself: the success redirect is attacker-observable, this record is not.
type Session struct {
	ID              string
	PaymentStatus   string
	PaymentIntentID string
	AmountTotal     int64
	Currency        string
	CustomerEmail   string
	Metadata        map[string]string
}

// Gateway is the external payment capability: create a hosted checkout
// session and retrieve one by id.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
}

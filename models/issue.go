package models

import (
	"crypto/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueStatus enum
type IssueStatus string

const (
	StatusPending    IssueStatus = "pending"
	StatusInProgress IssueStatus = "in_progress"
	StatusWorking    IssueStatus = "working"
	StatusResolved   IssueStatus = "resolved"
	StatusClosed     IssueStatus = "closed"
	StatusRejected   IssueStatus = "rejected"
)

// IssuePriority enum
type IssuePriority string

const (
	PriorityNormal IssuePriority = "Normal"
	PriorityHigh   IssuePriority = "High"
)

// PaymentState of an issue (whether a boost has been paid for).
type PaymentState string

const (
	PaymentUnpaid PaymentState = "unpaid"
	PaymentPaid   PaymentState = "paid"
)

// Timeline action tags.
const (
	ActionIssueReported = "ISSUE_REPORTED"
	ActionStatusChanged = "STATUS_CHANGED"
	ActionStaffAssigned = "STAFF_ASSIGNED"
	ActionIssueRejected = "ISSUE_REJECTED"
	ActionIssueBoosted  = "ISSUE_BOOSTED"
)

// TimelineEntry is an immutable audit record appended to an issue. Entries
// are never edited or removed; the issue document itself stays the source
// of truth for current state.
type TimelineEntry struct {
	Action    string      `bson:"action" json:"action"`
	Message   string      `bson:"message" json:"message"`
	By        string      `bson:"by" json:"by"`
	Status    IssueStatus `bson:"status,omitempty" json:"status,omitempty"`
	Timestamp time.Time   `bson:"timestamp" json:"timestamp"`
}

// StaffRef points at the staff member assigned to an issue.
type StaffRef struct {
	Email string `bson:"email" json:"email"`
	Name  string `bson:"name" json:"name"`
}

// Issue represents a civic issue reported by a citizen.
type Issue struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrackingID    string             `bson:"trackingId" json:"trackingId"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Category      string             `bson:"category" json:"category"`
	Location      string             `bson:"location" json:"location"`
	ReporterEmail string             `bson:"reporterEmail" json:"reporterEmail"`
	ReporterName  string             `bson:"reporterName" json:"reporterName"`
	Status        IssueStatus        `bson:"status" json:"status"`
	Priority      IssuePriority      `bson:"priority" json:"priority"`
	PaymentStatus PaymentState       `bson:"paymentStatus" json:"paymentStatus"`
	AssignedTo    *StaffRef          `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Timeline      []TimelineEntry    `bson:"timeline" json:"timeline"`
	UpvotedBy     []string           `bson:"upvotedBy" json:"-"`
	Upvotes       int                `bson:"-" json:"upvotes"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// StatusMessage maps a status to its canonical timeline message. Unrecognized
// statuses map to an empty message; the transition itself is not blocked.
func StatusMessage(status IssueStatus) string {
	switch status {
	case StatusPending:
		return "Issue is pending review"
	case StatusInProgress:
		return "Issue is now in progress"
	case StatusWorking:
		return "Work on the issue has started"
	case StatusResolved:
		return "Issue marked as resolved"
	case StatusClosed:
		return "Issue has been closed"
	default:
		return ""
	}
}

const trackingAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TrackingPrefix prefixes every citizen-facing tracking code.
const TrackingPrefix = "CFX-"

// NewTrackingCode generates a human-readable tracking code: the fixed prefix
// followed by 8 uppercase alphanumerics. Not guaranteed globally unique, but
// collisions are negligible at expected volumes.
func NewTrackingCode() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails if the OS entropy source is broken; fall
		// back to the object-id timestamp bytes rather than crash.
		copy(buf, []byte(primitive.NewObjectID().Hex()))
	}
	for i := range buf {
		buf[i] = trackingAlphabet[int(buf[i])%len(trackingAlphabet)]
	}
	return TrackingPrefix + string(buf)
}

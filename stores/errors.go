package stores

import "errors"

// Business outcomes the controllers translate into HTTP statuses. Anything
// else coming out of a store is an unexpected storage failure.
var (
	// ErrInvalidID means the supplied identity is not a valid object id.
	// Distinct from ErrNotFound: a malformed id is a validation error.
	ErrInvalidID = errors.New("invalid id")

	// ErrNotFound means the referenced document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a precondition failed: staff already assigned,
	// rejection of a non-pending issue, duplicate upvote.
	ErrConflict = errors.New("conflict")

	// ErrDuplicate means a unique index rejected an insert. The payment
	// workflow treats this as "already processed".
	ErrDuplicate = errors.New("duplicate")
)

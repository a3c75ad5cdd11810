package driven

import (
	"context"
	"time"
)

// AuditRecord is one authorize decision. Records are write-only: nothing
// in the gateway reads them back.
type AuditRecord struct {
	// ID is a unique record identifier.
	ID string

	// SubjectID is the caller the decision was made for.
	SubjectID string

	// Operation is the tool operation that triggered authorization.
	Operation string

	// Decision is "allow" or the AuthErrorKind that denied the request.
	Decision string

	// Timestamp is when the decision was made.
	Timestamp time.Time
}

// AuditStore persists audit records.
type AuditStore interface {
	Append(ctx context.Context, record AuditRecord) error
	Close() error
}

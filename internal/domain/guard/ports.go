package guard

import (
	"context"

	"github.com/coreos-governance/core/internal/domain/policy"
)

// Membership is an active (tenant, user) relationship granting a role.
type Membership struct {
	TenantID string
	UserID   string
	Role     policy.Role
	Active   bool
}

// MembershipStore looks up tenant membership records. Defined in the
// domain to avoid circular imports, mirroring the teacher's
// AuthStore/UserStore port shape.
type MembershipStore interface {
	GetMembership(ctx context.Context, tenantID, userID string) (Membership, bool, error)
}

// SessionRecord is a tenant-scoped session as seen by the guard. Its
// staleness model is an explicit 24h LastSeenAt cutoff alongside a
// Revoked flag.
type SessionRecord struct {
	SessionID        string
	TenantID         string
	UserID           string
	Revoked          bool
	IssuedAtMillis   int64
	LastSeenAtMillis int64
}

// SessionLookup resolves and touches tenant-scoped sessions.
type SessionLookup interface {
	// Get returns the session record, or found=false if it does not exist.
	Get(ctx context.Context, tenantID, sessionID string) (SessionRecord, bool, error)
	// Touch updates LastSeenAtMillis. Callers treat failures as
	// fire-and-forget: a Touch error never fails session resolution.
	Touch(ctx context.Context, tenantID, sessionID string, nowMillis int64) error
}

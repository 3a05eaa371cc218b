package guard

import (
	"context"
	"log/slog"

	"github.com/coreos-governance/core/internal/domain/policy"
)

// Clock returns epoch milliseconds; overridden in tests for determinism.
type Clock func() int64

// Guard resolves SessionContext from inbound request state.
type Guard struct {
	memberships MembershipStore
	sessions    SessionLookup
	clock       Clock
	logger      *slog.Logger
}

// NewGuard builds a Guard. memberships and sessions are only consulted
// in multi-tenant mode; both may be nil if the Guard is only ever used
// single-tenant. logger may be nil, in which case slog.Default() is
// used for Touch failure logging.
func NewGuard(memberships MembershipStore, sessions SessionLookup, clock Clock, logger *slog.Logger) *Guard {
	if clock == nil {
		clock = func() int64 { return 0 }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{memberships: memberships, sessions: sessions, clock: clock, logger: logger}
}

// Resolve implements spec.md §4.7's two modes.
func (g *Guard) Resolve(ctx context.Context, in ResolveInput) (SessionContext, error) {
	if !in.MultiTenantEnabled {
		return g.resolveSingleTenant(in), nil
	}
	return g.resolveMultiTenant(ctx, in)
}

// resolveSingleTenant always succeeds: authMode reflects only whether a
// platform identity happened to be present.
func (g *Guard) resolveSingleTenant(in ResolveInput) SessionContext {
	mode := AuthModeAnonymous
	userID := ""
	if in.PlatformIdentityHasID {
		mode = AuthModePlatformIdentity
		userID = in.PlatformIdentityID
	}
	return SessionContext{
		TenantID: SingleTenantID,
		UserID:   userID,
		Role:     policy.RoleOwner,
		IssuedAt: g.clock(),
		AuthMode: mode,
		DeviceID: in.DeviceIDHeader,
	}
}

func (g *Guard) resolveMultiTenant(ctx context.Context, in ResolveInput) (SessionContext, error) {
	if in.TenantIDHeader == "" || in.SessionIDHeader == "" {
		return SessionContext{}, newError(ErrorCodeHeadersMissing, "x-tenant-id and x-session-id are required")
	}
	if !in.PlatformIdentityHasID {
		return SessionContext{}, newError(ErrorCodeAuthRequired, "no platform identity on request")
	}

	membership, found, err := g.memberships.GetMembership(ctx, in.TenantIDHeader, in.PlatformIdentityID)
	if err != nil {
		return SessionContext{}, err
	}
	if !found || !membership.Active {
		return SessionContext{}, newError(ErrorCodeMemberRequired, "no active membership for tenant and user")
	}

	record, found, err := g.sessions.Get(ctx, in.TenantIDHeader, in.SessionIDHeader)
	if err != nil {
		return SessionContext{}, err
	}
	if !found {
		return SessionContext{}, newError(ErrorCodeSessionInvalid, "session not found")
	}
	if record.Revoked {
		return SessionContext{}, newError(ErrorCodeSessionRevoked, "session revoked")
	}
	now := g.clock()
	if now-record.LastSeenAtMillis > SessionMaxAgeMillis {
		return SessionContext{}, newError(ErrorCodeSessionInvalid, "session stale")
	}

	if err := g.sessions.Touch(ctx, in.TenantIDHeader, in.SessionIDHeader, now); err != nil {
		g.logger.Warn("session touch failed", "tenant", in.TenantIDHeader, "session", in.SessionIDHeader, "error", err)
	}

	return SessionContext{
		TenantID:  in.TenantIDHeader,
		UserID:    in.PlatformIdentityID,
		SessionID: in.SessionIDHeader,
		Role:      membership.Role,
		IssuedAt:  record.IssuedAtMillis,
		AuthMode:  AuthModePlatformIdentity,
		DeviceID:  in.DeviceIDHeader,
	}, nil
}

// AssertMinRole compares SessionContext.Role against RoleHierarchy's
// position for required, returning an *Error with ErrorCodeInsufficientRole
// if the held role ranks below it.
func AssertMinRole(sc SessionContext, required policy.Role) error {
	if !policy.MeetsRole(sc.Role, required) {
		return newError(ErrorCodeInsufficientRole, "role "+string(sc.Role)+" does not meet required role "+string(required))
	}
	return nil
}

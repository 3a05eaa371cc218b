package service

import (
	"context"
	"log/slog"

	"github.com/coreos-governance/core/internal/domain/guard"
	"github.com/coreos-governance/core/internal/domain/policy"
)

// GuardService wires guard.Guard from configuration and exposes its
// session-resolution and role-assertion operations.
type GuardService struct {
	guard              *guard.Guard
	multiTenantEnabled bool
}

// NewGuardService builds a GuardService. memberships and sessions may
// be nil when multiTenantEnabled is false.
func NewGuardService(memberships guard.MembershipStore, sessions guard.SessionLookup, multiTenantEnabled bool, clock guard.Clock, logger *slog.Logger) *GuardService {
	return &GuardService{
		guard:              guard.NewGuard(memberships, sessions, clock, logger),
		multiTenantEnabled: multiTenantEnabled,
	}
}

// Resolve builds a ResolveInput from inbound request state and
// resolves it against the guard.
func (s *GuardService) Resolve(ctx context.Context, tenantIDHeader, sessionIDHeader, platformIdentityID string, hasPlatformIdentity bool, deviceIDHeader string) (guard.SessionContext, error) {
	return s.guard.Resolve(ctx, guard.ResolveInput{
		MultiTenantEnabled:    s.multiTenantEnabled,
		TenantIDHeader:        tenantIDHeader,
		SessionIDHeader:       sessionIDHeader,
		PlatformIdentityID:    platformIdentityID,
		PlatformIdentityHasID: hasPlatformIdentity,
		DeviceIDHeader:        deviceIDHeader,
	})
}

// AssertMinRole is a thin passthrough to the package-level helper, kept
// on the service so inbound adapters depend on one surface.
func (s *GuardService) AssertMinRole(sc guard.SessionContext, required policy.Role) error {
	return guard.AssertMinRole(sc, required)
}

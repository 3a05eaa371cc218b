package service

import (
	"context"
	"testing"

	"github.com/coreos-governance/core/internal/domain/guard"
	"github.com/coreos-governance/core/internal/domain/policy"
)

type memGuardMembershipStore struct {
	memberships map[string]guard.Membership
}

func (m *memGuardMembershipStore) GetMembership(_ context.Context, tenantID, userID string) (guard.Membership, bool, error) {
	ms, ok := m.memberships[tenantID+"/"+userID]
	return ms, ok, nil
}

type memGuardSessionLookup struct {
	sessions map[string]guard.SessionRecord
}

func (m *memGuardSessionLookup) Get(_ context.Context, tenantID, sessionID string) (guard.SessionRecord, bool, error) {
	rec, ok := m.sessions[tenantID+"/"+sessionID]
	return rec, ok, nil
}

func (m *memGuardSessionLookup) Touch(_ context.Context, _, _ string, _ int64) error {
	return nil
}

func TestGuardServiceResolveSingleTenant(t *testing.T) {
	svc := NewGuardService(nil, nil, false, func() int64 { return 1000 }, nil)

	sc, err := svc.Resolve(context.Background(), "", "", "", false, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sc.Role != policy.RoleOwner || sc.AuthMode != guard.AuthModeAnonymous {
		t.Fatalf("unexpected SessionContext: %+v", sc)
	}
	if sc.IssuedAt != 1000 {
		t.Fatalf("IssuedAt = %d, want 1000", sc.IssuedAt)
	}
}

func TestGuardServiceResolveMultiTenant(t *testing.T) {
	memberships := &memGuardMembershipStore{memberships: map[string]guard.Membership{
		"t1/u1": {TenantID: "t1", UserID: "u1", Role: policy.RoleAdmin, Active: true},
	}}
	sessions := &memGuardSessionLookup{sessions: map[string]guard.SessionRecord{
		"t1/s1": {SessionID: "s1", TenantID: "t1", UserID: "u1", IssuedAtMillis: 500, LastSeenAtMillis: 1000},
	}}
	svc := NewGuardService(memberships, sessions, true, func() int64 { return 2000 }, nil)

	sc, err := svc.Resolve(context.Background(), "t1", "s1", "u1", true, "device-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sc.Role != policy.RoleAdmin || sc.TenantID != "t1" {
		t.Fatalf("unexpected SessionContext: %+v", sc)
	}
	if sc.IssuedAt != 500 {
		t.Fatalf("IssuedAt = %d, want 500 (the session's own issuance time, not the resolve clock)", sc.IssuedAt)
	}
	if sc.DeviceID != "device-1" {
		t.Fatalf("DeviceID = %q, want device-1", sc.DeviceID)
	}
}

func TestGuardServiceAssertMinRole(t *testing.T) {
	svc := NewGuardService(nil, nil, false, func() int64 { return 1000 }, nil)

	sc := guard.SessionContext{Role: policy.RoleViewer}
	if err := svc.AssertMinRole(sc, policy.RoleAdmin); err == nil {
		t.Fatal("expected an error for insufficient role")
	}
	if err := svc.AssertMinRole(sc, policy.RoleViewer); err != nil {
		t.Fatalf("AssertMinRole: %v", err)
	}
}

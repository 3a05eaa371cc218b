package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/coreos-governance/core/internal/domain/policy"
)

type memMembershipStore struct {
	memberships map[string]Membership
}

func (m *memMembershipStore) GetMembership(_ context.Context, tenantID, userID string) (Membership, bool, error) {
	ms, ok := m.memberships[tenantID+"/"+userID]
	return ms, ok, nil
}

type memSessionLookup struct {
	sessions map[string]SessionRecord
	touched  map[string]int64
}

func newMemSessionLookup() *memSessionLookup {
	return &memSessionLookup{sessions: make(map[string]SessionRecord), touched: make(map[string]int64)}
}

func (m *memSessionLookup) Get(_ context.Context, tenantID, sessionID string) (SessionRecord, bool, error) {
	rec, ok := m.sessions[tenantID+"/"+sessionID]
	return rec, ok, nil
}

func (m *memSessionLookup) Touch(_ context.Context, tenantID, sessionID string, now int64) error {
	m.touched[tenantID+"/"+sessionID] = now
	return nil
}

func TestResolveSingleTenantWithoutIdentity(t *testing.T) {
	g := NewGuard(nil, nil, func() int64 { return 1000 }, nil)
	sc, err := g.Resolve(context.Background(), ResolveInput{MultiTenantEnabled: false})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sc.TenantID != SingleTenantID || sc.Role != policy.RoleOwner || sc.AuthMode != AuthModeAnonymous {
		t.Fatalf("unexpected SessionContext: %+v", sc)
	}
	if sc.IssuedAt != 1000 {
		t.Fatalf("IssuedAt = %d, want 1000", sc.IssuedAt)
	}
}

func TestResolveSingleTenantWithIdentity(t *testing.T) {
	g := NewGuard(nil, nil, func() int64 { return 1000 }, nil)
	sc, err := g.Resolve(context.Background(), ResolveInput{MultiTenantEnabled: false, PlatformIdentityHasID: true, PlatformIdentityID: "u1"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sc.AuthMode != AuthModePlatformIdentity || sc.UserID != "u1" {
		t.Fatalf("unexpected SessionContext: %+v", sc)
	}
}

func TestResolveMultiTenantHeadersMissing(t *testing.T) {
	g := NewGuard(&memMembershipStore{}, newMemSessionLookup(), func() int64 { return 1000 }, nil)
	_, err := g.Resolve(context.Background(), ResolveInput{MultiTenantEnabled: true})
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Code != ErrorCodeHeadersMissing {
		t.Fatalf("err = %v, want HEADERS_MISSING", err)
	}
	if gerr.HTTPStatus != 401 {
		t.Fatalf("HTTPStatus = %d, want 401", gerr.HTTPStatus)
	}
}

func TestResolveMultiTenantAuthRequired(t *testing.T) {
	g := NewGuard(&memMembershipStore{}, newMemSessionLookup(), func() int64 { return 1000 }, nil)
	_, err := g.Resolve(context.Background(), ResolveInput{
		MultiTenantEnabled: true,
		TenantIDHeader:     "t1",
		SessionIDHeader:    "s1",
	})
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Code != ErrorCodeAuthRequired {
		t.Fatalf("err = %v, want AUTH_REQUIRED", err)
	}
}

func TestResolveMultiTenantMemberRequired(t *testing.T) {
	memberships := &memMembershipStore{memberships: map[string]Membership{}}
	g := NewGuard(memberships, newMemSessionLookup(), func() int64 { return 1000 }, nil)
	_, err := g.Resolve(context.Background(), ResolveInput{
		MultiTenantEnabled:    true,
		TenantIDHeader:        "t1",
		SessionIDHeader:       "s1",
		PlatformIdentityHasID: true,
		PlatformIdentityID:    "u1",
	})
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Code != ErrorCodeMemberRequired {
		t.Fatalf("err = %v, want MEMBER_REQUIRED", err)
	}
}

func TestResolveMultiTenantSessionInvalidNotFound(t *testing.T) {
	memberships := &memMembershipStore{memberships: map[string]Membership{
		"t1/u1": {TenantID: "t1", UserID: "u1", Role: policy.RoleUser, Active: true},
	}}
	g := NewGuard(memberships, newMemSessionLookup(), func() int64 { return 1000 }, nil)
	_, err := g.Resolve(context.Background(), ResolveInput{
		MultiTenantEnabled:    true,
		TenantIDHeader:        "t1",
		SessionIDHeader:       "s1",
		PlatformIdentityHasID: true,
		PlatformIdentityID:    "u1",
	})
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Code != ErrorCodeSessionInvalid {
		t.Fatalf("err = %v, want SESSION_INVALID", err)
	}
}

func TestResolveMultiTenantSessionRevoked(t *testing.T) {
	memberships := &memMembershipStore{memberships: map[string]Membership{
		"t1/u1": {TenantID: "t1", UserID: "u1", Role: policy.RoleUser, Active: true},
	}}
	sessions := newMemSessionLookup()
	sessions.sessions["t1/s1"] = SessionRecord{SessionID: "s1", TenantID: "t1", UserID: "u1", Revoked: true, LastSeenAtMillis: 999}
	g := NewGuard(memberships, sessions, func() int64 { return 1000 }, nil)
	_, err := g.Resolve(context.Background(), ResolveInput{
		MultiTenantEnabled:    true,
		TenantIDHeader:        "t1",
		SessionIDHeader:       "s1",
		PlatformIdentityHasID: true,
		PlatformIdentityID:    "u1",
	})
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Code != ErrorCodeSessionRevoked {
		t.Fatalf("err = %v, want SESSION_REVOKED", err)
	}
}

func TestResolveMultiTenantSessionStale(t *testing.T) {
	memberships := &memMembershipStore{memberships: map[string]Membership{
		"t1/u1": {TenantID: "t1", UserID: "u1", Role: policy.RoleUser, Active: true},
	}}
	sessions := newMemSessionLookup()
	sessions.sessions["t1/s1"] = SessionRecord{SessionID: "s1", TenantID: "t1", UserID: "u1", LastSeenAtMillis: 0}
	now := int64(SessionMaxAgeMillis + 1000)
	g := NewGuard(memberships, sessions, func() int64 { return now }, nil)
	_, err := g.Resolve(context.Background(), ResolveInput{
		MultiTenantEnabled:    true,
		TenantIDHeader:        "t1",
		SessionIDHeader:       "s1",
		PlatformIdentityHasID: true,
		PlatformIdentityID:    "u1",
	})
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Code != ErrorCodeSessionInvalid {
		t.Fatalf("err = %v, want SESSION_INVALID", err)
	}
}

func TestResolveMultiTenantSuccessTouchesSession(t *testing.T) {
	memberships := &memMembershipStore{memberships: map[string]Membership{
		"t1/u1": {TenantID: "t1", UserID: "u1", Role: policy.RoleAdmin, Active: true},
	}}
	sessions := newMemSessionLookup()
	sessions.sessions["t1/s1"] = SessionRecord{SessionID: "s1", TenantID: "t1", UserID: "u1", IssuedAtMillis: 500, LastSeenAtMillis: 900}
	g := NewGuard(memberships, sessions, func() int64 { return 1000 }, nil)
	sc, err := g.Resolve(context.Background(), ResolveInput{
		MultiTenantEnabled:    true,
		TenantIDHeader:        "t1",
		SessionIDHeader:       "s1",
		PlatformIdentityHasID: true,
		PlatformIdentityID:    "u1",
		DeviceIDHeader:        "device-1",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sc.Role != policy.RoleAdmin || sc.TenantID != "t1" || sc.UserID != "u1" {
		t.Fatalf("unexpected SessionContext: %+v", sc)
	}
	if sc.IssuedAt != 500 {
		t.Fatalf("IssuedAt = %d, want 500 (the session's own issuance time, not the resolve clock)", sc.IssuedAt)
	}
	if sc.DeviceID != "device-1" {
		t.Fatalf("DeviceID = %q, want device-1", sc.DeviceID)
	}
	if sessions.touched["t1/s1"] != 1000 {
		t.Fatalf("Touch not recorded: %+v", sessions.touched)
	}
}

func TestAssertMinRole(t *testing.T) {
	sc := SessionContext{Role: policy.RoleUser}
	if err := AssertMinRole(sc, policy.RoleViewer); err != nil {
		t.Fatalf("unexpected error for user >= viewer: %v", err)
	}
	if err := AssertMinRole(sc, policy.RoleAdmin); err == nil {
		t.Fatalf("expected error for user < admin")
	}
}

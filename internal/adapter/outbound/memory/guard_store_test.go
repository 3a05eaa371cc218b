package memory

import (
	"context"
	"testing"

	"github.com/coreos-governance/core/internal/domain/guard"
	"github.com/coreos-governance/core/internal/domain/policy"
)

func TestGuardStore_GetMembership_NotFound(t *testing.T) {
	s := NewGuardStore()
	_, ok, err := s.GetMembership(context.Background(), "tenant-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for unregistered membership")
	}
}

func TestGuardStore_PutThenGetMembership(t *testing.T) {
	s := NewGuardStore()
	s.PutMembership(guard.Membership{TenantID: "tenant-1", UserID: "user-1", Role: policy.RoleAdmin, Active: true})

	m, ok, err := s.GetMembership(context.Background(), "tenant-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected membership to be found")
	}
	if m.Role != policy.RoleAdmin || !m.Active {
		t.Errorf("unexpected membership: %+v", m)
	}
}

func TestGuardStore_MembershipsAreScopedByTenant(t *testing.T) {
	s := NewGuardStore()
	s.PutMembership(guard.Membership{TenantID: "tenant-1", UserID: "user-1", Role: policy.RoleUser, Active: true})

	_, ok, _ := s.GetMembership(context.Background(), "tenant-2", "user-1")
	if ok {
		t.Error("expected membership lookup to be scoped by tenant ID")
	}
}

func TestGuardStore_GetSession_NotFound(t *testing.T) {
	s := NewGuardStore()
	_, ok, err := s.Get(context.Background(), "tenant-1", "session-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for unregistered session")
	}
}

func TestGuardStore_PutThenGetSession(t *testing.T) {
	s := NewGuardStore()
	s.PutSession(guard.SessionRecord{TenantID: "tenant-1", SessionID: "session-1", UserID: "user-1"})

	rec, ok, err := s.Get(context.Background(), "tenant-1", "session-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected session to be found")
	}
	if rec.UserID != "user-1" {
		t.Errorf("unexpected session record: %+v", rec)
	}
}

func TestGuardStore_Touch_UpdatesLastSeen(t *testing.T) {
	s := NewGuardStore()
	s.PutSession(guard.SessionRecord{TenantID: "tenant-1", SessionID: "session-1", LastSeenAtMillis: 0})

	if err := s.Touch(context.Background(), "tenant-1", "session-1", 12345); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, _, _ := s.Get(context.Background(), "tenant-1", "session-1")
	if rec.LastSeenAtMillis != 12345 {
		t.Errorf("LastSeenAtMillis = %d, want 12345", rec.LastSeenAtMillis)
	}
}

func TestGuardStore_Touch_MissingSessionIsNoOp(t *testing.T) {
	s := NewGuardStore()
	if err := s.Touch(context.Background(), "tenant-1", "missing", 999); err != nil {
		t.Errorf("expected Touch on missing session to be a no-op, got error: %v", err)
	}
}

func TestGuardStore_RevokedSessionIsStillReturned(t *testing.T) {
	s := NewGuardStore()
	s.PutSession(guard.SessionRecord{TenantID: "tenant-1", SessionID: "session-1", Revoked: true})

	rec, ok, err := s.Get(context.Background(), "tenant-1", "session-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected revoked session record to still be retrievable")
	}
	if !rec.Revoked {
		t.Error("expected Revoked=true to round-trip")
	}
}

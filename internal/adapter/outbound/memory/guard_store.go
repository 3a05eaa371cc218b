package memory

import (
	"context"
	"sync"

	"github.com/coreos-governance/core/internal/domain/guard"
)

// GuardStore is an in-memory implementation of both guard.MembershipStore
// and guard.SessionLookup, keyed by tenant. For development/testing and
// single-process deployments; mirrors the teacher's map+RWMutex session
// store idiom.
type GuardStore struct {
	mu          sync.RWMutex
	memberships map[membershipKey]guard.Membership
	sessions    map[sessionKey]guard.SessionRecord
}

type membershipKey struct {
	tenantID string
	userID   string
}

type sessionKey struct {
	tenantID  string
	sessionID string
}

// NewGuardStore creates an empty in-memory guard store.
func NewGuardStore() *GuardStore {
	return &GuardStore{
		memberships: make(map[membershipKey]guard.Membership),
		sessions:    make(map[sessionKey]guard.SessionRecord),
	}
}

// PutMembership registers or replaces a tenant membership.
func (s *GuardStore) PutMembership(m guard.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[membershipKey{tenantID: m.TenantID, userID: m.UserID}] = m
}

// GetMembership implements guard.MembershipStore.
func (s *GuardStore) GetMembership(_ context.Context, tenantID, userID string) (guard.Membership, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memberships[membershipKey{tenantID: tenantID, userID: userID}]
	return m, ok, nil
}

// PutSession registers or replaces a session record.
func (s *GuardStore) PutSession(rec guard.SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionKey{tenantID: rec.TenantID, sessionID: rec.SessionID}] = rec
}

// Get implements guard.SessionLookup.
func (s *GuardStore) Get(_ context.Context, tenantID, sessionID string) (guard.SessionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[sessionKey{tenantID: tenantID, sessionID: sessionID}]
	return rec, ok, nil
}

// Touch implements guard.SessionLookup. Missing sessions are a no-op:
// callers treat Touch failures as fire-and-forget.
func (s *GuardStore) Touch(_ context.Context, tenantID, sessionID string, nowMillis int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sessionKey{tenantID: tenantID, sessionID: sessionID}
	rec, ok := s.sessions[key]
	if !ok {
		return nil
	}
	rec.LastSeenAtMillis = nowMillis
	s.sessions[key] = rec
	return nil
}

// Compile-time interface verification.
var (
	_ guard.MembershipStore = (*GuardStore)(nil)
	_ guard.SessionLookup   = (*GuardStore)(nil)
)

package service

import (
	"context"

	"github.com/coreos-governance/core/internal/apperror"
	"github.com/coreos-governance/core/internal/domain/governance"
	"github.com/coreos-governance/core/internal/domain/guard"
	"github.com/coreos-governance/core/internal/domain/policy"
)

// GovernanceChainID is the fixed ledger chain every governance reaction
// is appended to. Governance state itself is process-local (see
// internal/domain/governance), but its reactions are still durable
// audit events.
const GovernanceChainID = "governance"

// GovernanceService wraps the governance reaction engine, durably
// appending every reaction's envelope to the ledger and gating the
// owner-override escape hatch behind a SessionContext/passphrase
// check.
type GovernanceService struct {
	engine          *governance.Engine
	ledger          *LedgerService
	ownerPassphrase string // Argon2id/SHA-256 hash; empty disables override in REAL auth mode
}

// NewGovernanceService builds a GovernanceService. ownerPassphraseHash
// is the stored hash checked by OwnerOverride in
// guard.AuthModePlatformIdentity mode; it may be empty only when no
// override is expected to be reachable (e.g. pure single-tenant dev
// setups where the caller already holds RoleOwner unconditionally).
func NewGovernanceService(engine *governance.Engine, l *LedgerService, ownerPassphraseHash string) *GovernanceService {
	return &GovernanceService{engine: engine, ledger: l, ownerPassphrase: ownerPassphraseHash}
}

// State returns the current governance state.
func (s *GovernanceService) State() governance.State {
	return s.engine.State()
}

// Reactions returns the bounded reaction history.
func (s *GovernanceService) Reactions() []governance.Reaction {
	return s.engine.Reactions()
}

// IsExecutionAllowed reports whether the current mode allows execution.
func (s *GovernanceService) IsExecutionAllowed() governance.ExecutionGate {
	return s.engine.IsExecutionAllowed()
}

// EvaluateIntegrity runs the integrity trigger and durably records its
// reaction, if any.
func (s *GovernanceService) EvaluateIntegrity(ctx context.Context, in governance.IntegrityInput) governance.State {
	before := len(s.engine.Reactions())
	state := s.engine.EvaluateIntegrity(in)
	s.appendNewReactions(ctx, before)
	return state
}

// RecordPolicyDeny runs the policy-deny-burst trigger.
func (s *GovernanceService) RecordPolicyDeny(ctx context.Context) governance.State {
	before := len(s.engine.Reactions())
	state := s.engine.RecordPolicyDeny()
	s.appendNewReactions(ctx, before)
	return state
}

// RecordNonceReplay runs the nonce-replay-flood trigger.
func (s *GovernanceService) RecordNonceReplay(ctx context.Context) governance.State {
	before := len(s.engine.Reactions())
	state := s.engine.RecordNonceReplay()
	s.appendNewReactions(ctx, before)
	return state
}

// CheckLedgerParity runs the ledger-mismatch trigger.
func (s *GovernanceService) CheckLedgerParity(ctx context.Context, buildSha, ledgerSha string) governance.State {
	before := len(s.engine.Reactions())
	state := s.engine.CheckLedgerParity(buildSha, ledgerSha)
	s.appendNewReactions(ctx, before)
	return state
}

// OwnerOverride applies target unconditionally. sc must hold at least
// policy.RoleOwner; in guard.AuthModePlatformIdentity mode, passphrase
// must also match the configured owner passphrase hash.
func (s *GovernanceService) OwnerOverride(ctx context.Context, sc guard.SessionContext, target governance.Mode, passphrase string) (governance.State, error) {
	if err := guard.AssertMinRole(sc, policy.RoleOwner); err != nil {
		return governance.State{}, err
	}
	if sc.AuthMode == guard.AuthModePlatformIdentity {
		if s.ownerPassphrase == "" {
			return governance.State{}, apperror.New(apperror.KindForbidden, "governance.override_not_configured", "owner override passphrase is not configured")
		}
		ok, err := guard.VerifyPassphrase(passphrase, s.ownerPassphrase)
		if err != nil || !ok {
			return governance.State{}, apperror.New(apperror.KindUnauthorized, "governance.override_passphrase_mismatch", "owner override passphrase does not match")
		}
	}

	before := len(s.engine.Reactions())
	state := s.engine.OwnerOverride(target)
	s.appendNewReactions(ctx, before)
	return state, nil
}

// appendNewReactions durably appends every reaction recorded since
// before (by index into the bounded ring buffer) to the governance
// chain. Best-effort and async: a reaction is still visible via
// Reactions() even if the durable append is later dropped under
// backpressure.
func (s *GovernanceService) appendNewReactions(_ context.Context, before int) {
	reactions := s.engine.Reactions()
	if before > len(reactions) {
		before = 0 // the ring buffer rotated past `before`; append everything still held
	}
	for _, r := range reactions[before:] {
		s.ledger.EnqueueAppend(GovernanceChainID, r.Envelope)
	}
}

package service

import (
	"context"
	"testing"

	"github.com/coreos-governance/core/internal/domain/governance"
	"github.com/coreos-governance/core/internal/domain/guard"
	"github.com/coreos-governance/core/internal/domain/ledger"
	"github.com/coreos-governance/core/internal/domain/policy"
)

func newTestGovernanceService(t *testing.T, cfg governance.Config, ownerPassphraseHash string) (*GovernanceService, *memLedgerStore) {
	t.Helper()
	store := newMemLedgerStore()
	ledgerSvc := NewLedgerService(ledger.New(store), nil)
	engine := governance.NewEngine(cfg, func() int64 { return 1_000_000 })
	return NewGovernanceService(engine, ledgerSvc, ownerPassphraseHash), store
}

func TestGovernanceServiceRecordPolicyDenyAppendsReactionsToLedger(t *testing.T) {
	svc, store := newTestGovernanceService(t, governance.Config{PolicyBurstThreshold: 2, PolicyBurstWindowMs: 60000}, "")
	svc.ledger.Start(context.Background())

	ctx := context.Background()
	var state governance.State
	for i := 0; i < 3; i++ {
		state = svc.RecordPolicyDeny(ctx)
	}
	if state.Mode != governance.ModeThrottled {
		t.Fatalf("Mode = %q, want THROTTLED", state.Mode)
	}

	if len(svc.Reactions()) == 0 {
		t.Fatal("expected at least one recorded reaction")
	}

	// Stop drains the queued reaction envelopes into the store.
	svc.ledger.Stop()
	if len(store.byChain[GovernanceChainID]) == 0 {
		t.Fatal("expected the reaction's envelope to be durably appended")
	}
}

func TestGovernanceServiceOwnerOverrideRequiresOwnerRole(t *testing.T) {
	svc, _ := newTestGovernanceService(t, governance.DefaultConfig(), "")

	sc := guard.SessionContext{Role: policy.RoleViewer, AuthMode: guard.AuthModeAnonymous}
	_, err := svc.OwnerOverride(context.Background(), sc, governance.ModeNormal, "")
	if err == nil {
		t.Fatal("expected an error for a non-owner role")
	}
}

func TestGovernanceServiceOwnerOverridePlatformIdentityRequiresPassphrase(t *testing.T) {
	hash, err := guard.HashPassphrase("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassphrase: %v", err)
	}
	svc, _ := newTestGovernanceService(t, governance.DefaultConfig(), hash)

	sc := guard.SessionContext{Role: policy.RoleOwner, AuthMode: guard.AuthModePlatformIdentity}

	if _, err := svc.OwnerOverride(context.Background(), sc, governance.ModeNormal, "wrong passphrase"); err == nil {
		t.Fatal("expected an error for a mismatched passphrase")
	}

	state, err := svc.OwnerOverride(context.Background(), sc, governance.ModeNormal, "correct horse battery staple")
	if err != nil {
		t.Fatalf("OwnerOverride with correct passphrase: %v", err)
	}
	if state.Mode != governance.ModeNormal {
		t.Fatalf("Mode = %q, want NORMAL", state.Mode)
	}
}

func TestGovernanceServiceOwnerOverrideAnonymousSkipsPassphrase(t *testing.T) {
	svc, _ := newTestGovernanceService(t, governance.DefaultConfig(), "")

	sc := guard.SessionContext{Role: policy.RoleOwner, AuthMode: guard.AuthModeAnonymous}
	state, err := svc.OwnerOverride(context.Background(), sc, governance.ModeNormal, "")
	if err != nil {
		t.Fatalf("OwnerOverride: %v", err)
	}
	if state.Mode != governance.ModeNormal {
		t.Fatalf("Mode = %q, want NORMAL", state.Mode)
	}
}

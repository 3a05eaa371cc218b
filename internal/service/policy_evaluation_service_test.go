package service

import (
	"context"
	"testing"

	"github.com/coreos-governance/core/internal/domain/guard"
	"github.com/coreos-governance/core/internal/domain/policy"
)

func TestPolicyEvaluationServiceEvaluateCapabilityAllows(t *testing.T) {
	engine := policy.NewEngine(policy.DefaultCapabilities(), policy.DefaultSpaces(), nil, func() int64 { return 1000 })
	svc := NewPolicyEvaluationService(engine, nil)

	sc := guard.SessionContext{AuthMode: guard.AuthModePlatformIdentity, Role: policy.RoleUser}
	decision, explain := svc.EvaluateCapability(context.Background(), sc, CapabilityEvaluateRequest{
		CapabilityID: "vfs.write",
		PolicyTags:   []string{"fs.write"},
	})
	if decision.Type != policy.DecisionAllow {
		t.Fatalf("Type = %q, want allow", decision.Type)
	}
	if explain.Decision != policy.DecisionAllow {
		t.Fatalf("Explanation.Decision = %q, want allow", explain.Decision)
	}
}

func TestPolicyEvaluationServiceEvaluateCapabilityAnonymousDenies(t *testing.T) {
	engine := policy.NewEngine(policy.DefaultCapabilities(), policy.DefaultSpaces(), nil, func() int64 { return 1000 })
	svc := NewPolicyEvaluationService(engine, nil)

	sc := guard.SessionContext{AuthMode: guard.AuthModeAnonymous, Role: policy.RoleOwner}
	decision, _ := svc.EvaluateCapability(context.Background(), sc, CapabilityEvaluateRequest{
		CapabilityID: "vfs.write",
		PolicyTags:   []string{"fs.write"},
	})
	if decision.Type != policy.DecisionDeny {
		t.Fatalf("Type = %q, want deny", decision.Type)
	}
}

func TestPolicyEvaluationServiceCognitiveModeOverrideLocks(t *testing.T) {
	engine := policy.NewEngine(policy.DefaultCapabilities(), policy.DefaultSpaces(), nil, func() int64 { return 1000 })
	svc := NewPolicyEvaluationService(engine, func() policy.CognitiveMode { return policy.CognitiveModeLocked })

	sc := guard.SessionContext{AuthMode: guard.AuthModePlatformIdentity, Role: policy.RoleOwner}
	decision, explain := svc.EvaluateCapability(context.Background(), sc, CapabilityEvaluateRequest{
		CapabilityID: "vfs.write",
		PolicyTags:   []string{"fs.write"},
	})
	if decision.Type != policy.DecisionDeny {
		t.Fatalf("Type = %q, want deny", decision.Type)
	}
	if explain.FailedRule != "cognitive_mode_locked" {
		t.Fatalf("FailedRule = %q", explain.FailedRule)
	}
}

func TestPolicyEvaluationServiceEvaluateSpaceAccess(t *testing.T) {
	engine := policy.NewEngine(policy.DefaultCapabilities(), policy.DefaultSpaces(), nil, func() int64 { return 1000 })
	svc := NewPolicyEvaluationService(engine, nil)

	sc := guard.SessionContext{AuthMode: guard.AuthModePlatformIdentity, Role: policy.RoleUser}
	decision, _ := svc.EvaluateSpaceAccess(sc, SpaceEvaluateRequest{
		SpaceID: "public",
		Action:  policy.SpaceActionAccess,
	})
	if decision.Type != policy.DecisionAllow {
		t.Fatalf("Type = %q, want allow", decision.Type)
	}
}

func TestPolicyEvaluationServiceEvaluateSpaceAccessRequiresRole(t *testing.T) {
	engine := policy.NewEngine(policy.DefaultCapabilities(), policy.DefaultSpaces(), nil, func() int64 { return 1000 })
	svc := NewPolicyEvaluationService(engine, nil)

	sc := guard.SessionContext{AuthMode: guard.AuthModePlatformIdentity, Role: policy.RoleViewer}
	decision, _ := svc.EvaluateSpaceAccess(sc, SpaceEvaluateRequest{
		SpaceID: "admin",
		Action:  policy.SpaceActionAccess,
	})
	if decision.Type != policy.DecisionDeny {
		t.Fatalf("Type = %q, want deny", decision.Type)
	}
}

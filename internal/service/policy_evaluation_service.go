package service

import (
	"context"

	"github.com/coreos-governance/core/internal/domain/guard"
	"github.com/coreos-governance/core/internal/domain/policy"
)

// CapabilityEvaluateRequest is the inbound-adapter-facing request shape
// for a capability invocation check.
type CapabilityEvaluateRequest struct {
	CorrelationID string
	IntentType    string
	CapabilityID  string
	StepUpOK      bool
	PolicyTags    []string
	Vars          map[string]interface{}
}

// SpaceEvaluateRequest is the inbound-adapter-facing request shape for
// a space-scoped action check.
type SpaceEvaluateRequest struct {
	CorrelationID string
	IntentType    string
	SpaceID       string
	Action        policy.SpaceAction
	PolicyTags    []string
}

// PolicyEvaluationService projects a guard.SessionContext and a request
// DTO down to policy.EvaluationContext and calls the capability/space
// engine, returning the decision alongside its explanation for callers
// that want to surface the reason chain (the admin API, debugging
// tools).
type PolicyEvaluationService struct {
	engine        *policy.Engine
	cognitiveMode func() policy.CognitiveMode
}

// NewPolicyEvaluationService builds a PolicyEvaluationService.
// cognitiveMode may be nil, in which case the system is always treated
// as unlocked.
func NewPolicyEvaluationService(engine *policy.Engine, cognitiveMode func() policy.CognitiveMode) *PolicyEvaluationService {
	if cognitiveMode == nil {
		cognitiveMode = func() policy.CognitiveMode { return policy.CognitiveModeUnlocked }
	}
	return &PolicyEvaluationService{engine: engine, cognitiveMode: cognitiveMode}
}

// EvaluateCapability checks req against sc.
func (s *PolicyEvaluationService) EvaluateCapability(ctx context.Context, sc guard.SessionContext, req CapabilityEvaluateRequest) (policy.PolicyDecision, policy.Explanation) {
	evalCtx := policy.EvaluationContext{
		CorrelationID: req.CorrelationID,
		IntentType:    req.IntentType,
		Authenticated: sc.AuthMode == guard.AuthModePlatformIdentity,
		Role:          sc.Role,
		PolicyTags:    req.PolicyTags,
		StepUpOK:      req.StepUpOK,
		CapabilityID:  req.CapabilityID,
		Vars:          req.Vars,
	}
	return s.engine.Evaluate(ctx, evalCtx, s.cognitiveMode())
}

// EvaluateSpaceAccess checks req against sc.
func (s *PolicyEvaluationService) EvaluateSpaceAccess(sc guard.SessionContext, req SpaceEvaluateRequest) (policy.PolicyDecision, policy.Explanation) {
	evalCtx := policy.EvaluationContext{
		CorrelationID: req.CorrelationID,
		IntentType:    req.IntentType,
		Authenticated: sc.AuthMode == guard.AuthModePlatformIdentity,
		Role:          sc.Role,
		PolicyTags:    req.PolicyTags,
		SpaceID:       req.SpaceID,
		Action:        req.Action,
	}
	return s.engine.EvaluateSpaceAccess(evalCtx)
}

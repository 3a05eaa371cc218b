package policy

import "context"

// ConditionEvaluator evaluates a compiled condition expression (CEL in
// the shipped adapter) against an EvaluationContext's Vars. Engine
// depends only on this port, not on any expression-language package.
type ConditionEvaluator interface {
	Evaluate(ctx context.Context, expression string, vars map[string]interface{}) (bool, error)
}

// Clock returns epoch milliseconds; overridden in tests for determinism.
type Clock func() int64

// Engine evaluates capability and space-access requests against fixed
// registries. Registries are read-only after construction; callers
// needing live updates replace the Engine, they do not mutate it.
type Engine struct {
	capabilities map[string]CapabilityPolicy
	spaces       map[string]SpacePolicy
	conditions   ConditionEvaluator // may be nil: capabilities with no Condition never call it
	clock        Clock
}

// NewEngine builds an Engine from fixed capability and space registries.
// conditions may be nil if no registered CapabilityPolicy sets Condition.
func NewEngine(capabilities []CapabilityPolicy, spaces []SpacePolicy, conditions ConditionEvaluator, clock Clock) *Engine {
	capMap := make(map[string]CapabilityPolicy, len(capabilities))
	for _, c := range capabilities {
		capMap[c.CapabilityID] = c
	}
	spaceMap := make(map[string]SpacePolicy, len(spaces))
	for _, s := range spaces {
		spaceMap[s.SpaceID] = s
	}
	if clock == nil {
		clock = func() int64 { return 0 }
	}
	return &Engine{capabilities: capMap, spaces: spaceMap, conditions: conditions, clock: clock}
}

// Evaluate resolves a capability-invocation request in a fixed,
// deterministic order:
//  1. unknown capability -> deny
//  2. locked cognitive mode -> deny
//  3. not authenticated -> deny
//  4. missing a required policy tag -> deny
//  5. step-up required and not satisfied -> require_stepup
//  6. an unsatisfied Condition -> deny
//  7. otherwise -> allow
//
// Every branch returns exactly one PolicyDecision and exactly one
// Explanation; the reason chain records every check performed, not
// just the one that decided the outcome.
func (e *Engine) Evaluate(ctx context.Context, evalCtx EvaluationContext, mode CognitiveMode) (PolicyDecision, Explanation) {
	chain := make([]string, 0, 6)
	explain := func(d DecisionType, failedRule string) Explanation {
		return Explanation{
			Decision:      d,
			IntentType:    evalCtx.IntentType,
			CorrelationID: evalCtx.CorrelationID,
			CapabilityID:  evalCtx.CapabilityID,
			PolicyDomain:  PolicyDomainCapability,
			FailedRule:    failedRule,
			ReasonChain:   chain,
			Timestamp:     e.clock(),
		}
	}

	cap, known := e.capabilities[evalCtx.CapabilityID]
	if !known {
		chain = append(chain, "unknown capability")
		return PolicyDecision{Type: DecisionDeny, Reason: "Unknown capability"}, explain(DecisionDeny, "unknown_capability")
	}
	chain = append(chain, "capability registered")

	if mode == CognitiveModeLocked {
		chain = append(chain, "cognitive mode locked")
		return PolicyDecision{Type: DecisionDeny, Reason: "System is locked"}, explain(DecisionDeny, "cognitive_mode_locked")
	}
	chain = append(chain, "cognitive mode unlocked")

	if !evalCtx.Authenticated {
		chain = append(chain, "not authenticated")
		return PolicyDecision{Type: DecisionDeny, Reason: "Not authenticated"}, explain(DecisionDeny, "not_authenticated")
	}
	chain = append(chain, "authenticated")

	if missing := firstMissingTag(cap.RequiredPolicies, evalCtx.PolicyTags); missing != "" {
		chain = append(chain, "missing required policy tag: "+missing)
		return PolicyDecision{Type: DecisionDeny, Reason: "Missing required policy: " + missing}, explain(DecisionDeny, "missing_policy_tag")
	}
	chain = append(chain, "required policy tags satisfied")

	if cap.RequiresStepUp && !evalCtx.StepUpOK {
		chain = append(chain, "step-up required and not satisfied")
		return PolicyDecision{Type: DecisionRequireStepUp, ChallengeID: cap.CapabilityID}, explain(DecisionRequireStepUp, "stepup_required")
	}
	chain = append(chain, "step-up satisfied or not required")

	if cap.Condition != "" {
		ok, err := e.evaluateCondition(ctx, cap.Condition, evalCtx.Vars)
		if err != nil {
			chain = append(chain, "condition evaluation error: "+err.Error())
			return PolicyDecision{Type: DecisionDeny, Reason: "Condition evaluation failed"}, explain(DecisionDeny, "condition_error")
		}
		if !ok {
			chain = append(chain, "condition not satisfied")
			return PolicyDecision{Type: DecisionDeny, Reason: "Condition not satisfied"}, explain(DecisionDeny, "condition_unsatisfied")
		}
		chain = append(chain, "condition satisfied")
	}

	return PolicyDecision{Type: DecisionAllow}, explain(DecisionAllow, "")
}

// evaluateSpaceAccessExplanation resolves a space-scoped action in a fixed order:
//  1. not authenticated -> deny
//  2. role hierarchy unmet -> deny
//  3. a required policy tag missing -> deny
//  4. the action's permission bit is false -> deny
//  5. otherwise -> allow
//
// A space with no registered SpacePolicy falls back to
// defaultSpacePolicy (open to any authenticated principal).
func (e *Engine) evaluateSpaceAccessExplanation(evalCtx EvaluationContext) Explanation {
	chain := make([]string, 0, 5)
	explain := func(d DecisionType, failedRule string) Explanation {
		return Explanation{
			Decision:      d,
			IntentType:    evalCtx.IntentType,
			CorrelationID: evalCtx.CorrelationID,
			SpaceID:       evalCtx.SpaceID,
			PolicyDomain:  PolicyDomainSpace,
			FailedRule:    failedRule,
			ReasonChain:   chain,
			Timestamp:     e.clock(),
		}
	}

	if !evalCtx.Authenticated {
		chain = append(chain, "not authenticated")
		return explain(DecisionDeny, "not_authenticated")
	}
	chain = append(chain, "authenticated")

	sp, known := e.spaces[evalCtx.SpaceID]
	if !known {
		sp = defaultSpacePolicy
		chain = append(chain, "space unregistered, default policy applied")
	} else {
		chain = append(chain, "space policy registered")
	}

	if sp.RequiredRole != "" && !meetsRole(evalCtx.Role, sp.RequiredRole) {
		chain = append(chain, "role hierarchy unmet")
		return explain(DecisionDeny, "role_hierarchy")
	}
	chain = append(chain, "role hierarchy satisfied")

	if missing := firstMissingTag(sp.RequiredPolicies, evalCtx.PolicyTags); missing != "" {
		chain = append(chain, "missing required policy tag: "+missing)
		return explain(DecisionDeny, "missing_policy_tag")
	}
	chain = append(chain, "required policy tags satisfied")

	if !actionAllowed(sp.Permissions, evalCtx.Action) {
		chain = append(chain, "action not permitted by space policy")
		return explain(DecisionDeny, "action_forbidden")
	}
	chain = append(chain, "action permitted")

	return explain(DecisionAllow, "")
}

// EvaluateSpaceAccess is the public entry point; it returns the
// decision alongside the Explanation built by evaluateSpaceAccessExplanation.
func (e *Engine) EvaluateSpaceAccess(evalCtx EvaluationContext) (PolicyDecision, Explanation) {
	ex := e.evaluateSpaceAccessExplanation(evalCtx)
	if ex.Decision == DecisionAllow {
		return PolicyDecision{Type: DecisionAllow}, ex
	}
	return PolicyDecision{Type: DecisionDeny, Reason: ex.FailedRule}, ex
}

func (e *Engine) evaluateCondition(ctx context.Context, expr string, vars map[string]interface{}) (bool, error) {
	if e.conditions == nil {
		return false, errConditionEvaluatorNotConfigured
	}
	return e.conditions.Evaluate(ctx, expr, vars)
}

func actionAllowed(p SpacePermissions, a SpaceAction) bool {
	switch a {
	case SpaceActionAccess:
		return p.CanAccess
	case SpaceActionOpenWindow:
		return p.CanOpenWindow
	case SpaceActionFocusWindow:
		return p.CanFocusWindow
	case SpaceActionMoveWindow:
		return p.CanMoveWindow
	default:
		return false
	}
}

// firstMissingTag returns the first tag in required not present in held,
// or "" if all are present.
func firstMissingTag(required, held []string) string {
	heldSet := make(map[string]struct{}, len(held))
	for _, h := range held {
		heldSet[h] = struct{}{}
	}
	for _, r := range required {
		if _, ok := heldSet[r]; !ok {
			return r
		}
	}
	return ""
}

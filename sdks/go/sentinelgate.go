// Package sentinelgate provides a Go SDK for the Core's admin policy
// evaluation API. It lets a Go process ask, before taking an action,
// whether the Core's capability and space policies allow it.
//
// Quick start:
//
//	// Set CORE_SERVER_ADDR (and, in multi-tenant mode, CORE_TENANT_ID /
//	// CORE_SESSION_ID), then:
//	client := sentinelgate.NewClient()
//
//	decision, err := client.EvaluateCapability(ctx, sentinelgate.CapabilityEvaluateRequest{
//	    CapabilityID: "fs.write",
//	    IntentType:   "tool_call",
//	})
//	if err != nil {
//	    var denied *sentinelgate.PolicyDeniedError
//	    if errors.As(err, &denied) {
//	        fmt.Printf("denied: %s\n", denied.Reason)
//	    }
//	}
package sentinelgate

// DecisionType is the outcome of a capability or space evaluation.
type DecisionType string

const (
	DecisionAllow         DecisionType = "allow"
	DecisionDeny          DecisionType = "deny"
	DecisionRequireStepUp DecisionType = "require_stepup"
	DecisionDegrade       DecisionType = "degrade"
)

// SpaceAction is the action kind passed to EvaluateSpaceAccess.
type SpaceAction string

const (
	SpaceActionAccess      SpaceAction = "access"
	SpaceActionOpenWindow  SpaceAction = "openWindow"
	SpaceActionFocusWindow SpaceAction = "focusWindow"
	SpaceActionMoveWindow  SpaceAction = "moveWindow"
)

// CapabilityEvaluateRequest asks whether the calling session may invoke
// a capability. Fields mirror the server's policy_handlers.go decode
// shape.
type CapabilityEvaluateRequest struct {
	CorrelationID string                 `json:"CorrelationID,omitempty"`
	IntentType    string                 `json:"IntentType,omitempty"`
	CapabilityID  string                 `json:"CapabilityID"`
	StepUpOK      bool                   `json:"StepUpOK,omitempty"`
	PolicyTags    []string               `json:"PolicyTags,omitempty"`
	Vars          map[string]interface{} `json:"Vars,omitempty"`
}

// SpaceEvaluateRequest asks whether the calling session may perform an
// action against a space.
type SpaceEvaluateRequest struct {
	CorrelationID string      `json:"CorrelationID,omitempty"`
	IntentType    string      `json:"IntentType,omitempty"`
	SpaceID       string      `json:"SpaceID"`
	Action        SpaceAction `json:"Action"`
	PolicyTags    []string    `json:"PolicyTags,omitempty"`
}

// PolicyDecision is the raw decision returned by the server. Reason is
// set on deny and degrade, ChallengeID only on require_stepup.
type PolicyDecision struct {
	Type        DecisionType `json:"type"`
	Reason      string       `json:"reason,omitempty"`
	ChallengeID string       `json:"challengeId,omitempty"`
}

// Explanation is the server's audit-grade account of why a decision
// was reached.
type Explanation struct {
	Decision      DecisionType `json:"decision"`
	IntentType    string       `json:"intentType"`
	CorrelationID string       `json:"correlationId"`
	CapabilityID  string       `json:"capabilityId,omitempty"`
	SpaceID       string       `json:"spaceId,omitempty"`
	WindowID      string       `json:"windowId,omitempty"`
	PolicyDomain  string       `json:"policyDomain"`
	FailedRule    string       `json:"failedRule,omitempty"`
	ReasonChain   []string     `json:"reasonChain"`
	Timestamp     int64        `json:"timestamp"`
}

// EvaluateResponse wraps a decision with its explanation, matching the
// server's policyEvaluateResponse envelope.
type EvaluateResponse struct {
	Decision    PolicyDecision `json:"decision"`
	Explanation Explanation    `json:"explanation"`
}

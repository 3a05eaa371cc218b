package vfs

import (
	"github.com/coreos-governance/core/internal/domain/audit"
)

// GateInput is the request state the governance gate decides over.
type GateInput struct {
	FeatureEnabled     bool
	LocalhostOverride  bool // an explicit, documented dev-only bypass of FeatureEnabled
	Operation          Operation
	Path               Path
	TraceID            string
}

// GateDecision is the outcome of one governance gate check, paired
// 1:1 with an audit envelope: every decision, allow or deny, is
// audited.
type GateDecision struct {
	Allowed  bool
	Denied   error // nil when Allowed; otherwise one of the Err* sentinels in types.go
	Envelope audit.Envelope
}

// Gate evaluates the governance write gate of spec.md §4.8:
//  1. feature flag off (and no explicit localhost override) -> deny GOVERNANCE_BLOCK
//  2. a write-family operation targeting scheme system -> deny PERMISSION_DENIED
//  3. otherwise -> allow
func Gate(in GateInput) GateDecision {
	if !in.FeatureEnabled && !in.LocalhostOverride {
		return build(in, false, ErrGovernanceBlock, audit.Events["VFSGovernanceBlock"])
	}
	if in.Operation.isWriteFamily() && in.Path.Scheme == SchemeSystem {
		return build(in, false, ErrPermissionDenied, audit.Events["VFSWriteDenied"])
	}
	return build(in, true, nil, audit.Events["VFSWriteAllowed"])
}

func build(in GateInput, allowed bool, denied error, event audit.Event) GateDecision {
	severity := audit.SeverityInfo
	if !allowed {
		severity = audit.SeverityWarn
	}
	env, err := audit.NewEnvelope(audit.NewEnvelopeParams{
		Event:    event,
		TraceID:  in.TraceID,
		Severity: severity,
		Context: map[string]interface{}{
			"path":      in.Path.String(),
			"operation": string(in.Operation),
			"allowed":   allowed,
		},
	}, nil)
	if err != nil {
		// Only reachable if in.TraceID is empty or event is not a taxonomy
		// member, both programming errors in this package; envelope is
		// left zero-valued and the decision still carries the right
		// Allowed/Denied outcome.
		env = audit.Envelope{}
	}
	return GateDecision{Allowed: allowed, Denied: denied, Envelope: env}
}

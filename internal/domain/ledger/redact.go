package ledger

// RedactionAction is the transformation applied to a matched field.
type RedactionAction string

const (
	// RedactMask replaces the value with a fixed placeholder.
	RedactMask RedactionAction = "mask"
	// RedactDrop removes the field entirely.
	RedactDrop RedactionAction = "drop"
)

// RedactionRule matches a payload.context field by exact name.
type RedactionRule struct {
	Field  string
	Action RedactionAction
}

// RedactionPolicy is a closed configuration of field-name matches and
// the transformation to apply to each.
type RedactionPolicy struct {
	Rules       []RedactionRule
	MaskedValue string // defaults to "***REDACTED***" when empty
}

const defaultMaskedValue = "***REDACTED***"

// Redact applies policy to record.Payload.Context only, returning a new
// record. RecordHash is preserved verbatim so the chain remains
// verifiable even though payload content has been scrubbed — this is a
// presentation-layer transform, not a ledger mutation.
func Redact(record AuditRecord, policy RedactionPolicy) AuditRecord {
	out := record
	if len(record.Payload.Context) == 0 || len(policy.Rules) == 0 {
		return out
	}
	masked := policy.MaskedValue
	if masked == "" {
		masked = defaultMaskedValue
	}

	newCtx := make(map[string]interface{}, len(record.Payload.Context))
	for k, v := range record.Payload.Context {
		newCtx[k] = v
	}
	for _, rule := range policy.Rules {
		if _, ok := newCtx[rule.Field]; !ok {
			continue
		}
		switch rule.Action {
		case RedactDrop:
			delete(newCtx, rule.Field)
		case RedactMask:
			newCtx[rule.Field] = masked
		}
	}
	out.Payload.Context = newCtx
	return out
}

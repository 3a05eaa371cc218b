package policy

import "errors"

var errConditionEvaluatorNotConfigured = errors.New("policy: capability has a Condition but no ConditionEvaluator is configured")

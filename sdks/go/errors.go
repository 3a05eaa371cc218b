package sentinelgate

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrPolicyDenied is returned when an evaluation results in a deny decision.
	ErrPolicyDenied = errors.New("policy denied")

	// ErrStepUpRequired is returned when an evaluation requires a step-up challenge.
	ErrStepUpRequired = errors.New("step-up required")

	// ErrServerUnreachable is returned when the Core's admin API cannot be contacted.
	ErrServerUnreachable = errors.New("server unreachable")
)

// SentinelGateError is the base error type for SDK errors.
type SentinelGateError struct {
	// Code is a machine-readable error code.
	Code string
	// Err is the underlying error.
	Err error
}

// Error returns the error message.
func (e *SentinelGateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sentinelgate [%s]: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("sentinelgate [%s]", e.Code)
}

// Unwrap returns the underlying error.
func (e *SentinelGateError) Unwrap() error {
	return e.Err
}

// PolicyDeniedError is returned when an evaluation results in a deny decision.
type PolicyDeniedError struct {
	// Reason explains why the action was denied.
	Reason string
	// FailedRule names the policy domain/rule that produced the denial.
	FailedRule string
	// CorrelationID is the caller-supplied correlation ID, if any.
	CorrelationID string
}

// Error returns a human-readable description of the policy denial.
func (e *PolicyDeniedError) Error() string {
	if e.FailedRule != "" {
		return fmt.Sprintf("policy denied (%s): %s", e.FailedRule, e.Reason)
	}
	return fmt.Sprintf("policy denied: %s", e.Reason)
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrPolicyDenied).
func (e *PolicyDeniedError) Is(target error) bool {
	return target == ErrPolicyDenied
}

// StepUpRequiredError is returned when an evaluation requires a
// step-up challenge before the action can proceed.
type StepUpRequiredError struct {
	// ChallengeID identifies the pending step-up challenge.
	ChallengeID string
}

// Error returns a human-readable description of the step-up requirement.
func (e *StepUpRequiredError) Error() string {
	return fmt.Sprintf("step-up required, challenge %s", e.ChallengeID)
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrStepUpRequired).
func (e *StepUpRequiredError) Is(target error) bool {
	return target == ErrStepUpRequired
}

// ServerUnreachableError is returned when the Core's admin API cannot be contacted.
type ServerUnreachableError struct {
	// Cause is the underlying error that caused the server to be unreachable.
	Cause error
}

// Error returns a human-readable description of the server unreachable error.
func (e *ServerUnreachableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("server unreachable: %v", e.Cause)
	}
	return "server unreachable"
}

// Unwrap returns the underlying error cause.
func (e *ServerUnreachableError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrServerUnreachable).
func (e *ServerUnreachableError) Is(target error) bool {
	return target == ErrServerUnreachable
}

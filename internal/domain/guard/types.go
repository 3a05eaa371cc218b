// Package guard resolves a SessionContext from inbound request state:
// a synthetic single-tenant context when multi-tenancy is off, or a
// fully validated tenant/session/membership chain when it is on. Every
// mutation below this layer carries the resolved context.
package guard

import (
	"errors"

	"github.com/coreos-governance/core/internal/domain/policy"
)

// AuthMode records how the principal in a SessionContext was
// authenticated.
type AuthMode string

const (
	AuthModePlatformIdentity AuthMode = "platform_identity"
	AuthModeAnonymous        AuthMode = "anonymous"
)

// SessionContext is the resolved principal state carried through every
// mutation below the guard layer.
type SessionContext struct {
	TenantID  string      `json:"tenantId"`
	UserID    string      `json:"userId,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
	Role      policy.Role `json:"role"`
	IssuedAt  int64       `json:"issuedAt"`
	AuthMode  AuthMode    `json:"authMode"`
	DeviceID  string      `json:"deviceId,omitempty"`
}

// ErrorCode is the closed set of guard failure codes from spec.md §6.
type ErrorCode string

const (
	ErrorCodeHeadersMissing ErrorCode = "TENANT_HEADERS_MISSING"
	ErrorCodeAuthRequired   ErrorCode = "AUTH_REQUIRED"
	ErrorCodeMemberRequired ErrorCode = "TENANT_MEMBER_REQUIRED"
	ErrorCodeSessionInvalid ErrorCode = "TENANT_SESSION_INVALID"
	ErrorCodeSessionRevoked ErrorCode = "TENANT_SESSION_REVOKED"
	ErrorCodeInsufficientRole ErrorCode = "INSUFFICIENT_ROLE"
)

// httpStatus maps a guard ErrorCode to its HTTP status, per spec.md §4.7.
func (c ErrorCode) httpStatus() int {
	switch c {
	case ErrorCodeHeadersMissing, ErrorCodeAuthRequired, ErrorCodeSessionInvalid, ErrorCodeSessionRevoked:
		return 401
	case ErrorCodeMemberRequired, ErrorCodeInsufficientRole:
		return 403
	default:
		return 401
	}
}

// Error is the typed error returned by Resolve and AssertMinRole.
type Error struct {
	Code       ErrorCode
	HTTPStatus int
	Message    string
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, HTTPStatus: code.httpStatus(), Message: message}
}

var errNilResolveInput = errors.New("guard: nil ResolveInput")

// ResolveInput is the request-derived state Resolve reasons over; the
// inbound adapter is responsible for extracting headers and platform
// identity before calling Resolve.
type ResolveInput struct {
	MultiTenantEnabled    bool
	TenantIDHeader        string
	SessionIDHeader       string
	PlatformIdentityID    string
	PlatformIdentityHasID bool
	DeviceIDHeader        string
}

// SingleTenantID is the synthetic tenant bound to single-tenant mode.
const SingleTenantID = "default"

// SessionMaxAgeMillis is the staleness cutoff past which a session is
// considered invalid regardless of its Revoked flag.
const SessionMaxAgeMillis = 24 * 60 * 60 * 1000

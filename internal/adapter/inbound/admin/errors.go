package admin

import (
	"errors"
	"net/http"

	"github.com/coreos-governance/core/internal/apperror"
	"github.com/coreos-governance/core/internal/domain/guard"
	"github.com/coreos-governance/core/internal/domain/vfs"
)

var errGuardNotConfigured = errors.New("admin: guard service not configured")

// writeError maps a domain or guard error to the right HTTP status and
// writes it as a JSON error body. Guard errors already carry their own
// status per spec.md §4.7; apperror.Error carries a closed Kind that maps
// onto the same status table; the VFS gate's sentinel errors are mapped
// by hand since they predate apperror.
func (h *AdminAPIHandler) writeError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	var guardErr *guard.Error
	if errors.As(err, &guardErr) {
		h.respondError(w, guardErr.HTTPStatus, guardErr.Message)
		return
	}
	if appErr, ok := apperror.As(err); ok {
		h.respondError(w, statusForKind(appErr.Kind), appErr.Message)
		return
	}
	switch {
	case errors.Is(err, vfs.ErrGovernanceBlock):
		h.respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, vfs.ErrPermissionDenied):
		h.respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, vfs.ErrConflict):
		h.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, vfs.ErrInvalidPath):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func statusForKind(k apperror.Kind) int {
	switch k {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindForbidden, apperror.KindGovernanceBlock:
		return http.StatusForbidden
	case apperror.KindIntegrity:
		return http.StatusUnprocessableEntity
	case apperror.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

package admin

import (
	"encoding/json"
	"net/http"

	"github.com/coreos-governance/core/internal/domain/vfs"
)

type vfsCheckWriteRequest struct {
	Operation vfs.Operation `json:"operation"`
	Path      vfs.Path      `json:"path"`
	TraceID   string        `json:"trace_id"`
}

func (h *AdminAPIHandler) handleVFSCheckWrite(w http.ResponseWriter, r *http.Request) {
	if h.vfs == nil {
		h.respondError(w, http.StatusServiceUnavailable, "vfs service not configured")
		return
	}
	var req vfsCheckWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.TraceID == "" {
		h.respondError(w, http.StatusBadRequest, "trace_id is required")
		return
	}
	if err := h.vfs.CheckWrite(r.Context(), req.Operation, req.Path, req.TraceID); err != nil {
		h.writeError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"allowed": true})
}

type vfsScanRequest struct {
	Root vfs.Path `json:"root"`
}

func (h *AdminAPIHandler) handleVFSScan(w http.ResponseWriter, r *http.Request) {
	if h.vfs == nil {
		h.respondError(w, http.StatusServiceUnavailable, "vfs service not configured")
		return
	}
	var req vfsScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	records, err := h.vfs.Scan(r.Context(), req.Root)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"conflicts": records})
}

func (h *AdminAPIHandler) handleVFSListConflicts(w http.ResponseWriter, r *http.Request) {
	if h.vfs == nil {
		h.respondError(w, http.StatusServiceUnavailable, "vfs service not configured")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"conflicts": h.vfs.Conflicts()})
}

type vfsConflictActionRequest struct {
	ID         string `json:"id"`
	Resolution string `json:"resolution"`
}

func (h *AdminAPIHandler) handleVFSResolveConflict(w http.ResponseWriter, r *http.Request) {
	h.vfsConflictAction(w, r, h.vfs.ResolveConflict)
}

func (h *AdminAPIHandler) handleVFSIgnoreConflict(w http.ResponseWriter, r *http.Request) {
	h.vfsConflictAction(w, r, h.vfs.IgnoreConflict)
}

func (h *AdminAPIHandler) vfsConflictAction(w http.ResponseWriter, r *http.Request, action func(id, resolution string) bool) {
	if h.vfs == nil {
		h.respondError(w, http.StatusServiceUnavailable, "vfs service not configured")
		return
	}
	var req vfsConflictActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ID == "" {
		h.respondError(w, http.StatusBadRequest, "id is required")
		return
	}
	if !action(req.ID, req.Resolution) {
		h.respondError(w, http.StatusNotFound, "conflict not found")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

type vfsSyncReplayRequest struct {
	ParentPath   string   `json:"parent_path"`
	CanonicalKey string   `json:"canonical_key"`
	Entries      []string `json:"entries"`
}

// handleVFSReplaySyncConflict ingests one conflict recovered from an
// offline sync log - the sync-replay source spec.md §3 names alongside
// scan and manual.
func (h *AdminAPIHandler) handleVFSReplaySyncConflict(w http.ResponseWriter, r *http.Request) {
	if h.vfs == nil {
		h.respondError(w, http.StatusServiceUnavailable, "vfs service not configured")
		return
	}
	var req vfsSyncReplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ParentPath == "" || req.CanonicalKey == "" {
		h.respondError(w, http.StatusBadRequest, "parent_path and canonical_key are required")
		return
	}
	rec, isNew := h.vfs.ReplaySyncConflict(req.ParentPath, req.CanonicalKey, req.Entries)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"conflict": rec, "new": isNew})
}

type vfsManualConflictRequest struct {
	Type         vfs.ConflictType `json:"type"`
	ParentPath   string           `json:"parent_path"`
	CanonicalKey string           `json:"canonical_key"`
	Entries      []string         `json:"entries"`
}

// handleVFSReportManualConflict files an operator-reported conflict
// directly, the "manual" source spec.md §3 names.
func (h *AdminAPIHandler) handleVFSReportManualConflict(w http.ResponseWriter, r *http.Request) {
	if h.vfs == nil {
		h.respondError(w, http.StatusServiceUnavailable, "vfs service not configured")
		return
	}
	var req vfsManualConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Type == "" || req.ParentPath == "" || req.CanonicalKey == "" {
		h.respondError(w, http.StatusBadRequest, "type, parent_path and canonical_key are required")
		return
	}
	rec, isNew := h.vfs.ReportManualConflict(req.Type, req.ParentPath, req.CanonicalKey, req.Entries)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"conflict": rec, "new": isNew})
}

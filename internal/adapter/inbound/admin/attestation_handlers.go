package admin

import (
	"encoding/json"
	"net/http"

	"github.com/coreos-governance/core/internal/domain/attestation"
)

type attestationCutRequest struct {
	ChainID     string `json:"chain_id"`
	FromSeq     uint64 `json:"from_seq"`
	Count       int    `json:"count"`
	SegmentName string `json:"segment_name"`
}

func (h *AdminAPIHandler) handleAttestationCutAndSign(w http.ResponseWriter, r *http.Request) {
	if h.attestation == nil {
		h.respondError(w, http.StatusServiceUnavailable, "attestation service not configured")
		return
	}
	var req attestationCutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ChainID == "" || req.SegmentName == "" {
		h.respondError(w, http.StatusBadRequest, "chain_id and segment_name are required")
		return
	}
	manifest, err := h.attestation.CutAndSign(r.Context(), req.ChainID, req.FromSeq, req.Count, req.SegmentName)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, manifest)
}

type attestationVerifyRequest struct {
	JSONL     []byte               `json:"jsonl"`
	Manifest  attestation.Manifest `json:"manifest"`
	PublicKey []byte               `json:"public_key"`
}

func (h *AdminAPIHandler) handleAttestationVerify(w http.ResponseWriter, r *http.Request) {
	if h.attestation == nil {
		h.respondError(w, http.StatusServiceUnavailable, "attestation service not configured")
		return
	}
	var req attestationVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result := h.attestation.Verify(req.JSONL, req.Manifest, req.PublicKey)
	h.respondJSON(w, http.StatusOK, result)
}

type attestationContinuityRequest struct {
	Manifests []attestation.Manifest `json:"manifests"`
}

func (h *AdminAPIHandler) handleAttestationContinuity(w http.ResponseWriter, r *http.Request) {
	if h.attestation == nil {
		h.respondError(w, http.StatusServiceUnavailable, "attestation service not configured")
		return
	}
	var req attestationContinuityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	breaks := h.attestation.CheckContinuity(req.Manifests)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"breaks": breaks})
}

func (h *AdminAPIHandler) handleAttestationPublicKey(w http.ResponseWriter, r *http.Request) {
	if h.attestation == nil {
		h.respondError(w, http.StatusServiceUnavailable, "attestation service not configured")
		return
	}
	key, err := h.attestation.PublicKey(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"public_key": key})
}

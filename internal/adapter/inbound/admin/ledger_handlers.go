package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/coreos-governance/core/internal/domain/ledger"
)

// LedgerRecordsResponse is the JSON response for GET /admin/api/v1/ledger/records.
type LedgerRecordsResponse struct {
	Records []ledger.AuditRecord `json:"records"`
	Count   int                  `json:"count"`
}

func (h *AdminAPIHandler) handleLedgerRecords(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		h.respondError(w, http.StatusServiceUnavailable, "ledger service not configured")
		return
	}
	q := r.URL.Query()
	chainID := q.Get("chain_id")
	if chainID == "" {
		h.respondError(w, http.StatusBadRequest, "chain_id is required")
		return
	}
	fromSeq, err := strconv.ParseUint(q.Get("from_seq"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "from_seq must be a non-negative integer")
		return
	}
	count := 100
	if c := q.Get("count"); c != "" {
		parsed, err := strconv.Atoi(c)
		if err != nil || parsed < 1 {
			h.respondError(w, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		count = parsed
	}

	records, err := h.ledger.GetRecords(r.Context(), chainID, fromSeq, count)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, LedgerRecordsResponse{Records: records, Count: len(records)})
}

type ledgerValidateRequest struct {
	Records []ledger.AuditRecord `json:"records"`
}

func (h *AdminAPIHandler) handleLedgerValidate(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		h.respondError(w, http.StatusServiceUnavailable, "ledger service not configured")
		return
	}
	var req ledgerValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.respondJSON(w, http.StatusOK, h.ledger.ValidateChain(req.Records))
}

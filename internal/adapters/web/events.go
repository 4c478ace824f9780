package web

import (
	"encoding/json"
	"log"
	"net/http"
)

// Ledger platform event types this engine reacts to. Anything else is
// acknowledged and ignored so the platform does not retry.
const (
	eventTransactionChecked = "TRANSACTION_CHECKED"
	eventTransactionUpdated = "TRANSACTION_UPDATED"
	eventTransactionTrashed = "TRANSACTION_TRASHED"
)

// ledgerEvent is the platform's webhook payload, reduced to the fields the
// routing needs.
type ledgerEvent struct {
	Type      string `json:"type"`
	BookID    string `json:"book_id"`
	AccountID string `json:"account_id"`
}

// handleEvent routes an inbound platform event. A checked transaction
// triggers a calculation for the touched good; edits or deletions of source
// records flag the good for rebuild, since previously synthesized costs may
// now be stale.
func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	var event ledgerEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, r, "invalid event payload", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if event.AccountID == "" {
		writeError(w, r, "event missing account_id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case eventTransactionChecked:
		result, err := h.svc.CalculateCostOfSales(r.Context(), event.AccountID, "")
		if err != nil {
			writeError(w, r, err.Error(), "CALCULATION_FAILED", http.StatusBadGateway)
			return
		}
		writeJSON(w, result.Summary)

	case eventTransactionUpdated, eventTransactionTrashed:
		if err := h.svc.FlagGoodForRebuild(r.Context(), event.AccountID); err != nil {
			writeError(w, r, err.Error(), "FLAG_FAILED", http.StatusBadGateway)
			return
		}
		writeJSON(w, map[string]string{"status": "flagged for rebuild"})

	default:
		log.Printf("ignoring event type %q for account %s", event.Type, event.AccountID)
		w.WriteHeader(http.StatusNoContent)
	}
}

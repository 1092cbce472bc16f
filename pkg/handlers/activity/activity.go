package activity

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chris/wallet-tx-sync/pkg/api"
	"github.com/chris/wallet-tx-sync/pkg/mapping"
	"github.com/chris/wallet-tx-sync/pkg/storage"
)

// DefaultLimit is used when the request carries no limit.
const DefaultLimit = int32(20)

// ActivityHandler serves the recorded notification history.
type ActivityHandler struct {
	Store storage.ActivityReader
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(store storage.ActivityReader) *ActivityHandler {
	return &ActivityHandler{Store: store}
}

func (h *ActivityHandler) ListActivity(w http.ResponseWriter, r *http.Request, params api.ListActivityParams) {
	limit := DefaultLimit
	if params.Limit != nil {
		if *params.Limit <= 0 {
			http.Error(w, "limit must be positive", http.StatusBadRequest)
			return
		}
		limit = *params.Limit
	}

	domainEntries, err := h.Store.ListActivity(r.Context(), limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve activity: %v", err), http.StatusInternalServerError)
		return
	}

	apiEntries := make([]api.ActivityEntry, len(domainEntries))
	for i := range domainEntries {
		apiEntries[i] = mapping.ToApiActivityEntry(&domainEntries[i])
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(apiEntries); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

package wallets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/chris/wallet-tx-sync/pkg/api"
	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/mapping"
	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/reconciler"
	"github.com/chris/wallet-tx-sync/pkg/storage"
	"github.com/chris/wallet-tx-sync/pkg/wallet"
)

// Service is the part of the wallet service the wallet-level handlers use.
type Service interface {
	Balance() (models.BalanceInfo, bool)
	RequiredConfirmations() uint64
	SetRequiredConfirmations(ctx context.Context, n uint64) error
	Refresh(ctx context.Context) error
	StartValidation(ctx context.Context, kind events.ValidationKind) (uint64, error)
	Validation(requestID uint64) (reconciler.ValidationResult, error)
	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error
	RemovePreference(ctx context.Context, key string) error
}

// Make sure the wallet service conforms to the interface
var _ Service = (*wallet.Service)(nil)

// WalletsHandler holds the dependencies for wallet-related handlers.
type WalletsHandler struct {
	Service Service
}

// NewWalletsHandler creates a new WalletsHandler.
func NewWalletsHandler(service Service) *WalletsHandler {
	return &WalletsHandler{Service: service}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// GetBalance returns the last known balance.
func (h *WalletsHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	b, ok := h.Service.Balance()
	if !ok {
		http.Error(w, "No balance reported yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mapping.ToApiBalance(b))
}

// GetConfirmations returns the required confirmation count.
func (h *WalletsHandler) GetConfirmations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.Confirmations{Required: h.Service.RequiredConfirmations()})
}

// SetConfirmations updates the required confirmation count.
func (h *WalletsHandler) SetConfirmations(w http.ResponseWriter, r *http.Request) {
	var body api.SetConfirmationsJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.Service.SetRequiredConfirmations(r.Context(), body.Required); err != nil {
		if errors.Is(err, wallet.ErrInvalidConfirmations) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		} else {
			http.Error(w, fmt.Sprintf("Failed to set required confirmations: %v", err), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RefreshWallet re-reads every list from the core. The result is applied
// asynchronously, so the response is 202.
func (h *WalletsHandler) RefreshWallet(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Refresh(r.Context()); err != nil {
		http.Error(w, fmt.Sprintf("Failed to refresh wallet: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// StartValidation starts a tx or txo validation.
func (h *WalletsHandler) StartValidation(w http.ResponseWriter, r *http.Request, params api.StartValidationParams) {
	id, err := h.Service.StartValidation(r.Context(), events.ValidationKind(params.Kind))
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidValidationKind) {
			http.Error(w, fmt.Sprintf("Invalid validation kind %q", params.Kind), http.StatusBadRequest)
		} else {
			http.Error(w, fmt.Sprintf("Failed to start validation: %v", err), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusAccepted, api.ValidationStarted{RequestId: id, Kind: params.Kind})
}

// GetValidation returns a completed validation's outcome.
func (h *WalletsHandler) GetValidation(w http.ResponseWriter, r *http.Request, requestId uint64) {
	v, err := h.Service.Validation(requestId)
	if err != nil {
		if errors.Is(err, wallet.ErrValidationNotFound) {
			http.Error(w, "Validation result not found", http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to retrieve validation: %v", err), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, mapping.ToApiValidationResult(v))
}

// GetPreference reads one network scoped preference.
func (h *WalletsHandler) GetPreference(w http.ResponseWriter, r *http.Request, key string) {
	value, err := h.Service.GetPreference(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Preference not found", http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to retrieve preference: %v", err), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, api.Preference{Key: key, Value: value})
}

// SetPreference writes one network scoped preference. The key in the path wins over
// the body.
func (h *WalletsHandler) SetPreference(w http.ResponseWriter, r *http.Request, key string) {
	var body api.SetPreferenceJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if err := h.Service.SetPreference(r.Context(), key, body.Value); err != nil {
		http.Error(w, fmt.Sprintf("Failed to set preference: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemovePreference deletes one network scoped preference.
func (h *WalletsHandler) RemovePreference(w http.ResponseWriter, r *http.Request, key string) {
	if err := h.Service.RemovePreference(r.Context(), key); err != nil {
		http.Error(w, fmt.Sprintf("Failed to remove preference: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

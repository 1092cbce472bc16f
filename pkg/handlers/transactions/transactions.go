package transactions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chris/wallet-tx-sync/pkg/api"
	"github.com/chris/wallet-tx-sync/pkg/mapping"
	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/wallet"
)

// Service is the part of the wallet service the transaction handlers use.
type Service interface {
	Transactions(bucket models.Bucket) ([]*models.Transaction, error)
	Transaction(id models.TxID, bucket models.Bucket) (*models.Transaction, error)
	Find(id models.TxID) (*models.Transaction, models.Bucket, error)
	CancelPendingTx(ctx context.Context, id models.TxID) error
}

// Make sure the wallet service conforms to the interface
var _ Service = (*wallet.Service)(nil)

// TransactionsHandler holds the dependencies for transaction-related handlers.
type TransactionsHandler struct {
	Service Service
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(service Service) *TransactionsHandler {
	return &TransactionsHandler{Service: service}
}

// ListTransactions returns one bucket, newest first.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request, params api.ListTransactionsParams) {
	bucket := mapping.ToDomainBucket(params.Bucket)
	txs, err := h.Service.Transactions(bucket)
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidBucket) {
			http.Error(w, fmt.Sprintf("Invalid bucket %q", params.Bucket), http.StatusBadRequest)
		} else {
			http.Error(w, fmt.Sprintf("Failed to retrieve transactions: %v", err), http.StatusInternalServerError)
		}
		return
	}

	apiList := mapping.ToApiTransactionList(bucket, txs)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(apiList); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// GetTransaction looks a transaction up in the given bucket, or in all of them.
func (h *TransactionsHandler) GetTransaction(w http.ResponseWriter, r *http.Request, txId uint64, params api.GetTransactionParams) {
	var (
		tx     *models.Transaction
		bucket models.Bucket
		err    error
	)
	if params.Bucket != nil {
		bucket = mapping.ToDomainBucket(*params.Bucket)
		tx, err = h.Service.Transaction(models.TxID(txId), bucket)
	} else {
		tx, bucket, err = h.Service.Find(models.TxID(txId))
	}
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInvalidBucket):
			http.Error(w, fmt.Sprintf("Invalid bucket %q", *params.Bucket), http.StatusBadRequest)
		case errors.Is(err, wallet.ErrTxNotFound):
			http.Error(w, "Transaction not found", http.StatusNotFound)
		default:
			http.Error(w, fmt.Sprintf("Failed to retrieve transaction: %v", err), http.StatusInternalServerError)
		}
		return
	}

	apiTx := mapping.ToApiTransaction(tx, bucket)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(apiTx); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// CancelTransaction asks the core to cancel a pending transaction. The state follows
// once the core confirms, so the response is 202.
func (h *TransactionsHandler) CancelTransaction(w http.ResponseWriter, r *http.Request, txId uint64) {
	err := h.Service.CancelPendingTx(r.Context(), models.TxID(txId))
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrTxNotFound):
			http.Error(w, "Transaction not found", http.StatusNotFound)
		case errors.Is(err, wallet.ErrTxNotCancellable):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			slog.Error("failed to cancel transaction", "txId", txId, "error", err)
			http.Error(w, fmt.Sprintf("Failed to cancel transaction: %v", err), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

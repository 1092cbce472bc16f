package handlers

import (
	"net/http"

	"github.com/chris/wallet-tx-sync/pkg/api"
	"github.com/chris/wallet-tx-sync/pkg/handlers/activity"
	"github.com/chris/wallet-tx-sync/pkg/handlers/transactions"
	"github.com/chris/wallet-tx-sync/pkg/handlers/wallets"
	"github.com/chris/wallet-tx-sync/pkg/handlers/websockets"
	"github.com/chris/wallet-tx-sync/pkg/storage"
)

// ApiHandler implements the generated server interface by composing the handlers for
// each resource.
type ApiHandler struct {
	*transactions.TransactionsHandler
	*wallets.WalletsHandler
	*activity.ActivityHandler

	Connections *websockets.Handler
}

// Service is everything the HTTP surface needs from the wallet.
type Service interface {
	transactions.Service
	wallets.Service
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(service Service, activityStore storage.ActivityReader, connections *websockets.Handler) *ApiHandler {
	return &ApiHandler{
		TransactionsHandler: transactions.NewTransactionsHandler(service),
		WalletsHandler:      wallets.NewWalletsHandler(service),
		ActivityHandler:     activity.NewActivityHandler(activityStore),
		Connections:         connections,
	}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

// ListConnections lists the tracked websocket connections.
func (h *ApiHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	h.Connections.ListConnections(w, r)
}

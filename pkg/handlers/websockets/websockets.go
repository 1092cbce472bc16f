package websockets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chris/wallet-tx-sync/pkg/api"
	"github.com/chris/wallet-tx-sync/pkg/fanout"
	"github.com/chris/wallet-tx-sync/pkg/reconciler"
	"github.com/chris/wallet-tx-sync/pkg/storage"
	ws "github.com/chris/wallet-tx-sync/pkg/websockets"
)

// DefaultQueueSize bounds the notifications buffered for one slow client.
const DefaultQueueSize = 64

// Source is what a local websocket client observes: a snapshot to start from and the
// notifications that follow it.
type Source interface {
	Subscribe(l fanout.Listener, opts ...fanout.SubscribeOption) *fanout.Subscription
	Snapshot() *reconciler.State
}

// Handler handles WebSocket connections.
type Handler struct {
	connManager storage.ConnectionManager
	source      Source
	queueSize   int
	policy      fanout.Policy
}

// NewHandler creates a new Handler. source may be nil for the API Gateway lambda,
// which only tracks connection ids.
func NewHandler(connManager storage.ConnectionManager, source Source, queueSize int) *Handler {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Handler{
		connManager: connManager,
		source:      source,
		queueSize:   queueSize,
		policy:      fanout.DropOldest,
	}
}

// WithPolicy sets what a slow local client loses when its queue fills.
func (h *Handler) WithPolicy(p fanout.Policy) *Handler {
	h.policy = p
	return h
}

// HandleConnect handles new client connections.
func (h *Handler) HandleConnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	slog.Info("Client connected", "connectionId", request.RequestContext.ConnectionID)

	if err := h.connManager.AddConnection(ctx, request.RequestContext.ConnectionID); err != nil {
		slog.Error("failed to save connection ID", "error", err)
		return events.APIGatewayProxyResponse{StatusCode: 500}, err
	}

	return events.APIGatewayProxyResponse{StatusCode: 200}, nil
}

// HandleDisconnect handles client disconnections.
func (h *Handler) HandleDisconnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	slog.Info("Client disconnected", "connectionId", request.RequestContext.ConnectionID)

	if err := h.connManager.RemoveConnection(ctx, request.RequestContext.ConnectionID); err != nil {
		slog.Error("failed to delete connection ID", "error", err)
		return events.APIGatewayProxyResponse{StatusCode: 500}, err
	}

	return events.APIGatewayProxyResponse{StatusCode: 200}, nil
}

// HandleDefault handles messages sent from a client.
func (h *Handler) HandleDefault(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	slog.Info("Received message", "connectionId", request.RequestContext.ConnectionID, "body", request.Body)
	return events.APIGatewayProxyResponse{StatusCode: 200}, nil
}

// ListConnections returns the ids of every tracked connection.
func (h *Handler) ListConnections(w http.ResponseWriter, r *http.Request) {
	ids, err := h.connManager.GetAllConnections(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve connections: %v", err), http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(api.ConnectionList{ConnectionIds: ids}); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all connections by default for local development.
		return true
	},
}

// ServeHTTP streams the wallet to one local client: a snapshot message first, then
// every notification committed after it.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		http.Error(w, "streaming is not available", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	connectionID := uuid.New().String()
	logger := slog.Default().With("connectionId", connectionID)
	logger.Info("Client connected locally")

	// The request context ends with the handler; bookkeeping must outlive it.
	ctx := context.WithoutCancel(r.Context())
	if err := h.connManager.AddConnection(ctx, connectionID); err != nil {
		logger.Error("failed to save local connection ID", "error", err)
		return
	}
	defer func() {
		logger.Info("Client disconnected locally")
		if err := h.connManager.RemoveConnection(ctx, connectionID); err != nil {
			logger.Error("failed to delete local connection ID", "error", err)
		}
	}()

	stream := ws.NewStream(ws.NewConnPublisher(conn, 0), func(error) { conn.Close() }, logger)
	sub := h.source.Subscribe(stream,
		fanout.WithPolicy(h.policy),
		fanout.WithQueueSize(h.queueSize),
		fanout.WithName("ws:"+connectionID),
	)
	defer sub.Close()

	if err := stream.Begin(ctx, h.source.Snapshot()); err != nil {
		logger.Error("failed to send snapshot", "error", err)
		return
	}

	// Clients are not expected to send anything; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Error("unexpected close error", "error", err)
			}
			break
		}
	}
}

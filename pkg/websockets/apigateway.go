package websockets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"

	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/fanout"
	"github.com/chris/wallet-tx-sync/pkg/storage"
)

// DefaultPostTimeout bounds one broadcast of a notification to every connection.
const DefaultPostTimeout = 10 * time.Second

// APIGatewayAPI is the subset of the API Gateway management client the publisher uses.
type APIGatewayAPI interface {
	PostToConnection(ctx context.Context, params *apigatewaymanagementapi.PostToConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error)
}

// Make sure the real client satisfies APIGatewayAPI
var _ APIGatewayAPI = (*apigatewaymanagementapi.Client)(nil)

// NewAPIGatewayClient builds a management client for the websocket API at apiEndpoint.
func NewAPIGatewayClient(cfg aws.Config, apiEndpoint string) *apigatewaymanagementapi.Client {
	return apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(apiEndpoint)
	})
}

// DefaultPublisher pushes messages to every API Gateway connection tracked in the
// connection store.
type DefaultPublisher struct {
	connManager storage.ConnectionManager
	apiGwClient APIGatewayAPI
	timeout     time.Duration
	logger      *slog.Logger
}

// Make sure we conform to the interfaces
var (
	_ Publisher       = (*DefaultPublisher)(nil)
	_ fanout.Listener = (*DefaultPublisher)(nil)
)

// NewPublisher creates a new DefaultPublisher.
func NewPublisher(connManager storage.ConnectionManager, apiGwClient APIGatewayAPI, logger *slog.Logger) *DefaultPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultPublisher{
		connManager: connManager,
		apiGwClient: apiGwClient,
		timeout:     DefaultPostTimeout,
		logger:      logger.With("component", "apigw-publisher"),
	}
}

// Attach subscribes the publisher to hub. Remote clients resync from the activity log,
// so a full queue drops the newest notification.
func (p *DefaultPublisher) Attach(hub *fanout.Hub, queueSize int) *fanout.Subscription {
	return hub.Subscribe(p, fanout.WithName("apigw-publisher"), fanout.WithPolicy(fanout.DropNewest), fanout.WithQueueSize(queueSize))
}

func (p *DefaultPublisher) OnNotification(n events.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.Publish(ctx, FromNotification(n)); err != nil {
		p.logger.Error("failed to publish notification", "kind", n.Kind, "seq", n.Seq, "error", err)
	}
}

// Publish sends a message to all connected clients. Connections API Gateway reports as
// gone are removed from the store; other per-connection failures are logged and skipped.
func (p *DefaultPublisher) Publish(ctx context.Context, message Message) error {
	connectionIDs, err := p.connManager.GetAllConnections(ctx)
	if err != nil {
		return fmt.Errorf("failed to get all connections: %w", err)
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	for _, connectionID := range connectionIDs {
		_, err := p.apiGwClient.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
			ConnectionId: aws.String(connectionID),
			Data:         payload,
		})
		if err == nil {
			continue
		}

		var goneErr *apigwtypes.GoneException
		if errors.As(err, &goneErr) {
			p.logger.Info("stale connection found, deleting", "connectionId", connectionID)
			if err := p.connManager.RemoveConnection(ctx, connectionID); err != nil {
				p.logger.Error("failed to delete stale connection", "connectionId", connectionID, "error", err)
			}
			continue
		}
		p.logger.Error("failed to post to connection", "connectionId", connectionID, "error", err)
	}

	return nil
}

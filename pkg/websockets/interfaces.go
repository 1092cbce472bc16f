package websockets

import (
	"context"
)

// Publisher defines the interface for publishing messages to one WebSocket client.
type Publisher interface {
	Publish(ctx context.Context, message Message) error
}

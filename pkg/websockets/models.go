package websockets

import (
	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/reconciler"
)

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeSnapshot is the first message on every stream.
	MessageTypeSnapshot MessageType = "snapshot"
	// MessageTypeNotification carries one lifecycle notification.
	MessageTypeNotification MessageType = "notification"
)

// Message represents a generic WebSocket message.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// SnapshotPayload summarizes the state a stream starts from. Notifications that follow
// carry a higher seq.
type SnapshotPayload struct {
	Seq                   uint64                `json:"seq"`
	Balance               *models.BalanceInfo   `json:"balance,omitempty"`
	Connectivity          string                `json:"connectivity,omitempty"`
	RequiredConfirmations uint64                `json:"required_confirmations"`
	Counts                map[models.Bucket]int `json:"counts"`
}

// NewSnapshotMessage builds the opening message for a stream.
func NewSnapshotMessage(s *reconciler.State) Message {
	p := SnapshotPayload{
		Seq:                   s.Seq(),
		RequiredConfirmations: s.RequiredConfirmations(),
		Counts:                make(map[models.Bucket]int, len(models.Buckets)),
	}
	if b, ok := s.Balance(); ok {
		p.Balance = &b
	}
	if c, ok := s.Connectivity(); ok {
		p.Connectivity = c.String()
	}
	for _, b := range models.Buckets {
		p.Counts[b] = s.Len(b)
	}
	return Message{Type: MessageTypeSnapshot, Payload: p}
}

// FromNotification wraps a notification for the wire.
func FromNotification(n events.Notification) Message {
	return Message{Type: MessageTypeNotification, Payload: n}
}

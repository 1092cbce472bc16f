// Package relay forwards reconciler notifications to an SQS queue so that processes
// outside the wallet (the activity log writer, other devices) can follow the lifecycle.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/fanout"
	"github.com/chris/wallet-tx-sync/pkg/models"
)

// SQSAPI is the subset of the SQS client the relay uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Make sure the real client satisfies SQSAPI
var _ SQSAPI = (*sqs.Client)(nil)

// Envelope is the message body placed on the queue.
type Envelope struct {
	ID           string              `json:"id"`
	Network      string              `json:"network,omitempty"`
	Kind         string              `json:"kind"`
	TxID         *models.TxID        `json:"tx_id,omitempty"`
	Seq          uint64              `json:"seq"`
	Timestamp    time.Time           `json:"timestamp"`
	Notification events.Notification `json:"notification"`
}

// SQSRelay implements fanout.Listener using AWS SQS.
type SQSRelay struct {
	Client   SQSAPI
	QueueURL string
	Network  string
	Timeout  time.Duration
	Logger   *slog.Logger

	now func() time.Time
}

// NewSQSRelay creates a new SQSRelay.
func NewSQSRelay(client SQSAPI, queueURL, network string, logger *slog.Logger) *SQSRelay {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQSRelay{
		Client:   client,
		QueueURL: queueURL,
		Network:  network,
		Timeout:  5 * time.Second,
		Logger:   logger.With("component", "relay"),
		now:      time.Now,
	}
}

// Make sure we conform to the interface
var _ fanout.Listener = (*SQSRelay)(nil)

// Attach subscribes the relay to hub. A relay keeps what it already accepted, so a
// full queue drops the newest notification.
func (r *SQSRelay) Attach(hub *fanout.Hub, queueSize int) *fanout.Subscription {
	return hub.Subscribe(r, fanout.WithName("sqs-relay"), fanout.WithPolicy(fanout.DropNewest), fanout.WithQueueSize(queueSize))
}

// OnNotification sends n to the queue. Failures are logged; the notification is lost.
func (r *SQSRelay) OnNotification(n events.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()
	if err := r.Send(ctx, n); err != nil {
		r.Logger.Error("failed to relay notification", "kind", n.Kind, "seq", n.Seq, "error", err)
	}
}

// Send marshals n into an Envelope and sends it to the queue.
func (r *SQSRelay) Send(ctx context.Context, n events.Notification) error {
	env := Envelope{
		ID:           uuid.NewString(),
		Network:      r.Network,
		Kind:         string(n.Kind),
		Seq:          n.Seq,
		Timestamp:    r.clock().UTC(),
		Notification: n,
	}
	if id, ok := n.SubjectID(); ok {
		env.TxID = &id
	}

	// Marshal the envelope to JSON.
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal notification for SQS: %w", err)
	}

	// Send the message to SQS.
	_, err = r.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(r.QueueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"kind": {DataType: aws.String("String"), StringValue: aws.String(env.Kind)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}

func (r *SQSRelay) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}

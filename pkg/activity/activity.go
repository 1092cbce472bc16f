// Package activity turns lifecycle notifications into activity log entries. Entries
// arrive either from the SQS relay (the activity lambda) or straight from the fan-out
// hub when the wallet runs with a local store.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/fanout"
	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/relay"
	"github.com/chris/wallet-tx-sync/pkg/storage"
)

// FromEnvelope converts a relayed message into an entry keyed by the envelope id, so a
// redelivered message maps to the same entry.
func FromEnvelope(env relay.Envelope) *models.ActivityEntry {
	return &models.ActivityEntry{
		EntryID:   env.ID,
		Kind:      env.Kind,
		TxID:      env.TxID,
		Sequence:  env.Seq,
		Timestamp: env.Timestamp,
	}
}

// ParseEnvelope decodes a relay message body.
func ParseEnvelope(body string) (relay.Envelope, error) {
	var env relay.Envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return relay.Envelope{}, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if env.ID == "" || env.Kind == "" {
		return relay.Envelope{}, fmt.Errorf("envelope is missing id or kind")
	}
	return env, nil
}

// Recorder writes every notification it receives to the activity log.
type Recorder struct {
	Writer  storage.ActivityWriter
	Timeout time.Duration
	Logger  *slog.Logger

	now func() time.Time
}

// Make sure we conform to the interface
var _ fanout.Listener = (*Recorder)(nil)

func NewRecorder(w storage.ActivityWriter, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		Writer:  w,
		Timeout: 5 * time.Second,
		Logger:  logger.With("component", "activity"),
		now:     time.Now,
	}
}

// Attach subscribes the recorder to hub. Like the relay it keeps what it already
// accepted.
func (r *Recorder) Attach(hub *fanout.Hub, queueSize int) *fanout.Subscription {
	return hub.Subscribe(r, fanout.WithName("activity-recorder"), fanout.WithPolicy(fanout.DropNewest), fanout.WithQueueSize(queueSize))
}

func (r *Recorder) OnNotification(n events.Notification) {
	entry := &models.ActivityEntry{
		EntryID:   uuid.NewString(),
		Kind:      string(n.Kind),
		Sequence:  n.Seq,
		Timestamp: r.now().UTC(),
	}
	if id, ok := n.SubjectID(); ok {
		entry.TxID = &id
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()
	if err := r.Writer.PutActivity(ctx, entry); err != nil {
		r.Logger.Error("failed to record activity", "kind", n.Kind, "seq", n.Seq, "error", err)
	}
}

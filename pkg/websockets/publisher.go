package websockets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/fanout"
	"github.com/chris/wallet-tx-sync/pkg/reconciler"
)

// DefaultWriteTimeout bounds a single write when the context has no deadline.
const DefaultWriteTimeout = 10 * time.Second

// ConnPublisher writes messages to one gorilla websocket connection. gorilla allows a
// single concurrent writer, so writes are serialized.
type ConnPublisher struct {
	conn         *websocket.Conn
	mu           sync.Mutex
	writeTimeout time.Duration
}

// Make sure we conform to the interface
var _ Publisher = (*ConnPublisher)(nil)

// NewConnPublisher creates a new ConnPublisher.
func NewConnPublisher(conn *websocket.Conn, writeTimeout time.Duration) *ConnPublisher {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &ConnPublisher{conn: conn, writeTimeout: writeTimeout}
}

// Publish sends a message to the client.
func (p *ConnPublisher) Publish(ctx context.Context, message Message) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(p.writeTimeout)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := p.conn.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// Stream forwards fan-out notifications to a Publisher. Nothing is forwarded until
// Begin has sent the opening snapshot. After the first failed write it stops forwarding
// and reports the error once.
type Stream struct {
	pub     Publisher
	onError func(error)
	ready   chan struct{}
	through atomic.Uint64
	failed  atomic.Bool
	logger  *slog.Logger
}

// Make sure we conform to the interface
var _ fanout.Listener = (*Stream)(nil)

// NewStream creates a Stream. onError may be nil.
func NewStream(pub Publisher, onError func(error), logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{pub: pub, onError: onError, ready: make(chan struct{}), logger: logger}
}

// Begin sends the snapshot message for state and releases queued notifications. Those
// older than the snapshot are skipped; those produced at its seq may repeat what the
// snapshot already shows. Begin must be called exactly once.
func (s *Stream) Begin(ctx context.Context, state *reconciler.State) error {
	s.through.Store(state.Seq())
	err := s.pub.Publish(ctx, NewSnapshotMessage(state))
	if err != nil {
		s.failed.Store(true)
	}
	close(s.ready)
	return err
}

func (s *Stream) OnNotification(n events.Notification) {
	<-s.ready
	if s.failed.Load() || n.Seq < s.through.Load() {
		return
	}
	if err := s.pub.Publish(context.Background(), FromNotification(n)); err != nil {
		if s.failed.Swap(true) {
			return
		}
		s.logger.Info("stopping stream after failed write", "kind", n.Kind, "seq", n.Seq, "error", err)
		if s.onError != nil {
			s.onError(err)
		}
	}
}

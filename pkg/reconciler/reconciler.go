// Package reconciler owns the canonical wallet state. A single goroutine applies events
// in arrival order and publishes every new state by swapping an immutable snapshot, so
// readers never take a lock and never see a half-applied event.
package reconciler

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/metrics"
	"github.com/chris/wallet-tx-sync/pkg/models"
)

// Publisher receives notifications after each applied event. Publish must not block.
type Publisher interface {
	Publish(n events.Notification)
}

// BalanceSaver persists the last known balance. It runs off the reconciler goroutine.
type BalanceSaver func(ctx context.Context, b models.BalanceInfo) error

type Options struct {
	Rules       Rules
	Initial     *State
	Publisher   Publisher
	SaveBalance BalanceSaver
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

// Reconciler is the single writer of wallet state.
type Reconciler struct {
	state   atomic.Pointer[State]
	rules   Rules
	pub     Publisher
	save    BalanceSaver
	pending chan models.BalanceInfo
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(opts Options) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reconciler{
		rules:   opts.Rules,
		pub:     opts.Publisher,
		save:    opts.SaveBalance,
		pending: make(chan models.BalanceInfo, 1),
		logger:  logger.With("component", "reconciler"),
		metrics: opts.Metrics,
	}
	initial := opts.Initial
	if initial == nil {
		initial = NewState()
	}
	r.state.Store(initial)
	return r
}

// Snapshot returns the current state. It is safe to call from any goroutine.
func (r *Reconciler) Snapshot() *State {
	return r.state.Load()
}

// Run applies events from src until ctx is done or done is closed. Events still queued
// when done closes are applied before Run returns.
func (r *Reconciler) Run(ctx context.Context, src <-chan events.WalletEvent, done <-chan struct{}) error {
	saverCtx, stopSaver := context.WithCancel(context.WithoutCancel(ctx))
	saved := make(chan struct{})
	go func() {
		defer close(saved)
		r.saveLoop(saverCtx)
	}()
	defer func() {
		stopSaver()
		<-saved
	}()

	r.logger.Info("reconciler started", "seq", r.Snapshot().Seq())
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped", "seq", r.Snapshot().Seq())
			return ctx.Err()
		case ev := <-src:
			r.Step(ev)
		case <-done:
			for {
				select {
				case ev := <-src:
					r.Step(ev)
				default:
					r.logger.Info("reconciler drained", "seq", r.Snapshot().Seq())
					return nil
				}
			}
		}
	}
}

// Step applies one event. Only the goroutine running Run may call it, except in tests
// that own the reconciler outright.
func (r *Reconciler) Step(ev events.WalletEvent) {
	if ev == nil {
		return
	}
	prev := r.state.Load()
	res := Apply(prev, ev, r.rules)

	for _, an := range res.Anomalies {
		r.logger.Info("tolerated anomaly", "kind", ev.Kind(), "txId", an.TxID, "reason", an.Reason)
	}
	if res.Stale {
		r.metrics.Stale(string(ev.Kind()))
		if tx := events.TxOf(ev); tx != nil {
			r.logger.Debug("ignoring stale event", "kind", ev.Kind(), "txId", tx.Id)
		}
	}
	r.metrics.Applied(string(ev.Kind()))

	if res.Changed(prev) {
		r.state.Store(res.State)
		prevBalance, hadBalance := prev.Balance()
		if b, ok := res.State.Balance(); ok && (!hadBalance || !prevBalance.Equal(b)) {
			r.queueSave(b)
		}
	}

	if r.pub == nil {
		return
	}
	for _, n := range res.Notifications {
		r.pub.Publish(n)
	}
}

// queueSave keeps only the newest unsaved balance.
func (r *Reconciler) queueSave(b models.BalanceInfo) {
	if r.save == nil {
		return
	}
	select {
	case r.pending <- b:
		return
	default:
	}
	select {
	case <-r.pending:
	default:
	}
	r.pending <- b
}

func (r *Reconciler) saveLoop(ctx context.Context) {
	if r.save == nil {
		return
	}
	flush := func(b models.BalanceInfo) {
		if err := r.save(context.WithoutCancel(ctx), b); err != nil {
			r.logger.Warn("failed to persist balance", "error", err)
		}
	}
	for {
		select {
		case b := <-r.pending:
			flush(b)
		case <-ctx.Done():
			select {
			case b := <-r.pending:
				flush(b)
			default:
			}
			return
		}
	}
}

// Package ingress turns native wallet callbacks into wallet events and hands them to
// the reconciler through a bounded queue. It never calls back into consumers on the
// native thread.
package ingress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/metrics"
	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/native"
)

// DefaultQueueSize is used when Options.QueueSize is not positive.
const DefaultQueueSize = 4096

// ErrQueueClosed is returned by Submit after Close.
var ErrQueueClosed = errors.New("ingress queue closed")

type Options struct {
	QueueSize int
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Ingress implements native.Callbacks.
type Ingress struct {
	queue   chan events.WalletEvent
	done    chan struct{}
	once    sync.Once
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Make sure we conform to the interface
var _ native.Callbacks = (*Ingress)(nil)

// New creates an Ingress with an empty queue.
func New(opts Options) *Ingress {
	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingress{
		queue:   make(chan events.WalletEvent, size),
		done:    make(chan struct{}),
		logger:  logger.With("component", "ingress"),
		metrics: opts.Metrics,
	}
}

// Events is the single-consumer side of the queue.
func (i *Ingress) Events() <-chan events.WalletEvent {
	return i.queue
}

// Done is closed once Close has been called.
func (i *Ingress) Done() <-chan struct{} {
	return i.done
}

// Len reports the number of queued events.
func (i *Ingress) Len() int {
	return len(i.queue)
}

// Close stops accepting events. Events already queued stay readable.
func (i *Ingress) Close() {
	i.once.Do(func() { close(i.done) })
}

// Submit enqueues an event produced outside the native callback path, such as the
// result of a direct query. It waits for queue space until ctx is done.
func (i *Ingress) Submit(ctx context.Context, ev events.WalletEvent) error {
	select {
	case <-i.done:
		return ErrQueueClosed
	default:
	}
	select {
	case i.queue <- ev:
		i.metrics.Ingested(string(ev.Kind()))
		return nil
	case <-i.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue blocks while the queue is full. Dropping here would break per-transaction
// ordering, so a saturated reconciler applies backpressure to the core instead.
func (i *Ingress) enqueue(ev events.WalletEvent) {
	select {
	case <-i.done:
		i.logger.Warn("dropping event after close", "kind", ev.Kind())
		return
	default:
	}
	select {
	case i.queue <- ev:
		i.metrics.Ingested(string(ev.Kind()))
	case <-i.done:
		i.logger.Warn("dropping event after close", "kind", ev.Kind())
	}
}

// guard converts a panic inside a callback into a logged, dropped event.
func (i *Ingress) guard(callback string) {
	if r := recover(); r != nil {
		i.drop(callback, fmt.Errorf("%w: panic: %v", ErrTranslation, r))
	}
}

func (i *Ingress) drop(callback string, err error) {
	i.metrics.TranslationFailed(callback)
	i.logger.Warn("dropping native callback", "callback", callback, "error", err)
}

func (i *Ingress) withTx(callback string, h native.TxHandle, build func(*models.Transaction) events.WalletEvent) {
	defer i.guard(callback)
	tx, err := CopyTx(h)
	if err != nil {
		i.drop(callback, err)
		return
	}
	i.logger.Debug("native callback", "callback", callback, "txId", tx.Id, "status", tx.Status)
	i.enqueue(build(tx))
}

func (i *Ingress) withCount(callback string, h native.TxHandle, count []byte, build func(*models.Transaction, uint64) events.WalletEvent) {
	defer i.guard(callback)
	n, err := native.DecodeUint64(count)
	if err != nil {
		i.drop(callback, fmt.Errorf("%w: confirmations: %v", ErrTranslation, err))
		return
	}
	tx, err := CopyTx(h)
	if err != nil {
		i.drop(callback, err)
		return
	}
	i.logger.Debug("native callback", "callback", callback, "txId", tx.Id, "confirmations", n)
	i.enqueue(build(tx, n))
}

func (i *Ingress) withID(callback string, b []byte, build func(uint64) events.WalletEvent) {
	defer i.guard(callback)
	id, err := native.DecodeUint64(b)
	if err != nil {
		i.drop(callback, fmt.Errorf("%w: id: %v", ErrTranslation, err))
		return
	}
	i.logger.Debug("native callback", "callback", callback, "id", id)
	i.enqueue(build(id))
}

func (i *Ingress) OnTxReceived(h native.TxHandle) {
	i.withTx("OnTxReceived", h, func(tx *models.Transaction) events.WalletEvent {
		return events.TxReceived{Tx: tx}
	})
}

func (i *Ingress) OnTxReplyReceived(h native.TxHandle) {
	i.withTx("OnTxReplyReceived", h, func(tx *models.Transaction) events.WalletEvent {
		return events.TxReplyReceived{Tx: tx}
	})
}

func (i *Ingress) OnTxFinalized(h native.TxHandle) {
	i.withTx("OnTxFinalized", h, func(tx *models.Transaction) events.WalletEvent {
		return events.TxFinalized{Tx: tx}
	})
}

func (i *Ingress) OnTxBroadcast(h native.TxHandle) {
	i.withTx("OnTxBroadcast", h, func(tx *models.Transaction) events.WalletEvent {
		return events.TxBroadcast{Tx: tx}
	})
}

func (i *Ingress) OnTxMined(h native.TxHandle) {
	i.withTx("OnTxMined", h, func(tx *models.Transaction) events.WalletEvent {
		return events.TxMined{Tx: tx}
	})
}

func (i *Ingress) OnTxFauxConfirmed(h native.TxHandle) {
	i.withTx("OnTxFauxConfirmed", h, func(tx *models.Transaction) events.WalletEvent {
		return events.TxMined{Tx: tx, Faux: true}
	})
}

func (i *Ingress) OnTxMinedUnconfirmed(h native.TxHandle, confirmations []byte) {
	i.withCount("OnTxMinedUnconfirmed", h, confirmations, func(tx *models.Transaction, n uint64) events.WalletEvent {
		return events.TxMinedUnconfirmed{Tx: tx, Confirmations: n}
	})
}

func (i *Ingress) OnTxFauxUnconfirmed(h native.TxHandle, confirmations []byte) {
	i.withCount("OnTxFauxUnconfirmed", h, confirmations, func(tx *models.Transaction, n uint64) events.WalletEvent {
		return events.TxMinedUnconfirmed{Tx: tx, Confirmations: n, Faux: true}
	})
}

func (i *Ingress) OnTxCancelled(h native.TxHandle, reason []byte) {
	defer i.guard("OnTxCancelled")
	r, err := native.DecodeInt(reason)
	if err != nil {
		i.drop("OnTxCancelled", fmt.Errorf("%w: reason: %v", ErrTranslation, err))
		return
	}
	tx, err := CopyTx(h)
	if err != nil {
		i.drop("OnTxCancelled", err)
		return
	}
	i.logger.Debug("native callback", "callback", "OnTxCancelled", "txId", tx.Id, "reason", r)
	i.enqueue(events.TxCancelled{Tx: tx, Reason: r})
}

func (i *Ingress) OnDirectSendResult(txID []byte, success bool) {
	i.withID("OnDirectSendResult", txID, func(id uint64) events.WalletEvent {
		return events.DirectSendResult{TxID: models.TxID(id), Success: success}
	})
}

func (i *Ingress) OnStoreAndForwardSendResult(txID []byte, success bool) {
	i.withID("OnStoreAndForwardSendResult", txID, func(id uint64) events.WalletEvent {
		return events.StoreAndForwardResult{TxID: models.TxID(id), Success: success}
	})
}

func (i *Ingress) OnTXOValidationComplete(requestID []byte, success bool) {
	i.withID("OnTXOValidationComplete", requestID, func(id uint64) events.WalletEvent {
		return events.ValidationComplete{RequestID: id, Validation: events.ValidationTXO, Success: success}
	})
}

func (i *Ingress) OnTxValidationComplete(requestID []byte, success bool) {
	i.withID("OnTxValidationComplete", requestID, func(id uint64) events.WalletEvent {
		return events.ValidationComplete{RequestID: id, Validation: events.ValidationTx, Success: success}
	})
}

func (i *Ingress) OnBalanceUpdated(h native.BalanceHandle) {
	defer i.guard("OnBalanceUpdated")
	b, err := CopyBalance(h)
	if err != nil {
		i.drop("OnBalanceUpdated", err)
		return
	}
	i.logger.Debug("native callback", "callback", "OnBalanceUpdated", "available", b.Available.String())
	i.enqueue(events.BalanceUpdated{Balance: b})
}

func (i *Ingress) OnConnectivityStatus(status []byte) {
	defer i.guard("OnConnectivityStatus")
	s, err := connectivity(status)
	if err != nil {
		i.drop("OnConnectivityStatus", err)
		return
	}
	i.logger.Info("connectivity status changed", "status", s.String())
	i.enqueue(events.ConnectivityChanged{Status: s})
}

func (i *Ingress) OnWalletRecovery(event int, first, second []byte) {
	defer i.guard("OnWalletRecovery")
	r, err := restoration(event, first, second)
	if err != nil {
		i.drop("OnWalletRecovery", err)
		return
	}
	i.logger.Info("wallet restoration", "stage", r.Stage.String(), "first", r.First, "second", r.Second)
	i.enqueue(r)
}

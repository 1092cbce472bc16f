// Package sim is an in-process stand-in for the native wallet core. It keeps its own
// transaction lists, invokes the registered callback table with borrowed handles and
// releases every handle as soon as the callback returns.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chris/wallet-tx-sync/pkg/native"
)

// Rejection reasons reported with cancellations.
const (
	ReasonUnknown       = 0
	ReasonUserCancelled = 1
	ReasonTimeout       = 2
	ReasonDoubleSpend   = 3
)

var (
	ErrAlreadyRegistered = errors.New("callbacks already registered")
	ErrNotRegistered     = errors.New("callbacks not registered")
	ErrClosed            = errors.New("wallet closed")
)

type list int

const (
	listPendingInbound list = iota
	listPendingOutbound
	listCompleted
	listCancelled
)

// Core implements native.Wallet.
type Core struct {
	mu            sync.Mutex
	cb            native.Callbacks
	lists         [4]map[uint64]TxRecord
	balance       Balance
	confirmations uint64
	nextRequest   atomic.Uint64
	closed        atomic.Bool
	wg            sync.WaitGroup
	logger        *slog.Logger
}

var _ native.Wallet = (*Core)(nil)

// New creates an empty simulated core.
func New(logger *slog.Logger) *Core {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Core{confirmations: 3, logger: logger.With("component", "sim")}
	for i := range c.lists {
		c.lists[i] = map[uint64]TxRecord{}
	}
	return c
}

func (c *Core) RegisterCallbacks(cb native.Callbacks) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cb != nil {
		return ErrAlreadyRegistered
	}
	c.cb = cb
	return nil
}

func (c *Core) callbacks() (native.Callbacks, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cb == nil {
		return nil, ErrNotRegistered
	}
	return c.cb, nil
}

func (c *Core) put(l list, rec TxRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lists {
		delete(c.lists[i], rec.ID)
	}
	c.lists[l][rec.ID] = rec.clone()
}

func (c *Core) find(id uint64) (TxRecord, list, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lists {
		if rec, ok := c.lists[i][id]; ok {
			return rec.clone(), list(i), true
		}
	}
	return TxRecord{}, 0, false
}

// fire lends rec to fn and releases the handle afterwards.
func (c *Core) fire(rec TxRecord, fn func(native.TxHandle)) {
	h := NewTxHandle(rec)
	defer h.Release()
	fn(h)
}

// Receive records a new pending inbound transaction and reports it.
func (c *Core) Receive(rec TxRecord) error {
	cb, err := c.callbacks()
	if err != nil {
		return err
	}
	rec.Outbound = false
	rec.Status = native.StatusPending
	c.put(listPendingInbound, rec)
	c.fire(rec, cb.OnTxReceived)
	return nil
}

// Send records a new pending outbound transaction. The core reports nothing until the
// counterparty replies.
func (c *Core) Send(rec TxRecord) {
	rec.Outbound = true
	rec.Status = native.StatusPending
	c.put(listPendingOutbound, rec)
}

// Reply reports the counterparty reply for an outbound transaction.
func (c *Core) Reply(rec TxRecord) error {
	cb, err := c.callbacks()
	if err != nil {
		return err
	}
	rec.Outbound = true
	rec.Status = native.StatusCompleted
	c.put(listPendingOutbound, rec)
	c.fire(rec, cb.OnTxReplyReceived)
	return nil
}

// Finalize reports that an inbound transaction has been finalized.
func (c *Core) Finalize(rec TxRecord) error {
	cb, err := c.callbacks()
	if err != nil {
		return err
	}
	rec.Status = native.StatusCompleted
	c.put(listCompleted, rec)
	c.fire(rec, cb.OnTxFinalized)
	return nil
}

func (c *Core) Broadcast(rec TxRecord) error {
	cb, err := c.callbacks()
	if err != nil {
		return err
	}
	rec.Status = native.StatusBroadcast
	c.put(listCompleted, rec)
	c.fire(rec, cb.OnTxBroadcast)
	return nil
}

func (c *Core) MineUnconfirmed(rec TxRecord, confirmations uint64) error {
	cb, err := c.callbacks()
	if err != nil {
		return err
	}
	rec.Status = native.StatusMinedUnconfirmed
	c.put(listCompleted, rec)
	c.fire(rec, func(h native.TxHandle) { cb.OnTxMinedUnconfirmed(h, native.EncodeUint64(confirmations)) })
	return nil
}

func (c *Core) Mine(rec TxRecord) error {
	cb, err := c.callbacks()
	if err != nil {
		return err
	}
	rec.Status = native.StatusMinedConfirmed
	c.put(listCompleted, rec)
	c.fire(rec, cb.OnTxMined)
	return nil
}

// Import reports an imported output as faux confirmed.
func (c *Core) Import(rec TxRecord) error {
	cb, err := c.callbacks()
	if err != nil {
		return err
	}
	rec.Outbound = false
	rec.Status = native.StatusImported
	c.put(listCompleted, rec)
	c.fire(rec, cb.OnTxFauxConfirmed)
	return nil
}

func (c *Core) Cancel(rec TxRecord, reason int) error {
	cb, err := c.callbacks()
	if err != nil {
		return err
	}
	c.put(listCancelled, rec)
	c.fire(rec, func(h native.TxHandle) { cb.OnTxCancelled(h, native.EncodeUint64(uint64(reason))) })
	return nil
}

func (c *Core) SendResult(id uint64, direct, success bool) error {
	cb, err := c.callbacks()
	if err != nil {
		return err
	}
	if direct {
		cb.OnDirectSendResult(native.EncodeUint64(id), success)
	} else {
		cb.OnStoreAndForwardSendResult(native.EncodeUint64(id), success)
	}
	return nil
}

// SetBalance replaces the balance and reports it.
func (c *Core) SetBalance(b Balance) error {
	cb, err := c.callbacks()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.balance = b
	c.mu.Unlock()
	h := NewBalanceHandle(b)
	defer h.Release()
	cb.OnBalanceUpdated(h)
	return nil
}

func (c *Core) SetConnectivity(status int) error {
	cb, err := c.callbacks()
	if err != nil {
		return err
	}
	cb.OnConnectivityStatus(native.EncodeUint64(uint64(status)))
	return nil
}

func (c *Core) Recovery(event int, first, second uint64) error {
	cb, err := c.callbacks()
	if err != nil {
		return err
	}
	cb.OnWalletRecovery(event, native.EncodeUint64(first), native.EncodeUint64(second))
	return nil
}

// async runs fn on a fresh goroutine, the way the core reports from its own threads.
func (c *Core) async(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

func (c *Core) GetBalance(ctx context.Context) (native.BalanceHandle, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return NewBalanceHandle(c.balance), nil
}

func (c *Core) handles(l list) ([]native.TxHandle, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]native.TxHandle, 0, len(c.lists[l]))
	for _, rec := range c.lists[l] {
		out = append(out, NewTxHandle(rec))
	}
	return out, nil
}

func (c *Core) GetPendingInboundTxs(ctx context.Context) ([]native.TxHandle, error) {
	return c.handles(listPendingInbound)
}

func (c *Core) GetPendingOutboundTxs(ctx context.Context) ([]native.TxHandle, error) {
	return c.handles(listPendingOutbound)
}

func (c *Core) GetCompletedTxs(ctx context.Context) ([]native.TxHandle, error) {
	return c.handles(listCompleted)
}

func (c *Core) GetCancelledTxs(ctx context.Context) ([]native.TxHandle, error) {
	return c.handles(listCancelled)
}

// CancelPendingTx moves a pending transaction to the cancelled list and reports the
// cancellation from another goroutine.
func (c *Core) CancelPendingTx(ctx context.Context, id uint64) (bool, error) {
	if c.closed.Load() {
		return false, ErrClosed
	}
	rec, l, ok := c.find(id)
	if !ok {
		return false, fmt.Errorf("transaction %d not found", id)
	}
	if l != listPendingInbound && l != listPendingOutbound {
		return false, nil
	}
	c.put(listCancelled, rec)
	c.async(func() {
		if err := c.Cancel(rec, ReasonUserCancelled); err != nil {
			c.logger.Warn("failed to report cancellation", "txId", id, "error", err)
		}
	})
	return true, nil
}

func (c *Core) startValidation(report func(native.Callbacks, []byte, bool)) (uint64, error) {
	cb, err := c.callbacks()
	if err != nil {
		return 0, err
	}
	id := c.nextRequest.Add(1)
	c.async(func() { report(cb, native.EncodeUint64(id), true) })
	return id, nil
}

func (c *Core) StartTxValidation(ctx context.Context) (uint64, error) {
	return c.startValidation(func(cb native.Callbacks, id []byte, ok bool) { cb.OnTxValidationComplete(id, ok) })
}

func (c *Core) StartTXOValidation(ctx context.Context) (uint64, error) {
	return c.startValidation(func(cb native.Callbacks, id []byte, ok bool) { cb.OnTXOValidationComplete(id, ok) })
}

func (c *Core) GetRequiredConfirmationCount(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.confirmations, nil
}

func (c *Core) SetRequiredConfirmationCount(ctx context.Context, n uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmations = n
	return nil
}

// Close waits for in-flight asynchronous reports.
func (c *Core) Close() error {
	c.closed.Store(true)
	c.wg.Wait()
	return nil
}

// Run drives a random but lifecycle-consistent stream of activity until ctx is done.
// It is used by the development binary.
func (c *Core) Run(ctx context.Context, interval time.Duration) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var next uint64 = 1000
	available := big.NewInt(0)

	type flight struct {
		rec   TxRecord
		stage int
	}
	var inflight []*flight

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if len(inflight) == 0 || rng.Intn(3) == 0 {
			next++
			rec := TxRecord{
				ID:        next,
				Source:    Key{Hex: fmt.Sprintf("%064x", rng.Uint64())},
				Amount:    big.NewInt(int64(1000 + rng.Intn(1_000_000))),
				Message:   "simulated",
				Timestamp: uint64(time.Now().Unix()),
			}
			if err := c.Receive(rec); err != nil {
				c.logger.Warn("simulated receive failed", "error", err)
				continue
			}
			inflight = append(inflight, &flight{rec: rec})
			continue
		}

		i := rng.Intn(len(inflight))
		f := inflight[i]
		var err error
		switch f.stage {
		case 0:
			err = c.Finalize(f.rec)
		case 1:
			err = c.Broadcast(f.rec)
		case 2, 3:
			err = c.MineUnconfirmed(f.rec, uint64(f.stage-1))
		default:
			err = c.Mine(f.rec)
			available.Add(available, f.rec.Amount)
			if err == nil {
				err = c.SetBalance(Balance{Available: new(big.Int).Set(available)})
			}
			inflight = append(inflight[:i], inflight[i+1:]...)
		}
		f.stage++
		if err != nil {
			c.logger.Warn("simulated transition failed", "txId", f.rec.ID, "error", err)
		}
	}
}

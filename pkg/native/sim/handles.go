package sim

import (
	"math/big"
	"sync/atomic"

	"github.com/chris/wallet-tx-sync/pkg/native"
)

// Key is a counterparty public key with its emoji rendering.
type Key struct {
	Hex   string
	Emoji string
}

// TxRecord is the simulator's own copy of a transaction.
type TxRecord struct {
	ID          uint64
	Outbound    bool
	Source      Key
	Destination Key
	Amount      *big.Int
	Fee         *big.Int
	Message     string
	Timestamp   uint64
	Status      int
}

func (r TxRecord) clone() TxRecord {
	c := r
	if r.Amount != nil {
		c.Amount = new(big.Int).Set(r.Amount)
	}
	if r.Fee != nil {
		c.Fee = new(big.Int).Set(r.Fee)
	}
	return c
}

// TxHandle lends a record to a callback. Once released every accessor fails, which is
// how the simulator catches receivers that keep handles past the callback.
type TxHandle struct {
	rec      TxRecord
	released atomic.Bool
}

var _ native.TxHandle = (*TxHandle)(nil)

// NewTxHandle wraps a copy of rec.
func NewTxHandle(rec TxRecord) *TxHandle {
	return &TxHandle{rec: rec.clone()}
}

// Release invalidates the handle.
func (h *TxHandle) Release() { h.released.Store(true) }

func (h *TxHandle) live() error {
	if h.released.Load() {
		return native.ErrHandleReleased
	}
	return nil
}

func (h *TxHandle) ID() ([]byte, error) {
	if err := h.live(); err != nil {
		return nil, err
	}
	return native.EncodeUint64(h.rec.ID), nil
}

func (h *TxHandle) IsOutbound() (bool, error) {
	if err := h.live(); err != nil {
		return false, err
	}
	return h.rec.Outbound, nil
}

func (h *TxHandle) SourcePublicKey() (string, string, error) {
	if err := h.live(); err != nil {
		return "", "", err
	}
	return h.rec.Source.Hex, h.rec.Source.Emoji, nil
}

func (h *TxHandle) DestinationPublicKey() (string, string, error) {
	if err := h.live(); err != nil {
		return "", "", err
	}
	return h.rec.Destination.Hex, h.rec.Destination.Emoji, nil
}

func (h *TxHandle) Amount() (*big.Int, error) {
	if err := h.live(); err != nil {
		return nil, err
	}
	if h.rec.Amount == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(h.rec.Amount), nil
}

func (h *TxHandle) Fee() (*big.Int, bool, error) {
	if err := h.live(); err != nil {
		return nil, false, err
	}
	if h.rec.Fee == nil {
		return nil, false, nil
	}
	return new(big.Int).Set(h.rec.Fee), true, nil
}

func (h *TxHandle) Message() (string, error) {
	if err := h.live(); err != nil {
		return "", err
	}
	return h.rec.Message, nil
}

func (h *TxHandle) Timestamp() (uint64, error) {
	if err := h.live(); err != nil {
		return 0, err
	}
	return h.rec.Timestamp, nil
}

func (h *TxHandle) Status() (int, error) {
	if err := h.live(); err != nil {
		return 0, err
	}
	return h.rec.Status, nil
}

// Balance is the simulator's balance record.
type Balance struct {
	Available  *big.Int
	Incoming   *big.Int
	Outgoing   *big.Int
	TimeLocked *big.Int
}

// BalanceHandle lends a balance to a callback.
type BalanceHandle struct {
	b        Balance
	released atomic.Bool
}

var _ native.BalanceHandle = (*BalanceHandle)(nil)

func NewBalanceHandle(b Balance) *BalanceHandle {
	return &BalanceHandle{b: b}
}

func (h *BalanceHandle) Release() { h.released.Store(true) }

func (h *BalanceHandle) read(v *big.Int) (*big.Int, error) {
	if h.released.Load() {
		return nil, native.ErrHandleReleased
	}
	if v == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(v), nil
}

func (h *BalanceHandle) Available() (*big.Int, error)  { return h.read(h.b.Available) }
func (h *BalanceHandle) Incoming() (*big.Int, error)   { return h.read(h.b.Incoming) }
func (h *BalanceHandle) Outgoing() (*big.Int, error)   { return h.read(h.b.Outgoing) }
func (h *BalanceHandle) TimeLocked() (*big.Int, error) { return h.read(h.b.TimeLocked) }

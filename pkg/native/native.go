// Package native describes the boundary to the externally supplied wallet core.
//
// The core owns its own threads and invokes a Callbacks table registered once at
// start-up. Handles passed to a callback are borrowed: they are only valid until the
// callback returns, so receivers must copy everything they need out of them.
package native

import (
	"context"
	"errors"
	"math/big"
)

// ErrHandleReleased is returned by handle accessors once the native memory behind the
// handle has been freed.
var ErrHandleReleased = errors.New("native handle released")

// Status codes reported by TxHandle.Status.
const (
	StatusNullError        = -1
	StatusCompleted        = 0
	StatusBroadcast        = 1
	StatusMinedUnconfirmed = 2
	StatusImported         = 3
	StatusPending          = 4
	StatusCoinbase         = 5
	StatusMinedConfirmed   = 6
	StatusUnknown          = 7
)

// TxHandle is a borrowed view of a native transaction.
type TxHandle interface {
	ID() ([]byte, error)
	IsOutbound() (bool, error)
	// SourcePublicKey and DestinationPublicKey return the hex key and its emoji rendering.
	SourcePublicKey() (hex string, emoji string, err error)
	DestinationPublicKey() (hex string, emoji string, err error)
	Amount() (*big.Int, error)
	// Fee reports ok=false for variants that carry no fee (pending inbound).
	Fee() (fee *big.Int, ok bool, err error)
	Message() (string, error)
	// Timestamp is seconds since the Unix epoch.
	Timestamp() (uint64, error)
	Status() (int, error)
}

// BalanceHandle is a borrowed view of a native balance.
type BalanceHandle interface {
	Available() (*big.Int, error)
	Incoming() (*big.Int, error)
	Outgoing() (*big.Int, error)
	TimeLocked() (*big.Int, error)
}

// Callbacks is the typed table the core invokes. Implementations must be safe for
// concurrent use and must not block for long: the caller is a native thread.
// Byte slices hold unsigned big-endian integers.
type Callbacks interface {
	OnTxReceived(tx TxHandle)
	OnTxReplyReceived(tx TxHandle)
	OnTxFinalized(tx TxHandle)
	OnTxBroadcast(tx TxHandle)
	OnTxMined(tx TxHandle)
	OnTxMinedUnconfirmed(tx TxHandle, confirmations []byte)
	OnTxFauxConfirmed(tx TxHandle)
	OnTxFauxUnconfirmed(tx TxHandle, confirmations []byte)
	OnDirectSendResult(txID []byte, success bool)
	OnStoreAndForwardSendResult(txID []byte, success bool)
	OnTxCancelled(tx TxHandle, reason []byte)
	OnTXOValidationComplete(requestID []byte, success bool)
	OnTxValidationComplete(requestID []byte, success bool)
	OnBalanceUpdated(balance BalanceHandle)
	OnConnectivityStatus(status []byte)
	OnWalletRecovery(event int, first, second []byte)
}

// Wallet is the long-lived native wallet handle. It is created once and passed to the
// components that need it. Every method may block on the core and must not be called
// from the reconciler's serialization path.
type Wallet interface {
	// RegisterCallbacks installs the callback table. It may be called only once.
	RegisterCallbacks(cb Callbacks) error

	GetBalance(ctx context.Context) (BalanceHandle, error)
	GetPendingInboundTxs(ctx context.Context) ([]TxHandle, error)
	GetPendingOutboundTxs(ctx context.Context) ([]TxHandle, error)
	GetCompletedTxs(ctx context.Context) ([]TxHandle, error)
	GetCancelledTxs(ctx context.Context) ([]TxHandle, error)

	CancelPendingTx(ctx context.Context, id uint64) (bool, error)

	// StartTxValidation and StartTXOValidation return a request id that a later
	// validation-complete callback echoes.
	StartTxValidation(ctx context.Context) (uint64, error)
	StartTXOValidation(ctx context.Context) (uint64, error)

	GetRequiredConfirmationCount(ctx context.Context) (uint64, error)
	SetRequiredConfirmationCount(ctx context.Context, n uint64) error

	Close() error
}

// Releaser is implemented by handles that must be returned to the core. Handles passed
// to a callback are released by the core once the callback returns; handles returned
// by the query methods belong to the caller.
type Releaser interface {
	Release()
}

// Release returns h to the core if it needs returning.
func Release(h any) {
	if r, ok := h.(Releaser); ok {
		r.Release()
	}
}

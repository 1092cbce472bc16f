// Package events defines the closed set of wallet lifecycle events the reconciler
// consumes. Every event owns a fully materialized copy of its payload.
package events

import (
	"github.com/chris/wallet-tx-sync/pkg/models"
)

// Kind names an event type.
type Kind string

const (
	KindTxReceived            Kind = "txReceived"
	KindTxReplyReceived       Kind = "txReplyReceived"
	KindTxFinalized           Kind = "txFinalized"
	KindTxBroadcast           Kind = "txBroadcast"
	KindTxMined               Kind = "txMined"
	KindTxMinedUnconfirmed    Kind = "txMinedUnconfirmed"
	KindTxCancelled           Kind = "txCancelled"
	KindDirectSendResult      Kind = "directSendResult"
	KindStoreAndForwardResult Kind = "storeAndForwardResult"
	KindValidationComplete    Kind = "validationComplete"
	KindConnectivityChanged   Kind = "connectivityChanged"
	KindBalanceUpdated        Kind = "balanceUpdated"
	KindWalletRestoration     Kind = "walletRestoration"
	KindTxSetRefreshed        Kind = "txSetRefreshed"
	KindConfirmationsChanged  Kind = "confirmationsChanged"
)

// WalletEvent is implemented only by the types in this package.
type WalletEvent interface {
	Kind() Kind
	sealed()
}

// TxReceived reports a new inbound transaction offer.
type TxReceived struct {
	Tx *models.Transaction
}

// TxReplyReceived reports the counterparty's reply to an outbound transaction.
type TxReplyReceived struct {
	Tx *models.Transaction
}

// TxFinalized reports that an inbound transaction was finalized by the sender.
type TxFinalized struct {
	Tx *models.Transaction
}

// TxBroadcast reports that a transaction was broadcast to the network.
// Direction is taken from Tx.
type TxBroadcast struct {
	Tx *models.Transaction
}

// TxMined reports a mined and confirmed transaction. Faux marks imported outputs
// confirmed without a kernel on chain.
type TxMined struct {
	Tx   *models.Transaction
	Faux bool
}

// TxMinedUnconfirmed reports a mined transaction that has not yet reached the required
// confirmation depth.
type TxMinedUnconfirmed struct {
	Tx            *models.Transaction
	Confirmations uint64
	Faux          bool
}

// TxCancelled reports a cancelled transaction with the native rejection reason.
type TxCancelled struct {
	Tx     *models.Transaction
	Reason int
}

// DirectSendResult is transient and never mutates buckets.
type DirectSendResult struct {
	TxID    models.TxID
	Success bool
}

// StoreAndForwardResult is transient and never mutates buckets.
type StoreAndForwardResult struct {
	TxID    models.TxID
	Success bool
}

// ValidationKind distinguishes the two validation protocols.
type ValidationKind string

const (
	ValidationTx  ValidationKind = "tx"
	ValidationTXO ValidationKind = "txo"
)

// ValidationComplete correlates with a previously started validation by RequestID.
type ValidationComplete struct {
	RequestID  uint64
	Validation ValidationKind
	Success    bool
}

// ConnectivityStatus of the wallet's base node link.
type ConnectivityStatus int

const (
	Connecting ConnectivityStatus = iota
	Online
	Offline
)

func (s ConnectivityStatus) String() string {
	switch s {
	case Connecting:
		return "CONNECTING"
	case Online:
		return "ONLINE"
	case Offline:
		return "OFFLINE"
	default:
		return "UNKNOWN"
	}
}

type ConnectivityChanged struct {
	Status ConnectivityStatus
}

type BalanceUpdated struct {
	Balance models.BalanceInfo
}

// RestorationStage enumerates wallet recovery progress events.
type RestorationStage int

const (
	RestorationConnectingToBaseNode RestorationStage = iota
	RestorationConnectedToBaseNode
	RestorationConnectionFailed
	RestorationProgress
	RestorationCompleted
	RestorationScanningRoundFailed
	RestorationRecoveryFailed
)

func (s RestorationStage) String() string {
	switch s {
	case RestorationConnectingToBaseNode:
		return "CONNECTING_TO_BASE_NODE"
	case RestorationConnectedToBaseNode:
		return "CONNECTED_TO_BASE_NODE"
	case RestorationConnectionFailed:
		return "CONNECTION_FAILED"
	case RestorationProgress:
		return "PROGRESS"
	case RestorationCompleted:
		return "COMPLETED"
	case RestorationScanningRoundFailed:
		return "SCANNING_ROUND_FAILED"
	case RestorationRecoveryFailed:
		return "RECOVERY_FAILED"
	default:
		return "UNKNOWN"
	}
}

// WalletRestoration carries recovery progress. The meaning of First and Second depends
// on Stage: retry count and max retries while connecting, current and total blocks for
// progress, utxo count and amount on completion.
type WalletRestoration struct {
	Stage  RestorationStage
	First  uint64
	Second uint64
}

// TxSetRefreshed carries the result of a direct query of the native core. It is applied
// as an upsert of every listed transaction and, when Balance is set, a balance update.
type TxSetRefreshed struct {
	PendingInbound  []*models.Transaction
	PendingOutbound []*models.Transaction
	Completed       []*models.Transaction
	Cancelled       []*models.Transaction
	Balance         *models.BalanceInfo
}

// ConfirmationsChanged records a new required confirmation count. It comes from the
// service rather than the native core so the value changes on the reconciler's path.
type ConfirmationsChanged struct {
	Required uint64
}

func (TxReceived) Kind() Kind            { return KindTxReceived }
func (TxReplyReceived) Kind() Kind       { return KindTxReplyReceived }
func (TxFinalized) Kind() Kind           { return KindTxFinalized }
func (TxBroadcast) Kind() Kind           { return KindTxBroadcast }
func (TxMined) Kind() Kind               { return KindTxMined }
func (TxMinedUnconfirmed) Kind() Kind    { return KindTxMinedUnconfirmed }
func (TxCancelled) Kind() Kind           { return KindTxCancelled }
func (DirectSendResult) Kind() Kind      { return KindDirectSendResult }
func (StoreAndForwardResult) Kind() Kind { return KindStoreAndForwardResult }
func (ValidationComplete) Kind() Kind    { return KindValidationComplete }
func (ConnectivityChanged) Kind() Kind   { return KindConnectivityChanged }
func (BalanceUpdated) Kind() Kind        { return KindBalanceUpdated }
func (WalletRestoration) Kind() Kind     { return KindWalletRestoration }
func (TxSetRefreshed) Kind() Kind        { return KindTxSetRefreshed }
func (ConfirmationsChanged) Kind() Kind  { return KindConfirmationsChanged }

func (TxReceived) sealed()            {}
func (TxReplyReceived) sealed()       {}
func (TxFinalized) sealed()           {}
func (TxBroadcast) sealed()           {}
func (TxMined) sealed()               {}
func (TxMinedUnconfirmed) sealed()    {}
func (TxCancelled) sealed()           {}
func (DirectSendResult) sealed()      {}
func (StoreAndForwardResult) sealed() {}
func (ValidationComplete) sealed()    {}
func (ConnectivityChanged) sealed()   {}
func (BalanceUpdated) sealed()        {}
func (WalletRestoration) sealed()     {}
func (TxSetRefreshed) sealed()        {}
func (ConfirmationsChanged) sealed()  {}

// TxOf returns the transaction carried by e, if any.
func TxOf(e WalletEvent) *models.Transaction {
	switch ev := e.(type) {
	case TxReceived:
		return ev.Tx
	case TxReplyReceived:
		return ev.Tx
	case TxFinalized:
		return ev.Tx
	case TxBroadcast:
		return ev.Tx
	case TxMined:
		return ev.Tx
	case TxMinedUnconfirmed:
		return ev.Tx
	case TxCancelled:
		return ev.Tx
	default:
		return nil
	}
}

package events

import (
	"github.com/chris/wallet-tx-sync/pkg/models"
)

// NotificationKind names a post-reconciliation notification.
type NotificationKind string

const (
	NotifyTxReceived            NotificationKind = "TX_RECEIVED"
	NotifyTxReplyReceived       NotificationKind = "TX_REPLY_RECEIVED"
	NotifyTxFinalized           NotificationKind = "TX_FINALIZED"
	NotifyInboundTxBroadcast    NotificationKind = "INBOUND_TX_BROADCAST"
	NotifyOutboundTxBroadcast   NotificationKind = "OUTBOUND_TX_BROADCAST"
	NotifyTxMined               NotificationKind = "TX_MINED"
	NotifyTxMinedUnconfirmed    NotificationKind = "TX_MINED_UNCONFIRMED"
	NotifyTxCancelled           NotificationKind = "TX_CANCELLED"
	NotifyDirectSendResult      NotificationKind = "DIRECT_SEND_RESULT"
	NotifyStoreAndForwardResult NotificationKind = "STORE_AND_FORWARD_RESULT"
	NotifyValidationComplete    NotificationKind = "VALIDATION_COMPLETE"
	NotifyConnectivityChanged   NotificationKind = "CONNECTIVITY_CHANGED"
	NotifyBalanceUpdated        NotificationKind = "BALANCE_UPDATED"
	NotifyWalletRestoration     NotificationKind = "WALLET_RESTORATION"
	NotifyTxSetRefreshed        NotificationKind = "TX_SET_REFRESHED"
	NotifyConfirmationsChanged  NotificationKind = "CONFIRMATIONS_CHANGED"
)

// Notification is what subscribers receive after an event has been applied. Seq is the
// state sequence number the notification was produced at, so a subscriber can tell
// whether a snapshot it reads already includes the change.
//
// Tx points at the record stored in the published snapshot and must be treated as
// read-only.
type Notification struct {
	Kind          NotificationKind    `json:"kind"`
	Seq           uint64              `json:"seq"`
	Tx            *models.Transaction `json:"tx,omitempty"`
	Bucket        models.Bucket       `json:"bucket,omitempty"`
	Confirmations uint64              `json:"confirmations,omitempty"`
	Faux          bool                `json:"faux,omitempty"`
	Reason        *int                `json:"reason,omitempty"`
	TxID          *models.TxID        `json:"tx_id,omitempty"`
	RequestID     *uint64             `json:"request_id,omitempty"`
	Validation    ValidationKind      `json:"validation,omitempty"`
	Success       *bool               `json:"success,omitempty"`
	Connectivity  string              `json:"connectivity,omitempty"`
	Balance       *models.BalanceInfo `json:"balance,omitempty"`
	Restoration   *WalletRestoration  `json:"restoration,omitempty"`
	Changed       int                 `json:"changed,omitempty"`
	Required      *uint64             `json:"required,omitempty"`
}

// SubjectID returns the transaction id the notification is about, if any.
func (n Notification) SubjectID() (models.TxID, bool) {
	switch {
	case n.Tx != nil:
		return n.Tx.Id, true
	case n.TxID != nil:
		return *n.TxID, true
	default:
		return 0, false
	}
}

package models

import (
	"time"
)

// TxID identifies a transaction for the lifetime of the wallet. Ids are never reused.
type TxID uint64

// Direction of a transaction relative to this wallet.
type Direction string

const (
	INBOUND  Direction = "INBOUND"
	OUTBOUND Direction = "OUTBOUND"
)

// TransactionStatus defines the possible states of a transaction.
type TransactionStatus string

const (
	PENDING           TransactionStatus = "PENDING"
	COMPLETED         TransactionStatus = "COMPLETED"
	BROADCAST         TransactionStatus = "BROADCAST"
	MINED_UNCONFIRMED TransactionStatus = "MINED_UNCONFIRMED"
	MINED_CONFIRMED   TransactionStatus = "MINED_CONFIRMED"
	IMPORTED          TransactionStatus = "IMPORTED"
	COINBASE          TransactionStatus = "COINBASE"
	CANCELLED         TransactionStatus = "CANCELLED"
	UNKNOWN           TransactionStatus = "UNKNOWN"
)

// Rank orders statuses along the forward-only lifecycle. Statuses of equal rank are
// alternatives rather than successors. CANCELLED and UNKNOWN are outside the order.
func (s TransactionStatus) Rank() int {
	switch s {
	case PENDING:
		return 0
	case COMPLETED, COINBASE:
		return 1
	case BROADCAST:
		return 2
	case MINED_UNCONFIRMED:
		return 3
	case MINED_CONFIRMED, IMPORTED:
		return 4
	default:
		return -1
	}
}

// IsConfirmed reports whether the status is final on chain.
func (s TransactionStatus) IsConfirmed() bool {
	return s.Rank() == MINED_CONFIRMED.Rank()
}

// Bucket is one of the four mutually exclusive lifecycle partitions.
type Bucket string

const (
	PendingInbound  Bucket = "PENDING_INBOUND"
	PendingOutbound Bucket = "PENDING_OUTBOUND"
	Completed       Bucket = "COMPLETED"
	Cancelled       Bucket = "CANCELLED"
)

// Buckets lists every bucket in precedence order.
var Buckets = []Bucket{PendingInbound, PendingOutbound, Completed, Cancelled}

// Precedence orders buckets: a transaction only ever moves to a bucket of equal or
// higher precedence.
func (b Bucket) Precedence() int {
	switch b {
	case PendingInbound, PendingOutbound:
		return 0
	case Completed:
		return 1
	case Cancelled:
		return 2
	default:
		return -1
	}
}

// Valid reports whether b names a known bucket.
func (b Bucket) Valid() bool {
	return b.Precedence() >= 0
}

// PendingBucket returns the pending bucket for a direction.
func PendingBucket(d Direction) Bucket {
	if d == OUTBOUND {
		return PendingOutbound
	}
	return PendingInbound
}

// Counterparty is the other side of a transaction.
type Counterparty struct {
	PublicKeyHex string `json:"public_key_hex" dynamodbav:"public_key_hex"`
	EmojiID      string `json:"emoji_id" dynamodbav:"emoji_id"`
}

// Transaction is the application-level view of one wallet transaction.
// Values are treated as immutable once published in a snapshot; use Clone before
// modifying a copy.
type Transaction struct {
	Id              TxID              `json:"id"`
	Direction       Direction         `json:"direction"`
	Counterparty    Counterparty      `json:"counterparty"`
	Amount          MicroTari         `json:"amount"`
	Fee             *MicroTari        `json:"fee,omitempty"`
	Message         string            `json:"message"`
	Timestamp       time.Time         `json:"timestamp"`
	Status          TransactionStatus `json:"status"`
	Confirmations   uint64            `json:"confirmations"`
	RejectionReason *int              `json:"rejection_reason,omitempty"`
}

// Clone returns a deep copy of the transaction.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.Amount = t.Amount.Clone()
	if t.Fee != nil {
		fee := t.Fee.Clone()
		c.Fee = &fee
	}
	if t.RejectionReason != nil {
		reason := *t.RejectionReason
		c.RejectionReason = &reason
	}
	return &c
}

// Equal reports whether two records carry the same values.
func (t *Transaction) Equal(o *Transaction) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.Id == o.Id &&
		t.Direction == o.Direction &&
		t.Counterparty == o.Counterparty &&
		t.Amount.Equal(o.Amount) &&
		optionalEqual(t.Fee, o.Fee, func(a, b MicroTari) bool { return a.Equal(b) }) &&
		t.Message == o.Message &&
		t.Timestamp.Equal(o.Timestamp) &&
		t.Status == o.Status &&
		t.Confirmations == o.Confirmations &&
		optionalEqual(t.RejectionReason, o.RejectionReason, func(a, b int) bool { return a == b })
}

func optionalEqual[T any](a, b *T, eq func(T, T) bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return eq(*a, *b)
}

// BalanceInfo is a wallet balance snapshot. It is always replaced as a whole.
type BalanceInfo struct {
	Available       MicroTari `json:"available"`
	PendingIncoming MicroTari `json:"pending_incoming"`
	PendingOutgoing MicroTari `json:"pending_outgoing"`
	TimeLocked      MicroTari `json:"time_locked"`
}

// Equal reports whether two snapshots carry the same four components.
func (b BalanceInfo) Equal(o BalanceInfo) bool {
	return b.Available.Equal(o.Available) &&
		b.PendingIncoming.Equal(o.PendingIncoming) &&
		b.PendingOutgoing.Equal(o.PendingOutgoing) &&
		b.TimeLocked.Equal(o.TimeLocked)
}

// Clone returns a deep copy of the snapshot.
func (b BalanceInfo) Clone() BalanceInfo {
	return BalanceInfo{
		Available:       b.Available.Clone(),
		PendingIncoming: b.PendingIncoming.Clone(),
		PendingOutgoing: b.PendingOutgoing.Clone(),
		TimeLocked:      b.TimeLocked.Clone(),
	}
}

// ActivityEntry is one recorded lifecycle notification.
type ActivityEntry struct {
	EntryID   string    `json:"entry_id" dynamodbav:"entry_id"`
	Kind      string    `json:"kind" dynamodbav:"kind"`
	TxID      *TxID     `json:"tx_id,omitempty" dynamodbav:"tx_id,omitempty"`
	Sequence  uint64    `json:"sequence" dynamodbav:"sequence"`
	Timestamp time.Time `json:"timestamp" dynamodbav:"timestamp"`
	GSI1PK    string    `json:"-" dynamodbav:"gsi1pk"`
	// SortKey is Timestamp in Unix nanoseconds. It is stored as a number so the
	// activity index orders entries chronologically.
	SortKey int64 `json:"-" dynamodbav:"sk"`
}

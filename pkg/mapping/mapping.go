package mapping

import (
	"github.com/shopspring/decimal"

	"github.com/chris/wallet-tx-sync/pkg/api"
	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/reconciler"
)

// microTariPerTari is the exponent between the base unit and its display unit.
const microTariPerTari = -6

// ToTari renders an amount in Tari with all six decimals, e.g. "1.500000".
func ToTari(m models.MicroTari) string {
	return decimal.NewFromBigInt(m.BigInt(), microTariPerTari).StringFixed(-microTariPerTari)
}

// ToApiTransaction converts a domain Transaction model to an API Transaction model.
func ToApiTransaction(tx *models.Transaction, bucket models.Bucket) api.Transaction {
	out := api.Transaction{
		Id:         uint64(tx.Id),
		Direction:  api.TransactionDirection(tx.Direction),
		Status:     string(tx.Status),
		Bucket:     api.TransactionBucket(bucket),
		Amount:     tx.Amount.String(),
		AmountTari: ToTari(tx.Amount),
		Message:    tx.Message,
		Timestamp:  tx.Timestamp,
		Counterparty: api.Counterparty{
			PublicKeyHex: tx.Counterparty.PublicKeyHex,
			EmojiId:      tx.Counterparty.EmojiID,
		},
		Confirmations:   tx.Confirmations,
		RejectionReason: tx.RejectionReason,
	}
	if tx.Fee != nil {
		fee := tx.Fee.String()
		out.Fee = &fee
	}
	return out
}

// ToApiTransactionList converts a bucket listing.
func ToApiTransactionList(bucket models.Bucket, txs []*models.Transaction) api.TransactionList {
	out := api.TransactionList{
		Bucket:       api.TransactionBucket(bucket),
		Transactions: make([]api.Transaction, len(txs)),
	}
	for i, tx := range txs {
		out.Transactions[i] = ToApiTransaction(tx, bucket)
	}
	return out
}

// ToApiBalance converts a domain BalanceInfo to an API Balance model.
func ToApiBalance(b models.BalanceInfo) api.Balance {
	return api.Balance{
		Available:       b.Available.String(),
		AvailableTari:   ToTari(b.Available),
		PendingIncoming: b.PendingIncoming.String(),
		PendingOutgoing: b.PendingOutgoing.String(),
		TimeLocked:      b.TimeLocked.String(),
	}
}

// ToDomainBucket converts an API bucket to the domain bucket. Callers validate it.
func ToDomainBucket(b api.TransactionBucket) models.Bucket {
	return models.Bucket(b)
}

// ToApiValidationResult converts a recorded validation outcome.
func ToApiValidationResult(v reconciler.ValidationResult) api.ValidationResult {
	return api.ValidationResult{
		RequestId: v.RequestID,
		Kind:      api.ValidationKind(v.Kind),
		Success:   v.Success,
	}
}

// ToApiActivityEntry converts a domain ActivityEntry to an API ActivityEntry.
func ToApiActivityEntry(entry *models.ActivityEntry) api.ActivityEntry {
	out := api.ActivityEntry{
		EntryId:   entry.EntryID,
		Kind:      entry.Kind,
		Sequence:  entry.Sequence,
		Timestamp: entry.Timestamp,
	}
	if entry.TxID != nil {
		id := uint64(*entry.TxID)
		out.TxId = &id
	}
	return out
}

package reconciler

import (
	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/models"
)

// Rules adjusts the transition function.
type Rules struct {
	// CancelInbound lets TxCancelled move inbound transactions. By default only outbound
	// cancellations are applied.
	CancelInbound bool
}

// Anomaly describes something unexpected that the transition tolerated.
type Anomaly struct {
	TxID   models.TxID
	Reason string
}

// Result is the outcome of applying one event.
type Result struct {
	State         *State
	Notifications []events.Notification
	// Stale is set when the event would have moved a transaction backwards and was ignored.
	Stale     bool
	Anomalies []Anomaly
}

// Changed reports whether the event produced a new state.
func (r Result) Changed(prev *State) bool { return r.State != prev }

// Apply is the transition function. It never mutates s and never blocks.
func Apply(s *State, ev events.WalletEvent, rules Rules) Result {
	a := applier{state: s, rules: rules}
	a.apply(ev)
	return Result{State: a.state, Notifications: a.out, Stale: a.stale, Anomalies: a.anomalies}
}

type applier struct {
	state     *State
	rules     Rules
	out       []events.Notification
	stale     bool
	anomalies []Anomaly
}

func (a *applier) anomaly(id models.TxID, reason string) {
	a.anomalies = append(a.anomalies, Anomaly{TxID: id, Reason: reason})
}

// commit publishes next as the new state with an advanced sequence number.
func (a *applier) commit(next *State) {
	if next == a.state {
		return
	}
	next.seq = a.state.seq + 1
	a.state = next
}

func (a *applier) notify(n events.Notification) {
	n.Seq = a.state.seq
	a.out = append(a.out, n)
}

func (a *applier) apply(ev events.WalletEvent) {
	switch e := ev.(type) {
	case events.TxReceived:
		if tx, b, ok := a.pending(e.Tx); ok {
			a.notify(events.Notification{Kind: events.NotifyTxReceived, Tx: tx, Bucket: b})
		}
	case events.TxReplyReceived:
		if tx, b, ok := a.pending(e.Tx); ok {
			a.notify(events.Notification{Kind: events.NotifyTxReplyReceived, Tx: tx, Bucket: b})
		}
	case events.TxFinalized:
		if e.Tx == nil {
			return
		}
		if tx, ok := a.completed(e.Tx, atLeastCompleted(e.Tx.Status), 0); ok {
			a.notify(events.Notification{Kind: events.NotifyTxFinalized, Tx: tx, Bucket: models.Completed})
		}
	case events.TxBroadcast:
		if tx, ok := a.completed(e.Tx, models.BROADCAST, 0); ok {
			kind := events.NotifyInboundTxBroadcast
			if tx.Direction == models.OUTBOUND {
				kind = events.NotifyOutboundTxBroadcast
			}
			a.notify(events.Notification{Kind: kind, Tx: tx, Bucket: models.Completed})
		}
	case events.TxMined:
		status := models.MINED_CONFIRMED
		if e.Faux {
			status = models.IMPORTED
		}
		if tx, ok := a.completed(e.Tx, status, 0); ok {
			a.notify(events.Notification{Kind: events.NotifyTxMined, Tx: tx, Bucket: models.Completed, Faux: e.Faux})
		}
	case events.TxMinedUnconfirmed:
		if tx, ok := a.completed(e.Tx, models.MINED_UNCONFIRMED, e.Confirmations); ok {
			a.notify(events.Notification{
				Kind:          events.NotifyTxMinedUnconfirmed,
				Tx:            tx,
				Bucket:        models.Completed,
				Confirmations: tx.Confirmations,
				Faux:          e.Faux,
			})
		}
	case events.TxCancelled:
		if tx, ok := a.cancelled(e.Tx, e.Reason); ok {
			reason := e.Reason
			a.notify(events.Notification{Kind: events.NotifyTxCancelled, Tx: tx, Bucket: models.Cancelled, Reason: &reason})
		}
	case events.DirectSendResult:
		id, ok := e.TxID, e.Success
		a.notify(events.Notification{Kind: events.NotifyDirectSendResult, TxID: &id, Success: &ok})
	case events.StoreAndForwardResult:
		id, ok := e.TxID, e.Success
		a.notify(events.Notification{Kind: events.NotifyStoreAndForwardResult, TxID: &id, Success: &ok})
	case events.ValidationComplete:
		a.commit(a.state.recordValidation(ValidationResult{RequestID: e.RequestID, Kind: e.Validation, Success: e.Success}))
		id, ok := e.RequestID, e.Success
		a.notify(events.Notification{Kind: events.NotifyValidationComplete, RequestID: &id, Validation: e.Validation, Success: &ok})
	case events.ConnectivityChanged:
		if status, known := a.state.Connectivity(); known && status == e.Status {
			return
		}
		next := a.state.clone()
		next.connectivity = e.Status
		next.connectivityKnown = true
		a.commit(next)
		a.notify(events.Notification{Kind: events.NotifyConnectivityChanged, Connectivity: e.Status.String()})
	case events.BalanceUpdated:
		a.balance(e.Balance)
	case events.WalletRestoration:
		next := a.state.clone()
		r := e
		next.restoration = &r
		a.commit(next)
		a.notify(events.Notification{Kind: events.NotifyWalletRestoration, Restoration: &r})
	case events.TxSetRefreshed:
		a.refresh(e)
	case events.ConfirmationsChanged:
		if a.state.required == e.Required {
			return
		}
		next := a.state.clone()
		next.required = e.Required
		a.commit(next)
		n := e.Required
		a.notify(events.Notification{Kind: events.NotifyConfirmationsChanged, Required: &n})
	}
}

// reconcile settles the direction of an incoming payload against what is stored.
func (a *applier) reconcile(in *models.Transaction, existing *models.Transaction) *models.Transaction {
	tx := in.Clone()
	if existing == nil {
		return tx
	}
	if tx.Direction != existing.Direction {
		a.anomaly(tx.Id, "direction changed from "+string(existing.Direction)+" to "+string(tx.Direction))
		tx.Direction = existing.Direction
	}
	if tx.Fee == nil && existing.Fee != nil {
		fee := existing.Fee.Clone()
		tx.Fee = &fee
	}
	if tx.Confirmations < existing.Confirmations {
		tx.Confirmations = existing.Confirmations
	}
	return tx
}

// higher returns the status with the greater lifecycle rank, preferring a.
func higher(a, b models.TransactionStatus) models.TransactionStatus {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// pending inserts or replaces a transaction in the pending bucket for its direction.
func (a *applier) pending(in *models.Transaction) (*models.Transaction, models.Bucket, bool) {
	if in == nil {
		return nil, "", false
	}
	existing, cur, found := a.state.Find(in.Id)
	if !found {
		existing = nil
	}
	tx := a.reconcile(in, existing)
	target := models.PendingBucket(tx.Direction)
	if found && cur.Precedence() > target.Precedence() {
		a.stale = true
		return nil, "", false
	}
	if found {
		tx.Status = higher(existing.Status, tx.Status)
	}
	if !a.store(tx, target, existing, cur) {
		return nil, "", false
	}
	return tx, target, true
}

// store commits tx unless it is identical to what is already stored in b. It reports
// whether a new state was committed; an identical redelivery notifies nobody.
func (a *applier) store(tx *models.Transaction, b models.Bucket, existing *models.Transaction, cur models.Bucket) bool {
	if existing != nil && cur == b && existing.Equal(tx) {
		return false
	}
	a.commit(a.state.put(tx, b))
	return true
}

// completed upserts a transaction into Completed with the given status. A status below
// the stored one is stale.
func (a *applier) completed(in *models.Transaction, status models.TransactionStatus, confirmations uint64) (*models.Transaction, bool) {
	if in == nil {
		return nil, false
	}
	existing, cur, found := a.state.Find(in.Id)
	if !found {
		existing = nil
		a.anomaly(in.Id, "unknown transaction inserted into "+string(models.Completed))
	}
	if found && cur.Precedence() > models.Completed.Precedence() {
		a.stale = true
		return nil, false
	}
	if found && cur == models.Completed && status.Rank() < existing.Status.Rank() {
		a.stale = true
		return nil, false
	}
	tx := a.reconcile(in, existing)
	if confirmations > tx.Confirmations {
		tx.Confirmations = confirmations
	}
	tx.Status = status
	if !a.store(tx, models.Completed, existing, cur) {
		return nil, false
	}
	return tx, true
}

// cancelled moves a transaction into the terminal Cancelled bucket.
func (a *applier) cancelled(in *models.Transaction, reason int) (*models.Transaction, bool) {
	if in == nil {
		return nil, false
	}
	existing, cur, found := a.state.Find(in.Id)
	if !found {
		existing = nil
	}
	tx := a.reconcile(in, existing)
	if tx.Direction == models.INBOUND && !a.rules.CancelInbound {
		a.anomaly(tx.Id, "inbound cancellation ignored")
		return nil, false
	}
	if found && existing.Status.IsConfirmed() {
		a.stale = true
		return nil, false
	}
	if !found {
		a.anomaly(tx.Id, "unknown transaction inserted into "+string(models.Cancelled))
	}
	tx.Status = models.CANCELLED
	r := reason
	tx.RejectionReason = &r
	if !a.store(tx, models.Cancelled, existing, cur) {
		return nil, false
	}
	return tx, true
}

func (a *applier) balance(b models.BalanceInfo) {
	if cur, ok := a.state.Balance(); ok && cur.Equal(b) {
		return
	}
	next := a.state.clone()
	next.balance = b.Clone()
	next.hasBalance = true
	a.commit(next)
	snap := next.balance
	a.notify(events.Notification{Kind: events.NotifyBalanceUpdated, Balance: &snap})
}

// refresh folds the result of a direct query into the state using the same
// forward-only rules as the callbacks.
func (a *applier) refresh(e events.TxSetRefreshed) {
	start := a.state
	changed := 0
	upsert := func(txs []*models.Transaction, fn func(*models.Transaction) bool) {
		for _, tx := range txs {
			before := a.state
			if fn(tx) && a.state != before {
				changed++
			}
		}
	}

	// Suppress the per-record notifications; the refresh is reported once.
	out := a.out
	upsert(e.PendingInbound, func(tx *models.Transaction) bool { _, _, ok := a.pending(tx); return ok })
	upsert(e.PendingOutbound, func(tx *models.Transaction) bool { _, _, ok := a.pending(tx); return ok })
	upsert(e.Completed, func(tx *models.Transaction) bool {
		_, ok := a.completed(tx, atLeastCompleted(tx.Status), tx.Confirmations)
		return ok
	})
	upsert(e.Cancelled, func(tx *models.Transaction) bool {
		reason := 0
		if tx.RejectionReason != nil {
			reason = *tx.RejectionReason
		}
		_, ok := a.cancelled(tx, reason)
		return ok
	})
	a.out = out
	a.stale = false

	if a.state != start {
		a.notify(events.Notification{Kind: events.NotifyTxSetRefreshed, Changed: changed})
	}
	if e.Balance != nil {
		a.balance(*e.Balance)
	}
}

// atLeastCompleted lifts a status reported for a completed record to at least COMPLETED.
func atLeastCompleted(s models.TransactionStatus) models.TransactionStatus {
	if s.Rank() < models.COMPLETED.Rank() {
		return models.COMPLETED
	}
	return s
}

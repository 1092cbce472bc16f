package wallet

import (
	"context"
	"fmt"
	"strconv"

	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/ingress"
	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/native"
	"github.com/chris/wallet-tx-sync/pkg/storage"
)

// CancelPendingTx asks the core to cancel a pending transaction. The state changes when
// the core reports the cancellation, not when this returns.
func (s *Service) CancelPendingTx(ctx context.Context, id models.TxID) error {
	_, b, ok := s.Snapshot().Find(id)
	if !ok {
		return ErrTxNotFound
	}
	switch {
	case b == models.PendingOutbound:
	case b == models.PendingInbound && s.rules.CancelInbound:
	default:
		return ErrTxNotCancellable
	}

	cancelled, err := s.native.CancelPendingTx(ctx, uint64(id))
	if err != nil {
		return fmt.Errorf("failed to cancel transaction %d: %w", id, err)
	}
	if !cancelled {
		// The core moved it on between the snapshot read and the call.
		return ErrTxNotCancellable
	}
	s.logger.Info("cancellation requested", "txId", id)
	return nil
}

// StartValidation starts a tx or txo validation and returns its request id. The result
// arrives later as a VALIDATION_COMPLETE notification.
func (s *Service) StartValidation(ctx context.Context, kind events.ValidationKind) (uint64, error) {
	var (
		id  uint64
		err error
	)
	switch kind {
	case events.ValidationTx:
		id, err = s.native.StartTxValidation(ctx)
	case events.ValidationTXO:
		id, err = s.native.StartTXOValidation(ctx)
	default:
		return 0, ErrInvalidValidationKind
	}
	if err != nil {
		return 0, fmt.Errorf("failed to start %s validation: %w", kind, err)
	}
	s.logger.Info("validation started", "validation", kind, "requestId", id)
	return id, nil
}

// SetRequiredConfirmations updates the core, persists the count and records it in the
// state.
func (s *Service) SetRequiredConfirmations(ctx context.Context, n uint64) error {
	if n == 0 {
		return ErrInvalidConfirmations
	}
	if err := s.native.SetRequiredConfirmationCount(ctx, n); err != nil {
		return fmt.Errorf("failed to set required confirmations: %w", err)
	}
	if err := s.prefs.Set(ctx, storage.KeyRequiredConfirmations, strconv.FormatUint(n, 10)); err != nil {
		return fmt.Errorf("failed to persist required confirmations: %w", err)
	}
	if err := s.ingress.Submit(ctx, events.ConfirmationsChanged{Required: n}); err != nil {
		return fmt.Errorf("failed to record required confirmations: %w", err)
	}
	return nil
}

// Refresh queries the core for every list and the balance and feeds the result through
// the reconciler like any other event.
func (s *Service) Refresh(ctx context.Context) error {
	var ev events.TxSetRefreshed
	lists := []struct {
		name   string
		get    func(context.Context) ([]native.TxHandle, error)
		target *[]*models.Transaction
	}{
		{"pending inbound", s.native.GetPendingInboundTxs, &ev.PendingInbound},
		{"pending outbound", s.native.GetPendingOutboundTxs, &ev.PendingOutbound},
		{"completed", s.native.GetCompletedTxs, &ev.Completed},
		{"cancelled", s.native.GetCancelledTxs, &ev.Cancelled},
	}
	for _, l := range lists {
		hs, err := l.get(ctx)
		if err != nil {
			return fmt.Errorf("failed to query %s transactions: %w", l.name, err)
		}
		txs, err := ingress.CopyTxs(hs)
		for _, h := range hs {
			native.Release(h)
		}
		if err != nil {
			return fmt.Errorf("failed to read %s transactions: %w", l.name, err)
		}
		*l.target = txs
	}

	bh, err := s.native.GetBalance(ctx)
	if err != nil {
		return fmt.Errorf("failed to query balance: %w", err)
	}
	b, err := ingress.CopyBalance(bh)
	native.Release(bh)
	if err != nil {
		return fmt.Errorf("failed to read balance: %w", err)
	}
	ev.Balance = &b

	if err := s.ingress.Submit(ctx, ev); err != nil {
		return fmt.Errorf("failed to submit refresh: %w", err)
	}
	return nil
}

// GetPreference reads a network scoped preference.
func (s *Service) GetPreference(ctx context.Context, key string) (string, error) {
	return s.prefs.Get(ctx, key)
}

// SetPreference writes a network scoped preference.
func (s *Service) SetPreference(ctx context.Context, key, value string) error {
	return s.prefs.Set(ctx, key, value)
}

// RemovePreference deletes a network scoped preference.
func (s *Service) RemovePreference(ctx context.Context, key string) error {
	return s.prefs.Remove(ctx, key)
}

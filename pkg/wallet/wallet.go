// Package wallet is the query and command surface over the synchronized wallet state.
// It wires the native core to the ingress, runs the reconciler and owns the fan-out hub
// that observers subscribe to.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/fanout"
	"github.com/chris/wallet-tx-sync/pkg/ingress"
	"github.com/chris/wallet-tx-sync/pkg/metrics"
	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/native"
	"github.com/chris/wallet-tx-sync/pkg/reconciler"
	"github.com/chris/wallet-tx-sync/pkg/storage"
)

type Options struct {
	Native      native.Wallet
	Preferences storage.PreferencesStore
	// Network scopes every preference key.
	Network string
	// CancelInbound allows cancelling pending inbound transactions.
	CancelInbound bool

	IngressQueueSize    int
	SubscriberQueueSize int

	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Registerer receives the ingress queue depth gauge when Metrics is set.
	Registerer prometheus.Registerer
}

// Service is safe for concurrent use. Queries read the latest snapshot; commands call
// the native core on the caller's goroutine and let the resulting callbacks drive state.
type Service struct {
	native  native.Wallet
	prefs   storage.PreferencesStore
	ingress *ingress.Ingress
	rec     *reconciler.Reconciler
	hub     *fanout.Hub
	rules   reconciler.Rules
	logger  *slog.Logger

	startOnce sync.Once
	closeOnce sync.Once
	stopped   chan struct{}
	runErr    error
}

// New seeds the state from preferences and registers the ingress as the native core's
// callback table. Call Start to begin applying events.
func New(ctx context.Context, opts Options) (*Service, error) {
	if opts.Native == nil {
		return nil, errors.New("native wallet is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prefs := opts.Preferences
	if prefs == nil {
		prefs = storage.NewMemory()
	}
	s := &Service{
		native:  opts.Native,
		prefs:   storage.Scoped{Store: prefs, Network: opts.Network},
		rules:   reconciler.Rules{CancelInbound: opts.CancelInbound},
		logger:  logger.With("component", "wallet"),
		stopped: make(chan struct{}),
	}

	seed, err := s.seed(ctx)
	if err != nil {
		return nil, err
	}

	s.ingress = ingress.New(ingress.Options{QueueSize: opts.IngressQueueSize, Logger: logger, Metrics: opts.Metrics})
	s.hub = fanout.NewHub(fanout.Options{QueueSize: opts.SubscriberQueueSize, Logger: logger, Metrics: opts.Metrics})
	s.rec = reconciler.New(reconciler.Options{
		Rules:       s.rules,
		Initial:     seed,
		Publisher:   s.hub,
		SaveBalance: s.saveBalance,
		Logger:      logger,
		Metrics:     opts.Metrics,
	})
	opts.Metrics.RegisterQueueDepth(opts.Registerer, s.ingress.Len)

	if err := s.native.RegisterCallbacks(s.ingress); err != nil {
		return nil, fmt.Errorf("failed to register native callbacks: %w", err)
	}
	return s, nil
}

// seed builds the initial snapshot from the last persisted balance and the required
// confirmation count. A persisted count wins over the core's and is pushed back to it.
func (s *Service) seed(ctx context.Context) (*reconciler.State, error) {
	st := reconciler.NewState()

	raw, err := s.prefs.Get(ctx, storage.KeyLastBalance)
	switch {
	case err == nil:
		var b models.BalanceInfo
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			s.logger.Warn("ignoring unreadable persisted balance", "error", err)
		} else {
			st = st.WithBalance(b)
		}
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("failed to load last balance: %w", err)
	}

	raw, err = s.prefs.Get(ctx, storage.KeyRequiredConfirmations)
	switch {
	case err == nil:
		n, perr := strconv.ParseUint(raw, 10, 64)
		if perr != nil || n == 0 {
			s.logger.Warn("ignoring unreadable required confirmations", "value", raw)
			break
		}
		if err := s.native.SetRequiredConfirmationCount(ctx, n); err != nil {
			return nil, fmt.Errorf("failed to restore required confirmations: %w", err)
		}
		return st.WithRequiredConfirmations(n), nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("failed to load required confirmations: %w", err)
	}

	n, err := s.native.GetRequiredConfirmationCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get required confirmations: %w", err)
	}
	return st.WithRequiredConfirmations(n), nil
}

func (s *Service) saveBalance(ctx context.Context, b models.BalanceInfo) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal balance: %w", err)
	}
	if err := s.prefs.Set(ctx, storage.KeyLastBalance, string(raw)); err != nil {
		return fmt.Errorf("failed to save balance: %w", err)
	}
	return nil
}

// Start runs the reconciler until ctx is done or Close is called.
func (s *Service) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go func() {
			defer close(s.stopped)
			s.runErr = s.rec.Run(ctx, s.ingress.Events(), s.ingress.Done())
			if s.runErr != nil && !errors.Is(s.runErr, context.Canceled) {
				s.logger.Error("reconciler stopped", "error", s.runErr)
			}
		}()
	})
}

// Close stops accepting callbacks, applies what is already queued and unregisters
// every subscriber. It does not close the native wallet.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.ingress.Close()
		s.startOnce.Do(func() { close(s.stopped) })
		<-s.stopped
		s.hub.Close()
	})
	if errors.Is(s.runErr, context.Canceled) {
		return nil
	}
	return s.runErr
}

// Submit enqueues an event that did not come from a native callback.
func (s *Service) Submit(ctx context.Context, ev events.WalletEvent) error {
	return s.ingress.Submit(ctx, ev)
}

// Subscribe registers an observer on the fan-out hub.
func (s *Service) Subscribe(l fanout.Listener, opts ...fanout.SubscribeOption) *fanout.Subscription {
	return s.hub.Subscribe(l, opts...)
}

// Hub exposes the fan-out hub for subscribers that attach themselves.
func (s *Service) Hub() *fanout.Hub { return s.hub }

// Snapshot returns the latest applied state.
func (s *Service) Snapshot() *reconciler.State { return s.rec.Snapshot() }

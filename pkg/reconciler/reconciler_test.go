package reconciler

import (
	"context"
	"errors"
	"math/big"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/ingress"
	"github.com/chris/wallet-tx-sync/pkg/metrics"
	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/native"
	"github.com/chris/wallet-tx-sync/pkg/native/sim"
)

type recordingPublisher struct {
	mu    sync.Mutex
	notes []events.Notification
}

func (p *recordingPublisher) Publish(n events.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notes = append(p.notes, n)
}

func (p *recordingPublisher) kinds() []events.NotificationKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.NotificationKind, 0, len(p.notes))
	for _, n := range p.notes {
		out = append(out, n.Kind)
	}
	return out
}

func TestReconciler(t *testing.T) {
	t.Run("Step Publishes And Swaps Snapshot", func(t *testing.T) {
		// Arrange
		pub := &recordingPublisher{}
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		r := New(Options{Publisher: pub, Metrics: m})
		before := r.Snapshot()

		// Act
		r.Step(events.TxReceived{Tx: newTx(1, models.INBOUND, models.PENDING)})
		r.Step(events.TxReceived{Tx: newTx(1, models.INBOUND, models.PENDING)})
		r.Step(events.TxFinalized{Tx: newTx(1, models.INBOUND, models.PENDING)})
		r.Step(events.TxReceived{Tx: newTx(1, models.INBOUND, models.PENDING)})

		// Assert
		assert.Equal(t, 0, before.Len(models.PendingInbound))
		_, b, ok := r.Snapshot().Find(1)
		require.True(t, ok)
		assert.Equal(t, models.Completed, b)
		assert.Equal(t, []events.NotificationKind{
			events.NotifyTxReceived,
			events.NotifyTxFinalized,
		}, pub.kinds())
		assert.Equal(t, float64(3), testutil.ToFloat64(m.EventsApplied.WithLabelValues(string(events.KindTxReceived))))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.StaleEvents.WithLabelValues(string(events.KindTxReceived))))
	})

	t.Run("Initial State Is Seeded", func(t *testing.T) {
		seed := NewState().
			WithBalance(models.BalanceInfo{Available: models.MicroTariFromUint64(5)}).
			WithRequiredConfirmations(3)

		r := New(Options{Initial: seed})

		b, ok := r.Snapshot().Balance()
		require.True(t, ok)
		assert.Equal(t, "5", b.Available.String())
		assert.Equal(t, uint64(3), r.Snapshot().RequiredConfirmations())
	})

	t.Run("Balance Is Persisted Off Path", func(t *testing.T) {
		// Arrange
		saved := make(chan models.BalanceInfo, 4)
		src := make(chan events.WalletEvent)
		done := make(chan struct{})
		r := New(Options{SaveBalance: func(ctx context.Context, b models.BalanceInfo) error {
			saved <- b
			return nil
		}})
		ran := make(chan error, 1)
		go func() { ran <- r.Run(context.Background(), src, done) }()

		// Act
		src <- events.BalanceUpdated{Balance: models.BalanceInfo{Available: models.MicroTariFromUint64(77)}}

		// Assert
		select {
		case b := <-saved:
			assert.Equal(t, "77", b.Available.String())
		case <-time.After(time.Second):
			t.Fatal("balance not persisted")
		}
		close(done)
		require.NoError(t, <-ran)
	})

	t.Run("Save Failure Is Logged", func(t *testing.T) {
		calls := make(chan struct{}, 1)
		src := make(chan events.WalletEvent, 1)
		done := make(chan struct{})
		r := New(Options{SaveBalance: func(ctx context.Context, b models.BalanceInfo) error {
			calls <- struct{}{}
			return errors.New("disk full")
		}})
		src <- events.BalanceUpdated{Balance: models.BalanceInfo{Available: models.MicroTariFromUint64(1)}}
		close(done)

		err := r.Run(context.Background(), src, done)

		require.NoError(t, err)
		<-calls
		b, _ := r.Snapshot().Balance()
		assert.Equal(t, "1", b.Available.String())
	})

	t.Run("Run Stops On Context", func(t *testing.T) {
		r := New(Options{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := r.Run(ctx, make(chan events.WalletEvent), make(chan struct{}))

		assert.ErrorIs(t, err, context.Canceled)
	})
}

// nativeCall is one callback invocation against the ingress.
type nativeCall struct {
	id   models.TxID
	call func(cb native.Callbacks)
}

func rec(id models.TxID, outbound bool, status int) sim.TxRecord {
	return sim.TxRecord{
		ID:        uint64(id),
		Outbound:  outbound,
		Amount:    big.NewInt(int64(id) * 10),
		Timestamp: 1700000000 + uint64(id),
		Status:    status,
	}
}

func lend(r sim.TxRecord, fn func(native.TxHandle)) {
	h := sim.NewTxHandle(r)
	defer h.Release()
	fn(h)
}

// script builds exactly 20 callbacks for one id, in lifecycle order.
func script(id models.TxID) ([]nativeCall, models.Bucket) {
	var calls []nativeCall
	add := func(fn func(cb native.Callbacks)) { calls = append(calls, nativeCall{id: id, call: fn}) }

	switch id % 3 {
	case 0:
		add(func(cb native.Callbacks) { lend(rec(id, false, native.StatusPending), cb.OnTxReceived) })
		add(func(cb native.Callbacks) { lend(rec(id, false, native.StatusCompleted), cb.OnTxFinalized) })
		add(func(cb native.Callbacks) { lend(rec(id, false, native.StatusBroadcast), cb.OnTxBroadcast) })
		for c := uint64(1); c <= 16; c++ {
			add(func(cb native.Callbacks) {
				lend(rec(id, false, native.StatusMinedUnconfirmed), func(h native.TxHandle) { cb.OnTxMinedUnconfirmed(h, native.EncodeUint64(c)) })
			})
		}
		add(func(cb native.Callbacks) { lend(rec(id, false, native.StatusMinedConfirmed), cb.OnTxMined) })
		return calls, models.Completed
	case 1:
		add(func(cb native.Callbacks) { lend(rec(id, true, native.StatusCompleted), cb.OnTxReplyReceived) })
		add(func(cb native.Callbacks) { lend(rec(id, true, native.StatusBroadcast), cb.OnTxBroadcast) })
		for c := uint64(1); c <= 17; c++ {
			add(func(cb native.Callbacks) {
				lend(rec(id, true, native.StatusMinedUnconfirmed), func(h native.TxHandle) { cb.OnTxMinedUnconfirmed(h, native.EncodeUint64(c)) })
			})
		}
		add(func(cb native.Callbacks) { lend(rec(id, true, native.StatusMinedConfirmed), cb.OnTxMined) })
		return calls, models.Completed
	default:
		for i := 0; i < 19; i++ {
			add(func(cb native.Callbacks) { lend(rec(id, true, native.StatusCompleted), cb.OnTxReplyReceived) })
		}
		add(func(cb native.Callbacks) {
			lend(rec(id, true, native.StatusPending), func(h native.TxHandle) { cb.OnTxCancelled(h, native.EncodeUint64(3)) })
		})
		return calls, models.Cancelled
	}
}

func runPipeline(t *testing.T, feed func(cb native.Callbacks)) *State {
	t.Helper()
	in := ingress.New(ingress.Options{QueueSize: 64})
	r := New(Options{})
	ran := make(chan error, 1)
	go func() { ran <- r.Run(context.Background(), in.Events(), in.Done()) }()

	feed(in)

	in.Close()
	select {
	case err := <-ran:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reconciler did not drain")
	}
	return r.Snapshot()
}

func TestConcurrentIngestion(t *testing.T) {
	const ids, workers = 50, 10

	scripts := make(map[models.TxID][]nativeCall, ids)
	want := make(map[models.TxID]models.Bucket, ids)
	for i := 1; i <= ids; i++ {
		id := models.TxID(i)
		scripts[id], want[id] = script(id)
	}

	// Each worker owns a disjoint set of ids and interleaves them randomly while keeping
	// per-id order.
	concurrent := runPipeline(t, func(cb native.Callbacks) {
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				rng := rand.New(rand.NewSource(int64(w)))
				var queues [][]nativeCall
				for i := w + 1; i <= ids; i += workers {
					queues = append(queues, scripts[models.TxID(i)])
				}
				for len(queues) > 0 {
					q := rng.Intn(len(queues))
					queues[q][0].call(cb)
					queues[q] = queues[q][1:]
					if len(queues[q]) == 0 {
						queues = append(queues[:q], queues[q+1:]...)
					}
				}
			}(w)
		}
		wg.Wait()
	})

	sequential := runPipeline(t, func(cb native.Callbacks) {
		for i := 1; i <= ids; i++ {
			for _, c := range scripts[models.TxID(i)] {
				c.call(cb)
			}
		}
	})

	total := 0
	for _, b := range models.Buckets {
		total += concurrent.Len(b)
		assert.Equal(t, sequential.List(b), concurrent.List(b), "bucket %s", b)
	}
	assert.Equal(t, ids, total)
	for id, b := range want {
		tx, got, ok := concurrent.Find(id)
		require.True(t, ok)
		assert.Equal(t, b, got, "id %d", id)
		if b == models.Completed {
			assert.Equal(t, models.MINED_CONFIRMED, tx.Status)
		}
	}
}

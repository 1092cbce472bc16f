package wallet

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/fanout"
	"github.com/chris/wallet-tx-sync/pkg/ingress"
	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/native/sim"
	"github.com/chris/wallet-tx-sync/pkg/storage"
)

const network = "mainnet"

func newService(t *testing.T, prefs storage.PreferencesStore, cancelInbound bool) (*Service, *sim.Core) {
	t.Helper()
	core := sim.New(nil)
	svc, err := New(context.Background(), Options{
		Native:        core,
		Preferences:   prefs,
		Network:       network,
		CancelInbound: cancelInbound,
	})
	require.NoError(t, err)
	svc.Start(context.Background())
	t.Cleanup(func() {
		core.Close()
		svc.Close()
	})
	return svc, core
}

func record(id uint64) sim.TxRecord {
	return sim.TxRecord{ID: id, Amount: big.NewInt(int64(id) * 100), Timestamp: 1700000000 + id}
}

func eventuallyIn(t *testing.T, svc *Service, id models.TxID, want models.Bucket) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, b, err := svc.Find(id)
		return err == nil && b == want
	}, time.Second, 5*time.Millisecond, "tx %d never reached %s", id, want)
}

type collector struct {
	mu    sync.Mutex
	kinds []events.NotificationKind
}

func (c *collector) OnNotification(n events.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kinds = append(c.kinds, n.Kind)
}

func (c *collector) snapshot() []events.NotificationKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]events.NotificationKind(nil), c.kinds...)
}

func TestNew(t *testing.T) {
	t.Run("Seeds From Preferences", func(t *testing.T) {
		// Arrange
		prefs := storage.NewMemory()
		ctx := context.Background()
		require.NoError(t, prefs.Set(ctx, "last_balance_mainnet", `{"available":"1500","pending_incoming":"0","pending_outgoing":"20","time_locked":"0"}`))
		require.NoError(t, prefs.Set(ctx, "required_confirmations_mainnet", "5"))

		// Act
		svc, core := newService(t, prefs, false)

		// Assert
		b, ok := svc.Balance()
		require.True(t, ok)
		assert.Equal(t, "1500", b.Available.String())
		assert.Equal(t, "20", b.PendingOutgoing.String())
		assert.Equal(t, uint64(5), svc.RequiredConfirmations())
		n, err := core.GetRequiredConfirmationCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), n)
	})

	t.Run("Falls Back To Core", func(t *testing.T) {
		svc, _ := newService(t, storage.NewMemory(), false)

		_, ok := svc.Balance()
		assert.False(t, ok)
		assert.Equal(t, uint64(3), svc.RequiredConfirmations())
	})

	t.Run("Unreadable Balance Is Ignored", func(t *testing.T) {
		prefs := storage.NewMemory()
		require.NoError(t, prefs.Set(context.Background(), "last_balance_mainnet", "garbage"))

		svc, _ := newService(t, prefs, false)

		_, ok := svc.Balance()
		assert.False(t, ok)
	})

	t.Run("Callbacks Registered Once", func(t *testing.T) {
		core := sim.New(nil)
		_, err := New(context.Background(), Options{Native: core})
		require.NoError(t, err)

		_, err = New(context.Background(), Options{Native: core})

		assert.ErrorIs(t, err, sim.ErrAlreadyRegistered)
	})

	t.Run("Native Required", func(t *testing.T) {
		_, err := New(context.Background(), Options{})

		assert.Error(t, err)
	})
}

func TestLifecycle(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		svc, core := newService(t, storage.NewMemory(), false)
		obs := &collector{}
		svc.Subscribe(obs, fanout.WithPolicy(fanout.DropOldest))

		// Act
		require.NoError(t, core.Receive(record(42)))
		require.NoError(t, core.Finalize(record(42)))
		require.NoError(t, core.Broadcast(record(42)))
		require.NoError(t, core.Mine(record(42)))

		// Assert
		require.Eventually(t, func() bool {
			tx, err := svc.Transaction(42, models.Completed)
			return err == nil && tx.Status == models.MINED_CONFIRMED
		}, time.Second, 5*time.Millisecond)
		txs, err := svc.Transactions(models.PendingInbound)
		require.NoError(t, err)
		assert.Empty(t, txs)
		require.Eventually(t, func() bool { return len(obs.snapshot()) == 4 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, []events.NotificationKind{
			events.NotifyTxReceived,
			events.NotifyTxFinalized,
			events.NotifyInboundTxBroadcast,
			events.NotifyTxMined,
		}, obs.snapshot())
	})

	t.Run("Invalid Bucket", func(t *testing.T) {
		svc, _ := newService(t, storage.NewMemory(), false)

		_, err := svc.Transactions("ARCHIVED")
		assert.ErrorIs(t, err, ErrInvalidBucket)

		_, err = svc.Transaction(1, "ARCHIVED")
		assert.ErrorIs(t, err, ErrInvalidBucket)
	})

	t.Run("Not Found", func(t *testing.T) {
		svc, _ := newService(t, storage.NewMemory(), false)

		_, _, err := svc.Find(7)
		assert.ErrorIs(t, err, ErrTxNotFound)

		_, err = svc.Transaction(7, models.Completed)
		assert.ErrorIs(t, err, ErrTxNotFound)
	})

	t.Run("Balance Is Persisted", func(t *testing.T) {
		prefs := storage.NewMemory()
		svc, core := newService(t, prefs, false)

		require.NoError(t, core.SetBalance(sim.Balance{Available: big.NewInt(900)}))

		require.Eventually(t, func() bool {
			raw, err := prefs.Get(context.Background(), "last_balance_mainnet")
			return err == nil && raw != ""
		}, time.Second, 5*time.Millisecond)
		b, ok := svc.Balance()
		require.True(t, ok)
		assert.Equal(t, "900", b.Available.String())
	})
}

func TestCancelPendingTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		svc, core := newService(t, storage.NewMemory(), false)
		core.Send(record(7))
		require.NoError(t, core.Reply(record(7)))
		eventuallyIn(t, svc, 7, models.PendingOutbound)

		// Act
		err := svc.CancelPendingTx(ctx, 7)

		// Assert
		require.NoError(t, err)
		eventuallyIn(t, svc, 7, models.Cancelled)
		tx, _, err := svc.Find(7)
		require.NoError(t, err)
		require.NotNil(t, tx.RejectionReason)
		assert.Equal(t, sim.ReasonUserCancelled, *tx.RejectionReason)
	})

	t.Run("Unknown Transaction", func(t *testing.T) {
		svc, _ := newService(t, storage.NewMemory(), false)

		err := svc.CancelPendingTx(ctx, 99)

		assert.ErrorIs(t, err, ErrTxNotFound)
	})

	t.Run("Completed Transaction", func(t *testing.T) {
		svc, core := newService(t, storage.NewMemory(), false)
		require.NoError(t, core.Receive(record(8)))
		require.NoError(t, core.Finalize(record(8)))
		eventuallyIn(t, svc, 8, models.Completed)

		err := svc.CancelPendingTx(ctx, 8)

		assert.ErrorIs(t, err, ErrTxNotCancellable)
	})

	t.Run("Inbound Needs Opt In", func(t *testing.T) {
		svc, core := newService(t, storage.NewMemory(), false)
		require.NoError(t, core.Receive(record(9)))
		eventuallyIn(t, svc, 9, models.PendingInbound)

		err := svc.CancelPendingTx(ctx, 9)

		assert.ErrorIs(t, err, ErrTxNotCancellable)
	})

	t.Run("Inbound With Opt In", func(t *testing.T) {
		svc, core := newService(t, storage.NewMemory(), true)
		require.NoError(t, core.Receive(record(10)))
		eventuallyIn(t, svc, 10, models.PendingInbound)

		require.NoError(t, svc.CancelPendingTx(ctx, 10))

		eventuallyIn(t, svc, 10, models.Cancelled)
	})
}

func TestValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, _ := newService(t, storage.NewMemory(), false)

		txID, err := svc.StartValidation(ctx, events.ValidationTx)
		require.NoError(t, err)
		txoID, err := svc.StartValidation(ctx, events.ValidationTXO)
		require.NoError(t, err)

		assert.NotEqual(t, txID, txoID)
		require.Eventually(t, func() bool {
			_, err1 := svc.Validation(txID)
			_, err2 := svc.Validation(txoID)
			return err1 == nil && err2 == nil
		}, time.Second, 5*time.Millisecond)
		v, err := svc.Validation(txoID)
		require.NoError(t, err)
		assert.Equal(t, events.ValidationTXO, v.Kind)
		assert.True(t, v.Success)
	})

	t.Run("Invalid Kind", func(t *testing.T) {
		svc, _ := newService(t, storage.NewMemory(), false)

		_, err := svc.StartValidation(ctx, "utxo")

		assert.ErrorIs(t, err, ErrInvalidValidationKind)
	})

	t.Run("Unknown Request", func(t *testing.T) {
		svc, _ := newService(t, storage.NewMemory(), false)

		_, err := svc.Validation(12345)

		assert.ErrorIs(t, err, ErrValidationNotFound)
	})
}

func TestSetRequiredConfirmations(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		prefs := storage.NewMemory()
		svc, core := newService(t, prefs, false)
		obs := &collector{}
		svc.Subscribe(obs)

		// Act
		err := svc.SetRequiredConfirmations(ctx, 7)

		// Assert
		require.NoError(t, err)
		require.Eventually(t, func() bool { return svc.RequiredConfirmations() == 7 }, time.Second, 5*time.Millisecond)
		raw, err := prefs.Get(ctx, "required_confirmations_mainnet")
		require.NoError(t, err)
		assert.Equal(t, "7", raw)
		n, err := core.GetRequiredConfirmationCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), n)
		require.Eventually(t, func() bool { return len(obs.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, events.NotifyConfirmationsChanged, obs.snapshot()[0])
	})

	t.Run("Zero", func(t *testing.T) {
		svc, _ := newService(t, storage.NewMemory(), false)

		err := svc.SetRequiredConfirmations(ctx, 0)

		assert.ErrorIs(t, err, ErrInvalidConfirmations)
	})
}

func TestRefresh(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		svc, core := newService(t, storage.NewMemory(), false)
		core.Send(record(5))
		require.NoError(t, core.SetBalance(sim.Balance{Available: big.NewInt(10), Outgoing: big.NewInt(500)}))

		// Act
		err := svc.Refresh(context.Background())

		// Assert
		require.NoError(t, err)
		eventuallyIn(t, svc, 5, models.PendingOutbound)
		tx, err := svc.Transaction(5, models.PendingOutbound)
		require.NoError(t, err)
		assert.Equal(t, models.OUTBOUND, tx.Direction)
		assert.Equal(t, "500", tx.Amount.String())
		b, ok := svc.Balance()
		require.True(t, ok)
		assert.Equal(t, "500", b.PendingOutgoing.String())
	})

	t.Run("Closed Core", func(t *testing.T) {
		svc, core := newService(t, storage.NewMemory(), false)
		require.NoError(t, core.Close())

		err := svc.Refresh(context.Background())

		assert.ErrorIs(t, err, sim.ErrClosed)
	})
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	prefs := storage.NewMemory()
	svc, _ := newService(t, prefs, false)

	require.NoError(t, svc.SetPreference(ctx, "base_node", "tcp://node"))

	raw, err := prefs.Get(ctx, "base_node_mainnet")
	require.NoError(t, err)
	assert.Equal(t, "tcp://node", raw)
	got, err := svc.GetPreference(ctx, "base_node")
	require.NoError(t, err)
	assert.Equal(t, "tcp://node", got)

	require.NoError(t, svc.RemovePreference(ctx, "base_node"))
	_, err = svc.GetPreference(ctx, "base_node")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestClose(t *testing.T) {
	core := sim.New(nil)
	svc, err := New(context.Background(), Options{Native: core})
	require.NoError(t, err)
	svc.Start(context.Background())
	require.NoError(t, core.Receive(record(1)))

	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())

	_, b, err := svc.Find(1)
	require.NoError(t, err)
	assert.Equal(t, models.PendingInbound, b)
	assert.ErrorIs(t, svc.Submit(context.Background(), events.ConfirmationsChanged{Required: 2}), ingress.ErrQueueClosed)
}

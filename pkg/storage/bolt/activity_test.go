package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris/wallet-tx-sync/pkg/models"
)

func TestActivity(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	id := models.TxID(42)

	t.Run("Success", func(t *testing.T) {
		// Arrange
		store, err := Open(filepath.Join(t.TempDir(), "wallet.db"))
		require.NoError(t, err)
		defer store.Close()

		// Act
		for i := 0; i < 3; i++ {
			require.NoError(t, store.PutActivity(ctx, &models.ActivityEntry{
				EntryID:   string(rune('a' + i)),
				Kind:      "TX_MINED",
				TxID:      &id,
				Sequence:  uint64(i + 1),
				Timestamp: base.Add(time.Duration(i) * time.Second),
			}))
		}
		entries, err := store.ListActivity(ctx, 2)

		// Assert
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "c", entries[0].EntryID)
		assert.Equal(t, "b", entries[1].EntryID)
		assert.Equal(t, id, *entries[0].TxID)
		assert.True(t, entries[0].Timestamp.Equal(base.Add(2*time.Second)))
	})

	t.Run("Duplicate Is Ignored", func(t *testing.T) {
		store, err := Open(filepath.Join(t.TempDir(), "wallet.db"))
		require.NoError(t, err)
		defer store.Close()
		entry := &models.ActivityEntry{EntryID: "dup", Kind: "TX_RECEIVED", Timestamp: base}

		require.NoError(t, store.PutActivity(ctx, entry))
		later := *entry
		later.Timestamp = base.Add(time.Hour)
		require.NoError(t, store.PutActivity(ctx, &later))

		entries, err := store.ListActivity(ctx, 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, entries[0].Timestamp.Equal(base))
	})

	t.Run("Empty", func(t *testing.T) {
		store, err := Open(filepath.Join(t.TempDir(), "wallet.db"))
		require.NoError(t, err)
		defer store.Close()

		entries, err := store.ListActivity(ctx, 10)

		assert.NoError(t, err)
		assert.Empty(t, entries)
	})
}

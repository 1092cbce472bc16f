package models

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMicroTari(t *testing.T) {
	t.Run("Rejects Negative", func(t *testing.T) {
		_, err := NewMicroTari(big.NewInt(-1))
		assert.Error(t, err)
	})

	t.Run("Does Not Alias Input", func(t *testing.T) {
		src := big.NewInt(1000)
		m, err := NewMicroTari(src)
		require.NoError(t, err)

		src.SetInt64(5)
		assert.Equal(t, "1000", m.String())
	})

	t.Run("Arbitrary Precision", func(t *testing.T) {
		m, err := ParseMicroTari("340282366920938463463374607431768211456")
		require.NoError(t, err)

		sum := m.Add(MicroTariFromUint64(1))
		assert.Equal(t, "340282366920938463463374607431768211457", sum.String())
	})

	t.Run("Sub Never Goes Negative", func(t *testing.T) {
		_, err := MicroTariFromUint64(5).Sub(MicroTariFromUint64(6))
		assert.Error(t, err)
	})

	t.Run("JSON As String", func(t *testing.T) {
		data, err := json.Marshal(MicroTariFromUint64(42))
		require.NoError(t, err)
		assert.Equal(t, `"42"`, string(data))

		var back MicroTari
		require.NoError(t, json.Unmarshal(data, &back))
		assert.True(t, back.Equal(MicroTariFromUint64(42)))
	})

	t.Run("Zero Value", func(t *testing.T) {
		var m MicroTari
		assert.True(t, m.IsZero())
		assert.True(t, m.Equal(MicroTariFromUint64(0)))
	})
}

func TestStatusRank(t *testing.T) {
	assert.Less(t, PENDING.Rank(), COMPLETED.Rank())
	assert.Less(t, COMPLETED.Rank(), BROADCAST.Rank())
	assert.Less(t, BROADCAST.Rank(), MINED_UNCONFIRMED.Rank())
	assert.Less(t, MINED_UNCONFIRMED.Rank(), MINED_CONFIRMED.Rank())
	assert.Equal(t, MINED_CONFIRMED.Rank(), IMPORTED.Rank())
	assert.True(t, IMPORTED.IsConfirmed())
	assert.False(t, BROADCAST.IsConfirmed())
}

func TestTransactionClone(t *testing.T) {
	fee := MicroTariFromUint64(10)
	reason := 3
	tx := &Transaction{Id: 1, Amount: MicroTariFromUint64(100), Fee: &fee, RejectionReason: &reason}

	c := tx.Clone()
	*c.RejectionReason = 9

	assert.Equal(t, 3, *tx.RejectionReason)
	assert.NotSame(t, tx.Fee, c.Fee)
	assert.True(t, tx.Amount.Equal(c.Amount))
}

func TestBalanceEqual(t *testing.T) {
	a := BalanceInfo{Available: MicroTariFromUint64(1)}
	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.TimeLocked = MicroTariFromUint64(2)
	assert.False(t, a.Equal(b))
}

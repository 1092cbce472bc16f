package handlers

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chris/wallet-tx-sync/pkg/api"
	"github.com/chris/wallet-tx-sync/pkg/handlers/websockets"
	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/native/sim"
	"github.com/chris/wallet-tx-sync/pkg/storage"
	"github.com/chris/wallet-tx-sync/pkg/storage/mocks"
	"github.com/chris/wallet-tx-sync/pkg/wallet"
)

func newRouter(t *testing.T, activityStore storage.ActivityReader) (http.Handler, *sim.Core) {
	t.Helper()
	core := sim.New(nil)
	svc, err := wallet.New(context.Background(), wallet.Options{Native: core, Network: "mainnet"})
	require.NoError(t, err)
	svc.Start(context.Background())
	t.Cleanup(func() {
		core.Close()
		svc.Close()
	})

	router := chi.NewRouter()
	api.HandlerFromMux(NewApiHandler(svc, activityStore, websockets.NewHandler(storage.NewConnections(), svc, 0)), router)
	return router, core
}

func do(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRouter(t *testing.T) {
	t.Run("Received Transaction Is Served", func(t *testing.T) {
		// Arrange
		router, core := newRouter(t, new(mocks.Storage))

		// Act
		require.NoError(t, core.Receive(sim.TxRecord{ID: 7, Amount: big.NewInt(700), Timestamp: 1700000007}))

		// Assert
		require.Eventually(t, func() bool {
			return do(router, http.MethodGet, "/transactions/7", "").Code == http.StatusOK
		}, time.Second, 5*time.Millisecond)

		rr := do(router, http.MethodGet, "/transactions?bucket=PENDING_INBOUND", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		var list api.TransactionList
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
		if assert.Len(t, list.Transactions, 1) {
			assert.Equal(t, uint64(7), list.Transactions[0].Id)
			assert.Equal(t, api.INBOUND, list.Transactions[0].Direction)
			assert.Equal(t, "700", list.Transactions[0].Amount)
		}

		rr = do(router, http.MethodGet, "/transactions/7?bucket=COMPLETED", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Inbound Cancel Is Refused", func(t *testing.T) {
		router, core := newRouter(t, new(mocks.Storage))
		require.NoError(t, core.Receive(sim.TxRecord{ID: 8, Amount: big.NewInt(1), Timestamp: 1700000008}))
		require.Eventually(t, func() bool {
			return do(router, http.MethodGet, "/transactions/8", "").Code == http.StatusOK
		}, time.Second, 5*time.Millisecond)

		rr := do(router, http.MethodPost, "/transactions/8/cancel", "")

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("Bad Path Parameter", func(t *testing.T) {
		router, _ := newRouter(t, new(mocks.Storage))

		rr := do(router, http.MethodGet, "/transactions/abc", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Missing Bucket", func(t *testing.T) {
		router, _ := newRouter(t, new(mocks.Storage))

		rr := do(router, http.MethodGet, "/transactions", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Confirmations Round Trip", func(t *testing.T) {
		router, _ := newRouter(t, new(mocks.Storage))

		rr := do(router, http.MethodPut, "/confirmations", `{"required":6}`)
		require.Equal(t, http.StatusNoContent, rr.Code)

		assert.Eventually(t, func() bool {
			rr := do(router, http.MethodGet, "/confirmations", "")
			return rr.Code == http.StatusOK && strings.Contains(rr.Body.String(), `"required":6`)
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("Balance Before Any Report", func(t *testing.T) {
		router, _ := newRouter(t, new(mocks.Storage))

		rr := do(router, http.MethodGet, "/balance", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Balance After Report", func(t *testing.T) {
		router, core := newRouter(t, new(mocks.Storage))
		require.NoError(t, core.SetBalance(sim.Balance{
			Available:  big.NewInt(1_000_000),
			Incoming:   big.NewInt(0),
			Outgoing:   big.NewInt(0),
			TimeLocked: big.NewInt(0),
		}))

		require.Eventually(t, func() bool {
			return do(router, http.MethodGet, "/balance", "").Code == http.StatusOK
		}, time.Second, 5*time.Millisecond)
		var b api.Balance
		require.NoError(t, json.Unmarshal(do(router, http.MethodGet, "/balance", "").Body.Bytes(), &b))
		assert.Equal(t, "1.000000", b.AvailableTari)
	})

	t.Run("Preferences", func(t *testing.T) {
		router, _ := newRouter(t, new(mocks.Storage))

		assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/preferences/theme", "").Code)
		assert.Equal(t, http.StatusNoContent, do(router, http.MethodPut, "/preferences/theme", `{"key":"theme","value":"dark"}`).Code)
		rr := do(router, http.MethodGet, "/preferences/theme", "")
		assert.JSONEq(t, `{"key":"theme","value":"dark"}`, rr.Body.String())
		assert.Equal(t, http.StatusNoContent, do(router, http.MethodDelete, "/preferences/theme", "").Code)
		assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/preferences/theme", "").Code)
	})

	t.Run("Activity", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("ListActivity", mock.Anything, int32(5)).Return([]models.ActivityEntry{{EntryID: "e1", Kind: "TX_RECEIVED"}}, nil)
		router, _ := newRouter(t, mockStorage)

		rr := do(router, http.MethodGet, "/activity?limit=5", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"entry_id":"e1"`)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Connections", func(t *testing.T) {
		router, _ := newRouter(t, new(mocks.Storage))

		rr := do(router, http.MethodGet, "/connections", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"connection_ids":[]}`, rr.Body.String())
	})
}

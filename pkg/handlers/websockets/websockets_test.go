package websockets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	walletevents "github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/fanout"
	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/reconciler"
	"github.com/chris/wallet-tx-sync/pkg/storage"
	"github.com/chris/wallet-tx-sync/pkg/storage/mocks"
	ws "github.com/chris/wallet-tx-sync/pkg/websockets"
)

type fakeSource struct {
	hub   *fanout.Hub
	state *reconciler.State
	subs  chan *fanout.Subscription
}

func (f *fakeSource) Subscribe(l fanout.Listener, opts ...fanout.SubscribeOption) *fanout.Subscription {
	sub := f.hub.Subscribe(l, opts...)
	if f.subs != nil {
		f.subs <- sub
	}
	return sub
}

func (f *fakeSource) Snapshot() *reconciler.State { return f.state }

func wsRequest(id string) events.APIGatewayWebsocketProxyRequest {
	return events.APIGatewayWebsocketProxyRequest{
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{ConnectionID: id},
	}
}

func TestLambdaHandlers(t *testing.T) {
	t.Run("Connect Success", func(t *testing.T) {
		// Arrange
		mockStorage := new(mocks.Storage)
		mockStorage.On("AddConnection", mock.Anything, "abc").Return(nil)
		h := NewHandler(mockStorage, nil, 0)

		// Act
		resp, err := h.HandleConnect(context.Background(), wsRequest("abc"))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Connect Storage Error", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("AddConnection", mock.Anything, "abc").Return(assert.AnError)
		h := NewHandler(mockStorage, nil, 0)

		resp, err := h.HandleConnect(context.Background(), wsRequest("abc"))

		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 500, resp.StatusCode)
	})

	t.Run("Disconnect Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("RemoveConnection", mock.Anything, "abc").Return(nil)
		h := NewHandler(mockStorage, nil, 0)

		resp, err := h.HandleDisconnect(context.Background(), wsRequest("abc"))

		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Default Ignores Body", func(t *testing.T) {
		h := NewHandler(new(mocks.Storage), nil, 0)

		resp, err := h.HandleDefault(context.Background(), wsRequest("abc"))

		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})
}

func TestListConnections(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAllConnections", mock.Anything).Return([]string{"a", "b"}, nil)
		h := NewHandler(mockStorage, nil, 0)
		rr := httptest.NewRecorder()

		h.ListConnections(rr, httptest.NewRequest(http.MethodGet, "/connections", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"connection_ids":["a","b"]}`, rr.Body.String())
	})

	t.Run("Empty", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAllConnections", mock.Anything).Return(nil, nil)
		h := NewHandler(mockStorage, nil, 0)
		rr := httptest.NewRecorder()

		h.ListConnections(rr, httptest.NewRequest(http.MethodGet, "/connections", nil))

		assert.JSONEq(t, `{"connection_ids":[]}`, rr.Body.String())
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAllConnections", mock.Anything).Return(nil, assert.AnError)
		h := NewHandler(mockStorage, nil, 0)
		rr := httptest.NewRecorder()

		h.ListConnections(rr, httptest.NewRequest(http.MethodGet, "/connections", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestServeHTTP(t *testing.T) {
	t.Run("Snapshot Then Notifications", func(t *testing.T) {
		// Arrange
		hub := fanout.NewHub(fanout.Options{})
		defer hub.Close()
		state := reconciler.NewState().WithRequiredConfirmations(3)
		conns := storage.NewConnections()
		h := NewHandler(conns, &fakeSource{hub: hub, state: state}, 8)
		srv := httptest.NewServer(h)
		defer srv.Close()

		client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
		require.NoError(t, err)
		require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))

		// Act
		var first struct {
			Type    ws.MessageType     `json:"type"`
			Payload ws.SnapshotPayload `json:"payload"`
		}
		require.NoError(t, client.ReadJSON(&first))
		id := models.TxID(5)
		hub.Publish(walletevents.Notification{Kind: walletevents.NotifyTxReceived, Seq: 1, TxID: &id})
		var second struct {
			Type    ws.MessageType            `json:"type"`
			Payload walletevents.Notification `json:"payload"`
		}
		require.NoError(t, client.ReadJSON(&second))

		// Assert
		assert.Equal(t, ws.MessageTypeSnapshot, first.Type)
		assert.Equal(t, uint64(3), first.Payload.RequiredConfirmations)
		assert.Equal(t, ws.MessageTypeNotification, second.Type)
		assert.Equal(t, walletevents.NotifyTxReceived, second.Payload.Kind)
		ids, _ := conns.GetAllConnections(context.Background())
		assert.Len(t, ids, 1)
		assert.Equal(t, 1, hub.Len())

		// Closing the client unregisters both the subscription and the connection id.
		require.NoError(t, client.Close())
		assert.Eventually(t, func() bool {
			ids, _ := conns.GetAllConnections(context.Background())
			return len(ids) == 0 && hub.Len() == 0
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("Configured Drop Policy", func(t *testing.T) {
		hub := fanout.NewHub(fanout.Options{})
		defer hub.Close()
		src := &fakeSource{hub: hub, state: reconciler.NewState(), subs: make(chan *fanout.Subscription, 1)}
		h := NewHandler(storage.NewConnections(), src, 8).WithPolicy(fanout.DropNewest)
		srv := httptest.NewServer(h)
		defer srv.Close()

		client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
		require.NoError(t, err)
		defer client.Close()

		select {
		case sub := <-src.subs:
			assert.Equal(t, fanout.DropNewest, sub.Policy())
		case <-time.After(2 * time.Second):
			t.Fatal("client was never subscribed")
		}
	})

	t.Run("Unavailable Without Source", func(t *testing.T) {
		h := NewHandler(storage.NewConnections(), nil, 0)
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ws", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

package main

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chris/wallet-tx-sync/pkg/handlers/websockets"
	"github.com/chris/wallet-tx-sync/pkg/storage/mocks"
)

func request(route, id string) events.APIGatewayWebsocketProxyRequest {
	return events.APIGatewayWebsocketProxyRequest{
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{RouteKey: route, ConnectionID: id},
	}
}

func TestHandleRequest(t *testing.T) {
	t.Run("Connect Then Disconnect", func(t *testing.T) {
		// Arrange
		mockStorage := new(mocks.Storage)
		mockStorage.On("AddConnection", mock.Anything, "c1").Return(nil)
		mockStorage.On("RemoveConnection", mock.Anything, "c1").Return(nil)
		rt := &Router{Handler: websockets.NewHandler(mockStorage, nil, 0)}

		// Act
		connect, err := rt.HandleRequest(context.Background(), request("$connect", "c1"))
		require.NoError(t, err)
		disconnect, err := rt.HandleRequest(context.Background(), request("$disconnect", "c1"))
		require.NoError(t, err)

		// Assert
		assert.Equal(t, 200, connect.StatusCode)
		assert.Equal(t, 200, disconnect.StatusCode)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Default", func(t *testing.T) {
		rt := &Router{Handler: websockets.NewHandler(new(mocks.Storage), nil, 0)}

		resp, err := rt.HandleRequest(context.Background(), request("$default", "c1"))

		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("Unknown Route", func(t *testing.T) {
		rt := &Router{Handler: websockets.NewHandler(new(mocks.Storage), nil, 0)}

		resp, err := rt.HandleRequest(context.Background(), request("sendMessage", "c1"))

		assert.Error(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})
}

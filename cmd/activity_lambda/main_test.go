package main

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/storage/mocks"
)

const body = `{"id":"env-1","network":"mainnet","kind":"TX_MINED","tx_id":42,"seq":9,"timestamp":"2026-01-02T03:04:05Z","notification":{}}`

func TestHandleRequest(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockStorage := new(mocks.Storage)
		mockStorage.On("PutActivity", mock.Anything, mock.MatchedBy(func(e *models.ActivityEntry) bool {
			return e.EntryID == "env-1" && e.Kind == "TX_MINED" && e.TxID != nil && *e.TxID == 42 && e.Sequence == 9
		})).Return(nil)
		r := &Recorder{Store: mockStorage}

		// Act
		resp, err := r.HandleRequest(context.Background(), events.SQSEvent{Records: []events.SQSMessage{{MessageId: "m1", Body: body}}})

		// Assert
		require.NoError(t, err)
		assert.Empty(t, resp.BatchItemFailures)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Malformed Message Is Dropped", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		r := &Recorder{Store: mockStorage}

		resp, err := r.HandleRequest(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
			{MessageId: "m1", Body: "not json"},
			{MessageId: "m2", Body: `{"kind":"TX_MINED"}`},
		}})

		require.NoError(t, err)
		assert.Empty(t, resp.BatchItemFailures)
		mockStorage.AssertNotCalled(t, "PutActivity", mock.Anything, mock.Anything)
	})

	t.Run("Store Failure Is Retried", func(t *testing.T) {
		// Arrange
		mockStorage := new(mocks.Storage)
		mockStorage.On("PutActivity", mock.Anything, mock.Anything).Return(assert.AnError).Once()
		mockStorage.On("PutActivity", mock.Anything, mock.Anything).Return(nil).Once()
		r := &Recorder{Store: mockStorage}

		// Act
		resp, err := r.HandleRequest(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
			{MessageId: "m1", Body: body},
			{MessageId: "m2", Body: body},
		}})

		// Assert
		require.NoError(t, err)
		require.Len(t, resp.BatchItemFailures, 1)
		assert.Equal(t, "m1", resp.BatchItemFailures[0].ItemIdentifier)
		mockStorage.AssertExpectations(t)
	})
}

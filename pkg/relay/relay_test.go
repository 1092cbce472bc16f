package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/fanout"
	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/relay/mocks"
)

func TestSend(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	tx := &models.Transaction{Id: 42, Direction: models.INBOUND, Status: models.BROADCAST}
	n := events.Notification{Kind: events.NotifyInboundTxBroadcast, Seq: 3, Tx: tx, Bucket: models.Completed}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockClient := new(mocks.SQSAPI)
		relay := NewSQSRelay(mockClient, "https://queue", "mainnet", nil)
		relay.now = func() time.Time { return fixed }

		var body string
		mockClient.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
			body = aws.ToString(in.MessageBody)
			return aws.ToString(in.QueueUrl) == "https://queue" &&
				aws.ToString(in.MessageAttributes["kind"].StringValue) == "INBOUND_TX_BROADCAST"
		})).Return(&sqs.SendMessageOutput{}, nil)

		// Act
		err := relay.Send(context.Background(), n)

		// Assert
		require.NoError(t, err)
		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(body), &env))
		assert.NotEmpty(t, env.ID)
		assert.Equal(t, "mainnet", env.Network)
		assert.Equal(t, "INBOUND_TX_BROADCAST", env.Kind)
		require.NotNil(t, env.TxID)
		assert.Equal(t, models.TxID(42), *env.TxID)
		assert.Equal(t, uint64(3), env.Seq)
		assert.Equal(t, fixed, env.Timestamp)
		mockClient.AssertExpectations(t)
	})

	t.Run("Queue Error", func(t *testing.T) {
		mockClient := new(mocks.SQSAPI)
		relay := NewSQSRelay(mockClient, "https://queue", "", nil)

		mockClient.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		err := relay.Send(context.Background(), n)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send message to SQS")
		mockClient.AssertExpectations(t)
	})
}

func TestAttach(t *testing.T) {
	mockClient := new(mocks.SQSAPI)
	relay := NewSQSRelay(mockClient, "https://queue", "", nil)
	sent := make(chan struct{}, 1)
	mockClient.On("SendMessage", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { sent <- struct{}{} }).
		Return(&sqs.SendMessageOutput{}, nil)
	hub := fanout.NewHub(fanout.Options{})
	defer hub.Close()

	sub := relay.Attach(hub, 8)
	hub.Publish(events.Notification{Kind: events.NotifyBalanceUpdated, Seq: 1})

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("notification not relayed")
	}
	assert.Equal(t, fanout.DropNewest, sub.Policy())
}

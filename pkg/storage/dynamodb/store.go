// Package dynamodb is the remote data layer: wallet preferences shared across devices,
// the API Gateway websocket connection table and the notification activity log.
package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/chris/wallet-tx-sync/pkg/storage"
)

// DynamoDBAPI is the subset of the DynamoDB client the store uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Make sure the real client satisfies DynamoDBAPI
var _ DynamoDBAPI = (*dynamodb.Client)(nil)

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client                        DynamoDBAPI
	PreferencesTableName          string
	WebsocketConnectionsTableName string
	ActivityTableName             string
}

// New creates a new Store.
func New(client DynamoDBAPI, preferencesTable, connectionsTable, activityTable string) *Store {
	return &Store{
		Client:                        client,
		PreferencesTableName:          preferencesTable,
		WebsocketConnectionsTableName: connectionsTable,
		ActivityTableName:             activityTable,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

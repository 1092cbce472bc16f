package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/chris/wallet-tx-sync/pkg/models"
)

const (
	activityGSI          = "gsi1pk-sk-index"
	activityPartitionKey = "ACTIVITY_ENTRIES"
)

// PutActivity records an entry. Redelivered entries with a known id are ignored.
func (s *Store) PutActivity(ctx context.Context, entry *models.ActivityEntry) error {
	e := *entry
	e.GSI1PK = activityPartitionKey
	e.SortKey = e.Timestamp.UnixNano()
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("failed to marshal activity entry: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.ActivityTableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(entry_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil
		}
		return fmt.Errorf("failed to put activity entry: %w", err)
	}
	return nil
}

// ListActivity returns the most recent entries, newest first.
func (s *Store) ListActivity(ctx context.Context, limit int32) ([]models.ActivityEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.ActivityTableName),
		IndexName:              aws.String(activityGSI),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: activityPartitionKey},
		},
		ScanIndexForward: aws.Bool(false), // Sort by timestamp in descending order
		Limit:            &limit,
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for activity entries: %w", err)
	}

	var entries []models.ActivityEntry
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity entries: %w", err)
	}

	return entries, nil
}

package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/chris/wallet-tx-sync/pkg/storage"
)

// Preference represents a record in the preferences table.
type Preference struct {
	Key   string `dynamodbav:"key"`
	Value string `dynamodbav:"value"`
}

// Get retrieves a preference value by key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	av, err := attributevalue.MarshalMap(map[string]string{"key": key})
	if err != nil {
		return "", fmt.Errorf("failed to marshal preference key: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.PreferencesTableName),
		Key:            av,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get preference from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return "", fmt.Errorf("preference %s: %w", key, storage.ErrNotFound)
	}

	var pref Preference
	if err := attributevalue.UnmarshalMap(result.Item, &pref); err != nil {
		return "", fmt.Errorf("failed to unmarshal preference: %w", err)
	}
	return pref.Value, nil
}

// Set stores a preference value, replacing any previous one.
func (s *Store) Set(ctx context.Context, key, value string) error {
	item, err := attributevalue.MarshalMap(Preference{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("failed to marshal preference: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.PreferencesTableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put preference: %w", err)
	}
	return nil
}

// Remove deletes a preference. Removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	av, err := attributevalue.MarshalMap(map[string]string{"key": key})
	if err != nil {
		return fmt.Errorf("failed to marshal preference key: %w", err)
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.PreferencesTableName),
		Key:       av,
	})
	if err != nil {
		return fmt.Errorf("failed to delete preference: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/chris/wallet-tx-sync/pkg/activity"
	appconfig "github.com/chris/wallet-tx-sync/pkg/config"
	"github.com/chris/wallet-tx-sync/pkg/storage"
	dydbstore "github.com/chris/wallet-tx-sync/pkg/storage/dynamodb"
)

// Recorder writes relayed notifications to the activity log.
type Recorder struct {
	Store storage.ActivityWriter
}

// HandleRequest records each message. A body that cannot be parsed will never parse, so
// it is logged and dropped; a failed write is reported back so SQS redelivers only that
// message. Redelivery is safe because entries are keyed by the envelope id.
func (r *Recorder) HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, message := range sqsEvent.Records {
		env, err := activity.ParseEnvelope(message.Body)
		if err != nil {
			slog.Error("dropping malformed message", "messageId", message.MessageId, "error", err)
			continue
		}

		if err := r.Store.PutActivity(ctx, activity.FromEnvelope(env)); err != nil {
			slog.Error("failed to record activity", "messageId", message.MessageId, "entryId", env.ID, "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: message.MessageId})
			continue
		}

		slog.Info("recorded activity", "messageId", message.MessageId, "entryId", env.ID, "kind", env.Kind)
	}
	return resp, nil
}

func main() {
	// Load environment variables from .env file (useful for local testing).
	appconfig.LoadDotEnv()

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	tables, err := appconfig.TablesFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	r := &Recorder{Store: dydbstore.New(dynamodb.NewFromConfig(cfg), tables.Preferences, tables.Connections, tables.Activity)}
	lambda.Start(r.HandleRequest)
}

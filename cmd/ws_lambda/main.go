package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	appconfig "github.com/chris/wallet-tx-sync/pkg/config"
	"github.com/chris/wallet-tx-sync/pkg/handlers/websockets"
	dydbstore "github.com/chris/wallet-tx-sync/pkg/storage/dynamodb"
)

// Router dispatches API Gateway websocket routes to the connection handlers.
type Router struct {
	Handler *websockets.Handler
}

func (rt *Router) HandleRequest(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch request.RequestContext.RouteKey {
	case "$connect":
		return rt.Handler.HandleConnect(ctx, request)
	case "$disconnect":
		return rt.Handler.HandleDisconnect(ctx, request)
	case "$default":
		return rt.Handler.HandleDefault(ctx, request)
	default:
		return events.APIGatewayProxyResponse{StatusCode: 400}, fmt.Errorf("unknown route %q", request.RequestContext.RouteKey)
	}
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

	store := dydbstore.New(dynamodb.NewFromConfig(cfg), tables.Preferences, tables.Connections, tables.Activity)
	rt := &Router{Handler: websockets.NewHandler(store, nil, 0)}
	lambda.Start(rt.HandleRequest)
}

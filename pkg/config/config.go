// Package config reads binary configuration from the environment, optionally seeded
// from a .env file, and builds the root logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/chris/wallet-tx-sync/pkg/fanout"
)

// Preference backends.
const (
	BackendBolt     = "bolt"
	BackendDynamoDB = "dynamodb"
)

var (
	ErrInvalidBackend = errors.New("invalid preferences backend")
	ErrMissingTables  = errors.New("one or more DynamoDB table names are not set")
)

// Tables names the DynamoDB tables shared by the service and the lambdas.
type Tables struct {
	Preferences string
	Connections string
	Activity    string
}

// Config is the dev service configuration.
type Config struct {
	HTTPPort            string
	LogLevel            string
	LogFormat           string
	PrefsBackend        string
	BoltPath            string
	Tables              Tables
	SQSQueueURL         string
	WSAPIEndpoint       string
	WSDropPolicy        fanout.Policy
	IngressQueueSize    int
	SubscriberQueueSize int
	CancelInbound       bool
	Network             string
	SimInterval         time.Duration
}

// LoadDotEnv loads .env into the environment without overriding variables already set.
// It reports whether a file was read.
func LoadDotEnv(filenames ...string) bool {
	if err := godotenv.Load(filenames...); err != nil {
		slog.Info("No .env file found, using environment variables")
		return false
	}
	return true
}

// Flags returns the service flags, each bound to its environment variable.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "http-port", Usage: "HTTP listen port", Value: "8080", EnvVars: []string{"HTTP_PORT"}},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error", Value: "info", EnvVars: []string{"LOG_LEVEL"}},
		&cli.StringFlag{Name: "log-format", Usage: "text or json", Value: "text", EnvVars: []string{"LOG_FORMAT"}},
		&cli.StringFlag{Name: "prefs-backend", Usage: "bolt or dynamodb", Value: BackendBolt, EnvVars: []string{"PREFS_BACKEND"}},
		&cli.StringFlag{Name: "prefs-bolt-path", Usage: "bolt database file", Value: "wallet.db", EnvVars: []string{"PREFS_BOLT_PATH"}},
		&cli.StringFlag{Name: "preferences-table", Usage: "DynamoDB preferences table", EnvVars: []string{"DYNAMODB_PREFERENCES_TABLE_NAME"}},
		&cli.StringFlag{Name: "connections-table", Usage: "DynamoDB websocket connections table", EnvVars: []string{"DYNAMODB_CONNECTIONS_TABLE_NAME"}},
		&cli.StringFlag{Name: "activity-table", Usage: "DynamoDB activity table", EnvVars: []string{"DYNAMODB_ACTIVITY_TABLE_NAME"}},
		&cli.StringFlag{Name: "sqs-queue-url", Usage: "relay notifications to this queue when set", EnvVars: []string{"SQS_QUEUE_URL"}},
		&cli.StringFlag{Name: "ws-api-endpoint", Usage: "API Gateway management endpoint; pushes notifications to tracked connections when set with the dynamodb backend", EnvVars: []string{"WS_API_ENDPOINT"}},
		&cli.StringFlag{Name: "ws-drop-policy", Usage: "drop_oldest or drop_newest for local websocket clients", Value: fanout.DropOldest.String(), EnvVars: []string{"WS_DROP_POLICY"}},
		&cli.IntFlag{Name: "ingress-queue-size", Usage: "events buffered between the native core and the reconciler", Value: 4096, EnvVars: []string{"INGRESS_QUEUE_SIZE"}},
		&cli.IntFlag{Name: "subscriber-queue-size", Usage: "notifications buffered per subscriber", Value: 256, EnvVars: []string{"SUBSCRIBER_QUEUE_SIZE"}},
		&cli.BoolFlag{Name: "cancel-inbound", Usage: "allow cancelling pending inbound transactions", EnvVars: []string{"CANCEL_INBOUND"}},
		&cli.StringFlag{Name: "network", Usage: "network name used to scope preference keys", Value: "mainnet", EnvVars: []string{"NETWORK"}},
		&cli.DurationFlag{Name: "sim-interval", Usage: "delay between simulated core events", Value: 2 * time.Second, EnvVars: []string{"SIM_INTERVAL"}},
	}
}

// FromCLI reads the flags registered by Flags.
func FromCLI(c *cli.Context) (Config, error) {
	cfg := Config{
		HTTPPort:     c.String("http-port"),
		LogLevel:     c.String("log-level"),
		LogFormat:    c.String("log-format"),
		PrefsBackend: strings.ToLower(c.String("prefs-backend")),
		BoltPath:     c.String("prefs-bolt-path"),
		Tables: Tables{
			Preferences: c.String("preferences-table"),
			Connections: c.String("connections-table"),
			Activity:    c.String("activity-table"),
		},
		SQSQueueURL:         c.String("sqs-queue-url"),
		WSAPIEndpoint:       c.String("ws-api-endpoint"),
		IngressQueueSize:    c.Int("ingress-queue-size"),
		SubscriberQueueSize: c.Int("subscriber-queue-size"),
		CancelInbound:       c.Bool("cancel-inbound"),
		Network:             c.String("network"),
		SimInterval:         c.Duration("sim-interval"),
	}
	policy, err := fanout.ParsePolicy(strings.ToLower(c.String("ws-drop-policy")))
	if err != nil {
		return cfg, err
	}
	cfg.WSDropPolicy = policy
	return cfg, cfg.Validate()
}

// Validate checks the combinations flags alone cannot express.
func (c Config) Validate() error {
	switch c.PrefsBackend {
	case BackendBolt:
		if c.BoltPath == "" {
			return fmt.Errorf("%w: bolt requires a database path", ErrInvalidBackend)
		}
	case BackendDynamoDB:
		if err := c.Tables.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.PrefsBackend)
	}
	if c.IngressQueueSize <= 0 || c.SubscriberQueueSize <= 0 {
		return fmt.Errorf("queue sizes must be positive")
	}
	return nil
}

// Validate reports ErrMissingTables when any table name is empty.
func (t Tables) Validate() error {
	if t.Preferences == "" || t.Connections == "" || t.Activity == "" {
		return ErrMissingTables
	}
	return nil
}

// TablesFromEnv reads the table names the lambdas use.
func TablesFromEnv() (Tables, error) {
	t := Tables{
		Preferences: os.Getenv("DYNAMODB_PREFERENCES_TABLE_NAME"),
		Connections: os.Getenv("DYNAMODB_CONNECTIONS_TABLE_NAME"),
		Activity:    os.Getenv("DYNAMODB_ACTIVITY_TABLE_NAME"),
	}
	return t, t.Validate()
}

// NewLogger builds a text or JSON slog logger at the given level.
func NewLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

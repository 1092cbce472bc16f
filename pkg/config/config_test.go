package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/chris/wallet-tx-sync/pkg/fanout"
)

// parse runs a throwaway cli app over args and returns what FromCLI produced.
func parse(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	var (
		cfg Config
		err error
	)
	app := &cli.App{
		Name:  "test",
		Flags: Flags(),
		Action: func(c *cli.Context) error {
			cfg, err = FromCLI(c)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return cfg, err
}

func TestFromCLI(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := parse(t)

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.HTTPPort)
		assert.Equal(t, BackendBolt, cfg.PrefsBackend)
		assert.Equal(t, "wallet.db", cfg.BoltPath)
		assert.Equal(t, 4096, cfg.IngressQueueSize)
		assert.Equal(t, 256, cfg.SubscriberQueueSize)
		assert.False(t, cfg.CancelInbound)
		assert.Equal(t, "mainnet", cfg.Network)
		assert.Equal(t, 2*time.Second, cfg.SimInterval)
		assert.Equal(t, fanout.DropOldest, cfg.WSDropPolicy)
		assert.Empty(t, cfg.WSAPIEndpoint)
	})

	t.Run("Environment", func(t *testing.T) {
		// Arrange
		t.Setenv("HTTP_PORT", "9090")
		t.Setenv("PREFS_BACKEND", "DynamoDB")
		t.Setenv("DYNAMODB_PREFERENCES_TABLE_NAME", "prefs")
		t.Setenv("DYNAMODB_CONNECTIONS_TABLE_NAME", "conns")
		t.Setenv("DYNAMODB_ACTIVITY_TABLE_NAME", "activity")
		t.Setenv("CANCEL_INBOUND", "true")

		// Act
		cfg, err := parse(t)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.HTTPPort)
		assert.Equal(t, BackendDynamoDB, cfg.PrefsBackend)
		assert.Equal(t, Tables{Preferences: "prefs", Connections: "conns", Activity: "activity"}, cfg.Tables)
		assert.True(t, cfg.CancelInbound)
	})

	t.Run("Flag Beats Environment", func(t *testing.T) {
		t.Setenv("NETWORK", "testnet")

		cfg, err := parse(t, "--network", "stagenet")

		require.NoError(t, err)
		assert.Equal(t, "stagenet", cfg.Network)
	})

	t.Run("DynamoDB Without Tables", func(t *testing.T) {
		_, err := parse(t, "--prefs-backend", "dynamodb")

		assert.ErrorIs(t, err, ErrMissingTables)
	})

	t.Run("Unknown Backend", func(t *testing.T) {
		_, err := parse(t, "--prefs-backend", "sqlite")

		assert.ErrorIs(t, err, ErrInvalidBackend)
	})

	t.Run("Websocket Push", func(t *testing.T) {
		t.Setenv("WS_DROP_POLICY", "DROP_NEWEST")
		t.Setenv("WS_API_ENDPOINT", "https://abc.execute-api.us-east-1.amazonaws.com/dev")

		cfg, err := parse(t)

		require.NoError(t, err)
		assert.Equal(t, fanout.DropNewest, cfg.WSDropPolicy)
		assert.Equal(t, "https://abc.execute-api.us-east-1.amazonaws.com/dev", cfg.WSAPIEndpoint)
	})

	t.Run("Unknown Drop Policy", func(t *testing.T) {
		_, err := parse(t, "--ws-drop-policy", "fifo")

		assert.Error(t, err)
	})

	t.Run("Zero Queue Size", func(t *testing.T) {
		_, err := parse(t, "--ingress-queue-size", "0")

		assert.Error(t, err)
	})
}

func TestTablesFromEnv(t *testing.T) {
	t.Setenv("DYNAMODB_PREFERENCES_TABLE_NAME", "prefs")
	t.Setenv("DYNAMODB_CONNECTIONS_TABLE_NAME", "")
	t.Setenv("DYNAMODB_ACTIVITY_TABLE_NAME", "activity")

	_, err := TablesFromEnv()

	assert.ErrorIs(t, err, ErrMissingTables)
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("WALLET_SYNC_DOTENV_TEST=loaded\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("WALLET_SYNC_DOTENV_TEST") })

		ok := LoadDotEnv(path)

		assert.True(t, ok)
		assert.Equal(t, "loaded", os.Getenv("WALLET_SYNC_DOTENV_TEST"))
	})

	t.Run("Missing File", func(t *testing.T) {
		assert.False(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("JSON At Warn", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger("warn", "json", &buf)
		require.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("shown", "k", "v")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"msg":"shown"`)
		assert.Contains(t, buf.String(), `"k":"v"`)
	})

	t.Run("Invalid Level", func(t *testing.T) {
		_, err := NewLogger("loud", "text", &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("Invalid Format", func(t *testing.T) {
		_, err := NewLogger("info", "xml", &bytes.Buffer{})
		assert.Error(t, err)
	})
}

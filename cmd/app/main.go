package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/chris/wallet-tx-sync/pkg/activity"
	"github.com/chris/wallet-tx-sync/pkg/api"
	"github.com/chris/wallet-tx-sync/pkg/config"
	"github.com/chris/wallet-tx-sync/pkg/handlers"
	"github.com/chris/wallet-tx-sync/pkg/handlers/websockets"
	"github.com/chris/wallet-tx-sync/pkg/metrics"
	"github.com/chris/wallet-tx-sync/pkg/middleware"
	"github.com/chris/wallet-tx-sync/pkg/native/sim"
	"github.com/chris/wallet-tx-sync/pkg/relay"
	"github.com/chris/wallet-tx-sync/pkg/storage"
	boltstore "github.com/chris/wallet-tx-sync/pkg/storage/bolt"
	dydbstore "github.com/chris/wallet-tx-sync/pkg/storage/dynamodb"
	"github.com/chris/wallet-tx-sync/pkg/wallet"
	wspush "github.com/chris/wallet-tx-sync/pkg/websockets"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables from .env file
	config.LoadDotEnv()

	app := &cli.App{
		Name:   "wallet-tx-sync",
		Usage:  "Serve a wallet's transaction lifecycle over HTTP and websockets, driven by a simulated native core",
		Flags:  config.Flags(),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("wallet-tx-sync stopped", "error", err)
		os.Exit(1)
	}
}

// backend is the storage a run is wired to.
type backend struct {
	prefs    storage.PreferencesStore
	activity storage.ActivityReader
	// recorder is set when activity is written in process rather than by the lambda.
	recorder storage.ActivityWriter
	// conns tracks local /ws clients; remote tracks API Gateway clients, when any.
	conns    storage.ConnectionManager
	remote   storage.ConnectionManager
	close    func() error
}

func openBackend(cfg config.Config, awsCfg func() (aws.Config, error)) (*backend, error) {
	switch cfg.PrefsBackend {
	case config.BackendDynamoDB:
		ac, err := awsCfg()
		if err != nil {
			return nil, err
		}
		store := dydbstore.New(dynamodb.NewFromConfig(ac), cfg.Tables.Preferences, cfg.Tables.Connections, cfg.Tables.Activity)
		return &backend{prefs: store, activity: store, conns: storage.NewConnections(), remote: store, close: func() error { return nil }}, nil
	default:
		store, err := boltstore.Open(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		return &backend{prefs: store, activity: store, recorder: store, conns: storage.NewConnections(), close: store.Close}, nil
	}
}

func run(c *cli.Context) error {
	cfg, err := config.FromCLI(c)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// AWS config is loaded at most once, and only when something needs it.
	var (
		awsConfig aws.Config
		awsLoaded bool
	)
	loadAWS := func() (aws.Config, error) {
		if awsLoaded {
			return awsConfig, nil
		}
		ac, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return aws.Config{}, fmt.Errorf("unable to load SDK config: %w", err)
		}
		awsConfig, awsLoaded = ac, true
		return ac, nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store, err := openBackend(cfg, loadAWS)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", cfg.PrefsBackend, err)
	}
	defer func() {
		if err := store.close(); err != nil {
			logger.Error("failed to close backend", "error", err)
		}
	}()

	core := sim.New(logger)
	svc, err := wallet.New(ctx, wallet.Options{
		Native:              core,
		Preferences:         store.prefs,
		Network:             cfg.Network,
		CancelInbound:       cfg.CancelInbound,
		IngressQueueSize:    cfg.IngressQueueSize,
		SubscriberQueueSize: cfg.SubscriberQueueSize,
		Logger:              logger,
		Metrics:             m,
		Registerer:          reg,
	})
	if err != nil {
		return fmt.Errorf("failed to create wallet service: %w", err)
	}

	if cfg.SQSQueueURL != "" {
		ac, err := loadAWS()
		if err != nil {
			return err
		}
		relay.NewSQSRelay(sqs.NewFromConfig(ac), cfg.SQSQueueURL, cfg.Network, logger).Attach(svc.Hub(), cfg.SubscriberQueueSize)
		logger.Info("relaying notifications", "queueUrl", cfg.SQSQueueURL)
	}
	if cfg.WSAPIEndpoint != "" {
		if store.remote == nil {
			logger.Warn("ignoring websocket API endpoint; API Gateway connections are only tracked by the dynamodb backend", "endpoint", cfg.WSAPIEndpoint)
		} else {
			ac, err := loadAWS()
			if err != nil {
				return err
			}
			wspush.NewPublisher(store.remote, wspush.NewAPIGatewayClient(ac, cfg.WSAPIEndpoint), logger).Attach(svc.Hub(), cfg.SubscriberQueueSize)
			logger.Info("pushing notifications to API Gateway connections", "endpoint", cfg.WSAPIEndpoint)
		}
	}
	if store.recorder != nil {
		activity.NewRecorder(store.recorder, logger).Attach(svc.Hub(), cfg.SubscriberQueueSize)
	}

	svc.Start(ctx)
	if err := svc.Refresh(ctx); err != nil {
		logger.Warn("initial refresh failed", "error", err)
	}
	go core.Run(ctx, cfg.SimInterval)

	wsHandler := websockets.NewHandler(store.conns, svc, cfg.SubscriberQueueSize).WithPolicy(cfg.WSDropPolicy)

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.Recoverer)
	router.Use(middleware.NewStructuredLogger(logger, m))
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	router.Handle("/ws", wsHandler)
	api.HandlerFromMux(handlers.NewApiHandler(svc, store.activity, wsHandler), router)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.HTTPPort, "backend", cfg.PrefsBackend, "network", cfg.Network)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			core.Close()
			svc.Close()
			return fmt.Errorf("failed to start server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := core.Close(); err != nil {
		logger.Error("failed to close native core", "error", err)
	}
	return svc.Close()
}

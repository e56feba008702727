package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/app/provider"
	"wallet_sync/internal/app/refresh"
	"wallet_sync/internal/client"
	"wallet_sync/internal/infrastructure/journal"
	"wallet_sync/internal/infrastructure/restapi"
	"wallet_sync/internal/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	var (
		port        string
		walletsFile string
		pprof       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and refresh the watched wallets in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildComponents(*configPath, prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}
			defer func() { _ = c.zapLogger.Sync() }()

			if port != "" {
				c.cfg.Server.Port = port
			}
			if walletsFile != "" {
				c.cfg.Wallets.File = walletsFile
			}
			return serve(cmd.Context(), c, pprof)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides server.port)")
	cmd.Flags().StringVar(&walletsFile, "wallets", "", "Watched wallets file (overrides wallets.file)")
	cmd.Flags().BoolVar(&pprof, "pprof", true, "Expose /debug/pprof")
	return cmd
}

func serve(parent context.Context, c *components, enablePprof bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.cfg.Readiness.Enabled {
		checkReadiness(ctx, c)
	}

	var snapshotJournal port.SnapshotJournal
	if c.cfg.Journal.Enabled {
		store, err := journal.NewWALStore(c.cfg.Journal.Dir)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				c.zapLogger.Warn("Failed to close snapshot journal", zap.Error(err))
			}
		}()
		snapshotJournal = store
		c.zapLogger.Info("Snapshot journal enabled", zap.String("dir", c.cfg.Journal.Dir), zap.Uint64("index", store.CurrentIndex()))
	}

	registry := refresh.NewRegistry(c.newOrchestratorFactory(snapshotJournal), logger.NewSlogAdapter("component", "Registry"))
	defer registry.Close()

	watched, err := provider.NewWalletProvider(c.cfg.Wallets.File, c.networks, logger.NewSlogAdapter("component", "WalletProvider")).GetWallets()
	if err != nil {
		c.zapLogger.Warn("Watched wallets not loaded, starting without consumers", zap.String("file", c.cfg.Wallets.File), zap.Error(err))
	}
	for _, w := range watched {
		registry.Attach(w.ID(), w)
	}

	gin.SetMode(gin.ReleaseMode)
	router := restapi.SetupRouter(
		restapi.NewConsumerHandler(registry, logger.NewSlogAdapter("component", "ConsumerHandler")),
		restapi.NewSnapshotHandler(snapshotJournal, logger.NewSlogAdapter("component", "SnapshotHandler")),
		c.zapLogger,
		restapi.RouterOptions{MetricsHandler: promhttp.Handler(), EnablePprof: enablePprof},
	)

	srv := &http.Server{
		Addr:         ":" + c.cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(c.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(c.cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(c.cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		c.zapLogger.Info(fmt.Sprintf("Server starting on port %s", c.cfg.Server.Port), zap.Int("consumers", len(watched)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	c.zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	c.zapLogger.Info("Server exiting")
	return nil
}

// checkReadiness probes the price API and every indexer. Failures only warn: the
// fallback tiers keep balances usable while upstreams are down.
func checkReadiness(ctx context.Context, c *components) {
	prober := client.NewProber(
		time.Duration(c.cfg.Readiness.TimeoutMillis)*time.Millisecond,
		c.cfg.Readiness.MaxRetries,
		time.Duration(c.cfg.Readiness.IntervalMillis)*time.Millisecond,
		c.zapLogger,
	)

	targets := []string{c.cfg.PriceAPI.BaseURL}
	for _, def := range c.networks.GetAllNetworkDefinitions() {
		targets = append(targets, def.IndexerBaseURL)
	}
	for _, target := range targets {
		_ = prober.WaitReady(ctx, target)
	}
}

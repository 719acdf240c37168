// Command predictor-service runs the long-running suggestion service:
// it owns the prefix cache, the RPC accept loop, and the admin HTTP
// surface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/adminhttp"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/bgwork"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/config"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/logging"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/metrics"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/predictor"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/prefixcache"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/rpc"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/rpcserver"
)

var (
	configPath  string
	endpoint    string
	adminListen string
)

var rootCmd = &cobra.Command{
	Use:   "predictor-service",
	Short: "Background service generating and caching shell command suggestions",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.Flags().StringVar(&endpoint, "endpoint", "", "local socket path (overrides config)")
	rootCmd.Flags().StringVar(&adminListen, "admin-listen", "", "admin HTTP listen address (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadServiceConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultSocketPath()
	}
	if adminListen != "" {
		cfg.AdminListen = adminListen
	}

	logger, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer closeLog()

	logger.Info("starting predictor-service",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("admin_listen", cfg.AdminListen),
		zap.Int("cpus", runtime.NumCPU()),
	)

	cache := prefixcache.New(
		prefixcache.WithMaxPrefixLen(cfg.MaxPrefixLen),
		prefixcache.WithMaxBuckets(cfg.MaxBuckets),
		prefixcache.WithMaxEntriesPerBucket(cfg.MaxPerBucket),
		prefixcache.WithMaxReturned(cfg.MaxReturned),
		prefixcache.WithTTL(cfg.DefaultTTL),
		prefixcache.WithCleanupInterval(cfg.CleanupPeriod),
		prefixcache.WithSeeding(cfg.Seeding),
	)
	defer cache.Close()

	registry := prometheus.NewRegistry()
	rec := metrics.New(registry)

	warm := bgwork.NewQueue(cfg.WarmWorkers, cfg.WarmQueueSize, 2*time.Second)
	defer warm.Close()

	provider := predictor.NewStaticProvider(nil) // the real LLM collaborator is out of scope here
	svc := predictor.New(cache, provider, warm, logger, rec)

	rpcSrv := rpcserver.New(cfg.Endpoint, logger, rec)
	predictor.RegisterHandlers(rpcSrv, svc)

	admin := adminhttp.New(cfg.AdminListen, registry, cache, warm)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() { errCh <- rpcSrv.Serve(ctx) }()
	go func() { errCh <- admin.Start(ctx) }()
	go printPeriodicStats(ctx, logger, rec, cache)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("component failed", zap.Error(err))
		}
	}

	svc.Shutdown()
	_ = rpcSrv.Close()
	_ = admin.Stop(context.Background())
	return nil
}

// printPeriodicStats logs a cache snapshot every 30s and republishes
// it as gauges, giving an operator a heartbeat without scraping
// /metrics.
func printPeriodicStats(ctx context.Context, logger *zap.Logger, rec *metrics.Recorder, cache *prefixcache.Cache) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := cache.Stats()
			rec.SetCacheStats(stats)
			logger.Info("cache stats",
				zap.Uint64("requests", stats.Requests),
				zap.Float64("hit_rate", stats.HitRate),
				zap.Int("buckets", stats.BucketCount),
				zap.Int("entries", stats.EntryCount),
			)
		}
	}
}

func defaultSocketPath() string {
	dir := os.TempDir()
	return dir + string(os.PathSeparator) + rpc.EndpointName
}

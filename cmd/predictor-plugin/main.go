// Command predictor-plugin is a demonstration shell-plugin client: it
// drives the RPC client and orchestrator the way a real shell
// integration would, exposed here as a small cobra CLI so the round
// trip can be exercised by hand.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/config"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/logging"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/metrics"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/orchestrator"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/rpc"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/rpcclient"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	configPath string
	endpoint   string
	workingDir string
)

var rootCmd = &cobra.Command{
	Use:   "predictor-plugin",
	Short: "Demo client for the command-suggestion service",
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [partial command]",
	Short: "Request suggestions for a partial command, falling back offline on failure",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, _, closeFn := mustOrchestrator()
		defer closeFn()

		input := strings.Join(args, " ")
		suggestions := orch.GetSuggestions(context.Background(), input, workingDir)
		if len(suggestions) == 0 {
			fmt.Println("(no suggestions)")
			return nil
		}
		for _, s := range suggestions {
			fmt.Println(s)
		}
		return nil
	},
}

var warmCmd = &cobra.Command{
	Use:   "warm [partial command]",
	Short: "Fire a fire-and-forget cache warm request and exit immediately",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, _, closeFn := mustOrchestrator()
		defer closeFn()

		orch.Warm(strings.Join(args, " "), workingDir)
		fmt.Println("warm request submitted")
		return nil
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check whether the service is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, closeFn := mustClient()
		defer closeFn()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		var resp bool
		if err := client.Call(ctx, rpc.MethodPing, nil, &resp); err != nil {
			return fmt.Errorf("ping failed: %w", err)
		}
		fmt.Println("pong")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the service's reported status",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, closeFn := mustClient()
		defer closeFn()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		var status rpc.ServiceStatus
		if err := client.Call(ctx, rpc.MethodGetStatus, nil, &status); err != nil {
			return fmt.Errorf("status failed: %w", err)
		}
		fmt.Printf("running=%v uptime=%.0fs\n", status.IsRunning, status.UptimeSeconds)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "service socket path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&workingDir, "cwd", "", "working directory to report alongside the request")

	rootCmd.AddCommand(suggestCmd, warmCmd, pingCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() config.PluginConfig {
	cfg, err := config.LoadPluginConfig(configPath)
	if err != nil {
		cfg = config.DefaultPluginConfig()
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	return cfg
}

func mustClient() (*rpcclient.Client, *zap.Logger, func()) {
	cfg := loadConfig()
	logger, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		logger = zap.NewNop()
		closeLog = func() error { return nil }
	}

	client := rpcclient.New(rpcclient.Config{
		SocketPath:         cfg.Endpoint,
		ConnectTimeout:     time.Duration(cfg.ConnectTimeoutMS) * time.Millisecond,
		DefaultCallTimeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
	})

	return client, logger, func() {
		client.Dispose()
		_ = closeLog()
	}
}

func mustOrchestrator() (*orchestrator.Orchestrator, *zap.Logger, func()) {
	cfg := loadConfig()
	client, logger, closeClient := mustClient()

	rec := metrics.New(prometheus.NewRegistry())
	orch := orchestrator.New(client, orchestrator.Config{
		Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
	}, logger, rec)

	return orch, logger, func() {
		orch.Close()
		closeClient()
	}
}

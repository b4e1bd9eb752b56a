package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/retina/internal/smoke"
	"github.com/okian/retina/pkg/logger"
)

// Default configuration constants.
const (
	defaultBaseURL = "http://localhost:3000"
	defaultTimeout = 5 * time.Minute
)

var (
	cfg      smoke.Config
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Probe a running Retina.AI gateway",
	Long: `Probe a running gateway: GET / and, with --generate, one sample
generation per route. Generation calls are billed by the hosted model API.

Examples:
  smoke
  smoke --url http://localhost:8080
  smoke --generate --routes background-remover,image-upscaler`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSmoke,
}

func init() {
	rootCmd.Flags().StringVar(&cfg.BaseURL, "url", defaultBaseURL, "Base URL of the gateway")
	rootCmd.Flags().DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "Per-request timeout")
	rootCmd.Flags().IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "Concurrent generation requests")
	rootCmd.Flags().BoolVar(&cfg.Generate, "generate", false, "Send a sample payload to every route")
	rootCmd.Flags().StringSliceVar(&cfg.Routes, "routes", nil, "Route names to exercise (default: all)")
	rootCmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "Log every route result")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}

func runSmoke(cmd *cobra.Command, _ []string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	if err := logger.SetLevelString(logLevel); err != nil {
		return err
	}

	_, err := smoke.Run(cmd.Context(), &cfg, cmd.OutOrStdout())
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

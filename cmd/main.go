package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/okian/retina/internal/adapters/http/api"
	"github.com/okian/retina/internal/adapters/http/swagger"
	"github.com/okian/retina/internal/adapters/replicate"
	app "github.com/okian/retina/internal/app"
	"github.com/okian/retina/internal/config"
	"github.com/okian/retina/pkg/logger"
)

// HTTP server timeout constants. There is no write timeout: a prediction may
// run for minutes before the response is written.
const (
	readTimeout       = 30 * time.Second
	idleTimeout       = 120 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "server exited", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// run loads configuration, serves until ctx is done, then drains in-flight requests.
func run(ctx context.Context) error {
	loggerInstance := logger.Get()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newHandler(ctx, cfg, loggerInstance),
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "Server is running on port "+strconv.Itoa(cfg.Port), logger.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
	return nil
}

// newHandler wires the inference backend, service and routes for cfg.
func newHandler(ctx context.Context, cfg *config.Config, l logger.Logger) http.Handler {
	runner := replicate.New(cfg.ReplicateAPIToken, replicate.WithBaseURL(cfg.ReplicateBaseURL))
	if cfg.ReplicateAPIToken == "" {
		l.Warn(ctx, "REPLICATE_API_TOKEN is not set; generation requests will fail")
	}

	svc := app.New(
		app.WithRunner(runner),
		app.WithLogger(l.Named("service")),
	)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc,
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithMetricsEndpoint(cfg.MetricsEnabled),
		api.WithLogger(l.Named("api")),
	)
	apiServer.Register(ctx, mux)
	return apiServer.Handler(mux)
}

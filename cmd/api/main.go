// Package main implements the fitment API server: HTTP and, when NATS_URL
// is set, NATS request/reply in front of one fitment engine.
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

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/WessleyAI/wessley-fitment/pkg/bootstrap"
	"github.com/WessleyAI/wessley-fitment/pkg/config"
	"github.com/WessleyAI/wessley-fitment/pkg/mid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	// --- NATS (optional) ---
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("fitment-api"))
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()
		if _, err := serveNATS(nc, app.Engine, logger); err != nil {
			return fmt.Errorf("nats subscribe: %w", err)
		}
		logger.Info("nats responders ready", "url", cfg.NATSURL)
	}

	// --- HTTP ---
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newHandler(cfg, app.Engine, app.Registry, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// newHandler mounts the routes behind the middleware chain.
func newHandler(cfg *config.Config, svc fitmentService, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	return mid.Chain(routes(svc, gatherer, logger),
		mid.Recover(logger),
		mid.RequestID(),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.RateLimit(mid.RateLimitOpts{Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst}),
		mid.MaxBody(maxBodyBytes),
		mid.OTel("fitment-api"),
	)
}

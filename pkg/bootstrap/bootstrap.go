// Package bootstrap builds a fitment.Engine and its collaborators from
// config. Shared by cmd/api and cmd/fitmentctl.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/WessleyAI/wessley-fitment/engine/catalog"
	"github.com/WessleyAI/wessley-fitment/engine/fitment"
	"github.com/WessleyAI/wessley-fitment/engine/semantic"
	"github.com/WessleyAI/wessley-fitment/pkg/config"
	"github.com/WessleyAI/wessley-fitment/pkg/embedcache"
	"github.com/WessleyAI/wessley-fitment/pkg/ollama"
	"github.com/WessleyAI/wessley-fitment/pkg/openaiembed"
)

// App owns the engine and every connection opened for it.
type App struct {
	Engine   *fitment.Engine
	Registry *prometheus.Registry

	closers []func() error
	logger  *slog.Logger
}

// Build validates cfg and connects the configured backends. On error every
// connection opened so far is closed.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a := &App{Registry: reg, logger: logger}

	engine, err := a.build(ctx, cfg)
	if err != nil {
		if cerr := a.Close(); cerr != nil {
			logger.Warn("bootstrap: close after failed build", "err", cerr)
		}
		return nil, err
	}
	a.Engine = engine

	logger.Info("fitment engine ready",
		"vector_backend", cfg.VectorBackend,
		"embed_provider", cfg.EmbedProvider,
		"fallback_backend", cfg.FallbackBackend,
		"embed_cache", cfg.RedisAddr != "")
	return a, nil
}

func (a *App) build(ctx context.Context, cfg *config.Config) (*fitment.Engine, error) {
	embed, err := a.embedder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	index, err := a.index(cfg)
	if err != nil {
		return nil, err
	}
	store, err := a.fallbackStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := cfg.Engine
	opts.Metrics = fitment.NewMetrics(a.Registry)
	return fitment.New(embed, index, store, opts, a.logger), nil
}

func (a *App) onClose(f func() error) { a.closers = append(a.closers, f) }

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) embedder(ctx context.Context, cfg *config.Config) (fitment.Embedder, error) {
	var (
		embed fitment.Embedder
		model string
	)
	switch cfg.EmbedProvider {
	case config.EmbedOpenAI:
		c, err := openaiembed.New(cfg.OpenAIAPIKey, cfg.OpenAIEmbedModel, cfg.OpenAIBaseURL)
		if err != nil {
			return nil, err
		}
		embed, model = c, c.Model()
	default:
		c := ollama.NewEmbedClient(cfg.OllamaURL, cfg.EmbedModel)
		embed, model = c, c.Model()
	}

	if cfg.RedisAddr == "" {
		return embed, nil
	}
	rs, err := embedcache.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, 0)
	if err != nil {
		// the cache is an optimization; run without it
		a.logger.Warn("embedding cache disabled", "addr", cfg.RedisAddr, "err", err)
		return embed, nil
	}
	a.onClose(rs.Close)
	return embedcache.New(embed, rs, cfg.EmbedProvider+":"+model, cfg.EmbedCacheTTL, a.logger), nil
}

func (a *App) index(cfg *config.Config) (fitment.VectorIndex, error) {
	switch cfg.VectorBackend {
	case config.VectorPGVector:
		idx, err := semantic.OpenPGVector(cfg.PGVectorDSN, cfg.PGVectorTable)
		if err != nil {
			return nil, err
		}
		a.onClose(idx.Close)
		return idx, nil
	default:
		vs, err := semantic.New(semantic.Options{
			Addr:       cfg.QdrantURL,
			Collection: cfg.QdrantCollection,
			APIKey:     cfg.QdrantAPIKey,
			TLS:        cfg.QdrantTLS,
		})
		if err != nil {
			return nil, err
		}
		a.onClose(vs.Close)
		return vs, nil
	}
}

// fallbackStore returns nil for FALLBACK_BACKEND=none.
func (a *App) fallbackStore(ctx context.Context, cfg *config.Config) (fitment.FallbackStore, error) {
	switch cfg.FallbackBackend {
	case config.FallbackPostgres, config.FallbackSQLite:
		d := catalog.Postgres
		if cfg.FallbackBackend == config.FallbackSQLite {
			d = catalog.SQLite
		}
		s, err := catalog.Open(ctx, d, cfg.DatabaseURL, a.logger)
		if err != nil {
			return nil, err
		}
		a.onClose(s.Close)
		return s, nil
	case config.FallbackNeo4j:
		g, err := catalog.OpenGraph(ctx, cfg.Neo4jURL, cfg.Neo4jUser, cfg.Neo4jPass, a.logger)
		if err != nil {
			return nil, err
		}
		a.onClose(func() error { return g.Close(context.Background()) })
		return g, nil
	case config.FallbackNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("bootstrap: unknown fallback backend %q", cfg.FallbackBackend)
}

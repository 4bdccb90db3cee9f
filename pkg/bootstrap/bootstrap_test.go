package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
	"github.com/WessleyAI/wessley-fitment/engine/semantic"
	"github.com/WessleyAI/wessley-fitment/pkg/config"
	"github.com/WessleyAI/wessley-fitment/pkg/embedcache"
	"github.com/WessleyAI/wessley-fitment/pkg/ollama"
	"github.com/WessleyAI/wessley-fitment/pkg/openaiembed"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func mustConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.FromEnv(func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	return cfg
}

func TestBuild_InvalidConfig(t *testing.T) {
	_, err := Build(context.Background(), mustConfig(t, nil), nil)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestBuild_QdrantOllamaSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitments.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE fitments (id INTEGER PRIMARY KEY, make TEXT, model TEXT, year TEXT, battery_model TEXT, battery_sku TEXT, alt_model TEXT)`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	cfg := mustConfig(t, map[string]string{
		"QDRANT_URL":       "localhost:6334",
		"FALLBACK_BACKEND": "sqlite",
		"DATABASE_URL":     path,
	})
	app, err := Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	if app.Engine == nil || app.Registry == nil {
		t.Fatal("engine and registry must be set")
	}
	if len(app.closers) != 2 {
		t.Errorf("closers = %d, want qdrant + sqlite", len(app.closers))
	}
	if err := app.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if len(app.closers) != 0 {
		t.Error("Close should drop closers")
	}
}

func TestBuild_FallbackOpenFailureReturnsError(t *testing.T) {
	cfg := mustConfig(t, map[string]string{
		"QDRANT_URL":       "localhost:6334",
		"FALLBACK_BACKEND": "sqlite",
		"DATABASE_URL":     filepath.Join(t.TempDir(), "missing", "dir", "fitments.db"),
	})
	app, err := Build(context.Background(), cfg, discardLogger())
	if err == nil {
		app.Close()
		t.Fatal("expected an error when the fallback database cannot be opened")
	}
	if app != nil {
		t.Errorf("app = %v, want nil on error", app)
	}
}

func TestEmbedderSelection(t *testing.T) {
	app := &App{logger: discardLogger()}

	e, err := app.embedder(context.Background(), mustConfig(t, nil))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*ollama.EmbedClient); !ok {
		t.Errorf("default embedder = %T", e)
	}

	e, err = app.embedder(context.Background(), mustConfig(t, map[string]string{
		"EMBED_PROVIDER": "openai", "OPENAI_API_KEY": "sk-test",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*openaiembed.Client); !ok {
		t.Errorf("openai embedder = %T", e)
	}
}

func TestEmbedderCacheUnavailable(t *testing.T) {
	app := &App{logger: discardLogger()}
	e, err := app.embedder(context.Background(), mustConfig(t, map[string]string{
		"REDIS_ADDR": "127.0.0.1:1",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*embedcache.Cache); ok {
		t.Error("unreachable redis should leave the cache off")
	}
}

func TestIndexSelection(t *testing.T) {
	app := &App{logger: discardLogger()}
	idx, err := app.index(mustConfig(t, map[string]string{
		"VECTOR_BACKEND": "pgvector", "PGVECTOR_DSN": "postgres://localhost/none?sslmode=disable",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := idx.(*semantic.PGVectorIndex); !ok {
		t.Errorf("index = %T", idx)
	}
	app.Close()
}

func TestFallbackNone(t *testing.T) {
	app := &App{logger: discardLogger()}
	s, err := app.fallbackStore(context.Background(), mustConfig(t, nil))
	if err != nil || s != nil {
		t.Fatalf("fallbackStore = %v, %v; want nil, nil", s, err)
	}
}

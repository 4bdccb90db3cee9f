// Package config loads service settings from the environment, an optional
// .env file, and an optional YAML overlay for engine tuning.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
	"github.com/WessleyAI/wessley-fitment/engine/fitment"
)

// Backend names accepted by the *_BACKEND and EMBED_PROVIDER settings.
const (
	VectorQdrant   = "qdrant"
	VectorPGVector = "pgvector"

	EmbedOllama = "ollama"
	EmbedOpenAI = "openai"

	FallbackPostgres = "postgres"
	FallbackSQLite   = "sqlite"
	FallbackNeo4j    = "neo4j"
	FallbackNone     = "none"
)

// Config holds all service configuration.
type Config struct {
	Port           string
	LogLevel       slog.Level
	CORSOrigin     string
	RateLimitRPS   float64
	RateLimitBurst int

	VectorBackend    string
	QdrantURL        string
	QdrantAPIKey     string
	QdrantTLS        bool
	QdrantCollection string
	PGVectorDSN      string
	PGVectorTable    string

	EmbedProvider    string
	OllamaURL        string
	EmbedModel       string
	OpenAIAPIKey     string
	OpenAIEmbedModel string
	OpenAIBaseURL    string

	FallbackBackend string
	DatabaseURL     string
	Neo4jURL        string
	Neo4jUser       string
	Neo4jPass       string

	RedisAddr     string
	RedisPassword string
	EmbedCacheTTL time.Duration

	NATSURL string

	// Engine comes from fitment.DefaultOptions, FALLBACK_TABLE, and the
	// engine section of FITMENT_CONFIG, in that order.
	Engine fitment.Options
}

// fileConfig is the FITMENT_CONFIG document.
type fileConfig struct {
	Engine fitment.Options `yaml:"engine"`
}

// Load reads .env (if present), the environment, and FITMENT_CONFIG (if set).
// Values already in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv without touching .env files.
func FromEnv(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}
	cfg := &Config{
		Port:           p.str("PORT", "8080"),
		LogLevel:       p.level("LOG_LEVEL", slog.LevelInfo),
		CORSOrigin:     p.str("CORS_ORIGIN", "*"),
		RateLimitRPS:   p.float("RATE_LIMIT_RPS", 0),
		RateLimitBurst: p.int("RATE_LIMIT_BURST", 20),

		VectorBackend:    strings.ToLower(p.str("VECTOR_BACKEND", VectorQdrant)),
		QdrantURL:        p.str("QDRANT_URL", ""),
		QdrantAPIKey:     p.str("QDRANT_API_KEY", ""),
		QdrantTLS:        p.bool("QDRANT_TLS", false),
		QdrantCollection: p.str("QDRANT_COLLECTION", "chrome_fitments"),
		PGVectorDSN:      p.str("PGVECTOR_DSN", ""),
		PGVectorTable:    p.str("PGVECTOR_TABLE", "fitment_vectors"),

		EmbedProvider:    strings.ToLower(p.str("EMBED_PROVIDER", EmbedOllama)),
		OllamaURL:        p.str("OLLAMA_URL", "http://localhost:11434"),
		EmbedModel:       p.str("EMBED_MODEL", "nomic-embed-text"),
		OpenAIAPIKey:     p.str("OPENAI_API_KEY", ""),
		OpenAIEmbedModel: p.str("OPENAI_EMBED_MODEL", "text-embedding-ada-002"),
		OpenAIBaseURL:    p.str("OPENAI_BASE_URL", ""),

		FallbackBackend: strings.ToLower(p.str("FALLBACK_BACKEND", FallbackNone)),
		DatabaseURL:     p.str("DATABASE_URL", ""),
		Neo4jURL:        p.str("NEO4J_URL", ""),
		Neo4jUser:       p.str("NEO4J_USER", "neo4j"),
		Neo4jPass:       p.str("NEO4J_PASS", ""),

		RedisAddr:     p.str("REDIS_ADDR", ""),
		RedisPassword: p.str("REDIS_PASSWORD", ""),
		EmbedCacheTTL: p.duration("EMBED_CACHE_TTL", 24*time.Hour),

		NATSURL: p.str("NATS_URL", ""),

		Engine: fitment.DefaultOptions(),
	}
	cfg.Engine.FallbackTable = p.str("FALLBACK_TABLE", cfg.Engine.FallbackTable)
	if p.err != nil {
		return nil, p.err
	}

	if path := getenv("FITMENT_CONFIG"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	fc := fileConfig{Engine: c.Engine}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return domain.NewConfigError("FITMENT_CONFIG", fmt.Sprintf("parse %s: %v", path, err))
	}
	c.Engine = fc.Engine
	return nil
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	switch c.VectorBackend {
	case VectorQdrant:
		if c.QdrantURL == "" {
			return domain.NewConfigError("QDRANT_URL", "required when VECTOR_BACKEND=qdrant")
		}
	case VectorPGVector:
		if c.PGVectorDSN == "" {
			return domain.NewConfigError("PGVECTOR_DSN", "required when VECTOR_BACKEND=pgvector")
		}
	default:
		return domain.NewConfigError("VECTOR_BACKEND", fmt.Sprintf("unknown backend %q", c.VectorBackend))
	}

	switch c.EmbedProvider {
	case EmbedOllama:
		if c.OllamaURL == "" {
			return domain.NewConfigError("OLLAMA_URL", "required when EMBED_PROVIDER=ollama")
		}
	case EmbedOpenAI:
		if c.OpenAIAPIKey == "" {
			return domain.NewConfigError("OPENAI_API_KEY", "required when EMBED_PROVIDER=openai")
		}
	default:
		return domain.NewConfigError("EMBED_PROVIDER", fmt.Sprintf("unknown provider %q", c.EmbedProvider))
	}

	switch c.FallbackBackend {
	case FallbackPostgres, FallbackSQLite:
		if c.DatabaseURL == "" {
			return domain.NewConfigError("DATABASE_URL", "required when FALLBACK_BACKEND="+c.FallbackBackend)
		}
	case FallbackNeo4j:
		if c.Neo4jURL == "" {
			return domain.NewConfigError("NEO4J_URL", "required when FALLBACK_BACKEND=neo4j")
		}
	case FallbackNone, "":
	default:
		return domain.NewConfigError("FALLBACK_BACKEND", fmt.Sprintf("unknown backend %q", c.FallbackBackend))
	}

	if c.RateLimitRPS < 0 {
		return domain.NewConfigError("RATE_LIMIT_RPS", "must not be negative")
	}
	return nil
}

// NewLogger returns the JSON logger used by every command.
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.LogLevel}))
}

// parser keeps the first conversion error so FromEnv reads straight through.
type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) str(key, fallback string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (p *parser) fail(key, v string, err error) {
	if p.err == nil {
		p.err = domain.NewConfigError(key, fmt.Sprintf("invalid value %q: %v", v, err))
	}
}

func (p *parser) int(key string, fallback int) int {
	v := p.str(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v := p.str(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return f
}

func (p *parser) bool(key string, fallback bool) bool {
	v := p.str(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return b
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := p.str(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return d
}

func (p *parser) level(key string, fallback slog.Level) slog.Level {
	v := p.str(key, "")
	if v == "" {
		return fallback
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return l
}

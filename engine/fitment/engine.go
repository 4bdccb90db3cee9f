// Package fitment resolves free-text vehicle descriptions to compatible
// battery models and battery models to compatible vehicles. Semantic
// retrieval proposes candidates, lexical validation re-ranks them, and a
// deterministic relational lookup runs when retrieval yields nothing.
package fitment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/WessleyAI/wessley-fitment/engine/catalog"
	"github.com/WessleyAI/wessley-fitment/engine/domain"
	"github.com/WessleyAI/wessley-fitment/pkg/resilience"
	"github.com/WessleyAI/wessley-fitment/pkg/vehiclenlp"
)

// Provider names used in logs, metrics, and ProviderError.
const (
	providerEmbedder = "embedder"
	providerIndex    = "vector_index"
	providerStore    = "fallback_store"
)

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex runs a similarity search restricted to one direction of the catalog.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, dir domain.Direction, limit int) ([]domain.Hit, error)
}

// StatsProvider is implemented by vector indexes that can describe themselves.
type StatsProvider interface {
	Stats(ctx context.Context) (domain.CatalogStats, error)
}

// FallbackStore runs structured lookups for the fallback resolver.
type FallbackStore interface {
	Search(ctx context.Context, req catalog.SearchRequest) ([]domain.FitmentRecord, error)
}

// Engine is the fitment resolution engine. It holds no per-request state
// and is safe for concurrent use.
type Engine struct {
	embed  Embedder
	index  VectorIndex
	store  FallbackStore
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer

	metrics      *Metrics
	embedBreaker *resilience.Breaker
	indexBreaker *resilience.Breaker
	storeBreaker *resilience.Breaker
}

// New creates an Engine. store may be nil, which disables the fallback resolver.
func New(embed Embedder, index VectorIndex, store FallbackStore, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()
	m := opts.Metrics
	if m == nil {
		m = NewMetrics(nil)
	}
	e := &Engine{
		embed:        embed,
		index:        index,
		store:        store,
		opts:         opts,
		logger:       logger,
		tracer:       otel.Tracer("github.com/WessleyAI/wessley-fitment/engine/fitment"),
		metrics:      m,
		embedBreaker: resilience.NewBreaker(providerEmbedder, opts.Breaker),
		indexBreaker: resilience.NewBreaker(providerIndex, opts.Breaker),
		storeBreaker: resilience.NewBreaker(providerStore, opts.Breaker),
	}
	for _, b := range []*resilience.Breaker{e.embedBreaker, e.indexBreaker, e.storeBreaker} {
		b.OnStateChange(func(name string, from, to resilience.State) {
			m.observeBreaker(name, from, to)
			logger.Warn("fitment breaker state change", "provider", name, "from", from.String(), "to", to.String())
		})
	}
	return e
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// FindBatteryForVehicle resolves a free-text vehicle description to
// compatible batteries. It never fails; provider outages degrade to the
// fallback resolver or an empty result.
func (e *Engine) FindBatteryForVehicle(ctx context.Context, query string) domain.RankedMatches {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "fitment.FindBatteryForVehicle")
	defer span.End()

	matches := e.SearchBatteries(ctx, query, e.opts.BatteryLimit)
	res := AggregateBatteries(query, matches, e.opts.BatteryLimit)

	e.observe(span, domain.VehicleToBattery, res, start)
	e.logger.Info("fitment battery search done",
		"query_len", len(query), "matches", len(res.Matches), "primary", res.Primary != nil,
		"elapsed", time.Since(start))
	return res
}

// FindVehiclesForBattery resolves a battery model identifier to compatible
// vehicles grouped by make.
func (e *Engine) FindVehiclesForBattery(ctx context.Context, batteryModel string) domain.RankedMatches {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "fitment.FindVehiclesForBattery")
	defer span.End()

	matches := e.SearchVehicles(ctx, batteryModel, e.opts.VehicleLimit)
	res := AggregateVehicles(batteryModel, matches, e.opts.VehiclesPerMake, e.opts.VehiclesShown)

	e.observe(span, domain.BatteryToVehicle, res, start)
	e.logger.Info("fitment vehicle search done",
		"battery_model", batteryModel, "matches", res.Total, "groups", len(res.Groups),
		"elapsed", time.Since(start))
	return res
}

func (e *Engine) observe(span trace.Span, dir domain.Direction, res domain.RankedMatches, start time.Time) {
	d := dir.String()
	e.metrics.requests.WithLabelValues(d).Inc()
	e.metrics.duration.WithLabelValues(d).Observe(time.Since(start).Seconds())
	for _, m := range res.Matches {
		e.metrics.results.WithLabelValues(d, string(m.Source)).Inc()
	}
	span.SetAttributes(
		attribute.String("fitment.direction", d),
		attribute.Int("fitment.matches", len(res.Matches)),
	)
}

// SearchBatteries returns up to k validated battery candidates for a vehicle
// query, best first. k <= 0 uses Options.BatteryLimit.
func (e *Engine) SearchBatteries(ctx context.Context, query string, k int) []domain.CandidateMatch {
	if k <= 0 {
		k = e.opts.BatteryLimit
	}
	q := vehiclenlp.Normalize(query)

	var hits []domain.Hit
	if strings.TrimSpace(query) != "" {
		hits = e.retrieve(ctx, query, domain.VehicleToBattery, max(MinBatteryOverfetch, k*BatteryOverfetchFactor))
	}

	matches := e.rank(q, hits, k)
	if len(matches) == 0 {
		matches = e.fallback(ctx, q, k)
	}
	return matches
}

// rank validates hits against q, drops those whose validation or combined
// score is under ValidityThreshold, and orders the rest by combined score.
// Ties keep index order.
func (e *Engine) rank(q vehiclenlp.Query, hits []domain.Hit, k int) []domain.CandidateMatch {
	out := make([]domain.CandidateMatch, 0, len(hits))
	for _, h := range hits {
		ok, v := Validate(h.Record.Make, h.Record.Model, h.Record.Year, q)
		sem := clamp01(float64(h.Score))
		combined := clamp01(sem*SemanticWeight + v*ValidationWeight)
		if !ok || combined < ValidityThreshold {
			e.metrics.validationMisses.Inc()
			continue
		}
		out = append(out, domain.CandidateMatch{
			FitmentRecord:   h.Record,
			SemanticScore:   sem,
			ValidationScore: v,
			CombinedScore:   combined,
			Source:          domain.SourceSemantic,
			Validated:       true,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CombinedScore > out[j].CombinedScore
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// SearchVehicles returns up to k vehicles whose stored battery identifier
// matches batteryModel, in index order. k <= 0 uses Options.VehicleLimit.
func (e *Engine) SearchVehicles(ctx context.Context, batteryModel string, k int) []domain.CandidateMatch {
	if k <= 0 {
		k = e.opts.VehicleLimit
	}
	id, ok := parseBatteryID(batteryModel)
	if !ok {
		return nil
	}

	hits := e.retrieve(ctx, id.query(), domain.BatteryToVehicle, k*VehicleOverfetchFactor)
	out := make([]domain.CandidateMatch, 0, min(k, len(hits)))
	for _, h := range hits {
		if !id.matches(h.Record.BatteryModel) && !id.matches(h.Record.AltModel) {
			continue
		}
		sem := clamp01(float64(h.Score))
		out = append(out, domain.CandidateMatch{
			FitmentRecord: h.Record,
			SemanticScore: sem,
			CombinedScore: sem,
			Source:        domain.SourceSemantic,
		})
		if len(out) == k {
			break
		}
	}
	return out
}

// Stats describes the vector index.
func (e *Engine) Stats(ctx context.Context) (domain.CatalogStats, error) {
	sp, ok := e.index.(StatsProvider)
	if !ok {
		return domain.CatalogStats{}, fmt.Errorf("fitment: stats: vector index does not report statistics")
	}
	ctx, cancel := context.WithTimeout(ctx, e.opts.SearchTimeout)
	defer cancel()

	st, err := resilience.Do(e.indexBreaker, ctx, sp.Stats)
	if err != nil {
		return domain.CatalogStats{}, fmt.Errorf("fitment: stats: %w", domain.NewProviderError(providerIndex, "stats", err))
	}
	return st, nil
}

// retrieve embeds text and queries the vector index. Failures are logged
// and reported as zero hits.
func (e *Engine) retrieve(ctx context.Context, text string, dir domain.Direction, limit int) []domain.Hit {
	ctx, span := e.tracer.Start(ctx, "fitment.retrieve",
		trace.WithAttributes(attribute.String("fitment.direction", dir.String()), attribute.Int("fitment.limit", limit)))
	defer span.End()

	vec, err := e.embedText(ctx, text)
	if err != nil {
		e.providerFailed(span, providerEmbedder, "embed", err)
		return nil
	}

	searchCtx, cancel := context.WithTimeout(ctx, e.opts.SearchTimeout)
	defer cancel()
	hits, err := resilience.Do(e.indexBreaker, searchCtx, func(ctx context.Context) ([]domain.Hit, error) {
		return e.index.Query(ctx, vec, dir, limit)
	})
	if err != nil {
		e.providerFailed(span, providerIndex, "query", err)
		return nil
	}
	span.SetAttributes(attribute.Int("fitment.hits", len(hits)))
	return hits
}

var errEmptyEmbedding = errors.New("empty embedding")

func (e *Engine) embedText(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.EmbedTimeout)
	defer cancel()
	return resilience.Do(e.embedBreaker, ctx, func(ctx context.Context) ([]float32, error) {
		vec, err := e.embed.Embed(ctx, text)
		if err == nil && len(vec) == 0 {
			err = errEmptyEmbedding
		}
		return vec, err
	})
}

func (e *Engine) providerFailed(span trace.Span, provider, op string, err error) {
	perr := domain.NewProviderError(provider, op, err)
	e.metrics.providerErrors.WithLabelValues(provider).Inc()
	span.RecordError(perr)
	span.SetStatus(codes.Error, perr.Error())
	e.logger.Warn("fitment: provider call failed, continuing without results", "provider", provider, "op", op, "err", err)
}

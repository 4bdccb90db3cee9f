package fitment

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"github.com/WessleyAI/wessley-fitment/engine/catalog"
	"github.com/WessleyAI/wessley-fitment/engine/domain"
	"github.com/WessleyAI/wessley-fitment/pkg/fn"
	"github.com/WessleyAI/wessley-fitment/pkg/resilience"
	"github.com/WessleyAI/wessley-fitment/pkg/vehiclenlp"
)

// Fallback outcomes, as reported in fitment_fallback_total.
const (
	fallbackHit     = "hit"
	fallbackEmpty   = "empty"
	fallbackSkipped = "skipped"
	fallbackError   = "error"
)

// fallback runs a structured catalog lookup for q. It is only consulted
// when semantic retrieval produced no valid candidate.
func (e *Engine) fallback(ctx context.Context, q vehiclenlp.Query, k int) []domain.CandidateMatch {
	if e.store == nil {
		e.metrics.fallbacks.WithLabelValues(fallbackSkipped).Inc()
		return nil
	}
	req, ok := fallbackRequest(q, e.opts.FallbackTable, k)
	if !ok {
		e.metrics.fallbacks.WithLabelValues(fallbackSkipped).Inc()
		return nil
	}

	ctx, span := e.tracer.Start(ctx, "fitment.fallback")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, e.opts.FallbackTimeout)
	defer cancel()

	recs, err := resilience.Do(e.storeBreaker, ctx, func(ctx context.Context) ([]domain.FitmentRecord, error) {
		return e.store.Search(ctx, req)
	})
	if err != nil {
		e.providerFailed(span, providerStore, "search", err)
		e.metrics.fallbacks.WithLabelValues(fallbackError).Inc()
		return nil
	}

	matches := fallbackMatches(recs, k)
	span.SetAttributes(attribute.Int("fitment.fallback.records", len(recs)), attribute.Int("fitment.matches", len(matches)))
	if len(matches) == 0 {
		e.metrics.fallbacks.WithLabelValues(fallbackEmpty).Inc()
	} else {
		e.metrics.fallbacks.WithLabelValues(fallbackHit).Inc()
	}
	e.logger.Info("fitment fallback done", "terms", len(req.Contains), "records", len(recs), "matches", len(matches))
	return matches
}

// fallbackRequest builds the catalog query for q: any model term (OR'ed)
// plus make and year equality when known. ok is false when no model term
// is long enough to search on.
func fallbackRequest(q vehiclenlp.Query, table string, k int) (catalog.SearchRequest, bool) {
	terms := fn.Filter(q.ModelTerms, func(t string) bool {
		return utf8.RuneCountInString(t) >= MinFallbackTermLen
	})
	if len(terms) == 0 {
		return catalog.SearchRequest{}, false
	}

	req := catalog.SearchRequest{
		Table: table,
		Contains: fn.Map(terms, func(t string) catalog.Condition {
			return catalog.Condition{Column: "model", Value: t}
		}),
		Limit: k * FallbackLimitFactor,
	}
	if q.Make != "" {
		req.Equals = append(req.Equals, catalog.Condition{Column: "make", Value: q.Make})
	}
	if q.Year != "" {
		req.Equals = append(req.Equals, catalog.Condition{Column: "year", Value: q.Year})
	}
	return req, true
}

// fallbackMatches dedups records by canonical battery id and scores them
// with the fixed fallback confidence.
func fallbackMatches(recs []domain.FitmentRecord, k int) []domain.CandidateMatch {
	recs = fn.Filter(recs, func(r domain.FitmentRecord) bool {
		return strings.TrimSpace(r.BatteryModel) != ""
	})
	recs = fn.UniqueBy(recs, func(r domain.FitmentRecord) string {
		return canonicalBatteryID(r.BatteryModel)
	})
	if len(recs) > k {
		recs = recs[:k]
	}
	return fn.Map(recs, func(r domain.FitmentRecord) domain.CandidateMatch {
		return domain.CandidateMatch{
			FitmentRecord:   r,
			ValidationScore: FallbackScore,
			CombinedScore:   FallbackScore,
			Source:          domain.SourceFallback,
			Validated:       true,
		}
	})
}

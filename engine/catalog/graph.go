package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
)

// result is the minimal interface needed from a neo4j result.
type result interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// runner is the minimal interface needed from a neo4j session.
type runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (result, error)
	Close(ctx context.Context) error
}

// neo4jSessionAdapter adapts neo4j.SessionWithContext to the runner interface.
type neo4jSessionAdapter struct {
	sess neo4j.SessionWithContext
}

func (a *neo4jSessionAdapter) Run(ctx context.Context, cypher string, params map[string]any) (result, error) {
	return a.sess.Run(ctx, cypher, params)
}

func (a *neo4jSessionAdapter) Close(ctx context.Context) error {
	return a.sess.Close(ctx)
}

// GraphStore is a FallbackStore over Neo4j nodes. SearchRequest.Table names
// the node label; columns are node properties.
type GraphStore struct {
	driver     neo4j.DriverWithContext
	logger     *slog.Logger
	newSession func(ctx context.Context) runner // for testing
}

// OpenGraph connects to Neo4j and verifies connectivity.
func OpenGraph(ctx context.Context, url, user, pass string, logger *slog.Logger) (*GraphStore, error) {
	if url == "" {
		return nil, domain.NewConfigError("NEO4J_URL", "required for the graph fallback")
	}
	driver, err := neo4j.NewDriverWithContext(url, neo4j.BasicAuth(user, pass, ""))
	if err != nil {
		return nil, fmt.Errorf("catalog: neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("catalog: neo4j connect: %w", err)
	}
	return NewGraphStore(driver, logger), nil
}

// NewGraphStore wraps an existing driver.
func NewGraphStore(driver neo4j.DriverWithContext, logger *slog.Logger) *GraphStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphStore{driver: driver, logger: logger}
}

// Close closes the driver.
func (g *GraphStore) Close(ctx context.Context) error {
	if g.driver == nil {
		return nil
	}
	return g.driver.Close(ctx)
}

func (g *GraphStore) session(ctx context.Context) runner {
	if g.newSession != nil {
		return g.newSession(ctx)
	}
	return &neo4jSessionAdapter{sess: g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})}
}

// Search runs req as a Cypher MATCH. Matching is case-insensitive.
func (g *GraphStore) Search(ctx context.Context, req SearchRequest) ([]domain.FitmentRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cypher, params := buildCypher(req)

	sess := g.session(ctx)
	defer sess.Close(ctx)

	res, err := sess.Run(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("catalog: neo4j search %s: %w", req.Table, err)
	}
	var out []domain.FitmentRecord
	for res.Next(ctx) {
		out = append(out, recordFromNeo4j(res.Record()))
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("catalog: neo4j rows: %w", err)
	}
	g.logger.Debug("catalog graph search done", "label", req.Table, "rows", len(out))
	return out, nil
}

var graphColumns = []string{"id", "make", "model", "year", "battery_model", "battery_sku", "alt_model"}

func buildCypher(req SearchRequest) (string, map[string]any) {
	params := map[string]any{"limit": int64(req.Limit)}

	contains := make([]string, len(req.Contains))
	for i, c := range req.Contains {
		key := fmt.Sprintf("c%d", i)
		params[key] = strings.ToLower(c.Value)
		contains[i] = fmt.Sprintf("toLower(toString(n.%s)) CONTAINS $%s", c.Column, key)
	}
	where := []string{"(" + strings.Join(contains, " OR ") + ")"}
	for i, c := range req.Equals {
		key := fmt.Sprintf("e%d", i)
		params[key] = strings.ToLower(c.Value)
		where = append(where, fmt.Sprintf("toLower(toString(n.%s)) = $%s", c.Column, key))
	}

	ret := make([]string, len(graphColumns))
	for i, col := range graphColumns {
		ret[i] = fmt.Sprintf("toString(n.%s) AS %s", col, col)
	}
	cypher := fmt.Sprintf("MATCH (n:%s) WHERE %s RETURN %s LIMIT $limit",
		req.Table, strings.Join(where, " AND "), strings.Join(ret, ", "))
	return cypher, params
}

func recordFromNeo4j(r *neo4j.Record) domain.FitmentRecord {
	get := func(key string) string {
		v, ok := r.Get(key)
		if !ok || v == nil {
			return ""
		}
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return domain.FitmentRecord{
		ID:           get("id"),
		Direction:    domain.VehicleToBattery,
		Make:         get("make"),
		Model:        get("model"),
		Year:         get("year"),
		BatteryModel: get("battery_model"),
		BatterySKU:   get("battery_sku"),
		AltModel:     get("alt_model"),
	}
}

// Package catalog implements the deterministic fallback lookup over the
// fitment catalog: a structured "contains / equals" search against a
// relational table (Postgres, SQLite) or a Neo4j label.
package catalog

import (
	"fmt"
	"regexp"
)

// Condition is a single column predicate. Value is compared case-insensitively.
type Condition struct {
	Column string
	Value  string
}

// SearchRequest is a structured fallback query. Contains conditions are
// OR'ed together; Equals conditions are AND'ed with that group.
type SearchRequest struct {
	Table    string
	Contains []Condition
	Equals   []Condition
	Limit    int
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate rejects requests that would produce an unbounded or unsafe query.
// Table and column names are interpolated, so they must be plain identifiers.
func (r SearchRequest) Validate() error {
	if !identRe.MatchString(r.Table) {
		return fmt.Errorf("catalog: invalid table %q", r.Table)
	}
	if len(r.Contains) == 0 {
		return fmt.Errorf("catalog: at least one contains condition is required")
	}
	if r.Limit <= 0 {
		return fmt.Errorf("catalog: limit must be positive, got %d", r.Limit)
	}
	for _, c := range append(append([]Condition(nil), r.Contains...), r.Equals...) {
		if !identRe.MatchString(c.Column) {
			return fmt.Errorf("catalog: invalid column %q", c.Column)
		}
	}
	return nil
}

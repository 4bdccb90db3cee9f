// Package domain defines the fitment catalog types shared by the resolution
// engine, its collaborator adapters, and the transport layers.
package domain

import (
	"fmt"
	"strings"
)

// Direction selects which half of the fitment catalog a lookup runs against.
type Direction int

const (
	// VehicleToBattery records describe a vehicle and the battery it takes.
	VehicleToBattery Direction = iota + 1
	// BatteryToVehicle records describe a battery and a vehicle it fits.
	BatteryToVehicle
)

// String returns the catalog discriminator value stored with each record.
func (d Direction) String() string {
	switch d {
	case VehicleToBattery:
		return "vehicle_to_battery"
	case BatteryToVehicle:
		return "battery_to_vehicle"
	default:
		return "unknown"
	}
}

// ParseDirection maps a stored discriminator back to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vehicle_to_battery":
		return VehicleToBattery, nil
	case "battery_to_vehicle":
		return BatteryToVehicle, nil
	}
	return 0, fmt.Errorf("domain: unknown direction %q", s)
}

// MarshalText lets Direction travel as its discriminator in JSON.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// FitmentRecord is one read-only catalog entry.
type FitmentRecord struct {
	ID           string    `json:"id"`
	Direction    Direction `json:"direction"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         string    `json:"year,omitempty"`
	BatteryModel string    `json:"battery_model"`
	BatterySKU   string    `json:"battery_sku,omitempty"`
	AltModel     string    `json:"alt_model,omitempty"`
	Document     string    `json:"document,omitempty"`
}

// Vehicle renders "make model year", skipping empty parts.
func (r FitmentRecord) Vehicle() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.Make, r.Model, r.Year} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Hit is a single vector index result. Score is higher-is-better.
type Hit struct {
	Record FitmentRecord
	Score  float32
}

// Source tells where a candidate came from.
type Source string

const (
	SourceSemantic Source = "semantic"
	SourceFallback Source = "fallback"
)

// CandidateMatch is a catalog record scored against one request.
type CandidateMatch struct {
	FitmentRecord
	SemanticScore   float64 `json:"semantic_score"`
	ValidationScore float64 `json:"validation_score"`
	CombinedScore   float64 `json:"combined_score"`
	Source          Source  `json:"source"`
	// Validated is false when no lexical validation ran for this candidate,
	// in which case ValidationScore carries no meaning.
	Validated bool `json:"validated"`
}

// VehicleGroup is one make's slice of a vehicles-for-battery answer.
type VehicleGroup struct {
	Make     string           `json:"make"`
	Vehicles []CandidateMatch `json:"vehicles"`
	More     int              `json:"more,omitempty"`
}

// RankedMatches is the resolution result handed back to callers.
type RankedMatches struct {
	Query     string           `json:"query"`
	Direction Direction        `json:"direction"`
	Matches   []CandidateMatch `json:"matches"`
	Primary   *CandidateMatch  `json:"primary,omitempty"`
	Groups    []VehicleGroup   `json:"groups,omitempty"`
	// Total counts unique matches before display caps; Hidden is how many of
	// them the groups leave out.
	Total  int `json:"total"`
	Hidden int `json:"hidden,omitempty"`
}

// Empty reports whether nothing compatible was found.
func (r RankedMatches) Empty() bool { return len(r.Matches) == 0 }

// CatalogStats describes the vector index backing the engine.
type CatalogStats struct {
	Backend    string `json:"backend"`
	Collection string `json:"collection"`
	Points     uint64 `json:"points"`
	VectorSize uint64 `json:"vector_size,omitempty"`
}

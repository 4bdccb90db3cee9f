package fitment

import (
	"time"

	"github.com/WessleyAI/wessley-fitment/pkg/resilience"
)

// Options configures result sizes, display caps, and per-call timeouts.
type Options struct {
	// BatteryLimit is k for battery-for-vehicle searches.
	BatteryLimit int `yaml:"battery_limit"`
	// VehicleLimit is k for vehicles-for-battery searches.
	VehicleLimit int `yaml:"vehicle_limit"`

	VehiclesPerMake int `yaml:"vehicles_per_make"`
	VehiclesShown   int `yaml:"vehicles_shown"`

	// FallbackTable names the relational table (or graph label) the
	// fallback resolver searches.
	FallbackTable string `yaml:"fallback_table"`

	EmbedTimeout    time.Duration `yaml:"embed_timeout"`
	SearchTimeout   time.Duration `yaml:"search_timeout"`
	FallbackTimeout time.Duration `yaml:"fallback_timeout"`

	Breaker resilience.BreakerOpts `yaml:"breaker"`

	// Metrics receives engine counters. nil creates an unregistered set.
	Metrics *Metrics `yaml:"-"`
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		BatteryLimit:    10,
		VehicleLimit:    50,
		VehiclesPerMake: 10,
		VehiclesShown:   30,
		FallbackTable:   "fitments",
		EmbedTimeout:    10 * time.Second,
		SearchTimeout:   5 * time.Second,
		FallbackTimeout: 5 * time.Second,
		Breaker:         resilience.DefaultBreakerOpts,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BatteryLimit <= 0 {
		o.BatteryLimit = d.BatteryLimit
	}
	if o.VehicleLimit <= 0 {
		o.VehicleLimit = d.VehicleLimit
	}
	if o.VehiclesPerMake <= 0 {
		o.VehiclesPerMake = d.VehiclesPerMake
	}
	if o.VehiclesShown <= 0 {
		o.VehiclesShown = d.VehiclesShown
	}
	if o.FallbackTable == "" {
		o.FallbackTable = d.FallbackTable
	}
	if o.EmbedTimeout <= 0 {
		o.EmbedTimeout = d.EmbedTimeout
	}
	if o.SearchTimeout <= 0 {
		o.SearchTimeout = d.SearchTimeout
	}
	if o.FallbackTimeout <= 0 {
		o.FallbackTimeout = d.FallbackTimeout
	}
	return o
}

package fitment

import (
	"fmt"
	"strings"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
)

// MaxBatteriesShown caps FormatBatteries output.
const MaxBatteriesShown = 5

// FormatBatteries renders a battery-for-vehicle result as customer-facing
// markdown.
func FormatBatteries(r domain.RankedMatches) string {
	if r.Empty() {
		return "No matching batteries found for this vehicle."
	}

	var b strings.Builder
	b.WriteString("**Compatible Batteries Found:**\n\n")
	for i, m := range r.Matches {
		if i == MaxBatteriesShown {
			break
		}
		model := m.BatteryModel
		if model == "" {
			model = "Unknown"
		}
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, model)
		if m.BatterySKU != "" {
			fmt.Fprintf(&b, "   - SKU: `%s`\n", m.BatterySKU)
		}
		if v := m.Vehicle(); v != "" {
			fmt.Fprintf(&b, "   - Fits: %s\n", v)
		}
		b.WriteString("\n")
	}

	rec := r.Primary
	if rec == nil {
		rec = &r.Matches[0]
	}
	fmt.Fprintf(&b, "\n**Recommended:** %s (SKU: %s)\n", rec.BatteryModel, rec.BatterySKU)
	b.WriteString("\nFor pricing, availability, and purchase link, search for this product in our store.")
	return b.String()
}

// FormatVehicles renders a vehicles-for-battery result grouped by make.
func FormatVehicles(r domain.RankedMatches) string {
	if r.Empty() {
		return fmt.Sprintf("No compatible vehicles found for battery %s.", r.Query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Vehicles Compatible with %s:**\n", r.Query)
	for _, g := range r.Groups {
		fmt.Fprintf(&b, "\n**%s:**\n", g.Make)
		for _, v := range g.Vehicles {
			switch {
			case v.Model == "":
				continue
			case v.Year != "":
				fmt.Fprintf(&b, "  - %s (%s)\n", v.Model, v.Year)
			default:
				fmt.Fprintf(&b, "  - %s\n", v.Model)
			}
		}
		if g.More > 0 {
			fmt.Fprintf(&b, "  - *...and %d more*\n", g.More)
		}
	}
	if r.Hidden > 0 {
		fmt.Fprintf(&b, "\n*...and %d more vehicles*\n", r.Hidden)
	}
	return strings.TrimRight(b.String(), "\n")
}

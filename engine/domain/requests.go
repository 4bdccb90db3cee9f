package domain

import "strings"

// NATS subjects served by the API process.
const (
	SubjectBatteryForVehicle  = "fitment.battery_for_vehicle"
	SubjectVehiclesForBattery = "fitment.vehicles_for_battery"
	SubjectStats              = "fitment.stats"
)

// BatteryRequest asks for batteries that fit a free-text vehicle.
type BatteryRequest struct {
	Query string `json:"query"`
}

// Validate rejects empty, oversized, or injection-looking queries.
func (r BatteryRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return NewValidationError("query", r.Query, ErrInvalidQuery)
	}
	return ValidateFitmentQuery(r.Query)
}

// VehiclesRequest asks for vehicles that take a battery model.
type VehiclesRequest struct {
	BatteryModel string `json:"battery_model"`
}

// Validate checks the battery model identifier.
func (r VehiclesRequest) Validate() error {
	return ValidateBatteryModel(r.BatteryModel)
}

// FitmentResponse carries the structured result and its markdown rendering.
type FitmentResponse struct {
	Result RankedMatches `json:"result"`
	Text   string        `json:"text"`
}

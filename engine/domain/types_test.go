package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDirection_RoundTrip(t *testing.T) {
	for _, d := range []Direction{VehicleToBattery, BatteryToVehicle} {
		got, err := ParseDirection(d.String())
		if err != nil {
			t.Fatalf("ParseDirection(%q): %v", d.String(), err)
		}
		if got != d {
			t.Errorf("ParseDirection(%q) = %v, want %v", d.String(), got, d)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("expected error for unknown direction")
	}
	if Direction(0).String() != "unknown" {
		t.Errorf("zero Direction = %q, want unknown", Direction(0).String())
	}
}

func TestDirection_JSON(t *testing.T) {
	b, err := json.Marshal(FitmentRecord{ID: "1", Direction: BatteryToVehicle})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"direction":"battery_to_vehicle"`) {
		t.Fatalf("unexpected json: %s", b)
	}
	var rec FitmentRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Direction != BatteryToVehicle {
		t.Errorf("Direction = %v, want BatteryToVehicle", rec.Direction)
	}
}

func TestFitmentRecord_Vehicle(t *testing.T) {
	r := FitmentRecord{Make: "Honda", Model: "CBR600RR", Year: "2020"}
	if got := r.Vehicle(); got != "Honda CBR600RR 2020" {
		t.Errorf("Vehicle() = %q", got)
	}
	r = FitmentRecord{Make: "Honda", Model: " "}
	if got := r.Vehicle(); got != "Honda" {
		t.Errorf("Vehicle() = %q, want Honda", got)
	}
}

func TestProviderError(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(NewProviderError("qdrant", "search", cause))
	if !errors.Is(err, ErrProvider) {
		t.Error("ProviderError should match ErrProvider")
	}
	if !errors.Is(err, cause) {
		t.Error("ProviderError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "qdrant") || !strings.Contains(err.Error(), "search") {
		t.Errorf("unexpected message: %s", err)
	}
}

func TestConfigError(t *testing.T) {
	err := error(NewConfigError("QDRANT_URL", "required"))
	if !errors.Is(err, ErrConfiguration) {
		t.Error("ConfigError should match ErrConfiguration")
	}
	if err.Error() != "config: QDRANT_URL: required" {
		t.Errorf("unexpected message: %s", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	ve := NewValidationError("battery_model", "YT;", ErrInvalidBatteryModel)
	s := ve.Error()
	if !strings.Contains(s, "battery_model") || !strings.Contains(s, "YT;") || !strings.Contains(s, "invalid battery model") {
		t.Fatalf("unexpected error string: %s", s)
	}
}

package domain

import (
	"errors"
	"testing"
)

func TestBatteryRequest_Validate(t *testing.T) {
	tests := []struct {
		query   string
		wantErr error
	}{
		{"2020 Honda CBR600", nil},
		{"", ErrInvalidQuery},
		{"   ", ErrInvalidQuery},
		{"honda; DROP TABLE fitments", ErrQueryInjection},
	}
	for _, tt := range tests {
		err := BatteryRequest{Query: tt.query}.Validate()
		if tt.wantErr == nil && err != nil {
			t.Errorf("Validate(%q) = %v", tt.query, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("Validate(%q) = %v, want %v", tt.query, err, tt.wantErr)
		}
	}
}

func TestVehiclesRequest_Validate(t *testing.T) {
	if err := (VehiclesRequest{BatteryModel: "YTX14-BS"}).Validate(); err != nil {
		t.Errorf("valid model rejected: %v", err)
	}
	if err := (VehiclesRequest{}).Validate(); !errors.Is(err, ErrInvalidBatteryModel) {
		t.Errorf("empty model = %v", err)
	}
}

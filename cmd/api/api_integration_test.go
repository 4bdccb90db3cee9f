//go:build integration

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
	"github.com/WessleyAI/wessley-fitment/pkg/bootstrap"
	"github.com/WessleyAI/wessley-fitment/pkg/config"
)

// Requires the services named by the environment (QDRANT_URL, OLLAMA_URL,
// and optionally DATABASE_URL) with a seeded catalog.
func TestAPI_BatteryAgainstLiveStack(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	app, err := bootstrap.Build(context.Background(), cfg, nil)
	if err != nil {
		t.Skipf("stack unavailable: %v", err)
	}
	defer app.Close()

	h := newHandler(cfg, app.Engine, app.Registry, slog.Default())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/fitment/battery", strings.NewReader(`{"query":"2020 Honda CBR600"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp domain.FitmentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, m := range resp.Result.Matches {
		if m.CombinedScore < 0 || m.CombinedScore > 1 {
			t.Errorf("score out of range: %+v", m)
		}
	}
}

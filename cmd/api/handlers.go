package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
	"github.com/WessleyAI/wessley-fitment/engine/fitment"
	"github.com/WessleyAI/wessley-fitment/pkg/mid"
)

const maxBodyBytes = 16 << 10

// fitmentService is the slice of *fitment.Engine the transports use.
type fitmentService interface {
	FindBatteryForVehicle(ctx context.Context, query string) domain.RankedMatches
	FindVehiclesForBattery(ctx context.Context, batteryModel string) domain.RankedMatches
	Stats(ctx context.Context) (domain.CatalogStats, error)
}

func routes(svc fitmentService, gatherer prometheus.Gatherer, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/fitment/battery", handleBattery(svc, logger))
	mux.HandleFunc("POST /api/fitment/vehicles", handleVehicles(svc, logger))
	mux.HandleFunc("GET /api/fitment/stats", handleStats(svc, logger))
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleBattery(svc fitmentService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.BatteryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		resp, err := resolveBattery(r.Context(), svc, req)
		if err != nil {
			logger.Info("rejected battery request", "request_id", mid.RequestIDFrom(r.Context()), "err", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleVehicles(svc fitmentService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.VehiclesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		resp, err := resolveVehicles(r.Context(), svc, req)
		if err != nil {
			logger.Info("rejected vehicles request", "request_id", mid.RequestIDFrom(r.Context()), "err", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleStats(svc fitmentService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			logger.Error("catalog stats failed", "err", err)
			writeError(w, http.StatusServiceUnavailable, "catalog statistics unavailable")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// resolveBattery is shared by the HTTP and NATS surfaces. Only validation
// errors are returned; the engine itself never fails.
func resolveBattery(ctx context.Context, svc fitmentService, req domain.BatteryRequest) (domain.FitmentResponse, error) {
	if err := req.Validate(); err != nil {
		return domain.FitmentResponse{}, err
	}
	res := svc.FindBatteryForVehicle(ctx, req.Query)
	return domain.FitmentResponse{Result: res, Text: fitment.FormatBatteries(res)}, nil
}

func resolveVehicles(ctx context.Context, svc fitmentService, req domain.VehiclesRequest) (domain.FitmentResponse, error) {
	if err := req.Validate(); err != nil {
		return domain.FitmentResponse{}, err
	}
	res := svc.FindVehiclesForBattery(ctx, req.BatteryModel)
	return domain.FitmentResponse{Result: res, Text: fitment.FormatVehicles(res)}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

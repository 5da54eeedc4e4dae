// Package router configures HTTP routes for the emulator daemon's API.
//
// Routes configured:
//   - GET  /v1/statistics - List emulated statistics by parameter count
//   - GET  /v1/statistics/{name} - Metadata for one statistic
//   - POST /v1/statistics/{name}/predict - Produce a prediction
//   - GET  /v1/parameters - The canonical input parameter table
//   - GET  /healthz - Health check endpoint (returns 200 OK)
//   - GET  /metrics - Prometheus metrics endpoint
//
// Prediction requests carry a JSON body:
//
//	{"params": [3.0, 0.5, 1.0, 0.7, 0.1], "samples": 100, "zIndex": 0}
//
// where samples and zIndex are optional. Responses include the mean curve,
// the 90% credible band, the grid the surrogate was trained on, and whether
// the result was served from the cache.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cosmohub/subgridemu/pkg/artifact"
	"github.com/cosmohub/subgridemu/pkg/emulator"
	"github.com/cosmohub/subgridemu/pkg/httpx"
	"github.com/cosmohub/subgridemu/pkg/metadata"
	"github.com/cosmohub/subgridemu/pkg/registry"
)

// PredictionService produces predictions for registered statistics.
// Implemented by the daemon's surrogate-cache service; tests substitute
// stubs.
type PredictionService interface {
	Predict(ctx context.Context, statistic string, params []float64, samples, zIndex int) (result *emulator.Result, cached bool, err error)
}

// Limits carries the request-level sampling limits from the daemon config.
type Limits struct {
	DefaultSamples int
	MaxSamples     int
}

// SetupRoutes configures HTTP endpoints for the emulator daemon.
func SetupRoutes(svc PredictionService, limits Limits, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", httpx.HealthHandler())
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/statistics", handleListStatistics())
	mux.HandleFunc("GET /v1/statistics/{name}", handleStatisticMetadata())
	mux.HandleFunc("GET /v1/parameters", handleParameters())
	mux.HandleFunc("POST /v1/statistics/{name}/predict", handlePredict(svc, limits, logger))

	return mux
}

// handleListStatistics returns a handler for GET /v1/statistics.
func handleListStatistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := httpx.WriteJSON(w, http.StatusOK, registry.List()); err != nil {
			slog.Error("failed to write JSON response", "error", err)
		}
	}
}

// handleStatisticMetadata returns a handler for GET /v1/statistics/{name}.
func handleStatisticMetadata() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		desc, err := registry.Describe(name)
		if err != nil {
			httpx.WriteErrorMessage(w, http.StatusNotFound, fmt.Sprintf("unknown statistic %q", name))
			return
		}

		grid, xLabel, _ := metadata.XGrid(name)
		plot, _ := metadata.GetPlotInfo(name)
		low, high, _ := metadata.ValidRange(name)

		resp := map[string]any{
			"name":        desc.Name,
			"paramCount":  desc.ParamCount,
			"transform":   desc.OutputTransform,
			"nominalGrid": grid,
			"xLabel":      xLabel,
			"plot":        plot,
			"validRange":  map[string]float64{"low": low, "high": high},
		}

		if err := httpx.WriteJSON(w, http.StatusOK, resp); err != nil {
			slog.Error("failed to write JSON response", "error", err)
		}
	}
}

// handleParameters returns a handler for GET /v1/parameters.
func handleParameters() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := httpx.WriteJSON(w, http.StatusOK, metadata.GetParameterInfo()); err != nil {
			slog.Error("failed to write JSON response", "error", err)
		}
	}
}

// predictRequest is the JSON body of POST /v1/statistics/{name}/predict.
type predictRequest struct {
	Params  []float64 `json:"params"`
	Samples int       `json:"samples"`
	ZIndex  int       `json:"zIndex"`
}

// predictResponse wraps an emulator result with cache provenance.
type predictResponse struct {
	*emulator.Result
	Cached bool `json:"cached"`
}

// handlePredict returns a handler for POST /v1/statistics/{name}/predict.
func handlePredict(svc PredictionService, limits Limits, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if len(req.Params) == 0 {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "params required")
			return
		}

		samples := req.Samples
		if samples <= 0 {
			samples = limits.DefaultSamples
		}
		if samples > limits.MaxSamples {
			httpx.WriteErrorMessage(w, http.StatusBadRequest,
				fmt.Sprintf("samples %d exceeds maximum %d", samples, limits.MaxSamples))
			return
		}

		if req.ZIndex < 0 {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "zIndex must be >= 0")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		result, cached, err := svc.Predict(ctx, name, req.Params, samples, req.ZIndex)
		if err != nil {
			writePredictError(w, logger, name, err)
			return
		}

		resp := predictResponse{Result: result, Cached: cached}
		if err := httpx.WriteJSON(w, http.StatusOK, resp); err != nil {
			logger.Error("failed to write JSON response", "error", err)
		}
	}
}

// writePredictError maps service errors to HTTP status codes. Client input
// problems map to 4xx; missing or corrupt model bundles are deployment
// defects and map to 500 without leaking file details.
func writePredictError(w http.ResponseWriter, logger *slog.Logger, name string, err error) {
	switch {
	case errors.Is(err, registry.ErrUnknownStatistic):
		httpx.WriteErrorMessage(w, http.StatusNotFound, fmt.Sprintf("unknown statistic %q", name))
	case errors.Is(err, emulator.ErrParameterCount), errors.Is(err, emulator.ErrParameterType):
		httpx.WriteError(w, http.StatusBadRequest, err)
	case errors.Is(err, emulator.ErrPrediction):
		httpx.WriteError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, artifact.ErrNotFound), errors.Is(err, artifact.ErrCorrupt):
		logger.Error("model bundle unavailable", "statistic", name, "error", err)
		httpx.WriteErrorMessage(w, http.StatusInternalServerError, "model bundle unavailable")
	default:
		logger.Error("prediction failed", "statistic", name, "error", err)
		httpx.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

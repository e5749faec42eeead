package main

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/o.frames/internal/pricing"
)

const delta = 1e-9

type estimateBody struct {
	ID       uuid.UUID `json:"id"`
	Estimate struct {
		Subtotal     float64 `json:"subtotal"`
		Total        float64 `json:"total"`
		OverheadRate float64 `json:"overhead_rate"`
		Quantity     int     `json:"quantity"`
		// Profitability stays loosely typed; ratios encode as null when undefined.
		Profitability map[string]any `json:"profitability"`
	} `json:"estimate"`
	Rates     pricing.Rates      `json:"rates"`
	Degraded  bool               `json:"degraded"`
	Fallbacks []pricing.Fallback `json:"fallbacks"`
}

func scenarioBody() map[string]any {
	return map[string]any{
		"dimensions": map[string]any{"artwork_width": 16, "artwork_height": 20, "mat_widths": []float64{3}},
		"rates": map[string]any{
			"frame_per_foot":          1.50,
			"mat_per_united_inch":     0.02,
			"glass_per_united_inch":   0.03,
			"backing_per_square_inch": 0.01,
		},
	}
}

func TestHandleEstimate_ExplicitRates(t *testing.T) {
	srv, h := newTestServer(t, testAdminKey)

	rr := doJSON(t, h, http.MethodPost, "/api/estimates", scenarioBody())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decodeBody[estimateBody](t, rr)
	assert.NotEqual(t, uuid.Nil, body.ID)
	assert.InDelta(t, 63.84, body.Estimate.Subtotal, delta)
	assert.InDelta(t, 63.84, body.Estimate.Total, delta)
	assert.Equal(t, 1, body.Estimate.Quantity)
	assert.False(t, body.Degraded)
	assert.Empty(t, body.Fallbacks)
	assert.Nil(t, body.Estimate.Profitability)

	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.EstimatesTotal.WithLabelValues("ok")))
}

func TestHandleEstimate_AssemblyQuantityAndProfitability(t *testing.T) {
	_, h := newTestServer(t, testAdminKey)

	req := scenarioBody()
	req["assembly"] = true
	req["quantity"] = 2
	req["include_profitability"] = true

	rr := doJSON(t, h, http.MethodPost, "/api/estimates", req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decodeBody[estimateBody](t, rr)
	assert.InDelta(t, 98.84, body.Estimate.Subtotal, delta)
	assert.InDelta(t, 197.68, body.Estimate.Total, 1e-6)
	require.NotNil(t, body.Estimate.Profitability)
	assert.Contains(t, body.Estimate.Profitability, "gross_margin")
}

func TestHandleEstimate_CatalogSelectionWithFallback(t *testing.T) {
	srv, h := newTestServer(t, testAdminKey)

	rr := doJSON(t, h, http.MethodPost, "/api/estimates", map[string]any{
		"dimensions": map[string]any{"artwork_width": 16, "artwork_height": 20, "mat_widths": []float64{3}},
		"selection": map[string]any{
			"frame_key":   "basic-black-1",
			"mat_key":     "white-core-4ply",
			"glass_key":   "museum-glass",
			"backing_key": "foam-3-16",
		},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decodeBody[estimateBody](t, rr)
	assert.True(t, body.Degraded)
	require.Len(t, body.Fallbacks, 1)
	assert.Equal(t, pricing.MaterialGlass, body.Fallbacks[0].Material)
	assert.Equal(t, "museum-glass", body.Fallbacks[0].Key)
	assert.Equal(t, pricing.FallbackGlassPerUnitedInch, body.Rates.GlassPerUnitedInch)
	assert.Equal(t, 1.50, body.Rates.FramePerFoot)
	assert.InDelta(t, 87.0/25/72, body.Rates.MatPerUnitedInch, delta)
	assert.Greater(t, body.Estimate.Total, 0.0)

	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.EstimatesTotal.WithLabelValues("degraded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.CatalogFallbacks.WithLabelValues("glass")))
}

func TestHandleEstimate_Errors(t *testing.T) {
	_, h := newTestServer(t, testAdminKey)

	withRates := func(mutate func(map[string]any)) map[string]any {
		b := scenarioBody()
		mutate(b)
		return b
	}

	tests := map[string]struct {
		body   any
		status int
		code   string
	}{
		"malformed json": {
			body:   `{"dimensions":`,
			status: http.StatusBadRequest,
			code:   "bad_request",
		},
		"unknown field": {
			body:   `{"dimensions":{"artwork_width":1,"artwork_height":1},"rates":{},"colour":"red"}`,
			status: http.StatusBadRequest,
			code:   "bad_request",
		},
		"zero width": {
			body: withRates(func(b map[string]any) {
				b["dimensions"] = map[string]any{"artwork_width": 0, "artwork_height": 20}
			}),
			status: http.StatusUnprocessableEntity,
			code:   "invalid_dimension",
		},
		"negative mat": {
			body: withRates(func(b map[string]any) {
				b["dimensions"] = map[string]any{"artwork_width": 16, "artwork_height": 20, "mat_widths": []float64{-1}}
			}),
			status: http.StatusUnprocessableEntity,
			code:   "invalid_dimension",
		},
		"negative rate": {
			body: withRates(func(b map[string]any) {
				b["rates"] = map[string]any{"frame_per_foot": -1}
			}),
			status: http.StatusUnprocessableEntity,
			code:   "invalid_catalog_entry",
		},
		"zero quantity": {
			body:   withRates(func(b map[string]any) { b["quantity"] = 0 }),
			status: http.StatusUnprocessableEntity,
			code:   "invalid_quantity",
		},
		"no rates or selection": {
			body:   map[string]any{"dimensions": map[string]any{"artwork_width": 16, "artwork_height": 20}},
			status: http.StatusUnprocessableEntity,
			code:   "validation_failed",
		},
		"rates and selection": {
			body:   withRates(func(b map[string]any) { b["selection"] = map[string]any{"frame_key": "basic-black-1"} }),
			status: http.StatusUnprocessableEntity,
			code:   "validation_failed",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rr := doJSON(t, h, http.MethodPost, "/api/estimates", tc.body)
			require.Equal(t, tc.status, rr.Code, rr.Body.String())

			body := decodeBody[apiError](t, rr)
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestHandleOptimize(t *testing.T) {
	srv, h := newTestServer(t, testAdminKey)

	rr := doJSON(t, h, http.MethodPost, "/api/optimize", map[string]any{
		"footage": 12.5,
		"options": []map[string]any{
			{"method": "length", "price_per_foot": 10},
			{"method": "box", "price_per_foot": 8, "box_quantity": 14},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decodeBody[optimizeResponse](t, rr)
	assert.NotEqual(t, uuid.Nil, body.ID)
	assert.Empty(t, body.FrameKey)
	assert.Equal(t, pricing.MethodBox, body.Result.Recommended.Method)
	assert.InDelta(t, 112.0, body.Result.Recommended.TotalCost, delta)
	assert.InDelta(t, 13.0, body.Result.Recommended.SavingsVsNextBest, delta)
	require.Len(t, body.Result.Options, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.OptimizationsTotal.WithLabelValues("box")))
}

func TestHandleOptimize_Errors(t *testing.T) {
	_, h := newTestServer(t, testAdminKey)

	tests := map[string]struct {
		body map[string]any
		code string
	}{
		"zero footage": {
			body: map[string]any{"footage": 0, "options": []map[string]any{{"method": "length", "price_per_foot": 1}}},
			code: "invalid_footage",
		},
		"no options": {
			body: map[string]any{"footage": 10, "options": []map[string]any{}},
			code: "no_options_available",
		},
		"unknown method": {
			body: map[string]any{"footage": 10, "options": []map[string]any{{"method": "rental", "price_per_foot": 1}}},
			code: "invalid_catalog_entry",
		},
		"negative price": {
			body: map[string]any{"footage": 10, "options": []map[string]any{{"method": "chop", "price_per_foot": -2}}},
			code: "invalid_catalog_entry",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rr := doJSON(t, h, http.MethodPost, "/api/optimize", tc.body)
			require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
			assert.Equal(t, tc.code, decodeBody[apiError](t, rr).Code)
		})
	}
}

func TestHandleFrameOptimize_UsesStoredOptions(t *testing.T) {
	_, h := newTestServer(t, testAdminKey)

	rr := doJSON(t, h, http.MethodPost, "/api/frames/basic-black-1/optimize", map[string]any{"footage": 12.5})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decodeBody[optimizeResponse](t, rr)
	assert.Equal(t, "basic-black-1", body.FrameKey)
	require.Len(t, body.Result.Options, 5)
	assert.Equal(t, pricing.MethodLength, body.Result.Recommended.Method)
	assert.Equal(t, 0, body.Result.Recommended.Index)
	assert.InDelta(t, 18.75, body.Result.Recommended.TotalCost, delta)
	assert.InDelta(t, 4.375, body.Result.Recommended.SavingsVsNextBest, delta)
}

func TestHandleFrameOptimize_UnknownFrame(t *testing.T) {
	_, h := newTestServer(t, testAdminKey)

	rr := doJSON(t, h, http.MethodPost, "/api/frames/walnut/optimize", map[string]any{"footage": 10})
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decodeBody[apiError](t, rr).Code)
}

func TestHandleNormalize(t *testing.T) {
	_, h := newTestServer(t, testAdminKey)

	rr := doJSON(t, h, http.MethodPost, "/api/catalog/normalize", map[string]any{
		"box_price": 100, "sheets_per_box": 10, "sheet_width": 32, "sheet_height": 40,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decodeBody[normalizeResponse](t, rr)
	assert.InDelta(t, 10.0, body.PricePerSheet, delta)
	assert.InDelta(t, 10.0/72, body.PricePerUnitedInch, delta)
	assert.InDelta(t, 10.0/1280, body.PricePerSquareInch, delta)
}

func TestHandleNormalize_ZeroSheets(t *testing.T) {
	_, h := newTestServer(t, testAdminKey)

	rr := doJSON(t, h, http.MethodPost, "/api/catalog/normalize", map[string]any{
		"box_price": 100, "sheets_per_box": 0, "sheet_width": 32, "sheet_height": 40,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	body := decodeBody[apiError](t, rr)
	assert.Equal(t, "invalid_catalog_entry", body.Code)
	assert.Contains(t, body.Fields, "sheets_per_box")
}

func TestHealthAndMetrics(t *testing.T) {
	_, h := newTestServer(t, testAdminKey)

	rr := doJSON(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = doJSON(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `frames_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"github.com/Simplici0/o.frames/internal/catalog"
	"github.com/Simplici0/o.frames/internal/pricing"
)

type estimateRequest struct {
	Dimensions           pricing.JobDimensions `json:"dimensions"`
	Selection            *pricing.Selection    `json:"selection,omitempty" validate:"required_without=Rates,excluded_with=Rates"`
	Rates                *pricing.Rates        `json:"rates,omitempty" validate:"required_without=Selection"`
	Quantity             *int                  `json:"quantity,omitempty"`
	Assembly             bool                  `json:"assembly"`
	IncludeProfitability bool                  `json:"include_profitability"`
}

type estimateResponse struct {
	ID        uuid.UUID              `json:"id"`
	Estimate  pricing.PricedEstimate `json:"estimate"`
	Rates     pricing.Rates          `json:"rates"`
	Degraded  bool                   `json:"degraded"`
	Fallbacks []pricing.Fallback     `json:"fallbacks"`
}

type optimizeRequest struct {
	Footage float64                  `json:"footage"`
	Options []pricing.PurchaseOption `json:"options" validate:"dive"`
}

type frameOptimizeRequest struct {
	Footage float64 `json:"footage"`
}

type optimizeResponse struct {
	ID       uuid.UUID                  `json:"id"`
	FrameKey string                     `json:"frame_key,omitempty"`
	Result   pricing.OptimizationResult `json:"result"`
}

type normalizeRequest struct {
	BoxPrice     float64 `json:"box_price" validate:"gte=0"`
	SheetsPerBox int     `json:"sheets_per_box" validate:"gte=1"`
	SheetWidth   float64 `json:"sheet_width" validate:"gt=0"`
	SheetHeight  float64 `json:"sheet_height" validate:"gt=0"`
}

type normalizeResponse struct {
	PricePerSheet      float64 `json:"price_per_sheet"`
	PricePerUnitedInch float64 `json:"price_per_united_inch"`
	PricePerSquareInch float64 `json:"price_per_square_inch"`
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp := estimateResponse{ID: uuid.New(), Fallbacks: []pricing.Fallback{}}
	if req.Rates != nil {
		resp.Rates = *req.Rates
	} else {
		snap, err := s.store.Snapshot(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		rates, fallbacks, err := snap.ResolveRates(*req.Selection)
		if err != nil {
			s.metrics.ObserveEstimate(nil, err)
			writeError(w, r, err)
			return
		}
		resp.Rates = rates
		if len(fallbacks) > 0 {
			resp.Fallbacks = fallbacks
		}
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	est, err := pricing.Estimate(pricing.EstimateRequest{
		Dimensions:           req.Dimensions,
		Rates:                resp.Rates,
		Quantity:             quantity,
		Assembly:             req.Assembly,
		IncludeProfitability: req.IncludeProfitability,
	})
	s.metrics.ObserveEstimate(resp.Fallbacks, err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp.Estimate = est
	resp.Degraded = len(resp.Fallbacks) > 0
	if resp.Degraded {
		logger := hlog.FromRequest(r)
		for _, f := range resp.Fallbacks {
			logger.Warn().
				Str("estimate_id", resp.ID.String()).
				Str("material", string(f.Material)).
				Str("key", f.Key).
				Float64("rate", f.Rate).
				Msg("catalog miss, priced at default rate")
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := pricing.OptimizePurchase(req.Footage, req.Options)
	s.metrics.ObserveOptimization(res, err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, optimizeResponse{ID: uuid.New(), Result: res})
}

func (s *server) handleFrameOptimize(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req frameOptimizeRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	frame, err := s.store.Frame(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if frame.Disabled {
		writeError(w, r, fmt.Errorf("%w: frame %q is disabled", catalog.ErrNotFound, key))
		return
	}

	res, err := pricing.OptimizePurchase(req.Footage, frame.Options)
	s.metrics.ObserveOptimization(res, err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, optimizeResponse{ID: uuid.New(), FrameKey: frame.Key, Result: res})
}

func (s *server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	entry := pricing.CatalogEntry{
		BoxPrice:     req.BoxPrice,
		SheetsPerBox: req.SheetsPerBox,
		SheetWidth:   req.SheetWidth,
		SheetHeight:  req.SheetHeight,
	}

	var (
		resp normalizeResponse
		err  error
	)
	if resp.PricePerSheet, err = entry.PricePerSheet(); err != nil {
		writeError(w, r, err)
		return
	}
	if resp.PricePerUnitedInch, err = entry.PricePerUnitedInch(); err != nil {
		writeError(w, r, err)
		return
	}
	if resp.PricePerSquareInch, err = entry.PricePerSquareInch(); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

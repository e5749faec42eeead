package pricing

import (
	"encoding/json"
	"fmt"
)

// EstimateRequest is everything needed to price one framing job.
type EstimateRequest struct {
	Dimensions JobDimensions
	Rates      Rates
	Quantity   int
	// Assembly adds the fitting charge to the subtotal.
	Assembly             bool
	IncludeProfitability bool
}

// Ratio is a quotient that may be undefined when its denominator is zero.
type Ratio struct {
	Value     float64
	Undefined bool
}

func ratio(num, den float64) Ratio {
	if den == 0 {
		return Ratio{Undefined: true}
	}
	return Ratio{Value: num / den}
}

// Float returns the value or ErrUndefined.
func (r Ratio) Float() (float64, error) {
	if r.Undefined {
		return 0, ErrUndefined
	}
	return r.Value, nil
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.Undefined {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

func (r Ratio) MarshalYAML() (any, error) {
	if r.Undefined {
		return "undefined", nil
	}
	return r.Value, nil
}

// Profitability compares the order total with what it costs the shop.
// WholesaleCost and OverheadCost cover the whole order: the per-unit
// material cost and rate times subtotal, both multiplied by quantity, so
// they are comparable with Total.
type Profitability struct {
	WholesaleCost    float64 `json:"wholesale_cost" yaml:"wholesale_cost"`
	OverheadCost     float64 `json:"overhead_cost" yaml:"overhead_cost"`
	GrossProfit      float64 `json:"gross_profit" yaml:"gross_profit"`
	GrossMargin      Ratio   `json:"gross_margin" yaml:"gross_margin"`
	MarkupMultiplier Ratio   `json:"markup_multiplier" yaml:"markup_multiplier"`
}

// PricedEstimate is the priced breakdown for one job. Money fields are per
// unit except Total and the profitability block, which cover the quantity.
type PricedEstimate struct {
	Geometry      Geometry        `json:"geometry" yaml:"geometry"`
	Quantity      int             `json:"quantity" yaml:"quantity"`
	Frame         MaterialPrice   `json:"frame" yaml:"frame"`
	Mats          []MaterialPrice `json:"mats,omitempty" yaml:"mats,omitempty"`
	Glass         MaterialPrice   `json:"glass" yaml:"glass"`
	Backing       MaterialPrice   `json:"backing" yaml:"backing"`
	MatLabor      float64         `json:"mat_labor" yaml:"mat_labor"`
	AssemblyLabor float64         `json:"assembly_labor" yaml:"assembly_labor"`
	Subtotal      float64         `json:"subtotal" yaml:"subtotal"`
	OverheadRate  float64         `json:"overhead_rate" yaml:"overhead_rate"`
	Overhead      float64         `json:"overhead" yaml:"overhead"`
	Total         float64         `json:"total" yaml:"total"`
	Profitability *Profitability  `json:"profitability,omitempty" yaml:"profitability,omitempty"`
}

// MatRetail sums the retail price of every mat layer.
func (e PricedEstimate) MatRetail() float64 {
	sum := 0.0
	for _, m := range e.Mats {
		sum += m.Retail
	}
	return sum
}

// WholesaleCost sums the per-unit wholesale cost of every material.
func (e PricedEstimate) WholesaleCost() float64 {
	sum := e.Frame.Wholesale + e.Glass.Wholesale + e.Backing.Wholesale
	for _, m := range e.Mats {
		sum += m.Wholesale
	}
	return sum
}

// Estimate prices a job. It fails on bad dimensions, rates or quantity and
// never returns a partial result.
func Estimate(req EstimateRequest) (PricedEstimate, error) {
	if req.Quantity < 1 {
		return PricedEstimate{}, fmt.Errorf("%w: quantity must be >= 1, got %d", ErrInvalidQuantity, req.Quantity)
	}

	g, err := req.Dimensions.Geometry()
	if err != nil {
		return PricedEstimate{}, err
	}

	est := PricedEstimate{Geometry: g, Quantity: req.Quantity}

	if est.Frame, err = FramePrice(g, req.Rates.FramePerFoot); err != nil {
		return PricedEstimate{}, err
	}
	for i := 0; i < req.Dimensions.MatLayers(); i++ {
		mat, err := MatPrice(g, req.Rates.MatPerUnitedInch)
		if err != nil {
			return PricedEstimate{}, err
		}
		est.Mats = append(est.Mats, mat)
		est.MatLabor += mat.Labor
	}
	if est.Glass, err = GlassPrice(g, req.Rates.GlassPerUnitedInch); err != nil {
		return PricedEstimate{}, err
	}
	if est.Backing, err = BackingPrice(g, req.Rates.BackingPerSquareInch); err != nil {
		return PricedEstimate{}, err
	}
	if req.Assembly {
		est.AssemblyLabor = AssemblyLaborCharge(g.UnitedInches)
	}

	est.Subtotal = est.Frame.Retail + est.MatRetail() + est.Glass.Retail + est.Backing.Retail + est.AssemblyLabor
	est.OverheadRate = OverheadRate(est.Subtotal)
	est.Overhead = est.OverheadRate * est.Subtotal
	est.Total = est.Subtotal * float64(req.Quantity)

	if req.IncludeProfitability {
		qty := float64(req.Quantity)
		wholesale := est.WholesaleCost() * qty
		overhead := est.Overhead * qty
		profit := est.Total - wholesale - overhead
		est.Profitability = &Profitability{
			WholesaleCost:    wholesale,
			OverheadCost:     overhead,
			GrossProfit:      profit,
			GrossMargin:      ratio(profit, est.Total),
			MarkupMultiplier: ratio(est.Total, wholesale),
		}
	}

	return est, nil
}

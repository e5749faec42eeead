package pricing

import (
	"fmt"
	"math"
)

const (
	// matWholesaleFactor inflates mat board cost for handling and offcut waste.
	matWholesaleFactor = 2.5
	// backingWholesaleFactor is the share of a backing sheet a job consumes.
	backingWholesaleFactor = 0.3
	backingMarkup          = 2.5
	// BackingFloor is the minimum retail price of backing.
	BackingFloor = 5.00
)

// MaterialPrice is the wholesale and retail price of one material.
type MaterialPrice struct {
	Wholesale float64 `json:"wholesale" yaml:"wholesale"`
	Markup    float64 `json:"markup" yaml:"markup"`
	Labor     float64 `json:"labor,omitempty" yaml:"labor,omitempty"`
	Retail    float64 `json:"retail" yaml:"retail"`
}

func checkRate(m Material, rate float64) error {
	if !(rate >= 0) || math.IsInf(rate, 1) {
		return fmt.Errorf("%w: %s rate must be a non-negative number, got %v", ErrInvalidCatalogEntry, m, rate)
	}
	return nil
}

func checkGeometry(g Geometry) error {
	if !(g.FinishedWidth > 0) || !(g.FinishedHeight > 0) {
		return fmt.Errorf("%w: finished size must be positive, got %vx%v", ErrInvalidDimension, g.FinishedWidth, g.FinishedHeight)
	}
	return nil
}

// FramePrice prices moulding for the finished perimeter.
func FramePrice(g Geometry, pricePerFoot float64) (MaterialPrice, error) {
	if err := checkGeometry(g); err != nil {
		return MaterialPrice{}, err
	}
	if err := checkRate(MaterialFrame, pricePerFoot); err != nil {
		return MaterialPrice{}, err
	}

	wholesale := (g.UnitedInches / 12) * pricePerFoot
	markup := FrameMarkup(wholesale)
	return MaterialPrice{
		Wholesale: wholesale,
		Markup:    markup,
		Retail:    wholesale * markup,
	}, nil
}

// MatPrice prices one mat board including its cutting labor.
func MatPrice(g Geometry, pricePerUnitedInch float64) (MaterialPrice, error) {
	if err := checkGeometry(g); err != nil {
		return MaterialPrice{}, err
	}
	if err := checkRate(MaterialMat, pricePerUnitedInch); err != nil {
		return MaterialPrice{}, err
	}

	wholesale := g.UnitedInches * pricePerUnitedInch * matWholesaleFactor
	markup := MatMarkup(g.UnitedInches)
	labor := MatLaborCharge(g.UnitedInches)
	return MaterialPrice{
		Wholesale: wholesale,
		Markup:    markup,
		Labor:     labor,
		Retail:    wholesale*markup + labor,
	}, nil
}

// GlassPrice prices glazing for the finished size.
func GlassPrice(g Geometry, pricePerUnitedInch float64) (MaterialPrice, error) {
	if err := checkGeometry(g); err != nil {
		return MaterialPrice{}, err
	}
	if err := checkRate(MaterialGlass, pricePerUnitedInch); err != nil {
		return MaterialPrice{}, err
	}

	wholesale := g.UnitedInches * pricePerUnitedInch
	markup := GlassMarkup(g.UnitedInches)
	return MaterialPrice{
		Wholesale: wholesale,
		Markup:    markup,
		Retail:    wholesale * markup,
	}, nil
}

// BackingPrice prices backing board by finished area, never below BackingFloor.
func BackingPrice(g Geometry, pricePerSquareInch float64) (MaterialPrice, error) {
	if err := checkGeometry(g); err != nil {
		return MaterialPrice{}, err
	}
	if err := checkRate(MaterialBacking, pricePerSquareInch); err != nil {
		return MaterialPrice{}, err
	}

	wholesale := g.Area() * pricePerSquareInch * backingWholesaleFactor
	return MaterialPrice{
		Wholesale: wholesale,
		Markup:    backingMarkup,
		Retail:    math.Max(wholesale*backingMarkup, BackingFloor),
	}, nil
}

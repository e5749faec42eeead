package pricing

import (
	"fmt"
	"math"
)

// Method is a vendor's way of selling moulding.
type Method string

const (
	MethodLength      Method = "length"
	MethodStraightCut Method = "straight_cut"
	MethodChop        Method = "chop"
	MethodJoin        Method = "join"
	MethodBox         Method = "box"
)

// Valid reports whether m is a known purchase method.
func (m Method) Valid() bool {
	switch m {
	case MethodLength, MethodStraightCut, MethodChop, MethodJoin, MethodBox:
		return true
	}
	return false
}

// PurchaseOption is one way to buy a moulding. BoxQuantity is the footage in
// one box and only applies to MethodBox.
type PurchaseOption struct {
	Method       Method  `json:"method" yaml:"method" validate:"required,oneof=length straight_cut chop join box"`
	PricePerFoot float64 `json:"price_per_foot" yaml:"price_per_foot" validate:"gte=0"`
	Description  string  `json:"description,omitempty" yaml:"description,omitempty"`
	BoxQuantity  float64 `json:"box_quantity,omitempty" yaml:"box_quantity,omitempty" validate:"gte=0"`
}

// Validate reports ErrInvalidCatalogEntry for unknown methods or bad prices.
func (o PurchaseOption) Validate() error {
	if !o.Method.Valid() {
		return fmt.Errorf("%w: unknown purchase method %q", ErrInvalidCatalogEntry, o.Method)
	}
	if !(o.PricePerFoot >= 0) || math.IsInf(o.PricePerFoot, 1) {
		return fmt.Errorf("%w: %s price per foot must be >= 0, got %v", ErrInvalidCatalogEntry, o.Method, o.PricePerFoot)
	}
	if !(o.BoxQuantity >= 0) || math.IsInf(o.BoxQuantity, 1) {
		return fmt.Errorf("%w: %s box quantity must be >= 0, got %v", ErrInvalidCatalogEntry, o.Method, o.BoxQuantity)
	}
	return nil
}

// boxed reports whether purchases round up to whole boxes.
func (o PurchaseOption) boxed() bool {
	return o.Method == MethodBox && o.BoxQuantity > 0
}

// OptionCost is the price of buying the requested footage one way.
type OptionCost struct {
	Option        PurchaseOption `json:"option" yaml:"option"`
	Boxes         int            `json:"boxes,omitempty" yaml:"boxes,omitempty"`
	FeetPurchased float64        `json:"feet_purchased" yaml:"feet_purchased"`
	Overage       float64        `json:"overage" yaml:"overage"`
	TotalCost     float64        `json:"total_cost" yaml:"total_cost"`
	// Savings is how much more this option costs than the best one.
	Savings float64 `json:"savings" yaml:"savings"`
}

// Recommendation is the cheapest option and why.
type Recommendation struct {
	Index             int     `json:"index" yaml:"index"`
	Method            Method  `json:"method" yaml:"method"`
	TotalCost         float64 `json:"total_cost" yaml:"total_cost"`
	SavingsVsNextBest float64 `json:"savings_vs_next_best" yaml:"savings_vs_next_best"`
	Reason            string  `json:"reason" yaml:"reason"`
}

// OptimizationResult lists every option's cost and the recommended one.
type OptimizationResult struct {
	FootageNeeded float64        `json:"footage_needed" yaml:"footage_needed"`
	Options       []OptionCost   `json:"options" yaml:"options"`
	Recommended   Recommendation `json:"recommended" yaml:"recommended"`
}

const (
	// boxTolerance is the relative slack under which a box count or overage
	// is treated as exact.
	boxTolerance = 1e-9
	// MaxBoxes bounds the number of boxes one purchase may need.
	MaxBoxes = 1_000_000_000
)

// boxesFor returns how many whole boxes of size qty cover feet. Quotients
// within boxTolerance of an integer are snapped to it.
func boxesFor(feet, qty float64) (int, error) {
	q := feet / qty
	n := math.Round(q)
	if math.Abs(q-n) > boxTolerance*math.Max(1, q) {
		n = math.Ceil(q)
	}
	if n < 1 {
		n = 1
	}
	if n > MaxBoxes {
		return 0, fmt.Errorf("%w: %v ft needs more than %d boxes of %v ft", ErrInvalidFootage, feet, MaxBoxes, qty)
	}
	return int(n), nil
}

func costOf(feet float64, o PurchaseOption) (OptionCost, error) {
	c := OptionCost{Option: o, FeetPurchased: feet}
	if o.boxed() {
		boxes, err := boxesFor(feet, o.BoxQuantity)
		if err != nil {
			return OptionCost{}, err
		}
		c.Boxes = boxes
		c.FeetPurchased = float64(boxes) * o.BoxQuantity
		c.Overage = c.FeetPurchased - feet
		if math.Abs(c.Overage) <= boxTolerance*math.Max(1, feet) {
			c.FeetPurchased = feet
			c.Overage = 0
		}
	}
	c.TotalCost = c.FeetPurchased * o.PricePerFoot
	return c, nil
}

// OptimizePurchase prices footageNeeded under every option and recommends
// the cheapest. Ties go to the option listed first.
func OptimizePurchase(footageNeeded float64, options []PurchaseOption) (OptimizationResult, error) {
	if !(footageNeeded > 0) || math.IsInf(footageNeeded, 1) {
		return OptimizationResult{}, fmt.Errorf("%w: footage must be > 0, got %v", ErrInvalidFootage, footageNeeded)
	}
	if len(options) == 0 {
		return OptimizationResult{}, ErrNoOptionsAvailable
	}

	costs := make([]OptionCost, len(options))
	best := 0
	for i, o := range options {
		if err := o.Validate(); err != nil {
			return OptimizationResult{}, fmt.Errorf("option %d: %w", i+1, err)
		}
		cost, err := costOf(footageNeeded, o)
		if err != nil {
			return OptimizationResult{}, fmt.Errorf("option %d: %w", i+1, err)
		}
		costs[i] = cost
		if costs[i].TotalCost < costs[best].TotalCost {
			best = i
		}
	}

	runnerUp := -1
	for i := range costs {
		costs[i].Savings = costs[i].TotalCost - costs[best].TotalCost
		if i == best {
			continue
		}
		if runnerUp < 0 || costs[i].TotalCost < costs[runnerUp].TotalCost {
			runnerUp = i
		}
	}

	rec := Recommendation{
		Index:     best,
		Method:    costs[best].Option.Method,
		TotalCost: costs[best].TotalCost,
	}
	if runnerUp >= 0 {
		rec.SavingsVsNextBest = costs[runnerUp].TotalCost - costs[best].TotalCost
	}
	rec.Reason = reason(footageNeeded, costs[best], costs, runnerUp)

	return OptimizationResult{
		FootageNeeded: footageNeeded,
		Options:       costs,
		Recommended:   rec,
	}, nil
}

func reason(footage float64, win OptionCost, costs []OptionCost, runnerUp int) string {
	msg := fmt.Sprintf("%s is the lowest cost at $%.2f", win.Option.Method, win.TotalCost)
	if runnerUp >= 0 {
		next := costs[runnerUp]
		if next.TotalCost == win.TotalCost {
			msg += fmt.Sprintf(", tied with %s and listed first", next.Option.Method)
		} else {
			msg += fmt.Sprintf(", saving $%.2f over %s", next.TotalCost-win.TotalCost, next.Option.Method)
		}
	}
	if win.Overage > 0 {
		msg += fmt.Sprintf("; buys %d box(es) of %g ft = %g ft, %.2f ft more than the %g ft needed",
			win.Boxes, win.Option.BoxQuantity, win.FeetPurchased, win.Overage, footage)
	} else {
		msg += "; no overage"
	}
	return msg
}

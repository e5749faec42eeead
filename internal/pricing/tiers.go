package pricing

import (
	"fmt"
	"math"
)

// Trend is the direction band values must follow as the key grows.
type Trend int

const (
	// NonIncreasing tables shrink as the key grows (markups, overhead).
	NonIncreasing Trend = iota
	// NonDecreasing tables grow with the key (labor charges).
	NonDecreasing
)

// Band is one row of a tier table. Limit is the band's upper bound; the
// catch-all band uses +Inf.
type Band struct {
	Limit float64
	Value float64
}

// Table is an ordered set of bands. Inclusive selects key <= limit,
// otherwise key < limit.
type Table struct {
	Name      string
	Inclusive bool
	Trend     Trend
	Bands     []Band
}

var catchAll = math.Inf(1)

// frameMarkup maps frame wholesale cost in dollars to a retail multiplier.
var frameMarkup = Table{
	Name:  "frame markup",
	Trend: NonIncreasing,
	Bands: []Band{
		{Limit: 2.00, Value: 4.0},
		{Limit: 4.00, Value: 3.5},
		{Limit: 6.00, Value: 3.2},
		{Limit: 10.00, Value: 3.0},
		{Limit: 15.00, Value: 2.8},
		{Limit: 25.00, Value: 2.6},
		{Limit: 40.00, Value: 2.4},
		{Limit: catchAll, Value: 2.2},
	},
}

// matMarkup maps united inches to a mat retail multiplier.
var matMarkup = Table{
	Name:      "mat markup",
	Inclusive: true,
	Trend:     NonIncreasing,
	Bands: []Band{
		{Limit: 24, Value: 5.5},
		{Limit: 36, Value: 5.0},
		{Limit: 50, Value: 4.5},
		{Limit: 68, Value: 4.2},
		{Limit: 88, Value: 3.8},
		{Limit: 108, Value: 3.5},
		{Limit: catchAll, Value: 3.2},
	},
}

// glassMarkup maps united inches to a glass retail multiplier.
var glassMarkup = Table{
	Name:      "glass markup",
	Inclusive: true,
	Trend:     NonIncreasing,
	Bands: []Band{
		{Limit: 24, Value: 4.0},
		{Limit: 36, Value: 3.8},
		{Limit: 50, Value: 3.5},
		{Limit: 68, Value: 3.2},
		{Limit: 88, Value: 3.0},
		{Limit: 108, Value: 2.8},
		{Limit: catchAll, Value: 2.5},
	},
}

// matLabor maps united inches to the flat mat-cutting charge in dollars.
var matLabor = Table{
	Name:      "mat labor",
	Inclusive: true,
	Trend:     NonDecreasing,
	Bands: []Band{
		{Limit: 24, Value: 15},
		{Limit: 36, Value: 20},
		{Limit: 50, Value: 25},
		{Limit: 68, Value: 35},
		{Limit: 88, Value: 45},
		{Limit: 108, Value: 55},
		{Limit: catchAll, Value: 65},
	},
}

// assemblyLabor maps united inches to the flat fitting charge in dollars.
var assemblyLabor = Table{
	Name:      "assembly labor",
	Inclusive: true,
	Trend:     NonDecreasing,
	Bands: []Band{
		{Limit: 24, Value: 25},
		{Limit: 36, Value: 30},
		{Limit: 50, Value: 35},
		{Limit: 68, Value: 45},
		{Limit: 88, Value: 55},
		{Limit: 108, Value: 65},
		{Limit: catchAll, Value: 80},
	},
}

// overheadRate maps a subtotal in dollars to the overhead fraction.
var overheadRate = Table{
	Name:  "overhead rate",
	Trend: NonIncreasing,
	Bands: []Band{
		{Limit: 100, Value: 0.20},
		{Limit: 250, Value: 0.15},
		{Limit: 500, Value: 0.12},
		{Limit: catchAll, Value: 0.10},
	},
}

// Tables returns copies of every built-in tier table.
func Tables() []Table {
	builtin := []Table{frameMarkup, matMarkup, glassMarkup, matLabor, assemblyLabor, overheadRate}
	out := make([]Table, len(builtin))
	for i, t := range builtin {
		t.Bands = append([]Band(nil), t.Bands...)
		out[i] = t
	}
	return out
}

// FrameMarkup returns the retail multiplier for a frame wholesale cost.
func FrameMarkup(wholesaleCost float64) float64 { return frameMarkup.Resolve(wholesaleCost) }

// MatMarkup returns the mat retail multiplier for a size in united inches.
func MatMarkup(unitedInches float64) float64 { return matMarkup.Resolve(unitedInches) }

// GlassMarkup returns the glass retail multiplier for a size in united inches.
func GlassMarkup(unitedInches float64) float64 { return glassMarkup.Resolve(unitedInches) }

// MatLaborCharge returns the mat-cutting charge for a size in united inches.
func MatLaborCharge(unitedInches float64) float64 { return matLabor.Resolve(unitedInches) }

// AssemblyLaborCharge returns the fitting charge for a size in united inches.
func AssemblyLaborCharge(unitedInches float64) float64 { return assemblyLabor.Resolve(unitedInches) }

// OverheadRate returns the overhead fraction applied to a subtotal.
func OverheadRate(subtotal float64) float64 { return overheadRate.Resolve(subtotal) }

// Resolve returns the value of the first band covering key. Keys past every
// finite limit land in the catch-all band.
func (t Table) Resolve(key float64) float64 {
	if len(t.Bands) == 0 {
		return 0
	}
	for _, b := range t.Bands {
		if t.covers(b, key) {
			return b.Value
		}
	}
	return t.Bands[len(t.Bands)-1].Value
}

func (t Table) covers(b Band, key float64) bool {
	if t.Inclusive {
		return key <= b.Limit
	}
	return key < b.Limit
}

// Validate checks that limits ascend, the last band is the catch-all and
// values follow the table's trend.
func (t Table) Validate() error {
	if len(t.Bands) == 0 {
		return fmt.Errorf("%s: table has no bands", t.Name)
	}
	if last := t.Bands[len(t.Bands)-1]; !math.IsInf(last.Limit, 1) {
		return fmt.Errorf("%s: last band must be unbounded, got limit %v", t.Name, last.Limit)
	}

	for i := 1; i < len(t.Bands); i++ {
		prev, cur := t.Bands[i-1], t.Bands[i]
		if !(cur.Limit > prev.Limit) {
			return fmt.Errorf("%s: band %d limit %v does not exceed %v", t.Name, i, cur.Limit, prev.Limit)
		}
		switch t.Trend {
		case NonIncreasing:
			if cur.Value > prev.Value {
				return fmt.Errorf("%s: band %d value %v rises above %v", t.Name, i, cur.Value, prev.Value)
			}
		case NonDecreasing:
			if cur.Value < prev.Value {
				return fmt.Errorf("%s: band %d value %v falls below %v", t.Name, i, cur.Value, prev.Value)
			}
		}
	}
	return nil
}

package pricing

import (
	"fmt"
	"sort"
)

// Material names a priced component of a framing job.
type Material string

const (
	MaterialFrame   Material = "frame"
	MaterialMat     Material = "mat"
	MaterialGlass   Material = "glass"
	MaterialBacking Material = "backing"
)

// Valid reports whether m is a known material.
func (m Material) Valid() bool {
	switch m {
	case MaterialFrame, MaterialMat, MaterialGlass, MaterialBacking:
		return true
	}
	return false
}

// Rates used when a catalog lookup misses.
const (
	FallbackFramePerFoot         = 1.50
	FallbackMatPerUnitedInch     = 0.087
	FallbackGlassPerUnitedInch   = 0.10
	FallbackBackingPerSquareInch = 0.01
)

// CatalogEntry is wholesale box pricing for sheet goods.
type CatalogEntry struct {
	BoxPrice     float64 `json:"box_price" yaml:"box_price"`
	SheetsPerBox int     `json:"sheets_per_box" yaml:"sheets_per_box"`
	SheetWidth   float64 `json:"sheet_width" yaml:"sheet_width"`
	SheetHeight  float64 `json:"sheet_height" yaml:"sheet_height"`
}

// Validate reports ErrInvalidCatalogEntry for data that cannot be normalized.
func (e CatalogEntry) Validate() error {
	if !(e.BoxPrice >= 0) {
		return fmt.Errorf("%w: box price must be >= 0, got %v", ErrInvalidCatalogEntry, e.BoxPrice)
	}
	if e.SheetsPerBox <= 0 {
		return fmt.Errorf("%w: sheets per box must be >= 1, got %d", ErrInvalidCatalogEntry, e.SheetsPerBox)
	}
	if !(e.SheetWidth > 0) || !(e.SheetHeight > 0) {
		return fmt.Errorf("%w: sheet size must be positive, got %vx%v", ErrInvalidCatalogEntry, e.SheetWidth, e.SheetHeight)
	}
	return nil
}

// PricePerSheet returns the wholesale cost of a single sheet.
func (e CatalogEntry) PricePerSheet() (float64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	return e.BoxPrice / float64(e.SheetsPerBox), nil
}

// PricePerUnitedInch spreads the sheet cost over the sheet's united inches.
func (e CatalogEntry) PricePerUnitedInch() (float64, error) {
	perSheet, err := e.PricePerSheet()
	if err != nil {
		return 0, err
	}
	return perSheet / (e.SheetWidth + e.SheetHeight), nil
}

// PricePerSquareInch spreads the sheet cost over the sheet's area.
func (e CatalogEntry) PricePerSquareInch() (float64, error) {
	perSheet, err := e.PricePerSheet()
	if err != nil {
		return 0, err
	}
	return perSheet / (e.SheetWidth * e.SheetHeight), nil
}

// NormalizeCatalogEntry converts box pricing into a united-inch rate.
func NormalizeCatalogEntry(boxPrice float64, sheetsPerBox int, sheetWidth, sheetHeight float64) (float64, error) {
	return CatalogEntry{
		BoxPrice:     boxPrice,
		SheetsPerBox: sheetsPerBox,
		SheetWidth:   sheetWidth,
		SheetHeight:  sheetHeight,
	}.PricePerUnitedInch()
}

// Item is a catalog record for one material. The concrete types are
// FrameItem, MatItem, GlassItem and BackingItem.
type Item interface {
	Material() Material
	// Rate returns the wholesale rate the material calculators consume.
	Rate() (float64, error)
}

// FrameItem is a moulding sold by the foot.
type FrameItem struct {
	Key          string           `json:"key" yaml:"key"`
	Name         string           `json:"name" yaml:"name"`
	Vendor       string           `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	PricePerFoot float64          `json:"price_per_foot" yaml:"price_per_foot"`
	Options      []PurchaseOption `json:"options,omitempty" yaml:"options,omitempty"`
}

func (FrameItem) Material() Material { return MaterialFrame }

func (f FrameItem) Rate() (float64, error) {
	if !(f.PricePerFoot >= 0) {
		return 0, fmt.Errorf("%w: frame %q price per foot must be >= 0, got %v", ErrInvalidCatalogEntry, f.Key, f.PricePerFoot)
	}
	return f.PricePerFoot, nil
}

// MatItem is matboard priced per united inch.
type MatItem struct {
	Key   string       `json:"key" yaml:"key"`
	Name  string       `json:"name" yaml:"name"`
	Entry CatalogEntry `json:"entry" yaml:"entry"`
}

func (MatItem) Material() Material { return MaterialMat }
func (m MatItem) Rate() (float64, error) { return m.Entry.PricePerUnitedInch() }

// GlassItem is glazing priced per united inch.
type GlassItem struct {
	Key   string       `json:"key" yaml:"key"`
	Name  string       `json:"name" yaml:"name"`
	Entry CatalogEntry `json:"entry" yaml:"entry"`
}

func (GlassItem) Material() Material { return MaterialGlass }
func (g GlassItem) Rate() (float64, error) { return g.Entry.PricePerUnitedInch() }

// BackingItem is backing board priced per square inch.
type BackingItem struct {
	Key   string       `json:"key" yaml:"key"`
	Name  string       `json:"name" yaml:"name"`
	Entry CatalogEntry `json:"entry" yaml:"entry"`
}

func (BackingItem) Material() Material { return MaterialBacking }
func (b BackingItem) Rate() (float64, error) { return b.Entry.PricePerSquareInch() }

// Snapshot is a read-only view of the catalog, resolved by the caller
// before pricing.
type Snapshot struct {
	Frames  map[string]FrameItem
	Mats    map[string]MatItem
	Glass   map[string]GlassItem
	Backing map[string]BackingItem
}

// Lookup resolves key within the material's section of the snapshot.
func (s Snapshot) Lookup(m Material, key string) (Item, bool) {
	switch m {
	case MaterialFrame:
		it, ok := s.Frames[key]
		return it, ok
	case MaterialMat:
		it, ok := s.Mats[key]
		return it, ok
	case MaterialGlass:
		it, ok := s.Glass[key]
		return it, ok
	case MaterialBacking:
		it, ok := s.Backing[key]
		return it, ok
	}
	return nil, false
}

// Keys returns the sorted keys present for a material.
func (s Snapshot) Keys(m Material) []string {
	var keys []string
	switch m {
	case MaterialFrame:
		for k := range s.Frames {
			keys = append(keys, k)
		}
	case MaterialMat:
		for k := range s.Mats {
			keys = append(keys, k)
		}
	case MaterialGlass:
		for k := range s.Glass {
			keys = append(keys, k)
		}
	case MaterialBacking:
		for k := range s.Backing {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Selection names the catalog keys chosen for a job.
type Selection struct {
	FrameKey   string `json:"frame_key,omitempty" yaml:"frame_key,omitempty"`
	MatKey     string `json:"mat_key,omitempty" yaml:"mat_key,omitempty"`
	GlassKey   string `json:"glass_key,omitempty" yaml:"glass_key,omitempty"`
	BackingKey string `json:"backing_key,omitempty" yaml:"backing_key,omitempty"`
}

// Rates are per-material wholesale rates fed to the calculators.
type Rates struct {
	FramePerFoot         float64 `json:"frame_per_foot" yaml:"frame_per_foot" validate:"gte=0"`
	MatPerUnitedInch     float64 `json:"mat_per_united_inch" yaml:"mat_per_united_inch" validate:"gte=0"`
	GlassPerUnitedInch   float64 `json:"glass_per_united_inch" yaml:"glass_per_united_inch" validate:"gte=0"`
	BackingPerSquareInch float64 `json:"backing_per_square_inch" yaml:"backing_per_square_inch" validate:"gte=0"`
}

// Fallback records a catalog miss that was priced at a default rate.
type Fallback struct {
	Material Material `json:"material" yaml:"material"`
	Key      string   `json:"key" yaml:"key"`
	Rate     float64  `json:"rate" yaml:"rate"`
}

func (f Fallback) String() string {
	return fmt.Sprintf("%s %q not in catalog, using default rate %v", f.Material, f.Key, f.Rate)
}

// FallbackRate returns the default wholesale rate for a material.
func FallbackRate(m Material) float64 {
	switch m {
	case MaterialFrame:
		return FallbackFramePerFoot
	case MaterialMat:
		return FallbackMatPerUnitedInch
	case MaterialGlass:
		return FallbackGlassPerUnitedInch
	case MaterialBacking:
		return FallbackBackingPerSquareInch
	}
	return 0
}

// ResolveRates looks up each selected key. An empty key leaves the rate at
// zero. A miss falls back to the material's default rate and is reported; a
// malformed entry is an error. The estimate is degraded whenever the returned
// slice is non-empty.
func (s Snapshot) ResolveRates(sel Selection) (Rates, []Fallback, error) {
	var (
		rates     Rates
		fallbacks []Fallback
	)

	resolve := func(m Material, key string, dst *float64) error {
		if key == "" {
			return nil
		}
		item, ok := s.Lookup(m, key)
		if !ok {
			*dst = FallbackRate(m)
			fallbacks = append(fallbacks, Fallback{Material: m, Key: key, Rate: *dst})
			return nil
		}
		rate, err := item.Rate()
		if err != nil {
			return fmt.Errorf("resolve %s %q: %w", m, key, err)
		}
		*dst = rate
		return nil
	}

	if err := resolve(MaterialFrame, sel.FrameKey, &rates.FramePerFoot); err != nil {
		return Rates{}, nil, err
	}
	if err := resolve(MaterialMat, sel.MatKey, &rates.MatPerUnitedInch); err != nil {
		return Rates{}, nil, err
	}
	if err := resolve(MaterialGlass, sel.GlassKey, &rates.GlassPerUnitedInch); err != nil {
		return Rates{}, nil, err
	}
	if err := resolve(MaterialBacking, sel.BackingKey, &rates.BackingPerSquareInch); err != nil {
		return Rates{}, nil, err
	}

	return rates, fallbacks, nil
}

package pricing

import "fmt"

// Geometry holds the finished size of a framed piece.
type Geometry struct {
	ArtworkWidth   float64 `json:"artwork_width" yaml:"artwork_width"`
	ArtworkHeight  float64 `json:"artwork_height" yaml:"artwork_height"`
	MatWidth       float64 `json:"mat_width" yaml:"mat_width"`
	FinishedWidth  float64 `json:"finished_width" yaml:"finished_width"`
	FinishedHeight float64 `json:"finished_height" yaml:"finished_height"`
	UnitedInches   float64 `json:"united_inches" yaml:"united_inches"`
}

// Area returns the finished area in square inches.
func (g Geometry) Area() float64 {
	return g.FinishedWidth * g.FinishedHeight
}

// Measure computes finished dimensions and united inches for artwork
// surrounded by a symmetric mat border. A matWidth of 0 means no mat.
func Measure(artworkWidth, artworkHeight, matWidth float64) (Geometry, error) {
	if !(artworkWidth > 0) {
		return Geometry{}, fmt.Errorf("%w: artwork width must be > 0, got %v", ErrInvalidDimension, artworkWidth)
	}
	if !(artworkHeight > 0) {
		return Geometry{}, fmt.Errorf("%w: artwork height must be > 0, got %v", ErrInvalidDimension, artworkHeight)
	}
	if !(matWidth >= 0) {
		return Geometry{}, fmt.Errorf("%w: mat width must be >= 0, got %v", ErrInvalidDimension, matWidth)
	}

	finishedWidth := artworkWidth + 2*matWidth
	finishedHeight := artworkHeight + 2*matWidth

	return Geometry{
		ArtworkWidth:   artworkWidth,
		ArtworkHeight:  artworkHeight,
		MatWidth:       matWidth,
		FinishedWidth:  finishedWidth,
		FinishedHeight: finishedHeight,
		UnitedInches:   finishedWidth + finishedHeight,
	}, nil
}

// JobDimensions describes the artwork and the stack of mat borders around it.
type JobDimensions struct {
	ArtworkWidth  float64   `json:"artwork_width" yaml:"artwork_width" validate:"gt=0"`
	ArtworkHeight float64   `json:"artwork_height" yaml:"artwork_height" validate:"gt=0"`
	MatWidths     []float64 `json:"mat_widths,omitempty" yaml:"mat_widths,omitempty" validate:"dive,gte=0"`
}

// MatLayers returns the number of mat boards in the job. Zero-width borders
// are not boards.
func (d JobDimensions) MatLayers() int {
	n := 0
	for _, w := range d.MatWidths {
		if w > 0 {
			n++
		}
	}
	return n
}

// Geometry measures the job. The widest border sets the outer size; narrower
// layers sit inside its window.
func (d JobDimensions) Geometry() (Geometry, error) {
	widest := 0.0
	for i, w := range d.MatWidths {
		if !(w >= 0) {
			return Geometry{}, fmt.Errorf("%w: mat width #%d must be >= 0, got %v", ErrInvalidDimension, i+1, w)
		}
		if w > widest {
			widest = w
		}
	}
	return Measure(d.ArtworkWidth, d.ArtworkHeight, widest)
}

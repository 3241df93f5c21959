package chart

import (
	"math"

	"github.com/bobmcallan/strata/internal/models"
)

// Span is the value interval [Y0, Y1] a bar covers. Y0 <= Y1 always.
type Span struct {
	Y0 float64 `json:"y0"`
	Y1 float64 `json:"y1"`
}

// StackLayout holds per-series, per-position spans in stacking order plus
// the extrema of the cumulative sums.
type StackLayout struct {
	Spans [][]Span `json:"spans"`
	YMin  float64  `json:"y_min"`
	YMax  float64  `json:"y_max"`
}

// Stack computes signed cumulative offsets. For every x position the
// positive and negative running totals start at zero and grow away from
// the baseline in series order; the two totals never interact. YMin is the
// lowest negative total seen at any position, YMax the highest positive one.
// All series must have the same length (see Validate).
func Stack(series []models.Series) *StackLayout {
	layout := &StackLayout{Spans: make([][]Span, len(series))}
	if len(series) == 0 {
		return layout
	}
	n := len(series[0])
	for s := range series {
		layout.Spans[s] = make([]Span, n)
	}

	for i := 0; i < n; i++ {
		posOffset, negOffset := 0.0, 0.0
		for s := range series {
			v := series[s][i].Y
			if v >= 0 {
				layout.Spans[s][i] = Span{Y0: posOffset, Y1: posOffset + v}
				posOffset += v
			} else {
				layout.Spans[s][i] = Span{Y0: negOffset + v, Y1: negOffset}
				negOffset += v
			}
		}
		layout.YMin = math.Min(layout.YMin, negOffset)
		layout.YMax = math.Max(layout.YMax, posOffset)
	}
	return layout
}

// Extent returns the raw min and max y over all points. An empty input
// returns (0, 0).
func Extent(series []models.Series) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, p := range s {
			lo = math.Min(lo, p.Y)
			hi = math.Max(hi, p.Y)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

// BarGeometry converts a span to pixel top and height under scale y.
func BarGeometry(span Span, y *LinearScale) (top, height float64) {
	top = y.Map(math.Max(span.Y0, span.Y1))
	height = math.Abs(y.Map(span.Y0) - y.Map(span.Y1))
	return top, height
}

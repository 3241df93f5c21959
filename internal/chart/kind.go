package chart

import (
	"fmt"
	"math"

	"github.com/bobmcallan/strata/internal/models"
)

// GeometryContext is everything a geometry function may read. Series, Keys
// and Entries are in presentation order.
type GeometryContext struct {
	Series   []models.Series
	Keys     []SeriesKey
	Entries  []models.LegendEntry
	Layout   *StackLayout
	Y        *LinearScale
	X        *BandScale
	Width    float64 // plot area
	Height   float64
	Snapshot int // x position shown by single-snapshot kinds
}

// Kind is the tagged variant for a chart type. Each kind supplies its own
// value domain, scale range and geometry.
type Kind struct {
	Type models.ChartType

	// Stacked kinds draw cumulative spans and a zero baseline.
	Stacked bool

	// ReverseOrder presents series last-first, in the legend and in the stack.
	ReverseOrder bool

	// LineIcon enables the dashed line overlay on legend icons in high contrast.
	LineIcon bool

	// SliceRows binds each legend row to a single slice datum rather than a
	// series group, and fills its value cell at render time.
	SliceRows bool

	Domain   func(layout *StackLayout, series []models.Series, snapshot int) [2]float64
	Range    func(width, height float64) [2]float64
	Geometry func(ctx GeometryContext) []Mark
}

var kinds = map[models.ChartType]Kind{
	models.ChartTypeBar: {
		Type:         models.ChartTypeBar,
		Stacked:      true,
		ReverseOrder: true,
		Domain:       stackDomain,
		Range:        verticalRange,
		Geometry:     barGeometry,
	},
	models.ChartTypeStackedBar: {
		Type:     models.ChartTypeStackedBar,
		Stacked:  true,
		Domain:   stackDomain,
		Range:    verticalRange,
		Geometry: barGeometry,
	},
	models.ChartTypeLine: {
		Type:     models.ChartTypeLine,
		LineIcon: true,
		Domain:   rawDomain,
		Range:    verticalRange,
		Geometry: lineGeometry,
	},
	models.ChartTypePie: {
		Type:      models.ChartTypePie,
		SliceRows: true,
		Domain:    pieDomain,
		Range:     angleRange,
		Geometry:  pieGeometry,
	},
}

// KindFor returns the variant for t. An empty type selects bar.
func KindFor(t models.ChartType) (Kind, error) {
	if t == "" {
		t = models.ChartTypeBar
	}
	k, ok := kinds[t]
	if !ok {
		return Kind{}, fmt.Errorf("%w: %q", ErrUnknownChartType, t)
	}
	return k, nil
}

func stackDomain(layout *StackLayout, _ []models.Series, _ int) [2]float64 {
	return [2]float64{layout.YMin, layout.YMax}
}

func rawDomain(_ *StackLayout, series []models.Series, _ int) [2]float64 {
	lo, hi := Extent(series)
	return [2]float64{lo, hi}
}

// pieDomain is the total of the non-negative slice values at the snapshot.
func pieDomain(_ *StackLayout, series []models.Series, snapshot int) [2]float64 {
	total := 0.0
	for _, s := range series {
		total += sliceValue(s, snapshot)
	}
	return [2]float64{0, total}
}

func sliceValue(s models.Series, snapshot int) float64 {
	if snapshot < 0 || snapshot >= len(s) {
		return 0
	}
	return math.Max(s[snapshot].Y, 0)
}

// verticalRange puts the domain minimum at the bottom of the plot.
func verticalRange(_, height float64) [2]float64 {
	return [2]float64{height, 0}
}

func angleRange(_, _ float64) [2]float64 {
	return [2]float64{0, 2 * math.Pi}
}

// barGeometry emits one rect per series per position, series-major.
func barGeometry(ctx GeometryContext) []Mark {
	var marks []Mark
	for s, series := range ctx.Series {
		for i, p := range series {
			span := ctx.Layout.Spans[s][i]
			top, height := BarGeometry(span, ctx.Y)
			marks = append(marks, Mark{
				Key:    MarkKey{SeriesKey: ctx.Keys[s], Index: i},
				Shape:  ShapeBar,
				Series: s,
				Fill:   ctx.Entries[s].Color,
				Point:  p,
				X:      ctx.X.Start(i),
				Y:      top,
				Width:  ctx.X.Bandwidth(),
				Height: height,
				Span:   span,
				Value:  p.Y,
			})
		}
	}
	return marks
}

// lineGeometry emits a path per series followed by its vertices.
func lineGeometry(ctx GeometryContext) []Mark {
	var marks []Mark
	for s, series := range ctx.Series {
		points := make([][2]float64, len(series))
		for i, p := range series {
			points[i] = [2]float64{ctx.X.Center(i), ctx.Y.Map(p.Y)}
		}
		marks = append(marks, Mark{
			Key:    MarkKey{SeriesKey: ctx.Keys[s], Index: -1},
			Shape:  ShapeLine,
			Series: s,
			Fill:   ctx.Entries[s].Color,
			Points: points,
		})
		for i, p := range series {
			marks = append(marks, Mark{
				Key:    MarkKey{SeriesKey: ctx.Keys[s], Index: i},
				Shape:  ShapeVertex,
				Series: s,
				Fill:   ctx.Entries[s].Color,
				Point:  p,
				CX:     points[i][0],
				CY:     points[i][1],
				Radius: vertexRadius,
				Value:  p.Y,
			})
		}
	}
	return marks
}

// pieGeometry emits one wedge per series for the snapshot position.
func pieGeometry(ctx GeometryContext) []Mark {
	var marks []Mark
	cx, cy := ctx.Width/2, ctx.Height/2
	r := math.Min(ctx.Width, ctx.Height) / 2
	acc := 0.0
	for s, series := range ctx.Series {
		v := sliceValue(series, ctx.Snapshot)
		var p models.DataPoint
		if ctx.Snapshot >= 0 && ctx.Snapshot < len(series) {
			p = series[ctx.Snapshot]
		}
		marks = append(marks, Mark{
			Key:        MarkKey{SeriesKey: ctx.Keys[s], Index: -1},
			Shape:      ShapeSlice,
			Series:     s,
			Fill:       ctx.Entries[s].Color,
			Point:      p,
			CX:         cx,
			CY:         cy,
			Radius:     r,
			StartAngle: ctx.Y.Map(acc),
			EndAngle:   ctx.Y.Map(acc + v),
			Value:      v,
		})
		acc += v
	}
	return marks
}

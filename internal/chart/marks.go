package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bobmcallan/strata/internal/models"
)

// SeriesKey identifies a series independently of its position in the
// dataset. Dup disambiguates series that repeat the same (ID, Stack) pair.
type SeriesKey struct {
	ID    int
	Stack int
	Dup   int
}

// MarkKey identifies one drawn primitive. Index is -1 for marks that cover
// a whole series (line paths, pie slices).
type MarkKey struct {
	SeriesKey
	Index int
}

// seriesKeys derives stable keys in dataset order.
func seriesKeys(ds models.Dataset) []SeriesKey {
	seen := make(map[[2]int]int)
	keys := make([]SeriesKey, len(ds))
	for s, series := range ds {
		k := SeriesKey{}
		if len(series) > 0 {
			k.ID, k.Stack = series[0].ID, series[0].Index
		}
		pair := [2]int{k.ID, k.Stack}
		k.Dup = seen[pair]
		seen[pair]++
		keys[s] = k
	}
	return keys
}

// Shape tags the variant of a Mark.
type Shape int

const (
	ShapeBar Shape = iota
	ShapeVertex
	ShapeLine
	ShapeSlice
)

const vertexRadius = 3

// Mark is the computed geometry of one primitive in plot coordinates.
// Which fields are meaningful depends on Shape.
type Mark struct {
	Key    MarkKey
	Shape  Shape
	Series int // position in presentation order
	Fill   string
	Point  models.DataPoint

	// ShapeBar
	X, Y, Width, Height float64
	Span                Span

	// ShapeLine
	Points [][2]float64

	// ShapeVertex and ShapeSlice (centre), ShapeSlice angles in radians
	CX, CY, Radius       float64
	StartAngle, EndAngle float64
	Value                float64
}

// Attr is one rendered attribute.
type Attr struct {
	Name  string
	Value string
}

// Tag returns the element name used for the mark.
func (m Mark) Tag() string {
	switch m.Shape {
	case ShapeBar:
		return "rect"
	case ShapeVertex:
		return "circle"
	}
	return "path"
}

// Class returns the class attribute of the mark.
func (m Mark) Class() string {
	switch m.Shape {
	case ShapeBar:
		if m.Value < 0 {
			return "bar negative"
		}
		return "bar"
	case ShapeVertex:
		return "vertex"
	case ShapeLine:
		return "line"
	}
	return "slice"
}

// Attrs returns the geometry and colour attributes as plain numeric strings.
func (m Mark) Attrs() []Attr {
	switch m.Shape {
	case ShapeBar:
		return []Attr{
			{"x", Num(m.X)},
			{"y", Num(m.Y)},
			{"width", Num(m.Width)},
			{"height", Num(m.Height)},
			{"fill", m.Fill},
		}
	case ShapeVertex:
		return []Attr{
			{"cx", Num(m.CX)},
			{"cy", Num(m.CY)},
			{"r", Num(m.Radius)},
			{"fill", m.Fill},
		}
	case ShapeLine:
		return []Attr{
			{"d", polyline(m.Points)},
			{"fill", "none"},
			{"stroke", m.Fill},
		}
	}
	return []Attr{
		{"d", arcPath(m.CX, m.CY, m.Radius, m.StartAngle, m.EndAngle)},
		{"fill", m.Fill},
	}
}

// Num formats a pixel value as a plain decimal string, rounded to 1e-6 so
// float noise never leaks into attributes. Negative zero prints as "0".
func Num(v float64) string {
	v = math.Round(v*1e6) / 1e6
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func polyline(points [][2]float64) string {
	var sb strings.Builder
	for i, p := range points {
		if i == 0 {
			sb.WriteString("M")
		} else {
			sb.WriteString("L")
		}
		sb.WriteString(Num(p[0]))
		sb.WriteString(",")
		sb.WriteString(Num(p[1]))
	}
	return sb.String()
}

// arcPath draws a pie wedge. Angles run clockwise from twelve o'clock.
func arcPath(cx, cy, r, a0, a1 float64) string {
	sweep := a1 - a0
	if sweep <= 0 || r <= 0 {
		return fmt.Sprintf("M%s,%sZ", Num(cx), Num(cy))
	}
	if sweep >= 2*math.Pi-1e-9 {
		// a single arc cannot close on itself; draw two halves
		return fmt.Sprintf("M%s,%sA%s,%s 0 1,1 %s,%sA%s,%s 0 1,1 %s,%sZ",
			Num(cx), Num(cy-r),
			Num(r), Num(r), Num(cx), Num(cy+r),
			Num(r), Num(r), Num(cx), Num(cy-r))
	}
	x0, y0 := cx+r*math.Sin(a0), cy-r*math.Cos(a0)
	x1, y1 := cx+r*math.Sin(a1), cy-r*math.Cos(a1)
	large := 0
	if sweep > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M%s,%sL%s,%sA%s,%s 0 %d,1 %s,%sZ",
		Num(cx), Num(cy), Num(x0), Num(y0), Num(r), Num(r), large, Num(x1), Num(y1))
}

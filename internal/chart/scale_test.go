package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/strata/internal/models"
)

func TestLinearScale_Map(t *testing.T) {
	y := NewLinearScale([2]float64{-30, 20}, [2]float64{300, 0})
	assert.Equal(t, 300.0, y.Map(-30))
	assert.Equal(t, 0.0, y.Map(20))
	assert.Equal(t, 120.0, y.Map(0))
	assert.Equal(t, 360.0, y.Map(-40))
	assert.Equal(t, -40.0, y.Invert(360))
}

func TestLinearScale_DegenerateDomain(t *testing.T) {
	y := NewLinearScale([2]float64{0, 0}, [2]float64{300, 0})
	assert.Equal(t, 300.0, y.Map(0))
	assert.Equal(t, 300.0, y.Map(42))
	assert.Equal(t, 300.0, y.Baseline())

	f := Build([2]float64{0, 10}, [2]float64{0, 100})
	assert.Equal(t, 50.0, f(5))
}

func TestLinearScale_Baseline(t *testing.T) {
	tests := []struct {
		name   string
		domain [2]float64
		want   float64
	}{
		{"spans zero", [2]float64{-10, 30}, 75},
		{"all positive", [2]float64{5, 25}, 100},
		{"all negative", [2]float64{-25, -5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := NewLinearScale(tt.domain, [2]float64{100, 0})
			assert.Equal(t, tt.want, y.Baseline())
		})
	}
}

func TestBandScale(t *testing.T) {
	x := NewBandScale(4, [2]float64{0, 400}, 0.1)
	assert.Equal(t, 4, x.Len())
	assert.Equal(t, 100.0, x.Step())
	assert.InDelta(t, 90.0, x.Bandwidth(), 1e-9)
	assert.InDelta(t, 105.0, x.Start(1), 1e-9)
	assert.Equal(t, 150.0, x.Center(1))

	assert.Equal(t, 0, x.Nearest(-5))
	assert.Equal(t, 2, x.Nearest(250))
	assert.Equal(t, 3, x.Nearest(400))

	empty := NewBandScale(0, [2]float64{0, 400}, 0.1)
	assert.Equal(t, -1, empty.Nearest(10))
	assert.Equal(t, 0.0, empty.Step())
}

func TestStack_NoPositiveValues(t *testing.T) {
	layout := Stack([]models.Series{series(1, -1, -2), series(2, -3, -4)})
	assert.Equal(t, 0.0, layout.YMax)
	assert.Equal(t, -6.0, layout.YMin)
	assert.Equal(t, Span{Y0: -6, Y1: -2}, layout.Spans[1][1])
}

func TestStack_Empty(t *testing.T) {
	layout := Stack(nil)
	assert.Empty(t, layout.Spans)
	assert.Equal(t, 0.0, layout.YMin)

	lo, hi := Extent(nil)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)
}

func TestBarGeometry(t *testing.T) {
	y := NewLinearScale([2]float64{-20, 20}, [2]float64{300, 0})
	top, height := BarGeometry(Span{Y0: -20, Y1: 0}, y)
	assert.Equal(t, 150.0, top)
	assert.Equal(t, 150.0, height)
}

func TestNum(t *testing.T) {
	assert.Equal(t, "0", Num(-0.0000001))
	assert.Equal(t, "12.5", Num(12.5))
	assert.Equal(t, "0.333333", Num(1.0/3))
	assert.Equal(t, "-4", Num(-4))
}

func TestArcPath(t *testing.T) {
	assert.Equal(t, "M10,10Z", arcPath(10, 10, 5, 1, 1))
	assert.Equal(t, "M10,10L10,5A5,5 0 0,1 15,10Z", arcPath(10, 10, 5, 0, 1.5707963267948966))
	assert.Contains(t, arcPath(10, 10, 5, 0, 6.283185307179586), "A5,5 0 1,1 10,15")
}

package chart

import "math"

// LinearScale maps a numeric domain onto a pixel range. Values outside the
// domain extrapolate linearly; nothing is clamped.
type LinearScale struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinearScale builds a scale from domain to rng. A degenerate domain
// (d0 == d1) maps every value to rng[0].
func NewLinearScale(domain, rng [2]float64) *LinearScale {
	return &LinearScale{d0: domain[0], d1: domain[1], r0: rng[0], r1: rng[1]}
}

// Build returns the mapping function for domain -> rng.
func Build(domain, rng [2]float64) func(float64) float64 {
	return NewLinearScale(domain, rng).Map
}

// Map returns the pixel position of v.
func (s *LinearScale) Map(v float64) float64 {
	if s.d0 == s.d1 {
		return s.r0
	}
	// multiply before dividing so integral inputs stay exact
	return s.r0 + (v-s.d0)*(s.r1-s.r0)/(s.d1-s.d0)
}

// Invert returns the domain value at pixel px.
func (s *LinearScale) Invert(px float64) float64 {
	if s.r0 == s.r1 {
		return s.d0
	}
	return s.d0 + (px-s.r0)*(s.d1-s.d0)/(s.r1-s.r0)
}

// Domain returns the domain bounds.
func (s *LinearScale) Domain() [2]float64 {
	return [2]float64{s.d0, s.d1}
}

// Range returns the pixel range.
func (s *LinearScale) Range() [2]float64 {
	return [2]float64{s.r0, s.r1}
}

// Baseline returns the pixel of the zero baseline: Map(0) when the domain
// spans zero, otherwise the pixel of the domain bound nearest zero.
func (s *LinearScale) Baseline() float64 {
	lo, hi := math.Min(s.d0, s.d1), math.Max(s.d0, s.d1)
	switch {
	case lo <= 0 && hi >= 0:
		return s.Map(0)
	case hi < 0:
		return s.Map(hi)
	default:
		return s.Map(lo)
	}
}

// BandScale splits a pixel range into n equal bands, one per x position.
type BandScale struct {
	n       int
	r0, r1  float64
	padding float64
}

// NewBandScale creates n bands over rng. padding is the fraction of each
// step left empty, split evenly on both sides of the band.
func NewBandScale(n int, rng [2]float64, padding float64) *BandScale {
	if padding < 0 {
		padding = 0
	}
	if padding >= 1 {
		padding = 0.9
	}
	return &BandScale{n: n, r0: rng[0], r1: rng[1], padding: padding}
}

// Len returns the number of bands.
func (b *BandScale) Len() int {
	return b.n
}

// Step returns the distance between band starts.
func (b *BandScale) Step() float64 {
	if b.n == 0 {
		return 0
	}
	return (b.r1 - b.r0) / float64(b.n)
}

// Bandwidth returns the drawn width of one band.
func (b *BandScale) Bandwidth() float64 {
	return b.Step() * (1 - b.padding)
}

// Start returns the left edge of band i.
func (b *BandScale) Start(i int) float64 {
	step := b.Step()
	return b.r0 + step*float64(i) + step*b.padding/2
}

// Center returns the midpoint of band i.
func (b *BandScale) Center(i int) float64 {
	return b.r0 + b.Step()*(float64(i)+0.5)
}

// Nearest returns the band whose centre is closest to px, clamped to
// [0, n). It returns -1 when there are no bands.
func (b *BandScale) Nearest(px float64) int {
	if b.n == 0 {
		return -1
	}
	step := b.Step()
	if step == 0 {
		return 0
	}
	i := int(math.Floor((px - b.r0) / step))
	if i < 0 {
		return 0
	}
	if i >= b.n {
		return b.n - 1
	}
	return i
}

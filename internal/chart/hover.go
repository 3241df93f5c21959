package chart

import (
	"github.com/bobmcallan/strata/internal/interfaces"
)

// HoverContext is the input to NewHover.
type HoverContext struct {
	Scene     interfaces.SceneGraph
	Legend    *Legend
	Formatter interfaces.Formatter
	Values    ValueFormat
	Length    int // number of x positions
}

// Hover writes the hovered position into the legend: the date label and
// one value cell per row. Only the current index is retained.
type Hover struct {
	scene     interfaces.SceneGraph
	legend    *Legend
	formatter interfaces.Formatter
	values    ValueFormat
	length    int
	current   int
}

// NewHover creates a coordinator with nothing displayed.
func NewHover(ctx HoverContext) *Hover {
	return &Hover{
		scene:     ctx.Scene,
		legend:    ctx.Legend,
		formatter: ctx.Formatter,
		values:    ctx.Values,
		length:    ctx.Length,
		current:   -1,
	}
}

// OnHover displays position i. Every call overwrites the previous readout.
func (h *Hover) OnHover(i int) error {
	if h.legend == nil || h.legend.Container() == nil {
		return ErrDestroyed
	}
	if i < 0 || i >= h.length {
		return invariantError(ErrHoverIndex, -1, i, "valid range is [0, %d)", h.length)
	}
	container := h.legend.Container()

	if date := h.legend.DateNode(); date != nil {
		if p, ok := rowPoint(h.scene.Datum(date), i); ok {
			h.scene.SetText(date, h.formatter.FormatDate(p.X))
		}
	}
	for _, td := range h.scene.SelectAll(container, "td") {
		if p, ok := rowPoint(h.scene.Datum(td), i); ok {
			h.scene.SetText(td, h.values.format(h.formatter, p.Y))
		}
	}
	h.current = i
	return nil
}

// Current returns the displayed index, or -1.
func (h *Hover) Current() int {
	return h.current
}

// Destroy drops the legend reference.
func (h *Hover) Destroy() {
	h.legend = nil
	h.current = -1
	h.length = 0
}

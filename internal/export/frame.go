// Package export renders a live chart as a standalone SVG or PNG image.
package export

import (
	"strconv"
	"strings"

	"github.com/bobmcallan/strata/internal/chart"
	"github.com/bobmcallan/strata/internal/models"
)

// Frame is a detached copy of what a chart currently shows.
type Frame struct {
	Type         models.ChartType
	Width        float64
	Height       float64
	Margin       models.Margin
	HighContrast bool
	Stacked      bool
	Baseline     float64
	Marks        []chart.Mark
	Entries      []models.LegendEntry
	Series       []models.Series
	Legend       []models.LegendRowView
	DateLabel    string
}

// FrameOf captures the current state of c.
func FrameOf(c *chart.Controller) (Frame, error) {
	st, err := c.State()
	if err != nil {
		return Frame{}, err
	}
	width, height, margin := c.Size()
	return Frame{
		Type:         st.Type,
		Width:        width,
		Height:       height,
		Margin:       margin,
		HighContrast: st.HighContrast,
		Stacked:      c.Kind().Stacked,
		Baseline:     st.Baseline,
		Marks:        c.Marks(),
		Entries:      c.Entries(),
		Series:       c.Series(),
		Legend:       st.Legend,
		DateLabel:    st.DateLabel,
	}, nil
}

// fill returns the colour of a mark in the frame's mode.
func (f Frame) fill(m chart.Mark) string {
	if m.Series < 0 || m.Series >= len(f.Entries) {
		return m.Fill
	}
	return f.Entries[m.Series].Fill(f.HighContrast)
}

// dash returns the stroke dash pattern for a line mark, "" when solid.
func (f Frame) dash(m chart.Mark) string {
	if !f.HighContrast || m.Series < 0 || m.Series >= len(f.Entries) {
		return ""
	}
	if d := f.Entries[m.Series].DashArray(); d != "0" {
		return d
	}
	return ""
}

func parseDash(s string) []float64 {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		if v, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err == nil && v > 0 {
			out = append(out, v)
		}
	}
	return out
}

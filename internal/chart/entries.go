package chart

import (
	"fmt"

	"github.com/bobmcallan/strata/internal/models"
)

// DefaultPalette is used when neither the points nor the configuration
// supply series colours. Alt colours are the high-contrast counterparts.
var DefaultPalette = []models.SeriesStyle{
	{Color: "#4A90D9", AltColor: "#000000", AltLineStyle: "0"},
	{Color: "#50C878", AltColor: "#E69F00", AltLineStyle: "4,2"},
	{Color: "#FFB347", AltColor: "#0072B2", AltLineStyle: "2,2"},
	{Color: "#9B59B6", AltColor: "#D55E00", AltLineStyle: "6,2,2,2"},
	{Color: "#E15759", AltColor: "#CC79A7", AltLineStyle: "8,4"},
	{Color: "#76B7B2", AltColor: "#009E73", AltLineStyle: "1,3"},
}

// resolveEntries derives one legend entry per series in dataset order. Point
// hints win over the palette; a missing name becomes "Series N".
func resolveEntries(ds models.Dataset, palette []models.SeriesStyle) []models.LegendEntry {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	entries := make([]models.LegendEntry, len(ds))
	for s, series := range ds {
		slot := palette[s%len(palette)]
		e := models.LegendEntry{
			Color:        slot.Color,
			AltColor:     slot.AltColor,
			AltLineStyle: slot.AltLineStyle,
			Name:         slot.Name,
		}
		if len(series) > 0 {
			p := series[0]
			if p.Color != "" {
				// Without its own alt colour a point colour falls back to itself.
				e.Color = p.Color
				e.AltColor = ""
			}
			if p.AltColor != "" {
				e.AltColor = p.AltColor
			}
			if p.AltLineStyle != "" {
				e.AltLineStyle = p.AltLineStyle
			}
			if p.Name != "" {
				e.Name = p.Name
			}
		}
		if e.Name == "" {
			e.Name = fmt.Sprintf("Series %d", s+1)
		}
		entries[s] = e
	}
	return entries
}

func reversedEntries(entries []models.LegendEntry) []models.LegendEntry {
	out := make([]models.LegendEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

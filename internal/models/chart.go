// Package models defines data structures for Strata
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ChartType selects the chart kind rendered for a dataset
type ChartType string

const (
	ChartTypeBar        ChartType = "bar"
	ChartTypeStackedBar ChartType = "stackedBar"
	ChartTypeLine       ChartType = "line"
	ChartTypePie        ChartType = "pie"
)

// Valid reports whether t is one of the known chart types.
func (t ChartType) Valid() bool {
	switch t {
	case ChartTypeBar, ChartTypeStackedBar, ChartTypeLine, ChartTypePie:
		return true
	}
	return false
}

// xLayouts are the accepted string layouts for temporal x keys, most specific first.
var xLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01",
}

// XValue is the x key of a data point: either a timestamp or an ordinal label.
type XValue struct {
	Time     time.Time
	Ordinal  string
	Temporal bool
}

// TimeX returns a temporal x key.
func TimeX(t time.Time) XValue {
	return XValue{Time: t.UTC(), Temporal: true}
}

// OrdinalX returns an ordinal x key.
func OrdinalX(label string) XValue {
	return XValue{Ordinal: label}
}

// Equal reports whether two x keys address the same position.
func (x XValue) Equal(o XValue) bool {
	if x.Temporal != o.Temporal {
		return false
	}
	if x.Temporal {
		return x.Time.Equal(o.Time)
	}
	return x.Ordinal == o.Ordinal
}

// String returns the canonical text form of the key.
func (x XValue) String() string {
	if x.Temporal {
		return x.Time.Format(time.RFC3339)
	}
	return x.Ordinal
}

// MarshalJSON encodes temporal keys as RFC3339 strings and ordinals as plain strings.
func (x XValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(x.String())
}

// UnmarshalJSON accepts a unix-millisecond number, a date string or an ordinal string.
func (x *XValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("x value is required")
	}

	if data[0] != '"' {
		ms, err := parseUnixMilli(string(data))
		if err != nil {
			return err
		}
		*x = TimeX(time.UnixMilli(ms))
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*x = ParseX(s)
	return nil
}

// parseUnixMilli reads a JSON number of milliseconds since the epoch. It must
// be a whole number that fits in an int64; exponent forms like 1.7e12 are
// accepted when they are whole.
func parseUnixMilli(raw string) (int64, error) {
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ms, nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("x value %s is outside the millisecond range", raw)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid x value %s: %w", raw, err)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("x value %s is not a whole number of milliseconds", raw)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("x value %s is outside the millisecond range", raw)
	}
	return int64(f), nil
}

// ParseX interprets s as a timestamp when it matches a known date layout,
// otherwise as an ordinal label.
func ParseX(s string) XValue {
	trimmed := strings.TrimSpace(s)
	for _, layout := range xLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return TimeX(t)
		}
	}
	return OrdinalX(s)
}

// DataPoint is one value of a series at one x position.
// Name, Color, AltColor and AltLineStyle are optional presentation hints;
// the first point of a series supplies its legend entry.
type DataPoint struct {
	X            XValue  `json:"x"`
	Y            float64 `json:"y"`
	ID           int     `json:"id"`
	Index        int     `json:"index"`
	Name         string  `json:"name,omitempty"`
	Color        string  `json:"color,omitempty"`
	AltColor     string  `json:"altColor,omitempty"`
	AltLineStyle string  `json:"altLineStyle,omitempty"`
}

// Series is an ordered run of points sharing one id, ascending by x.
type Series []DataPoint

// ID returns the series identifier, or 0 for an empty series.
func (s Series) ID() int {
	if len(s) == 0 {
		return 0
	}
	return s[0].ID
}

// Dataset is an ordered collection of series; order is stacking order.
type Dataset []Series

// Len returns the number of x positions, taken from the first series.
func (d Dataset) Len() int {
	if len(d) == 0 {
		return 0
	}
	return len(d[0])
}

// Reversed returns a copy of the dataset with series order reversed.
// Series slices are shared, not copied.
func (d Dataset) Reversed() Dataset {
	out := make(Dataset, len(d))
	for i, s := range d {
		out[len(d)-1-i] = s
	}
	return out
}

// Margin is the plot inset inside the chart box, in pixels.
type Margin struct {
	Top    float64 `json:"top" toml:"top"`
	Right  float64 `json:"right" toml:"right"`
	Bottom float64 `json:"bottom" toml:"bottom"`
	Left   float64 `json:"left" toml:"left"`
}

// SeriesStyle is a palette slot used when points carry no presentation hints.
type SeriesStyle struct {
	Name         string `json:"name,omitempty" toml:"name"`
	Color        string `json:"color" toml:"color"`
	AltColor     string `json:"altColor,omitempty" toml:"alt_color"`
	AltLineStyle string `json:"altLineStyle,omitempty" toml:"alt_line_style"`
}

// LegendEntry is the derived presentation of one series (or pie slice).
type LegendEntry struct {
	Color        string `json:"color"`
	AltColor     string `json:"altColor"`
	AltLineStyle string `json:"altLineStyle"`
	Name         string `json:"name"`
}

// Fill returns the icon colour for the given mode. A missing AltColor
// falls back to Color.
func (e LegendEntry) Fill(highContrast bool) string {
	if highContrast && e.AltColor != "" {
		return e.AltColor
	}
	return e.Color
}

// DashArray returns the line overlay dash pattern, "0" (solid) when unset.
func (e LegendEntry) DashArray() string {
	if e.AltLineStyle == "" {
		return "0"
	}
	return e.AltLineStyle
}

// ChartMode is the per-chart presentation mode.
type ChartMode struct {
	HighContrast bool `json:"highContrast"`
}

// ChartOptions are the recognised chart options, excluding the mount point.
// Pointer fields distinguish "not sent" (nil, take the configured default)
// from an explicit value, including false and "".
type ChartOptions struct {
	Type               ChartType     `json:"type,omitempty"`
	Width              float64       `json:"width,omitempty"`
	Height             float64       `json:"height,omitempty"`
	Margin             *Margin       `json:"margin,omitempty"`
	DisplayRoundedData *bool         `json:"displayRoundedData,omitempty"`
	Prefix             *string       `json:"prefix,omitempty"`
	Suffix             *string       `json:"suffix,omitempty"`
	IsHighContrastMode *bool         `json:"isHighContrastMode,omitempty"`
	Palette            []SeriesStyle `json:"palette,omitempty"`
}

// Rounded reports the displayRoundedData option; unset is false.
func (o ChartOptions) Rounded() bool {
	return o.DisplayRoundedData != nil && *o.DisplayRoundedData
}

// HighContrast reports the isHighContrastMode option; unset is false.
func (o ChartOptions) HighContrast() bool {
	return o.IsHighContrastMode != nil && *o.IsHighContrastMode
}

// ValuePrefix returns the prefix option; unset is "".
func (o ChartOptions) ValuePrefix() string {
	if o.Prefix == nil {
		return ""
	}
	return *o.Prefix
}

// ValueSuffix returns the suffix option; unset is "".
func (o ChartOptions) ValueSuffix() string {
	if o.Suffix == nil {
		return ""
	}
	return *o.Suffix
}

// BoolOption returns a pointer to v for the optional ChartOptions flags.
func BoolOption(v bool) *bool { return &v }

// StringOption returns a pointer to v for the optional ChartOptions text.
func StringOption(v string) *string { return &v }

// ChartRequest is the wire shape for creating a chart.
type ChartRequest struct {
	ChartOptions
	Data Dataset `json:"data"`
}

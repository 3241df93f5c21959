package models

import "time"

// MarkView is the rendered state of one chart primitive (bar, vertex, slice, path).
type MarkView struct {
	SeriesID int               `json:"series_id"`
	Stack    int               `json:"stack"`
	Index    int               `json:"index"`
	Tag      string            `json:"tag"`
	Attrs    map[string]string `json:"attrs"`
}

// LegendRowView is the rendered state of one legend row.
type LegendRowView struct {
	Name          string `json:"name"`
	Fill          string `json:"fill"`
	Color         string `json:"color"`
	AltColor      string `json:"alt_color,omitempty"`
	Value         string `json:"value"`
	IconVisible   bool   `json:"icon_visible"`
	LineVisible   bool   `json:"line_visible"`
	CornerRadius  string `json:"corner_radius"`
	LineDashArray string `json:"line_dash_array"`
}

// ChartState is a read-only snapshot of a live chart.
type ChartState struct {
	ID           string          `json:"id"`
	Type         ChartType       `json:"type"`
	HighContrast bool            `json:"high_contrast"`
	Width        float64         `json:"width"`
	Height       float64         `json:"height"`
	Length       int             `json:"length"`
	Series       int             `json:"series"`
	YMin         float64         `json:"y_min"`
	YMax         float64         `json:"y_max"`
	Baseline     float64         `json:"baseline"`
	HoverIndex   int             `json:"hover_index"`
	DateLabel    string          `json:"date_label"`
	Marks        []MarkView      `json:"marks"`
	Legend       []LegendRowView `json:"legend"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ChartSummary is the list view of a live chart.
type ChartSummary struct {
	ID           string    `json:"id"`
	Type         ChartType `json:"type"`
	Series       int       `json:"series"`
	Length       int       `json:"length"`
	HighContrast bool      `json:"high_contrast"`
	CreatedAt    time.Time `json:"created_at"`
}

// HoverRequest addresses a legend readout either by x index or by pointer
// x position in plot coordinates. Index wins when both are set.
type HoverRequest struct {
	Index *int     `json:"index,omitempty"`
	X     *float64 `json:"x,omitempty"`
}

// ExportFormat selects the output of a chart export.
type ExportFormat string

const (
	ExportHTML ExportFormat = "html"
	ExportSVG  ExportFormat = "svg"
	ExportPNG  ExportFormat = "png"
)

// ContentType returns the HTTP media type of the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportHTML:
		return "text/html; charset=utf-8"
	case ExportSVG:
		return "image/svg+xml"
	case ExportPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// Valid reports whether f is a known format.
func (f ExportFormat) Valid() bool {
	return f == ExportHTML || f == ExportSVG || f == ExportPNG
}

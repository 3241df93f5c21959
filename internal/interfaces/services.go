// Package interfaces defines service contracts for Strata
package interfaces

import (
	"context"
	"io"

	"github.com/bobmcallan/strata/internal/models"
)

// ChartService owns live chart instances and renders one-shot charts.
type ChartService interface {
	// CreateChart validates the request, renders a new chart and returns its state
	CreateChart(ctx context.Context, req models.ChartRequest) (*models.ChartState, error)

	// ListCharts returns a summary of every live chart, oldest first
	ListCharts(ctx context.Context) []models.ChartSummary

	// GetChart returns the current state of a chart
	GetChart(ctx context.Context, id string) (*models.ChartState, error)

	// DeleteChart destroys a chart and releases its scene
	DeleteChart(ctx context.Context, id string) error

	// UpdateData replaces the dataset of a chart
	UpdateData(ctx context.Context, id string, ds models.Dataset) (*models.ChartState, error)

	// Hover moves the legend readout to an x index or a pointer position
	Hover(ctx context.Context, id string, req models.HoverRequest) (*models.ChartState, error)

	// SetContrast sets the high-contrast mode; a nil value toggles it
	SetContrast(ctx context.Context, id string, on *bool) (*models.ChartState, error)

	// Resize changes the chart box
	Resize(ctx context.Context, id string, width, height float64) (*models.ChartState, error)

	// Export writes a chart as HTML, SVG or PNG
	Export(ctx context.Context, id string, format models.ExportFormat, w io.Writer) error

	// Render draws a chart once without keeping it
	Render(ctx context.Context, req models.ChartRequest, format models.ExportFormat, w io.Writer) error

	// Layout computes a chart once and returns its state without keeping it
	Layout(ctx context.Context, req models.ChartRequest) (*models.ChartState, error)
}

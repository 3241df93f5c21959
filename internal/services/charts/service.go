// Package charts provides the live chart registry service
package charts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/bobmcallan/strata/internal/chart"
	"github.com/bobmcallan/strata/internal/common"
	"github.com/bobmcallan/strata/internal/export"
	"github.com/bobmcallan/strata/internal/format"
	"github.com/bobmcallan/strata/internal/interfaces"
	"github.com/bobmcallan/strata/internal/models"
	"github.com/bobmcallan/strata/internal/scene"
)

// Compile-time interface check
var _ interfaces.ChartService = (*Service)(nil)

var (
	ErrChartNotFound = errors.New("chart not found")
	ErrTooManyCharts = errors.New("chart limit reached")
	ErrBadFormat     = errors.New("unknown export format")
	ErrBadHover      = errors.New("hover needs an index or an x position")
)

const mountID = "chart"

// instance is one live chart with its own scene. Its mutex serialises every
// event delivered to the chart.
type instance struct {
	mu        sync.Mutex
	id        string
	doc       *scene.Document
	mount     *html.Node
	ctrl      *chart.Controller
	createdAt time.Time
}

// Service implements ChartService
type Service struct {
	config    *common.Config
	formatter *format.Formatter
	logger    *common.Logger

	mu     sync.RWMutex
	charts map[string]*instance
}

// NewService creates a new chart service
func NewService(config *common.Config, logger *common.Logger) *Service {
	return &Service{
		config:    config,
		formatter: format.NewFormatter(config.Format.Locale, config.Format.DateLayout),
		logger:    logger,
		charts:    make(map[string]*instance),
	}
}

// build renders req into a fresh scene.
func (s *Service) build(req models.ChartRequest) (*instance, error) {
	opts := s.config.ChartDefaults(req.ChartOptions)
	doc := scene.NewDocument()
	mount := doc.Mount(mountID)
	ctrl := chart.NewController(doc, s.formatter, s.logger)

	cfg := chart.Config{
		Element:            mount,
		Type:               opts.Type,
		Width:              opts.Width,
		Height:             opts.Height,
		DisplayRoundedData: opts.Rounded(),
		Prefix:             opts.ValuePrefix(),
		Suffix:             opts.ValueSuffix(),
		IsHighContrastMode: opts.HighContrast(),
		Palette:            opts.Palette,
	}
	if opts.Margin != nil {
		cfg.Margin = *opts.Margin
	}
	if err := ctrl.Init(req.Data, cfg); err != nil {
		return nil, err
	}
	return &instance{doc: doc, mount: mount, ctrl: ctrl, createdAt: time.Now().UTC()}, nil
}

// CreateChart validates the request, renders a new chart and returns its state
func (s *Service) CreateChart(ctx context.Context, req models.ChartRequest) (*models.ChartState, error) {
	s.mu.RLock()
	count := len(s.charts)
	s.mu.RUnlock()
	if limit := s.config.Chart.MaxCharts; limit > 0 && count >= limit {
		return nil, fmt.Errorf("%w: %d live charts", ErrTooManyCharts, count)
	}

	inst, err := s.build(req)
	if err != nil {
		return nil, err
	}
	inst.id = uuid.New().String()

	s.mu.Lock()
	if limit := s.config.Chart.MaxCharts; limit > 0 && len(s.charts) >= limit {
		s.mu.Unlock()
		inst.ctrl.Destroy()
		return nil, fmt.Errorf("%w: %d live charts", ErrTooManyCharts, limit)
	}
	s.charts[inst.id] = inst
	s.mu.Unlock()

	s.logger.Info().
		Str("chart_id", inst.id).
		Str("type", string(inst.ctrl.Kind().Type)).
		Int("series", len(req.Data)).
		Str("correlation_id", common.CorrelationIDFromContext(ctx)).
		Msg("Chart created")

	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.state()
}

func (inst *instance) state() (*models.ChartState, error) {
	st, err := inst.ctrl.State()
	if err != nil {
		return nil, err
	}
	st.ID = inst.id
	st.CreatedAt = inst.createdAt
	return &st, nil
}

func (s *Service) lookup(id string) (*instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.charts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChartNotFound, id)
	}
	return inst, nil
}

// with runs fn on a chart while holding its lock, then returns the new state.
func (s *Service) with(id string, fn func(*instance) error) (*models.ChartState, error) {
	inst, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if fn != nil {
		if err := fn(inst); err != nil {
			return nil, err
		}
	}
	return inst.state()
}

// ListCharts returns a summary of every live chart, oldest first
func (s *Service) ListCharts(ctx context.Context) []models.ChartSummary {
	s.mu.RLock()
	list := make([]*instance, 0, len(s.charts))
	for _, inst := range s.charts {
		list = append(list, inst)
	}
	s.mu.RUnlock()

	out := make([]models.ChartSummary, 0, len(list))
	for _, inst := range list {
		inst.mu.Lock()
		st, err := inst.ctrl.State()
		inst.mu.Unlock()
		if err != nil {
			continue
		}
		out = append(out, models.ChartSummary{
			ID:           inst.id,
			Type:         st.Type,
			Series:       st.Series,
			Length:       st.Length,
			HighContrast: st.HighContrast,
			CreatedAt:    inst.createdAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// GetChart returns the current state of a chart
func (s *Service) GetChart(ctx context.Context, id string) (*models.ChartState, error) {
	return s.with(id, nil)
}

// DeleteChart destroys a chart and releases its scene
func (s *Service) DeleteChart(ctx context.Context, id string) error {
	s.mu.Lock()
	inst, ok := s.charts[id]
	delete(s.charts, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrChartNotFound, id)
	}

	inst.mu.Lock()
	inst.ctrl.Destroy()
	inst.mu.Unlock()

	s.logger.Info().
		Str("chart_id", id).
		Str("correlation_id", common.CorrelationIDFromContext(ctx)).
		Msg("Chart deleted")
	return nil
}

// UpdateData replaces the dataset of a chart
func (s *Service) UpdateData(ctx context.Context, id string, ds models.Dataset) (*models.ChartState, error) {
	return s.with(id, func(inst *instance) error {
		return inst.ctrl.UpdateData(ds)
	})
}

// Hover moves the legend readout to an x index or a pointer position
func (s *Service) Hover(ctx context.Context, id string, req models.HoverRequest) (*models.ChartState, error) {
	if req.Index == nil && req.X == nil {
		return nil, ErrBadHover
	}
	return s.with(id, func(inst *instance) error {
		if req.Index != nil {
			return inst.ctrl.Hover(*req.Index)
		}
		_, err := inst.ctrl.HoverAt(*req.X)
		return err
	})
}

// SetContrast sets the high-contrast mode; a nil value toggles it
func (s *Service) SetContrast(ctx context.Context, id string, on *bool) (*models.ChartState, error) {
	return s.with(id, func(inst *instance) error {
		if on == nil {
			_, err := inst.ctrl.ToggleHighContrast()
			return err
		}
		return inst.ctrl.SetHighContrast(*on)
	})
}

// Resize changes the chart box
func (s *Service) Resize(ctx context.Context, id string, width, height float64) (*models.ChartState, error) {
	return s.with(id, func(inst *instance) error {
		return inst.ctrl.Resize(width, height)
	})
}

// Export writes a chart as HTML, SVG or PNG
func (s *Service) Export(ctx context.Context, id string, f models.ExportFormat, w io.Writer) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %q", ErrBadFormat, f)
	}
	inst, err := s.lookup(id)
	if err != nil {
		return err
	}

	// encode under the lock, write after releasing it
	var buf bytes.Buffer
	inst.mu.Lock()
	err = inst.export(f, &buf)
	inst.mu.Unlock()
	if err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

func (inst *instance) export(f models.ExportFormat, w io.Writer) error {
	if f == models.ExportHTML {
		if inst.ctrl.Destroyed() {
			return chart.ErrDestroyed
		}
		return inst.doc.Render(w, inst.mount)
	}
	frame, err := export.FrameOf(inst.ctrl)
	if err != nil {
		return err
	}
	if f == models.ExportPNG {
		return export.WritePNG(w, frame)
	}
	return export.WriteSVG(w, frame)
}

// Render draws a chart once without keeping it
func (s *Service) Render(ctx context.Context, req models.ChartRequest, f models.ExportFormat, w io.Writer) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %q", ErrBadFormat, f)
	}
	inst, err := s.build(req)
	if err != nil {
		return err
	}
	defer inst.ctrl.Destroy()
	return inst.export(f, w)
}

// Layout computes a chart once and returns its state without keeping it
func (s *Service) Layout(ctx context.Context, req models.ChartRequest) (*models.ChartState, error) {
	inst, err := s.build(req)
	if err != nil {
		return nil, err
	}
	defer inst.ctrl.Destroy()
	return inst.state()
}

// Close destroys every live chart.
func (s *Service) Close() {
	s.mu.Lock()
	charts := s.charts
	s.charts = make(map[string]*instance)
	s.mu.Unlock()

	for _, inst := range charts {
		inst.mu.Lock()
		inst.ctrl.Destroy()
		inst.mu.Unlock()
	}
	s.logger.Debug().Int("count", len(charts)).Msg("Chart service closed")
}

package chart

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/bobmcallan/strata/internal/common"
	"github.com/bobmcallan/strata/internal/interfaces"
	"github.com/bobmcallan/strata/internal/models"
)

// Defaults applied when a Config leaves the box size unset.
const (
	DefaultWidth  = 600
	DefaultHeight = 300
	bandPadding   = 0.1
)

// Scene event types the controller listens for.
const (
	EventPointerMove    = "mousemove"
	EventContrastChange = "contrastchange"
	highContrastClass   = "high-contrast"
)

// Config is the recognised option set for one chart instance.
type Config struct {
	Element            *html.Node
	Type               models.ChartType
	Width              float64
	Height             float64
	Margin             models.Margin
	DisplayRoundedData bool
	Prefix             string
	Suffix             string
	IsHighContrastMode bool
	Palette            []models.SeriesStyle
}

// Controller owns one chart: its dataset, mode, derived layout and the
// scene nodes and listeners it created. It is not safe for concurrent use;
// events must be delivered one at a time.
type Controller struct {
	scene     interfaces.SceneGraph
	formatter interfaces.Formatter
	logger    *common.Logger

	cfg  Config
	kind Kind
	mode models.ChartMode
	data models.Dataset

	// presentation order
	order   models.Dataset
	keys    []SeriesKey
	entries []models.LegendEntry

	layout *StackLayout
	yScale *LinearScale
	xScale *BandScale
	marks  []Mark

	root     *html.Node
	plot     *html.Node
	baseline *html.Node
	overlay  *html.Node
	registry *registry
	legend   *Legend
	hover    *Hover

	listeners   []interfaces.ListenerID
	initialised bool
	destroyed   bool
}

// NewController creates an uninitialised controller drawing into scene.
func NewController(scene interfaces.SceneGraph, formatter interfaces.Formatter, logger *common.Logger) *Controller {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Controller{scene: scene, formatter: formatter, logger: logger}
}

// Init validates the dataset, computes scales and layout, renders the legend
// and the chart under cfg.Element and registers the hover and mode listeners.
func (c *Controller) Init(ds models.Dataset, cfg Config) error {
	if c.destroyed {
		return ErrDestroyed
	}
	if c.initialised {
		return ErrAlreadyInit
	}
	if cfg.Element == nil {
		return ErrNoMount
	}
	kind, err := KindFor(cfg.Type)
	if err != nil {
		return err
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if innerW, innerH := plotSize(cfg); innerW <= 0 || innerH <= 0 {
		return fmt.Errorf("%w: %vx%v after margins", ErrInvalidSize, innerW, innerH)
	}
	if err := Validate(ds); err != nil {
		return err
	}

	c.cfg = cfg
	c.kind = kind
	c.mode = models.ChartMode{HighContrast: cfg.IsHighContrastMode}
	c.data = ds
	c.compute()

	// legend first so it precedes the chart under the mount
	c.buildLegend()
	c.renderChart()
	c.setMountClass()
	c.listen()
	c.initialised = true

	c.logger.Debug().
		Str("type", string(kind.Type)).
		Int("series", len(ds)).
		Int("length", ds.Len()).
		Float64("y_min", c.layout.YMin).
		Float64("y_max", c.layout.YMax).
		Msg("Chart initialised")
	return nil
}

func plotSize(cfg Config) (float64, float64) {
	return cfg.Width - cfg.Margin.Left - cfg.Margin.Right,
		cfg.Height - cfg.Margin.Top - cfg.Margin.Bottom
}

// compute rebuilds presentation order, layout, scales and marks from scratch.
func (c *Controller) compute() {
	entries := resolveEntries(c.data, c.cfg.Palette)
	keys := seriesKeys(c.data)
	c.order = c.data
	if c.kind.ReverseOrder {
		c.order = c.data.Reversed()
		entries = reversedEntries(entries)
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	c.entries, c.keys = entries, keys

	innerW, innerH := plotSize(c.cfg)
	snapshot := c.order.Len() - 1
	c.layout = Stack(c.order)
	c.yScale = NewLinearScale(c.kind.Domain(c.layout, c.order, snapshot), c.kind.Range(innerW, innerH))
	c.xScale = NewBandScale(c.order.Len(), [2]float64{0, innerW}, bandPadding)
	c.marks = c.kind.Geometry(GeometryContext{
		Series:   c.order,
		Keys:     c.keys,
		Entries:  c.entries,
		Layout:   c.layout,
		Y:        c.yScale,
		X:        c.xScale,
		Width:    innerW,
		Height:   innerH,
		Snapshot: snapshot,
	})
}

func (c *Controller) renderChart() {
	sc := c.scene
	if c.root == nil {
		c.root = sc.CreateElement("svg")
		sc.SetAttribute(c.root, "class", "chart")
		c.plot = sc.CreateElement("g")
		sc.SetAttribute(c.plot, "class", "plot")
		sc.AppendChild(c.root, c.plot)

		marks := sc.CreateElement("g")
		sc.SetAttribute(marks, "class", "marks "+string(c.kind.Type))
		sc.AppendChild(c.plot, marks)
		c.registry = newRegistry(sc, marks)

		if c.kind.Stacked {
			c.baseline = sc.CreateElement("line")
			sc.SetAttribute(c.baseline, "class", "baseline")
			sc.AppendChild(c.plot, c.baseline)
		}

		c.overlay = sc.CreateElement("rect")
		sc.SetAttribute(c.overlay, "class", "overlay")
		sc.SetAttribute(c.overlay, "fill", "transparent")
		sc.AppendChild(c.plot, c.overlay)
	}
	// (re)appending keeps the chart after a rebuilt legend
	sc.AppendChild(c.cfg.Element, c.root)

	innerW, innerH := plotSize(c.cfg)
	sc.SetAttribute(c.root, "width", Num(c.cfg.Width))
	sc.SetAttribute(c.root, "height", Num(c.cfg.Height))
	sc.SetAttribute(c.plot, "transform", fmt.Sprintf("translate(%s,%s)", Num(c.cfg.Margin.Left), Num(c.cfg.Margin.Top)))
	sc.SetAttribute(c.overlay, "x", "0")
	sc.SetAttribute(c.overlay, "y", "0")
	sc.SetAttribute(c.overlay, "width", Num(innerW))
	sc.SetAttribute(c.overlay, "height", Num(innerH))
	if c.baseline != nil {
		y := Num(c.yScale.Baseline())
		sc.SetAttribute(c.baseline, "x1", "0")
		sc.SetAttribute(c.baseline, "x2", Num(innerW))
		sc.SetAttribute(c.baseline, "y1", y)
		sc.SetAttribute(c.baseline, "y2", y)
	}

	stats := c.registry.reconcile(c.marks)
	c.logger.Trace().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("removed", stats.Removed).
		Msg("Chart marks reconciled")
}

// legendRows builds the bound datum of each legend row in presentation order.
func (c *Controller) legendRows() []any {
	rows := make([]any, len(c.order))
	snapshot := c.order.Len() - 1
	for s, series := range c.order {
		if c.kind.SliceRows {
			row := SliceRow{Series: series, Entry: c.entries[s], Value: sliceValue(series, snapshot)}
			if snapshot >= 0 {
				row.Point = series[snapshot]
			}
			rows[s] = row
			continue
		}
		rows[s] = SeriesRow{Points: series, Entry: c.entries[s]}
	}
	return rows
}

func (c *Controller) buildLegend() {
	values := c.valueFormat()
	c.legend = NewLegend(LegendContext{
		Scene:     c.scene,
		Mount:     c.cfg.Element,
		Kind:      c.kind,
		Rows:      c.legendRows(),
		Formatter: c.formatter,
		Values:    values,
	})
	c.legend.UpdateIcon(c.mode)
	c.hover = NewHover(HoverContext{
		Scene:     c.scene,
		Legend:    c.legend,
		Formatter: c.formatter,
		Values:    values,
		Length:    c.order.Len(),
	})
	// show the latest position until the pointer moves
	if n := c.order.Len(); n > 0 {
		_ = c.hover.OnHover(n - 1)
	}
}

func (c *Controller) valueFormat() ValueFormat {
	return ValueFormat{Prefix: c.cfg.Prefix, Suffix: c.cfg.Suffix, Rounded: c.cfg.DisplayRoundedData}
}

func (c *Controller) listen() {
	c.listeners = append(c.listeners,
		c.scene.Listen(c.overlay, EventPointerMove, func(e interfaces.Event) {
			if _, err := c.HoverAt(e.X); err != nil {
				c.logger.Debug().Err(err).Msg("Pointer hover ignored")
			}
		}),
		c.scene.Listen(c.cfg.Element, EventContrastChange, func(e interfaces.Event) {
			if err := c.SetHighContrast(e.On); err != nil {
				c.logger.Debug().Err(err).Msg("Contrast change ignored")
			}
		}),
	)
}

// setMountClass mirrors the mode in the mount's class list for stylesheets.
func (c *Controller) setMountClass() {
	el := c.cfg.Element
	current, _ := c.scene.Attribute(el, "class")
	var kept []string
	for _, class := range strings.Fields(current) {
		if class != highContrastClass {
			kept = append(kept, class)
		}
	}
	if c.mode.HighContrast {
		kept = append(kept, highContrastClass)
	}
	if len(kept) == 0 && current == "" {
		return
	}
	c.scene.SetAttribute(el, "class", strings.Join(kept, " "))
}

func (c *Controller) ready() error {
	if c.destroyed {
		return ErrDestroyed
	}
	if !c.initialised {
		return ErrNotInitialised
	}
	return nil
}

// ToggleHighContrast flips the mode and reruns the legend icon pass. No
// layout is recomputed. It returns the new mode.
func (c *Controller) ToggleHighContrast() (bool, error) {
	if err := c.ready(); err != nil {
		return false, err
	}
	if err := c.SetHighContrast(!c.mode.HighContrast); err != nil {
		return false, err
	}
	return c.mode.HighContrast, nil
}

// SetHighContrast sets the mode to on. Setting the current value again
// leaves the presentation unchanged.
func (c *Controller) SetHighContrast(on bool) error {
	if err := c.ready(); err != nil {
		return err
	}
	c.mode.HighContrast = on
	c.legend.UpdateIcon(c.mode)
	c.setMountClass()
	c.logger.Debug().Bool("high_contrast", on).Msg("Chart mode changed")
	return nil
}

// UpdateData validates ds, recomputes layout and scales, reconciles the
// marks and rebuilds the legend rows.
func (c *Controller) UpdateData(ds models.Dataset) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := Validate(ds); err != nil {
		return err
	}
	c.data = ds
	c.compute()
	c.legend.Destroy()
	c.hover.Destroy()
	c.buildLegend()
	c.renderChart()

	c.logger.Debug().
		Int("series", len(ds)).
		Int("length", ds.Len()).
		Msg("Chart data updated")
	return nil
}

// Resize changes the chart box and recomputes layout and scales. The legend
// is left as is.
func (c *Controller) Resize(width, height float64) error {
	if err := c.ready(); err != nil {
		return err
	}
	next := c.cfg
	next.Width, next.Height = width, height
	if innerW, innerH := plotSize(next); width <= 0 || height <= 0 || innerW <= 0 || innerH <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrInvalidSize, width, height)
	}
	c.cfg = next
	c.compute()
	c.renderChart()
	return nil
}

// Hover displays x position i in the legend.
func (c *Controller) Hover(i int) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.hover.OnHover(i)
}

// HoverAt resolves a pointer x (plot coordinates) to the nearest position
// and hovers it.
func (c *Controller) HoverAt(px float64) (int, error) {
	if err := c.ready(); err != nil {
		return -1, err
	}
	i := c.xScale.Nearest(px)
	if i < 0 {
		return -1, invariantError(ErrHoverIndex, -1, i, "chart has no x positions")
	}
	return i, c.hover.OnHover(i)
}

// Destroy detaches every node the chart created and removes its listeners.
// Later calls do nothing.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	for _, id := range c.listeners {
		c.scene.Unlisten(id)
	}
	c.listeners = nil
	if c.legend != nil {
		c.legend.Destroy()
	}
	if c.hover != nil {
		c.hover.Destroy()
	}
	if c.registry != nil {
		c.registry.clear()
	}
	if c.root != nil {
		c.scene.Detach(c.root)
	}
	if c.initialised && c.mode.HighContrast {
		c.mode.HighContrast = false
		c.setMountClass()
	}
	c.root, c.plot, c.baseline, c.overlay = nil, nil, nil, nil
	c.logger.Debug().Msg("Chart destroyed")
}

// Destroyed reports whether Destroy has run.
func (c *Controller) Destroyed() bool {
	return c.destroyed
}

// Kind returns the chart variant.
func (c *Controller) Kind() Kind {
	return c.kind
}

// Mode returns the current presentation mode.
func (c *Controller) Mode() models.ChartMode {
	return c.mode
}

// Layout returns the current stack layout.
func (c *Controller) Layout() *StackLayout {
	return c.layout
}

// YScale returns the value scale.
func (c *Controller) YScale() *LinearScale {
	return c.yScale
}

// XScale returns the position scale.
func (c *Controller) XScale() *BandScale {
	return c.xScale
}

// Marks returns the computed marks in drawing order.
func (c *Controller) Marks() []Mark {
	return c.marks
}

// Entries returns legend entries in presentation order.
func (c *Controller) Entries() []models.LegendEntry {
	return c.entries
}

// Series returns the dataset in presentation order.
func (c *Controller) Series() []models.Series {
	return c.order
}

// Legend returns the legend controller.
func (c *Controller) Legend() *Legend {
	return c.legend
}

// Root returns the chart's svg node, nil after Destroy.
func (c *Controller) Root() *html.Node {
	return c.root
}

// Size returns the chart box and margin.
func (c *Controller) Size() (width, height float64, margin models.Margin) {
	return c.cfg.Width, c.cfg.Height, c.cfg.Margin
}

// State snapshots the rendered chart.
func (c *Controller) State() (models.ChartState, error) {
	if err := c.ready(); err != nil {
		return models.ChartState{}, err
	}
	st := models.ChartState{
		Type:         c.kind.Type,
		HighContrast: c.mode.HighContrast,
		Width:        c.cfg.Width,
		Height:       c.cfg.Height,
		Length:       c.order.Len(),
		Series:       len(c.order),
		YMin:         c.layout.YMin,
		YMax:         c.layout.YMax,
		Baseline:     c.yScale.Baseline(),
		HoverIndex:   c.hover.Current(),
		Legend:       c.legend.Rows(),
	}
	if date := c.legend.DateNode(); date != nil {
		st.DateLabel = textOf(date)
	}
	for _, m := range c.marks {
		attrs := make(map[string]string)
		for _, a := range m.Attrs() {
			attrs[a.Name] = a.Value
		}
		st.Marks = append(st.Marks, models.MarkView{
			SeriesID: m.Key.ID,
			Stack:    m.Key.Stack,
			Index:    m.Key.Index,
			Tag:      m.Tag(),
			Attrs:    attrs,
		})
	}
	return st, nil
}

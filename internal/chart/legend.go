package chart

import (
	"golang.org/x/net/html"

	"github.com/bobmcallan/strata/internal/interfaces"
	"github.com/bobmcallan/strata/internal/models"
)

const iconSize = 12

// SeriesRow is the datum of a legend row for cartesian kinds: the whole
// series (its peers across x) plus its entry.
type SeriesRow struct {
	Points models.Series
	Entry  models.LegendEntry
}

// SliceRow is the datum of a pie legend row: one slice.
type SliceRow struct {
	Point  models.DataPoint
	Series models.Series
	Entry  models.LegendEntry
	Value  float64
}

// rowEntry resolves the entry of a bound datum, which is either a series
// group or a single slice.
func rowEntry(d any) (models.LegendEntry, bool) {
	switch v := d.(type) {
	case SeriesRow:
		return v.Entry, true
	case SliceRow:
		return v.Entry, true
	}
	return models.LegendEntry{}, false
}

// rowPoint returns the point at position i of the series behind a datum.
func rowPoint(d any, i int) (models.DataPoint, bool) {
	var s models.Series
	switch v := d.(type) {
	case SeriesRow:
		s = v.Points
	case SliceRow:
		s = v.Series
	default:
		return models.DataPoint{}, false
	}
	if i < 0 || i >= len(s) {
		return models.DataPoint{}, false
	}
	return s[i], true
}

// ValueFormat carries the value formatting options of a chart.
type ValueFormat struct {
	Prefix  string
	Suffix  string
	Rounded bool
}

func (v ValueFormat) format(f interfaces.Formatter, y float64) string {
	return f.FormatValue(y, v.Prefix, v.Suffix, v.Rounded)
}

// LegendContext is the input to NewLegend. Rows are in presentation order.
type LegendContext struct {
	Scene     interfaces.SceneGraph
	Mount     *html.Node
	Kind      Kind
	Rows      []any
	Formatter interfaces.Formatter
	Values    ValueFormat
}

// Legend renders one row per series (or slice) into a div.legend container
// and owns the icon presentation pass.
type Legend struct {
	scene     interfaces.SceneGraph
	kind      Kind
	formatter interfaces.Formatter
	values    ValueFormat

	container *html.Node
	date      *html.Node
	rows      []*html.Node
}

// NewLegend renders the legend under ctx.Mount. Icons are drawn in normal
// mode; call UpdateIcon to apply the chart's mode.
func NewLegend(ctx LegendContext) *Legend {
	l := &Legend{
		scene:     ctx.Scene,
		kind:      ctx.Kind,
		formatter: ctx.Formatter,
		values:    ctx.Values,
	}
	l.render(ctx.Mount, ctx.Rows)
	return l
}

func (l *Legend) render(mount *html.Node, rows []any) {
	sc := l.scene
	l.container = sc.CreateElement("div")
	sc.SetAttribute(l.container, "class", "legend")
	sc.AppendChild(mount, l.container)

	l.date = sc.CreateElement("div")
	sc.SetAttribute(l.date, "class", "date")
	if len(rows) > 0 {
		sc.BindDatum(l.date, rows[0])
	}
	sc.AppendChild(l.container, l.date)

	table := sc.CreateElement("table")
	sc.AppendChild(l.container, table)

	for _, d := range rows {
		entry, _ := rowEntry(d)

		tr := sc.CreateElement("tr")
		sc.BindDatum(tr, d)
		sc.AppendChild(table, tr)
		l.rows = append(l.rows, tr)

		th := sc.CreateElement("th")
		sc.AppendChild(tr, th)

		svg := sc.CreateElement("svg")
		sc.SetAttribute(svg, "width", Num(iconSize))
		sc.SetAttribute(svg, "height", Num(iconSize))
		sc.AppendChild(th, svg)

		g := sc.CreateElement("g")
		sc.SetAttribute(g, "class", "legend--icon")
		sc.AppendChild(svg, g)

		rect := sc.CreateElement("rect")
		sc.BindDatum(rect, d)
		sc.SetAttribute(rect, "x", "0")
		sc.SetAttribute(rect, "y", "0")
		sc.SetAttribute(rect, "width", Num(iconSize))
		sc.SetAttribute(rect, "height", Num(iconSize))
		sc.SetAttribute(rect, "fill", entry.Color)
		sc.AppendChild(g, rect)

		dash := "0"
		if _, group := d.(SeriesRow); group {
			dash = entry.DashArray()
		}
		line := sc.CreateElement("line")
		sc.BindDatum(line, d)
		sc.SetAttribute(line, "x1", "0")
		sc.SetAttribute(line, "x2", Num(iconSize))
		sc.SetAttribute(line, "y1", Num(iconSize/2))
		sc.SetAttribute(line, "y2", Num(iconSize/2))
		sc.SetAttribute(line, "stroke-linecap", "butt")
		sc.SetAttribute(line, "stroke", entry.Color)
		sc.SetAttribute(line, "stroke-dasharray", dash)
		sc.AppendChild(g, line)

		name := sc.CreateElement("span")
		sc.SetAttribute(name, "class", "legend--data-name")
		sc.SetText(name, entry.Name)
		sc.AppendChild(th, name)

		td := sc.CreateElement("td")
		sc.BindDatum(td, d)
		if slice, ok := d.(SliceRow); ok {
			sc.SetText(td, l.values.format(l.formatter, slice.Value))
		}
		sc.AppendChild(tr, td)
	}
}

// UpdateIcon is the presentation pass over already-bound rows: fill, corner
// radius and square/line visibility follow mode. It reads nothing but the
// bound data and is safe to repeat.
func (l *Legend) UpdateIcon(mode models.ChartMode) {
	if l.container == nil {
		return
	}
	hc := mode.HighContrast
	lineMode := l.kind.LineIcon && hc

	squareVisibility, lineVisibility := "visible", "hidden"
	if lineMode {
		squareVisibility, lineVisibility = "hidden", "visible"
	}
	radius := Num(iconSize / 2)
	if hc {
		radius = "2"
	}

	for _, sq := range l.scene.SelectAll(l.container, ".legend--icon rect") {
		entry, ok := rowEntry(l.scene.Datum(sq))
		if !ok {
			continue
		}
		l.scene.SetAttribute(sq, "fill", entry.Fill(hc))
		l.scene.SetAttribute(sq, "visibility", squareVisibility)
		l.scene.SetAttribute(sq, "rx", radius)
		l.scene.SetAttribute(sq, "ry", radius)
	}
	for _, ln := range l.scene.SelectAll(l.container, ".legend--icon line") {
		l.scene.SetAttribute(ln, "visibility", lineVisibility)
	}
}

// Container returns the legend root node, nil after Destroy.
func (l *Legend) Container() *html.Node {
	return l.container
}

// DateNode returns the date label node.
func (l *Legend) DateNode() *html.Node {
	return l.date
}

// Rows returns the rendered state of each row, top to bottom.
func (l *Legend) Rows() []models.LegendRowView {
	var out []models.LegendRowView
	for _, tr := range l.rows {
		entry, _ := rowEntry(l.scene.Datum(tr))
		view := models.LegendRowView{
			Name:     entry.Name,
			Color:    entry.Color,
			AltColor: entry.AltColor,
		}
		if rect := first(l.scene.SelectAll(tr, ".legend--icon rect")); rect != nil {
			view.Fill, _ = l.scene.Attribute(rect, "fill")
			vis, _ := l.scene.Attribute(rect, "visibility")
			view.IconVisible = vis != "hidden"
			view.CornerRadius, _ = l.scene.Attribute(rect, "rx")
		}
		if line := first(l.scene.SelectAll(tr, ".legend--icon line")); line != nil {
			vis, _ := l.scene.Attribute(line, "visibility")
			view.LineVisible = vis == "visible"
			view.LineDashArray, _ = l.scene.Attribute(line, "stroke-dasharray")
		}
		if td := first(l.scene.SelectAll(tr, "td")); td != nil {
			view.Value = textOf(td)
		}
		out = append(out, view)
	}
	return out
}

// Destroy detaches the legend from the scene.
func (l *Legend) Destroy() {
	if l.container == nil {
		return
	}
	l.scene.Detach(l.container)
	l.container, l.date, l.rows = nil, nil, nil
}

func first(nodes []*html.Node) *html.Node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func textOf(n *html.Node) string {
	var out string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			out += c.Data
		}
	}
	return out
}

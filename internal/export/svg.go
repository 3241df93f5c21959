package export

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/bobmcallan/strata/internal/chart"
	"github.com/bobmcallan/strata/internal/models"
)

const (
	legendRowHeight = 18
	legendIcon      = 12
	legendFontSize  = 12
)

// WriteSVG draws the frame as a standalone SVG document: the plot with its
// marks, then the legend rows beneath it.
func WriteSVG(w io.Writer, f Frame) error {
	width := int(math.Ceil(f.Width))
	plotHeight := int(math.Ceil(f.Height))
	height := plotHeight + legendHeight(f)

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Title(fmt.Sprintf("%s chart", f.Type))
	canvas.Rect(0, 0, width, height, "fill:#ffffff")

	canvas.Gtransform(fmt.Sprintf("translate(%s,%s)", chart.Num(f.Margin.Left), chart.Num(f.Margin.Top)))
	for _, m := range f.Marks {
		drawMark(canvas, f, m)
	}
	if f.Stacked {
		innerW := int(math.Round(f.Width - f.Margin.Left - f.Margin.Right))
		y := int(math.Round(f.Baseline))
		canvas.Line(0, y, innerW, y, "stroke:#333333;stroke-width:1")
	}
	canvas.Gend()

	drawLegend(canvas, f, plotHeight)
	canvas.End()
	return nil
}

func drawMark(canvas *svg.SVG, f Frame, m chart.Mark) {
	attrs := m.Attrs()
	fill := f.fill(m)
	switch m.Shape {
	case chart.ShapeBar:
		// exact geometry: Rect only takes integers
		d := fmt.Sprintf("M%s,%sh%sv%sh%sZ",
			chart.Num(m.X), chart.Num(m.Y), chart.Num(m.Width), chart.Num(m.Height), chart.Num(-m.Width))
		canvas.Path(d, "fill:"+fill, `class="`+m.Class()+`"`)
	case chart.ShapeVertex:
		canvas.Circle(int(math.Round(m.CX)), int(math.Round(m.CY)), int(math.Round(m.Radius)), "fill:"+fill)
	case chart.ShapeLine:
		style := "fill:none;stroke-width:2;stroke:" + fill
		if dash := f.dash(m); dash != "" {
			style += ";stroke-dasharray:" + dash
		}
		canvas.Path(attrs[0].Value, style)
	case chart.ShapeSlice:
		canvas.Path(attrs[0].Value, "fill:"+fill+";stroke:#ffffff")
	}
}

func legendHeight(f Frame) int {
	if len(f.Legend) == 0 {
		return 0
	}
	return (len(f.Legend)+1)*legendRowHeight + 8
}

func drawLegend(canvas *svg.SVG, f Frame, top int) {
	if len(f.Legend) == 0 {
		return
	}
	x := int(math.Round(f.Margin.Left))
	y := top + legendRowHeight
	canvas.Gstyle(fmt.Sprintf("font-family:sans-serif;font-size:%dpx;fill:#222222", legendFontSize))
	canvas.Text(x, y, f.DateLabel, "font-weight:bold")
	for _, row := range f.Legend {
		y += legendRowHeight
		drawIcon(canvas, f.Type, row, x, y-legendIcon+2)
		canvas.Text(x+legendIcon+6, y, row.Name)
		canvas.Text(x+legendIcon+6+160, y, row.Value, "text-anchor:end")
	}
	canvas.Gend()
}

func drawIcon(canvas *svg.SVG, t models.ChartType, row models.LegendRowView, x, y int) {
	if row.IconVisible {
		r := 6
		if row.CornerRadius == "2" {
			r = 2
		}
		canvas.Roundrect(x, y, legendIcon, legendIcon, r, r, "fill:"+row.Fill)
	}
	if row.LineVisible && t == models.ChartTypeLine {
		style := "stroke-width:2;stroke-linecap:butt;stroke:" + row.Color
		if row.LineDashArray != "" && row.LineDashArray != "0" {
			style += ";stroke-dasharray:" + row.LineDashArray
		}
		canvas.Line(x, y+legendIcon/2, x+legendIcon, y+legendIcon/2, style)
	}
}

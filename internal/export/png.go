package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/strata/internal/chart"
	"github.com/bobmcallan/strata/internal/models"
)

// ErrNothingToDraw is returned when a frame has no visible geometry.
var ErrNothingToDraw = errors.New("nothing to draw")

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// WritePNG rasterises the frame. Bar kinds are drawn from the computed marks
// so the image matches the scene exactly; line and pie charts go through the
// go-chart layouts, which add axes and labels.
func WritePNG(w io.Writer, f Frame) error {
	switch f.Type {
	case models.ChartTypeLine:
		return writeLinePNG(w, f)
	case models.ChartTypePie:
		return writePiePNG(w, f)
	}
	return writeBarPNG(w, f)
}

func writeBarPNG(w io.Writer, f Frame) error {
	r, err := gochart.PNG(int(math.Ceil(f.Width)), int(math.Ceil(f.Height)))
	if err != nil {
		return fmt.Errorf("png renderer: %w", err)
	}

	px := func(v, offset float64) int { return int(math.Round(v + offset)) }
	left, top := f.Margin.Left, f.Margin.Top

	r.SetFillColor(drawing.ColorWhite)
	r.MoveTo(0, 0)
	r.LineTo(int(math.Ceil(f.Width)), 0)
	r.LineTo(int(math.Ceil(f.Width)), int(math.Ceil(f.Height)))
	r.LineTo(0, int(math.Ceil(f.Height)))
	r.Close()
	r.Fill()

	for _, m := range f.Marks {
		if m.Shape != chart.ShapeBar || m.Height == 0 {
			continue
		}
		x0, y0 := px(m.X, left), px(m.Y, top)
		x1, y1 := px(m.X+m.Width, left), px(m.Y+m.Height, top)
		r.ResetStyle()
		r.SetFillColor(color(f.fill(m)))
		r.MoveTo(x0, y0)
		r.LineTo(x1, y0)
		r.LineTo(x1, y1)
		r.LineTo(x0, y1)
		r.Close()
		r.Fill()
	}

	if f.Stacked {
		r.ResetStyle()
		r.SetStrokeColor(drawing.ColorFromHex("333333"))
		r.SetStrokeWidth(1)
		y := px(f.Baseline, top)
		r.MoveTo(px(0, left), y)
		r.LineTo(px(f.Width-f.Margin.Left-f.Margin.Right, left), y)
		r.Stroke()
	}

	if err := r.Save(w); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}
	return nil
}

func writeLinePNG(w io.Writer, f Frame) error {
	if len(f.Series) == 0 || len(f.Series[0]) < 2 {
		return fmt.Errorf("%w: line chart needs at least 2 points", ErrNothingToDraw)
	}

	temporal := f.Series[0][0].X.Temporal
	series := make([]gochart.Series, 0, len(f.Series))
	for s, points := range f.Series {
		entry := f.Entries[s]
		style := gochart.Style{
			StrokeColor: color(entry.Fill(f.HighContrast)),
			StrokeWidth: 2,
		}
		if f.HighContrast {
			style.StrokeDashArray = parseDash(entry.DashArray())
		}

		ys := make([]float64, len(points))
		for i, p := range points {
			ys[i] = p.Y
		}
		if temporal {
			xs := make([]time.Time, len(points))
			for i, p := range points {
				xs[i] = p.X.Time
			}
			series = append(series, gochart.TimeSeries{Name: entry.Name, Style: style, XValues: xs, YValues: ys})
			continue
		}
		xs := make([]float64, len(points))
		for i := range points {
			xs[i] = float64(i)
		}
		series = append(series, gochart.ContinuousSeries{Name: entry.Name, Style: style, XValues: xs, YValues: ys})
	}

	labels := f.Series[0]
	graph := gochart.Chart{
		Width:  int(math.Ceil(f.Width)),
		Height: int(math.Ceil(f.Height)),
		Background: gochart.Style{
			Padding: gochart.Box{
				Top:    int(f.Margin.Top) + 20,
				Left:   int(f.Margin.Left),
				Right:  int(f.Margin.Right),
				Bottom: int(f.Margin.Bottom),
			},
		},
		XAxis: gochart.XAxis{
			ValueFormatter: func(v interface{}) string {
				x, ok := v.(float64)
				if !ok {
					return ""
				}
				if temporal {
					return gochart.TimeFromFloat64(x).Format("Jan 06")
				}
				if i := int(math.Round(x)); i >= 0 && i < len(labels) {
					return labels[i].X.Ordinal
				}
				return ""
			},
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{
		gochart.LegendLeft(&graph),
	}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("chart render failed: %w", err)
	}
	return nil
}

func writePiePNG(w io.Writer, f Frame) error {
	var values []gochart.Value
	for _, m := range f.Marks {
		if m.Shape != chart.ShapeSlice || m.Value <= 0 {
			continue
		}
		label := ""
		if m.Series < len(f.Entries) {
			label = f.Entries[m.Series].Name
		}
		values = append(values, gochart.Value{
			Value: m.Value,
			Label: label,
			Style: gochart.Style{FillColor: color(f.fill(m))},
		})
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: every slice is empty", ErrNothingToDraw)
	}

	pie := gochart.PieChart{
		Width:  int(math.Ceil(f.Width)),
		Height: int(math.Ceil(f.Height)),
		Values: values,
	}
	if err := pie.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("pie render failed: %w", err)
	}
	return nil
}

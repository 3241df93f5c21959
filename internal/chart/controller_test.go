package chart

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/bobmcallan/strata/internal/common"
	"github.com/bobmcallan/strata/internal/format"
	"github.com/bobmcallan/strata/internal/interfaces"
	"github.com/bobmcallan/strata/internal/models"
	"github.com/bobmcallan/strata/internal/scene"
)

var jan2024 = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// series builds monthly points starting January 2024.
func series(id int, ys ...float64) models.Series {
	s := make(models.Series, len(ys))
	for i, y := range ys {
		s[i] = models.DataPoint{X: models.TimeX(jan2024.AddDate(0, i, 0)), Y: y, ID: id}
	}
	return s
}

func named(s models.Series, name, color, alt, dash string) models.Series {
	s[0].Name, s[0].Color, s[0].AltColor, s[0].AltLineStyle = name, color, alt, dash
	return s
}

type fixture struct {
	doc   *scene.Document
	mount *html.Node
	chart *Controller
}

func newFixture(t *testing.T, ds models.Dataset, cfg Config) *fixture {
	t.Helper()
	doc := scene.NewDocument()
	mount := doc.Mount("chart")
	cfg.Element = mount
	c := NewController(doc, format.NewFormatter("en", ""), common.NewSilentLogger())
	require.NoError(t, c.Init(ds, cfg))
	return &fixture{doc: doc, mount: mount, chart: c}
}

type bar struct{ y, height float64 }

func bars(marks []Mark) []bar {
	var out []bar
	for _, m := range marks {
		if m.Shape == ShapeBar {
			out = append(out, bar{m.Y, m.Height})
		}
	}
	return out
}

func TestController_SingleSeriesAroundZero(t *testing.T) {
	f := newFixture(t, models.Dataset{series(1, -20, 20, 0)}, Config{Height: 300})

	assert.Equal(t, []bar{{150, 150}, {0, 150}, {150, 0}}, bars(f.chart.Marks()))
	assert.Equal(t, -20.0, f.chart.Layout().YMin)
	assert.Equal(t, 20.0, f.chart.Layout().YMax)
	assert.Equal(t, 150.0, f.chart.YScale().Baseline())
}

func TestController_TwoSeriesBar(t *testing.T) {
	ds := models.Dataset{series(1, -20, 20, 0), series(2, -10, -10, 10)}
	f := newFixture(t, ds, Config{Type: models.ChartTypeBar, Height: 300})

	assert.Equal(t, -30.0, f.chart.Layout().YMin)
	assert.Equal(t, 20.0, f.chart.Layout().YMax)
	assert.Equal(t, []bar{{120, 60}, {120, 60}, {60, 60}, {180, 120}, {0, 120}, {60, 0}}, bars(f.chart.Marks()))

	// the scene holds the same geometry in the same order
	rects := f.doc.SelectAll(f.mount, "g.marks rect")
	require.Len(t, rects, 6)
	y, _ := scene.Attr(rects[3], "y")
	h, _ := scene.Attr(rects[3], "height")
	assert.Equal(t, "180", y)
	assert.Equal(t, "120", h)
	assert.True(t, scene.HasClass(rects[3], "negative"))
}

func TestController_StackedBarKeepsDatasetOrder(t *testing.T) {
	ds := models.Dataset{series(1, -20, 20, 0), series(2, -10, -10, 10)}
	f := newFixture(t, ds, Config{Type: models.ChartTypeStackedBar, Height: 300})

	assert.Equal(t, -30.0, f.chart.Layout().YMin)
	assert.Equal(t, []bar{{120, 120}, {0, 120}, {120, 0}, {240, 60}, {120, 60}, {60, 60}}, bars(f.chart.Marks()))
	assert.Equal(t, 1, f.chart.Marks()[0].Key.ID)
}

func TestController_BarSpansDoNotOverlap(t *testing.T) {
	ds := models.Dataset{series(1, 5, -3, 0), series(2, -2, 4, 7), series(3, 6, -1, -8)}
	f := newFixture(t, ds, Config{Type: models.ChartTypeStackedBar, Height: 200})

	layout := f.chart.Layout()
	for i := 0; i < 3; i++ {
		pos, neg := 0.0, 0.0
		for s := range ds {
			span := layout.Spans[s][i]
			assert.LessOrEqual(t, span.Y0, span.Y1)
			if ds[s][i].Y >= 0 {
				assert.Equal(t, pos, span.Y0)
				pos = span.Y1
			} else {
				assert.Equal(t, neg, span.Y1)
				neg = span.Y0
			}
		}
		assert.LessOrEqual(t, layout.YMin, neg)
		assert.GreaterOrEqual(t, layout.YMax, pos)
	}
	assert.Equal(t, -8.0, layout.YMin)
	assert.Equal(t, 11.0, layout.YMax)
}

func TestController_BarsStayOnTheirSideOfBaseline(t *testing.T) {
	ds := models.Dataset{series(1, 5, -3, 0), series(2, -2, 4, 7), series(3, 6, -1, -8)}
	for _, typ := range []models.ChartType{models.ChartTypeBar, models.ChartTypeStackedBar} {
		t.Run(string(typ), func(t *testing.T) {
			f := newFixture(t, ds, Config{Type: typ, Height: 200})
			baseline := f.chart.YScale().Baseline()

			count := 0
			for _, m := range f.chart.Marks() {
				if m.Shape != ShapeBar {
					continue
				}
				count++
				assert.GreaterOrEqual(t, m.Height, 0.0)
				if m.Point.Y >= 0 {
					assert.LessOrEqual(t, m.Y+m.Height, baseline+1e-9, "positive bar %v crosses baseline", m.Key)
				} else {
					assert.GreaterOrEqual(t, m.Y, baseline-1e-9, "negative bar %v crosses baseline", m.Key)
				}
			}
			assert.Equal(t, 9, count)
		})
	}
}

func TestController_InitRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		ds   models.Dataset
		cfg  func(*Config)
		want error
	}{
		{"empty dataset", models.Dataset{}, nil, ErrEmptyDataset},
		{"length mismatch", models.Dataset{series(1, 1, 2), series(2, 1)}, nil, ErrSeriesLength},
		{"unknown type", models.Dataset{series(1, 1)}, func(c *Config) { c.Type = "radar" }, ErrUnknownChartType},
		{"no plot area", models.Dataset{series(1, 1)}, func(c *Config) { c.Margin = models.Margin{Top: 200, Bottom: 200} }, ErrInvalidSize},
		{"no mount", models.Dataset{series(1, 1)}, func(c *Config) { c.Element = nil }, ErrNoMount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := scene.NewDocument()
			cfg := Config{Element: doc.Mount("chart"), Height: 300}
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			c := NewController(doc, format.NewFormatter("en", ""), nil)
			err := c.Init(tt.ds, cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, IsPrecondition(err))
		})
	}
}

func TestController_InitTwice(t *testing.T) {
	f := newFixture(t, models.Dataset{series(1, 1)}, Config{})
	assert.ErrorIs(t, f.chart.Init(models.Dataset{series(1, 1)}, Config{Element: f.mount}), ErrAlreadyInit)
}

func TestController_DefaultSize(t *testing.T) {
	f := newFixture(t, models.Dataset{series(1, 1, 2)}, Config{})
	w, h, _ := f.chart.Size()
	assert.Equal(t, float64(DefaultWidth), w)
	assert.Equal(t, float64(DefaultHeight), h)

	root := f.doc.Select(f.mount, "svg.chart")
	require.NotNil(t, root)
	width, _ := scene.Attr(root, "width")
	assert.Equal(t, "600", width)
}

func TestController_LegendPrecedesChart(t *testing.T) {
	f := newFixture(t, models.Dataset{series(1, 1, 2)}, Config{})
	require.NotNil(t, f.mount.FirstChild)
	assert.True(t, scene.HasClass(f.mount.FirstChild, "legend"))
	assert.True(t, scene.HasClass(f.mount.LastChild, "chart"))

	require.NoError(t, f.chart.UpdateData(models.Dataset{series(1, 3, 4)}))
	assert.True(t, scene.HasClass(f.mount.FirstChild, "legend"))
	assert.True(t, scene.HasClass(f.mount.LastChild, "chart"))
}

func TestController_LegendReversedForBar(t *testing.T) {
	ds := models.Dataset{
		named(series(1, 1, 2), "Income", "#111111", "#000000", ""),
		named(series(2, 3, 4), "Costs", "#222222", "#E69F00", "4,2"),
	}
	f := newFixture(t, ds, Config{Type: models.ChartTypeBar})

	rows := f.chart.Legend().Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Costs", rows[0].Name)
	assert.Equal(t, "Income", rows[1].Name)

	f2 := newFixture(t, ds, Config{Type: models.ChartTypeStackedBar})
	rows = f2.chart.Legend().Rows()
	assert.Equal(t, "Income", rows[0].Name)
}

func TestController_InitialReadoutShowsLastPosition(t *testing.T) {
	f := newFixture(t, models.Dataset{series(1, 10, 20.5, -20)}, Config{Prefix: "$"})

	st, err := f.chart.State()
	require.NoError(t, err)
	assert.Equal(t, 2, st.HoverIndex)
	assert.Equal(t, "March 2024", st.DateLabel)
	require.Len(t, st.Legend, 1)
	assert.Equal(t, "-$20", st.Legend[0].Value)
}

func TestController_Hover(t *testing.T) {
	ds := models.Dataset{series(1, 10, 20.5, -20), series(2, 1, 2, 3)}
	f := newFixture(t, ds, Config{Type: models.ChartTypeStackedBar})

	require.NoError(t, f.chart.Hover(1))
	rows := f.chart.Legend().Rows()
	assert.Equal(t, "20.50", rows[0].Value)
	assert.Equal(t, "2", rows[1].Value)
	assert.Equal(t, "February 2024", scene.Text(f.chart.Legend().DateNode()))

	// out of range leaves the readout alone
	err := f.chart.Hover(3)
	var inv *InvariantError
	require.ErrorAs(t, err, &inv)
	assert.ErrorIs(t, err, ErrHoverIndex)
	assert.Equal(t, 3, inv.Index)
	assert.Equal(t, "20.50", f.chart.Legend().Rows()[0].Value)
	assert.ErrorIs(t, f.chart.Hover(-1), ErrHoverIndex)
}

func TestController_PointerMoveHovers(t *testing.T) {
	f := newFixture(t, models.Dataset{series(1, 1, 2, 3)}, Config{Width: 600})
	overlay := f.doc.Select(f.mount, "rect.overlay")
	require.NotNil(t, overlay)

	n := f.doc.Dispatch(overlay, interfaces.Event{Type: EventPointerMove, X: 250})
	assert.Equal(t, 1, n)
	st, err := f.chart.State()
	require.NoError(t, err)
	assert.Equal(t, 1, st.HoverIndex)
	assert.Equal(t, "2", st.Legend[0].Value)

	// positions past the edges clamp
	i, err := f.chart.HoverAt(-40)
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	i, err = f.chart.HoverAt(10000)
	require.NoError(t, err)
	assert.Equal(t, 2, i)
}

func TestController_ToggleHighContrast(t *testing.T) {
	ds := models.Dataset{named(series(1, 1, 2), "Income", "#4A90D9", "#000000", "4,2")}
	f := newFixture(t, ds, Config{Type: models.ChartTypeStackedBar})

	row := f.chart.Legend().Rows()[0]
	assert.Equal(t, "#4A90D9", row.Fill)
	assert.Equal(t, "6", row.CornerRadius)
	assert.True(t, row.IconVisible)
	assert.False(t, row.LineVisible)

	before := bars(f.chart.Marks())
	on, err := f.chart.ToggleHighContrast()
	require.NoError(t, err)
	assert.True(t, on)
	row = f.chart.Legend().Rows()[0]
	assert.Equal(t, "#000000", row.Fill)
	assert.Equal(t, "2", row.CornerRadius)
	assert.True(t, row.IconVisible)
	assert.False(t, row.LineVisible)
	assert.True(t, scene.HasClass(f.mount, "high-contrast"))

	// layout is untouched by the mode
	assert.Equal(t, before, bars(f.chart.Marks()))

	on, err = f.chart.ToggleHighContrast()
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, "#4A90D9", f.chart.Legend().Rows()[0].Fill)
	assert.False(t, scene.HasClass(f.mount, "high-contrast"))
}

func TestController_HighContrastFallsBackToSeriesColor(t *testing.T) {
	ds := models.Dataset{named(series(1, 1, 2), "Rent", "#123456", "", ""), series(2, 3, 4)}
	f := newFixture(t, ds, Config{Type: models.ChartTypeStackedBar, IsHighContrastMode: true})

	rows := f.chart.Legend().Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Rent", rows[0].Name)
	assert.Equal(t, "#123456", rows[0].Fill)
	assert.Empty(t, rows[0].AltColor)
	// palette series keep the palette's alt colour
	assert.Equal(t, DefaultPalette[1].AltColor, rows[1].Fill)
}

func TestController_SetHighContrastIsIdempotent(t *testing.T) {
	f := newFixture(t, models.Dataset{series(1, 1, 2)}, Config{})
	require.NoError(t, f.chart.SetHighContrast(true))
	first, err := f.doc.InnerHTML(f.mount)
	require.NoError(t, err)
	require.NoError(t, f.chart.SetHighContrast(true))
	second, err := f.doc.InnerHTML(f.mount)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestController_LineIconsInHighContrast(t *testing.T) {
	ds := models.Dataset{
		named(series(1, 1, 2), "Solid", "#111111", "#000000", ""),
		named(series(2, 3, 4), "Dashed", "#222222", "#E69F00", "4,2"),
	}
	f := newFixture(t, ds, Config{Type: models.ChartTypeLine, IsHighContrastMode: true})

	rows := f.chart.Legend().Rows()
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.False(t, row.IconVisible)
		assert.True(t, row.LineVisible)
	}
	assert.Equal(t, "0", rows[0].LineDashArray)
	assert.Equal(t, "4,2", rows[1].LineDashArray)

	// contrast events from the host switch it back
	f.doc.Dispatch(f.mount, interfaces.Event{Type: EventContrastChange, On: false})
	assert.False(t, f.chart.Mode().HighContrast)
	rows = f.chart.Legend().Rows()
	assert.True(t, rows[0].IconVisible)
	assert.False(t, rows[0].LineVisible)
}

func TestController_LineGeometry(t *testing.T) {
	ds := models.Dataset{series(1, 0, 10), series(2, 5, -10)}
	f := newFixture(t, ds, Config{Type: models.ChartTypeLine, Width: 200, Height: 100})

	// raw extrema, not cumulative sums
	assert.Equal(t, [2]float64{-10, 10}, f.chart.YScale().Domain())

	marks := f.chart.Marks()
	require.Len(t, marks, 6)
	assert.Equal(t, ShapeLine, marks[0].Shape)
	assert.Equal(t, "M50,50L150,0", marks[0].Attrs()[0].Value)
	assert.Equal(t, ShapeVertex, marks[1].Shape)
	assert.Equal(t, 50.0, marks[1].CX)
	assert.Equal(t, 50.0, marks[1].CY)

	assert.Len(t, f.doc.SelectAll(f.mount, "g.marks path"), 2)
	assert.Len(t, f.doc.SelectAll(f.mount, "g.marks circle"), 4)
}

func TestController_PieGeometry(t *testing.T) {
	ds := models.Dataset{series(1, 9, 1), series(2, 9, 3), series(3, 9, -2)}
	f := newFixture(t, ds, Config{Type: models.ChartTypePie, Width: 200, Height: 100, Suffix: "%"})

	marks := f.chart.Marks()
	require.Len(t, marks, 3)
	assert.InDelta(t, 0, marks[0].StartAngle, 1e-9)
	assert.InDelta(t, 1.5707963, marks[0].EndAngle, 1e-6)
	assert.InDelta(t, 6.2831853, marks[1].EndAngle, 1e-6)
	assert.Equal(t, marks[2].StartAngle, marks[2].EndAngle)
	assert.Equal(t, 50.0, marks[0].Radius)

	rows := f.chart.Legend().Rows()
	assert.Equal(t, "1%", rows[0].Value)
	assert.Equal(t, "3%", rows[1].Value)
	assert.Equal(t, "0", rows[1].LineDashArray)
}

func TestController_UpdateDataReconcilesByKey(t *testing.T) {
	ds := models.Dataset{series(1, 1, 2), series(2, 3, 4)}
	f := newFixture(t, ds, Config{Type: models.ChartTypeStackedBar, Height: 100})

	key := MarkKey{SeriesKey: SeriesKey{ID: 2}, Index: 0}
	before, ok := f.chart.registry.node(key)
	require.True(t, ok)

	// swapping the series keeps each element with its series
	require.NoError(t, f.chart.UpdateData(models.Dataset{series(2, 3, 4), series(1, 1, 2)}))
	after, ok := f.chart.registry.node(key)
	require.True(t, ok)
	assert.Same(t, before, after)
	y, _ := scene.Attr(after, "y")
	assert.Equal(t, "50", y)

	rects := f.doc.SelectAll(f.mount, "g.marks rect")
	require.Len(t, rects, 4)
	assert.Same(t, after, rects[0])

	// dropping a series removes its elements
	require.NoError(t, f.chart.UpdateData(models.Dataset{series(1, 1, 2)}))
	_, ok = f.chart.registry.node(key)
	assert.False(t, ok)
	assert.Len(t, f.doc.SelectAll(f.mount, "g.marks rect"), 2)
	assert.Len(t, f.chart.Legend().Rows(), 1)
}

func TestController_UpdateDataRejectsInvalid(t *testing.T) {
	f := newFixture(t, models.Dataset{series(1, 1, 2)}, Config{})
	bad := models.Dataset{series(1, 1, 2), series(2, 1)}
	assert.ErrorIs(t, f.chart.UpdateData(bad), ErrSeriesLength)
	assert.Len(t, f.chart.Marks(), 2)
}

func TestController_Resize(t *testing.T) {
	f := newFixture(t, models.Dataset{series(1, -20, 20, 0)}, Config{Height: 300})
	require.NoError(t, f.chart.Resize(300, 100))
	assert.Equal(t, []bar{{50, 50}, {0, 50}, {50, 0}}, bars(f.chart.Marks()))
	assert.Equal(t, 100.0, f.chart.XScale().Step())

	assert.ErrorIs(t, f.chart.Resize(0, 100), ErrInvalidSize)
}

func TestController_Destroy(t *testing.T) {
	f := newFixture(t, models.Dataset{series(1, 1, 2)}, Config{IsHighContrastMode: true})
	require.Equal(t, 2, f.doc.ListenerCount())
	require.True(t, scene.HasClass(f.mount, "high-contrast"))

	f.chart.Destroy()
	assert.Empty(t, f.doc.SelectAll(f.mount, "*"))
	assert.Equal(t, 0, f.doc.ListenerCount())
	assert.False(t, scene.HasClass(f.mount, "high-contrast"))
	assert.True(t, f.chart.Destroyed())

	assert.NotPanics(t, f.chart.Destroy)
	assert.ErrorIs(t, f.chart.Hover(0), ErrDestroyed)
	_, err := f.chart.ToggleHighContrast()
	assert.ErrorIs(t, err, ErrDestroyed)
	assert.ErrorIs(t, f.chart.UpdateData(models.Dataset{series(1, 1)}), ErrDestroyed)
}

func TestController_NotInitialised(t *testing.T) {
	c := NewController(scene.NewDocument(), format.NewFormatter("en", ""), nil)
	assert.ErrorIs(t, c.Hover(0), ErrNotInitialised)
	_, err := c.State()
	assert.ErrorIs(t, err, ErrNotInitialised)
	assert.NotPanics(t, c.Destroy)
}

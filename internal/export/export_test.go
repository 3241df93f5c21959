package export

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/strata/internal/chart"
	"github.com/bobmcallan/strata/internal/format"
	"github.com/bobmcallan/strata/internal/models"
	"github.com/bobmcallan/strata/internal/scene"
)

func monthly(id int, name string, ys ...float64) models.Series {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	s := make(models.Series, len(ys))
	for i, y := range ys {
		s[i] = models.DataPoint{X: models.TimeX(start.AddDate(0, i, 0)), Y: y, ID: id}
	}
	s[0].Name = name
	return s
}

func liveChart(t *testing.T, ds models.Dataset, cfg chart.Config) *chart.Controller {
	t.Helper()
	doc := scene.NewDocument()
	cfg.Element = doc.Mount("chart")
	c := chart.NewController(doc, format.NewFormatter("en", ""), nil)
	require.NoError(t, c.Init(ds, cfg))
	return c
}

func TestWriteSVG_Bars(t *testing.T) {
	c := liveChart(t, models.Dataset{monthly(1, "Income", -20, 20, 0)}, chart.Config{Width: 300, Height: 300})
	frame, err := FrameOf(c)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, frame))
	out := buf.String()

	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<?xml"))
	assert.Contains(t, out, `d="M5,150h90v150h-90Z"`)
	assert.Contains(t, out, `class="bar negative"`)
	assert.Contains(t, out, "Income")
	assert.Contains(t, out, "March 2024")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
}

func TestWriteSVG_HighContrastColours(t *testing.T) {
	s := monthly(1, "Income", 1, 2)
	s[0].Color, s[0].AltColor = "#4A90D9", "#000000"
	c := liveChart(t, models.Dataset{s}, chart.Config{})

	frame, err := FrameOf(c)
	require.NoError(t, err)
	var normal bytes.Buffer
	require.NoError(t, WriteSVG(&normal, frame))
	assert.Contains(t, normal.String(), "fill:#4A90D9")

	_, err = c.ToggleHighContrast()
	require.NoError(t, err)
	frame, err = FrameOf(c)
	require.NoError(t, err)
	var hc bytes.Buffer
	require.NoError(t, WriteSVG(&hc, frame))
	assert.NotContains(t, hc.String(), "fill:#4A90D9")
	assert.Contains(t, hc.String(), "fill:#000000")
}

func TestWriteSVG_LineDashInHighContrast(t *testing.T) {
	s := monthly(1, "Dashed", 1, 3, 2)
	s[0].AltLineStyle = "4,2"
	c := liveChart(t, models.Dataset{s}, chart.Config{Type: models.ChartTypeLine, IsHighContrastMode: true})

	frame, err := FrameOf(c)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, frame))
	assert.Contains(t, buf.String(), "stroke-dasharray:4,2")
}

func TestFrameOf_Destroyed(t *testing.T) {
	c := liveChart(t, models.Dataset{monthly(1, "A", 1)}, chart.Config{})
	c.Destroy()
	_, err := FrameOf(c)
	assert.ErrorIs(t, err, chart.ErrDestroyed)
}

func TestWritePNG_Bars(t *testing.T) {
	c := liveChart(t, models.Dataset{monthly(1, "A", 3, -1), monthly(2, "B", 2, 2)}, chart.Config{Width: 120, Height: 80})
	frame, err := FrameOf(c)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, frame))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestWritePNG_PieWithoutSlices(t *testing.T) {
	c := liveChart(t, models.Dataset{monthly(1, "A", 0), monthly(2, "B", -3)}, chart.Config{Type: models.ChartTypePie})
	frame, err := FrameOf(c)
	require.NoError(t, err)
	assert.ErrorIs(t, WritePNG(&bytes.Buffer{}, frame), ErrNothingToDraw)
}

func TestParseDash(t *testing.T) {
	assert.Equal(t, []float64{4, 2}, parseDash("4, 2"))
	assert.Nil(t, parseDash("0"))
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bobmcallan/strata/internal/app"
	"github.com/bobmcallan/strata/internal/common"
	"github.com/bobmcallan/strata/internal/models"
)

const scenarioBody = `{
  "type": "bar",
  "height": 300,
  "data": [
    [{"x":"A","y":-20,"id":1},{"x":"B","y":20,"id":1},{"x":"C","y":0,"id":1}],
    [{"x":"A","y":-10,"id":2},{"x":"B","y":-10,"id":2},{"x":"C","y":10,"id":2}]
  ]
}`

func newTestServer(t *testing.T, mutate func(*common.Config)) http.Handler {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Chart.Margin = models.Margin{}
	cfg.Server.RateLimit = 0
	if mutate != nil {
		mutate(cfg)
	}
	a := app.New(cfg, common.NewSilentLogger())
	t.Cleanup(a.Close)
	return NewServer(a).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeState(t *testing.T, rr *httptest.ResponseRecorder) models.ChartState {
	t.Helper()
	var st models.ChartState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st), rr.Body.String())
	return st
}

func createChart(t *testing.T, h http.Handler) models.ChartState {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/charts", scenarioBody)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeState(t, rr)
}

func TestNewServer_TimeoutsFromConfig(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Server.Port = 9123
	cfg.Server.ReadTimeout = "5s"
	cfg.Server.WriteTimeout = "2m"
	a := app.New(cfg, common.NewSilentLogger())
	t.Cleanup(a.Close)

	srv := NewServer(a)
	assert.Equal(t, "0.0.0.0:9123", srv.server.Addr)
	assert.Equal(t, 5*time.Second, srv.server.ReadTimeout)
	assert.Equal(t, 2*time.Minute, srv.server.WriteTimeout)
	assert.Equal(t, 60*time.Second, srv.server.IdleTimeout)
}

func TestServerShutdown_ReleasesCharts(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Server.RateLimit = 0
	a := app.New(cfg, common.NewSilentLogger())
	srv := NewServer(a)

	createChart(t, srv.Handler())
	require.Len(t, a.ChartService.ListCharts(context.Background()), 1)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.Empty(t, a.ChartService.ListCharts(context.Background()))
}

func TestHealthAndVersion(t *testing.T) {
	h := newTestServer(t, nil)

	rr := do(t, h, http.MethodGet, "/api/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Errorf("Unexpected health body: %s", rr.Body.String())
	}

	rr = do(t, h, http.MethodGet, "/api/version", "")
	var v common.VersionInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	assert.Equal(t, common.Version, v.Version)

	rr = do(t, h, http.MethodPost, "/api/health", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rr.Code)
	}
	if rr.Header().Get("Allow") != "GET, HEAD" {
		t.Errorf("Expected Allow header 'GET, HEAD', got %q", rr.Header().Get("Allow"))
	}
}

func TestDiagnostics(t *testing.T) {
	h := newTestServer(t, nil)
	createChart(t, h)

	rr := do(t, h, http.MethodGet, "/api/diagnostics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 1.0, body["live_charts"])
	assert.Equal(t, 100.0, body["max_charts"])
}

func TestChartLifecycle(t *testing.T) {
	h := newTestServer(t, nil)
	st := createChart(t, h)
	require.NotEmpty(t, st.ID)
	assert.Equal(t, -30.0, st.YMin)
	assert.Equal(t, "180", st.Marks[3].Attrs["y"])
	assert.Equal(t, 2, st.HoverIndex)

	base := "/api/charts/" + st.ID

	rr := do(t, h, http.MethodGet, "/api/charts", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Charts []models.ChartSummary `json:"charts"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Charts, 1)
	assert.Equal(t, st.ID, list.Charts[0].ID)

	rr = do(t, h, http.MethodPost, base+"/hover", `{"index": 0}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decodeState(t, rr)
	assert.Equal(t, "A", got.DateLabel)
	assert.Equal(t, "-10", got.Legend[0].Value)

	rr = do(t, h, http.MethodPost, base+"/hover", `{"x": 350}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decodeState(t, rr).HoverIndex)

	// toggle with an empty body, then set explicitly
	rr = do(t, h, http.MethodPost, base+"/contrast", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, decodeState(t, rr).HighContrast)
	rr = do(t, h, http.MethodPost, base+"/contrast", `{"on": true}`)
	assert.True(t, decodeState(t, rr).HighContrast)
	rr = do(t, h, http.MethodPost, base+"/contrast", `{"on": false}`)
	assert.False(t, decodeState(t, rr).HighContrast)

	rr = do(t, h, http.MethodPost, base+"/resize", `{"width": 300, "height": 150}`)
	require.Equal(t, http.StatusOK, rr.Code)
	got = decodeState(t, rr)
	assert.Equal(t, 300.0, got.Width)
	assert.Equal(t, "90", got.Marks[3].Attrs["y"])

	rr = do(t, h, http.MethodPut, base+"/data", `[[{"x":"A","y":5,"id":1}]]`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got = decodeState(t, rr)
	assert.Equal(t, 1, got.Series)
	assert.Equal(t, 1, got.Length)

	rr = do(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "chart_not_found")
}

func TestChartExport(t *testing.T) {
	h := newTestServer(t, nil)
	st := createChart(t, h)
	base := "/api/charts/" + st.ID

	tests := []struct {
		format      string
		contentType string
		prefix      string
	}{
		{"html", "text/html; charset=utf-8", `<div id="chart"`},
		{"svg", "image/svg+xml", "<?xml"},
		{"png", "image/png", "\x89PNG"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, base+"/"+tt.format, "")
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, tt.contentType, rr.Header().Get("Content-Type"))
			assert.True(t, strings.HasPrefix(strings.TrimSpace(rr.Body.String()), tt.prefix))
		})
	}

	rr := do(t, h, http.MethodGet, base+"/gif", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestChartErrors(t *testing.T) {
	h := newTestServer(t, func(c *common.Config) { c.Chart.MaxCharts = 1 })

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"bad json", http.MethodPost, "/api/charts", `{"data": [`, http.StatusBadRequest},
		{"no series", http.MethodPost, "/api/charts", `{"data": []}`, http.StatusBadRequest},
		{"misaligned", http.MethodPost, "/api/charts", `[[{"x":"A","y":1,"id":1}],[{"x":"B","y":1,"id":2}]]`, http.StatusUnprocessableEntity},
		{"unknown type", http.MethodPost, "/api/charts", `{"type":"radar","data":[[{"x":"A","y":1,"id":1}]]}`, http.StatusBadRequest},
		{"bad hover", http.MethodPost, "/api/charts/nope/hover", `{}`, http.StatusBadRequest},
		{"missing chart", http.MethodGet, "/api/charts/nope", "", http.StatusNotFound},
		{"wrong method", http.MethodPatch, "/api/charts/nope", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}

	st := createChart(t, h)
	rr := do(t, h, http.MethodPost, "/api/charts", scenarioBody)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/charts/"+st.ID+"/hover", `{"index": 9}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestChartRenderAndLayout(t *testing.T) {
	h := newTestServer(t, nil)

	rr := do(t, h, http.MethodPost, "/api/charts/render?format=svg", scenarioBody)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "image/svg+xml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "</svg>")

	rr = do(t, h, http.MethodPost, "/api/charts/render?format=bmp", scenarioBody)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/charts/layout", scenarioBody)
	require.Equal(t, http.StatusOK, rr.Code)
	st := decodeState(t, rr)
	assert.Equal(t, 20.0, st.YMax)
	assert.Empty(t, st.ID)

	// one-shot charts are not kept
	rr = do(t, h, http.MethodGet, "/api/charts", "")
	assert.Contains(t, rr.Body.String(), `"charts":[]`)
}

func TestChartImport(t *testing.T) {
	h := newTestServer(t, nil)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Quarter", "Income", "Costs"},
		{"Q1", 10, -5},
		{"Q2", 20, -10},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/charts/import?type=stackedBar&prefix=$", bytes.NewReader(buf.Bytes()))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	st := decodeState(t, rr)
	assert.Equal(t, models.ChartTypeStackedBar, st.Type)
	assert.Equal(t, 2, st.Series)
	assert.Equal(t, 2, st.Length)
	assert.Equal(t, "Q2", st.DateLabel)
	assert.Equal(t, "Income", st.Legend[0].Name)
	assert.Equal(t, "$20", st.Legend[0].Value)
	assert.NotEmpty(t, rr.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodPost, "/api/charts/import?sheet=Missing", bytes.NewReader(buf.Bytes()))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "import_failed")
}

func TestToolCatalog(t *testing.T) {
	h := newTestServer(t, nil)
	rr := do(t, h, http.MethodGet, "/api/mcp/tools", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var catalog []models.ToolDefinition
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &catalog))
	require.Len(t, catalog, len(buildToolCatalog()))

	seen := map[string]bool{}
	for _, td := range catalog {
		if td.Name == "" || td.Description == "" || td.Method == "" || td.Path == "" {
			t.Errorf("tool %+v is missing required fields", td)
		}
		if seen[td.Name] {
			t.Errorf("duplicate tool name %q", td.Name)
		}
		seen[td.Name] = true
	}
	assert.True(t, seen["render_chart"])
	assert.True(t, seen["chart_layout"])
}

func TestShutdownDisabledInProduction(t *testing.T) {
	h := newTestServer(t, func(c *common.Config) { c.Environment = "production" })
	rr := do(t, h, http.MethodPost, "/api/shutdown", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/strata/internal/chart"
	"github.com/bobmcallan/strata/internal/importer"
	"github.com/bobmcallan/strata/internal/models"
	"github.com/bobmcallan/strata/internal/services/charts"
)

// writeChartError maps chart service errors onto HTTP status codes.
func (s *Server) writeChartError(w http.ResponseWriter, r *http.Request, err error) {
	var invErr *chart.InvariantError
	var impErr *importer.ImportError
	switch {
	case errors.Is(err, charts.ErrChartNotFound):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "chart_not_found")
	case errors.Is(err, chart.ErrDestroyed):
		WriteErrorWithCode(w, http.StatusGone, err.Error(), "chart_destroyed")
	case errors.Is(err, charts.ErrTooManyCharts):
		WriteErrorWithCode(w, http.StatusTooManyRequests, err.Error(), "chart_limit")
	case errors.As(err, &invErr):
		WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "invalid_data")
	case errors.As(err, &impErr):
		WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "import_failed")
	case chart.IsPrecondition(err),
		errors.Is(err, charts.ErrBadFormat),
		errors.Is(err, charts.ErrBadHover):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "bad_request")
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Chart request failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// handleChartCollection handles GET (list) and POST (create) on /api/charts.
func (s *Server) handleChartCollection(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodGet {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"charts": s.app.ChartService.ListCharts(ctx),
		})
		return
	}

	req, ok := s.decodeChartRequest(w, r)
	if !ok {
		return
	}
	state, err := s.app.ChartService.CreateChart(ctx, req)
	if err != nil {
		s.writeChartError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/charts/"+state.ID)
	WriteJSON(w, http.StatusCreated, state)
}

// decodeChartRequest reads a full chart request or a bare dataset array.
func (s *Server) decodeChartRequest(w http.ResponseWriter, r *http.Request) (models.ChartRequest, bool) {
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return models.ChartRequest{}, false
	}
	req, err := importer.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return models.ChartRequest{}, false
	}
	return req, true
}

// handleChart handles GET and DELETE on /api/charts/{id}.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodDelete) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodDelete {
		if err := s.app.ChartService.DeleteChart(ctx, id); err != nil {
			s.writeChartError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	state, err := s.app.ChartService.GetChart(ctx, id)
	if err != nil {
		s.writeChartError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, state)
}

// handleChartData handles PUT /api/charts/{id}/data.
func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}
	req, ok := s.decodeChartRequest(w, r)
	if !ok {
		return
	}
	state, err := s.app.ChartService.UpdateData(r.Context(), id, req.Data)
	if err != nil {
		s.writeChartError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, state)
}

// handleChartHover handles POST /api/charts/{id}/hover with {"index": n} or {"x": px}.
func (s *Server) handleChartHover(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req models.HoverRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	state, err := s.app.ChartService.Hover(r.Context(), id, req)
	if err != nil {
		s.writeChartError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, state)
}

// handleChartContrast handles POST /api/charts/{id}/contrast. A body of
// {"on": bool} sets the mode; an empty body toggles it.
func (s *Server) handleChartContrast(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var body struct {
		On *bool `json:"on"`
	}
	if r.ContentLength != 0 && r.Body != nil {
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid body: "+err.Error())
			return
		}
		if len(bytes.TrimSpace(raw)) > 0 {
			r.Body = io.NopCloser(bytes.NewReader(raw))
			if !DecodeJSON(w, r, &body) {
				return
			}
		}
	}

	state, err := s.app.ChartService.SetContrast(r.Context(), id, body.On)
	if err != nil {
		s.writeChartError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, state)
}

// handleChartResize handles POST /api/charts/{id}/resize with {"width": w, "height": h}.
func (s *Server) handleChartResize(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}
	state, err := s.app.ChartService.Resize(r.Context(), id, body.Width, body.Height)
	if err != nil {
		s.writeChartError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, state)
}

// handleChartExport handles GET /api/charts/{id}/{html|svg|png}.
func (s *Server) handleChartExport(w http.ResponseWriter, r *http.Request, id string, format models.ExportFormat) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	var buf bytes.Buffer
	if err := s.app.ChartService.Export(r.Context(), id, format, &buf); err != nil {
		s.writeChartError(w, r, err)
		return
	}
	writeBody(w, format, buf.Bytes())
}

// handleChartRender handles POST /api/charts/render?format=svg: a one-shot render.
func (s *Server) handleChartRender(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := s.decodeChartRequest(w, r)
	if !ok {
		return
	}
	format := queryFormat(r)

	var buf bytes.Buffer
	if err := s.app.ChartService.Render(r.Context(), req, format, &buf); err != nil {
		s.writeChartError(w, r, err)
		return
	}
	writeBody(w, format, buf.Bytes())
}

// handleChartLayout handles POST /api/charts/layout: the state of a chart
// computed once and discarded.
func (s *Server) handleChartLayout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := s.decodeChartRequest(w, r)
	if !ok {
		return
	}
	state, err := s.app.ChartService.Layout(r.Context(), req)
	if err != nil {
		s.writeChartError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, state)
}

// handleChartImport handles POST /api/charts/import: the body is an XLSX
// workbook; chart options come from the query string.
func (s *Server) handleChartImport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return
	}

	q := r.URL.Query()
	ds, err := importer.ReadXLSX(http.MaxBytesReader(w, r.Body, maxUploadBytes), q.Get("sheet"))
	if err != nil {
		s.writeChartError(w, r, err)
		return
	}

	req := models.ChartRequest{Data: ds}
	req.Type = models.ChartType(q.Get("type"))
	if q.Has("prefix") {
		req.Prefix = models.StringOption(q.Get("prefix"))
	}
	if q.Has("suffix") {
		req.Suffix = models.StringOption(q.Get("suffix"))
	}
	if v, ok := QueryBool(r, "rounded"); ok {
		req.DisplayRoundedData = models.BoolOption(v)
	}
	if v, ok := QueryBool(r, "high_contrast"); ok {
		req.IsHighContrastMode = models.BoolOption(v)
	}
	if v, ok := QueryFloat(r, "width"); ok {
		req.Width = v
	}
	if v, ok := QueryFloat(r, "height"); ok {
		req.Height = v
	}

	state, err := s.app.ChartService.CreateChart(r.Context(), req)
	if err != nil {
		s.writeChartError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/charts/"+state.ID)
	WriteJSON(w, http.StatusCreated, state)
}

func queryFormat(r *http.Request) models.ExportFormat {
	if f := r.URL.Query().Get("format"); f != "" {
		return models.ExportFormat(strings.ToLower(f))
	}
	return models.ExportSVG
}

func writeBody(w http.ResponseWriter, format models.ExportFormat, body []byte) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

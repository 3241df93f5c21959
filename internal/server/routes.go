package server

import (
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/bobmcallan/strata/internal/common"
	"github.com/bobmcallan/strata/internal/models"
)

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("/api/mcp/tools", s.handleToolCatalog)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Charts
	mux.HandleFunc("/api/charts/import", s.handleChartImport)
	mux.HandleFunc("/api/charts/render", s.handleChartRender)
	mux.HandleFunc("/api/charts/layout", s.handleChartLayout)
	mux.HandleFunc("/api/charts/", s.routeCharts)
	mux.HandleFunc("/api/charts", s.handleChartCollection)
}

// routeCharts dispatches /api/charts/{id}/* to the appropriate handler.
func (s *Server) routeCharts(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/charts/", "")
	if id == "" {
		s.handleChartCollection(w, r)
		return
	}
	subpath := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/charts/"+id), "/")

	switch subpath {
	case "":
		s.handleChart(w, r, id)
	case "data":
		s.handleChartData(w, r, id)
	case "hover":
		s.handleChartHover(w, r, id)
	case "contrast":
		s.handleChartContrast(w, r, id)
	case "resize":
		s.handleChartResize(w, r, id)
	case string(models.ExportHTML), string(models.ExportSVG), string(models.ExportPNG):
		s.handleChartExport(w, r, id, models.ExportFormat(subpath))
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	v := common.GetVersionInfo()

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":       v.Version,
		"build":         v.Build,
		"commit":        v.Commit,
		"uptime":        time.Since(s.app.StartupTime).Round(time.Second).String(),
		"started_at":    s.app.StartupTime,
		"live_charts":   len(s.app.ChartService.ListCharts(r.Context())),
		"max_charts":    s.app.Config.Chart.MaxCharts,
		"heap_alloc_mb": float64(m.HeapAlloc) / 1024 / 1024,
		"num_gc":        m.NumGC,
	})
}

func (s *Server) handleToolCatalog(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, buildToolCatalog())
}

package server

import "github.com/bobmcallan/strata/internal/models"

// buildToolCatalog returns the MCP tool catalog describing all active tools
// and their HTTP mappings. Used by GET /api/mcp/tools for dynamic tool registration.
func buildToolCatalog() []models.ToolDefinition {
	chartIDParam := models.ParamDefinition{
		Name:        "chart_id",
		Type:        "string",
		Description: "ID of a live chart returned by create_chart",
		Required:    true,
		In:          "path",
	}
	dataParam := models.ParamDefinition{
		Name:        "data",
		Type:        "array",
		Description: "Dataset: an array of series, each an array of {x, y, id} points. Series order is stacking order.",
		Required:    true,
		In:          "body",
	}
	optionParams := []models.ParamDefinition{
		dataParam,
		{Name: "type", Type: "string", Description: "Chart type: bar, stackedBar, line or pie", In: "body"},
		{Name: "width", Type: "number", Description: "Chart width in pixels (default: 600)", In: "body"},
		{Name: "height", Type: "number", Description: "Chart height in pixels (default: 300)", In: "body"},
		{Name: "prefix", Type: "string", Description: "Text placed before legend values", In: "body"},
		{Name: "suffix", Type: "string", Description: "Text placed after legend values", In: "body"},
		{Name: "displayRoundedData", Type: "boolean", Description: "Round legend values to whole numbers", In: "body"},
		{Name: "isHighContrastMode", Type: "boolean", Description: "Start in high-contrast mode", In: "body"},
	}
	formatParam := models.ParamDefinition{
		Name:        "format",
		Type:        "string",
		Description: "Output format: svg, html or png (default: svg)",
		In:          "query",
	}

	return []models.ToolDefinition{
		// --- System ---
		{
			Name:        "get_version",
			Description: "Get the Strata server version and status. Use this to verify connectivity.",
			Method:      "GET",
			Path:        "/api/version",
		},
		{
			Name:        "get_diagnostics",
			Description: "Get server diagnostics: uptime, version, live chart count, heap usage.",
			Method:      "GET",
			Path:        "/api/diagnostics",
		},

		// --- One-shot ---
		{
			Name:        "render_chart",
			Description: "Render a chart once and return it as SVG, HTML or PNG.",
			Method:      "POST",
			Path:        "/api/charts/render",
			Params:      append([]models.ParamDefinition{formatParam}, optionParams...),
		},
		{
			Name:        "chart_layout",
			Description: "Compute a chart layout without keeping it: value domain, baseline, mark geometry and legend readout.",
			Method:      "POST",
			Path:        "/api/charts/layout",
			Params:      optionParams,
		},

		// --- Live charts ---
		{
			Name:        "create_chart",
			Description: "Create a live chart and return its state.",
			Method:      "POST",
			Path:        "/api/charts",
			Params:      optionParams,
		},
		{
			Name:        "import_chart",
			Description: "Create a live chart from an XLSX workbook body. Column A holds x keys, row 1 names the series.",
			Method:      "POST",
			Path:        "/api/charts/import",
			Params: []models.ParamDefinition{
				{Name: "sheet", Type: "string", Description: "Sheet name (default: first sheet)", In: "query"},
				{Name: "type", Type: "string", Description: "Chart type: bar, stackedBar, line or pie", In: "query"},
				{Name: "width", Type: "number", Description: "Chart width in pixels", In: "query"},
				{Name: "height", Type: "number", Description: "Chart height in pixels", In: "query"},
			},
		},
		{
			Name:        "list_charts",
			Description: "List live charts, oldest first.",
			Method:      "GET",
			Path:        "/api/charts",
		},
		{
			Name:        "get_chart",
			Description: "Get the current state of a live chart.",
			Method:      "GET",
			Path:        "/api/charts/{chart_id}",
			Params:      []models.ParamDefinition{chartIDParam},
		},
		{
			Name:        "update_chart_data",
			Description: "Replace the dataset of a live chart. Marks are reconciled by series id and position.",
			Method:      "PUT",
			Path:        "/api/charts/{chart_id}/data",
			Params:      []models.ParamDefinition{chartIDParam, dataParam},
		},
		{
			Name:        "hover_chart",
			Description: "Move the legend readout to an x index, or to the band nearest a pointer x position.",
			Method:      "POST",
			Path:        "/api/charts/{chart_id}/hover",
			Params: []models.ParamDefinition{
				chartIDParam,
				{Name: "index", Type: "number", Description: "X position index (takes precedence over x)", In: "body"},
				{Name: "x", Type: "number", Description: "Pointer x position in plot coordinates", In: "body"},
			},
		},
		{
			Name:        "set_contrast",
			Description: "Set high-contrast mode on a live chart. Omit 'on' to toggle.",
			Method:      "POST",
			Path:        "/api/charts/{chart_id}/contrast",
			Params: []models.ParamDefinition{
				chartIDParam,
				{Name: "on", Type: "boolean", Description: "Final mode", In: "body"},
			},
		},
		{
			Name:        "resize_chart",
			Description: "Change the size of a live chart and recompute its layout.",
			Method:      "POST",
			Path:        "/api/charts/{chart_id}/resize",
			Params: []models.ParamDefinition{
				chartIDParam,
				{Name: "width", Type: "number", Description: "Chart width in pixels", Required: true, In: "body"},
				{Name: "height", Type: "number", Description: "Chart height in pixels", Required: true, In: "body"},
			},
		},
		{
			Name:        "export_chart",
			Description: "Export a live chart in its current mode. Format is the last path segment: html, svg or png.",
			Method:      "GET",
			Path:        "/api/charts/{chart_id}/{format}",
			Params: []models.ParamDefinition{
				chartIDParam,
				{Name: "format", Type: "string", Description: "html, svg or png", Required: true, In: "path"},
			},
		},
		{
			Name:        "delete_chart",
			Description: "Destroy a live chart and release it.",
			Method:      "DELETE",
			Path:        "/api/charts/{chart_id}",
			Params:      []models.ParamDefinition{chartIDParam},
		},
	}
}

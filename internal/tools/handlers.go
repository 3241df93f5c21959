package tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/strata/internal/common"
	"github.com/bobmcallan/strata/internal/importer"
	"github.com/bobmcallan/strata/internal/interfaces"
	"github.com/bobmcallan/strata/internal/models"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		v := common.GetVersionInfo()
		result := fmt.Sprintf("Strata MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			v.Version, v.Build, v.Commit)
		return textResult(result), nil
	}
}

// handleRenderChart implements the render_chart tool
func handleRenderChart(charts interfaces.ChartService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := chartRequest(request.Params.Arguments)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		format := exportFormat(request.Params.Arguments)

		var buf bytes.Buffer
		if err := charts.Render(ctx, req, format, &buf); err != nil {
			logger.Warn().Err(err).Str("format", string(format)).Msg("render_chart failed")
			return errorResult(fmt.Sprintf("Render error: %v", err)), nil
		}
		return exportResult(format, buf.Bytes()), nil
	}
}

// handleChartLayout implements the chart_layout tool
func handleChartLayout(charts interfaces.ChartService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := chartRequest(request.Params.Arguments)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		state, err := charts.Layout(ctx, req)
		if err != nil {
			logger.Warn().Err(err).Msg("chart_layout failed")
			return errorResult(fmt.Sprintf("Layout error: %v", err)), nil
		}
		return jsonResult(state)
	}
}

// handleCreateChart implements the create_chart tool
func handleCreateChart(charts interfaces.ChartService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := chartRequest(request.Params.Arguments)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		state, err := charts.CreateChart(ctx, req)
		if err != nil {
			logger.Warn().Err(err).Msg("create_chart failed")
			return errorResult(fmt.Sprintf("Create error: %v", err)), nil
		}
		return jsonResult(state)
	}
}

// handleListCharts implements the list_charts tool
func handleListCharts(charts interfaces.ChartService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list := charts.ListCharts(ctx)
		if len(list) == 0 {
			return textResult("No live charts."), nil
		}
		var sb strings.Builder
		sb.WriteString("| ID | Type | Series | Points | High contrast |\n")
		sb.WriteString("|----|------|--------|--------|---------------|\n")
		for _, c := range list {
			fmt.Fprintf(&sb, "| %s | %s | %d | %d | %t |\n", c.ID, c.Type, c.Series, c.Length, c.HighContrast)
		}
		return textResult(sb.String()), nil
	}
}

// handleGetChart implements the get_chart tool
func handleGetChart(charts interfaces.ChartService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := argString(request.Params.Arguments, "chart_id")
		if id == "" {
			return errorResult("Error: chart_id parameter is required"), nil
		}
		state, err := charts.GetChart(ctx, id)
		if err != nil {
			return errorResult(fmt.Sprintf("Chart error: %v", err)), nil
		}
		return jsonResult(state)
	}
}

// handleUpdateChartData implements the update_chart_data tool
func handleUpdateChartData(charts interfaces.ChartService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := argString(request.Params.Arguments, "chart_id")
		if id == "" {
			return errorResult("Error: chart_id parameter is required"), nil
		}
		req, err := chartRequest(request.Params.Arguments)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		state, err := charts.UpdateData(ctx, id, req.Data)
		if err != nil {
			return errorResult(fmt.Sprintf("Update error: %v", err)), nil
		}
		return jsonResult(state)
	}
}

// handleHoverChart implements the hover_chart tool
func handleHoverChart(charts interfaces.ChartService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.Params.Arguments
		id := argString(args, "chart_id")
		if id == "" {
			return errorResult("Error: chart_id parameter is required"), nil
		}

		var hover models.HoverRequest
		if v, ok := argNumber(args, "index"); ok {
			if v != math.Trunc(v) {
				return errorResult("Error: index must be a whole number"), nil
			}
			i := int(v)
			hover.Index = &i
		}
		if v, ok := argNumber(args, "x"); ok {
			hover.X = &v
		}

		state, err := charts.Hover(ctx, id, hover)
		if err != nil {
			return errorResult(fmt.Sprintf("Hover error: %v", err)), nil
		}
		return textResult(formatReadout(state)), nil
	}
}

// handleSetContrast implements the set_contrast tool
func handleSetContrast(charts interfaces.ChartService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.Params.Arguments
		id := argString(args, "chart_id")
		if id == "" {
			return errorResult("Error: chart_id parameter is required"), nil
		}

		var on *bool
		if v, ok := args["on"].(bool); ok {
			on = &v
		}
		state, err := charts.SetContrast(ctx, id, on)
		if err != nil {
			return errorResult(fmt.Sprintf("Contrast error: %v", err)), nil
		}
		return textResult(fmt.Sprintf("Chart %s high contrast: %t", state.ID, state.HighContrast)), nil
	}
}

// handleResizeChart implements the resize_chart tool
func handleResizeChart(charts interfaces.ChartService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.Params.Arguments
		id := argString(args, "chart_id")
		if id == "" {
			return errorResult("Error: chart_id parameter is required"), nil
		}
		width, okW := argNumber(args, "width")
		height, okH := argNumber(args, "height")
		if !okW || !okH {
			return errorResult("Error: width and height parameters are required"), nil
		}

		state, err := charts.Resize(ctx, id, width, height)
		if err != nil {
			return errorResult(fmt.Sprintf("Resize error: %v", err)), nil
		}
		return jsonResult(state)
	}
}

// handleExportChart implements the export_chart tool
func handleExportChart(charts interfaces.ChartService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := argString(request.Params.Arguments, "chart_id")
		if id == "" {
			return errorResult("Error: chart_id parameter is required"), nil
		}
		format := exportFormat(request.Params.Arguments)

		var buf bytes.Buffer
		if err := charts.Export(ctx, id, format, &buf); err != nil {
			return errorResult(fmt.Sprintf("Export error: %v", err)), nil
		}
		return exportResult(format, buf.Bytes()), nil
	}
}

// handleDeleteChart implements the delete_chart tool
func handleDeleteChart(charts interfaces.ChartService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := argString(request.Params.Arguments, "chart_id")
		if id == "" {
			return errorResult("Error: chart_id parameter is required"), nil
		}
		if err := charts.DeleteChart(ctx, id); err != nil {
			return errorResult(fmt.Sprintf("Delete error: %v", err)), nil
		}
		logger.Debug().Str("chart_id", id).Msg("Chart deleted via MCP")
		return textResult(fmt.Sprintf("Chart %s deleted.", id)), nil
	}
}

// chartRequest builds a chart request from tool arguments. "data" may be a
// JSON string or an already decoded value; explicit option arguments
// override the options carried in the data.
func chartRequest(args map[string]interface{}) (models.ChartRequest, error) {
	raw, ok := args["data"]
	if !ok || raw == nil {
		return models.ChartRequest{}, fmt.Errorf("data parameter is required")
	}

	var body []byte
	if s, ok := raw.(string); ok {
		body = []byte(s)
	} else {
		b, err := json.Marshal(raw)
		if err != nil {
			return models.ChartRequest{}, fmt.Errorf("invalid data: %w", err)
		}
		body = b
	}

	req, err := importer.DecodeJSON(bytes.NewReader(body))
	if err != nil {
		return models.ChartRequest{}, err
	}

	if v := argString(args, "type"); v != "" {
		req.Type = models.ChartType(v)
	}
	if v, ok := argNumber(args, "width"); ok {
		req.Width = v
	}
	if v, ok := argNumber(args, "height"); ok {
		req.Height = v
	}
	if v, ok := args["prefix"].(string); ok {
		req.Prefix = models.StringOption(v)
	}
	if v, ok := args["suffix"].(string); ok {
		req.Suffix = models.StringOption(v)
	}
	if v, ok := args["rounded"].(bool); ok {
		req.DisplayRoundedData = models.BoolOption(v)
	}
	if v, ok := args["high_contrast"].(bool); ok {
		req.IsHighContrastMode = models.BoolOption(v)
	}
	return req, nil
}

func exportFormat(args map[string]interface{}) models.ExportFormat {
	if v := argString(args, "format"); v != "" {
		return models.ExportFormat(strings.ToLower(v))
	}
	return models.ExportSVG
}

func exportResult(format models.ExportFormat, data []byte) *mcp.CallToolResult {
	if format == models.ExportPNG {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.ImageContent{
					Type:     "image",
					Data:     base64.StdEncoding.EncodeToString(data),
					MIMEType: "image/png",
				},
			},
		}
	}
	return textResult(string(data))
}

// formatReadout renders the legend readout of a chart as markdown.
func formatReadout(state *models.ChartState) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** (index %d)\n\n", state.DateLabel, state.HoverIndex)
	for _, row := range state.Legend {
		fmt.Fprintf(&sb, "- %s: %s\n", row.Name, row.Value)
	}
	return sb.String()
}

func argString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// argNumber reads a numeric argument. JSON numbers arrive as float64.
func argNumber(args map[string]interface{}, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Encoding error: %v", err)), nil
	}
	return textResult(string(data)), nil
}

// Helper functions

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: message,
			},
		},
		IsError: true,
	}
}

// Package tools registers the Strata MCP tools.
package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/strata/internal/common"
	"github.com/bobmcallan/strata/internal/interfaces"
)

// Register registers all tools with the MCP server.
func Register(s *server.MCPServer, charts interfaces.ChartService, logger *common.Logger) {
	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createRenderChartTool(), handleRenderChart(charts, logger))
	s.AddTool(createChartLayoutTool(), handleChartLayout(charts, logger))
	s.AddTool(createCreateChartTool(), handleCreateChart(charts, logger))
	s.AddTool(createListChartsTool(), handleListCharts(charts))
	s.AddTool(createGetChartTool(), handleGetChart(charts))
	s.AddTool(createUpdateChartDataTool(), handleUpdateChartData(charts))
	s.AddTool(createHoverChartTool(), handleHoverChart(charts))
	s.AddTool(createSetContrastTool(), handleSetContrast(charts))
	s.AddTool(createResizeChartTool(), handleResizeChart(charts))
	s.AddTool(createExportChartTool(), handleExportChart(charts))
	s.AddTool(createDeleteChartTool(), handleDeleteChart(charts, logger))
}

const dataDescription = "Chart data as JSON: either a bare dataset (an array of series, each an array of {x, y, id} points) or a full request object with a \"data\" field and chart options."

// chartOptionParams are shared by every tool that builds a chart from data.
func chartOptionParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("data",
			mcp.Required(),
			mcp.Description(dataDescription),
		),
		mcp.WithString("type",
			mcp.Description("Chart type: bar, stackedBar, line or pie (default from config)"),
		),
		mcp.WithNumber("width",
			mcp.Description("Chart width in pixels (default: 600)"),
		),
		mcp.WithNumber("height",
			mcp.Description("Chart height in pixels (default: 300)"),
		),
		mcp.WithString("prefix",
			mcp.Description("Text placed before legend values, e.g. '$'"),
		),
		mcp.WithString("suffix",
			mcp.Description("Text placed after legend values, e.g. '%'"),
		),
		mcp.WithBoolean("rounded",
			mcp.Description("Round legend values to whole numbers"),
		),
		mcp.WithBoolean("high_contrast",
			mcp.Description("Start in high-contrast mode"),
		),
	}
}

func chartIDParam() mcp.ToolOption {
	return mcp.WithString("chart_id",
		mcp.Required(),
		mcp.Description("ID of a live chart returned by create_chart"),
	)
}

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the Strata MCP server version and status. Use this to verify connectivity."),
	)
}

// createRenderChartTool returns the render_chart tool definition
func createRenderChartTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Render a chart once and return it. SVG and HTML are returned as text, PNG as an image."),
		mcp.WithString("format",
			mcp.Description("Output format: svg, html or png (default: svg)"),
		),
	}, chartOptionParams()...)
	return mcp.NewTool("render_chart", opts...)
}

// createChartLayoutTool returns the chart_layout tool definition
func createChartLayoutTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Compute a chart layout without keeping it: value domain, baseline, mark geometry and the legend readout, as JSON."),
	}, chartOptionParams()...)
	return mcp.NewTool("chart_layout", opts...)
}

// createCreateChartTool returns the create_chart tool definition
func createCreateChartTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Create a live chart and return its state. The chart keeps its legend readout and mode until deleted."),
	}, chartOptionParams()...)
	return mcp.NewTool("create_chart", opts...)
}

// createListChartsTool returns the list_charts tool definition
func createListChartsTool() mcp.Tool {
	return mcp.NewTool("list_charts",
		mcp.WithDescription("List live charts, oldest first."),
	)
}

// createGetChartTool returns the get_chart tool definition
func createGetChartTool() mcp.Tool {
	return mcp.NewTool("get_chart",
		mcp.WithDescription("Get the current state of a live chart."),
		chartIDParam(),
	)
}

// createUpdateChartDataTool returns the update_chart_data tool definition
func createUpdateChartDataTool() mcp.Tool {
	return mcp.NewTool("update_chart_data",
		mcp.WithDescription("Replace the dataset of a live chart. Marks are reconciled by series id and position; the legend is rebuilt."),
		chartIDParam(),
		mcp.WithString("data",
			mcp.Required(),
			mcp.Description(dataDescription),
		),
	)
}

// createHoverChartTool returns the hover_chart tool definition
func createHoverChartTool() mcp.Tool {
	return mcp.NewTool("hover_chart",
		mcp.WithDescription("Move the legend readout of a live chart to an x index, or to the band nearest a pointer x position."),
		chartIDParam(),
		mcp.WithNumber("index",
			mcp.Description("X position index (takes precedence over x)"),
		),
		mcp.WithNumber("x",
			mcp.Description("Pointer x position in plot coordinates"),
		),
	)
}

// createSetContrastTool returns the set_contrast tool definition
func createSetContrastTool() mcp.Tool {
	return mcp.NewTool("set_contrast",
		mcp.WithDescription("Set high-contrast mode on a live chart. Omit 'on' to toggle."),
		chartIDParam(),
		mcp.WithBoolean("on",
			mcp.Description("Final mode: true for high contrast, false for normal"),
		),
	)
}

// createResizeChartTool returns the resize_chart tool definition
func createResizeChartTool() mcp.Tool {
	return mcp.NewTool("resize_chart",
		mcp.WithDescription("Change the size of a live chart and recompute its layout."),
		chartIDParam(),
		mcp.WithNumber("width",
			mcp.Required(),
			mcp.Description("Chart width in pixels"),
		),
		mcp.WithNumber("height",
			mcp.Required(),
			mcp.Description("Chart height in pixels"),
		),
	)
}

// createExportChartTool returns the export_chart tool definition
func createExportChartTool() mcp.Tool {
	return mcp.NewTool("export_chart",
		mcp.WithDescription("Export a live chart as SVG, HTML or PNG in its current mode."),
		chartIDParam(),
		mcp.WithString("format",
			mcp.Description("Output format: svg, html or png (default: svg)"),
		),
	)
}

// createDeleteChartTool returns the delete_chart tool definition
func createDeleteChartTool() mcp.Tool {
	return mcp.NewTool("delete_chart",
		mcp.WithDescription("Destroy a live chart and release it."),
		chartIDParam(),
	)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/strata/internal/app"
	"github.com/bobmcallan/strata/internal/common"
	"github.com/bobmcallan/strata/internal/importer"
	"github.com/bobmcallan/strata/internal/models"
)

// chartFlags are the chart options shared by render and layout.
type chartFlags struct {
	chartType    string
	width        float64
	height       float64
	prefix       string
	suffix       string
	rounded      bool
	highContrast bool
	sheet        string
}

func (f *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.chartType, "type", "t", "", "Chart type: bar, stackedBar, line, pie (default from config)")
	cmd.Flags().Float64Var(&f.width, "width", 0, "Chart width in pixels (default from config)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "Chart height in pixels (default from config)")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "Text placed before legend values")
	cmd.Flags().StringVar(&f.suffix, "suffix", "", "Text placed after legend values")
	cmd.Flags().BoolVar(&f.rounded, "rounded", false, "Round legend values to whole numbers")
	cmd.Flags().BoolVar(&f.highContrast, "high-contrast", false, "Render in high-contrast mode")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Sheet to read from an XLSX input (default: first sheet)")
}

// apply overrides request options with the flags that were set on cmd.
// An explicit --high-contrast=false or --prefix="" overrides the input file.
func (f *chartFlags) apply(cmd *cobra.Command, req *models.ChartRequest) {
	changed := cmd.Flags().Changed
	if f.chartType != "" {
		req.Type = models.ChartType(f.chartType)
	}
	if f.width > 0 {
		req.Width = f.width
	}
	if f.height > 0 {
		req.Height = f.height
	}
	if changed("prefix") {
		req.Prefix = models.StringOption(f.prefix)
	}
	if changed("suffix") {
		req.Suffix = models.StringOption(f.suffix)
	}
	if changed("rounded") {
		req.DisplayRoundedData = models.BoolOption(f.rounded)
	}
	if changed("high-contrast") {
		req.IsHighContrastMode = models.BoolOption(f.highContrast)
	}
}

func newRenderCmd(configPath *string) *cobra.Command {
	var flags chartFlags
	var format, outputPath string

	cmd := &cobra.Command{
		Use:   "render [input.json|input.xlsx]",
		Short: "Render a chart to SVG, PNG or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadRequest(args[0], flags.sheet)
			if err != nil {
				return err
			}
			flags.apply(cmd, &req)

			if format == "" {
				format = formatFromPath(outputPath)
			}

			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			var buf bytes.Buffer
			if err := a.ChartService.Render(context.Background(), req, models.ExportFormat(format), &buf); err != nil {
				return fmt.Errorf("render failed: %w", err)
			}
			return writeOutput(cmd.OutOrStdout(), outputPath, buf.Bytes())
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: svg, png, html (default: from --output extension, else svg)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	return cmd
}

func newLayoutCmd(configPath *string) *cobra.Command {
	var flags chartFlags
	var pretty bool

	cmd := &cobra.Command{
		Use:   "layout [input.json|input.xlsx]",
		Short: "Print the chart layout as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadRequest(args[0], flags.sheet)
			if err != nil {
				return err
			}
			flags.apply(cmd, &req)

			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			state, err := a.ChartService.Layout(context.Background(), req)
			if err != nil {
				return fmt.Errorf("layout failed: %w", err)
			}

			var data []byte
			if pretty {
				data, err = json.MarshalIndent(state, "", "  ")
			} else {
				data, err = json.Marshal(state)
			}
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "strata "+common.GetFullVersion())
			return err
		},
	}
}

// newApp loads config for the CLI. Only warnings reach stderr.
func newApp(configPath string) (*app.App, error) {
	common.LoadVersionFromFile()
	config, err := common.LoadConfig(app.ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.Logging.Level = "warn"
	config.Logging.Outputs = []string{"console"}
	return app.New(config, common.NewLoggerFromConfig(config.Logging)), nil
}

// loadRequest reads a chart request from a JSON or XLSX file, chosen by extension.
func loadRequest(path, sheet string) (models.ChartRequest, error) {
	// Validate input file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return models.ChartRequest{}, fmt.Errorf("file not found: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return models.ChartRequest{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		ds, err := importer.ReadXLSX(f, sheet)
		if err != nil {
			return models.ChartRequest{}, err
		}
		return models.ChartRequest{Data: ds}, nil
	default:
		return importer.DecodeJSON(f)
	}
}

// formatFromPath infers the export format from an output file extension.
func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return string(models.ExportPNG)
	case ".html", ".htm":
		return string(models.ExportHTML)
	}
	return string(models.ExportSVG)
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

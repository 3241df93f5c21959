package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/strata/internal/common"
	"github.com/bobmcallan/strata/internal/services/charts"
	"github.com/bobmcallan/strata/internal/tools"
)

// App holds the chart service and the MCP server.
// It is the shared core used by cmd/strata-server, cmd/strata-mcp and cmd/strata.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	ChartService *charts.Service
	MCPServer    *server.MCPServer
	StartupTime  time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the given path, STRATA_CONFIG,
// strata.toml next to the binary, then config/strata.toml for development.
func ResolveConfigPath(configPath string) string {
	return resolveConfigPath(configPath, getBinaryDir())
}

func resolveConfigPath(configPath, binDir string) string {
	if configPath == "" {
		configPath = os.Getenv("STRATA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "strata.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/strata.toml"
		}
	}
	return configPath
}

// NewApp loads configuration and initializes the logger, chart service and MCP server.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()
	config, err := common.LoadConfig(resolveConfigPath(configPath, binDir))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	a := New(config, logger)
	a.StartupTime = startupStart

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// New wires an App from an already loaded config. Tests use it directly.
func New(config *common.Config, logger *common.Logger) *App {
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	chartService := charts.NewService(config, logger)

	mcpServer := server.NewMCPServer(
		"strata",
		common.GetVersionInfo().Version,
		server.WithToolCapabilities(true),
	)
	tools.Register(mcpServer, chartService, logger)

	return &App{
		Config:       config,
		Logger:       logger,
		ChartService: chartService,
		MCPServer:    mcpServer,
		StartupTime:  time.Now(),
	}
}

// Close destroys every live chart.
func (a *App) Close() {
	if a.ChartService != nil {
		a.ChartService.Close()
	}
}

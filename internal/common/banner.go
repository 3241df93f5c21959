package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner to stderr.
func PrintBanner(config *Config, logger *Logger) {
	writeBanner(os.Stderr, config)

	info := GetVersionInfo()
	logger.Info().
		Str("version", info.Version).
		Str("build", info.Build).
		Str("commit", info.Commit).
		Str("environment", config.Environment).
		Str("service_url", serviceURL(config)).
		Msg("Application started")
}

func serviceURL(config *Config) string {
	return fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)
}

func writeBanner(w io.Writer, config *Config) {
	info := GetVersionInfo()
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 64) + banner.ColorReset

	art := []string{
		`  .d8888b.  88888888888 8888888b.         d8888 88888888888     d8888`,
		` d88P  Y88b     888     888   Y88b       d88888     888        d88888`,
		` Y88b.          888     888    888      d88P888     888       d88P888`,
		`  "Y888b.       888     888   d88P     d88P 888     888      d88P 888`,
		`     "Y88b.     888     8888888P"     d88P  888     888     d88P  888`,
		`       "888     888     888 T88b     d88P   888     888    d88P   888`,
		` Y88b  d88P     888     888  T88b   d8888888888     888   d8888888888`,
		`  "Y8888P"      888     888   T88b d88P     888     888  d88P     888`,
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Stacked Charts & Accessible Legends%s\n\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s\n\n", hr)

	contrast := "off"
	if config.Chart.HighContrast {
		contrast = "on"
	}
	kvLines := [][2]string{
		{"Version", info.Version},
		{"Build", info.Build},
		{"Commit", info.Commit},
		{"Environment", config.Environment},
		{"Service URL", serviceURL(config)},
		{"Chart", fmt.Sprintf("%s %vx%v", config.Chart.Type, config.Chart.Width, config.Chart.Height)},
		{"High contrast", contrast},
		{"Locale", config.Format.Locale},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-*s %s%s\n", textColor, 16, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)
}

// PrintShutdownBanner displays the application shutdown banner to stderr.
func PrintShutdownBanner(logger *Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 42) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  STRATA SHUTTING DOWN%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	logger.Info().Msg("Application shutting down")
}

package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/strata/internal/app"
)

func main() {
	a, err := app.NewApp(os.Getenv("STRATA_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	// stdout carries the MCP protocol; logging must stay on stderr or in files
	a.Logger.Info().Msg("Serving MCP over stdio")
	if err := server.ServeStdio(a.MCPServer); err != nil {
		a.Logger.Error().Err(err).Msg("MCP server failed")
		os.Exit(1)
	}
}

// Package mcp exposes page analysis as a Model Context Protocol tool.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/Kevdacosta07/CarbWeb/internal/analyzer"
	"github.com/Kevdacosta07/CarbWeb/internal/logging"
)

// ToolAnalyzePage is the name of the single tool this server offers.
const ToolAnalyzePage = "analyze_page"

// Analyzer runs one page analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req analyzer.Request) (*analyzer.Result, error)
}

// NewMCPServer configures the server without starting it.
func NewMCPServer(a Analyzer, version string, logger zerolog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"Web Carbon Analyzer",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		analyzer: a,
		logger:   logger.With().Str(logging.FieldComponent, "mcp").Logger(),
	}

	s.AddTool(mcp.NewTool(ToolAnalyzePage,
		mcp.WithDescription("Estimate the carbon footprint of a web page from a PageSpeed audit and its hosting provider."),
		mcp.WithString("url", mcp.Description("Page URL; https:// is assumed when no scheme is given."), mcp.Required()),
		mcp.WithString("strategy", mcp.Description("Device profile for the audit. Defaults to 'mobile'."), mcp.Enum("mobile", "desktop")),
		mcp.WithNumber("monthly_visitors", mcp.Description("Optional monthly traffic used for the annual projection (100 to 100000).")),
	), h.handleAnalyzePage)

	return s
}

// Serve runs the server over stdio until stdin closes.
func Serve(_ context.Context, a Analyzer, version string, logger zerolog.Logger) error {
	return server.ServeStdio(NewMCPServer(a, version, logger))
}

package mcp

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/Kevdacosta07/CarbWeb/internal/analyzer"
	"github.com/Kevdacosta07/CarbWeb/internal/carbon"
	"github.com/Kevdacosta07/CarbWeb/internal/logging"
)

type toolHandler struct {
	analyzer Analyzer
	logger   zerolog.Logger
}

func (h *toolHandler) handleAnalyzePage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, traceID := logging.EnsureTraceID(ctx)

	url := request.GetString("url", "")
	if url == "" {
		return mcp.NewToolResultError(analyzer.ErrMissingURL.Error()), nil
	}

	visitors, ok := carbon.VisitorCount(request.GetFloat("monthly_visitors", 0))
	if !ok {
		return mcp.NewToolResultError("monthly_visitors must be a finite number"), nil
	}

	res, err := h.analyzer.Analyze(ctx, analyzer.Request{
		URL:             url,
		Strategy:        request.GetString("strategy", ""),
		MonthlyVisitors: visitors,
	})
	if err != nil {
		h.logger.Warn().
			Str(logging.FieldTraceID, traceID).
			Str(logging.FieldOperation, ToolAnalyzePage).
			Err(err).
			Msg("analysis failed")
		if analyzer.KindOf(err) == analyzer.KindInternal {
			return mcp.NewToolResultError("analysis failed: internal error"), nil
		}
		return mcp.NewToolResultError("analysis failed: " + err.Error()), nil
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

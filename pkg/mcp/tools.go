package mcp

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rendis/floxyview/internal/diagram"
	"github.com/rendis/floxyview/internal/logging"
)

// handleRender translates a flow document in the requested format.
//
// mermaid and html never fail: invalid documents render as an error
// diagram. Graphviz formats need a valid document and report a tool error
// otherwise.
func (s *Server) handleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logging.WithSource(ctx, "mcp")
	definition := req.GetString("definition", "")
	format := req.GetString("format", "mermaid")

	switch format {
	case "mermaid":
		return mcp.NewToolResultText(diagram.Translate(definition)), nil

	case "html":
		theme := req.GetString("theme", s.theme)
		page, err := diagram.RenderPage(diagram.Translate(definition), diagram.PageOptions{Theme: theme})
		if err != nil {
			s.logger.ErrorContext(ctx, "page render failed", "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("page render failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(page)), nil

	case "dot", "svg", "png":
		model, err := diagram.FromJSON([]byte(definition))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid flow document: %v", err)), nil
		}
		out, err := diagram.RenderGraphviz(ctx, model, diagram.Format(format))
		if err != nil {
			s.logger.ErrorContext(ctx, "graphviz render failed", "format", format, "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("%s render failed: %v", format, err)), nil
		}
		if format == "png" {
			encoded := base64.StdEncoding.EncodeToString(out)
			return mcp.NewToolResultImage("rendered flow diagram", encoded, "image/png"), nil
		}
		return mcp.NewToolResultText(string(out)), nil

	default:
		return mcp.NewToolResultError("format must be mermaid, html, dot, svg, or png"), nil
	}
}

// handleExample returns the placeholder diagram.
func (s *Server) handleExample(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(diagram.Placeholder), nil
}

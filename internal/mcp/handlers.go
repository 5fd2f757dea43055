package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hazemfarra/argus/internal/index"
	"github.com/hazemfarra/argus/internal/records"
)

// handleSearchIntel performs semantic search over the intelligence store.
func (s *Server) handleSearchIntel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	owner := request.GetString("owner", "")

	results, err := s.engine.Search(ctx, query, owner)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No relevant intelligence records found."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

// handleGetContext assembles a ready-to-use context block for a question.
func (s *Server) handleGetContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	owner := request.GetString("owner", "")

	contextBlock, _ := s.engine.GetContext(ctx, query, owner)
	return mcp.NewToolResultText(contextBlock), nil
}

// handleReportThreat files a new threat report.
func (s *Server) handleReportThreat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: title"), nil
	}
	description, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: description"), nil
	}

	report := records.ThreatReport{
		Title:       title,
		ThreatType:  request.GetString("threat_type", ""),
		Severity:    request.GetString("severity", ""),
		Description: description,
	}
	owner := request.GetString("owner", "")

	rec, err := s.engine.IngestThreatReport(ctx, owner, report, "mcp")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store report: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Threat report stored with id %s.", rec.ID)), nil
}

// handleGetHistory returns past exchanges for an owner.
func (s *Server) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	owner := request.GetString("owner", "")
	limit := request.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}

	history, err := s.engine.History(ctx, owner, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load history: %v", err)), nil
	}

	if len(history) == 0 {
		return mcp.NewToolResultText("No conversation history found."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d exchange(s):\n", len(history)))
	for i, ex := range history {
		sb.WriteString(fmt.Sprintf("\n--- Exchange %d (%s) ---\n", i+1, ex.CreatedAt.Format("2006-01-02 15:04")))
		sb.WriteString("Q: " + ex.Query + "\n")
		sb.WriteString("A: " + ex.Response + "\n")
		if ex.ContextUsed {
			sb.WriteString(fmt.Sprintf("Grounded in %d intelligence record(s).\n", ex.Hits))
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetStatus reports current index contents.
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.engine.Status()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Records: %d\nEmbedded: %d\n", st.RecordCount, st.VectorCount))
	if len(st.Kinds) > 0 {
		sb.WriteString("By kind:\n")
		for kind, count := range st.Kinds {
			sb.WriteString(fmt.Sprintf("  %s: %d\n", kind, count))
		}
	}
	if len(st.Owners) > 0 {
		sb.WriteString("Owners: " + strings.Join(st.Owners, ", ") + "\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatSearchResults converts search results into a text format for agent
// consumption.
func formatSearchResults(results []index.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("\n--- Result %d (score %.2f) ---\n", i+1, r.Score))
		sb.WriteString(fmt.Sprintf("Kind: %s\n", r.Record.Kind))
		owner := r.Record.Owner
		if owner == "" {
			owner = "shared"
		}
		sb.WriteString(fmt.Sprintf("Owner: %s\n", owner))
		sb.WriteString(r.Record.SearchableText + "\n")
	}
	return sb.String()
}

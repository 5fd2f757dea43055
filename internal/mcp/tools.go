package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchIntelTool defines the search_intel MCP tool.
var searchIntelTool = mcp.NewTool("search_intel",
	mcp.WithDescription("Search stored threat intelligence semantically. Returns the most relevant records with similarity scores."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithString("owner",
		mcp.Description("Limit results to this owner's records plus shared ones"),
	),
)

// getContextTool defines the get_intel_context MCP tool.
var getContextTool = mcp.NewTool("get_intel_context",
	mcp.WithDescription("Retrieve an assembled intelligence context block for a question, ready to include in a prompt."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("The question or topic to retrieve context for"),
	),
	mcp.WithString("owner",
		mcp.Description("Limit context to this owner's records plus shared ones"),
	),
)

// reportThreatTool defines the report_threat MCP tool.
var reportThreatTool = mcp.NewTool("report_threat",
	mcp.WithDescription("File a new threat report into the intelligence store."),
	mcp.WithString("title",
		mcp.Required(),
		mcp.Description("Short title of the threat"),
	),
	mcp.WithString("threat_type",
		mcp.Description("Category of the threat, e.g. phishing, malware, intrusion"),
	),
	mcp.WithString("severity",
		mcp.Description("Severity of the threat"),
		mcp.Enum("low", "medium", "high", "critical"),
	),
	mcp.WithString("description",
		mcp.Required(),
		mcp.Description("Detailed description of the threat"),
	),
	mcp.WithString("owner",
		mcp.Description("Owner of the report; leave empty to share globally"),
	),
)

// getHistoryTool defines the get_history MCP tool.
var getHistoryTool = mcp.NewTool("get_history",
	mcp.WithDescription("Retrieve past conversational exchanges in chronological order."),
	mcp.WithString("owner",
		mcp.Description("Owner whose history to retrieve"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of exchanges to return (default 20)"),
	),
)

// getStatusTool defines the get_status MCP tool.
var getStatusTool = mcp.NewTool("get_status",
	mcp.WithDescription("Report how many intelligence records and embeddings the engine currently holds."),
)

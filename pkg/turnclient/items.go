// Package turnclient consumes a turn event stream and maintains the
// client-side conversation state: the item timeline, citation dedup, and
// reasoning summaries.
package turnclient

import "roborail-assistant/internal/domain/turn"

// Tool call item statuses.
const (
	StatusInProgress = "in_progress"
	StatusSearching  = "searching"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Item is one entry in the conversation timeline.
type Item interface {
	ItemType() string
}

// ContentPart is one typed content fragment inside a message item.
type ContentPart struct {
	Type               string            `json:"type"`
	Text               string            `json:"text,omitempty"`
	Annotations        []turn.Annotation `json:"annotations,omitempty"`
	Reasoning          string            `json:"reasoning,omitempty"`
	ReasoningStreaming bool              `json:"reasoning_streaming,omitempty"`
}

// MessageItem is a rendered chat message.
type MessageItem struct {
	ID      string        `json:"id,omitempty"`
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

func (MessageItem) ItemType() string { return "message" }

// FileReference points at a file surfaced by a tool result.
type FileReference struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename,omitempty"`
}

// ToolCallItem is a tool invocation surfaced in the timeline.
type ToolCallItem struct {
	ID              string          `json:"id"`
	ToolType        string          `json:"tool_type"`
	Status          string          `json:"status"`
	Name            string          `json:"name,omitempty"`
	CallID          string          `json:"call_id,omitempty"`
	Arguments       string          `json:"arguments,omitempty"`
	ParsedArguments map[string]any  `json:"parsedArguments,omitempty"`
	Output          string          `json:"output,omitempty"`
	Files           []FileReference `json:"files,omitempty"`
}

func (ToolCallItem) ItemType() string { return "tool_call" }

// MCPToolInfo describes one tool advertised by an MCP server.
type MCPToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// McpListToolsItem reports MCP tool discovery in the timeline.
type McpListToolsItem struct {
	ServerLabel string        `json:"server_label"`
	Tools       []MCPToolInfo `json:"tools"`
}

func (McpListToolsItem) ItemType() string { return "mcp_list_tools" }

// McpApprovalRequestItem asks the user to approve an MCP tool call.
type McpApprovalRequestItem struct {
	ID          string `json:"id"`
	ServerLabel string `json:"server_label"`
	Name        string `json:"name"`
	Arguments   string `json:"arguments"`
}

func (McpApprovalRequestItem) ItemType() string { return "mcp_approval_request" }

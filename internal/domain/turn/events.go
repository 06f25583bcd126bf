package turn

import "roborail-assistant/internal/domain/llm"

// Event names emitted on the turn stream. The client state machine keys off
// these exact strings.
const (
	EventOutputTextDelta     = "response.output_text.delta"
	EventReasoningDelta      = "response.reasoning.delta"
	EventOutputItemAdded     = "response.output_item.added"
	EventFileSearchCompleted = "response.file_search_call.completed"
	EventAnnotationAdded     = "response.output_text.annotation.added"
	EventMessageComplete     = "message_complete"
	EventToolResult          = "tool_result"
	EventFinish              = "finish"
	EventMCPListTools        = "mcp_list_tools"
	EventMCPApprovalRequest  = "mcp_approval_request"
)

// Event is one application-level frame on the turn stream.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// EmitFunc delivers one event to the transport. Implementations must be safe
// for sequential use from the turn goroutine; an error aborts the turn.
type EmitFunc func(ev Event) error

// Annotation is a structured citation attached to assistant output.
type Annotation struct {
	Type        string `json:"type"`
	FileID      string `json:"fileId,omitempty"`
	ContainerID string `json:"containerId,omitempty"`
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	Filename    string `json:"filename,omitempty"`
	Index       int    `json:"index"`
	Content     string `json:"content,omitempty"`
}

// Annotation type tags.
const (
	AnnotationFileCitation          = "file_citation"
	AnnotationURLCitation           = "url_citation"
	AnnotationContainerFileCitation = "container_file_citation"
)

// TextDeltaPayload carries one content fragment routed to item_id.
type TextDeltaPayload struct {
	Delta  string `json:"delta"`
	ItemID string `json:"item_id"`
}

// ReasoningDeltaPayload carries one reasoning fragment routed to item_id.
type ReasoningDeltaPayload struct {
	Delta  string `json:"delta"`
	ItemID string `json:"item_id"`
}

// OutputItem describes a newly opened tool call on the stream.
type OutputItem struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Status    string `json:"status,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// OutputItemPayload wraps an OutputItem for the output_item.added event.
type OutputItemPayload struct {
	Item OutputItem `json:"item"`
}

// FileSearchCompletedPayload reports a resolved file search call.
type FileSearchCompletedPayload struct {
	ItemID string `json:"item_id"`
	Output string `json:"output"`
}

// AnnotationAddedPayload attaches one citation to the message item.
type AnnotationAddedPayload struct {
	ItemID     string     `json:"item_id"`
	Annotation Annotation `json:"annotation"`
}

// MessageCompletePayload carries a finished assistant message with its
// extracted annotations.
type MessageCompletePayload struct {
	Message     *llm.FullMessage `json:"message"`
	Annotations []Annotation     `json:"annotations"`
}

// ToolResultPayload reports one executed tool call.
type ToolResultPayload struct {
	ToolCallID  string       `json:"tool_call_id"`
	Result      any          `json:"result"`
	Annotations []Annotation `json:"annotations"`
}

// FinishPayload terminates the turn stream.
type FinishPayload struct {
	FinishReason string `json:"finish_reason"`
}

// MCPListToolsPayload reports tool discovery against an external MCP server.
type MCPListToolsPayload struct {
	ServerLabel string    `json:"server_label"`
	Tools       []MCPTool `json:"tools"`
}

// MCPTool is the client-facing shape of one discovered MCP tool.
type MCPTool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// MCPApprovalRequestPayload asks the user to approve an MCP tool call. The
// decision is terminal: the call either runs now or is declined, no retry.
type MCPApprovalRequestPayload struct {
	ID          string `json:"id"`
	ServerLabel string `json:"server_label"`
	Name        string `json:"name"`
	Arguments   string `json:"arguments"`
}

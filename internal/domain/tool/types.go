package tool

import (
	"context"
	"strings"
)

// VectorStore identifies the document store backing file search.
type VectorStore struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// MCPConfig describes an external MCP tool server supplied by the client.
type MCPConfig struct {
	ServerLabel  string `json:"server_label"`
	ServerURL    string `json:"server_url"`
	AllowedTools string `json:"allowed_tools"`
	SkipApproval bool   `json:"skip_approval"`
}

// Configuration is the tool-enablement state sent with each turn request.
// It is read-only to the turn pipeline.
type Configuration struct {
	FileSearchEnabled bool        `json:"fileSearchEnabled"`
	FunctionsEnabled  bool        `json:"functionsEnabled"`
	VectorStore       VectorStore `json:"vectorStore"`
	MCPEnabled        bool        `json:"mcpEnabled"`
	MCPConfig         MCPConfig   `json:"mcpConfig"`
}

// FunctionDefinition declares one user-defined function tool. Parameters maps
// a parameter name to its JSON schema fragment; every declared parameter is
// required when the definition is advertised to the model.
type FunctionDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Handler executes one function tool call with already-parsed arguments and
// returns a JSON-serializable result.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Registry resolves tool names to handlers. Injected into the dispatcher so
// tests can substitute handlers without global state.
type Registry interface {
	Lookup(name string) (Handler, bool)
}

// FuncRegistry is a plain keyed Registry implementation.
type FuncRegistry map[string]Handler

// Lookup returns the handler registered under name.
func (r FuncRegistry) Lookup(name string) (Handler, bool) {
	h, ok := r[name]
	return h, ok
}

// Register adds or replaces the handler for name.
func (r FuncRegistry) Register(name string, h Handler) {
	r[name] = h
}

// MCPTool describes tool metadata discovered from an MCP server.
type MCPTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// MCPContent represents values inside an MCP tool result payload.
type MCPContent struct {
	Type     string         `json:"type"`
	Text     string         `json:"text,omitempty"`
	Resource map[string]any `json:"resource,omitempty"`
}

// MCPResult captures the outcome returned by an MCP tool server.
type MCPResult struct {
	ToolName string       `json:"tool_name"`
	Content  []MCPContent `json:"content"`
	IsError  bool         `json:"is_error"`
	Error    string       `json:"error,omitempty"`
}

// MCPClient abstracts JSON-RPC calls to an external MCP tool server. The
// server URL comes from the per-request MCPConfig, not service config.
type MCPClient interface {
	ListTools(ctx context.Context, serverURL string) ([]MCPTool, error)
	CallTool(ctx context.Context, serverURL, name string, args map[string]any) (*MCPResult, error)
}

// AllowedToolNames splits the comma-separated allow list. An empty list
// means every tool on the server is allowed.
func (c MCPConfig) AllowedToolNames() []string {
	if strings.TrimSpace(c.AllowedTools) == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(c.AllowedTools, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Allows reports whether the configuration permits calling name.
func (c MCPConfig) Allows(name string) bool {
	allowed := c.AllowedToolNames()
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == name {
			return true
		}
	}
	return false
}

package llm

import "context"

// Provider defines the contract for calling an OpenAI-compatible
// /v1/chat/completions endpoint. The turn pipeline only ever streams.
type Provider interface {
	CreateChatCompletionStream(reqCtx context.Context, req ChatCompletionRequest) (Stream, error)
}

// Stream abstracts an SSE or chunked response from the model API.
type Stream interface {
	Recv() (*StreamChunk, error)
	Close() error
}

// ChatCompletionRequest mirrors the OpenAI-compatible request shape.
type ChatCompletionRequest struct {
	Model             string           `json:"model"`
	Messages          []ChatMessage    `json:"messages"`
	Tools             []ToolDefinition `json:"tools,omitempty"`
	ToolChoice        *ToolChoice      `json:"tool_choice,omitempty"`
	Temperature       *float64         `json:"temperature,omitempty"`
	MaxTokens         *int             `json:"max_tokens,omitempty"`
	ParallelToolCalls *bool            `json:"parallel_tool_calls,omitempty"`
	ReasoningEffort   string           `json:"reasoning_effort,omitempty"`
	Stream            bool             `json:"stream"`
}

// ChatMessage represents a single message in the conversation history.
// Content is either a plain string or a list of typed content parts.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    any        `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall mirrors the OpenAI tool call format carried on assistant messages.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction contains the function name and its JSON-encoded arguments.
type ToolFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition is the OpenAI-compatible representation of a callable tool.
type ToolDefinition struct {
	Type     string             `json:"type"`
	Function ToolFunctionSchema `json:"function"`
}

// ToolFunctionSchema declares the function contract passed to the model.
type ToolFunctionSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
	Strict      bool           `json:"strict,omitempty"`
}

// ToolChoice allows forcing a specific tool or auto mode.
type ToolChoice struct {
	Type     string `json:"type"`
	Function struct {
		Name string `json:"name"`
	} `json:"function"`
}

// StreamChunk represents one streamed completion chunk.
type StreamChunk struct {
	Choices []StreamChoice `json:"choices"`
}

// StreamChoice mirrors OpenAI streaming chunk choices. Delta carries the
// incremental payload; Message appears when a provider delivers a full
// completion in a single terminal chunk.
type StreamChoice struct {
	Index        int          `json:"index"`
	Delta        *StreamDelta `json:"delta,omitempty"`
	Message      *FullMessage `json:"message,omitempty"`
	FinishReason string       `json:"finish_reason,omitempty"`
}

// StreamDelta is the incremental message fragment inside a chunk.
type StreamDelta struct {
	Role      string          `json:"role,omitempty"`
	Content   string          `json:"content,omitempty"`
	Reasoning string          `json:"reasoning,omitempty"`
	ToolCalls []ToolCallDelta `json:"tool_calls,omitempty"`
}

// ToolCallDelta is a fragment of a tool call. The first fragment for a call
// carries the id and function name; later fragments carry only argument text
// that must be appended, never replaced.
type ToolCallDelta struct {
	Index    int               `json:"index"`
	ID       string            `json:"id,omitempty"`
	Type     string            `json:"type,omitempty"`
	Function ToolFunctionDelta `json:"function"`
}

// ToolFunctionDelta carries a fragment of the function name or arguments.
type ToolFunctionDelta struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// FullMessage is a complete assistant message delivered in a single chunk.
type FullMessage struct {
	Role        string            `json:"role,omitempty"`
	Content     any               `json:"content,omitempty"`
	ToolCalls   []MessageToolCall `json:"tool_calls,omitempty"`
	Annotations []map[string]any  `json:"annotations,omitempty"`
}

// MessageToolCall is a completed tool call attached to a full message.
// FileSearch is populated by providers that resolve file search natively.
type MessageToolCall struct {
	ID         string             `json:"id,omitempty"`
	Type       string             `json:"type"`
	Function   *ToolFunction      `json:"function,omitempty"`
	FileSearch *FileSearchPayload `json:"file_search,omitempty"`
}

// FileSearchPayload holds resolved file search results.
type FileSearchPayload struct {
	Results []FileSearchResult `json:"results,omitempty"`
}

// FileSearchResult is one matched file from a file search.
type FileSearchResult struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename,omitempty"`
	Content  string `json:"content,omitempty"`
}

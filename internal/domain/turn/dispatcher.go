package turn

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"roborail-assistant/internal/domain/llm"
	"roborail-assistant/internal/domain/tool"
	"roborail-assistant/internal/infrastructure/metrics"
	"roborail-assistant/internal/infrastructure/observability"
)

// toolFailureResult is the uniform result body for any tool execution
// failure: bad arguments, unknown tool, handler error. The turn always
// continues; the model sees the failure and can recover in text.
func toolFailureResult() map[string]any {
	return map[string]any{"error": "Tool execution failed"}
}

// Dispatcher executes completed tool calls sequentially and reports each
// result on the stream before handing tool messages back for continuation.
type Dispatcher struct {
	registry tool.Registry
	mcp      tool.MCPClient
	timeout  time.Duration
	log      zerolog.Logger
}

// NewDispatcher wires a dispatcher. mcp may be nil when no MCP transport is
// configured; MCP-routed calls then fail like any other tool failure.
func NewDispatcher(registry tool.Registry, mcp tool.MCPClient, timeout time.Duration, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		mcp:      mcp,
		timeout:  timeout,
		log:      log,
	}
}

// Dispatch runs every call in order, emits a tool_result event per call, and
// returns the tool-role messages for the continuation request. A failing
// handler never aborts its siblings.
func (d *Dispatcher) Dispatch(ctx context.Context, cfg tool.Configuration, calls []Call, emit EmitFunc) ([]llm.ChatMessage, error) {
	messages := make([]llm.ChatMessage, 0, len(calls))

	for _, call := range calls {
		result := d.execute(ctx, cfg, call, emit)

		ev := Event{Event: EventToolResult, Data: ToolResultPayload{
			ToolCallID:  call.ID,
			Result:      result,
			Annotations: resultAnnotations(result),
		}}
		if err := emit(ev); err != nil {
			return nil, err
		}

		content, err := json.Marshal(result)
		if err != nil {
			content = []byte(`{"error": "Tool execution failed"}`)
		}
		messages = append(messages, llm.ChatMessage{
			Role:       "tool",
			Content:    string(content),
			ToolCallID: call.ID,
		})
	}

	return messages, nil
}

func (d *Dispatcher) execute(ctx context.Context, cfg tool.Configuration, call Call, emit EmitFunc) any {
	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			d.log.Warn().Err(err).Str("tool", call.Name).Msg("malformed tool arguments")
			return toolFailureResult()
		}
	}

	if handler, ok := d.registry.Lookup(call.Name); ok {
		return d.runHandler(ctx, call, handler, args)
	}

	if cfg.MCPEnabled && d.mcp != nil && cfg.MCPConfig.Allows(call.Name) {
		return d.runMCP(ctx, cfg.MCPConfig, call, args, emit)
	}

	d.log.Warn().Str("tool", call.Name).Msg("no handler for tool call")
	return toolFailureResult()
}

func (d *Dispatcher) runHandler(ctx context.Context, call Call, handler tool.Handler, args map[string]any) any {
	ctx, span := observability.StartToolSpan(ctx, call.Name, call.ID)
	defer span.End()

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := handler(ctx, args)
	if err != nil {
		observability.RecordError(span, err)
		metrics.RecordToolCall(call.Name, "error", time.Since(start).Seconds())
		d.log.Error().Err(err).Str("tool", call.Name).Dur("elapsed", time.Since(start)).Msg("tool handler failed")
		return toolFailureResult()
	}
	metrics.RecordToolCall(call.Name, "ok", time.Since(start).Seconds())
	d.log.Debug().Str("tool", call.Name).Dur("elapsed", time.Since(start)).Msg("tool handler completed")
	return result
}

// runMCP routes a call to the external MCP server. Without skip_approval the
// call is surfaced as an approval request and declined; approval decisions
// are not round-tripped within a turn.
func (d *Dispatcher) runMCP(ctx context.Context, cfg tool.MCPConfig, call Call, args map[string]any, emit EmitFunc) any {
	if !cfg.SkipApproval {
		ev := Event{Event: EventMCPApprovalRequest, Data: MCPApprovalRequestPayload{
			ID:          call.ID,
			ServerLabel: cfg.ServerLabel,
			Name:        call.Name,
			Arguments:   call.Arguments,
		}}
		if err := emit(ev); err != nil {
			d.log.Warn().Err(err).Msg("emit approval request")
		}
		return map[string]any{"error": "Tool call requires approval"}
	}

	ctx, span := observability.StartToolSpan(ctx, call.Name, call.ID)
	defer span.End()

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := d.mcp.CallTool(ctx, cfg.ServerURL, call.Name, args)
	if err != nil {
		observability.RecordError(span, err)
		metrics.RecordToolCall(call.Name, "error", time.Since(start).Seconds())
		d.log.Error().Err(err).Str("tool", call.Name).Str("server", cfg.ServerLabel).Msg("mcp tool call failed")
		return toolFailureResult()
	}
	metrics.RecordToolCall(call.Name, "ok", time.Since(start).Seconds())
	if result.IsError {
		d.log.Warn().Str("tool", call.Name).Str("server", cfg.ServerLabel).Str("detail", result.Error).Msg("mcp tool returned error")
		return toolFailureResult()
	}
	return result
}

// resultAnnotations extracts citations a tool handler attached to its result
// so the client can render them without re-parsing the result body.
func resultAnnotations(result any) []Annotation {
	data, err := json.Marshal(result)
	if err != nil {
		return []Annotation{}
	}
	var wrapper struct {
		Citations []Annotation `json:"citations"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil || wrapper.Citations == nil {
		return []Annotation{}
	}
	return wrapper.Citations
}

package turn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"roborail-assistant/internal/domain/llm"
	"roborail-assistant/internal/domain/tool"
	"roborail-assistant/internal/infrastructure/observability"
)

// ErrToolRoundsExceeded is returned when the model keeps requesting tools
// past the configured continuation budget.
var ErrToolRoundsExceeded = errors.New("tool continuation rounds exceeded")

// Request carries one turn submitted by the client.
type Request struct {
	Messages        []llm.ChatMessage
	Tools           tool.Configuration
	Model           string
	ReasoningEffort string
}

// Service drives one conversational turn end to end: prompt assembly, tool
// resolution, the streaming model round, and bounded tool continuations.
type Service struct {
	provider        llm.Provider
	dispatcher      *Dispatcher
	mcp             tool.MCPClient
	functions       []tool.FunctionDefinition
	developerPrompt string
	defaultModel    string
	maxRounds       int
	now             func() time.Time
	log             zerolog.Logger
}

// NewService wires the turn service. maxRounds bounds how many model rounds
// one turn may take; values below 1 are clamped to 1.
func NewService(
	provider llm.Provider,
	dispatcher *Dispatcher,
	mcp tool.MCPClient,
	functions []tool.FunctionDefinition,
	developerPrompt string,
	defaultModel string,
	maxRounds int,
	log zerolog.Logger,
) *Service {
	if maxRounds < 1 {
		maxRounds = 1
	}
	if defaultModel == "" {
		defaultModel = llm.DefaultModel
	}
	return &Service{
		provider:        provider,
		dispatcher:      dispatcher,
		mcp:             mcp,
		functions:       functions,
		developerPrompt: developerPrompt,
		defaultModel:    defaultModel,
		maxRounds:       maxRounds,
		now:             time.Now,
		log:             log,
	}
}

// ProcessTurn runs the full turn against emit. It returns nil once a finish
// event has been emitted, or an error when the stream breaks mid-turn; the
// transport then closes the connection without a synthetic error event.
func (s *Service) ProcessTurn(ctx context.Context, req Request, emit EmitFunc) error {
	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	messages := NormalizeMessages(req.Messages)
	messages = PrependSystemMessage(messages, BuildDeveloperPrompt(s.developerPrompt, s.now()))

	tools := tool.Resolve(req.Tools, s.functions)
	mcpTools, err := s.discoverMCPTools(ctx, req.Tools, emit)
	if err != nil {
		return err
	}
	tools = append(tools, mcpTools...)

	s.log.Info().
		Str("model", model).
		Int("messages", len(messages)).
		Int("tools", len(tools)).
		Msg("processing turn")

	for round := 1; round <= s.maxRounds; round++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chatReq := llm.ChatCompletionRequest{
			Model:    model,
			Messages: messages,
			Stream:   true,
		}
		if len(tools) > 0 {
			chatReq.Tools = tools
			parallel := false
			chatReq.ParallelToolCalls = &parallel
		}
		if req.ReasoningEffort != "" && llm.IsReasoningModel(model) {
			chatReq.ReasoningEffort = req.ReasoningEffort
		}

		stream, err := s.provider.CreateChatCompletionStream(ctx, chatReq)
		if err != nil {
			return fmt.Errorf("create completion stream: %w", err)
		}

		translator := NewTranslator(fmt.Sprintf("msg_%d", round), emit)
		result, err := translator.Run(stream)
		if err != nil {
			return err
		}

		if result.FinishReason != FinishReasonToolCalls {
			return nil
		}

		s.log.Debug().Int("round", round).Int("tool_calls", len(result.ToolCalls)).Msg("dispatching tool calls")
		observability.AddRoundEvent(trace.SpanFromContext(ctx), round, len(result.ToolCalls))

		toolMessages, err := s.dispatcher.Dispatch(ctx, req.Tools, result.ToolCalls, emit)
		if err != nil {
			return err
		}

		messages = append(messages, llm.ChatMessage{
			Role:      "assistant",
			ToolCalls: CallsToLLM(result.ToolCalls),
		})
		messages = append(messages, toolMessages...)
	}

	return ErrToolRoundsExceeded
}

// discoverMCPTools lists tools from the configured MCP server, reports them
// to the client, and returns model-facing definitions for the allowed subset.
// Discovery failures degrade the turn to local tools only.
func (s *Service) discoverMCPTools(ctx context.Context, cfg tool.Configuration, emit EmitFunc) ([]llm.ToolDefinition, error) {
	if !cfg.MCPEnabled || cfg.MCPConfig.ServerURL == "" || s.mcp == nil {
		return nil, nil
	}

	discovered, err := s.mcp.ListTools(ctx, cfg.MCPConfig.ServerURL)
	if err != nil {
		s.log.Warn().Err(err).Str("server", cfg.MCPConfig.ServerLabel).Msg("mcp tool discovery failed")
		return nil, nil
	}

	var defs []llm.ToolDefinition
	var listed []MCPTool
	for _, t := range discovered {
		if !cfg.MCPConfig.Allows(t.Name) {
			continue
		}
		defs = append(defs, t.ToLLMTool())
		listed = append(listed, MCPTool{Name: t.Name, Description: t.Description})
	}

	ev := Event{Event: EventMCPListTools, Data: MCPListToolsPayload{
		ServerLabel: cfg.MCPConfig.ServerLabel,
		Tools:       listed,
	}}
	if err := emit(ev); err != nil {
		return nil, err
	}
	return defs, nil
}

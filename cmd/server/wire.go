//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"roborail-assistant/internal/config"
	"roborail-assistant/internal/domain/llm"
	"roborail-assistant/internal/domain/tool"
	"roborail-assistant/internal/domain/turn"
	"roborail-assistant/internal/infrastructure/auth"
	"roborail-assistant/internal/infrastructure/llmprovider"
	"roborail-assistant/internal/infrastructure/logger"
	"roborail-assistant/internal/infrastructure/mcpserver"
	"roborail-assistant/internal/infrastructure/vectorstore"
	"roborail-assistant/internal/interfaces/httpserver"
)

var turnSet = wire.NewSet(
	newLLMProvider,
	wire.Bind(new(llm.Provider), new(*llmprovider.Client)),
	newMCPClient,
	wire.Bind(new(tool.MCPClient), new(*mcpserver.Client)),
	newToolset,
	newDispatcher,
	newTurnService,
	newRecorder,
)

// BuildApplication demonstrates how to assemble the turn service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newAuthValidator,
		turnSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

// toolset bundles the handler registry with the function definitions that
// describe the registered handlers to the model.
type toolset struct {
	registry  tool.FuncRegistry
	functions []tool.FunctionDefinition
}

func newToolset(cfg *config.Config) toolset {
	registry := tool.FuncRegistry{}
	functions := builtinFunctions(registry)
	if store := vectorstore.NewClient(cfg.VectorStoreURL, cfg.ModelAPIKey); store.IsEnabled() {
		registry.Register(tool.FileSearchToolName, vectorstore.SearchHandler(store))
	}
	return toolset{registry: registry, functions: functions}
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newLLMProvider(cfg *config.Config) *llmprovider.Client {
	return llmprovider.NewClient(cfg.ModelAPIURL, cfg.ModelAPIKey)
}

func newMCPClient() *mcpserver.Client {
	return mcpserver.NewClient()
}

func newDispatcher(cfg *config.Config, ts toolset, mcpClient tool.MCPClient, log zerolog.Logger) *turn.Dispatcher {
	return turn.NewDispatcher(ts.registry, mcpClient, cfg.ToolTimeout, log)
}

func newTurnService(
	cfg *config.Config,
	provider llm.Provider,
	dispatcher *turn.Dispatcher,
	mcpClient tool.MCPClient,
	ts toolset,
	log zerolog.Logger,
) *turn.Service {
	return turn.NewService(
		provider,
		dispatcher,
		mcpClient,
		ts.functions,
		cfg.DeveloperPrompt,
		cfg.DefaultModel,
		cfg.MaxToolRounds,
		log,
	)
}

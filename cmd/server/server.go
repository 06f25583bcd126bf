package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"roborail-assistant/internal/config"
	"roborail-assistant/internal/domain/tool"
	"roborail-assistant/internal/domain/turn"
	"roborail-assistant/internal/infrastructure/auth"
	"roborail-assistant/internal/infrastructure/llmprovider"
	"roborail-assistant/internal/infrastructure/logger"
	"roborail-assistant/internal/infrastructure/mcpserver"
	"roborail-assistant/internal/infrastructure/observability"
	"roborail-assistant/internal/infrastructure/turnlog"
	"roborail-assistant/internal/infrastructure/vectorstore"
	"roborail-assistant/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	recorder, err := newRecorder(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect turn log database")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	llmClient := llmprovider.NewClient(cfg.ModelAPIURL, cfg.ModelAPIKey)
	mcpClient := mcpserver.NewClient()

	registry := tool.FuncRegistry{}
	functions := builtinFunctions(registry)

	if store := vectorstore.NewClient(cfg.VectorStoreURL, cfg.ModelAPIKey); store.IsEnabled() {
		registry.Register(tool.FileSearchToolName, vectorstore.SearchHandler(store))
		log.Info().Str("url", cfg.VectorStoreURL).Msg("file search enabled")
	}

	dispatcher := turn.NewDispatcher(registry, mcpClient, cfg.ToolTimeout, log)
	turnService := turn.NewService(
		llmClient,
		dispatcher,
		mcpClient,
		functions,
		cfg.DeveloperPrompt,
		cfg.DefaultModel,
		cfg.MaxToolRounds,
		log,
	)

	httpServer := httpserver.New(cfg, log, turnService, recorder, authValidator)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func newRecorder(cfg *config.Config, log zerolog.Logger) (turnlog.Recorder, error) {
	if cfg.DatabaseURL == "" {
		log.Info().Msg("turn log persistence disabled")
		return turnlog.NopRecorder{}, nil
	}

	db, err := turnlog.Connect(turnlog.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		return nil, err
	}
	return turnlog.NewGormRecorder(db, log), nil
}

// builtinFunctions registers the locally served function tools and returns
// their model-facing definitions.
func builtinFunctions(registry tool.FuncRegistry) []tool.FunctionDefinition {
	registry.Register("get_current_time", func(ctx context.Context, args map[string]any) (any, error) {
		zone, _ := args["timezone"].(string)
		loc := time.Local
		if zone != "" {
			parsed, err := time.LoadLocation(zone)
			if err != nil {
				return nil, fmt.Errorf("unknown timezone %q", zone)
			}
			loc = parsed
		}
		now := time.Now().In(loc)
		return map[string]any{
			"timezone": loc.String(),
			"time":     now.Format(time.RFC3339),
			"weekday":  now.Weekday().String(),
		}, nil
	})

	return []tool.FunctionDefinition{
		{
			Name:        "get_current_time",
			Description: "Get the current date and time in a given IANA timezone.",
			Parameters: map[string]any{
				"timezone": map[string]any{
					"type":        "string",
					"description": "IANA timezone name, e.g. Europe/Amsterdam.",
				},
			},
		},
	}
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}

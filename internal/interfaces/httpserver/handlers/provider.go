package handlers

import (
	"github.com/rs/zerolog"

	"roborail-assistant/internal/domain/turn"
	"roborail-assistant/internal/infrastructure/turnlog"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Turn  *TurnHandler
	Model *ModelHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(turnService *turn.Service, recorder turnlog.Recorder, log zerolog.Logger) *Provider {
	return &Provider{
		Turn:  NewTurnHandler(turnService, recorder, log),
		Model: NewModelHandler(),
	}
}

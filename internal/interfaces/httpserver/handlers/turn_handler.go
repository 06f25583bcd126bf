package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"roborail-assistant/internal/domain/llm"
	"roborail-assistant/internal/domain/turn"
	"roborail-assistant/internal/infrastructure/metrics"
	"roborail-assistant/internal/infrastructure/observability"
	"roborail-assistant/internal/infrastructure/turnlog"
	"roborail-assistant/internal/interfaces/httpserver/dto"
)

// TurnHandler exposes the streaming turn endpoint.
type TurnHandler struct {
	service  *turn.Service
	recorder turnlog.Recorder
	log      zerolog.Logger
}

// NewTurnHandler constructs the handler.
func NewTurnHandler(service *turn.Service, recorder turnlog.Recorder, log zerolog.Logger) *TurnHandler {
	return &TurnHandler{
		service:  service,
		recorder: recorder,
		log:      log.With().Str("handler", "turn").Logger(),
	}
}

// Process handles POST /v1/turn. The response is an SSE stream of
// application events. Failures before the first frame surface as HTTP 500
// with an error body; once streaming has begun, a mid-turn failure closes
// the connection without a terminal frame so the client can detect the
// truncation.
func (h *TurnHandler) Process(c *gin.Context) {
	var req dto.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	authCtx := llm.ContextWithAuthToken(c.Request.Context(), strings.TrimSpace(c.GetHeader("Authorization")))

	model := req.ModelID
	if model == "" {
		model = llm.DefaultModel
	}

	ctx, span := observability.StartTurnSpan(authCtx, model, len(req.Messages), 0)
	defer span.End()

	emitter := newSSEEmitter(c.Writer, flusher, h.log)
	start := time.Now()

	err := h.service.ProcessTurn(ctx, turn.Request{
		Messages:        req.Messages,
		Tools:           req.ToolsState,
		Model:           req.ModelID,
		ReasoningEffort: req.ReasoningEffort,
	}, emitter.Emit)

	status := "ok"
	if err != nil {
		status = "error"
		observability.RecordError(span, err)
		h.log.Error().Err(err).Msg("turn processing failed")
		if !emitter.started() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
	}
	metrics.RecordTurn(model, status, time.Since(start).Seconds())
	h.record(c, req, model, status, time.Since(start))
}

func (h *TurnHandler) record(c *gin.Context, req dto.TurnRequest, model, status string, elapsed time.Duration) {
	toolsState, err := json.Marshal(req.ToolsState)
	if err != nil {
		toolsState = []byte("{}")
	}
	h.recorder.Record(c.Request.Context(), turnlog.TurnRecord{
		ID:           uuid.NewString(),
		Model:        model,
		Status:       status,
		DurationMS:   elapsed.Milliseconds(),
		MessageCount: len(req.Messages),
		ToolsState:   datatypes.JSON(toolsState),
	})
}

// sseEmitter serializes turn events onto the SSE response. Each frame is a
// single data line holding the event envelope. Stream headers are written
// with the first frame so a turn that fails before emitting anything can
// still answer with a JSON error status.
type sseEmitter struct {
	writer  http.ResponseWriter
	flusher http.Flusher
	log     zerolog.Logger
	mu      sync.Mutex
	wrote   bool
}

func newSSEEmitter(w http.ResponseWriter, flusher http.Flusher, log zerolog.Logger) *sseEmitter {
	return &sseEmitter{
		writer:  w,
		flusher: flusher,
		log:     log,
	}
}

func (e *sseEmitter) Emit(ev turn.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.Event, err)
	}

	if !e.wrote {
		header := e.writer.Header()
		header.Set("Content-Type", "text/event-stream")
		header.Set("Cache-Control", "no-cache")
		header.Set("Connection", "keep-alive")
		e.wrote = true
	}

	if _, err := fmt.Fprintf(e.writer, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write event %s: %w", ev.Event, err)
	}
	e.flusher.Flush()
	metrics.RecordStreamEvent(ev.Event)
	return nil
}

// started reports whether any frame has been written.
func (e *sseEmitter) started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wrote
}

package dto

import (
	"roborail-assistant/internal/domain/llm"
	"roborail-assistant/internal/domain/tool"
)

// TurnRequest is the POST /v1/turn body. Messages carry the full client-held
// conversation history; the server keeps no conversation state between turns.
type TurnRequest struct {
	Messages        []llm.ChatMessage  `json:"messages" binding:"required"`
	ToolsState      tool.Configuration `json:"toolsState"`
	ModelID         string             `json:"modelId"`
	ReasoningEffort string             `json:"reasoningEffort"`
}

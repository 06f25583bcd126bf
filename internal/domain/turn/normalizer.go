package turn

import (
	"fmt"
	"time"

	"roborail-assistant/internal/domain/llm"
)

// NormalizeMessages prepares client conversation history for the upstream
// chat completion call. Structured single-part text content is collapsed to a
// plain string; everything else passes through untouched.
func NormalizeMessages(messages []llm.ChatMessage) []llm.ChatMessage {
	out := make([]llm.ChatMessage, len(messages))
	for i, msg := range messages {
		msg.Content = collapseContent(msg.Content)
		out[i] = msg
	}
	return out
}

// collapseContent flattens a one-element input_text part list into its text.
// Multi-part and non-text content is preserved as-is for the provider to
// interpret.
func collapseContent(content any) any {
	parts, ok := content.([]any)
	if !ok || len(parts) != 1 {
		return content
	}
	part, ok := parts[0].(map[string]any)
	if !ok {
		return content
	}
	partType, _ := part["type"].(string)
	if partType != "input_text" && partType != "text" {
		return content
	}
	text, ok := part["text"].(string)
	if !ok {
		return content
	}
	return text
}

// PrependSystemMessage places the developer prompt at the head of the
// conversation. The prompt leads even when the client supplied its own
// system message, so the date-bearing prompt is never dropped.
func PrependSystemMessage(messages []llm.ChatMessage, prompt string) []llm.ChatMessage {
	if prompt == "" {
		return messages
	}
	out := make([]llm.ChatMessage, 0, len(messages)+1)
	out = append(out, llm.ChatMessage{Role: "system", Content: prompt})
	return append(out, messages...)
}

// BuildDeveloperPrompt appends the current date to the configured developer
// prompt so the model can resolve relative time references.
func BuildDeveloperPrompt(prompt string, now time.Time) string {
	return fmt.Sprintf("%s\n\nToday is %s, %s %d, %d.",
		prompt, now.Weekday(), now.Month(), now.Day(), now.Year())
}

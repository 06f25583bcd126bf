package llm

// DefaultModel is used when a turn request does not name a model.
const DefaultModel = "gpt-4.1"

// ModelInfo describes one selectable model.
type ModelInfo struct {
	ID        string `json:"id"`
	Label     string `json:"label,omitempty"`
	Reasoning bool   `json:"reasoning,omitempty"`
}

// Models is the static catalog offered to clients. In production this could
// be fetched dynamically from the provider instead.
var Models = []ModelInfo{
	{ID: "gpt-4.1", Label: "GPT-4.1"},
	{ID: "gpt-5", Label: "GPT-5"},
	{ID: "gpt-5-mini", Label: "GPT-5 Mini", Reasoning: true},
	{ID: "gpt-5-nano", Label: "GPT-5 Nano", Reasoning: true},
	{ID: "gpt-4o-mini", Label: "GPT-4o mini"},
}

// IsReasoningModel reports whether the model id is known to emit reasoning
// deltas on the completion stream.
func IsReasoningModel(id string) bool {
	for _, m := range Models {
		if m.ID == id {
			return m.Reasoning
		}
	}
	return false
}

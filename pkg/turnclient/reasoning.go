package turnclient

import (
	"fmt"
	"regexp"
	"strings"
)

// ReasoningStep is one structured step extracted from raw reasoning text.
type ReasoningStep struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Status      string `json:"status"`
}

// ToolUsage summarizes which tools a turn exercised.
type ToolUsage struct {
	FileSearch bool     `json:"fileSearch"`
	Functions  []string `json:"functions"`
	MCP        bool     `json:"mcp"`
}

// ReasoningSummary bundles parsed steps with timing and tool usage.
type ReasoningSummary struct {
	Steps         []ReasoningStep `json:"steps"`
	TotalDuration int64           `json:"totalDuration,omitempty"`
	ToolUsage     ToolUsage       `json:"toolUsage"`
	Sources       int             `json:"sources"`
}

const maxDescriptionLength = 50

// reasoningPatterns map step categories to trigger phrases. Order matters:
// the first matching category labels the step.
var reasoningPatterns = []struct {
	label string
	re    *regexp.Regexp
}{
	{"Analysis", regexp.MustCompile(`(?i)(analyzing|analysis|understanding|examining|looking at|considering)`)},
	{"Search", regexp.MustCompile(`(?i)(searching|finding|retrieving|querying|looking for|fetching)`)},
	{"Evaluation", regexp.MustCompile(`(?i)(evaluating|assessing|comparing|weighing|judging)`)},
	{"Synthesis", regexp.MustCompile(`(?i)(combining|synthesizing|integrating|connecting|relating)`)},
	{"Conclusion", regexp.MustCompile(`(?i)(concluding|therefore|thus|so|final answer|summary)`)},
	{"Tool", regexp.MustCompile(`(?i)(using tool|calling function|executing|running)`)},
}

// ParseReasoningSteps breaks raw reasoning text into structured steps. Lines
// matching a known category open a new step; other lines extend the current
// one. Unstructured text yields a single summary step.
func ParseReasoningSteps(reasoningText string) []ReasoningStep {
	var steps []ReasoningStep
	var current *ReasoningStep
	stepIndex := 0

	for _, line := range strings.Split(reasoningText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		label := matchCategory(trimmed)

		if label != "" || len(steps) == 0 {
			if current != nil && current.Content != "" {
				current.ID = fmt.Sprintf("step-%d", stepIndex)
				current.Status = "complete"
				current.Content = strings.TrimSpace(current.Content)
				steps = append(steps, *current)
				stepIndex++
			}

			if label == "" {
				label = "Reasoning"
			}
			current = &ReasoningStep{
				Label:       label,
				Description: truncateDescription(trimmed),
				Content:     trimmed,
				Status:      "active",
			}
			continue
		}

		if current != nil {
			current.Content = current.Content + "\n" + trimmed
			current.Description = truncateDescription(current.Content)
		}
	}

	if current != nil && current.Content != "" {
		current.ID = fmt.Sprintf("step-%d", stepIndex)
		current.Status = "complete"
		current.Content = strings.TrimSpace(current.Content)
		steps = append(steps, *current)
	}

	if len(steps) == 0 && strings.TrimSpace(reasoningText) != "" {
		steps = append(steps, ReasoningStep{
			ID:          "reasoning-summary",
			Label:       "AI Reasoning",
			Description: "Complete reasoning process",
			Content:     strings.TrimSpace(reasoningText),
			Status:      "complete",
		})
	}

	return steps
}

// NewReasoningSummary parses the reasoning text and folds in tool usage from
// the turn's tool call items. durationMS of zero means unknown.
func NewReasoningSummary(reasoningText string, durationMS int64, toolCalls []ToolCallItem) ReasoningSummary {
	usage := ToolUsage{Functions: []string{}}
	for _, call := range toolCalls {
		switch call.ToolType {
		case "file_search_call":
			usage.FileSearch = true
		case "function_call":
			if call.Name != "" {
				usage.Functions = append(usage.Functions, call.Name)
			}
		case "mcp_call":
			usage.MCP = true
		}
	}

	sources := 0
	if usage.FileSearch {
		sources = 1
	}

	return ReasoningSummary{
		Steps:         ParseReasoningSteps(reasoningText),
		TotalDuration: durationMS,
		ToolUsage:     usage,
		Sources:       sources,
	}
}

// FormatDuration renders a millisecond duration the way users read it:
// sub-second values in ms, then rounded seconds, then minutes and seconds.
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := (ms + 500) / 1000
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := seconds / 60
	remaining := seconds % 60
	return fmt.Sprintf("%dm %ds", minutes, remaining)
}

func matchCategory(line string) string {
	for _, p := range reasoningPatterns {
		if p.re.MatchString(line) {
			return p.label
		}
	}
	return ""
}

// truncateDescription caps the description at maxDescriptionLength runes so
// a multibyte character at the boundary is never cut mid-sequence.
func truncateDescription(text string) string {
	runes := []rune(text)
	if len(runes) > maxDescriptionLength {
		return string(runes[:maxDescriptionLength]) + "..."
	}
	return text
}

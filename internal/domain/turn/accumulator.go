package turn

import (
	"strings"

	"roborail-assistant/internal/domain/llm"
)

// Call is a fully reassembled tool call, ready for dispatch.
type Call struct {
	ID        string
	Type      string
	Name      string
	Arguments string
}

// Accumulator reassembles fragmented tool-call deltas into complete calls.
//
// A delta that carries an id opens a new call, flushing whichever call was
// accumulating before it. A delta without an id continues the most recently
// opened call by appending its argument fragment. Accumulation is
// format-agnostic string concatenation; argument JSON validity is checked at
// dispatch time, never here.
type Accumulator struct {
	completed []Call
	current   *accumulating
}

type accumulating struct {
	id   string
	typ  string
	name string
	args strings.Builder
}

// Apply folds one tool-call delta into the accumulator.
func (a *Accumulator) Apply(delta llm.ToolCallDelta) {
	if delta.ID != "" {
		a.Flush()
		callType := delta.Type
		if callType == "" {
			callType = "function"
		}
		a.current = &accumulating{
			id:   delta.ID,
			typ:  callType,
			name: delta.Function.Name,
		}
		a.current.args.WriteString(delta.Function.Arguments)
		return
	}

	if a.current == nil {
		// Argument fragment with no open call; nothing to continue.
		return
	}
	if delta.Function.Name != "" {
		a.current.name += delta.Function.Name
	}
	a.current.args.WriteString(delta.Function.Arguments)
}

// Flush moves the accumulating call, if any, into the completed list. Called
// when a new call opens or when the finish reason signals tool execution.
func (a *Accumulator) Flush() {
	if a.current == nil {
		return
	}
	if a.current.id != "" && a.current.name != "" {
		a.completed = append(a.completed, Call{
			ID:        a.current.id,
			Type:      a.current.typ,
			Name:      a.current.name,
			Arguments: a.current.args.String(),
		})
	}
	a.current = nil
}

// Calls returns the completed calls in arrival order.
func (a *Accumulator) Calls() []Call {
	return a.completed
}

// ToLLMCalls converts completed calls to the assistant-message tool_calls
// shape required by the continuation request.
func (a *Accumulator) ToLLMCalls() []llm.ToolCall {
	return CallsToLLM(a.completed)
}

// CallsToLLM maps dispatch-ready calls to the upstream wire shape.
func CallsToLLM(calls []Call) []llm.ToolCall {
	out := make([]llm.ToolCall, 0, len(calls))
	for _, c := range calls {
		out = append(out, llm.ToolCall{
			ID:   c.ID,
			Type: c.Type,
			Function: llm.ToolFunction{
				Name:      c.Name,
				Arguments: c.Arguments,
			},
		})
	}
	return out
}

package turn_test

import (
	"testing"

	"roborail-assistant/internal/domain/llm"
	"roborail-assistant/internal/domain/turn"
)

func delta(id, name, args string) llm.ToolCallDelta {
	return llm.ToolCallDelta{
		ID: id,
		Function: llm.ToolFunctionDelta{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestAccumulator_SingleCall(t *testing.T) {
	var acc turn.Accumulator
	acc.Apply(delta("call_1", "get_weather", ""))
	acc.Apply(delta("", "", `{"locat`))
	acc.Apply(delta("", "", `ion": "Paris"}`))
	acc.Flush()

	calls := acc.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if calls[0].ID != "call_1" || calls[0].Name != "get_weather" {
		t.Errorf("call = %+v, want id call_1 name get_weather", calls[0])
	}
	if calls[0].Arguments != `{"location": "Paris"}` {
		t.Errorf("arguments = %q, want reassembled JSON", calls[0].Arguments)
	}
}

func TestAccumulator_NewIDFlushesPrevious(t *testing.T) {
	var acc turn.Accumulator
	acc.Apply(delta("call_1", "first", ""))
	acc.Apply(delta("", "", `{"a":1}`))
	acc.Apply(delta("call_2", "second", ""))
	acc.Apply(delta("", "", `{"b":2}`))
	acc.Flush()

	calls := acc.Calls()
	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(calls))
	}
	if calls[0].Name != "first" || calls[0].Arguments != `{"a":1}` {
		t.Errorf("first call = %+v", calls[0])
	}
	if calls[1].Name != "second" || calls[1].Arguments != `{"b":2}` {
		t.Errorf("second call = %+v", calls[1])
	}
}

func TestAccumulator_FragmentBoundaries(t *testing.T) {
	// The same arguments split at different byte boundaries must reassemble
	// to identical strings.
	full := `{"query": "installation manual", "vector_store_id": "vs_1"}`
	splits := []int{1, 7, 23, len(full) - 1}

	for _, split := range splits {
		var acc turn.Accumulator
		acc.Apply(delta("call_1", "file_search", ""))
		acc.Apply(delta("", "", full[:split]))
		acc.Apply(delta("", "", full[split:]))
		acc.Flush()

		calls := acc.Calls()
		if len(calls) != 1 {
			t.Fatalf("split %d: got %d calls, want 1", split, len(calls))
		}
		if calls[0].Arguments != full {
			t.Errorf("split %d: arguments = %q, want %q", split, calls[0].Arguments, full)
		}
	}
}

func TestAccumulator_OrphanFragmentIgnored(t *testing.T) {
	var acc turn.Accumulator
	acc.Apply(delta("", "", `{"orphan": true}`))
	acc.Flush()

	if calls := acc.Calls(); len(calls) != 0 {
		t.Errorf("got %d calls, want 0", len(calls))
	}
}

func TestAccumulator_IncompleteCallDropped(t *testing.T) {
	var acc turn.Accumulator
	acc.Apply(llm.ToolCallDelta{ID: "call_1"})
	acc.Flush()

	if calls := acc.Calls(); len(calls) != 0 {
		t.Errorf("nameless call survived flush: %+v", calls)
	}
}

func TestAccumulator_DefaultsType(t *testing.T) {
	var acc turn.Accumulator
	acc.Apply(delta("call_1", "get_weather", "{}"))
	acc.Flush()

	calls := acc.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if calls[0].Type != "function" {
		t.Errorf("type = %q, want function", calls[0].Type)
	}
}

func TestCallsToLLM(t *testing.T) {
	calls := []turn.Call{
		{ID: "call_1", Type: "function", Name: "get_weather", Arguments: `{"city":"Paris"}`},
	}
	out := turn.CallsToLLM(calls)
	if len(out) != 1 {
		t.Fatalf("got %d calls, want 1", len(out))
	}
	if out[0].ID != "call_1" || out[0].Function.Name != "get_weather" || out[0].Function.Arguments != `{"city":"Paris"}` {
		t.Errorf("converted call = %+v", out[0])
	}
}

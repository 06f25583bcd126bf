package turn

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"roborail-assistant/internal/domain/llm"
)

// State tracks where the translator is in the turn lifecycle.
type State string

const (
	StateStreaming     State = "streaming"
	StateToolExecution State = "tool_execution"
	StateDone          State = "done"
	StateErrored       State = "errored"
)

// RoundResult reports how one model round ended. When FinishReason is
// "tool_calls" the round is not done: ToolCalls must be dispatched and the
// conversation continued.
type RoundResult struct {
	FinishReason string
	ToolCalls    []Call
}

// FinishReasonToolCalls signals that the model paused to request tools.
const FinishReasonToolCalls = "tool_calls"

// Translator consumes raw chunks from one model stream and emits the
// normalized application event sequence. One translator instance covers one
// model round; continuations get a fresh instance with a distinct item id so
// the client routes deltas to the correct in-progress item.
type Translator struct {
	itemID string
	emit   EmitFunc
	acc    Accumulator
	state  State
}

// NewTranslator creates a translator for one model round.
func NewTranslator(itemID string, emit EmitFunc) *Translator {
	return &Translator{
		itemID: itemID,
		emit:   emit,
		state:  StateStreaming,
	}
}

// State returns the translator's current lifecycle state.
func (t *Translator) State() State {
	return t.state
}

// Run drains the stream, emitting events per chunk. It returns when the
// stream is exhausted or a finish reason arrives. A "tool_calls" finish
// flushes the accumulator and hands the completed calls back without
// emitting a finish event, because the turn is not done yet.
func (t *Translator) Run(stream llm.Stream) (*RoundResult, error) {
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.state = StateErrored
			return nil, fmt.Errorf("recv stream chunk: %w", err)
		}

		if len(chunk.Choices) == 0 {
			// Keep-alive or usage-only chunk; skip.
			continue
		}
		choice := chunk.Choices[0]

		if choice.Delta != nil {
			if err := t.handleDelta(choice.Delta); err != nil {
				t.state = StateErrored
				return nil, err
			}
		}

		if choice.Message != nil {
			if err := t.handleMessage(choice.Message); err != nil {
				t.state = StateErrored
				return nil, err
			}
		}

		if choice.FinishReason != "" {
			if choice.FinishReason == FinishReasonToolCalls {
				t.acc.Flush()
				t.state = StateToolExecution
				return &RoundResult{
					FinishReason: FinishReasonToolCalls,
					ToolCalls:    t.acc.Calls(),
				}, nil
			}

			if err := t.emit(Event{Event: EventFinish, Data: FinishPayload{FinishReason: choice.FinishReason}}); err != nil {
				t.state = StateErrored
				return nil, err
			}
			t.state = StateDone
			return &RoundResult{FinishReason: choice.FinishReason}, nil
		}
	}

	t.state = StateDone
	return &RoundResult{}, nil
}

func (t *Translator) handleDelta(delta *llm.StreamDelta) error {
	if delta.Content != "" {
		ev := Event{Event: EventOutputTextDelta, Data: TextDeltaPayload{Delta: delta.Content, ItemID: t.itemID}}
		if err := t.emit(ev); err != nil {
			return err
		}
	}

	for _, tc := range delta.ToolCalls {
		opensCall := tc.ID != ""
		t.acc.Apply(tc)
		if !opensCall {
			continue
		}

		item := OutputItem{
			Type:      "function_call",
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
			Status:    "in_progress",
		}
		if tc.Type == "file_search" {
			item.Type = "file_search_call"
		}
		if err := t.emit(Event{Event: EventOutputItemAdded, Data: OutputItemPayload{Item: item}}); err != nil {
			return err
		}
	}

	if delta.Reasoning != "" {
		ev := Event{Event: EventReasoningDelta, Data: ReasoningDeltaPayload{Delta: delta.Reasoning, ItemID: t.itemID}}
		if err := t.emit(ev); err != nil {
			return err
		}
	}

	return nil
}

// handleMessage processes a full completion delivered in one chunk: native
// file search results become file_citation annotations, each followed by an
// annotation event, then the message itself is emitted as complete.
func (t *Translator) handleMessage(msg *llm.FullMessage) error {
	annotations := extractFileSearchAnnotations(msg)

	for _, tc := range msg.ToolCalls {
		if tc.Type != "file_search" || tc.FileSearch == nil || len(tc.FileSearch.Results) == 0 {
			continue
		}

		itemID := tc.ID
		if itemID == "" {
			itemID = "fs_1"
		}
		output, err := json.Marshal(tc.FileSearch.Results)
		if err != nil {
			return fmt.Errorf("marshal file search results: %w", err)
		}
		ev := Event{Event: EventFileSearchCompleted, Data: FileSearchCompletedPayload{ItemID: itemID, Output: string(output)}}
		if err := t.emit(ev); err != nil {
			return err
		}

		for i, result := range tc.FileSearch.Results {
			ann := fileCitation(result, i)
			ev := Event{Event: EventAnnotationAdded, Data: AnnotationAddedPayload{ItemID: t.itemID, Annotation: ann}}
			if err := t.emit(ev); err != nil {
				return err
			}
		}
	}

	return t.emit(Event{Event: EventMessageComplete, Data: MessageCompletePayload{
		Message:     msg,
		Annotations: annotations,
	}})
}

func extractFileSearchAnnotations(msg *llm.FullMessage) []Annotation {
	annotations := []Annotation{}

	for _, tc := range msg.ToolCalls {
		if tc.Type != "file_search" || tc.FileSearch == nil {
			continue
		}
		for i, result := range tc.FileSearch.Results {
			annotations = append(annotations, fileCitation(result, i))
		}
	}

	for _, raw := range msg.Annotations {
		annotations = append(annotations, annotationFromMap(raw))
	}

	return annotations
}

func fileCitation(result llm.FileSearchResult, index int) Annotation {
	title := result.Filename
	if title == "" {
		title = fmt.Sprintf("File %d", index+1)
	}
	return Annotation{
		Type:     AnnotationFileCitation,
		FileID:   result.FileID,
		Filename: title,
		Index:    index,
		Title:    title,
		Content:  result.Content,
	}
}

func annotationFromMap(raw map[string]any) Annotation {
	var ann Annotation
	data, err := json.Marshal(raw)
	if err != nil {
		return ann
	}
	_ = json.Unmarshal(data, &ann)
	return ann
}

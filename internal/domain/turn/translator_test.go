package turn_test

import (
	"io"
	"testing"

	"roborail-assistant/internal/domain/llm"
	"roborail-assistant/internal/domain/turn"
)

type stubStream struct {
	chunks []*llm.StreamChunk
	pos    int
	closed bool
}

func (s *stubStream) Recv() (*llm.StreamChunk, error) {
	if s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *stubStream) Close() error {
	s.closed = true
	return nil
}

type eventCollector struct {
	events []turn.Event
}

func (c *eventCollector) emit(ev turn.Event) error {
	c.events = append(c.events, ev)
	return nil
}

func (c *eventCollector) names() []string {
	names := make([]string, 0, len(c.events))
	for _, ev := range c.events {
		names = append(names, ev.Event)
	}
	return names
}

func textChunk(text string) *llm.StreamChunk {
	return &llm.StreamChunk{Choices: []llm.StreamChoice{
		{Delta: &llm.StreamDelta{Content: text}},
	}}
}

func finishChunk(reason string) *llm.StreamChunk {
	return &llm.StreamChunk{Choices: []llm.StreamChoice{
		{FinishReason: reason},
	}}
}

func TestTranslator_TextThenStop(t *testing.T) {
	stream := &stubStream{chunks: []*llm.StreamChunk{
		textChunk("Hello"),
		textChunk(" world"),
		finishChunk("stop"),
	}}
	collector := &eventCollector{}
	tr := turn.NewTranslator("msg_1", collector.emit)

	result, err := tr.Run(stream)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.FinishReason != "stop" {
		t.Errorf("finish reason = %q, want stop", result.FinishReason)
	}
	if len(result.ToolCalls) != 0 {
		t.Errorf("tool calls = %d, want 0", len(result.ToolCalls))
	}
	if !stream.closed {
		t.Error("stream not closed")
	}

	want := []string{turn.EventOutputTextDelta, turn.EventOutputTextDelta, turn.EventFinish}
	got := collector.names()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	first := collector.events[0].Data.(turn.TextDeltaPayload)
	if first.Delta != "Hello" || first.ItemID != "msg_1" {
		t.Errorf("first delta payload = %+v", first)
	}
}

func TestTranslator_ToolCallsSuppressFinish(t *testing.T) {
	stream := &stubStream{chunks: []*llm.StreamChunk{
		{Choices: []llm.StreamChoice{{Delta: &llm.StreamDelta{ToolCalls: []llm.ToolCallDelta{
			{ID: "call_1", Function: llm.ToolFunctionDelta{Name: "get_weather"}},
		}}}}},
		{Choices: []llm.StreamChoice{{Delta: &llm.StreamDelta{ToolCalls: []llm.ToolCallDelta{
			{Function: llm.ToolFunctionDelta{Arguments: `{"city":"Paris"}`}},
		}}}}},
		finishChunk("tool_calls"),
	}}
	collector := &eventCollector{}
	tr := turn.NewTranslator("msg_1", collector.emit)

	result, err := tr.Run(stream)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.FinishReason != turn.FinishReasonToolCalls {
		t.Fatalf("finish reason = %q, want tool_calls", result.FinishReason)
	}
	if len(result.ToolCalls) != 1 {
		t.Fatalf("tool calls = %d, want 1", len(result.ToolCalls))
	}
	if result.ToolCalls[0].Arguments != `{"city":"Paris"}` {
		t.Errorf("arguments = %q", result.ToolCalls[0].Arguments)
	}

	// One output_item.added for the opening fragment, no finish event.
	added := 0
	for _, ev := range collector.events {
		switch ev.Event {
		case turn.EventOutputItemAdded:
			added++
		case turn.EventFinish:
			t.Error("finish emitted for tool_calls round")
		}
	}
	if added != 1 {
		t.Errorf("output_item.added events = %d, want 1", added)
	}
	if tr.State() != turn.StateToolExecution {
		t.Errorf("state = %q, want tool_execution", tr.State())
	}
}

func TestTranslator_FullMessageWithFileSearch(t *testing.T) {
	stream := &stubStream{chunks: []*llm.StreamChunk{
		{Choices: []llm.StreamChoice{{
			Message: &llm.FullMessage{
				Role:    "assistant",
				Content: "See the manual.",
				ToolCalls: []llm.MessageToolCall{{
					ID:   "fs_call_1",
					Type: "file_search",
					FileSearch: &llm.FileSearchPayload{Results: []llm.FileSearchResult{
						{FileID: "file_1", Filename: "manual.pdf", Content: "Step one..."},
						{FileID: "file_2"},
					}},
				}},
			},
		}}},
		finishChunk("stop"),
	}}
	collector := &eventCollector{}
	tr := turn.NewTranslator("msg_1", collector.emit)

	if _, err := tr.Run(stream); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var annotations []turn.Annotation
	sawSearchCompleted := false
	sawMessageComplete := false
	for _, ev := range collector.events {
		switch ev.Event {
		case turn.EventFileSearchCompleted:
			sawSearchCompleted = true
		case turn.EventAnnotationAdded:
			annotations = append(annotations, ev.Data.(turn.AnnotationAddedPayload).Annotation)
		case turn.EventMessageComplete:
			sawMessageComplete = true
			payload := ev.Data.(turn.MessageCompletePayload)
			if len(payload.Annotations) != 2 {
				t.Errorf("message annotations = %d, want 2", len(payload.Annotations))
			}
		}
	}

	if !sawSearchCompleted || !sawMessageComplete {
		t.Fatalf("missing events: search=%v message=%v", sawSearchCompleted, sawMessageComplete)
	}
	if len(annotations) != 2 {
		t.Fatalf("annotation events = %d, want 2", len(annotations))
	}
	if annotations[0].Title != "manual.pdf" {
		t.Errorf("first title = %q, want filename", annotations[0].Title)
	}
	if annotations[1].Title != "File 2" {
		t.Errorf("fallback title = %q, want File 2", annotations[1].Title)
	}
}

func TestTranslator_SkipsEmptyChunks(t *testing.T) {
	stream := &stubStream{chunks: []*llm.StreamChunk{
		{},
		textChunk("hi"),
		finishChunk("stop"),
	}}
	collector := &eventCollector{}
	tr := turn.NewTranslator("msg_1", collector.emit)

	if _, err := tr.Run(stream); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(collector.events) != 2 {
		t.Errorf("events = %v, want delta and finish only", collector.names())
	}
}

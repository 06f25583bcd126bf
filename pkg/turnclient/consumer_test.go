package turnclient_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"roborail-assistant/internal/domain/turn"
	"roborail-assistant/pkg/turnclient"
)

func frame(t *testing.T, event string, data any) string {
	t.Helper()
	payload, err := json.Marshal(turn.Event{Event: event, Data: data})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	return fmt.Sprintf("data: %s\n\n", payload)
}

func TestConsumer_SimpleTextTurn(t *testing.T) {
	var b strings.Builder
	b.WriteString(frame(t, turn.EventOutputTextDelta, turn.TextDeltaPayload{Delta: "Hel", ItemID: "msg_1"}))
	b.WriteString(frame(t, turn.EventOutputTextDelta, turn.TextDeltaPayload{Delta: "lo", ItemID: "msg_1"}))
	b.WriteString(frame(t, turn.EventMessageComplete, turn.MessageCompletePayload{
		Message:     nil,
		Annotations: []turn.Annotation{},
	}))
	b.WriteString(frame(t, turn.EventFinish, turn.FinishPayload{FinishReason: "stop"}))

	store := turnclient.NewStore()
	consumer := turnclient.NewConsumer(store)

	if err := consumer.Consume(strings.NewReader(b.String())); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	msg := items[0].(turnclient.MessageItem)
	if msg.Role != "assistant" || msg.ID != "msg_1" {
		t.Errorf("message = %+v", msg)
	}
	if msg.Content[0].Text != "Hello" {
		t.Errorf("text = %q, want Hello", msg.Content[0].Text)
	}
	if store.Loading() {
		t.Error("loading still set after finish")
	}
}

func TestConsumer_ToolCallFlow(t *testing.T) {
	var b strings.Builder
	b.WriteString(frame(t, turn.EventOutputItemAdded, turn.OutputItemPayload{Item: turn.OutputItem{
		Type:      "function_call",
		ID:        "call_1",
		Name:      "get_weather",
		Status:    "in_progress",
		Arguments: `{"city":"Paris"}`,
	}}))
	b.WriteString(frame(t, turn.EventToolResult, turn.ToolResultPayload{
		ToolCallID:  "call_1",
		Result:      map[string]any{"temp": 21},
		Annotations: []turn.Annotation{},
	}))
	b.WriteString(frame(t, turn.EventOutputTextDelta, turn.TextDeltaPayload{Delta: "21 degrees", ItemID: "msg_2"}))
	b.WriteString(frame(t, turn.EventFinish, turn.FinishPayload{FinishReason: "stop"}))

	store := turnclient.NewStore()
	consumer := turnclient.NewConsumer(store)

	if err := consumer.Consume(strings.NewReader(b.String())); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	items := store.Items()
	if len(items) != 2 {
		t.Fatalf("items = %d, want tool call and message", len(items))
	}

	call := items[0].(turnclient.ToolCallItem)
	if call.Status != turnclient.StatusCompleted {
		t.Errorf("status = %q, want completed", call.Status)
	}
	if call.ParsedArguments["city"] != "Paris" {
		t.Errorf("parsed arguments = %v", call.ParsedArguments)
	}
	if !strings.Contains(call.Output, "21") {
		t.Errorf("output = %q", call.Output)
	}

	msg := items[1].(turnclient.MessageItem)
	if msg.Content[0].Text != "21 degrees" {
		t.Errorf("message text = %q", msg.Content[0].Text)
	}
}

func TestConsumer_FailedToolResult(t *testing.T) {
	var b strings.Builder
	b.WriteString(frame(t, turn.EventOutputItemAdded, turn.OutputItemPayload{Item: turn.OutputItem{
		Type: "function_call", ID: "call_1", Name: "boom",
	}}))
	b.WriteString(frame(t, turn.EventToolResult, turn.ToolResultPayload{
		ToolCallID: "call_1",
		Result:     map[string]any{"error": "Tool execution failed"},
	}))
	b.WriteString(frame(t, turn.EventFinish, turn.FinishPayload{FinishReason: "stop"}))

	store := turnclient.NewStore()
	if err := turnclient.NewConsumer(store).Consume(strings.NewReader(b.String())); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	call := store.Items()[0].(turnclient.ToolCallItem)
	if call.Status != turnclient.StatusFailed {
		t.Errorf("status = %q, want failed", call.Status)
	}
}

func TestConsumer_TruncatedStream(t *testing.T) {
	var b strings.Builder
	b.WriteString(frame(t, turn.EventOutputItemAdded, turn.OutputItemPayload{Item: turn.OutputItem{
		Type: "function_call", ID: "call_1", Name: "get_weather",
	}}))
	b.WriteString(frame(t, turn.EventOutputTextDelta, turn.TextDeltaPayload{Delta: "partial", ItemID: "msg_1"}))
	// Stream dies here: no finish event.

	store := turnclient.NewStore()
	err := turnclient.NewConsumer(store).Consume(strings.NewReader(b.String()))
	if !errors.Is(err, turnclient.ErrTruncatedStream) {
		t.Fatalf("err = %v, want ErrTruncatedStream", err)
	}

	if store.Loading() {
		t.Error("loading still set after truncation")
	}
	call := store.Items()[0].(turnclient.ToolCallItem)
	if call.Status != turnclient.StatusFailed {
		t.Errorf("in-flight call status = %q, want failed", call.Status)
	}
}

func TestConsumer_AnnotationsDeduped(t *testing.T) {
	ann := turn.Annotation{Type: turn.AnnotationFileCitation, FileID: "file_1", Filename: "a.txt", Title: "a.txt"}

	var b strings.Builder
	b.WriteString(frame(t, turn.EventOutputTextDelta, turn.TextDeltaPayload{Delta: "cited", ItemID: "msg_1"}))
	b.WriteString(frame(t, turn.EventAnnotationAdded, turn.AnnotationAddedPayload{ItemID: "msg_1", Annotation: ann}))
	b.WriteString(frame(t, turn.EventAnnotationAdded, turn.AnnotationAddedPayload{ItemID: "msg_1", Annotation: ann}))
	b.WriteString(frame(t, turn.EventMessageComplete, turn.MessageCompletePayload{
		Annotations: []turn.Annotation{ann},
	}))
	b.WriteString(frame(t, turn.EventFinish, turn.FinishPayload{FinishReason: "stop"}))

	store := turnclient.NewStore()
	if err := turnclient.NewConsumer(store).Consume(strings.NewReader(b.String())); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	msg := store.Items()[0].(turnclient.MessageItem)
	if got := len(msg.Content[0].Annotations); got != 1 {
		t.Errorf("annotations = %d, want 1", got)
	}
}

func TestConsumer_MCPItems(t *testing.T) {
	var b strings.Builder
	b.WriteString(frame(t, turn.EventMCPListTools, turn.MCPListToolsPayload{
		ServerLabel: "srv",
		Tools:       []turn.MCPTool{{Name: "alpha"}},
	}))
	b.WriteString(frame(t, turn.EventMCPApprovalRequest, turn.MCPApprovalRequestPayload{
		ID: "call_1", ServerLabel: "srv", Name: "alpha", Arguments: "{}",
	}))
	b.WriteString(frame(t, turn.EventFinish, turn.FinishPayload{FinishReason: "stop"}))

	store := turnclient.NewStore()
	if err := turnclient.NewConsumer(store).Consume(strings.NewReader(b.String())); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	items := store.Items()
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	list := items[0].(turnclient.McpListToolsItem)
	if list.ServerLabel != "srv" || len(list.Tools) != 1 {
		t.Errorf("list item = %+v", list)
	}
	approval := items[1].(turnclient.McpApprovalRequestItem)
	if approval.Name != "alpha" {
		t.Errorf("approval item = %+v", approval)
	}
}

func TestConsumer_MalformedFramesSkipped(t *testing.T) {
	var b strings.Builder
	b.WriteString("data: {not json}\n\n")
	b.WriteString(": comment line\n\n")
	b.WriteString(frame(t, turn.EventOutputTextDelta, turn.TextDeltaPayload{Delta: "ok", ItemID: "msg_1"}))
	b.WriteString(frame(t, turn.EventFinish, turn.FinishPayload{FinishReason: "stop"}))

	store := turnclient.NewStore()
	if err := turnclient.NewConsumer(store).Consume(strings.NewReader(b.String())); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	msg := store.Items()[0].(turnclient.MessageItem)
	if msg.Content[0].Text != "ok" {
		t.Errorf("text = %q", msg.Content[0].Text)
	}
}

package turnclient_test

import (
	"testing"

	"roborail-assistant/pkg/turnclient"
)

func TestStore_AppendAndRead(t *testing.T) {
	store := turnclient.NewStore()
	store.AppendItem(turnclient.MessageItem{Role: "user", Content: []turnclient.ContentPart{{Type: "input_text", Text: "hi"}}})
	store.AppendItem(turnclient.ToolCallItem{ID: "call_1", ToolType: "function_call", Status: turnclient.StatusInProgress})

	items := store.Items()
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].ItemType() != "message" || items[1].ItemType() != "tool_call" {
		t.Errorf("item types = %q, %q", items[0].ItemType(), items[1].ItemType())
	}

	// Items returns a copy; mutating it does not touch the store.
	items[0] = turnclient.MessageItem{Role: "assistant"}
	if store.Items()[0].(turnclient.MessageItem).Role != "user" {
		t.Error("store exposed internal slice")
	}
}

func TestStore_ResetKeepsLoading(t *testing.T) {
	store := turnclient.NewStore()
	store.AppendItem(turnclient.MessageItem{Role: "user"})
	store.SetLoading(true)

	store.Reset()

	if store.Len() != 0 {
		t.Errorf("items survived reset: %d", store.Len())
	}
	if !store.Loading() {
		t.Error("reset cleared the loading flag")
	}
}

func TestStore_SetLoading(t *testing.T) {
	store := turnclient.NewStore()
	if store.Loading() {
		t.Error("new store is loading")
	}
	store.SetLoading(true)
	if !store.Loading() {
		t.Error("loading not set")
	}
	store.SetLoading(false)
	if store.Loading() {
		t.Error("loading not cleared")
	}
}

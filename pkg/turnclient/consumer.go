package turnclient

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"roborail-assistant/internal/domain/turn"
)

// ErrTruncatedStream reports a turn stream that closed before its finish
// event. The server signals mid-turn failure by dropping the connection, so
// a missing finish means the turn did not complete.
var ErrTruncatedStream = errors.New("turn stream closed before finish")

// Consumer applies a turn event stream to a Store. One consumer handles one
// turn; items created by earlier turns are left untouched.
type Consumer struct {
	store    *Store
	items    []Item
	finished bool
}

// NewConsumer creates a consumer that appends to the store's timeline.
func NewConsumer(store *Store) *Consumer {
	return &Consumer{
		store: store,
		items: store.Items(),
	}
}

// Consume reads SSE frames until the stream ends. It returns nil after a
// finish event, ErrTruncatedStream when the stream closes without one.
func (c *Consumer) Consume(r io.Reader) error {
	c.store.SetLoading(true)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")

		var ev envelope
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			// Malformed frame; skip.
			continue
		}
		c.apply(ev)
		if c.finished {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		c.abort()
		return err
	}
	if !c.finished {
		c.abort()
		return ErrTruncatedStream
	}
	return nil
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (c *Consumer) apply(ev envelope) {
	switch ev.Event {
	case turn.EventOutputTextDelta:
		var p turn.TextDeltaPayload
		if json.Unmarshal(ev.Data, &p) != nil {
			return
		}
		part := c.ensureMessagePart(p.ItemID)
		part.Text += p.Delta
		c.store.SetLoading(false)

	case turn.EventReasoningDelta:
		var p turn.ReasoningDeltaPayload
		if json.Unmarshal(ev.Data, &p) != nil {
			return
		}
		part := c.ensureMessagePart(p.ItemID)
		part.Reasoning += p.Delta
		part.ReasoningStreaming = true

	case turn.EventOutputItemAdded:
		var p turn.OutputItemPayload
		if json.Unmarshal(ev.Data, &p) != nil {
			return
		}
		item := ToolCallItem{
			ID:        p.Item.ID,
			ToolType:  p.Item.Type,
			Status:    StatusInProgress,
			Name:      p.Item.Name,
			CallID:    p.Item.ID,
			Arguments: p.Item.Arguments,
		}
		if p.Item.Type == "file_search_call" {
			item.Status = StatusSearching
		}
		if args := parseArguments(p.Item.Arguments); args != nil {
			item.ParsedArguments = args
		}
		c.items = append(c.items, item)

	case turn.EventFileSearchCompleted:
		var p turn.FileSearchCompletedPayload
		if json.Unmarshal(ev.Data, &p) != nil {
			return
		}
		if i := c.findToolCall(p.ItemID); i >= 0 {
			call := c.items[i].(ToolCallItem)
			call.Status = StatusCompleted
			call.Output = p.Output
			c.items[i] = call
		} else {
			c.items = append(c.items, ToolCallItem{
				ID:       p.ItemID,
				ToolType: "file_search_call",
				Status:   StatusCompleted,
				Name:     "file_search",
				Output:   p.Output,
			})
		}

	case turn.EventAnnotationAdded:
		var p turn.AnnotationAddedPayload
		if json.Unmarshal(ev.Data, &p) != nil {
			return
		}
		part := c.ensureMessagePart(p.ItemID)
		part.Annotations = MergeAnnotations(part.Annotations, []turn.Annotation{p.Annotation})

	case turn.EventMessageComplete:
		var p turn.MessageCompletePayload
		if json.Unmarshal(ev.Data, &p) != nil {
			return
		}
		c.completeMessage(p)

	case turn.EventToolResult:
		var p turn.ToolResultPayload
		if json.Unmarshal(ev.Data, &p) != nil {
			return
		}
		c.applyToolResult(p)

	case turn.EventMCPListTools:
		var p turn.MCPListToolsPayload
		if json.Unmarshal(ev.Data, &p) != nil {
			return
		}
		tools := make([]MCPToolInfo, 0, len(p.Tools))
		for _, t := range p.Tools {
			tools = append(tools, MCPToolInfo{Name: t.Name, Description: t.Description})
		}
		c.items = append(c.items, McpListToolsItem{ServerLabel: p.ServerLabel, Tools: tools})

	case turn.EventMCPApprovalRequest:
		var p turn.MCPApprovalRequestPayload
		if json.Unmarshal(ev.Data, &p) != nil {
			return
		}
		c.items = append(c.items, McpApprovalRequestItem{
			ID:          p.ID,
			ServerLabel: p.ServerLabel,
			Name:        p.Name,
			Arguments:   p.Arguments,
		})

	case turn.EventFinish:
		c.finished = true
		c.settleReasoning()
		c.store.SetLoading(false)
	}

	c.sync()
}

// completeMessage finalizes the most recent assistant message with the full
// text and the deduplicated citation set.
func (c *Consumer) completeMessage(p turn.MessageCompletePayload) {
	i := c.lastAssistantMessage()
	if i < 0 {
		c.items = append(c.items, MessageItem{
			Role:    "assistant",
			Content: []ContentPart{{Type: "output_text"}},
		})
		i = len(c.items) - 1
	}
	msg := c.items[i].(MessageItem)
	part := &msg.Content[len(msg.Content)-1]
	if p.Message != nil {
		if text := contentText(p.Message.Content); text != "" {
			part.Text = text
		}
	}
	part.Annotations = MergeAnnotations(part.Annotations, DedupeAnnotations(p.Annotations))
	part.ReasoningStreaming = false
	c.items[i] = msg
}

func (c *Consumer) applyToolResult(p turn.ToolResultPayload) {
	i := c.findToolCall(p.ToolCallID)
	if i < 0 {
		return
	}
	call := c.items[i].(ToolCallItem)

	output, err := json.Marshal(p.Result)
	if err == nil {
		call.Output = string(output)
	}

	call.Status = StatusCompleted
	if m, ok := p.Result.(map[string]any); ok {
		if _, failed := m["error"]; failed {
			call.Status = StatusFailed
		}
	}

	for _, ann := range p.Annotations {
		if ann.FileID == "" {
			continue
		}
		call.Files = append(call.Files, FileReference{FileID: ann.FileID, Filename: ann.Filename})
	}

	c.items[i] = call
}

// abort marks in-flight work as failed when the stream dies mid-turn.
func (c *Consumer) abort() {
	for i, item := range c.items {
		if call, ok := item.(ToolCallItem); ok {
			if call.Status == StatusInProgress || call.Status == StatusSearching {
				call.Status = StatusFailed
				c.items[i] = call
			}
		}
	}
	c.settleReasoning()
	c.store.SetLoading(false)
	c.sync()
}

func (c *Consumer) settleReasoning() {
	for i, item := range c.items {
		msg, ok := item.(MessageItem)
		if !ok {
			continue
		}
		changed := false
		for j := range msg.Content {
			if msg.Content[j].ReasoningStreaming {
				msg.Content[j].ReasoningStreaming = false
				changed = true
			}
		}
		if changed {
			c.items[i] = msg
		}
	}
}

// ensureMessagePart returns the writable content part of the message with
// the given id, creating the message if the first delta arrives before any
// other event touched it.
func (c *Consumer) ensureMessagePart(itemID string) *ContentPart {
	i := c.findMessage(itemID)
	if i < 0 {
		c.items = append(c.items, MessageItem{
			ID:      itemID,
			Role:    "assistant",
			Content: []ContentPart{{Type: "output_text"}},
		})
		i = len(c.items) - 1
	}
	msg := c.items[i].(MessageItem)
	part := &msg.Content[len(msg.Content)-1]
	c.items[i] = msg
	return part
}

func (c *Consumer) findMessage(itemID string) int {
	for i := len(c.items) - 1; i >= 0; i-- {
		if msg, ok := c.items[i].(MessageItem); ok && msg.ID == itemID {
			return i
		}
	}
	return -1
}

func (c *Consumer) lastAssistantMessage() int {
	for i := len(c.items) - 1; i >= 0; i-- {
		if msg, ok := c.items[i].(MessageItem); ok && msg.Role == "assistant" {
			return i
		}
	}
	return -1
}

func (c *Consumer) findToolCall(id string) int {
	for i := len(c.items) - 1; i >= 0; i-- {
		if call, ok := c.items[i].(ToolCallItem); ok && call.ID == id {
			return i
		}
	}
	return -1
}

func (c *Consumer) sync() {
	items := make([]Item, len(c.items))
	copy(items, c.items)
	c.store.SetItems(items)
}

func parseArguments(raw string) map[string]any {
	if raw == "" {
		return nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil
	}
	return args
}

func contentText(content any) string {
	switch v := content.(type) {
	case string:
		return v
	case []any:
		var b strings.Builder
		for _, part := range v {
			b.WriteString(contentText(part))
		}
		return b.String()
	case map[string]any:
		if text, ok := v["text"].(string); ok {
			return text
		}
	}
	return ""
}

package llmprovider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"roborail-assistant/internal/domain/llm"
)

// streamClient carries no total timeout: a turn may legitimately stream for
// minutes. The request context bounds the call instead.
var streamClient = &http.Client{}

// Client implements the llm.Provider interface against an OpenAI-compatible
// chat completion API. baseURL includes the version prefix, e.g.
// https://api.openai.com/v1.
type Client struct {
	baseURL string
	apiKey  string
}

// NewClient creates a streaming chat-completions client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// authorization prefers a per-request token from the context over the
// configured API key.
func (c *Client) authorization(ctx context.Context) string {
	if token := llm.AuthTokenFromContext(ctx); token != "" {
		return token
	}
	if c.apiKey != "" {
		return "Bearer " + c.apiKey
	}
	return ""
}

// CreateChatCompletionStream calls /chat/completions with streaming enabled.
func (c *Client) CreateChatCompletionStream(ctx context.Context, req llm.ChatCompletionRequest) (llm.Stream, error) {
	req.Stream = true

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if auth := c.authorization(ctx); auth != "" {
		httpReq.Header.Set("Authorization", auth)
	}

	resp, err := streamClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("model api error: %d %s", resp.StatusCode, string(body))
	}

	return &sseStream{
		resp:   resp,
		reader: bufio.NewReader(resp.Body),
	}, nil
}

// Ensure interface compliance.
var _ llm.Provider = (*Client)(nil)

// sseStream implements llm.Stream backed by http.Response body with SSE parsing.
type sseStream struct {
	resp   *http.Response
	reader *bufio.Reader
}

func (s *sseStream) Recv() (*llm.StreamChunk, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read line: %w", err)
		}

		line = strings.TrimSpace(line)

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")

		if data == "[DONE]" {
			return nil, io.EOF
		}

		var chunk llm.StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed chunks
			continue
		}

		return &chunk, nil
	}
}

func (s *sseStream) Close() error {
	if s.resp != nil && s.resp.Body != nil {
		return s.resp.Body.Close()
	}
	return nil
}

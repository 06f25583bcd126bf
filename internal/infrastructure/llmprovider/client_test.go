package llmprovider

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
)

func newTestStream(body string) *sseStream {
	return &sseStream{reader: bufio.NewReader(strings.NewReader(body))}
}

func TestStreamClientHasNoTotalTimeout(t *testing.T) {
	// A single model round can stream for minutes; only the request context
	// may bound the call.
	if streamClient.Timeout != 0 {
		t.Errorf("streamClient.Timeout = %v, want 0", streamClient.Timeout)
	}
}

func TestSSEStreamRecv(t *testing.T) {
	body := ": keep-alive\n" +
		"\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n" +
		"\n" +
		"data: {not json}\n" +
		"\n" +
		"event: noise\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n" +
		"\n" +
		"data: [DONE]\n"

	stream := newTestStream(body)

	first, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if first.Choices[0].Delta.Content != "Hel" {
		t.Errorf("first delta = %q", first.Choices[0].Delta.Content)
	}

	second, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if second.Choices[0].Delta.Content != "lo" {
		t.Errorf("second delta = %q", second.Choices[0].Delta.Content)
	}

	if _, err := stream.Recv(); !errors.Is(err, io.EOF) {
		t.Errorf("after [DONE]: err = %v, want io.EOF", err)
	}
}

func TestSSEStreamRecv_EOFWithoutDone(t *testing.T) {
	stream := newTestStream("data: {\"choices\":[{\"finish_reason\":\"stop\"}]}\n")

	chunk, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if chunk.Choices[0].FinishReason != "stop" {
		t.Errorf("finish reason = %q", chunk.Choices[0].FinishReason)
	}

	if _, err := stream.Recv(); !errors.Is(err, io.EOF) {
		t.Errorf("exhausted stream: err = %v, want io.EOF", err)
	}
}

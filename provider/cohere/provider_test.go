package cohere

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casualjim/myna/generation"
	"github.com/casualjim/myna/messages"
	"github.com/casualjim/myna/provider"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNew(t *testing.T) {
	p := New(APIKey("test-key"))
	require.NotNil(t, p)
	assert.Equal(t, DefaultBaseURL, p.baseURL)
	assert.NotNil(t, p.client)
	assert.Equal(t, "test-key", p.apiKey)
}

func setupTestServer(t *testing.T, handler http.HandlerFunc) *Provider {
	server := httptest.NewServer(handler)
	t.Cleanup(func() {
		server.Close()
	})

	return New(APIKey("test-key"), BaseURL(server.URL))
}

func completionParams(stream bool) provider.CompletionParams {
	return provider.CompletionParams{
		SessionID: uuid.New(),
		TurnID:    uuid.New(),
		Messages: []messages.Message[messages.ModelMessage]{
			modelMsg(messages.InstructionsMessage{Content: "You are terse."}),
			modelMsg(messages.UserMessage{Content: "hello"}),
		},
		Params: generation.Defaults(),
		Model:  CommandRPlus(),
		Stream: stream,
	}
}

func writeSSE(t *testing.T, w http.ResponseWriter, events ...string) {
	t.Helper()
	flusher, ok := w.(http.Flusher)
	require.True(t, ok)
	for _, event := range events {
		_, err := fmt.Fprintf(w, "data: %s\n\n", event)
		require.NoError(t, err)
		flusher.Flush()
	}
}

func TestProvider_ChatCompletion_Stream(t *testing.T) {
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/chat", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		req := gjson.ParseBytes(body)
		assert.Equal(t, "command-r-plus-08-2024", req.Get("model").String())
		assert.True(t, req.Get("stream").Bool())
		assert.Equal(t, "You are terse.\n\nUser: hello", req.Get("messages.0.content").String())

		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(t, w,
			`{"type":"message-start","delta":{"message":{"role":"assistant"}}}`,
			`{"type":"content-start","index":0}`,
			`{"type":"content-delta","index":0,"delta":{"message":{"content":{"text":"Hello"}}}}`,
			`{"type":"content-delta","index":0,"delta":{"message":{"content":{"text":" world"}}}}`,
			`{"type":"content-end","index":0}`,
			`{"type":"message-end","delta":{"finish_reason":"COMPLETE","usage":{"tokens":{"input_tokens":12,"output_tokens":5}}}}`,
		)
	})

	params := completionParams(true)
	events, err := p.ChatCompletion(context.Background(), params)
	require.NoError(t, err)

	event := <-events
	chunk, ok := event.(provider.Chunk)
	require.True(t, ok)
	assert.Equal(t, "Hello", chunk.Text)
	assert.Equal(t, params.SessionID, chunk.SessionID)
	assert.Equal(t, params.TurnID, chunk.TurnID)

	event = <-events
	chunk, ok = event.(provider.Chunk)
	require.True(t, ok)
	assert.Equal(t, " world", chunk.Text)

	event = <-events
	usage, ok := event.(provider.Usage)
	require.True(t, ok)
	assert.Equal(t, int64(12), usage.PromptTokens)
	assert.Equal(t, int64(5), usage.CompletionTokens)

	event = <-events
	done, ok := event.(provider.Done)
	require.True(t, ok)
	assert.Equal(t, "COMPLETE", done.Reason)

	_, ok = <-events
	assert.False(t, ok, "channel should be closed after the terminal event")
}

func TestProvider_ChatCompletion_StreamWithoutUsage(t *testing.T) {
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(t, w,
			`{"type":"content-delta","index":0,"delta":{"message":{"content":{"text":"hi"}}}}`,
			`{"type":"message-end","delta":{"finish_reason":"COMPLETE"}}`,
		)
	})

	events, err := p.ChatCompletion(context.Background(), completionParams(true))
	require.NoError(t, err)

	var kinds []string
	for event := range events {
		switch event.(type) {
		case provider.Chunk:
			kinds = append(kinds, "chunk")
		case provider.Usage:
			kinds = append(kinds, "usage")
		case provider.Done:
			kinds = append(kinds, "done")
		case provider.Error:
			kinds = append(kinds, "error")
		}
	}
	assert.Equal(t, []string{"chunk", "done"}, kinds)
}

func TestProvider_ChatCompletion_SkipsEmptyAndMalformedEvents(t *testing.T) {
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(t, w,
			`{"type":"content-delta","index":0,"delta":{"message":{"content":{"text":""}}}}`,
			`this is not json`,
			`{"type":"content-delta","index":0,"delta":{"message":{"content":{"text":"still here"}}}}`,
			`{"type":"message-end","delta":{"finish_reason":"COMPLETE"}}`,
		)
	})

	events, err := p.ChatCompletion(context.Background(), completionParams(true))
	require.NoError(t, err)

	event := <-events
	chunk, ok := event.(provider.Chunk)
	require.True(t, ok)
	assert.Equal(t, "still here", chunk.Text)

	event = <-events
	assert.IsType(t, provider.Done{}, event)

	_, ok = <-events
	assert.False(t, ok)
}

func TestProvider_ChatCompletion_StreamClosedEarly(t *testing.T) {
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(t, w,
			`{"type":"content-delta","index":0,"delta":{"message":{"content":{"text":"partial"}}}}`,
		)
		// Connection closes without a message-end.
	})

	events, err := p.ChatCompletion(context.Background(), completionParams(true))
	require.NoError(t, err)

	event := <-events
	assert.IsType(t, provider.Chunk{}, event)

	event = <-events
	errEvent, ok := event.(provider.Error)
	require.True(t, ok)
	assert.ErrorContains(t, errEvent.Err, "before message-end")

	_, ok = <-events
	assert.False(t, ok)
}

func TestProvider_ChatCompletion_APIError(t *testing.T) {
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid api token"}`))
	})

	events, err := p.ChatCompletion(context.Background(), completionParams(true))
	require.NoError(t, err)

	event := <-events
	errEvent, ok := event.(provider.Error)
	require.True(t, ok)
	assert.ErrorContains(t, errEvent.Err, "invalid api token")

	_, ok = <-events
	assert.False(t, ok)
}

func TestProvider_ChatCompletion_NoMessages(t *testing.T) {
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for an empty conversation")
	})

	params := completionParams(true)
	params.Messages = nil

	events, err := p.ChatCompletion(context.Background(), params)
	assert.ErrorIs(t, err, provider.ErrNoMessages)
	assert.Nil(t, events)
}

func TestProvider_ChatCompletion_ContextCancellation(t *testing.T) {
	serverDone := make(chan struct{})
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		defer close(serverDone)

		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(t, w,
			`{"type":"content-delta","index":0,"delta":{"message":{"content":{"text":"Hello"}}}}`,
		)

		// Wait for context cancellation
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	events, err := p.ChatCompletion(ctx, completionParams(true))
	require.NoError(t, err)

	event := <-events
	chunk, ok := event.(provider.Chunk)
	require.True(t, ok)
	assert.Equal(t, "Hello", chunk.Text)

	cancel()
	<-serverDone

	event = <-events
	errEvent, ok := event.(provider.Error)
	require.True(t, ok)
	assert.ErrorIs(t, errEvent.Err, context.Canceled)

	_, ok = <-events
	assert.False(t, ok, "channel should be closed after context cancellation")
}

func TestProvider_ChatCompletion_Once(t *testing.T) {
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.False(t, gjson.GetBytes(body, "stream").Bool())

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"message": {"role": "assistant", "content": [{"type": "text", "text": "Test response"}]},
			"finish_reason": "COMPLETE",
			"usage": {"tokens": {"input_tokens": 8, "output_tokens": 3}}
		}`))
	})

	events, err := p.ChatCompletion(context.Background(), completionParams(false))
	require.NoError(t, err)

	event := <-events
	chunk, ok := event.(provider.Chunk)
	require.True(t, ok)
	assert.Equal(t, "Test response", chunk.Text)

	event = <-events
	usage, ok := event.(provider.Usage)
	require.True(t, ok)
	assert.Equal(t, int64(8), usage.PromptTokens)
	assert.Equal(t, int64(3), usage.CompletionTokens)

	event = <-events
	done, ok := event.(provider.Done)
	require.True(t, ok)
	assert.Equal(t, "COMPLETE", done.Reason)

	_, ok = <-events
	assert.False(t, ok)
}

func TestModelRegistry(t *testing.T) {
	m1 := CommandRPlus()
	m2 := CommandRPlus()
	assert.Same(t, m1, m2, "models with the same name share one instance")
	assert.Equal(t, "command-r-plus-08-2024", m1.Name())

	prov := m1.Provider()
	require.NotNil(t, prov)
	assert.Same(t, prov, m1.Provider(), "provider initializes once")
}

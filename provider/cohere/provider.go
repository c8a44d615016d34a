package cohere

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/casualjim/myna/pkg/slogx"
	"github.com/casualjim/myna/provider"
	"github.com/fogfish/opts"
	"github.com/go-openapi/strfmt"
	"github.com/tidwall/gjson"
)

// Provider talks to the Cohere v2 chat API. The zero value is not usable,
// construct with New. A single Provider is safe for concurrent use.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var (
	// APIKey sets the bearer token. When absent, New falls back to the
	// COHERE_API_KEY environment variable.
	APIKey = opts.ForName[Provider, string]("apiKey")

	// BaseURL points the provider at a different endpoint, mainly for tests.
	BaseURL = opts.ForName[Provider, string]("baseURL")

	// HTTPClient swaps the underlying http.Client.
	HTTPClient = opts.ForName[Provider, *http.Client]("client")
)

// New creates a Cohere provider with the given options applied.
func New(options ...opts.Option[Provider]) *Provider {
	p := &Provider{
		baseURL: DefaultBaseURL,
		client:  &http.Client{},
	}
	if err := opts.Apply(p, options); err != nil {
		panic(err)
	}
	if p.apiKey == "" {
		p.apiKey = os.Getenv("COHERE_API_KEY")
	}
	return p
}

func (p *Provider) ChatCompletion(ctx context.Context, params provider.CompletionParams) (<-chan provider.StreamEvent, error) {
	msgs, err := toChatMessages(params.Messages)
	if err != nil {
		return nil, err
	}

	payload := buildRequest(params.Model.Name(), msgs, params.Stream, params.Params)

	events := make(chan provider.StreamEvent, 10)
	go func() {
		defer close(events)
		if params.Stream {
			p.runStream(ctx, payload, &params, events)
		} else {
			p.runOnce(ctx, payload, &params, events)
		}
	}()
	return events, nil
}

var dataPrefix = []byte("data: ")

func (p *Provider) runStream(ctx context.Context, payload chatRequest, command *provider.CompletionParams, events chan<- provider.StreamEvent) {
	resp, err := p.post(ctx, payload)
	if err != nil {
		events <- provider.Error{
			Err:       err,
			SessionID: command.SessionID,
			TurnID:    command.TurnID,
			Timestamp: strfmt.DateTime(time.Now()),
		}
		return
	}

	var terminal bool

	// Ensure cleanup on all exit paths
	defer func() {
		_ = resp.Body.Close()
		// Send error if context was cancelled before the wire terminal
		if terminal {
			return
		}
		if err := ctx.Err(); err != nil {
			events <- provider.Error{
				Err:       err,
				SessionID: command.SessionID,
				TurnID:    command.TurnID,
				Timestamp: strfmt.DateTime(time.Now()),
			}
		}
	}()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		// Check context before processing each event
		if ctx.Err() != nil {
			return
		}

		line := scanner.Bytes()
		if !bytes.HasPrefix(line, dataPrefix) {
			continue
		}
		data := bytes.TrimSpace(line[len(dataPrefix):])
		if len(data) == 0 {
			continue
		}
		if !gjson.ValidBytes(data) {
			slog.WarnContext(ctx, "skipping malformed stream event", slogx.ByteString("payload", data))
			continue
		}

		event := gjson.ParseBytes(data)
		switch event.Get("type").String() {
		case "content-delta":
			text := event.Get("delta.message.content.text").String()
			if text == "" {
				continue
			}
			events <- provider.Chunk{
				SessionID: command.SessionID,
				TurnID:    command.TurnID,
				Text:      text,
				Timestamp: strfmt.DateTime(time.Now()),
			}
		case "message-end":
			if usage := event.Get("delta.usage.tokens"); usage.Exists() {
				events <- provider.Usage{
					SessionID:        command.SessionID,
					TurnID:           command.TurnID,
					PromptTokens:     usage.Get("input_tokens").Int(),
					CompletionTokens: usage.Get("output_tokens").Int(),
					Timestamp:        strfmt.DateTime(time.Now()),
				}
			}
			events <- provider.Done{
				SessionID: command.SessionID,
				TurnID:    command.TurnID,
				Reason:    event.Get("delta.finish_reason").String(),
				Timestamp: strfmt.DateTime(time.Now()),
			}
			terminal = true
			return
		}
	}

	if ctx.Err() != nil {
		return
	}
	if err := scanner.Err(); err != nil {
		events <- provider.Error{
			Err:       fmt.Errorf("read stream: %w", err),
			SessionID: command.SessionID,
			TurnID:    command.TurnID,
			Timestamp: strfmt.DateTime(time.Now()),
		}
		terminal = true
		return
	}
	events <- provider.Error{
		Err:       errors.New("stream closed before message-end"),
		SessionID: command.SessionID,
		TurnID:    command.TurnID,
		Timestamp: strfmt.DateTime(time.Now()),
	}
	terminal = true
}

func (p *Provider) runOnce(ctx context.Context, payload chatRequest, command *provider.CompletionParams, events chan<- provider.StreamEvent) {
	resp, err := p.post(ctx, payload)
	if err != nil {
		events <- provider.Error{
			Err:       err,
			SessionID: command.SessionID,
			TurnID:    command.TurnID,
			Timestamp: strfmt.DateTime(time.Now()),
		}
		return
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		events <- provider.Error{
			Err:       fmt.Errorf("read response: %w", err),
			SessionID: command.SessionID,
			TurnID:    command.TurnID,
			Timestamp: strfmt.DateTime(time.Now()),
		}
		return
	}

	if text := gjson.GetBytes(body, "message.content.0.text").String(); text != "" {
		events <- provider.Chunk{
			SessionID: command.SessionID,
			TurnID:    command.TurnID,
			Text:      text,
			Timestamp: strfmt.DateTime(time.Now()),
		}
	}
	if usage := gjson.GetBytes(body, "usage.tokens"); usage.Exists() {
		events <- provider.Usage{
			SessionID:        command.SessionID,
			TurnID:           command.TurnID,
			PromptTokens:     usage.Get("input_tokens").Int(),
			CompletionTokens: usage.Get("output_tokens").Int(),
			Timestamp:        strfmt.DateTime(time.Now()),
		}
	}
	events <- provider.Done{
		SessionID: command.SessionID,
		TurnID:    command.TurnID,
		Reason:    gjson.GetBytes(body, "finish_reason").String(),
		Timestamp: strfmt.DateTime(time.Now()),
	}
}

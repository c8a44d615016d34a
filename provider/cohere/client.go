package cohere

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/casualjim/myna/generation"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the production endpoint of the Cohere API.
const DefaultBaseURL = "https://api.cohere.com"

const chatPath = "/v2/chat"

// chatRequest is the POST /v2/chat payload. Unset generation knobs stay nil
// and are omitted, so the API's own defaults apply. Note the wire names: the
// sampling knobs are "k" and "p", not top_k/top_p.
type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	Stream           bool          `json:"stream"`
	Temperature      *float64      `json:"temperature,omitempty"`
	MaxTokens        *int64        `json:"max_tokens,omitempty"`
	K                *int64        `json:"k,omitempty"`
	P                *float64      `json:"p,omitempty"`
	FrequencyPenalty *float64      `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64      `json:"presence_penalty,omitempty"`
	StopSequences    []string      `json:"stop_sequences,omitempty"`
}

func buildRequest(model string, msgs []chatMessage, stream bool, params generation.Params) chatRequest {
	return chatRequest{
		Model:            model,
		Messages:         msgs,
		Stream:           stream,
		Temperature:      params.Temperature,
		MaxTokens:        params.MaxTokens,
		K:                params.TopK,
		P:                params.TopP,
		FrequencyPenalty: params.FrequencyPenalty,
		PresencePenalty:  params.PresencePenalty,
		StopSequences:    params.StopSequences,
	}
}

// post issues the chat request and hands back the raw response on 2xx. Any
// other status is drained, decoded and returned as an error.
func (p *Provider) post(ctx context.Context, payload chatRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if payload.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer func() { _ = resp.Body.Close() }()
		return nil, apiError(resp)
	}
	return resp, nil
}

// apiError turns a non-2xx response into an error, preferring the API's own
// message field over the raw body.
func apiError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cohere: status %d, unreadable body: %w", resp.StatusCode, err)
	}
	if msg := gjson.GetBytes(body, "message"); msg.Exists() && msg.String() != "" {
		return fmt.Errorf("cohere: %s (status %d)", msg.String(), resp.StatusCode)
	}
	return fmt.Errorf("cohere: unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
}

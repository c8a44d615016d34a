package openai

import (
	"context"
	"slices"
	"time"

	"github.com/casualjim/myna/generation"
	"github.com/casualjim/myna/messages"
	"github.com/casualjim/myna/provider"
	"github.com/go-openapi/strfmt"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Provider struct {
	client *openai.Client
}

func New(options ...option.RequestOption) *Provider {
	client := openai.NewClient(options...)
	return &Provider{
		client: client,
	}
}

func (p *Provider) buildRequest(params *provider.CompletionParams) (openai.ChatCompletionNewParams, error) {
	result, err := messagesToOpenAI(params.Messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}

	oaiParams := openai.ChatCompletionNewParams{
		Messages: openai.F(result),
		Model:    openai.F(params.Model.Name()),
		N:        openai.Int(1),
	}
	applySettings(&oaiParams, params.Params)

	if params.Stream {
		oaiParams.StreamOptions = openai.F(openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		})
	}

	return oaiParams, nil
}

// applySettings maps the generation snapshot onto the request. OpenAI's chat
// endpoint has no top_k knob, so that one never leaves the process.
func applySettings(oaiParams *openai.ChatCompletionNewParams, params generation.Params) {
	if params.Temperature != nil {
		oaiParams.Temperature = openai.Float(*params.Temperature)
	}
	if params.MaxTokens != nil {
		oaiParams.MaxTokens = openai.Int(*params.MaxTokens)
	}
	if params.TopP != nil {
		oaiParams.TopP = openai.Float(*params.TopP)
	}
	if params.FrequencyPenalty != nil {
		oaiParams.FrequencyPenalty = openai.Float(*params.FrequencyPenalty)
	}
	if params.PresencePenalty != nil {
		oaiParams.PresencePenalty = openai.Float(*params.PresencePenalty)
	}
	if len(params.StopSequences) > 0 {
		oaiParams.Stop = openai.F[openai.ChatCompletionNewParamsStopUnion](
			openai.ChatCompletionNewParamsStopArray(params.StopSequences),
		)
	}
}

func (p *Provider) ChatCompletion(ctx context.Context, params provider.CompletionParams) (<-chan provider.StreamEvent, error) {
	chatParams, err := p.buildRequest(&params)
	if err != nil {
		return nil, err
	}

	events := make(chan provider.StreamEvent, 10)
	go func() {
		defer close(events)
		if params.Stream {
			p.runStream(ctx, chatParams, &params, events)
		} else {
			p.runOnce(ctx, chatParams, &params, events)
		}
	}()
	return events, nil
}

func (p *Provider) runStream(ctx context.Context, params openai.ChatCompletionNewParams, command *provider.CompletionParams, events chan<- provider.StreamEvent) {
	strm := p.client.Chat.Completions.NewStreaming(ctx, params)

	var terminal bool

	// Ensure cleanup on all exit paths
	defer func() {
		_ = strm.Close()
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

	var finishReason string
	for strm.Next() {
		// Check context before processing each chunk
		if ctx.Err() != nil {
			return
		}

		chunk := strm.Current()
		if len(chunk.Choices) > 0 {
			choice := chunk.Choices[0]
			if choice.Delta.Content != "" {
				events <- provider.Chunk{
					SessionID: command.SessionID,
					TurnID:    command.TurnID,
					Text:      choice.Delta.Content,
					Timestamp: strfmt.DateTime(time.Now()),
				}
			}
			if choice.FinishReason != "" {
				finishReason = string(choice.FinishReason)
			}
		}
		// With include_usage the accounting arrives on a trailing chunk
		// that carries no choices.
		if chunk.Usage.PromptTokens != 0 || chunk.Usage.CompletionTokens != 0 {
			events <- provider.Usage{
				SessionID:        command.SessionID,
				TurnID:           command.TurnID,
				PromptTokens:     chunk.Usage.PromptTokens,
				CompletionTokens: chunk.Usage.CompletionTokens,
				Timestamp:        strfmt.DateTime(time.Now()),
			}
		}
	}

	if ctx.Err() != nil {
		return
	}
	if err := strm.Err(); err != nil {
		events <- provider.Error{
			Err:       err,
			SessionID: command.SessionID,
			TurnID:    command.TurnID,
			Timestamp: strfmt.DateTime(time.Now()),
		}
		terminal = true
		return
	}

	events <- provider.Done{
		SessionID: command.SessionID,
		TurnID:    command.TurnID,
		Reason:    finishReason,
		Timestamp: strfmt.DateTime(time.Now()),
	}
	terminal = true
}

func (p *Provider) runOnce(ctx context.Context, params openai.ChatCompletionNewParams, command *provider.CompletionParams, events chan<- provider.StreamEvent) {
	chat, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		events <- provider.Error{
			Err:       err,
			SessionID: command.SessionID,
			TurnID:    command.TurnID,
			Timestamp: strfmt.DateTime(time.Now()),
		}
		return
	}

	var finishReason string
	if len(chat.Choices) > 0 {
		choice := chat.Choices[0]
		finishReason = string(choice.FinishReason)
		if choice.Message.Content != "" {
			events <- provider.Chunk{
				SessionID: command.SessionID,
				TurnID:    command.TurnID,
				Text:      choice.Message.Content,
				Timestamp: strfmt.DateTime(time.Now()),
			}
		}
	}
	if chat.Usage.PromptTokens != 0 || chat.Usage.CompletionTokens != 0 {
		events <- provider.Usage{
			SessionID:        command.SessionID,
			TurnID:           command.TurnID,
			PromptTokens:     chat.Usage.PromptTokens,
			CompletionTokens: chat.Usage.CompletionTokens,
			Timestamp:        strfmt.DateTime(time.Now()),
		}
	}
	events <- provider.Done{
		SessionID: command.SessionID,
		TurnID:    command.TurnID,
		Reason:    finishReason,
		Timestamp: strfmt.DateTime(time.Now()),
	}
}

// messagesToOpenAI maps a conversation onto OpenAI's native roles. The
// endpoint keeps a real system slot, so the first instruction rides along
// as a system message instead of being folded into user content. Empty
// messages are dropped and later instructions are ignored, matching the
// shaping the other providers apply.
func messagesToOpenAI(msgs []messages.Message[messages.ModelMessage]) ([]openai.ChatCompletionMessageParamUnion, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	var haveSystem bool

	for msg := range slices.Values(msgs) {
		switch payload := msg.Payload.(type) {
		case messages.InstructionsMessage:
			if payload.Content == "" || haveSystem {
				continue
			}
			haveSystem = true
			result = append(result, openai.SystemMessage(payload.Content))
		case messages.UserMessage:
			if payload.Content == "" {
				continue
			}
			result = append(result, openai.UserMessageParts(openai.TextPart(payload.Content)))
		case messages.AssistantMessage:
			if payload.Content == "" && payload.Refusal == "" {
				continue
			}
			am := openai.ChatCompletionAssistantMessageParam{
				Role: openai.F(openai.ChatCompletionAssistantMessageParamRoleAssistant),
			}
			if payload.Content != "" {
				am.Content.Value = append(am.Content.Value, openai.TextPart(payload.Content))
			}
			if payload.Refusal != "" {
				am.Refusal = openai.String(payload.Refusal)
			}
			result = append(result, am)
		}
	}

	if len(result) == 0 {
		return nil, provider.ErrNoMessages
	}
	return result, nil
}

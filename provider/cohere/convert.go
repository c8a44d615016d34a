package cohere

import (
	"fmt"
	"slices"

	"github.com/casualjim/myna/messages"
	"github.com/casualjim/myna/provider"
)

// chatMessage is one entry of the wire-level message list. Cohere v2 chat
// only knows flat role/content pairs.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// toChatMessages reshapes a conversation into Cohere's message list.
//
// Empty messages are dropped. The first system instruction wins, later ones
// are ignored. Because the endpoint has no system slot, the kept instruction
// is folded into the first user message; when the conversation opens with an
// assistant message, or holds nothing but the instruction, it is promoted to
// a user message of its own. Returns provider.ErrNoMessages when nothing
// sendable remains.
func toChatMessages(msgs []messages.Message[messages.ModelMessage]) ([]chatMessage, error) {
	var system string
	var haveSystem bool

	out := make([]chatMessage, 0, len(msgs))
	for _, m := range msgs {
		switch payload := m.Payload.(type) {
		case messages.InstructionsMessage:
			if payload.Content == "" {
				continue
			}
			if !haveSystem {
				system = payload.Content
				haveSystem = true
			}
		case messages.UserMessage:
			if payload.Content == "" {
				continue
			}
			out = append(out, chatMessage{Role: "user", Content: payload.Content})
		case messages.AssistantMessage:
			// Refusal-only turns have no text to replay.
			if payload.Content == "" {
				continue
			}
			out = append(out, chatMessage{Role: "assistant", Content: payload.Content})
		}
	}

	if haveSystem {
		switch {
		case len(out) == 0:
			out = append(out, chatMessage{Role: "user", Content: system})
		case out[0].Role == "user":
			out[0].Content = fmt.Sprintf("%s\n\nUser: %s", system, out[0].Content)
		default:
			out = slices.Insert(out, 0, chatMessage{Role: "user", Content: system})
		}
	}

	if len(out) == 0 {
		return nil, provider.ErrNoMessages
	}
	return out, nil
}

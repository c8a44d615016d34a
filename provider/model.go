package provider

import (
	"context"
	"errors"

	"github.com/casualjim/myna/generation"
	"github.com/casualjim/myna/messages"
	"github.com/google/uuid"
)

// ErrNoMessages reports that a conversation contains nothing sendable after
// provider-side filtering. Callers treat it as "skip this call": no request
// goes out and no stream is produced.
var ErrNoMessages = errors.New("no messages to send")

// Provider defines the interface for chat completion backends (e.g. OpenAI,
// Cohere). Implementations handle the specifics of their wire protocol while
// keeping a consistent streaming contract for the rest of the application.
//
// The returned channel delivers events in arrival order as the remote
// produces them. It is finite, yields at most one Usage event, ends with
// exactly one terminal event (Done or Error), and is closed afterwards. A
// stream is never restarted; recovery means a fresh call.
type Provider interface {
	ChatCompletion(context.Context, CompletionParams) (<-chan StreamEvent, error)
}

// Model identifies a concrete model together with the provider that serves
// it. Implementations are registered by the provider subpackages.
type Model interface {
	// Name returns the wire name of the model, e.g. "command-r-plus-08-2024"
	Name() string

	// Provider returns the backend that serves this model
	Provider() Provider
}

// CompletionParams encapsulates all inputs of a single chat completion call.
// Everything in here is frozen when the call starts: settings updates that
// arrive while the stream is in flight do not affect it.
type CompletionParams struct {
	// SessionID identifies the conversation this completion belongs to
	SessionID uuid.UUID

	// TurnID identifies the conversational turn being answered
	TurnID uuid.UUID

	// Messages is the conversation snapshot to send, oldest first
	Messages []messages.Message[messages.ModelMessage]

	// Params is the generation settings snapshot taken when the turn started
	Params generation.Params

	// Model specifies which model serves this completion
	Model Model

	// Stream indicates whether to receive the response as incremental chunks.
	// When false the full response arrives as a single Chunk before Done.
	Stream bool

	// Prevents unkeyed literals
	_ struct{}
}

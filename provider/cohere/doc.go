/*
Package cohere implements the provider.Provider interface for Cohere's chat
models over the v2 REST API. It speaks the wire protocol directly: requests go
to POST /v2/chat and streaming responses are parsed from the server-sent event
stream, without an SDK in between.

# Design Decisions

  - Streaming First: built around incremental delivery of content-delta events
  - Direct Wire Access: hand-parsed SSE keeps the dependency surface small
  - Tolerant Reader: malformed stream events are logged and skipped, never fatal
  - Thread Safe: a Provider can be shared across goroutines
  - Lazy Initialization: models initialize their provider on first use

# Available Models

The package provides pre-configured models:

  - CommandRPlus(): command-r-plus-08-2024, the default conversational model
  - CommandR(): command-r-08-2024, smaller and faster
  - CommandR7B(): command-r7b-12-2024, the lightweight option

Custom models can be created using the Model() function:

	model := cohere.Model("command-nightly", cohere.APIKey("your-key"))

# Conversation Shaping

Cohere's chat endpoint takes a flat role/content message list and no separate
system slot, so the converter reshapes the conversation before sending:

 1. Messages with empty content are dropped.
 2. The first system instruction is kept, any later ones are ignored.
 3. The kept instruction is folded into the first user message as
    "<instructions>\n\nUser: <first user content>". When the conversation has
    no leading user message the instruction becomes one.
 4. A conversation with nothing sendable yields provider.ErrNoMessages and no
    request is made.

# Streaming Implementation

The event stream is consumed line by line. Lines carrying "data: " hold one
JSON event each; the interesting types are:

  - content-delta: an incremental text fragment at delta.message.content.text
  - message-end: the terminal event, carrying the finish reason and, when the
    API reports it, token usage at delta.usage.tokens

Everything else (message-start, content-start, content-end) is structural and
skipped. The resulting provider.StreamEvent sequence ends with exactly one
Done or Error.

# Generation Settings

The settings snapshot maps onto the wire as temperature, max_tokens, k, p,
frequency_penalty, presence_penalty and stop_sequences. Unset knobs are
omitted from the request so the API's own defaults apply.
*/
package cohere

/*
Package myna turns a frame-based conversation pipeline into streamed model
responses. It sits between an upstream aggregator that produces context
frames and downstream consumers that render or speak the reply.

The package is built around a small set of abstractions:

  - Frames: the closed vocabulary that travels through the pipeline
    (Context, Settings, Start, Delta, End, Usage, Error)
  - Sessions: one per conversation, turning each context frame into a
    Start/Delta/End response sequence
  - Providers: streaming chat-completion backends (Cohere, OpenAI)
  - Generation settings: hot-patchable sampling knobs with atomic snapshots
  - Metrics: per-call usage windows collected into a ledger

# Basic Usage

A typical setup builds a session around a model and lets frames drive it:

	session := myna.New(
		myna.Model(openai.GPT4oMini()),
		myna.Name("Robin"),
		myna.Instructions("You are a terse, helpful assistant."),
		myna.PublishTo(topic),
	)

	// Attach the session to a topic so context and settings frames
	// arrive over the broker.
	sub, err := topic.Subscribe(ctx, session)
	if err != nil {
		// Handle error
	}
	defer sub.Unsubscribe()

	// Or drive it directly.
	session.Prompt(ctx, "What bird repeats everything it hears?")

Every turn is emitted as one Start frame, zero or more Delta frames carrying
the verbatim text fragments, and exactly one End frame. That End frame is
published on every exit path: normal completion, provider failure, and
cancellation. Provider failures additionally speak one in-band delta prefixed
with "Error: " so the conversation surface stays coherent.

# Settings

Generation settings arrive as partial JSON patches on Settings frames. Only
the keys present are applied, unknown keys are logged and ignored, and an
in-flight call keeps the snapshot it started with. The JSON schema of the
settings object is available from generation.Schema for discovery endpoints.

# Usage accounting

Each inference call opens a metrics window before its first delta and closes
it exactly once on the way out. The resulting records accumulate in the
session's ledger and are also published as Usage frames after the End frame
of a completed turn.

# Integration

Myna integrates with several backend systems:

  - NATS for frame distribution across processes
  - Cohere and OpenAI as inference providers

The examples directory contains a console chat client built on these pieces.

# Thread Safety

Sessions serialize their turns with a run mutex: a new context frame is not
answered until the previous turn's End frame has been published. Settings
updates apply concurrently and take effect on the next call.
*/
package myna

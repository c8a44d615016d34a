// Package messages defines the conversation messages that flow between the
// voice pipeline and the model providers. A message is a generic envelope
// around one of a closed set of payloads: instructions for the model, a user
// turn, or an assistant turn.
//
// Design decisions:
//   - Type safety: the envelope is generic over its payload so call sites
//     state exactly which kind of message they accept or produce
//   - Closed set: payloads carry an unexported marker method; new kinds of
//     message cannot appear without touching this package
//   - Text only: this pipeline speaks text in and text out, so payload content
//     is a plain string rather than a multi-part structure
//   - JSON interop: the wire format is flat and type-tagged so frames can
//     embed messages without nesting envelopes
//
// Messages are normally constructed through the builder:
//
//	msg := messages.New().
//	    WithSender("user").
//	    UserPrompt("turn the lights off")
//
// The envelope carries the session and turn identifiers plus sender, timestamp
// and free-form metadata. Those identifiers are stamped by the transcript that
// owns the conversation, not by the builder.
package messages

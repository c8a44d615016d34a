// Package provider implements an abstraction layer for talking to model
// inference services (OpenAI, Cohere) in a consistent way. It defines the
// interfaces and event types for streaming chat completions while the
// subpackages handle the wire details of each service.
//
// Design decisions:
//   - Provider abstraction: a single interface that each inference service implements
//   - Streaming first: built around incremental delivery for low time-to-first-token
//   - Closed event set: every event carries session/turn identity and a type tag
//   - Single use: a completion stream delivers events in arrival order, is
//     consumed once, and is never restarted
//   - Error handling: a dedicated terminal event that preserves context
//
// Key concepts:
//   - Provider: the contract for chat completion backends
//   - Model: a named model bound to the provider that serves it
//   - CompletionParams: the frozen inputs of one completion call
//   - StreamEvent: the base interface for everything a stream can yield
//
// A stream carries data events and always ends with exactly one terminal
// event:
//  1. Chunk: an incremental text fragment, never empty
//  2. Usage: the token accounting sample, at most one per stream
//  3. Done: terminal success with the finish reason
//  4. Error: terminal failure with the preserved cause
//
// Example usage:
//
//	events, err := prov.ChatCompletion(ctx, provider.CompletionParams{
//	    SessionID: sessionID,
//	    TurnID:    turnID,
//	    Messages:  log.Messages(),
//	    Params:    settings.Snapshot(),
//	    Model:     cohere.CommandRPlus(),
//	    Stream:    true,
//	})
//	if err != nil {
//	    return err
//	}
//
//	for event := range events {
//	    switch e := event.(type) {
//	    case provider.Chunk:
//	        // speak the fragment
//	    case provider.Usage:
//	        // record token counts
//	    case provider.Done:
//	        // turn finished cleanly
//	    case provider.Error:
//	        // turn failed, e.Err has the cause
//	    }
//	}
//
// The channel is closed after the terminal event; ranging over it terminates
// without further bookkeeping. New providers plug in by implementing the
// Provider interface and registering their models.
package provider

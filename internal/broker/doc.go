// Package broker implements the pub/sub transport that carries frames between
// a session and its attached surfaces. It provides a minimal interface for
// topic-based frame distribution with context awareness.
//
// Design decisions:
//   - Context-first: all operations accept context.Context for cancellation
//   - Topic-based: frames are distributed through named topics, one per session
//   - Hook integration: subscribers receive frames through frames.Hook
//   - Subscription management: explicit subscription lifecycle with cleanup
//   - Thread safety: safe for concurrent publishing and subscribing
//
// Two implementations exist. Local delivers frames in-process through buffered
// channels and drops subscribers that stay full past a grace period. NATS
// serializes frames to their JSON envelopes and delivers them over a NATS
// connection, so observers can live in other processes.
//
// Example usage:
//
//	broker := Local()
//	topic := broker.Topic(ctx, sessionID.String())
//
//	sub, err := topic.Subscribe(ctx, frames.LoggingHook())
//	if err != nil {
//	    return err
//	}
//	defer sub.Unsubscribe()
//
//	if err := topic.Publish(ctx, frames.Delta{
//	    SessionID: sessionID,
//	    TurnID:    turnID,
//	    Text:      "hello",
//	}); err != nil {
//	    return err
//	}
//
// The package is internal so the session API stays the only public surface;
// callers attach hooks through the root package.
package broker

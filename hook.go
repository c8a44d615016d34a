package myna

import (
	"context"

	"github.com/casualjim/myna/frames"
)

// A Session can sit directly on a broker topic: subscribing it makes Context
// and Settings frames drive the conversation, while its own response frames
// echo back off the topic and are ignored. The topic's single pump goroutine
// together with the run mutex keeps turns strictly serialized.
var _ frames.Hook = (*Session)(nil)

func (s *Session) OnContext(ctx context.Context, frame frames.Context) {
	s.respond(ctx, frame)
}

func (s *Session) OnSettings(ctx context.Context, frame frames.Settings) {
	s.applySettings(ctx, frame)
}

func (s *Session) OnStart(context.Context, frames.Start) {}

func (s *Session) OnDelta(context.Context, frames.Delta) {}

func (s *Session) OnEnd(context.Context, frames.End) {}

func (s *Session) OnUsage(context.Context, frames.Usage) {}

func (s *Session) OnError(context.Context, frames.Error) {}

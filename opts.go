package myna

import (
	"github.com/casualjim/myna/generation"
	"github.com/casualjim/myna/metrics"
	"github.com/casualjim/myna/provider"
	"github.com/fogfish/opts"
	"github.com/google/uuid"
)

var (
	// ID pins the session identifier. By default a fresh one is generated.
	ID = opts.ForName[Session, uuid.UUID]("id")

	// Name sets the sender name stamped on every frame the session
	// publishes. Defaults to "myna".
	Name = opts.ForName[Session, string]("name")

	// Model selects the provider-backed model the session answers with.
	// Required.
	Model = opts.ForName[Session, provider.Model]("model")

	// Instructions seeds the transcript with a system prompt.
	Instructions = opts.ForName[Session, string]("instructions")

	// PublishTo sets the publisher that receives the session's frames.
	// Without one the frames are dropped.
	PublishTo = opts.ForName[Session, Publisher]("publisher")

	// WithParams sets the initial generation settings. They are validated
	// when the session is built.
	WithParams = opts.ForName[Session, generation.Params]("params")
)

// WithCollector registers extra metrics collectors next to the session's
// built-in ledger and log collector.
func WithCollector(collectors ...metrics.Collector) opts.Option[Session] {
	return opts.Type[Session](func(s *Session) error {
		s.collectors = append(s.collectors, collectors...)
		return nil
	})
}

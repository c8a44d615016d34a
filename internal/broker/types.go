package broker

import (
	"context"

	"github.com/casualjim/myna/frames"
)

type Broker interface {
	Topic(context.Context, string) Topic
}

type Topic interface {
	Publish(context.Context, frames.Frame) error
	Subscribe(context.Context, frames.Hook) (Subscription, error)
}

type Subscription interface {
	ID() string
	Unsubscribe()
}

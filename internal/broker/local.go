package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/casualjim/myna/frames"
	"github.com/casualjim/myna/pkg/uuidx"
)

const defaultSlowSubscriberTimeout = 100 * time.Millisecond

type localBroker struct {
	topics                *haxmap.Map[string, *topic]
	slowSubscriberTimeout time.Duration
}

func Local() Broker {
	return &localBroker{
		topics:                haxmap.New[string, *topic](),
		slowSubscriberTimeout: defaultSlowSubscriberTimeout,
	}
}

// WithSlowSubscriberTimeout configures how long Publish waits on a full
// subscriber channel before dropping the subscriber.
func (b *localBroker) WithSlowSubscriberTimeout(timeout time.Duration) *localBroker {
	b.slowSubscriberTimeout = timeout
	return b
}

func (b *localBroker) Topic(ctx context.Context, id string) Topic {
	topic, _ := b.topics.GetOrCompute(id, func() *topic {
		return &topic{
			ID:                    id,
			subscriptions:         haxmap.New[string, *subscription](),
			slowSubscriberTimeout: b.slowSubscriberTimeout,
		}
	})
	return topic
}

type topic struct {
	ID                    string
	subscriptions         *haxmap.Map[string, *subscription]
	slowSubscriberTimeout time.Duration
}

func (t *topic) Publish(ctx context.Context, frame frames.Frame) error {
	t.subscriptions.ForEach(func(id string, sub *subscription) bool {
		if sub == nil {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-sub.ctx.Done():
			sub.Unsubscribe()
			return true
		default:
		}

		select {
		case <-ctx.Done():
			return false
		case <-sub.ctx.Done():
			sub.Unsubscribe()
		case sub.channel <- frame:
		case <-time.After(t.slowSubscriberTimeout):
			// Channel stayed full past the grace period, drop the subscriber.
			sub.Unsubscribe()
		}
		return true
	})
	return nil
}

func (t *topic) Subscribe(ctx context.Context, hook frames.Hook) (Subscription, error) {
	if hook == nil {
		return nil, fmt.Errorf("hook is required")
	}
	return t.newSubscription(ctx, hook), nil
}

func (t *topic) newSubscription(ctx context.Context, hook frames.Hook) *subscription {
	id := uuidx.NewString()
	sub := &subscription{
		id:      id,
		ctx:     ctx,
		channel: make(chan frames.Frame, 50),
		onClose: func() { t.subscriptions.Del(id) },
	}
	t.subscriptions.Set(id, sub)
	go forwardToHook(ctx, sub.channel, hook)
	return sub
}

type subscription struct {
	id        string
	ctx       context.Context
	channel   chan frames.Frame
	closeOnce sync.Once
	onClose   func()
}

func (s *subscription) ID() string {
	return s.id
}

func (s *subscription) Unsubscribe() {
	s.closeOnce.Do(func() {
		if s.onClose != nil {
			s.onClose()
		}
		close(s.channel)
	})
}

// forwardToHook drains a subscriber channel and dispatches each frame to the
// matching hook method. Both broker implementations share it.
func forwardToHook(ctx context.Context, ch <-chan frames.Frame, hook frames.Hook) {
	for {
		select {
		case frame, ok := <-ch:
			if !ok {
				return
			}
			switch frame := frame.(type) {
			case frames.Context:
				hook.OnContext(ctx, frame)
			case frames.Settings:
				hook.OnSettings(ctx, frame)
			case frames.Start:
				hook.OnStart(ctx, frame)
			case frames.Delta:
				hook.OnDelta(ctx, frame)
			case frames.End:
				hook.OnEnd(ctx, frame)
			case frames.Usage:
				hook.OnUsage(ctx, frame)
			case frames.Error:
				hook.OnError(ctx, frame)
			default:
				panic(fmt.Sprintf("unknown frame type: %T", frame))
			}
		case <-ctx.Done():
			return
		}
	}
}

package broker

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupNATS(t *testing.T) *nats.Conn {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		t.Skip("NATS_URL not set")
	}
	nc, err := nats.Connect(natsURL)
	require.NoError(t, err)
	t.Cleanup(func() {
		nc.Close()
	})
	return nc
}

func TestNATSBroker(t *testing.T) {
	t.Run("creates broker instance", func(t *testing.T) {
		nc := setupNATS(t)
		broker := NATS(nc)
		require.NotNil(t, broker)
	})

	t.Run("drops invalid payloads", func(t *testing.T) {
		nc := setupNATS(t)
		broker := NATS(nc)
		topic := broker.Topic(context.Background(), "test")

		ctx := context.Background()
		recorder := newRecordingHook()
		sub, err := topic.Subscribe(ctx, recorder)
		require.NoError(t, err)
		defer sub.Unsubscribe()

		// Publish garbage directly through the connection; the subscriber
		// must log and skip it rather than crash.
		require.NoError(t, nc.Publish("test", []byte("invalid json")))

		time.Sleep(100 * time.Millisecond)
		recorder.mu.Lock()
		assert.Empty(t, recorder.deltas)
		assert.Empty(t, recorder.usages)
		assert.Empty(t, recorder.errors)
		recorder.mu.Unlock()
	})
}

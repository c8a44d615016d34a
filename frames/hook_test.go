package frames

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type mockHook struct {
	contextCalled  bool
	settingsCalled bool
	startCalled    bool
	deltaCalled    bool
	endCalled      bool
	usageCalled    bool
	errorCalled    bool
	lastContext    Context
	lastSettings   Settings
	lastStart      Start
	lastDelta      Delta
	lastEnd        End
	lastUsage      Usage
	lastError      Error
}

func (m *mockHook) OnContext(ctx context.Context, frame Context) {
	m.contextCalled = true
	m.lastContext = frame
}

func (m *mockHook) OnSettings(ctx context.Context, frame Settings) {
	m.settingsCalled = true
	m.lastSettings = frame
}

func (m *mockHook) OnStart(ctx context.Context, frame Start) {
	m.startCalled = true
	m.lastStart = frame
}

func (m *mockHook) OnDelta(ctx context.Context, frame Delta) {
	m.deltaCalled = true
	m.lastDelta = frame
}

func (m *mockHook) OnEnd(ctx context.Context, frame End) {
	m.endCalled = true
	m.lastEnd = frame
}

func (m *mockHook) OnUsage(ctx context.Context, frame Usage) {
	m.usageCalled = true
	m.lastUsage = frame
}

func (m *mockHook) OnError(ctx context.Context, frame Error) {
	m.errorCalled = true
	m.lastError = frame
}

func TestCompositeHook(t *testing.T) {
	ctx := context.Background()
	sessionID := uuid.New()
	turnID := uuid.New()

	first := &mockHook{}
	second := &mockHook{}
	composite := NewCompositeHook(first, second)

	composite.OnContext(ctx, Context{SessionID: sessionID, TurnID: turnID})
	composite.OnSettings(ctx, Settings{SessionID: sessionID, Patch: gjson.Parse(`{"top_k":3}`)})
	composite.OnStart(ctx, Start{SessionID: sessionID, TurnID: turnID})
	composite.OnDelta(ctx, Delta{SessionID: sessionID, TurnID: turnID, Text: "hi"})
	composite.OnEnd(ctx, End{SessionID: sessionID, TurnID: turnID})
	composite.OnUsage(ctx, Usage{SessionID: sessionID, TurnID: turnID, Model: "m"})
	composite.OnError(ctx, Error{SessionID: sessionID, TurnID: turnID, Err: errors.New("boom")})

	for _, hook := range []*mockHook{first, second} {
		assert.True(t, hook.contextCalled)
		assert.True(t, hook.settingsCalled)
		assert.True(t, hook.startCalled)
		assert.True(t, hook.deltaCalled)
		assert.True(t, hook.endCalled)
		assert.True(t, hook.usageCalled)
		assert.True(t, hook.errorCalled)
		assert.Equal(t, "hi", hook.lastDelta.Text)
		assert.Equal(t, sessionID, hook.lastStart.SessionID)
		assert.EqualError(t, hook.lastError.Err, "boom")
	}
}

func TestLoggingHook(t *testing.T) {
	ctx := context.Background()
	hook := LoggingHook()
	sessionID := uuid.New()
	turnID := uuid.New()

	require.NotPanics(t, func() {
		hook.OnContext(ctx, Context{SessionID: sessionID, TurnID: turnID})
		hook.OnSettings(ctx, Settings{SessionID: sessionID, Patch: gjson.Parse(`{}`)})
		hook.OnStart(ctx, Start{SessionID: sessionID, TurnID: turnID})
		hook.OnDelta(ctx, Delta{SessionID: sessionID, TurnID: turnID, Text: "chunk"})
		hook.OnEnd(ctx, End{SessionID: sessionID, TurnID: turnID})
		hook.OnUsage(ctx, Usage{SessionID: sessionID, TurnID: turnID, Model: "m"})
		hook.OnError(ctx, Error{SessionID: sessionID, TurnID: turnID, Err: errors.New("boom")})
	})
}

package main

import (
	"context"
	"testing"

	"github.com/casualjim/myna/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	events []provider.StreamEvent
	err    error
}

func (s scriptedProvider) ChatCompletion(context.Context, provider.CompletionParams) (<-chan provider.StreamEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan provider.StreamEvent, len(s.events))
	for _, event := range s.events {
		ch <- event
	}
	close(ch)
	return ch, nil
}

type scriptedModel struct {
	prov provider.Provider
}

func (scriptedModel) Name() string                  { return "scripted" }
func (m scriptedModel) Provider() provider.Provider { return m.prov }

func TestRunCheck(t *testing.T) {
	t.Run("successful call", func(t *testing.T) {
		model := scriptedModel{prov: scriptedProvider{events: []provider.StreamEvent{
			provider.Chunk{Text: "API test successful"},
			provider.Usage{PromptTokens: 9, CompletionTokens: 3},
			provider.Done{Reason: "stop"},
		}}}

		rep := runCheck(context.Background(), model)
		require.NoError(t, rep.err)
		assert.Equal(t, "API test successful", rep.reply)
		require.NotNil(t, rep.usage)
		assert.EqualValues(t, 9, rep.usage.PromptTokens)
		assert.Len(t, rep.events, 3)
	})

	t.Run("error event fails the check", func(t *testing.T) {
		model := scriptedModel{prov: scriptedProvider{events: []provider.StreamEvent{
			provider.Error{Err: assert.AnError},
		}}}

		rep := runCheck(context.Background(), model)
		require.Error(t, rep.err)
		assert.ErrorIs(t, rep.err, assert.AnError)
	})

	t.Run("request failure fails the check", func(t *testing.T) {
		model := scriptedModel{prov: scriptedProvider{err: assert.AnError}}

		rep := runCheck(context.Background(), model)
		assert.ErrorIs(t, rep.err, assert.AnError)
	})
}

func TestConfiguredKey(t *testing.T) {
	t.Run("real key passes through", func(t *testing.T) {
		t.Setenv("KEYCHECK_TEST_KEY", "sk-real")
		assert.Equal(t, "sk-real", configuredKey("KEYCHECK_TEST_KEY", "your_test_api_key"))
	})

	t.Run("placeholder counts as unset", func(t *testing.T) {
		t.Setenv("KEYCHECK_TEST_KEY", "your_test_api_key")
		assert.Empty(t, configuredKey("KEYCHECK_TEST_KEY", "your_test_api_key"))
	})

	t.Run("missing counts as unset", func(t *testing.T) {
		t.Setenv("KEYCHECK_TEST_KEY", "")
		assert.Empty(t, configuredKey("KEYCHECK_TEST_KEY", "your_test_api_key"))
	})
}

func TestMasked(t *testing.T) {
	assert.Equal(t, "sk-proj-1234...", masked("sk-proj-1234567890abcdef"))
	assert.Equal(t, "********", masked("short-ky"))
}

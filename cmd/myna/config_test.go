package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("MYNA_BOT_NAME", "")
		t.Setenv("HOST", "")
		t.Setenv("PORT", "")

		cfg := loadConfig()
		assert.Equal(t, "myna", cfg.BotName)
		assert.Equal(t, "0.0.0.0", cfg.Host)
		assert.Equal(t, "8080", cfg.Port)
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("MYNA_BOT_NAME", "Robin")
		t.Setenv("HOST", "127.0.0.1")
		t.Setenv("PORT", "9090")

		cfg := loadConfig()
		assert.Equal(t, "Robin", cfg.BotName)
		assert.Equal(t, "127.0.0.1", cfg.Host)
		assert.Equal(t, "9090", cfg.Port)
	})
}

func TestSelectModel(t *testing.T) {
	t.Run("prefers OpenAI when its key is set", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("COHERE_API_KEY", "co-test")
		t.Setenv("MYNA_MODEL", "")

		name, model, err := selectModel()
		require.NoError(t, err)
		assert.Equal(t, "OpenAI", name)
		assert.Equal(t, "gpt-4o-mini", model.Name())
	})

	t.Run("placeholder OpenAI key falls through to Cohere", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "your_openai_api_key")
		t.Setenv("COHERE_API_KEY", "co-test")
		t.Setenv("MYNA_MODEL", "")

		name, model, err := selectModel()
		require.NoError(t, err)
		assert.Equal(t, "Cohere", name)
		assert.Equal(t, "command-r-plus-08-2024", model.Name())
	})

	t.Run("no usable key is an error", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		t.Setenv("COHERE_API_KEY", "your_cohere_api_key")
		t.Setenv("MYNA_MODEL", "")

		_, _, err := selectModel()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no usable LLM API key")
	})

	t.Run("MYNA_MODEL overrides the wire name", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("COHERE_API_KEY", "")
		t.Setenv("MYNA_MODEL", "gpt-4o")

		name, model, err := selectModel()
		require.NoError(t, err)
		assert.Equal(t, "OpenAI", name)
		assert.Equal(t, "gpt-4o", model.Name())
	})
}

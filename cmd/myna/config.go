package main

import (
	"errors"
	"os"

	"github.com/casualjim/myna/provider"
	"github.com/casualjim/myna/provider/cohere"
	"github.com/casualjim/myna/provider/models"
	"github.com/casualjim/myna/provider/openai"
)

type config struct {
	BotName string
	Host    string
	Port    string
}

func loadConfig() config {
	return config{
		BotName: envDefault("MYNA_BOT_NAME", "myna"),
		Host:    envDefault("HOST", "0.0.0.0"),
		Port:    envDefault("PORT", "8080"),
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// configuredKey returns the key only when it is genuinely set. Checked-in env
// templates ship placeholder values, those count as unset.
func configuredKey(envVar, placeholder string) string {
	key := os.Getenv(envVar)
	if key == placeholder {
		return ""
	}
	return key
}

// selectModel picks the best available model from the configured API keys.
// OpenAI wins when both are present. MYNA_MODEL overrides the wire name
// within the selected provider. The winner lands in the global model
// registry so anything holding just the wire name can resolve it.
func selectModel() (string, provider.Model, error) {
	override := os.Getenv("MYNA_MODEL")

	if configuredKey("OPENAI_API_KEY", "your_openai_api_key") != "" {
		model := openai.GPT4oMini()
		if override != "" {
			model = openai.Model(override)
		}
		models.Add(model)
		return "OpenAI", model, nil
	}

	if configuredKey("COHERE_API_KEY", "your_cohere_api_key") != "" {
		model := cohere.CommandRPlus()
		if override != "" {
			model = cohere.Model(override)
		}
		models.Add(model)
		return "Cohere", model, nil
	}

	return "", nil, errors.New("no usable LLM API key, set OPENAI_API_KEY or COHERE_API_KEY")
}

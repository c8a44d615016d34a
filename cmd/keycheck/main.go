// Command keycheck verifies the configured provider API keys with one
// minimal live call each, so broken credentials surface before the bot runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	// Ensure API keys are loaded
	_ "github.com/joho/godotenv/autoload"

	"github.com/casualjim/myna/generation"
	"github.com/casualjim/myna/internal/transcript"
	"github.com/casualjim/myna/messages"
	"github.com/casualjim/myna/provider"
	"github.com/casualjim/myna/provider/cohere"
	"github.com/casualjim/myna/provider/openai"
	"github.com/fatih/color"
	"github.com/go-openapi/swag"
	"github.com/google/uuid"
	"github.com/k0kubun/pp/v3"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log = zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slog.LevelWarn}),
	))
}

const testPrompt = "Hello, just testing the API. Please respond with 'API test successful'."

const callTimeout = 30 * time.Second

func main() {
	verbose := flag.Bool("verbose", false, "dump the decoded provider events")
	flag.Parse()

	checks := []struct {
		name        string
		envVar      string
		placeholder string
		model       func() provider.Model
	}{
		{"OpenAI", "OPENAI_API_KEY", "your_openai_api_key", func() provider.Model { return openai.GPT4oMini() }},
		{"Cohere", "COHERE_API_KEY", "your_cohere_api_key", func() provider.Model { return cohere.CommandRPlus() }},
	}

	fmt.Println("Testing API keys...")

	ctx := context.Background()
	var ran, failed int
	for _, check := range checks {
		key := configuredKey(check.envVar, check.placeholder)
		if key == "" {
			fmt.Printf("%s %s: %s not configured, skipping\n", color.YellowString("-"), check.name, check.envVar)
			continue
		}
		ran++

		fmt.Printf("Testing %s key %s\n", check.name, masked(key))
		rep := runCheck(ctx, check.model())
		if *verbose {
			pp.Println(rep.events)
		}
		if rep.err != nil {
			failed++
			fmt.Printf("%s %s key test failed: %v\n", color.RedString("✗"), check.name, rep.err)
			troubleshoot(check.name)
			continue
		}

		fmt.Printf("%s %s key is working\n", color.GreenString("✓"), check.name)
		fmt.Printf("   response: %s\n", strings.TrimSpace(rep.reply))
		if rep.usage != nil {
			fmt.Printf("   usage: %d prompt + %d completion tokens\n", rep.usage.PromptTokens, rep.usage.CompletionTokens)
		}
	}

	switch {
	case ran == 0:
		fmt.Println("No API keys configured. Set OPENAI_API_KEY or COHERE_API_KEY and retry.")
		os.Exit(1)
	case failed > 0:
		fmt.Println("Some API keys have issues. Fix them before starting the bot.")
		os.Exit(1)
	default:
		fmt.Println("All configured keys are working.")
	}
}

type report struct {
	reply  string
	usage  *provider.Usage
	events []provider.StreamEvent
	err    error
}

// runCheck sends one tiny non-streaming completion and drains the events.
func runCheck(ctx context.Context, model provider.Model) report {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	conversation := transcript.New(uuid.Nil)
	conversation.AddUserPrompt(messages.New().WithSender("keycheck").UserPrompt(testPrompt))

	events, err := model.Provider().ChatCompletion(ctx, provider.CompletionParams{
		SessionID: conversation.SessionID(),
		TurnID:    conversation.TurnID(),
		Messages:  conversation.Messages(),
		Params:    generation.Params{MaxTokens: swag.Int64(50)},
		Model:     model,
	})
	if err != nil {
		return report{err: err}
	}

	var rep report
	var reply strings.Builder
	for event := range events {
		rep.events = append(rep.events, event)
		switch event := event.(type) {
		case provider.Chunk:
			reply.WriteString(event.Text)
		case provider.Usage:
			sample := event
			rep.usage = &sample
		case provider.Done:
		case provider.Error:
			rep.err = event.Err
		default:
			panic(fmt.Sprintf("unknown stream event type %T", event))
		}
	}
	rep.reply = reply.String()
	return rep
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

// masked shows enough of a key to recognize it without leaking it.
func masked(key string) string {
	if len(key) <= 12 {
		return strings.Repeat("*", len(key))
	}
	return key[:12] + "..."
}

func troubleshoot(name string) {
	fmt.Println("   troubleshooting:")
	switch name {
	case "OpenAI":
		fmt.Println("   1. Check your API key at https://platform.openai.com/api-keys")
		fmt.Println("   2. Make sure your account has credits")
	case "Cohere":
		fmt.Println("   1. Check your API key at https://dashboard.cohere.com/api-keys")
		fmt.Println("   2. Make sure your account is active and has credits")
	}
	fmt.Println("   3. Verify the key is copied correctly (no extra spaces)")
}

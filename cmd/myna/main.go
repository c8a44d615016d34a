// Command myna runs a production conversation session: provider selection by
// available API keys, an operational HTTP surface, and a console chat loop
// standing in for the audio transport.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Ensure API keys are loaded
	_ "github.com/joho/godotenv/autoload"

	"github.com/casualjim/myna"
	"github.com/casualjim/myna/internal/broker"
	"github.com/casualjim/myna/internal/transcript"
	"github.com/casualjim/myna/messages"
	"github.com/casualjim/myna/pkg/jsonx"
	"github.com/casualjim/myna/pkg/natsx"
	"github.com/casualjim/myna/pkg/slogx"
	"github.com/casualjim/myna/pkg/stdx"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log = zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: logLevel()}),
	))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()

	providerName, model, err := selectModel()
	if err != nil {
		slog.Error("no usable model", slogx.Error(err))
		os.Exit(1)
	}
	slog.Info("model selected", "provider", providerName, "model", model.Name())

	bk, closeBroker, err := selectBroker()
	if err != nil {
		slog.Error("broker unavailable", slogx.Error(err))
		os.Exit(1)
	}
	defer closeBroker()

	// The session listens on one topic and speaks on another, mirroring the
	// input and output ends of an audio transport.
	output := bk.Topic(ctx, fmt.Sprintf("myna.%s.frames", cfg.BotName))
	input := bk.Topic(ctx, fmt.Sprintf("myna.%s.context", cfg.BotName))

	sess := myna.New(
		myna.Model(model),
		myna.Name(cfg.BotName),
		myna.Instructions(persona),
		myna.PublishTo(output),
	)

	sessSub, err := input.Subscribe(ctx, sess)
	if err != nil {
		slog.Error("failed to attach session", slogx.Error(err))
		os.Exit(1)
	}
	defer sessSub.Unsubscribe()

	hook := newConsoleHook(os.Stdout, cfg.BotName)
	outSub, err := output.Subscribe(ctx, hook)
	if err != nil {
		slog.Error("failed to attach console", slogx.Error(err))
		os.Exit(1)
	}
	defer outSub.Unsubscribe()

	slog.Info("generation settings", "settings", stdx.Must1(jsonx.ToDynamicJSON(sess.Params())))
	slog.Info("session ready", slogx.Stringer("session", sess.ID()), "bot", cfg.BotName)

	ops := newOpsServer(cfg.BotName, sess)
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	go func() {
		if err := ops.Start(ctx, addr); err != nil {
			slog.Error("ops server failed", slogx.Error(err))
		}
	}()
	slog.Info("ops server listening", "addr", addr)

	console := newConsole(cfg.BotName, providerName, os.Stdin, os.Stdout, input, hook)
	consoleDone := make(chan error, 1)
	go func() {
		consoleDone <- console.Run(ctx, transcript.New(sess.ID()))
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-consoleDone:
		if err != nil {
			slog.Error("console loop failed", slogx.Error(err))
		}
	}

	slog.Info("session closed", "usage", sess.Ledger().Summary())
}

// persona is the standing system prompt. Replies may end up spoken by a
// downstream synthesizer, so it asks for conversational phrasing.
const persona = `You are a professional AI assistant deployed in production.
You speak clearly and concisely, providing helpful and accurate information.
Your replies may be spoken aloud, so keep responses natural and conversational.
Be professional but friendly in your interactions.`

func selectBroker() (broker.Broker, func(), error) {
	if os.Getenv("NATS_URL") == "" {
		slog.Info("using in-process broker")
		return broker.Local(), func() {}, nil
	}
	nc, err := natsx.NewClient()
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}
	slog.Info("using NATS broker", "url", os.Getenv("NATS_URL"))
	return broker.NATS(nc), nc.Close, nil
}

func logLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("MYNA_LOG_LEVEL"))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// greeting is what the bot says when the conversation opens.
func greeting(botName, providerName string) string {
	return fmt.Sprintf("Hello! I'm %s, powered by %s. How can I help you today?", botName, providerName)
}

// bootMessages seeds a fresh conversation: the persona plus a directive to
// speak the greeting.
func bootMessages(log *transcript.Log, botName, providerName string) {
	log.AddInstructions(messages.New().WithSender(botName).Instructions(persona))
	log.AddUserPrompt(messages.New().WithSender("system").UserPrompt(
		fmt.Sprintf("Say: %q", greeting(botName, providerName)),
	))
}

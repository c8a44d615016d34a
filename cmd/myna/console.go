package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/casualjim/myna/frames"
	"github.com/casualjim/myna/generation"
	"github.com/casualjim/myna/internal/broker"
	"github.com/casualjim/myna/internal/transcript"
	"github.com/casualjim/myna/messages"
	"github.com/casualjim/myna/pkg/slogx"
	"github.com/fatih/color"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// consoleHook renders response frames to the terminal as they stream in and
// hands the completed reply text to the chat loop after each turn.
type consoleHook struct {
	out     io.Writer
	botName string
	turns   chan string

	// Owned by the subscription pump, callbacks are sequential.
	buf   strings.Builder
	spoke bool
}

var _ frames.Hook = (*consoleHook)(nil)

func newConsoleHook(out io.Writer, botName string) *consoleHook {
	return &consoleHook{
		out:     out,
		botName: botName,
		turns:   make(chan string, 4),
	}
}

func (c *consoleHook) OnContext(context.Context, frames.Context)   {}
func (c *consoleHook) OnSettings(context.Context, frames.Settings) {}

func (c *consoleHook) OnStart(context.Context, frames.Start) {
	c.buf.Reset()
	c.spoke = false
}

func (c *consoleHook) OnDelta(_ context.Context, frame frames.Delta) {
	if !c.spoke {
		sender := frame.Sender
		if sender == "" {
			sender = c.botName
		}
		fmt.Fprintf(c.out, "\n%s: ", color.MagentaString(sender))
		c.spoke = true
	}
	fmt.Fprint(c.out, frame.Text)
	c.buf.WriteString(frame.Text)
}

func (c *consoleHook) OnEnd(context.Context, frames.End) {
	fmt.Fprintln(c.out)
	c.turns <- c.buf.String()
}

func (c *consoleHook) OnUsage(ctx context.Context, frame frames.Usage) {
	if frame.Unavailable {
		return
	}
	slog.DebugContext(ctx, "turn usage",
		"prompt_tokens", frame.PromptTokens,
		"completion_tokens", frame.CompletionTokens,
		"total_tokens", frame.TotalTokens)
}

// OnError covers failures before a turn opened; mid-turn failures arrive as
// spoken "Error: " deltas instead. The loop still needs its completion signal.
func (c *consoleHook) OnError(_ context.Context, frame frames.Error) {
	fmt.Fprintf(c.out, "%s: %v\n", color.RedString("error"), frame.Err)
	c.turns <- ""
}

// console owns the read-eval loop. It plays the transport role: user lines
// become context frames on the input topic, the hook renders whatever comes
// back on the output topic.
type console struct {
	botName  string
	provider string
	in       io.Reader
	out      io.Writer
	input    broker.Topic
	hook     *consoleHook
	log      *slog.Logger
}

func newConsole(botName, providerName string, in io.Reader, out io.Writer, input broker.Topic, hook *consoleHook) *console {
	return &console{
		botName:  botName,
		provider: providerName,
		in:       in,
		out:      out,
		input:    input,
		hook:     hook,
		log:      slog.With(slogx.LoggerName("console")),
	}
}

func (c *console) Run(ctx context.Context, log *transcript.Log) error {
	bootMessages(log, c.botName, c.provider)
	if err := c.runTurn(ctx, log); err != nil {
		return err
	}

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprintf(c.out, "%s: ", color.CyanString("User"))
		if !scanner.Scan() {
			fmt.Fprintln(c.out, "Exiting...")
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") {
			return nil
		}
		if arg, ok := strings.CutPrefix(line, "/set "); ok {
			c.updateSettings(ctx, log.SessionID(), arg)
			continue
		}

		log.AddUserPrompt(messages.New().WithSender("User").UserPrompt(line))
		if err := c.runTurn(ctx, log); err != nil {
			return err
		}
	}
}

// runTurn publishes the conversation snapshot and waits for the reply,
// folding it back into the log so the next turn sees it.
func (c *console) runTurn(ctx context.Context, log *transcript.Log) error {
	if err := c.input.Publish(ctx, log.ContextFrame()); err != nil {
		return fmt.Errorf("publish context frame: %w", err)
	}

	select {
	case reply := <-c.hook.turns:
		if reply != "" {
			log.AddAssistantMessage(messages.New().WithSender(c.botName).AssistantMessage(reply))
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *console) updateSettings(ctx context.Context, sessionID uuid.UUID, arg string) {
	key, value, found := strings.Cut(strings.TrimSpace(arg), " ")
	if !found {
		fmt.Fprintln(c.out, "usage: /set <knob> <value>")
		return
	}

	patch, err := buildPatch(key, strings.TrimSpace(value))
	if err != nil {
		fmt.Fprintf(c.out, "invalid value: %v\n", err)
		return
	}

	parsed := gjson.Parse(patch)
	if report := generation.InspectPatch(parsed); len(report.Unknown) > 0 {
		fmt.Fprintf(c.out, "%s: unknown knobs %v\n", color.YellowString("warning"), report.Unknown)
	}

	frame := frames.Settings{
		SessionID: sessionID,
		Patch:     parsed,
		Sender:    "console",
		Timestamp: strfmt.DateTime(time.Now()),
	}
	if err := c.input.Publish(ctx, frame); err != nil {
		c.log.Error("failed to publish settings patch", slogx.Error(err))
		return
	}
	fmt.Fprintln(c.out, color.GreenString("settings update sent"))
}

// buildPatch wraps one knob update into a JSON patch object. Values that
// parse as JSON keep their type, anything else is sent as a string.
func buildPatch(key, raw string) (string, error) {
	if gjson.Valid(raw) {
		return sjson.SetRaw("{}", key, raw)
	}
	return sjson.Set("{}", key, raw)
}

/*
Package openai implements the provider.Provider interface for OpenAI's chat
models through the official Go SDK. It exists as the alternative backend next
to the Cohere provider; the runner picks whichever service has credentials.

# Design Decisions

  - Streaming First: built on the SDK's SSE stream with include_usage enabled
  - Native Roles: instructions travel as a real system message, no folding
  - Settings Mapping: the generation snapshot maps onto the request verbatim,
    except top_k which the endpoint does not offer
  - Thread Safe: a Provider can be shared across goroutines
  - Lazy Initialization: models initialize their provider on first use

# Available Models

The package provides several pre-configured models:

  - GPT4oMini(): smaller, faster GPT-4 model
  - GPT4o(): full GPT-4 model with latest capabilities
  - O1Mini(): smaller version of the O1 model
  - O1(): full O1 model

Custom models can be created using the Model() function:

	model := openai.Model("custom-model-name",
		option.WithAPIKey("your-key"),
		option.WithOrganization("your-org"),
	)

# Streaming Implementation

A streaming call yields provider events in arrival order:

	events, err := prov.ChatCompletion(ctx, params)
	if err != nil {
	    return err
	}

	for event := range events {
	    switch e := event.(type) {
	    case provider.Chunk:
	        // incremental response text
	    case provider.Usage:
	        // token accounting from the trailing usage chunk
	    case provider.Done:
	        // finish reason, e.g. "stop"
	    case provider.Error:
	        // failed stream, no events follow
	    }
	}

Empty content deltas are dropped at the source, the stream ends with exactly
one terminal event, and cancellation closes the remote connection promptly.

# Configuration

Credentials and transport come from the SDK's request options:

	provider := openai.New(
		option.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
		option.WithTimeout(30*time.Second),
	)

When no key option is given the SDK falls back to the OPENAI_API_KEY
environment variable.
*/
package openai

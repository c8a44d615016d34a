// Package slogx carries small slog.Attr helpers shared across the module.
package slogx

import (
	"fmt"
	"log/slog"
)

// Error returns an attribute with key "error" and the error's message. Keeping
// the key uniform makes failures greppable across all components.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// ByteString logs a byte slice as a string without the caller spelling out the
// conversion.
func ByteString(key string, value []byte) slog.Attr {
	return slog.String(key, string(value))
}

// Stringer logs anything with a String method under the given key.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

// KeyLoggerName is the attribute key that names the component a log line
// belongs to.
const KeyLoggerName = "logger"

// LoggerName returns the component-name attribute.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}

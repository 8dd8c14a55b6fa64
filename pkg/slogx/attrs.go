package slogx

import (
	"fmt"
	"log/slog"
	"time"
)

// Error returns a slog.Attr for the provided error under the "error" key.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Stringer returns a slog.Attr with the string representation of the given
// fmt.Stringer value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

// Dur returns a slog.Attr with the duration rendered in its human form
// rather than as raw nanoseconds.
func Dur(key string, value time.Duration) slog.Attr {
	return slog.String(key, value.String())
}

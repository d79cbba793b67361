package logging

import (
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/turbot/tailpipe-s3-log-forwarder/constants"
)

// LevelOff disables logging
const LevelOff = slog.Level(math.MaxInt32)

const redacted = "REDACTED"

// attribute keys whose values are never written
var sensitiveKeys = map[string]struct{}{
	"access_key":    {},
	"secret_key":    {},
	"session_token": {},
	"password":      {},
}

func Initialize(name string) {
	slog.SetDefault(NewLogger(os.Stderr, name, GetLogLevel()))
}

// NewLogger returns a JSON logger that writes to w and redacts sensitive attributes
func NewLogger(w io.Writer, name string, level slog.Leveler) *slog.Logger {
	if level == LevelOff {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	}

	handlerOptions := &slog.HandlerOptions{
		Level: level,

		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
				return slog.String(a.Key, redacted)
			}
			return a
		},
	}
	return slog.New(slog.NewJSONHandler(w, handlerOptions)).With("source", name)
}

func GetLogLevel() slog.Level {
	return ParseLevel(os.Getenv(constants.EnvLogLevel))
}

// ParseLevel converts a level name to a slog.Level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "off":
		return LevelOff
	default:
		return slog.LevelInfo
	}
}

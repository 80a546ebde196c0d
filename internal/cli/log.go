package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LogLevelEnv selects the log level (debug, info, warn, error) when -v is
// not given.
const LogLevelEnv = "SRCSETLAB_LOG"

// newLogger creates the stderr logger shared by all commands. Timestamps
// are "HH:MM:SS.ms". URL-valued keys are highlighted like links.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	l.SetStyles(logStyles())
	return l
}

// urlKeys are the keyvals whose values are URLs.
var urlKeys = []string{"source", "image", "url", "page"}

func logStyles() *log.Styles {
	s := log.DefaultStyles()
	for _, k := range urlKeys {
		s.Values[k] = StyleLink
	}
	s.Keys["err"] = StyleWarning
	return s
}

// envLevel returns the level named by LogLevelEnv, or fallback when the
// variable is unset or unknown.
func envLevel(fallback log.Level) log.Level {
	v := strings.TrimSpace(os.Getenv(LogLevelEnv))
	if v == "" {
		return fallback
	}
	level, err := log.ParseLevel(v)
	if err != nil {
		return fallback
	}
	return level
}

// progress times one lookup: begin is logged at debug, done at info with
// the elapsed time attached.
type progress struct {
	logger  *log.Logger
	start   time.Time
	keyvals []any
}

func newProgress(l *log.Logger, msg string, keyvals ...any) *progress {
	l.Debug(msg, keyvals...)
	return &progress{logger: l, start: time.Now(), keyvals: keyvals}
}

// done logs msg, e.g. "Resolved photo source=... image=... elapsed=412ms".
func (p *progress) done(msg string, keyvals ...any) {
	kv := append(append([]any{}, p.keyvals...), keyvals...)
	p.logger.Info(msg, append(kv, "elapsed", time.Since(p.start).Round(time.Millisecond))...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the command logger, or log.Default() outside
// a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

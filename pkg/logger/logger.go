package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the structured logger.
type Options struct {
	ServiceName string
	// Level is a zerolog level name; empty or unknown means info.
	Level     string
	WarnStack bool
	// Format is "json" (default) or "console".
	Format string
	Output io.Writer
	// RedactKeys extends the field names whose values are masked; see DefaultRedactKeys.
	RedactKeys []string
}

// DefaultRedactKeys are the checkout form fields that identify a shopper.
var DefaultRedactKeys = []string{"name", "email", "address", "phone"}

// Logger wraps zerolog with context-carried fields.
type Logger struct {
	base      *zerolog.Logger
	warnStack bool
	redact    map[string]struct{}
}

type ctxKey struct{}

func New(opts Options) *Logger {
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	if strings.EqualFold(strings.TrimSpace(opts.Format), "console") {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	base := zerolog.New(output).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Logger().
		Level(ParseLevel(opts.Level))

	return &Logger{
		base:      &base,
		warnStack: opts.WarnStack,
		redact:    redactSet(opts.RedactKeys),
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	base := zerolog.Nop()
	return &Logger{base: &base, redact: redactSet(nil)}
}

// ParseLevel maps a level name to a zerolog level, falling back to info.
func ParseLevel(value string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(value))
	if lvl, err := zerolog.ParseLevel(name); err == nil && lvl != zerolog.NoLevel && name != "" {
		return lvl
	}
	return zerolog.InfoLevel
}

// WithField returns ctx carrying key=value for every later log line.
func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	entry := l.entry(ctx).With().Interface(key, l.mask(key, value)).Logger()
	return withEntry(ctx, entry)
}

// WithFields is WithField for several keys at once.
func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	builder := l.entry(ctx).With()
	for key, value := range fields {
		builder = builder.Interface(key, l.mask(key, value))
	}
	return withEntry(ctx, builder.Logger())
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, "request_id", requestID)
}

func (l *Logger) WithSessionID(ctx context.Context, sessionID string) context.Context {
	return l.WithField(ctx, "session_id", sessionID)
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.entry(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.entry(ctx).Info().Msg(msg)
}

// Warn attaches a stack trace only when WarnStack is set.
func (l *Logger) Warn(ctx context.Context, msg string) {
	event := l.entry(ctx).Warn()
	if l.warnStack {
		event = event.Str("stack", stackTrace())
	}
	event.Msg(msg)
}

// Error always attaches a stack trace; err may be nil.
func (l *Logger) Error(ctx context.Context, msg string, err error) {
	event := l.entry(ctx).Error()
	if err != nil {
		event = event.Err(err)
	}
	event.Str("stack", stackTrace()).Msg(msg)
}

func (l *Logger) entry(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if entry, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
			return entry
		}
	}
	return l.base
}

func withEntry(ctx context.Context, entry zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, &entry)
}

// mask keeps enough of a shopper field to correlate lines without logging it whole.
func (l *Logger) mask(key string, value any) any {
	if _, sensitive := l.redact[strings.ToLower(key)]; !sensitive {
		return value
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return "[redacted]"
	}
	first := string([]rune(s)[:1])
	if at := strings.LastIndex(s, "@"); at > 0 {
		return first + "***" + s[at:]
	}
	return first + "***"
}

func redactSet(extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(DefaultRedactKeys)+len(extra))
	for _, key := range append(append([]string{}, DefaultRedactKeys...), extra...) {
		set[strings.ToLower(strings.TrimSpace(key))] = struct{}{}
	}
	return set
}

func stackTrace() string {
	return strings.TrimSpace(string(debug.Stack()))
}

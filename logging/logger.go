package logging

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger is the minimal logging interface used throughout the harness.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

// NullLogger returns a Logger that discards everything.
func NullLogger() Logger { return nullLogger{} }

type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// CapturingLogger accumulates messages in memory so that they can be shown later, for
// instance only if a test fails.
type CapturingLogger struct {
	output []CapturedMessage
	lock   sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	l.output = append(l.output, CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
	l.lock.Unlock()
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[%s] %s\n",
			prefix,
			m.Time.Format(timestampFormat),
			m.Message,
		)
	}
}

// StructuredLogger adapts a zerolog.Logger to the Logger interface. Printf output goes
// to the debug level; the Info/Error methods are for messages that should always be seen.
type StructuredLogger struct {
	logger zerolog.Logger
}

// NewStructuredLogger creates a console-formatted zerolog logger tagged with the run ID.
func NewStructuredLogger(output io.Writer, runID string, debug bool) *StructuredLogger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: output, TimeFormat: timestampFormat, NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Str("run_id", runID).
		Logger()
	return &StructuredLogger{logger: zl}
}

// WithTest returns a logger whose entries carry the test ID.
func (l *StructuredLogger) WithTest(testID string) *StructuredLogger {
	return &StructuredLogger{logger: l.logger.With().Str("test_id", testID).Logger()}
}

func (l *StructuredLogger) Printf(message string, args ...interface{}) {
	l.logger.Debug().Msgf(message, args...)
}

func (l *StructuredLogger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

func (l *StructuredLogger) Error(err error, msg string) {
	l.logger.Error().Err(err).Msg(msg)
}

// ForTest returns a logger whose entries carry the test ID if l is a StructuredLogger, or
// l itself otherwise.
func ForTest(l Logger, testID string) Logger {
	if sl, ok := l.(*StructuredLogger); ok {
		return sl.WithTest(testID)
	}
	return l
}

// Infof logs at info level if l has one, so that the message is shown without -debug.
// Other loggers get it through Printf.
func Infof(l Logger, format string, args ...interface{}) {
	if il, ok := l.(interface{ Info(string) }); ok {
		il.Info(fmt.Sprintf(format, args...))
		return
	}
	l.Printf(format, args...)
}

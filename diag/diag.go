// Package diag provides the diagnostics sink the analyser and code
// generator report through: errors, optional trace output, and the
// accumulated error flag that gates whether a compilation is considered
// successful.
package diag

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Sink receives diagnostic output from a compilation. Implementations
// must be safe to call from a single compilation's sequential passes;
// no concurrency guarantees are made or needed.
type Sink interface {
	// Errorf records a semantic or type error at the given source line.
	// format/args follow fmt.Sprintf conventions; the final rendered
	// message omits any "Semantic error"/"Type error" prefix — callers
	// supply that themselves so the two error categories stay visually
	// distinct.
	Errorf(line int, format string, args ...any)

	// Tracef records trace/diagnostic output unconditional on any
	// particular error. The analyser and code generator do not call it;
	// the CLI's trace flags only change the LogrusSink logger's level.
	Tracef(format string, args ...any)

	// HasErrors reports whether Errorf has been called at least once.
	HasErrors() bool
}

// LogrusSink is the production Sink, backed by a *logrus.Logger. Errors
// are logged at ErrorLevel with a "line" field; trace output is logged
// at DebugLevel so it can be silenced by the logger's level without
// touching call sites.
type LogrusSink struct {
	log       *logrus.Logger
	hasErrors bool
}

// NewLogrusSink creates a LogrusSink. If logger is nil, a new
// logrus.Logger with logrus.TextFormatter is constructed.
func NewLogrusSink(logger *logrus.Logger) *LogrusSink {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return &LogrusSink{log: logger}
}

// Errorf implements Sink.
func (s *LogrusSink) Errorf(line int, format string, args ...any) {
	s.hasErrors = true
	s.log.WithField("line", line).Errorf(format, args...)
}

// Tracef implements Sink.
func (s *LogrusSink) Tracef(format string, args ...any) {
	s.log.Debugf(format, args...)
}

// HasErrors implements Sink.
func (s *LogrusSink) HasErrors() bool {
	return s.hasErrors
}

// Entry is one recorded diagnostic captured by a RecordingSink.
type Entry struct {
	Line    int
	Message string
	IsError bool
}

// RecordingSink is a Sink that only records entries in memory, for use
// in tests that want to assert on exact diagnostic text without
// capturing stdout.
type RecordingSink struct {
	Entries   []Entry
	hasErrors bool
}

// NewRecordingSink creates an empty RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Errorf implements Sink.
func (s *RecordingSink) Errorf(line int, format string, args ...any) {
	s.hasErrors = true
	s.Entries = append(s.Entries, Entry{Line: line, Message: fmt.Sprintf(format, args...), IsError: true})
}

// Tracef implements Sink.
func (s *RecordingSink) Tracef(format string, args ...any) {
	s.Entries = append(s.Entries, Entry{Message: fmt.Sprintf(format, args...)})
}

// HasErrors implements Sink.
func (s *RecordingSink) HasErrors() bool {
	return s.hasErrors
}

// Errors returns only the error-level entries recorded so far, in
// recorded order.
func (s *RecordingSink) Errors() []Entry {
	var out []Entry
	for _, e := range s.Entries {
		if e.IsError {
			out = append(out, e)
		}
	}
	return out
}

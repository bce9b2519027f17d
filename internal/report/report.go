package report

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level classifies a detail line. Its string form is also the prefix of the
// rendered line.
type Level string

const (
	LevelInfo    Level = "Info"
	LevelWarning Level = "Warning"
	LevelError   Level = "Error"
)

// Line is a single detail message
type Line struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// String renders the line the way the status panel shows it
func (l Line) String() string {
	if l.Level == "" {
		return l.Message
	}
	return fmt.Sprintf("%s: %s", l.Level, l.Message)
}

// Reporter receives the progress of an album run. Header carries the short
// headline status, Detail the running log.
type Reporter interface {
	Header(msg string)
	Detail(level Level, msg string)
	Reset()
}

// Warnf is a convenience for warning lines
func Warnf(r Reporter, format string, args ...interface{}) {
	r.Detail(LevelWarning, fmt.Sprintf(format, args...))
}

// Infof is a convenience for info lines
func Infof(r Reporter, format string, args ...interface{}) {
	r.Detail(LevelInfo, fmt.Sprintf(format, args...))
}

// Errorf is a convenience for error lines
func Errorf(r Reporter, format string, args ...interface{}) {
	r.Detail(LevelError, fmt.Sprintf(format, args...))
}

// LogReporter writes status lines to a zerolog logger
type LogReporter struct {
	logger zerolog.Logger
}

// NewLogReporter creates a reporter backed by the global logger
func NewLogReporter() *LogReporter {
	return &LogReporter{logger: log.Logger}
}

func (r *LogReporter) Header(msg string) {
	r.logger.Info().Str("status", "header").Msg(msg)
}

func (r *LogReporter) Detail(level Level, msg string) {
	var ev *zerolog.Event
	switch level {
	case LevelWarning:
		ev = r.logger.Warn()
	case LevelError:
		ev = r.logger.Error()
	default:
		ev = r.logger.Info()
	}
	ev.Msg(msg)
}

func (r *LogReporter) Reset() {}

// Recorder keeps the header and detail lines in memory
type Recorder struct {
	mu     sync.Mutex
	header string
	lines  []Line
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Header(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.header = msg
}

func (r *Recorder) Detail(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, Line{Level: level, Message: msg})
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}

// HeaderText returns the current header
func (r *Recorder) HeaderText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.header
}

// Lines returns a copy of the detail lines
func (r *Recorder) Lines() []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Line, len(r.lines))
	copy(out, r.lines)
	return out
}

// Worst returns the most severe level recorded, or LevelInfo
func (r *Recorder) Worst() Level {
	worst := LevelInfo
	for _, l := range r.Lines() {
		switch l.Level {
		case LevelError:
			return LevelError
		case LevelWarning:
			worst = LevelWarning
		}
	}
	return worst
}

// Text renders the detail lines one per row
func (r *Recorder) Text() string {
	var b strings.Builder
	for i, l := range r.Lines() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.String())
	}
	return b.String()
}

// Tee fans every call out to several reporters
type Tee []Reporter

func (t Tee) Header(msg string) {
	for _, r := range t {
		r.Header(msg)
	}
}

func (t Tee) Detail(level Level, msg string) {
	for _, r := range t {
		r.Detail(level, msg)
	}
}

func (t Tee) Reset() {
	for _, r := range t {
		r.Reset()
	}
}

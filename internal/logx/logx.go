// Package logx is a thin leveled logger over the standard library log
// package. Every line carries the component name and, when a simulation
// clock is attached, the current tick and simulated time.
package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Stamper supplies the simulation timestamp for a log line.
type Stamper interface {
	Stamp() string
}

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgCyan),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed, color.Bold),
}

// Logger writes leveled, component-tagged lines.
type Logger struct {
	out       *log.Logger
	component string
	min       Level
	clock     Stamper
	colored   bool
}

// New creates a logger writing to w.
func New(w io.Writer, component string, min Level, colored bool) *Logger {
	return &Logger{
		out:       log.New(w, "", log.LstdFlags),
		component: component,
		min:       min,
		colored:   colored,
	}
}

// Default logs to stderr at info level with color when the terminal allows.
func Default(component string) *Logger {
	return New(os.Stderr, component, LevelInfo, !color.NoColor)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, "", LevelError+1, false)
}

// Named returns a copy of l for another component.
func (l *Logger) Named(component string) *Logger {
	c := *l
	c.component = component
	return &c
}

// WithClock returns a copy of l that stamps lines with clock.
func (l *Logger) WithClock(clock Stamper) *Logger {
	c := *l
	c.clock = clock
	return &c
}

// Enabled reports whether lines at level would be written.
func (l *Logger) Enabled(level Level) bool { return level >= l.min }

func (l *Logger) logf(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	tag := level.String()
	if l.colored {
		tag = levelColors[level].Sprint(tag)
	}
	var b strings.Builder
	if l.clock != nil {
		fmt.Fprintf(&b, "[%s] ", l.clock.Stamp())
	}
	if l.component != "" {
		fmt.Fprintf(&b, "[%s] ", l.component)
	}
	fmt.Fprintf(&b, "[%s] ", tag)
	fmt.Fprintf(&b, format, args...)
	l.out.Println(b.String())
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

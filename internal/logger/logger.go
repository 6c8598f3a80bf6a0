// Package logger is the process-wide leveled log used by daylog.
//
// Only errors are printed by default. --verbose lowers the threshold to
// debug, which traces ingestion, merges and every flow step on stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level orders log messages by severity.
type Level int

// Levels from most to least chatty.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel accepts a level name in any case. "warning" is an alias
// for warn.
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		return LevelWarn, nil
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelError, fmt.Errorf("unknown log level %q", s)
}

var (
	mu         sync.RWMutex
	threshold  = LevelError
	output     io.Writer = os.Stderr
	timestamps bool
	now        = time.Now
)

// SetLevel sets the lowest level that is printed.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	threshold = l
}

// CurrentLevel returns the threshold.
func CurrentLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return threshold
}

// SetVerbose switches between debug output and errors only.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelError)
}

// IsVerbose reports whether debug messages are printed.
func IsVerbose() bool {
	return CurrentLevel() == LevelDebug
}

// SetOutput redirects the log. It defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetTimestamps prefixes every line with the wall-clock time. The serve
// command turns this on since its output outlives a single flow.
func SetTimestamps(on bool) {
	mu.Lock()
	defer mu.Unlock()
	timestamps = on
}

func logf(l Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l < threshold {
		return
	}
	var b strings.Builder
	if timestamps {
		b.WriteString(now().Format("15:04:05.000 "))
	}
	b.WriteString("[" + l.String() + "] ")
	fmt.Fprintf(&b, format, args...)
	b.WriteByte('\n')
	_, _ = io.WriteString(output, b.String())
}

// Debug traces a step.
func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }

// Info reports progress.
func Info(format string, args ...any) { logf(LevelInfo, format, args...) }

// Warn reports a degraded but recoverable condition.
func Warn(format string, args ...any) { logf(LevelWarn, format, args...) }

// Error reports a failure. Errors are printed at every level.
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Section marks the start of a flow or ingest in debug output.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if threshold > LevelDebug {
		return
	}
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}

// Writer adapts the log for libraries that take an io.Writer, such as
// gin's request logger. Their lines are printed at info level.
func Writer() io.Writer {
	return levelWriter(LevelInfo)
}

type levelWriter Level

func (w levelWriter) Write(p []byte) (int, error) {
	mu.RLock()
	defer mu.RUnlock()
	if Level(w) < threshold {
		return len(p), nil
	}
	return output.Write(p)
}

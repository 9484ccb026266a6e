// Package logging provides the small amount of operational logging
// RegionWorker needs: archive-open failures and shutdown notices. It is
// deliberately not a general-purpose logging facade.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures an optional rotating file sink alongside stdout.
type Config struct {
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Logger writes timestamped, level-prefixed lines to stdout and, if
// configured, a rotating log file. It also keeps a capped ring buffer of
// recent lines for diagnostics.
type Logger struct {
	out       *log.Logger
	fileSink  *lumberjack.Logger
	mu        sync.Mutex
	buffer    []string
	maxBuffer int
}

// New returns a stdout-only Logger.
func New() *Logger {
	return &Logger{
		out:       log.New(os.Stdout, "", 0),
		maxBuffer: 200,
	}
}

// NewWithConfig returns a Logger that also writes to a rotating file.
func NewWithConfig(cfg Config) *Logger {
	l := New()
	if cfg.FilePath == "" {
		return l
	}
	l.fileSink = &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	l.out = log.New(io.MultiWriter(os.Stdout, l.fileSink), "", 0)
	return l
}

func (l *Logger) log(level, format string, args ...any) {
	line := fmt.Sprintf("[%s] %s: %s", time.Now().Format(time.RFC3339), level, fmt.Sprintf(format, args...))
	l.mu.Lock()
	l.buffer = append(l.buffer, line)
	if len(l.buffer) > l.maxBuffer {
		l.buffer = l.buffer[len(l.buffer)-l.maxBuffer:]
	}
	l.mu.Unlock()
	l.out.Println(line)
}

func (l *Logger) Info(format string, args ...any)  { l.log("INFO", format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.log("WARN", format, args...) }
func (l *Logger) Error(format string, args ...any) { l.log("ERROR", format, args...) }

// RecentLines returns a copy of the most recent log lines.
func (l *Logger) RecentLines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.buffer))
	copy(out, l.buffer)
	return out
}

// Close releases the file sink, if any.
func (l *Logger) Close() error {
	if l.fileSink != nil {
		return l.fileSink.Close()
	}
	return nil
}

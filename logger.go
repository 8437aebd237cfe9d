package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// EventLog appends log lines to a file.  It is safe for concurrent use.
type EventLog struct {
	filePath string
	mu       sync.Mutex
}

// NewEventLog creates a sink writing to filePath.  The file is created on
// first write.
func NewEventLog(filePath string) *EventLog {
	return &EventLog{filePath: filePath}
}

// Write appends p to the log file.  The file is reopened on every write so
// an external logrotate can move it away.
func (el *EventLog) Write(p []byte) (int, error) {
	el.mu.Lock()
	defer el.mu.Unlock()
	f, err := os.OpenFile(el.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.Write(p)
}

// parseLevel maps a config level name to a slog level.  Unknown names mean
// info.
func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// newLogger creates the application logger writing to w.  The "error" key
// is standardised to "err".
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// loggerForConfig logs to stderr and, when a log file is configured, to the
// event log as well.
func loggerForConfig(cfg Config) *slog.Logger {
	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		w = io.MultiWriter(os.Stderr, fallibleWriter{NewEventLog(cfg.LogFile)})
	}
	return newLogger(w, parseLevel(cfg.LogLevel))
}

// fallibleWriter reports event log failures on stderr instead of failing the
// whole log call, so a full disk does not silence stderr.
type fallibleWriter struct{ w io.Writer }

func (f fallibleWriter) Write(p []byte) (int, error) {
	if _, err := f.w.Write(p); err != nil {
		fmt.Fprintf(os.Stderr, "log write error: %v\n", err)
	}
	return len(p), nil
}

// newNopLogger returns a logger that discards everything.
func newNopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

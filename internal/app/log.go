package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"nutri-go/internal/nutri"
)

// LogFileName is the file written under the configured log directory.
const LogFileName = "nutri.log"

// logOutput is one destination of a nutriHandler with its own threshold.
type logOutput struct {
	w     io.Writer
	level slog.Level
}

// nutriHandler is a slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<opID>\t<message>\t<key=value ...>
//
// Each line goes to every output whose level admits the record.
type nutriHandler struct {
	mu      *sync.Mutex
	outputs []logOutput
	opID    string
	attrs   []slog.Attr
}

func newNutriHandler(opID string, outputs ...logOutput) *nutriHandler {
	return &nutriHandler{mu: &sync.Mutex{}, outputs: outputs, opID: opID}
}

func (h *nutriHandler) Enabled(_ context.Context, level slog.Level) bool {
	for _, o := range h.outputs {
		if level >= o.level {
			return true
		}
	}
	return false
}

func (h *nutriHandler) Handle(_ context.Context, r slog.Record) error {
	var line bytes.Buffer
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")
	fmt.Fprintf(&line, "%s\t%s\t%s\t%s", ts, r.Level.String(), h.opID, r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(&line, "\t%s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&line, "\t%s=%v", a.Key, a.Value)
		return true
	})
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, o := range h.outputs {
		if r.Level < o.level {
			continue
		}
		if _, err := o.w.Write(line.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (h *nutriHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &nutriHandler{
		mu:      h.mu,
		outputs: h.outputs,
		opID:    h.opID,
		attrs:   append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *nutriHandler) WithGroup(string) slog.Handler { return h }

// newLogger creates a structured logger that writes every record to
// logDir/nutri.log and warnings and errors to stderr.
// It returns the slog.Logger, the open log file (for cleanup), and any error.
func newLogger(logDir string, opID string, stderr io.Writer) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(logDir, LogFileName)
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	handler := newNutriHandler(opID,
		logOutput{w: f, level: slog.LevelDebug},
		logOutput{w: stderr, level: slog.LevelWarn},
	)
	return slog.New(handler), f, nil
}

// slogAdapter wraps *slog.Logger to satisfy the nutri.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

var _ nutri.Logger = (*slogAdapter)(nil)

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }

package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNutriHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123",
			level:   slog.LevelInfo,
			message: "session restored",
			want:    "2024-06-15T14:30:45Z\tINFO\top-123\tsession restored\n",
		},
		{
			name:    "debug level",
			opID:    "op-456",
			level:   slog.LevelDebug,
			message: "forwarding analysis",
			want:    "2024-06-15T14:30:45Z\tDEBUG\top-456\tforwarding analysis\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelInfo,
			message: "plan changed",
			attrs:   []slog.Attr{slog.String("user_id", "google_uid_1"), slog.Int("history", 3)},
			want:    "2024-06-15T14:30:45Z\tINFO\top-789\tplan changed\tuser_id=google_uid_1\thistory=3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := newNutriHandler(tt.opID, logOutput{w: &buf, level: slog.LevelDebug})

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestNutriHandler_OutputLevels(t *testing.T) {
	var file, stderr bytes.Buffer
	h := newNutriHandler("op-1",
		logOutput{w: &file, level: slog.LevelDebug},
		logOutput{w: &stderr, level: slog.LevelWarn},
	)
	logger := slog.New(h)

	logger.Info("quiet")
	logger.Warn("loud")

	if !strings.Contains(file.String(), "quiet") || !strings.Contains(file.String(), "loud") {
		t.Errorf("file output = %q, want both records", file.String())
	}
	if strings.Contains(stderr.String(), "quiet") {
		t.Errorf("stderr got info record: %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "loud") {
		t.Errorf("stderr output = %q, want warn record", stderr.String())
	}
}

func TestNutriHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := newNutriHandler("op-1", logOutput{w: &buf, level: slog.LevelDebug})

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "delivery")}).(*nutriHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "sent", 0)
	r.AddAttrs(slog.String("key", "abc"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=delivery") {
		t.Errorf("expected pre-set attr component=delivery, got: %q", got)
	}
	if !strings.Contains(got, "key=abc") {
		t.Errorf("expected record attr key=abc, got: %q", got)
	}
	if len(h.attrs) != 0 {
		t.Errorf("original handler attrs modified: got %d, want 0", len(h.attrs))
	}
}

func TestNutriHandler_Enabled(t *testing.T) {
	h := newNutriHandler("op-1", logOutput{w: &bytes.Buffer{}, level: slog.LevelInfo})

	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled(Debug) = true, want false")
	}
	for _, level := range []slog.Level{slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if !h.Enabled(context.Background(), level) {
			t.Errorf("Enabled(%v) = false, want true", level)
		}
	}
}

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")
	var stderr bytes.Buffer

	logger, f, err := newLogger(dir, "test-op", &stderr)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	logger.Debug("to file only")
	logger.Error("to both")

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "\ttest-op\tto file only") {
		t.Errorf("log file = %q", data)
	}
	if stderr.String() == "" || strings.Contains(stderr.String(), "to file only") {
		t.Errorf("stderr = %q, want only the error record", stderr.String())
	}
}

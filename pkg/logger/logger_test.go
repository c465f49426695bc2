package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/wonny/buffett/backend/pkg/config"
)

// captureStdout runs fn while stdout is redirected and returns what was written.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func TestNew(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log := New(&config.Config{Env: "test", LogLevel: tt.level, LogFormat: "json"})
			if log == nil {
				t.Fatal("New returned nil")
			}
			if got := zerolog.GlobalLevel(); got != tt.want {
				t.Errorf("global level = %v, want %v", got, tt.want)
			}
		})
	}
}

// New stamps every entry with service and env so logs from the API server,
// the scheduler, and CLI runs can be told apart in aggregation.
func TestNewStampsServiceFields(t *testing.T) {
	out := captureStdout(t, func() {
		log := New(&config.Config{Env: "production", LogLevel: "info", LogFormat: "json"})
		log.Info("screener ready")
	})

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if entry["service"] != "buffett" {
		t.Errorf("service = %v, want buffett", entry["service"])
	}
	if entry["env"] != "production" {
		t.Errorf("env = %v, want production", entry["env"])
	}
	if entry["message"] != "screener ready" {
		t.Errorf("message = %v, want screener ready", entry["message"])
	}
}

func TestNewConsoleFormat(t *testing.T) {
	for _, format := range []string{"console", "pretty"} {
		t.Run(format, func(t *testing.T) {
			out := captureStdout(t, func() {
				log := New(&config.Config{Env: "test", LogLevel: "info", LogFormat: format})
				log.Info("screener ready")
			})

			if !strings.Contains(out, "screener ready") {
				t.Errorf("output missing message: %s", out)
			}
			if json.Valid(bytes.TrimSpace([]byte(out))) {
				t.Errorf("expected human-readable output, got JSON: %s", out)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"verbose", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		name := tt.in
		if name == "" {
			name = "empty"
		}
		t.Run(name, func(t *testing.T) {
			if got := parseLogLevel(tt.in); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// newBufferLogger returns a logger writing JSON to buf, bypassing New so tests
// can inspect single entries without touching stdout. Resets the global level
// because TestNew leaves it wherever its last case pointed.
func newBufferLogger(buf *bytes.Buffer) *Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	return &Logger{zlog: zerolog.New(buf).With().Timestamp().Logger()}
}

func TestLevelMethods(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	tests := []struct {
		name      string
		logFunc   func()
		wantLevel string
		wantMsg   string
	}{
		{"debug", func() { log.Debug("parsing financial statement") }, "debug", "parsing financial statement"},
		{"info", func() { log.Info("screener run complete") }, "info", "screener run complete"},
		{"warn", func() { log.Warn("approaching open API quota") }, "warn", "approaching open API quota"},
		{"error", func() { log.Error("financial statement fetch failed") }, "error", "financial statement fetch failed"},
		{"debugf", func() { log.Debugf("corp %s year %d", "00126380", 2023) }, "debug", "corp 00126380 year 2023"},
		{"infof", func() { log.Infof("scored %d companies", 187) }, "info", "scored 187 companies"},
		{"warnf", func() { log.Warnf("retry %d/%d", 2, 3) }, "warn", "retry 2/3"},
		{"errorf", func() { log.Errorf("price lookup failed: %s", "timeout") }, "error", "price lookup failed: timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("parse log entry: %v", err)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %v", entry["level"], tt.wantLevel)
			}
			if entry["message"] != tt.wantMsg {
				t.Errorf("message = %v, want %v", entry["message"], tt.wantMsg)
			}
		})
	}
}

func TestWithField(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.WithField("module", "screener").Info("scan started")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	if entry["module"] != "screener" {
		t.Errorf("module = %v, want screener", entry["module"])
	}
	if entry["message"] != "scan started" {
		t.Errorf("message = %v, want scan started", entry["message"])
	}
}

// WithField returns a child logger; the parent must stay untouched so
// module-scoped loggers don't leak fields into each other.
func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	_ = log.WithField("corp_code", "00126380")
	log.Info("plain entry")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	if _, ok := entry["corp_code"]; ok {
		t.Errorf("parent logger picked up child field: %v", entry)
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.WithFields(map[string]interface{}{
		"corp_code":   "00126380",
		"stock_code":  "005930",
		"year":        2023,
		"fs_div":      "CFS",
		"total_score": 87.5,
	}).Info("analysis saved")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	if entry["corp_code"] != "00126380" {
		t.Errorf("corp_code = %v, want 00126380", entry["corp_code"])
	}
	if entry["fs_div"] != "CFS" {
		t.Errorf("fs_div = %v, want CFS", entry["fs_div"])
	}
	if entry["year"] != float64(2023) {
		t.Errorf("year = %v, want 2023", entry["year"])
	}
	if entry["total_score"] != 87.5 {
		t.Errorf("total_score = %v, want 87.5", entry["total_score"])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.WithError(errors.New("dart: status 020 (사용한도 초과)")).Error("collect failed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	if entry["error"] != "dart: status 020 (사용한도 초과)" {
		t.Errorf("error = %v", entry["error"])
	}
	if entry["message"] != "collect failed" {
		t.Errorf("message = %v, want collect failed", entry["message"])
	}
}

func TestZerologAccessor(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	zl := log.Zerolog()
	zl.Info().Str("job", "nightly_refresh").Msg("direct zerolog use")

	if !strings.Contains(buf.String(), "nightly_refresh") {
		t.Errorf("expected entry via underlying zerolog, got: %s", buf.String())
	}
}

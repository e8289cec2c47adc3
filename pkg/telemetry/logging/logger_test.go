package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"mercator-hq/configurator/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"json", Config{Level: "info", Format: "json"}, false},
		{"text", Config{Level: "debug", Format: "text"}, false},
		{"console", Config{Level: "WARN", Format: "console"}, false},
		{"defaults", Config{}, false},
		{"invalid level", Config{Level: "verbose"}, true},
		{"invalid format", Config{Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestNew_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Debug("hidden")
	logger.Info("tree loaded", "marks", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (debug must be filtered):\n%s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "tree loaded" {
		t.Errorf("msg = %v, want %q", entry["msg"], "tree loaded")
	}
	if entry["marks"] != float64(2) {
		t.Errorf("marks = %v, want 2", entry["marks"])
	}
}

func TestNew_ConsoleOmitsTime(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Format: "console", Writer: buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("saved")

	if strings.Contains(buf.String(), "time=") {
		t.Errorf("console output contains a timestamp: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "msg=saved") {
		t.Errorf("console output = %q", buf.String())
	}
}

func TestFromConfig(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := FromConfig(config.LoggingConfig{Level: "error", Format: "text", AddSource: true}, buf)
	if cfg.Level != "error" || cfg.Format != "text" || !cfg.AddSource || cfg.Writer != buf {
		t.Errorf("FromConfig() = %+v", cfg)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, _ := New(Config{Format: "text", Writer: buf})

	ctx := WithSessionID(context.Background(), "s-1")
	ctx = WithDocument(ctx, "data.xml")
	ctx = WithSolution(ctx, "2fc23165")

	FromContext(ctx, logger).Info("checked")

	out := buf.String()
	for _, want := range []string{"session=s-1", "document=data.xml", "solution=2fc23165"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
	if strings.Contains(out, "trace_id") {
		t.Errorf("unset field logged: %s", out)
	}
}

func TestFromContext_Empty(t *testing.T) {
	logger := Discard()
	if got := FromContext(context.Background(), logger); got != logger {
		t.Error("FromContext() with no fields should return the same logger")
	}
	if SessionID(context.Background()) != "" {
		t.Error("SessionID() on empty context is not empty")
	}
}

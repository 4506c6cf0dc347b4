package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/goalcut/internal/domain/chunks"
)

func TestBuildRunOutDir(t *testing.T) {
	now := time.Date(2026, 2, 12, 10, 30, 45, 1234, time.UTC)
	got := buildRunOutDir("out", "/tmp/My Cool.Match.mp4", now)
	base := filepath.Base(got)
	if filepath.Dir(got) != "out" {
		t.Fatalf("unexpected parent dir: %s", got)
	}
	if !strings.HasPrefix(base, "my-cool-match-20260212-103045Z-") {
		t.Fatalf("unexpected run dir format: %s", base)
	}
	if len(base) != len("my-cool-match-20260212-103045Z-")+6 {
		t.Fatalf("unexpected run dir suffix length: %s", base)
	}
}

func TestNormalizePathSegment(t *testing.T) {
	tests := map[string]string{
		"  My Cool.Match  ": "my-cool-match",
		"___":               "",
		"abc123":            "abc123",
		"Name (v2)!":        "name-v2",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := normalizePathSegment(in); got != want {
				t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func validConfig(t *testing.T) Config {
	t.Helper()
	in := filepath.Join(t.TempDir(), "match.mp4")
	if err := os.WriteFile(in, []byte("x"), 0o644); err != nil {
		t.Fatalf("write input fixture: %v", err)
	}
	return Config{
		InputPath:       in,
		ChunkLenSec:     60,
		PreSec:          10,
		PostSec:         10,
		RetryAttempts:   3,
		RetryBackoffSec: 2,
		PollIntervalSec: 3,
		PollTimeoutSec:  300,
		GeminiAPIKey:    "dummy",
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty input", func(c *Config) { c.InputPath = "" }, "input is empty"},
		{"missing input", func(c *Config) { c.InputPath = "/does/not/exist.mp4" }, "stat input"},
		{"wrong extension", func(c *Config) {
			alt := strings.TrimSuffix(c.InputPath, ".mp4") + ".avi"
			os.Rename(c.InputPath, alt)
			c.InputPath = alt
		}, "must be mp4 or mov"},
		{"zero chunk length", func(c *Config) { c.ChunkLenSec = 0 }, chunks.ErrInvalidChunkLength.Error()},
		{"negative padding", func(c *Config) { c.PreSec = -1 }, "padding must be >= 0"},
		{"zero retries", func(c *Config) { c.RetryAttempts = 0 }, "retry attempts must be > 0"},
		{"zero poll interval", func(c *Config) { c.PollIntervalSec = 0 }, "poll interval must be > 0"},
		{"bad base url", func(c *Config) { c.GeminiBaseURL = "http://evil.example" }, "https is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

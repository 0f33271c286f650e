package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GENERATION_BACKEND", "GENERATION_TIMEOUT", "STORE_DRIVER", "LOOKUP_ENABLED", "TRANSCRIPT_CACHE_SIZE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":5000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Generation.Backend != BackendOllama {
		t.Fatalf("unexpected backend: %s", cfg.Generation.Backend)
	}
	if cfg.Generation.Timeout != 90*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.Generation.Timeout)
	}
	if cfg.Generation.NumCtx != 512 || cfg.Generation.MaxTokens != 320 {
		t.Fatalf("unexpected sampling config: %+v", cfg.Generation)
	}
	if !cfg.Lookup.Enabled {
		t.Fatal("expected lookup enabled by default")
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Fatalf("unexpected driver: %s", cfg.Store.Driver)
	}
	if cfg.TranscriptSize != 5 {
		t.Fatalf("unexpected transcript size: %d", cfg.TranscriptSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("GENERATION_BACKEND", "none")
	t.Setenv("GENERATION_TIMEOUT", "15")
	t.Setenv("LOOKUP_TIMEOUT", "250ms")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Generation.Backend != BackendNone {
		t.Fatalf("unexpected backend: %s", cfg.Generation.Backend)
	}
	if cfg.Generation.Timeout != 15*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.Generation.Timeout)
	}
	if cfg.Lookup.Timeout != 250*time.Millisecond {
		t.Fatalf("unexpected lookup timeout: %s", cfg.Lookup.Timeout)
	}
	if cfg.Store.Driver != DriverMemory {
		t.Fatalf("unexpected driver: %s", cfg.Store.Driver)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"GENERATION_BACKEND": "gpt",
		"STORE_DRIVER":       "postgres",
		"LOOKUP_ENABLED":     "maybe",
		"GENERATION_TIMEOUT": "-3",
		"PORT":               "80 80",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

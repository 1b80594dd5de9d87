package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultRuntimeConfig(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	if !reflect.DeepEqual(cfg.Detectors, []string{"pattern", "whatweb"}) {
		t.Errorf("unexpected default detectors: %v", cfg.Detectors)
	}
	if cfg.OutputDir != "scan-results" || cfg.TimeoutSeconds != 60 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadMergesFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "stackscan.config.yml")
	content := []byte("targets: example.com, example.org\nminConfidence: 20\noutputDir: from-file\n")
	if err := os.WriteFile(configPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("STACKSCAN_OUTPUT_DIR", "from-env")
	t.Setenv("STACKSCAN_TIMEOUT", "90")

	loader := Loader{ConfigPath: configPath}
	cfg, err := loader.Load(Overrides{OutputDir: "from-flag"})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if !reflect.DeepEqual(cfg.Targets, []string{"example.com", "example.org"}) {
		t.Errorf("unexpected targets: %v", cfg.Targets)
	}
	if cfg.MinConfidence != 20 {
		t.Errorf("file minConfidence not applied: %d", cfg.MinConfidence)
	}
	if cfg.TimeoutSeconds != 90 {
		t.Errorf("env timeout not applied: %d", cfg.TimeoutSeconds)
	}
	// Flags beat both file and env.
	if cfg.OutputDir != "from-flag" {
		t.Errorf("flag override lost: %q", cfg.OutputDir)
	}
}

func TestLoadWhatCMSFromEnv(t *testing.T) {
	t.Setenv("WHATCMS_API_KEY", "secret")
	t.Setenv("WHATCMS_API_URL", "https://example.test/api")

	loader := Loader{ConfigPath: filepath.Join(t.TempDir(), "missing.yml")}
	cfg, err := loader.Load(Overrides{})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.WhatCMSAPIKey != "secret" || cfg.WhatCMSAPIURL != "https://example.test/api" {
		t.Errorf("whatcms env settings not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	base := DefaultRuntimeConfig()
	base.Targets = []string{"example.com"}

	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*RuntimeConfig)
	}{
		{"no targets", func(c *RuntimeConfig) { c.Targets = nil }},
		{"bad min confidence", func(c *RuntimeConfig) { c.MinConfidence = 150 }},
		{"bad timeout", func(c *RuntimeConfig) { c.TimeoutSeconds = 0 }},
		{"no detectors", func(c *RuntimeConfig) { c.Detectors = nil }},
		{"no formats", func(c *RuntimeConfig) { c.Formats = nil }},
		{"no output dir", func(c *RuntimeConfig) { c.OutputDir = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParseTargetsList(t *testing.T) {
	got := ParseTargetsList("a.com, b.com\nc.com,,")
	want := []string{"a.com", "b.com", "c.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseDetectors(t *testing.T) {
	got := ParseDetectors("pattern whatweb,whatcms")
	want := []string{"pattern", "whatweb", "whatcms"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestReadTargetsFileSkipsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.txt")
	content := []byte("# comment\nexample.com\n\nexample.org\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	loader := Loader{ConfigPath: filepath.Join(t.TempDir(), "missing.yml")}
	cfg, err := loader.Load(Overrides{TargetsFile: path})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	want := []string{"example.com", "example.org"}
	if !reflect.DeepEqual(cfg.Targets, want) {
		t.Fatalf("got %v, want %v", cfg.Targets, want)
	}
}

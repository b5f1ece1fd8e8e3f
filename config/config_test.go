package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_Validates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Workflow.MaxRewrites != 1 {
		t.Errorf("expected default max_rewrites 1, got %d", cfg.Workflow.MaxRewrites)
	}
	if cfg.Workflow.AmbiguousRoute != "product_grounded" {
		t.Errorf("expected ambiguous route product_grounded, got %q", cfg.Workflow.AmbiguousRoute)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
workflow:
  relevance_threshold: 2
  retrieval_limit: 8
llm:
  model: gpt-4o
  timeout: 45s
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Workflow.RelevanceThreshold != 2 {
		t.Errorf("expected threshold 2, got %d", cfg.Workflow.RelevanceThreshold)
	}
	if cfg.Workflow.RetrievalLimit != 8 {
		t.Errorf("expected limit 8, got %d", cfg.Workflow.RetrievalLimit)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("expected model override, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 45*time.Second {
		t.Errorf("expected timeout 45s, got %v", cfg.LLM.Timeout)
	}
	// Untouched fields keep defaults.
	if cfg.Workflow.MaxRewrites != 1 {
		t.Errorf("expected default max_rewrites, got %d", cfg.Workflow.MaxRewrites)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	t.Setenv("ASSISTANT_LLM_MODEL", "env-model")
	t.Setenv("ASSISTANT_WORKFLOW_MAX_REWRITES", "0")
	t.Setenv("ASSISTANT_WEB_SEARCH_TIMEOUT", "5s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.Model != "env-model" {
		t.Errorf("expected env model override, got %q", cfg.LLM.Model)
	}
	if cfg.Workflow.MaxRewrites != 0 {
		t.Errorf("expected max_rewrites 0 from env, got %d", cfg.Workflow.MaxRewrites)
	}
	if cfg.WebSearch.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout from env, got %v", cfg.WebSearch.Timeout)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero threshold", func(c *Config) { c.Workflow.RelevanceThreshold = 0 }},
		{"negative rewrites", func(c *Config) { c.Workflow.MaxRewrites = -1 }},
		{"zero limit", func(c *Config) { c.Workflow.RetrievalLimit = 0 }},
		{"bad ambiguous route", func(c *Config) { c.Workflow.AmbiguousRoute = "maybe" }},
		{"zero llm timeout", func(c *Config) { c.LLM.Timeout = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// Package config provides unified configuration loading for the assistant.
// Precedence: defaults → YAML file → ASSISTANT_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration tree of the assistant.
type Config struct {
	// Workflow controls the retrieval decision pipeline.
	Workflow WorkflowConfig `yaml:"workflow"`

	// LLM configures the language-model collaborator.
	LLM LLMConfig `yaml:"llm"`

	// Qdrant configures the product vector-index collaborator.
	Qdrant QdrantConfig `yaml:"qdrant"`

	// WebSearch configures the live web-search collaborator.
	WebSearch WebSearchConfig `yaml:"web_search"`

	// Redis configures the web-result cache. Optional.
	Redis RedisConfig `yaml:"redis"`

	// History configures the run-history store. Optional.
	History HistoryConfig `yaml:"history"`

	// Log configures logging.
	Log LogConfig `yaml:"log"`

	// Telemetry configures OpenTelemetry export.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WorkflowConfig holds the orchestrator policy knobs.
type WorkflowConfig struct {
	// Minimum relevant items required to answer without a rewrite.
	RelevanceThreshold int `yaml:"relevance_threshold"`
	// Maximum rewrite-and-web-search cycles per run.
	MaxRewrites int `yaml:"max_rewrites"`
	// Items requested per retrieval pass.
	RetrievalLimit int `yaml:"retrieval_limit"`
	// Route used when the classifier returns neither decision value.
	AmbiguousRoute string `yaml:"ambiguous_route"`
	// Optional whole-run deadline; 0 disables the check.
	RunDeadline time.Duration `yaml:"run_deadline"`
	// Token budget for grounding packed into the generation prompt.
	GroundingTokenBudget int `yaml:"grounding_token_budget"`
}

// LLMConfig configures the OpenAI-compatible chat completion client.
type LLMConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	EmbedModel  string        `yaml:"embed_model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	// Requests per second across all three roles; 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// QdrantConfig configures the vector retrieval collaborator.
type QdrantConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Collection string        `yaml:"collection"`
	Timeout    time.Duration `yaml:"timeout"`
}

// WebSearchConfig configures the web search collaborator.
type WebSearchConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// RedisConfig configures the optional web-result cache.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// HistoryConfig configures the optional sqlite run-history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// TelemetryConfig configures OTel export.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// Load builds a Config from defaults, an optional YAML file, and
// ASSISTANT_* environment overrides, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface as confusing
// runtime behavior.
func (c *Config) Validate() error {
	if c.Workflow.RelevanceThreshold < 1 {
		return fmt.Errorf("workflow.relevance_threshold must be >= 1, got %d", c.Workflow.RelevanceThreshold)
	}
	if c.Workflow.MaxRewrites < 0 {
		return fmt.Errorf("workflow.max_rewrites must be >= 0, got %d", c.Workflow.MaxRewrites)
	}
	if c.Workflow.RetrievalLimit < 1 {
		return fmt.Errorf("workflow.retrieval_limit must be >= 1, got %d", c.Workflow.RetrievalLimit)
	}
	switch c.Workflow.AmbiguousRoute {
	case "product_grounded", "general":
	default:
		return fmt.Errorf("workflow.ambiguous_route must be product_grounded or general, got %q", c.Workflow.AmbiguousRoute)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be > 0")
	}
	return nil
}

// applyEnv overrides scalar fields from ASSISTANT_* environment variables.
func applyEnv(c *Config) {
	setString(&c.LLM.BaseURL, "ASSISTANT_LLM_BASE_URL")
	setString(&c.LLM.APIKey, "ASSISTANT_LLM_API_KEY")
	setString(&c.LLM.Model, "ASSISTANT_LLM_MODEL")
	setString(&c.LLM.EmbedModel, "ASSISTANT_LLM_EMBED_MODEL")
	setString(&c.Qdrant.BaseURL, "ASSISTANT_QDRANT_BASE_URL")
	setString(&c.Qdrant.APIKey, "ASSISTANT_QDRANT_API_KEY")
	setString(&c.Qdrant.Collection, "ASSISTANT_QDRANT_COLLECTION")
	setString(&c.WebSearch.BaseURL, "ASSISTANT_WEB_SEARCH_BASE_URL")
	setString(&c.WebSearch.APIKey, "ASSISTANT_WEB_SEARCH_API_KEY")
	setString(&c.Redis.Addr, "ASSISTANT_REDIS_ADDR")
	setString(&c.Redis.Password, "ASSISTANT_REDIS_PASSWORD")
	setString(&c.History.Path, "ASSISTANT_HISTORY_PATH")
	setString(&c.Log.Level, "ASSISTANT_LOG_LEVEL")
	setString(&c.Log.Format, "ASSISTANT_LOG_FORMAT")
	setString(&c.Workflow.AmbiguousRoute, "ASSISTANT_WORKFLOW_AMBIGUOUS_ROUTE")
	setString(&c.Telemetry.OTLPEndpoint, "ASSISTANT_TELEMETRY_OTLP_ENDPOINT")

	setInt(&c.Workflow.RelevanceThreshold, "ASSISTANT_WORKFLOW_RELEVANCE_THRESHOLD")
	setInt(&c.Workflow.MaxRewrites, "ASSISTANT_WORKFLOW_MAX_REWRITES")
	setInt(&c.Workflow.RetrievalLimit, "ASSISTANT_WORKFLOW_RETRIEVAL_LIMIT")
	setInt(&c.Redis.DB, "ASSISTANT_REDIS_DB")

	setBool(&c.Redis.Enabled, "ASSISTANT_REDIS_ENABLED")
	setBool(&c.History.Enabled, "ASSISTANT_HISTORY_ENABLED")
	setBool(&c.Telemetry.Enabled, "ASSISTANT_TELEMETRY_ENABLED")

	setDuration(&c.LLM.Timeout, "ASSISTANT_LLM_TIMEOUT")
	setDuration(&c.Qdrant.Timeout, "ASSISTANT_QDRANT_TIMEOUT")
	setDuration(&c.WebSearch.Timeout, "ASSISTANT_WEB_SEARCH_TIMEOUT")
	setDuration(&c.Workflow.RunDeadline, "ASSISTANT_WORKFLOW_RUN_DEADLINE")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			*dst = d
		}
	}
}

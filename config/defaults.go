package config

import "time"

// Default returns the built-in configuration. Values mirror the conservative
// workflow policy: one rewrite cycle, one relevant item to skip it, and
// ambiguous classifications routed through retrieval.
func Default() *Config {
	return &Config{
		Workflow: WorkflowConfig{
			RelevanceThreshold:   1,
			MaxRewrites:          1,
			RetrievalLimit:       4,
			AmbiguousRoute:       "product_grounded",
			RunDeadline:          0,
			GroundingTokenBudget: 3000,
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			EmbedModel:  "text-embedding-3-small",
			Temperature: 0.2,
			MaxTokens:   1024,
			Timeout:     30 * time.Second,
			RateLimit:   0,
			RateBurst:   1,
		},
		Qdrant: QdrantConfig{
			BaseURL:    "http://localhost:6333",
			Collection: "products",
			Timeout:    10 * time.Second,
		},
		WebSearch: WebSearchConfig{
			BaseURL: "https://api.tavily.com",
			Timeout: 15 * time.Second,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			TTL:     30 * time.Minute,
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    "assistant_history.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			ServiceName:  "ecommerce-assistant",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

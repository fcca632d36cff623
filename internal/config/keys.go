package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
	kFloat
	kDuration
)

// keySpec maps one environment variable onto one Config field.
type keySpec struct {
	env    string
	typ    keyType
	secret bool
	apply  func(cfg *Config, v any)
}

var specs = []keySpec{
	{
		env: "LOREBOT_TELEGRAM_TOKEN", typ: kString, secret: true,
		apply: func(cfg *Config, v any) { cfg.Telegram.Token = v.(string) },
	},
	{
		env: "LOREBOT_GROQ_API_KEY", typ: kString, secret: true,
		apply: func(cfg *Config, v any) { cfg.Groq.APIKey = v.(string) },
	},
	{
		env: "LOREBOT_GROQ_BASE_URL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Groq.BaseURL = v.(string) },
	},
	{
		env: "LOREBOT_GROQ_MODEL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Groq.Model = v.(string) },
	},
	{
		env: "LOREBOT_GROQ_MAX_TOKENS", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Groq.MaxTokens = v.(int) },
	},
	{
		env: "LOREBOT_GROQ_TEMPERATURE", typ: kFloat,
		apply: func(cfg *Config, v any) { cfg.Groq.Temperature = v.(float64) },
	},
	{
		env: "LOREBOT_GROQ_TIMEOUT", typ: kDuration,
		apply: func(cfg *Config, v any) { cfg.Groq.Timeout = v.(time.Duration) },
	},
	{
		env: "LOREBOT_EMBEDDING_BASE_URL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Embedding.BaseURL = v.(string) },
	},
	{
		env: "LOREBOT_EMBEDDING_API_KEY", typ: kString, secret: true,
		apply: func(cfg *Config, v any) { cfg.Embedding.APIKey = v.(string) },
	},
	{
		env: "LOREBOT_EMBEDDING_MODEL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Embedding.Model = v.(string) },
	},
	{
		env: "LOREBOT_DATA_DIR", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
	},
	{
		env: "LOREBOT_INDEX_DIR", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Storage.IndexDir = v.(string) },
	},
	{
		env: "LOREBOT_FEEDBACK_PATH", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Storage.FeedbackPath = v.(string) },
	},
	{
		env: "LOREBOT_CHUNK_SIZE", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Chunking.Size = v.(int) },
	},
	{
		env: "LOREBOT_CHUNK_OVERLAP", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Chunking.Overlap = v.(int) },
	},
	{
		env: "LOREBOT_RETRIEVAL_TOP_K", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Retrieval.TopK = v.(int) },
	},
	{
		env: "LOREBOT_RETRIEVAL_MAX_CONTEXT_CHUNKS", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Retrieval.MaxContextChunks = v.(int) },
	},
	{
		env: "LOREBOT_RETRIEVAL_MAX_SOURCE_FILES", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Retrieval.MaxSourceFiles = v.(int) },
	},
	{
		env: "LOREBOT_RETRIEVAL_MIN_SIMILARITY", typ: kFloat,
		apply: func(cfg *Config, v any) { cfg.Retrieval.MinSimilarity = v.(float64) },
	},
	{
		env: "LOREBOT_RERANK_ENABLED", typ: kBool,
		apply: func(cfg *Config, v any) { cfg.Rerank.Enabled = v.(bool) },
	},
	{
		env: "LOREBOT_RERANK_MODEL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Rerank.Model = v.(string) },
	},
	{
		env: "LOREBOT_RERANK_TIMEOUT", typ: kDuration,
		apply: func(cfg *Config, v any) { cfg.Rerank.Timeout = v.(time.Duration) },
	},
	{
		env: "LOREBOT_RERANK_TOP_N", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Rerank.TopN = v.(int) },
	},
	{
		env: "LOREBOT_SERVER_PORT", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
	},
	{
		env: "LOREBOT_MCP_ENABLED", typ: kBool,
		apply: func(cfg *Config, v any) { cfg.Server.MCPEnabled = v.(bool) },
	},
	{
		env: "LOREBOT_LOG_LEVEL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
	},
}

func applyEnvOverrides(cfg *Config) error {
	for _, s := range specs {
		raw, ok := os.LookupEnv(s.env)
		if !ok || raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			v, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("parsing %s=%q: %w", s.env, raw, err)
			}
			s.apply(cfg, v)
		case kBool:
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("parsing %s=%q: %w", s.env, raw, err)
			}
			s.apply(cfg, v)
		case kFloat:
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("parsing %s=%q: %w", s.env, raw, err)
			}
			s.apply(cfg, v)
		case kDuration:
			v, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("parsing %s=%q: %w", s.env, raw, err)
			}
			s.apply(cfg, v)
		}
	}
	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Categories is the fixed category set. The builder and the bot must agree on
// it, and the on-disk layout under both the data and storage roots follows it.
var Categories = []string{"character", "factions", "items", "maps", "npc", "timeline"}

type Config struct {
	Telegram  TelegramConfig
	Groq      GroqConfig
	Embedding EmbeddingConfig
	Storage   StorageConfig
	Chunking  ChunkingConfig
	Retrieval RetrievalConfig
	Rerank    RerankConfig
	Server    ServerConfig
	Log       LogConfig
}

type TelegramConfig struct {
	Token string
}

type GroqConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type EmbeddingConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type StorageConfig struct {
	DataDir      string
	IndexDir     string
	FeedbackPath string
}

type ChunkingConfig struct {
	Size    int // words per chunk
	Overlap int // words shared between consecutive chunks
}

type RetrievalConfig struct {
	TopK             int
	MaxContextChunks int
	MaxSourceFiles   int
	MinSimilarity    float64 // 0 disables the cross-category relevance floor
}

type RerankConfig struct {
	Enabled bool
	Model   string
	Timeout time.Duration
	TopN    int
}

type ServerConfig struct {
	Port       int
	MCPEnabled bool
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Groq: GroqConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			MaxTokens:   1024,
			Temperature: 0.2,
			Timeout:     60 * time.Second,
		},
		Embedding: EmbeddingConfig{
			BaseURL: "http://localhost:11434/v1",
			Model:   "nomic-embed-text",
		},
		Storage: StorageConfig{
			DataDir:      "data",
			IndexDir:     "storage",
			FeedbackPath: "feedback_log.csv",
		},
		Chunking: ChunkingConfig{
			Size:    512,
			Overlap: 100,
		},
		Retrieval: RetrievalConfig{
			TopK:             8,
			MaxContextChunks: 12,
			MaxSourceFiles:   5,
		},
		Rerank: RerankConfig{
			Model:   "llama-3.1-8b-instant",
			Timeout: 10 * time.Second,
			TopN:    8,
		},
		Server: ServerConfig{
			Port: 4800,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON config file (if present) and then
// applies LOREBOT_* environment overrides. Secrets (Telegram token, Groq API
// key) are only read from the environment and are never persisted.
func Load() (Config, error) {
	return loadFromPath(defaultConfigPath())
}

func loadFromPath(path string) (Config, error) {
	cfg := defaults()

	if err := applyFile(&cfg, path); err != nil {
		return Config{}, err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ValidateBot checks the settings the bot cannot run without. The index
// builder deliberately skips this: the default embedding endpoint is a local
// keyless server.
func (c Config) ValidateBot() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("missing required config: Telegram bot token (set LOREBOT_TELEGRAM_TOKEN)")
	}
	if c.Groq.APIKey == "" {
		return fmt.Errorf("missing required config: Groq API key (set LOREBOT_GROQ_API_KEY)")
	}
	return nil
}

// fileConfig mirrors the JSON config file layout. All fields are optional;
// absent fields keep their defaults.
type fileConfig struct {
	Groq struct {
		BaseURL     *string  `json:"base_url"`
		Model       *string  `json:"model"`
		MaxTokens   *int     `json:"max_tokens"`
		Temperature *float64 `json:"temperature"`
		Timeout     *string  `json:"timeout"`
	} `json:"groq"`
	Embedding struct {
		BaseURL *string `json:"base_url"`
		Model   *string `json:"model"`
	} `json:"embedding"`
	Storage struct {
		DataDir      *string `json:"data_dir"`
		IndexDir     *string `json:"index_dir"`
		FeedbackPath *string `json:"feedback_path"`
	} `json:"storage"`
	Chunking struct {
		Size    *int `json:"size"`
		Overlap *int `json:"overlap"`
	} `json:"chunking"`
	Retrieval struct {
		TopK             *int     `json:"top_k"`
		MaxContextChunks *int     `json:"max_context_chunks"`
		MaxSourceFiles   *int     `json:"max_source_files"`
		MinSimilarity    *float64 `json:"min_similarity"`
	} `json:"retrieval"`
	Rerank struct {
		Enabled *bool   `json:"enabled"`
		Model   *string `json:"model"`
		Timeout *string `json:"timeout"`
		TopN    *int    `json:"top_n"`
	} `json:"rerank"`
	Server struct {
		Port       *int  `json:"port"`
		MCPEnabled *bool `json:"mcp_enabled"`
	} `json:"server"`
	Log struct {
		Level *string `json:"level"`
	} `json:"log"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	setString(&cfg.Groq.BaseURL, fc.Groq.BaseURL)
	setString(&cfg.Groq.Model, fc.Groq.Model)
	setInt(&cfg.Groq.MaxTokens, fc.Groq.MaxTokens)
	setFloat(&cfg.Groq.Temperature, fc.Groq.Temperature)
	if err := setDuration(&cfg.Groq.Timeout, fc.Groq.Timeout); err != nil {
		return fmt.Errorf("groq.timeout: %w", err)
	}
	setString(&cfg.Embedding.BaseURL, fc.Embedding.BaseURL)
	setString(&cfg.Embedding.Model, fc.Embedding.Model)
	setString(&cfg.Storage.DataDir, fc.Storage.DataDir)
	setString(&cfg.Storage.IndexDir, fc.Storage.IndexDir)
	setString(&cfg.Storage.FeedbackPath, fc.Storage.FeedbackPath)
	setInt(&cfg.Chunking.Size, fc.Chunking.Size)
	setInt(&cfg.Chunking.Overlap, fc.Chunking.Overlap)
	setInt(&cfg.Retrieval.TopK, fc.Retrieval.TopK)
	setInt(&cfg.Retrieval.MaxContextChunks, fc.Retrieval.MaxContextChunks)
	setInt(&cfg.Retrieval.MaxSourceFiles, fc.Retrieval.MaxSourceFiles)
	setFloat(&cfg.Retrieval.MinSimilarity, fc.Retrieval.MinSimilarity)
	setBool(&cfg.Rerank.Enabled, fc.Rerank.Enabled)
	setString(&cfg.Rerank.Model, fc.Rerank.Model)
	if err := setDuration(&cfg.Rerank.Timeout, fc.Rerank.Timeout); err != nil {
		return fmt.Errorf("rerank.timeout: %w", err)
	}
	setInt(&cfg.Rerank.TopN, fc.Rerank.TopN)
	setInt(&cfg.Server.Port, fc.Server.Port)
	setBool(&cfg.Server.MCPEnabled, fc.Server.MCPEnabled)
	setString(&cfg.Log.Level, fc.Log.Level)

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string) error {
	if v == nil || *v == "" {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func defaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lorebot", "config.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.json")
	}
	return filepath.Join(home, ".config", "lorebot", "config.json")
}

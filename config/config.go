package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the staffing assistant.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DataConfig locates the employee records.
type DataConfig struct {
	Source   string   `yaml:"source"`   // file path or doublestar pattern
	Format   string   `yaml:"format"`   // "auto", "json", "bolt"
	Excludes []string `yaml:"excludes"` // patterns relative to the source prefix
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string        `yaml:"provider"`    // "hash", "ollama", "openai"
	Model     string        `yaml:"model"`       // e.g., "all-minilm"
	BaseURL   string        `yaml:"base_url"`    // Override the provider endpoint
	APIKeyEnv string        `yaml:"api_key_env"` // Environment variable for API key
	Dimension int           `yaml:"dimension"`   // 0 = model default
	BatchSize int           `yaml:"batch_size"`
	Timeout   time.Duration `yaml:"timeout"`

	// Query vectors are cached for repeated questions; 0 disables the cache.
	QueryCacheSize int           `yaml:"query_cache_size"`
	QueryCacheTTL  time.Duration `yaml:"query_cache_ttl"`
}

// GenerationConfig holds answer generator configuration.
type GenerationConfig struct {
	Provider    string        `yaml:"provider"` // "ollama", "openai"
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// RetrieveConfig holds retrieval counts. The chat path always uses
// ChatTopK; the retrieve endpoint and CLI default to SearchTopK.
type RetrieveConfig struct {
	ChatTopK   int `yaml:"chat_top_k"`
	SearchTopK int `yaml:"search_top_k"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Source: "employees.json",
			Format: "auto",
		},
		Embedding: EmbeddingConfig{
			Provider:  "hash",
			Model:     "all-minilm",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 0,
			BatchSize: 64,
			Timeout:   60 * time.Second,

			QueryCacheSize: 256,
			QueryCacheTTL:  10 * time.Minute,
		},
		Generation: GenerationConfig{
			Provider:    "ollama",
			Model:       "llama3",
			APIKeyEnv:   "OPENAI_API_KEY",
			Temperature: 0.2,
			Timeout:     120 * time.Second,
		},
		Retrieve: RetrieveConfig{
			ChatTopK:   3,
			SearchTopK: 3,
		},
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    150 * time.Second,
			RequestTimeout:  140 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"http://localhost:*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for staffrag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "staffrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".staffrag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadEnv reads a .env file from dir if present. Variables already set in
// the process environment win.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides configuration values from STAFFRAG_* variables.
func (c *Config) ApplyEnv() error {
	c.Data.Source = getEnv("STAFFRAG_DATA_SOURCE", c.Data.Source)
	c.Data.Format = getEnv("STAFFRAG_DATA_FORMAT", c.Data.Format)
	c.Embedding.Provider = getEnv("STAFFRAG_EMBEDDING_PROVIDER", c.Embedding.Provider)
	c.Embedding.Model = getEnv("STAFFRAG_EMBEDDING_MODEL", c.Embedding.Model)
	c.Embedding.BaseURL = getEnv("STAFFRAG_EMBEDDING_BASE_URL", c.Embedding.BaseURL)
	c.Generation.Provider = getEnv("STAFFRAG_GENERATION_PROVIDER", c.Generation.Provider)
	c.Generation.Model = getEnv("STAFFRAG_GENERATION_MODEL", c.Generation.Model)
	c.Generation.BaseURL = getEnv("STAFFRAG_GENERATION_BASE_URL", c.Generation.BaseURL)
	c.Server.Addr = getEnv("STAFFRAG_SERVER_ADDR", c.Server.Addr)
	c.Logging.Level = getEnv("STAFFRAG_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("STAFFRAG_LOG_FORMAT", c.Logging.Format)

	var err error
	if c.Embedding.Dimension, err = getEnvAsInt("STAFFRAG_EMBEDDING_DIMENSION", c.Embedding.Dimension); err != nil {
		return err
	}
	if c.Retrieve.SearchTopK, err = getEnvAsInt("STAFFRAG_SEARCH_TOP_K", c.Retrieve.SearchTopK); err != nil {
		return err
	}
	if c.Generation.Temperature, err = getEnvAsFloat("STAFFRAG_GENERATION_TEMPERATURE", c.Generation.Temperature); err != nil {
		return err
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Data.Source == "" {
		return fmt.Errorf("data.source is required")
	}
	switch c.Data.Format {
	case "", "auto", "json", "bolt":
	default:
		return fmt.Errorf("unsupported data.format: %s", c.Data.Format)
	}
	switch c.Embedding.Provider {
	case "hash", "ollama", "openai":
	default:
		return fmt.Errorf("unsupported embedding.provider: %s", c.Embedding.Provider)
	}
	switch c.Generation.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("unsupported generation.provider: %s", c.Generation.Provider)
	}
	if c.Retrieve.ChatTopK <= 0 {
		return fmt.Errorf("retrieve.chat_top_k must be positive, got %d", c.Retrieve.ChatTopK)
	}
	if c.Retrieve.SearchTopK <= 0 {
		return fmt.Errorf("retrieve.search_top_k must be positive, got %d", c.Retrieve.SearchTopK)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation.temperature must be within [0, 2], got %v", c.Generation.Temperature)
	}
	if c.Embedding.Dimension < 0 {
		return fmt.Errorf("embedding.dimension must not be negative")
	}
	if c.Embedding.QueryCacheSize < 0 {
		return fmt.Errorf("embedding.query_cache_size must not be negative")
	}
	return nil
}

// ResolveDataSource makes a relative data source absolute against dir.
func (c *Config) ResolveDataSource(dir string) string {
	if filepath.IsAbs(c.Data.Source) {
		return c.Data.Source
	}
	return filepath.Join(dir, c.Data.Source)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

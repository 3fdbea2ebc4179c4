package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the twinrag service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StoreConfig holds vector store connection settings.
type StoreConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding settings. Provider is selected once at
// process start and used for both index builds and query embedding.
type EmbeddingConfig struct {
	Provider        string                `yaml:"provider"` // local, remote
	PadTo           int                   `yaml:"pad_to"`   // index dimensionality
	Cache           bool                  `yaml:"cache"`
	OpenAI          RemoteEmbeddingConfig `yaml:"openai"`
	Ollama          OllamaConfig          `yaml:"ollama"`
	HNSWM           int                   `yaml:"hnsw_m"`
	HNSWEFConstruct int                   `yaml:"hnsw_ef_construction"`
}

// RemoteEmbeddingConfig holds OpenAI-compatible embedding API settings.
type RemoteEmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// OllamaConfig holds local Ollama embedding settings.
type OllamaConfig struct {
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// LLMConfig holds chat completion provider settings. Primary is required;
// Secondary names the provider used for the single fallback attempt when the
// primary fails.
type LLMConfig struct {
	Providers map[string]ProviderConfig `yaml:"providers"`
	Primary   string                    `yaml:"primary"`
	Secondary string                    `yaml:"secondary"`
}

// ProviderConfig holds settings for one OpenAI-compatible chat provider.
type ProviderConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// PipelineConfig holds pipeline defaults and variation points. The Disable*
// fields invert so the zero value keeps every stage enabled.
type PipelineConfig struct {
	DisableEnhance   bool   `yaml:"disable_enhance"`
	DisableFormat    bool   `yaml:"disable_format"`
	DisableRetrieval bool   `yaml:"disable_retrieval"`
	TopK             int    `yaml:"top_k"`
	MaxTopK          int    `yaml:"max_top_k"`
	Persona          string `yaml:"persona"`
	ProfileContext   string `yaml:"profile_context"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Pipeline stages block up to the provider timeout, so the write
		// window covers several sequential LLM calls.
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = "twinrag:"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "remote"
	}
	if c.Embedding.PadTo <= 0 {
		c.Embedding.PadTo = 1536
	}
	if c.Embedding.OpenAI.Model == "" {
		c.Embedding.OpenAI.Model = "text-embedding-3-small"
	}
	if c.Embedding.OpenAI.Dimensions <= 0 {
		c.Embedding.OpenAI.Dimensions = 1536
	}
	if c.Embedding.Ollama.BaseURL == "" {
		c.Embedding.Ollama.BaseURL = "http://localhost:11434"
	}
	if c.Embedding.Ollama.Model == "" {
		c.Embedding.Ollama.Model = "all-minilm"
	}
	if c.Embedding.Ollama.Dimensions <= 0 {
		c.Embedding.Ollama.Dimensions = 384
	}
	if c.Embedding.HNSWM <= 0 {
		c.Embedding.HNSWM = 16
	}
	if c.Embedding.HNSWEFConstruct <= 0 {
		c.Embedding.HNSWEFConstruct = 200
	}
	if c.Pipeline.TopK <= 0 {
		c.Pipeline.TopK = 3
	}
	if c.Pipeline.MaxTopK <= 0 {
		c.Pipeline.MaxTopK = 10
	}
}

// Validate checks the configuration for correctness. Missing credentials for
// the active configuration are a startup-time fatal error, not a per-request
// error.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Store.Addrs) == 0 {
		return fmt.Errorf("store.addrs is required")
	}

	switch c.Embedding.Provider {
	case "local":
		// Ollama needs no credentials.
	case "remote":
		if c.Embedding.OpenAI.APIKey == "" {
			return fmt.Errorf("embedding.openai.api_key is required for the remote provider")
		}
	default:
		return fmt.Errorf("embedding.provider must be \"local\" or \"remote\", got %q", c.Embedding.Provider)
	}

	if c.LLM.Primary == "" {
		return fmt.Errorf("llm.primary is required")
	}
	if err := c.validateProvider(c.LLM.Primary); err != nil {
		return err
	}
	if c.LLM.Secondary != "" {
		if c.LLM.Secondary == c.LLM.Primary {
			return fmt.Errorf("llm.secondary must differ from llm.primary")
		}
		if err := c.validateProvider(c.LLM.Secondary); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateProvider(name string) error {
	p, ok := c.LLM.Providers[name]
	if !ok {
		return fmt.Errorf("llm.providers.%s is not defined", name)
	}
	if p.APIKey == "" {
		return fmt.Errorf("llm.providers.%s.api_key is required", name)
	}
	if p.Model == "" {
		return fmt.Errorf("llm.providers.%s.model is required", name)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

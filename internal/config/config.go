package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"movierag/internal/synthesis"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ExperimentConfig names the run and selects the text-to-embed strategy.
type ExperimentConfig struct {
	Name        string `yaml:"name"`
	TextToEmbed string `yaml:"text_to_embed"`
	Workers     int    `yaml:"workers"`
}

// DatasetConfig points at the movie catalog.
type DatasetConfig struct {
	Path      string `yaml:"path"`
	Delimiter string `yaml:"delimiter"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type    string         `yaml:"type"`
	Qdrant  *QdrantConfig  `yaml:"qdrant,omitempty"`
	Chromem *ChromemConfig `yaml:"chromem,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	APIKey      string `yaml:"api_key"`
	UseTLS      bool   `yaml:"use_tls"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ChromemConfig configures the embedded chromem-go store.
type ChromemConfig struct {
	Path       string `yaml:"path"`
	Compress   bool   `yaml:"compress"`
	Collection string `yaml:"collection"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Experiment  ExperimentConfig  `yaml:"experiment"`
	Dataset     DatasetConfig     `yaml:"dataset"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/movierag/config.yaml.
// If neither exists, it writes defaults to ~/.config/movierag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects component names no factory knows about.
func (c *AppConfig) Validate() error {
	if _, err := synthesis.Lookup(c.Experiment.TextToEmbed); err != nil {
		return fmt.Errorf("%w: experiment.text_to_embed: %v", ErrInvalidConfig, err)
	}
	switch c.Embedder.Type {
	case "tfidf":
	case "openai":
		if c.Embedder.OpenAI == nil {
			return fmt.Errorf("%w: embedder.openai section missing", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown embedder %q", ErrInvalidConfig, c.Embedder.Type)
	}
	switch c.VectorStore.Type {
	case "memory":
	case "qdrant":
		if c.VectorStore.Qdrant == nil {
			return fmt.Errorf("%w: vector_store.qdrant section missing", ErrInvalidConfig)
		}
	case "chromem":
		if c.VectorStore.Chromem == nil {
			return fmt.Errorf("%w: vector_store.chromem section missing", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown vector store %q", ErrInvalidConfig, c.VectorStore.Type)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "movierag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Experiment:  ExperimentConfig{Name: "default", TextToEmbed: synthesis.NameSynopsis, Workers: 1},
		Dataset:     DatasetConfig{Path: "movies.csv", Delimiter: ","},
		Embedder:    EmbedderConfig{Type: "tfidf"},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Logging:     LoggingConfig{Level: "info", Format: "console"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Experiment.Name == "" {
		cfg.Experiment.Name = "default"
	}
	if cfg.Experiment.TextToEmbed == "" {
		cfg.Experiment.TextToEmbed = synthesis.NameSynopsis
	}
	if cfg.Experiment.Workers <= 0 {
		cfg.Experiment.Workers = 1
	}
	if cfg.Dataset.Delimiter == "" {
		cfg.Dataset.Delimiter = ","
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	}
	if q := cfg.VectorStore.Qdrant; q != nil {
		if q.Host == "" {
			q.Host = "localhost"
		}
		if q.Port == 0 {
			q.Port = 6334
		}
		if q.Collection == "" {
			q.Collection = "movies_" + cfg.Experiment.Name
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}
	if c := cfg.VectorStore.Chromem; c != nil {
		if c.Path == "" {
			c.Path = filepath.Join(".movierag", "chromem")
		}
		if c.Collection == "" {
			c.Collection = "movies_" + cfg.Experiment.Name
		}
	}
}

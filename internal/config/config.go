// Package config loads and merges the core engine's layered configuration:
// built-in defaults, the global ~/.paranoid/config.json, and the project's
// .paranoid-coder/config.json.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// IgnoreConfig controls the ignore matcher (§4.B).
type IgnoreConfig struct {
	UseGitignore       bool     `mapstructure:"use_gitignore" json:"use_gitignore"`
	BuiltinPatterns    []string `mapstructure:"builtin_patterns" json:"builtin_patterns"`
	AdditionalPatterns []string `mapstructure:"additional_patterns" json:"additional_patterns"`
}

// InvalidationConfig controls smart re-summarization thresholds (§4.E).
type InvalidationConfig struct {
	CallersThreshold            int  `mapstructure:"callers_threshold" json:"callers_threshold"`
	CalleesThreshold            int  `mapstructure:"callees_threshold" json:"callees_threshold"`
	ReSummarizeOnImportsChange  bool `mapstructure:"re_summarize_on_imports_change" json:"re_summarize_on_imports_change"`
}

// LoggingConfig controls the ambient logger.
type LoggingConfig struct {
	Level string `mapstructure:"level" json:"level"`
}

// Config is the fully merged, immutable configuration for a command run.
type Config struct {
	DefaultModel            string `mapstructure:"default_model" json:"default_model"`
	DefaultEmbeddingModel   string `mapstructure:"default_embedding_model" json:"default_embedding_model"`
	DefaultClassifierModel  string `mapstructure:"default_classifier_model" json:"default_classifier_model"`
	OllamaHost              string `mapstructure:"ollama_host" json:"ollama_host"`
	DefaultContextLevel     int    `mapstructure:"default_context_level" json:"default_context_level"`

	Invalidation InvalidationConfig `mapstructure:"invalidation" json:"invalidation"`
	Ignore       IgnoreConfig       `mapstructure:"ignore" json:"ignore"`
	Logging      LoggingConfig      `mapstructure:"logging" json:"logging"`

	// WorkerCount bounds the job runner's worker pool (§5).
	WorkerCount int `mapstructure:"worker_count" json:"worker_count"`
	// ModelTimeoutSeconds bounds each model-host call (§5).
	ModelTimeoutSeconds int `mapstructure:"model_timeout_seconds" json:"model_timeout_seconds"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		DefaultModel:           "qwen2.5-coder:7b",
		DefaultEmbeddingModel:  "nomic-embed-text",
		DefaultClassifierModel: "qwen2.5-coder-cpu:1.5b",
		OllamaHost:             "http://localhost:11434",
		DefaultContextLevel:    0,
		Invalidation: InvalidationConfig{
			CallersThreshold:           3,
			CalleesThreshold:           3,
			ReSummarizeOnImportsChange: true,
		},
		Ignore: IgnoreConfig{
			UseGitignore:       true,
			BuiltinPatterns:    []string{".git/", ".paranoid-coder/"},
			AdditionalPatterns: []string{},
		},
		Logging:             LoggingConfig{Level: "info"},
		WorkerCount:         4,
		ModelTimeoutSeconds: 120,
	}
}

func globalConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".paranoid")
}

// GlobalConfigPath returns ~/.paranoid/config.json.
func GlobalConfigPath() string {
	dir := globalConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.json")
}

func newViperFor(defaults *Config) *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetDefault("default_model", defaults.DefaultModel)
	v.SetDefault("default_embedding_model", defaults.DefaultEmbeddingModel)
	v.SetDefault("default_classifier_model", defaults.DefaultClassifierModel)
	v.SetDefault("ollama_host", defaults.OllamaHost)
	v.SetDefault("default_context_level", defaults.DefaultContextLevel)
	v.SetDefault("invalidation.callers_threshold", defaults.Invalidation.CallersThreshold)
	v.SetDefault("invalidation.callees_threshold", defaults.Invalidation.CalleesThreshold)
	v.SetDefault("invalidation.re_summarize_on_imports_change", defaults.Invalidation.ReSummarizeOnImportsChange)
	v.SetDefault("ignore.use_gitignore", defaults.Ignore.UseGitignore)
	v.SetDefault("ignore.builtin_patterns", defaults.Ignore.BuiltinPatterns)
	v.SetDefault("ignore.additional_patterns", defaults.Ignore.AdditionalPatterns)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("worker_count", defaults.WorkerCount)
	v.SetDefault("model_timeout_seconds", defaults.ModelTimeoutSeconds)
	return v
}

func mergeFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil // missing file is not an error; defaults stand
	}
	v.SetConfigFile(path)
	return v.MergeInConfig()
}

// Load merges built-in defaults, the global config file, and (if projectRoot
// is non-empty) the project's local config file, in that order. The result
// is read once per command and treated as immutable thereafter (§5).
func Load(projectRoot string) (*Config, error) {
	defaults := Default()
	v := newViperFor(defaults)

	if err := mergeFile(v, GlobalConfigPath()); err != nil {
		return nil, err
	}
	if projectRoot != "" {
		if err := mergeFile(v, filepath.Join(projectRoot, ".paranoid-coder", "config.json")); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

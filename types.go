package main

import (
	"time"

	"sketch-editor/entities/document"
	"sketch-editor/tools/llm"
	"sketch-editor/tools/logger"
)

// StudioConfig holds configuration for the studio. Values come from the
// config file, then the environment, then command line flags.
type StudioConfig struct {
	Provider          string        `yaml:"provider" env:"SKETCH_PROVIDER"`
	Model             string        `yaml:"model" env:"SKETCH_MODEL"`
	BaseURL           string        `yaml:"base_url" env:"SKETCH_BASE_URL"`
	AnthropicKey      string        `yaml:"-" env:"ANTHROPIC_API_KEY"`
	OpenAIKey         string        `yaml:"-" env:"OPENAI_API_KEY"`
	Timeout           time.Duration `yaml:"timeout" env:"SKETCH_TIMEOUT"`
	OutputDir         string        `yaml:"output_dir" env:"SKETCH_OUTPUT_DIR"`
	HistoryLimit      int           `yaml:"history_limit" env:"SKETCH_HISTORY_LIMIT"`
	StrictReferences  bool          `yaml:"strict_references" env:"SKETCH_STRICT_REFERENCES"`
	RevalidatePatches bool          `yaml:"revalidate_patches" env:"SKETCH_REVALIDATE_PATCHES"`
	MaxRetries        int           `yaml:"max_retries" env:"SKETCH_MAX_RETRIES"`
	LogLevel          string        `yaml:"log_level" env:"SKETCH_LOG_LEVEL"`
	VerboseLogging    bool          `yaml:"verbose" env:"SKETCH_VERBOSE"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() StudioConfig {
	return StudioConfig{
		Provider:     llm.ProviderAnthropic,
		OutputDir:    "./output",
		HistoryLimit: 50,
		MaxRetries:   2,
		Timeout:      5 * time.Minute,
		LogLevel:     "info",
	}
}

// Level returns the minimum log level; verbose forces debug.
func (c StudioConfig) Level() (logger.Level, error) {
	if c.VerboseLogging {
		return logger.LevelDebug, nil
	}
	if c.LogLevel == "" {
		return logger.LevelInfo, nil
	}
	return logger.ParseLevel(c.LogLevel)
}

// Policy returns the document mutate policy.
func (c StudioConfig) Policy() document.Policy {
	return document.Policy{
		StrictReferences:  c.StrictReferences,
		RevalidatePatches: c.RevalidatePatches,
	}
}

// LLMConfig returns the assistant client settings for the chosen provider.
func (c StudioConfig) LLMConfig() llm.Config {
	key := c.AnthropicKey
	if c.Provider == llm.ProviderOpenAI {
		key = c.OpenAIKey
	}
	return llm.Config{
		Provider: c.Provider,
		APIKey:   key,
		Model:    c.Model,
		BaseURL:  c.BaseURL,
		Timeout:  c.Timeout,
	}
}

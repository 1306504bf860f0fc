package model

import (
	"os"
	"path/filepath"
	"strings"
)

// Config is the complete notetasks configuration
type Config struct {
	Notes       NotesConfig       `yaml:"notes" mapstructure:"notes"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	CalDAV      CalDAVConfig      `yaml:"caldav" mapstructure:"caldav"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// NotesConfig controls which notes are scanned
type NotesConfig struct {
	InputFolder    string   `yaml:"input_folder" mapstructure:"input_folder"`
	ExcludeFolders []string `yaml:"exclude_folders" mapstructure:"exclude_folders"`
	Extension      string   `yaml:"extension" mapstructure:"extension"`
}

// LLMConfig selects and tunes the task extraction model
type LLMConfig struct {
	Provider      string  `yaml:"provider" mapstructure:"provider"` // ollama, openai, anthropic
	Model         string  `yaml:"model,omitempty" mapstructure:"model"`
	BaseURL       string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	APIKey        string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Timeout       int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens     int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	ContextWindow int     `yaml:"context_window" mapstructure:"context_window"` // ollama num_ctx
	Temperature   float64 `yaml:"temperature" mapstructure:"temperature"`
	PromptFile    string  `yaml:"prompt_file,omitempty" mapstructure:"prompt_file"`
	Delay         float64 `yaml:"delay" mapstructure:"delay"` // seconds between LLM calls
	HTTPProxy     string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string  `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"` // comma-separated hosts reached directly
}

// CalDAVConfig points at the remote task list
type CalDAVConfig struct {
	URL              string `yaml:"url" mapstructure:"url"`
	Username         string `yaml:"username" mapstructure:"username"`
	Password         string `yaml:"password,omitempty" mapstructure:"password"`
	TodoList         string `yaml:"todo_list" mapstructure:"todo_list"`
	CheckExisting    bool   `yaml:"check_existing" mapstructure:"check_existing"`
	InsecureFallback bool   `yaml:"insecure_fallback" mapstructure:"insecure_fallback"`
	Timeout          int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	HTTPProxy        string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy       string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy          string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls caching of LLM responses
type CacheConfig struct {
	Enabled          bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir              string `yaml:"dir" mapstructure:"dir"`
	MemoryTTLMinutes int    `yaml:"memory_ttl_minutes" mapstructure:"memory_ttl_minutes"`
	DiskTTLHours     int    `yaml:"disk_ttl_hours" mapstructure:"disk_ttl_hours"`
}

// ConcurrencyConfig sizes the note worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig controls log output
type LogConfig struct {
	Level    string `yaml:"level" mapstructure:"level"`
	Encoding string `yaml:"encoding" mapstructure:"encoding"`
	Dir      string `yaml:"dir,omitempty" mapstructure:"dir"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Notes: NotesConfig{
			InputFolder:    filepath.Join(home, "Documents", "Notes"),
			ExcludeFolders: []string{filepath.Join(home, "Documents", "Notes", "AI")},
			Extension:      ".md",
		},
		LLM: LLMConfig{
			Provider:      "ollama",
			Timeout:       120,
			MaxTokens:     4000,
			ContextWindow: 32000,
			Temperature:   0.1,
		},
		CalDAV: CalDAVConfig{
			TodoList:         "tasks",
			CheckExisting:    true,
			InsecureFallback: true,
			Timeout:          30,
		},
		Cache: CacheConfig{
			Enabled:          true,
			Dir:              filepath.Join(home, ".cache", "notetasks"),
			MemoryTTLMinutes: 60,
			DiskTTLHours:     24 * 7,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// DefaultModel returns the model used when none is configured
func DefaultModel(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return "gpt-3.5-turbo"
	case "anthropic", "claude":
		return "claude-3-5-haiku-20241022"
	default:
		return "gemma:7b"
	}
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

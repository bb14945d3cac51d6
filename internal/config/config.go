package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	DefaultRoom string   `mapstructure:"default_room" yaml:"default_room"`
	Rooms       []string `mapstructure:"rooms" yaml:"rooms"`

	Ollama OllamaConfig `mapstructure:"ollama" yaml:"ollama"`
}

// OllamaConfig holds the AI backend settings.
type OllamaConfig struct {
	URL             string        `mapstructure:"url" yaml:"url"`
	Model           string        `mapstructure:"model" yaml:"model"`
	GenerateTimeout time.Duration `mapstructure:"generate_timeout" yaml:"generate_timeout"`
	ReadyAttempts   int           `mapstructure:"ready_attempts" yaml:"ready_attempts"`
	ReadyInterval   time.Duration `mapstructure:"ready_interval" yaml:"ready_interval"`
	PullAttempts    int           `mapstructure:"pull_attempts" yaml:"pull_attempts"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		DefaultRoom:       "general",
		Rooms:             []string{"general", "tech", "random"},
		Ollama: OllamaConfig{
			URL:             "http://localhost:11434",
			Model:           "llama3.2",
			GenerateTimeout: 30 * time.Second,
			ReadyAttempts:   10,
			ReadyInterval:   2 * time.Second,
			PullAttempts:    3,
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DefaultRoom != "" {
		c.DefaultRoom = other.DefaultRoom
	}
	if len(other.Rooms) != 0 {
		c.Rooms = other.Rooms
	}
	if other.Ollama.URL != "" {
		c.Ollama.URL = other.Ollama.URL
	}
	if other.Ollama.Model != "" {
		c.Ollama.Model = other.Ollama.Model
	}
	if other.Ollama.GenerateTimeout != 0 {
		c.Ollama.GenerateTimeout = other.Ollama.GenerateTimeout
	}
	if other.Ollama.ReadyAttempts != 0 {
		c.Ollama.ReadyAttempts = other.Ollama.ReadyAttempts
	}
	if other.Ollama.ReadyInterval != 0 {
		c.Ollama.ReadyInterval = other.Ollama.ReadyInterval
	}
	if other.Ollama.PullAttempts != 0 {
		c.Ollama.PullAttempts = other.Ollama.PullAttempts
	}
}

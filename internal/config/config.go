package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience" yaml:"jwt_audience"`

	ToxicityAPIURL string        `mapstructure:"toxicity_api_url" yaml:"toxicity_api_url"`
	EmotionAPIURL  string        `mapstructure:"emotion_api_url" yaml:"emotion_api_url"`
	SummaryAPIURL  string        `mapstructure:"summary_api_url" yaml:"summary_api_url"`
	ToxicityTimeout time.Duration `mapstructure:"toxicity_timeout" yaml:"toxicity_timeout"`
	EmotionTimeout  time.Duration `mapstructure:"emotion_timeout" yaml:"emotion_timeout"`
	SummaryTimeout  time.Duration `mapstructure:"summary_timeout" yaml:"summary_timeout"`

	MessageLimit int           `mapstructure:"message_limit" yaml:"message_limit"`
	TimeWindow   time.Duration `mapstructure:"time_window" yaml:"time_window"`

	MoodWindow    int `mapstructure:"mood_window" yaml:"mood_window"`
	SummaryWindow int `mapstructure:"summary_window" yaml:"summary_window"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",

		DatabasePath: "moodchat.db",

		JWTSecret:   "change-me",
		JWTIssuer:   "moodchat",
		JWTAudience: "moodchat-clients",

		ToxicityAPIURL:  "http://localhost:8002",
		EmotionAPIURL:   "http://localhost:8001",
		SummaryAPIURL:   "http://localhost:8003",
		ToxicityTimeout: 30 * time.Second,
		EmotionTimeout:  30 * time.Second,
		SummaryTimeout:  60 * time.Second,

		MessageLimit: 5,
		TimeWindow:   10 * time.Second,

		MoodWindow:    30,
		SummaryWindow: 50,
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
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
	if other.ToxicityAPIURL != "" {
		c.ToxicityAPIURL = other.ToxicityAPIURL
	}
	if other.EmotionAPIURL != "" {
		c.EmotionAPIURL = other.EmotionAPIURL
	}
	if other.SummaryAPIURL != "" {
		c.SummaryAPIURL = other.SummaryAPIURL
	}
	if other.MessageLimit != 0 {
		c.MessageLimit = other.MessageLimit
	}
	if other.TimeWindow != 0 {
		c.TimeWindow = other.TimeWindow
	}
}

// Package config handles objbench configuration loading and management.
package config

import "time"

// Config holds all converter settings.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Upload  UploadConfig  `yaml:"upload"`
	Parser  ParserConfig  `yaml:"parser"`
	History HistoryConfig `yaml:"history"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// UploadConfig holds limits applied before a file reaches the parser.
type UploadConfig struct {
	MaxBytes int64  `yaml:"max_bytes"`
	Charset  string `yaml:"charset"` // Fallback when the file has no BOM
}

// ParserConfig selects the OBJ parsing policy.
type ParserConfig struct {
	Mode          string `yaml:"mode"` // "permissive" or "strict"
	ValidateFaces bool   `yaml:"validate_faces"`
}

// HistoryConfig holds conversion history settings.
type HistoryConfig struct {
	Capacity     int `yaml:"capacity"`
	DefaultLimit int `yaml:"default_limit"`
}

// BatchConfig holds batch conversion settings.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Upload: UploadConfig{
			MaxBytes: 10 * 1024 * 1024,
			Charset:  "utf-8",
		},
		Parser: ParserConfig{
			Mode:          "permissive",
			ValidateFaces: false,
		},
		History: HistoryConfig{
			Capacity:     1000,
			DefaultLimit: 10,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
			JSON:    false,
		},
	}
}

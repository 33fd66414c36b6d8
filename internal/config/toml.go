// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"
)

// Defaults used when neither the config file, the environment nor flags set a value.
const (
	DefaultWords     = 25
	DefaultMinWords  = 10
	DefaultMaxWords  = 40
	DefaultCharLimit = 15
	DefaultFPS       = 60
	DefaultLogLevel  = "info"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Test TestConfig `toml:"test"`
}

// TestConfig maps typing test settings. Environment variables override
// file values.
type TestConfig struct {
	Words     int    `toml:"words" env:"TYPESPEED_WORDS"`
	MinWords  int    `toml:"min-words" env:"TYPESPEED_MIN_WORDS"`
	MaxWords  int    `toml:"max-words" env:"TYPESPEED_MAX_WORDS"`
	CharLimit int    `toml:"char-limit" env:"TYPESPEED_CHAR_LIMIT"`
	FPS       int    `toml:"fps" env:"TYPESPEED_FPS"`
	WordList  string `toml:"wordlist" env:"TYPESPEED_WORDLIST"`
	History   bool   `toml:"history" env:"TYPESPEED_HISTORY"`
	LogFile   string `toml:"log-file" env:"TYPESPEED_LOG_FILE"`
	LogLevel  string `toml:"log-level" env:"TYPESPEED_LOG_LEVEL"`
}

// Defaults returns the built-in settings.
func Defaults() FileConfig {
	return FileConfig{Test: TestConfig{
		Words:     DefaultWords,
		MinWords:  DefaultMinWords,
		MaxWords:  DefaultMaxWords,
		CharLimit: DefaultCharLimit,
		FPS:       DefaultFPS,
		WordList:  DefaultWordListPath(),
		LogLevel:  DefaultLogLevel,
	}}
}

// LoadConfig reads a TOML config from the given path on top of the defaults,
// then applies environment overrides. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	cfg := Defaults()
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := env.Parse(&cfg.Test); err != nil {
		return FileConfig{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

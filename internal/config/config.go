// Package config loads the optional burrow configuration file.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "BURROW_CONFIG"

// DefaultPrompt is the shell prompt used when none is configured.
// \u is the user, \h the host, \w the working directory and \$ is '#'
// for root and '$' otherwise.
const DefaultPrompt = `\u@\h|\w\$ `

// Config represents the optional burrow configuration file.
type Config struct {
	Cp    CpConfig    `toml:"cp"`
	Shell ShellConfig `toml:"shell"`
	Theme ThemeConfig `toml:"theme"`
}

// CpConfig holds defaults for cp flags that were not given explicitly.
type CpConfig struct {
	Interactive *bool    `toml:"interactive"`
	Preserve    *bool    `toml:"preserve"`
	Progress    *bool    `toml:"progress"`
	NoHidden    *bool    `toml:"no_hidden"`
	Verify      *bool    `toml:"verify"`
	BWLimit     *string  `toml:"bwlimit"`
	Exclude     []string `toml:"exclude"`
}

// ShellConfig configures the interactive shell.
type ShellConfig struct {
	Prompt *string `toml:"prompt"`
}

// ThemeConfig holds optional color overrides.
type ThemeConfig struct {
	Green  *string `toml:"green"`
	Blue   *string `toml:"blue"`
	Yellow *string `toml:"yellow"`
	Red    *string `toml:"red"`
	Teal   *string `toml:"teal"`
	Muted  *string `toml:"muted"`
	Dim    *string `toml:"dim"`
	Bright *string `toml:"bright"`
}

// PromptOrDefault returns the configured prompt template.
func (s ShellConfig) PromptOrDefault() string {
	if s.Prompt == nil {
		return DefaultPrompt
	}
	return *s.Prompt
}

// Path returns the resolved path to the config file.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, "burrow", "config.toml")
}

// Load reads the config file from Path. Returns a zero Config (no error)
// if the file does not exist. Config is always optional.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config file at path, treating a missing file as empty.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}

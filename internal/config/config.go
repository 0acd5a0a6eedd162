// Package config loads and saves the sendtg credentials file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the Bot API base including the bot prefix; the token is
// appended directly, so the trailing "/bot" matters.
const DefaultAPIURL = "https://api.telegram.org/bot"

const (
	configDirName  = "sendtg"
	configFileName = "sendtg.yaml"
)

// Config holds the persisted credentials. All fields are optional in the
// file; Validate enforces presence after flag merging.
type Config struct {
	APIURL   string `yaml:"api_url"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// Defaults fills unset fields.
func (c *Config) Defaults() {
	if strings.TrimSpace(c.APIURL) == "" {
		c.APIURL = DefaultAPIURL
	}
}

// Validate checks that every required field is present.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("config: API URL is required")
	}
	if strings.TrimSpace(c.BotToken) == "" {
		return errors.New("config: bot token is required, run `sendtg setup`")
	}
	if strings.TrimSpace(c.ChatID) == "" {
		return errors.New("config: chat ID is required, run `sendtg setup`")
	}
	return nil
}

// Path returns the config file location:
// $XDG_CONFIG_HOME/sendtg/sendtg.yaml, falling back to ~/.config.
func Path() (string, error) {
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdg != "" {
		return filepath.Join(xdg, configDirName, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", configDirName, configFileName), nil
}

// envPattern matches ${VAR} and ${VAR:-default} expressions.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// Load reads the YAML config at path, expanding ${VAR} and ${VAR:-default}
// references from the environment. A missing file is not an error: it yields
// an empty config and found=false.
func Load(path string) (cfg *Config, found bool, err error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, false, fmt.Errorf("config: expanding variables in %s: %w", path, err)
	}

	cfg = &Config{}
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, false, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, true, nil
}

// expandEnv replaces ${VAR} and ${VAR:-default} patterns in raw YAML bytes.
// Returns an error listing all unresolved variables.
func expandEnv(raw []byte) ([]byte, error) {
	var errs []error

	result := envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		subs := envPattern.FindSubmatch(match)
		name := string(subs[1])

		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		if subs[2] != nil {
			return subs[2]
		}
		errs = append(errs, fmt.Errorf("unresolved variable: %s", name))
		return match
	})

	return result, errors.Join(errs...)
}

// Save writes the config to path, creating parent directories. The file is
// user-only: it holds the bot token.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: serialize: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

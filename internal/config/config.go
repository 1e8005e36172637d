// Package config handles loading and validating git-groom configuration
// from files, environment variables, and CLI flag overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agrahamlincoln/gitgroom/internal/sanitize"
)

// GitHubConfig holds settings for the GitHub default-branch lookup.
type GitHubConfig struct {
	DefaultBranchLookup bool   `yaml:"default_branch_lookup"`
	Token               string `yaml:"token"`
}

// Config holds all git-groom configuration.
type Config struct {
	Remote    string       `yaml:"remote"`    // remote inspected by the remote pass
	Protected []string     `yaml:"protected"` // names never offered for deletion
	Workers   int          `yaml:"workers"`   // 0 deletes every candidate at once
	Metrics   bool         `yaml:"metrics"`   // opt-in local usage log
	GitHub    GitHubConfig `yaml:"github"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Remote: "origin",
		GitHub: GitHubConfig{
			DefaultBranchLookup: true,
		},
	}
}

// Load reads configuration from the config file and environment variables.
// Values are layered: defaults < config file < environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	if err := loadFile(&cfg); err != nil {
		return cfg, err
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Remote == "" {
		return fmt.Errorf("remote must not be empty")
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d (must be 0 or more)", c.Workers)
	}
	for _, name := range c.Protected {
		if sanitize.Sanitize(name) != name {
			return fmt.Errorf("invalid protected branch name %q", name)
		}
	}
	return nil
}

// Path returns the path to the config file.
func Path() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "git-groom", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "git-groom", "config.yaml")
}

func loadFile(cfg *Config) error {
	path := filepath.Clean(Path())
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // no config file is fine
	}
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GIT_GROOM_REMOTE"); v != "" {
		cfg.Remote = v
	}
	if v := os.Getenv("GIT_GROOM_PROTECTED"); v != "" {
		cfg.Protected = splitList(v)
	}
	if v := os.Getenv("GIT_GROOM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("GIT_GROOM_METRICS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics = b
		}
	}
	if v := os.Getenv("GIT_GROOM_GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" && cfg.GitHub.Token == "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("GH_TOKEN"); v != "" && cfg.GitHub.Token == "" {
		cfg.GitHub.Token = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ExpandHome replaces a leading ~/ in path with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

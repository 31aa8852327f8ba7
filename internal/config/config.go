// Package config loads and validates the per-run discourse configuration.
// A run is described by a single YAML file naming the topic, the two
// participants, the mode, and the loop parameters. The file is read through
// viper so defaults and DISCOURSE_* environment overrides apply uniformly.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Run modes supported by the orchestrator.
const (
	// ModeDebate alternates two participants arguing a topic.
	ModeDebate = "debate"
	// ModeWorkshop drives an author/editor revision loop over a document.
	ModeWorkshop = "workshop"
)

// Participant describes one of the two agents in a run.
type Participant struct {
	// Name is the display name used in prompts and artifact headings.
	Name string `mapstructure:"name"`
	// Role is the free-text role description woven into the system prompt.
	Role string `mapstructure:"role"`
}

// Config represents a complete run configuration.
type Config struct {
	// Topic is the subject of the debate or the workshop document.
	Topic string `mapstructure:"topic"`
	// Mode selects the orchestrator variant: "debate" or "workshop".
	Mode string `mapstructure:"mode"`
	// Brief is the writing brief for workshop mode (required there).
	Brief string `mapstructure:"brief"`
	// SourceFile optionally seeds the workshop document from an existing file.
	SourceFile string `mapstructure:"source_file"`
	// Participants maps role keys to participants. Debate mode uses keys
	// "a" and "b"; workshop mode uses "author" and "editor".
	Participants map[string]Participant `mapstructure:"participants"`
	// MaxTurns bounds the total number of turns in the run.
	MaxTurns int `mapstructure:"max_turns"`
	// CheckInInterval is the turn cadence for human check-ins.
	CheckInInterval int `mapstructure:"check_in_interval"`
	// TurnTimeoutSeconds bounds each backend invocation.
	TurnTimeoutSeconds int `mapstructure:"turn_timeout"`
	// OutputDir is the base directory for run artifacts.
	OutputDir string `mapstructure:"output_dir"`
	// Claude configures the backend CLI invocation.
	Claude ClaudeConfig `mapstructure:"claude"`
	// Logging configures the per-run debug log.
	Logging LoggingConfig `mapstructure:"logging"`

	// SourcePath is the absolute path of the loaded config file. It is set
	// by LoadFile, not by the file itself, and is used to snapshot the
	// config into the run directory.
	SourcePath string `mapstructure:"-"`
}

// ClaudeConfig controls how the claude CLI is invoked.
type ClaudeConfig struct {
	// Command is the backend executable (default: "claude").
	Command string `mapstructure:"command"`
	// PermissionMode is passed through as --permission-mode
	// (default: "bypassPermissions").
	PermissionMode string `mapstructure:"permission_mode"`
}

// LoggingConfig controls the per-run debug log.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info").
	Level string `mapstructure:"level"`
}

// RoleKeys returns the fixed participant role keys for a mode, in speaking
// order. Debate mode alternates a/b; workshop mode pairs author/editor.
func RoleKeys(mode string) []string {
	if mode == ModeWorkshop {
		return []string{"author", "editor"}
	}
	return []string{"a", "b"}
}

// ValidModes returns the list of valid mode values.
func ValidModes() []string {
	return []string{ModeDebate, ModeWorkshop}
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mode:               ModeDebate,
		MaxTurns:           10,
		CheckInInterval:    4,
		TurnTimeoutSeconds: 300,
		OutputDir:          "./conversations",
		Claude: ClaudeConfig{
			Command:        "claude",
			PermissionMode: "bypassPermissions",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// setDefaults registers default values with the given viper instance.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("mode", defaults.Mode)
	v.SetDefault("max_turns", defaults.MaxTurns)
	v.SetDefault("check_in_interval", defaults.CheckInInterval)
	v.SetDefault("turn_timeout", defaults.TurnTimeoutSeconds)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("claude.command", defaults.Claude.Command)
	v.SetDefault("claude.permission_mode", defaults.Claude.PermissionMode)
	v.SetDefault("logging.level", defaults.Logging.Level)
}

// LoadFile reads a run configuration from a YAML file, applies defaults and
// DISCOURSE_* environment overrides, and validates the result. Validation
// failures are returned as ValidationErrors before any run state is created.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("DISCOURSE")
	// Replace dots with underscores for nested keys in env vars
	// e.g., DISCOURSE_CLAUDE_COMMAND for claude.command
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err == nil {
		cfg.SourcePath = abs
	}

	// Role descriptions commonly carry trailing newlines from YAML block
	// scalars; trim them so prompts stay tight.
	for key, p := range cfg.Participants {
		p.Role = strings.TrimSpace(p.Role)
		cfg.Participants[key] = p
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// TurnTimeout returns the per-invocation timeout as a time.Duration.
func (c *Config) TurnTimeout() time.Duration {
	return time.Duration(c.TurnTimeoutSeconds) * time.Second
}

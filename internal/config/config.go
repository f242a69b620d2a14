// Package config loads default scan settings from a YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/gscandir/internal/model"
	"github.com/sadopc/gscandir/internal/scanner"
	"gopkg.in/yaml.v3"
)

// SSHConfig holds defaults for remote scans.
type SSHConfig struct {
	// Port is the SSH port.
	Port int `yaml:"port"`

	// BatchMode disables interactive prompts.
	BatchMode bool `yaml:"batch_mode"`

	// Timeout bounds connection setup.
	Timeout time.Duration `yaml:"timeout"`

	IdentityFile string `yaml:"identity_file"`
	KnownHosts   string `yaml:"known_hosts"`
}

// Config represents gscandir configuration options.
type Config struct {
	Sorted bool `yaml:"sorted"`

	// Order is one of os, lexical or natural.
	Order string `yaml:"order"`

	SkipHidden bool `yaml:"skip_hidden"`

	// MaxDepth limits descent (0 = unlimited)
	MaxDepth int `yaml:"max_depth"`

	// MaxFileCount stops emitting files once reached (0 = unlimited)
	MaxFileCount int `yaml:"max_file_cnt"`

	DirInclude  []string `yaml:"dir_include"`
	DirExclude  []string `yaml:"dir_exclude"`
	FileInclude []string `yaml:"file_include"`
	FileExclude []string `yaml:"file_exclude"`

	CaseSensitive bool `yaml:"case_sensitive"`

	// Metadata is basic or ext.
	Metadata string `yaml:"metadata"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	SSH SSHConfig `yaml:"ssh"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Order:    model.OrderOS.String(),
		Metadata: scanner.MetadataBasic.String(),
		LogLevel: "warn",
		SSH: SSHConfig{
			Port:    22,
			Timeout: 15 * time.Second,
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gscandir", "config.yaml")
}

// Load loads configuration from path, merged over the defaults.
// A missing file yields the defaults without error; a malformed one fails.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Pointer fields tell an explicit false or zero apart from an absent key.
	type yamlSSH struct {
		Port         *int    `yaml:"port"`
		BatchMode    *bool   `yaml:"batch_mode"`
		Timeout      *string `yaml:"timeout"`
		IdentityFile *string `yaml:"identity_file"`
		KnownHosts   *string `yaml:"known_hosts"`
	}
	type yamlConfig struct {
		Sorted        *bool    `yaml:"sorted"`
		Order         *string  `yaml:"order"`
		SkipHidden    *bool    `yaml:"skip_hidden"`
		MaxDepth      *int     `yaml:"max_depth"`
		MaxFileCount  *int     `yaml:"max_file_cnt"`
		DirInclude    []string `yaml:"dir_include"`
		DirExclude    []string `yaml:"dir_exclude"`
		FileInclude   []string `yaml:"file_include"`
		FileExclude   []string `yaml:"file_exclude"`
		CaseSensitive *bool    `yaml:"case_sensitive"`
		Metadata      *string  `yaml:"metadata"`
		LogLevel      *string  `yaml:"log_level"`
		SSH           yamlSSH  `yaml:"ssh"`
	}

	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	setBool(&cfg.Sorted, y.Sorted)
	setString(&cfg.Order, y.Order)
	setBool(&cfg.SkipHidden, y.SkipHidden)
	setInt(&cfg.MaxDepth, y.MaxDepth)
	setInt(&cfg.MaxFileCount, y.MaxFileCount)
	cfg.DirInclude = y.DirInclude
	cfg.DirExclude = y.DirExclude
	cfg.FileInclude = y.FileInclude
	cfg.FileExclude = y.FileExclude
	setBool(&cfg.CaseSensitive, y.CaseSensitive)
	setString(&cfg.Metadata, y.Metadata)
	setString(&cfg.LogLevel, y.LogLevel)

	setInt(&cfg.SSH.Port, y.SSH.Port)
	setBool(&cfg.SSH.BatchMode, y.SSH.BatchMode)
	if y.SSH.Timeout != nil {
		timeout, err := time.ParseDuration(*y.SSH.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid ssh.timeout format %q: %w", *y.SSH.Timeout, err)
		}
		cfg.SSH.Timeout = timeout
	}
	setString(&cfg.SSH.IdentityFile, y.SSH.IdentityFile)
	setString(&cfg.SSH.KnownHosts, y.SSH.KnownHosts)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}
	if c.MaxFileCount < 0 {
		return fmt.Errorf("max_file_cnt must be >= 0, got %d", c.MaxFileCount)
	}
	if _, err := model.ParseOrder(c.Order); err != nil {
		return err
	}
	if _, err := ParseMetadata(c.Metadata); err != nil {
		return err
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.SSH.Port < 1 || c.SSH.Port > 65535 {
		return fmt.Errorf("ssh.port must be between 1 and 65535, got %d", c.SSH.Port)
	}
	if c.SSH.Timeout < 0 {
		return fmt.Errorf("ssh.timeout must be >= 0, got %v", c.SSH.Timeout)
	}
	return nil
}

// ParseMetadata parses the String form of a scanner.Metadata.
func ParseMetadata(s string) (scanner.Metadata, error) {
	switch s {
	case "", "basic":
		return scanner.MetadataBasic, nil
	case "ext":
		return scanner.MetadataExt, nil
	}
	return scanner.MetadataBasic, fmt.Errorf("unknown metadata %q, must be basic or ext", s)
}

// ToOptions converts the configuration into scan options for shape.
func (c *Config) ToOptions(shape scanner.Shape) (scanner.Options, error) {
	order, err := model.ParseOrder(c.Order)
	if err != nil {
		return scanner.Options{}, err
	}
	metadata, err := ParseMetadata(c.Metadata)
	if err != nil {
		return scanner.Options{}, err
	}

	opts := scanner.DefaultOptions()
	opts.Sorted = c.Sorted
	opts.Order = order
	opts.SkipHidden = c.SkipHidden
	opts.MaxDepth = c.MaxDepth
	opts.MaxFileCount = c.MaxFileCount
	opts.DirInclude = c.DirInclude
	opts.DirExclude = c.DirExclude
	opts.FileInclude = c.FileInclude
	opts.FileExclude = c.FileExclude
	opts.CaseSensitive = c.CaseSensitive
	opts.Shape = shape
	opts.Metadata = metadata
	return opts, nil
}

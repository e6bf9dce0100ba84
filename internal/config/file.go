package config

// YAML config file support (--config). Keys mirror the long flag names.
// File values apply only to flags the user did not pass on the command line,
// so CLI arguments always win.

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the CLI surface for YAML decoding. Pointer fields
// distinguish "absent" from zero values.
type fileConfig struct {
	Input     *string  `yaml:"input"`
	Output    *string  `yaml:"output"`
	Batch     *int     `yaml:"batch"`
	Prefix    *string  `yaml:"prefix"`
	Format    *string  `yaml:"format"`
	Level     *int     `yaml:"level"`
	Password  *string  `yaml:"password"`
	SplitSize *string  `yaml:"split-size"`
	Exclude   []string `yaml:"exclude"`
	Recursive *bool    `yaml:"recursive"`
	Threads   *int     `yaml:"threads"`
	Auto      *bool    `yaml:"auto"`
	DryRun    *bool    `yaml:"dry-run"`
	Force     *bool    `yaml:"force"`
	Verify    *bool    `yaml:"verify"`
	Metadata  *string  `yaml:"metadata"`
	Verbose   *bool    `yaml:"verbose"`
	Log       *string  `yaml:"log"`
}

// ApplyFileConfig reads a YAML config file and copies its values into cfg for
// every key the user did not already set via flags (per the set map of
// canonical flag names).
func ApplyFileConfig(cfg *Config, path string, set map[string]bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}

	if fc.Input != nil && cfg.InputDir == "" {
		cfg.InputDir = NormalizeDirArg(*fc.Input)
	}
	if fc.Output != nil && cfg.OutputDir == "" {
		cfg.OutputDir = NormalizeDirArg(*fc.Output)
	}
	if fc.Batch != nil && !set["batch"] {
		cfg.BatchSize = *fc.Batch
	}
	if fc.Prefix != nil && !set["prefix"] {
		cfg.Prefix = *fc.Prefix
	}
	if fc.Format != nil && !set["format"] {
		var fv formatValue
		fv.p = &cfg.Format
		if err := fv.Set(*fc.Format); err != nil {
			return fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if fc.Level != nil && !set["level"] {
		cfg.CompressionLevel = *fc.Level
	}
	if fc.Password != nil && !set["password"] {
		cfg.Password = *fc.Password
	}
	if fc.SplitSize != nil && !set["split-size"] {
		cfg.SplitSize = *fc.SplitSize
	}
	if len(fc.Exclude) > 0 && !set["exclude"] {
		cfg.Exclude = append(cfg.Exclude, fc.Exclude...)
	}
	if fc.Recursive != nil && !set["recursive"] {
		cfg.Recursive = *fc.Recursive
	}
	if fc.Threads != nil && !set["threads"] {
		cfg.Threads = *fc.Threads
	}
	if fc.Auto != nil && !set["auto"] {
		cfg.AutoConfirm = *fc.Auto
	}
	if fc.DryRun != nil && !set["dry-run"] {
		cfg.DryRun = *fc.DryRun
	}
	if fc.Force != nil && !set["force"] && *fc.Force {
		cfg.SkipExisting = false
	}
	if fc.Verify != nil && !set["verify"] {
		cfg.Verify = *fc.Verify
	}
	if fc.Metadata != nil && !set["metadata"] {
		cfg.MetadataFile = *fc.Metadata
	}
	if fc.Verbose != nil && !set["verbose"] {
		cfg.Verbose = *fc.Verbose
	}
	if fc.Log != nil && !set["log"] {
		cfg.LogFile = *fc.Log
	}
	return nil
}

// Package config loads the CLI configuration from bindery.yaml, BINDERY_
// environment variables and command line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bayleafwalker/bindery/internal/registry"
)

const (
	// FileName is the config file looked up in the working directory when no
	// explicit path is given.
	FileName = "bindery.yaml"
	// EnvPrefix prefixes every environment variable override.
	EnvPrefix = "BINDERY"
)

// Output formats.
const (
	OutputYAML = "yaml"
	OutputJSON = "json"
	OutputDOT  = "dot"
)

// Config is the resolved CLI configuration.
type Config struct {
	// Manifests are files or directories holding ModuleManifest documents.
	Manifests   []string    `mapstructure:"manifests"`
	Output      string      `mapstructure:"output"`
	Environment Environment `mapstructure:"environment"`
	// MetricsBindAddress serves Prometheus metrics while watching. Empty or
	// "0" disables the endpoint.
	MetricsBindAddress string `mapstructure:"metricsBindAddress"`
}

// Environment overrides the platform modules are resolved for. Empty fields
// fall back to the host.
type Environment struct {
	OS                    string   `mapstructure:"os"`
	Arch                  string   `mapstructure:"arch"`
	ExecutionEnvironments []string `mapstructure:"executionEnvironments"`
}

// Registry converts the environment into the registry's, filling blanks from
// the host.
func (e Environment) Registry() registry.Environment {
	env := registry.HostEnvironment()
	if e.OS != "" {
		env.OS = e.OS
	}
	if e.Arch != "" {
		env.Arch = e.Arch
	}
	env.ExecutionEnvironments = append([]string(nil), e.ExecutionEnvironments...)
	return env
}

func DefaultConfig() *Config {
	return &Config{
		Manifests: []string{"manifests"},
		Output:    OutputYAML,
	}
}

// LoadOptions selects where configuration comes from.
type LoadOptions struct {
	// ConfigFilePath is used exclusively when set and must exist.
	ConfigFilePath string
	// Flags are bound by key name. Only flags the user changed override the
	// file and environment.
	Flags *pflag.FlagSet
}

// Load resolves the configuration and returns it with the config file path
// that was read, or "" when none was.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("manifests", defaults.Manifests)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("environment.os", "")
	v.SetDefault("environment.arch", "")
	v.SetDefault("environment.executionEnvironments", []string{})
	v.SetDefault("metricsBindAddress", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for _, key := range []string{"manifests", "output", "metricsBindAddress"} {
			if f := opts.Flags.Lookup(flagName(key)); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, "", fmt.Errorf("bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	resolvedPath := ""
	switch {
	case opts.ConfigFilePath != "":
		if _, err := os.Stat(opts.ConfigFilePath); err != nil {
			return nil, "", fmt.Errorf("config file not found: %w", err)
		}
		v.SetConfigFile(opts.ConfigFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("read config %s: %w", opts.ConfigFilePath, err)
		}
		resolvedPath = opts.ConfigFilePath
	default:
		if _, err := os.Stat(FileName); err == nil {
			v.SetConfigFile(FileName)
			if err := v.ReadInConfig(); err != nil {
				return nil, "", fmt.Errorf("read config %s: %w", FileName, err)
			}
			resolvedPath = FileName
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, "", err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolvedPath, nil
}

// Validate rejects unknown output formats and an empty manifest list.
func (c *Config) Validate() error {
	switch c.Output {
	case OutputYAML, OutputJSON, OutputDOT:
	default:
		return fmt.Errorf("output: unsupported format %q (want yaml, json or dot)", c.Output)
	}
	if len(c.Manifests) == 0 {
		return errors.New("manifests: at least one path is required")
	}
	return nil
}

// flagName maps a config key to its command line flag.
func flagName(key string) string {
	if key == "metricsBindAddress" {
		return "metrics-bind-address"
	}
	return key
}

// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the endpoint credentials and redaction policy used by
// the CLI and the MCP server.
//
// Sources are layered, later ones winning: built-in defaults, the YAML
// file, then UNREALRPC_* environment variables (optionally seeded from a
// .env file). Command-line flags are applied on top by the caller.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tombee/unrealrpc/internal/operation/transport"
	"github.com/tombee/unrealrpc/internal/redact"
	"github.com/tombee/unrealrpc/internal/secrets"
	"github.com/tombee/unrealrpc/internal/unrealircd"
	rpcerrors "github.com/tombee/unrealrpc/pkg/errors"
)

// DefaultTimeout bounds each JSON-RPC call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Config is the resolved configuration for one JSON-RPC endpoint.
type Config struct {
	// Host is the JSON-RPC endpoint, e.g. https://irc.example.org:8600/api.
	Host string `yaml:"host" validate:"required,rpc_url"`

	// Username and Password may be secret references (env:NAME,
	// keychain:KEY or ${NAME}); see ResolveSecrets.
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password"`

	AllowSelfSigned bool `yaml:"allow_self_signed"`

	Timeout   time.Duration   `yaml:"timeout" validate:"gte=0"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Retry     RetryConfig     `yaml:"retry"`
	Redaction RedactionConfig `yaml:"redaction"`
	Audit     AuditConfig     `yaml:"audit"`
}

// AuditConfig controls the local log of mutating operations.
type AuditConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path of the SQLite database (default: $XDG_DATA_HOME/unrealrpc/audit.db).
	Path string `yaml:"path"`
}

// RateLimitConfig throttles outgoing calls on the client side.
type RateLimitConfig struct {
	// RequestsPerSecond of zero disables limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
	Burst             int     `yaml:"burst" validate:"gte=0"`
}

// RetryConfig controls retries of transport failures. The default is a
// single attempt since most mutating methods are not idempotent.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" validate:"gte=1"`
	InitialBackoff time.Duration `yaml:"initial_backoff" validate:"gte=0"`
	MaxBackoff     time.Duration `yaml:"max_backoff" validate:"gtefield=InitialBackoff"`
}

// RedactionConfig mirrors redact.Options with YAML-friendly pattern input.
type RedactionConfig struct {
	Enabled        bool        `yaml:"enabled"`
	IPs            bool        `yaml:"ips"`
	Emails         bool        `yaml:"emails"`
	Passwords      bool        `yaml:"passwords"`
	CustomPatterns PatternList `yaml:"custom_patterns"`
}

// Options converts the configuration to redactor options.
func (r RedactionConfig) Options() redact.Options {
	return redact.Options{
		Enabled:        r.Enabled,
		IPs:            r.IPs,
		Emails:         r.Emails,
		Passwords:      r.Passwords,
		CustomPatterns: []string(r.CustomPatterns),
	}
}

// PatternList is a list of custom redaction patterns. In YAML it may be
// written either as a sequence or as one comma-separated string.
type PatternList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *PatternList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*p = redact.ParsePatternList(value.Value)
		return nil
	case yaml.SequenceNode:
		var raw []string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		var list PatternList
		for _, s := range raw {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
		*p = list
		return nil
	default:
		return fmt.Errorf("line %d: custom_patterns must be a list or a comma-separated string", value.Line)
	}
}

// Default returns a Config with default values. Redaction is on for every
// category.
func Default() *Config {
	return &Config{
		Timeout: DefaultTimeout,
		Retry: RetryConfig{
			MaxAttempts:    1,
			InitialBackoff: time.Second,
			MaxBackoff:     30 * time.Second,
		},
		Redaction: RedactionConfig{
			Enabled:   true,
			IPs:       true,
			Emails:    true,
			Passwords: true,
		},
	}
}

// Load reads configuration from path, applies environment overrides and
// validates the result. An empty path means the default location; a missing
// file there is not an error.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadAuditPath resolves the audit database location from the file and
// environment without requiring a valid endpoint.
func LoadAuditPath(path string) (string, error) {
	cfg, err := load(path)
	if err != nil {
		return "", err
	}
	return cfg.AuditPath()
}

func load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := ConfigPath(); err == nil {
			path = p
		}
	}

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, &rpcerrors.ConfigError{
					Key:    "config_file",
					Reason: fmt.Sprintf("failed to load from %s", path),
					Cause:  err,
				}
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWithSecrets loads configuration and resolves secret references in the
// credential fields.
func LoadWithSecrets(ctx context.Context, path string, resolver *secrets.Resolver) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ResolveSecrets(ctx, resolver); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveSecrets replaces secret references in Username and Password with
// the values they point at.
func (c *Config) ResolveSecrets(ctx context.Context, resolver *secrets.Resolver) error {
	for _, field := range []struct {
		key   string
		value *string
	}{
		{"username", &c.Username},
		{"password", &c.Password},
	} {
		resolved, err := resolver.Resolve(ctx, *field.value)
		if err != nil {
			return &rpcerrors.ConfigError{
				Key:    field.key,
				Reason: "failed to resolve secret reference",
				Cause:  err,
			}
		}
		*field.value = resolved
	}
	return nil
}

func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// applyDefaults fills zero values left by a minimal config file.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = def.Retry.MaxAttempts
	}
	if c.Retry.InitialBackoff == 0 {
		c.Retry.InitialBackoff = def.Retry.InitialBackoff
	}
	if c.Retry.MaxBackoff == 0 {
		c.Retry.MaxBackoff = def.Retry.MaxBackoff
	}
}

// AuditPath returns the audit database location, defaulting to the XDG
// data directory.
func (c *Config) AuditPath() (string, error) {
	if c.Audit.Path != "" {
		return c.Audit.Path, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "audit.db"), nil
}

// PatternWarnings reports custom redaction patterns that will be skipped
// because they do not compile.
func (c *Config) PatternWarnings() []string {
	var warnings []string
	for _, p := range c.Redaction.CustomPatterns {
		if _, err := redact.CompileCustom(p); err != nil {
			warnings = append(warnings, fmt.Sprintf("custom pattern %q will be skipped: %v", p, err))
		}
	}
	return warnings
}

// ClientConfig builds the unrealircd client configuration.
func (c *Config) ClientConfig(logger *slog.Logger) unrealircd.Config {
	cfg := unrealircd.Config{
		Credentials: unrealircd.Credentials{
			Host:            c.Host,
			Username:        c.Username,
			Password:        c.Password,
			AllowSelfSigned: c.AllowSelfSigned,
		},
		Redaction: c.Redaction.Options(),
		Timeout:   c.Timeout,
		RateLimit: c.RateLimit.RequestsPerSecond,
		RateBurst: c.RateLimit.Burst,
		Logger:    logger,
	}
	if c.Retry.MaxAttempts > 1 {
		retry := transport.DefaultRetryConfig()
		retry.MaxAttempts = c.Retry.MaxAttempts
		retry.InitialBackoff = c.Retry.InitialBackoff
		retry.MaxBackoff = c.Retry.MaxBackoff
		cfg.Retry = retry
	}
	return cfg
}

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

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tombee/unrealrpc/internal/redact"
	rpcerrors "github.com/tombee/unrealrpc/pkg/errors"
)

// Environment variables read by loadFromEnv.
const (
	EnvHost            = "UNREALRPC_HOST"
	EnvUsername        = "UNREALRPC_USERNAME"
	EnvPassword        = "UNREALRPC_PASSWORD"
	EnvAllowSelfSigned = "UNREALRPC_ALLOW_SELF_SIGNED"
	EnvTimeout         = "UNREALRPC_TIMEOUT"
	EnvRateLimit       = "UNREALRPC_RATE_LIMIT"
	EnvRedact          = "UNREALRPC_REDACT"
	EnvRedactPatterns  = "UNREALRPC_REDACT_PATTERNS"
	EnvAuditLog        = "UNREALRPC_AUDIT_LOG"
)

// LoadDotEnv seeds the process environment from a .env file. Variables that
// are already set are left alone. With an empty path, ./.env is loaded if it
// exists.
func LoadDotEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return &rpcerrors.ConfigError{
			Key:    "env_file",
			Reason: fmt.Sprintf("failed to load %s", path),
			Cause:  err,
		}
	}
	return nil
}

// loadFromEnv overrides fields from UNREALRPC_* variables. Malformed values
// are reported instead of silently ignored.
func (c *Config) loadFromEnv() error {
	if val := os.Getenv(EnvHost); val != "" {
		c.Host = val
	}
	if val := os.Getenv(EnvUsername); val != "" {
		c.Username = val
	}
	if val := os.Getenv(EnvPassword); val != "" {
		c.Password = val
	}

	if val := os.Getenv(EnvAllowSelfSigned); val != "" {
		b, err := parseBool(val)
		if err != nil {
			return envError(EnvAllowSelfSigned, err)
		}
		c.AllowSelfSigned = b
	}

	if val := os.Getenv(EnvTimeout); val != "" {
		d, err := parseTimeout(val)
		if err != nil {
			return envError(EnvTimeout, err)
		}
		c.Timeout = d
	}

	if val := os.Getenv(EnvRateLimit); val != "" {
		rps, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return envError(EnvRateLimit, err)
		}
		c.RateLimit.RequestsPerSecond = rps
	}

	if val := os.Getenv(EnvRedact); val != "" {
		b, err := parseBool(val)
		if err != nil {
			return envError(EnvRedact, err)
		}
		c.Redaction.Enabled = b
	}
	if val, ok := os.LookupEnv(EnvRedactPatterns); ok {
		c.Redaction.CustomPatterns = redact.ParsePatternList(val)
	}

	// UNREALRPC_AUDIT_LOG is a boolean or a database path.
	if val := os.Getenv(EnvAuditLog); val != "" {
		if b, err := parseBool(val); err == nil {
			c.Audit.Enabled = b
		} else {
			c.Audit.Enabled = true
			c.Audit.Path = val
		}
	}

	return nil
}

func envError(name string, err error) error {
	return &rpcerrors.ConfigError{
		Key:    name,
		Reason: "invalid value in environment",
		Cause:  err,
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// parseTimeout accepts a Go duration ("45s") or a bare number of seconds.
func parseTimeout(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

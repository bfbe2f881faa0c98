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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tombee/unrealrpc/internal/secrets"
	rpcerrors "github.com/tombee/unrealrpc/pkg/errors"
)

// isolate points the default config location at an empty directory and
// clears the variables loadFromEnv reads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, name := range []string{
		EnvHost, EnvUsername, EnvPassword, EnvAllowSelfSigned,
		EnvTimeout, EnvRateLimit, EnvRedact, EnvAuditLog,
	} {
		t.Setenv(name, "")
	}
	os.Unsetenv(EnvRedactPatterns)
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
host: https://irc.example.org:8600/api
username: adminpanel
password: hunter2
allow_self_signed: true
timeout: 10s
rate_limit:
  requests_per_second: 5
  burst: 2
redaction:
  emails: false
  custom_patterns:
    - " secret-[0-9]+ "
    - ""
    - token
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://irc.example.org:8600/api", cfg.Host)
	assert.Equal(t, "adminpanel", cfg.Username)
	assert.Equal(t, "hunter2", cfg.Password)
	assert.True(t, cfg.AllowSelfSigned)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 2, cfg.RateLimit.Burst)

	// Keys absent from the file keep their defaults.
	assert.True(t, cfg.Redaction.Enabled)
	assert.True(t, cfg.Redaction.IPs)
	assert.False(t, cfg.Redaction.Emails)
	assert.True(t, cfg.Redaction.Passwords)
	assert.Equal(t, PatternList{"secret-[0-9]+", "token"}, cfg.Redaction.CustomPatterns)
	assert.Equal(t, 1, cfg.Retry.MaxAttempts)
}

func TestLoad_PatternsAsCommaSeparatedString(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
host: irc.example.org:8600
username: admin
redaction:
  custom_patterns: "foo, bar[0-9] ,,baz"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, PatternList{"foo", "bar[0-9]", "baz"}, cfg.Redaction.CustomPatterns)
}

func TestLoad_PatternsRejectMapping(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "host: https://h\nusername: u\nredaction:\n  custom_patterns:\n    a: b\n")

	_, err := Load(path)
	var cfgErr *rpcerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "config_file", cfgErr.Key)
}

func TestLoad_DefaultLocation(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "unrealrpc"), 0o700))
	writeConfig(t, filepath.Join(dir, "unrealrpc"), "host: https://irc.example.org/api\nusername: admin\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://irc.example.org/api", cfg.Host)
}

func TestLoad_MissingDefaultFileUsesEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvHost, "https://env.example.org/api")
	t.Setenv(EnvUsername, "envuser")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.org/api", cfg.Host)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	var cfgErr *rpcerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "config_file", cfgErr.Key)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "host: https://file.example.org/api\nusername: fileuser\npassword: filepass\ntimeout: 10s\n")

	t.Setenv(EnvHost, "https://env.example.org/api")
	t.Setenv(EnvPassword, "envpass")
	t.Setenv(EnvAllowSelfSigned, "yes")
	t.Setenv(EnvTimeout, "45")
	t.Setenv(EnvRateLimit, "2.5")
	t.Setenv(EnvRedact, "false")
	t.Setenv(EnvRedactPatterns, "alpha, beta")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.org/api", cfg.Host)
	assert.Equal(t, "fileuser", cfg.Username)
	assert.Equal(t, "envpass", cfg.Password)
	assert.True(t, cfg.AllowSelfSigned)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
	assert.False(t, cfg.Redaction.Enabled)
	assert.Equal(t, PatternList{"alpha", "beta"}, cfg.Redaction.CustomPatterns)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{EnvTimeout, "soon"},
		{EnvAllowSelfSigned, "maybe"},
		{EnvRateLimit, "fast"},
		{EnvRedact, "perhaps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(EnvHost, "https://irc.example.org/api")
			t.Setenv(EnvUsername, "admin")
			t.Setenv(tt.name, tt.value)

			_, err := Load("")
			var cfgErr *rpcerrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.name, cfgErr.Key)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Host = "https://irc.example.org:8600/api"
		cfg.Username = "admin"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bare host is accepted", mutate: func(c *Config) { c.Host = "irc.example.org:8600" }},
		{name: "plain http is accepted", mutate: func(c *Config) { c.Host = "http://127.0.0.1:8600/api" }},
		{name: "missing host", mutate: func(c *Config) { c.Host = "" }, wantKey: "host"},
		{name: "wrong scheme", mutate: func(c *Config) { c.Host = "ftp://irc.example.org" }, wantKey: "host"},
		{name: "scheme without host", mutate: func(c *Config) { c.Host = "https://" }, wantKey: "host"},
		{name: "missing username", mutate: func(c *Config) { c.Username = "" }, wantKey: "username"},
		{name: "negative timeout", mutate: func(c *Config) { c.Timeout = -time.Second }, wantKey: "timeout"},
		{name: "negative rate", mutate: func(c *Config) { c.RateLimit.RequestsPerSecond = -1 }, wantKey: "rate_limit.requests_per_second"},
		{name: "zero attempts", mutate: func(c *Config) { c.Retry.MaxAttempts = 0 }, wantKey: "retry.max_attempts"},
		{name: "backoff inverted", mutate: func(c *Config) { c.Retry.MaxBackoff = time.Millisecond }, wantKey: "retry.max_backoff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *rpcerrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantKey, cfgErr.Key)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("UNREALRPC_HOST=https://dotenv.example.org/api\nUNREALRPC_USERNAME=dotenv\n"), 0o600))

	// Already-set variables win over the file.
	t.Setenv(EnvUsername, "shell")
	t.Cleanup(func() { os.Unsetenv(EnvHost) })
	os.Unsetenv(EnvHost)

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "https://dotenv.example.org/api", os.Getenv(EnvHost))
	assert.Equal(t, "shell", os.Getenv(EnvUsername))

	err := LoadDotEnv(filepath.Join(dir, "missing.env"))
	var cfgErr *rpcerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "env_file", cfgErr.Key)
}

func TestLoadDotEnv_DefaultMissingIsIgnored(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.NoError(t, LoadDotEnv(""))
}

func TestResolveSecrets(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(secrets.KeychainService, "irc-prod", "from-keychain"))
	t.Setenv("IRC_RPC_USER", "from-env")

	cfg := Default()
	cfg.Username = "${IRC_RPC_USER}"
	cfg.Password = "keychain:irc-prod"

	resolver := secrets.NewResolver(secrets.NewEnvBackend(), secrets.NewKeychainBackend())
	require.NoError(t, cfg.ResolveSecrets(context.Background(), resolver))
	assert.Equal(t, "from-env", cfg.Username)
	assert.Equal(t, "from-keychain", cfg.Password)

	cfg.Password = "env:IRC_RPC_UNSET_FOR_TEST"
	err := cfg.ResolveSecrets(context.Background(), resolver)
	var cfgErr *rpcerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "password", cfgErr.Key)
	assert.ErrorIs(t, err, secrets.ErrSecretNotFound)
}

func TestPatternWarnings(t *testing.T) {
	cfg := Default()
	cfg.Redaction.CustomPatterns = PatternList{"ok-[0-9]+", "(broken"}

	warnings := cfg.PatternWarnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "(broken")
}

func TestClientConfig(t *testing.T) {
	cfg := Default()
	cfg.Host = "https://irc.example.org/api"
	cfg.Username = "admin"
	cfg.Password = "pw"
	cfg.RateLimit = RateLimitConfig{RequestsPerSecond: 3, Burst: 4}
	cfg.Redaction.CustomPatterns = PatternList{"x"}

	cc := cfg.ClientConfig(nil)
	assert.Equal(t, "https://irc.example.org/api", cc.Credentials.Host)
	assert.Equal(t, "pw", cc.Credentials.Password)
	assert.Equal(t, DefaultTimeout, cc.Timeout)
	assert.Equal(t, 3.0, cc.RateLimit)
	assert.Equal(t, 4, cc.RateBurst)
	assert.True(t, cc.Redaction.Enabled)
	assert.Equal(t, []string{"x"}, cc.Redaction.CustomPatterns)
	assert.Nil(t, cc.Retry)

	cfg.Retry.MaxAttempts = 3
	cc = cfg.ClientConfig(nil)
	require.NotNil(t, cc.Retry)
	assert.Equal(t, 3, cc.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cc.Retry.InitialBackoff)
}

func TestLoad_Audit(t *testing.T) {
	dir := isolate(t)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv(EnvHost, "irc.example.org:8600")
	t.Setenv(EnvUsername, "adminpanel")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Audit.Enabled)
	path, err := cfg.AuditPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "unrealrpc", "audit.db"), path)

	t.Setenv(EnvAuditLog, "yes")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Audit.Enabled)
	assert.Empty(t, cfg.Audit.Path)

	t.Setenv(EnvAuditLog, "/var/lib/unrealrpc/audit.db")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Audit.Enabled)
	path, err = cfg.AuditPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/unrealrpc/audit.db", path)
}

func TestLoadAuditPath_NoEndpointRequired(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "audit:\n  enabled: true\n  path: /tmp/unrealrpc-audit.db\n")

	got, err := LoadAuditPath(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/unrealrpc-audit.db", got)

	_, err = Load(path)
	assert.Error(t, err)
}

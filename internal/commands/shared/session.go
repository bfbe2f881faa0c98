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

package shared

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tombee/unrealrpc/internal/audit"
	"github.com/tombee/unrealrpc/internal/config"
	"github.com/tombee/unrealrpc/internal/log"
	"github.com/tombee/unrealrpc/internal/redact"
	"github.com/tombee/unrealrpc/internal/secrets"
	"github.com/tombee/unrealrpc/internal/unrealircd"
)

// Session is the resolved configuration and client for one command run.
type Session struct {
	Config     *config.Config
	Logger     *slog.Logger
	Client     *unrealircd.Client
	Dispatcher *unrealircd.Dispatcher

	// Executor runs catalog operations: the Dispatcher, wrapped in the
	// audit log when it is enabled.
	Executor Executor

	audit *audit.Store
}

// Executor runs a catalog operation by method or tool name.
type Executor interface {
	Execute(ctx context.Context, method string, inputs map[string]any) (any, error)
}

// NewLogger builds the diagnostic logger writing to w, honouring --verbose
// and --quiet on top of the environment settings.
func NewLogger(w io.Writer) *slog.Logger {
	cfg := log.FromEnv()
	cfg.Output = w
	switch {
	case verboseFlag:
		cfg.Level = "debug"
	case quietFlag:
		cfg.Level = "error"
	}
	return log.New(cfg)
}

// NewSession loads configuration (.env, file, environment, secret
// references, then redaction flags) and builds the client.
func NewSession(cmd *cobra.Command) (*Session, error) {
	if err := config.LoadDotEnv(envFileFlag); err != nil {
		return nil, NewConfigError("", err)
	}

	logger := NewLogger(cmd.ErrOrStderr())

	cfg, err := config.LoadWithSecrets(cmd.Context(), configFlag, secrets.DefaultResolver())
	if err != nil {
		return nil, NewConfigError("failed to load configuration", err)
	}
	ApplyRedactionFlags(cmd.Flags(), &cfg.Redaction)

	for _, warning := range cfg.PatternWarnings() {
		logger.Warn(warning)
	}

	client := unrealircd.New(cfg.ClientConfig(logger))
	session := &Session{
		Config:     cfg,
		Logger:     logger,
		Client:     client,
		Dispatcher: unrealircd.NewDispatcher(client),
	}
	session.Executor = session.Dispatcher

	if cfg.Audit.Enabled {
		path, err := cfg.AuditPath()
		if err != nil {
			return nil, NewConfigError("cannot locate audit log", err)
		}
		store, err := audit.Open(cmd.Context(), path)
		if err != nil {
			return nil, NewConfigError("cannot open audit log", err)
		}
		session.audit = store
		session.Executor = audit.NewExecutor(session.Dispatcher, store, auditSource(cmd),
			redact.New(cfg.Redaction.Options()), logger)
	}

	return session, nil
}

// Close releases the audit log, if open.
func (s *Session) Close() error {
	if s.audit == nil {
		return nil
	}
	return s.audit.Close()
}

func auditSource(cmd *cobra.Command) string {
	if cmd.Name() == "mcp" {
		return audit.SourceMCP
	}
	return audit.SourceCLI
}

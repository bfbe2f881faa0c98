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

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tombee/unrealrpc/internal/commands/shared"
	"github.com/tombee/unrealrpc/internal/config"
	"github.com/tombee/unrealrpc/internal/mcp/server"
)

const shutdownTimeout = 5 * time.Second

// NewCommand creates the mcp command
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the UnrealIRCd operations as MCP tools over stdio",
		Long: `Start an MCP (Model Context Protocol) server on stdin/stdout.

Every JSON-RPC operation is exposed as a tool named after its method, with
dots replaced by underscores (server_ban_add, channel_list, ...). Results go
through the configured redaction before they are returned.

Use --read-only to expose only the list/get style operations. --tools
narrows the set further with a boolean expression over method, tool,
resource, action, tags, read and destructive:

  unrealrpc mcp --tools 'resource in ["channel", "user"] && !destructive'

With --watch-config, edits to the configuration file take effect without a
restart.

Configuration example (mcp.json):
  {
    "mcpServers": {
      "unrealircd": {
        "command": "unrealrpc",
        "args": ["mcp", "--read-only"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCPServer(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "Expose only operations that do not modify the server")
	cmd.Flags().StringVar(&opts.tools, "tools", "", "Expression selecting which operations to expose")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
	cmd.Flags().BoolVar(&opts.watchConfig, "watch-config", false, "Reload the configuration file when it changes")

	return cmd
}

type options struct {
	readOnly    bool
	tools       string
	metricsAddr string
	watchConfig bool
}

func runMCPServer(cmd *cobra.Command, opts options) error {
	filter, err := server.CompileToolFilter(opts.tools)
	if err != nil {
		return shared.NewUsageError("", err)
	}

	session, err := shared.NewSession(cmd)
	if err != nil {
		return err
	}

	executor := newReloadingExecutor(session)
	defer executor.Close()
	if opts.watchConfig {
		stop, err := watch(cmd, executor, session.Logger)
		if err != nil {
			return shared.NewConfigError("cannot watch configuration", err)
		}
		defer stop()
	}

	versionStr, _, _ := shared.GetVersion()
	srv, err := server.NewServer(server.ServerConfig{
		Name:     "unrealrpc",
		Version:  versionStr,
		Logger:   session.Logger,
		Executor: executor,
		ReadOnly: opts.readOnly,
		Filter:   filter,
	})
	if err != nil {
		return shared.NewUsageError("failed to create MCP server", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.metricsAddr != "" {
		_, shutdown, err := startMetrics(opts.metricsAddr, session.Logger)
		if err != nil {
			return shared.NewUsageError("", err)
		}
		defer shutdown()
	}

	return srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}

// reloadingExecutor forwards to the current session, which is replaced
// when the configuration is reloaded. A replaced session is closed only
// after the calls already running on it have returned, so their audit
// entries are still written.
type reloadingExecutor struct {
	mu      sync.RWMutex
	current *generation
}

type generation struct {
	session  *shared.Session
	inflight sync.WaitGroup
}

func newReloadingExecutor(session *shared.Session) *reloadingExecutor {
	return &reloadingExecutor{current: &generation{session: session}}
}

// acquire pins the current generation. The Add happens under the read
// lock so swap cannot start waiting on a generation before it is pinned.
func (e *reloadingExecutor) acquire() *generation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	g := e.current
	g.inflight.Add(1)
	return g
}

func (e *reloadingExecutor) Execute(ctx context.Context, method string, inputs map[string]any) (any, error) {
	g := e.acquire()
	defer g.inflight.Done()
	return g.session.Executor.Execute(ctx, method, inputs)
}

// swap installs session, then waits for calls on the replaced session to
// finish and closes it.
func (e *reloadingExecutor) swap(session *shared.Session) error {
	e.mu.Lock()
	old := e.current
	e.current = &generation{session: session}
	e.mu.Unlock()

	old.inflight.Wait()
	return old.session.Close()
}

// Close waits for running calls and closes the current session.
func (e *reloadingExecutor) Close() error {
	e.mu.RLock()
	g := e.current
	e.mu.RUnlock()

	g.inflight.Wait()
	return g.session.Close()
}

// watch rebuilds the session whenever the configuration file changes.
// A configuration that fails to load is logged and the previous one kept.
func watch(cmd *cobra.Command, executor *reloadingExecutor, logger *slog.Logger) (func(), error) {
	path := shared.GetConfigPath()
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return nil, err
		}
	}

	w, err := config.NewWatcher(path, func() {
		session, err := shared.NewSession(cmd)
		if err != nil {
			logger.Error("configuration reload failed, keeping previous settings", slog.Any("error", err))
			return
		}
		if err := executor.swap(session); err != nil {
			logger.Warn("closing previous session", slog.Any("error", err))
		}
		logger.Info("configuration reloaded", slog.String("host", session.Config.Host))
	}, logger)
	if err != nil {
		return nil, err
	}
	return func() { _ = w.Close() }, nil
}

// startMetrics serves /metrics on addr. It returns the bound address and a
// function that stops the server.
func startMetrics(addr string, logger *slog.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("metrics listener on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	httpServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", slog.Any("error", err))
		}
	}()
	bound := ln.Addr().String()
	logger.Info("serving metrics", slog.String("addr", bound))

	return bound, func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
	}, nil
}

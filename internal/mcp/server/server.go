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

// Package server exposes the UnrealIRCd operation catalog as MCP tools.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server and registers one tool per catalog operation.
type Server struct {
	mcpServer *server.MCPServer
	name      string
	version   string
	executor  OperationExecutor
	logger    *slog.Logger
	tools     []string
}

// ServerConfig configures the MCP server
type ServerConfig struct {
	// Name is the server name (default: "unrealrpc")
	Name string

	// Version is the unrealrpc version
	Version string

	// LogLevel controls logging verbosity (debug, info, warn, error).
	// Ignored when Logger is set.
	LogLevel string

	// Logger overrides the stderr logger built from LogLevel.
	Logger *slog.Logger

	// Executor runs the operations behind the tools.
	Executor OperationExecutor

	// ReadOnly registers only operations tagged read.
	ReadOnly bool

	// Filter further restricts the registered operations.
	Filter *ToolFilter
}

// createLogger creates a logger with the specified log level.
// Writes to stderr to avoid interfering with MCP stdio protocol.
func createLogger(levelStr string) (*slog.Logger, error) {
	var level slog.Level

	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", levelStr)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler), nil
}

// NewServer creates a new MCP server instance
func NewServer(config ServerConfig) (*Server, error) {
	if config.Name == "" {
		config.Name = "unrealrpc"
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	if config.Executor == nil {
		return nil, fmt.Errorf("an operation executor is required")
	}

	logger := config.Logger
	if logger == nil {
		var err error
		logger, err = createLogger(config.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	s := &Server{
		mcpServer: server.NewMCPServer(config.Name, config.Version, server.WithToolCapabilities(false)),
		name:      config.Name,
		version:   config.Version,
		executor:  config.Executor,
		logger:    logger,
	}

	if err := s.registerOperationTools(config.ReadOnly, config.Filter); err != nil {
		return nil, err
	}
	if len(s.tools) == 0 {
		return nil, fmt.Errorf("no operations match the tool filter %q", config.Filter.String())
	}

	return s, nil
}

// Tools returns the names of the registered tools in registration order.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// Run serves MCP over stdin and stdout until ctx is cancelled or stdin closes.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve serves MCP over the given streams.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("Starting unrealrpc MCP server",
		slog.String("version", s.version),
		slog.Int("tools", len(s.tools)))

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// errorResponse builds a tool error result.
func errorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// jsonText renders v as indented JSON, falling back to its printed form.
func jsonText(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

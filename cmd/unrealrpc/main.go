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

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tombee/unrealrpc/internal/cli"
	"github.com/tombee/unrealrpc/internal/commands/call"
	"github.com/tombee/unrealrpc/internal/commands/history"
	"github.com/tombee/unrealrpc/internal/commands/mcpserver"
	"github.com/tombee/unrealrpc/internal/commands/operations"
	"github.com/tombee/unrealrpc/internal/commands/resource"
	versioncmd "github.com/tombee/unrealrpc/internal/commands/version"
	"github.com/tombee/unrealrpc/internal/tracing"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	shutdown, err := tracing.Setup(tracing.ConfigFromEnv("unrealrpc", version))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: tracing disabled: %v\n", err)
	}

	rootCmd := cli.NewRootCommand()

	rootCmd.AddCommand(call.NewCommand())
	rootCmd.AddCommand(operations.NewCommand())
	for _, c := range resource.NewCommands() {
		rootCmd.AddCommand(c)
	}

	rootCmd.AddCommand(mcpserver.NewCommand())
	rootCmd.AddCommand(history.NewCommand())
	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	err = rootCmd.Execute()

	// Flush spans before HandleExitError exits the process.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = shutdown(ctx)
	cancel()

	if err != nil {
		cli.HandleExitError(err)
	}
}

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

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tombee/unrealrpc/internal/commands/shared"
)

// ResourcesGroupID is the help group holding the per-resource commands.
const ResourcesGroupID = "resources"

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for unrealrpc
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unrealrpc",
		Short: "unrealrpc - UnrealIRCd JSON-RPC client",
		Long: `unrealrpc talks to the JSON-RPC interface of an UnrealIRCd server.

Every API method is available as "unrealrpc <resource> <action>", for example
"unrealrpc user list" or "unrealrpc server-ban add --name '*@10.0.0.1' --type gline".
"unrealrpc call <method>" invokes any method directly, and "unrealrpc mcp"
serves the same operations to MCP clients.

Connection settings come from ~/.config/unrealrpc/config.yaml, a .env file or
the UNREALRPC_HOST, UNREALRPC_USERNAME and UNREALRPC_PASSWORD variables.
Results are redacted (IP addresses, emails, passwords) unless --redact=false.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	shared.RegisterGlobalFlags(cmd)
	cmd.AddGroup(&cobra.Group{ID: ResourcesGroupID, Title: "Resources:"})

	return cmd
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}

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

/*
Package cli provides the root command for the unrealrpc CLI.

This package creates the root Cobra command and handles global concerns like
version information, persistent flags, and error handling. Individual commands
are implemented in the internal/commands subpackages.

# Command Tree

	unrealrpc
	├── call          Invoke any JSON-RPC method
	├── operations    List the known operations
	├── mcp           Serve operations as MCP tools
	├── history       Show the audit log
	├── version       Show version
	└── <resource>    One command per API resource
	    └── <action>  e.g. "user list", "server-ban add"

# Global Flags

	--verbose, -v         Enable verbose output
	--quiet, -q           Suppress non-error output
	--json                Output in JSON format
	--config              Path to config file
	--env-file            Load environment variables from a file
	--jq                  Filter results with a jq expression
	--yes, -y             Do not ask before destructive operations
	--redact*             Redaction toggles and extra patterns

# Error Handling

  - Exit 0: Success
  - Exit 1: The server call failed
  - Exit 2: Invalid usage
  - Exit 3: Configuration error

	if err := rootCmd.Execute(); err != nil {
	    cli.HandleExitError(err)
	}
*/
package cli

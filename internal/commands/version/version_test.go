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

package version

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/unrealrpc/internal/commands/shared"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	rootCmd := &cobra.Command{Use: "unrealrpc"}
	shared.RegisterGlobalFlags(rootCmd)
	rootCmd.AddCommand(NewVersionCommand())

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(append([]string{"version"}, args...))
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestVersionOutput(t *testing.T) {
	shared.SetVersion("1.0.0", "test123", "2025-12-22")
	defer shared.SetVersion("dev", "unknown", "unknown")

	output := execute(t)
	assert.Contains(t, output, "unrealrpc version 1.0.0")
	assert.Contains(t, output, "test123")
}

func TestVersionJSONOutput(t *testing.T) {
	shared.SetVersion("1.0.0", "test123", "2025-12-22")
	defer shared.SetVersion("dev", "unknown", "unknown")

	var info VersionInfo
	output := execute(t, "--json")
	require.NoError(t, json.Unmarshal([]byte(output), &info), "output: %s", output)

	assert.Equal(t, VersionInfo{Version: "1.0.0", Commit: "test123", BuildDate: "2025-12-22"}, info)
}

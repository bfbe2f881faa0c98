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

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/unrealrpc/internal/audit"
	"github.com/tombee/unrealrpc/internal/commands/shared"
)

func seed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("UNREALRPC_AUDIT_LOG", path)

	store, err := audit.Open(context.Background(), path)
	require.NoError(t, err)
	defer store.Close()

	now := time.Now()
	for _, e := range []audit.Entry{
		{Time: now.Add(-48 * time.Hour), Source: audit.SourceCLI, Method: "server_ban.add", Params: map[string]any{"name": "*@[REDACTED_IP]"}, Success: true},
		{Time: now.Add(-time.Hour), Source: audit.SourceMCP, Method: "user.kill", Params: map[string]any{"nick": "ghost"}, Error: "Nick not found"},
		{Time: now, Source: audit.SourceMCP, Method: "user.kill", Params: map[string]any{"nick": "troll"}, Success: true},
	} {
		require.NoError(t, store.Record(context.Background(), e))
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "unrealrpc", SilenceUsage: true, SilenceErrors: true}
	shared.RegisterGlobalFlags(root)
	root.AddCommand(NewCommand())

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs(append([]string{"history"}, args...))
	err := root.Execute()
	return buf.String(), err
}

func decode(t *testing.T, out string) []audit.Entry {
	t.Helper()
	var entries []audit.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries), "output: %s", out)
	return entries
}

func TestHistory_JSON(t *testing.T) {
	seed(t)

	out, err := execute(t, "--json")
	require.NoError(t, err)
	entries := decode(t, out)
	require.Len(t, entries, 3)
	assert.Equal(t, "troll", entries[0].Params["nick"])

	out, err = execute(t, "--json", "--method", "user.kill", "--failed")
	require.NoError(t, err)
	entries = decode(t, out)
	require.Len(t, entries, 1)
	assert.Equal(t, "Nick not found", entries[0].Error)

	out, err = execute(t, "--json", "--since", "24h")
	require.NoError(t, err)
	assert.Len(t, decode(t, out), 2)

	out, err = execute(t, "--json", "-n", "1")
	require.NoError(t, err)
	assert.Len(t, decode(t, out), 1)
}

func TestHistory_Table(t *testing.T) {
	seed(t)

	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "METHOD")
	assert.Contains(t, out, "server_ban.add")
	assert.Contains(t, out, "nick=troll")
	assert.Contains(t, out, "failed: Nick not found")
}

func TestHistory_MissingDatabase(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("UNREALRPC_AUDIT_LOG", filepath.Join(t.TempDir(), "none.db"))

	_, err := execute(t)
	require.Error(t, err)
	assert.Equal(t, shared.ExitConfig, shared.ExitCode(err))
}

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

package operations

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/unrealrpc/internal/commands/shared"
	"github.com/tombee/unrealrpc/internal/unrealircd"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "unrealrpc", SilenceUsage: true, SilenceErrors: true}
	shared.RegisterGlobalFlags(root)
	root.AddCommand(NewCommand())

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs(append([]string{"operations"}, args...))
	err := root.Execute()
	return buf.String(), err
}

func TestOperations_JSON(t *testing.T) {
	out, err := execute(t, "--json")
	require.NoError(t, err)

	var ops []Operation
	require.NoError(t, json.Unmarshal([]byte(out), &ops))
	assert.Len(t, ops, len(unrealircd.Catalog()))

	var kill *Operation
	for i := range ops {
		if ops[i].Method == "user.kill" {
			kill = &ops[i]
		}
	}
	require.NotNil(t, kill)
	assert.Equal(t, "user_kill", kill.Tool)
	assert.Contains(t, kill.Tags, unrealircd.TagDestructive)
	assert.Equal(t, []Parameter{
		{Name: "nick", Type: "string", Required: true},
		{Name: "reason", Type: "string", Required: true},
	}, kill.Params)
}

func TestOperations_ResourceFilter(t *testing.T) {
	out, err := execute(t, "--json", "server-ban")
	require.NoError(t, err)

	var ops []Operation
	require.NoError(t, json.Unmarshal([]byte(out), &ops))
	require.NotEmpty(t, ops)
	for _, op := range ops {
		assert.Regexp(t, `^server_ban\.`, op.Method)
	}
}

func TestOperations_UnknownResource(t *testing.T) {
	_, err := execute(t, "bogus")
	require.Error(t, err)
	assert.Equal(t, shared.ExitUsage, shared.ExitCode(err))
}

func TestOperations_Table(t *testing.T) {
	out, err := execute(t, "channel")
	require.NoError(t, err)

	assert.Contains(t, out, "METHOD")
	assert.Contains(t, out, "channel.set_topic")
	assert.Contains(t, out, "channel* topic*")
	assert.NotContains(t, out, "user.list")
}

func TestParamSummary(t *testing.T) {
	got := paramSummary([]Parameter{
		{Name: "object_detail_level"},
		{Name: "nick", Required: true},
	})
	assert.Equal(t, "nick* object_detail_level", got)
}

func TestOperations_GlobFilter(t *testing.T) {
	out, err := execute(t, "--json", "*.list")
	require.NoError(t, err)

	var ops []Operation
	require.NoError(t, json.Unmarshal([]byte(out), &ops))
	require.NotEmpty(t, ops)
	for _, op := range ops {
		assert.Regexp(t, `\.list$`, op.Method)
	}

	out, err = execute(t, "--json", "server_ban_{add,del}")
	require.NoError(t, err)
	ops = nil
	require.NoError(t, json.Unmarshal([]byte(out), &ops))
	assert.Len(t, ops, 2)
}

func TestOperations_MalformedGlob(t *testing.T) {
	_, err := execute(t, "user.[")
	require.Error(t, err)
	assert.Equal(t, shared.ExitUsage, shared.ExitCode(err))
}

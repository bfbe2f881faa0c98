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

package call

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/unrealrpc/internal/commands/shared"
	"github.com/tombee/unrealrpc/internal/testing/mock"
)

func TestParseInputs(t *testing.T) {
	tests := []struct {
		name    string
		params  string
		pairs   []string
		want    map[string]any
		wantErr bool
	}{
		{
			name: "empty",
			want: map[string]any{},
		},
		{
			name:  "string pairs",
			pairs: []string{"nick=alice", "reason=bye = now"},
			want:  map[string]any{"nick": "alice", "reason": "bye = now"},
		},
		{
			name:  "json pairs",
			pairs: []string{"object_detail_level:=4", "force:=true", `params:={"a":1}`},
			want: map[string]any{
				"object_detail_level": json.Number("4"),
				"force":               true,
				"params":              map[string]any{"a": json.Number("1")},
			},
		},
		{
			name:  "equals before colon-equals is a string pair",
			pairs: []string{"topic=a:=b"},
			want:  map[string]any{"topic": "a:=b"},
		},
		{
			name:   "pairs override params object",
			params: `{"nick":"bob","force":false}`,
			pairs:  []string{"nick=alice"},
			want:   map[string]any{"nick": "alice", "force": false},
		},
		{
			name:    "null params are rejected",
			params:  `null`,
			pairs:   []string{"nick=alice"},
			wantErr: true,
		},
		{
			name:    "params must be an object",
			params:  `[1,2]`,
			wantErr: true,
		},
		{
			name:    "bad json value",
			pairs:   []string{"force:=yes"},
			wantErr: true,
		},
		{
			name:    "missing separator",
			pairs:   []string{"alice"},
			wantErr: true,
		},
		{
			name:    "missing key",
			pairs:   []string{"=alice"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInputs(tt.params, tt.pairs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// setup points the configuration at srv and isolates it from the user's
// config directory.
func setup(t *testing.T, srv *mock.RPCServer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("UNREALRPC_HOST", srv.URL)
	t.Setenv("UNREALRPC_USERNAME", srv.Username)
	t.Setenv("UNREALRPC_PASSWORD", srv.Password)
	t.Setenv("UNREALRPC_REDACT", "")
	t.Setenv("UNREALRPC_REDACT_PATTERNS", "")
	t.Setenv("UNREALRPC_TRACE", "")
	t.Setenv("UNREALRPC_AUDIT_LOG", "")
}

func execute(t *testing.T, args ...string) (stdout string, err error) {
	t.Helper()
	root := &cobra.Command{Use: "unrealrpc", SilenceUsage: true, SilenceErrors: true}
	shared.RegisterGlobalFlags(root)
	root.AddCommand(NewCommand())

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"call"}, args...))

	err = root.Execute()
	return out.String(), err
}

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v), "output: %s", s)
	return v
}

func TestCall_SendsCatalogDefaultsAndRedacts(t *testing.T) {
	srv := mock.NewRPCServer(t)
	srv.Reply("user.get", map[string]any{"name": "alice", "ip": "10.0.0.5", "email": "alice@example.org"})
	setup(t, srv)

	out, err := execute(t, "user.get", "nick=alice")
	require.NoError(t, err)

	call, ok := srv.LastCall()
	require.True(t, ok)
	assert.True(t, call.Authorized)
	assert.Equal(t, "user.get", call.Method)
	assert.Equal(t, map[string]any{"nick": "alice", "object_detail_level": float64(2)}, call.Params)

	assert.Equal(t, map[string]any{
		"name":  "alice",
		"ip":    "[REDACTED_IP]",
		"email": "[REDACTED_EMAIL]",
	}, decode(t, out))
}

func TestCall_RedactionFlags(t *testing.T) {
	srv := mock.NewRPCServer(t)
	srv.Reply("user.get", map[string]any{"name": "alice", "ip": "10.0.0.5", "email": "alice@example.org"})
	setup(t, srv)

	out, err := execute(t, "--redact-ips=false", "--redact-pattern", "ali[a-z]+", "user.get", "nick=alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":  "[REDACTED_CUSTOM]",
		"ip":    "10.0.0.5",
		"email": "[REDACTED_EMAIL]",
	}, decode(t, out))

	out, err = execute(t, "--redact=false", "user.get", "nick=alice")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", decode(t, out).(map[string]any)["ip"])
}

func TestCall_JQFilter(t *testing.T) {
	srv := mock.NewRPCServer(t)
	srv.Reply("channel.list", map[string]any{"list": []any{
		map[string]any{"name": "#ops", "num_users": 3},
		map[string]any{"name": "#help", "num_users": 12},
	}})
	setup(t, srv)

	out, err := execute(t, "--jq", "[.list[] | select(.num_users > 5) | .name]", "channel.list")
	require.NoError(t, err)
	assert.Equal(t, []any{"#help"}, decode(t, out))
}

func TestCall_InvalidJQIsRejectedBeforeSending(t *testing.T) {
	srv := mock.NewRPCServer(t)
	setup(t, srv)

	_, err := execute(t, "--jq", ".[", "channel.list")
	require.Error(t, err)
	assert.Equal(t, shared.ExitUsage, shared.ExitCode(err))
	assert.Empty(t, srv.Calls())
}

func TestCall_FailurePayload(t *testing.T) {
	srv := mock.NewRPCServer(t)
	srv.Fail("user.get", -1000, "Nick not found")
	setup(t, srv)

	out, err := execute(t, "user.get", "nick=ghost")
	require.Error(t, err)
	assert.Equal(t, shared.ExitCallFailed, shared.ExitCode(err))

	failure := decode(t, out).(map[string]any)
	assert.Equal(t, false, failure["success"])
	assert.Equal(t, "user.get", failure["method"])
	assert.Contains(t, failure["error"], "Nick not found")
	// The failure payload is redacted like any other result.
	host := failure["credentials"].(map[string]any)["host"]
	assert.Contains(t, host, "[REDACTED_IP]")
	assert.NotContains(t, host, "127.0.0.1")
}

func TestCall_BadCredentialsIsFailure(t *testing.T) {
	srv := mock.NewRPCServer(t)
	srv.Reply("stats.get", map[string]any{})
	setup(t, srv)
	t.Setenv("UNREALRPC_PASSWORD", "wrong")

	out, err := execute(t, "stats.get")
	require.Error(t, err)
	assert.Equal(t, shared.ExitCallFailed, shared.ExitCode(err))
	assert.NotContains(t, out, "wrong")
}

func TestCall_CatalogValidation(t *testing.T) {
	srv := mock.NewRPCServer(t)
	setup(t, srv)

	tests := []struct {
		name string
		args []string
	}{
		{"missing required", []string{"user.kill", "nick=alice"}},
		{"unknown parameter", []string{"user.kill", "nick=alice", "reason=x", "bogus=1"}},
		{"unknown method", []string{"user.explode"}},
		{"bad enum", []string{"server_ban.add", "name=*@10.0.0.1", "type=ban"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, shared.ExitUsage, shared.ExitCode(err))
		})
	}
	assert.Empty(t, srv.Calls())
}

func TestCall_RawBypassesCatalog(t *testing.T) {
	srv := mock.NewRPCServer(t)
	srv.Reply("custom.method", "ok")
	setup(t, srv)

	out, err := execute(t, "--raw", "--params", `{"a":1}`, "custom.method", "b=two")
	require.NoError(t, err)
	assert.Equal(t, "ok", decode(t, out))

	call, ok := srv.LastCall()
	require.True(t, ok)
	assert.Equal(t, map[string]any{"a": float64(1), "b": "two"}, call.Params)
}

func TestCall_MissingHostIsConfigError(t *testing.T) {
	srv := mock.NewRPCServer(t)
	setup(t, srv)
	t.Setenv("UNREALRPC_HOST", "")

	_, err := execute(t, "stats.get")
	require.Error(t, err)
	assert.Equal(t, shared.ExitConfig, shared.ExitCode(err))
	assert.Empty(t, srv.Calls())
}

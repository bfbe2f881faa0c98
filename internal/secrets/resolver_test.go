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

package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		value string
		want  Reference
		ok    bool
	}{
		{value: "env:IRC_PASS", want: Reference{Scheme: "env", Key: "IRC_PASS"}, ok: true},
		{value: "${IRC_PASS}", want: Reference{Scheme: "env", Key: "IRC_PASS"}, ok: true},
		{value: "keychain:irc-prod", want: Reference{Scheme: "keychain", Key: "irc-prod"}, ok: true},
		{value: "hunter2"},
		{value: "env:"},
		{value: "${}"},
		{value: "vault:secret/irc"},
		{value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := ParseReference(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_Env(t *testing.T) {
	t.Setenv("UNREALRPC_TEST_SECRET", "s3cret")
	r := NewResolver(NewEnvBackend())
	ctx := context.Background()

	got, err := r.Resolve(ctx, "env:UNREALRPC_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	got, err = r.Resolve(ctx, "${UNREALRPC_TEST_SECRET}")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	got, err = r.Resolve(ctx, "plain-password")
	require.NoError(t, err)
	assert.Equal(t, "plain-password", got)

	_, err = r.Resolve(ctx, "env:UNREALRPC_TEST_MISSING")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestResolver_Keychain(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(KeychainService, "irc-prod", "from-keychain"))

	backend := NewKeychainBackend()
	require.True(t, backend.Available())
	r := NewResolver(NewEnvBackend(), backend)

	got, err := r.Resolve(context.Background(), "keychain:irc-prod")
	require.NoError(t, err)
	assert.Equal(t, "from-keychain", got)

	_, err = r.Resolve(context.Background(), "keychain:missing")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestResolver_KeychainUnavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("dbus: connection refused"))
	t.Cleanup(keyring.MockInit)

	backend := NewKeychainBackend()
	assert.False(t, backend.Available())

	_, err := NewResolver(backend).Resolve(context.Background(), "keychain:irc-prod")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestResolver_UnknownScheme(t *testing.T) {
	_, err := NewResolver(NewEnvBackend()).Resolve(context.Background(), "keychain:irc-prod")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

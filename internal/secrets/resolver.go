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
	"fmt"
	"strings"
)

// Resolver maps reference schemes to backends.
type Resolver struct {
	backends map[string]SecretBackend
}

// NewResolver creates a resolver over the given backends, keyed by Name.
// Unavailable backends are still registered so that references to them fail
// with ErrBackendUnavailable rather than passing through as literals.
func NewResolver(backends ...SecretBackend) *Resolver {
	r := &Resolver{backends: make(map[string]SecretBackend, len(backends))}
	for _, b := range backends {
		r.backends[b.Name()] = b
	}
	return r
}

// DefaultResolver resolves env and keychain references.
func DefaultResolver() *Resolver {
	return NewResolver(NewEnvBackend(), NewKeychainBackend())
}

// Reference is a parsed secret reference.
type Reference struct {
	Scheme string
	Key    string
}

// ParseReference reports whether value is a secret reference and, if so,
// which backend and key it names.
func ParseReference(value string) (Reference, bool) {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") && len(value) > 3 {
		return Reference{Scheme: "env", Key: value[2 : len(value)-1]}, true
	}
	for _, scheme := range []string{"env", "keychain"} {
		if key, ok := strings.CutPrefix(value, scheme+":"); ok && key != "" {
			return Reference{Scheme: scheme, Key: key}, true
		}
	}
	return Reference{}, false
}

// Resolve returns the secret a reference points at, or value unchanged when
// it is not a reference.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	ref, ok := ParseReference(value)
	if !ok {
		return value, nil
	}

	backend, ok := r.backends[ref.Scheme]
	if !ok {
		return "", fmt.Errorf("%w: no %s backend configured", ErrBackendUnavailable, ref.Scheme)
	}

	secret, err := backend.Get(ctx, ref.Key)
	if err != nil {
		return "", fmt.Errorf("resolving %s:%s: %w", ref.Scheme, ref.Key, err)
	}
	return secret, nil
}

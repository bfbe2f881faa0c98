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
Package secrets resolves secret references in configuration values.

A configuration value may name where its secret lives instead of holding it:

	env:UNREALRPC_RPC_PASSWORD   environment variable
	${UNREALRPC_RPC_PASSWORD}    environment variable, shell style
	keychain:irc-prod            OS keychain entry under the "unrealrpc" service

Values without a recognised prefix are returned as-is. Resolution is
read-only; storing secrets is left to the platform's own tooling.
*/
package secrets

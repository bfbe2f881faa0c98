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

// Package call implements the raw "call" command.
package call

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/unrealrpc/internal/commands/shared"
	"github.com/tombee/unrealrpc/internal/unrealircd"
)

// NewCommand creates the call command
func NewCommand() *cobra.Command {
	var (
		paramsJSON string
		raw        bool
	)

	cmd := &cobra.Command{
		Use:   "call <method> [key=value | key:=json ...]",
		Short: "Call a JSON-RPC method",
		Long: `Call any UnrealIRCd JSON-RPC method.

Parameters are given as key=value (string) or key:=json (raw JSON value)
arguments, optionally on top of a --params JSON object. Known methods are
checked against the operation catalog, which applies defaults and converts
values to their declared types; use --raw to send parameters untouched, for
example for methods newer than this tool.

The result is printed as JSON. When the call fails the failure payload is
printed instead and the exit code is 1.`,
		Example: `  unrealrpc call channel.list
  unrealrpc call user.get nick=alice object_detail_level:=4
  unrealrpc call server_ban.add name='*@198.51.100.*' type=gline reason="spam"
  unrealrpc call --raw --params '{"foo":1}' custom.method`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, args[0], args[1:], paramsJSON, raw)
		},
	}

	cmd.Flags().StringVar(&paramsJSON, "params", "", "Parameters as a JSON object")
	cmd.Flags().BoolVar(&raw, "raw", false, "Send parameters as given, bypassing the operation catalog")

	return cmd
}

func runCall(cmd *cobra.Command, method string, pairs []string, paramsJSON string, raw bool) error {
	if err := shared.ValidateJQ(); err != nil {
		return err
	}

	inputs, err := ParseInputs(paramsJSON, pairs)
	if err != nil {
		return shared.NewUsageError("invalid parameters", err)
	}

	if spec, ok := unrealircd.Lookup(method); ok {
		if err := shared.ConfirmDestructive(spec, inputs); err != nil {
			return err
		}
	}

	session, err := shared.NewSession(cmd)
	if err != nil {
		return err
	}
	defer session.Close()

	var result any
	if raw {
		result = session.Client.Call(cmd.Context(), method, inputs)
	} else {
		result, err = session.Executor.Execute(cmd.Context(), method, inputs)
		if err != nil {
			return shared.NewUsageError("", err)
		}
	}

	return shared.WriteResult(cmd, result)
}

// ParseInputs merges a JSON object with key=value and key:=json arguments.
// Later arguments override earlier ones and the JSON object.
func ParseInputs(paramsJSON string, pairs []string) (map[string]any, error) {
	inputs := map[string]any{}

	if strings.TrimSpace(paramsJSON) != "" {
		if err := decodeJSON(paramsJSON, &inputs); err != nil {
			return nil, fmt.Errorf("--params must be a JSON object: %w", err)
		}
		if inputs == nil {
			return nil, fmt.Errorf("--params must be a JSON object, got null")
		}
	}

	for _, pair := range pairs {
		if key, value, ok := strings.Cut(pair, ":="); ok && !strings.Contains(key, "=") {
			if key == "" {
				return nil, fmt.Errorf("missing key in %q", pair)
			}
			var v any
			if err := decodeJSON(value, &v); err != nil {
				return nil, fmt.Errorf("value of %s is not valid JSON: %w", key, err)
			}
			inputs[key] = v
			continue
		}

		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value or key:=json, got %q", pair)
		}
		inputs[key] = value
	}

	return inputs, nil
}

func decodeJSON(s string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	return dec.Decode(v)
}

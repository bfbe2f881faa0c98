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

// Package resource builds one command per catalog resource, with one
// subcommand per operation and flags generated from its parameters.
package resource

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tombee/unrealrpc/internal/commands/shared"
	"github.com/tombee/unrealrpc/internal/unrealircd"
)

// NewCommands returns the resource commands in resource name order.
func NewCommands() []*cobra.Command {
	byResource := map[string]*cobra.Command{}

	for _, spec := range unrealircd.Catalog() {
		parent, ok := byResource[spec.Resource]
		if !ok {
			parent = newResourceCommand(spec.Resource)
			byResource[spec.Resource] = parent
		}
		parent.AddCommand(newOperationCommand(spec))
	}

	cmds := make([]*cobra.Command, 0, len(byResource))
	for _, name := range unrealircd.Resources() {
		if cmd, ok := byResource[name]; ok {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// cliName turns a wire name into a command or flag name.
func cliName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

func aliases(name string) []string {
	if cli := cliName(name); cli != name {
		return []string{name}
	}
	return nil
}

func newResourceCommand(resource string) *cobra.Command {
	return &cobra.Command{
		Use:     cliName(resource),
		Aliases: aliases(resource),
		Short:   fmt.Sprintf("%s operations", cases.Title(language.English).String(strings.ReplaceAll(resource, "_", " "))),
		GroupID: "resources",
	}
}

func newOperationCommand(spec unrealircd.OperationSpec) *cobra.Command {
	var positional []unrealircd.ParamSpec
	for _, p := range spec.Params {
		if p.Required {
			positional = append(positional, p)
		}
	}

	use := cliName(spec.Action)
	for _, p := range positional {
		use += fmt.Sprintf(" [%s]", p.Name)
	}

	cmd := &cobra.Command{
		Use:     use,
		Aliases: aliases(spec.Action),
		Short:   spec.Description,
		Long: fmt.Sprintf("%s.\n\nCalls the JSON-RPC method %s. Required parameters may be given as flags or positionally, in order.",
			spec.Description, spec.Method),
		Args: cobra.MaximumNArgs(len(positional)),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := collectInputs(cmd.Flags(), spec, positional, args)
			if err != nil {
				return shared.NewUsageError("", err)
			}
			return runOperation(cmd, &spec, inputs)
		},
	}

	for _, p := range spec.Params {
		registerParamFlag(cmd.Flags(), p)
	}
	return cmd
}

func registerParamFlag(flags *pflag.FlagSet, p unrealircd.ParamSpec) {
	name := cliName(p.Name)
	usage := p.Description
	if p.Required {
		usage += " (required)"
	}
	if len(p.Enum) > 0 {
		usage += fmt.Sprintf(" [%s]", strings.Join(p.Enum, "|"))
	}

	switch p.Type {
	case unrealircd.ParamInteger:
		def, _ := p.Default.(int)
		flags.Int(name, def, usage)
	case unrealircd.ParamBoolean:
		def, _ := p.Default.(bool)
		flags.Bool(name, def, usage)
	case unrealircd.ParamStringList:
		flags.StringSlice(name, nil, usage)
	case unrealircd.ParamObject:
		flags.String(name, "", usage+" (JSON object)")
	default:
		def, _ := p.Default.(string)
		flags.String(name, def, usage)
	}
}

// collectInputs gathers the flags the user set plus positional arguments.
// Unset flags are left out so catalog defaults apply.
func collectInputs(flags *pflag.FlagSet, spec unrealircd.OperationSpec, positional []unrealircd.ParamSpec, args []string) (map[string]any, error) {
	inputs := map[string]any{}

	for _, p := range spec.Params {
		name := cliName(p.Name)
		if !flags.Changed(name) {
			continue
		}

		var (
			v   any
			err error
		)
		switch p.Type {
		case unrealircd.ParamInteger:
			v, err = flags.GetInt(name)
		case unrealircd.ParamBoolean:
			v, err = flags.GetBool(name)
		case unrealircd.ParamStringList:
			v, err = flags.GetStringSlice(name)
		default:
			v, err = flags.GetString(name)
		}
		if err != nil {
			return nil, err
		}
		inputs[p.Name] = v
	}

	for i, arg := range args {
		p := positional[i]
		if _, set := inputs[p.Name]; set {
			return nil, fmt.Errorf("%s given both as flag and argument", p.Name)
		}
		inputs[p.Name] = arg
	}

	return inputs, nil
}

func runOperation(cmd *cobra.Command, spec *unrealircd.OperationSpec, inputs map[string]any) error {
	if err := shared.ValidateJQ(); err != nil {
		return err
	}
	if err := shared.ConfirmDestructive(spec, inputs); err != nil {
		return err
	}

	session, err := shared.NewSession(cmd)
	if err != nil {
		return err
	}
	defer session.Close()

	result, err := session.Executor.Execute(cmd.Context(), spec.Method, inputs)
	if err != nil {
		return shared.NewUsageError("", err)
	}
	return shared.WriteResult(cmd, result)
}

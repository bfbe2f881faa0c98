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

// Package operations implements the "operations" command listing the
// catalog.
package operations

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tombee/unrealrpc/internal/commands/shared"
	"github.com/tombee/unrealrpc/internal/unrealircd"
)

// Operation is the JSON form of one catalog entry.
type Operation struct {
	Method      string      `json:"method"`
	Tool        string      `json:"tool"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
	Params      []Parameter `json:"params"`
}

// Parameter is the JSON form of one operation parameter.
type Parameter struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Default  any      `json:"default,omitempty"`
	Enum     []string `json:"enum,omitempty"`
}

// NewCommand creates the operations command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "operations [resource | pattern]",
		Short: "List the supported JSON-RPC operations",
		Long: `List every JSON-RPC method this tool knows, with its parameters.

With --json the full parameter description is printed. The optional
argument restricts the list to one resource ("unrealrpc operations server-ban")
or to methods matching a glob ("unrealrpc operations '*.list'").`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ""
			if len(args) == 1 {
				filter = strings.ReplaceAll(args[0], "-", "_")
			}
			return runOperations(cmd, filter)
		},
	}
}

func runOperations(cmd *cobra.Command, filter string) error {
	match, err := matcher(filter)
	if err != nil {
		return shared.NewUsageError("invalid pattern", err)
	}

	ops := collect(match)
	if len(ops) == 0 {
		return shared.NewUsageError(fmt.Sprintf("no operations match %q (resources: %s)",
			filter, strings.Join(unrealircd.Resources(), ", ")), nil)
	}

	if shared.GetJSON() {
		return shared.EmitJSON(cmd.OutOrStdout(), ops)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTable(ops, shared.IsTTY()))
	return err
}

// matcher selects operations by resource name, or by glob over the method
// and tool names when filter contains glob syntax.
func matcher(filter string) (func(unrealircd.OperationSpec) bool, error) {
	switch {
	case filter == "":
		return func(unrealircd.OperationSpec) bool { return true }, nil
	case strings.ContainsAny(filter, "*?[{"):
		if !doublestar.ValidatePattern(filter) {
			return nil, fmt.Errorf("malformed glob %q", filter)
		}
		return func(spec unrealircd.OperationSpec) bool {
			byMethod, _ := doublestar.Match(filter, spec.Method)
			byTool, _ := doublestar.Match(filter, spec.ToolName())
			return byMethod || byTool
		}, nil
	default:
		return func(spec unrealircd.OperationSpec) bool { return spec.Resource == filter }, nil
	}
}

func collect(match func(unrealircd.OperationSpec) bool) []Operation {
	var ops []Operation
	for _, spec := range unrealircd.Catalog() {
		if !match(spec) {
			continue
		}
		op := Operation{
			Method:      spec.Method,
			Tool:        spec.ToolName(),
			Description: spec.Description,
			Tags:        spec.Tags,
			Params:      []Parameter{},
		}
		for _, p := range spec.Params {
			op.Params = append(op.Params, Parameter{
				Name:     p.Name,
				Type:     string(p.Type),
				Required: p.Required,
				Default:  p.Default,
				Enum:     p.Enum,
			})
		}
		ops = append(ops, op)
	}
	return ops
}

// paramSummary lists parameter names, required ones first and marked
// with an asterisk.
func paramSummary(params []Parameter) string {
	var req, opt []string
	for _, p := range params {
		if p.Required {
			req = append(req, p.Name+"*")
		} else {
			opt = append(opt, p.Name)
		}
	}
	return strings.Join(append(req, opt...), " ")
}

func renderTable(ops []Operation, styled bool) string {
	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		rows = append(rows, []string{op.Method, strings.Join(op.Tags, ","), paramSummary(op.Params), op.Description})
	}

	t := table.New().
		Headers("METHOD", "TAGS", "PARAMS", "DESCRIPTION").
		Rows(rows...)

	if !styled {
		return t.Border(lipgloss.HiddenBorder()).String()
	}

	return t.
		Border(lipgloss.RoundedBorder()).
		BorderStyle(shared.Muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return style.Inherit(shared.Header)
			case col == 1 && strings.Contains(rows[row][1], unrealircd.TagDestructive):
				return style.Inherit(shared.StatusWarn)
			}
			return style
		}).
		String()
}

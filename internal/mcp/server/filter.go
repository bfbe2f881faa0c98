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

package server

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/tombee/unrealrpc/internal/unrealircd"
)

// toolEnv is the environment a tool filter expression is evaluated in.
type toolEnv struct {
	Method      string   `expr:"method"`
	Tool        string   `expr:"tool"`
	Resource    string   `expr:"resource"`
	Action      string   `expr:"action"`
	Tags        []string `expr:"tags"`
	Read        bool     `expr:"read"`
	Destructive bool     `expr:"destructive"`
}

func envFor(spec *unrealircd.OperationSpec) toolEnv {
	return toolEnv{
		Method:      spec.Method,
		Tool:        spec.ToolName(),
		Resource:    spec.Resource,
		Action:      spec.Action,
		Tags:        spec.Tags,
		Read:        spec.HasTag(unrealircd.TagRead),
		Destructive: spec.HasTag(unrealircd.TagDestructive),
	}
}

// ToolFilter decides which catalog operations are exposed as tools.
//
// Expressions see method, tool, resource, action, tags, read and
// destructive, and must return a boolean:
//
//	resource in ["channel", "user"] && !destructive
//	method startsWith "server_ban." || "read" in tags
type ToolFilter struct {
	source  string
	program *vm.Program
}

// CompileToolFilter compiles a filter expression. An empty expression
// yields a nil filter that allows every operation.
func CompileToolFilter(source string) (*ToolFilter, error) {
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.Env(toolEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid tool filter: %w", err)
	}
	return &ToolFilter{source: source, program: program}, nil
}

// Allow reports whether the operation passes the filter.
func (f *ToolFilter) Allow(spec *unrealircd.OperationSpec) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, envFor(spec))
	if err != nil {
		return false, fmt.Errorf("tool filter %q failed for %s: %w", f.source, spec.Method, err)
	}
	allowed, _ := out.(bool)
	return allowed, nil
}

// String returns the filter source.
func (f *ToolFilter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

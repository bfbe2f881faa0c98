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
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/unrealrpc/internal/unrealircd"
)

// OperationExecutor runs a catalog operation. *unrealircd.Dispatcher
// satisfies it.
type OperationExecutor interface {
	Execute(ctx context.Context, method string, inputs map[string]any) (any, error)
}

// registerOperationTools adds one tool per catalog operation that passes
// the read-only gate and the filter.
func (s *Server) registerOperationTools(readOnly bool, filter *ToolFilter) error {
	for _, spec := range unrealircd.Catalog() {
		if readOnly && !spec.HasTag(unrealircd.TagRead) {
			continue
		}
		allowed, err := filter.Allow(&spec)
		if err != nil {
			return err
		}
		if !allowed {
			continue
		}
		s.mcpServer.AddTool(toolFor(&spec), s.createOperationHandler(spec.Method))
		s.tools = append(s.tools, spec.ToolName())
	}
	return nil
}

// toolFor builds the MCP tool definition for an operation.
func toolFor(spec *unrealircd.OperationSpec) mcp.Tool {
	properties := make(map[string]any, len(spec.Params))
	var required []string

	for _, p := range spec.Params {
		properties[p.Name] = paramSchema(p)
		if p.Required {
			required = append(required, p.Name)
		}
	}

	readOnly := spec.HasTag(unrealircd.TagRead)
	return mcp.Tool{
		Name:        spec.ToolName(),
		Description: fmt.Sprintf("%s (JSON-RPC method %s)", spec.Description, spec.Method),
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   required,
		},
		Annotations: mcp.ToolAnnotation{
			Title:           spec.Description,
			ReadOnlyHint:    mcp.ToBoolPtr(readOnly),
			DestructiveHint: mcp.ToBoolPtr(spec.HasTag(unrealircd.TagDestructive)),
			IdempotentHint:  mcp.ToBoolPtr(readOnly),
			OpenWorldHint:   mcp.ToBoolPtr(false),
		},
	}
}

// paramSchema renders one parameter as a JSON Schema property.
func paramSchema(p unrealircd.ParamSpec) map[string]any {
	schema := map[string]any{"description": p.Description}

	switch p.Type {
	case unrealircd.ParamStringList:
		schema["type"] = "array"
		schema["items"] = map[string]any{"type": "string"}
	default:
		schema["type"] = string(p.Type)
	}
	if len(p.Enum) > 0 {
		schema["enum"] = p.Enum
	}
	if p.Default != nil {
		schema["default"] = p.Default
	}
	return schema
}

// createOperationHandler routes a tool call to the executor. Input errors
// and failure payloads are both reported as tool errors so the agent sees
// them; the failure payload text is already redacted by the client.
func (s *Server) createOperationHandler(method string) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		s.logger.Debug("Executing operation", "method", method)

		result, err := s.executor.Execute(ctx, method, args)
		if err != nil {
			s.logger.Warn("Operation rejected", "method", method, "error", err)
			return errorResponse(err.Error()), nil
		}

		if unrealircd.IsFailure(result) {
			return errorResponse(jsonText(result)), nil
		}
		return mcp.NewToolResultText(jsonText(result)), nil
	}
}

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

package unrealircd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrUnknownOperation is returned for methods missing from the catalog.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrMissingParameter is returned when a required input is absent.
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrInvalidParameter is returned when an input cannot be converted to
	// its declared type or is outside its enum.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnknownParameter is returned for inputs an operation does not
	// accept.
	ErrUnknownParameter = errors.New("unknown parameter")
)

// Caller is satisfied by *Client.
type Caller interface {
	Call(ctx context.Context, method string, params map[string]any) any
}

// Dispatcher executes catalog operations from loosely typed inputs, such as
// CLI flags or MCP tool arguments.
type Dispatcher struct {
	caller Caller
}

// NewDispatcher creates a dispatcher issuing calls through caller.
func NewDispatcher(caller Caller) *Dispatcher {
	return &Dispatcher{caller: caller}
}

// Execute resolves inputs against the operation's parameter specs and calls
// it. Input errors are returned before any request is sent; once the call is
// made, its outcome (including failure payloads) is returned as the value.
func (d *Dispatcher) Execute(ctx context.Context, method string, inputs map[string]any) (any, error) {
	spec, ok := Lookup(method)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, method)
	}

	params, err := ResolveParams(spec, inputs)
	if err != nil {
		return nil, err
	}
	return d.caller.Call(ctx, spec.Method, params), nil
}

// ResolveParams builds request parameters for spec from inputs: defaults are
// applied, values coerced to their declared types, and empty optional values
// dropped.
func ResolveParams(spec *OperationSpec, inputs map[string]any) (map[string]any, error) {
	params := make(map[string]any, len(spec.Params))

	for _, p := range spec.Params {
		v, present := inputs[p.Name]
		if !present || v == nil {
			switch {
			case p.Default != nil:
				v = cloneDefault(p.Default)
			case p.Required:
				return nil, fmt.Errorf("%w: %s requires %q", ErrMissingParameter, spec.Method, p.Name)
			default:
				continue
			}
		}

		coerced, err := coerce(v, p.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidParameter, p.Name, err)
		}
		if s, ok := coerced.(string); ok && len(p.Enum) > 0 && !(s == "" && p.OmitEmpty) && !slices.Contains(p.Enum, s) {
			return nil, fmt.Errorf("%w: %s must be one of %s, got %q", ErrInvalidParameter, p.Name, strings.Join(p.Enum, ", "), s)
		}
		if p.Required && isEmpty(coerced) && p.Type == ParamString {
			return nil, fmt.Errorf("%w: %s requires %q", ErrMissingParameter, spec.Method, p.Name)
		}
		if p.OmitEmpty && isEmpty(coerced) {
			continue
		}
		params[p.Name] = coerced
	}

	var unknown []string
	for name, v := range inputs {
		if _, declared := spec.Param(name); declared {
			continue
		}
		if !spec.OpenParams {
			unknown = append(unknown, name)
			continue
		}
		params[name] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w for %s: %s", ErrUnknownParameter, spec.Method, strings.Join(unknown, ", "))
	}

	return params, nil
}

func cloneDefault(v any) any {
	if m, ok := v.(map[string]any); ok {
		return maps.Clone(m)
	}
	return v
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case string:
		return x == ""
	case []string:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

// coerce converts v to the Go representation of typ. Strings are parsed, so
// CLI input such as "2" or "true" is accepted for integer and boolean params.
func coerce(v any, typ ParamType) (any, error) {
	switch typ {
	case ParamString:
		switch x := v.(type) {
		case string:
			return x, nil
		case json.Number:
			return x.String(), nil
		case bool, int, int64, float64:
			return fmt.Sprint(x), nil
		}
	case ParamInteger:
		switch x := v.(type) {
		case int:
			return x, nil
		case int64:
			return int(x), nil
		case float64:
			if x != math.Trunc(x) {
				return nil, fmt.Errorf("expected an integer, got %v", x)
			}
			return int(x), nil
		case json.Number:
			n, err := x.Int64()
			if err != nil {
				return nil, fmt.Errorf("expected an integer, got %q", x)
			}
			return int(n), nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(x))
			if err != nil {
				return nil, fmt.Errorf("expected an integer, got %q", x)
			}
			return n, nil
		}
	case ParamBoolean:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(x))
			if err != nil {
				return nil, fmt.Errorf("expected a boolean, got %q", x)
			}
			return b, nil
		}
	case ParamObject:
		switch x := v.(type) {
		case map[string]any:
			return x, nil
		case Params:
			return map[string]any(x), nil
		case string:
			if strings.TrimSpace(x) == "" {
				return map[string]any{}, nil
			}
			var m map[string]any
			if err := json.Unmarshal([]byte(x), &m); err != nil {
				return nil, fmt.Errorf("expected a JSON object: %w", err)
			}
			return m, nil
		}
	case ParamStringList:
		switch x := v.(type) {
		case string:
			var out []string
			for _, s := range strings.Split(x, ",") {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
			return out, nil
		case []string:
			return x, nil
		case []any:
			out := make([]string, 0, len(x))
			for _, item := range x {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("expected a list of strings, got element %v", item)
				}
				out = append(out, s)
			}
			return out, nil
		}
	default:
		return nil, fmt.Errorf("unsupported parameter type %q", typ)
	}
	return nil, fmt.Errorf("expected %s, got %s", typ, reflect.TypeOf(v))
}

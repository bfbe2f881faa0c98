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

import "context"

// Server bans (G-Lines, K-Lines, Z-Lines and Q-Lines), their exceptions, and
// name bans share one shape: a name or mask plus a type.

func (c *Client) ServerBanList(ctx context.Context, params Params) any {
	return c.Call(ctx, MethodServerBanList, merge(map[string]any{}, params))
}

func (c *Client) ServerBanGet(ctx context.Context, name, banType string) any {
	return c.Call(ctx, MethodServerBanGet, map[string]any{"name": name, "type": banType})
}

// ServerBanAdd adds a ban. params may carry reason, duration_string and
// set_by.
func (c *Client) ServerBanAdd(ctx context.Context, name, banType string, params Params) any {
	return c.Call(ctx, MethodServerBanAdd, merge(map[string]any{"name": name, "type": banType}, params))
}

func (c *Client) ServerBanDel(ctx context.Context, name, banType string) any {
	return c.Call(ctx, MethodServerBanDel, map[string]any{"name": name, "type": banType})
}

func (c *Client) ServerBanExceptionList(ctx context.Context, params Params) any {
	return c.Call(ctx, MethodServerBanExceptionList, merge(map[string]any{}, params))
}

func (c *Client) ServerBanExceptionGet(ctx context.Context, name, banType string) any {
	return c.Call(ctx, MethodServerBanExceptionGet, map[string]any{"name": name, "type": banType})
}

// ServerBanExceptionAdd adds an exception. params may carry
// exception_types, reason, set_by and duration_string.
func (c *Client) ServerBanExceptionAdd(ctx context.Context, name, banType string, params Params) any {
	return c.Call(ctx, MethodServerBanExceptionAdd, merge(map[string]any{"name": name, "type": banType}, params))
}

func (c *Client) ServerBanExceptionDel(ctx context.Context, name, banType string) any {
	return c.Call(ctx, MethodServerBanExceptionDel, map[string]any{"name": name, "type": banType})
}

func (c *Client) NameBanList(ctx context.Context, params Params) any {
	return c.Call(ctx, MethodNameBanList, merge(map[string]any{}, params))
}

func (c *Client) NameBanGet(ctx context.Context, name string) any {
	return c.Call(ctx, MethodNameBanGet, map[string]any{"name": name})
}

// NameBanAdd bans a nick or channel name (Q-Line). params may carry reason,
// duration_string and set_by.
func (c *Client) NameBanAdd(ctx context.Context, name string, params Params) any {
	return c.Call(ctx, MethodNameBanAdd, merge(map[string]any{"name": name}, params))
}

func (c *Client) NameBanDel(ctx context.Context, name string) any {
	return c.Call(ctx, MethodNameBanDel, map[string]any{"name": name})
}

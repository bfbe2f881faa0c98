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

func (c *Client) ServerList(ctx context.Context, params Params) any {
	return c.Call(ctx, MethodServerList, merge(map[string]any{}, params))
}

// ServerGet returns details for the named server. An empty name asks the
// server handling the request about itself.
func (c *Client) ServerGet(ctx context.Context, name string, params Params) any {
	return c.Call(ctx, MethodServerGet, merge(map[string]any{"name": name}, params))
}

// ServerRehash reloads the configuration of the server handling the request.
func (c *Client) ServerRehash(ctx context.Context) any {
	return c.Call(ctx, MethodServerRehash, map[string]any{})
}

// ServerConnect links to a server defined in a link block.
func (c *Client) ServerConnect(ctx context.Context, server string) any {
	return c.Call(ctx, MethodServerConnect, map[string]any{"server": server})
}

// ServerDisconnect squits a linked server. The reason is sent only when set.
func (c *Client) ServerDisconnect(ctx context.Context, server, reason string) any {
	params := map[string]any{"server": server}
	if reason != "" {
		params["reason"] = reason
	}
	return c.Call(ctx, MethodServerDisconnect, params)
}

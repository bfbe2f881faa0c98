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

func (c *Client) ChannelList(ctx context.Context, params Params) any {
	return c.Call(ctx, MethodChannelList, merge(map[string]any{}, params))
}

func (c *Client) ChannelGet(ctx context.Context, channel string, params Params) any {
	return c.Call(ctx, MethodChannelGet, merge(map[string]any{"channel": channel}, params))
}

// ChannelSetMode sets channel modes. parameters holds the mode arguments in
// order, space separated, e.g. "+l" with "50".
func (c *Client) ChannelSetMode(ctx context.Context, channel, modes, parameters string) any {
	return c.Call(ctx, MethodChannelSetMode, map[string]any{"channel": channel, "modes": modes, "parameters": parameters})
}

// ChannelSetTopic sets the topic. setBy and setAt are sent only when
// non-empty.
func (c *Client) ChannelSetTopic(ctx context.Context, channel, topic, setBy, setAt string) any {
	params := map[string]any{"channel": channel, "topic": topic}
	if setBy != "" {
		params["set_by"] = setBy
	}
	if setAt != "" {
		params["set_at"] = setAt
	}
	return c.Call(ctx, MethodChannelSetTopic, params)
}

func (c *Client) ChannelKick(ctx context.Context, channel, nick, reason string) any {
	return c.Call(ctx, MethodChannelKick, map[string]any{"channel": channel, "nick": nick, "reason": reason})
}

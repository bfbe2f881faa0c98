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

// UserList lists connected users.
func (c *Client) UserList(ctx context.Context, params Params) any {
	return c.Call(ctx, MethodUserList, merge(map[string]any{}, params))
}

// UserGet returns details for one user.
func (c *Client) UserGet(ctx context.Context, nick string, params Params) any {
	return c.Call(ctx, MethodUserGet, merge(map[string]any{"nick": nick}, params))
}

// UserSetNick changes a user's nick. With force set, nick-change
// restrictions such as +N are bypassed.
func (c *Client) UserSetNick(ctx context.Context, nick, newNick string, force bool) any {
	return c.Call(ctx, MethodUserSetNick, map[string]any{"nick": nick, "newnick": newNick, "force": force})
}

func (c *Client) UserSetUsername(ctx context.Context, nick, username string) any {
	return c.Call(ctx, MethodUserSetUsername, map[string]any{"nick": nick, "username": username})
}

func (c *Client) UserSetRealname(ctx context.Context, nick, realname string) any {
	return c.Call(ctx, MethodUserSetRealname, map[string]any{"nick": nick, "realname": realname})
}

func (c *Client) UserSetVhost(ctx context.Context, nick, vhost string) any {
	return c.Call(ctx, MethodUserSetVhost, map[string]any{"nick": nick, "vhost": vhost})
}

// UserSetMode changes user modes, e.g. "+i-x". Hidden suppresses the
// notice to the user.
func (c *Client) UserSetMode(ctx context.Context, nick, modes string, hidden bool) any {
	return c.Call(ctx, MethodUserSetMode, map[string]any{"nick": nick, "modes": modes, "hidden": hidden})
}

func (c *Client) UserSetSnomask(ctx context.Context, nick, snomask string, hidden bool) any {
	return c.Call(ctx, MethodUserSetSnomask, map[string]any{"nick": nick, "snomask": snomask, "hidden": hidden})
}

// UserSetOper makes a user an IRC operator. params may carry class, modes,
// snomask and vhost.
func (c *Client) UserSetOper(ctx context.Context, nick, operAccount, operClass string, params Params) any {
	return c.Call(ctx, MethodUserSetOper, merge(map[string]any{
		"nick":         nick,
		"oper_account": operAccount,
		"oper_class":   operClass,
	}, params))
}

// UserJoin forces a user into a channel. The key is sent only when set.
func (c *Client) UserJoin(ctx context.Context, nick, channel, key string, force bool) any {
	params := map[string]any{"nick": nick, "channel": channel, "force": force}
	if key != "" {
		params["key"] = key
	}
	return c.Call(ctx, MethodUserJoin, params)
}

func (c *Client) UserPart(ctx context.Context, nick, channel string, force bool) any {
	return c.Call(ctx, MethodUserPart, map[string]any{"nick": nick, "channel": channel, "force": force})
}

// UserKill disconnects a user with a kill message.
func (c *Client) UserKill(ctx context.Context, nick, reason string) any {
	return c.Call(ctx, MethodUserKill, map[string]any{"nick": nick, "reason": reason})
}

// UserQuit disconnects a user as if they quit.
func (c *Client) UserQuit(ctx context.Context, nick, reason string) any {
	return c.Call(ctx, MethodUserQuit, map[string]any{"nick": nick, "reason": reason})
}

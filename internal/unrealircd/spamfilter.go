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

func (c *Client) SpamfilterList(ctx context.Context, params Params) any {
	return c.Call(ctx, MethodSpamfilterList, merge(map[string]any{}, params))
}

func (c *Client) SpamfilterGet(ctx context.Context, id string) any {
	return c.Call(ctx, MethodSpamfilterGet, map[string]any{"id": id})
}

// SpamfilterAdd adds a spamfilter. target is a set of target letters such
// as "cpnN" and action one of block, kill, gline or warn. params may carry
// match_type, reason, ban_duration and set_by.
func (c *Client) SpamfilterAdd(ctx context.Context, match, target, action string, params Params) any {
	return c.Call(ctx, MethodSpamfilterAdd, merge(map[string]any{
		"match":  match,
		"target": target,
		"action": action,
	}, params))
}

func (c *Client) SpamfilterDel(ctx context.Context, id string) any {
	return c.Call(ctx, MethodSpamfilterDel, map[string]any{"id": id})
}

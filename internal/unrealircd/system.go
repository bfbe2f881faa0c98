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

// RPCSetIssuer names the person or program behind this connection, shown in
// server logs and set_by fields.
func (c *Client) RPCSetIssuer(ctx context.Context, issuer string) any {
	return c.Call(ctx, MethodRPCSetIssuer, map[string]any{"issuer": issuer})
}

// RPCInfo lists the JSON-RPC methods the server supports.
func (c *Client) RPCInfo(ctx context.Context) any {
	return c.Call(ctx, MethodRPCInfo, map[string]any{})
}

// RPCAddTimer schedules method to run every interval milliseconds on the
// server under the given timer id.
func (c *Client) RPCAddTimer(ctx context.Context, every int, id, method string, params Params) any {
	timerParams := map[string]any(params)
	if timerParams == nil {
		timerParams = map[string]any{}
	}
	return c.Call(ctx, MethodRPCAddTimer, map[string]any{
		"every":  every,
		"id":     id,
		"method": method,
		"params": timerParams,
	})
}

func (c *Client) RPCDelTimer(ctx context.Context, id string) any {
	return c.Call(ctx, MethodRPCDelTimer, map[string]any{"id": id})
}

// StatsGet returns network statistics. params may carry object_detail_level.
func (c *Client) StatsGet(ctx context.Context, params Params) any {
	return c.Call(ctx, MethodStatsGet, merge(map[string]any{}, params))
}

// LogSend writes a message to the server log.
func (c *Client) LogSend(ctx context.Context, level, subsystem, eventID, msg string) any {
	return c.Call(ctx, MethodLogSend, map[string]any{
		"level":     level,
		"subsystem": subsystem,
		"event_id":  eventID,
		"msg":       msg,
	})
}

// LogList returns recent log entries. params may carry sources.
func (c *Client) LogList(ctx context.Context, params Params) any {
	return c.Call(ctx, MethodLogList, merge(map[string]any{}, params))
}

func (c *Client) LogSubscribe(ctx context.Context, params Params) any {
	return c.Call(ctx, MethodLogSubscribe, merge(map[string]any{}, params))
}

func (c *Client) LogUnsubscribe(ctx context.Context) any {
	return c.Call(ctx, MethodLogUnsubscribe, map[string]any{})
}

// WhowasGet returns WHOWAS history for a nick.
func (c *Client) WhowasGet(ctx context.Context, nick string, params Params) any {
	return c.Call(ctx, MethodWhowasGet, merge(map[string]any{"nick": nick}, params))
}

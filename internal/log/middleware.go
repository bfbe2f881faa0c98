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

package log

import (
	"context"
	"log/slog"
	"time"
)

// RPCCall describes one outbound JSON-RPC call for logging purposes.
type RPCCall struct {
	// Method is the JSON-RPC method, e.g. "channel.list".
	Method string

	// RequestID is the envelope id sent to the server.
	RequestID int

	// CorrelationID is the value of the X-Correlation-ID header.
	CorrelationID string
}

// RPCResult summarises how a call ended.
type RPCResult struct {
	// Success is false when the caller received a failure payload.
	Success bool

	// Error is the failure message, if any.
	Error string

	// ErrorType is the transport classification, if any.
	ErrorType string

	// Duration is the wall time of the call.
	Duration time.Duration
}

func (c *RPCCall) attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String(MethodKey, c.Method),
		slog.Int(RequestIDKey, c.RequestID),
	}
	if c.CorrelationID != "" {
		attrs = append(attrs, slog.String(CorrelationIDKey, c.CorrelationID))
	}
	return attrs
}

// LogRPCCall logs an outbound call at debug level.
func LogRPCCall(ctx context.Context, logger *slog.Logger, call *RPCCall) {
	logger.LogAttrs(ctx, slog.LevelDebug, "rpc call started", call.attrs()...)
}

// LogRPCResult logs the end of a call. Successful calls log at debug level
// and failures at warn.
func LogRPCResult(ctx context.Context, logger *slog.Logger, call *RPCCall, res *RPCResult) {
	attrs := append(call.attrs(),
		slog.Bool("success", res.Success),
		slog.Int64(DurationKey, res.Duration.Milliseconds()),
	)

	if res.Error != "" {
		attrs = append(attrs, slog.String("error", res.Error))
	}
	if res.ErrorType != "" {
		attrs = append(attrs, slog.String("error_type", res.ErrorType))
	}

	level := slog.LevelDebug
	message := "rpc call completed"
	if !res.Success {
		level = slog.LevelWarn
		message = "rpc call failed"
	}

	logger.LogAttrs(ctx, level, message, attrs...)
}

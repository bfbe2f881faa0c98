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
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected valid JSON output: %v (%s)", err, buf.String())
	}
	return entry
}

func TestLogRPCCall(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Format: FormatJSON, Output: &buf})

	LogRPCCall(context.Background(), logger, &RPCCall{
		Method:        "channel.list",
		RequestID:     4242,
		CorrelationID: "corr-1",
	})

	entry := decodeEntry(t, &buf)
	if entry["msg"] != "rpc call started" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
	if entry[MethodKey] != "channel.list" {
		t.Errorf("expected method channel.list, got %v", entry[MethodKey])
	}
	if entry[RequestIDKey] != float64(4242) {
		t.Errorf("expected request_id 4242, got %v", entry[RequestIDKey])
	}
	if entry[CorrelationIDKey] != "corr-1" {
		t.Errorf("expected correlation_id corr-1, got %v", entry[CorrelationIDKey])
	}
}

func TestLogRPCResult_Success(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Format: FormatJSON, Output: &buf})

	LogRPCResult(context.Background(), logger, &RPCCall{Method: "user.list", RequestID: 1}, &RPCResult{
		Success:  true,
		Duration: 1500 * time.Millisecond,
	})

	entry := decodeEntry(t, &buf)
	if entry["level"] != "DEBUG" {
		t.Errorf("expected DEBUG level, got %v", entry["level"])
	}
	if entry[DurationKey] != float64(1500) {
		t.Errorf("expected duration_ms 1500, got %v", entry[DurationKey])
	}
	if _, ok := entry["error"]; ok {
		t.Error("successful call should not log an error field")
	}
	if _, ok := entry[CorrelationIDKey]; ok {
		t.Error("empty correlation id should be omitted")
	}
}

func TestLogRPCResult_Failure(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "warn", Format: FormatJSON, Output: &buf})

	LogRPCResult(context.Background(), logger, &RPCCall{Method: "server.rehash", RequestID: 7}, &RPCResult{
		Error:     "connection refused",
		ErrorType: "connection",
	})

	entry := decodeEntry(t, &buf)
	if entry["msg"] != "rpc call failed" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("expected WARN level, got %v", entry["level"])
	}
	if entry["error"] != "connection refused" || entry["error_type"] != "connection" {
		t.Errorf("expected error fields, got %v", entry)
	}
	if entry["success"] != false {
		t.Errorf("expected success=false, got %v", entry["success"])
	}
}

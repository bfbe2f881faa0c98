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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
)

// Version is the JSON-RPC protocol version tag sent in every request.
const Version = "2.0"

// MaxRequestID bounds request ids to [0, MaxRequestID). Ids only correlate a
// request with its response in logs; the client never pipelines.
const MaxRequestID = 1_000_000

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
	ID      int            `json:"id"`
}

// NewRequest builds an envelope with a random id. A nil params map is sent
// as an empty object.
func NewRequest(method string, params map[string]any) *Request {
	if params == nil {
		params = map[string]any{}
	}
	return &Request{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
		ID:      rand.IntN(MaxRequestID),
	}
}

// RPCError is the error object of a JSON-RPC response.
type RPCError struct {
	Code    json.Number `json:"code"`
	Message string      `json:"message"`
	Data    any         `json:"data,omitempty"`
}

// Error formats the error the way UnrealIRCd operators are used to seeing it,
// e.g. "JSON-RPC Error 403: Access denied".
func (e *RPCError) Error() string {
	return fmt.Sprintf("JSON-RPC Error %s: %s", e.Code, e.Message)
}

// ErrInvalidResponse is returned when the response body is not JSON.
var ErrInvalidResponse = errors.New("invalid JSON-RPC response")

// decodeResponse interprets a response body.
//
// A body with a non-null "error" member yields an *RPCError. A body with a
// "result" member yields that member, whatever its value. Any other JSON body
// is returned whole.
func decodeResponse(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, describeBody(err, body))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrInvalidResponse)
	}

	envelope, ok := raw.(map[string]any)
	if !ok {
		return raw, nil
	}

	if errVal, present := envelope["error"]; present && errVal != nil {
		return nil, toRPCError(errVal)
	}
	if result, present := envelope["result"]; present {
		return result, nil
	}
	return envelope, nil
}

func toRPCError(v any) *RPCError {
	obj, ok := v.(map[string]any)
	if !ok {
		return &RPCError{Code: "0", Message: fmt.Sprint(v)}
	}

	rpcErr := &RPCError{Code: "0", Data: obj["data"]}
	switch code := obj["code"].(type) {
	case json.Number:
		rpcErr.Code = code
	case string:
		rpcErr.Code = json.Number(code)
	}
	if msg, ok := obj["message"].(string); ok {
		rpcErr.Message = msg
	} else if obj["message"] != nil {
		rpcErr.Message = fmt.Sprint(obj["message"])
	}
	return rpcErr
}

func describeBody(err error, body []byte) string {
	const maxSnippet = 120
	if len(body) == 0 {
		return "empty body"
	}
	snippet := string(body)
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet] + "..."
	}
	return fmt.Sprintf("%v (body: %q)", err, snippet)
}

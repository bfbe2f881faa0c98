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

// Package mock provides an in-process UnrealIRCd JSON-RPC endpoint for tests.
package mock

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Call is one request received by an RPCServer.
type Call struct {
	Method     string
	Params     map[string]any
	Authorized bool
}

type reply struct {
	result  any
	code    int
	message string
	isError bool
}

// RPCServer answers JSON-RPC 2.0 requests with canned results per method.
// Methods without a reply get a "Method not found" error.
type RPCServer struct {
	*httptest.Server

	Username string
	Password string

	mu      sync.Mutex
	replies map[string]reply
	calls   []Call
}

// NewRPCServer starts a plain HTTP server that is closed with the test.
func NewRPCServer(t testing.TB) *RPCServer {
	t.Helper()
	s := &RPCServer{
		Username: "apiuser",
		Password: "apipass",
		replies:  map[string]reply{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Reply makes method return result.
func (s *RPCServer) Reply(method string, result any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[method] = reply{result: result}
}

// Fail makes method return a JSON-RPC error object.
func (s *RPCServer) Fail(method string, code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[method] = reply{code: code, message: message, isError: true}
}

// Calls returns the requests received so far.
func (s *RPCServer) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// LastCall returns the most recent request, or false if there was none.
func (s *RPCServer) LastCall() (Call, bool) {
	calls := s.Calls()
	if len(calls) == 0 {
		return Call{}, false
	}
	return calls[len(calls)-1], true
}

func (s *RPCServer) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JSONRPC string         `json:"jsonrpc"`
		Method  string         `json:"method"`
		Params  map[string]any `json:"params"`
		ID      any            `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	user, pass, ok := r.BasicAuth()
	authorized := ok && user == s.Username && pass == s.Password

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: req.Method, Params: req.Params, Authorized: authorized})
	rep, found := s.replies[req.Method]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !authorized {
		// UnrealIRCd answers bad credentials with a 401 and no JSON body.
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Unauthorized"))
		return
	}

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID, "method": req.Method}
	switch {
	case !found:
		resp["error"] = map[string]any{"code": -32601, "message": "Method not found"}
	case rep.isError:
		resp["error"] = map[string]any{"code": rep.code, "message": rep.message}
	default:
		resp["result"] = rep.result
	}
	_ = json.NewEncoder(w).Encode(resp)
}

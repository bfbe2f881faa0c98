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

// Failure is the payload returned in place of a result when a call fails,
// whether the cause was local, in transport, or a JSON-RPC error object.
//
// The client never returns a Go error for these conditions; callers that
// need to tell them apart use IsFailure or AsFailure on the returned value.
type Failure struct {
	Success     bool               `json:"success"`
	Method      string             `json:"method"`
	Params      map[string]any     `json:"params"`
	Error       string             `json:"error"`
	Credentials FailureCredentials `json:"credentials"`
}

// FailureCredentials identifies the endpoint a failed call was sent to.
// Only the host is included.
type FailureCredentials struct {
	Host string `json:"host"`
}

func newFailure(method string, params map[string]any, err error, host string) *Failure {
	return &Failure{
		Success:     false,
		Method:      method,
		Params:      params,
		Error:       err.Error(),
		Credentials: FailureCredentials{Host: host},
	}
}

// toMap renders the failure as the generic map shape results are returned in.
func (f *Failure) toMap() map[string]any {
	return map[string]any{
		"success": f.Success,
		"method":  f.Method,
		"params":  f.Params,
		"error":   f.Error,
		"credentials": map[string]any{
			"host": f.Credentials.Host,
		},
	}
}

// IsFailure reports whether v, a value returned by the client, is a failure
// payload.
func IsFailure(v any) bool {
	_, ok := AsFailure(v)
	return ok
}

// AsFailure converts a failure payload back into a *Failure. It returns false
// for anything else, including failures whose redacted text no longer parsed
// as JSON and came back as a string.
func AsFailure(v any) (*Failure, bool) {
	switch f := v.(type) {
	case *Failure:
		return f, f != nil
	case Failure:
		return &f, true
	case map[string]any:
		success, ok := f["success"].(bool)
		if !ok || success {
			return nil, false
		}
		msg, ok := f["error"].(string)
		if !ok {
			return nil, false
		}
		creds, ok := f["credentials"].(map[string]any)
		if !ok {
			return nil, false
		}

		out := &Failure{Error: msg}
		out.Method, _ = f["method"].(string)
		out.Params, _ = f["params"].(map[string]any)
		out.Credentials.Host, _ = creds["host"].(string)
		return out, true
	}
	return nil, false
}

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

// Package transport provides the HTTP layer used to reach the UnrealIRCd
// JSON-RPC endpoint.
//
// The transport separates protocol concerns (TLS, basic authentication,
// timeouts, retries, rate limiting) from the JSON-RPC framing done by the
// client. Every failure is returned as a *TransportError so callers can
// classify it without inspecting error strings.
package transport

import (
	"context"
)

// Transport executes requests with protocol-specific handling.
type Transport interface {
	// Execute sends a request and returns a response.
	// The context controls cancellation and deadlines.
	// Returns *TransportError on failure.
	Execute(ctx context.Context, req *Request) (*Response, error)

	// Name returns the transport identifier (e.g., "http").
	Name() string

	// SetRateLimiter configures rate limiting for this transport.
	// Rate limiting occurs before request execution.
	SetRateLimiter(limiter RateLimiter)
}

// Request represents a transport-agnostic request.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS)
	// Required, must be non-empty
	Method string

	// URL is the full request URL
	// Required, must be valid per RFC 3986
	URL string

	// Headers are request headers (case-insensitive)
	// Optional, may be nil or empty map
	Headers map[string]string

	// Body is the request body
	// Optional, may be nil or empty slice
	Body []byte

	// Metadata contains transport-specific data
	Metadata map[string]interface{}
}

// Response represents a transport-agnostic response.
type Response struct {
	// StatusCode is the HTTP status code
	StatusCode int

	// Headers contains response headers
	Headers map[string][]string

	// Body is the response body
	Body []byte

	// Metadata contains transport-specific data (request id, retry count)
	Metadata map[string]interface{}
}

// Standard metadata keys used across transports
const (
	// MetadataRequestID is the service request ID
	MetadataRequestID = "request_id"

	// MetadataRetryCount is the number of retries performed for this request
	MetadataRetryCount = "retry_count"

	// MetadataRetryAfter carries the raw Retry-After header of a failed response
	MetadataRetryAfter = "retry_after"
)

// RateLimiter provides rate limiting for transport requests.
// Implementations should block until a request is allowed.
type RateLimiter interface {
	// Wait blocks until a request is allowed under the rate limit.
	// Returns an error if the context is cancelled before the request can proceed.
	Wait(ctx context.Context) error
}

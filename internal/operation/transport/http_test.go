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

package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPTransportConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *HTTPTransportConfig
		wantErr bool
	}{
		{
			name: "valid config",
			config: &HTTPTransportConfig{
				BaseURL: "https://irc.example.org:8600/api",
				Timeout: 30 * time.Second,
			},
		},
		{
			name: "valid with basic auth and empty password",
			config: &HTTPTransportConfig{
				BaseURL: "https://irc.example.org:8600/api",
				Auth:    &AuthConfig{Username: "adminpanel"},
			},
		},
		{
			name: "valid with basic auth and empty username",
			config: &HTTPTransportConfig{
				BaseURL: "https://irc.example.org:8600/api",
				Auth:    &AuthConfig{Password: "secret"},
			},
		},
		{
			name:    "missing base_url",
			config:  &HTTPTransportConfig{Timeout: 30 * time.Second},
			wantErr: true,
		},
		{
			name:    "invalid base_url (no scheme)",
			config:  &HTTPTransportConfig{BaseURL: "irc.example.org:8600"},
			wantErr: true,
		},
		{
			name:    "invalid base_url (invalid scheme)",
			config:  &HTTPTransportConfig{BaseURL: "ftp://irc.example.org"},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			config:  &HTTPTransportConfig{BaseURL: "https://irc.example.org", Timeout: -time.Second},
			wantErr: true,
		},
		{
			name: "invalid retry config",
			config: &HTTPTransportConfig{
				BaseURL:     "https://irc.example.org",
				RetryConfig: &RetryConfig{MaxAttempts: 0},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPTransport_Execute_BasicAuthAndHeaders(t *testing.T) {
	var gotUser, gotPass, gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("X-Request-ID", "req-42")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":true}`))
	}))
	defer server.Close()

	tr, err := NewHTTPTransport(&HTTPTransportConfig{
		BaseURL: server.URL,
		Auth:    &AuthConfig{Username: "adminpanel", Password: "hunter2"},
	})
	if err != nil {
		t.Fatalf("NewHTTPTransport() error = %v", err)
	}

	resp, err := tr.Execute(context.Background(), &Request{
		Method: "POST",
		URL:    server.URL,
		Body:   []byte(`{"jsonrpc":"2.0"}`),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if gotUser != "adminpanel" || gotPass != "hunter2" {
		t.Errorf("basic auth = %q/%q, want adminpanel/hunter2", gotUser, gotPass)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody != `{"jsonrpc":"2.0"}` {
		t.Errorf("body = %q", gotBody)
	}
	if resp.Metadata[MetadataRequestID] != "req-42" {
		t.Errorf("request id metadata = %v", resp.Metadata[MetadataRequestID])
	}
	if resp.Metadata[MetadataRetryCount] != 0 {
		t.Errorf("retry count = %v, want 0", resp.Metadata[MetadataRetryCount])
	}
}

func TestHTTPTransport_Execute_SelfSignedCertificate(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	defer server.Close()

	t.Run("rejected by default", func(t *testing.T) {
		tr, err := NewHTTPTransport(&HTTPTransportConfig{BaseURL: server.URL, RetryConfig: NoRetry()})
		if err != nil {
			t.Fatalf("NewHTTPTransport() error = %v", err)
		}
		_, err = tr.Execute(context.Background(), &Request{Method: "POST", URL: server.URL})
		if err == nil {
			t.Fatal("expected TLS verification failure")
		}
		if got := TypeOf(err); got != ErrorTypeTLS {
			t.Errorf("error type = %q, want %q (err: %v)", got, ErrorTypeTLS, err)
		}
	})

	t.Run("accepted when insecure", func(t *testing.T) {
		tr, err := NewHTTPTransport(&HTTPTransportConfig{BaseURL: server.URL, TLSInsecure: true})
		if err != nil {
			t.Fatalf("NewHTTPTransport() error = %v", err)
		}
		resp, err := tr.Execute(context.Background(), &Request{Method: "POST", URL: server.URL})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if string(resp.Body) != `{"result":"ok"}` {
			t.Errorf("body = %s", resp.Body)
		}
	})
}

func TestHTTPTransport_Execute_StatusErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":-32001,"message":"Unauthorized"}}`))
	}))
	defer server.Close()

	t.Run("classified as auth error", func(t *testing.T) {
		tr, _ := NewHTTPTransport(&HTTPTransportConfig{BaseURL: server.URL})
		_, err := tr.Execute(context.Background(), &Request{Method: "POST", URL: server.URL})

		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("expected TransportError, got %v", err)
		}
		if te.Type != ErrorTypeAuth || te.StatusCode != 401 || te.Retryable {
			t.Errorf("unexpected error %+v", te)
		}
		if !strings.Contains(te.Message, "Unauthorized") {
			t.Errorf("message should include small body, got %q", te.Message)
		}
	})

	t.Run("returned as response when ignored", func(t *testing.T) {
		tr, _ := NewHTTPTransport(&HTTPTransportConfig{BaseURL: server.URL, IgnoreStatusErrors: true})
		resp, err := tr.Execute(context.Background(), &Request{Method: "POST", URL: server.URL})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if resp.StatusCode != 401 {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})
}

func TestHTTPTransport_Execute_Retry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	retry := &RetryConfig{
		MaxAttempts:     3,
		InitialBackoff:  time.Millisecond,
		MaxBackoff:      5 * time.Millisecond,
		BackoffFactor:   2,
		RetryableErrors: []int{503},
	}
	tr, _ := NewHTTPTransport(&HTTPTransportConfig{BaseURL: server.URL, RetryConfig: retry})

	resp, err := tr.Execute(context.Background(), &Request{Method: "POST", URL: server.URL})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if resp.Metadata[MetadataRetryCount] != 2 {
		t.Errorf("retry count = %v, want 2", resp.Metadata[MetadataRetryCount])
	}
}

func TestHTTPTransport_Execute_NoRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	tr, _ := NewHTTPTransport(&HTTPTransportConfig{BaseURL: server.URL, RetryConfig: NoRetry()})
	_, err := tr.Execute(context.Background(), &Request{Method: "POST", URL: server.URL})
	if TypeOf(err) != ErrorTypeServer {
		t.Errorf("error type = %q, want server", TypeOf(err))
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want exactly one attempt", calls.Load())
	}
}

func TestHTTPTransport_Execute_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	tr, _ := NewHTTPTransport(&HTTPTransportConfig{BaseURL: url, RetryConfig: NoRetry()})
	_, err := tr.Execute(context.Background(), &Request{Method: "POST", URL: url})
	if TypeOf(err) != ErrorTypeConnection {
		t.Fatalf("error type = %q, want connection (err: %v)", TypeOf(err), err)
	}
	if !strings.Contains(err.Error(), "connection") {
		t.Errorf("error should describe the connection failure: %v", err)
	}
}

func TestHTTPTransport_Execute_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	tr, _ := NewHTTPTransport(&HTTPTransportConfig{
		BaseURL:     server.URL,
		Timeout:     50 * time.Millisecond,
		RetryConfig: NoRetry(),
	})
	_, err := tr.Execute(context.Background(), &Request{Method: "POST", URL: server.URL})
	if TypeOf(err) != ErrorTypeTimeout {
		t.Errorf("error type = %q, want timeout (err: %v)", TypeOf(err), err)
	}
}

func TestHTTPTransport_Execute_InvalidRequest(t *testing.T) {
	tr, _ := NewHTTPTransport(&HTTPTransportConfig{BaseURL: "https://irc.example.org"})

	tests := []struct {
		name string
		req  *Request
	}{
		{"nil request", nil},
		{"missing method", &Request{URL: "https://irc.example.org"}},
		{"bad method", &Request{Method: "FETCH", URL: "https://irc.example.org"}},
		{"missing url", &Request{Method: "POST"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.Execute(context.Background(), tt.req)
			if TypeOf(err) != ErrorTypeInvalidReq {
				t.Errorf("error type = %q, want invalid_request", TypeOf(err))
			}
		})
	}
}

type countingLimiter struct {
	waits int
	err   error
}

func (c *countingLimiter) Wait(ctx context.Context) error {
	c.waits++
	return c.err
}

func TestHTTPTransport_RateLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tr, _ := NewHTTPTransport(&HTTPTransportConfig{BaseURL: server.URL})
	limiter := &countingLimiter{}
	tr.SetRateLimiter(limiter)

	if _, err := tr.Execute(context.Background(), &Request{Method: "POST", URL: server.URL}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if limiter.waits != 1 {
		t.Errorf("limiter waits = %d, want 1", limiter.waits)
	}

	limiter.err = context.Canceled
	_, err := tr.Execute(context.Background(), &Request{Method: "POST", URL: server.URL})
	if TypeOf(err) != ErrorTypeCancelled {
		t.Errorf("error type = %q, want cancelled", TypeOf(err))
	}
}

func TestNewTokenBucketLimiter(t *testing.T) {
	if l := NewTokenBucketLimiter(0, 1); l != nil {
		t.Error("zero rate should disable limiting")
	}

	l := NewTokenBucketLimiter(1000, 0)
	if l == nil {
		t.Fatal("expected limiter")
	}
	if err := l.Wait(context.Background()); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestHTTPTransport_Name(t *testing.T) {
	tr, _ := NewHTTPTransport(&HTTPTransportConfig{BaseURL: "https://irc.example.org"})
	if tr.Name() != "http" {
		t.Errorf("Name() = %q, want http", tr.Name())
	}
}

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
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single request when the config leaves Timeout unset.
const DefaultTimeout = 30 * time.Second

// maxErrorBodyInMessage caps how much of an error body is copied into
// TransportError.Message.
const maxErrorBodyInMessage = 500

// HTTPTransport implements the Transport interface for HTTP/HTTPS requests.
// Supports basic authentication with configurable timeouts, TLS settings,
// and default headers.
type HTTPTransport struct {
	config      *HTTPTransportConfig
	client      *http.Client
	rateLimiter RateLimiter
}

// HTTPTransportConfig configures the HTTP transport.
type HTTPTransportConfig struct {
	// BaseURL is the base URL for requests (required)
	BaseURL string

	// Timeout is the request timeout (default: 30s)
	Timeout time.Duration

	// Headers are default headers applied to all requests
	Headers map[string]string

	// Auth enables basic authentication when set
	Auth *AuthConfig

	// TLSInsecure disables TLS certificate validation (default: false).
	// UnrealIRCd ships with a self-signed certificate by default.
	TLSInsecure bool

	// RetryConfig configures retry behavior (optional, uses defaults if nil)
	RetryConfig *RetryConfig

	// IgnoreStatusErrors returns 4xx/5xx responses as regular responses
	// instead of TransportErrors, leaving interpretation of the body to the
	// caller.
	IgnoreStatusErrors bool
}

// AuthConfig holds basic auth credentials. Empty values are sent as is;
// the daemon decides whether they are acceptable.
type AuthConfig struct {
	Username string
	Password string
}

// TransportType returns "http".
func (c *HTTPTransportConfig) TransportType() string {
	return "http"
}

// Validate checks if the configuration is valid.
func (c *HTTPTransportConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if parsedURL.Scheme == "" {
		return fmt.Errorf("base_url must include scheme (http:// or https://)")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base_url must include host")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base_url scheme must be http or https, got %q", parsedURL.Scheme)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %v", c.Timeout)
	}

	if c.RetryConfig != nil {
		if err := c.RetryConfig.Validate(); err != nil {
			return fmt.Errorf("invalid retry configuration: %w", err)
		}
	}

	return nil
}

// NewHTTPTransport creates a new HTTP transport with the given configuration.
func NewHTTPTransport(config *HTTPTransportConfig) (*HTTPTransport, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,

			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			ExpectContinueTimeout: 1 * time.Second,

			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: config.TLSInsecure,
			},
		},
	}

	return &HTTPTransport{
		config: config,
		client: client,
	}, nil
}

// Name returns "http".
func (t *HTTPTransport) Name() string {
	return "http"
}

// SetRateLimiter configures rate limiting for this transport.
func (t *HTTPTransport) SetRateLimiter(limiter RateLimiter) {
	t.rateLimiter = limiter
}

// Execute sends an HTTP request and returns the response.
// Implements retry logic with exponential backoff.
func (t *HTTPTransport) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := t.validateRequest(req); err != nil {
		return nil, &TransportError{
			Type:      ErrorTypeInvalidReq,
			Message:   fmt.Sprintf("invalid request: %s", err.Error()),
			Retryable: false,
			Cause:     err,
		}
	}

	retryConfig := t.config.RetryConfig
	if retryConfig == nil {
		retryConfig = DefaultRetryConfig()
	}

	return Execute(ctx, retryConfig, func(ctx context.Context) (*Response, error) {
		return t.executeOnce(ctx, req)
	})
}

// executeOnce executes a single HTTP request without retry logic.
func (t *HTTPTransport) executeOnce(ctx context.Context, req *Request) (*Response, error) {
	if t.rateLimiter != nil {
		if err := t.rateLimiter.Wait(ctx); err != nil {
			return nil, &TransportError{
				Type:      ErrorTypeCancelled,
				Message:   "rate limit wait cancelled",
				Retryable: false,
				Cause:     err,
			}
		}
	}

	httpReq, err := t.buildHTTPRequest(ctx, req)
	if err != nil {
		return nil, &TransportError{
			Type:      ErrorTypeInvalidReq,
			Message:   fmt.Sprintf("failed to build HTTP request: %s", err.Error()),
			Retryable: false,
			Cause:     err,
		}
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, classifyHTTPError(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{
			Type:      ErrorTypeConnection,
			Message:   fmt.Sprintf("failed to read response body: %s", err.Error()),
			Retryable: true,
			Cause:     err,
		}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
		Metadata:   make(map[string]interface{}),
	}

	if requestID := httpResp.Header.Get("X-Request-ID"); requestID != "" {
		resp.Metadata[MetadataRequestID] = requestID
	}

	if httpResp.StatusCode >= 400 && !t.config.IgnoreStatusErrors {
		if retryAfter := httpResp.Header.Get("Retry-After"); retryAfter != "" {
			resp.Metadata[MetadataRetryAfter] = retryAfter
		}
		return nil, classifyHTTPStatusError(httpResp.StatusCode, body, resp.Metadata)
	}

	return resp, nil
}

// validateRequest checks if the request is valid.
func (t *HTTPTransport) validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}
	if req.Method == "" {
		return fmt.Errorf("method is required")
	}

	validMethods := map[string]bool{
		"GET": true, "POST": true, "PUT": true, "DELETE": true,
		"PATCH": true, "HEAD": true, "OPTIONS": true,
	}
	if !validMethods[req.Method] {
		return fmt.Errorf("invalid HTTP method: %q", req.Method)
	}

	if req.URL == "" {
		return fmt.Errorf("URL is required")
	}
	if _, err := url.Parse(req.URL); err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	return nil
}

// buildHTTPRequest constructs an http.Request from a transport Request.
func (t *HTTPTransport) buildHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range t.config.Headers {
		httpReq.Header.Set(key, value)
	}
	// Request headers override defaults
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if t.config.Auth != nil {
		httpReq.SetBasicAuth(t.config.Auth.Username, t.config.Auth.Password)
	}

	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return httpReq, nil
}

// classifyHTTPError classifies HTTP client errors into TransportError types.
// The message keeps the underlying cause so operators can tell a refused
// connection from a DNS failure.
func classifyHTTPError(err error) *TransportError {
	switch {
	case errors.Is(err, context.Canceled):
		return &TransportError{
			Type:      ErrorTypeCancelled,
			Message:   "request cancelled",
			Retryable: false,
			Cause:     err,
		}
	case errors.Is(err, context.DeadlineExceeded) || isTimeoutError(err):
		return &TransportError{
			Type:      ErrorTypeTimeout,
			Message:   fmt.Sprintf("request timeout: %s", err.Error()),
			Retryable: true,
			Cause:     err,
		}
	case isTLSError(err):
		return &TransportError{
			Type:      ErrorTypeTLS,
			Message:   fmt.Sprintf("TLS error: %s", err.Error()),
			Retryable: false,
			Cause:     err,
		}
	case isConnectionError(err):
		return &TransportError{
			Type:      ErrorTypeConnection,
			Message:   fmt.Sprintf("connection error: %s", err.Error()),
			Retryable: true,
			Cause:     err,
		}
	default:
		return &TransportError{
			Type:      ErrorTypeConnection,
			Message:   fmt.Sprintf("HTTP error: %s", err.Error()),
			Retryable: true,
			Cause:     err,
		}
	}
}

// classifyHTTPStatusError classifies HTTP status code errors into TransportError types.
func classifyHTTPStatusError(statusCode int, body []byte, metadata map[string]interface{}) *TransportError {
	var errorType ErrorType
	var retryable bool

	switch {
	case statusCode == 401 || statusCode == 403:
		errorType = ErrorTypeAuth
	case statusCode == 429:
		errorType = ErrorTypeRateLimit
		retryable = true
	case statusCode >= 500:
		errorType = ErrorTypeServer
		retryable = true
	case statusCode == 408:
		errorType = ErrorTypeTimeout
		retryable = true
	default:
		errorType = ErrorTypeClient
	}

	message := fmt.Sprintf("HTTP %d", statusCode)
	if len(body) > 0 && len(body) < maxErrorBodyInMessage {
		message = fmt.Sprintf("HTTP %d: %s", statusCode, strings.TrimSpace(string(body)))
	}

	return &TransportError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		Retryable:  retryable,
		Metadata:   metadata,
	}
}

// isTimeoutError checks if an error is a timeout error.
func isTimeoutError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isTLSError checks for certificate verification and handshake failures.
func isTLSError(err error) bool {
	var (
		unknownAuthority x509.UnknownAuthorityError
		invalidCert      x509.CertificateInvalidError
		hostnameErr      x509.HostnameError
		verifyErr        *tls.CertificateVerificationError
		recordErr        tls.RecordHeaderError
	)
	return errors.As(err, &unknownAuthority) ||
		errors.As(err, &invalidCert) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &verifyErr) ||
		errors.As(err, &recordErr)
}

// isConnectionError checks if an error is a connection error.
func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	connectionKeywords := []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network unreachable",
		"eof",
	}
	for _, keyword := range connectionKeywords {
		if strings.Contains(errMsg, keyword) {
			return true
		}
	}

	return false
}

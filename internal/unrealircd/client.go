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

// Package unrealircd is a client for the UnrealIRCd JSON-RPC administrative
// API.
//
// Every call returns a plain value: either the (optionally redacted) result
// or a failure payload describing what went wrong. Transport errors and
// JSON-RPC error objects are reported the same way and never as a Go error,
// so callers that need to branch on failure use IsFailure or AsFailure.
package unrealircd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/unrealrpc/internal/log"
	"github.com/tombee/unrealrpc/internal/operation/transport"
	"github.com/tombee/unrealrpc/internal/redact"
	"github.com/tombee/unrealrpc/internal/tracing"
)

// Credentials identify and authenticate against one JSON-RPC endpoint.
type Credentials struct {
	// Host is the endpoint URL, e.g. https://irc.example.org:8600/api.
	// A bare host[:port] is taken to mean https.
	Host string

	Username string
	Password string

	// AllowSelfSigned disables TLS certificate verification.
	AllowSelfSigned bool
}

// Config configures a Client.
type Config struct {
	Credentials Credentials
	Redaction   redact.Options

	// Timeout bounds each call (default: 30s).
	Timeout time.Duration

	// RateLimit caps outgoing calls per second; zero disables limiting.
	RateLimit float64
	RateBurst int

	// Retry controls retries of transport failures. Nil means a single
	// attempt.
	Retry *transport.RetryConfig

	Logger *slog.Logger
	Tracer trace.Tracer

	// Transport overrides the HTTP transport built from the fields above.
	Transport transport.Transport
}

// ErrInvalidConfig wraps errors building the transport from a Config.
var ErrInvalidConfig = errors.New("invalid client configuration")

// Client issues JSON-RPC calls. It holds only immutable state and is safe
// for concurrent use.
type Client struct {
	creds     Credentials
	url       string
	transport transport.Transport
	redactor  *redact.Redactor
	logger    *slog.Logger
	tracer    trace.Tracer

	// initErr is reported as the failure of every call when the transport
	// could not be built, e.g. for a malformed host.
	initErr error
}

// New creates a client. Configuration problems do not fail construction;
// they surface as failure payloads from each call, like any other failure.
func New(cfg Config) *Client {
	c := &Client{
		creds:     cfg.Credentials,
		url:       NormalizeHost(cfg.Credentials.Host),
		transport: cfg.Transport,
		redactor:  redact.New(cfg.Redaction),
		logger:    cfg.Logger,
		tracer:    cfg.Tracer,
	}
	if c.logger == nil {
		c.logger = log.Discard()
	}
	c.logger = log.WithComponent(log.WithHost(c.logger, c.creds.Host), "unrealircd")
	if c.tracer == nil {
		c.tracer = tracing.Tracer()
	}

	if c.transport == nil {
		t, err := newHTTPTransport(c.url, cfg)
		if err != nil {
			c.initErr = fmt.Errorf("%w: %w", ErrInvalidConfig, err)
			return c
		}
		c.transport = t
	}

	if limiter := transport.NewTokenBucketLimiter(cfg.RateLimit, cfg.RateBurst); limiter != nil {
		c.transport.SetRateLimiter(limiter)
	}
	return c
}

func newHTTPTransport(url string, cfg Config) (*transport.HTTPTransport, error) {
	retry := cfg.Retry
	if retry == nil {
		retry = transport.NoRetry()
	}

	tcfg := &transport.HTTPTransportConfig{
		BaseURL:            url,
		Timeout:            cfg.Timeout,
		TLSInsecure:        cfg.Credentials.AllowSelfSigned,
		RetryConfig:        retry,
		IgnoreStatusErrors: true,
		Auth: &transport.AuthConfig{
			Username: cfg.Credentials.Username,
			Password: cfg.Credentials.Password,
		},
	}
	return transport.NewHTTPTransport(tcfg)
}

// NormalizeHost trims host and prefixes https:// when no scheme is given.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" || strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}

// Host returns the configured endpoint as given by the caller.
func (c *Client) Host() string {
	return c.creds.Host
}

// Call invokes method with params and returns the redacted result, or a
// redacted failure payload. params may be nil.
func (c *Client) Call(ctx context.Context, method string, params map[string]any) any {
	if params == nil {
		params = map[string]any{}
	}
	start := time.Now()

	req := NewRequest(method, params)
	correlationID := tracing.FromContext(ctx)
	ctx = tracing.ToContext(ctx, correlationID)

	ctx, span := c.tracer.Start(ctx, "unrealircd "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.system", "jsonrpc"),
			attribute.String("rpc.method", method),
			attribute.Int("rpc.jsonrpc.request_id", req.ID),
			attribute.String("correlation_id", correlationID.String()),
		),
	)
	defer span.End()

	call := &log.RPCCall{Method: method, RequestID: req.ID, CorrelationID: correlationID.String()}
	log.LogRPCCall(ctx, c.logger, call)

	value, err := c.roundTrip(ctx, req, correlationID)
	outcome := outcomeSuccess
	if err != nil {
		outcome = classifyOutcome(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		value = newFailure(method, params, err, c.creds.Host).toMap()
	}
	span.SetAttributes(attribute.String("unrealrpc.outcome", outcome))

	out := c.redact(ctx, value)

	duration := time.Since(start)
	recordCall(method, outcome, duration)

	res := &log.RPCResult{Success: err == nil, Duration: duration}
	if err != nil {
		// The failure message may itself contain addresses; log the
		// redacted form when there is one.
		res.Error = err.Error()
		if f, ok := AsFailure(out); ok {
			res.Error = f.Error
		}
		res.ErrorType = outcome
	}
	log.LogRPCResult(ctx, c.logger, call, res)

	return out
}

func (c *Client) roundTrip(ctx context.Context, req *Request, correlationID tracing.CorrelationID) (any, error) {
	if c.initErr != nil {
		return nil, c.initErr
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &encodeError{err: err}
	}
	log.Trace(ctx, c.logger, "rpc request body", slog.String("body", string(body)))

	resp, err := c.transport.Execute(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    c.url,
		Headers: map[string]string{
			"Content-Type":              "application/json",
			tracing.HeaderCorrelationID: correlationID.String(),
		},
		Body: body,
	})
	if err != nil {
		return nil, err
	}

	return decodeResponse(resp.Body)
}

func (c *Client) redact(ctx context.Context, v any) any {
	out := c.redactor.Apply(v)
	for _, s := range out.Skipped {
		skippedPatterns.Inc()
		c.logger.WarnContext(ctx, "skipping invalid redaction pattern", "pattern", s.Pattern, log.Error(s.Err))
	}
	if !out.Structured {
		textFallbacks.Inc()
		c.logger.DebugContext(ctx, "redacted value no longer parses as JSON, returning text")
	}
	return out.Value
}

type encodeError struct {
	err error
}

func (e *encodeError) Error() string { return fmt.Sprintf("failed to encode request: %v", e.err) }
func (e *encodeError) Unwrap() error { return e.err }

func classifyOutcome(err error) string {
	var rpcErr *RPCError
	var encErr *encodeError
	switch {
	case errors.As(err, &rpcErr):
		return outcomeRPCError
	case errors.Is(err, ErrInvalidResponse):
		return outcomeInvalidResponse
	case errors.As(err, &encErr):
		return outcomeEncodeError
	}
	if t := transport.TypeOf(err); t != "" {
		return string(t)
	}
	if errors.Is(err, ErrInvalidConfig) {
		return outcomeConfigError
	}
	return outcomeUnknown
}

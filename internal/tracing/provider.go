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

package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the tracer scope used by the RPC client.
const InstrumentationName = "github.com/tombee/unrealrpc"

// Environment variables read by ConfigFromEnv.
const (
	// EnvTrace selects the span exporter: stdout, otlp (gRPC) or otlp-http.
	EnvTrace = "UNREALRPC_TRACE"
	// EnvOTLPEndpoint is the collector address, e.g. localhost:4317.
	EnvOTLPEndpoint = "UNREALRPC_OTLP_ENDPOINT"
	// EnvOTLPInsecure disables TLS towards the collector.
	EnvOTLPInsecure = "UNREALRPC_OTLP_INSECURE"
)

// Exporter names accepted in Config.Exporter.
const (
	ExporterStdout   = "stdout"
	ExporterOTLP     = "otlp"
	ExporterOTLPHTTP = "otlp-http"
)

// ShutdownFunc flushes pending spans and releases the provider.
type ShutdownFunc func(context.Context) error

// Config configures the tracer provider.
type Config struct {
	// Exporter is "stdout" or empty (disabled).
	Exporter string

	// Writer receives exported spans (default: os.Stderr, keeping stdout
	// free for command output).
	Writer io.Writer

	// PrettyPrint enables human-readable span output.
	PrettyPrint bool

	// OTLP configures the otlp and otlp-http exporters.
	OTLP OTLPConfig

	ServiceName    string
	ServiceVersion string
}

// ConfigFromEnv reads the exporter selection from UNREALRPC_TRACE and the
// collector settings from UNREALRPC_OTLP_*.
func ConfigFromEnv(serviceName, version string) Config {
	insecure, _ := strconv.ParseBool(os.Getenv(EnvOTLPInsecure))
	return Config{
		Exporter:       strings.ToLower(strings.TrimSpace(os.Getenv(EnvTrace))),
		PrettyPrint:    true,
		ServiceName:    serviceName,
		ServiceVersion: version,
		OTLP: OTLPConfig{
			Endpoint: strings.TrimSpace(os.Getenv(EnvOTLPEndpoint)),
			Insecure: insecure,
		},
	}
}

// Setup installs a global tracer provider according to cfg. When tracing is
// disabled it returns a no-op shutdown function.
func Setup(cfg Config) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }

	var spanProcessor sdktrace.TracerProviderOption
	switch cfg.Exporter {
	case "", "none", "off":
		return noop, nil
	case ExporterStdout:
		writer := cfg.Writer
		if writer == nil {
			writer = os.Stderr
		}
		opts := []stdouttrace.Option{stdouttrace.WithWriter(writer)}
		if cfg.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err := stdouttrace.New(opts...)
		if err != nil {
			return noop, fmt.Errorf("failed to create console exporter: %w", err)
		}
		// Spans are written as they end.
		spanProcessor = sdktrace.WithSyncer(exporter)
	case ExporterOTLP, ExporterOTLPHTTP:
		exporter, err := newOTLPExporter(context.Background(), cfg.Exporter, cfg.OTLP)
		if err != nil {
			return noop, err
		}
		spanProcessor = sdktrace.WithBatcher(exporter)
	default:
		return noop, fmt.Errorf("unsupported trace exporter %q", cfg.Exporter)
	}

	// Empty schema URL avoids conflicts when merging with the default resource.
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return noop, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		spanProcessor,
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// Tracer returns the tracer used for RPC spans from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

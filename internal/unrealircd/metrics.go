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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Call outcomes used as the "outcome" label. Transport failures use the
// transport error type (connection, timeout, tls, ...) instead.
const (
	outcomeSuccess         = "success"
	outcomeRPCError        = "rpc_error"
	outcomeInvalidResponse = "invalid_response"
	outcomeEncodeError     = "encode_error"
	outcomeConfigError     = "config_error"
	outcomeUnknown         = "unknown"
)

var (
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unrealrpc_calls_total",
			Help: "Total JSON-RPC calls by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	callDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unrealrpc_call_duration_seconds",
			Help:    "Duration of JSON-RPC calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	skippedPatterns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unrealrpc_redaction_skipped_patterns_total",
		Help: "Custom redaction patterns skipped because they failed to compile",
	})

	textFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unrealrpc_redaction_text_fallbacks_total",
		Help: "Redacted values returned as text because they no longer parsed as JSON",
	})
)

func recordCall(method, outcome string, duration time.Duration) {
	callsTotal.WithLabelValues(method, outcome).Inc()
	callDuration.WithLabelValues(method).Observe(duration.Seconds())
}

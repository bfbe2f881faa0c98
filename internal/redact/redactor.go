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

// Package redact removes sensitive substrings from values returned by the
// UnrealIRCd JSON-RPC API.
//
// Redaction is textual: the value is serialized to JSON, a fixed sequence of
// regular expressions is applied to the text, and the result is parsed back.
// It has no knowledge of JSON key paths, so anything that looks like an IP
// address or email anywhere in the payload is replaced.
package redact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Replacement markers. None of them matches a built-in pattern, which keeps
// redaction idempotent.
const (
	MarkerIPv4     = "[REDACTED_IP]"
	MarkerIPv6     = "[REDACTED_IPv6]"
	MarkerEmail    = "[REDACTED_EMAIL]"
	MarkerPassword = `"password":"[REDACTED]"`
	MarkerCustom   = "[REDACTED_CUSTOM]"
)

// Options configures which categories are redacted.
// Enabled gates everything: when false no other field has any effect.
type Options struct {
	Enabled        bool     `yaml:"enabled" json:"redactSensitiveData"`
	IPs            bool     `yaml:"ips" json:"redactIPs"`
	Emails         bool     `yaml:"emails" json:"redactEmails"`
	Passwords      bool     `yaml:"passwords" json:"redactPasswords"`
	CustomPatterns []string `yaml:"custom_patterns" json:"customRedactionPatterns"`
}

// Pattern defines a redaction pattern with a name and regular expression.
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

var (
	ipv4Pattern = Pattern{
		Name:        "ipv4",
		Regex:       regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`),
		Replacement: MarkerIPv4,
	}
	ipv6Pattern = Pattern{
		Name:        "ipv6",
		Regex:       regexp.MustCompile(`\b(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}\b`),
		Replacement: MarkerIPv6,
	}
	emailPattern = Pattern{
		Name:        "email",
		Regex:       regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		Replacement: MarkerEmail,
	}
	passwordPattern = Pattern{
		Name:        "password",
		Regex:       regexp.MustCompile(`(?i)"password"\s*:\s*"(?:[^"\\]|\\.)*"`),
		Replacement: MarkerPassword,
	}
)

// SkippedPattern records a custom pattern that failed to compile.
type SkippedPattern struct {
	Pattern string
	Err     error
}

// Outcome is the result of one redaction pass.
//
// Structured reports whether Value is the re-parsed JSON value. When the
// substitutions broke JSON syntax, Structured is false and Value holds the
// redacted text as a string.
type Outcome struct {
	Value      any
	Text       string
	Structured bool
	Skipped    []SkippedPattern
}

// Redactor applies the configured categories in a fixed order:
// IPv4, IPv6, email, password fields, then custom patterns in list order.
// A Redactor holds only immutable state and is safe for concurrent use.
type Redactor struct {
	opts     Options
	patterns []Pattern
}

// New creates a redactor for the given options.
func New(opts Options) *Redactor {
	r := &Redactor{opts: opts}
	if !opts.Enabled {
		return r
	}

	if opts.IPs {
		r.patterns = append(r.patterns, ipv4Pattern, ipv6Pattern)
	}
	if opts.Emails {
		r.patterns = append(r.patterns, emailPattern)
	}
	if opts.Passwords {
		r.patterns = append(r.patterns, passwordPattern)
	}
	return r
}

// Enabled reports whether the master toggle is on.
func (r *Redactor) Enabled() bool {
	return r.opts.Enabled
}

// Redact returns v with sensitive data replaced. See Apply for details.
func (r *Redactor) Redact(v any) any {
	return r.Apply(v).Value
}

// Apply redacts v and reports how the pass went.
// With the master toggle off, v is returned unchanged.
func (r *Redactor) Apply(v any) Outcome {
	if !r.opts.Enabled {
		return Outcome{Value: v, Structured: true}
	}

	text, err := marshal(v)
	if err != nil {
		// Values that cannot be encoded still go through the patterns in
		// their printed form so nothing leaves unredacted.
		text = fmt.Sprint(v)
	}

	redacted, skipped := r.RedactString(text)
	out := Outcome{Text: redacted, Skipped: skipped}

	if err == nil {
		if parsed, parseErr := unmarshal(redacted); parseErr == nil {
			out.Value = parsed
			out.Structured = true
			return out
		}
	}

	out.Value = redacted
	return out
}

// RedactString applies the enabled patterns to s and returns the result along
// with any custom patterns that were skipped because they do not compile.
func (r *Redactor) RedactString(s string) (string, []SkippedPattern) {
	if !r.opts.Enabled {
		return s, nil
	}

	result := s
	for _, p := range r.patterns {
		result = p.Regex.ReplaceAllLiteralString(result, p.Replacement)
	}

	var skipped []SkippedPattern
	for _, raw := range r.opts.CustomPatterns {
		re, err := CompileCustom(raw)
		if err != nil {
			skipped = append(skipped, SkippedPattern{Pattern: raw, Err: err})
			continue
		}
		result = re.ReplaceAllLiteralString(result, MarkerCustom)
	}

	return result, skipped
}

// CompileCustom compiles a user-supplied pattern case-insensitively.
// Empty patterns are rejected since they would match between every rune.
func CompileCustom(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, errors.New("empty pattern")
	}
	return regexp.Compile("(?i)" + pattern)
}

// ParsePatternList splits a comma-separated pattern list and trims each entry.
// Empty entries are dropped.
func ParsePatternList(s string) []string {
	var patterns []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// marshal encodes v without HTML escaping so that '<', '>' and '&' stay
// literal and custom patterns see the same text a JSON consumer would.
func marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// unmarshal parses exactly one JSON document, keeping numbers as json.Number.
func unmarshal(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

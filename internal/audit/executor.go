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

package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/tombee/unrealrpc/internal/redact"
	"github.com/tombee/unrealrpc/internal/unrealircd"
)

// Sources recorded in Entry.Source.
const (
	SourceCLI = "cli"
	SourceMCP = "mcp"
)

// OperationExecutor runs a catalog operation.
type OperationExecutor interface {
	Execute(ctx context.Context, method string, inputs map[string]any) (any, error)
}

// Executor records every operation tagged write that next executes.
// Read operations pass through unrecorded. A failure to record is logged
// and never fails the call.
type Executor struct {
	next     OperationExecutor
	store    *Store
	source   string
	redactor *redact.Redactor
	logger   *slog.Logger
	now      func() time.Time
}

// NewExecutor wraps next. Parameters are passed through redactor before
// they are stored; a nil redactor stores them as given.
func NewExecutor(next OperationExecutor, store *Store, source string, redactor *redact.Redactor, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		next:     next,
		store:    store,
		source:   source,
		redactor: redactor,
		logger:   logger,
		now:      time.Now,
	}
}

// Execute runs the operation and records it when it mutates state.
func (e *Executor) Execute(ctx context.Context, method string, inputs map[string]any) (any, error) {
	spec, known := unrealircd.Lookup(method)
	if !known || !spec.HasTag(unrealircd.TagWrite) {
		return e.next.Execute(ctx, method, inputs)
	}

	start := e.now()
	result, err := e.next.Execute(ctx, method, inputs)
	if err != nil {
		// Rejected before anything was sent.
		return result, err
	}

	entry := Entry{
		Time:     start,
		Source:   e.source,
		Method:   spec.Method,
		Params:   e.params(inputs),
		Success:  true,
		Duration: e.now().Sub(start),
	}
	if failure, ok := unrealircd.AsFailure(result); ok {
		entry.Success = false
		entry.Error = failure.Error
	}

	// The call already happened; record it even if the caller gave up.
	if recErr := e.store.Record(context.WithoutCancel(ctx), entry); recErr != nil {
		e.logger.WarnContext(ctx, "failed to write audit entry", "method", spec.Method, "error", recErr)
	}
	return result, nil
}

func (e *Executor) params(inputs map[string]any) map[string]any {
	if inputs == nil {
		return map[string]any{}
	}
	if e.redactor == nil {
		return inputs
	}
	if m, ok := e.redactor.Redact(inputs).(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

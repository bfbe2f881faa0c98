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

package shared

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/tombee/unrealrpc/internal/jq"
	"github.com/tombee/unrealrpc/internal/unrealircd"
)

// EmitJSON writes v as indented JSON without HTML escaping.
func EmitJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

// WriteResult prints the outcome of a call, applying the --jq filter to
// successful results. A failure payload is printed unfiltered and reported
// as ExitCallFailed.
func WriteResult(cmd *cobra.Command, result any) error {
	if unrealircd.IsFailure(result) {
		if err := EmitJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
		return NewCallFailedError()
	}

	if expr := GetJQ(); expr != "" {
		filtered, err := FilterJQ(cmd.Context(), expr, result)
		if err != nil {
			return NewUsageError("jq filter failed", err)
		}
		result = filtered
	}

	return EmitJSON(cmd.OutOrStdout(), result)
}

// FilterJQ runs expr over v with the default limits.
func FilterJQ(ctx context.Context, expr string, v any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return jq.NewExecutor(jq.DefaultTimeout, jq.DefaultMaxInputSize).Execute(ctx, expr, v)
}

// ValidateJQ checks the --jq expression before any request is sent.
func ValidateJQ() error {
	if err := jq.NewExecutor(0, 0).Validate(GetJQ()); err != nil {
		return NewUsageError("invalid --jq expression", err)
	}
	return nil
}

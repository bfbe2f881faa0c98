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
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/tombee/unrealrpc/internal/unrealircd"
)

// Prompt asks a yes/no question. Tests replace it.
var Prompt = func(title, description string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes, run it").
				Negative("No").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

// interactive reports whether a prompt can be shown. Tests replace it.
var interactive = func() bool {
	return IsTTY() && term.IsTerminal(int(os.Stdin.Fd()))
}

// ConfirmDestructive asks before running an operation tagged destructive.
// It is a no-op for other operations, with --yes, or when stdin or stdout
// is not a terminal.
func ConfirmDestructive(spec *unrealircd.OperationSpec, inputs map[string]any) error {
	if spec == nil || !spec.HasTag(unrealircd.TagDestructive) || yesFlag || !interactive() {
		return nil
	}

	ok, err := Prompt(fmt.Sprintf("Run %s?", spec.Method), FormatParams(inputs))
	if err != nil {
		return NewUsageError("confirmation failed", err)
	}
	if !ok {
		return NewUsageError("aborted", nil)
	}
	return nil
}

// FormatParams renders params as key=value pairs in key order.
func FormatParams(params map[string]any) string {
	parts := make([]string, 0, len(params))
	for _, k := range slices.Sorted(maps.Keys(params)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, params[k]))
	}
	return strings.Join(parts, " ")
}

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

// Package history implements the "history" command listing the audit log.
package history

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tombee/unrealrpc/internal/audit"
	"github.com/tombee/unrealrpc/internal/commands/shared"
	"github.com/tombee/unrealrpc/internal/config"
)

// NewCommand creates the history command
func NewCommand() *cobra.Command {
	var (
		limit  int
		method string
		since  time.Duration
		failed bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show mutating operations recorded in the audit log",
		Long: `Show the operations that changed server state, newest first.

Recording is enabled with "audit: {enabled: true}" in the config file or
UNREALRPC_AUDIT_LOG=true (or a database path). Entries are stored in
~/.local/share/unrealrpc/audit.db unless audit.path says otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := audit.Query{Limit: limit, Method: method, FailedOnly: failed}
			if since > 0 {
				q.Since = time.Now().Add(-since)
			}
			return runHistory(cmd, q)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of entries")
	cmd.Flags().StringVar(&method, "method", "", "Only show this method, e.g. server_ban.add")
	cmd.Flags().DurationVar(&since, "since", 0, "Only show entries newer than this, e.g. 24h")
	cmd.Flags().BoolVar(&failed, "failed", false, "Only show calls that failed")

	return cmd
}

func runHistory(cmd *cobra.Command, q audit.Query) error {
	if err := config.LoadDotEnv(shared.GetEnvFile()); err != nil {
		return shared.NewConfigError("", err)
	}
	path, err := config.LoadAuditPath(shared.GetConfigPath())
	if err != nil {
		return shared.NewConfigError("failed to load configuration", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return shared.NewConfigError(fmt.Sprintf("no audit log at %s (enable it with audit.enabled)", path), nil)
	}

	store, err := audit.Open(cmd.Context(), path)
	if err != nil {
		return shared.NewConfigError("cannot open audit log", err)
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), q)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	if shared.GetJSON() {
		return shared.EmitJSON(cmd.OutOrStdout(), entries)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTable(entries, shared.IsTTY()))
	return err
}

func renderTable(entries []audit.Entry, styled bool) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "failed: " + e.Error
		}
		rows = append(rows, []string{
			e.Time.Local().Format(time.DateTime),
			e.Source,
			e.Method,
			shared.FormatParams(e.Params),
			status,
		})
	}

	t := table.New().
		Headers("TIME", "SOURCE", "METHOD", "PARAMS", "RESULT").
		Rows(rows...)

	if !styled {
		return t.Border(lipgloss.HiddenBorder()).String()
	}

	return t.
		Border(lipgloss.RoundedBorder()).
		BorderStyle(shared.Muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return style.Inherit(shared.Header)
			case col == 4 && !entries[row].Success:
				return style.Inherit(shared.StatusError)
			}
			return style
		}).
		String()
}

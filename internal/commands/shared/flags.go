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
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tombee/unrealrpc/internal/config"
)

// Global flag values - set by root command
var (
	verboseFlag bool
	quietFlag   bool
	jsonFlag    bool
	configFlag  string
	envFileFlag string
	jqFlag      string
	yesFlag     bool

	redactFlag          bool
	redactIPsFlag       bool
	redactEmailsFlag    bool
	redactPasswordsFlag bool
	redactPatternFlag   []string

	// Build-time version information
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// Redaction flag names.
const (
	FlagRedact          = "redact"
	FlagRedactIPs       = "redact-ips"
	FlagRedactEmails    = "redact-emails"
	FlagRedactPasswords = "redact-passwords"
	FlagRedactPattern   = "redact-pattern"
)

// RegisterGlobalFlags adds the persistent flags every command inherits.
func RegisterGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	flags.BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-error output")
	flags.BoolVar(&jsonFlag, "json", false, "Output in JSON format")
	flags.StringVar(&configFlag, "config", "", "Path to config file (default: ~/.config/unrealrpc/config.yaml)")
	flags.StringVar(&envFileFlag, "env-file", "", "Load environment variables from this file (default: ./.env if present)")
	flags.StringVar(&jqFlag, "jq", "", "Filter the result with a jq expression")
	flags.BoolVarP(&yesFlag, "yes", "y", false, "Do not ask before destructive operations")

	flags.BoolVar(&redactFlag, FlagRedact, true, "Redact sensitive data in results")
	flags.BoolVar(&redactIPsFlag, FlagRedactIPs, true, "Redact IPv4 and IPv6 addresses")
	flags.BoolVar(&redactEmailsFlag, FlagRedactEmails, true, "Redact email addresses")
	flags.BoolVar(&redactPasswordsFlag, FlagRedactPasswords, true, "Redact password fields")
	flags.StringArrayVar(&redactPatternFlag, FlagRedactPattern, nil, "Additional redaction regex (repeatable, case-insensitive)")
}

// ApplyRedactionFlags overrides r with the redaction flags the user set
// explicitly. Unset flags leave the configured values alone.
func ApplyRedactionFlags(flags *pflag.FlagSet, r *config.RedactionConfig) {
	if flags.Changed(FlagRedact) {
		r.Enabled = redactFlag
	}
	if flags.Changed(FlagRedactIPs) {
		r.IPs = redactIPsFlag
	}
	if flags.Changed(FlagRedactEmails) {
		r.Emails = redactEmailsFlag
	}
	if flags.Changed(FlagRedactPasswords) {
		r.Passwords = redactPasswordsFlag
	}
	if flags.Changed(FlagRedactPattern) {
		r.CustomPatterns = config.PatternList(redactPatternFlag)
	}
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verboseFlag
}

// GetQuiet returns the quiet flag value
func GetQuiet() bool {
	return quietFlag
}

// GetJSON returns the JSON output flag value
func GetJSON() bool {
	return jsonFlag
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return configFlag
}

// GetEnvFile returns the --env-file value
func GetEnvFile() string {
	return envFileFlag
}

// GetJQ returns the jq filter expression
func GetJQ() string {
	return jqFlag
}

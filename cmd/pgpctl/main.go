// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/sage-pgp/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "pgpctl",
	Short: "pgpctl - OpenPGP secret-key and session-key plumbing",
	Long: `pgpctl exercises this module's packet layer from the command line.

This tool supports:
- Key pair generation for any RFC 9580 or PQC-draft algorithm
- Locking/unlocking a Secret-Key packet under a passphrase (S2K+CFB or S2K+AEAD)
- Wrapping/unwrapping a session key for a recipient (PKESK)
- Serving the Prometheus metrics those operations accumulate`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logCommandFailure(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// logCommandFailure logs a failed command at the severity its
// pgperror.Kind warrants: routine, user-triggered failures (wrong
// passphrase, an unsupported algorithm) log at Warn, everything else at
// Error.
func logCommandFailure(err error) {
	pe := logger.NewPGPError("command failed", err)
	fields := []logger.Field{logger.Error(err)}
	if logger.LevelForKind(pe.Kind) == logger.WarnLevel {
		logger.Warn(pe.Message, fields...)
		return
	}
	logger.ErrorMsg(pe.Message, fields...)
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	// Commands are registered in their respective files:
	// - generate.go: generateCmd
	// - lock.go:     lockCmd, unlockCmd
	// - wrap.go:     wrapCmd, unwrapCmd
	// - metrics.go:  metricsServeCmd
}

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

	"github.com/spf13/cobra"

	"github.com/sage-x-project/sage-pgp/internal/metrics"
)

var metricsAddr string

var metricsServeCmd = &cobra.Command{
	Use:   "metrics-serve",
	Short: "Serve the dispatcher's Prometheus metrics over HTTP",
	Long: `Starts an HTTP server exporting the dispatch and packet-layer
counters and histograms (sage_pgp_crypto_*, sage_pgp_packet_*)
accumulated by every generate/lock/unlock/wrap/unwrap invocation in this
process. Runs until killed.`,
	RunE: runMetricsServe,
}

func init() {
	rootCmd.AddCommand(metricsServeCmd)
	metricsServeCmd.Flags().StringVar(&metricsAddr, "addr", ":9090", "Listen address")
}

func runMetricsServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Metrics server listening on http://localhost%s/metrics\n", metricsAddr)
	if err := metrics.StartServer(metricsAddr); err != nil {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}

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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CryptoOperations tracks dispatcher-level operations: sign, verify,
	// encrypt, decrypt, generate, validate, keyed by algorithm name
	// (algorithm.PublicKey.String()).
	CryptoOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crypto",
			Name:      "operations_total",
			Help:      "Total number of cryptographic operations",
		},
		[]string{"operation", "algorithm"},
	)

	// CryptoErrors tracks operation failures by pgperror.Kind. Sign,
	// Generate and Validate/Verify record directly in the dispatcher;
	// Encrypt/Decrypt are recorded only at the PKESK packet boundary
	// (not in the dispatcher) to avoid both double counting and leaking
	// the decryption-oracle fallback's outcome through a metric the
	// fallback itself is meant to hide from the caller.
	CryptoErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crypto",
			Name:      "errors_total",
			Help:      "Total number of cryptographic errors",
		},
		[]string{"operation", "kind"},
	)

	// CryptoOperationDuration tracks dispatcher operation latency.
	CryptoOperationDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "crypto",
			Name:      "operation_duration_seconds",
			Help:      "Cryptographic operation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 15),
		},
		[]string{"operation", "algorithm"},
	)

	// PacketOperations tracks packet-codec operations: pkesk_encrypt,
	// pkesk_decrypt, secretkey_encrypt, secretkey_decrypt.
	PacketOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "packet",
			Name:      "operations_total",
			Help:      "Total number of packet-layer operations",
		},
		[]string{"operation", "algorithm"},
	)
)

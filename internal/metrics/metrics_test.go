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

import "testing"

func TestCountersRegisterWithoutPanicking(t *testing.T) {
	CryptoOperations.WithLabelValues("sign", "ed25519").Inc()
	CryptoErrors.WithLabelValues("decrypt", "decryption_error").Inc()
	CryptoOperationDuration.WithLabelValues("encrypt", "x25519").Observe(0.001)
	PacketOperations.WithLabelValues("pkesk_encrypt", "rsa").Inc()

	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected at least one registered metric family")
	}
}

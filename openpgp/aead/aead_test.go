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

package aead

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
)

func fill(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i)
	}
	return b
}

func TestAEADRoundTripAllModes(t *testing.T) {
	key := fill(32, 0x11)
	plaintexts := [][]byte{
		nil,
		fill(1, 0x01),
		fill(15, 0x02),
		fill(16, 0x03),
		fill(17, 0x04),
		fill(64, 0x05),
		fill(100, 0x06),
	}
	aads := [][]byte{nil, fill(5, 0x20), fill(16, 0x21), fill(40, 0x22)}

	for _, mode := range []algorithm.AEAD{algorithm.AEADGCM, algorithm.AEADEAX, algorithm.AEADOCB} {
		nonce := fill(mode.IVLength(), 0x30)
		for _, pt := range plaintexts {
			for _, aad := range aads {
				ct, err := Seal(mode, key, nonce, pt, aad)
				require.NoError(t, err)
				got, err := Open(mode, key, nonce, ct, aad)
				require.NoError(t, err)
				require.Equal(t, pt, got)
			}
		}
	}
}

func TestAEADRejectsTamperedCiphertext(t *testing.T) {
	key := fill(16, 0x44)
	for _, mode := range []algorithm.AEAD{algorithm.AEADGCM, algorithm.AEADEAX, algorithm.AEADOCB} {
		nonce := fill(mode.IVLength(), 0x55)
		ct, err := Seal(mode, key, nonce, fill(33, 0x66), fill(4, 0x77))
		require.NoError(t, err)

		ct[0] ^= 0xFF
		_, err = Open(mode, key, nonce, ct, fill(4, 0x77))
		require.Error(t, err)
	}
}

func TestAEADRejectsWrongAAD(t *testing.T) {
	key := fill(24, 0x88)
	for _, mode := range []algorithm.AEAD{algorithm.AEADGCM, algorithm.AEADEAX, algorithm.AEADOCB} {
		nonce := fill(mode.IVLength(), 0x99)
		ct, err := Seal(mode, key, nonce, fill(20, 0xAA), fill(4, 0xBB))
		require.NoError(t, err)

		_, err = Open(mode, key, nonce, ct, fill(4, 0xCC))
		require.Error(t, err)
	}
}

func TestAEADRejectsWrongNonceLength(t *testing.T) {
	key := fill(16, 0x01)
	_, err := Seal(algorithm.AEADGCM, key, fill(11, 0x02), fill(10, 0x03), nil)
	require.Error(t, err)
}

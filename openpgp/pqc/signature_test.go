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

package pqc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
)

func TestMLDSAEd25519SignVerifyRoundTrip(t *testing.T) {
	pub, priv, err := GenerateMLDSAEd25519()
	require.NoError(t, err)

	digest := make([]byte, 32)
	for i := range digest {
		digest[i] = byte(i * 3)
	}

	eccSig, mldsaSig, err := SignMLDSAEd25519(priv, algorithm.HashSHA256, digest)
	require.NoError(t, err)
	require.True(t, VerifyMLDSAEd25519(pub, algorithm.HashSHA256, digest, eccSig, mldsaSig))
}

func TestMLDSAEd25519RejectsIfEitherComponentFails(t *testing.T) {
	pub, priv, err := GenerateMLDSAEd25519()
	require.NoError(t, err)
	digest := make([]byte, 32)

	eccSig, mldsaSig, err := SignMLDSAEd25519(priv, algorithm.HashSHA256, digest)
	require.NoError(t, err)

	tamperedECC := append([]byte{}, eccSig...)
	tamperedECC[0] ^= 0xFF
	require.False(t, VerifyMLDSAEd25519(pub, algorithm.HashSHA256, digest, tamperedECC, mldsaSig))

	tamperedMLDSA := append([]byte{}, mldsaSig...)
	tamperedMLDSA[0] ^= 0xFF
	require.False(t, VerifyMLDSAEd25519(pub, algorithm.HashSHA256, digest, eccSig, tamperedMLDSA))
}

func TestMLDSAEd25519RejectsWeakHash(t *testing.T) {
	_, priv, err := GenerateMLDSAEd25519()
	require.NoError(t, err)
	_, _, err = SignMLDSAEd25519(priv, algorithm.HashSHA1, make([]byte, 20))
	require.Error(t, err)
}

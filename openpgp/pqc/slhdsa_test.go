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

func TestSLHDSASignVerifyRoundTrip(t *testing.T) {
	pub, priv, err := GenerateSLHDSA()
	require.NoError(t, err)

	digest := make([]byte, 32)
	for i := range digest {
		digest[i] = byte(i + 1)
	}

	sig, err := SignSLHDSA(priv, algorithm.HashSHA3_256, digest)
	require.NoError(t, err)
	require.True(t, VerifySLHDSA(pub, algorithm.HashSHA3_256, digest, sig))
}

func TestSLHDSARejectsWrongHash(t *testing.T) {
	_, priv, err := GenerateSLHDSA()
	require.NoError(t, err)
	_, err = SignSLHDSA(priv, algorithm.HashSHA256, make([]byte, 32))
	require.Error(t, err)
}

func TestSLHDSASerializeParseRoundTrip(t *testing.T) {
	pub, priv, err := GenerateSLHDSA()
	require.NoError(t, err)

	parsedPub, _, err := ParseSLHDSAPublic(pub.Serialize(), 0, len(pub.PublicKey))
	require.NoError(t, err)
	require.Equal(t, pub, parsedPub)

	parsedPriv, _, err := ParseSLHDSAPrivate(priv.Serialize(), 0, len(priv.SecretKey))
	require.NoError(t, err)
	require.Equal(t, priv, parsedPriv)
}

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
)

func TestMLKEMX25519RoundTrip(t *testing.T) {
	pub, priv, err := GenerateMLKEMX25519()
	require.NoError(t, err)

	sessionKey := make([]byte, 32)
	for i := range sessionKey {
		sessionKey[i] = byte(i)
	}

	eccEph, ct, wrapped, err := EncryptMLKEMX25519(105, pub, sessionKey)
	require.NoError(t, err)

	got, err := DecryptMLKEMX25519(105, pub, priv, eccEph, ct, wrapped, nil)
	require.NoError(t, err)
	require.Equal(t, sessionKey, got)
}

func TestMLKEMX25519DecryptFailureReturnsRandomPayload(t *testing.T) {
	pub, priv, err := GenerateMLKEMX25519()
	require.NoError(t, err)

	eccEph, ct, wrapped, err := EncryptMLKEMX25519(105, pub, make([]byte, 32))
	require.NoError(t, err)
	wrapped[0] ^= 0xFF

	randomPayload := []byte("decoy-session-key-decoy-session")
	got, err := DecryptMLKEMX25519(105, pub, priv, eccEph, ct, wrapped, randomPayload)
	require.NoError(t, err)
	require.Equal(t, randomPayload, got)
}

func TestMLKEMX25519SerializeParseRoundTrip(t *testing.T) {
	pub, priv, err := GenerateMLKEMX25519()
	require.NoError(t, err)

	parsedPub, _, err := ParseMLKEMX25519Public(pub.Serialize(), 0)
	require.NoError(t, err)
	require.Equal(t, pub, parsedPub)

	parsedPriv, _, err := ParseMLKEMX25519Private(priv.Serialize(), 0)
	require.NoError(t, err)
	require.Equal(t, priv.ECCSecretKey, parsedPriv.ECCSecretKey)
	require.Equal(t, priv.MLKEMSeed, parsedPriv.MLKEMSeed)
}

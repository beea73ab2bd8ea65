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

package keymaterial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestX25519EncryptDecryptRoundTrip(t *testing.T) {
	pub, priv, err := GenerateX25519()
	require.NoError(t, err)

	data := []byte("sixteen byte key")[:16]
	ephemeral, wrapped, err := EncryptX25519(pub, data)
	require.NoError(t, err)

	got, err := DecryptX25519(pub, priv, ephemeral, wrapped, nil)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestDecryptX25519FallsBackToRandomPayloadOnTamper(t *testing.T) {
	pub, priv, err := GenerateX25519()
	require.NoError(t, err)

	ephemeral, wrapped, err := EncryptX25519(pub, []byte("sixteen byte key")[:16])
	require.NoError(t, err)
	wrapped[0] ^= 0xFF

	randomPayload := []byte("fallback-payload")
	got, err := DecryptX25519(pub, priv, ephemeral, wrapped, randomPayload)
	require.NoError(t, err)
	require.Equal(t, randomPayload, got)
}

func TestEd25519PublicKeyToX25519Conversion(t *testing.T) {
	edPub, _, err := GenerateEd25519()
	require.NoError(t, err)

	xPub, err := Ed25519PublicKeyToX25519(edPub)
	require.NoError(t, err)
	require.NotEqual(t, [32]byte{}, xPub.A)

	// The conversion is deterministic: converting twice yields the same point.
	xPub2, err := Ed25519PublicKeyToX25519(edPub)
	require.NoError(t, err)
	require.Equal(t, xPub.A, xPub2.A)
}

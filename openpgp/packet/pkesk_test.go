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

package packet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/dispatch"
)

func sessionKeyBytes(n int, seed byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = seed + byte(i)
	}
	return out
}

func testFingerprint(n int) []byte {
	fp := make([]byte, n)
	for i := range fp {
		fp[i] = byte(0xA0 + i)
	}
	return fp
}

func TestPKESKRoundTripX25519V3(t *testing.T) {
	pub, priv, err := dispatch.Generate(algorithm.X25519, dispatch.GenerateOptions{}, false)
	require.NoError(t, err)

	sk := SessionKey{Cipher: algorithm.CipherAES128, Key: sessionKeyBytes(16, 0xAA)}
	keyID := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}

	pkesk, err := EncryptV3(pub, keyID, nil, sk)
	require.NoError(t, err)
	require.Equal(t, algorithm.X25519, pkesk.Algo)
	require.Equal(t, algorithm.CipherAES128, pkesk.CipherAlgo)

	wire, err := pkesk.Serialize()
	require.NoError(t, err)
	require.Equal(t, byte(3), wire[0])
	require.Equal(t, keyID[:], wire[1:9])
	require.Equal(t, byte(algorithm.X25519), wire[9])

	parsed, err := ParsePKESK(wire)
	require.NoError(t, err)
	require.Equal(t, keyID, parsed.KeyID)
	require.Equal(t, algorithm.CipherAES128, parsed.CipherAlgo)

	got, err := parsed.Decrypt(pub, priv, nil, nil)
	require.NoError(t, err)
	require.Equal(t, sk.Key, got.Key)
	require.Equal(t, algorithm.CipherAES128, got.Cipher)
}

func TestPKESKRoundTripX25519V6Anonymous(t *testing.T) {
	pub, priv, err := dispatch.Generate(algorithm.X25519, dispatch.GenerateOptions{}, true)
	require.NoError(t, err)

	sk := SessionKey{Cipher: algorithm.CipherAES256, Key: sessionKeyBytes(32, 0x11)}

	pkesk, err := EncryptV6(pub, 0, nil, sk)
	require.NoError(t, err)

	wire, err := pkesk.Serialize()
	require.NoError(t, err)
	require.Equal(t, byte(6), wire[0])
	require.Equal(t, byte(0), wire[1]) // anonymous vfLen

	parsed, err := ParsePKESK(wire)
	require.NoError(t, err)
	require.Equal(t, 0, parsed.KeyVersion)
	require.Empty(t, parsed.Fingerprint)
	require.Equal(t, algorithm.Cipher(0), parsed.CipherAlgo) // never written for v6

	got, err := parsed.Decrypt(pub, priv, nil, nil)
	require.NoError(t, err)
	require.Equal(t, sk.Key, got.Key)
}

func TestPKESKRoundTripX25519V6WithFingerprint(t *testing.T) {
	pub, priv, err := dispatch.Generate(algorithm.X25519, dispatch.GenerateOptions{}, true)
	require.NoError(t, err)

	sk := SessionKey{Cipher: algorithm.CipherAES128, Key: sessionKeyBytes(16, 0x55)}
	fp := testFingerprint(32)

	pkesk, err := EncryptV6(pub, 6, fp, sk)
	require.NoError(t, err)

	wire, err := pkesk.Serialize()
	require.NoError(t, err)

	parsed, err := ParsePKESK(wire)
	require.NoError(t, err)
	require.Equal(t, 6, parsed.KeyVersion)
	require.Equal(t, fp, parsed.Fingerprint)

	got, err := parsed.Decrypt(pub, priv, nil, nil)
	require.NoError(t, err)
	require.Equal(t, sk.Key, got.Key)
}

func TestPKESKRoundTripX448(t *testing.T) {
	pub, priv, err := dispatch.Generate(algorithm.X448, dispatch.GenerateOptions{}, false)
	require.NoError(t, err)

	sk := SessionKey{Cipher: algorithm.CipherAES256, Key: sessionKeyBytes(32, 0x22)}
	pkesk, err := EncryptV3(pub, [8]byte{9, 9, 9, 9, 9, 9, 9, 9}, nil, sk)
	require.NoError(t, err)

	wire, err := pkesk.Serialize()
	require.NoError(t, err)
	parsed, err := ParsePKESK(wire)
	require.NoError(t, err)

	got, err := parsed.Decrypt(pub, priv, nil, nil)
	require.NoError(t, err)
	require.Equal(t, sk.Key, got.Key)
}

func TestPKESKRoundTripRSA(t *testing.T) {
	pub, priv, err := dispatch.Generate(algorithm.RSAEncryptSign, dispatch.GenerateOptions{RSABits: 2048}, false)
	require.NoError(t, err)

	sk := SessionKey{Cipher: algorithm.CipherAES128, Key: sessionKeyBytes(16, 0x33)}
	pkesk, err := EncryptV3(pub, [8]byte{1, 1, 1, 1, 1, 1, 1, 1}, nil, sk)
	require.NoError(t, err)

	wire, err := pkesk.Serialize()
	require.NoError(t, err)
	parsed, err := ParsePKESK(wire)
	require.NoError(t, err)

	got, err := parsed.Decrypt(pub, priv, nil, nil)
	require.NoError(t, err)
	require.Equal(t, sk.Key, got.Key)
	require.Equal(t, algorithm.CipherAES128, got.Cipher)
}

func TestPKESKRoundTripECDH(t *testing.T) {
	pub, priv, err := dispatch.Generate(algorithm.ECDH, dispatch.GenerateOptions{
		Curve:       algorithm.CurveNISTP256,
		ECDHKDFHash: algorithm.HashSHA256,
		ECDHKDFCiph: algorithm.CipherAES128,
	}, false)
	require.NoError(t, err)

	fp := testFingerprint(20)
	sk := SessionKey{Cipher: algorithm.CipherAES128, Key: sessionKeyBytes(16, 0x44)}
	pkesk, err := EncryptV3(pub, [8]byte{2, 2, 2, 2, 2, 2, 2, 2}, fp, sk)
	require.NoError(t, err)

	wire, err := pkesk.Serialize()
	require.NoError(t, err)
	parsed, err := ParsePKESK(wire)
	require.NoError(t, err)

	got, err := parsed.Decrypt(pub, priv, fp, nil)
	require.NoError(t, err)
	require.Equal(t, sk.Key, got.Key)
}

func TestPKESKConstantTimeFallbackOnTamperedCiphertext(t *testing.T) {
	pub, priv, err := dispatch.Generate(algorithm.X25519, dispatch.GenerateOptions{}, false)
	require.NoError(t, err)

	sk := SessionKey{Cipher: algorithm.CipherAES128, Key: sessionKeyBytes(16, 0x66)}
	pkesk, err := EncryptV3(pub, [8]byte{3, 3, 3, 3, 3, 3, 3, 3}, nil, sk)
	require.NoError(t, err)
	pkesk.Enc.X25519.Wrapped[0] ^= 0xFF

	random := &SessionKey{Cipher: algorithm.CipherAES128, Key: sessionKeyBytes(16, 0xFF)}
	got, err := pkesk.Decrypt(pub, priv, nil, random)
	require.NoError(t, err)
	require.Equal(t, random.Key, got.Key)
	require.Equal(t, random.Cipher, got.Cipher)
}

func TestDecodeSessionKeyFallsBackOnChecksumMismatch(t *testing.T) {
	sk := SessionKey{Cipher: algorithm.CipherAES128, Key: sessionKeyBytes(16, 0x77)}
	data := encodeSessionKey(3, algorithm.RSAEncryptSign, sk)
	data[len(data)-1] ^= 0xFF // corrupt the trailing checksum byte

	random := &SessionKey{Cipher: algorithm.CipherAES128, Key: sessionKeyBytes(16, 0xFF)}
	got, err := decodeSessionKey(3, algorithm.RSAEncryptSign, data, random)
	require.NoError(t, err)
	require.Equal(t, random.Key, got.Key)

	_, err = decodeSessionKey(3, algorithm.RSAEncryptSign, data, nil)
	require.Error(t, err)
}

func TestPKESKRejectsUnknownVersion(t *testing.T) {
	_, err := ParsePKESK([]byte{9, 0, 0})
	require.Error(t, err)
}

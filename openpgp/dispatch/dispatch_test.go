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

package dispatch

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sage-pgp/config"
	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
)

func digestOf(n int) []byte {
	d := make([]byte, n)
	for i := range d {
		d[i] = byte(i + 1)
	}
	return d
}

func TestSignVerifyRoundTripEd25519(t *testing.T) {
	pub, priv, err := Generate(algorithm.Ed25519, GenerateOptions{}, true)
	require.NoError(t, err)

	digest := digestOf(32)
	sig, err := Sign(pub, priv, algorithm.HashSHA256, digest, config.Default())
	require.NoError(t, err)
	require.True(t, Verify(pub, algorithm.HashSHA256, digest, sig))

	sig[0] ^= 0xFF
	require.False(t, Verify(pub, algorithm.HashSHA256, digest, sig))
}

func TestSignVerifyRoundTripECDSA(t *testing.T) {
	pub, priv, err := Generate(algorithm.ECDSA, GenerateOptions{Curve: algorithm.CurveNISTP256}, true)
	require.NoError(t, err)

	digest := digestOf(32)
	sig, err := Sign(pub, priv, algorithm.HashSHA256, digest, nil)
	require.NoError(t, err)
	require.True(t, Verify(pub, algorithm.HashSHA256, digest, sig))
}

func TestSignVerifyRejectsWeakHash(t *testing.T) {
	pub, priv, err := Generate(algorithm.Ed25519, GenerateOptions{}, true)
	require.NoError(t, err)

	digest := make([]byte, 20)
	_, err = Sign(pub, priv, algorithm.HashSHA1, digest, nil)
	require.Error(t, err)
}

func TestEncryptDecryptRoundTripX25519(t *testing.T) {
	pub, priv, err := Generate(algorithm.X25519, GenerateOptions{}, true)
	require.NoError(t, err)

	sessionKey := digestOf(32)
	enc, err := Encrypt(pub, sessionKey, nil)
	require.NoError(t, err)

	got, err := Decrypt(pub, priv, enc, nil, nil)
	require.NoError(t, err)
	require.Equal(t, sessionKey, got)
}

func TestEncryptDecryptFailureReturnsRandomPayload(t *testing.T) {
	pub, priv, err := Generate(algorithm.X25519, GenerateOptions{}, true)
	require.NoError(t, err)

	enc, err := Encrypt(pub, digestOf(32), nil)
	require.NoError(t, err)
	enc.X25519.Wrapped[0] ^= 0xFF

	randomPayload := digestOf(40)
	got, err := Decrypt(pub, priv, enc, nil, randomPayload)
	require.NoError(t, err)
	require.Equal(t, randomPayload, got)
}

func TestRSAEncryptDecryptAndSign(t *testing.T) {
	pub, priv, err := Generate(algorithm.RSAEncryptSign, GenerateOptions{RSABits: 2048}, false)
	require.NoError(t, err)
	require.True(t, Validate(pub, priv))

	sessionKey := digestOf(32)
	enc, err := Encrypt(pub, sessionKey, nil)
	require.NoError(t, err)
	got, err := Decrypt(pub, priv, enc, nil, nil)
	require.NoError(t, err)
	require.Equal(t, sessionKey, got)

	digest := digestOf(32)
	sig, err := Sign(pub, priv, algorithm.HashSHA256, digest, nil)
	require.NoError(t, err)
	require.True(t, Verify(pub, algorithm.HashSHA256, digest, sig))
}

func TestPQCCompositeKEMRoundTrip(t *testing.T) {
	pub, priv, err := Generate(algorithm.MLKEM768X25519, GenerateOptions{}, true)
	require.NoError(t, err)

	sessionKey := digestOf(32)
	enc, err := Encrypt(pub, sessionKey, nil)
	require.NoError(t, err)
	got, err := Decrypt(pub, priv, enc, nil, nil)
	require.NoError(t, err)
	require.Equal(t, sessionKey, got)
}

func TestPQCCompositeSignatureRoundTrip(t *testing.T) {
	pub, priv, err := Generate(algorithm.MLDSA65Ed25519, GenerateOptions{}, true)
	require.NoError(t, err)

	digest := digestOf(32)
	sig, err := Sign(pub, priv, algorithm.HashSHA3_256, digest, nil)
	require.NoError(t, err)
	require.True(t, Verify(pub, algorithm.HashSHA3_256, digest, sig))

	sig[len(sig)-1] ^= 0xFF
	require.False(t, Verify(pub, algorithm.HashSHA3_256, digest, sig))
}

func TestSLHDSASignVerifyRoundTrip(t *testing.T) {
	pub, priv, err := Generate(algorithm.SLHDSASHAKE128, GenerateOptions{}, true)
	require.NoError(t, err)

	digest := digestOf(32)
	sig, err := Sign(pub, priv, algorithm.HashSHA3_256, digest, nil)
	require.NoError(t, err)
	require.True(t, Verify(pub, algorithm.HashSHA3_256, digest, sig))
}

func TestGenerateRejectsEdDSALegacyForV6Keys(t *testing.T) {
	_, _, err := Generate(algorithm.EdDSALegacy, GenerateOptions{}, true)
	require.Error(t, err)
}

func TestSerializeParsePublicKeyParamsRoundTrip(t *testing.T) {
	pub, _, err := Generate(algorithm.Ed25519, GenerateOptions{}, true)
	require.NoError(t, err)

	wire, err := SerializePublicKeyParams(pub)
	require.NoError(t, err)
	parsed, n, err := ParsePublicKeyParams(algorithm.Ed25519, wire, 0)
	require.NoError(t, err)
	require.Equal(t, len(wire), n)
	require.Equal(t, pub.Ed25519, parsed.Ed25519)
}

func TestSerializeParsePrivateKeyParamsRoundTripECDSA(t *testing.T) {
	pub, priv, err := Generate(algorithm.ECDSA, GenerateOptions{Curve: algorithm.CurveNISTP384}, true)
	require.NoError(t, err)

	pubWire, err := SerializePublicKeyParams(pub)
	require.NoError(t, err)
	privWire, err := SerializePrivateKeyParams(priv)
	require.NoError(t, err)

	parsedPub, _, err := ParsePublicKeyParams(algorithm.ECDSA, pubWire, 0)
	require.NoError(t, err)
	parsedPriv, n, err := ParsePrivateKeyParams(parsedPub, privWire, 0)
	require.NoError(t, err)
	require.Equal(t, len(privWire), n)
	require.Equal(t, priv.ECDSA.D, parsedPriv.ECDSA.D)
}

func TestGenerateSymmetricAndValidate(t *testing.T) {
	opts := GenerateOptions{
		SymmetricHashOrCipher: uint8(algorithm.CipherAES256),
		RandomBytes: func(n int) ([]byte, error) {
			b := make([]byte, n)
			_, err := rand.Read(b)
			return b, err
		},
	}
	pub, priv, err := Generate(algorithm.AEADKey, opts, true)
	require.NoError(t, err)
	require.True(t, Validate(pub, priv))
}

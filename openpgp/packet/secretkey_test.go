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

	"github.com/sage-x-project/sage-pgp/config"
	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/dispatch"
	"github.com/sage-x-project/sage-pgp/openpgp/s2k"
)

func newDispatcher() *dispatch.Dispatcher {
	return dispatch.New(config.Default())
}

func TestSecretKeyEncryptDecryptRoundTripModernAEAD(t *testing.T) {
	d := newDispatcher()
	sk, err := GenerateSecretKey(d, 6, algorithm.TagSecretKey, algorithm.X25519, dispatch.GenerateOptions{})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.AEADProtect = true
	cfg.PreferredAEADAlgorithm = algorithm.AEADOCB

	s2kParams := &s2k.Params{Type: s2k.TypeArgon2, Argon2Passes: 1, Argon2Parallelism: 1, Argon2MemExpBits: 16}
	wantPriv := sk.Priv

	err = sk.Encrypt([]byte("pw"), s2kParams, algorithm.CipherAES256, cfg)
	require.NoError(t, err)
	require.True(t, sk.IsEncrypted)
	require.True(t, sk.UsedModernAEAD)
	require.Nil(t, sk.UnparseableKeyMaterial)

	wire, err := sk.Serialize()
	require.NoError(t, err)

	parsed, err := ParseSecretKey(wire, 6, algorithm.TagSecretKey, sk.Pub, sk.PublicKeyPrefix, cfg)
	require.NoError(t, err)
	require.True(t, parsed.IsEncrypted)
	require.Equal(t, uint8(usageModernAEAD), parsed.S2KUsage)

	err = parsed.Decrypt([]byte("pw"), cfg)
	require.NoError(t, err)
	require.False(t, parsed.IsEncrypted)
	require.True(t, parsed.UsedModernAEAD)
	require.Equal(t, wantPriv, parsed.Priv)

	require.NoError(t, parsed.Validate(d))
}

// TestSecretKeyV4LegacyAEADIVLengthRoundTrips exercises a v4 key whose
// AEAD secret section uses the legacy (empty-associated-data,
// block-size IV) convention: Encrypt and ParseSecretKey must agree on
// the IV length without either side special-casing Version == 5.
func TestSecretKeyV4LegacyAEADIVLengthRoundTrips(t *testing.T) {
	d := newDispatcher()
	sk, err := GenerateSecretKey(d, 4, algorithm.TagSecretKey, algorithm.Ed25519, dispatch.GenerateOptions{})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.AEADProtect = true
	cfg.PreferredAEADAlgorithm = algorithm.AEADOCB
	cfg.ParseAEADEncryptedV4KeysAsLegacy = true

	s2kParams := &s2k.Params{Type: s2k.TypeIterated, Hash: algorithm.HashSHA256, Count: uint32(s2k.EncodeCount(65536))}
	wantPriv := sk.Priv

	err = sk.Encrypt([]byte("pw"), s2kParams, algorithm.CipherAES256, cfg)
	require.NoError(t, err)
	require.False(t, sk.UsedModernAEAD)
	require.Len(t, sk.IV, algorithm.CipherAES256.BlockSize())

	wire, err := sk.Serialize()
	require.NoError(t, err)

	parsed, err := ParseSecretKey(wire, 4, algorithm.TagSecretKey, sk.Pub, sk.PublicKeyPrefix, cfg)
	require.NoError(t, err)
	require.Len(t, parsed.IV, algorithm.CipherAES256.BlockSize())

	err = parsed.Decrypt([]byte("pw"), cfg)
	require.NoError(t, err)
	require.Equal(t, wantPriv, parsed.Priv)
}

func TestSecretKeyEncryptDecryptRoundTripLegacyCFB(t *testing.T) {
	d := newDispatcher()
	sk, err := GenerateSecretKey(d, 4, algorithm.TagSecretKey, algorithm.RSAEncryptSign, dispatch.GenerateOptions{RSABits: 2048})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.AEADProtect = false

	s2kParams := &s2k.Params{Type: s2k.TypeIterated, Hash: algorithm.HashSHA256, Count: uint32(s2k.EncodeCount(65536))}
	wantPriv := sk.Priv

	err = sk.Encrypt([]byte("correct horse"), s2kParams, algorithm.CipherAES256, cfg)
	require.NoError(t, err)
	require.Equal(t, uint8(usageCFBSHA1Hash), sk.S2KUsage)
	require.False(t, sk.UsedModernAEAD)

	wire, err := sk.Serialize()
	require.NoError(t, err)

	parsed, err := ParseSecretKey(wire, 4, algorithm.TagSecretKey, sk.Pub, sk.PublicKeyPrefix, cfg)
	require.NoError(t, err)
	require.True(t, parsed.IsEncrypted)

	err = parsed.Decrypt([]byte("correct horse"), cfg)
	require.NoError(t, err)
	require.Equal(t, wantPriv, parsed.Priv)

	require.NoError(t, parsed.Validate(d))
}

func TestSecretKeyDecryptWrongPassphraseFails(t *testing.T) {
	d := newDispatcher()
	sk, err := GenerateSecretKey(d, 4, algorithm.TagSecretKey, algorithm.RSAEncryptSign, dispatch.GenerateOptions{RSABits: 2048})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.AEADProtect = false
	s2kParams := &s2k.Params{Type: s2k.TypeIterated, Hash: algorithm.HashSHA256, Count: uint32(s2k.EncodeCount(65536))}
	require.NoError(t, sk.Encrypt([]byte("right"), s2kParams, algorithm.CipherAES128, cfg))

	wire, err := sk.Serialize()
	require.NoError(t, err)
	parsed, err := ParseSecretKey(wire, 4, algorithm.TagSecretKey, sk.Pub, sk.PublicKeyPrefix, cfg)
	require.NoError(t, err)

	err = parsed.Decrypt([]byte("wrong"), cfg)
	require.Error(t, err)
}

func TestSecretKeyPlaintextRoundTrip(t *testing.T) {
	d := newDispatcher()
	sk, err := GenerateSecretKey(d, 4, algorithm.TagSecretKey, algorithm.Ed25519, dispatch.GenerateOptions{})
	require.NoError(t, err)
	wantPriv := sk.Priv

	wire, err := sk.Serialize()
	require.NoError(t, err)
	require.Equal(t, byte(usagePlaintext), wire[0])

	parsed, err := ParseSecretKey(wire, 4, algorithm.TagSecretKey, sk.Pub, sk.PublicKeyPrefix, config.Default())
	require.NoError(t, err)
	require.False(t, parsed.IsEncrypted)
	require.Equal(t, wantPriv, parsed.Priv)
}

func TestSecretKeyMakeDummy(t *testing.T) {
	d := newDispatcher()
	sk, err := GenerateSecretKey(d, 4, algorithm.TagSecretKey, algorithm.Ed25519, dispatch.GenerateOptions{})
	require.NoError(t, err)

	sk.MakeDummy()
	require.Nil(t, sk.Priv)
	require.True(t, sk.S2K.Dummy())

	wire, err := sk.Serialize()
	require.NoError(t, err)

	parsed, err := ParseSecretKey(wire, 4, algorithm.TagSecretKey, sk.Pub, sk.PublicKeyPrefix, config.Default())
	require.NoError(t, err)
	require.True(t, parsed.S2K.Dummy())
	require.Nil(t, parsed.Priv)
	require.NoError(t, parsed.Validate(d))
}

func TestSecretKeyUnparseableMaterialTolerated(t *testing.T) {
	d := newDispatcher()
	sk, err := GenerateSecretKey(d, 4, algorithm.TagSecretKey, algorithm.Ed25519, dispatch.GenerateOptions{})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.AEADProtect = false
	s2kParams := &s2k.Params{Type: s2k.TypeIterated, Hash: algorithm.HashSHA256, Count: uint32(s2k.EncodeCount(65536))}
	require.NoError(t, sk.Encrypt([]byte("pw"), s2kParams, algorithm.CipherAES128, cfg))

	wire, err := sk.Serialize()
	require.NoError(t, err)
	// Corrupt the S2K type octet into an unrecognized value.
	wire[2] = 0xFE

	parsed, err := ParseSecretKey(wire, 4, algorithm.TagSecretKey, sk.Pub, sk.PublicKeyPrefix, cfg)
	require.NoError(t, err)
	require.True(t, parsed.IsEncrypted)
	require.Nil(t, parsed.Priv)
	require.NotEmpty(t, parsed.UnparseableKeyMaterial)

	reWire, err := parsed.Serialize()
	require.NoError(t, err)
	require.Equal(t, wire, reWire)
}

func TestGenerateSecretKeyRejectsForbiddenAlgorithmVersionCombinations(t *testing.T) {
	d := newDispatcher()

	_, err := GenerateSecretKey(d, 6, algorithm.TagSecretKey, algorithm.ECDH, dispatch.GenerateOptions{
		Curve:       algorithm.CurveCurve25519Legacy,
		ECDHKDFHash: algorithm.HashSHA256,
		ECDHKDFCiph: algorithm.CipherAES128,
	})
	require.Error(t, err)

	_, err = GenerateSecretKey(d, 6, algorithm.TagSecretKey, algorithm.EdDSALegacy, dispatch.GenerateOptions{})
	require.Error(t, err)

	_, err = GenerateSecretKey(d, 4, algorithm.TagSecretKey, algorithm.MLDSA65Ed25519, dispatch.GenerateOptions{})
	require.Error(t, err)
}

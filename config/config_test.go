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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
)

func TestDefaultIsSelfConsistent(t *testing.T) {
	cfg := Default()
	require.True(t, cfg.AEADProtect)
	require.Equal(t, algorithm.AEADOCB, cfg.PreferredAEADAlgorithm)
	require.True(t, cfg.ConstantTimePKCS1Decryption)
	require.False(t, cfg.IsRejected(algorithm.RSAEncryptSign))
}

func TestIsRejectedHonorsList(t *testing.T) {
	cfg := Default()
	cfg.RejectedAlgorithms = []algorithm.PublicKey{algorithm.ElGamal, algorithm.DSA}
	require.True(t, cfg.IsRejected(algorithm.ElGamal))
	require.True(t, cfg.IsRejected(algorithm.DSA))
	require.False(t, cfg.IsRejected(algorithm.Ed25519))
}

func TestIsRejectedNilConfigIsPermissive(t *testing.T) {
	var cfg *Config
	require.False(t, cfg.IsRejected(algorithm.RSAEncryptSign))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.CheckEdDSAFaultySignatures = false
	cfg.RejectedAlgorithms = []algorithm.PublicKey{algorithm.ElGamal}

	path := filepath.Join(t.TempDir(), "pgp.yaml")
	require.NoError(t, SaveToFile(cfg, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestLoadFromFileFillsDefaultsForOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("check_eddsa_faulty_signatures: false\n"), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.False(t, cfg.CheckEdDSAFaultySignatures)
	require.True(t, cfg.AEADProtect)
	require.Equal(t, algorithm.AEADOCB, cfg.PreferredAEADAlgorithm)
}

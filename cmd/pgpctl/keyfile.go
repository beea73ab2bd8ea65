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

package main

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sage-x-project/sage-pgp/config"
	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/dispatch"
	"github.com/sage-x-project/sage-pgp/openpgp/packet"
)

// keyFile is the on-disk container this CLI reads and writes. It is
// deliberately not an RFC 9580 transferable key (assembling a full
// Public-Key packet, with its version/creation-time/algorithm header
// and the resulting fingerprint hash, is out of this module's scope per
// the spec's Non-goals on message assembly); it's a thin JSON envelope
// around exactly the bytes the packet layer produces, so the CLI can
// round-trip a key without inventing a second wire format.
//
// Fingerprint here is a stand-in computed as SHA-256 of the serialized
// public parameters, not the real RFC 9580 fingerprint (which hashes a
// full Public-Key packet body); it's enough to exercise ECDH's KDF and
// v6 PKESK addressing, both of which only need a fingerprint-shaped
// input, without this module taking on key-packet assembly.
type keyFile struct {
	Version         int    `json:"version"`
	Tag             uint8  `json:"tag"`
	Algo            uint8  `json:"algo"`
	Fingerprint     []byte `json:"fingerprint"`
	PublicKeyPrefix []byte `json:"public_key_prefix"`
	PublicParams    []byte `json:"public_params"`
	SecretKeyPacket []byte `json:"secret_key_packet"`
}

func algoByName(name string) (algorithm.PublicKey, error) {
	switch name {
	case "rsa":
		return algorithm.RSAEncryptSign, nil
	case "ecdh":
		return algorithm.ECDH, nil
	case "ecdsa":
		return algorithm.ECDSA, nil
	case "eddsa-legacy":
		return algorithm.EdDSALegacy, nil
	case "x25519":
		return algorithm.X25519, nil
	case "x448":
		return algorithm.X448, nil
	case "ed25519":
		return algorithm.Ed25519, nil
	case "ed448":
		return algorithm.Ed448, nil
	case "mlkem768-x25519":
		return algorithm.MLKEM768X25519, nil
	case "mldsa65-ed25519":
		return algorithm.MLDSA65Ed25519, nil
	case "slhdsa-shake128s":
		return algorithm.SLHDSASHAKE128, nil
	default:
		return 0, fmt.Errorf("unsupported algorithm %q", name)
	}
}

// loadedKey bundles the parsed secret key with the metadata the CLI
// derives alongside it (the fingerprint-shaped value ECDH and v6 PKESK
// addressing need). The AEAD associated-data prefix travels inside
// SecretKey.PublicKeyPrefix.
type loadedKey struct {
	SecretKey   *packet.SecretKey
	Fingerprint []byte
}

func writeKeyFile(path string, sk *packet.SecretKey) error {
	pubBytes, err := dispatch.SerializePublicKeyParams(sk.Pub)
	if err != nil {
		return fmt.Errorf("failed to serialize public parameters: %w", err)
	}
	wire, err := sk.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize secret key packet: %w", err)
	}
	fp := sha256.Sum256(pubBytes)
	kf := keyFile{
		Version:         sk.Version,
		Tag:             uint8(sk.Tag),
		Algo:            uint8(sk.Pub.Algo),
		Fingerprint:     fp[:],
		PublicKeyPrefix: sk.PublicKeyPrefix,
		PublicParams:    pubBytes,
		SecretKeyPacket: wire,
	}
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal key file: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func readKeyFile(path string) (*loadedKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("failed to parse key file: %w", err)
	}
	algo := algorithm.PublicKey(kf.Algo)
	pub, n, err := dispatch.ParsePublicKeyParams(algo, kf.PublicParams, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public parameters: %w", err)
	}
	if n != len(kf.PublicParams) {
		return nil, fmt.Errorf("trailing bytes after public parameters")
	}
	sk, err := packet.ParseSecretKey(kf.SecretKeyPacket, kf.Version, algorithm.PacketTag(kf.Tag), pub, kf.PublicKeyPrefix, config.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to parse secret key packet: %w", err)
	}
	return &loadedKey{SecretKey: sk, Fingerprint: kf.Fingerprint}, nil
}

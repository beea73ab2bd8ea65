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

// Package dispatch implements the algorithm dispatcher (C5): a single
// family of Generate/Sign/Verify/Encrypt/Decrypt/Validate entry points
// that switch on the algorithm code carried by a parameter record and
// fan out to the per-algorithm adapters in openpgp/keymaterial and
// openpgp/pqc. This is the only package that knows the full closed set
// of ~20 algorithm codes; every other package works against the tagged
// PublicParams/PrivateParams records.
package dispatch

import (
	"crypto/dsa"
	"math/big"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
)

// GenerateOptions carries the algorithm-specific knobs Generate needs.
// Only the fields relevant to the requested algorithm are consulted.
type GenerateOptions struct {
	// RSABits is the modulus size for RSAEncryptSign/RSAEncryptOnly/RSASignOnly.
	RSABits int

	// DSASizes selects the (L, N) parameter sizes for DSA.
	DSASizes dsa.ParameterSizes

	// ElGamalP and ElGamalG are the group parameters for ElGamal; the
	// dispatcher never generates ElGamal groups from scratch.
	ElGamalP, ElGamalG *big.Int

	// Curve selects the curve for ECDSA and ECDH.
	Curve algorithm.CurveOID

	// ECDHKDFHash and ECDHKDFCiph select the KDF parameters embedded in
	// a freshly generated ECDH public key.
	ECDHKDFHash algorithm.Hash
	ECDHKDFCiph algorithm.Cipher

	// SymmetricHashOrCipher selects the hash (HMACKey) or cipher
	// (AEADKey) code for a symmetric parameter record, and RandomBytes
	// supplies its entropy source.
	SymmetricHashOrCipher uint8
	RandomBytes           func(int) ([]byte, error)
}

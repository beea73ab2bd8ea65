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

// Package keymaterial implements the per-algorithm adapters (C3): uniform
// generate/sign/verify/encrypt/decrypt/validate operations for each
// public-key algorithm family, delegating to primitive libraries. The
// dispatcher (openpgp/dispatch) is the only caller; adapters never invoke
// each other.
package keymaterial

import (
	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/pqc"
)

// PublicParams is the tagged-sum-type public half of a parameter record
// (spec §3, Design Notes: "tagged sum type with per-variant payload").
// Exactly the field matching Algo is populated; the rest are nil.
type PublicParams struct {
	Algo algorithm.PublicKey

	RSA         *RSAPublicKey
	DSA         *DSAPublicKey
	ElGamal     *ElGamalPublicKey
	ECDSA       *ECPublicKey
	ECDH        *ECDHPublicKey
	EdDSALegacy *EdDSALegacyPublicKey
	Ed25519     *Ed25519PublicKey
	Ed448       *Ed448PublicKey
	X25519      *X25519PublicKey
	X448        *X448PublicKey
	Symmetric   *SymmetricPublicKey
	MLKEM       *pqc.MLKEMX25519PublicKey
	MLDSA       *pqc.MLDSAEd25519PublicKey
	SLHDSA      *pqc.SLHDSAPublicKey
}

// PrivateParams is the tagged-sum-type private half of a parameter
// record. Exactly the field matching Algo is populated.
type PrivateParams struct {
	Algo algorithm.PublicKey

	RSA         *RSAPrivateKey
	DSA         *DSAPrivateKey
	ElGamal     *ElGamalPrivateKey
	ECDSA       *ECPrivateKey
	ECDH        *ECDHPrivateKey
	EdDSALegacy *EdDSALegacyPrivateKey
	Ed25519     *Ed25519PrivateKey
	Ed448       *Ed448PrivateKey
	X25519      *X25519PrivateKey
	X448        *X448PrivateKey
	Symmetric   *SymmetricPrivateKey
	MLKEM       *pqc.MLKEMX25519PrivateKey
	MLDSA       *pqc.MLDSAEd25519PrivateKey
	SLHDSA      *pqc.SLHDSAPrivateKey
}

// Zero overwrites every private-parameter buffer with zero bytes before
// the record is released, per the clearPrivateParams() invariant (spec
// §5 secret-handling policy).
func (p *PrivateParams) Zero() {
	if p == nil {
		return
	}
	zero := func(b []byte) {
		for i := range b {
			b[i] = 0
		}
	}
	switch {
	case p.RSA != nil:
		zero(p.RSA.D)
		zero(p.RSA.P)
		zero(p.RSA.Q)
		zero(p.RSA.U)
	case p.DSA != nil:
		zero(p.DSA.X)
	case p.ElGamal != nil:
		zero(p.ElGamal.X)
	case p.ECDSA != nil:
		zero(p.ECDSA.D)
	case p.ECDH != nil:
		zero(p.ECDH.D)
	case p.EdDSALegacy != nil:
		zero(p.EdDSALegacy.Seed[:])
	case p.Ed25519 != nil:
		zero(p.Ed25519.Seed[:])
	case p.Ed448 != nil:
		zero(p.Ed448.Seed[:])
	case p.X25519 != nil:
		zero(p.X25519.K[:])
	case p.X448 != nil:
		zero(p.X448.K[:])
	case p.Symmetric != nil:
		zero(p.Symmetric.HashSeed[:])
		zero(p.Symmetric.KeyMaterial)
	case p.MLKEM != nil:
		zero(p.MLKEM.ECCSecretKey[:])
		zero(p.MLKEM.MLKEMSeed[:])
		zero(p.MLKEM.MLKEMSecretKey)
	case p.MLDSA != nil:
		zero(p.MLDSA.ECCSecretKey[:])
		zero(p.MLDSA.MLDSASeed[:])
		zero(p.MLDSA.MLDSASecretKey)
	case p.SLHDSA != nil:
		zero(p.SLHDSA.SecretKey)
	}
}

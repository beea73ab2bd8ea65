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
	"time"

	"github.com/sage-x-project/sage-pgp/config"
	"github.com/sage-x-project/sage-pgp/internal/metrics"
	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/keymaterial"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// Sign produces a wire-format signature over digest under priv, gated
// by the per-algorithm hash-strength rule. Composite PQC signatures are
// the concatenation of the fixed-size classical and post-quantum
// component signatures, in that order (draft-ietf-openpgp-pqc §6).
func Sign(pub *keymaterial.PublicParams, priv *keymaterial.PrivateParams, hashAlgo algorithm.Hash, digest []byte, cfg *config.Config) ([]byte, error) {
	start := time.Now()
	sig, err := sign(pub, priv, hashAlgo, digest, cfg)
	observe("sign", pub.Algo.String(), start)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("sign", string(pgperror.KindOf(err))).Inc()
	}
	return sig, err
}

func sign(pub *keymaterial.PublicParams, priv *keymaterial.PrivateParams, hashAlgo algorithm.Hash, digest []byte, cfg *config.Config) ([]byte, error) {
	if pub.Algo != priv.Algo {
		return nil, pgperror.New(pgperror.Malformed, "public/private algorithm mismatch")
	}
	algo := pub.Algo
	if !algo.CanSign() {
		return nil, pgperror.New(pgperror.Unsupported, "algorithm does not support signing")
	}
	if algo != algorithm.MLDSA65Ed25519 && algo != algorithm.SLHDSASHAKE128 {
		if err := checkHashStrength(algo, hashAlgo, digest); err != nil {
			return nil, err
		}
	}

	switch algo {
	case algorithm.RSAEncryptSign, algorithm.RSASignOnly:
		ch, err := cryptoHash(hashAlgo)
		if err != nil {
			return nil, err
		}
		return keymaterial.SignRSA(pub.RSA, priv.RSA, ch, digest)

	case algorithm.DSA:
		return keymaterial.SignDSA(pub.DSA, priv.DSA, digest)

	case algorithm.ECDSA:
		return keymaterial.SignECDSA(pub.ECDSA, priv.ECDSA, digest)

	case algorithm.EdDSALegacy:
		return keymaterial.SignEdDSALegacy(priv.EdDSALegacy, hashAlgo, digest)

	case algorithm.Ed25519:
		checkFaulty := cfg == nil || cfg.CheckEdDSAFaultySignatures
		return keymaterial.SignEd25519(pub.Ed25519, priv.Ed25519, hashAlgo, digest, checkFaulty)

	case algorithm.Ed448:
		return keymaterial.SignEd448(priv.Ed448, hashAlgo, digest)

	case algorithm.MLDSA65Ed25519:
		eccSig, mldsaSig, err := pqcSignMLDSAEd25519(priv, hashAlgo, digest)
		if err != nil {
			return nil, err
		}
		return append(eccSig, mldsaSig...), nil

	case algorithm.SLHDSASHAKE128:
		return pqcSignSLHDSA(priv, hashAlgo, digest)

	default:
		return nil, pgperror.New(pgperror.Unsupported, "algorithm does not support signing")
	}
}

// Verify reports whether sig is a valid signature over digest under pub.
func Verify(pub *keymaterial.PublicParams, hashAlgo algorithm.Hash, digest, sig []byte) bool {
	start := time.Now()
	ok := verify(pub, hashAlgo, digest, sig)
	observe("verify", pub.Algo.String(), start)
	if !ok {
		metrics.CryptoErrors.WithLabelValues("verify", "VERIFICATION_FAILED").Inc()
	}
	return ok
}

func verify(pub *keymaterial.PublicParams, hashAlgo algorithm.Hash, digest, sig []byte) bool {
	algo := pub.Algo
	if !algo.CanSign() {
		return false
	}
	if algo != algorithm.MLDSA65Ed25519 && algo != algorithm.SLHDSASHAKE128 {
		if err := checkHashStrength(algo, hashAlgo, digest); err != nil {
			return false
		}
	}

	switch algo {
	case algorithm.RSAEncryptSign, algorithm.RSASignOnly:
		ch, err := cryptoHash(hashAlgo)
		if err != nil {
			return false
		}
		return keymaterial.VerifyRSA(pub.RSA, ch, digest, sig)

	case algorithm.DSA:
		return keymaterial.VerifyDSA(pub.DSA, digest, sig)

	case algorithm.ECDSA:
		return keymaterial.VerifyECDSA(pub.ECDSA, digest, sig)

	case algorithm.EdDSALegacy:
		return keymaterial.VerifyEdDSALegacy(pub.EdDSALegacy, hashAlgo, digest, sig)

	case algorithm.Ed25519:
		return keymaterial.VerifyEd25519(pub.Ed25519, hashAlgo, digest, sig)

	case algorithm.Ed448:
		return keymaterial.VerifyEd448(pub.Ed448, hashAlgo, digest, sig)

	case algorithm.MLDSA65Ed25519:
		return pqcVerifyMLDSAEd25519(pub, hashAlgo, digest, sig)

	case algorithm.SLHDSASHAKE128:
		return pqcVerifySLHDSA(pub, hashAlgo, digest, sig)

	default:
		return false
	}
}

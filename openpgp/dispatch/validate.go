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

	"github.com/sage-x-project/sage-pgp/internal/metrics"
	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/keymaterial"
)

// Validate reports whether pub (and, when supplied, priv) are internally
// consistent for their algorithm: group parameters are sane, the public
// point lies on the declared curve, and the private scalar reproduces
// the public key. priv may be nil to validate a public key alone.
// For ECDH, EdDSA-legacy, Ed25519, Ed448, X25519, X448 and the PQC
// algorithms no check is made and the result is always true.
func Validate(pub *keymaterial.PublicParams, priv *keymaterial.PrivateParams) bool {
	start := time.Now()
	ok := validate(pub, priv)
	observe("validate", pub.Algo.String(), start)
	if !ok {
		metrics.CryptoErrors.WithLabelValues("validate", "KEY_IS_INVALID").Inc()
	}
	return ok
}

func validate(pub *keymaterial.PublicParams, priv *keymaterial.PrivateParams) bool {
	if priv != nil && pub.Algo != priv.Algo {
		return false
	}
	switch pub.Algo {
	case algorithm.RSAEncryptSign, algorithm.RSAEncryptOnly, algorithm.RSASignOnly:
		if priv == nil {
			return true
		}
		return keymaterial.ValidateRSA(pub.RSA, priv.RSA)

	case algorithm.DSA:
		var p *keymaterial.DSAPrivateKey
		if priv != nil {
			p = priv.DSA
		}
		return keymaterial.ValidateDSA(pub.DSA, p)

	case algorithm.ElGamal:
		var p *keymaterial.ElGamalPrivateKey
		if priv != nil {
			p = priv.ElGamal
		}
		return keymaterial.ValidateElGamal(pub.ElGamal, p)

	case algorithm.ECDSA:
		var p *keymaterial.ECPrivateKey
		if priv != nil {
			p = priv.ECDSA
		}
		return keymaterial.ValidateECDSA(pub.ECDSA, p)

	case algorithm.HMACKey, algorithm.AEADKey:
		if priv == nil {
			return true
		}
		return keymaterial.ValidateSymmetric(pub.Algo, pub.Symmetric, priv.Symmetric)

	case algorithm.ECDH, algorithm.EdDSALegacy, algorithm.Ed25519, algorithm.Ed448,
		algorithm.X25519, algorithm.X448, algorithm.MLKEM768X25519,
		algorithm.MLDSA65Ed25519, algorithm.SLHDSASHAKE128:
		// Fixed-size native-curve encodings carry no separable group
		// parameters to validate beyond the parse-time length check;
		// correctness is established by a successful sign/verify or
		// encrypt/decrypt round trip instead.
		return true

	default:
		return false
	}
}

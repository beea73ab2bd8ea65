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
	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/keymaterial"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
	"github.com/sage-x-project/sage-pgp/openpgp/pqc"
)

// ParsePublicKeyParams reads the algorithm-specific public parameter
// record for algo out of buf at off, iterating fields in the exact wire
// order RFC 9580 §5.6 and draft-ietf-openpgp-pqc mandate for each
// algorithm.
func ParsePublicKeyParams(algo algorithm.PublicKey, buf []byte, off int) (*keymaterial.PublicParams, int, error) {
	switch algo {
	case algorithm.RSAEncryptSign, algorithm.RSAEncryptOnly, algorithm.RSASignOnly:
		p, off, err := keymaterial.ParseRSAPublic(buf, off)
		return wrapPub(algo, err, func(pp *keymaterial.PublicParams) { pp.RSA = p }), off, err

	case algorithm.DSA:
		p, off, err := keymaterial.ParseDSAPublic(buf, off)
		return wrapPub(algo, err, func(pp *keymaterial.PublicParams) { pp.DSA = p }), off, err

	case algorithm.ElGamal:
		p, off, err := keymaterial.ParseElGamalPublic(buf, off)
		return wrapPub(algo, err, func(pp *keymaterial.PublicParams) { pp.ElGamal = p }), off, err

	case algorithm.ECDSA:
		p, off, err := keymaterial.ParseECPublic(buf, off)
		return wrapPub(algo, err, func(pp *keymaterial.PublicParams) { pp.ECDSA = p }), off, err

	case algorithm.ECDH:
		p, off, err := keymaterial.ParseECDHPublic(buf, off)
		return wrapPub(algo, err, func(pp *keymaterial.PublicParams) { pp.ECDH = p }), off, err

	case algorithm.EdDSALegacy:
		p, off, err := keymaterial.ParseEdDSALegacyPublic(buf, off)
		return wrapPub(algo, err, func(pp *keymaterial.PublicParams) { pp.EdDSALegacy = p }), off, err

	case algorithm.Ed25519:
		p, off, err := keymaterial.ParseEd25519Public(buf, off)
		return wrapPub(algo, err, func(pp *keymaterial.PublicParams) { pp.Ed25519 = p }), off, err

	case algorithm.Ed448:
		p, off, err := keymaterial.ParseEd448Public(buf, off)
		return wrapPub(algo, err, func(pp *keymaterial.PublicParams) { pp.Ed448 = p }), off, err

	case algorithm.X25519:
		p, off, err := keymaterial.ParseX25519Public(buf, off)
		return wrapPub(algo, err, func(pp *keymaterial.PublicParams) { pp.X25519 = p }), off, err

	case algorithm.X448:
		p, off, err := keymaterial.ParseX448Public(buf, off)
		return wrapPub(algo, err, func(pp *keymaterial.PublicParams) { pp.X448 = p }), off, err

	case algorithm.HMACKey, algorithm.AEADKey:
		p, off, err := keymaterial.ParseSymmetricPublic(algo, buf, off)
		return wrapPub(algo, err, func(pp *keymaterial.PublicParams) { pp.Symmetric = p }), off, err

	case algorithm.MLKEM768X25519:
		p, off, err := pqc.ParseMLKEMX25519Public(buf, off)
		return wrapPub(algo, err, func(pp *keymaterial.PublicParams) { pp.MLKEM = p }), off, err

	case algorithm.MLDSA65Ed25519:
		p, off, err := pqc.ParseMLDSAEd25519Public(buf, off)
		return wrapPub(algo, err, func(pp *keymaterial.PublicParams) { pp.MLDSA = p }), off, err

	case algorithm.SLHDSASHAKE128:
		p, off, err := pqc.ParseSLHDSAPublic(buf, off, pqc.SLHDSAPublicKeySize())
		return wrapPub(algo, err, func(pp *keymaterial.PublicParams) { pp.SLHDSA = p }), off, err

	default:
		return nil, off, pgperror.New(pgperror.Unsupported, "unknown public-key algorithm")
	}
}

// wrapPub builds a tagged PublicParams from a successful per-algorithm
// parse, or returns nil on error so the caller can propagate it.
func wrapPub(algo algorithm.PublicKey, err error, set func(*keymaterial.PublicParams)) *keymaterial.PublicParams {
	if err != nil {
		return nil
	}
	pp := &keymaterial.PublicParams{Algo: algo}
	set(pp)
	return pp
}

// ParsePrivateKeyParams reads the algorithm-specific secret parameter
// record following pub's public parameters, in cleartext wire order
// (the S2K/CFB/AEAD passphrase unwrapping, if any, happens one layer up
// in the secret-key packet codec before this is called).
func ParsePrivateKeyParams(pub *keymaterial.PublicParams, buf []byte, off int) (*keymaterial.PrivateParams, int, error) {
	algo := pub.Algo
	switch algo {
	case algorithm.RSAEncryptSign, algorithm.RSAEncryptOnly, algorithm.RSASignOnly:
		p, off, err := keymaterial.ParseRSAPrivate(buf, off)
		return wrapPriv(algo, err, func(pp *keymaterial.PrivateParams) { pp.RSA = p }), off, err

	case algorithm.DSA:
		p, off, err := keymaterial.ParseDSAPrivate(buf, off)
		return wrapPriv(algo, err, func(pp *keymaterial.PrivateParams) { pp.DSA = p }), off, err

	case algorithm.ElGamal:
		p, off, err := keymaterial.ParseElGamalPrivate(buf, off)
		return wrapPriv(algo, err, func(pp *keymaterial.PrivateParams) { pp.ElGamal = p }), off, err

	case algorithm.ECDSA:
		p, off, err := keymaterial.ParseECPrivate(buf, off, pub.ECDSA.Curve)
		return wrapPriv(algo, err, func(pp *keymaterial.PrivateParams) { pp.ECDSA = p }), off, err

	case algorithm.ECDH:
		p, off, err := keymaterial.ParseECDHPrivate(buf, off, pub.ECDH.Curve)
		return wrapPriv(algo, err, func(pp *keymaterial.PrivateParams) { pp.ECDH = p }), off, err

	case algorithm.EdDSALegacy:
		p, off, err := keymaterial.ParseEdDSALegacyPrivate(buf, off)
		return wrapPriv(algo, err, func(pp *keymaterial.PrivateParams) { pp.EdDSALegacy = p }), off, err

	case algorithm.Ed25519:
		p, off, err := keymaterial.ParseEd25519Private(buf, off)
		return wrapPriv(algo, err, func(pp *keymaterial.PrivateParams) { pp.Ed25519 = p }), off, err

	case algorithm.Ed448:
		p, off, err := keymaterial.ParseEd448Private(buf, off)
		return wrapPriv(algo, err, func(pp *keymaterial.PrivateParams) { pp.Ed448 = p }), off, err

	case algorithm.X25519:
		p, off, err := keymaterial.ParseX25519Private(buf, off)
		return wrapPriv(algo, err, func(pp *keymaterial.PrivateParams) { pp.X25519 = p }), off, err

	case algorithm.X448:
		p, off, err := keymaterial.ParseX448Private(buf, off)
		return wrapPriv(algo, err, func(pp *keymaterial.PrivateParams) { pp.X448 = p }), off, err

	case algorithm.HMACKey, algorithm.AEADKey:
		keySize := symmetricKeySize(algo, pub.Symmetric)
		p, off, err := keymaterial.ParseSymmetricPrivate(buf, off, keySize)
		return wrapPriv(algo, err, func(pp *keymaterial.PrivateParams) { pp.Symmetric = p }), off, err

	case algorithm.MLKEM768X25519:
		p, off, err := pqc.ParseMLKEMX25519Private(buf, off)
		return wrapPriv(algo, err, func(pp *keymaterial.PrivateParams) { pp.MLKEM = p }), off, err

	case algorithm.MLDSA65Ed25519:
		p, off, err := pqc.ParseMLDSAEd25519Private(buf, off)
		return wrapPriv(algo, err, func(pp *keymaterial.PrivateParams) { pp.MLDSA = p }), off, err

	case algorithm.SLHDSASHAKE128:
		p, off, err := pqc.ParseSLHDSAPrivate(buf, off, pqc.SLHDSAPrivateKeySize())
		return wrapPriv(algo, err, func(pp *keymaterial.PrivateParams) { pp.SLHDSA = p }), off, err

	default:
		return nil, off, pgperror.New(pgperror.Unsupported, "unknown public-key algorithm")
	}
}

func wrapPriv(algo algorithm.PublicKey, err error, set func(*keymaterial.PrivateParams)) *keymaterial.PrivateParams {
	if err != nil {
		return nil
	}
	pp := &keymaterial.PrivateParams{Algo: algo}
	set(pp)
	return pp
}

func symmetricKeySize(algo algorithm.PublicKey, pub *keymaterial.SymmetricPublicKey) int {
	if algo == algorithm.HMACKey {
		return pub.Hash.ByteLength()
	}
	return pub.Cipher.KeySize()
}

// SerializePublicKeyParams writes pub's algorithm-specific public
// parameters in the same field order ParsePublicKeyParams expects.
func SerializePublicKeyParams(pub *keymaterial.PublicParams) ([]byte, error) {
	switch pub.Algo {
	case algorithm.RSAEncryptSign, algorithm.RSAEncryptOnly, algorithm.RSASignOnly:
		return pub.RSA.Serialize(), nil
	case algorithm.DSA:
		return pub.DSA.Serialize(), nil
	case algorithm.ElGamal:
		return pub.ElGamal.Serialize(), nil
	case algorithm.ECDSA:
		return pub.ECDSA.Serialize(), nil
	case algorithm.ECDH:
		return pub.ECDH.Serialize(), nil
	case algorithm.EdDSALegacy:
		return pub.EdDSALegacy.Serialize(), nil
	case algorithm.Ed25519:
		return pub.Ed25519.Serialize(), nil
	case algorithm.Ed448:
		return pub.Ed448.Serialize(), nil
	case algorithm.X25519:
		return pub.X25519.Serialize(), nil
	case algorithm.X448:
		return pub.X448.Serialize(), nil
	case algorithm.HMACKey, algorithm.AEADKey:
		return pub.Symmetric.Serialize(pub.Algo), nil
	case algorithm.MLKEM768X25519:
		return pub.MLKEM.Serialize(), nil
	case algorithm.MLDSA65Ed25519:
		return pub.MLDSA.Serialize(), nil
	case algorithm.SLHDSASHAKE128:
		return pub.SLHDSA.Serialize(), nil
	default:
		return nil, pgperror.New(pgperror.Unsupported, "unknown public-key algorithm")
	}
}

// SerializePrivateKeyParams writes priv's algorithm-specific secret
// parameters in cleartext wire order. The caller applies S2K/CFB/AEAD
// protection around this, not this function.
func SerializePrivateKeyParams(priv *keymaterial.PrivateParams) ([]byte, error) {
	switch priv.Algo {
	case algorithm.RSAEncryptSign, algorithm.RSAEncryptOnly, algorithm.RSASignOnly:
		return priv.RSA.Serialize(), nil
	case algorithm.DSA:
		return priv.DSA.Serialize(), nil
	case algorithm.ElGamal:
		return priv.ElGamal.Serialize(), nil
	case algorithm.ECDSA:
		return priv.ECDSA.Serialize(), nil
	case algorithm.ECDH:
		return priv.ECDH.Serialize(), nil
	case algorithm.EdDSALegacy:
		return priv.EdDSALegacy.Serialize(), nil
	case algorithm.Ed25519:
		return priv.Ed25519.Serialize(), nil
	case algorithm.Ed448:
		return priv.Ed448.Serialize(), nil
	case algorithm.X25519:
		return priv.X25519.Serialize(), nil
	case algorithm.X448:
		return priv.X448.Serialize(), nil
	case algorithm.HMACKey, algorithm.AEADKey:
		return priv.Symmetric.Serialize(), nil
	case algorithm.MLKEM768X25519:
		// Only the X25519 secret and the 64-byte ML-KEM seed are
		// serialized; the expanded decapsulation key never touches the
		// wire (draft-ietf-openpgp-pqc §4).
		return priv.MLKEM.Serialize(), nil
	case algorithm.MLDSA65Ed25519:
		// Only the Ed25519 seed and the 32-byte ML-DSA seed are
		// serialized, for the same reason.
		return priv.MLDSA.Serialize(), nil
	case algorithm.SLHDSASHAKE128:
		return priv.SLHDSA.Serialize(), nil
	default:
		return nil, pgperror.New(pgperror.Unsupported, "unknown public-key algorithm")
	}
}

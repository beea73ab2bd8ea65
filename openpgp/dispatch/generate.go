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
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
	"github.com/sage-x-project/sage-pgp/openpgp/pqc"
)

// Generate creates a fresh key pair for algo, consulting opts for the
// algorithm-specific parameters it needs. v6Key gates algorithms the
// crypto-refresh forbids for newly generated v6 keys (EdDSALegacy,
// legacy Curve25519 ECDH) per spec §4.3.
func Generate(algo algorithm.PublicKey, opts GenerateOptions, v6Key bool) (*keymaterial.PublicParams, *keymaterial.PrivateParams, error) {
	start := time.Now()
	pub, priv, err := generate(algo, opts, v6Key)
	observe("generate", algo.String(), start)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("generate", string(pgperror.KindOf(err))).Inc()
	}
	return pub, priv, err
}

func generate(algo algorithm.PublicKey, opts GenerateOptions, v6Key bool) (*keymaterial.PublicParams, *keymaterial.PrivateParams, error) {
	if v6Key && algo == algorithm.EdDSALegacy {
		return nil, nil, pgperror.New(pgperror.Unsupported, "v6 keys must not use EdDSA-legacy")
	}
	switch algo {
	case algorithm.RSAEncryptSign, algorithm.RSAEncryptOnly, algorithm.RSASignOnly:
		pub, priv, err := keymaterial.GenerateRSA(opts.RSABits)
		if err != nil {
			return nil, nil, err
		}
		return &keymaterial.PublicParams{Algo: algo, RSA: pub}, &keymaterial.PrivateParams{Algo: algo, RSA: priv}, nil

	case algorithm.DSA:
		pub, priv, err := keymaterial.GenerateDSA(opts.DSASizes)
		if err != nil {
			return nil, nil, err
		}
		return &keymaterial.PublicParams{Algo: algo, DSA: pub}, &keymaterial.PrivateParams{Algo: algo, DSA: priv}, nil

	case algorithm.ElGamal:
		if opts.ElGamalP == nil || opts.ElGamalG == nil {
			return nil, nil, pgperror.New(pgperror.Unsupported, "ElGamal generation requires a group (p, g)")
		}
		pub, priv, err := keymaterial.GenerateElGamal(opts.ElGamalP, opts.ElGamalG)
		if err != nil {
			return nil, nil, err
		}
		return &keymaterial.PublicParams{Algo: algo, ElGamal: pub}, &keymaterial.PrivateParams{Algo: algo, ElGamal: priv}, nil

	case algorithm.ECDSA:
		pub, priv, err := keymaterial.GenerateECDSA(opts.Curve)
		if err != nil {
			return nil, nil, err
		}
		return &keymaterial.PublicParams{Algo: algo, ECDSA: pub}, &keymaterial.PrivateParams{Algo: algo, ECDSA: priv}, nil

	case algorithm.ECDH:
		if v6Key && opts.Curve == algorithm.CurveCurve25519Legacy {
			return nil, nil, pgperror.New(pgperror.Unsupported, "v6 keys must not use legacy Curve25519 ECDH")
		}
		pub, priv, err := keymaterial.GenerateECDH(opts.Curve, opts.ECDHKDFHash, opts.ECDHKDFCiph)
		if err != nil {
			return nil, nil, err
		}
		return &keymaterial.PublicParams{Algo: algo, ECDH: pub}, &keymaterial.PrivateParams{Algo: algo, ECDH: priv}, nil

	case algorithm.EdDSALegacy:
		pub, priv, err := keymaterial.GenerateEdDSALegacy()
		if err != nil {
			return nil, nil, err
		}
		return &keymaterial.PublicParams{Algo: algo, EdDSALegacy: pub}, &keymaterial.PrivateParams{Algo: algo, EdDSALegacy: priv}, nil

	case algorithm.Ed25519:
		pub, priv, err := keymaterial.GenerateEd25519()
		if err != nil {
			return nil, nil, err
		}
		return &keymaterial.PublicParams{Algo: algo, Ed25519: pub}, &keymaterial.PrivateParams{Algo: algo, Ed25519: priv}, nil

	case algorithm.Ed448:
		pub, priv, err := keymaterial.GenerateEd448()
		if err != nil {
			return nil, nil, err
		}
		return &keymaterial.PublicParams{Algo: algo, Ed448: pub}, &keymaterial.PrivateParams{Algo: algo, Ed448: priv}, nil

	case algorithm.X25519:
		pub, priv, err := keymaterial.GenerateX25519()
		if err != nil {
			return nil, nil, err
		}
		return &keymaterial.PublicParams{Algo: algo, X25519: pub}, &keymaterial.PrivateParams{Algo: algo, X25519: priv}, nil

	case algorithm.X448:
		pub, priv, err := keymaterial.GenerateX448()
		if err != nil {
			return nil, nil, err
		}
		return &keymaterial.PublicParams{Algo: algo, X448: pub}, &keymaterial.PrivateParams{Algo: algo, X448: priv}, nil

	case algorithm.HMACKey, algorithm.AEADKey:
		if opts.RandomBytes == nil {
			return nil, nil, pgperror.New(pgperror.Unsupported, "symmetric key generation requires a random source")
		}
		pub, priv, err := keymaterial.GenerateSymmetric(algo, opts.SymmetricHashOrCipher, opts.RandomBytes)
		if err != nil {
			return nil, nil, err
		}
		return &keymaterial.PublicParams{Algo: algo, Symmetric: pub}, &keymaterial.PrivateParams{Algo: algo, Symmetric: priv}, nil

	case algorithm.MLKEM768X25519:
		pub, priv, err := pqc.GenerateMLKEMX25519()
		if err != nil {
			return nil, nil, err
		}
		return &keymaterial.PublicParams{Algo: algo, MLKEM: pub}, &keymaterial.PrivateParams{Algo: algo, MLKEM: priv}, nil

	case algorithm.MLDSA65Ed25519:
		pub, priv, err := pqc.GenerateMLDSAEd25519()
		if err != nil {
			return nil, nil, err
		}
		return &keymaterial.PublicParams{Algo: algo, MLDSA: pub}, &keymaterial.PrivateParams{Algo: algo, MLDSA: priv}, nil

	case algorithm.SLHDSASHAKE128:
		pub, priv, err := pqc.GenerateSLHDSA()
		if err != nil {
			return nil, nil, err
		}
		return &keymaterial.PublicParams{Algo: algo, SLHDSA: pub}, &keymaterial.PrivateParams{Algo: algo, SLHDSA: priv}, nil

	default:
		return nil, nil, pgperror.New(pgperror.Unsupported, "unknown public-key algorithm")
	}
}

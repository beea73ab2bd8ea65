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

package pqc

import (
	"crypto/rand"

	"github.com/cloudflare/circl/sign/slhdsa"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

var slhdsaParams = slhdsa.ParamIDSHAKE128Small

// SLHDSAPublicKey holds the raw SLH-DSA-SHAKE-128s public key bytes
// (draft-ietf-openpgp-pqc §7 fixes the SHAKE-128s parameter set for v6 keys).
type SLHDSAPublicKey struct {
	PublicKey []byte
}

// SLHDSAPrivateKey holds the raw SLH-DSA-SHAKE-128s secret key bytes.
type SLHDSAPrivateKey struct {
	SecretKey []byte
}

// GenerateSLHDSA creates a fresh SLH-DSA-SHAKE-128s key pair.
func GenerateSLHDSA() (*SLHDSAPublicKey, *SLHDSAPrivateKey, error) {
	pub, priv, err := slhdsa.GenerateKey(rand.Reader, slhdsaParams)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "SLH-DSA key generation failed", err)
	}
	pubBytes, err := pub.MarshalBinary()
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "SLH-DSA public key marshal failed", err)
	}
	privBytes, err := priv.MarshalBinary()
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "SLH-DSA private key marshal failed", err)
	}
	return &SLHDSAPublicKey{PublicKey: pubBytes}, &SLHDSAPrivateKey{SecretKey: privBytes}, nil
}

// SignSLHDSA signs digest. The draft pairs SLH-DSA-SHAKE-128s with
// SHA3-256/SHAKE256-class pre-hashing only; this function rejects any
// hashAlgo other than SHA3-256 with HashTooWeak (the dispatcher does not
// check the hash for this algorithm itself).
func SignSLHDSA(priv *SLHDSAPrivateKey, hashAlgo algorithm.Hash, digest []byte) ([]byte, error) {
	if hashAlgo != algorithm.HashSHA3_256 {
		return nil, pgperror.New(pgperror.HashTooWeak, "SLH-DSA requires SHA3-256")
	}
	key, err := slhdsa.NewPrivateKey(slhdsaParams)
	if err != nil {
		return nil, pgperror.Wrap(pgperror.KeyIsInvalid, "invalid SLH-DSA parameter set", err)
	}
	if err := key.UnmarshalBinary(priv.SecretKey); err != nil {
		return nil, pgperror.Wrap(pgperror.KeyIsInvalid, "invalid SLH-DSA secret key", err)
	}
	sig, err := slhdsa.SignDeterministic(key, digest, nil)
	if err != nil {
		return nil, pgperror.Wrap(pgperror.TransientSigningFail, "SLH-DSA signing failed", err)
	}
	return sig, nil
}

// VerifySLHDSA verifies sig over digest.
func VerifySLHDSA(pub *SLHDSAPublicKey, hashAlgo algorithm.Hash, digest, sig []byte) bool {
	if hashAlgo != algorithm.HashSHA3_256 {
		return false
	}
	key, err := slhdsa.NewPublicKey(slhdsaParams)
	if err != nil {
		return false
	}
	if err := key.UnmarshalBinary(pub.PublicKey); err != nil {
		return false
	}
	return slhdsa.Verify(key, digest, sig, nil) == nil
}

// SLHDSAPublicKeySize, SLHDSAPrivateKeySize and SLHDSASignatureSize
// expose the fixed sizes for the SHAKE-128s parameter set this package
// is pinned to, for callers (the wire-format parsers) that need to know
// how many bytes to read without importing circl directly.
func SLHDSAPublicKeySize() int  { return slhdsaParams.PublicKeySize() }
func SLHDSAPrivateKeySize() int { return slhdsaParams.PrivateKeySize() }
func SLHDSASignatureSize() int  { return slhdsaParams.SignatureSize() }

func (p *SLHDSAPublicKey) Serialize() []byte { return append([]byte{}, p.PublicKey...) }

func ParseSLHDSAPublic(buf []byte, off, size int) (*SLHDSAPublicKey, int, error) {
	if off+size > len(buf) {
		return nil, off, pgperror.New(pgperror.Malformed, "truncated SLH-DSA public key")
	}
	return &SLHDSAPublicKey{PublicKey: append([]byte{}, buf[off:off+size]...)}, off + size, nil
}

func (p *SLHDSAPrivateKey) Serialize() []byte { return append([]byte{}, p.SecretKey...) }

func ParseSLHDSAPrivate(buf []byte, off, size int) (*SLHDSAPrivateKey, int, error) {
	if off+size > len(buf) {
		return nil, off, pgperror.New(pgperror.Malformed, "truncated SLH-DSA private key")
	}
	return &SLHDSAPrivateKey{SecretKey: append([]byte{}, buf[off:off+size]...)}, off + size, nil
}

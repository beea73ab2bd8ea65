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
	"crypto/ed25519"
	"crypto/rand"
	"io"

	"github.com/cloudflare/circl/sign/mldsa/mldsa65"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// MLDSAEd25519PublicKey is the composite ML-DSA-65+Ed25519 public key
// (draft-ietf-openpgp-pqc §6): every signature requires both component
// signatures to verify (logical AND), so a classical break alone cannot
// forge a signature and neither can a quantum break alone.
type MLDSAEd25519PublicKey struct {
	ECCPublicKey [ed25519.PublicKeySize]byte
	MLDSAPublicKey [mldsa65.PublicKeySize]byte
}

// MLDSAEd25519PrivateKey is the composite private half. MLDSASeed is the
// 32-byte expandable seed circl derives the ML-DSA signing key from.
type MLDSAEd25519PrivateKey struct {
	ECCSecretKey   [ed25519.SeedSize]byte
	MLDSASeed      [32]byte
	MLDSASecretKey []byte
}

// GenerateMLDSAEd25519 creates a fresh composite signing key pair.
func GenerateMLDSAEd25519() (*MLDSAEd25519PublicKey, *MLDSAEd25519PrivateKey, error) {
	eccPub, eccPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "Ed25519 share generation failed", err)
	}
	var seed [32]byte
	if _, err := io.ReadFull(rand.Reader, seed[:]); err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "ML-DSA seed generation failed", err)
	}
	mldsaPub, mldsaPriv := mldsa65.NewKeyFromSeed(&seed)

	pub := &MLDSAEd25519PublicKey{}
	copy(pub.ECCPublicKey[:], eccPub)
	mldsaPubBytes, err := mldsaPub.MarshalBinary()
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "ML-DSA public key marshal failed", err)
	}
	copy(pub.MLDSAPublicKey[:], mldsaPubBytes)

	priv := &MLDSAEd25519PrivateKey{MLDSASeed: seed}
	copy(priv.ECCSecretKey[:], eccPriv.Seed())
	mldsaPrivBytes, err := mldsaPriv.MarshalBinary()
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "ML-DSA private key marshal failed", err)
	}
	priv.MLDSASecretKey = mldsaPrivBytes
	return pub, priv, nil
}

// SignMLDSAEd25519 signs digest under both component algorithms. The
// composite signature requires a digest of at least 32 bytes
// (draft-ietf-openpgp-pqc §6.1), matching the SHA3-256/SHAKE256-class
// hashes the draft pairs with it.
func SignMLDSAEd25519(priv *MLDSAEd25519PrivateKey, hashAlgo algorithm.Hash, digest []byte) (eccSig, mldsaSig []byte, err error) {
	if hashAlgo.ByteLength() < 32 {
		return nil, nil, pgperror.New(pgperror.HashTooWeak, "digest too short for ML-DSA+Ed25519")
	}
	eccKey := ed25519.NewKeyFromSeed(priv.ECCSecretKey[:])
	eccSig = ed25519.Sign(eccKey, digest)

	mldsaPriv, err := mldsa65.Scheme().UnmarshalBinaryPrivateKey(priv.MLDSASecretKey)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.KeyIsInvalid, "invalid ML-DSA secret key", err)
	}
	mldsaSig, err = mldsa65.Scheme().Sign(mldsaPriv, digest, nil)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.TransientSigningFail, "ML-DSA signing failed", err)
	}
	return eccSig, mldsaSig, nil
}

// VerifyMLDSAEd25519 verifies both component signatures and requires
// both to succeed.
func VerifyMLDSAEd25519(pub *MLDSAEd25519PublicKey, hashAlgo algorithm.Hash, digest, eccSig, mldsaSig []byte) bool {
	if hashAlgo.ByteLength() < 32 {
		return false
	}
	if !ed25519.Verify(pub.ECCPublicKey[:], digest, eccSig) {
		return false
	}
	mldsaPub, err := mldsa65.Scheme().UnmarshalBinaryPublicKey(pub.MLDSAPublicKey[:])
	if err != nil {
		return false
	}
	return mldsa65.Scheme().Verify(mldsaPub, digest, mldsaSig, nil)
}

func (p *MLDSAEd25519PublicKey) Serialize() []byte {
	return append(append([]byte{}, p.ECCPublicKey[:]...), p.MLDSAPublicKey[:]...)
}

func ParseMLDSAEd25519Public(buf []byte, off int) (*MLDSAEd25519PublicKey, int, error) {
	need := ed25519.PublicKeySize + mldsa65.PublicKeySize
	if off+need > len(buf) {
		return nil, off, pgperror.New(pgperror.Malformed, "truncated ML-DSA+Ed25519 public key")
	}
	p := &MLDSAEd25519PublicKey{}
	copy(p.ECCPublicKey[:], buf[off:off+ed25519.PublicKeySize])
	copy(p.MLDSAPublicKey[:], buf[off+ed25519.PublicKeySize:off+need])
	return p, off + need, nil
}

func (p *MLDSAEd25519PrivateKey) Serialize() []byte {
	return append(append([]byte{}, p.ECCSecretKey[:]...), p.MLDSASeed[:]...)
}

func ParseMLDSAEd25519Private(buf []byte, off int) (*MLDSAEd25519PrivateKey, int, error) {
	need := ed25519.SeedSize + 32
	if off+need > len(buf) {
		return nil, off, pgperror.New(pgperror.Malformed, "truncated ML-DSA+Ed25519 private key")
	}
	p := &MLDSAEd25519PrivateKey{}
	copy(p.ECCSecretKey[:], buf[off:off+ed25519.SeedSize])
	copy(p.MLDSASeed[:], buf[off+ed25519.SeedSize:off+need])
	_, mldsaPriv := mldsa65.NewKeyFromSeed(&p.MLDSASeed)
	mldsaPrivBytes, err := mldsaPriv.MarshalBinary()
	if err != nil {
		return nil, off, pgperror.Wrap(pgperror.Malformed, "ML-DSA private key derivation failed", err)
	}
	p.MLDSASecretKey = mldsaPrivBytes
	return p, off + need, nil
}

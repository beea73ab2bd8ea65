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

package keymaterial

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// SymmetricPublicKey is the public descriptor for an HMAC/AEAD "key"
// parameter record (spec §3): a cipher/hash enum tag and a 32-byte
// binding digest over the private key material.
type SymmetricPublicKey struct {
	// Hash is set for HMAC keys, Cipher for AEAD keys; exactly one
	// applies depending on the enclosing algorithm code.
	Hash   algorithm.Hash
	Cipher algorithm.Cipher
	Digest [32]byte
}

// SymmetricPrivateKey holds the 32-byte hash seed and the raw key
// material whose size is dictated by the cipher/hash.
type SymmetricPrivateKey struct {
	HashSeed    [32]byte
	KeyMaterial []byte
}

// expectedKeySize returns the expected KeyMaterial length for the given
// public descriptor.
func expectedKeySize(pub *SymmetricPublicKey, algo algorithm.PublicKey) int {
	if algo == algorithm.HMACKey {
		return pub.Hash.ByteLength()
	}
	return pub.Cipher.KeySize()
}

// ValidateSymmetric checks that pub.Digest == SHA-256(priv.HashSeed) and
// that len(priv.KeyMaterial) matches the size implied by the public
// descriptor — binding the secret material to the public descriptor
// (spec §4.2).
func ValidateSymmetric(algo algorithm.PublicKey, pub *SymmetricPublicKey, priv *SymmetricPrivateKey) bool {
	want := sha256.Sum256(priv.HashSeed[:])
	if subtle.ConstantTimeCompare(want[:], pub.Digest[:]) != 1 {
		return false
	}
	return len(priv.KeyMaterial) == expectedKeySize(pub, algo)
}

// GenerateSymmetric produces a fresh HMAC or AEAD "key" parameter
// record: random hashSeed, random keyMaterial of the expected size, and
// the SHA-256 binding digest.
func GenerateSymmetric(algo algorithm.PublicKey, hashOrCipher uint8, randomBytes func(int) ([]byte, error)) (*SymmetricPublicKey, *SymmetricPrivateKey, error) {
	pub := &SymmetricPublicKey{}
	if algo == algorithm.HMACKey {
		pub.Hash = algorithm.Hash(hashOrCipher)
	} else if algo == algorithm.AEADKey {
		pub.Cipher = algorithm.Cipher(hashOrCipher)
	} else {
		return nil, nil, pgperror.New(pgperror.Unsupported, "not a symmetric algorithm")
	}
	seed, err := randomBytes(32)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "random seed generation failed", err)
	}
	keySize := expectedKeySize(pub, algo)
	if keySize == 0 {
		return nil, nil, pgperror.New(pgperror.Unsupported, "unsupported hash/cipher for symmetric key")
	}
	keyMaterial, err := randomBytes(keySize)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "random key material generation failed", err)
	}
	priv := &SymmetricPrivateKey{KeyMaterial: keyMaterial}
	copy(priv.HashSeed[:], seed)
	digest := sha256.Sum256(priv.HashSeed[:])
	pub.Digest = digest
	return pub, priv, nil
}

func (p *SymmetricPublicKey) Serialize(algo algorithm.PublicKey) []byte {
	out := make([]byte, 0, 33)
	if algo == algorithm.HMACKey {
		out = append(out, byte(p.Hash))
	} else {
		out = append(out, byte(p.Cipher))
	}
	out = append(out, p.Digest[:]...)
	return out
}

func ParseSymmetricPublic(algo algorithm.PublicKey, buf []byte, off int) (*SymmetricPublicKey, int, error) {
	if off+33 > len(buf) {
		return nil, off, pgperror.New(pgperror.Malformed, "truncated symmetric public key")
	}
	p := &SymmetricPublicKey{}
	if algo == algorithm.HMACKey {
		p.Hash = algorithm.Hash(buf[off])
	} else {
		p.Cipher = algorithm.Cipher(buf[off])
	}
	copy(p.Digest[:], buf[off+1:off+33])
	return p, off + 33, nil
}

func (p *SymmetricPrivateKey) Serialize() []byte {
	return append(append([]byte{}, p.HashSeed[:]...), p.KeyMaterial...)
}

func ParseSymmetricPrivate(buf []byte, off, keySize int) (*SymmetricPrivateKey, int, error) {
	if off+32+keySize > len(buf) {
		return nil, off, pgperror.New(pgperror.Malformed, "truncated symmetric private key")
	}
	p := &SymmetricPrivateKey{}
	copy(p.HashSeed[:], buf[off:off+32])
	p.KeyMaterial = append([]byte{}, buf[off+32:off+32+keySize]...)
	return p, off + 32 + keySize, nil
}

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
	"crypto/ed25519"
	"crypto/rand"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// Ed25519PublicKey holds the 32-byte native public key A (spec §3),
// grounded on the teacher's crypto/keys/ed25519.go adapter.
type Ed25519PublicKey struct {
	A [32]byte
}

// Ed25519PrivateKey holds the 32-byte native seed.
type Ed25519PrivateKey struct {
	Seed [32]byte
}

// GenerateEd25519 creates a new native Ed25519 key pair.
func GenerateEd25519() (*Ed25519PublicKey, *Ed25519PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "Ed25519 key generation failed", err)
	}
	p := &Ed25519PublicKey{}
	copy(p.A[:], pub)
	s := &Ed25519PrivateKey{}
	copy(s.Seed[:], priv.Seed())
	return p, s, nil
}

// SignEd25519 signs digest (the hash output, already computed by the
// caller per hashAlgo) after checking the hash-strength gate: digest
// must be at least SHA-256 length. If checkFaultySignatures is set, the
// signature is verified against the public key before being returned —
// catching a class of fault-injection bugs that leak the private key
// when the same message is signed twice with a flawed implementation
// (spec §4.2).
func SignEd25519(pub *Ed25519PublicKey, priv *Ed25519PrivateKey, hashAlgo algorithm.Hash, digest []byte, checkFaultySignatures bool) ([]byte, error) {
	if hashAlgo.ByteLength() < algorithm.PreferredHash(algorithm.Ed25519).ByteLength() {
		return nil, pgperror.New(pgperror.HashTooWeak, "digest too short for Ed25519")
	}
	key := ed25519.NewKeyFromSeed(priv.Seed[:])
	sig := ed25519.Sign(key, digest)
	if checkFaultySignatures {
		if !ed25519.Verify(key.Public().(ed25519.PublicKey), digest, sig) {
			return nil, pgperror.New(pgperror.TransientSigningFail, "Ed25519 post-sign self-verify failed")
		}
	}
	return sig, nil
}

// VerifyEd25519 verifies sig over digest, gated by the same hash-strength
// rule as signing.
func VerifyEd25519(pub *Ed25519PublicKey, hashAlgo algorithm.Hash, digest, sig []byte) bool {
	if hashAlgo.ByteLength() < algorithm.PreferredHash(algorithm.Ed25519).ByteLength() {
		return false
	}
	return ed25519.Verify(pub.A[:], digest, sig)
}

func (p *Ed25519PublicKey) Serialize() []byte { return append([]byte{}, p.A[:]...) }

func ParseEd25519Public(buf []byte, off int) (*Ed25519PublicKey, int, error) {
	b, err := sliceExact(buf, off, algorithm.Ed25519PublicSize)
	if err != nil {
		return nil, off, err
	}
	p := &Ed25519PublicKey{}
	copy(p.A[:], b)
	return p, off + algorithm.Ed25519PublicSize, nil
}

func (p *Ed25519PrivateKey) Serialize() []byte { return append([]byte{}, p.Seed[:]...) }

func ParseEd25519Private(buf []byte, off int) (*Ed25519PrivateKey, int, error) {
	b, err := sliceExact(buf, off, algorithm.Ed25519PrivateSize)
	if err != nil {
		return nil, off, err
	}
	p := &Ed25519PrivateKey{}
	copy(p.Seed[:], b)
	return p, off + algorithm.Ed25519PrivateSize, nil
}

func sliceExact(buf []byte, off, n int) ([]byte, error) {
	if off+n > len(buf) {
		return nil, pgperror.New(pgperror.Malformed, "truncated native field")
	}
	return buf[off : off+n], nil
}

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
	"crypto/rand"

	"github.com/cloudflare/circl/sign/ed448"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// Ed448PublicKey holds the 57-byte native public key A (spec §3).
type Ed448PublicKey struct {
	A [57]byte
}

// Ed448PrivateKey holds the 57-byte native seed.
type Ed448PrivateKey struct {
	Seed [57]byte
}

// GenerateEd448 creates a new native Ed448 key pair via circl, the same
// library the teacher already depends on for the other PQC-adjacent
// curves.
func GenerateEd448() (*Ed448PublicKey, *Ed448PrivateKey, error) {
	pub, priv, err := ed448.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "Ed448 key generation failed", err)
	}
	p := &Ed448PublicKey{}
	copy(p.A[:], pub)
	s := &Ed448PrivateKey{}
	seed := priv.Seed()
	copy(s.Seed[:], seed)
	return p, s, nil
}

// SignEd448 signs digest after the hash-strength gate: digest must be at
// least SHA-512 length (spec §4.2).
func SignEd448(priv *Ed448PrivateKey, hashAlgo algorithm.Hash, digest []byte) ([]byte, error) {
	if hashAlgo.ByteLength() < algorithm.PreferredHash(algorithm.Ed448).ByteLength() {
		return nil, pgperror.New(pgperror.HashTooWeak, "digest too short for Ed448")
	}
	key := ed448.NewKeyFromSeed(priv.Seed[:])
	sig := ed448.Sign(key, digest, "")
	return sig, nil
}

// VerifyEd448 verifies sig over digest under the same hash-strength
// gate as signing.
func VerifyEd448(pub *Ed448PublicKey, hashAlgo algorithm.Hash, digest, sig []byte) bool {
	if hashAlgo.ByteLength() < algorithm.PreferredHash(algorithm.Ed448).ByteLength() {
		return false
	}
	return ed448.Verify(pub.A[:], digest, sig, "")
}

func (p *Ed448PublicKey) Serialize() []byte { return append([]byte{}, p.A[:]...) }

func ParseEd448Public(buf []byte, off int) (*Ed448PublicKey, int, error) {
	b, err := sliceExact(buf, off, algorithm.Ed448PublicSize)
	if err != nil {
		return nil, off, err
	}
	p := &Ed448PublicKey{}
	copy(p.A[:], b)
	return p, off + algorithm.Ed448PublicSize, nil
}

func (p *Ed448PrivateKey) Serialize() []byte { return append([]byte{}, p.Seed[:]...) }

func ParseEd448Private(buf []byte, off int) (*Ed448PrivateKey, int, error) {
	b, err := sliceExact(buf, off, algorithm.Ed448PrivateSize)
	if err != nil {
		return nil, off, err
	}
	p := &Ed448PrivateKey{}
	copy(p.Seed[:], b)
	return p, off + algorithm.Ed448PrivateSize, nil
}

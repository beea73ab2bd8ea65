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
	"github.com/sage-x-project/sage-pgp/openpgp/encoding"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// EdDSALegacyPublicKey holds the legacy (RFC 9580 §5.6.5) EdDSA
// representation: curve OID (must be the legacy Ed25519 OID) and Q, a
// 33-byte point with a leading 0x40 "native point" marker byte
// (RFC 9580 §5.5.5.3), left-padded as specified.
type EdDSALegacyPublicKey struct {
	Curve algorithm.CurveOID
	Q     [33]byte
}

// EdDSALegacyPrivateKey holds the 32-byte seed.
type EdDSALegacyPrivateKey struct {
	Seed [32]byte
}

// GenerateEdDSALegacy creates a new legacy-wire-format Ed25519 key pair.
// v6 keys MUST NOT use this algorithm (spec §4.3); callers enforce that
// at the dispatcher/generate boundary, not here.
func GenerateEdDSALegacy() (*EdDSALegacyPublicKey, *EdDSALegacyPrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "EdDSA-legacy key generation failed", err)
	}
	p := &EdDSALegacyPublicKey{Curve: algorithm.CurveEd25519Legacy}
	p.Q[0] = 0x40
	copy(p.Q[1:], pub)
	s := &EdDSALegacyPrivateKey{}
	copy(s.Seed[:], priv.Seed())
	return p, s, nil
}

// SignEdDSALegacy signs digest, gated by the Ed25519 hash-strength rule.
func SignEdDSALegacy(priv *EdDSALegacyPrivateKey, hashAlgo algorithm.Hash, digest []byte) ([]byte, error) {
	if hashAlgo.ByteLength() < algorithm.PreferredHash(algorithm.EdDSALegacy).ByteLength() {
		return nil, pgperror.New(pgperror.HashTooWeak, "digest too short for EdDSA-legacy")
	}
	key := ed25519.NewKeyFromSeed(priv.Seed[:])
	sig := ed25519.Sign(key, digest)
	// Legacy wire signatures are two MPI-encoded halves r, s (each 32
	// bytes) rather than the raw 64-byte Ed25519 signature.
	out := encoding.EncodeMPI(sig[:32])
	out = append(out, encoding.EncodeMPI(sig[32:])...)
	return out, nil
}

// VerifyEdDSALegacy verifies sig over digest. Both r and s are left-padded
// to 32 bytes before being reassembled into the native signature form
// (spec §4.2: "verify must left-pad both r and s to the curve size").
func VerifyEdDSALegacy(pub *EdDSALegacyPublicKey, hashAlgo algorithm.Hash, digest, sig []byte) bool {
	if hashAlgo.ByteLength() < algorithm.PreferredHash(algorithm.EdDSALegacy).ByteLength() {
		return false
	}
	r, off, err := encoding.ReadMPI(sig, 0)
	if err != nil {
		return false
	}
	s, _, err := encoding.ReadMPI(sig, off)
	if err != nil {
		return false
	}
	rp, err := encoding.LeftPad(r, 32)
	if err != nil {
		return false
	}
	sp, err := encoding.LeftPad(s, 32)
	if err != nil {
		return false
	}
	native := append(append([]byte{}, rp...), sp...)
	return ed25519.Verify(pub.Q[1:], digest, native)
}

func (p *EdDSALegacyPublicKey) Serialize() []byte {
	oid := []byte(p.Curve)
	out := []byte{byte(len(oid))}
	out = append(out, oid...)
	out = append(out, encoding.EncodeMPI(p.Q[:])...)
	return out
}

func ParseEdDSALegacyPublic(buf []byte, off int) (*EdDSALegacyPublicKey, int, error) {
	if off >= len(buf) {
		return nil, off, pgperror.New(pgperror.Malformed, "truncated EdDSA-legacy public key")
	}
	oidLen := int(buf[off])
	off++
	oidBytes, err := encoding.ReadExact(buf, off, off+oidLen)
	if err != nil {
		return nil, off, err
	}
	off += oidLen
	oid := algorithm.CurveOID(oidBytes)
	if oid != algorithm.CurveEd25519Legacy {
		return nil, off, pgperror.New(pgperror.Unsupported, "eddsa-legacy must use the legacy Ed25519 OID")
	}
	q, off, err := encoding.ReadMPI(buf, off)
	if err != nil {
		return nil, off, err
	}
	padded, err := encoding.LeftPad(q, 33)
	if err != nil {
		return nil, off, err
	}
	p := &EdDSALegacyPublicKey{Curve: oid}
	copy(p.Q[:], padded)
	return p, off, nil
}

func (p *EdDSALegacyPrivateKey) Serialize() []byte {
	return encoding.EncodeMPI(p.Seed[:])
}

func ParseEdDSALegacyPrivate(buf []byte, off int) (*EdDSALegacyPrivateKey, int, error) {
	seed, off, err := encoding.ReadMPI(buf, off)
	if err != nil {
		return nil, off, err
	}
	padded, err := encoding.LeftPad(seed, 32)
	if err != nil {
		return nil, off, err
	}
	p := &EdDSALegacyPrivateKey{}
	copy(p.Seed[:], padded)
	return p, off, nil
}

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

// Package s2k implements the String-to-Key specifiers used to derive a
// symmetric key from a passphrase for Secret-Key packet protection
// (spec §3, §4.5).
package s2k

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/argon2"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// Type identifies one of the five S2K specifier shapes.
type Type uint8

const (
	TypeSimple   Type = 0
	TypeSalted   Type = 1
	TypeIterated Type = 3
	TypeArgon2   Type = 4
	TypeGNUDummy Type = 101
)

// Params is a tagged union over the five S2K specifier shapes. Exactly
// the fields relevant to Type are meaningful.
type Params struct {
	Type Type
	Hash algorithm.Hash

	Salt [8]byte // Salted, Iterated

	// Count is the one-octet coded iteration count for Iterated S2K,
	// decoded per RFC 9580 §3.7.1.3 (not a raw byte count): only its low
	// byte is serialized and decoded. EncodeCount converts a byte count
	// into this form.
	Count uint32

	Argon2Salt        [16]byte
	Argon2Passes      uint8
	Argon2Parallelism uint8
	Argon2MemExpBits  uint8 // memory = 2^MemExpBits KiB
}

// Dummy reports whether this specifier is GNU-Dummy (no usable key
// material, e.g. a stub for a key held on a smart card).
func (p *Params) Dummy() bool {
	return p.Type == TypeGNUDummy
}

func hasher(h algorithm.Hash) (func() hash.Hash, error) {
	switch h {
	case algorithm.HashSHA1:
		return sha1.New, nil
	case algorithm.HashSHA256:
		return sha256.New, nil
	case algorithm.HashSHA512:
		return sha512.New, nil
	default:
		return nil, pgperror.New(pgperror.Unsupported, "unsupported S2K hash algorithm")
	}
}

// decodedCount converts the RFC 9580 §3.7.1.3 encoded octet-count byte
// into an actual byte count: (16 + (c & 15)) << ((c >> 4) + 6).
func decodedCount(c uint8) uint32 {
	return (uint32(16) + uint32(c&15)) << (uint32(c>>4) + 6)
}

// EncodeCount is the inverse of decodedCount for the nearest
// representable value not less than count.
func EncodeCount(count uint32) uint8 {
	for c := 0; c < 256; c++ {
		if decodedCount(uint8(c)) >= count {
			return uint8(c)
		}
	}
	return 255
}

// ProduceKey derives a key of length keySize from passphrase according to
// the specifier. v6 forbids TypeSimple; Argon2 is only valid when the
// caller has already confirmed AEAD protection is in effect — that
// constraint is enforced by the secret-key packet layer, not here.
func (p *Params) ProduceKey(passphrase []byte, keySize int, isV6 bool) ([]byte, error) {
	switch p.Type {
	case TypeSimple:
		if isV6 {
			return nil, pgperror.New(pgperror.Unsupported, "simple S2K forbidden for v6 keys")
		}
		return hashExpand(p.Hash, nil, passphrase, keySize)
	case TypeSalted:
		return hashExpand(p.Hash, p.Salt[:], passphrase, keySize)
	case TypeIterated:
		return iteratedS2K(p.Hash, p.Salt[:], passphrase, decodedCount(uint8(p.Count)), keySize)
	case TypeArgon2:
		return argon2.IDKey(passphrase, p.Argon2Salt[:], uint32(p.Argon2Passes),
			1<<p.Argon2MemExpBits, p.Argon2Parallelism, uint32(keySize)), nil
	case TypeGNUDummy:
		return nil, pgperror.New(pgperror.Unsupported, "gnu-dummy S2K has no key material")
	default:
		return nil, pgperror.New(pgperror.Unsupported, "unknown S2K type")
	}
}

// hashExpand implements the simple/salted-S2K key stretching algorithm:
// repeatedly hash an increasing number of leading zero-octets prepended
// to (salt||passphrase) until keySize bytes have been produced.
func hashExpand(h algorithm.Hash, salt, passphrase []byte, keySize int) ([]byte, error) {
	newHash, err := hasher(h)
	if err != nil {
		return nil, err
	}
	var out []byte
	var zeros int
	for len(out) < keySize {
		hh := newHash()
		for i := 0; i < zeros; i++ {
			hh.Write([]byte{0})
		}
		hh.Write(salt)
		hh.Write(passphrase)
		out = append(out, hh.Sum(nil)...)
		zeros++
	}
	return out[:keySize], nil
}

// iteratedS2K implements RFC 9580 §3.7.1.3: hash salt||passphrase
// repeated to fill byteCount total input bytes, with increasing leading
// zero-octet prefixes as in hashExpand.
func iteratedS2K(h algorithm.Hash, salt, passphrase []byte, byteCount uint32, keySize int) ([]byte, error) {
	newHash, err := hasher(h)
	if err != nil {
		return nil, err
	}
	combined := append(append([]byte{}, salt...), passphrase...)
	if len(combined) == 0 {
		return nil, pgperror.New(pgperror.Malformed, "empty S2K input")
	}
	var out []byte
	var zeros int
	for len(out) < keySize {
		hh := newHash()
		for i := 0; i < zeros; i++ {
			hh.Write([]byte{0})
		}
		written := uint32(0)
		for written < byteCount {
			n := uint32(len(combined))
			if written+n > byteCount {
				n = byteCount - written
			}
			hh.Write(combined[:n])
			written += n
		}
		out = append(out, hh.Sum(nil)...)
		zeros++
	}
	return out[:keySize], nil
}

// EncodeLength returns the on-wire byte length of the specifier body
// (excluding the leading Type octet), matching RFC 9580 §3.7.1.
func (p *Params) EncodeLength() int {
	switch p.Type {
	case TypeSimple:
		return 1 // hash
	case TypeSalted:
		return 1 + 8
	case TypeIterated:
		return 1 + 8 + 1
	case TypeArgon2:
		return 16 + 1 + 1 + 1
	case TypeGNUDummy:
		return 1 + 3 + 1 // hash + "GNU" + mode octet, simplified fixed form
	default:
		return 0
	}
}

// Serialize writes the S2K specifier (Type octet included) to a new byte
// slice.
func (p *Params) Serialize() []byte {
	out := []byte{byte(p.Type)}
	switch p.Type {
	case TypeSimple:
		out = append(out, byte(p.Hash))
	case TypeSalted:
		out = append(out, byte(p.Hash))
		out = append(out, p.Salt[:]...)
	case TypeIterated:
		out = append(out, byte(p.Hash))
		out = append(out, p.Salt[:]...)
		out = append(out, byte(p.Count))
	case TypeArgon2:
		out = append(out, p.Argon2Salt[:]...)
		out = append(out, p.Argon2Passes, p.Argon2Parallelism, p.Argon2MemExpBits)
	case TypeGNUDummy:
		out = append(out, byte(algorithm.HashSHA1))
		out = append(out, 'G', 'N', 'U', 1)
	}
	return out
}

// Parse reads an S2K specifier (Type octet included) from buf at off.
func Parse(buf []byte, off int) (*Params, int, error) {
	if off >= len(buf) {
		return nil, off, pgperror.New(pgperror.Malformed, "truncated S2K specifier")
	}
	t := Type(buf[off])
	off++
	p := &Params{Type: t}
	switch t {
	case TypeSimple:
		if off >= len(buf) {
			return nil, off, pgperror.New(pgperror.Malformed, "truncated S2K")
		}
		p.Hash = algorithm.Hash(buf[off])
		off++
	case TypeSalted:
		if off+9 > len(buf) {
			return nil, off, pgperror.New(pgperror.Malformed, "truncated S2K")
		}
		p.Hash = algorithm.Hash(buf[off])
		off++
		copy(p.Salt[:], buf[off:off+8])
		off += 8
	case TypeIterated:
		if off+10 > len(buf) {
			return nil, off, pgperror.New(pgperror.Malformed, "truncated S2K")
		}
		p.Hash = algorithm.Hash(buf[off])
		off++
		copy(p.Salt[:], buf[off:off+8])
		off += 8
		p.Count = uint32(buf[off])
		off++
	case TypeArgon2:
		if off+19 > len(buf) {
			return nil, off, pgperror.New(pgperror.Malformed, "truncated S2K")
		}
		copy(p.Argon2Salt[:], buf[off:off+16])
		off += 16
		p.Argon2Passes = buf[off]
		p.Argon2Parallelism = buf[off+1]
		p.Argon2MemExpBits = buf[off+2]
		off += 3
	case TypeGNUDummy:
		if off+5 > len(buf) {
			return nil, off, pgperror.New(pgperror.Malformed, "truncated S2K")
		}
		p.Hash = algorithm.Hash(buf[off])
		off += 5 // hash octet + "GNU" + mode octet
	default:
		return nil, off, pgperror.New(pgperror.Unsupported, "unknown S2K type")
	}
	return p, off, nil
}

// be32 is retained for callers that need to encode a raw 32-bit length.
func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

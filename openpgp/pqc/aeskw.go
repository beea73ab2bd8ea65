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

// Package pqc implements the PQC composite constructions (C4): the
// ML-KEM+X25519 composite KEM, the ML-DSA+Ed25519 composite signature,
// SLH-DSA, and the RFC 3394 AES Key Wrap primitive they (and the legacy
// ECDH/X25519/X448 adapters) all key-wrap session keys with. Stdlib has
// no AES-KW implementation, and none of the example repos vendor one
// either, so this is implemented directly over crypto/aes — the one
// deliberate stdlib-only piece of the dispatcher, justified in DESIGN.md.
package pqc

import (
	"crypto/aes"
	"encoding/binary"

	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

var kwDefaultIV = [8]byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

// AESKeyWrap implements RFC 3394 AES Key Wrap: kek must be 16/24/32
// bytes, data must be a multiple of 8 bytes and at least 16 bytes.
func AESKeyWrap(kek, data []byte) ([]byte, error) {
	if len(data)%8 != 0 || len(data) < 16 {
		return nil, pgperror.New(pgperror.Malformed, "key wrap input must be a multiple of 8 bytes, at least 16")
	}
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, pgperror.Wrap(pgperror.Unsupported, "invalid AES-KW key size", err)
	}
	n := len(data) / 8
	r := make([][8]byte, n)
	for i := 0; i < n; i++ {
		copy(r[i][:], data[i*8:i*8+8])
	}
	var a [8]byte
	copy(a[:], kwDefaultIV[:])

	buf := make([]byte, 16)
	for j := 0; j <= 5; j++ {
		for i := 1; i <= n; i++ {
			copy(buf[:8], a[:])
			copy(buf[8:], r[i-1][:])
			block.Encrypt(buf, buf)
			copy(a[:], buf[:8])
			t := uint64(j*n + i)
			xorCounter(&a, t)
			copy(r[i-1][:], buf[8:])
		}
	}
	out := make([]byte, 8+len(data))
	copy(out[:8], a[:])
	for i := 0; i < n; i++ {
		copy(out[8+i*8:8+i*8+8], r[i][:])
	}
	return out, nil
}

// AESKeyUnwrap implements the RFC 3394 inverse. It returns a
// DecryptionError if the integrity check value (the default IV, after
// unwrapping) does not match, Malformed for a bad input length and
// Unsupported for a bad KEK size.
func AESKeyUnwrap(kek, wrapped []byte) ([]byte, error) {
	if len(wrapped)%8 != 0 || len(wrapped) < 24 {
		return nil, pgperror.New(pgperror.Malformed, "key unwrap input must be a multiple of 8 bytes, at least 24")
	}
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, pgperror.Wrap(pgperror.Unsupported, "invalid AES-KW key size", err)
	}
	n := len(wrapped)/8 - 1
	var a [8]byte
	copy(a[:], wrapped[:8])
	r := make([][8]byte, n)
	for i := 0; i < n; i++ {
		copy(r[i][:], wrapped[8+i*8:8+i*8+8])
	}

	buf := make([]byte, 16)
	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			t := uint64(j*n + i)
			xorCounter(&a, t)
			copy(buf[:8], a[:])
			copy(buf[8:], r[i-1][:])
			block.Decrypt(buf, buf)
			copy(a[:], buf[:8])
			copy(r[i-1][:], buf[8:])
		}
	}
	if a != kwDefaultIV {
		return nil, pgperror.New(pgperror.DecryptionError, "key unwrap integrity check failed")
	}
	out := make([]byte, n*8)
	for i := 0; i < n; i++ {
		copy(out[i*8:i*8+8], r[i][:])
	}
	return out, nil
}

func xorCounter(a *[8]byte, t uint64) {
	var tb [8]byte
	binary.BigEndian.PutUint64(tb[:], t)
	for i := 0; i < 8; i++ {
		a[i] ^= tb[i]
	}
}

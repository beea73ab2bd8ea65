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

// Package encoding implements the MPI and native fixed-length field codec
// shared by every packet and parameter record (spec §4.1).
package encoding

import (
	"crypto/subtle"
	"encoding/binary"

	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// ReadMPI reads a 2-byte big-endian bit-length prefix followed by
// ceil(bitLen/8) bytes from buf, starting at off. It returns the raw
// integer bytes (no leading-zero padding beyond what the bit length
// implies) and the offset of the first unread byte.
func ReadMPI(buf []byte, off int) (value []byte, next int, err error) {
	if off+2 > len(buf) {
		return nil, off, pgperror.New(pgperror.Malformed, "truncated MPI length")
	}
	bitLen := int(binary.BigEndian.Uint16(buf[off : off+2]))
	byteLen := (bitLen + 7) / 8
	start := off + 2
	end := start + byteLen
	if end > len(buf) {
		return nil, off, pgperror.New(pgperror.Malformed, "truncated MPI body")
	}
	return buf[start:end], end, nil
}

// LeftPad prepends zero bytes to b until it is n bytes long. It returns an
// error if b is already longer than n.
func LeftPad(b []byte, n int) ([]byte, error) {
	if len(b) > n {
		return nil, pgperror.New(pgperror.Malformed, "value longer than target width")
	}
	if len(b) == n {
		return b, nil
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out, nil
}

// ReadExact returns buf[off:end], erroring if end exceeds len(buf).
func ReadExact(buf []byte, off, end int) ([]byte, error) {
	if end > len(buf) || off > end || off < 0 {
		return nil, pgperror.New(pgperror.Malformed, "truncated field")
	}
	return buf[off:end], nil
}

// bitLen returns the number of significant bits in b, treating b as a
// big-endian unsigned integer with no assumed leading-zero trimming: the
// first nonzero byte's highest set bit determines the count.
func bitLen(b []byte) int {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	if i == len(b) {
		return 0
	}
	nbits := (len(b) - i - 1) * 8
	v := b[i]
	for v != 0 {
		nbits++
		v >>= 1
	}
	return nbits
}

// EncodeMPI emits the 2-byte bit-length prefix (of the value with leading
// zero bytes stripped) followed by the significant bytes of b.
func EncodeMPI(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	trimmed := b[i:]
	out := make([]byte, 2+len(trimmed))
	binary.BigEndian.PutUint16(out, uint16(bitLen(b)))
	copy(out[2:], trimmed)
	return out
}

// WriteChecksum computes the 2-byte big-endian sum of b modulo 65536, as
// used by the legacy secret-key checksum and the PKESK session-key
// checksum.
func WriteChecksum(b []byte) []byte {
	var sum uint16
	for _, v := range b {
		sum += uint16(v)
	}
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, sum)
	return out
}

// VerifyChecksum reports, in constant time with respect to b and the
// expected checksum, whether the trailing 2-byte checksum of b|checksum
// matches WriteChecksum(b).
func VerifyChecksum(b, checksum []byte) bool {
	want := WriteChecksum(b)
	if len(checksum) != len(want) {
		return false
	}
	return subtle.ConstantTimeCompare(want, checksum) == 1
}

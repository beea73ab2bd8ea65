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

// OCB (RFC 7253), TAGLEN=128, 15-byte nonces (RFC 9580's fixed choice).
// A 15-byte nonce makes the nonce-processing formulas in RFC 7253 §4
// collapse nicely: the 128-bit Nonce block is exactly 0x01 followed by
// the 15 nonce bytes, so "bottom" is just the low 6 bits of its last
// byte and Ktop is ENCIPHER(K, Nonce with those 6 bits cleared).
package aead

import (
	"crypto/cipher"

	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// lTable lazily derives and caches L_0, L_1, L_2, ... = double(L_{i-1})
// starting from L_0 = double(L_$), where L_$ = double(L_*), plus L_* and
// L_$ themselves.
type lTable struct {
	star   [16]byte
	dollar [16]byte
	l      [][16]byte
}

func newLTable(block cipher.Block) *lTable {
	var zero, star [16]byte
	block.Encrypt(star[:], zero[:])
	dollar := double(star)
	l0 := double(dollar)
	return &lTable{star: star, dollar: dollar, l: [][16]byte{l0}}
}

func (t *lTable) at(i int) [16]byte {
	for len(t.l) <= i {
		t.l = append(t.l, double(t.l[len(t.l)-1]))
	}
	return t.l[i]
}

func (t *lTable) forBlock(index int) [16]byte {
	return t.at(ntz(index))
}

func ocbOffset0(block cipher.Block, nonce []byte) [16]byte {
	var n [16]byte
	n[0] = 0x01
	copy(n[1:], nonce)

	bottom := int(n[15] & 0x3F)

	var ktopInput [16]byte
	copy(ktopInput[:], n[:])
	ktopInput[15] &= 0xC0

	var ktop [16]byte
	block.Encrypt(ktop[:], ktopInput[:])

	var high [8]byte
	xorBytes(high[:], ktop[:8], ktop[1:9])
	stretch := append(append([]byte{}, ktop[:]...), high[:]...)

	var offset [16]byte
	byteShift, bitShift := bottom/8, bottom%8
	if bitShift == 0 {
		copy(offset[:], stretch[byteShift:byteShift+16])
	} else {
		for i := 0; i < 16; i++ {
			offset[i] = stretch[byteShift+i]<<bitShift | stretch[byteShift+i+1]>>(8-bitShift)
		}
	}
	return offset
}

func ocbHash(block cipher.Block, lt *lTable, aad []byte) [16]byte {
	var sum, offset [16]byte
	full := len(aad) / 16
	for i := 1; i <= full; i++ {
		xorBytes(offset[:], offset[:], sliceL(lt.forBlock(i)))
		var in, out [16]byte
		xorBytes(in[:], aad[(i-1)*16:i*16], offset[:])
		block.Encrypt(out[:], in[:])
		xorBytes(sum[:], sum[:], out[:])
	}
	if rem := len(aad) % 16; rem > 0 {
		xorBytes(offset[:], offset[:], lt.star[:])
		var padded, out [16]byte
		copy(padded[:], aad[full*16:])
		padded[rem] = 0x80
		xorBytes(padded[:], padded[:], offset[:])
		block.Encrypt(out[:], padded[:])
		xorBytes(sum[:], sum[:], out[:])
	}
	return sum
}

func sliceL(l [16]byte) []byte { return l[:] }

func ocbSeal(block cipher.Block, nonce, aad, plaintext []byte) ([]byte, error) {
	lt := newLTable(block)
	offset := ocbOffset0(block, nonce)
	var checksum [16]byte

	full := len(plaintext) / 16
	out := make([]byte, 0, len(plaintext)+tagSize)
	for i := 1; i <= full; i++ {
		xorBytes(offset[:], offset[:], sliceL(lt.forBlock(i)))
		var in, ct [16]byte
		xorBytes(in[:], plaintext[(i-1)*16:i*16], offset[:])
		block.Encrypt(ct[:], in[:])
		xorBytes(ct[:], ct[:], offset[:])
		out = append(out, ct[:]...)
		xorBytes(checksum[:], checksum[:], plaintext[(i-1)*16:i*16])
	}

	rem := len(plaintext) % 16
	if rem > 0 {
		xorBytes(offset[:], offset[:], lt.star[:])
		var pad [16]byte
		block.Encrypt(pad[:], offset[:])
		tail := plaintext[full*16:]
		cstar := make([]byte, rem)
		xorBytes(cstar, tail, pad[:rem])
		out = append(out, cstar...)

		var padded [16]byte
		copy(padded[:], tail)
		padded[rem] = 0x80
		xorBytes(checksum[:], checksum[:], padded[:])
	}

	var tagInput, tag [16]byte
	xorBytes(tagInput[:], checksum[:], offset[:])
	xorBytes(tagInput[:], tagInput[:], lt.dollar[:])
	block.Encrypt(tag[:], tagInput[:])
	h := ocbHash(block, lt, aad)
	xorBytes(tag[:], tag[:], h[:])

	return append(out, tag[:]...), nil
}

func ocbOpen(block cipher.Block, nonce, aad, in []byte) ([]byte, error) {
	ciphertext := in[:len(in)-tagSize]
	gotTag := in[len(in)-tagSize:]

	lt := newLTable(block)
	offset := ocbOffset0(block, nonce)
	var checksum [16]byte

	full := len(ciphertext) / 16
	out := make([]byte, 0, len(ciphertext))
	for i := 1; i <= full; i++ {
		xorBytes(offset[:], offset[:], sliceL(lt.forBlock(i)))
		var in2, pt [16]byte
		xorBytes(in2[:], ciphertext[(i-1)*16:i*16], offset[:])
		block.Decrypt(pt[:], in2[:])
		xorBytes(pt[:], pt[:], offset[:])
		out = append(out, pt[:]...)
		xorBytes(checksum[:], checksum[:], pt[:])
	}

	rem := len(ciphertext) % 16
	if rem > 0 {
		xorBytes(offset[:], offset[:], lt.star[:])
		var pad [16]byte
		block.Encrypt(pad[:], offset[:])
		tail := ciphertext[full*16:]
		pstar := make([]byte, rem)
		xorBytes(pstar, tail, pad[:rem])
		out = append(out, pstar...)

		var padded [16]byte
		copy(padded[:], pstar)
		padded[rem] = 0x80
		xorBytes(checksum[:], checksum[:], padded[:])
	}

	var tagInput, tag [16]byte
	xorBytes(tagInput[:], checksum[:], offset[:])
	xorBytes(tagInput[:], tagInput[:], lt.dollar[:])
	block.Encrypt(tag[:], tagInput[:])
	h := ocbHash(block, lt, aad)
	xorBytes(tag[:], tag[:], h[:])

	if !constantTimeEqual(tag[:], gotTag) {
		return nil, pgperror.New(pgperror.DecryptionError, "OCB authentication failed")
	}
	return out, nil
}

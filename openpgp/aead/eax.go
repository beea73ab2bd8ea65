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

package aead

import (
	"crypto/cipher"

	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// cmac implements AES-CMAC (RFC 4493) over an arbitrary-length message
// using the given block cipher.
func cmac(block cipher.Block, msg []byte) [16]byte {
	k1, k2 := cmacSubkeys(block)

	n := (len(msg) + 15) / 16
	complete := n > 0 && len(msg)%16 == 0
	if n == 0 {
		n = 1
	}

	var mLast [16]byte
	if complete {
		copy(mLast[:], msg[(n-1)*16:n*16])
		xorBytes(mLast[:], mLast[:], k1[:])
	} else {
		tail := msg[(n-1)*16:]
		copy(mLast[:], tail)
		mLast[len(tail)] = 0x80
		xorBytes(mLast[:], mLast[:], k2[:])
	}

	var x [16]byte
	for i := 0; i < n-1; i++ {
		var y [16]byte
		xorBytes(y[:], x[:], msg[i*16:i*16+16])
		block.Encrypt(x[:], y[:])
	}
	var y, t [16]byte
	xorBytes(y[:], x[:], mLast[:])
	block.Encrypt(t[:], y[:])
	return t
}

func cmacSubkeys(block cipher.Block) (k1, k2 [16]byte) {
	var zero, l [16]byte
	block.Encrypt(l[:], zero[:])
	k1 = double(l)
	k2 = double(k1)
	return
}

// omac is the EAX tweaked one-key CMAC: OMAC_K^t(M) = CMAC_K([t]_128 || M).
func omac(block cipher.Block, t byte, msg []byte) [16]byte {
	data := make([]byte, 16+len(msg))
	data[15] = t
	copy(data[16:], msg)
	return cmac(block, data)
}

func ctrXOR(block cipher.Block, iv [16]byte, in []byte) []byte {
	out := make([]byte, len(in))
	stream := cipher.NewCTR(block, iv[:])
	stream.XORKeyStream(out, in)
	return out
}

func eaxSeal(block cipher.Block, nonce, aad, plaintext []byte) []byte {
	n := omac(block, 0, nonce)
	h := omac(block, 1, aad)
	c := ctrXOR(block, n, plaintext)
	cTag := omac(block, 2, c)

	var tag [16]byte
	for i := 0; i < 16; i++ {
		tag[i] = n[i] ^ h[i] ^ cTag[i]
	}
	return append(c, tag[:]...)
}

func eaxOpen(block cipher.Block, nonce, aad, in []byte) ([]byte, error) {
	c := in[:len(in)-tagSize]
	gotTag := in[len(in)-tagSize:]

	n := omac(block, 0, nonce)
	h := omac(block, 1, aad)
	cTag := omac(block, 2, c)

	var wantTag [16]byte
	for i := 0; i < 16; i++ {
		wantTag[i] = n[i] ^ h[i] ^ cTag[i]
	}
	if !constantTimeEqual(wantTag[:], gotTag) {
		return nil, pgperror.New(pgperror.DecryptionError, "EAX authentication failed")
	}
	return ctrXOR(block, n, c), nil
}

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

// Package aead implements the three AEAD modes RFC 9580 permits for
// protecting a v6 Secret-Key packet and an AEAD Encrypted Data packet:
// OCB (RFC 7253), EAX, and GCM. None of the example repos, nor
// golang.org/x/crypto, carry an OCB or EAX implementation, so both are
// built directly over crypto/aes here; GCM is stdlib's own
// crypto/cipher.NewGCM. This stdlib-only construction is the deliberate,
// DESIGN.md-justified exception to "use a third-party library" for this
// module, since no such library exists anywhere in the retrieval pack.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

const tagSize = 16

// Seal encrypts and authenticates plaintext under key/nonce/aad using
// mode, returning ciphertext with the tag appended.
func Seal(mode algorithm.AEAD, key, nonce, plaintext, aad []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, pgperror.Wrap(pgperror.Unsupported, "invalid AEAD key size", err)
	}
	if len(nonce) != mode.IVLength() {
		return nil, pgperror.New(pgperror.Malformed, "wrong AEAD nonce length")
	}
	switch mode {
	case algorithm.AEADGCM:
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, pgperror.Wrap(pgperror.Unsupported, "GCM setup failed", err)
		}
		return gcm.Seal(nil, nonce, plaintext, aad), nil
	case algorithm.AEADEAX:
		return eaxSeal(block, nonce, aad, plaintext), nil
	case algorithm.AEADOCB:
		return ocbSeal(block, nonce, aad, plaintext)
	default:
		return nil, pgperror.New(pgperror.Unsupported, "unknown AEAD mode")
	}
}

// Open authenticates and decrypts ciphertext (which carries the tag as
// its final bytes) under key/nonce/aad using mode.
func Open(mode algorithm.AEAD, key, nonce, ciphertext, aad []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, pgperror.Wrap(pgperror.Unsupported, "invalid AEAD key size", err)
	}
	if len(nonce) != mode.IVLength() {
		return nil, pgperror.New(pgperror.Malformed, "wrong AEAD nonce length")
	}
	if len(ciphertext) < tagSize {
		return nil, pgperror.New(pgperror.Malformed, "AEAD ciphertext shorter than tag")
	}
	switch mode {
	case algorithm.AEADGCM:
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, pgperror.Wrap(pgperror.Unsupported, "GCM setup failed", err)
		}
		pt, err := gcm.Open(nil, nonce, ciphertext, aad)
		if err != nil {
			return nil, pgperror.Wrap(pgperror.DecryptionError, "GCM authentication failed", err)
		}
		return pt, nil
	case algorithm.AEADEAX:
		return eaxOpen(block, nonce, aad, ciphertext)
	case algorithm.AEADOCB:
		return ocbOpen(block, nonce, aad, ciphertext)
	default:
		return nil, pgperror.New(pgperror.Unsupported, "unknown AEAD mode")
	}
}

func xorBytes(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

func constantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

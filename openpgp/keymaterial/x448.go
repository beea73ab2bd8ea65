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
	"crypto/sha512"
	"io"

	"github.com/cloudflare/circl/dh/x448"
	"golang.org/x/crypto/hkdf"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
	"github.com/sage-x-project/sage-pgp/openpgp/pqc"
)

// X448PublicKey holds the 56-byte native public key A (spec §3).
type X448PublicKey struct {
	A [56]byte
}

// X448PrivateKey holds the 56-byte native scalar k.
type X448PrivateKey struct {
	K [56]byte
}

const x448WrapCipher = algorithm.CipherAES256

// GenerateX448 creates a new native X448 key pair via circl.
func GenerateX448() (*X448PublicKey, *X448PrivateKey, error) {
	var priv x448.Key
	if _, err := io.ReadFull(rand.Reader, priv[:]); err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "X448 key generation failed", err)
	}
	var pub x448.Key
	x448.KeyGen(&pub, &priv)
	p := &X448PublicKey{A: pub}
	s := &X448PrivateKey{K: priv}
	return p, s, nil
}

func x448KEK(shared, ephemeralPub, recipientPub []byte) ([]byte, error) {
	info := []byte("OpenPGP X448")
	r := hkdf.New(sha512.New, append(append(append([]byte{}, shared...), ephemeralPub...), recipientPub...), nil, info)
	kek := make([]byte, x448WrapCipher.KeySize())
	if _, err := io.ReadFull(r, kek); err != nil {
		return nil, pgperror.Wrap(pgperror.Unsupported, "HKDF expansion failed", err)
	}
	return kek, nil
}

// EncryptX448 performs ephemeral-static X448 ECDH encapsulation and
// wraps data under the derived KEK with AES-KW.
func EncryptX448(pub *X448PublicKey, data []byte) (ephemeral, wrapped []byte, err error) {
	var ephemeralPriv, ephemeralPub x448.Key
	if _, err := io.ReadFull(rand.Reader, ephemeralPriv[:]); err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "X448 ephemeral generation failed", err)
	}
	x448.KeyGen(&ephemeralPub, &ephemeralPriv)
	var shared x448.Key
	if ok := x448.Shared(&shared, &ephemeralPriv, (*x448.Key)(&pub.A)); !ok {
		return nil, nil, pgperror.New(pgperror.Malformed, "X448 shared secret computation failed (low-order point)")
	}
	kek, err := x448KEK(shared[:], ephemeralPub[:], pub.A[:])
	if err != nil {
		return nil, nil, err
	}
	wrapped, err = pqc.AESKeyWrap(kek, data)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "AES-KW wrap failed", err)
	}
	return ephemeralPub[:], wrapped, nil
}

// DecryptX448 mirrors EncryptX448.
func DecryptX448(pub *X448PublicKey, priv *X448PrivateKey, ephemeral, wrapped, randomPayload []byte) ([]byte, error) {
	var ephemeralPub x448.Key
	copy(ephemeralPub[:], ephemeral)
	var shared x448.Key
	privKey := x448.Key(priv.K)
	if ok := x448.Shared(&shared, &privKey, &ephemeralPub); !ok {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, pgperror.New(pgperror.DecryptionError, "X448 shared secret computation failed")
	}
	kek, err := x448KEK(shared[:], ephemeral, pub.A[:])
	if err != nil {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, err
	}
	data, err := pqc.AESKeyUnwrap(kek, wrapped)
	if err != nil {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, pgperror.Wrap(pgperror.DecryptionError, "AES-KW unwrap failed", err)
	}
	return data, nil
}

func (p *X448PublicKey) Serialize() []byte { return append([]byte{}, p.A[:]...) }

func ParseX448Public(buf []byte, off int) (*X448PublicKey, int, error) {
	b, err := sliceExact(buf, off, algorithm.X448PublicSize)
	if err != nil {
		return nil, off, err
	}
	p := &X448PublicKey{}
	copy(p.A[:], b)
	return p, off + algorithm.X448PublicSize, nil
}

func (p *X448PrivateKey) Serialize() []byte { return append([]byte{}, p.K[:]...) }

func ParseX448Private(buf []byte, off int) (*X448PrivateKey, int, error) {
	b, err := sliceExact(buf, off, algorithm.X448PrivateSize)
	if err != nil {
		return nil, off, err
	}
	p := &X448PrivateKey{}
	copy(p.K[:], b)
	return p, off + algorithm.X448PrivateSize, nil
}

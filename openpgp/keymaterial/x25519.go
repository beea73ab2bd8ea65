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
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/hkdf"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
	"github.com/sage-x-project/sage-pgp/openpgp/pqc"
)

// X25519PublicKey holds the 32-byte native public key A (spec §3),
// grounded on the teacher's crypto/keys/x25519.go ECDH adapter.
type X25519PublicKey struct {
	A [32]byte
}

// X25519PrivateKey holds the 32-byte native scalar k.
type X25519PrivateKey struct {
	K [32]byte
}

const x25519WrapCipher = algorithm.CipherAES128

// GenerateX25519 creates a new native X25519 key pair.
func GenerateX25519() (*X25519PublicKey, *X25519PrivateKey, error) {
	key, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "X25519 key generation failed", err)
	}
	p := &X25519PublicKey{}
	copy(p.A[:], key.PublicKey().Bytes())
	s := &X25519PrivateKey{}
	copy(s.K[:], key.Bytes())
	return p, s, nil
}

// x25519KEK derives the AES key-wrap KEK from the ECDH shared secret,
// the ephemeral public key and the recipient public key per spec §4.2:
// "the wire shared material is HKDF_or_hash(shared || E || recipient_pub)".
func x25519KEK(shared, ephemeralPub, recipientPub []byte) ([]byte, error) {
	info := []byte("OpenPGP X25519")
	r := hkdf.New(sha256.New, append(append(append([]byte{}, shared...), ephemeralPub...), recipientPub...), nil, info)
	kek := make([]byte, x25519WrapCipher.KeySize())
	if _, err := io.ReadFull(r, kek); err != nil {
		return nil, pgperror.Wrap(pgperror.Unsupported, "HKDF expansion failed", err)
	}
	return kek, nil
}

// EncryptX25519 performs ephemeral-static X25519 ECDH encapsulation and
// wraps data under the derived KEK with AES-KW. Returns the ephemeral
// public key and the wrapped output.
func EncryptX25519(pub *X25519PublicKey, data []byte) (ephemeral, wrapped []byte, err error) {
	recipientKey, err := ecdh.X25519().NewPublicKey(pub.A[:])
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Malformed, "invalid X25519 recipient key", err)
	}
	ephemeralKey, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "X25519 ephemeral generation failed", err)
	}
	shared, err := ephemeralKey.ECDH(recipientKey)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "X25519 ECDH failed", err)
	}
	kek, err := x25519KEK(shared, ephemeralKey.PublicKey().Bytes(), pub.A[:])
	if err != nil {
		return nil, nil, err
	}
	wrapped, err = pqc.AESKeyWrap(kek, data)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "AES-KW wrap failed", err)
	}
	return ephemeralKey.PublicKey().Bytes(), wrapped, nil
}

// DecryptX25519 mirrors EncryptX25519. On any failure, randomPayload (if
// supplied) is returned in place of an error.
func DecryptX25519(pub *X25519PublicKey, priv *X25519PrivateKey, ephemeral, wrapped, randomPayload []byte) ([]byte, error) {
	recipientKey, err := ecdh.X25519().NewPrivateKey(priv.K[:])
	if err != nil {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, pgperror.Wrap(pgperror.DecryptionError, "invalid X25519 private key", err)
	}
	ephemeralKey, err := ecdh.X25519().NewPublicKey(ephemeral)
	if err != nil {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, pgperror.Wrap(pgperror.DecryptionError, "invalid X25519 ephemeral point", err)
	}
	shared, err := recipientKey.ECDH(ephemeralKey)
	if err != nil {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, pgperror.Wrap(pgperror.DecryptionError, "X25519 ECDH failed", err)
	}
	kek, err := x25519KEK(shared, ephemeral, pub.A[:])
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

// Ed25519PublicKeyToX25519 decompresses an Ed25519 (twisted Edwards)
// public point and maps it to its Montgomery-form X25519 equivalent, so
// a caller holding only a native Ed25519 signing key can still encrypt
// to its holder without a separately generated X25519 subkey. Grounded
// on the teacher's crypto/keys/x25519.go EncryptWithEd25519Peer helper.
func Ed25519PublicKeyToX25519(pub *Ed25519PublicKey) (*X25519PublicKey, error) {
	point, err := new(edwards25519.Point).SetBytes(pub.A[:])
	if err != nil {
		return nil, pgperror.Wrap(pgperror.KeyIsInvalid, "invalid Ed25519 public key point", err)
	}
	out := &X25519PublicKey{}
	copy(out.A[:], point.BytesMontgomery())
	return out, nil
}

func (p *X25519PublicKey) Serialize() []byte { return append([]byte{}, p.A[:]...) }

func ParseX25519Public(buf []byte, off int) (*X25519PublicKey, int, error) {
	b, err := sliceExact(buf, off, algorithm.X25519PublicSize)
	if err != nil {
		return nil, off, err
	}
	p := &X25519PublicKey{}
	copy(p.A[:], b)
	return p, off + algorithm.X25519PublicSize, nil
}

func (p *X25519PrivateKey) Serialize() []byte { return append([]byte{}, p.K[:]...) }

func ParseX25519Private(buf []byte, off int) (*X25519PrivateKey, int, error) {
	b, err := sliceExact(buf, off, algorithm.X25519PrivateSize)
	if err != nil {
		return nil, off, err
	}
	p := &X25519PrivateKey{}
	copy(p.K[:], b)
	return p, off + algorithm.X25519PrivateSize, nil
}

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

package pqc

import (
	"crypto/ecdh"
	"crypto/rand"
	"io"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"golang.org/x/crypto/sha3"

	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// MLKEMX25519PublicKey is the composite ML-KEM-768+X25519 public key
// (draft-ietf-openpgp-pqc): an X25519 share and an ML-KEM-768 encapsulation
// key, always carried and used together (spec §4.2.1 "composite KEM").
type MLKEMX25519PublicKey struct {
	ECCPublicKey   [32]byte
	MLKEMPublicKey [mlkem768.PublicKeySize]byte
}

// MLKEMX25519PrivateKey is the composite private half. MLKEMSeed is the
// 64-byte expandable seed (d‖z) circl derives the decapsulation key from;
// MLKEMSecretKey caches the expanded decapsulation key.
type MLKEMX25519PrivateKey struct {
	ECCSecretKey   [32]byte
	MLKEMSeed      [64]byte
	MLKEMSecretKey []byte
}

const compositeKDFInfo = "OpenPGPCompositeKDFv1"

// multiKeyCombine implements the composite KEM combiner of spec §4.2.1:
// SHA3-256 over a fixed counter, both ECC and ML-KEM shares/ciphertexts/
// public keys, the algorithm ID octet, and a fixed domain string — binding
// every component so a break in one KEM cannot be exploited without the
// other (draft-ietf-openpgp-pqc §5).
func multiKeyCombine(algoID byte, eccShare, eccCt, eccPub, mlkemShare, mlkemCt, mlkemPub []byte) []byte {
	h := sha3.New256()
	h.Write([]byte{0, 0, 0, 1})
	h.Write(eccShare)
	h.Write(eccCt)
	h.Write(eccPub)
	h.Write(mlkemShare)
	h.Write(mlkemCt)
	h.Write(mlkemPub)
	h.Write([]byte{algoID})
	h.Write([]byte(compositeKDFInfo))
	return h.Sum(nil)
}

// GenerateMLKEMX25519 creates a fresh composite key pair.
func GenerateMLKEMX25519() (*MLKEMX25519PublicKey, *MLKEMX25519PrivateKey, error) {
	eccPriv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "X25519 share generation failed", err)
	}
	var seed [64]byte
	if _, err := io.ReadFull(rand.Reader, seed[:]); err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "ML-KEM seed generation failed", err)
	}
	mlkemPub, mlkemPriv := mlkem768.NewKeyFromSeed(&seed)

	pub := &MLKEMX25519PublicKey{}
	copy(pub.ECCPublicKey[:], eccPriv.PublicKey().Bytes())
	mlkemPubBytes, err := mlkemPub.MarshalBinary()
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "ML-KEM public key marshal failed", err)
	}
	copy(pub.MLKEMPublicKey[:], mlkemPubBytes)

	priv := &MLKEMX25519PrivateKey{MLKEMSeed: seed}
	copy(priv.ECCSecretKey[:], eccPriv.Bytes())
	mlkemPrivBytes, err := mlkemPriv.MarshalBinary()
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "ML-KEM private key marshal failed", err)
	}
	priv.MLKEMSecretKey = mlkemPrivBytes
	return pub, priv, nil
}

// EncryptMLKEMX25519 encapsulates a fresh shared secret to pub under both
// component KEMs, combines them, and wraps data under the resulting KEK
// with AES-256-KW (draft-ietf-openpgp-pqc mandates AES-256 wrapping for
// the composite algorithm regardless of the wrapped session key's own
// cipher).
func EncryptMLKEMX25519(algoID byte, pub *MLKEMX25519PublicKey, data []byte) (eccEphemeral, mlkemCiphertext, wrapped []byte, err error) {
	eccEphPriv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, nil, pgperror.Wrap(pgperror.Unsupported, "X25519 ephemeral generation failed", err)
	}
	recipientECC, err := ecdh.X25519().NewPublicKey(pub.ECCPublicKey[:])
	if err != nil {
		return nil, nil, nil, pgperror.Wrap(pgperror.Malformed, "invalid X25519 composite share", err)
	}
	eccShare, err := eccEphPriv.ECDH(recipientECC)
	if err != nil {
		return nil, nil, nil, pgperror.Wrap(pgperror.Malformed, "X25519 ECDH failed", err)
	}

	mlkemPub, err := mlkem768.Scheme().UnmarshalBinaryPublicKey(pub.MLKEMPublicKey[:])
	if err != nil {
		return nil, nil, nil, pgperror.Wrap(pgperror.Malformed, "invalid ML-KEM public key", err)
	}
	mlkemCt, mlkemShare, err := mlkem768.Scheme().Encapsulate(mlkemPub)
	if err != nil {
		return nil, nil, nil, pgperror.Wrap(pgperror.Unsupported, "ML-KEM encapsulation failed", err)
	}

	kek := multiKeyCombine(algoID, eccShare, eccEphPriv.PublicKey().Bytes(), pub.ECCPublicKey[:], mlkemShare, mlkemCt, pub.MLKEMPublicKey[:])
	wrapped, err = AESKeyWrap(kek[:32], data)
	if err != nil {
		return nil, nil, nil, pgperror.Wrap(pgperror.Unsupported, "AES-KW wrap failed", err)
	}
	return eccEphPriv.PublicKey().Bytes(), mlkemCt, wrapped, nil
}

// DecryptMLKEMX25519 mirrors EncryptMLKEMX25519. On any failure, if
// randomPayload is non-nil it is returned instead of an error (PKESK
// decryption-oracle defense, spec §4.4).
func DecryptMLKEMX25519(algoID byte, pub *MLKEMX25519PublicKey, priv *MLKEMX25519PrivateKey, eccEphemeral, mlkemCiphertext, wrapped, randomPayload []byte) ([]byte, error) {
	fail := func(err error) ([]byte, error) {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, err
	}
	eccPriv, err := ecdh.X25519().NewPrivateKey(priv.ECCSecretKey[:])
	if err != nil {
		return fail(pgperror.Wrap(pgperror.KeyIsInvalid, "invalid X25519 composite secret", err))
	}
	eccEphPub, err := ecdh.X25519().NewPublicKey(eccEphemeral)
	if err != nil {
		return fail(pgperror.Wrap(pgperror.Malformed, "invalid X25519 ephemeral", err))
	}
	eccShare, err := eccPriv.ECDH(eccEphPub)
	if err != nil {
		return fail(pgperror.Wrap(pgperror.DecryptionError, "X25519 ECDH failed", err))
	}

	mlkemPriv, err := mlkem768.Scheme().UnmarshalBinaryPrivateKey(priv.MLKEMSecretKey)
	if err != nil {
		return fail(pgperror.Wrap(pgperror.KeyIsInvalid, "invalid ML-KEM secret key", err))
	}
	mlkemShare, err := mlkem768.Scheme().Decapsulate(mlkemPriv, mlkemCiphertext)
	if err != nil {
		return fail(pgperror.Wrap(pgperror.DecryptionError, "ML-KEM decapsulation failed", err))
	}

	kek := multiKeyCombine(algoID, eccShare, eccEphemeral, pub.ECCPublicKey[:], mlkemShare, mlkemCiphertext, pub.MLKEMPublicKey[:])
	data, err := AESKeyUnwrap(kek[:32], wrapped)
	if err != nil {
		return fail(pgperror.Wrap(pgperror.DecryptionError, "AES-KW unwrap failed", err))
	}
	return data, nil
}

func (p *MLKEMX25519PublicKey) Serialize() []byte {
	return append(append([]byte{}, p.ECCPublicKey[:]...), p.MLKEMPublicKey[:]...)
}

func ParseMLKEMX25519Public(buf []byte, off int) (*MLKEMX25519PublicKey, int, error) {
	need := 32 + mlkem768.PublicKeySize
	if off+need > len(buf) {
		return nil, off, pgperror.New(pgperror.Malformed, "truncated ML-KEM+X25519 public key")
	}
	p := &MLKEMX25519PublicKey{}
	copy(p.ECCPublicKey[:], buf[off:off+32])
	copy(p.MLKEMPublicKey[:], buf[off+32:off+need])
	return p, off + need, nil
}

func (p *MLKEMX25519PrivateKey) Serialize() []byte {
	return append(append([]byte{}, p.ECCSecretKey[:]...), p.MLKEMSeed[:]...)
}

func ParseMLKEMX25519Private(buf []byte, off int) (*MLKEMX25519PrivateKey, int, error) {
	need := 32 + 64
	if off+need > len(buf) {
		return nil, off, pgperror.New(pgperror.Malformed, "truncated ML-KEM+X25519 private key")
	}
	p := &MLKEMX25519PrivateKey{}
	copy(p.ECCSecretKey[:], buf[off:off+32])
	copy(p.MLKEMSeed[:], buf[off+32:off+need])
	_, mlkemPriv := mlkem768.NewKeyFromSeed(&p.MLKEMSeed)
	mlkemPrivBytes, err := mlkemPriv.MarshalBinary()
	if err != nil {
		return nil, off, pgperror.Wrap(pgperror.Malformed, "ML-KEM private key derivation failed", err)
	}
	p.MLKEMSecretKey = mlkemPrivBytes
	return p, off + need, nil
}

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
	"crypto/sha512"
	"hash"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/encoding"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
	"github.com/sage-x-project/sage-pgp/openpgp/pqc"
)

// ECDHPublicKey holds the legacy (RFC 9580 §5.1.5/§5.6.4) ECDH public
// parameters: curve OID, point Q, and KDF parameters (hash + symmetric
// wrapping cipher) carried alongside the point.
type ECDHPublicKey struct {
	Curve    algorithm.CurveOID
	Q        []byte
	KDFHash  algorithm.Hash
	KDFCiph  algorithm.Cipher
}

// ECDHPrivateKey holds the scalar d, left-padded to the curve size.
type ECDHPrivateKey struct {
	D []byte
}

// GenerateECDH creates a legacy ECDH key pair on the given curve with
// the given KDF parameters.
func GenerateECDH(oid algorithm.CurveOID, kdfHash algorithm.Hash, kdfCiph algorithm.Cipher) (*ECDHPublicKey, *ECDHPrivateKey, error) {
	if oid == algorithm.CurveCurve25519Legacy {
		return nil, nil, pgperror.New(pgperror.Unsupported, "curve25519Legacy ECDH rejected for new key generation")
	}
	curve, err := stdlibECDHCurve(oid)
	if err != nil {
		return nil, nil, err
	}
	key, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "ECDH key generation failed", err)
	}
	d, err := encoding.LeftPad(key.Bytes(), oid.FieldSizeBytes())
	if err != nil {
		return nil, nil, err
	}
	return &ECDHPublicKey{Curve: oid, Q: key.PublicKey().Bytes(), KDFHash: kdfHash, KDFCiph: kdfCiph},
		&ECDHPrivateKey{D: d}, nil
}

func stdlibECDHCurve(oid algorithm.CurveOID) (ecdh.Curve, error) {
	switch oid {
	case algorithm.CurveNISTP256:
		return ecdh.P256(), nil
	case algorithm.CurveNISTP384:
		return ecdh.P384(), nil
	case algorithm.CurveNISTP521:
		return ecdh.P521(), nil
	default:
		return nil, pgperror.New(pgperror.Unsupported, "curve has no available ECDH implementation")
	}
}

func kdfHasher(h algorithm.Hash) (func() hash.Hash, error) {
	switch h {
	case algorithm.HashSHA256:
		return sha256.New, nil
	case algorithm.HashSHA512:
		return sha512.New, nil
	default:
		return nil, pgperror.New(pgperror.Unsupported, "unsupported ECDH KDF hash")
	}
}

// kdfParam builds the RFC 9580 §5.1.5 Param value:
// curveOIDLen || curveOID || algID(18) || kdfHash || kdfCipher ||
// "Anonymous Sender    " || recipientFingerprint.
func kdfParam(pub *ECDHPublicKey, fingerprint []byte) []byte {
	oid := []byte(pub.Curve)
	out := []byte{byte(len(oid))}
	out = append(out, oid...)
	out = append(out, byte(algorithm.ECDH), byte(pub.KDFHash), byte(pub.KDFCiph))
	out = append(out, []byte("Anonymous Sender    ")...)
	out = append(out, fingerprint...)
	return out
}

// deriveKEK implements the RFC 9580 §5.1.5 ECDH KDF:
// hash(0x00000001 || zb || Param)[:keySize].
func deriveKEK(pub *ECDHPublicKey, zb, fingerprint []byte) ([]byte, error) {
	newHash, err := kdfHasher(pub.KDFHash)
	if err != nil {
		return nil, err
	}
	h := newHash()
	h.Write([]byte{0, 0, 0, 1})
	h.Write(zb)
	h.Write(kdfParam(pub, fingerprint))
	digest := h.Sum(nil)
	keySize := pub.KDFCiph.KeySize()
	if keySize == 0 {
		return nil, pgperror.New(pgperror.Unsupported, "unsupported ECDH wrapping cipher")
	}
	if len(digest) < keySize {
		return nil, pgperror.New(pgperror.Unsupported, "KDF hash too short for requested key size")
	}
	return digest[:keySize], nil
}

// EncryptECDH performs ephemeral-static ECDH encapsulation and wraps
// data (the checksum-appended session key, per PKESK encodeSessionKey)
// with AES-KW under the derived KEK. Returns the ephemeral public point
// and the wrapped key.
func EncryptECDH(pub *ECDHPublicKey, data, fingerprint []byte) (ephemeral, wrapped []byte, err error) {
	curve, err := stdlibECDHCurve(pub.Curve)
	if err != nil {
		return nil, nil, err
	}
	recipientKey, err := curve.NewPublicKey(pub.Q)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Malformed, "invalid ECDH recipient point", err)
	}
	ephemeralKey, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "ECDH ephemeral generation failed", err)
	}
	zb, err := ephemeralKey.ECDH(recipientKey)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "ECDH failed", err)
	}
	kek, err := deriveKEK(pub, zb, fingerprint)
	if err != nil {
		return nil, nil, err
	}
	wrapped, err = pqc.AESKeyWrap(kek, data)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "AES-KW wrap failed", err)
	}
	return ephemeralKey.PublicKey().Bytes(), wrapped, nil
}

// DecryptECDH mirrors EncryptECDH. On any failure, if randomPayload is
// supplied it is returned instead of an error.
func DecryptECDH(pub *ECDHPublicKey, priv *ECDHPrivateKey, ephemeral, wrapped, fingerprint, randomPayload []byte) ([]byte, error) {
	curve, err := stdlibECDHCurve(pub.Curve)
	if err != nil {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, err
	}
	privKey, err := curve.NewPrivateKey(priv.D)
	if err != nil {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, pgperror.Wrap(pgperror.DecryptionError, "invalid ECDH private scalar", err)
	}
	ephemeralKey, err := curve.NewPublicKey(ephemeral)
	if err != nil {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, pgperror.Wrap(pgperror.DecryptionError, "invalid ECDH ephemeral point", err)
	}
	zb, err := privKey.ECDH(ephemeralKey)
	if err != nil {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, pgperror.Wrap(pgperror.DecryptionError, "ECDH failed", err)
	}
	kek, err := deriveKEK(pub, zb, fingerprint)
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

func (p *ECDHPublicKey) Serialize() []byte {
	oid := []byte(p.Curve)
	out := []byte{byte(len(oid))}
	out = append(out, oid...)
	out = append(out, encoding.EncodeMPI(p.Q)...)
	out = append(out, 3, 1, byte(p.KDFHash), byte(p.KDFCiph)) // kdf-size(3) reserved(1) hash cipher
	return out
}

func ParseECDHPublic(buf []byte, off int) (*ECDHPublicKey, int, error) {
	if off >= len(buf) {
		return nil, off, pgperror.New(pgperror.Malformed, "truncated ECDH public key")
	}
	oidLen := int(buf[off])
	off++
	oidBytes, err := encoding.ReadExact(buf, off, off+oidLen)
	if err != nil {
		return nil, off, err
	}
	off += oidLen
	oid := algorithm.CurveOID(oidBytes)
	if !oid.Known() {
		return nil, off, pgperror.New(pgperror.Unsupported, "unknown curve OID")
	}
	q, off, err := encoding.ReadMPI(buf, off)
	if err != nil {
		return nil, off, err
	}
	kdf, err := encoding.ReadExact(buf, off, off+4)
	if err != nil {
		return nil, off, err
	}
	off += 4
	return &ECDHPublicKey{
		Curve:   oid,
		Q:       append([]byte{}, q...),
		KDFHash: algorithm.Hash(kdf[2]),
		KDFCiph: algorithm.Cipher(kdf[3]),
	}, off, nil
}

func (p *ECDHPrivateKey) Serialize() []byte {
	return encoding.EncodeMPI(p.D)
}

func ParseECDHPrivate(buf []byte, off int, curve algorithm.CurveOID) (*ECDHPrivateKey, int, error) {
	d, off, err := encoding.ReadMPI(buf, off)
	if err != nil {
		return nil, off, err
	}
	padded, err := encoding.LeftPad(d, curve.FieldSizeBytes())
	if err != nil {
		return nil, off, err
	}
	return &ECDHPrivateKey{D: padded}, off, nil
}

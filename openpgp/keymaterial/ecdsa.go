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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"math/big"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/encoding"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// ECPublicKey holds the curve OID and the MPI-encoded point Q of an
// ECDSA public key (spec §3). Legacy ECDH uses its own ECDHPublicKey.
type ECPublicKey struct {
	Curve algorithm.CurveOID
	Q     []byte // uncompressed point: 0x04 || X || Y
}

// ECPrivateKey holds the scalar d, left-padded to the curve field size.
type ECPrivateKey struct {
	D []byte
}

func stdlibCurve(oid algorithm.CurveOID) (elliptic.Curve, error) {
	switch oid {
	case algorithm.CurveNISTP256:
		return elliptic.P256(), nil
	case algorithm.CurveNISTP384:
		return elliptic.P384(), nil
	case algorithm.CurveNISTP521:
		return elliptic.P521(), nil
	default:
		// Brainpool curves are recognized codes (algorithm.CurveOID.Known)
		// but have no crypto/elliptic representation and no Brainpool
		// dependency appears anywhere in the example pack; operations on
		// them report Unsupported rather than silently using the wrong
		// curve.
		return nil, pgperror.New(pgperror.Unsupported, "curve has no available implementation")
	}
}

// GenerateECDSA creates an ECDSA key pair on the given curve.
func GenerateECDSA(oid algorithm.CurveOID) (*ECPublicKey, *ECPrivateKey, error) {
	if !oid.Known() {
		return nil, nil, pgperror.New(pgperror.Unsupported, "unknown curve OID")
	}
	curve, err := stdlibCurve(oid)
	if err != nil {
		return nil, nil, err
	}
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "ECDSA key generation failed", err)
	}
	q := elliptic.Marshal(curve, key.X, key.Y)
	d, err := encoding.LeftPad(key.D.Bytes(), oid.FieldSizeBytes())
	if err != nil {
		return nil, nil, err
	}
	return &ECPublicKey{Curve: oid, Q: q}, &ECPrivateKey{D: d}, nil
}

func (p *ECPublicKey) toStdlib() (*ecdsa.PublicKey, error) {
	curve, err := stdlibCurve(p.Curve)
	if err != nil {
		return nil, err
	}
	x, y := elliptic.Unmarshal(curve, p.Q)
	if x == nil {
		return nil, pgperror.New(pgperror.Malformed, "invalid EC point encoding")
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

func toStdlibECDSAPrivate(pub *ECPublicKey, priv *ECPrivateKey) (*ecdsa.PrivateKey, error) {
	pk, err := pub.toStdlib()
	if err != nil {
		return nil, err
	}
	return &ecdsa.PrivateKey{PublicKey: *pk, D: new(big.Int).SetBytes(priv.D)}, nil
}

// SignECDSA produces an ECDSA signature over digest, serialized as two
// MPI-encoded values r, s (leading zero bytes stripped, as EncodeMPI
// does; VerifyECDSA left-pads them back to the curve size).
func SignECDSA(pub *ECPublicKey, priv *ECPrivateKey, digest []byte) ([]byte, error) {
	key, err := toStdlibECDSAPrivate(pub, priv)
	if err != nil {
		return nil, err
	}
	r, s, err := ecdsa.Sign(rand.Reader, key, digest)
	if err != nil {
		return nil, pgperror.Wrap(pgperror.TransientSigningFail, "ECDSA sign failed", err)
	}
	out := encoding.EncodeMPI(r.Bytes())
	out = append(out, encoding.EncodeMPI(s.Bytes())...)
	return out, nil
}

// VerifyECDSA verifies a signature, left-padding both r and s to the
// curve size before comparison (spec §4.2: "verify must left-pad both r
// and s to the curve size").
func VerifyECDSA(pub *ECPublicKey, digest, sig []byte) bool {
	key, err := pub.toStdlib()
	if err != nil {
		return false
	}
	rRaw, off, err := encoding.ReadMPI(sig, 0)
	if err != nil {
		return false
	}
	sRaw, _, err := encoding.ReadMPI(sig, off)
	if err != nil {
		return false
	}
	fieldSize := pub.Curve.FieldSizeBytes()
	r, err := encoding.LeftPad(rRaw, fieldSize)
	if err != nil {
		return false
	}
	s, err := encoding.LeftPad(sRaw, fieldSize)
	if err != nil {
		return false
	}
	return ecdsa.Verify(key, digest, new(big.Int).SetBytes(r), new(big.Int).SetBytes(s))
}

// ValidateECDSA reports whether Q lies on the declared curve.
func ValidateECDSA(pub *ECPublicKey, priv *ECPrivateKey) bool {
	key, err := pub.toStdlib()
	if err != nil {
		return false
	}
	if !key.Curve.IsOnCurve(key.X, key.Y) {
		return false
	}
	if priv != nil {
		curve, _ := stdlibCurve(pub.Curve)
		x, y := curve.ScalarBaseMult(priv.D)
		if x.Cmp(key.X) != 0 || y.Cmp(key.Y) != 0 {
			return false
		}
	}
	return true
}

func (p *ECPublicKey) Serialize() []byte {
	oid := []byte(p.Curve)
	out := []byte{byte(len(oid))}
	out = append(out, oid...)
	out = append(out, encoding.EncodeMPI(p.Q)...)
	return out
}

func ParseECPublic(buf []byte, off int) (*ECPublicKey, int, error) {
	if off >= len(buf) {
		return nil, off, pgperror.New(pgperror.Malformed, "truncated EC public key")
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
	return &ECPublicKey{Curve: oid, Q: append([]byte{}, q...)}, off, nil
}

func (p *ECPrivateKey) Serialize() []byte {
	return encoding.EncodeMPI(p.D)
}

func ParseECPrivate(buf []byte, off int, curve algorithm.CurveOID) (*ECPrivateKey, int, error) {
	d, off, err := encoding.ReadMPI(buf, off)
	if err != nil {
		return nil, off, err
	}
	padded, err := encoding.LeftPad(d, curve.FieldSizeBytes())
	if err != nil {
		return nil, off, err
	}
	return &ECPrivateKey{D: padded}, off, nil
}

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
	"crypto/dsa"
	"crypto/rand"
	"math/big"

	"github.com/sage-x-project/sage-pgp/openpgp/encoding"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// DSAPublicKey holds the DSA group parameters and public value (spec §3).
// crypto/dsa has no Go 1.24 replacement that is not deprecated; DSA is
// itself deprecated by RFC 9580 (retained only for interoperability with
// legacy keys), so depending on the removed-from-new-guidance stdlib
// package is the closest available fit — no third-party DSA library
// appears in the example pack.
type DSAPublicKey struct {
	P, Q, G, Y []byte
}

// DSAPrivateKey holds the DSA secret exponent x.
type DSAPrivateKey struct {
	X []byte
}

func (p *DSAPublicKey) toStdlib() *dsa.PublicKey {
	return &dsa.PublicKey{
		Parameters: dsa.Parameters{
			P: new(big.Int).SetBytes(p.P),
			Q: new(big.Int).SetBytes(p.Q),
			G: new(big.Int).SetBytes(p.G),
		},
		Y: new(big.Int).SetBytes(p.Y),
	}
}

func toStdlibDSAPrivate(pub *DSAPublicKey, priv *DSAPrivateKey) *dsa.PrivateKey {
	return &dsa.PrivateKey{
		PublicKey: *pub.toStdlib(),
		X:         new(big.Int).SetBytes(priv.X),
	}
}

// GenerateDSA creates a new DSA key pair at the given parameter size
// class.
func GenerateDSA(sizes dsa.ParameterSizes) (*DSAPublicKey, *DSAPrivateKey, error) {
	var params dsa.Parameters
	if err := dsa.GenerateParameters(&params, rand.Reader, sizes); err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "DSA parameter generation failed", err)
	}
	var priv dsa.PrivateKey
	priv.Parameters = params
	if err := dsa.GenerateKey(&priv, rand.Reader); err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "DSA key generation failed", err)
	}
	pub := &DSAPublicKey{P: params.P.Bytes(), Q: params.Q.Bytes(), G: params.G.Bytes(), Y: priv.Y.Bytes()}
	pr := &DSAPrivateKey{X: priv.X.Bytes()}
	return pub, pr, nil
}

// SignDSA produces a DSA signature (r, s), serialized as two
// concatenated MPIs.
func SignDSA(pub *DSAPublicKey, priv *DSAPrivateKey, digest []byte) ([]byte, error) {
	key := toStdlibDSAPrivate(pub, priv)
	r, s, err := dsa.Sign(rand.Reader, key, digest)
	if err != nil {
		return nil, pgperror.Wrap(pgperror.TransientSigningFail, "DSA sign failed", err)
	}
	out := encoding.EncodeMPI(r.Bytes())
	out = append(out, encoding.EncodeMPI(s.Bytes())...)
	return out, nil
}

// VerifyDSA verifies a DSA signature encoded as two concatenated MPIs.
func VerifyDSA(pub *DSAPublicKey, digest, sig []byte) bool {
	r, off, err := encoding.ReadMPI(sig, 0)
	if err != nil {
		return false
	}
	s, _, err := encoding.ReadMPI(sig, off)
	if err != nil {
		return false
	}
	key := pub.toStdlib()
	return dsa.Verify(key, digest, new(big.Int).SetBytes(r), new(big.Int).SetBytes(s))
}

// ValidateDSA performs the group-parameter sanity checks described by
// the reference implementation's validateDSAParameters: g,y>1, g<p,
// p>q, q bit length >= 150, q | (p-1), q probably prime, g^q mod p == 1,
// g^x mod p == y.
func ValidateDSA(pub *DSAPublicKey, priv *DSAPrivateKey) bool {
	p := new(big.Int).SetBytes(pub.P)
	q := new(big.Int).SetBytes(pub.Q)
	g := new(big.Int).SetBytes(pub.G)
	y := new(big.Int).SetBytes(pub.Y)
	one := big.NewInt(1)

	if g.Cmp(one) <= 0 || y.Cmp(one) <= 0 {
		return false
	}
	if g.Cmp(p) >= 0 {
		return false
	}
	if p.Cmp(q) <= 0 {
		return false
	}
	if q.BitLen() < 150 {
		return false
	}
	pMinus1 := new(big.Int).Sub(p, one)
	mod := new(big.Int).Mod(pMinus1, q)
	if mod.Sign() != 0 {
		return false
	}
	if !q.ProbablyPrime(32) {
		return false
	}
	gq := new(big.Int).Exp(g, q, p)
	if gq.Cmp(one) != 0 {
		return false
	}
	if priv != nil {
		x := new(big.Int).SetBytes(priv.X)
		gx := new(big.Int).Exp(g, x, p)
		if gx.Cmp(y) != 0 {
			return false
		}
	}
	return true
}

func (p *DSAPublicKey) Serialize() []byte {
	out := encoding.EncodeMPI(p.P)
	out = append(out, encoding.EncodeMPI(p.Q)...)
	out = append(out, encoding.EncodeMPI(p.G)...)
	out = append(out, encoding.EncodeMPI(p.Y)...)
	return out
}

func ParseDSAPublic(buf []byte, off int) (*DSAPublicKey, int, error) {
	vals := make([][]byte, 4)
	var err error
	for i := range vals {
		vals[i], off, err = encoding.ReadMPI(buf, off)
		if err != nil {
			return nil, off, err
		}
	}
	return &DSAPublicKey{
		P: append([]byte{}, vals[0]...),
		Q: append([]byte{}, vals[1]...),
		G: append([]byte{}, vals[2]...),
		Y: append([]byte{}, vals[3]...),
	}, off, nil
}

func (p *DSAPrivateKey) Serialize() []byte {
	return encoding.EncodeMPI(p.X)
}

func ParseDSAPrivate(buf []byte, off int) (*DSAPrivateKey, int, error) {
	x, off, err := encoding.ReadMPI(buf, off)
	if err != nil {
		return nil, off, err
	}
	return &DSAPrivateKey{X: append([]byte{}, x...)}, off, nil
}

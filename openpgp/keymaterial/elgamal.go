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
	"math/big"

	"github.com/sage-x-project/sage-pgp/openpgp/encoding"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// ElGamalPublicKey holds p, g, y (spec §3). ElGamal has no Go stdlib or
// circl representation (it was never standardized into crypto/); this
// adapter implements textbook ElGamal encryption directly over math/big,
// the same approach the reference decoder takes for parameter validation.
type ElGamalPublicKey struct {
	P, G, Y []byte
}

// ElGamalPrivateKey holds the secret exponent x.
type ElGamalPrivateKey struct {
	X []byte
}

// GenerateElGamal creates a key pair given a safe prime p and generator
// g (ElGamal parameter generation from scratch is out of scope here;
// callers typically reuse a vetted group).
func GenerateElGamal(p, g *big.Int) (*ElGamalPublicKey, *ElGamalPrivateKey, error) {
	x, err := rand.Int(rand.Reader, new(big.Int).Sub(p, big.NewInt(2)))
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "ElGamal key generation failed", err)
	}
	x.Add(x, big.NewInt(1))
	y := new(big.Int).Exp(g, x, p)
	pub := &ElGamalPublicKey{P: p.Bytes(), G: g.Bytes(), Y: y.Bytes()}
	priv := &ElGamalPrivateKey{X: x.Bytes()}
	return pub, priv, nil
}

// EncryptElGamal encrypts data (the session key) as (c1, c2) =
// (g^k mod p, data * y^k mod p), both MPI-encoded.
func EncryptElGamal(pub *ElGamalPublicKey, data []byte) ([]byte, error) {
	p := new(big.Int).SetBytes(pub.P)
	g := new(big.Int).SetBytes(pub.G)
	y := new(big.Int).SetBytes(pub.Y)
	m := new(big.Int).SetBytes(data)
	if m.Cmp(p) >= 0 {
		return nil, pgperror.New(pgperror.Malformed, "session key too large for ElGamal modulus")
	}
	k, err := rand.Int(rand.Reader, new(big.Int).Sub(p, big.NewInt(2)))
	if err != nil {
		return nil, pgperror.Wrap(pgperror.Unsupported, "ElGamal ephemeral generation failed", err)
	}
	k.Add(k, big.NewInt(1))
	c1 := new(big.Int).Exp(g, k, p)
	s := new(big.Int).Exp(y, k, p)
	c2 := new(big.Int).Mod(new(big.Int).Mul(m, s), p)
	out := encoding.EncodeMPI(c1.Bytes())
	out = append(out, encoding.EncodeMPI(c2.Bytes())...)
	return out, nil
}

// DecryptElGamal decrypts (c1, c2) back to data. When randomPayload is
// supplied, decryption failures (malformed ciphertext, non-invertible
// s) return randomPayload instead of erroring, matching the RSA
// adapter's oracle-defense contract.
func DecryptElGamal(pub *ElGamalPublicKey, priv *ElGamalPrivateKey, ct, randomPayload []byte) ([]byte, error) {
	c1, off, err := encoding.ReadMPI(ct, 0)
	if err != nil {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, err
	}
	c2, _, err := encoding.ReadMPI(ct, off)
	if err != nil {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, err
	}
	p := new(big.Int).SetBytes(pub.P)
	x := new(big.Int).SetBytes(priv.X)
	s := new(big.Int).Exp(new(big.Int).SetBytes(c1), x, p)
	sInv := new(big.Int).ModInverse(s, p)
	if sInv == nil {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, pgperror.New(pgperror.DecryptionError, "elgamal decryption failed")
	}
	m := new(big.Int).Mod(new(big.Int).Mul(new(big.Int).SetBytes(c2), sInv), p)
	return m.Bytes(), nil
}

// ValidateElGamal mirrors the reference implementation's
// validateElGamalParameters: g,y>1, g<p, p bit length >= 1024, g^(p-1)
// mod p == 1, no small-subgroup generator, g^x mod p == y.
func ValidateElGamal(pub *ElGamalPublicKey, priv *ElGamalPrivateKey) bool {
	p := new(big.Int).SetBytes(pub.P)
	g := new(big.Int).SetBytes(pub.G)
	y := new(big.Int).SetBytes(pub.Y)
	one := big.NewInt(1)

	if g.Cmp(one) <= 0 || y.Cmp(one) <= 0 {
		return false
	}
	if g.Cmp(p) >= 0 {
		return false
	}
	if p.BitLen() < 1024 {
		return false
	}
	pMinus1 := new(big.Int).Sub(p, one)
	if new(big.Int).Exp(g, pMinus1, p).Cmp(one) != 0 {
		return false
	}
	threshold := big.NewInt(2 << 17)
	for i := big.NewInt(2); i.Cmp(threshold) < 0; i.Add(i, one) {
		if new(big.Int).Mod(pMinus1, i).Sign() == 0 {
			order := new(big.Int).Div(pMinus1, i)
			if new(big.Int).Exp(g, order, p).Cmp(one) == 0 {
				return false
			}
		}
	}
	if priv != nil {
		x := new(big.Int).SetBytes(priv.X)
		if new(big.Int).Exp(g, x, p).Cmp(y) != 0 {
			return false
		}
	}
	return true
}

func (p *ElGamalPublicKey) Serialize() []byte {
	out := encoding.EncodeMPI(p.P)
	out = append(out, encoding.EncodeMPI(p.G)...)
	out = append(out, encoding.EncodeMPI(p.Y)...)
	return out
}

func ParseElGamalPublic(buf []byte, off int) (*ElGamalPublicKey, int, error) {
	vals := make([][]byte, 3)
	var err error
	for i := range vals {
		vals[i], off, err = encoding.ReadMPI(buf, off)
		if err != nil {
			return nil, off, err
		}
	}
	return &ElGamalPublicKey{
		P: append([]byte{}, vals[0]...),
		G: append([]byte{}, vals[1]...),
		Y: append([]byte{}, vals[2]...),
	}, off, nil
}

func (p *ElGamalPrivateKey) Serialize() []byte {
	return encoding.EncodeMPI(p.X)
}

func ParseElGamalPrivate(buf []byte, off int) (*ElGamalPrivateKey, int, error) {
	x, off, err := encoding.ReadMPI(buf, off)
	if err != nil {
		return nil, off, err
	}
	return &ElGamalPrivateKey{X: append([]byte{}, x...)}, off, nil
}

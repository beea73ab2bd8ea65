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
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"math/big"

	"github.com/sage-x-project/sage-pgp/openpgp/encoding"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// RSAPublicKey holds the RSA public parameters n, e as raw big-endian
// bytes (spec §3).
type RSAPublicKey struct {
	N []byte
	E []byte
}

// RSAPrivateKey holds the RSA private parameters d, p, q, u, where u is
// the multiplicative inverse of p modulo q (RFC 9580 §5.6.1 field order).
type RSAPrivateKey struct {
	D []byte
	P []byte
	Q []byte
	U []byte
}

// GenerateRSA creates a new RSA key pair with the given modulus bit size,
// grounded on the teacher's crypto/keys/rs256.go generator shape.
func GenerateRSA(bits int) (*RSAPublicKey, *RSAPrivateKey, error) {
	if bits < 2048 {
		return nil, nil, pgperror.New(pgperror.Unsupported, "RSA modulus too small")
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, pgperror.Wrap(pgperror.Unsupported, "RSA key generation failed", err)
	}
	key.Precompute()
	pub := &RSAPublicKey{
		N: key.N.Bytes(),
		E: big.NewInt(int64(key.E)).Bytes(),
	}
	// RFC 9580 §5.6.1 requires p<q and u = p^-1 mod q, the opposite
	// convention from stdlib's CRT Qinv (q^-1 mod p); compute it
	// explicitly rather than round-tripping Qinv under the wrong name.
	p, q := key.Primes[0], key.Primes[1]
	if p.Cmp(q) > 0 {
		p, q = q, p
	}
	u := new(big.Int).ModInverse(p, q)
	priv := &RSAPrivateKey{
		D: key.D.Bytes(),
		P: p.Bytes(),
		Q: q.Bytes(),
		U: u.Bytes(),
	}
	return pub, priv, nil
}

func (p *RSAPublicKey) toStdlib() *rsa.PublicKey {
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(p.N),
		E: int(new(big.Int).SetBytes(p.E).Int64()),
	}
}

func toStdlibRSAPrivate(pub *RSAPublicKey, priv *RSAPrivateKey) (*rsa.PrivateKey, error) {
	p := new(big.Int).SetBytes(priv.P)
	q := new(big.Int).SetBytes(priv.Q)
	key := &rsa.PrivateKey{
		PublicKey: *pub.toStdlib(),
		D:         new(big.Int).SetBytes(priv.D),
		Primes:    []*big.Int{p, q},
	}
	if err := key.Validate(); err != nil {
		return nil, pgperror.Wrap(pgperror.KeyIsInvalid, "RSA private key invalid", err)
	}
	key.Precompute()
	return key, nil
}

// SignRSA produces an EMSA-PKCS1-v1_5 signature over an already-computed
// digest hashed with hashAlgo.
func SignRSA(pub *RSAPublicKey, priv *RSAPrivateKey, hashAlgo crypto.Hash, digest []byte) ([]byte, error) {
	key, err := toStdlibRSAPrivate(pub, priv)
	if err != nil {
		return nil, err
	}
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, hashAlgo, digest)
	if err != nil {
		return nil, pgperror.Wrap(pgperror.TransientSigningFail, "RSA sign failed", err)
	}
	return sig, nil
}

// VerifyRSA verifies an EMSA-PKCS1-v1_5 signature, left-padding the
// signature to len(n) before the modular exponentiation happens inside
// rsa.VerifyPKCS1v15 (which itself performs the left-padded comparison
// internally; the explicit left-pad below mirrors the spec's contract
// for adapters that manually implement the exponentiation).
func VerifyRSA(pub *RSAPublicKey, hashAlgo crypto.Hash, digest, sig []byte) bool {
	key := pub.toStdlib()
	padded, err := encoding.LeftPad(sig, (key.N.BitLen()+7)/8)
	if err != nil {
		return false
	}
	return rsa.VerifyPKCS1v15(key, hashAlgo, digest, padded) == nil
}

// EncryptRSA encrypts data (a session key) with PKCS#1 v1.5 padding.
func EncryptRSA(pub *RSAPublicKey, data []byte) ([]byte, error) {
	key := pub.toStdlib()
	ct, err := rsa.EncryptPKCS1v15(rand.Reader, key, data)
	if err != nil {
		return nil, pgperror.Wrap(pgperror.Unsupported, "RSA encrypt failed", err)
	}
	return ct, nil
}

// DecryptRSA decrypts a PKCS#1 v1.5 ciphertext. Per spec §4.2, on any
// failure it returns randomPayload unchanged instead of an error, to
// defend against the Bleichenbacher decryption oracle: the caller cannot
// distinguish a padding failure from success by timing or by error
// presence. When randomPayload is nil, genuine decryption failures are
// surfaced as DecryptionError.
func DecryptRSA(pub *RSAPublicKey, priv *RSAPrivateKey, ct, randomPayload []byte) ([]byte, error) {
	key, err := toStdlibRSAPrivate(pub, priv)
	if err != nil {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, err
	}
	if randomPayload != nil {
		// DecryptPKCS1v15SessionKey leaves out unchanged on a padding or
		// length failure without branching on which one happened; its
		// error covers only public conditions (key and ciphertext size).
		out := append([]byte{}, randomPayload...)
		if err := rsa.DecryptPKCS1v15SessionKey(rand.Reader, key, ct, out); err != nil {
			return randomPayload, nil
		}
		return out, nil
	}
	pt, decErr := rsa.DecryptPKCS1v15(rand.Reader, key, ct)
	if decErr != nil {
		return nil, pgperror.Wrap(pgperror.DecryptionError, "RSA decryption failed", decErr)
	}
	return pt, nil
}

// ValidateRSA reports whether the public and private halves are
// consistent (d*e ≡ 1 mod lcm(p-1,q-1), etc., delegated to rsa.Validate).
func ValidateRSA(pub *RSAPublicKey, priv *RSAPrivateKey) bool {
	_, err := toStdlibRSAPrivate(pub, priv)
	return err == nil
}

// Serialize/Parse for RSA parameter records (MPI-encoded per spec §3).

func (p *RSAPublicKey) Serialize() []byte {
	return append(encoding.EncodeMPI(p.N), encoding.EncodeMPI(p.E)...)
}

func ParseRSAPublic(buf []byte, off int) (*RSAPublicKey, int, error) {
	n, off, err := encoding.ReadMPI(buf, off)
	if err != nil {
		return nil, off, err
	}
	e, off, err := encoding.ReadMPI(buf, off)
	if err != nil {
		return nil, off, err
	}
	return &RSAPublicKey{N: append([]byte{}, n...), E: append([]byte{}, e...)}, off, nil
}

func (p *RSAPrivateKey) Serialize() []byte {
	out := encoding.EncodeMPI(p.D)
	out = append(out, encoding.EncodeMPI(p.P)...)
	out = append(out, encoding.EncodeMPI(p.Q)...)
	out = append(out, encoding.EncodeMPI(p.U)...)
	return out
}

func ParseRSAPrivate(buf []byte, off int) (*RSAPrivateKey, int, error) {
	d, off, err := encoding.ReadMPI(buf, off)
	if err != nil {
		return nil, off, err
	}
	p, off, err := encoding.ReadMPI(buf, off)
	if err != nil {
		return nil, off, err
	}
	q, off, err := encoding.ReadMPI(buf, off)
	if err != nil {
		return nil, off, err
	}
	u, off, err := encoding.ReadMPI(buf, off)
	if err != nil {
		return nil, off, err
	}
	return &RSAPrivateKey{
		D: append([]byte{}, d...),
		P: append([]byte{}, p...),
		Q: append([]byte{}, q...),
		U: append([]byte{}, u...),
	}, off, nil
}


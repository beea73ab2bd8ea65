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

package dispatch

import (
	"time"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/keymaterial"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// WrappedSessionKey is the ephemeral-key-plus-AES-KW-wrapped-output pair
// shared by ECDH, X25519 and X448 public-key encryption.
type WrappedSessionKey struct {
	Ephemeral []byte
	Wrapped   []byte
}

// MLKEMSessionKey is the three-part composite KEM ciphertext.
type MLKEMSessionKey struct {
	ECCEphemeral    []byte
	MLKEMCiphertext []byte
	Wrapped         []byte
}

// EncryptedSessionKey is the tagged-sum-type encrypted form of a session
// key (or other PKESK payload), produced by Encrypt and consumed by
// Decrypt and the PKESK packet codec (C6).
type EncryptedSessionKey struct {
	Algo algorithm.PublicKey

	RSA     []byte
	ElGamal []byte
	ECDH    *WrappedSessionKey
	X25519  *WrappedSessionKey
	X448    *WrappedSessionKey
	MLKEM   *MLKEMSessionKey
}

// Encrypt wraps data (typically a checksum-appended session key, see
// the PKESK packet's encodeSessionKey) to pub. Its caller, the PKESK
// packet codec, is solely responsible for recording CryptoErrors: the
// decryption side's randomPayload fallback makes "did this fail" itself
// secret-dependent, and this symmetric point records only operation
// count and latency to avoid a mismatched instrumentation split between
// the two directions.
func Encrypt(pub *keymaterial.PublicParams, data, fingerprint []byte) (*EncryptedSessionKey, error) {
	start := time.Now()
	enc, err := encrypt(pub, data, fingerprint)
	observe("encrypt", pub.Algo.String(), start)
	return enc, err
}

func encrypt(pub *keymaterial.PublicParams, data, fingerprint []byte) (*EncryptedSessionKey, error) {
	algo := pub.Algo
	if !algo.CanEncrypt() {
		return nil, pgperror.New(pgperror.Unsupported, "algorithm does not support encryption")
	}
	switch algo {
	case algorithm.RSAEncryptSign, algorithm.RSAEncryptOnly:
		ct, err := keymaterial.EncryptRSA(pub.RSA, data)
		if err != nil {
			return nil, err
		}
		return &EncryptedSessionKey{Algo: algo, RSA: ct}, nil

	case algorithm.ElGamal:
		ct, err := keymaterial.EncryptElGamal(pub.ElGamal, data)
		if err != nil {
			return nil, err
		}
		return &EncryptedSessionKey{Algo: algo, ElGamal: ct}, nil

	case algorithm.ECDH:
		ephemeral, wrapped, err := keymaterial.EncryptECDH(pub.ECDH, data, fingerprint)
		if err != nil {
			return nil, err
		}
		return &EncryptedSessionKey{Algo: algo, ECDH: &WrappedSessionKey{Ephemeral: ephemeral, Wrapped: wrapped}}, nil

	case algorithm.X25519:
		ephemeral, wrapped, err := keymaterial.EncryptX25519(pub.X25519, data)
		if err != nil {
			return nil, err
		}
		return &EncryptedSessionKey{Algo: algo, X25519: &WrappedSessionKey{Ephemeral: ephemeral, Wrapped: wrapped}}, nil

	case algorithm.X448:
		ephemeral, wrapped, err := keymaterial.EncryptX448(pub.X448, data)
		if err != nil {
			return nil, err
		}
		return &EncryptedSessionKey{Algo: algo, X448: &WrappedSessionKey{Ephemeral: ephemeral, Wrapped: wrapped}}, nil

	case algorithm.MLKEM768X25519:
		eccEph, ct, wrapped, err := pqcEncryptMLKEM(pub.MLKEM, data)
		if err != nil {
			return nil, err
		}
		return &EncryptedSessionKey{Algo: algo, MLKEM: &MLKEMSessionKey{ECCEphemeral: eccEph, MLKEMCiphertext: ct, Wrapped: wrapped}}, nil

	default:
		return nil, pgperror.New(pgperror.Unsupported, "algorithm does not support encryption")
	}
}

// Decrypt unwraps enc under priv. On any per-algorithm decryption
// failure, if randomPayload is non-nil it is returned in place of an
// error — the PKESK decryption-oracle defense (spec §4.4): a caller
// constructing a session key from a tampered PKESK cannot distinguish
// "wrong key" from "malformed packet" by error presence or timing.
func Decrypt(pub *keymaterial.PublicParams, priv *keymaterial.PrivateParams, enc *EncryptedSessionKey, fingerprint, randomPayload []byte) ([]byte, error) {
	start := time.Now()
	data, err := decrypt(pub, priv, enc, fingerprint, randomPayload)
	observe("decrypt", pub.Algo.String(), start)
	return data, err
}

func decrypt(pub *keymaterial.PublicParams, priv *keymaterial.PrivateParams, enc *EncryptedSessionKey, fingerprint, randomPayload []byte) ([]byte, error) {
	if pub.Algo != priv.Algo || pub.Algo != enc.Algo {
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, pgperror.New(pgperror.Malformed, "algorithm mismatch between key and encrypted session key")
	}
	switch enc.Algo {
	case algorithm.RSAEncryptSign, algorithm.RSAEncryptOnly:
		return keymaterial.DecryptRSA(pub.RSA, priv.RSA, enc.RSA, randomPayload)

	case algorithm.ElGamal:
		return keymaterial.DecryptElGamal(pub.ElGamal, priv.ElGamal, enc.ElGamal, randomPayload)

	case algorithm.ECDH:
		return keymaterial.DecryptECDH(pub.ECDH, priv.ECDH, enc.ECDH.Ephemeral, enc.ECDH.Wrapped, fingerprint, randomPayload)

	case algorithm.X25519:
		return keymaterial.DecryptX25519(pub.X25519, priv.X25519, enc.X25519.Ephemeral, enc.X25519.Wrapped, randomPayload)

	case algorithm.X448:
		return keymaterial.DecryptX448(pub.X448, priv.X448, enc.X448.Ephemeral, enc.X448.Wrapped, randomPayload)

	case algorithm.MLKEM768X25519:
		return pqcDecryptMLKEM(pub.MLKEM, priv.MLKEM, enc.MLKEM.ECCEphemeral, enc.MLKEM.MLKEMCiphertext, enc.MLKEM.Wrapped, randomPayload)

	default:
		if randomPayload != nil {
			return randomPayload, nil
		}
		return nil, pgperror.New(pgperror.Unsupported, "algorithm does not support encryption")
	}
}

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

// Package packet implements the two wire packet types this module
// produces and consumes directly: the Public-Key Encrypted Session Key
// packet (tag 1, C6) and the Secret-Key packet (tags 5/7, C7). Both sit
// one layer above openpgp/dispatch, turning its algorithm-keyed
// parameter records into the exact byte layouts RFC 9580 and
// draft-ietf-openpgp-pqc specify.
package packet

import (
	"crypto/subtle"

	"github.com/sage-x-project/sage-pgp/internal/metrics"
	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/dispatch"
	"github.com/sage-x-project/sage-pgp/openpgp/encoding"
	"github.com/sage-x-project/sage-pgp/openpgp/keymaterial"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// selectUint8 returns x if v == 1 and y if v == 0, without branching on v.
func selectUint8(v, x, y byte) byte {
	mask := -v
	return y ^ (mask & (x ^ y))
}

// selectUint8Array fills out with x where v == 1 and y where v == 0,
// without branching on v. x, y and out must have equal length.
func selectUint8Array(v byte, out, x, y []byte) {
	for i := range out {
		out[i] = selectUint8(v, x[i], y[i])
	}
}

// SessionKey is the decrypted (or about-to-be-encrypted) payload a PKESK
// carries: the symmetric session key plus, for v3 packets and the
// classical algorithms, the cipher it is meant to be used with.
type SessionKey struct {
	Cipher algorithm.Cipher
	Key    []byte
}

// PKESK is a parsed Public-Key Encrypted Session Key packet (tag 1).
// Exactly one of Version 3 or Version 6's addressing fields is
// meaningful: v3 always carries an 8-byte key ID; v6 carries a
// variable-length key-version-plus-fingerprint field that may be empty
// (anonymous / wildcard recipient).
type PKESK struct {
	Version int

	KeyID [8]byte // v3

	KeyVersion  int    // v6; 0 when Fingerprint is empty (anonymous recipient)
	Fingerprint []byte // v6; nil for the anonymous recipient

	Algo algorithm.PublicKey

	// CipherAlgo is the cleartext symmetric-cipher octet carried by v3
	// packets for the "native" algorithms (X25519, X448, ML-KEM
	// composite) in the ECDHXSymmetricKey structure. It is the zero
	// value and unused for v6 packets and for the classical algorithms,
	// which instead fold the cipher octet into the encrypted session
	// key data itself (see encodeSessionKey).
	CipherAlgo algorithm.Cipher

	Enc *dispatch.EncryptedSessionKey
}

// usesChecksummedEncoding reports whether algo's session-key data is
// wrapped as `[cipherAlgo octet, v3 only] || sessionKey || checksum(2)`
// (the classical RSA/ElGamal/ECDH encoding) as opposed to the native
// encoding, where no checksum is appended because the AES-KW wrap
// already authenticates the payload and the cipher octet, when present,
// travels outside the encrypted data.
func usesChecksummedEncoding(algo algorithm.PublicKey) bool {
	switch algo {
	case algorithm.RSAEncryptSign, algorithm.RSAEncryptOnly, algorithm.ElGamal, algorithm.ECDH:
		return true
	default:
		return false
	}
}

// isNativeAlgo reports whether algo uses the native (non-MPI,
// non-checksummed) encoding: X25519, X448 and the ML-KEM composite.
func isNativeAlgo(algo algorithm.PublicKey) bool {
	switch algo {
	case algorithm.X25519, algorithm.X448, algorithm.MLKEM768X25519:
		return true
	default:
		return false
	}
}

// encodeSessionKey builds the cleartext that gets handed to
// dispatch.Encrypt: for the classical algorithms this is the legacy
// `[cipherAlgo] || sk || checksum` structure; for the native algorithms
// it is the session key alone.
func encodeSessionKey(version int, algo algorithm.PublicKey, sk SessionKey) []byte {
	if !usesChecksummedEncoding(algo) {
		return sk.Key
	}
	var out []byte
	if version == 3 {
		out = append(out, byte(sk.Cipher))
	}
	out = append(out, sk.Key...)
	out = append(out, encoding.WriteChecksum(sk.Key)...)
	return out
}

// decodeSessionKey reverses encodeSessionKey. On any structural or
// checksum failure it returns randomSessionKey unchanged when supplied
// (the decryption-oracle defense, spec §4.4/§202/scenario S6): a caller
// must not be able to distinguish "wrong algorithm key" from "tampered
// ciphertext" by error presence. The checksum comparison and the choice
// between the decoded and random key is made with selectUint8Array, not
// an if on the comparison result, per spec §5's requirement that PKESK
// checksum verification and session-key selection not branch on secret
// data.
func decodeSessionKey(version int, algo algorithm.PublicKey, data []byte, randomSessionKey *SessionKey) (*SessionKey, error) {
	if !usesChecksummedEncoding(algo) {
		return &SessionKey{Key: append([]byte{}, data...)}, nil
	}

	off := 0
	var cipher algorithm.Cipher
	if version == 3 {
		if len(data) < 1 {
			if randomSessionKey != nil {
				return randomSessionKey, nil
			}
			return nil, pgperror.New(pgperror.DecryptionError, "truncated session key data")
		}
		cipher = algorithm.Cipher(data[0])
		off = 1
	}
	if len(data)-off < 2 {
		if randomSessionKey != nil {
			return randomSessionKey, nil
		}
		return nil, pgperror.New(pgperror.DecryptionError, "truncated session key data")
	}
	sk := data[off : len(data)-2]
	checksum := data[len(data)-2:]
	valid := byte(subtle.ConstantTimeCompare(encoding.WriteChecksum(sk), checksum))

	if randomSessionKey == nil {
		if valid != 1 {
			return nil, pgperror.New(pgperror.DecryptionError, "session key checksum mismatch")
		}
		return &SessionKey{Cipher: cipher, Key: append([]byte{}, sk...)}, nil
	}

	// The decoded key is kept only when its checksum, its length and, for
	// v3, its cipher octet all match randomSessionKey; otherwise the
	// random key and cipher are selected, without branching on the result.
	valid &= byte(subtle.ConstantTimeEq(int32(len(sk)), int32(len(randomSessionKey.Key))))
	if version == 3 {
		valid &= byte(subtle.ConstantTimeByteEq(byte(cipher), byte(randomSessionKey.Cipher)))
	}
	candidate := make([]byte, len(randomSessionKey.Key))
	copy(candidate, sk)
	out := make([]byte, len(randomSessionKey.Key))
	selectUint8Array(valid, out, candidate, randomSessionKey.Key)
	cipher = algorithm.Cipher(selectUint8(valid, byte(cipher), byte(randomSessionKey.Cipher)))
	return &SessionKey{Cipher: cipher, Key: out}, nil
}

// EncryptV3 builds a version-3 PKESK addressed to keyID. keyID may be
// all-zero, the classic "wildcard" value for a hidden recipient.
// fingerprint is the recipient key's fingerprint; only the ECDH
// adapter's KDF consults it, so it may be nil for every other
// algorithm.
func EncryptV3(pub *keymaterial.PublicParams, keyID [8]byte, fingerprint []byte, sk SessionKey) (*PKESK, error) {
	enc, err := dispatch.Encrypt(pub, encodeSessionKey(3, pub.Algo, sk), fingerprint)
	metrics.PacketOperations.WithLabelValues("pkesk_encrypt", pub.Algo.String()).Inc()
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("pkesk_encrypt", string(pgperror.KindOf(err))).Inc()
		return nil, err
	}
	p := &PKESK{Version: 3, KeyID: keyID, Algo: pub.Algo, Enc: enc}
	if isNativeAlgo(pub.Algo) {
		p.CipherAlgo = sk.Cipher
	}
	return p, nil
}

// EncryptV6 builds a version-6 PKESK. fingerprint is the recipient's
// full key fingerprint (20 bytes for a v4 key, 32 for v6); pass
// keyVersion 0 and a nil fingerprint for the anonymous recipient.
func EncryptV6(pub *keymaterial.PublicParams, keyVersion int, fingerprint []byte, sk SessionKey) (*PKESK, error) {
	enc, err := dispatch.Encrypt(pub, encodeSessionKey(6, pub.Algo, sk), fingerprint)
	metrics.PacketOperations.WithLabelValues("pkesk_encrypt", pub.Algo.String()).Inc()
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("pkesk_encrypt", string(pgperror.KindOf(err))).Inc()
		return nil, err
	}
	return &PKESK{Version: 6, KeyVersion: keyVersion, Fingerprint: fingerprint, Algo: pub.Algo, Enc: enc}, nil
}

// Decrypt recovers the session key a PKESK carries. fingerprint is the
// recipient key's fingerprint, required by the ECDH adapter's KDF
// (ignored by every other algorithm). randomSessionKey, when non-nil,
// is returned in place of any error — callers constructing the
// constant-time fallback path described in spec §5 and exercised by
// scenario S6 pass a pseudorandom SessionKey of the same shape they
// would expect from a genuine PKESK. When randomSessionKey is supplied,
// every adapter's decrypt contract guarantees dispatch.Decrypt and
// decodeSessionKey never return an error, so no branch here is taken on
// the genuine decryption outcome; the one error return this method has
// left is for the no-fallback-supplied case, which is not a decryption
// oracle (there is nothing to hide the result from).
func (p *PKESK) Decrypt(pub *keymaterial.PublicParams, priv *keymaterial.PrivateParams, fingerprint []byte, randomSessionKey *SessionKey) (*SessionKey, error) {
	metrics.PacketOperations.WithLabelValues("pkesk_decrypt", p.Algo.String()).Inc()

	if randomSessionKey == nil {
		data, err := dispatch.Decrypt(pub, priv, p.Enc, fingerprint, nil)
		if err != nil {
			metrics.CryptoErrors.WithLabelValues("pkesk_decrypt", string(pgperror.KindOf(err))).Inc()
			return nil, err
		}
		sk, err := decodeSessionKey(p.Version, p.Algo, data, nil)
		if err != nil {
			metrics.CryptoErrors.WithLabelValues("pkesk_decrypt", string(pgperror.KindOf(err))).Inc()
			return nil, err
		}
		if p.Version == 3 && isNativeAlgo(p.Algo) {
			sk.Cipher = p.CipherAlgo
		}
		return sk, nil
	}

	randomRaw := encodeSessionKey(p.Version, p.Algo, *randomSessionKey)
	data, _ := dispatch.Decrypt(pub, priv, p.Enc, fingerprint, randomRaw)
	sk, _ := decodeSessionKey(p.Version, p.Algo, data, randomSessionKey)
	if p.Version == 3 && isNativeAlgo(p.Algo) {
		sk.Cipher = p.CipherAlgo
	}
	return sk, nil
}

// Serialize writes the packet body (everything after the packet header
// RFC 9580 §4 would add; this module does not implement the outer
// packet-framing layer, see spec Non-goals on message assembly).
func (p *PKESK) Serialize() ([]byte, error) {
	var out []byte
	switch p.Version {
	case 3:
		out = append(out, 3)
		out = append(out, p.KeyID[:]...)
		out = append(out, byte(p.Algo))
	case 6:
		out = append(out, 6)
		if len(p.Fingerprint) == 0 {
			out = append(out, 0)
		} else {
			out = append(out, byte(1+len(p.Fingerprint)))
			out = append(out, byte(p.KeyVersion))
			out = append(out, p.Fingerprint...)
		}
		out = append(out, byte(p.Algo))
	default:
		return nil, pgperror.New(pgperror.Unsupported, "unknown PKESK version")
	}
	body, err := serializeEncryptedParams(p.Version, p.Algo, p.CipherAlgo, p.Enc)
	if err != nil {
		return nil, err
	}
	return append(out, body...), nil
}

// ParsePKESK parses a full PKESK packet body (as produced by Serialize).
func ParsePKESK(buf []byte) (*PKESK, error) {
	if len(buf) < 1 {
		return nil, pgperror.New(pgperror.Malformed, "empty PKESK packet")
	}
	version := int(buf[0])
	p := &PKESK{Version: version}
	var off int
	switch version {
	case 3:
		if len(buf) < 10 {
			return nil, pgperror.New(pgperror.Malformed, "truncated v3 PKESK header")
		}
		copy(p.KeyID[:], buf[1:9])
		p.Algo = algorithm.PublicKey(buf[9])
		off = 10
	case 6:
		if len(buf) < 2 {
			return nil, pgperror.New(pgperror.Malformed, "truncated v6 PKESK header")
		}
		vfLen := int(buf[1])
		off = 2
		if vfLen > 0 {
			if len(buf) < off+vfLen {
				return nil, pgperror.New(pgperror.Malformed, "truncated v6 PKESK recipient field")
			}
			p.KeyVersion = int(buf[off])
			p.Fingerprint = append([]byte{}, buf[off+1:off+vfLen]...)
			off += vfLen
		}
		if len(buf) < off+1 {
			return nil, pgperror.New(pgperror.Malformed, "truncated v6 PKESK algorithm octet")
		}
		p.Algo = algorithm.PublicKey(buf[off])
		off++
	default:
		return nil, pgperror.New(pgperror.Unsupported, "unknown PKESK version")
	}

	enc, cipherAlgo, err := parseEncryptedParams(version, p.Algo, buf[off:])
	if err != nil {
		return nil, err
	}
	p.Enc = enc
	p.CipherAlgo = cipherAlgo
	return p, nil
}

// serializeEncryptedParams writes the <encrypted params> field
// following the PKESK header, in RFC 9580 / draft-pqc wire order per
// algorithm family.
func serializeEncryptedParams(version int, algo algorithm.PublicKey, cipherAlgo algorithm.Cipher, enc *dispatch.EncryptedSessionKey) ([]byte, error) {
	switch algo {
	case algorithm.RSAEncryptSign, algorithm.RSAEncryptOnly:
		return encoding.EncodeMPI(enc.RSA), nil

	case algorithm.ElGamal:
		// EncryptElGamal already returns both values MPI-encoded.
		return append([]byte{}, enc.ElGamal...), nil

	case algorithm.ECDH:
		out := encoding.EncodeMPI(enc.ECDH.Ephemeral)
		out = append(out, byte(len(enc.ECDH.Wrapped)))
		out = append(out, enc.ECDH.Wrapped...)
		return out, nil

	case algorithm.X25519:
		return serializeNativeWrapped(version, enc.X25519.Ephemeral, cipherAlgo, enc.X25519.Wrapped), nil

	case algorithm.X448:
		return serializeNativeWrapped(version, enc.X448.Ephemeral, cipherAlgo, enc.X448.Wrapped), nil

	case algorithm.MLKEM768X25519:
		eph := append(append([]byte{}, enc.MLKEM.ECCEphemeral...), enc.MLKEM.MLKEMCiphertext...)
		return serializeNativeWrapped(version, eph, cipherAlgo, enc.MLKEM.Wrapped), nil

	default:
		return nil, pgperror.New(pgperror.Unsupported, "algorithm does not support PKESK encryption")
	}
}

// serializeNativeWrapped assembles the "native" wire shape shared by
// X25519, X448 and the ML-KEM composite: a fixed-size ephemeral value,
// an optional v3-only cleartext cipher octet (the ECDHXSymmetricKey
// field, spec §4.4), and the AES-KW-wrapped body running to the end of
// the packet.
func serializeNativeWrapped(version int, ephemeral []byte, cipherAlgo algorithm.Cipher, wrapped []byte) []byte {
	out := append([]byte{}, ephemeral...)
	if version == 3 {
		out = append(out, byte(cipherAlgo))
	}
	return append(out, wrapped...)
}

// parseEncryptedParams reads the <encrypted params> field for algo out
// of body (everything after the PKESK header). It returns the
// cleartext cipher octet for v3 native algorithms, zero otherwise.
func parseEncryptedParams(version int, algo algorithm.PublicKey, body []byte) (*dispatch.EncryptedSessionKey, algorithm.Cipher, error) {
	switch algo {
	case algorithm.RSAEncryptSign, algorithm.RSAEncryptOnly:
		ct, _, err := encoding.ReadMPI(body, 0)
		if err != nil {
			return nil, 0, err
		}
		return &dispatch.EncryptedSessionKey{Algo: algo, RSA: append([]byte{}, ct...)}, 0, nil

	case algorithm.ElGamal:
		return &dispatch.EncryptedSessionKey{Algo: algo, ElGamal: append([]byte{}, body...)}, 0, nil

	case algorithm.ECDH:
		eph, off, err := encoding.ReadMPI(body, 0)
		if err != nil {
			return nil, 0, err
		}
		if off >= len(body) {
			return nil, 0, pgperror.New(pgperror.Malformed, "truncated ECDH wrapped-key length")
		}
		wrapLen := int(body[off])
		off++
		wrapped, err := encoding.ReadExact(body, off, off+wrapLen)
		if err != nil {
			return nil, 0, err
		}
		return &dispatch.EncryptedSessionKey{Algo: algo, ECDH: &dispatch.WrappedSessionKey{
			Ephemeral: append([]byte{}, eph...),
			Wrapped:   append([]byte{}, wrapped...),
		}}, 0, nil

	case algorithm.X25519:
		eph, cipherAlgo, wrapped, err := parseNativeWrapped(version, body, algorithm.X25519PublicSize)
		if err != nil {
			return nil, 0, err
		}
		return &dispatch.EncryptedSessionKey{Algo: algo, X25519: &dispatch.WrappedSessionKey{Ephemeral: eph, Wrapped: wrapped}}, cipherAlgo, nil

	case algorithm.X448:
		eph, cipherAlgo, wrapped, err := parseNativeWrapped(version, body, algorithm.X448PublicSize)
		if err != nil {
			return nil, 0, err
		}
		return &dispatch.EncryptedSessionKey{Algo: algo, X448: &dispatch.WrappedSessionKey{Ephemeral: eph, Wrapped: wrapped}}, cipherAlgo, nil

	case algorithm.MLKEM768X25519:
		eph, cipherAlgo, wrapped, err := parseNativeWrapped(version, body, algorithm.X25519PublicSize+algorithm.MLKEM768CiphertextSize)
		if err != nil {
			return nil, 0, err
		}
		return &dispatch.EncryptedSessionKey{Algo: algo, MLKEM: &dispatch.MLKEMSessionKey{
			ECCEphemeral:    eph[:algorithm.X25519PublicSize],
			MLKEMCiphertext: eph[algorithm.X25519PublicSize:],
			Wrapped:         wrapped,
		}}, cipherAlgo, nil

	default:
		return nil, 0, pgperror.New(pgperror.Unsupported, "algorithm does not support PKESK decryption")
	}
}

// parseNativeWrapped is the inverse of serializeNativeWrapped.
func parseNativeWrapped(version int, body []byte, ephemeralLen int) (ephemeral []byte, cipherAlgo algorithm.Cipher, wrapped []byte, err error) {
	off := 0
	eph, err := encoding.ReadExact(body, 0, ephemeralLen)
	if err != nil {
		return nil, 0, nil, err
	}
	off = ephemeralLen
	if version == 3 {
		if off >= len(body) {
			return nil, 0, nil, pgperror.New(pgperror.Malformed, "truncated v3 cleartext cipher octet")
		}
		cipherAlgo = algorithm.Cipher(body[off])
		off++
	}
	return append([]byte{}, eph...), cipherAlgo, append([]byte{}, body[off:]...), nil
}

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

package packet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/sage-x-project/sage-pgp/config"
	"github.com/sage-x-project/sage-pgp/internal/metrics"
	"github.com/sage-x-project/sage-pgp/openpgp/aead"
	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/dispatch"
	"github.com/sage-x-project/sage-pgp/openpgp/encoding"
	"github.com/sage-x-project/sage-pgp/openpgp/keymaterial"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
	"github.com/sage-x-project/sage-pgp/openpgp/s2k"
)

// s2kUsage values (spec §4.5). Anything else in [1,252] is the ancient
// GnuPG format where the octet itself is a symmetric-cipher code and
// there is no S2K specifier at all; it is recognized only to skip past
// it on parse, and always refused on decrypt.
const (
	usagePlaintext    = 0
	usageModernAEAD   = 253
	usageCFBSHA1Hash  = 254
	usageCFBChecksum  = 255
)

// SecretKey is a parsed Secret-Key or Secret-Subkey packet (tags 5/7).
type SecretKey struct {
	Version int
	Tag     algorithm.PacketTag // TagSecretKey or TagSecretSubkey

	// PublicKeyPrefix is the serialized body of the matching Public-Key
	// packet, used as AEAD associated data (spec §4.5: "associated
	// data = packetTag || publicKeyPrefix"). This module does not
	// implement the Public-Key packet itself (out of scope per spec
	// Non-goals on message assembly); callers that parse or build one
	// pass its body straight through.
	PublicKeyPrefix []byte

	Pub  *keymaterial.PublicParams
	Priv *keymaterial.PrivateParams // nil while encrypted, dummy, or unparseable

	S2KUsage   uint8
	S2K        *s2k.Params // nil for the legacy raw-cipher-code usage octet
	CipherAlgo algorithm.Cipher
	AEADAlgo   algorithm.AEAD
	IV         []byte

	EncryptedKeyMaterial []byte
	IsEncrypted          bool

	// UsedModernAEAD records whether the most recent successful decrypt
	// (or the most recent Encrypt) used S2K+HKDF+AEAD binding public and
	// private material together, which makes a separate validate() call
	// redundant (spec §4.5 validate()).
	UsedModernAEAD bool

	// UnparseableKeyMaterial holds the raw secret-section bytes when
	// S2K/cipher parsing itself failed (spec §4.6). Such a key cannot
	// decrypt but remains usable for public-key operations; write()
	// re-emits these bytes verbatim.
	UnparseableKeyMaterial []byte
}

// isLegacyAEAD reports whether sk's AEAD-protected secret section uses
// empty associated data (legacy) instead of packetTag||publicKeyPrefix
// (modern), per spec §4.5's legacy-AEAD detection rule.
func isLegacyAEAD(version int, cfg *config.Config) bool {
	if version == 5 {
		return true
	}
	return cfg != nil && cfg.ParseAEADEncryptedV4KeysAsLegacy
}

func associatedData(legacy bool, tag algorithm.PacketTag, publicKeyPrefix []byte) []byte {
	if legacy {
		return nil
	}
	out := []byte{byte(tag)}
	return append(out, publicKeyPrefix...)
}

// produceEncryptionKey implements the produceEncryptionKey algorithm
// (spec §4.5): derive a key from passphrase via the S2K specifier, then
// for modern (non-legacy) AEAD protection stretch it again with
// HKDF-SHA-256 bound to the packet tag, key version, cipher and AEAD
// mode, so the same passphrase yields different keys for different
// secret-key packets.
func produceEncryptionKey(sk *SecretKey, passphrase []byte, legacy bool) ([]byte, error) {
	if sk.S2K.Type == s2k.TypeArgon2 && sk.S2KUsage != usageModernAEAD {
		return nil, pgperror.New(pgperror.Unsupported, "Argon2 S2K requires AEAD protection")
	}
	derived, err := sk.S2K.ProduceKey(passphrase, sk.CipherAlgo.KeySize(), sk.Version == 6)
	if err != nil {
		return nil, err
	}
	if sk.S2KUsage != usageModernAEAD || sk.Version == 5 || legacy {
		return derived, nil
	}
	info := append([]byte{byte(sk.Tag)}, byte(sk.Version), byte(sk.CipherAlgo), byte(sk.AEADAlgo))
	r := hkdf.New(sha256.New, derived, nil, info)
	out := make([]byte, sk.CipherAlgo.KeySize())
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, pgperror.Wrap(pgperror.Unsupported, "HKDF expansion failed", err)
	}
	return out, nil
}

func cfbEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, pgperror.Wrap(pgperror.Unsupported, "AES cipher setup failed", err)
	}
	out := make([]byte, len(plaintext))
	cipher.NewCFBEncrypter(block, iv).XORKeyStream(out, plaintext)
	return out, nil
}

func cfbDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, pgperror.Wrap(pgperror.Unsupported, "AES cipher setup failed", err)
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCFBDecrypter(block, iv).XORKeyStream(out, ciphertext)
	return out, nil
}

// Encrypt protects sk.Priv's cleartext parameters under passphrase,
// populating S2KUsage/S2K/CipherAlgo/AEADAlgo/IV/EncryptedKeyMaterial.
// s2kParams supplies the S2K shape to use (its salt fields are
// overwritten with fresh random values here); cipherAlgo selects the
// wrapping cipher (and, for the AEAD path, the cipher AES-KW-style
// modes build on).
func (sk *SecretKey) Encrypt(passphrase []byte, s2kParams *s2k.Params, cipherAlgo algorithm.Cipher, cfg *config.Config) (err error) {
	defer func() {
		metrics.PacketOperations.WithLabelValues("secretkey_encrypt", sk.Pub.Algo.String()).Inc()
		if err != nil {
			metrics.CryptoErrors.WithLabelValues("secretkey_encrypt", string(pgperror.KindOf(err))).Inc()
		}
	}()
	if cfg == nil {
		cfg = config.Default()
	}
	cleartext, err := dispatch.SerializePrivateKeyParams(sk.Priv)
	if err != nil {
		return err
	}

	sk.S2K = s2kParams
	sk.CipherAlgo = cipherAlgo
	if err := randomizeSalt(sk.S2K); err != nil {
		return err
	}

	if cfg.AEADProtect {
		sk.S2KUsage = usageModernAEAD
		sk.AEADAlgo = cfg.PreferredAEADAlgorithm
		legacy := isLegacyAEAD(sk.Version, cfg)
		ivLen := sk.AEADAlgo.IVLength()
		if legacy {
			ivLen = cipherAlgo.BlockSize()
		}
		iv := make([]byte, ivLen)
		if _, err := rand.Read(iv); err != nil {
			return pgperror.Wrap(pgperror.Unsupported, "IV generation failed", err)
		}
		key, err := produceEncryptionKey(sk, passphrase, legacy)
		if err != nil {
			return err
		}
		aad := associatedData(legacy, sk.Tag, sk.PublicKeyPrefix)
		ct, err := aead.Seal(sk.AEADAlgo, key, iv, cleartext, aad)
		if err != nil {
			return pgperror.Wrap(pgperror.Unsupported, "AEAD seal failed", err)
		}
		sk.IV = iv
		sk.EncryptedKeyMaterial = ct
		sk.UsedModernAEAD = !legacy
	} else {
		sk.S2KUsage = usageCFBSHA1Hash
		iv := make([]byte, cipherAlgo.BlockSize())
		if _, err := rand.Read(iv); err != nil {
			return pgperror.Wrap(pgperror.Unsupported, "IV generation failed", err)
		}
		key, err := produceEncryptionKey(sk, passphrase, true)
		if err != nil {
			return err
		}
		digest := sha1.Sum(cleartext)
		plain := append(append([]byte{}, cleartext...), digest[:]...)
		ct, err := cfbEncrypt(key, iv, plain)
		if err != nil {
			return err
		}
		sk.IV = iv
		sk.EncryptedKeyMaterial = ct
		sk.UsedModernAEAD = false
	}
	sk.IsEncrypted = true
	return nil
}

func randomizeSalt(p *s2k.Params) error {
	switch p.Type {
	case s2k.TypeSalted, s2k.TypeIterated:
		if _, err := rand.Read(p.Salt[:]); err != nil {
			return pgperror.Wrap(pgperror.Unsupported, "S2K salt generation failed", err)
		}
	case s2k.TypeArgon2:
		if _, err := rand.Read(p.Argon2Salt[:]); err != nil {
			return pgperror.Wrap(pgperror.Unsupported, "S2K salt generation failed", err)
		}
	}
	return nil
}

// Decrypt recovers sk.Priv from EncryptedKeyMaterial under passphrase.
// A passphrase mismatch (AEAD tag failure or SHA-1 hash mismatch)
// surfaces as a single opaque IncorrectPassphrase error that does not
// distinguish the two encodings, per the error-handling design.
func (sk *SecretKey) Decrypt(passphrase []byte, cfg *config.Config) (err error) {
	defer func() {
		metrics.PacketOperations.WithLabelValues("secretkey_decrypt", sk.Pub.Algo.String()).Inc()
		if err != nil {
			metrics.CryptoErrors.WithLabelValues("secretkey_decrypt", string(pgperror.KindOf(err))).Inc()
		}
	}()
	if sk.S2K != nil && sk.S2K.Dummy() {
		return nil
	}
	if sk.S2KUsage == usagePlaintext {
		return nil
	}
	if sk.S2K == nil {
		return pgperror.New(pgperror.Unsupported, "legacy raw-cipher-code secret-key encoding rejected")
	}
	if sk.S2KUsage == usageCFBChecksum {
		return pgperror.New(pgperror.Unsupported, "legacy CFB+checksum secret-key encoding rejected")
	}
	if cfg == nil {
		cfg = config.Default()
	}

	var cleartext []byte
	switch sk.S2KUsage {
	case usageModernAEAD:
		legacy := isLegacyAEAD(sk.Version, cfg)
		aad := associatedData(legacy, sk.Tag, sk.PublicKeyPrefix)
		key, err := produceEncryptionKey(sk, passphrase, legacy)
		if err != nil {
			return err
		}
		pt, err := aead.Open(sk.AEADAlgo, key, sk.IV, sk.EncryptedKeyMaterial, aad)
		if err != nil {
			return pgperror.Wrap(pgperror.IncorrectPassphrase, "incorrect passphrase", err)
		}
		cleartext = pt
		sk.UsedModernAEAD = !legacy

	case usageCFBSHA1Hash:
		key, err := produceEncryptionKey(sk, passphrase, true)
		if err != nil {
			return err
		}
		plain, err := cfbDecrypt(key, sk.IV, sk.EncryptedKeyMaterial)
		if err != nil {
			return err
		}
		if len(plain) < sha1.Size {
			return pgperror.New(pgperror.ErrorReadingMPIs, "secret-key material shorter than its integrity hash")
		}
		split := len(plain) - sha1.Size
		got := plain[split:]
		want := sha1.Sum(plain[:split])
		if subtle.ConstantTimeCompare(got, want[:]) != 1 {
			return pgperror.New(pgperror.IncorrectPassphrase, "incorrect passphrase")
		}
		cleartext = plain[:split]
		sk.UsedModernAEAD = false

	default:
		return pgperror.New(pgperror.Unsupported, "legacy raw-cipher-code secret-key encoding rejected")
	}

	priv, off, err := dispatch.ParsePrivateKeyParams(sk.Pub, cleartext, 0)
	if err != nil {
		return pgperror.New(pgperror.ErrorReadingMPIs, "failed to parse decrypted private key material")
	}
	if off != len(cleartext) {
		return pgperror.New(pgperror.ErrorReadingMPIs, "trailing bytes after decrypted private key material")
	}
	sk.Priv = priv
	sk.IsEncrypted = false
	return nil
}

// Validate checks internal consistency of sk.Pub/sk.Priv via the
// dispatcher, skipping the check entirely for dummy keys (no private
// material to check) and for keys protected with modern AEAD (the
// AEAD tag already binds public and private parameters together, spec
// §4.5 validate()).
func (sk *SecretKey) Validate(d *dispatch.Dispatcher) error {
	if sk.S2K != nil && sk.S2K.Dummy() {
		return nil
	}
	if sk.UsedModernAEAD {
		return nil
	}
	if !d.Validate(sk.Pub, sk.Priv) {
		return pgperror.New(pgperror.KeyIsInvalid, "secret key failed validation")
	}
	return nil
}

// GenerateSecretKey creates a fresh key pair via d and wraps it in an
// unencrypted SecretKey, enforcing the version-gated algorithm
// restrictions spec §4.5 generate() lists: v6 keys must not use
// curve25519Legacy ECDH or EdDSA-legacy; keys below v6 must not use the
// ML-DSA-65+Ed25519 composite.
func GenerateSecretKey(d *dispatch.Dispatcher, version int, tag algorithm.PacketTag, algo algorithm.PublicKey, opts dispatch.GenerateOptions) (*SecretKey, error) {
	if version == 6 {
		if algo == algorithm.ECDH && opts.Curve == algorithm.CurveCurve25519Legacy {
			return nil, pgperror.New(pgperror.Unsupported, "v6 keys must not use curve25519Legacy ECDH")
		}
		if algo == algorithm.EdDSALegacy {
			return nil, pgperror.New(pgperror.Unsupported, "v6 keys must not use EdDSA-legacy")
		}
	} else if algo == algorithm.MLDSA65Ed25519 {
		return nil, pgperror.New(pgperror.Unsupported, "ML-DSA-65+Ed25519 composite requires a v6 key")
	}
	pub, priv, err := d.Generate(algo, opts, version == 6)
	if err != nil {
		return nil, err
	}
	return &SecretKey{Version: version, Tag: tag, Pub: pub, Priv: priv}, nil
}

// MakeDummy converts sk into a GNU-dummy stub: the private parameters
// are zeroed and discarded, and the secret section is replaced with the
// zero-length GNU-Dummy S2K encoding (no IV, no key material) used by
// smart-card-backed keys whose private half never leaves the card.
func (sk *SecretKey) MakeDummy() {
	sk.ClearPrivateParams()
	sk.S2KUsage = usageCFBSHA1Hash
	sk.S2K = &s2k.Params{Type: s2k.TypeGNUDummy}
	sk.CipherAlgo = 0
	sk.AEADAlgo = 0
	sk.IV = nil
	sk.EncryptedKeyMaterial = nil
	sk.IsEncrypted = false
	sk.UsedModernAEAD = false
}

// ClearPrivateParams zeroes and discards sk.Priv, per the secret-handling
// policy (spec §5): every private-parameter buffer is wiped before the
// record is released.
func (sk *SecretKey) ClearPrivateParams() {
	sk.Priv.Zero()
	sk.Priv = nil
}

// Serialize writes the packet body following the public prefix (version,
// creation time, algorithm and public parameters, all out of scope
// here; see PublicKeyPrefix).
func (sk *SecretKey) Serialize() ([]byte, error) {
	if len(sk.UnparseableKeyMaterial) > 0 {
		return append([]byte{sk.S2KUsage}, sk.UnparseableKeyMaterial...), nil
	}

	var optionalFields []byte
	if sk.S2KUsage == usageModernAEAD || sk.S2KUsage == usageCFBSHA1Hash ||
		sk.S2KUsage == usageCFBChecksum {
		optionalFields = append(optionalFields, byte(sk.CipherAlgo))
		if sk.S2KUsage == usageModernAEAD {
			optionalFields = append(optionalFields, byte(sk.AEADAlgo))
		}
		s2kBytes := sk.S2K.Serialize()
		if sk.Version == 6 {
			optionalFields = append(optionalFields, byte(len(s2kBytes)))
		}
		optionalFields = append(optionalFields, s2kBytes...)
	} else if sk.S2KUsage != usagePlaintext {
		// Ancient raw-cipher-code format: the usage octet itself is the
		// cipher algorithm; no S2K specifier follows.
	}

	var out []byte
	out = append(out, sk.S2KUsage)
	if sk.Version == 5 {
		out = append(out, byte(len(optionalFields)))
	} else if sk.Version == 6 && sk.S2KUsage != usagePlaintext {
		out = append(out, byte(len(optionalFields)))
	}
	out = append(out, optionalFields...)

	if sk.S2KUsage != usagePlaintext && !(sk.S2K != nil && sk.S2K.Dummy()) {
		out = append(out, sk.IV...)
	}

	var keyMaterial []byte
	if sk.S2KUsage == usagePlaintext {
		cleartext, err := dispatch.SerializePrivateKeyParams(sk.Priv)
		if err != nil {
			return nil, err
		}
		keyMaterial = cleartext
		if sk.Version == 4 {
			keyMaterial = append(keyMaterial, encoding.WriteChecksum(cleartext)...)
		}
	} else if sk.S2K != nil && sk.S2K.Dummy() {
		keyMaterial = nil
	} else {
		keyMaterial = sk.EncryptedKeyMaterial
	}

	if sk.Version == 5 {
		lenField := make([]byte, 4)
		n := len(keyMaterial)
		lenField[0] = byte(n >> 24)
		lenField[1] = byte(n >> 16)
		lenField[2] = byte(n >> 8)
		lenField[3] = byte(n)
		out = append(out, lenField...)
	}
	out = append(out, keyMaterial...)
	return out, nil
}

// ParseSecretKey parses a Secret-Key/Secret-Subkey packet body. pub is
// the already-parsed public half (the caller owns the Public-Key packet
// codec). cfg governs the v4-legacy-AEAD IV-length convention (see
// isLegacyAEAD); a nil cfg uses config.Default(). Per spec §4.6, if the
// S2K or cipher octet is unrecognized the raw secret section is
// preserved verbatim and no error is returned: the resulting SecretKey
// has IsEncrypted set and Priv left nil, usable only for public-key
// operations.
func ParseSecretKey(buf []byte, version int, tag algorithm.PacketTag, pub *keymaterial.PublicParams, publicKeyPrefix []byte, cfg *config.Config) (*SecretKey, error) {
	if len(buf) < 1 {
		return nil, pgperror.New(pgperror.Malformed, "empty secret-key packet")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	sk := &SecretKey{Version: version, Tag: tag, Pub: pub, PublicKeyPrefix: publicKeyPrefix}
	sk.S2KUsage = buf[0]
	off := 1

	if sk.S2KUsage == usagePlaintext {
		return parsePlaintextTail(sk, buf, off)
	}

	rest := buf[off:]
	parsed, err := parseProtectedFields(sk, rest, cfg)
	if err != nil {
		sk.UnparseableKeyMaterial = append([]byte{}, rest...)
		sk.IsEncrypted = true
		sk.Priv = nil
		return sk, nil
	}
	_ = parsed
	sk.IsEncrypted = true
	return sk, nil
}

func parsePlaintextTail(sk *SecretKey, buf []byte, off int) (*SecretKey, error) {
	body := buf[off:]
	if sk.Version == 5 {
		length, err := encoding.ReadExact(body, 0, 4)
		if err != nil {
			return nil, err
		}
		n := int(length[0])<<24 | int(length[1])<<16 | int(length[2])<<8 | int(length[3])
		body, err = encoding.ReadExact(body, 4, 4+n)
		if err != nil {
			return nil, err
		}
	}
	cleartext := body
	if sk.Version == 4 {
		if len(body) < 2 {
			return nil, pgperror.New(pgperror.Malformed, "truncated legacy secret-key checksum")
		}
		cleartext = body[:len(body)-2]
	}
	priv, n, err := dispatch.ParsePrivateKeyParams(sk.Pub, cleartext, 0)
	if err != nil {
		return nil, err
	}
	if n != len(cleartext) {
		return nil, pgperror.New(pgperror.Malformed, "trailing bytes after private key material")
	}
	sk.Priv = priv
	sk.IsEncrypted = false
	return sk, nil
}

// parseProtectedFields reads every field between the s2kUsage octet and
// the key-material bytes: the optional-fields length (v5, or v6 with
// usage != 0), the cipher/AEAD/S2K specifier, and the IV.
func parseProtectedFields(sk *SecretKey, body []byte, cfg *config.Config) ([]byte, error) {
	off := 0
	optLen := -1
	if sk.Version == 5 || sk.Version == 6 {
		if off >= len(body) {
			return nil, pgperror.New(pgperror.Malformed, "truncated optional-fields length")
		}
		optLen = int(body[off])
		off++
	}

	switch sk.S2KUsage {
	case usageModernAEAD, usageCFBSHA1Hash, usageCFBChecksum:
		if off >= len(body) {
			return nil, pgperror.New(pgperror.Malformed, "truncated cipher octet")
		}
		sk.CipherAlgo = algorithm.Cipher(body[off])
		off++
		if sk.S2KUsage == usageModernAEAD {
			if off >= len(body) {
				return nil, pgperror.New(pgperror.Malformed, "truncated AEAD octet")
			}
			sk.AEADAlgo = algorithm.AEAD(body[off])
			off++
		}
		if sk.Version == 6 {
			if off >= len(body) {
				return nil, pgperror.New(pgperror.Malformed, "truncated S2K length")
			}
			s2kLen := int(body[off])
			off++
			s2kBuf, err := encoding.ReadExact(body, off, off+s2kLen)
			if err != nil {
				return nil, err
			}
			p, n, err := s2k.Parse(s2kBuf, 0)
			if err != nil {
				return nil, err
			}
			if n != len(s2kBuf) {
				return nil, pgperror.New(pgperror.Malformed, "trailing bytes in S2K specifier")
			}
			sk.S2K = p
			off += s2kLen
		} else {
			p, n, err := s2k.Parse(body, off)
			if err != nil {
				return nil, err
			}
			sk.S2K = p
			off = n
		}
	default:
		sk.CipherAlgo = algorithm.Cipher(sk.S2KUsage)
		sk.S2K = nil
	}
	if optLen >= 0 && off-1 != optLen {
		return nil, pgperror.New(pgperror.Malformed, "optional-fields length does not match its content")
	}

	if sk.S2K == nil || !sk.S2K.Dummy() {
		ivLen := sk.CipherAlgo.BlockSize()
		if sk.S2KUsage == usageModernAEAD {
			if !isLegacyAEAD(sk.Version, cfg) {
				ivLen = sk.AEADAlgo.IVLength()
			}
		}
		iv, err := encoding.ReadExact(body, off, off+ivLen)
		if err != nil {
			return nil, err
		}
		sk.IV = append([]byte{}, iv...)
		off += ivLen
	}

	var keyMaterial []byte
	if sk.Version == 5 {
		length, err := encoding.ReadExact(body, off, off+4)
		if err != nil {
			return nil, err
		}
		off += 4
		n := int(length[0])<<24 | int(length[1])<<16 | int(length[2])<<8 | int(length[3])
		keyMaterial, err = encoding.ReadExact(body, off, off+n)
		if err != nil {
			return nil, err
		}
		off += n
	} else {
		keyMaterial = body[off:]
		off = len(body)
	}
	sk.EncryptedKeyMaterial = append([]byte{}, keyMaterial...)
	return body[:off], nil
}

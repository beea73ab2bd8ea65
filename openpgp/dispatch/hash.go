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
	gocrypto "crypto"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/pgperror"
)

// cryptoHash maps the registry's Hash code to the stdlib crypto.Hash
// value RSA's PKCS#1 v1.5 routines expect.
func cryptoHash(h algorithm.Hash) (gocrypto.Hash, error) {
	switch h {
	case algorithm.HashSHA1:
		return gocrypto.SHA1, nil
	case algorithm.HashRIPEMD160:
		return gocrypto.RIPEMD160, nil
	case algorithm.HashSHA224:
		return gocrypto.SHA224, nil
	case algorithm.HashSHA256:
		return gocrypto.SHA256, nil
	case algorithm.HashSHA384:
		return gocrypto.SHA384, nil
	case algorithm.HashSHA512:
		return gocrypto.SHA512, nil
	case algorithm.HashSHA3_256:
		return gocrypto.SHA3_256, nil
	case algorithm.HashSHA3_512:
		return gocrypto.SHA3_512, nil
	default:
		return 0, pgperror.New(pgperror.Unsupported, "unsupported hash algorithm")
	}
}

// checkHashStrength enforces the minimum acceptable digest length for
// algo (spec §4.3 "hash-strength gate"): MD5 and SHA-1 are rejected for
// every signing algorithm, and each EdDSA family has its own floor via
// algorithm.PreferredHash.
func checkHashStrength(algo algorithm.PublicKey, hashAlgo algorithm.Hash, digest []byte) error {
	if hashAlgo == algorithm.HashMD5 || hashAlgo == algorithm.HashSHA1 {
		return pgperror.New(pgperror.HashTooWeak, "MD5/SHA-1 rejected for signing")
	}
	if len(digest) != hashAlgo.ByteLength() {
		return pgperror.New(pgperror.Malformed, "digest length does not match declared hash algorithm")
	}
	if hashAlgo.ByteLength() < algorithm.PreferredHash(algo).ByteLength() {
		return pgperror.New(pgperror.HashTooWeak, "digest too short for algorithm's minimum hash strength")
	}
	return nil
}

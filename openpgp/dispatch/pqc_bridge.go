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
	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/keymaterial"
	"github.com/sage-x-project/sage-pgp/openpgp/pqc"
)

func pqcSignMLDSAEd25519(priv *keymaterial.PrivateParams, hashAlgo algorithm.Hash, digest []byte) (eccSig, mldsaSig []byte, err error) {
	return pqc.SignMLDSAEd25519(priv.MLDSA, hashAlgo, digest)
}

// pqcVerifyMLDSAEd25519 splits the wire signature at the fixed Ed25519
// signature size and verifies both components (logical AND).
func pqcVerifyMLDSAEd25519(pub *keymaterial.PublicParams, hashAlgo algorithm.Hash, digest, sig []byte) bool {
	if len(sig) != algorithm.Ed25519SigSize+algorithm.MLDSA65SigSize {
		return false
	}
	eccSig := sig[:algorithm.Ed25519SigSize]
	mldsaSig := sig[algorithm.Ed25519SigSize:]
	return pqc.VerifyMLDSAEd25519(pub.MLDSA, hashAlgo, digest, eccSig, mldsaSig)
}

func pqcSignSLHDSA(priv *keymaterial.PrivateParams, hashAlgo algorithm.Hash, digest []byte) ([]byte, error) {
	return pqc.SignSLHDSA(priv.SLHDSA, hashAlgo, digest)
}

func pqcVerifySLHDSA(pub *keymaterial.PublicParams, hashAlgo algorithm.Hash, digest, sig []byte) bool {
	return pqc.VerifySLHDSA(pub.SLHDSA, hashAlgo, digest, sig)
}

// pqcEncryptMLKEM and pqcDecryptMLKEM wrap the pqc package's composite
// KEM so crypt.go doesn't need to know its algorithm-ID constant.
func pqcEncryptMLKEM(pub *pqc.MLKEMX25519PublicKey, data []byte) (eccEphemeral, mlkemCiphertext, wrapped []byte, err error) {
	return pqc.EncryptMLKEMX25519(byte(algorithm.MLKEM768X25519), pub, data)
}

func pqcDecryptMLKEM(pub *pqc.MLKEMX25519PublicKey, priv *pqc.MLKEMX25519PrivateKey, eccEphemeral, mlkemCiphertext, wrapped, randomPayload []byte) ([]byte, error) {
	return pqc.DecryptMLKEMX25519(byte(algorithm.MLKEM768X25519), pub, priv, eccEphemeral, mlkemCiphertext, wrapped, randomPayload)
}

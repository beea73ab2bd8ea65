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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/sage-pgp/config"
	"github.com/sage-x-project/sage-pgp/internal/cryptoinit"
	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/dispatch"
	"github.com/sage-x-project/sage-pgp/openpgp/packet"
)

var (
	genAlgo    string
	genVersion int
	genSubkey  bool
	genOutput  string
	genRSABits int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key pair",
	Long: `Generate a new Secret-Key (or Secret-Subkey) packet.

Supported algorithms:
  rsa, ecdh, ecdsa, eddsa-legacy, x25519, x448, ed25519, ed448,
  mlkem768-x25519, mldsa65-ed25519, slhdsa-shake128s`,
	Example: `  pgpctl generate --algo ed25519 --version 6 --output signing.key
  pgpctl generate --algo mlkem768-x25519 --version 6 --subkey --output kem.key`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&genAlgo, "algo", "a", "ed25519", "Public-key algorithm")
	generateCmd.Flags().IntVarP(&genVersion, "version", "v", 6, "Key packet version (4 or 6)")
	generateCmd.Flags().BoolVarP(&genSubkey, "subkey", "s", false, "Generate a Secret-Subkey instead of a primary Secret-Key")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "key.json", "Output key file path")
	generateCmd.Flags().IntVar(&genRSABits, "rsa-bits", 3072, "RSA modulus size in bits (rsa only)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	algo, err := algoByName(genAlgo)
	if err != nil {
		return err
	}

	opts := dispatch.GenerateOptions{RSABits: genRSABits}
	if algo == algorithm.ECDH {
		opts.Curve = algorithm.CurveNISTP256
		opts.ECDHKDFHash = algorithm.HashSHA256
		opts.ECDHKDFCiph = algorithm.CipherAES128
	}
	if algo == algorithm.ECDSA {
		opts.Curve = algorithm.CurveNISTP256
	}

	d := cryptoinit.Wire(config.Default())
	tag := algorithm.TagSecretKey
	if genSubkey {
		tag = algorithm.TagSecretSubkey
	}

	// packet.GenerateSecretKey is the one place version-gated algorithm
	// restrictions (v6 forbids curve25519Legacy/EdDSA-legacy, v<6
	// forbids the ML-DSA-65+Ed25519 composite) are enforced.
	sk, err := packet.GenerateSecretKey(d, genVersion, tag, algo, opts)
	if err != nil {
		return fmt.Errorf("key generation failed: %w", err)
	}

	if err := writeKeyFile(genOutput, sk); err != nil {
		return err
	}
	fmt.Printf("Generated %s key (version %d) -> %s\n", genAlgo, genVersion, genOutput)
	return nil
}

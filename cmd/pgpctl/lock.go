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
	"os"

	"golang.org/x/term"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/sage-pgp/config"
	"github.com/sage-x-project/sage-pgp/internal/cryptoinit"
	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
	"github.com/sage-x-project/sage-pgp/openpgp/s2k"
)

var (
	lockInput  string
	lockOutput string
	lockAEAD   bool
	lockS2K    string
	lockCipher string
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Protect a Secret-Key packet under a passphrase",
	Long: `Encrypts a key file's private parameters under a passphrase, using either
S2K+AEAD (modern, recommended for v6 keys) or S2K+CFB+SHA-1 (legacy,
for v4 keys talking to older implementations).`,
	RunE: runLock,
}

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Recover a Secret-Key packet's private parameters from a passphrase",
	RunE:  runUnlock,
}

func init() {
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(unlockCmd)

	lockCmd.Flags().StringVarP(&lockInput, "input", "i", "key.json", "Key file to lock")
	lockCmd.Flags().StringVarP(&lockOutput, "output", "o", "", "Output path (default: overwrite input)")
	lockCmd.Flags().BoolVar(&lockAEAD, "aead", true, "Use S2K+AEAD protection instead of legacy S2K+CFB")
	lockCmd.Flags().StringVar(&lockS2K, "s2k", "iterated", "S2K specifier (iterated, argon2)")
	lockCmd.Flags().StringVar(&lockCipher, "cipher", "aes256", "Wrapping cipher (aes128, aes192, aes256)")

	unlockCmd.Flags().StringVarP(&lockInput, "input", "i", "key.json", "Key file to unlock")
	unlockCmd.Flags().StringVarP(&lockOutput, "output", "o", "", "Output path (default: overwrite input)")
}

func cipherByName(name string) (algorithm.Cipher, error) {
	switch name {
	case "aes128":
		return algorithm.CipherAES128, nil
	case "aes192":
		return algorithm.CipherAES192, nil
	case "aes256":
		return algorithm.CipherAES256, nil
	default:
		return 0, fmt.Errorf("unsupported cipher %q", name)
	}
}

func s2kParamsByName(name string, hash algorithm.Hash) (*s2k.Params, error) {
	switch name {
	case "iterated":
		return &s2k.Params{Type: s2k.TypeIterated, Hash: hash, Count: uint32(s2k.EncodeCount(65536))}, nil
	case "argon2":
		return &s2k.Params{Type: s2k.TypeArgon2, Argon2Passes: 3, Argon2Parallelism: 4, Argon2MemExpBits: 21}, nil
	default:
		return nil, fmt.Errorf("unsupported S2K specifier %q", name)
	}
}

func readPassphrase(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return pass, nil
}

func runLock(cmd *cobra.Command, args []string) error {
	loaded, err := readKeyFile(lockInput)
	if err != nil {
		return err
	}
	sk := loaded.SecretKey
	if sk.Priv == nil {
		return fmt.Errorf("key has no private parameters to lock (dummy or already locked)")
	}

	cipherAlgo, err := cipherByName(lockCipher)
	if err != nil {
		return err
	}
	params, err := s2kParamsByName(lockS2K, algorithm.HashSHA256)
	if err != nil {
		return err
	}

	passphrase, err := readPassphrase("Passphrase: ")
	if err != nil {
		return err
	}

	cfg := config.Default()
	cfg.AEADProtect = lockAEAD

	if err := sk.Encrypt(passphrase, params, cipherAlgo, cfg); err != nil {
		return fmt.Errorf("lock failed: %w", err)
	}

	out := lockOutput
	if out == "" {
		out = lockInput
	}
	if err := writeKeyFile(out, sk); err != nil {
		return err
	}
	fmt.Printf("Locked -> %s\n", out)
	return nil
}

func runUnlock(cmd *cobra.Command, args []string) error {
	loaded, err := readKeyFile(lockInput)
	if err != nil {
		return err
	}
	sk := loaded.SecretKey
	if !sk.IsEncrypted {
		return fmt.Errorf("key is not locked")
	}

	passphrase, err := readPassphrase("Passphrase: ")
	if err != nil {
		return err
	}

	d := cryptoinit.Wire(config.Default())
	if err := sk.Decrypt(passphrase, d.Config()); err != nil {
		return fmt.Errorf("unlock failed: %w", err)
	}
	if err := sk.Validate(d); err != nil {
		return fmt.Errorf("unlocked key failed validation: %w", err)
	}

	out := lockOutput
	if out == "" {
		out = lockInput
	}
	if err := writeKeyFile(out, sk); err != nil {
		return err
	}
	fmt.Printf("Unlocked -> %s\n", out)
	return nil
}

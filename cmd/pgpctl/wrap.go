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
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/sage-pgp/openpgp/packet"
)

var (
	wrapRecipient string
	wrapOutput    string
	wrapCipher    string
	wrapV6        bool

	unwrapKey   string
	unwrapInput string
)

var wrapCmd = &cobra.Command{
	Use:   "wrap",
	Short: "Generate a fresh session key and wrap it for a recipient (PKESK)",
	Long: `Generates a random session key for the given symmetric cipher and
wraps it under the recipient's public key, producing a Public-Key
Encrypted Session Key (PKESK, tag 1) packet. The session key itself is
printed to stderr in hex: this command does not encrypt a message, only
exercises the key-wrapping step of the dispatcher.`,
	RunE: runWrap,
}

var unwrapCmd = &cobra.Command{
	Use:   "unwrap",
	Short: "Recover the session key from a PKESK packet",
	RunE:  runUnwrap,
}

func init() {
	rootCmd.AddCommand(wrapCmd)
	rootCmd.AddCommand(unwrapCmd)

	wrapCmd.Flags().StringVarP(&wrapRecipient, "recipient", "r", "key.json", "Recipient's key file (public parameters are used)")
	wrapCmd.Flags().StringVarP(&wrapOutput, "output", "o", "pkesk.bin", "Output PKESK packet path")
	wrapCmd.Flags().StringVar(&wrapCipher, "cipher", "aes256", "Session-key cipher (aes128, aes192, aes256)")
	wrapCmd.Flags().BoolVar(&wrapV6, "v6", true, "Produce a v6 PKESK (fingerprint-addressed) instead of v3 (key-ID-addressed)")

	unwrapCmd.Flags().StringVarP(&unwrapKey, "key", "k", "key.json", "Recipient's key file (private parameters are used)")
	unwrapCmd.Flags().StringVarP(&unwrapInput, "input", "i", "pkesk.bin", "PKESK packet path")
}

func runWrap(cmd *cobra.Command, args []string) error {
	loaded, err := readKeyFile(wrapRecipient)
	if err != nil {
		return err
	}
	recipient := loaded.SecretKey
	if recipient.Pub == nil {
		return fmt.Errorf("recipient key file has no public parameters")
	}

	cipherAlgo, err := cipherByName(wrapCipher)
	if err != nil {
		return err
	}
	key := make([]byte, cipherAlgo.KeySize())
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate session key: %w", err)
	}
	sk := packet.SessionKey{Cipher: cipherAlgo, Key: key}

	var pkesk *packet.PKESK
	if wrapV6 {
		pkesk, err = packet.EncryptV6(recipient.Pub, recipient.Version, loaded.Fingerprint, sk)
	} else {
		var keyID [8]byte
		pkesk, err = packet.EncryptV3(recipient.Pub, keyID, loaded.Fingerprint, sk)
	}
	if err != nil {
		return fmt.Errorf("wrap failed: %w", err)
	}

	wire, err := pkesk.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize PKESK packet: %w", err)
	}
	if err := os.WriteFile(wrapOutput, wire, 0600); err != nil {
		return fmt.Errorf("failed to write PKESK packet: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Session key (%s): %s\n", wrapCipher, hex.EncodeToString(key))
	fmt.Printf("Wrapped -> %s\n", wrapOutput)
	return nil
}

func runUnwrap(cmd *cobra.Command, args []string) error {
	loaded, err := readKeyFile(unwrapKey)
	if err != nil {
		return err
	}
	recipient := loaded.SecretKey
	if recipient.Priv == nil {
		return fmt.Errorf("key file has no private parameters (locked or dummy)")
	}

	wire, err := os.ReadFile(unwrapInput)
	if err != nil {
		return fmt.Errorf("failed to read PKESK packet: %w", err)
	}
	pkesk, err := packet.ParsePKESK(wire)
	if err != nil {
		return fmt.Errorf("failed to parse PKESK packet: %w", err)
	}

	// A server decrypting PKESKs from untrusted senders would pass a
	// random fallback session key here to stay constant-time against a
	// decryption oracle (see PKESK.Decrypt); this CLI reports genuine
	// errors directly since the operator already holds the ciphertext.
	got, err := pkesk.Decrypt(recipient.Pub, recipient.Priv, loaded.Fingerprint, nil)
	if err != nil {
		return fmt.Errorf("unwrap failed: %w", err)
	}

	fmt.Printf("Session key cipher: %d\nSession key: %s\n", got.Cipher, hex.EncodeToString(got.Key))
	return nil
}

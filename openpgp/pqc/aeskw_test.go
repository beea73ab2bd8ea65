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

package pqc

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAESKeyWrapKnownAnswer(t *testing.T) {
	kek, err := hex.DecodeString("000102030405060708090A0B0C0D0E0F")
	require.NoError(t, err)
	pt, err := hex.DecodeString("00112233445566778899AABBCCDDEEFF")
	require.NoError(t, err)
	want, err := hex.DecodeString("1FA68B0A8112B447AEF34BD8FB5A7B829D3E862371D2CFE5")
	require.NoError(t, err)

	got, err := AESKeyWrap(kek, pt)
	require.NoError(t, err)
	require.Equal(t, want, got)

	back, err := AESKeyUnwrap(kek, got)
	require.NoError(t, err)
	require.Equal(t, pt, back)
}

func TestAESKeyUnwrapRejectsTamperedInput(t *testing.T) {
	kek := make([]byte, 16)
	pt := make([]byte, 16)
	for i := range pt {
		pt[i] = byte(i)
	}
	wrapped, err := AESKeyWrap(kek, pt)
	require.NoError(t, err)
	wrapped[0] ^= 0xFF

	_, err = AESKeyUnwrap(kek, wrapped)
	require.Error(t, err)
}

func TestAESKeyWrapRejectsShortInput(t *testing.T) {
	kek := make([]byte, 16)
	_, err := AESKeyWrap(kek, []byte("short"))
	require.Error(t, err)
}

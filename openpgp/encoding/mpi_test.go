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

package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeMPIRoundTrip(t *testing.T) {
	t.Run("simple value", func(t *testing.T) {
		in := []byte{0x01, 0x02, 0x03}
		enc := EncodeMPI(in)
		out, next, err := ReadMPI(enc, 0)
		require.NoError(t, err)
		assert.Equal(t, len(enc), next)
		assert.Equal(t, in, out)
	})

	t.Run("strips leading zero bytes on encode", func(t *testing.T) {
		in := []byte{0x00, 0x00, 0xFF}
		enc := EncodeMPI(in)
		out, _, err := ReadMPI(enc, 0)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xFF}, out)
	})

	t.Run("bit length reflects highest set bit", func(t *testing.T) {
		enc := EncodeMPI([]byte{0x01})
		assert.Equal(t, byte(0x00), enc[0])
		assert.Equal(t, byte(0x01), enc[1])
	})

	t.Run("truncated buffer errors", func(t *testing.T) {
		_, _, err := ReadMPI([]byte{0x00}, 0)
		assert.Error(t, err)
	})
}

func TestLeftPad(t *testing.T) {
	out, err := LeftPad([]byte{0xAB}, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0xAB}, out)

	_, err = LeftPad([]byte{1, 2, 3}, 2)
	assert.Error(t, err)
}

func TestChecksum(t *testing.T) {
	data := []byte("session-key-material")
	sum := WriteChecksum(data)
	assert.True(t, VerifyChecksum(data, sum))
	bad := append([]byte{}, sum...)
	bad[0] ^= 0xFF
	assert.False(t, VerifyChecksum(data, bad))
}

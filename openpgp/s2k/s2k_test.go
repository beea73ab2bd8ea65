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

package s2k

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sage-pgp/openpgp/algorithm"
)

func TestSimpleS2KDeterministic(t *testing.T) {
	p := &Params{Type: TypeSimple, Hash: algorithm.HashSHA256}
	k1, err := p.ProduceKey([]byte("passphrase"), 32, false)
	require.NoError(t, err)
	k2, err := p.ProduceKey([]byte("passphrase"), 32, false)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 32)
}

func TestSimpleS2KForbiddenOnV6(t *testing.T) {
	p := &Params{Type: TypeSimple, Hash: algorithm.HashSHA256}
	_, err := p.ProduceKey([]byte("x"), 32, true)
	assert.Error(t, err)
}

func TestSaltedS2KChangesWithSalt(t *testing.T) {
	p1 := &Params{Type: TypeSalted, Hash: algorithm.HashSHA256, Salt: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}}
	p2 := &Params{Type: TypeSalted, Hash: algorithm.HashSHA256, Salt: [8]byte{8, 7, 6, 5, 4, 3, 2, 1}}
	k1, err := p1.ProduceKey([]byte("pw"), 32, false)
	require.NoError(t, err)
	k2, err := p2.ProduceKey([]byte("pw"), 32, false)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestIteratedS2KRoundTripSerialize(t *testing.T) {
	p := &Params{Type: TypeIterated, Hash: algorithm.HashSHA256, Salt: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}, Count: 96}
	enc := p.Serialize()
	parsed, next, err := Parse(enc, 0)
	require.NoError(t, err)
	assert.Equal(t, len(enc), next)
	assert.Equal(t, p.Salt, parsed.Salt)
	assert.Equal(t, p.Count, parsed.Count)
}

func TestArgon2S2KDifferentSizes(t *testing.T) {
	p := &Params{Type: TypeArgon2, Argon2Salt: [16]byte{1, 2, 3}, Argon2Passes: 1, Argon2Parallelism: 1, Argon2MemExpBits: 10}
	k, err := p.ProduceKey([]byte("pw"), 32, true)
	require.NoError(t, err)
	assert.Len(t, k, 32)
	k16, err := p.ProduceKey([]byte("pw"), 16, true)
	require.NoError(t, err)
	assert.Len(t, k16, 16)
}

func TestGNUDummyHasNoKey(t *testing.T) {
	p := &Params{Type: TypeGNUDummy}
	assert.True(t, p.Dummy())
	_, err := p.ProduceKey([]byte("pw"), 32, true)
	assert.Error(t, err)
}

func TestEncodeCountRoundTrip(t *testing.T) {
	c := EncodeCount(65536)
	assert.GreaterOrEqual(t, decodedCount(c), uint32(65536))
}

// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package fory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBufferFixedScalarsRoundTrip(t *testing.T) {
	buf := NewByteBuffer(nil)
	buf.WriteBool(true)
	buf.WriteInt8(-12)
	buf.WriteInt16(-1000)
	buf.WriteInt32(MinInt32)
	buf.WriteInt64(MaxInt64)
	buf.WriteFloat32(3.5)
	buf.WriteFloat64(-2.25)
	buf.WriteBinary([]byte("abc"))

	read := NewByteBuffer(buf.GetByteSlice(0, buf.WriterIndex()))
	require.Equal(t, true, read.ReadBool())
	require.Equal(t, int8(-12), read.ReadInt8())
	require.Equal(t, int16(-1000), read.ReadInt16())
	require.Equal(t, int32(MinInt32), read.ReadInt32())
	require.Equal(t, int64(MaxInt64), read.ReadInt64())
	require.Equal(t, float32(3.5), read.ReadFloat32())
	require.Equal(t, -2.25, read.ReadFloat64())
	require.Equal(t, []byte("abc"), read.ReadBinary(3))
}

func TestByteBufferGrowsOnWrite(t *testing.T) {
	buf := NewByteBuffer(nil)
	for i := 0; i < 100; i++ {
		buf.WriteInt64(int64(i))
	}
	require.Equal(t, 800, buf.WriterIndex())
	read := NewByteBuffer(buf.GetByteSlice(0, buf.WriterIndex()))
	for i := 0; i < 100; i++ {
		require.Equal(t, int64(i), read.ReadInt64())
	}
}

func TestByteBufferUnexpectedEndOfBuffer(t *testing.T) {
	buf := NewByteBuffer([]byte{1, 2})
	require.Panics(t, func() { buf.ReadInt32() })
}

// §8 property 6: varint boundaries at every byte-length transition.
func TestVarUint32Boundaries(t *testing.T) {
	cases := []uint32{0, 1, 1<<7 - 1, 1 << 7, 1<<14 - 1, 1 << 14, 1<<21 - 1, 1 << 21, 1<<28 - 1, 1 << 28, 1<<32 - 1}
	for _, n := range cases {
		buf := NewByteBuffer(nil)
		buf.WriteVarUint32(n)
		read := NewByteBuffer(buf.GetByteSlice(0, buf.WriterIndex()))
		require.Equal(t, n, read.ReadVarUint32(), "n=%d", n)
		require.LessOrEqual(t, buf.WriterIndex(), maxVarint32Bytes)
	}
}

func TestVarInt32ZigZagRoundTrip(t *testing.T) {
	cases := []int32{0, -1, 1, MinInt32, MaxInt32, -64, 64}
	for _, n := range cases {
		buf := NewByteBuffer(nil)
		buf.WriteVarInt32(n)
		read := NewByteBuffer(buf.GetByteSlice(0, buf.WriterIndex()))
		require.Equal(t, n, read.ReadVarInt32(), "n=%d", n)
	}
}

func TestVarInt64ZigZagRoundTrip(t *testing.T) {
	cases := []int64{0, -1, 1, MinInt64, MaxInt64}
	for _, n := range cases {
		buf := NewByteBuffer(nil)
		buf.WriteVarInt64(n)
		read := NewByteBuffer(buf.GetByteSlice(0, buf.WriterIndex()))
		require.Equal(t, n, read.ReadVarInt64(), "n=%d", n)
	}
}

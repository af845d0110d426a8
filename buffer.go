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
	"math"
)

// ByteBuffer is a growable byte window with an independent read cursor and
// write cursor (§3, §4.1). All multi-byte scalars are little-endian.
//
// Bounds and varint-length violations are reported by panicking with the
// typed errors from errors.go rather than threading an error return through
// every primitive read — the same shape encoding/gob's decoder uses. The
// top-level Marshal/Unmarshal/Serialize/Deserialize entry points recover
// these panics and turn them back into ordinary error returns, so nothing
// escapes the package as a panic.
type ByteBuffer struct {
	data       []byte
	readIndex  int
	writeIndex int
}

// NewByteBuffer wraps existing data for reading, or starts an empty buffer
// for writing when data is nil.
func NewByteBuffer(data []byte) *ByteBuffer {
	return &ByteBuffer{data: data, writeIndex: len(data)}
}

func (b *ByteBuffer) ReaderIndex() int { return b.readIndex }
func (b *ByteBuffer) WriterIndex() int { return b.writeIndex }

func (b *ByteBuffer) SetReaderIndex(i int) { b.readIndex = i }
func (b *ByteBuffer) SetWriterIndex(i int) { b.writeIndex = i }

func (b *ByteBuffer) Len() int      { return b.writeIndex - b.readIndex }
func (b *ByteBuffer) Capacity() int { return len(b.data) }

// GetByteSlice returns the bytes in [start, end) without moving either
// cursor.
func (b *ByteBuffer) GetByteSlice(start, end int) []byte {
	return b.data[start:end]
}

// Reset rewinds both cursors so the buffer can be reused across sessions
// (§9 "Scoped resources" — reset in place rather than free/realloc).
func (b *ByteBuffer) Reset() {
	b.readIndex = 0
	b.writeIndex = 0
}

func (b *ByteBuffer) grow(n int) {
	needed := b.writeIndex + n
	if needed <= len(b.data) {
		return
	}
	newCap := len(b.data)
	if newCap == 0 {
		newCap = 32
	}
	for newCap < needed {
		newCap *= 2
	}
	next := make([]byte, newCap)
	copy(next, b.data[:b.writeIndex])
	b.data = next
}

func (b *ByteBuffer) reserve(n int) []byte {
	b.grow(n)
	start := b.writeIndex
	b.writeIndex += n
	return b.data[start:b.writeIndex]
}

func (b *ByteBuffer) requireReadable(n int) {
	if b.readIndex+n > b.writeIndex {
		panic(errUnexpectedEndOfBuffer(b.readIndex, b.readIndex+n-b.writeIndex))
	}
}

// --- fixed-size scalars ---

func (b *ByteBuffer) WriteBool(v bool) {
	if v {
		b.WriteByte_(1)
	} else {
		b.WriteByte_(0)
	}
}

func (b *ByteBuffer) ReadBool() bool { return b.ReadByte_() != 0 }

func (b *ByteBuffer) WriteByte_(v byte) {
	dst := b.reserve(1)
	dst[0] = v
}

func (b *ByteBuffer) ReadByte_() byte {
	b.requireReadable(1)
	v := b.data[b.readIndex]
	b.readIndex++
	return v
}

func (b *ByteBuffer) WriteInt8(v int8) { b.WriteByte_(byte(v)) }
func (b *ByteBuffer) ReadInt8() int8   { return int8(b.ReadByte_()) }

func (b *ByteBuffer) WriteInt16(v int16) {
	dst := b.reserve(2)
	u := uint16(v)
	dst[0] = byte(u)
	dst[1] = byte(u >> 8)
}

func (b *ByteBuffer) ReadInt16() int16 {
	b.requireReadable(2)
	u := uint16(b.data[b.readIndex]) | uint16(b.data[b.readIndex+1])<<8
	b.readIndex += 2
	return int16(u)
}

func (b *ByteBuffer) WriteInt32(v int32) {
	dst := b.reserve(4)
	u := uint32(v)
	dst[0] = byte(u)
	dst[1] = byte(u >> 8)
	dst[2] = byte(u >> 16)
	dst[3] = byte(u >> 24)
}

func (b *ByteBuffer) ReadInt32() int32 {
	b.requireReadable(4)
	d := b.data[b.readIndex : b.readIndex+4]
	u := uint32(d[0]) | uint32(d[1])<<8 | uint32(d[2])<<16 | uint32(d[3])<<24
	b.readIndex += 4
	return int32(u)
}

func (b *ByteBuffer) WriteInt64(v int64) {
	dst := b.reserve(8)
	u := uint64(v)
	for i := 0; i < 8; i++ {
		dst[i] = byte(u >> (8 * uint(i)))
	}
}

func (b *ByteBuffer) ReadInt64() int64 {
	b.requireReadable(8)
	d := b.data[b.readIndex : b.readIndex+8]
	var u uint64
	for i := 0; i < 8; i++ {
		u |= uint64(d[i]) << (8 * uint(i))
	}
	b.readIndex += 8
	return int64(u)
}

func (b *ByteBuffer) WriteFloat32(v float32) { b.WriteInt32(int32(math.Float32bits(v))) }
func (b *ByteBuffer) ReadFloat32() float32   { return math.Float32frombits(uint32(b.ReadInt32())) }

func (b *ByteBuffer) WriteFloat64(v float64) { b.WriteInt64(int64(math.Float64bits(v))) }
func (b *ByteBuffer) ReadFloat64() float64   { return math.Float64frombits(uint64(b.ReadInt64())) }

// --- bulk bytes ---

func (b *ByteBuffer) WriteBinary(p []byte) {
	dst := b.reserve(len(p))
	copy(dst, p)
}

func (b *ByteBuffer) ReadBinary(n int) []byte {
	b.requireReadable(n)
	out := make([]byte, n)
	copy(out, b.data[b.readIndex:b.readIndex+n])
	b.readIndex += n
	return out
}

// --- varint (§4.1, §6) ---

const (
	maxVarint32Bytes = 5
	maxVarint64Bytes = 9
)

func (b *ByteBuffer) WriteVarUint32(v uint32) int {
	n := 0
	for {
		if v&^0x7f == 0 {
			b.WriteByte_(byte(v))
			n++
			return n
		}
		b.WriteByte_(byte(v&0x7f) | 0x80)
		v >>= 7
		n++
	}
}

func (b *ByteBuffer) ReadVarUint32() uint32 {
	var result uint32
	var shift uint
	start := b.readIndex
	for i := 0; i < maxVarint32Bytes; i++ {
		c := b.ReadByte_()
		result |= uint32(c&0x7f) << shift
		if c&0x80 == 0 {
			return result
		}
		shift += 7
	}
	panic(errMalformedVarint(start))
}

// WriteVarUint64 uses 7 data bits per byte for the first eight bytes; a
// ninth byte, when reached, carries the remaining top 8 bits whole, so no
// value takes more than maxVarint64Bytes.
func (b *ByteBuffer) WriteVarUint64(v uint64) int {
	n := 0
	for {
		if v&^0x7f == 0 || n == maxVarint64Bytes-1 {
			b.WriteByte_(byte(v))
			n++
			return n
		}
		b.WriteByte_(byte(v&0x7f) | 0x80)
		v >>= 7
		n++
	}
}

func (b *ByteBuffer) ReadVarUint64() uint64 {
	var result uint64
	var shift uint
	start := b.readIndex
	for i := 0; i < maxVarint64Bytes; i++ {
		c := b.ReadByte_()
		if i == maxVarint64Bytes-1 {
			return result | uint64(c)<<shift
		}
		result |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return result
		}
		shift += 7
	}
	panic(errMalformedVarint(start))
}

func zigzag32(v int32) uint32 { return uint32((v << 1) ^ (v >> 31)) }
func unzigzag32(v uint32) int32 {
	return int32(v>>1) ^ -int32(v&1)
}

func zigzag64(v int64) uint64 { return uint64((v << 1) ^ (v >> 63)) }
func unzigzag64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

func (b *ByteBuffer) WriteVarInt32(v int32) int { return b.WriteVarUint32(zigzag32(v)) }
func (b *ByteBuffer) ReadVarInt32() int32       { return unzigzag32(b.ReadVarUint32()) }

func (b *ByteBuffer) WriteVarInt64(v int64) int { return b.WriteVarUint64(zigzag64(v)) }
func (b *ByteBuffer) ReadVarInt64() int64       { return unzigzag64(b.ReadVarUint64()) }

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
	"reflect"
	"time"
)

// writeScalar/readScalar encode the eight primitive kinds from §4.1/§4.6
// group 1 without a class id — the caller already knows the static kind.
// compressNumber switches int32/int64 to the varint path per §4.7.
func writeScalar(buf *ByteBuffer, v reflect.Value, compressNumber bool) {
	switch v.Kind() {
	case reflect.Bool:
		buf.WriteBool(v.Bool())
	case reflect.Int8, reflect.Uint8:
		buf.WriteInt8(int8(signedOrUnsigned(v)))
	case reflect.Int16, reflect.Uint16:
		buf.WriteInt16(int16(signedOrUnsigned(v)))
	case reflect.Int32, reflect.Uint32, reflect.Int, reflect.Uint:
		n := int32(signedOrUnsigned(v))
		if compressNumber {
			buf.WriteVarInt32(n)
		} else {
			buf.WriteInt32(n)
		}
	case reflect.Int64, reflect.Uint64:
		n := signedOrUnsigned(v)
		if compressNumber {
			buf.WriteVarInt64(n)
		} else {
			buf.WriteInt64(n)
		}
	case reflect.Float32:
		buf.WriteFloat32(float32(v.Float()))
	case reflect.Float64:
		buf.WriteFloat64(v.Float())
	default:
		panic(newOffsetErr("InvalidStringEncoding", buf.WriterIndex(), "not a scalar kind: %s", v.Kind()))
	}
}

func signedOrUnsigned(v reflect.Value) int64 {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint())
	default:
		return v.Int()
	}
}

// readScalar decodes into a freshly allocated reflect.Value of kind `kind`,
// mirroring writeScalar exactly.
func readScalar(buf *ByteBuffer, kind reflect.Kind, compressNumber bool) reflect.Value {
	switch kind {
	case reflect.Bool:
		return reflect.ValueOf(buf.ReadBool())
	case reflect.Uint8:
		return reflect.ValueOf(byte(buf.ReadInt8()))
	case reflect.Int8:
		return reflect.ValueOf(buf.ReadInt8())
	case reflect.Int16:
		return reflect.ValueOf(buf.ReadInt16())
	case reflect.Uint16:
		return reflect.ValueOf(uint16(buf.ReadInt16()))
	case reflect.Uint32:
		return reflect.ValueOf(uint32(readScalar(buf, reflect.Int32, compressNumber).Int()))
	case reflect.Uint:
		return reflect.ValueOf(uint(uint32(readScalar(buf, reflect.Int32, compressNumber).Int())))
	case reflect.Uint64:
		return reflect.ValueOf(uint64(readScalar(buf, reflect.Int64, compressNumber).Int()))
	case reflect.Int32:
		if compressNumber {
			return reflect.ValueOf(buf.ReadVarInt32())
		}
		return reflect.ValueOf(buf.ReadInt32())
	case reflect.Int:
		var n int32
		if compressNumber {
			n = buf.ReadVarInt32()
		} else {
			n = buf.ReadInt32()
		}
		return reflect.ValueOf(int(n))
	case reflect.Int64:
		if compressNumber {
			return reflect.ValueOf(buf.ReadVarInt64())
		}
		return reflect.ValueOf(buf.ReadInt64())
	case reflect.Float32:
		return reflect.ValueOf(buf.ReadFloat32())
	case reflect.Float64:
		return reflect.ValueOf(buf.ReadFloat64())
	default:
		panic(newOffsetErr("InvalidStringEncoding", buf.ReaderIndex(), "not a scalar kind: %s", kind))
	}
}

func scalarSize(kind reflect.Kind) int {
	switch kind {
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return 1
	case reflect.Int16, reflect.Uint16:
		return 2
	case reflect.Int32, reflect.Uint32, reflect.Int, reflect.Uint, reflect.Float32:
		return 4
	case reflect.Int64, reflect.Uint64, reflect.Float64:
		return 8
	default:
		return 0
	}
}

// --- Serializer implementations for the scalar kinds and string, usable
// directly as a registered ClassInfo.Serializer for "other"/top-level values
// (§4.7's "basic object" slot). Struct primitive-group slots bypass this
// and call writeScalar/readScalar directly since they never need a class
// id.

type scalarSerializer struct {
	kind    reflect.Kind
	id      int32
	compress bool
}

func (s scalarSerializer) TypeID() int32 { return s.id }
func (s scalarSerializer) Write(f *Fory, buf *ByteBuffer, v reflect.Value) {
	writeScalar(buf, v, s.compress && f.config.CompressNumber)
}
func (s scalarSerializer) Read(f *Fory, buf *ByteBuffer) reflect.Value {
	return readScalar(buf, s.kind, s.compress && f.config.CompressNumber)
}

type stringSerializer struct{}

func (stringSerializer) TypeID() int32 { return typeIDString }
func (stringSerializer) Write(f *Fory, buf *ByteBuffer, v reflect.Value) {
	writeString(buf, v.String(), f.config.CompressString)
}
func (stringSerializer) Read(f *Fory, buf *ByteBuffer) reflect.Value {
	return reflect.ValueOf(readString(buf))
}

type timeSerializer struct{}

func (timeSerializer) TypeID() int32 { return typeIDTime }
func (timeSerializer) Write(f *Fory, buf *ByteBuffer, v reflect.Value) {
	t := v.Interface().(time.Time)
	buf.WriteInt64(t.UnixNano())
}
func (timeSerializer) Read(f *Fory, buf *ByteBuffer) reflect.Value {
	nanos := buf.ReadInt64()
	return reflect.ValueOf(time.Unix(0, nanos).UTC())
}

// ptrToValueSerializer implements the boxed-primitive/boxed-string slot
// (§4.6 group 2): it writes the pointee's body only; the nullability/ref
// flag ahead of it is written by the caller (writeValueWithRefFlag or
// writeReferencable).
type ptrToValueSerializer struct {
	elem Serializer
}

func (s *ptrToValueSerializer) TypeID() int32 { return s.elem.TypeID() }
func (s *ptrToValueSerializer) Write(f *Fory, buf *ByteBuffer, v reflect.Value) {
	s.elem.Write(f, buf, v.Elem())
}
func (s *ptrToValueSerializer) Read(f *Fory, buf *ByteBuffer) reflect.Value {
	elemVal := s.elem.Read(f, buf)
	ptr := reflect.New(elemVal.Type())
	ptr.Elem().Set(elemVal)
	return ptr
}

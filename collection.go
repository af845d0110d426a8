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

import "reflect"

// byteSliceSerializer is the raw-bytes fast path: no per-element framing,
// just a length-prefixed copy.
type byteSliceSerializer struct{}

func (byteSliceSerializer) TypeID() int32 { return typeIDBytes }
func (byteSliceSerializer) Write(f *Fory, buf *ByteBuffer, v reflect.Value) {
	b := v.Bytes()
	buf.WriteVarUint32(uint32(len(b)))
	buf.WriteBinary(b)
}
func (byteSliceSerializer) Read(f *Fory, buf *ByteBuffer) reflect.Value {
	n := int(buf.ReadVarUint32())
	return reflect.ValueOf(buf.ReadBinary(n))
}

// primitiveSliceSerializer is the homogeneous fast path for an unnamed
// slice of a primitive element (§4.8 "optional homogeneous fast paths when
// the element type is final"): size, then each element raw, with no
// per-element class tag or ref flag since primitives are never null and
// never shared.
type primitiveSliceSerializer struct {
	elemKind reflect.Kind
	id       int32
}

func (s *primitiveSliceSerializer) TypeID() int32 { return s.id }
func (s *primitiveSliceSerializer) Write(f *Fory, buf *ByteBuffer, v reflect.Value) {
	n := v.Len()
	buf.WriteVarUint32(uint32(n))
	for i := 0; i < n; i++ {
		writeScalar(buf, v.Index(i), false)
	}
}
func (s *primitiveSliceSerializer) Read(f *Fory, buf *ByteBuffer) reflect.Value {
	n := int(buf.ReadVarUint32())
	elemType := reflect.TypeOf(reflect.Zero(kindToType(s.elemKind)).Interface())
	out := reflect.MakeSlice(reflect.SliceOf(elemType), n, n)
	for i := 0; i < n; i++ {
		out.Index(i).Set(readScalar(buf, s.elemKind, false))
	}
	return out
}

func kindToType(k reflect.Kind) reflect.Type {
	switch k {
	case reflect.Bool:
		return reflect.TypeOf(false)
	case reflect.Int16:
		return reflect.TypeOf(int16(0))
	case reflect.Int32:
		return reflect.TypeOf(int32(0))
	case reflect.Int64:
		return reflect.TypeOf(int64(0))
	case reflect.Float32:
		return reflect.TypeOf(float32(0))
	case reflect.Float64:
		return reflect.TypeOf(float64(0))
	default:
		panic(newOffsetErr("ClassNotRegistered", 0, "unsupported primitive slice kind %s", k))
	}
}

// genericSliceSerializer is the general collection path (§4.8): a size, an
// empty header byte (reserved; no sorted-collection comparator is carried on
// this wire), then elements. When elemType is non-nil and
// monomorphic the elements are written with that fixed serializer and no
// per-element class tag; otherwise each element goes through the general
// ref-or-null + optional-class-id path (writeReferencable/readReferencable).
//
// Read is split into readHeader/readBody so readReferencable can reserve the
// slice's own reference id against the freshly made (still empty) slice
// before readBody recurses into elements — a self-referencing element then
// resolves to the same slice instead of recursing forever (§4.8 "Reader
// materializes the target collection with a size hint, reserves a reference
// id for itself before reading elements").
type genericSliceSerializer struct {
	elemType reflect.Type // nil => elements are dynamically typed
}

func (s *genericSliceSerializer) TypeID() int32 { return typeIDList }

func (s *genericSliceSerializer) Write(f *Fory, buf *ByteBuffer, v reflect.Value) {
	n := v.Len()
	buf.WriteVarUint32(uint32(n))
	buf.WriteByte_(0) // header: ordinary collection, no comparator
	if s.elemType != nil {
		f.pushGeneric(s.elemType)
		defer f.popGeneric()
		if needsElementRefFlag(s.elemType) {
			for i := 0; i < n; i++ {
				writeValueWithRefFlag(f, buf, v.Index(i))
			}
			return
		}
		info := f.classResolver.classInfoFor(s.elemType)
		for i := 0; i < n; i++ {
			info.Serializer.Write(f, buf, v.Index(i))
		}
		return
	}
	for i := 0; i < n; i++ {
		writeReferencable(f, buf, v.Index(i))
	}
}

func (s *genericSliceSerializer) Read(f *Fory, buf *ByteBuffer) reflect.Value {
	out, n := s.readHeader(buf)
	s.readBody(f, buf, out, n)
	return out
}

// readHeader consumes the size + header byte and allocates the (empty)
// slice the reference id should be reserved against.
func (s *genericSliceSerializer) readHeader(buf *ByteBuffer) (reflect.Value, int) {
	n := int(buf.ReadVarUint32())
	buf.ReadByte_() // header
	elemType := s.elemType
	if elemType == nil {
		elemType = interfaceType
	}
	return reflect.MakeSlice(reflect.SliceOf(elemType), n, n), n
}

// readBody fills a slice already allocated by readHeader.
func (s *genericSliceSerializer) readBody(f *Fory, buf *ByteBuffer, out reflect.Value, n int) {
	elemType := out.Type().Elem()
	if s.elemType != nil {
		if needsElementRefFlag(s.elemType) {
			for i := 0; i < n; i++ {
				val := readValueWithRefFlag(f, buf, s.elemType)
				if val.IsValid() {
					out.Index(i).Set(convertForAssign(val, elemType))
				}
			}
			return
		}
		info := f.classResolver.classInfoFor(s.elemType)
		for i := 0; i < n; i++ {
			out.Index(i).Set(info.Serializer.Read(f, buf))
		}
		return
	}
	for i := 0; i < n; i++ {
		val := readReferencable(f, buf)
		if val.IsValid() {
			out.Index(i).Set(convertForAssign(val, elemType))
		}
	}
}

// needsElementRefFlag reports whether a statically-typed (monomorphic)
// collection/map element still needs a per-element null/ref-or-null flag
// even though its class id is skipped: pointers can be nil or shared, and
// strings can be shared (§4.8's fast path only drops the class id, never
// identity tracking).
func needsElementRefFlag(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr || t.Kind() == reflect.String
}

// arraySerializer is the fixed-size-array analogue of genericSliceSerializer
// (§9 "arrays reuse their corresponding slice serializer/deserializer").
type arraySerializer struct {
	arrayType reflect.Type
	elemType  reflect.Type
}

func (s *arraySerializer) TypeID() int32 { return typeIDList }
func (s *arraySerializer) Write(f *Fory, buf *ByteBuffer, v reflect.Value) {
	n := v.Len()
	buf.WriteVarUint32(uint32(n))
	buf.WriteByte_(0)
	elemType := s.elemType
	if elemType == nil {
		elemType = v.Type().Elem()
	}
	if s.elemType != nil && !isDynamicType(elemType) {
		if needsElementRefFlag(elemType) {
			for i := 0; i < n; i++ {
				writeValueWithRefFlag(f, buf, v.Index(i))
			}
			return
		}
		info := f.classResolver.classInfoFor(elemType)
		for i := 0; i < n; i++ {
			info.Serializer.Write(f, buf, v.Index(i))
		}
		return
	}
	for i := 0; i < n; i++ {
		writeReferencable(f, buf, v.Index(i))
	}
}
func (s *arraySerializer) Read(f *Fory, buf *ByteBuffer) reflect.Value {
	n := int(buf.ReadVarUint32())
	buf.ReadByte_()
	out := reflect.New(s.arrayType).Elem()
	if s.elemType != nil && !isDynamicType(s.elemType) {
		if needsElementRefFlag(s.elemType) {
			for i := 0; i < n && i < out.Len(); i++ {
				val := readValueWithRefFlag(f, buf, s.elemType)
				if val.IsValid() {
					out.Index(i).Set(convertForAssign(val, out.Type().Elem()))
				}
			}
			return out
		}
		info := f.classResolver.classInfoFor(s.elemType)
		for i := 0; i < n && i < out.Len(); i++ {
			out.Index(i).Set(info.Serializer.Read(f, buf))
		}
		return out
	}
	for i := 0; i < n && i < out.Len(); i++ {
		val := readReferencable(f, buf)
		if val.IsValid() {
			out.Index(i).Set(convertForAssign(val, out.Type().Elem()))
		}
	}
	return out
}

func convertForAssign(val reflect.Value, target reflect.Type) reflect.Value {
	if target.Kind() == reflect.Interface {
		return val
	}
	if val.Type() == target {
		return val
	}
	if val.Type().ConvertibleTo(target) {
		return val.Convert(target)
	}
	return val
}

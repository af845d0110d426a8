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

// genericMapSerializer implements §4.9: size, empty header, then pairs.
// keyType/valueType nil means "dynamically typed" (interface{}); when both
// are concrete the serializer takes the final,final fast path with no
// per-pair class tags, and the three mixed paths fall back to the general
// ref-or-null + optional-class-id path for whichever side is dynamic.
type genericMapSerializer struct {
	keyType, valueType reflect.Type
}

func (s *genericMapSerializer) TypeID() int32 { return typeIDMap }

func (s *genericMapSerializer) Write(f *Fory, buf *ByteBuffer, v reflect.Value) {
	buf.WriteVarUint32(uint32(v.Len()))
	buf.WriteByte_(0) // header
	keyFinal := s.keyType != nil && !isDynamicType(s.keyType)
	valFinal := s.valueType != nil && !isDynamicType(s.valueType)

	var keyInfo, valInfo *ClassInfo
	if keyFinal {
		keyInfo = f.classResolver.classInfoFor(s.keyType)
	}
	if valFinal {
		valInfo = f.classResolver.classInfoFor(s.valueType)
	}

	iter := v.MapRange()
	for iter.Next() {
		k, val := iter.Key(), iter.Value()
		if keyFinal {
			if needsElementRefFlag(s.keyType) {
				writeValueWithRefFlag(f, buf, unwrapInterface(k))
			} else {
				keyInfo.Serializer.Write(f, buf, unwrapInterface(k))
			}
		} else {
			writeReferencable(f, buf, k)
		}
		if valFinal {
			if needsElementRefFlag(s.valueType) {
				writeValueWithRefFlag(f, buf, unwrapInterface(val))
			} else {
				valInfo.Serializer.Write(f, buf, unwrapInterface(val))
			}
		} else {
			writeReferencable(f, buf, val)
		}
	}
}

// Read is split into readHeader/readBody (see containerSerializer in
// classinfo.go) so readReferencable can reserve the map's own reference id
// against the freshly made (still empty) map before readBody recurses into
// entries — a self-referencing key or value then resolves to the same map
// instead of recursing forever (§4.9, mirroring genericSliceSerializer).
func (s *genericMapSerializer) Read(f *Fory, buf *ByteBuffer) reflect.Value {
	out, n := s.readHeader(buf)
	s.readBody(f, buf, out, n)
	return out
}

func (s *genericMapSerializer) readHeader(buf *ByteBuffer) (reflect.Value, int) {
	n := int(buf.ReadVarUint32())
	buf.ReadByte_()
	kt, vt := s.keyType, s.valueType
	if kt == nil {
		kt = interfaceType
	}
	if vt == nil {
		vt = interfaceType
	}
	return reflect.MakeMapWithSize(reflect.MapOf(kt, vt), n), n
}

func (s *genericMapSerializer) readBody(f *Fory, buf *ByteBuffer, out reflect.Value, n int) {
	keyFinal := s.keyType != nil && !isDynamicType(s.keyType)
	valFinal := s.valueType != nil && !isDynamicType(s.valueType)
	kt, vt := out.Type().Key(), out.Type().Elem()

	var keyInfo, valInfo *ClassInfo
	if keyFinal {
		keyInfo = f.classResolver.classInfoFor(s.keyType)
	}
	if valFinal {
		valInfo = f.classResolver.classInfoFor(s.valueType)
	}

	for i := 0; i < n; i++ {
		var k, val reflect.Value
		if keyFinal {
			if needsElementRefFlag(s.keyType) {
				k = readValueWithRefFlag(f, buf, s.keyType)
			} else {
				k = keyInfo.Serializer.Read(f, buf)
			}
		} else {
			k = readReferencable(f, buf)
		}
		if valFinal {
			if needsElementRefFlag(s.valueType) {
				val = readValueWithRefFlag(f, buf, s.valueType)
			} else {
				val = valInfo.Serializer.Read(f, buf)
			}
		} else {
			val = readReferencable(f, buf)
		}
		if !k.IsValid() || !val.IsValid() {
			continue
		}
		out.SetMapIndex(convertForAssign(k, kt), convertForAssign(val, vt))
	}
}

func unwrapInterface(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Interface {
		return v.Elem()
	}
	return v
}

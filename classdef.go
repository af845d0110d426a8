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

	"github.com/spaolacci/murmur3"
)

// fieldTypeKind is the four-variant tagged union from §4.5.
type fieldTypeKind int

const (
	ftObject     fieldTypeKind = iota // 0
	ftMap                             // 1
	ftCollection                      // 2
	ftRegistered                      // 3 + class_id
)

// FieldType is the schema shape of one struct field, recursing through
// Collection/Map nesting (§3 "Nested generics are expressed by recursion").
type FieldType struct {
	Kind        fieldTypeKind
	ClassID     int32
	Monomorphic bool
	Element     *FieldType // Collection
	Key, Value  *FieldType // Map
}

// ClassDefField is one row of a Class Definition's field list (§4.5).
type ClassDefField struct {
	DeclaringClass string
	FieldName      string
	FieldType      *FieldType
}

// ClassDefinition is the portable schema record COMPATIBLE mode ships
// through the Meta Context (§3, §4.5). ID is a content hash so two peers
// with identical schemas dedupe to the same definition.
type ClassDefinition struct {
	ClassName   string
	Fields      []ClassDefField
	ExtMeta     []byte
	ID          uint64
	EncodedBlob []byte
}

const classDefFlagSchemaCompatible = 1 << 0

func buildFieldType(t reflect.Type, resolver *classResolver) *FieldType {
	mono := monomorphic(t)
	switch t.Kind() {
	case reflect.Map:
		return &FieldType{Kind: ftMap, Monomorphic: mono,
			Key:   buildFieldType(t.Key(), resolver),
			Value: buildFieldType(t.Elem(), resolver)}
	case reflect.Slice, reflect.Array:
		return &FieldType{Kind: ftCollection, Monomorphic: mono, Element: buildFieldType(t.Elem(), resolver)}
	case reflect.Interface:
		return &FieldType{Kind: ftObject, Monomorphic: false}
	default:
		info := resolver.classInfoFor(t)
		id := info.ClassID
		if id == 0 && info.Serializer != nil {
			id = info.Serializer.TypeID()
		}
		return &FieldType{Kind: ftRegistered, ClassID: id, Monomorphic: mono}
	}
}

// encodeFieldType writes one varuint whose low bit is is_monomorphic and
// whose upper bits encode the variant (§4.5), recursing for Map/Collection.
func encodeFieldType(buf *ByteBuffer, ft *FieldType) {
	var tag uint32
	switch ft.Kind {
	case ftObject:
		tag = 0
	case ftMap:
		tag = 1
	case ftCollection:
		tag = 2
	case ftRegistered:
		tag = uint32(3 + ft.ClassID)
	}
	mono := uint32(0)
	if ft.Monomorphic {
		mono = 1
	}
	buf.WriteVarUint32((tag << 1) | mono)
	switch ft.Kind {
	case ftMap:
		encodeFieldType(buf, ft.Key)
		encodeFieldType(buf, ft.Value)
	case ftCollection:
		encodeFieldType(buf, ft.Element)
	}
}

func decodeFieldType(buf *ByteBuffer) *FieldType {
	header := buf.ReadVarUint32()
	mono := header&1 == 1
	tag := header >> 1
	switch {
	case tag == 0:
		return &FieldType{Kind: ftObject, Monomorphic: mono}
	case tag == 1:
		key := decodeFieldType(buf)
		val := decodeFieldType(buf)
		return &FieldType{Kind: ftMap, Monomorphic: mono, Key: key, Value: val}
	case tag == 2:
		elem := decodeFieldType(buf)
		return &FieldType{Kind: ftCollection, Monomorphic: mono, Element: elem}
	default:
		return &FieldType{Kind: ftRegistered, ClassID: int32(tag - 3), Monomorphic: mono}
	}
}

func buildClassDefinition(t reflect.Type, className string, resolver *classResolver) *ClassDefinition {
	group := buildFieldGroup(t, className)
	slots := group.All()
	fields := make([]ClassDefField, len(slots))
	for i, slot := range slots {
		fields[i] = ClassDefField{
			DeclaringClass: slot.DeclaringClass,
			FieldName:      slot.Name,
			FieldType:      buildFieldType(slot.Type, resolver),
		}
	}
	cd := &ClassDefinition{ClassName: className, Fields: fields}
	cd.EncodedBlob = encodeClassDefinitionBlob(cd)
	cd.ID = contentHash(cd.EncodedBlob)
	return cd
}

// encodeClassDefinitionBlob lays out `header_word | fields[] | ext_meta`
// (§4.5): a 4-byte header packing flags in the low 3 bits and the body
// length in the rest, followed by the class name, the field list, and any
// extension metadata.
func encodeClassDefinitionBlob(cd *ClassDefinition) []byte {
	body := NewByteBuffer(nil)
	writeStringAs(body, cd.ClassName, encodingUTF8)
	body.WriteVarUint32(uint32(len(cd.Fields)))
	for _, fld := range cd.Fields {
		writeStringAs(body, fld.DeclaringClass, encodingUTF8)
		writeStringAs(body, fld.FieldName, encodingUTF8)
		encodeFieldType(body, fld.FieldType)
	}
	body.WriteVarUint32(uint32(len(cd.ExtMeta)))
	body.WriteBinary(cd.ExtMeta)
	bodyBytes := append([]byte{}, body.GetByteSlice(0, body.WriterIndex())...)

	headerWord := (uint32(len(bodyBytes)) << 3) | classDefFlagSchemaCompatible
	out := NewByteBuffer(nil)
	out.WriteInt32(int32(headerWord))
	out.WriteBinary(bodyBytes)
	return out.GetByteSlice(0, out.WriterIndex())
}

func decodeClassDefinitionBlob(blob []byte) *ClassDefinition {
	head := NewByteBuffer(blob[:4])
	_ = uint32(head.ReadInt32()) // header word: length is redundant with len(blob)-4 here

	body := NewByteBuffer(blob[4:])
	className := readString(body)
	n := int(body.ReadVarUint32())
	fields := make([]ClassDefField, n)
	for i := 0; i < n; i++ {
		decl := readString(body)
		name := readString(body)
		ft := decodeFieldType(body)
		fields[i] = ClassDefField{DeclaringClass: decl, FieldName: name, FieldType: ft}
	}
	extLen := int(body.ReadVarUint32())
	ext := body.ReadBinary(extLen)
	return &ClassDefinition{ClassName: className, Fields: fields, ExtMeta: ext}
}

func contentHash(blob []byte) uint64 { return murmur3.Sum64(blob) }

// metaContext is the per-session dedup table for Class Definitions (§3, §4.5
// "Meta Context"). When Config.ShareMetaContext is set, a Fory instance
// keeps it across calls instead of clearing it every session.
type metaContext struct {
	defs      []*ClassDefinition
	idToIndex map[uint64]int32
}

func newMetaContext() *metaContext {
	return &metaContext{idToIndex: make(map[uint64]int32)}
}

func (m *metaContext) reset() {
	if len(m.defs) > 0 {
		m.defs = nil
	}
	if len(m.idToIndex) > 0 {
		m.idToIndex = make(map[uint64]int32)
	}
}

func (m *metaContext) writeClassDef(buf *ByteBuffer, cd *ClassDefinition) {
	if idx, ok := m.idToIndex[cd.ID]; ok {
		buf.WriteVarUint32(uint32(idx) + 1)
		return
	}
	buf.WriteVarUint32(0)
	buf.WriteVarUint32(uint32(len(cd.EncodedBlob)))
	buf.WriteBinary(cd.EncodedBlob)
	idx := int32(len(m.defs))
	m.defs = append(m.defs, cd)
	m.idToIndex[cd.ID] = idx
}

func (m *metaContext) readClassDef(buf *ByteBuffer) *ClassDefinition {
	marker := buf.ReadVarUint32()
	if marker == 0 {
		n := int(buf.ReadVarUint32())
		blob := buf.ReadBinary(n)
		cd := decodeClassDefinitionBlob(blob)
		cd.EncodedBlob = blob
		cd.ID = contentHash(blob)
		m.defs = append(m.defs, cd)
		return cd
	}
	idx := int(marker - 1)
	return m.defs[idx]
}

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

// structSerializer is the Generic Object Serializer from §4.7: it writes
// and reads a struct's fields in the six-group order the Descriptor
// Grouper produces, optionally preceded by a class-version hash
// (SchemaConsistent mode) or a full Class Definition (Compatible mode).
type structSerializer struct {
	resolver *classResolver
	type_    reflect.Type
	tag      string

	fieldGroup       *FieldGroup
	classDef         *ClassDefinition
	classVersionHash uint32
}

func (ss *structSerializer) build() {
	ss.fieldGroup = buildFieldGroup(ss.type_, ss.tag)
	ss.classDef = buildClassDefinition(ss.type_, ss.tag, ss.resolver)
	ss.classVersionHash = uint32(contentHash(ss.classDef.EncodedBlob))
}

func (ss *structSerializer) TypeID() int32 { return 0 }

func (ss *structSerializer) Write(f *Fory, buf *ByteBuffer, v reflect.Value) {
	if f.config.CompatibleMode == Compatible {
		f.metaContext.writeClassDef(buf, ss.classDef)
	} else if f.config.CheckClassVersion && !f.config.suppressClassVersionHash() {
		buf.WriteInt32(int32(ss.classVersionHash))
	}
	ss.writeFields(f, buf, v, ss.fieldGroup.All())
}

func (ss *structSerializer) Read(f *Fory, buf *ByteBuffer) reflect.Value {
	instance := reflect.New(ss.type_).Elem()
	ss.readInto(f, buf, instance)
	return instance
}

// readInto decodes onto an already-allocated struct value. Splitting this
// out of Read lets readValueWithRefFlag and readReferencable register a
// pointer's reference id *before* its fields are decoded, so a self-referencing field resolves to
// the same pointer instead of recursing forever (§9 "Cycles and
// back-references").
func (ss *structSerializer) readInto(f *Fory, buf *ByteBuffer, instance reflect.Value) {
	if f.config.CompatibleMode == Compatible {
		cd := f.metaContext.readClassDef(buf)
		ss.readFieldsCompatible(f, buf, instance, cd)
		return
	}
	if f.config.CheckClassVersion && !f.config.suppressClassVersionHash() {
		got := uint32(buf.ReadInt32())
		if got != ss.classVersionHash {
			panic(errClassVersionMismatch(buf.ReaderIndex(), ss.classVersionHash, got))
		}
	}
	ss.readFields(f, buf, instance, ss.fieldGroup.All())
}

func (ss *structSerializer) writeFields(f *Fory, buf *ByteBuffer, v reflect.Value, slots []fieldSlot) {
	for _, slot := range slots {
		writeFieldSlot(f, buf, v.FieldByIndex(slot.Index), slot.Group)
	}
}

func (ss *structSerializer) readFields(f *Fory, buf *ByteBuffer, instance reflect.Value, slots []fieldSlot) {
	for _, slot := range slots {
		val := readFieldSlot(f, buf, slot.Group, slot.Type)
		assignField(instance.FieldByIndex(slot.Index), val)
	}
}

// readFieldsCompatible decodes in the order the writer's Class Definition
// describes (cd.Fields), not this reader's own field order (§4.5, §6): a
// field present in cd but absent from the local struct is decoded and
// discarded; a local field absent from cd keeps its zero value.
func (ss *structSerializer) readFieldsCompatible(f *Fory, buf *ByteBuffer, instance reflect.Value, cd *ClassDefinition) {
	localByName := make(map[string]fieldSlot, len(ss.fieldGroup.All()))
	for _, slot := range ss.fieldGroup.All() {
		localByName[slot.DeclaringClass+"."+slot.Name] = slot
	}
	for _, wireField := range cd.Fields {
		key := wireField.DeclaringClass + "." + wireField.FieldName
		slot, ok := localByName[key]
		if !ok {
			genericDecodeByFieldType(f, buf, wireField.FieldType)
			continue
		}
		val := readFieldSlot(f, buf, slot.Group, slot.Type)
		assignField(instance.FieldByIndex(slot.Index), val)
	}
}

func assignField(dst reflect.Value, val reflect.Value) {
	if !val.IsValid() {
		return
	}
	dst.Set(convertForAssign(val, dst.Type()))
}

// writeFieldSlot writes one struct field's wire representation per §4.7,
// dispatching on the group the Descriptor Grouper assigned it.
func writeFieldSlot(f *Fory, buf *ByteBuffer, fv reflect.Value, group fieldGroupKind) {
	switch group {
	case groupPrimitive:
		writeScalar(buf, fv, f.config.CompressNumber)
	case groupBoxed, groupFinalRef:
		writeValueWithRefFlag(f, buf, fv)
	case groupOther:
		writeReferencable(f, buf, fv)
	case groupCollection:
		info := f.classResolver.classInfoFor(fv.Type())
		f.pushGeneric(fv.Type().Elem())
		info.Serializer.Write(f, buf, fv)
		f.popGeneric()
	case groupMap:
		info := f.classResolver.classInfoFor(fv.Type())
		info.Serializer.Write(f, buf, fv)
	}
}

// readFieldSlot is the exact inverse of writeFieldSlot for a field whose
// static type is known locally.
func readFieldSlot(f *Fory, buf *ByteBuffer, group fieldGroupKind, fieldType reflect.Type) reflect.Value {
	switch group {
	case groupPrimitive:
		return readScalar(buf, fieldType.Kind(), f.config.CompressNumber)
	case groupBoxed, groupFinalRef:
		return readValueWithRefFlag(f, buf, fieldType)
	case groupOther:
		return readReferencable(f, buf)
	case groupCollection, groupMap:
		info := f.classResolver.classInfoFor(fieldType)
		return info.Serializer.Read(f, buf)
	}
	return reflect.Value{}
}

// writeValueWithRefFlag is the shared body of groups 2 and 3 (§4.6): a
// ref-or-null flag (or plain nullability flag when the type opts out of
// tracking), then the body for a newly-seen value.
func writeValueWithRefFlag(f *Fory, buf *ByteBuffer, fv reflect.Value) {
	info := f.classResolver.classInfoFor(fv.Type())
	var complete bool
	if f.config.needsRefTracking(info) {
		complete = f.refResolver.WriteRefOrNull(buf, fv)
	} else {
		complete = f.refResolver.WriteNullFlag(buf, fv)
	}
	if complete {
		return
	}
	info.Serializer.Write(f, buf, fv)
}

// readValueWithRefFlag mirrors writeValueWithRefFlag. When t is a pointer
// to a registered struct, the pointee is allocated and registered under its
// reference id before its fields are decoded, so a cycle back through this
// same pointer resolves instead of recursing (§9 "Cycles and
// back-references").
func readValueWithRefFlag(f *Fory, buf *ByteBuffer, t reflect.Type) reflect.Value {
	info := f.classResolver.classInfoFor(t)
	id := f.refResolver.TryPreserveRefID(buf)
	switch id {
	case int32(NullFlag):
		return reflect.Zero(t)
	case int32(RefFlag):
		return reflect.ValueOf(f.refResolver.GetReadObject())
	}
	if ptrSS, ok := info.Serializer.(*ptrToStructSerializer); ok {
		ptr := reflect.New(ptrSS.type_)
		if id >= 0 {
			f.refResolver.SetReadObject(id, ptr.Interface())
		}
		ptrSS.readInto(f, buf, ptr.Elem())
		return ptr
	}
	val := info.Serializer.Read(f, buf)
	if id >= 0 {
		f.refResolver.SetReadObject(id, val.Interface())
	}
	return val
}

// ptrToStructSerializer adapts structSerializer to a *T registration
// (RegisterTagType registers both T and *T, per the teacher's negative-id
// convention in type.go).
type ptrToStructSerializer struct {
	*structSerializer
}

func (p *ptrToStructSerializer) TypeID() int32 { return 0 }

func (p *ptrToStructSerializer) Write(f *Fory, buf *ByteBuffer, v reflect.Value) {
	p.structSerializer.Write(f, buf, v.Elem())
}

func (p *ptrToStructSerializer) Read(f *Fory, buf *ByteBuffer) reflect.Value {
	ptr := reflect.New(p.type_)
	p.structSerializer.readInto(f, buf, ptr.Elem())
	return ptr
}

// genericDecodeByFieldType decodes one COMPATIBLE-mode field using the
// wire's own schema description rather than a local Go type — used both
// when no local field matches (the value is discarded) and, via
// typeForFieldType, to pick a concrete representation when the caller does
// want to keep it.
func genericDecodeByFieldType(f *Fory, buf *ByteBuffer, ft *FieldType) reflect.Value {
	switch ft.Kind {
	case ftObject:
		return readReferencable(f, buf)
	case ftRegistered:
		t := f.classResolver.typeForFieldType(ft)
		if t == interfaceType {
			return readReferencable(f, buf)
		}
		if isBasicScalarType(t) {
			return readScalar(buf, t.Kind(), f.config.CompressNumber)
		}
		return readValueWithRefFlag(f, buf, t)
	case ftCollection:
		return genericDecodeCollection(f, buf, ft)
	case ftMap:
		return genericDecodeMap(f, buf, ft)
	}
	return reflect.Value{}
}

func genericDecodeCollection(f *Fory, buf *ByteBuffer, ft *FieldType) reflect.Value {
	n := int(buf.ReadVarUint32())
	buf.ReadByte_()
	elemType := f.classResolver.typeForFieldType(ft.Element)
	out := reflect.MakeSlice(reflect.SliceOf(elemType), n, n)
	monoElem := ft.Element.Kind != ftObject && ft.Element.Monomorphic
	for i := 0; i < n; i++ {
		var val reflect.Value
		if monoElem {
			val = genericDecodeByFieldType(f, buf, ft.Element)
		} else {
			val = readReferencable(f, buf)
		}
		if val.IsValid() {
			out.Index(i).Set(convertForAssign(val, elemType))
		}
	}
	return out
}

func genericDecodeMap(f *Fory, buf *ByteBuffer, ft *FieldType) reflect.Value {
	n := int(buf.ReadVarUint32())
	buf.ReadByte_()
	kt := f.classResolver.typeForFieldType(ft.Key)
	vt := f.classResolver.typeForFieldType(ft.Value)
	out := reflect.MakeMapWithSize(reflect.MapOf(kt, vt), n)
	keyMono := ft.Key.Kind != ftObject && ft.Key.Monomorphic
	valMono := ft.Value.Kind != ftObject && ft.Value.Monomorphic
	for i := 0; i < n; i++ {
		var k, v reflect.Value
		if keyMono {
			k = genericDecodeByFieldType(f, buf, ft.Key)
		} else {
			k = readReferencable(f, buf)
		}
		if valMono {
			v = genericDecodeByFieldType(f, buf, ft.Value)
		} else {
			v = readReferencable(f, buf)
		}
		out.SetMapIndex(convertForAssign(k, kt), convertForAssign(v, vt))
	}
	return out
}

// typeForFieldType reconstructs a concrete reflect.Type from a wire
// FieldType when no local field supplies one (§4.5 "Compatible mode").
func (r *classResolver) typeForFieldType(ft *FieldType) reflect.Type {
	switch ft.Kind {
	case ftObject:
		return interfaceType
	case ftCollection:
		return reflect.SliceOf(r.typeForFieldType(ft.Element))
	case ftMap:
		return reflect.MapOf(r.typeForFieldType(ft.Key), r.typeForFieldType(ft.Value))
	case ftRegistered:
		if t, ok := r.registeredIDToType[ft.ClassID]; ok {
			return t
		}
		if t, ok := r.builtinIDToType[ft.ClassID]; ok {
			return t
		}
		return interfaceType
	}
	return interfaceType
}

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
	"strings"
)

// classResolver implements §4.4: bidirectional mapping between a runtime
// type and either a pre-registered small id, or a structured name written
// on first sight and replayed by a session-local index afterward.
type classResolver struct {
	config *Config

	// process-persistent: pre-registered types (§3 "Lifecycle").
	registeredIDToType map[int32]reflect.Type
	registeredTypeToID map[reflect.Type]int32
	typeToName         map[reflect.Type]string // "pkg.Name" tag from RegisterTagType
	nameToType         map[string]reflect.Type
	nextAutoID         int32

	// process-persistent cache, built lazily (§3 "Class Info ... cached
	// process-wide where the registry is process-wide").
	classInfoCache map[reflect.Type]*ClassInfo

	// session-local: names assigned dynamically on this stream only.
	dynamicTypeToIndex map[reflect.Type]int32
	dynamicIndexToType []reflect.Type

	builtins       map[reflect.Type]Serializer
	builtinIDToType map[int32]reflect.Type

	placeholderType reflect.Type
	// lastUnknownClassName is the best-effort name readClass resolved for
	// the most recent Placeholder substitution (empty for the registered-id
	// case, where no name was ever on the wire). readReferencable consumes
	// it immediately after the matching readClass call, so it only needs to
	// survive across that single call pair, never concurrently.
	lastUnknownClassName string
}

// Placeholder stands in for a class the receiver could not resolve when
// Config.DeserializeUnknownClass is set (§4.4, §7). Its serializer skips
// the body by recording the raw framed bytes and nothing else;
// re-serializing a Placeholder re-emits those bytes verbatim.
type Placeholder struct {
	ClassName string
	Raw       []byte
}

// placeholderSerializer backs Placeholder itself: Read consumes whatever is
// left in the length-framed body buffer handed to it by readReferencable
// (see dispatch.go), and Write re-emits Raw verbatim, so the body of an
// unresolved class survives a round trip through this peer. The class name
// it arrived under is not written back: the re-emitted frame names
// Placeholder.
type placeholderSerializer struct{}

func (placeholderSerializer) TypeID() int32 { return 0 }
func (placeholderSerializer) Write(f *Fory, buf *ByteBuffer, v reflect.Value) {
	ph := v.Interface().(Placeholder)
	buf.WriteBinary(ph.Raw)
}
func (placeholderSerializer) Read(f *Fory, buf *ByteBuffer) reflect.Value {
	raw := buf.ReadBinary(buf.Len())
	return reflect.ValueOf(Placeholder{Raw: raw})
}

func newClassResolver(cfg *Config) *classResolver {
	r := &classResolver{
		config:              cfg,
		registeredIDToType:  make(map[int32]reflect.Type),
		registeredTypeToID:  make(map[reflect.Type]int32),
		typeToName:          make(map[reflect.Type]string),
		nameToType:          make(map[string]reflect.Type),
		nextAutoID:          firstUserTypeID,
		classInfoCache:      make(map[reflect.Type]*ClassInfo),
		dynamicTypeToIndex:  make(map[reflect.Type]int32),
		builtins:            make(map[reflect.Type]Serializer),
		builtinIDToType:     make(map[int32]reflect.Type),
		placeholderType:     reflect.TypeOf(Placeholder{}),
	}
	r.registerBuiltins()
	r.classInfoCache[r.placeholderType] = &ClassInfo{
		Type:        r.placeholderType,
		TypeName:    "",
		Serializer:  placeholderSerializer{},
		Monomorphic: true,
	}
	return r
}

// registerBuiltins wires every built-in type into registeredTypeToID too
// (not just the builtins/builtinIDToType caches used for local dispatch),
// so the general dynamic-dispatch path (writeClass/readClass, used by
// top-level values, interface{} fields, and dynamically-typed collection
// elements) encodes a builtin the same compact way a user RegisterType call
// would, instead of falling through to the first-sight name path.
func (r *classResolver) registerBuiltins() {
	add := func(t reflect.Type, s Serializer, id int32) {
		r.builtins[t] = s
		if id == 0 {
			return
		}
		if _, ok := r.builtinIDToType[id]; !ok {
			r.builtinIDToType[id] = t
		}
		r.registeredTypeToID[t] = id
		if _, ok := r.registeredIDToType[id]; !ok {
			r.registeredIDToType[id] = t
		}
	}
	add(reflect.TypeOf(false), scalarSerializer{kind: reflect.Bool, id: typeIDBool}, typeIDBool)
	add(reflect.TypeOf(byte(0)), scalarSerializer{kind: reflect.Uint8, id: typeIDInt8}, typeIDInt8)
	add(reflect.TypeOf(int8(0)), scalarSerializer{kind: reflect.Int8, id: typeIDInt8}, typeIDInt8)
	add(reflect.TypeOf(int16(0)), scalarSerializer{kind: reflect.Int16, id: typeIDInt16}, typeIDInt16)
	add(reflect.TypeOf(int32(0)), scalarSerializer{kind: reflect.Int32, id: typeIDInt32, compress: true}, typeIDInt32)
	add(reflect.TypeOf(int(0)), scalarSerializer{kind: reflect.Int, id: typeIDInt32, compress: true}, typeIDInt32)
	add(reflect.TypeOf(int64(0)), scalarSerializer{kind: reflect.Int64, id: typeIDInt64, compress: true}, typeIDInt64)
	add(reflect.TypeOf(float32(0)), scalarSerializer{kind: reflect.Float32, id: typeIDFloat32}, typeIDFloat32)
	add(reflect.TypeOf(float64(0)), scalarSerializer{kind: reflect.Float64, id: typeIDFloat64}, typeIDFloat64)
	add(reflect.TypeOf(""), stringSerializer{}, typeIDString)
	add(timeType, timeSerializer{}, typeIDTime)

	// boxed primitives / boxed string (§4.6 group 2) take the negative-id
	// convention RegisterTagType uses for pointer-to-struct.
	for prim, id := range map[reflect.Type]int32{
		reflect.TypeOf(false):      typeIDBool,
		reflect.TypeOf(int8(0)):    typeIDInt8,
		reflect.TypeOf(int16(0)):   typeIDInt16,
		reflect.TypeOf(int32(0)):   typeIDInt32,
		reflect.TypeOf(int64(0)):   typeIDInt64,
		reflect.TypeOf(float32(0)): typeIDFloat32,
		reflect.TypeOf(float64(0)): typeIDFloat64,
		reflect.TypeOf(""):         typeIDString,
	} {
		elem := r.builtins[prim]
		add(reflect.PtrTo(prim), &ptrToValueSerializer{elem: elem}, -id)
	}

	add(byteSliceType, &byteSliceSerializer{}, typeIDBytes)
	add(boolSliceType, &primitiveSliceSerializer{elemKind: reflect.Bool, id: typeIDBoolSlice}, typeIDBoolSlice)
	add(int16SliceType, &primitiveSliceSerializer{elemKind: reflect.Int16, id: typeIDInt16Slice}, typeIDInt16Slice)
	add(int32SliceType, &primitiveSliceSerializer{elemKind: reflect.Int32, id: typeIDInt32Slice}, typeIDInt32Slice)
	add(int64SliceType, &primitiveSliceSerializer{elemKind: reflect.Int64, id: typeIDInt64Slice}, typeIDInt64Slice)
	add(float32SliceType, &primitiveSliceSerializer{elemKind: reflect.Float32, id: typeIDFloat32Slice}, typeIDFloat32Slice)
	add(float64SliceType, &primitiveSliceSerializer{elemKind: reflect.Float64, id: typeIDFloat64Slice}, typeIDFloat64Slice)
	add(stringSliceType, &genericSliceSerializer{elemType: stringType}, typeIDStringSlice)
	add(interfaceSliceType, &genericSliceSerializer{elemType: nil}, typeIDList)
	add(interfaceMapType, &genericMapSerializer{}, typeIDMap)
}

// RegisterType pre-binds a concrete (non-struct) type to a small integer id
// (§4.4(a)). Struct types use RegisterTagType instead since Go structs have
// no runtime-stable id without an explicit tag.
func (r *classResolver) RegisterType(id int32, example interface{}) error {
	t := reflect.TypeOf(example)
	if prev, ok := r.registeredTypeToID[t]; ok {
		return newOffsetErr("ClassNotRegistered", 0, "type %s already registered with id %d", t, prev)
	}
	r.registeredIDToType[id] = t
	r.registeredTypeToID[t] = id
	return nil
}

// RegisterTagType binds a struct (or pointer-to-struct) type to a
// qualified name such as "example.A", the concrete shape §4.4 registration
// takes for Go structs, grounded in the teacher's RegisterTagType
// (fory_test.go) and registerType (type.go).
func (r *classResolver) RegisterTagType(tag string, example interface{}) error {
	t := reflect.TypeOf(example)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if _, ok := r.typeToName[t]; ok {
		return newOffsetErr("ClassNotRegistered", 0, "type %s already registered", t)
	}
	id := r.nextAutoID
	r.nextAutoID++
	r.registeredIDToType[id] = t
	r.registeredTypeToID[t] = id
	r.typeToName[t] = tag
	r.nameToType[tag] = t

	ptrT := reflect.PtrTo(t)
	r.registeredIDToType[-id] = ptrT
	r.registeredTypeToID[ptrT] = -id
	r.typeToName[ptrT] = tag

	ss := &structSerializer{resolver: r, type_: t, tag: tag}
	r.classInfoCache[t] = &ClassInfo{Type: t, ClassID: id, TypeName: tag, Serializer: ss, Monomorphic: true, NeedWriteDef: true}
	r.classInfoCache[ptrT] = &ClassInfo{Type: ptrT, ClassID: -id, TypeName: tag, Serializer: &ptrToStructSerializer{structSerializer: ss}, Monomorphic: true, NeedWriteDef: true}
	// build after the cache entries exist, so a field of type *T (or T
	// nested in a container) resolves to this registration.
	ss.build()
	return nil
}

func splitTag(tag string) (pkg, name string) {
	idx := strings.LastIndex(tag, ".")
	if idx < 0 {
		return "", tag
	}
	return tag[:idx], tag[idx+1:]
}

// monomorphic classifies a static type per the GLOSSARY: it cannot be
// subclassed/extended at runtime. In Go every concrete (non-interface) type
// is monomorphic; only interface{} (and named interface types) are
// polymorphic — the teacher's TestSliceTypeClassification pins a related
// rule for slices specifically (named slice types still aren't
// "primitive arrays" even though they're still monomorphic as Go types).
func monomorphic(t reflect.Type) bool {
	return t.Kind() != reflect.Interface
}

func isPrimitiveSliceOrArrayType(t reflect.Type) bool {
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
		return false
	}
	if t.Name() != "" {
		return false // named types take the general path, per type_test.go
	}
	switch t.Elem().Kind() {
	case reflect.Bool, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Float32, reflect.Float64, reflect.Uint8:
		return true
	default:
		return false
	}
}

// classInfoFor builds (and caches) the ClassInfo for a runtime type,
// creating serializers for composite types on demand (§3 "Built on
// demand").
func (r *classResolver) classInfoFor(t reflect.Type) *ClassInfo {
	if info, ok := r.classInfoCache[t]; ok {
		return info
	}
	info := &ClassInfo{Type: t, Monomorphic: monomorphic(t)}
	if id, ok := r.registeredTypeToID[t]; ok {
		info.ClassID = id
	}
	if name, ok := r.typeToName[t]; ok {
		info.TypeName = name
	}
	if s, ok := r.builtins[t]; ok {
		info.Serializer = s
		info.IsBasicType = isBasicScalarType(t)
		info.IsString = t == stringType
		info.IsTime = t == timeType
		r.classInfoCache[t] = info
		return info
	}
	info.Serializer = r.createSerializer(t)
	r.classInfoCache[t] = info
	return info
}

func isBasicScalarType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Uint8, reflect.Int16, reflect.Uint16,
		reflect.Int32, reflect.Uint32, reflect.Int, reflect.Uint, reflect.Int64, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// createSerializer builds a serializer for a type with no built-in and no
// explicit registration: pointers, slices, arrays, and maps are handled
// structurally; everything else must go through RegisterTagType.
func (r *classResolver) createSerializer(t reflect.Type) Serializer {
	switch t.Kind() {
	case reflect.Ptr:
		if t.Elem().Kind() == reflect.Ptr || t.Elem().Kind() == reflect.Interface {
			panic(newOffsetErr("ConstructionFailure", 0, "pointer to pointer/interface not supported: %s", t))
		}
		elemInfo := r.classInfoFor(t.Elem())
		return &ptrToValueSerializer{elem: elemInfo.Serializer}
	case reflect.Slice:
		elemInfo := r.elemInfoOrNil(t.Elem())
		return &genericSliceSerializer{elemType: elemInfoType(t.Elem(), elemInfo)}
	case reflect.Array:
		elemInfo := r.elemInfoOrNil(t.Elem())
		return &arraySerializer{arrayType: t, elemType: elemInfoType(t.Elem(), elemInfo)}
	case reflect.Map:
		return &genericMapSerializer{keyType: t.Key(), valueType: t.Elem()}
	case reflect.Struct:
		if info, ok := r.classInfoCache[t]; ok {
			return info.Serializer
		}
		panic(newOffsetErr("ClassNotRegistered", 0, "struct type %s must be registered with RegisterTagType", t))
	default:
		panic(newOffsetErr("ClassNotRegistered", 0, "unsupported type %s", t))
	}
}

func (r *classResolver) elemInfoOrNil(t reflect.Type) *ClassInfo {
	if isDynamicType(t) {
		return nil
	}
	return r.classInfoFor(t)
}

func elemInfoType(declared reflect.Type, info *ClassInfo) reflect.Type {
	if info == nil {
		return nil
	}
	return declared
}

func isDynamicType(t reflect.Type) bool {
	return t.Kind() == reflect.Interface ||
		(t.Kind() == reflect.Ptr && (t.Elem().Kind() == reflect.Ptr || t.Elem().Kind() == reflect.Interface))
}

// --- wire encoding of a class reference (§4.4(b), §6 "Class reference") ---

// writeClass encodes either a registered id or a first-sight/indexed name,
// with the low bit distinguishing the two: 0 => registered id (value>>1),
// 1 => dynamic (value==0 means first sight, followed by the name; value>0
// means session index value-1).
func (r *classResolver) writeClass(buf *ByteBuffer, t reflect.Type) {
	if id, ok := r.registeredTypeToID[t]; ok {
		buf.WriteVarUint32(uint32(int32ToZigzagish(id)) << 1)
		return
	}
	if r.config.ClassRegistrationRequired {
		panic(newOffsetErr("ClassNotRegistered", buf.WriterIndex(), "type %s has no registered id", t))
	}
	if idx, ok := r.dynamicTypeToIndex[t]; ok {
		buf.WriteVarUint32((uint32(idx+1) << 1) | 1)
		return
	}
	buf.WriteVarUint32(1) // (0 << 1) | 1: first sight
	pkg, name := splitTag(t.String())
	writeString(buf, pkg, r.config.CompressString)
	writeString(buf, name, r.config.CompressString)
	idx := int32(len(r.dynamicIndexToType))
	r.dynamicTypeToIndex[t] = idx
	r.dynamicIndexToType = append(r.dynamicIndexToType, t)
}

// int32ToZigzagish keeps the pointer-type negative-id convention (used by
// RegisterTagType for *T) representable in an unsigned varuint header; we
// only need round-tripping, not a compact encoding, since class ids are
// few and small.
func int32ToZigzagish(id int32) uint32 { return zigzag32(id) }
func zigzagishToInt32(v uint32) int32  { return unzigzag32(v) }

func (r *classResolver) readClass(buf *ByteBuffer) (reflect.Type, error) {
	r.lastUnknownClassName = ""
	header := buf.ReadVarUint32()
	dynamic := header&1 == 1
	value := header >> 1
	if !dynamic {
		id := zigzagishToInt32(value)
		t, ok := r.registeredIDToType[id]
		if !ok {
			if r.config.DeserializeUnknownClass && !r.config.SecureModeEnabled {
				return r.placeholderType, nil
			}
			return nil, errClassNotRegistered(buf.ReaderIndex(), id)
		}
		if r.config.SecureModeEnabled {
			if _, ok := r.typeToName[t]; !ok {
				if _, ok := r.registeredTypeToID[t]; !ok {
					return nil, errInsecureType(buf.ReaderIndex(), t.String())
				}
			}
		}
		return t, nil
	}
	if value == 0 {
		pkg := readString(buf)
		name := readString(buf)
		full := name
		if pkg != "" {
			full = pkg + "." + name
		}
		t, ok := r.nameToType[full]
		if !ok {
			if r.config.DeserializeUnknownClass && !r.config.SecureModeEnabled {
				r.lastUnknownClassName = full
				r.dynamicIndexToType = append(r.dynamicIndexToType, r.placeholderType)
				return r.placeholderType, nil
			}
			return nil, errUnknownClassName(buf.ReaderIndex(), pkg, name)
		}
		r.dynamicIndexToType = append(r.dynamicIndexToType, t)
		return t, nil
	}
	idx := int(value - 1)
	if idx < 0 || idx >= len(r.dynamicIndexToType) {
		return nil, errUnknownClassName(buf.ReaderIndex(), "", "<session index out of range>")
	}
	return r.dynamicIndexToType[idx], nil
}

func (r *classResolver) resetSession() {
	if len(r.dynamicTypeToIndex) > 0 {
		r.dynamicTypeToIndex = make(map[reflect.Type]int32)
	}
	if len(r.dynamicIndexToType) > 0 {
		r.dynamicIndexToType = r.dynamicIndexToType[:0]
	}
}

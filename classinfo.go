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

// Serializer is the dynamic-dispatch contract consumed by the Generic
// Object/Collection/Map Serializers (§9 "Dynamic dispatch for
// serializers"): a pair of write/read functions keyed by runtime type in
// the Class Resolver's registry. Panicking on error mirrors ByteBuffer —
// callers at the session boundary recover.
type Serializer interface {
	// TypeID returns this serializer's built-in type id, or 0 if it only
	// applies to a specific registered/named class.
	TypeID() int32
	// Write encodes v's body (the caller has already handled the
	// ref-or-null flag where applicable).
	Write(f *Fory, buf *ByteBuffer, v reflect.Value)
	// Read decodes one value of this serializer's type.
	Read(f *Fory, buf *ByteBuffer) reflect.Value
}

// containerSerializer is implemented by the slice and map serializers that
// can themselves be the target of a self-reference (§4.8, §4.9 "Reader
// materializes the target collection ... reserves a reference id for
// itself before reading elements"). readReferencable allocates the empty
// container via readHeader, registers its identity, then calls readBody —
// the same reserve-before-recurse shape readValueWithRefFlag (struct.go)
// already uses for pointer-to-struct cycles.
type containerSerializer interface {
	readHeader(buf *ByteBuffer) (reflect.Value, int)
	readBody(f *Fory, buf *ByteBuffer, out reflect.Value, n int)
}

// ClassInfo is the per-type cache entry described in §3: a pre-registered
// or session-discovered integer id, the qualified name used on the wire
// before an id exists, the serializer to dispatch to, and the policy bits
// the Reference Resolver and Generic Object Serializer both consult.
type ClassInfo struct {
	Type         reflect.Type
	ClassID      int32
	TypeName     string
	Serializer   Serializer
	Monomorphic  bool
	IsBasicType  bool
	IsString     bool
	IsTime       bool
	NeedWriteDef bool // set for RegisterTagType structs; structSerializer checks Config.CompatibleMode, not this flag
}

// Built-in type ids, analogous to the teacher's TypeId table (type.go) but
// scoped to what this core actually serializes. RegisterTagType assigns its
// automatic ids from firstUserTypeID upward so they never collide with a
// built-in; RegisterType takes whatever id the caller passes.
const (
	typeIDBool int32 = 1 + iota
	typeIDInt8
	typeIDInt16
	typeIDInt32
	typeIDInt64
	typeIDFloat32
	typeIDFloat64
	typeIDString
	typeIDBytes
	typeIDBoolSlice
	typeIDInt16Slice
	typeIDInt32Slice
	typeIDInt64Slice
	typeIDFloat32Slice
	typeIDFloat64Slice
	typeIDStringSlice
	typeIDList
	typeIDSet
	typeIDMap
	typeIDTime

	firstUserTypeID int32 = 64
)

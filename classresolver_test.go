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
	"testing"

	"github.com/stretchr/testify/require"
)

type sampleA struct {
	X int32
}

func TestRegisterTypeAndLookup(t *testing.T) {
	cfg := NewConfig()
	r := newClassResolver(cfg)
	require.NoError(t, r.RegisterType(100, uint32(0)))
	id, ok := r.registeredTypeToID[reflect.TypeOf(uint32(0))]
	require.True(t, ok)
	require.Equal(t, int32(100), id)
}

func TestRegisterTypeRejectsDuplicate(t *testing.T) {
	cfg := NewConfig()
	r := newClassResolver(cfg)
	require.NoError(t, r.RegisterType(100, uint32(0)))
	require.Error(t, r.RegisterType(101, uint32(0)))
}

func TestRegisterTagTypeRegistersValueAndPointer(t *testing.T) {
	cfg := NewConfig()
	r := newClassResolver(cfg)
	require.NoError(t, r.RegisterTagType("example.A", sampleA{}))

	valT := reflect.TypeOf(sampleA{})
	ptrT := reflect.PtrTo(valT)

	valID, ok := r.registeredTypeToID[valT]
	require.True(t, ok)
	ptrID, ok := r.registeredTypeToID[ptrT]
	require.True(t, ok)
	require.Equal(t, -valID, ptrID)
}

func TestWriteClassReadClassRegisteredID(t *testing.T) {
	cfg := NewConfig()
	r := newClassResolver(cfg)
	require.NoError(t, r.RegisterType(42, uint32(0)))

	buf := NewByteBuffer(nil)
	r.writeClass(buf, reflect.TypeOf(uint32(0)))

	read := NewByteBuffer(buf.GetByteSlice(0, buf.WriterIndex()))
	got, err := r.readClass(read)
	require.NoError(t, err)
	require.Equal(t, reflect.TypeOf(uint32(0)), got)
}

func TestWriteClassReadClassDynamicNameFirstSightThenIndexed(t *testing.T) {
	cfg := NewConfig()
	r := newClassResolver(cfg)
	require.NoError(t, r.RegisterTagType("example.A", sampleA{}))
	// force the dynamic (unregistered) path by writing a type never
	// registered with RegisterType/RegisterTagType
	type unregistered struct{ Y int32 }
	ut := reflect.TypeOf(unregistered{})

	buf := NewByteBuffer(nil)
	r.writeClass(buf, ut)
	r.writeClass(buf, ut)

	r2 := newClassResolver(cfg)
	read := NewByteBuffer(buf.GetByteSlice(0, buf.WriterIndex()))
	t1, err := r2.readClass(read)
	require.NoError(t, err)
	require.Equal(t, ut, t1)
	t2, err := r2.readClass(read)
	require.NoError(t, err)
	require.Equal(t, ut, t2)
}

func TestMonomorphic(t *testing.T) {
	require.True(t, monomorphic(reflect.TypeOf(sampleA{})))
	require.True(t, monomorphic(reflect.TypeOf(int32(0))))
	require.False(t, monomorphic(interfaceType))
}

// Grounded on the teacher's TestSliceTypeClassification (type_test.go): a
// *named* slice type takes the general collection path even when its
// element kind matches a primitive fast path.
func TestIsPrimitiveSliceOrArrayType(t *testing.T) {
	require.True(t, isPrimitiveSliceOrArrayType(reflect.TypeOf([]int32{})))
	require.True(t, isPrimitiveSliceOrArrayType(reflect.TypeOf([]byte{})))
	require.False(t, isPrimitiveSliceOrArrayType(reflect.TypeOf(Int16Slice{})))
	require.False(t, isPrimitiveSliceOrArrayType(reflect.TypeOf([]sampleA{})))
	require.False(t, isPrimitiveSliceOrArrayType(reflect.TypeOf(sampleA{})))
}

func TestClassInfoForBuiltinsCarriesPolicyFlags(t *testing.T) {
	cfg := NewConfig()
	r := newClassResolver(cfg)
	info := r.classInfoFor(reflect.TypeOf(int32(0)))
	require.True(t, info.IsBasicType)
	info = r.classInfoFor(stringType)
	require.True(t, info.IsString)
	info = r.classInfoFor(timeType)
	require.True(t, info.IsTime)
}

func TestCreateSerializerPanicsOnUnregisteredStruct(t *testing.T) {
	cfg := NewConfig()
	r := newClassResolver(cfg)
	require.Panics(t, func() { r.classInfoFor(reflect.TypeOf(sampleA{})) })
}

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

func TestClassDefinitionContentHashStableAcrossEquivalentSchemas(t *testing.T) {
	cfg := NewConfig()
	r := newClassResolver(cfg)
	require.NoError(t, r.RegisterTagType("example.A", sampleA{}))

	cd1 := buildClassDefinition(reflect.TypeOf(sampleA{}), "example.A", r)
	cd2 := buildClassDefinition(reflect.TypeOf(sampleA{}), "example.A", r)
	require.Equal(t, cd1.ID, cd2.ID)
	require.Equal(t, cd1.EncodedBlob, cd2.EncodedBlob)
}

func TestMetaContextDedupesRepeatedClassDefinition(t *testing.T) {
	cfg := NewConfig()
	r := newClassResolver(cfg)
	require.NoError(t, r.RegisterTagType("example.A", sampleA{}))
	cd := buildClassDefinition(reflect.TypeOf(sampleA{}), "example.A", r)

	buf := NewByteBuffer(nil)
	mc := newMetaContext()
	mc.writeClassDef(buf, cd)
	mc.writeClassDef(buf, cd)

	read := NewByteBuffer(buf.GetByteSlice(0, buf.WriterIndex()))
	mc2 := newMetaContext()
	got1 := mc2.readClassDef(read)
	got2 := mc2.readClassDef(read)
	require.Equal(t, cd.ClassName, got1.ClassName)
	require.Same(t, got1, got2)
}

// S6 — Schema drift: T1{A, B} serialized, T2{B, C} deserialized in
// COMPATIBLE mode. B is preserved, A is dropped, C defaults to zero. The two
// local Go types share a class name (the RegisterTagType tag) rather than a
// Go type name, mirroring how two peers on different library versions agree
// on a logical class name while their local struct shapes diverge.
type widgetV1 struct {
	A int32
	B string
}

type widgetV2 struct {
	B string
	C int64
}

func TestSchemaDriftCompatibleModeKeepsSharedFieldsOnly(t *testing.T) {
	sender := NewForyWithConfig(NewConfig(WithCompatibleMode(Compatible)))
	receiver := NewForyWithConfig(NewConfig(WithCompatibleMode(Compatible)))
	require.NoError(t, sender.RegisterTagType("example.Widget", widgetV1{}))
	require.NoError(t, receiver.RegisterTagType("example.Widget", widgetV2{}))

	data, err := sender.Marshal(widgetV1{A: 7, B: "hi"})
	require.NoError(t, err)

	var out widgetV2
	require.NoError(t, receiver.Unmarshal(data, &out))
	require.Equal(t, "hi", out.B)
	require.Equal(t, int64(0), out.C)
}

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

func TestWriteRefOrNullDedupesRepeatedPointer(t *testing.T) {
	r := newRefResolver(true)
	buf := NewByteBuffer(nil)

	n := 7
	v := reflect.ValueOf(&n)

	complete := r.WriteRefOrNull(buf, v)
	require.False(t, complete)
	require.Equal(t, RefValueFlag, int8(buf.GetByteSlice(0, 1)[0]))

	complete = r.WriteRefOrNull(buf, v)
	require.True(t, complete)
}

func TestWriteRefOrNullNilIsNullFlag(t *testing.T) {
	r := newRefResolver(true)
	buf := NewByteBuffer(nil)
	var p *int
	complete := r.WriteRefOrNull(buf, reflect.ValueOf(p))
	require.True(t, complete)
	require.Equal(t, NullFlag, int8(buf.GetByteSlice(0, 1)[0]))
}

func TestTryPreserveRefIDRoundTrip(t *testing.T) {
	w := newRefResolver(true)
	buf := NewByteBuffer(nil)
	n := 42
	v := reflect.ValueOf(&n)
	w.WriteRefOrNull(buf, v)
	w.WriteRefOrNull(buf, v)

	r := newRefResolver(true)
	read := NewByteBuffer(buf.GetByteSlice(0, buf.WriterIndex()))

	id := r.TryPreserveRefID(read)
	require.Equal(t, int32(0), id)
	r.SetReadObject(id, 42)

	id2 := r.TryPreserveRefID(read)
	require.Equal(t, int32(RefFlag), id2)
	require.Equal(t, 42, r.GetReadObject())
}

func TestIdentityPointerSharesStringData(t *testing.T) {
	s := "shared"
	a := s
	b := s
	pa := identityPointer(reflect.ValueOf(a))
	pb := identityPointer(reflect.ValueOf(b))
	require.NotNil(t, pa)
	require.Equal(t, pa, pb)
}

func TestIdentityPointerEmptyStringIsNil(t *testing.T) {
	require.Nil(t, identityPointer(reflect.ValueOf("")))
}

func TestResetClearsWriteTable(t *testing.T) {
	r := newRefResolver(true)
	buf := NewByteBuffer(nil)
	n := 1
	r.WriteRefOrNull(buf, reflect.ValueOf(&n))
	require.Len(t, r.writeTable, 1)
	r.reset()
	require.Len(t, r.writeTable, 0)
	require.Equal(t, int32(0), r.nextWriteID)
}

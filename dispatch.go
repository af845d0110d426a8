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

// writeReferencable is the general "other reference slot" path (§4.7): the
// standard ref-or-null flag, then (for a new value) a class id/name and the
// dispatched serializer body. It is also the path every top-level Marshal
// call and every dynamically-typed collection/map element takes.
func writeReferencable(f *Fory, buf *ByteBuffer, v reflect.Value) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			buf.WriteInt8(NullFlag)
			return
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Ptr && v.IsNil() {
		buf.WriteInt8(NullFlag)
		return
	}
	info := f.classResolver.classInfoFor(v.Type())
	var complete bool
	if f.config.needsRefTracking(info) {
		complete = f.refResolver.WriteRefOrNull(buf, v)
	} else {
		complete = f.refResolver.WriteNullFlag(buf, v)
	}
	if complete {
		return
	}
	f.classResolver.writeClass(buf, v.Type())
	// The body is framed behind its own length prefix so a peer that can't
	// resolve the class above (Config.DeserializeUnknownClass, §4.4/§7) can
	// still skip or retain exactly the right span of bytes without
	// understanding them — see placeholderSerializer in classresolver.go.
	body := NewByteBuffer(nil)
	info.Serializer.Write(f, body, v)
	raw := body.GetByteSlice(0, body.WriterIndex())
	buf.WriteVarUint32(uint32(len(raw)))
	buf.WriteBinary(raw)
}

// readReferencable is the exact inverse of writeReferencable.
func readReferencable(f *Fory, buf *ByteBuffer) reflect.Value {
	id := f.refResolver.TryPreserveRefID(buf)
	switch id {
	case int32(NullFlag):
		return reflect.Value{}
	case int32(RefFlag):
		obj := f.refResolver.GetReadObject()
		return reflect.ValueOf(obj)
	}
	t, err := f.classResolver.readClass(buf)
	if err != nil {
		panic(err)
	}
	info := f.classResolver.classInfoFor(t)
	n := int(buf.ReadVarUint32())
	body := NewByteBuffer(buf.ReadBinary(n))

	var val reflect.Value
	if cs, ok := info.Serializer.(containerSerializer); ok {
		// Reserve the container's own reference id against the freshly
		// allocated (still empty) slice/map before recursing into its
		// elements, so a self-referencing element resolves to this same
		// instance instead of an empty placeholder (§8 cycle preservation).
		out, n2 := cs.readHeader(body)
		if id >= 0 {
			f.refResolver.SetReadObject(id, out.Interface())
		}
		cs.readBody(f, body, out, n2)
		val = out
	} else if ptrSS, ok := info.Serializer.(*ptrToStructSerializer); ok {
		// Same reserve-before-recurse for a pointer to a registered struct,
		// so a field pointing back at it resolves to this pointer.
		ptr := reflect.New(ptrSS.type_)
		if id >= 0 {
			f.refResolver.SetReadObject(id, ptr.Interface())
		}
		ptrSS.readInto(f, body, ptr.Elem())
		val = ptr
	} else {
		val = info.Serializer.Read(f, body)
		if t == f.classResolver.placeholderType {
			ph := val.Interface().(Placeholder)
			ph.ClassName = f.classResolver.lastUnknownClassName
			val = reflect.ValueOf(ph)
		}
		if id >= 0 {
			f.refResolver.SetReadObject(id, val.Interface())
		}
	}
	return val
}

// pushGeneric/popGeneric implement the Generics Stack (§3, §4.7
// "Collection/map slot"): genericSliceSerializer.Write and a struct's
// collection-field write push the static element type before descending
// and pop it on the way back up. Map writes and all reads push nothing, and
// nothing reads the stack: currentGeneric has no caller, since the
// collection/map serializers carry their element types explicitly.
func (f *Fory) pushGeneric(t reflect.Type) { f.genericsStack = append(f.genericsStack, t) }
func (f *Fory) popGeneric()                { f.genericsStack = f.genericsStack[:len(f.genericsStack)-1] }
func (f *Fory) currentGeneric() reflect.Type {
	if len(f.genericsStack) == 0 {
		return nil
	}
	return f.genericsStack[len(f.genericsStack)-1]
}

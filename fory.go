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
	"fmt"
	"reflect"
)

// Fory is the top-level session object (§3): it owns the Class Resolver,
// Reference Resolver, and Meta Context a single serialize/deserialize call
// needs, generalizing the teacher's `NewFory(referenceTracking bool) *Fory`
// constructor with the functional-options Config behind it.
type Fory struct {
	config        *Config
	classResolver *classResolver
	refResolver   *refResolver
	metaContext   *metaContext
	genericsStack []reflect.Type
}

// NewFory mirrors the teacher's constructor shape exactly: a single bool
// toggling reference tracking, schema-consistent mode by default.
func NewFory(referenceTracking bool) *Fory {
	return NewForyWithConfig(NewConfig(WithReferenceTracking(referenceTracking)))
}

// NewForyWithConfig builds a Fory from a fully assembled Config, the entry
// point for every option this core supports beyond the teacher's single
// bool (compatible mode, secure mode, compression, ...).
func NewForyWithConfig(cfg *Config) *Fory {
	return &Fory{
		config:        cfg,
		classResolver: newClassResolver(cfg),
		refResolver:   newRefResolver(cfg.ReferenceTracking),
		metaContext:   newMetaContext(),
	}
}

// RegisterType pre-binds a non-struct concrete type to a small integer id
// (§4.4(a)).
func (f *Fory) RegisterType(id int32, example interface{}) error {
	return f.classResolver.RegisterType(id, example)
}

// RegisterTagType binds a struct (or pointer-to-struct) type to a qualified
// name, the registration path every struct used with this package needs
// (§4.4).
func (f *Fory) RegisterTagType(tag string, example interface{}) error {
	return f.classResolver.RegisterTagType(tag, example)
}

// resetSession clears everything scoped to a single serialize/deserialize
// call: reference ids, dynamic class names, and (unless ShareMetaContext is
// set) the Class Definition dedup table (§3 "Lifecycle").
func (f *Fory) resetSession() {
	f.refResolver.reset()
	f.classResolver.resetSession()
	if !f.config.ShareMetaContext {
		f.metaContext.reset()
	}
	f.genericsStack = f.genericsStack[:0]
}

// Marshal encodes v into a freshly allocated byte slice.
func (f *Fory) Marshal(v interface{}) ([]byte, error) {
	buf := NewByteBuffer(nil)
	if err := f.Serialize(buf, v); err != nil {
		return nil, err
	}
	return buf.GetByteSlice(0, buf.WriterIndex()), nil
}

// Unmarshal decodes data into target, which must be a non-nil pointer.
func (f *Fory) Unmarshal(data []byte, target interface{}) error {
	buf := NewByteBuffer(data)
	return f.Deserialize(buf, target)
}

// Serialize writes v's frame onto buf (§4.10): a nil root is the single
// byte {is_little_endian, is_null} with no magic number or body at all
// (§8 "Null fidelity" — serializing nil must produce exactly one byte);
// anything else gets the 2-byte magic number, a head byte, then the value
// through the general dynamic-dispatch path.
func (f *Fory) Serialize(buf *ByteBuffer, v interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toError(r)
		}
	}()
	f.resetSession()
	if v == nil {
		buf.WriteByte_(headBitIsLittleEndian | headBitIsNull)
		return nil
	}
	buf.WriteInt16(MagicNumber)
	head := byte(headBitIsLittleEndian)
	if f.config.CrossLanguage {
		head |= headBitIsCrossLanguage
	}
	buf.WriteByte_(head)
	writeReferencable(f, buf, reflect.ValueOf(v))
	return nil
}

// Deserialize reads a frame written by Serialize and assigns the decoded
// value into target (a non-nil pointer). A null frame leaves target
// untouched.
func (f *Fory) Deserialize(buf *ByteBuffer, target interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toError(r)
		}
	}()
	f.resetSession()

	if buf.Len() == 1 {
		head := buf.ReadByte_()
		if head&headBitIsNull != 0 {
			return nil
		}
		return errUnsupportedByteOrder(buf.ReaderIndex())
	}

	magic := buf.ReadInt16()
	if magic != MagicNumber {
		return errUnsupportedByteOrder(buf.ReaderIndex())
	}
	head := buf.ReadByte_()
	if head&headBitIsNull != 0 {
		return nil
	}
	if head&headBitIsLittleEndian == 0 {
		return errUnsupportedByteOrder(buf.ReaderIndex())
	}
	if f.config.CrossLanguage && head&headBitIsCrossLanguage == 0 {
		return errUnsupportedCrossLanguageMode(buf.ReaderIndex())
	}
	if head&headBitIsOutOfBand != 0 {
		return errUnsupportedOutOfBand(buf.ReaderIndex())
	}

	val := readReferencable(f, buf)

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errConstructionFailure(buf.ReaderIndex(), "Deserialize target must be a non-nil pointer")
	}
	if val.IsValid() {
		rv.Elem().Set(convertForAssign(val, rv.Elem().Type()))
	}
	return nil
}

func toError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

// defaultFory backs the package-level Marshal/Unmarshal convenience
// functions, the shape the teacher's fory_test.go exercises directly
// (package-level Marshal/Unmarshal alongside the instance API).
var defaultFory = NewFory(true)

// Marshal encodes v using a shared, reference-tracking Fory instance.
func Marshal(v interface{}) ([]byte, error) { return defaultFory.Marshal(v) }

// Unmarshal decodes data into target using the same shared instance.
func Unmarshal(data []byte, target interface{}) error { return defaultFory.Unmarshal(data, target) }

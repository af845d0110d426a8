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

import "fmt"

// offsetError is the shared shape behind every error kind in §7: each one
// carries the buffer offset at which it was raised so callers can log a
// useful diagnosis without re-parsing the frame.
type offsetError struct {
	kind   string
	offset int
	msg    string
}

func (e *offsetError) Error() string {
	if e.msg == "" {
		return fmt.Sprintf("%s at offset %d", e.kind, e.offset)
	}
	return fmt.Sprintf("%s at offset %d: %s", e.kind, e.offset, e.msg)
}

func newOffsetErr(kind string, offset int, format string, args ...interface{}) *offsetError {
	return &offsetError{kind: kind, offset: offset, msg: fmt.Sprintf(format, args...)}
}

// Frame head errors (§4.10, §7).
func errUnsupportedByteOrder(offset int) error {
	return &offsetError{kind: "UnsupportedByteOrder", offset: offset}
}

func errUnsupportedOutOfBand(offset int) error {
	return &offsetError{kind: "UnsupportedOutOfBand", offset: offset}
}

func errUnsupportedCrossLanguageMode(offset int) error {
	return &offsetError{kind: "UnsupportedCrossLanguageMode", offset: offset}
}

// Corrupt-input errors.
func errUnexpectedEndOfBuffer(offset int, need int) error {
	return newOffsetErr("UnexpectedEndOfBuffer", offset, "need %d more byte(s)", need)
}

func errMalformedVarint(offset int) error {
	return &offsetError{kind: "MalformedVarint", offset: offset}
}

func errInvalidStringEncoding(offset int, enc byte) error {
	return newOffsetErr("InvalidStringEncoding", offset, "unknown discriminator %d", enc)
}

// Class resolution errors.
func errClassNotRegistered(offset int, id int32) error {
	return newOffsetErr("ClassNotRegistered", offset, "class id %d not registered", id)
}

// errUnknownClassName is recoverable iff Config.DeserializeUnknownClass is
// enabled and Config.SecureModeEnabled is not, in which case the caller
// substitutes a Placeholder (§4.4).
func errUnknownClassName(offset int, pkg, name string) error {
	return newOffsetErr("UnknownClassName", offset, "unknown class %q.%q", pkg, name)
}

func errClassVersionMismatch(offset int, expected, got uint32) error {
	return newOffsetErr("ClassVersionMismatch", offset, "expected %08x, got %08x", expected, got)
}

func errIncompatibleSchema(offset int, reason string) error {
	return newOffsetErr("IncompatibleSchema", offset, "%s", reason)
}

func errInsecureType(offset int, typeName string) error {
	return newOffsetErr("InsecureType", offset, "type %q refused by secure mode", typeName)
}

func errConstructionFailure(offset int, typeName string) error {
	return newOffsetErr("ConstructionFailure", offset, "cannot construct %q", typeName)
}

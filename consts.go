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

import "math"

// Numeric bounds used by the tests (MinInt32, MaxInt64, ...), named the way the teacher's fory_test.go references them
// (MaxInt8, MinInt32, ...) instead of reaching for math.MaxInt8 at every
// call site.
const (
	MaxUint8  = math.MaxUint8
	MinInt8   = math.MinInt8
	MaxInt8   = math.MaxInt8
	MinInt16  = math.MinInt16
	MaxInt16  = math.MaxInt16
	MinInt32  = math.MinInt32
	MaxInt32  = math.MaxInt32
	MinInt64  = math.MinInt64
	MaxInt64  = math.MaxInt64
	MinInt    = math.MinInt
	MaxInt    = math.MaxInt
)

// MagicNumber leads every non-null frame ahead of the head byte
// (supplemented per TestSerializeBeginWithMagicNumber in the teacher's own
// test suite). A null root is the single head byte alone (see
// Fory.Serialize).
const MagicNumber int16 = 0x62d4

// Reference/null flag sentinels (§4.3, §6) — fixed wire values.
const (
	NullFlag         int8 = -3
	RefFlag          int8 = -2
	NotNullValueFlag int8 = -1
	RefValueFlag     int8 = 0
)

// Frame head bits (§4.10).
const (
	headBitIsNull            = 1 << 0
	headBitIsLittleEndian    = 1 << 1
	headBitIsCrossLanguage   = 1 << 2
	headBitIsOutOfBand       = 1 << 3
)

// String encoding discriminators (§4.2).
type stringEncoding byte

const (
	encodingLatin1 stringEncoding = 0
	encodingUTF16LE stringEncoding = 1
	encodingUTF8    stringEncoding = 2
)

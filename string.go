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

import "unicode/utf16"

// writeString encodes a Go string per §4.2: one discriminator byte, a
// varuint byte length, then the raw encoded bytes. No null terminator.
//
// The writer picks LATIN1 when every rune fits in a byte and
// Config.CompressString allows it, otherwise UTF-8 — Go's native string
// encoding, so the common path costs no conversion. UTF-16LE is never
// chosen by this writer (Go has no native UTF-16 string type to avoid
// re-encoding), but writeStringAs exposes it so readers and cross-language
// fixtures can be exercised against all three encodings (§8 property 7).
func writeString(buf *ByteBuffer, s string, compressString bool) {
	if compressString && isLatin1(s) {
		writeStringAs(buf, s, encodingLatin1)
		return
	}
	writeStringAs(buf, s, encodingUTF8)
}

func writeStringAs(buf *ByteBuffer, s string, enc stringEncoding) {
	buf.WriteByte_(byte(enc))
	switch enc {
	case encodingLatin1:
		raw := make([]byte, len(s))
		for i := 0; i < len(s); i++ {
			raw[i] = s[i]
		}
		buf.WriteVarUint32(uint32(len(raw)))
		buf.WriteBinary(raw)
	case encodingUTF16LE:
		units := utf16.Encode([]rune(s))
		raw := make([]byte, len(units)*2)
		for i, u := range units {
			raw[2*i] = byte(u)
			raw[2*i+1] = byte(u >> 8)
		}
		buf.WriteVarUint32(uint32(len(raw)))
		buf.WriteBinary(raw)
	case encodingUTF8:
		raw := []byte(s)
		buf.WriteVarUint32(uint32(len(raw)))
		buf.WriteBinary(raw)
	default:
		panic(errInvalidStringEncoding(buf.WriterIndex(), byte(enc)))
	}
}

func readString(buf *ByteBuffer) string {
	start := buf.ReaderIndex()
	enc := stringEncoding(buf.ReadByte_())
	n := int(buf.ReadVarUint32())
	raw := buf.ReadBinary(n)
	switch enc {
	case encodingLatin1:
		runes := make([]rune, len(raw))
		for i, c := range raw {
			runes[i] = rune(c)
		}
		return string(runes)
	case encodingUTF8:
		return string(raw)
	case encodingUTF16LE:
		if len(raw)%2 != 0 {
			panic(errInvalidStringEncoding(start, byte(enc)))
		}
		units := make([]uint16, len(raw)/2)
		for i := range units {
			units[i] = uint16(raw[2*i]) | uint16(raw[2*i+1])<<8
		}
		return string(utf16.Decode(units))
	default:
		panic(errInvalidStringEncoding(start, byte(enc)))
	}
}

func isLatin1(s string) bool {
	for _, r := range s {
		if r > 0xff {
			return false
		}
	}
	return true
}

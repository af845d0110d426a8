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
	"testing"

	"github.com/stretchr/testify/require"
)

// §8 property 7: every string round-trips under each of the three
// encodings a reader must accept.
func TestStringRoundTripAllEncodings(t *testing.T) {
	cases := []struct {
		name string
		s    string
		enc  stringEncoding
	}{
		{"latin1", "hello world", encodingLatin1},
		{"utf8-ascii", "hello world", encodingUTF8},
		{"utf8-multibyte", "héllo 世界", encodingUTF8},
		{"utf16le-ascii", "hello world", encodingUTF16LE},
		{"utf16le-multibyte", "héllo 世界", encodingUTF16LE},
		{"empty", "", encodingUTF8},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := NewByteBuffer(nil)
			writeStringAs(buf, c.s, c.enc)
			read := NewByteBuffer(buf.GetByteSlice(0, buf.WriterIndex()))
			require.Equal(t, c.s, readString(read))
		})
	}
}

func TestWriteStringPrefersLatin1WhenCompressed(t *testing.T) {
	buf := NewByteBuffer(nil)
	writeString(buf, "plain ascii", true)
	require.Equal(t, byte(encodingLatin1), buf.GetByteSlice(0, 1)[0])
}

func TestWriteStringFallsBackToUTF8ForNonLatin1(t *testing.T) {
	buf := NewByteBuffer(nil)
	writeString(buf, "日本語", true)
	require.Equal(t, byte(encodingUTF8), buf.GetByteSlice(0, 1)[0])
}

func TestIsLatin1(t *testing.T) {
	require.True(t, isLatin1("hello"))
	require.False(t, isLatin1("日本語"))
}

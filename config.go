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

// CompatibleMode selects how the Generic Object Serializer drives field
// decoding (§4.5, §6).
type CompatibleMode int

const (
	// SchemaConsistent drives decoding purely from the Descriptor Grouper
	// rebuilt from the receiver's own registered type — no per-field tags
	// on the wire, cheapest, but both peers must agree on layout.
	SchemaConsistent CompatibleMode = iota
	// Compatible ships a Class Definition (§4.5) so fields can be added,
	// removed, or reordered between peers.
	Compatible
)

// Config is the single immutable configuration record that flows by
// reference through a session (§9 "Configuration objects"). Construct one
// with NewConfig and functional options, the shape the teacher's own
// `NewFory(referenceTracking bool)` constructor generalizes into.
type Config struct {
	// ReferenceTracking enables the Reference Resolver for repeated
	// non-primitive objects (§4.3).
	ReferenceTracking bool
	// BasicTypesRefIgnored, StringRefIgnored, TimeRefIgnored exclude these
	// categories from tracking even when ReferenceTracking is on.
	BasicTypesRefIgnored bool
	StringRefIgnored     bool
	TimeRefIgnored       bool

	// CompressNumber uses varint encoding for int32/int64 struct slots.
	CompressNumber bool
	// CompressString permits the LATIN1 short path instead of UTF-8.
	CompressString bool

	// ClassRegistrationRequired refuses writes of any type lacking a
	// pre-registered id — the secure-mode write-side policy (§4.4).
	ClassRegistrationRequired bool
	// SecureModeEnabled refuses deserializing unknown classes outright,
	// superseding DeserializeUnknownClass.
	SecureModeEnabled bool
	// DeserializeUnknownClass substitutes a Placeholder type instead of
	// failing when a class name can't be resolved locally (§4.4, §7).
	DeserializeUnknownClass bool

	// CheckClassVersion emits/requires the 4-byte class-version hash in
	// SchemaConsistent mode (§4.7). Per §9 Open Questions, this is always
	// suppressed in Compatible mode regardless of this flag, since
	// Compatible mode explicitly allows schemas to diverge.
	CheckClassVersion bool

	// ShareMetaContext enables Class Definition dedup across calls on a
	// session (§4.5 Meta Context) rather than just within one call.
	ShareMetaContext bool

	// CompatibleMode chooses the struct wire shape (§6).
	CompatibleMode CompatibleMode

	// CrossLanguage, when set, requires head bit 2 (§4.10) on every frame
	// this instance produces and rejects frames that lack it.
	CrossLanguage bool
}

// Option configures a Config via NewConfig, the pattern the pack's
// option-struct libraries (e.g. klauspost/compress encoders) use in place of
// a flag/env parser — the teacher has no config framework to imitate here
// beyond its own bool-argument constructor, so this generalizes that shape.
type Option func(*Config)

func WithReferenceTracking(b bool) Option   { return func(c *Config) { c.ReferenceTracking = b } }
func WithCompressNumber(b bool) Option      { return func(c *Config) { c.CompressNumber = b } }
func WithCompressString(b bool) Option      { return func(c *Config) { c.CompressString = b } }
func WithClassRegistrationRequired(b bool) Option {
	return func(c *Config) { c.ClassRegistrationRequired = b }
}
func WithSecureMode(b bool) Option { return func(c *Config) { c.SecureModeEnabled = b } }
func WithDeserializeUnknownClass(b bool) Option {
	return func(c *Config) { c.DeserializeUnknownClass = b }
}
func WithCheckClassVersion(b bool) Option { return func(c *Config) { c.CheckClassVersion = b } }
func WithShareMetaContext(b bool) Option  { return func(c *Config) { c.ShareMetaContext = b } }
func WithCompatibleMode(m CompatibleMode) Option {
	return func(c *Config) { c.CompatibleMode = m }
}
func WithCrossLanguage(b bool) Option { return func(c *Config) { c.CrossLanguage = b } }

// NewConfig builds a Config with sane schema-consistent defaults and
// applies opts in order.
func NewConfig(opts ...Option) *Config {
	c := &Config{
		ReferenceTracking: true,
		CompressNumber:    false,
		CompressString:    false,
		CompatibleMode:    SchemaConsistent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// needsRefTracking implements the Reference Resolver's exclusion policy
// (§4.3 "Excluded types"): basic types/string/time can individually opt out
// of tracking even when ReferenceTracking is globally on.
func (c *Config) needsRefTracking(info *ClassInfo) bool {
	if !c.ReferenceTracking {
		return false
	}
	switch {
	case info.IsBasicType && c.BasicTypesRefIgnored:
		return false
	case info.IsString && c.StringRefIgnored:
		return false
	case info.IsTime && c.TimeRefIgnored:
		return false
	}
	return true
}

// suppressClassVersionHash implements the §9 Open Question resolution:
// the class-version hash is suppressed whenever schemas are allowed to
// diverge, i.e. whenever CompatibleMode is Compatible, regardless of
// CheckClassVersion.
func (c *Config) suppressClassVersionHash() bool {
	return c.CompatibleMode == Compatible
}

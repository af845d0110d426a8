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
	"sort"
)

// fieldGroupKind is one of the six ordered groups from §4.6.
type fieldGroupKind int

const (
	groupPrimitive fieldGroupKind = iota
	groupBoxed
	groupFinalRef
	groupOther
	groupCollection
	groupMap
)

// fieldSlot describes one struct field after flattening embedded structs.
// DeclaringClass disambiguates shadowed names across an embedding chain
// (§9 "Inheritance hierarchies").
type fieldSlot struct {
	Index          []int
	Name           string
	DeclaringClass string
	Type           reflect.Type
	Group          fieldGroupKind
}

// FieldGroup is the Descriptor Grouper's output: six ordered slices, written
// and read strictly in this order so schema-consistent mode needs no
// per-field wire tag (§4.6).
type FieldGroup struct {
	Primitives  []fieldSlot
	Boxed       []fieldSlot
	FinalRefs   []fieldSlot
	Others      []fieldSlot
	Collections []fieldSlot
	Maps        []fieldSlot
}

// All returns every slot in wire order.
func (g *FieldGroup) All() []fieldSlot {
	out := make([]fieldSlot, 0, len(g.Primitives)+len(g.Boxed)+len(g.FinalRefs)+len(g.Others)+len(g.Collections)+len(g.Maps))
	out = append(out, g.Primitives...)
	out = append(out, g.Boxed...)
	out = append(out, g.FinalRefs...)
	out = append(out, g.Others...)
	out = append(out, g.Collections...)
	out = append(out, g.Maps...)
	return out
}

// buildFieldGroup flattens t's visible fields (including promoted fields
// from embedding) and sorts each of the six groups per §4.6. className is
// the registered class's logical name (the RegisterTagType tag, not t's Go
// reflect name): a field declared directly on t carries className as its
// DeclaringClass so COMPATIBLE-mode field matching survives the receiving
// peer using a differently-named local Go type for the same logical class
// across a schema revision — only fields promoted from an embedded struct
// fall back to that struct's own Go name, to disambiguate shadowing within
// a single version (§9 "Inheritance hierarchies").
func buildFieldGroup(t reflect.Type, className string) *FieldGroup {
	g := &FieldGroup{}
	for _, vf := range reflect.VisibleFields(t) {
		if !vf.IsExported() || vf.Anonymous {
			continue
		}
		decl := className
		if len(vf.Index) > 1 {
			decl = declaringTypeName(t, vf.Index)
		}
		slot := fieldSlot{
			Index:          append([]int{}, vf.Index...),
			Name:           vf.Name,
			DeclaringClass: decl,
			Type:           vf.Type,
		}
		slot.Group = classifyField(vf.Type)
		switch slot.Group {
		case groupPrimitive:
			g.Primitives = append(g.Primitives, slot)
		case groupBoxed:
			g.Boxed = append(g.Boxed, slot)
		case groupFinalRef:
			g.FinalRefs = append(g.FinalRefs, slot)
		case groupOther:
			g.Others = append(g.Others, slot)
		case groupCollection:
			g.Collections = append(g.Collections, slot)
		case groupMap:
			g.Maps = append(g.Maps, slot)
		}
	}
	sort.SliceStable(g.Primitives, primitiveLess(g.Primitives))
	sort.SliceStable(g.Boxed, primitiveLess(g.Boxed))
	sort.SliceStable(g.FinalRefs, finalRefLess(g.FinalRefs))
	sort.SliceStable(g.Others, nameLess(g.Others))
	sort.SliceStable(g.Collections, nameLess(g.Collections))
	sort.SliceStable(g.Maps, nameLess(g.Maps))
	return g
}

func declaringTypeName(t reflect.Type, index []int) string {
	cur := t
	for _, i := range index[:len(index)-1] {
		f := cur.Field(i)
		ft := f.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		cur = ft
	}
	return cur.Name()
}

func classifyField(t reflect.Type) fieldGroupKind {
	switch {
	case isBasicScalarType(t):
		return groupPrimitive
	case t == stringType:
		return groupBoxed
	case t.Kind() == reflect.Ptr && (isBasicScalarType(t.Elem()) || t.Elem() == stringType):
		return groupBoxed
	case t.Kind() == reflect.Slice || t.Kind() == reflect.Array:
		return groupCollection
	case t.Kind() == reflect.Map:
		return groupMap
	case t.Kind() == reflect.Interface:
		return groupOther
	case monomorphic(t):
		return groupFinalRef
	default:
		return groupOther
	}
}

// primitiveLess sorts groups 1/2 by fixed size descending, then by name —
// the §4.6 rule, with DeclaringClass/Index appended as a tie-break so the
// comparator is a strict total order (§8 property 10) even across shadowed
// field names from different embedded structs (§9's documented portability
// caveat: tests should only assert on unshadowed schemas).
func primitiveLess(slots []fieldSlot) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := slots[i], slots[j]
		sa, sb := fieldWireSize(a.Type), fieldWireSize(b.Type)
		if sa != sb {
			return sa > sb
		}
		return fallbackLess(a, b)
	}
}

func fieldWireSize(t reflect.Type) int {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == stringType {
		return 0
	}
	return scalarSize(t.Kind())
}

func finalRefLess(slots []fieldSlot) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := slots[i], slots[j]
		an, bn := typeName(a.Type), typeName(b.Type)
		if an != bn {
			return an < bn
		}
		return fallbackLess(a, b)
	}
}

func nameLess(slots []fieldSlot) func(i, j int) bool {
	return func(i, j int) bool {
		return fallbackLess(slots[i], slots[j])
	}
}

func fallbackLess(a, b fieldSlot) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if a.DeclaringClass != b.DeclaringClass {
		return a.DeclaringClass < b.DeclaringClass
	}
	return indexLess(a.Index, b.Index)
}

func indexLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		return t.Elem().Name()
	}
	return t.Name()
}

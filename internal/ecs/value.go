// Package ecs provides Flint's entity-component world: stable identifiers,
// dynamic component storage, parent/child transform composition, and
// archetype-seeded defaults.
//
// The World/EntityID shape follows the usual entity-
// manager split of identity from storage, but components here are a
// dynamic tagged-value tree rather than a static, reflect-typed struct,
// since scene authoring wants loose structural typing rather than
// statically declared records.
package ecs

import "fmt"

// Kind tags the dynamic type carried by a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Value is the structured value tree authored scene/schema/constraint files
// decode into: bool | integer | float | string | array | table. Table
// preserves key insertion order so round-tripping through save
// is lossless.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	arr   []Value
	table *Table
}

// Table is an order-preserving string -> Value mapping.
type Table struct {
	keys   []string
	values map[string]Value
}

// NewTable creates an empty, order-preserving table.
func NewTable() *Table {
	return &Table{values: make(map[string]Value)}
}

// Set inserts or overwrites a key, preserving the original insertion
// position on overwrite.
func (t *Table) Set(key string, v Value) {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = v
}

func (t *Table) Get(key string) (Value, bool) {
	v, ok := t.values[key]
	return v, ok
}

func (t *Table) Delete(key string) {
	if _, ok := t.values[key]; !ok {
		return
	}
	delete(t.values, key)
	for i, k := range t.keys {
		if k == key {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
}

// Keys returns keys in insertion order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

func (t *Table) Len() int { return len(t.keys) }

// Clone makes a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	nt := NewTable()
	for _, k := range t.keys {
		nt.Set(k, t.values[k].Clone())
	}
	return nt
}

// Value constructors.

func Nil() Value                { return Value{kind: KindNil} }
func Bool(b bool) Value         { return Value{kind: KindBool, b: b} }
func Int(i int64) Value         { return Value{kind: KindInt, i: i} }
func Float(f float64) Value     { return Value{kind: KindFloat, f: f} }
func String(s string) Value     { return Value{kind: KindString, s: s} }
func Array(items ...Value) Value {
	return Value{kind: KindArray, arr: append([]Value(nil), items...)}
}
func FromTable(t *Table) Value {
	if t == nil {
		t = NewTable()
	}
	return Value{kind: KindTable, table: t}
}

func (v Value) Kind() Kind  { return v.kind }
func (v Value) IsNil() bool { return v.kind == KindNil }

func (v Value) Bool() (bool, bool)       { return v.b, v.kind == KindBool }
func (v Value) Int() (int64, bool)       { return v.i, v.kind == KindInt }
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}
func (v Value) String() (string, bool) { return v.s, v.kind == KindString }
func (v Value) Array() ([]Value, bool) { return v.arr, v.kind == KindArray }
func (v Value) Table() (*Table, bool)  { return v.table, v.kind == KindTable }

// AsFloat coerces numeric kinds to float64, returning ok=false for
// non-numeric values. Used by query predicates and constraint range checks.
func (v Value) AsFloat() (float64, bool) {
	return v.Float()
}

// Equal reports deep structural equality, used by tests comparing
// round-tripped scenes.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindTable:
		if v.table.Len() != o.table.Len() {
			return false
		}
		for _, k := range v.table.Keys() {
			va, _ := v.table.Get(k)
			vb, ok := o.table.Get(k)
			if !ok || !va.Equal(vb) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone makes a deep copy of the value tree.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		items := make([]Value, len(v.arr))
		for i, item := range v.arr {
			items[i] = item.Clone()
		}
		return Value{kind: KindArray, arr: items}
	case KindTable:
		return Value{kind: KindTable, table: v.table.Clone()}
	default:
		return v
	}
}

// GoString renders a debug representation, useful in error messages.
func (v Value) GoString() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return fmt.Sprintf("%v", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindArray:
		return fmt.Sprintf("array[%d]", len(v.arr))
	case KindTable:
		return fmt.Sprintf("table{%d}", v.table.Len())
	default:
		return "?"
	}
}

// Merge overlays patch onto base: if both are tables, overlay keys
// (entity overrides win over archetype defaults); otherwise the patch
// replaces the base wholesale.
func Merge(base, patch Value) Value {
	baseTable, baseIsTable := base.Table()
	patchTable, patchIsTable := patch.Table()
	if !baseIsTable || !patchIsTable {
		return patch.Clone()
	}

	merged := baseTable.Clone()
	for _, k := range patchTable.Keys() {
		pv, _ := patchTable.Get(k)
		if bv, ok := merged.Get(k); ok {
			merged.Set(k, Merge(bv, pv))
		} else {
			merged.Set(k, pv.Clone())
		}
	}
	return FromTable(merged)
}

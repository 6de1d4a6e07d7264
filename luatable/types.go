package luatable

import "fmt"

// Kind represents Lua literal value types.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindTable
)

// String returns the kind name.
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
	case KindStr:
		return "str"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Value represents one node of a parsed literal tree.
type Value struct {
	kind Kind

	// Scalar values (only one valid based on kind)
	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string

	// Table entries, in insertion order
	entries []Entry

	// Source location for error reporting
	pos Position
}

// Key is a table key: either an int64 (array part, 1-based) or a string.
type Key struct {
	str   string
	num   int64
	isInt bool
}

// IntKey creates an integer key.
func IntKey(n int64) Key {
	return Key{num: n, isInt: true}
}

// StrKey creates a string key.
func StrKey(s string) Key {
	return Key{str: s}
}

// IsInt returns true for integer keys.
func (k Key) IsInt() bool { return k.isInt }

// Int returns the integer key value (0 for string keys).
func (k Key) Int() int64 { return k.num }

// Str returns the string key value ("" for integer keys).
func (k Key) Str() string { return k.str }

// String returns the key as it would appear in source.
func (k Key) String() string {
	if k.isInt {
		return fmt.Sprintf("[%d]", k.num)
	}
	return fmt.Sprintf("[%q]", k.str)
}

// Entry is one key-value pair of a table.
type Entry struct {
	Key   Key
	Value *Value
}

// Position represents a source location.
type Position struct {
	Line   int
	Column int
	Offset int
}

// String returns position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ============================================================
// Constructors
// ============================================================

// Nil creates a nil value.
func Nil() *Value {
	return &Value{kind: KindNil}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Int creates an integer value.
func Int(v int64) *Value {
	return &Value{kind: KindInt, intVal: v}
}

// Float creates a float value.
func Float(v float64) *Value {
	return &Value{kind: KindFloat, floatVal: v}
}

// Str creates a string value.
func Str(v string) *Value {
	return &Value{kind: KindStr, strVal: v}
}

// Table creates a table value from entries.
func Table(entries ...Entry) *Value {
	return &Value{kind: KindTable, entries: entries}
}

// Field creates a string-keyed Entry for use in Table construction.
func Field(key string, value *Value) Entry {
	return Entry{Key: StrKey(key), Value: value}
}

// Item creates an integer-keyed Entry for use in Table construction.
func Item(key int64, value *Value) Entry {
	return Entry{Key: IntKey(key), Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNil
	}
	return v.kind
}

// IsNil returns true if this is a nil value.
func (v *Value) IsNil() bool {
	return v == nil || v.kind == KindNil
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if v == nil {
		return false, fmt.Errorf("luatable: nil value")
	}
	if v.kind != KindBool {
		return false, fmt.Errorf("luatable: expected bool, got %s", v.kind)
	}
	return v.boolVal, nil
}

// AsInt returns the integer value.
func (v *Value) AsInt() (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("luatable: nil value")
	}
	if v.kind != KindInt {
		return 0, fmt.Errorf("luatable: expected int, got %s", v.kind)
	}
	return v.intVal, nil
}

// AsFloat returns the float value.
func (v *Value) AsFloat() (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("luatable: nil value")
	}
	if v.kind != KindFloat {
		return 0, fmt.Errorf("luatable: expected float, got %s", v.kind)
	}
	return v.floatVal, nil
}

// AsStr returns the string value.
func (v *Value) AsStr() (string, error) {
	if v == nil {
		return "", fmt.Errorf("luatable: nil value")
	}
	if v.kind != KindStr {
		return "", fmt.Errorf("luatable: expected str, got %s", v.kind)
	}
	return v.strVal, nil
}

// Entries returns the table entries in insertion order.
func (v *Value) Entries() ([]Entry, error) {
	if v == nil {
		return nil, fmt.Errorf("luatable: nil value")
	}
	if v.kind != KindTable {
		return nil, fmt.Errorf("luatable: expected table, got %s", v.kind)
	}
	return v.entries, nil
}

// Len returns the number of entries of a table, 0 otherwise.
func (v *Value) Len() int {
	if v == nil || v.kind != KindTable {
		return 0
	}
	return len(v.entries)
}

// Get returns the value under a string key, or nil if absent.
func (v *Value) Get(key string) *Value {
	if v == nil || v.kind != KindTable {
		return nil
	}
	for _, e := range v.entries {
		if !e.Key.isInt && e.Key.str == key {
			return e.Value
		}
	}
	return nil
}

// GetIndex returns the value under an integer key, or nil if absent.
func (v *Value) GetIndex(n int64) *Value {
	if v == nil || v.kind != KindTable {
		return nil
	}
	for _, e := range v.entries {
		if e.Key.isInt && e.Key.num == n {
			return e.Value
		}
	}
	return nil
}

// Pos returns the source position of this value.
func (v *Value) Pos() Position {
	if v == nil {
		return Position{}
	}
	return v.pos
}

// SetPos sets the source position.
func (v *Value) SetPos(pos Position) {
	v.pos = pos
}

// ============================================================
// Mutators
// ============================================================

// Set replaces or appends a string-keyed entry.
func (v *Value) Set(key string, val *Value) {
	if v.kind != KindTable {
		panic("luatable: cannot set on non-table")
	}
	for i := range v.entries {
		if !v.entries[i].Key.isInt && v.entries[i].Key.str == key {
			v.entries[i].Value = val
			return
		}
	}
	v.entries = append(v.entries, Field(key, val))
}

// Append adds a value under the next sequential integer key.
func (v *Value) Append(val *Value) {
	if v.kind != KindTable {
		panic("luatable: cannot append to non-table")
	}
	var max int64
	for _, e := range v.entries {
		if e.Key.isInt && e.Key.num > max {
			max = e.Key.num
		}
	}
	v.entries = append(v.entries, Item(max+1, val))
}

// ============================================================
// Helpers
// ============================================================

// Number returns a numeric value as float64 if int or float.
func (v *Value) Number() (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch v.kind {
	case KindInt:
		return float64(v.intVal), true
	case KindFloat:
		return v.floatVal, true
	default:
		return 0, false
	}
}

// StrOr returns the string value, or def for any other kind.
func (v *Value) StrOr(def string) string {
	if v != nil && v.kind == KindStr {
		return v.strVal
	}
	return def
}

// IntOr returns the integer value, or def for any other kind.
func (v *Value) IntOr(def int64) int64 {
	if v != nil && v.kind == KindInt {
		return v.intVal
	}
	return def
}

// IsSequence reports whether a table's keys are exactly 1..n in order.
func (v *Value) IsSequence() bool {
	if v == nil || v.kind != KindTable {
		return false
	}
	for i, e := range v.entries {
		if !e.Key.isInt || e.Key.num != int64(i)+1 {
			return false
		}
	}
	return true
}

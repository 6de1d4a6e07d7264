package luatable

import "github.com/zeebo/xxh3"

// Equal reports deep structural equality of two trees: same kinds, same
// scalar values, and for tables the same entries in the same order. It is
// value-based, never identity-based — the trees being compared come from
// independently parsed files.
func Equal(a, b *Value) bool {
	if a.IsNil() || b.IsNil() {
		return a.IsNil() && b.IsNil()
	}
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindBool:
		return a.boolVal == b.boolVal
	case KindInt:
		return a.intVal == b.intVal
	case KindFloat:
		return a.floatVal == b.floatVal
	case KindStr:
		return a.strVal == b.strVal
	case KindTable:
		if len(a.entries) != len(b.entries) {
			return false
		}
		for i := range a.entries {
			if a.entries[i].Key != b.entries[i].Key {
				return false
			}
			if !Equal(a.entries[i].Value, b.entries[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// CanonicalHash returns a 64-bit hash of the canonical (compact, key-sorted)
// emission of a tree. Structurally equal trees hash equal; callers that must
// never conflate distinct trees confirm bucket hits with Equal.
func CanonicalHash(v *Value) uint64 {
	canonical := EmitWithOptions(v, EmitOptions{Compact: true, SortKeys: true})
	return xxh3.HashString(canonical)
}

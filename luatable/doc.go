// Package luatable implements a reader and writer for the Lua literal-table
// subset used by KOReader sidecar metadata files.
//
// A sidecar file is a single Lua expression of the form:
//
//	return {
//	    ["annotations"] = {
//	        [1] = {
//	            ["datetime"] = "2024-03-01 10:15:00",
//	            ["pos0"] = "/body/DocFragment[8]/body/p[12]/text().0",
//	            ["pos1"] = "/body/DocFragment[8]/body/p[12]/text().57",
//	            ["text"] = "highlighted passage",
//	        },
//	    },
//	    ["doc_pages"] = 312,
//	}
//
// This package handles exactly that data subset: string literals (quoted and
// long-bracket forms), numbers, booleans, nil, and arbitrarily nested table
// constructors with positional, identifier, or bracketed keys. It is a data
// format reader, not a Lua interpreter — no expressions are evaluated.
//
// # Data Model
//
// Values are represented by the Value tagged union. A table keeps its entries
// as an ordered list of (Key, Value) pairs where a Key is either an int64 or
// a string; both kinds may coexist in one table, mirroring Lua's single
// associative construct. Insertion order is preserved through parse and emit
// so that re-emitted files diff cleanly against their sources.
//
// # Round-Trip
//
// For any tree t produced by Parse, Parse(Emit(t)) is structurally equal to
// t: same ordering, same types, same values.
package luatable

package luatable

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// EmitOptions configures the emitter.
type EmitOptions struct {
	// Indent string for nested tables (default: four spaces, matching the
	// reader application's own flush style).
	Indent string

	// SortKeys orders table entries (integer keys first, ascending, then
	// string keys, ascending) instead of preserving insertion order. Used
	// for canonical hashing; merge output relies on insertion order.
	SortKeys bool

	// Compact emits everything on one line with no indentation.
	Compact bool
}

// DefaultEmitOptions returns the options used for sidecar output.
func DefaultEmitOptions() EmitOptions {
	return EmitOptions{Indent: "    "}
}

// Emit converts a Value to Lua literal text.
func Emit(v *Value) string {
	return EmitWithOptions(v, DefaultEmitOptions())
}

// EmitDocument renders a complete sidecar file: `return <root>` plus a
// trailing newline.
func EmitDocument(root *Value) string {
	return "return " + Emit(root) + "\n"
}

// EmitWithOptions converts a Value with custom options.
func EmitWithOptions(v *Value, opts EmitOptions) string {
	if opts.Indent == "" {
		opts.Indent = "    "
	}
	e := &emitter{opts: opts}
	e.emit(v, 0)
	return e.sb.String()
}

type emitter struct {
	sb   strings.Builder
	opts EmitOptions
}

func (e *emitter) emit(v *Value, depth int) {
	if v == nil || v.IsNil() {
		e.sb.WriteString("nil")
		return
	}

	switch v.kind {
	case KindBool:
		if v.boolVal {
			e.sb.WriteString("true")
		} else {
			e.sb.WriteString("false")
		}

	case KindInt:
		e.sb.WriteString(strconv.FormatInt(v.intVal, 10))

	case KindFloat:
		e.sb.WriteString(formatFloat(v.floatVal))

	case KindStr:
		e.emitString(v.strVal)

	case KindTable:
		e.emitTable(v, depth)
	}
}

// formatFloat renders a float in the shortest form that round-trips, always
// keeping a decimal point or exponent so the value re-parses as a float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (e *emitter) emitString(s string) {
	e.sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			e.sb.WriteString(`\"`)
		case '\\':
			e.sb.WriteString(`\\`)
		case '\n':
			e.sb.WriteString(`\n`)
		case '\r':
			e.sb.WriteString(`\r`)
		case '\t':
			e.sb.WriteString(`\t`)
		default:
			if ch < 0x20 {
				// Pad to three digits when a digit follows, so the
				// escape re-parses to the same byte.
				if i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
					e.sb.WriteString(fmt.Sprintf(`\%03d`, ch))
				} else {
					e.sb.WriteString(fmt.Sprintf(`\%d`, ch))
				}
			} else {
				e.sb.WriteByte(ch)
			}
		}
	}
	e.sb.WriteByte('"')
}

// emitTable renders a table constructor. Every key is emitted explicitly in
// bracketed form ([1] = ..., ["key"] = ...) so output matches the reader
// application's own serializer and diffs cleanly against it.
func (e *emitter) emitTable(v *Value, depth int) {
	entries := v.entries
	if e.opts.SortKeys {
		entries = sortEntries(entries)
	}

	if len(entries) == 0 {
		e.sb.WriteString("{}")
		return
	}

	e.sb.WriteByte('{')

	for i, entry := range entries {
		if e.opts.Compact {
			if i > 0 {
				e.sb.WriteByte(' ')
			}
		} else {
			e.sb.WriteByte('\n')
			e.writeIndent(depth + 1)
		}

		e.emitKey(entry.Key)
		e.sb.WriteString(" = ")
		e.emit(entry.Value, depth+1)
		e.sb.WriteByte(',')
	}

	if !e.opts.Compact {
		e.sb.WriteByte('\n')
		e.writeIndent(depth)
	}
	e.sb.WriteByte('}')
}

func (e *emitter) emitKey(k Key) {
	if k.isInt {
		e.sb.WriteByte('[')
		e.sb.WriteString(strconv.FormatInt(k.num, 10))
		e.sb.WriteByte(']')
		return
	}
	e.sb.WriteByte('[')
	e.emitString(k.str)
	e.sb.WriteByte(']')
}

func (e *emitter) writeIndent(depth int) {
	for i := 0; i < depth; i++ {
		e.sb.WriteString(e.opts.Indent)
	}
}

// sortEntries returns a sorted copy: integer keys first in ascending order,
// then string keys in ascending order.
func sortEntries(entries []Entry) []Entry {
	if len(entries) <= 1 {
		return entries
	}
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Key, sorted[j].Key
		if a.isInt != b.isInt {
			return a.isInt
		}
		if a.isInt {
			return a.num < b.num
		}
		return a.str < b.str
	})
	return sorted
}

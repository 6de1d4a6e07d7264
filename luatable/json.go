package luatable

import (
	"bytes"
	"fmt"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// ============================================================
// JSON Bridge
// ============================================================
//
// Converts a Value tree to JSON for inspection tooling. Tables with purely
// sequential integer keys (1..n) become arrays; everything else becomes an
// object with stringified keys, preserving insertion order. The conversion
// is lossy by design (integer and string keys collapse into object keys) and
// is never used on the merge path.

// ToJSON renders a Value tree as indented JSON.
func ToJSON(v *Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v *Value, depth int) error {
	if v.IsNil() {
		buf.WriteString("null")
		return nil
	}

	switch v.kind {
	case KindBool:
		if v.boolVal {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil

	case KindInt:
		buf.WriteString(strconv.FormatInt(v.intVal, 10))
		return nil

	case KindFloat:
		b, err := gojson.Marshal(v.floatVal)
		if err != nil {
			return fmt.Errorf("marshal float: %w", err)
		}
		buf.Write(b)
		return nil

	case KindStr:
		b, err := gojson.Marshal(v.strVal)
		if err != nil {
			return fmt.Errorf("marshal string: %w", err)
		}
		buf.Write(b)
		return nil

	case KindTable:
		if v.IsSequence() {
			return writeJSONArray(buf, v, depth)
		}
		return writeJSONObject(buf, v, depth)
	}

	return fmt.Errorf("luatable: cannot convert %s to JSON", v.kind)
}

func writeJSONArray(buf *bytes.Buffer, v *Value, depth int) error {
	if len(v.entries) == 0 {
		buf.WriteString("[]")
		return nil
	}
	buf.WriteByte('[')
	for i, e := range v.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONIndent(buf, depth+1)
		if err := writeJSON(buf, e.Value, depth+1); err != nil {
			return err
		}
	}
	writeJSONIndent(buf, depth)
	buf.WriteByte(']')
	return nil
}

func writeJSONObject(buf *bytes.Buffer, v *Value, depth int) error {
	if len(v.entries) == 0 {
		buf.WriteString("{}")
		return nil
	}
	buf.WriteByte('{')
	for i, e := range v.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONIndent(buf, depth+1)

		key := e.Key.str
		if e.Key.isInt {
			key = strconv.FormatInt(e.Key.num, 10)
		}
		kb, err := gojson.Marshal(key)
		if err != nil {
			return fmt.Errorf("marshal key: %w", err)
		}
		buf.Write(kb)
		buf.WriteString(": ")
		if err := writeJSON(buf, e.Value, depth+1); err != nil {
			return err
		}
	}
	writeJSONIndent(buf, depth)
	buf.WriteByte('}')
	return nil
}

func writeJSONIndent(buf *bytes.Buffer, depth int) {
	buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}

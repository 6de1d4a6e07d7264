package luatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
	}{
		{"nil", KindNil},
		{"true", KindBool},
		{"false", KindBool},
		{"123", KindInt},
		{"-456", KindInt},
		{"3.14", KindFloat},
		{"1e3", KindFloat},
		{`"hello"`, KindStr},
		{"'hello'", KindStr},
		{"[[hello]]", KindStr},
		{"{}", KindTable},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v.Kind())
		})
	}
}

func TestParse_TableKeys(t *testing.T) {
	v, err := Parse(`{
        "positional",
        key = 1,
        ["quoted key"] = 2,
        [10] = 3,
        "second positional",
    }`)
	require.NoError(t, err)

	entries, err := v.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 5)

	// Positional entries get implicit sequential keys; explicit [10] does
	// not advance the implicit counter.
	assert.Equal(t, IntKey(1), entries[0].Key)
	assert.Equal(t, StrKey("key"), entries[1].Key)
	assert.Equal(t, StrKey("quoted key"), entries[2].Key)
	assert.Equal(t, IntKey(10), entries[3].Key)
	assert.Equal(t, IntKey(2), entries[4].Key)

	assert.Equal(t, "positional", entries[0].Value.StrOr(""))
	assert.Equal(t, int64(1), v.Get("key").IntOr(0))
	assert.Equal(t, int64(3), v.GetIndex(10).IntOr(0))
}

func TestParse_KeyOrderPreserved(t *testing.T) {
	v, err := Parse(`{zebra = 1, alpha = 2, [3] = 3, mid = 4}`)
	require.NoError(t, err)

	entries, err := v.Entries()
	require.NoError(t, err)

	var keys []string
	for _, e := range entries {
		keys = append(keys, e.Key.String())
	}
	assert.Equal(t, []string{`["zebra"]`, `["alpha"]`, `[3]`, `["mid"]`}, keys)
}

func TestParse_Nested(t *testing.T) {
	v, err := Parse(`{
        ["annotations"] = {
            [1] = {
                ["pos0"] = "/body/p[1]/text().0",
                ["pageno"] = 12,
                ["nested"] = {["deep"] = {["deeper"] = true}},
            },
        },
    }`)
	require.NoError(t, err)

	ann := v.Get("annotations").GetIndex(1)
	require.NotNil(t, ann)
	assert.Equal(t, "/body/p[1]/text().0", ann.Get("pos0").StrOr(""))
	assert.Equal(t, int64(12), ann.Get("pageno").IntOr(0))

	deep, err := ann.Get("nested").Get("deep").Get("deeper").AsBool()
	require.NoError(t, err)
	assert.True(t, deep)
}

func TestParse_Separators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		len   int
	}{
		{"trailing comma", "{1, 2, 3,}", 3},
		{"semicolons", "{1; 2; 3}", 3},
		{"mixed separators", "{1, 2; 3,}", 3},
		{"empty", "{}", 0},
		{"lone separator", "{,}", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.len, v.Len())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated table", "{1, 2"},
		{"unterminated string", `{"abc`},
		{"missing separator", "{1 2}"},
		{"missing value", "{key = }"},
		{"missing bracket", "{[1 = 2}"},
		{"bare identifier value", "{key}"},
		{"missing equals", `{["k"] 2}`},
		{"trailing garbage", "{} {}"},
		{"empty input", ""},
		{"expression not literal", "{1 + 2}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			pe, ok := AsParseError(err)
			require.True(t, ok, "expected *ParseError, got %T", err)
			assert.NotZero(t, pe.Pos.Line)
		})
	}
}

func TestParseDocument(t *testing.T) {
	t.Run("with return", func(t *testing.T) {
		v, err := ParseDocument("-- sidecar\nreturn {\n    [\"doc_pages\"] = 100,\n}\n")
		require.NoError(t, err)
		assert.Equal(t, int64(100), v.Get("doc_pages").IntOr(0))
	})

	t.Run("bare table", func(t *testing.T) {
		v, err := ParseDocument(`{["a"] = 1}`)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v.Get("a").IntOr(0))
	})

	t.Run("root must be table", func(t *testing.T) {
		_, err := ParseDocument("return 42")
		require.Error(t, err)
	})

	t.Run("trailing content", func(t *testing.T) {
		_, err := ParseDocument("return {} return {}")
		require.Error(t, err)
	})
}

func TestParse_ErrorPositions(t *testing.T) {
	_, err := Parse("{\n    [\"ok\"] = 1,\n    [\"bad\"] = \"unterminated\n}")
	require.Error(t, err)

	pe, ok := AsParseError(err)
	require.True(t, ok)
	assert.Equal(t, 3, pe.Pos.Line)
}

package sidecar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamias/margin/luatable"
)

func TestAssemble_OutputShape(t *testing.T) {
	a := mustExtract(t, modernSidecar, 0)
	b := mustExtract(t, modernSidecar, 1)

	out, stats, err := Merge([]*Document{a, b})
	require.NoError(t, err)

	entries, err := out.Entries()
	require.NoError(t, err)

	var keys []string
	for _, e := range entries {
		keys = append(keys, e.Key.Str())
	}
	assert.Equal(t, []string{
		"annotations",
		"doc_pages",
		"doc_path",
		"doc_props",
		"partial_md5_checksum",
		"stats",
		"summary",
	}, keys)

	// Annotations are re-keyed 1..n.
	anns := out.Get("annotations")
	assert.True(t, anns.IsSequence())
	assert.Equal(t, stats.Total, anns.Len())
}

func TestAssemble_NoDisplaySettingLeakage(t *testing.T) {
	a := mustExtract(t, modernSidecar, 0)
	b := mustExtract(t, modernSidecar, 1)

	out, _, err := Merge([]*Document{a, b})
	require.NoError(t, err)

	for _, key := range []string{
		"font_face", "font_size", "line_space_percent", "zoom_mode",
		"css", "copt_font_size", "highlight_drawer",
	} {
		assert.Nil(t, out.Get(key), "display key %q leaked into output", key)
	}
}

func TestAssemble_StatsRecomputed(t *testing.T) {
	// Both inputs claim absurd pre-merge counts; the output counts must be
	// derived from the merged sequence, never copied or summed.
	a := mustExtract(t, modernSidecar, 0)
	b := mustExtract(t, modernSidecar, 1)

	out, _, err := Merge([]*Document{a, b})
	require.NoError(t, err)

	stats := out.Get("stats")
	require.NotNil(t, stats)
	assert.Equal(t, int64(1), stats.Get("highlights").IntOr(-1))
	assert.Equal(t, int64(1), stats.Get("notes").IntOr(-1))
	assert.Equal(t, int64(312), stats.Get("pages").IntOr(-1))
	assert.Equal(t, "Someone", stats.Get("authors").StrOr(""))
	assert.Equal(t, "en", stats.Get("language").StrOr(""))
	assert.Equal(t, "A Book", stats.Get("title").StrOr(""))
	assert.Equal(t, "N/A", stats.Get("series").StrOr(""))
	assert.Equal(t, 0, stats.Get("performance_in_pages").Len())
}

func TestAssemble_MostRecentMetadataWins(t *testing.T) {
	older := mustExtract(t, `return {
        ["annotations"] = {},
        ["doc_props"] = {["title"] = "Old Title"},
        ["summary"] = {["modified"] = "2024-01-01", ["status"] = "reading"},
    }`, 0)
	newer := mustExtract(t, `return {
        ["annotations"] = {},
        ["doc_props"] = {["title"] = "New Title"},
        ["summary"] = {["modified"] = "2024-06-01", ["status"] = "complete"},
    }`, 1)

	assert.False(t, PropsAgree([]*Document{older, newer}))

	// Order on the command line must not matter for recency.
	for _, docs := range [][]*Document{{older, newer}, {newer, older}} {
		out, _, err := Merge(docs)
		require.NoError(t, err)
		assert.Equal(t, "New Title", out.Get("doc_props").Get("title").StrOr(""))
		assert.Equal(t, "complete", out.Get("summary").Get("status").StrOr(""))
	}
}

func TestAssemble_RecencyTieKeepsEarlierInput(t *testing.T) {
	a := mustExtract(t, `return {
        ["annotations"] = {},
        ["doc_props"] = {["title"] = "First"},
        ["summary"] = {["modified"] = "2024-01-01"},
    }`, 0)
	b := mustExtract(t, `return {
        ["annotations"] = {},
        ["doc_props"] = {["title"] = "Second"},
        ["summary"] = {["modified"] = "2024-01-01"},
    }`, 1)

	out, _, err := Merge([]*Document{a, b})
	require.NoError(t, err)
	assert.Equal(t, "First", out.Get("doc_props").Get("title").StrOr(""))
}

func TestAssemble_RawSubtreesRoundTrip(t *testing.T) {
	// An annotation field this package does not recognize must survive
	// into the emitted output untouched.
	src := `return {
        ["annotations"] = {
            [1] = {
                ["datetime"] = "2024-01-01",
                ["future_field"] = {["unknown"] = true},
                ["pageno"] = 1,
                ["pos0"] = "a",
                ["pos1"] = "b",
            },
        },
    }`
	a := mustExtract(t, src, 0)
	b := mustExtract(t, src, 1)

	out, _, err := Merge([]*Document{a, b})
	require.NoError(t, err)

	reparsed, err := luatable.ParseDocument(luatable.EmitDocument(out))
	require.NoError(t, err)

	ann := reparsed.Get("annotations").GetIndex(1)
	require.NotNil(t, ann)
	ok, err := ann.Get("future_field").Get("unknown").AsBool()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAssemble_DeterministicOutput(t *testing.T) {
	a := mustExtract(t, modernSidecar, 0)
	b := mustExtract(t, modernSidecar, 1)

	out1, _, err := Merge([]*Document{a, b})
	require.NoError(t, err)
	out2, _, err := Merge([]*Document{a, b})
	require.NoError(t, err)

	assert.Equal(t, luatable.EmitDocument(out1), luatable.EmitDocument(out2))
}

func TestMerge_TooFewInputs(t *testing.T) {
	a := mustExtract(t, modernSidecar, 0)
	_, _, err := Merge([]*Document{a})
	assert.ErrorIs(t, err, ErrTooFewInputs)
}

func TestPropsAgree(t *testing.T) {
	a := mustExtract(t, modernSidecar, 0)
	b := mustExtract(t, modernSidecar, 1)
	assert.True(t, PropsAgree([]*Document{a, b}))
}

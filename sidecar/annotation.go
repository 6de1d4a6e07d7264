package sidecar

import (
	"github.com/tamias/margin/luatable"
)

// Kind classifies an annotation.
type Kind uint8

const (
	// Highlight spans a start/end position within document text.
	Highlight Kind = iota
	// Bookmark is anchored to a page/location without a position range.
	Bookmark
)

// String returns the kind name.
func (k Kind) String() string {
	if k == Highlight {
		return "highlight"
	}
	return "bookmark"
}

// Annotation is the normalized view of one annotation table. The normalized
// fields drive deduplication, conflict resolution, and sorting; Raw is the
// original subtree and is what the merged output re-emits.
type Annotation struct {
	Kind Kind

	// PageNumber is the numeric page (pageno, or page when it is numeric).
	PageNumber int64

	// Page is the opaque page key (an xpointer string for reflowable
	// documents, a number for paged ones). Compared only for equality.
	Page *luatable.Value

	// Chapter is the chapter title the annotation falls in.
	Chapter string

	// Pos0 and Pos1 are opaque position descriptors bounding a highlight.
	// Compared structurally, never interpreted.
	Pos0 *luatable.Value
	Pos1 *luatable.Value

	Text   string
	Note   string
	Color  string
	Drawer string

	DateTime        string
	DateTimeUpdated string

	// Raw is the original table subtree, retained so unknown fields
	// round-trip into the output untouched.
	Raw *luatable.Value

	// Source is the ordinal of the input file this annotation came from
	// (0-based command-line order). Breaks exact-timestamp ties.
	Source int

	// Malformed marks a container entry that was not an annotation-shaped
	// table. Malformed entries bypass dedup and sorting and are appended
	// to the output verbatim: losing them silently would be worse than an
	// occasional oddity, and comparing them could cause a false merge.
	Malformed bool
}

// annotationFromTable normalizes one container entry.
func annotationFromTable(v *luatable.Value, source int) Annotation {
	if v.Kind() != luatable.KindTable {
		return Annotation{Raw: v, Source: source, Malformed: true}
	}

	a := Annotation{
		Page:            v.Get("page"),
		PageNumber:      v.Get("pageno").IntOr(0),
		Chapter:         v.Get("chapter").StrOr(""),
		Pos0:            v.Get("pos0"),
		Pos1:            v.Get("pos1"),
		Text:            v.Get("text").StrOr(v.Get("notes").StrOr("")),
		Note:            v.Get("note").StrOr(""),
		Color:           v.Get("color").StrOr(""),
		Drawer:          v.Get("drawer").StrOr(""),
		DateTime:        v.Get("datetime").StrOr(""),
		DateTimeUpdated: v.Get("datetime_updated").StrOr(""),
		Raw:             v,
		Source:          source,
	}

	// Paged documents store the numeric page in "page" itself.
	if a.PageNumber == 0 {
		a.PageNumber = a.Page.IntOr(0)
	}

	if a.hasRange() {
		a.Kind = Highlight
	} else {
		a.Kind = Bookmark
	}
	return a
}

// hasRange reports whether both position descriptors are present.
func (a *Annotation) hasRange() bool {
	return !a.Pos0.IsNil() && !a.Pos1.IsNil()
}

// HasNote reports whether the annotation carries a user note.
func (a *Annotation) HasNote() bool {
	return a.Note != ""
}

// LastModified returns the annotation's recency stamp: datetime_updated when
// present, else datetime. Stamps are ISO-8601-style strings ("2024-03-01
// 10:15:00") and compare correctly as plain strings.
func (a *Annotation) LastModified() string {
	if a.DateTimeUpdated != "" {
		return a.DateTimeUpdated
	}
	return a.DateTime
}

// dedupKey returns the hash bucket for duplicate detection, and false when
// the annotation lacks every field identity is defined over. Keyless
// annotations survive as unique entries: over-deduplication is strictly
// worse than an occasional duplicate.
func (a *Annotation) dedupKey() (uint64, bool) {
	if a.hasRange() {
		key := luatable.Table(
			luatable.Field("kind", luatable.Str("h")),
			luatable.Field("pos0", a.Pos0),
			luatable.Field("pos1", a.Pos1),
		)
		return luatable.CanonicalHash(key), true
	}
	if a.Page.IsNil() && a.Chapter == "" {
		return 0, false
	}
	key := luatable.Table(
		luatable.Field("kind", luatable.Str("b")),
		luatable.Field("page", a.Page),
		luatable.Field("chapter", luatable.Str(a.Chapter)),
	)
	return luatable.CanonicalHash(key), true
}

// sameLogical reports whether two annotations are the same logical
// annotation: same kind, and structurally equal position range (highlights)
// or page location (bookmarks). Note text never participates — it is the
// field most likely to diverge between edited copies.
func sameLogical(a, b *Annotation) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.hasRange() && b.hasRange() {
		return luatable.Equal(a.Pos0, b.Pos0) && luatable.Equal(a.Pos1, b.Pos1)
	}
	if !a.hasRange() && !b.hasRange() {
		return luatable.Equal(a.Page, b.Page) && a.Chapter == b.Chapter
	}
	return false
}

// sortKey returns the opaque position string used as the secondary sort key:
// the start position for highlights, the page location for bookmarks.
func (a *Annotation) sortKey() string {
	v := a.Pos0
	if v.IsNil() {
		v = a.Page
	}
	if v.IsNil() {
		return ""
	}
	if s, err := v.AsStr(); err == nil {
		return s
	}
	return luatable.EmitWithOptions(v, luatable.EmitOptions{Compact: true, SortKeys: true})
}

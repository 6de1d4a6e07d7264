package sidecar

import (
	"github.com/tamias/margin/luatable"
)

// Document is the extracted view of one parsed sidecar file.
type Document struct {
	// Path is the input file path, for error reporting.
	Path string

	// Source is the 0-based command-line ordinal of this input.
	Source int

	// Annotations in original container order.
	Annotations []Annotation

	// Metadata subtrees, verbatim. Nil when absent from the input.
	Props    *luatable.Value // doc_props
	Pages    *luatable.Value // doc_pages
	DocPath  *luatable.Value // doc_path
	Checksum *luatable.Value // partial_md5_checksum
	Summary  *luatable.Value // summary

	// Dropped lists the top-level keys discarded during extraction —
	// display/layout settings and other per-device state. Reported to the
	// log, never surfaced to the merge.
	Dropped []string
}

// Top-level keys extracted as metadata. Everything else except the
// annotation containers is per-device state and is dropped. stats is
// deliberately absent: pre-merge counts are wrong by construction and the
// assembler recomputes them.
var metadataKeys = map[string]bool{
	"doc_props":            true,
	"doc_pages":            true,
	"doc_path":             true,
	"partial_md5_checksum": true,
	"summary":              true,
}

// Annotation container keys: the modern unified container plus the legacy
// split containers older sidecar files still carry.
var containerKeys = map[string]bool{
	"annotations": true,
	"highlight":   true,
	"highlights":  true,
	"bookmarks":   true,
}

// ExtractDocument walks a parsed sidecar root table and produces the
// normalized Document. Extraction never reorders entries: container order is
// preserved and is the final tie-break downstream.
func ExtractDocument(root *luatable.Value, path string, source int) (*Document, error) {
	entries, err := root.Entries()
	if err != nil {
		return nil, ErrNotTable
	}

	doc := &Document{Path: path, Source: source}

	for _, e := range entries {
		if e.Key.IsInt() {
			doc.Dropped = append(doc.Dropped, e.Key.String())
			continue
		}
		key := e.Key.Str()

		switch key {
		case "doc_props":
			doc.Props = e.Value
		case "doc_pages":
			doc.Pages = e.Value
		case "doc_path":
			doc.DocPath = e.Value
		case "partial_md5_checksum":
			doc.Checksum = e.Value
		case "summary":
			doc.Summary = e.Value
		case "annotations":
			doc.extractAnnotations(e.Value)
		case "highlight", "highlights":
			doc.extractLegacyHighlights(e.Value)
		case "bookmarks":
			doc.extractLegacyBookmarks(e.Value)
		default:
			doc.Dropped = append(doc.Dropped, key)
		}
	}

	return doc, nil
}

// extractAnnotations reads the modern unified container: an integer-keyed
// sequence of annotation tables.
func (d *Document) extractAnnotations(container *luatable.Value) {
	entries, err := container.Entries()
	if err != nil {
		// Container itself is not a table; keep it as one malformed entry.
		d.Annotations = append(d.Annotations, Annotation{
			Raw: container, Source: d.Source, Malformed: true,
		})
		return
	}
	for _, e := range entries {
		d.Annotations = append(d.Annotations, annotationFromTable(e.Value, d.Source))
	}
}

// extractLegacyHighlights reads the legacy highlight container: page number
// keys, each holding a list of highlight tables. Legacy entries carry no
// pageno field of their own, so the raw subtree is re-keyed with the page
// number from the container before it is retained.
func (d *Document) extractLegacyHighlights(container *luatable.Value) {
	entries, err := container.Entries()
	if err != nil {
		d.Annotations = append(d.Annotations, Annotation{
			Raw: container, Source: d.Source, Malformed: true,
		})
		return
	}
	for _, pageEntry := range entries {
		if !pageEntry.Key.IsInt() {
			d.Annotations = append(d.Annotations, Annotation{
				Raw: pageEntry.Value, Source: d.Source, Malformed: true,
			})
			continue
		}
		page := pageEntry.Key.Int()

		perPage, err := pageEntry.Value.Entries()
		if err != nil {
			d.Annotations = append(d.Annotations, Annotation{
				Raw: pageEntry.Value, Source: d.Source, Malformed: true,
			})
			continue
		}
		for _, e := range perPage {
			raw := withPageNumber(e.Value, page)
			ann := annotationFromTable(raw, d.Source)
			if !ann.Malformed && ann.PageNumber == 0 {
				ann.PageNumber = page
			}
			d.Annotations = append(d.Annotations, ann)
		}
	}
}

// extractLegacyBookmarks reads the legacy bookmarks container: an
// integer-keyed sequence. A legacy bookmark that carries a position range is
// normalized as a highlight, so it coalesces with its twin from the
// highlight container by positional identity.
func (d *Document) extractLegacyBookmarks(container *luatable.Value) {
	entries, err := container.Entries()
	if err != nil {
		d.Annotations = append(d.Annotations, Annotation{
			Raw: container, Source: d.Source, Malformed: true,
		})
		return
	}
	for _, e := range entries {
		d.Annotations = append(d.Annotations, annotationFromTable(e.Value, d.Source))
	}
}

// withPageNumber returns the annotation table with a pageno field, copying
// the original entries when the field has to be added.
func withPageNumber(v *luatable.Value, page int64) *luatable.Value {
	if v.Kind() != luatable.KindTable || !v.Get("pageno").IsNil() {
		return v
	}
	entries, _ := v.Entries()
	copied := make([]luatable.Entry, len(entries), len(entries)+1)
	copy(copied, entries)
	out := luatable.Table(copied...)
	out.Set("pageno", luatable.Int(page))
	return out
}

// lastModified returns the document's recency stamp: summary.modified when
// present, else the greatest annotation timestamp. Used to pick which
// input's metadata wins when inputs disagree.
func (d *Document) lastModified() string {
	if m := d.Summary.Get("modified").StrOr(""); m != "" {
		return m
	}
	var max string
	for i := range d.Annotations {
		if lm := d.Annotations[i].LastModified(); lm > max {
			max = lm
		}
	}
	return max
}

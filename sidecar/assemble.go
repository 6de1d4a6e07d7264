package sidecar

import (
	"github.com/tamias/margin/luatable"
)

// Assemble builds the output document tree: the merged annotations under the
// modern container key, the essential metadata subtrees, and freshly
// recomputed stats. Display and layout keys are never copied.
//
// Metadata is taken from the most recently modified input (inputs are
// expected to agree; when they disagree the recency rule mirrors the
// reconciler's). Top-level key order is fixed so identical inputs always
// produce byte-identical output.
func Assemble(docs []*Document, merged []Annotation) *luatable.Value {
	ref := mostRecent(docs)

	annotations := luatable.Table()
	for i := range merged {
		annotations.Append(merged[i].Raw)
	}

	out := luatable.Table()
	out.Set("annotations", annotations)
	if !ref.Pages.IsNil() {
		out.Set("doc_pages", ref.Pages)
	}
	if !ref.DocPath.IsNil() {
		out.Set("doc_path", ref.DocPath)
	}
	if !ref.Props.IsNil() {
		out.Set("doc_props", ref.Props)
	}
	if !ref.Checksum.IsNil() {
		out.Set("partial_md5_checksum", ref.Checksum)
	}
	out.Set("stats", buildStats(ref, merged))
	if summary := latestSummary(docs); !summary.IsNil() {
		out.Set("summary", summary)
	}
	return out
}

// buildStats recomputes the stats subtree from the merged sequence. The
// pre-merge per-file counts are wrong by construction once any overlap
// exists, so they are never copied.
func buildStats(ref *Document, merged []Annotation) *luatable.Value {
	counts := Summarize(merged)
	return luatable.Table(
		luatable.Field("authors", luatable.Str(ref.Props.Get("authors").StrOr(""))),
		luatable.Field("highlights", luatable.Int(int64(counts.Highlights))),
		luatable.Field("language", luatable.Str(ref.Props.Get("language").StrOr(""))),
		luatable.Field("notes", luatable.Int(int64(counts.Notes))),
		luatable.Field("pages", luatable.Int(ref.Pages.IntOr(0))),
		luatable.Field("performance_in_pages", luatable.Table()),
		luatable.Field("series", luatable.Str("N/A")),
		luatable.Field("title", luatable.Str(ref.Props.Get("title").StrOr(""))),
	)
}

// mostRecent picks the document whose metadata wins: greatest recency stamp,
// ties to the earliest-listed input.
func mostRecent(docs []*Document) *Document {
	best := docs[0]
	bestStamp := best.lastModified()
	for _, doc := range docs[1:] {
		if stamp := doc.lastModified(); stamp > bestStamp {
			best = doc
			bestStamp = stamp
		}
	}
	return best
}

// latestSummary returns the summary subtree with the greatest modified
// stamp among inputs that have one, or nil.
func latestSummary(docs []*Document) *luatable.Value {
	var best *luatable.Value
	var bestStamp string
	for _, doc := range docs {
		if doc.Summary.IsNil() {
			continue
		}
		stamp := doc.Summary.Get("modified").StrOr("")
		if best == nil || stamp > bestStamp {
			best = doc.Summary
			bestStamp = stamp
		}
	}
	return best
}

// PropsAgree reports whether every input document carries structurally equal
// doc_props. Disagreement is not an error — the most recent input wins — but
// callers log it.
func PropsAgree(docs []*Document) bool {
	var first *luatable.Value
	for _, doc := range docs {
		if doc.Props.IsNil() {
			continue
		}
		if first == nil {
			first = doc.Props
			continue
		}
		if luatable.CanonicalHash(first) != luatable.CanonicalHash(doc.Props) ||
			!luatable.Equal(first, doc.Props) {
			return false
		}
	}
	return true
}

// Merge is the full reconciliation pipeline over extracted documents:
// Reconcile then Assemble. It requires at least two inputs.
func Merge(docs []*Document) (*luatable.Value, MergeStats, error) {
	if len(docs) < 2 {
		return nil, MergeStats{}, ErrTooFewInputs
	}
	merged := Reconcile(docs)
	return Assemble(docs, merged), Summarize(merged), nil
}

package sidecar

import "sort"

// Reconcile merges the annotation sequences of the given documents, in
// command-line order, into one deduplicated sequence.
//
// Two annotations are the same logical annotation when they have the same
// kind and structurally equal position ranges (highlights) or page locations
// (bookmarks). Among duplicates the copy with the greatest last-modified
// stamp wins in its entirety; an exact timestamp tie keeps the copy from the
// earliest-listed input. Both rules are deterministic, so the result does
// not depend on anything but the ordered input list.
//
// Survivors are sorted by (page, position, datetime). Malformed entries are
// excluded from dedup and sorting and appended after the survivors in
// arrival order.
func Reconcile(docs []*Document) []Annotation {
	var survivors []Annotation
	var malformed []Annotation

	// Hash buckets over canonical position identity; bucket hits are
	// confirmed with structural equality so a hash collision can never
	// cause a false merge.
	buckets := make(map[uint64][]int)

	for _, doc := range docs {
		for _, ann := range doc.Annotations {
			if ann.Malformed {
				malformed = append(malformed, ann)
				continue
			}

			key, ok := ann.dedupKey()
			if !ok {
				// No position and no page location: keep as unique.
				survivors = append(survivors, ann)
				continue
			}

			merged := false
			for _, idx := range buckets[key] {
				if !sameLogical(&survivors[idx], &ann) {
					continue
				}
				// Strictly newer wins; a tie keeps the earlier input's
				// copy, which was seen first.
				if ann.LastModified() > survivors[idx].LastModified() {
					survivors[idx] = ann
				}
				merged = true
				break
			}
			if !merged {
				buckets[key] = append(buckets[key], len(survivors))
				survivors = append(survivors, ann)
			}
		}
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		a, b := &survivors[i], &survivors[j]
		if a.PageNumber != b.PageNumber {
			return a.PageNumber < b.PageNumber
		}
		if ak, bk := a.sortKey(), b.sortKey(); ak != bk {
			return ak < bk
		}
		return a.DateTime < b.DateTime
	})

	return append(survivors, malformed...)
}

// MergeStats summarizes a merged annotation sequence.
type MergeStats struct {
	Total      int
	Highlights int
	Bookmarks  int
	Notes      int
	Malformed  int
}

// Summarize counts the merged sequence. Highlight and note counts feed the
// recomputed stats subtree of the output document.
func Summarize(merged []Annotation) MergeStats {
	var s MergeStats
	s.Total = len(merged)
	for i := range merged {
		a := &merged[i]
		if a.Malformed {
			s.Malformed++
			continue
		}
		switch a.Kind {
		case Highlight:
			s.Highlights++
		case Bookmark:
			s.Bookmarks++
		}
		if a.HasNote() {
			s.Notes++
		}
	}
	return s
}

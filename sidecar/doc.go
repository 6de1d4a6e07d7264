// Package sidecar reconciles per-device KOReader sidecar documents into one
// consolidated document.
//
// A sidecar document is the parsed luatable tree of one metadata.*.lua file.
// The pipeline is: ExtractDocument normalizes the annotations and captures
// the metadata subtrees of each input; Reconcile deduplicates annotations
// across inputs by positional identity, keeping the most recently modified
// copy of each; Assemble builds a fresh output tree holding the merged
// annotations, the essential metadata, and recomputed statistics.
//
// Display and layout settings (fonts, margins, zoom, ...) are deliberately
// dropped: they are per-device preferences and merging them would push one
// device's rendering setup onto every other device.
//
// Annotations keep a reference to their original raw subtree. The merged
// output re-emits whichever raw subtree won, so fields this package does not
// recognize round-trip untouched.
package sidecar

// Package series turns heterogeneous data rows into the uniform per-row
// records the column geometry builder consumes.
//
// Input rows have no fixed shape: a row may be a map of named fields or a
// positional slice. All access goes through [Selector] values configured by
// the caller, never through assumptions about row layout. [Normalize]
// extracts one label, an ordered value sequence, and an ordered error
// sequence per row; [ResolveSeries] then applies the display [Mode],
// deciding how many series exist and transforming values where the mode
// requires it (percentage renormalization for stacked100).
//
// Everything in this package is pure: inputs are never mutated, outputs are
// freshly built per call, and identical inputs produce identical outputs.
package series

// Package restriction implements the element restriction: the index
// mapping between a global solution vector and per-element local
// layouts.
//
// Two index forms are supported:
//
//   - Fixed: every element addresses the same number of global points
//     (elemSize), with a flat indices array of length
//     numElements*elemSize.
//   - At-points (ragged): elements address varying numbers of points,
//     encoded as an offsets table of length numElements+1 plus a flat
//     indices arena in compressed-sparse-row form. The minimum and
//     maximum points per element are computed once at creation and are
//     O(1) reads afterwards.
//
// Apply in the NoTranspose direction gathers global values into the
// element-local layout. Apply in the Transpose direction scatter-adds
// local contributions back to the global vector; global indices are
// shared between elements by design, so Transpose is an accumulation
// whose correctness criterion is the mathematical sum over all
// contributing element slots, independent of traversal order. A failure
// part-way through a Transpose apply may leave a partially accumulated
// destination; callers needing a clean slate must zero the destination
// and retry.
//
// Index bounds and offsets monotonicity are validated once at creation,
// never on the apply hot path.
//
// Layouts:
//
//   - Global vector, Interleaved: value (index, comp) at index*numComponents + comp.
//   - Global vector, Blocked: value (index, comp) at index + comp*LSize.
//   - Local vector: component-major, value (e, j, comp) at
//     comp*numElements*slots + e*slots + j, where slots is elemSize for
//     the fixed form and MaxPointsInElement for the at-points form.
//     At-points slots beyond an element's actual count are never written
//     by a gather.
//
// Errors are sentinel values (errors.go) wrapped with context; test with
// errors.Is.
package restriction

// Package conform holds the bronze-to-silver transforms, one per entity.
//
// Every conformer is a pure function over the full bronze snapshot of its
// entity. Invalid values are mapped to a sentinel (silver.NotAvailable, 0 or
// null) instead of failing, so no conformer returns an error. Conformers
// share no state and may run in any order or in parallel.
//
// Per-key rules (customer de-duplication, product validity intervals) need
// the whole input: rows are grouped by key in memory, each group is sorted,
// and a single index-based pass computes the derived fields.
package conform

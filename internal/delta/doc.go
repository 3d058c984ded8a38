// Package delta implements the pure functions that decide which files
// need to be recleaned and which need to be reindexed for a refresh
// (spec.md §4.G). Compute takes no storage handle and performs no I/O of
// its own: everything it needs about persisted state and the reference
// graph is passed in, so it can be unit tested without a database.
package delta

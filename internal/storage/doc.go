// Package storage implements the intermediate and persistent storage
// layers from spec.md §3-4: IntermediateStorage (an in-memory parse
// delta), StorageProvider (the unbounded, size-ordered
// producer/consumer queue of intermediate storages), and PersistentStorage (the durable database
// the pipeline injects into).
//
// PersistentStorage ships with two build variants, exactly like the
// teacher's internal/storage package: a cgo build backed by
// github.com/mattn/go-sqlite3, and a purego build backed by
// modernc.org/sqlite, selected by the sqlite_vec build tag.
package storage

// Package types holds the wire-level value types shared by every layer of
// the indexing engine: file paths, indexer commands, task and project
// states. Nothing in this package depends on the scheduler, storage or
// project packages, so any of them may import it without cycles.
package types

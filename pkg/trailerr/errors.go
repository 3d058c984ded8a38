// Package trailerr holds the sentinel errors for the indexing engine's
// error taxonomy (spec.md §7).
package trailerr

import "errors"

var (
	// ErrInputInvalid covers missing source groups and unreadable settings
	// files. Refresh aborts and ProjectState is left unchanged.
	ErrInputInvalid = errors.New("trailindex: invalid input")

	// ErrPlannerInconsistency marks a persistent reference graph entry that
	// points at a path the planner doesn't otherwise know about. The
	// offending path is added to filesToClean defensively; this error is
	// logged, not fatal.
	ErrPlannerInconsistency = errors.New("trailindex: planner inconsistency")

	// ErrParserFatal marks an indexer command that failed unrecoverably.
	ErrParserFatal = errors.New("trailindex: parser fatal error")

	// ErrStorageWriteFailed marks a failed clean or inject step.
	ErrStorageWriteFailed = errors.New("trailindex: storage write failed")

	// ErrCanceled is cooperative cancellation, terminal but not an error
	// condition a caller should alarm on.
	ErrCanceled = errors.New("trailindex: canceled")

	// ErrNotFound and ErrAlreadyExists are storage-layer sentinels in the
	// style of the teacher's internal/storage package.
	ErrNotFound      = errors.New("trailindex: not found")
	ErrAlreadyExists = errors.New("trailindex: already exists")
)

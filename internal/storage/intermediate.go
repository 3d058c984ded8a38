package storage

import (
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// SymbolRecord is a minimal symbol fact a parser run contributes to an
// IntermediateStorage. The engine treats the parser as an opaque
// collaborator (spec.md §1); only enough shape is kept here to exercise
// merge, injection and the delta planner's reference graph queries.
type SymbolRecord struct {
	SourcePath types.FilePath
	Name       string
	Kind       string
	Line       int
}

// ReferenceEdge records that SourcePath's parse referenced TargetPath
// (e.g. an #include or import), the edge the delta planner's
// getReferencing/getReferenced walk.
type ReferenceEdge struct {
	SourcePath types.FilePath
	TargetPath types.FilePath
}

// IntermediateStorage is the in-memory delta a single parser run
// produces. It is size-additive and has no identity: two intermediate
// storages with the same content are interchangeable.
type IntermediateStorage struct {
	Files       []types.FileInfo
	Records     []SymbolRecord
	Edges       []ReferenceEdge
	Diagnostics []string
}

// NewIntermediateStorage returns an empty storage.
func NewIntermediateStorage() *IntermediateStorage {
	return &IntermediateStorage{}
}

// MergeFrom returns a new storage holding the union of the receiver's and
// other's content. The operation is associative and commutative on
// content, which is what lets StorageProvider merge in any order without
// changing the final injected byte set (spec.md §8 property 2).
func (s *IntermediateStorage) MergeFrom(other *IntermediateStorage) *IntermediateStorage {
	merged := &IntermediateStorage{
		Files:       make([]types.FileInfo, 0, len(s.Files)+len(other.Files)),
		Records:     make([]SymbolRecord, 0, len(s.Records)+len(other.Records)),
		Edges:       make([]ReferenceEdge, 0, len(s.Edges)+len(other.Edges)),
		Diagnostics: make([]string, 0, len(s.Diagnostics)+len(other.Diagnostics)),
	}
	merged.Files = append(merged.Files, s.Files...)
	merged.Files = append(merged.Files, other.Files...)
	merged.Records = append(merged.Records, s.Records...)
	merged.Records = append(merged.Records, other.Records...)
	merged.Edges = append(merged.Edges, s.Edges...)
	merged.Edges = append(merged.Edges, other.Edges...)
	merged.Diagnostics = append(merged.Diagnostics, s.Diagnostics...)
	merged.Diagnostics = append(merged.Diagnostics, other.Diagnostics...)
	return merged
}

// ByteSize is the size StorageProvider orders by: smallest-first merging
// minimizes the quadratic re-copy cost of repeated MergeFrom calls.
func (s *IntermediateStorage) ByteSize() int {
	size := 0
	for _, f := range s.Files {
		size += len(f.Path.String()) + 8
	}
	for _, r := range s.Records {
		size += len(r.SourcePath.String()) + len(r.Name) + len(r.Kind) + 8
	}
	for _, e := range s.Edges {
		size += len(e.SourcePath.String()) + len(e.TargetPath.String())
	}
	for _, d := range s.Diagnostics {
		size += len(d)
	}
	return size
}

// AddDiagnostic records a non-fatal parser error without failing the
// run, per spec.md §7's ParserFatal handling when cancelOnFatalErrors is
// unset.
func (s *IntermediateStorage) AddDiagnostic(msg string) {
	s.Diagnostics = append(s.Diagnostics, msg)
}

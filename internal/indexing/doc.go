// Package indexing implements the parts of the pipeline that actually
// move files through parsing: IndexerCommandList (spec.md §4.H),
// FileRegisterStateData (§4.F), the Parser collaborator boundary, and
// the pipeline tasks that the project controller assembles into the
// refresh root tree (§4.I).
package indexing

// Command trailindex drives the incremental indexing engine from the
// command line: load a project's persistent storage, refresh it against
// its current source tree, and optionally watch its settings file for
// changes, per the teacher's single-binary cmd/gocontext entrypoint
// shape.
package main

func main() {
	Execute()
}

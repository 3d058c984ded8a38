// Package scheduling implements the task/combinator engine described in
// spec.md §4.B-D: an abstract Task contract, the Sequence/Parallel/
// Selector/Repeat/ReturnSuccessWhile/SetValue combinators, and the
// Scheduler that drives a queue of root task trees to completion.
//
// The original C++ sources used virtual dispatch over a Task base class;
// this package follows the redesign spec.md §9 calls for — a capability
// interface for leaves plus combinators that hold other Tasks as data —
// instead of a polymorphic class hierarchy.
package scheduling

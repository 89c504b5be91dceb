// Package stage models workflow stages and derives progress from them.
//
// A stage graph is an ordered list of [Node] records, each naming its parent
// stages by id. Given the id of the current stage, [ResolveCompleted]
// computes every stage that must already have been passed through to reach
// it: the strict ancestors of the current stage, found by breadth-first
// traversal over parent pointers.
//
// # Progress States
//
// Every stage is classified relative to the current stage:
//
//	completed  an ancestor of the current stage
//	current    the current stage itself
//	future     everything else
//
// With no current stage (or one that is not in the graph) every stage is
// future and the completed set is empty. This is a valid "not yet started"
// display state, not an error.
//
// # Dangling References
//
// A parent id that names no stage in the list is skipped during traversal.
// Stage lists are often served from a cache that can be briefly incomplete,
// so a dangling reference is treated as missing data rather than corruption.
// [DanglingRefs] reports them so callers can log warnings.
//
// # Purity
//
// Everything in this package is a pure function of its arguments. Results are
// fresh values on every call and no state is kept between calls.
package stage

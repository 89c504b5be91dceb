// Package transform assigns layers to a stage DAG before positioning.
//
// # Layer Assignment
//
// [AssignLayers] computes the row (layer) for each node based on its depth
// from source nodes (those with no incoming edges). This uses a topological
// traversal to ensure parents are always in rows above their children, and
// that a node is only finalized once every one of its parents has been.
//
// # Cycles
//
// Stage graphs must be acyclic. When the traversal can make no further
// progress, [AssignLayers] stops and returns an error wrapping
// [dag.ErrGraphHasCycle] that names the stages left unlayered and one cycle
// found among them by [FindCycle]. No partial assignment is written back.
//
// # Usage
//
//	if err := transform.AssignLayers(g); err != nil {
//	    return err // errors.Is(err, dag.ErrGraphHasCycle)
//	}
//	for _, row := range g.RowIDs() { ... }
package transform

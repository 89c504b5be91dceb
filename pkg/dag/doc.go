// Package dag provides a directed acyclic graph organized into layers (rows)
// for layered stage layouts.
//
// # Overview
//
// Stage graphs are drawn as layered diagrams: every stage sits in a row given
// by its topological depth and edges always point from an earlier row to a
// later one. This package holds that structure: nodes keyed by integer stage
// id, parent and child adjacency, and a row index.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [DAG.AddNode] and edges with
// [DAG.AddEdge]:
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: 0, Label: "Planning"})
//	g.AddNode(dag.Node{ID: 1, Label: "Build"})
//	g.AddEdge(dag.Edge{From: 0, To: 1})
//
// Rows are usually assigned afterwards by transform.AssignLayers. Use
// [DAG.Validate] to check that edges point downward and that the graph has
// no cycles.
//
// # Determinism
//
// Layout output must not depend on map iteration order. [DAG.Nodes],
// [DAG.NodesInRow], [DAG.Children] and [DAG.Parents] all return elements in
// insertion order, and [DAG.SetRows] rebuilds the row index in insertion
// order, so two graphs built from the same input produce identical orderings.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count crossings between adjacent
// rows with a Fenwick tree in O(E log V). Edges that skip rows are counted
// only between the rows they directly connect.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Each layout computation
// builds its own graph, so nothing is shared across calls.
package dag

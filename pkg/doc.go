// Package pkg provides the libraries behind stageflow, a layout engine for
// workflow stage graphs.
//
// # Overview
//
// A workflow is a set of stage records, each naming its parent stages, plus
// the name of the stage an entity is currently in. stageflow derives which
// stages are already completed, places every stage in a layered 2-D layout
// and marks which transitions lie on the path already taken.
//
// # Architecture
//
//	stage records (file, Redis, MongoDB)
//	         ↓
//	    [source] package (load a snapshot)
//	         ↓
//	    [stage] package (completed set by ancestor traversal)
//	         ↓
//	    [layout] package (layers, ordering, coordinates, edges)
//	         ↓
//	    [graph] / [render/nodelink] (JSON, DOT, SVG, PNG)
//
// [pipeline] runs these steps for both the CLI and the HTTP API.
//
// # Quick Start
//
//	nodes := []stage.Node{
//	    {ID: 0, Name: "draft"},
//	    {ID: 1, Name: "review", ParentIDs: []int{0}},
//	    {ID: 2, Name: "published", ParentIDs: []int{1}},
//	}
//	l, err := layout.Compute(nodes, stage.Current(1), layout.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	for _, n := range l.Nodes {
//	    fmt.Println(n.Label, n.State, n.X, n.Y)
//	}
//
// # Main Packages
//
// [stage] - Stage records and the ancestor resolver: completed set, stage
// states and the active-edge rule.
//
// [dag] - Integer-keyed directed graph with insertion-ordered iteration,
// row indexes, cycle detection and crossing counts.
//
// [dag/transform] - Layer assignment by topological processing and cycle
// reporting.
//
// [layout] - The layered layout engine: within-layer ordering, centered
// coordinates for either orientation, and annotated edges.
//
// [graph] - Wire formats: stage input (JSON, TOML) and layout output (JSON).
//
// [render/nodelink] - Graphviz DOT with pinned positions, rendered to SVG and
// PNG in-process.
//
// [source] - Stage record sources: files, Redis keys, MongoDB collections.
//
// [pipeline] - Load → layout → render orchestration with coded errors and
// structured logging.
//
// [observability] - Hooks for layout, source and HTTP events.
//
// [errors] - Structured error codes shared by the CLI and the HTTP API.
package pkg

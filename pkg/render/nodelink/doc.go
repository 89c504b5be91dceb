// Package nodelink renders stage layouts as node-link diagrams.
//
// # Overview
//
// This package produces Graphviz DOT source from a computed [graph.Layout]
// and renders it in-process. Stages appear as rounded boxes, filled by
// progress state, and keep the exact coordinates the layout engine assigned:
// every node carries a pinned pos attribute and the neato engine is used so
// Graphviz does not re-layout the graph.
//
// # Usage
//
//	dot := nodelink.ToDOT(l, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := nodelink.RenderPNG(dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: When true, node labels include the stage id, layer and
//     coordinates.
//
// # Edge State
//
// Active edges (on the traversed path up to the current stage) are drawn
// solid and bold. Inactive edges are dashed and grey.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering; no Graphviz installation is required.
//
// [graph.Layout]: github.com/matzehuels/stageflow/pkg/graph#Layout
package nodelink

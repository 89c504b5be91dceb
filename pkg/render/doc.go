// Package render groups the preview renderers for stage layouts.
//
// Rendering is a collaborator of the layout engine: it receives a finished
// [graph.Layout] and never decides positions itself. The [nodelink]
// subpackage draws the layout as a Graphviz node-link diagram with every
// stage pinned at its computed coordinates.
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// [graph.Layout]: github.com/matzehuels/stageflow/pkg/graph#Layout
// [nodelink]: github.com/matzehuels/stageflow/pkg/render/nodelink
package render

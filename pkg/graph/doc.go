// Package graph provides the wire format for stage graphs and their layouts.
//
// This package defines the canonical serialized form of stageflow's input
// and output, used for files, HTTP request and response bodies, and the
// Redis and MongoDB stage sources.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Input], [Layout]: Serialization types (this package)
//   - pkg/stage.Node: Stage records, shared as-is with the wire format
//   - pkg/layout.Layout: Internal layout (positions, completed set, rows)
//
// Use [FromLayout] to convert an internal layout for output.
//
// # Input
//
// Stage records arrive either as a bare JSON array:
//
//	[
//	  {"id": 0, "node_name": "Planning", "parent_ids": []},
//	  {"id": 1, "node_name": "Build", "parent_ids": [0]}
//	]
//
// or wrapped with the name of the current stage:
//
//	{"current": "Build", "stages": [...]}
//
// TOML files use the wrapped form with [[stages]] tables:
//
//	current = "Build"
//
//	[[stages]]
//	id = 0
//	node_name = "Planning"
//	parent_ids = []
//
// Common operations:
//
//	in, _ := graph.ReadInputFile("stages.toml")         // File → Input
//	in, _ := graph.ReadInput(r, graph.FormatJSON)       // Reader → Input
//
// # Layout
//
// Layouts serialize to JSON with positioned nodes and annotated edges:
//
//	{
//	  "nodes": [{"id": 0, "label": "Planning", "layer": 0, "x": 40, "y": 40, "state": "completed"}],
//	  "edges": [{"source": 0, "target": 1, "active": true}],
//	  "width": 300, "height": 80, "layers": 2, ...
//	}
//
// # Concurrency
//
// All functions are safe for concurrent use.
package graph

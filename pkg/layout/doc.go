// Package layout positions stage graphs on a layered 2-D canvas.
//
// # Overview
//
// [Compute] turns a list of [stage.Node] records and an optional current
// stage into a [Layout]: every stage gets a layer (its topological depth), an
// index within that layer and x/y coordinates, and every parent → child pair
// becomes an [Edge] flagged active or inactive.
//
// The pipeline runs in four steps:
//
//  1. Build a [dag.DAG] in input order. Duplicate ids are rejected; parent
//     ids that name no stage are dropped and reported in [Layout.Dangling].
//  2. Assign layers with [transform.AssignLayers]. Cycles are rejected with
//     a MALFORMED_GRAPH error and no partial layout is returned.
//  3. Order each layer with an [Orderer] (input order by default).
//  4. Assign coordinates, centering every layer against the widest one.
//
// # Determinism
//
// Every ordering decision follows input order, so identical input always
// yields identical layers, positions and edge lists. Nothing is cached
// between calls.
//
// # Orientation
//
// With [Horizontal] (the default) layers advance left to right along x and
// stages within a layer stack along y. [Vertical] swaps the axes.
package layout

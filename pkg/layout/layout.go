package layout

import (
	"slices"

	"github.com/matzehuels/stageflow/pkg/dag"
	"github.com/matzehuels/stageflow/pkg/dag/transform"
	"github.com/matzehuels/stageflow/pkg/errors"
	"github.com/matzehuels/stageflow/pkg/stage"
)

// Node is a positioned stage. X and Y are the center of the stage's shape.
type Node struct {
	ID    int
	Label string
	Layer int
	Index int // Position within the layer after ordering
	X, Y  float64
	State stage.State
}

// Position is the placement of one stage.
type Position struct {
	Layer int
	X, Y  float64
}

// Edge is a directed parent → child connection.
type Edge struct {
	Source int
	Target int
	Active bool // Source completed and target completed or current
}

// Layout is the result of [Compute].
type Layout struct {
	Nodes     []Node // Input order
	Positions map[int]Position
	Edges     []Edge // Input order of children, then of their parent ids
	Rows      [][]int

	Completed stage.CompletedSet
	Current   *int // Nil when no current stage was given or it is unknown

	Width, Height float64
	Orientation   Orientation
	Crossings     int
	Dangling      []stage.Ref
}

// LayerCount returns the number of layers.
func (l *Layout) LayerCount() int { return len(l.Rows) }

// Node returns the positioned stage with the given id.
func (l *Layout) Node(id int) (Node, bool) {
	i := slices.IndexFunc(l.Nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return Node{}, false
	}
	return l.Nodes[i], true
}

// Compute lays out nodes and derives their progress state relative to
// current, which may be nil.
//
// Compute returns a DUPLICATE_NODE error when two stages share an id and a
// MALFORMED_GRAPH error when the parent relation contains a cycle. Parent ids
// that name no stage are not errors: they produce no edge and are listed in
// [Layout.Dangling]. Zero nodes yield an empty layout.
func Compute(nodes []stage.Node, current *int, opts Options) (*Layout, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	g, edges, err := build(nodes)
	if err != nil {
		return nil, err
	}
	if err := transform.AssignLayers(g); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedGraph, err, "assign layers")
	}
	// Every edge must now point to a later layer.
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "validate layers")
	}

	if current != nil && !stage.Contains(nodes, *current) {
		current = nil
	}
	completed := stage.ResolveCompleted(nodes, current)

	orders := NewOrderer(opts.Ordering).OrderRows(g)
	rowIDs := g.RowIDs()
	rows := make([][]int, len(rowIDs))
	for i, r := range rowIDs {
		rows[i] = orders[r]
	}

	l := &Layout{
		Nodes:       make([]Node, 0, len(nodes)),
		Positions:   make(map[int]Position, len(nodes)),
		Edges:       edges,
		Rows:        rows,
		Completed:   completed,
		Current:     current,
		Orientation: opts.Orientation,
		Crossings:   dag.CountCrossings(g, orders),
		Dangling:    stage.DanglingRefs(nodes),
	}
	l.place(g, orders, opts)

	for i := range l.Edges {
		e := &l.Edges[i]
		e.Active = stage.IsActiveEdge(e.Source, e.Target, current, completed)
	}
	return l, nil
}

// build creates the graph in input order and returns the deduplicated edge
// list. Dangling parents are skipped.
func build(nodes []stage.Node) (*dag.DAG, []Edge, error) {
	g := dag.New()
	for _, n := range nodes {
		if err := g.AddNode(dag.Node{ID: n.ID, Label: n.Name}); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeDuplicateNode, err, "stage %d", n.ID)
		}
	}

	var edges []Edge
	for _, n := range nodes {
		for _, p := range n.ParentIDs {
			if _, ok := g.Node(p); !ok || g.HasEdge(p, n.ID) {
				continue
			}
			if err := g.AddEdge(dag.Edge{From: p, To: n.ID}); err != nil {
				return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "edge %d → %d", p, n.ID)
			}
			edges = append(edges, Edge{Source: p, Target: n.ID})
		}
	}
	return g, edges, nil
}

// place assigns coordinates. The primary axis (x when horizontal) advances
// one LayerSpacing per layer; the secondary axis stacks stages NodeSpacing
// apart, offset so each layer is centered against the widest layer.
func (l *Layout) place(g *dag.DAG, orders map[int][]int, opts Options) {
	widest := g.MaxRowWidth()
	index := make(map[int]int, g.NodeCount())
	for _, ids := range orders {
		for i, id := range ids {
			index[id] = i
		}
	}

	for _, n := range g.Nodes() {
		size := len(orders[n.Row])
		offset := float64(widest-size) * opts.NodeSpacing / 2
		primary := opts.Margin + float64(n.Row)*opts.LayerSpacing
		secondary := opts.Margin + offset + float64(index[n.ID])*opts.NodeSpacing

		x, y := primary, secondary
		if opts.Orientation == Vertical {
			x, y = secondary, primary
		}
		l.Nodes = append(l.Nodes, Node{
			ID:    n.ID,
			Label: n.Label,
			Layer: n.Row,
			Index: index[n.ID],
			X:     x,
			Y:     y,
			State: stage.Classify(n.ID, l.Current, l.Completed),
		})
		l.Positions[n.ID] = Position{Layer: n.Row, X: x, Y: y}
	}

	if len(l.Nodes) == 0 {
		return
	}
	primaryExtent := 2*opts.Margin + float64(len(l.Rows)-1)*opts.LayerSpacing
	secondaryExtent := 2*opts.Margin + float64(widest-1)*opts.NodeSpacing
	l.Width, l.Height = primaryExtent, secondaryExtent
	if opts.Orientation == Vertical {
		l.Width, l.Height = secondaryExtent, primaryExtent
	}
}

package graph

import (
	"github.com/matzehuels/stageflow/pkg/layout"
	"github.com/matzehuels/stageflow/pkg/stage"
)

// =============================================================================
// Input - Stage Records
// =============================================================================

// Input is a stage graph as supplied by a caller: the stage records in input
// order and, optionally, the name of the current stage.
type Input struct {
	Current string       `json:"current,omitempty" toml:"current" bson:"current,omitempty"`
	Stages  []stage.Node `json:"stages" toml:"stages" bson:"stages"`
}

// CurrentID resolves Current to a stage id by exact name match.
// It returns nil when Current is empty or names no stage.
func (in Input) CurrentID() *int {
	if id, ok := stage.ResolveCurrent(in.Stages, in.Current); ok {
		return &id
	}
	return nil
}

// =============================================================================
// Layout - Positioned Output
// =============================================================================

// Layout is the serialized form of a computed stage layout.
type Layout struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`

	Width       float64 `json:"width" bson:"width"`
	Height      float64 `json:"height" bson:"height"`
	Layers      int     `json:"layers" bson:"layers"`
	Crossings   int     `json:"crossings" bson:"crossings"`
	Orientation string  `json:"orientation" bson:"orientation"`

	CurrentID *int        `json:"current_id,omitempty" bson:"current_id,omitempty"`
	Dangling  []stage.Ref `json:"dangling,omitempty" bson:"dangling,omitempty"`
}

// Node is a positioned stage.
type Node struct {
	ID    int     `json:"id" bson:"id"`
	Label string  `json:"label" bson:"label"`
	Layer int     `json:"layer" bson:"layer"`
	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
	State string  `json:"state" bson:"state"` // "completed", "current" or "future"
}

// Edge is a directed parent → child connection.
type Edge struct {
	Source int  `json:"source" bson:"source"`
	Target int  `json:"target" bson:"target"`
	Active bool `json:"active" bson:"active"`
}

// IsCurrent reports whether n is the current stage.
func (n Node) IsCurrent() bool { return n.State == string(stage.StateCurrent) }

// IsCompleted reports whether n precedes the current stage.
func (n Node) IsCompleted() bool { return n.State == string(stage.StateCompleted) }

// FromLayout converts an internal layout to its serialization format.
// Node and edge order is preserved.
func FromLayout(l *layout.Layout) Layout {
	out := Layout{
		Nodes:       make([]Node, len(l.Nodes)),
		Edges:       make([]Edge, len(l.Edges)),
		Width:       l.Width,
		Height:      l.Height,
		Layers:      l.LayerCount(),
		Crossings:   l.Crossings,
		Orientation: string(l.Orientation),
		Dangling:    l.Dangling,
	}
	for i, n := range l.Nodes {
		out.Nodes[i] = Node{
			ID:    n.ID,
			Label: n.Label,
			Layer: n.Layer,
			X:     n.X,
			Y:     n.Y,
			State: string(n.State),
		}
	}
	for i, e := range l.Edges {
		out.Edges[i] = Edge{Source: e.Source, Target: e.Target, Active: e.Active}
	}
	if l.Current != nil {
		id := *l.Current
		out.CurrentID = &id
	}
	return out
}

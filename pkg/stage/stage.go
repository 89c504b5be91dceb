package stage

import (
	"maps"
	"slices"
)

// Node is one workflow stage.
//
// ParentIDs lists the stages that precede this one; an empty list marks a
// root stage. The order of ParentIDs is preserved in derived edge lists.
type Node struct {
	ID        int    `json:"id" toml:"id" bson:"id"`
	Name      string `json:"node_name" toml:"node_name" bson:"node_name"`
	ParentIDs []int  `json:"parent_ids" toml:"parent_ids" bson:"parent_ids"`
}

// State classifies a stage relative to the current stage.
type State string

const (
	StateCompleted State = "completed"
	StateCurrent   State = "current"
	StateFuture    State = "future"
)

// Ref is a parent reference from Node to a stage id that does not exist.
type Ref struct {
	Node   int `json:"node"`
	Parent int `json:"parent"`
}

// CompletedSet is the set of stage ids that are strict ancestors of the
// current stage. The zero value is an empty set.
type CompletedSet map[int]struct{}

// Has reports whether id is in the set.
func (s CompletedSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids in the set.
func (s CompletedSet) Len() int { return len(s) }

// IDs returns the ids in ascending order.
func (s CompletedSet) IDs() []int {
	return slices.Sorted(maps.Keys(s))
}

// Current returns a pointer to id, for passing an optional current stage.
func Current(id int) *int { return &id }

// index maps ids to nodes. The first occurrence of a duplicated id wins.
func index(nodes []Node) map[int]*Node {
	byID := make(map[int]*Node, len(nodes))
	for i := range nodes {
		if _, dup := byID[nodes[i].ID]; !dup {
			byID[nodes[i].ID] = &nodes[i]
		}
	}
	return byID
}

// ResolveCompleted returns the ids of all strict ancestors of current.
//
// The traversal is breadth-first over ParentIDs starting at current. A
// visited set guards against revisiting shared ancestors and against looping
// on cyclic input, so ResolveCompleted always terminates. Parent ids that
// name no node are skipped.
//
// The result never contains current itself. If current is nil or not
// present in nodes, the result is empty.
func ResolveCompleted(nodes []Node, current *int) CompletedSet {
	completed := CompletedSet{}
	if current == nil {
		return completed
	}
	byID := index(nodes)
	if _, ok := byID[*current]; !ok {
		return completed
	}

	visited := map[int]bool{*current: true}
	queue := []int{*current}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, parent := range byID[curr].ParentIDs {
			if visited[parent] {
				continue
			}
			visited[parent] = true
			if _, ok := byID[parent]; !ok {
				continue
			}
			completed[parent] = struct{}{}
			queue = append(queue, parent)
		}
	}
	return completed
}

// ResolveCurrent finds the id of the stage whose Name equals name exactly.
// When several stages share a name, the first one in input order wins.
// An empty name never matches.
func ResolveCurrent(nodes []Node, name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	for _, n := range nodes {
		if n.Name == name {
			return n.ID, true
		}
	}
	return 0, false
}

// NameOf returns the name of the stage with the given id. It is the reverse
// of [ResolveCurrent] and maps a selected stage back to the name a caller
// stores on its entity record.
func NameOf(nodes []Node, id int) (string, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n.Name, true
		}
	}
	return "", false
}

// Contains reports whether a stage with the given id exists.
func Contains(nodes []Node, id int) bool {
	_, ok := NameOf(nodes, id)
	return ok
}

// Classify returns the progress state of id.
func Classify(id int, current *int, completed CompletedSet) State {
	switch {
	case current != nil && id == *current:
		return StateCurrent
	case completed.Has(id):
		return StateCompleted
	default:
		return StateFuture
	}
}

// IsActiveEdge reports whether the edge source→target lies on the traversed
// path: the source is completed and the target is either completed or the
// current stage.
func IsActiveEdge(source, target int, current *int, completed CompletedSet) bool {
	if !completed.Has(source) {
		return false
	}
	return completed.Has(target) || (current != nil && target == *current)
}

// DanglingRefs returns every parent reference that names no stage, in input
// order.
func DanglingRefs(nodes []Node) []Ref {
	byID := index(nodes)
	var refs []Ref
	for _, n := range nodes {
		for _, p := range n.ParentIDs {
			if _, ok := byID[p]; !ok {
				refs = append(refs, Ref{Node: n.ID, Parent: p})
			}
		}
	}
	return refs
}

package layout

import (
	"slices"

	"github.com/matzehuels/stageflow/pkg/dag"
)

// Orderer decides the sequence of stages within each layer.
type Orderer interface {
	OrderRows(g *dag.DAG) map[int][]int
}

// NewOrderer returns the Orderer for the given strategy.
func NewOrderer(o Ordering) Orderer {
	if o == OrderingBarycentric {
		return Barycentric{}
	}
	return InputOrder{}
}

// InputOrder keeps each layer in input order.
type InputOrder struct{}

// OrderRows implements [Orderer].
func (InputOrder) OrderRows(g *dag.DAG) map[int][]int {
	orders := make(map[int][]int, g.RowCount())
	for _, row := range g.RowIDs() {
		orders[row] = dag.NodeIDs(g.NodesInRow(row))
	}
	return orders
}

// Barycentric reduces edge crossings with one top-down sweep: each layer is
// sorted by the mean index of each stage's parents in the layers already
// placed. Stages without placed parents keep their input index. Ties are
// broken by input order, so the result is deterministic.
type Barycentric struct{}

// OrderRows implements [Orderer].
func (Barycentric) OrderRows(g *dag.DAG) map[int][]int {
	orders := InputOrder{}.OrderRows(g)
	placed := make(map[int]int, g.NodeCount())

	for _, row := range g.RowIDs() {
		ids := orders[row]
		type entry struct {
			id     int
			input  int
			weight float64
		}
		entries := make([]entry, len(ids))
		for i, id := range ids {
			sum, n := 0.0, 0
			for _, p := range g.Parents(id) {
				if pos, ok := placed[p]; ok {
					sum += float64(pos)
					n++
				}
			}
			weight := float64(i)
			if n > 0 {
				weight = sum / float64(n)
			}
			entries[i] = entry{id: id, input: i, weight: weight}
		}

		slices.SortStableFunc(entries, func(a, b entry) int {
			switch {
			case a.weight < b.weight:
				return -1
			case a.weight > b.weight:
				return 1
			}
			return a.input - b.input
		})

		for i, e := range entries {
			ids[i] = e.id
			placed[e.id] = i
		}
	}
	return orders
}

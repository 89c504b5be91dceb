package transform

import "github.com/matzehuels/stageflow/pkg/dag"

// FindCycle returns one cycle in g as a closed path of node IDs, where the
// first and last element are the same node. It returns nil when g is acyclic.
// Nodes are visited in insertion order, so the reported cycle is stable for
// a given input.
func FindCycle(g *dag.DAG) []int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[int]int)
	var stack []int
	var cycle []int

	var dfs func(node int) bool
	dfs = func(node int) bool {
		color[node] = gray
		stack = append(stack, node)
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				if dfs(child) {
					return true
				}
			case gray:
				for i, id := range stack {
					if id == child {
						cycle = append(append([]int(nil), stack[i:]...), child)
						return true
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[node] = black
		return false
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white && dfs(n.ID) {
			return cycle
		}
	}
	return nil
}

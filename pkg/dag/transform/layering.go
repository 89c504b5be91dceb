package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/stageflow/pkg/dag"
)

// AssignLayers assigns nodes to rows (layers) based on their depth in the
// graph.
//
// AssignLayers uses a longest-path algorithm via topological sort (Kahn's
// algorithm) to compute row assignments. Each node is placed at one plus the
// maximum row of any of its parents, ensuring that:
//   - Source nodes (no incoming edges) are at row 0
//   - All parents are strictly above their children
//   - A node's row is fixed only after all of its parents were processed
//
// Existing row assignments in the DAG are overwritten. Sources are seeded in
// insertion order, so the processing order (and therefore the row contents)
// is deterministic.
//
// # Cycles
//
// If the queue drains while some nodes still have unprocessed parents, the
// graph contains a cycle. AssignLayers then returns an error wrapping
// [dag.ErrGraphHasCycle] and leaves the existing rows untouched.
//
// # Performance
//
// Time complexity is O(V + E), where V is nodes and E is edges.
func AssignLayers(g *dag.DAG) error {
	nodes := g.Nodes()
	inDegree := make(map[int]int, len(nodes))
	rows := make(map[int]int, len(nodes))
	queue := make([]int, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	processed := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		processed++

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if processed < len(nodes) {
		var stuck []int
		for _, n := range nodes {
			if inDegree[n.ID] > 0 {
				stuck = append(stuck, n.ID)
			}
		}
		return fmt.Errorf("%w: unresolved stages %s (cycle %s)",
			dag.ErrGraphHasCycle, joinIDs(stuck, ", "), joinIDs(FindCycle(g), " → "))
	}

	g.SetRows(rows)
	return nil
}

func joinIDs(ids []int, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, sep)
}

package layout

import (
	"slices"
	"testing"

	"github.com/matzehuels/stageflow/pkg/stage"
)

// crossed has one crossing in input order: 0 → 3 and 1 → 2.
func crossed() []stage.Node {
	return []stage.Node{
		{ID: 0, Name: "a"},
		{ID: 1, Name: "b"},
		{ID: 2, Name: "c", ParentIDs: []int{1}},
		{ID: 3, Name: "d", ParentIDs: []int{0}},
	}
}

func TestOrdering_InputKeepsCrossing(t *testing.T) {
	l := mustCompute(t, crossed(), nil, Options{})
	if got := l.Rows[1]; !slices.Equal(got, []int{2, 3}) {
		t.Errorf("Rows[1] = %v, want [2 3]", got)
	}
	if l.Crossings != 1 {
		t.Errorf("Crossings = %d, want 1", l.Crossings)
	}
}

func TestOrdering_BarycentricRemovesCrossing(t *testing.T) {
	l := mustCompute(t, crossed(), nil, Options{Ordering: OrderingBarycentric})
	if got := l.Rows[1]; !slices.Equal(got, []int{3, 2}) {
		t.Errorf("Rows[1] = %v, want [3 2]", got)
	}
	if l.Crossings != 0 {
		t.Errorf("Crossings = %d, want 0", l.Crossings)
	}
	if p := l.Positions[3]; p.Y != DefaultMargin {
		t.Errorf("Positions[3].Y = %g, want %g", p.Y, DefaultMargin)
	}
}

func TestOrdering_BarycentricTiesKeepInputOrder(t *testing.T) {
	nodes := []stage.Node{
		{ID: 0},
		{ID: 5, ParentIDs: []int{0}},
		{ID: 4, ParentIDs: []int{0}},
		{ID: 3, ParentIDs: []int{0}},
	}
	l := mustCompute(t, nodes, nil, Options{Ordering: OrderingBarycentric})
	if got := l.Rows[1]; !slices.Equal(got, []int{5, 4, 3}) {
		t.Errorf("Rows[1] = %v, want [5 4 3]", got)
	}
}

func TestNewOrderer(t *testing.T) {
	if _, ok := NewOrderer(OrderingBarycentric).(Barycentric); !ok {
		t.Error("NewOrderer(barycentric) is not Barycentric")
	}
	if _, ok := NewOrderer(OrderingInput).(InputOrder); !ok {
		t.Error("NewOrderer(input) is not InputOrder")
	}
}

package partition

import (
	"testing"

	"github.com/fmcut/partitioner/internal/circuit"
)

func TestController_TwoCellsOneNet_InitialCutIsOne(t *testing.T) {
	cells := []circuit.Cell{
		{Name: "a", Kind: circuit.Regular},
		{Name: "b", Kind: circuit.Regular},
	}
	nets := []circuit.Net{
		{Name: "n1", Pins: []circuit.Pin{{CellName: "a"}, {CellName: "b"}}},
	}
	m, err := circuit.NewModel(cells, nets)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	c := NewController(m, ModeNum, 1)

	if cut := c.Cut(); cut != 1 {
		t.Fatalf("initial cut = %d, want 1", cut)
	}
}

// TestController_RunPass_RollsBackToBestPrefix checks best-prefix rollback: a pass
// may try moves that make the cut temporarily worse before recovering; the
// final state after the pass must reflect only the best-prefix moves, not
// every move tried.
func TestController_RunPass_RollsBackToBestPrefix(t *testing.T) {
	// Three cells on a shared net with a count cap of 2, which blocks some
	// moves (the side already holding two cells cannot take a third); with
	// only one net among three cells, no sequence of
	// single moves can ever improve the cut below 0 once it reaches 0, so
	// the pass result's BestCut must be <= StartCut and MovesKept must
	// exactly match the prefix that achieves BestCut.
	cells := []circuit.Cell{
		{Name: "a", Kind: circuit.Regular},
		{Name: "b", Kind: circuit.Regular},
		{Name: "c", Kind: circuit.Regular},
	}
	nets := []circuit.Net{
		{Name: "n1", Pins: []circuit.Pin{{CellName: "a"}, {CellName: "b"}, {CellName: "c"}}},
	}
	m, err := circuit.NewModel(cells, nets)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	c := NewController(m, ModeNum, 2)

	pr := c.RunPass()

	if pr.BestCut > pr.StartCut {
		t.Errorf("BestCut = %d must never exceed StartCut = %d", pr.BestCut, pr.StartCut)
	}
	if got := c.Cut(); got != pr.BestCut {
		t.Errorf("cut after rollback = %d, want %d (pass's BestCut)", got, pr.BestCut)
	}
	if pr.MovesKept > pr.MovesTried {
		t.Errorf("MovesKept = %d must not exceed MovesTried = %d", pr.MovesKept, pr.MovesTried)
	}
}

func TestController_RunPass_ClearsLocksAfterward(t *testing.T) {
	cells := []circuit.Cell{
		{Name: "a", Kind: circuit.Regular},
		{Name: "b", Kind: circuit.Regular},
	}
	nets := []circuit.Net{
		{Name: "n1", Pins: []circuit.Pin{{CellName: "a"}, {CellName: "b"}}},
	}
	m, err := circuit.NewModel(cells, nets)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	c := NewController(m, ModeNum, 1)
	c.RunPass()

	if c.State().Locked("a") || c.State().Locked("b") {
		t.Error("RunPass must clear all locks before returning")
	}
}

func TestController_RunPass_NeverViolatesCap(t *testing.T) {
	// Three unit-area cells and cap=2 lets the greedy initial rule land
	// exactly at (weightA=2, weightB=1) with no overfill, so any cap
	// violation observed after a pass must come from an unchecked move
	// rather than from initial placement's deliberate-overfill fallback.
	cells := []circuit.Cell{
		{Name: "a", Width: 1, Height: 1, Kind: circuit.Regular},
		{Name: "b", Width: 1, Height: 1, Kind: circuit.Regular},
		{Name: "c", Width: 1, Height: 1, Kind: circuit.Regular},
	}
	nets := []circuit.Net{
		{Name: "n1", Pins: []circuit.Pin{{CellName: "a"}, {CellName: "b"}, {CellName: "c"}}},
	}
	m, err := circuit.NewModel(cells, nets)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	c := NewController(m, ModeArea, 2)
	if err := c.Feasible(); err != nil {
		t.Fatalf("initial placement should be feasible, got %v", err)
	}
	c.RunPass()

	weightA, weightB, _, _ := c.State().Aggregates()
	if weightA > 2 || weightB > 2 {
		t.Errorf("post-pass weights (%d, %d) exceed cap 2", weightA, weightB)
	}
}

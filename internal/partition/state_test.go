package partition

import (
	"testing"

	"github.com/fmcut/partitioner/internal/circuit"
)

func twoCellModel(t *testing.T) *circuit.Model {
	t.Helper()
	cells := []circuit.Cell{
		{Name: "a", Width: 1, Height: 1, Kind: circuit.Regular},
		{Name: "b", Width: 1, Height: 1, Kind: circuit.Regular},
	}
	nets := []circuit.Net{
		{Name: "n1", Pins: []circuit.Pin{{CellName: "a"}, {CellName: "b"}}},
	}
	m, err := circuit.NewModel(cells, nets)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

// TestNewState_TwoCellsOneNet_NumMode checks the two-cell fixture: two cells, one
// net, Num mode, cap = 1. The greedy rule must place a on A (first cell,
// both sides empty, A wins ties) and b on B (A is now full at cap=1).
func TestNewState_TwoCellsOneNet_NumMode(t *testing.T) {
	m := twoCellModel(t)
	s := NewState(m, ModeNum, 1)

	if got := s.Side("a"); got != SideA {
		t.Errorf("a.Side = %v, want A", got)
	}
	if got := s.Side("b"); got != SideB {
		t.Errorf("b.Side = %v, want B", got)
	}
	if err := s.Feasible(); err != nil {
		t.Errorf("Feasible() = %v, want nil", err)
	}
}

func TestState_MoveFlipsSideAndAggregates(t *testing.T) {
	m := twoCellModel(t)
	s := NewState(m, ModeNum, 2)

	before := s.Side("a")
	s.Move("a")
	after := s.Side("a")
	if before == after {
		t.Fatal("Move did not flip side")
	}

	_, _, countA, countB := s.Aggregates()
	if countA+countB != 2 {
		t.Errorf("countA+countB = %d, want 2", countA+countB)
	}
}

func TestState_SnapshotRestoreRoundTrip(t *testing.T) {
	m := twoCellModel(t)
	s := NewState(m, ModeNum, 2)

	snap := s.Snapshot()
	s.Move("a")
	s.Move("b")
	s.Restore(snap)

	wantA := snap.side["a"]
	wantB := snap.side["b"]
	if s.Side("a") != wantA || s.Side("b") != wantB {
		t.Error("Restore did not reproduce the snapshotted side assignment")
	}
}

func TestState_CanAcceptRespectsCap(t *testing.T) {
	m := twoCellModel(t)
	s := NewState(m, ModeNum, 1)

	// a sits on A at count 1; cap is 1, so A cannot accept another cell.
	if s.CanAccept(SideA, 1) {
		t.Error("CanAccept(A, 1) = true, want false (A is already at cap)")
	}
}

func TestState_FeasibleDetectsOversizedCellInAreaMode(t *testing.T) {
	cells := []circuit.Cell{
		{Name: "big", Width: 10, Height: 10, Kind: circuit.Regular},
	}
	m, err := circuit.NewModel(cells, nil)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	s := NewState(m, ModeArea, 5)
	if err := s.Feasible(); err == nil {
		t.Fatal("expected infeasibility: a single cell's area exceeds cap")
	}
}

func TestState_LockClearLocks(t *testing.T) {
	m := twoCellModel(t)
	s := NewState(m, ModeNum, 2)

	s.Lock("a")
	if !s.Locked("a") {
		t.Fatal("expected a to be locked")
	}
	s.ClearLocks()
	if s.Locked("a") {
		t.Fatal("expected a to be unlocked after ClearLocks")
	}
}

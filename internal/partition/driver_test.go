package partition

import (
	"context"
	"testing"

	"github.com/fmcut/partitioner/internal/circuit"
)

// TestRun_TwoCellsOneNet checks the two-cell fixture end to end: the driver must
// terminate (cut cannot improve below 1 with only two movable cells and one
// net between them) reporting a final cut of 1.
func TestRun_TwoCellsOneNet(t *testing.T) {
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

	res, err := Run(context.Background(), c, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.FinalCut != 1 {
		t.Errorf("FinalCut = %d, want 1", res.FinalCut)
	}
}

// TestRun_TerminalAnchoring checks terminal anchoring: a lone movable cell tied
// to a fixed terminal converges to cut 0, since a terminal alone can never
// split a net.
func TestRun_TerminalAnchoring(t *testing.T) {
	cells := []circuit.Cell{
		{Name: "a", Kind: circuit.Regular},
		{Name: "pad", Kind: circuit.Terminal},
	}
	nets := []circuit.Net{
		{Name: "n1", Pins: []circuit.Pin{{CellName: "a"}, {CellName: "pad"}}},
	}
	m, err := circuit.NewModel(cells, nets)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	c := NewController(m, ModeNum, 1)

	res, err := Run(context.Background(), c, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.FinalCut != 0 {
		t.Errorf("FinalCut = %d, want 0", res.FinalCut)
	}
}

// TestRun_ThreeCellHyperedge: three unit cells on one net with a count cap
// of 2 settle at cut 1 — no cap-respecting flip can pull all three cells
// onto one side, so the hyperedge stays split.
func TestRun_ThreeCellHyperedge(t *testing.T) {
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
	c := NewController(m, ModeNum, 2)

	res, err := Run(context.Background(), c, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.FinalCut != 1 {
		t.Errorf("FinalCut = %d, want 1", res.FinalCut)
	}
	_, _, countA, countB := c.State().Aggregates()
	if countA > 2 || countB > 2 {
		t.Errorf("final counts (%d, %d) exceed cap 2", countA, countB)
	}
}

// TestRun_AreaCapPinsCells: two wide cells and one filler under an area
// cap of 11. The wide cells can never trade sides (either direction would
// overflow the cap) and moving the filler doesn't uncut the net, so the
// driver must finish at cut 1 with the initial assignment intact.
func TestRun_AreaCapPinsCells(t *testing.T) {
	cells := []circuit.Cell{
		{Name: "a", Width: 10, Height: 1, Kind: circuit.Regular},
		{Name: "b", Width: 10, Height: 1, Kind: circuit.Regular},
		{Name: "c", Width: 1, Height: 1, Kind: circuit.Regular},
	}
	nets := []circuit.Net{
		{Name: "n1", Pins: []circuit.Pin{{CellName: "a"}, {CellName: "b"}, {CellName: "c"}}},
	}
	m, err := circuit.NewModel(cells, nets)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	c := NewController(m, ModeArea, 11)

	initialA := c.State().Side("a")
	initialB := c.State().Side("b")
	initialC := c.State().Side("c")

	res, err := Run(context.Background(), c, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.FinalCut != 1 {
		t.Errorf("FinalCut = %d, want 1", res.FinalCut)
	}
	if c.State().Side("a") != initialA || c.State().Side("b") != initialB || c.State().Side("c") != initialC {
		t.Error("no improving move exists, so the final sides must match the initial assignment")
	}
	weightA, weightB, _, _ := c.State().Aggregates()
	if weightA > 11 || weightB > 11 {
		t.Errorf("final areas (%d, %d) exceed cap 11", weightA, weightB)
	}
}

func TestRun_InfeasibleReturnsErrInfeasible(t *testing.T) {
	cells := []circuit.Cell{
		{Name: "big", Width: 10, Height: 10, Kind: circuit.Regular},
	}
	m, err := circuit.NewModel(cells, nil)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	c := NewController(m, ModeArea, 5)

	_, err = Run(context.Background(), c, nil)
	if err != ErrInfeasible {
		t.Fatalf("Run err = %v, want ErrInfeasible", err)
	}
}

func TestRun_NoMovableCellsReturnsErrNoMovableCells(t *testing.T) {
	cells := []circuit.Cell{
		{Name: "pad", Kind: circuit.Terminal},
	}
	m, err := circuit.NewModel(cells, nil)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	c := NewController(m, ModeNum, 1)

	_, err = Run(context.Background(), c, nil)
	if err != ErrNoMovableCells {
		t.Fatalf("Run err = %v, want ErrNoMovableCells", err)
	}
}

func TestRun_CutNeverIncreasesAcrossPasses(t *testing.T) {
	cells := []circuit.Cell{
		{Name: "a", Kind: circuit.Regular},
		{Name: "b", Kind: circuit.Regular},
		{Name: "c", Kind: circuit.Regular},
		{Name: "d", Kind: circuit.Regular},
	}
	nets := []circuit.Net{
		{Name: "n1", Pins: []circuit.Pin{{CellName: "a"}, {CellName: "b"}}},
		{Name: "n2", Pins: []circuit.Pin{{CellName: "b"}, {CellName: "c"}}},
		{Name: "n3", Pins: []circuit.Pin{{CellName: "c"}, {CellName: "d"}}},
		{Name: "n4", Pins: []circuit.Pin{{CellName: "d"}, {CellName: "a"}}},
	}
	m, err := circuit.NewModel(cells, nets)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	c := NewController(m, ModeNum, 2)

	res, err := Run(context.Background(), c, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	prev := -1
	for i, p := range res.Passes {
		if prev >= 0 && p.BestCut > prev {
			t.Errorf("pass %d best cut %d exceeds previous pass's %d", i, p.BestCut, prev)
		}
		prev = p.BestCut
	}
	if res.FinalCut != prev {
		t.Errorf("FinalCut = %d, want last pass's BestCut = %d", res.FinalCut, prev)
	}
}

func TestRun_ContextCancelledBetweenPasses(t *testing.T) {
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

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Run(ctx, c, nil)
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
}

package circuit

import "testing"

func twoCellOneNet(t *testing.T) *Model {
	t.Helper()
	cells := []Cell{
		{Name: "a", Width: 1, Height: 1, Kind: Regular},
		{Name: "b", Width: 1, Height: 1, Kind: Regular},
	}
	nets := []Net{
		{Name: "n1", Pins: []Pin{{CellName: "a", Direction: "O"}, {CellName: "b", Direction: "I"}}},
	}
	m, err := NewModel(cells, nets)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func TestNewModel_DuplicateCellRejected(t *testing.T) {
	cells := []Cell{
		{Name: "a", Width: 1, Height: 1, Kind: Regular},
		{Name: "a", Width: 2, Height: 2, Kind: Regular},
	}
	if _, err := NewModel(cells, nil); err == nil {
		t.Fatal("expected error for duplicate cell name")
	}
}

func TestNewModel_DuplicateNetRejected(t *testing.T) {
	cells := []Cell{{Name: "a", Width: 1, Height: 1, Kind: Regular}}
	nets := []Net{
		{Name: "n1", Pins: []Pin{{CellName: "a"}}},
		{Name: "n1", Pins: []Pin{{CellName: "a"}}},
	}
	if _, err := NewModel(cells, nets); err == nil {
		t.Fatal("expected error for duplicate net name")
	}
}

func TestCell_MovableOnlyRegular(t *testing.T) {
	regular := Cell{Kind: Regular}
	terminal := Cell{Kind: Terminal}
	ni := Cell{Kind: TerminalNI}

	if !regular.Movable() {
		t.Error("Regular should be movable")
	}
	if terminal.Movable() {
		t.Error("Terminal should not be movable")
	}
	if ni.Movable() {
		t.Error("TerminalNI should not be movable")
	}
}

func TestCell_Area(t *testing.T) {
	c := Cell{Width: 3, Height: 4}
	if got := c.Area(); got != 12 {
		t.Errorf("Area() = %d, want 12", got)
	}
}

func TestModel_MovableNamesSortedAndExcludesTerminals(t *testing.T) {
	cells := []Cell{
		{Name: "zeta", Kind: Regular},
		{Name: "alpha", Kind: Regular},
		{Name: "pad1", Kind: Terminal},
	}
	m, err := NewModel(cells, nil)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	got := m.MovableNames()
	want := []string{"alpha", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("MovableNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MovableNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestModel_NetNamesSorted(t *testing.T) {
	m := twoCellOneNet(t)
	names := m.NetNames()
	if len(names) != 1 || names[0] != "n1" {
		t.Errorf("NetNames() = %v, want [n1]", names)
	}
}

func TestModel_CellLookup(t *testing.T) {
	m := twoCellOneNet(t)
	c, ok := m.Cell("a")
	if !ok {
		t.Fatal("expected cell a to be found")
	}
	if c.Name != "a" {
		t.Errorf("Cell(a).Name = %q, want a", c.Name)
	}
	if _, ok := m.Cell("missing"); ok {
		t.Error("expected missing cell to not be found")
	}
}

func TestModel_NumCellsAndNets(t *testing.T) {
	m := twoCellOneNet(t)
	if m.NumCells() != 2 {
		t.Errorf("NumCells() = %d, want 2", m.NumCells())
	}
	if m.NumNets() != 1 {
		t.Errorf("NumNets() = %d, want 1", m.NumNets())
	}
}

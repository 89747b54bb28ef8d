// Package circuit provides the immutable in-memory representation of a
// netlist (cells and nets) along with the adjacency index derived from it.
package circuit

import (
	"fmt"
	"sort"
)

// Kind identifies what role a Cell plays with respect to partitioning.
type Kind int

const (
	// Regular cells are movable between partitions.
	Regular Kind = iota
	// Terminal cells are fixed I/O pads; not movable, still contribute to cut
	// evaluation via net-keyed lookups.
	Terminal
	// TerminalNI cells are fixed, non-interfering terminals (ignored the same
	// way Terminal is by the core algorithm).
	TerminalNI
)

func (k Kind) String() string {
	switch k {
	case Regular:
		return "Regular"
	case Terminal:
		return "Terminal"
	case TerminalNI:
		return "TerminalNI"
	default:
		return "Unknown"
	}
}

// Cell is a circuit element with an area footprint and a kind.
type Cell struct {
	Name   string
	Width  int
	Height int
	Kind   Kind
}

// Area returns width * height.
func (c Cell) Area() int {
	return c.Width * c.Height
}

// Movable reports whether the algorithm may assign this cell to a side.
// Only Regular cells are movable; terminals of either flavor stay out of
// partition bookkeeping entirely.
func (c Cell) Movable() bool {
	return c.Kind == Regular
}

// Pin is one endpoint of a Net: a cell name and a preserved direction tag
// (e.g. "I"/"O"/"B"). The direction is carried through but never consulted
// by the partitioning algorithm.
type Pin struct {
	CellName  string
	Direction string
}

// Net is a hyperedge over cells, identified by name, with an ordered list
// of pins. Duplicate pins (the same cell repeated in one net) are
// preserved verbatim; see Model doc on duplicate-pin semantics.
type Net struct {
	Name string
	Pins []Pin
}

// Model is the immutable, fully-constructed circuit: every cell and net
// known after ingest. It is built once and never mutated afterward; every
// downstream component (AdjacencyIndex, partition.State, partition.Engine)
// treats it as read-only.
type Model struct {
	cells map[string]*Cell
	nets  map[string]*Net
}

// NewModel constructs a Model from cell and net slices. Cell and net names
// must be unique; a duplicate name is rejected with an error rather than
// silently overwritten, since the partitioner downstream assumes
// uniqueness.
func NewModel(cells []Cell, nets []Net) (*Model, error) {
	m := &Model{
		cells: make(map[string]*Cell, len(cells)),
		nets:  make(map[string]*Net, len(nets)),
	}
	for i := range cells {
		c := cells[i]
		if _, dup := m.cells[c.Name]; dup {
			return nil, fmt.Errorf("duplicate cell name %q", c.Name)
		}
		m.cells[c.Name] = &c
	}
	for i := range nets {
		n := nets[i]
		if _, dup := m.nets[n.Name]; dup {
			return nil, fmt.Errorf("duplicate net name %q", n.Name)
		}
		m.nets[n.Name] = &n
	}
	return m, nil
}

// Cells returns the cell map. Callers must not mutate the returned map or
// the Cell values it points to.
func (m *Model) Cells() map[string]*Cell {
	return m.cells
}

// Nets returns the net map. Callers must not mutate the returned map or
// the Net values it points to.
func (m *Model) Nets() map[string]*Net {
	return m.nets
}

// Cell looks up a single cell by name.
func (m *Model) Cell(name string) (*Cell, bool) {
	c, ok := m.cells[name]
	return c, ok
}

// NumCells returns the total number of cells (movable and fixed).
func (m *Model) NumCells() int {
	return len(m.cells)
}

// NumNets returns the total number of nets.
func (m *Model) NumNets() int {
	return len(m.nets)
}

// MovableNames returns the names of every Regular cell in sorted order.
// Map iteration in Go is randomized; sorting here is what makes cell
// traversal order reproducible across runs.
func (m *Model) MovableNames() []string {
	names := make([]string, 0, len(m.cells))
	for name, c := range m.cells {
		if c.Movable() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// NetNames returns every net name in sorted order, for deterministic
// iteration (cut calculation, output generation).
func (m *Model) NetNames() []string {
	names := make([]string, 0, len(m.nets))
	for name := range m.nets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

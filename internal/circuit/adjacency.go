package circuit

// AdjacencyIndex is the derived, bidirectional cell<->net mapping built
// once from a Model and treated as read-only afterward.
//
//   - CellNets[c] lists every net that includes cell c, but only for
//     movable (Regular) cells — terminals never appear as a key.
//   - NetCells[n] lists every cell in net n, movable or not, preserving
//     duplicate pins verbatim (no deduplication).
type AdjacencyIndex struct {
	cellNets map[string][]string
	netCells map[string][]string
}

// BuildAdjacencyIndex walks every (net, pin) pair of m exactly once.
func BuildAdjacencyIndex(m *Model) *AdjacencyIndex {
	idx := &AdjacencyIndex{
		cellNets: make(map[string][]string),
		netCells: make(map[string][]string),
	}

	for _, netName := range m.NetNames() {
		net := m.nets[netName]
		cells := make([]string, 0, len(net.Pins))
		for _, pin := range net.Pins {
			cells = append(cells, pin.CellName)
			if c, ok := m.cells[pin.CellName]; ok && c.Movable() {
				idx.cellNets[pin.CellName] = append(idx.cellNets[pin.CellName], net.Name)
			}
		}
		idx.netCells[net.Name] = cells
	}

	return idx
}

// CellNets returns the nets touching a movable cell. Returns nil for a
// terminal or unknown cell.
func (a *AdjacencyIndex) CellNets(cellName string) []string {
	return a.cellNets[cellName]
}

// NetCells returns every cell (movable or fixed) in a net, including
// duplicates, in the order they appeared in the input.
func (a *AdjacencyIndex) NetCells(netName string) []string {
	return a.netCells[netName]
}

// Neighbors returns the set of movable cells that share at least one net
// with cellName, excluding cellName itself. The gain engine's incremental
// update uses this to find which cells need a gain recompute after a move.
func (a *AdjacencyIndex) Neighbors(cellName string, movable func(string) bool) []string {
	seen := make(map[string]bool)
	var out []string
	for _, netName := range a.cellNets[cellName] {
		for _, other := range a.netCells[netName] {
			if other == cellName || seen[other] {
				continue
			}
			if movable != nil && !movable(other) {
				continue
			}
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}

package partition

import "github.com/fmcut/partitioner/internal/circuit"

// CalculateCut returns the number of nets that span both partitions. For
// each net, only cells present in state (movable cells) are considered;
// terminals are absent from state and therefore cannot, by themselves,
// pull a net into the cut.
func CalculateCut(m *circuit.Model, adj *circuit.AdjacencyIndex, state *State) int {
	cut := 0
	for _, netName := range m.NetNames() {
		sides := map[Side]bool{}
		for _, cellName := range adj.NetCells(netName) {
			c, ok := m.Cell(cellName)
			if !ok || !c.Movable() {
				continue
			}
			sides[state.Side(cellName)] = true
			if len(sides) >= 2 {
				break
			}
		}
		if len(sides) >= 2 {
			cut++
		}
	}
	return cut
}

package partition

import (
	"github.com/fmcut/partitioner/internal/circuit"
	"github.com/fmcut/partitioner/pkg/collections"
)

// Engine tracks the FM gain of every movable cell and maintains the
// gain-keyed bucket used by the pass controller's selection loop.
type Engine struct {
	model *circuit.Model
	adj   *circuit.AdjacencyIndex
	state *State

	gain   map[string]int
	bucket *collections.GainBucket
}

// NewEngine computes the initial gain of every movable cell against the
// current side assignment in state, and populates the bucket.
func NewEngine(m *circuit.Model, adj *circuit.AdjacencyIndex, state *State) *Engine {
	e := &Engine{
		model:  m,
		adj:    adj,
		state:  state,
		gain:   make(map[string]int),
		bucket: collections.NewGainBucket(),
	}
	e.RecomputeAll()
	return e
}

// RecomputeAll clears the bucket and gain map, then recomputes every
// movable cell's gain from scratch against the current side assignment.
// Used both for initial construction and at pass boundaries, where gains
// must be consistent with whatever side assignment the rollback settled on.
func (e *Engine) RecomputeAll() {
	e.gain = make(map[string]int)
	e.bucket = collections.NewGainBucket()
	for _, name := range e.model.MovableNames() {
		g := e.computeGain(name)
		e.gain[name] = g
		e.bucket.Insert(g, name)
	}
}

// computeGain evaluates the FM gain of a single movable cell against the
// current side assignment:
//
//	gain(c) = sum over nets n containing c of
//	            (+1 if F_count(n) == 1)
//	          + (-1 if T_count(n) == 0)
//
// where F is c's current side and T is the opposite. F_count/T_count are
// computed by scanning netCells[n] and consulting state.Side; cells
// absent from state (terminals) count toward neither side.
func (e *Engine) computeGain(cellName string) int {
	from := e.state.Side(cellName)
	to := from.Opposite()

	total := 0
	for _, netName := range e.adj.CellNets(cellName) {
		fCount, tCount := e.sideCounts(netName, from, to)
		if fCount == 1 {
			total++
		}
		if tCount == 0 {
			total--
		}
	}
	return total
}

// sideCounts scans netCells[netName] and tallies how many cells currently
// sit on each of from/to, per whatever state.Side reports. Cells with no
// entry in state (terminals) do not count toward either side.
func (e *Engine) sideCounts(netName string, from, to Side) (fCount, tCount int) {
	for _, cellName := range e.adj.NetCells(netName) {
		c, ok := e.model.Cell(cellName)
		if !ok || !c.Movable() {
			continue
		}
		switch e.state.Side(cellName) {
		case from:
			fCount++
		case to:
			tCount++
		}
	}
	return fCount, tCount
}

// Gain returns the current gain of a movable cell.
func (e *Engine) Gain(cellName string) int {
	return e.gain[cellName]
}

// Bucket exposes the underlying gain bucket for the pass controller's
// selection loop.
func (e *Engine) Bucket() *collections.GainBucket {
	return e.bucket
}

// UpdateAfterMove recomputes the gain of every unlocked neighbor of v
// after v has moved: remove the neighbor from its current bucket slot,
// recompute against the new side assignment, reinsert at the new key.
// v itself is not touched here; the caller is responsible for locking v
// and removing it from the bucket before moving it.
func (e *Engine) UpdateAfterMove(v string) {
	for _, w := range e.adj.Neighbors(v, func(name string) bool {
		c, ok := e.model.Cell(name)
		return ok && c.Movable()
	}) {
		if e.state.Locked(w) {
			continue
		}
		oldGain := e.gain[w]
		e.bucket.RemoveFromGain(oldGain, w)
		newGain := e.computeGain(w)
		e.gain[w] = newGain
		e.bucket.Insert(newGain, w)
	}
}

// RemoveFromBucket removes a cell from the bucket at its current gain,
// without recomputing it — used right before a cell is moved and locked.
func (e *Engine) RemoveFromBucket(cellName string) {
	e.bucket.RemoveFromGain(e.gain[cellName], cellName)
}

// GainSnapshot captures the gain map and bucket contents for later
// comparison against a freshly recomputed engine.
type GainSnapshot struct {
	gain   map[string]int
	bucket map[int][]string
}

// Snapshot captures the current gain/bucket state.
func (e *Engine) Snapshot() GainSnapshot {
	gain := make(map[string]int, len(e.gain))
	for k, v := range e.gain {
		gain[k] = v
	}
	return GainSnapshot{gain: gain, bucket: e.bucket.Snapshot()}
}

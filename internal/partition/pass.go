package partition

import "github.com/fmcut/partitioner/internal/circuit"

// move records one tentative flip made during a pass, enough to replay it
// against a restored snapshot during rollback.
type move struct {
	cellName string
	from     Side
}

// PassResult summarizes one executed pass for logging/telemetry.
type PassResult struct {
	StartCut    int
	BestCut     int
	MovesTried  int
	MovesKept   int
	Improved    bool
}

// Controller executes FM passes over a fixed Model/AdjacencyIndex, owning
// the mutable partition state and gain engine for its lifetime.
type Controller struct {
	model *circuit.Model
	adj   *circuit.AdjacencyIndex
	state *State
	gain  *Engine
}

// NewController builds the initial partition state, computes initial
// gains, and returns a ready-to-run Controller. It does not check
// feasibility; call Feasible (or State().Feasible()) before RunPass if the
// caller wants to fail fast.
func NewController(m *circuit.Model, mode Mode, cap int) *Controller {
	adj := circuit.BuildAdjacencyIndex(m)
	state := NewState(m, mode, cap)
	gain := NewEngine(m, adj, state)
	return &Controller{model: m, adj: adj, state: state, gain: gain}
}

// State returns the controller's partition state.
func (c *Controller) State() *State {
	return c.state
}

// Engine returns the controller's gain engine.
func (c *Controller) Engine() *Engine {
	return c.gain
}

// Feasible reports whether the current partition state can legally be
// improved by passes: every movable cell assigned, both sides within cap,
// and (in Area mode) no single cell bigger than cap.
func (c *Controller) Feasible() error {
	return c.state.Feasible()
}

// Cut returns the current cut size.
func (c *Controller) Cut() int {
	return CalculateCut(c.model, c.adj, c.state)
}

// RunPass executes exactly one FM pass:
//
//  1. snapshot state, clear locks, seed bestCut/currentCut/movesToBest.
//  2. repeatedly pop the highest-gain unlocked, capacity-feasible cell,
//     flip it, update neighbor gains, and track the best cut prefix.
//  3. restore the snapshot and replay exactly the best-prefix moves.
//  4. clear locks.
//
// It returns a PassResult describing what happened; the caller (Driver)
// decides whether to run another pass.
func (c *Controller) RunPass() PassResult {
	c.state.ClearLocks()

	snapshot := c.state.Snapshot()
	startCut := c.Cut()
	bestCut := startCut
	currentCut := bestCut
	movesToBest := 0

	var moveSeq []move

	numMovable := len(c.model.MovableNames())
	for !c.gain.Bucket().Empty() && len(moveSeq) < numMovable {
		cellName, _, ok := c.gain.Bucket().PopMax()
		if !ok {
			break
		}
		if c.state.Locked(cellName) {
			continue
		}

		cell, _ := c.model.Cell(cellName)
		from := c.state.Side(cellName)
		to := from.Opposite()
		w := c.state.Weight(cell)

		if !c.state.CanAccept(to, w) {
			// Strict-cap rule: skip without reinserting. The cell stays
			// unselectable for the rest of this pass.
			continue
		}

		c.state.Move(cellName)
		c.state.Lock(cellName)
		c.gain.UpdateAfterMove(cellName)

		moveSeq = append(moveSeq, move{cellName: cellName, from: from})
		currentCut = c.Cut()
		if currentCut < bestCut {
			bestCut = currentCut
			movesToBest = len(moveSeq)
		}
	}

	c.rollbackToBestPrefix(snapshot, moveSeq, movesToBest)
	c.state.ClearLocks()
	c.gain.RecomputeAll()

	return PassResult{
		StartCut:   startCut,
		BestCut:    bestCut,
		MovesTried: len(moveSeq),
		MovesKept:  movesToBest,
		Improved:   bestCut < startCut,
	}
}

// rollbackToBestPrefix restores state to the pass's starting snapshot,
// then replays exactly the first movesToBest entries of moveSeq against
// the restored state. Replaying rather than re-snapshotting at the best
// point guarantees side/aggregates are re-derived identically to a fresh
// run of those moves, with no drift.
func (c *Controller) rollbackToBestPrefix(snapshot Snapshot, moveSeq []move, movesToBest int) {
	c.state.Restore(snapshot)
	for i := 0; i < movesToBest; i++ {
		c.state.Move(moveSeq[i].cellName)
	}
}

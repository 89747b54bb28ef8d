package partition

import (
	"context"

	"github.com/fmcut/partitioner/pkg/utils"
)

// Result is the outcome of a full driver run: the final cut size, the
// per-pass history (for logging/telemetry/history storage), and the
// controller left positioned at the final partition.
type Result struct {
	FinalCut   int
	Passes     []PassResult
	Controller *Controller
}

// Run repeats Controller.RunPass while the cut strictly decreases:
//
//	prev = calculateCut()
//	loop:
//	    runOnePass()
//	    new = calculateCut()
//	    if new < prev: prev = new; continue
//	    else: break
//
// Termination is guaranteed because the cut is a non-negative integer and
// each continued iteration strictly decreases it. logger may be nil, in
// which case no per-pass logging occurs; ctx is checked between passes so
// a long-running batch job can be cancelled without ever interrupting a
// pass mid-flight.
func Run(ctx context.Context, c *Controller, logger utils.Logger) (Result, error) {
	if err := c.Feasible(); err != nil {
		return Result{}, err
	}
	if len(c.model.MovableNames()) == 0 {
		return Result{}, ErrNoMovableCells
	}

	prev := c.Cut()
	var passes []PassResult

	for {
		select {
		case <-ctx.Done():
			return Result{FinalCut: prev, Passes: passes, Controller: c}, ctx.Err()
		default:
		}

		pr := c.RunPass()
		passes = append(passes, pr)
		if logger != nil {
			logger.Debug("pass %d: start_cut=%d best_cut=%d moves_tried=%d moves_kept=%d",
				len(passes), pr.StartCut, pr.BestCut, pr.MovesTried, pr.MovesKept)
		}

		next := c.Cut()
		if next < prev {
			prev = next
			continue
		}
		break
	}

	if logger != nil {
		logger.Info("partition converged: passes=%d final_cut=%d", len(passes), prev)
	}

	return Result{FinalCut: prev, Passes: passes, Controller: c}, nil
}

package partition

// TrajectoryCalculator summarizes a driver run's per-pass cut history: a
// small reduction over the pass slice, used by the CLI/history layers for
// reporting rather than by the core algorithm itself.
type TrajectoryCalculator struct{}

// NewTrajectoryCalculator creates a TrajectoryCalculator.
func NewTrajectoryCalculator() *TrajectoryCalculator {
	return &TrajectoryCalculator{}
}

// TrajectoryResult describes how the cut size evolved across passes.
type TrajectoryResult struct {
	InitialCut     int
	FinalCut       int
	PassCount      int
	ImprovingPasses int
	TotalMovesKept int
	CutByPass      []int
}

// Calculate reduces a Result's pass history into a TrajectoryResult.
func (c *TrajectoryCalculator) Calculate(r Result) TrajectoryResult {
	out := TrajectoryResult{
		PassCount: len(r.Passes),
		CutByPass: make([]int, 0, len(r.Passes)),
	}
	if len(r.Passes) > 0 {
		out.InitialCut = r.Passes[0].StartCut
	}
	out.FinalCut = r.FinalCut
	for _, p := range r.Passes {
		out.CutByPass = append(out.CutByPass, p.BestCut)
		if p.Improved {
			out.ImprovingPasses++
		}
		out.TotalMovesKept += p.MovesKept
	}
	return out
}

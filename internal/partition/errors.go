package partition

import "errors"

var (
	// ErrInfeasible is returned when the capacity constraint cannot be
	// satisfied: some movable cell's weight alone exceeds cap (Area mode),
	// the initial partition already overflows cap, or a movable cell was
	// left unassigned.
	ErrInfeasible = errors.New("partition is infeasible under the given cap")

	// ErrNoMovableCells is returned when a circuit has no Regular cells to
	// assign; there is nothing for the algorithm to do.
	ErrNoMovableCells = errors.New("circuit has no movable cells")

	// ErrInvariantViolation marks an internal bucket/side desynchronization.
	// This is a programming bug, not a recoverable condition; callers are
	// expected to treat it as fatal.
	ErrInvariantViolation = errors.New("partition invariant violation")
)

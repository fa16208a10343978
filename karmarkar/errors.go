package karmarkar

import "errors"

var (
	// ErrSingularScaling is returned when a slack is not strictly positive, so
	// the diagonal scaling matrix cannot be inverted. A start point that is not
	// strictly feasible fails this way on the first iteration.
	ErrSingularScaling = errors.New("karmarkar: scaling matrix is singular")

	// ErrNumerical is returned when the pseudo-inverse of the scaled Gram
	// matrix cannot be computed.
	ErrNumerical = errors.New("karmarkar: pseudo-inverse failed")

	// ErrUnbounded is returned when no constraint limits the step along the
	// descent direction.
	ErrUnbounded = errors.New("karmarkar: problem is unbounded")

	ErrShape    = errors.New("karmarkar: size mismatch")
	ErrSettings = errors.New("karmarkar: invalid settings")
)

package karmarkar

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
)

// Scaling selects the diagonal used to rescale the constraints each iteration.
type Scaling int

const (
	// ScaleSquaredSlack weights row i by 1/vk[i]².
	ScaleSquaredSlack Scaling = iota
	// ScaleSlack weights row i by 1/vk[i].
	ScaleSlack
)

func (s Scaling) String() string {
	switch s {
	case ScaleSquaredSlack:
		return "squared"
	case ScaleSlack:
		return "slack"
	}
	return fmt.Sprintf("Scaling(%d)", int(s))
}

// ParseScaling maps "squared" and "slack" to their Scaling. The empty string
// selects the default.
func ParseScaling(s string) (Scaling, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "squared":
		return ScaleSquaredSlack, nil
	case "slack", "linear":
		return ScaleSlack, nil
	}
	return 0, fmt.Errorf("ParseScaling: unknown scaling %q: %w", s, ErrSettings)
}

// Settings controls a call to Solve.
type Settings struct {
	// Gamma damps the step below the boundary-touching length, 0 < Gamma <= 1.
	Gamma float64
	// Epsilon stops the iteration once the direction norm drops below it.
	Epsilon float64
	// MaxIterations bounds the number of iterations. Zero returns the start point.
	MaxIterations int
	// Tolerance is the absolute cutoff under which singular values are
	// dropped by the pseudo-inverse.
	Tolerance float64
	Scaling   Scaling

	// Logger receives Debug records for every iteration. Nil discards them.
	Logger *slog.Logger
	// Observer, if set, is called after every step update.
	Observer func(Iteration)
}

// DefaultSettings returns the settings used by the reference example.
func DefaultSettings() Settings {
	return Settings{
		Gamma:         0.5,
		Epsilon:       1e-3,
		MaxIterations: 100,
		Tolerance:     1e-9,
		Scaling:       ScaleSquaredSlack,
	}
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	switch {
	case !(s.Gamma > 0 && s.Gamma <= 1):
		return fmt.Errorf("gamma %g not in (0, 1]: %w", s.Gamma, ErrSettings)
	case !(s.Epsilon > 0) || math.IsInf(s.Epsilon, 1):
		return fmt.Errorf("epsilon %g must be positive and finite: %w", s.Epsilon, ErrSettings)
	case s.MaxIterations < 0:
		return fmt.Errorf("max iterations %d is negative: %w", s.MaxIterations, ErrSettings)
	case !(s.Tolerance >= 0):
		return fmt.Errorf("tolerance %g is negative: %w", s.Tolerance, ErrSettings)
	case s.Scaling != ScaleSquaredSlack && s.Scaling != ScaleSlack:
		return fmt.Errorf("unknown %v: %w", s.Scaling, ErrSettings)
	}
	return nil
}

func (s Settings) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

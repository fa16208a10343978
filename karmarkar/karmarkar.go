// Package karmarkar implements Karmarkar-style affine scaling for linear
// programs in inequality form
//
//	A·x ≤ b
//
// Starting from a strictly interior point, every iteration rescales the
// constraints by the current slacks, computes the direction d = (AᵀD⁻¹A)⁺·c
// and moves the iterate along −d, stopping short of the nearest constraint.
// Along the iterates c·x never increases, so the method improves the
// objective −c·x.
package karmarkar

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Float is the set of element types Solve accepts.
type Float interface {
	~float32 | ~float64
}

// Problem holds the inputs of a solve. A has one row per entry of B and one
// column per entry of C. X0 must satisfy A·X0 < B componentwise.
type Problem[F Float] struct {
	C  []F
	A  [][]F
	B  []F
	X0 []F
}

// Status tells why a successful solve stopped.
type Status int

const (
	// IterationLimit means MaxIterations passes ran without meeting Epsilon.
	IterationLimit Status = iota
	// Converged means the direction norm fell below Epsilon.
	Converged
	// NoFiniteBound means the ratio test produced no finite step.
	NoFiniteBound
)

func (s Status) String() string {
	switch s {
	case IterationLimit:
		return "iteration limit"
	case Converged:
		return "converged"
	case NoFiniteBound:
		return "no finite bound"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result is the outcome of a successful solve.
type Result[F Float] struct {
	X          []F
	Status     Status
	Iterations int // loop passes entered, including the one that stopped
	Objective  F   // c·X
}

// Iteration describes one completed step. Slices are copies.
type Iteration struct {
	Index     int
	X         []float64
	Slack     []float64 // b − A·x before the step
	Norm      float64   // ‖d‖
	Step      float64   // gamma·sa
	Objective float64   // c·x after the step
}

// Solve runs affine scaling on p. Reaching MaxIterations is not an error;
// check Result.Status to tell a truncated run from a converged one.
func Solve[F Float](p Problem[F], s Settings) (Result[F], error) {
	if err := s.Validate(); err != nil {
		return Result[F]{}, fmt.Errorf("Solve: %w", err)
	}
	m, n, err := p.dims()
	if err != nil {
		return Result[F]{}, fmt.Errorf("Solve: %w", err)
	}

	c := mat.NewVecDense(n, widen(p.C))
	b := mat.NewVecDense(m, widen(p.B))
	a := mat.NewDense(m, n, nil)
	for i, row := range p.A {
		for j, v := range row {
			a.Set(i, j, float64(v))
		}
	}
	x := mat.NewVecDense(n, widen(p.X0))

	status, iters, err := iterate(c, a, b, x, s)
	if err != nil {
		return Result[F]{}, fmt.Errorf("Solve: %w", err)
	}
	return Result[F]{
		X:          narrow[F](x.RawVector().Data),
		Status:     status,
		Iterations: iters,
		Objective:  F(mat.Dot(c, x)),
	}, nil
}

// iterate updates x in place until a stopping rule fires.
func iterate(c *mat.VecDense, a *mat.Dense, b, x *mat.VecDense, s Settings) (Status, int, error) {
	log := s.logger()
	m, n := a.Dims()

	var (
		vk   = mat.NewVecDense(m, nil)
		hv   = mat.NewVecDense(m, nil)
		d    = mat.NewVecDense(n, nil)
		gmat = mat.NewDense(n, n, nil)
		w    = make([]float64, m)
	)
	for k := 0; k < s.MaxIterations; k++ {
		// vk = b - A*x
		vk.MulVec(a, x)
		vk.SubVec(b, vk)

		if err := scaleWeights(w, vk.RawVector().Data, s.Scaling); err != nil {
			return IterationLimit, k + 1, fmt.Errorf("iteration %d: %w", k+1, err)
		}

		// G = Aᵗ * D⁻¹ * A
		gmat.Product(a.T(), mat.NewDiagDense(m, w), a)
		pgmat, err := PseudoInverse(gmat, s.Tolerance)
		if err != nil {
			return IterationLimit, k + 1, fmt.Errorf("iteration %d: %w", k+1, err)
		}

		d.MulVec(pgmat, c)
		norm := mat.Norm(d, 2)
		if norm < s.Epsilon {
			log.Debug("affine scaling converged", "iteration", k+1, "norm", norm)
			return Converged, k + 1, nil
		}

		hv.MulVec(a, d)
		hv.ScaleVec(-1, hv)
		if floats.Max(hv.RawVector().Data) <= 0 {
			return IterationLimit, k + 1, fmt.Errorf("iteration %d: %w", k+1, ErrUnbounded)
		}

		sa, ok := ratioTest(vk.RawVector().Data, hv.RawVector().Data)
		if !ok {
			log.Debug("affine scaling found no finite step", "iteration", k+1, "norm", norm)
			return NoFiniteBound, k + 1, nil
		}

		alpha := s.Gamma * sa
		x.AddScaledVec(x, -alpha, d)

		obj := mat.Dot(c, x)
		log.Debug("affine scaling step",
			"iteration", k+1,
			"norm", norm,
			"step", alpha,
			"objective", obj,
		)
		if s.Observer != nil {
			s.Observer(Iteration{
				Index:     k + 1,
				X:         mat.VecDenseCopyOf(x).RawVector().Data,
				Slack:     mat.VecDenseCopyOf(vk).RawVector().Data,
				Norm:      norm,
				Step:      alpha,
				Objective: obj,
			})
		}
	}
	return IterationLimit, s.MaxIterations, nil
}

// scaleWeights fills dst with the inverse of the scaling diagonal built from
// slack. Every slack must be strictly positive and finite.
func scaleWeights(dst, slack []float64, kind Scaling) error {
	for i, v := range slack {
		if !(v > 0) || math.IsInf(v, 1) {
			return fmt.Errorf("slack[%d] = %g: %w", i, v, ErrSingularScaling)
		}
		if kind == ScaleSlack {
			dst[i] = 1 / v
		} else {
			dst[i] = 1 / (v * v)
		}
		if math.IsInf(dst[i], 1) {
			return fmt.Errorf("slack[%d] = %g underflows: %w", i, v, ErrSingularScaling)
		}
	}
	return nil
}

// ratioTest returns the largest step along −d that keeps every slack
// non-negative: min vk[i]/hv[i] over hv[i] > 0. ok is false when that
// minimum is not a finite number.
func ratioTest(vk, hv []float64) (sa float64, ok bool) {
	sa = math.Inf(1)
	for i, h := range hv {
		if h > 0 {
			if r := vk[i] / h; r < sa {
				sa = r
			}
		}
	}
	if math.IsInf(sa, 0) || math.IsNaN(sa) {
		return sa, false
	}
	return sa, true
}

func (p Problem[F]) dims() (m, n int, err error) {
	n, m = len(p.C), len(p.A)
	switch {
	case n == 0:
		return 0, 0, fmt.Errorf("empty objective: %w", ErrShape)
	case m == 0:
		return 0, 0, fmt.Errorf("no constraints: %w", ErrShape)
	case len(p.B) != m:
		return 0, 0, fmt.Errorf("%d constraint rows but %d bounds: %w", m, len(p.B), ErrShape)
	case len(p.X0) != n:
		return 0, 0, fmt.Errorf("%d variables but start has %d: %w", n, len(p.X0), ErrShape)
	}
	for i, row := range p.A {
		if len(row) != n {
			return 0, 0, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), n, ErrShape)
		}
	}
	return m, n, nil
}

func widen[F Float](v []F) []float64 {
	out := make([]float64, len(v))
	for i, e := range v {
		out[i] = float64(e)
	}
	return out
}

func narrow[F Float](v []float64) []F {
	out := make([]F, len(v))
	for i, e := range v {
		out[i] = F(e)
	}
	return out
}

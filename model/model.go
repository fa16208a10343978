package model

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"

	"q.log/karmarkar/karmarkar"
)

// ErrShape is returned when a vector or matrix does not fit the model.
var ErrShape = errors.New("model: size mismatch")

// Model is a linear program in inequality form A·x <= b.
type Model struct {
	Name string

	//C objective function coefficients
	C *mat.VecDense

	//A constraints matrix
	A *mat.Dense

	//B constraints rhs
	B *mat.VecDense

	//X start point, replaced by the solution once solved
	X *mat.VecDense

	NumRows int
	NumCols int
}

// NewModel returns a zeroed model. numRows may be zero, in which case
// constraints are added with AddRow. A model without variables stays empty
// and every setter on it returns ErrShape.
func NewModel(numRows, numCols int) *Model {
	m := &Model{
		C:       &mat.VecDense{},
		A:       &mat.Dense{},
		B:       &mat.VecDense{},
		X:       &mat.VecDense{},
		NumRows: numRows,
		NumCols: numCols,
	}
	if numCols <= 0 {
		m.NumRows, m.NumCols = 0, 0
		return m
	}
	m.C = mat.NewVecDense(numCols, nil)
	m.X = mat.NewVecDense(numCols, nil)
	if numRows > 0 {
		m.A = mat.NewDense(numRows, numCols, nil)
		m.B = mat.NewVecDense(numRows, nil)
	}
	return m
}

func (m *Model) SetC(cVec []float64) error {
	if m.NumCols == 0 || len(cVec) != m.NumCols {
		return fmt.Errorf("SetC: %d coefficients for %d variables: %w", len(cVec), m.NumCols, ErrShape)
	}

	m.C = mat.NewVecDense(m.NumCols, cVec)

	return nil
}

// SetA sets the constraint matrix from row-major data.
func (m *Model) SetA(aVec []float64) error {
	if m.NumCols == 0 || m.NumRows == 0 || len(aVec) != m.NumCols*m.NumRows {
		return fmt.Errorf("SetA: %d entries for %dx%d: %w", len(aVec), m.NumRows, m.NumCols, ErrShape)
	}

	m.A = mat.NewDense(m.NumRows, m.NumCols, aVec)

	return nil
}

func (m *Model) SetB(bVec []float64) error {
	if m.NumCols == 0 || m.NumRows == 0 || len(bVec) != m.NumRows {
		return fmt.Errorf("SetB: %d bounds for %d constraints: %w", len(bVec), m.NumRows, ErrShape)
	}

	m.B = mat.NewVecDense(m.NumRows, bVec)

	return nil
}

func (m *Model) SetX(xVec []float64) error {
	if m.NumCols == 0 || len(xVec) != m.NumCols {
		return fmt.Errorf("SetX: %d values for %d variables: %w", len(xVec), m.NumCols, ErrShape)
	}

	m.X = mat.NewVecDense(m.NumCols, xVec)

	return nil
}

// AddRow appends the constraint rVec·x <= rhs.
func (m *Model) AddRow(rVec []float64, rhs float64) error {
	if m.NumCols == 0 || len(rVec) != m.NumCols {
		return fmt.Errorf("AddRow: %d coefficients for %d variables: %w", len(rVec), m.NumCols, ErrShape)
	}

	if m.NumRows == 0 {
		m.A = mat.NewDense(1, m.NumCols, append([]float64(nil), rVec...))
		m.B = mat.NewVecDense(1, []float64{rhs})
		m.NumRows++
		return nil
	}

	m.A = mat.DenseCopyOf(m.A.Grow(1, 0))
	m.A.SetRow(m.NumRows, rVec)

	b := make([]float64, m.NumRows+1)
	copy(b, m.B.RawVector().Data)
	b[m.NumRows] = rhs
	m.B = mat.NewVecDense(m.NumRows+1, b)

	m.NumRows++
	return nil
}

func (m *Model) RemoveRow(r int) error {
	if r < 0 || r >= m.NumRows {
		return fmt.Errorf("RemoveRow: row %d does not exist", r)
	}
	if m.NumRows == 1 {
		return fmt.Errorf("RemoveRow: cannot remove the last constraint: %w", ErrShape)
	}

	auxA := mat.NewDense(m.NumRows-1, m.NumCols, nil)
	auxB := mat.NewVecDense(m.NumRows-1, nil)
	dst := 0
	for row := range m.NumRows {
		if row == r {
			continue
		}
		auxA.SetRow(dst, m.A.RawRowView(row))
		auxB.SetVec(dst, m.B.AtVec(row))
		dst++
	}

	m.A = auxA
	m.B = auxB
	m.NumRows--

	return nil
}

// MultiplyConstraint scales row and its rhs by mul. A negative mul flips
// the inequality, which callers use to turn a >= row into a <= row.
func (m *Model) MultiplyConstraint(row int, mul float64) error {
	if row < 0 || row >= m.NumRows {
		return fmt.Errorf("MultiplyConstraint: row %d does not exist", row)
	}

	for col := range m.NumCols {
		m.A.Set(row, col, m.A.At(row, col)*mul)
	}
	m.B.SetVec(row, m.B.AtVec(row)*mul)
	return nil
}

// Slack returns b - A·x.
func (m *Model) Slack(x mat.Vector) *mat.VecDense {
	s := mat.NewVecDense(m.NumRows, nil)
	s.MulVec(m.A, x)
	s.SubVec(m.B, s)
	return s
}

// StrictlyFeasible reports whether every slack at x is positive, and the
// first row that is not.
func (m *Model) StrictlyFeasible(x mat.Vector) (bool, int) {
	s := m.Slack(x)
	for i := range m.NumRows {
		if !(s.AtVec(i) > 0) {
			return false, i
		}
	}
	return true, -1
}

func (m *Model) Objective(x mat.Vector) float64 {
	return mat.Dot(m.C, x)
}

// Problem converts the model, with X as the start point, for karmarkar.Solve.
func (m *Model) Problem() karmarkar.Problem[float64] {
	a := make([][]float64, m.NumRows)
	for r := range m.NumRows {
		a[r] = mat.Row(nil, r, m.A)
	}
	return karmarkar.Problem[float64]{
		C:  mat.Col(nil, 0, m.C),
		A:  a,
		B:  mat.Col(nil, 0, m.B),
		X0: mat.Col(nil, 0, m.X),
	}
}

// Solve runs affine scaling from X and stores the result back into X.
func (m *Model) Solve(s karmarkar.Settings) (karmarkar.Result[float64], error) {
	if m.NumRows == 0 || m.NumCols == 0 {
		return karmarkar.Result[float64]{}, fmt.Errorf("Solve: empty %dx%d model: %w", m.NumRows, m.NumCols, ErrShape)
	}
	if ok, row := m.StrictlyFeasible(m.X); !ok {
		return karmarkar.Result[float64]{}, fmt.Errorf("Solve: start violates row %d (slack %g): %w",
			row, m.Slack(m.X).AtVec(row), karmarkar.ErrSingularScaling)
	}
	res, err := karmarkar.Solve(m.Problem(), s)
	if err != nil {
		return res, err
	}
	m.X = mat.NewVecDense(m.NumCols, append([]float64(nil), res.X...))
	return res, nil
}

func (m *Model) PrintC(w io.Writer) {
	caux := mat.Formatted(m.C.T(), mat.Prefix("    "), mat.Squeeze())
	fmt.Fprintf(w, "c = %v\n", caux)
}

func (m *Model) PrintB(w io.Writer) {
	caux := mat.Formatted(m.B.T(), mat.Prefix("    "), mat.Squeeze())
	fmt.Fprintf(w, "b = %v\n", caux)
}

func (m *Model) PrintA(w io.Writer) {
	caux := mat.Formatted(m.A, mat.Prefix("    "), mat.Squeeze())
	fmt.Fprintf(w, "A = %v\n", caux)
}

func (m *Model) PrintSolution(w io.Writer) {
	xaux := mat.Formatted(m.X.T(), mat.Prefix("    "), mat.Squeeze())
	fmt.Fprintf(w, "x = %v\n", xaux)
	fmt.Fprintf(w, "Z = %v\n", m.Objective(m.X))
}

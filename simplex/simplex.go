// Package simplex cross-checks interior-point answers by solving the same
// model with GLPK's primal simplex.
package simplex

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/lukpank/go-glpk/glpk"

	"q.log/karmarkar/model"
)

var (
	ErrUnbounded  = errors.New("simplex: problem is unbounded")
	ErrInfeasible = errors.New("simplex: problem is infeasible")
)

// Solution is an optimal vertex of the model.
type Solution struct {
	Objective float64
	X         []float64
}

// Solve minimises c·x subject to A·x <= b with every variable free, which is
// the direction karmarkar.Solve moves in.
func Solve(m *model.Model) (Solution, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	lp := glpk.New()
	defer lp.Delete()

	lp.SetProbName(m.Name)
	lp.SetObjDir(glpk.MIN)
	lp.AddRows(m.NumRows)
	lp.AddCols(m.NumCols)
	for c := range m.NumCols {
		lp.SetColBnds(c+1, glpk.FR, 0, 0)
		lp.SetObjCoef(c+1, m.C.AtVec(c))
	}
	for r := range m.NumRows {
		lp.SetRowBnds(r+1, glpk.UP, 0, m.B.AtVec(r))
		// glpk ignores index 0
		ind := []int32{0}
		val := []float64{0}
		for c := range m.NumCols {
			if v := m.A.At(r, c); v != 0 {
				ind = append(ind, int32(c+1))
				val = append(val, v)
			}
		}
		lp.SetMatRow(r+1, ind, val)
	}

	parm := glpk.NewSmcp()
	parm.SetMsgLev(glpk.MSG_OFF)
	if err := lp.Simplex(parm); err != nil {
		return Solution{}, fmt.Errorf("Solve: %w", err)
	}

	switch lp.Status() {
	case glpk.OPT:
	case glpk.UNBND:
		return Solution{}, ErrUnbounded
	case glpk.NOFEAS, glpk.INFEAS:
		return Solution{}, ErrInfeasible
	default:
		return Solution{}, fmt.Errorf("Solve: glpk status %v", lp.Status())
	}

	sol := Solution{
		Objective: lp.ObjVal(),
		X:         make([]float64, m.NumCols),
	}
	for c := range m.NumCols {
		sol.X[c] = lp.ColPrim(c + 1)
	}
	return sol, nil
}

// Gap returns |obj - ref| scaled by max(1, |ref|).
func (s Solution) Gap(obj float64) float64 {
	return math.Abs(obj-s.Objective) / math.Max(1, math.Abs(s.Objective))
}

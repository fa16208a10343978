package mps

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/lukpank/go-glpk/glpk"

	"q.log/karmarkar/model"
)

// ErrEquality is returned for equality rows and fixed columns: such a
// problem has no strictly interior point.
var ErrEquality = errors.New("mps: equality constraint has no interior")

// Reader reads a mps file to construct a model
type Reader struct {
	filename string
	fixed    bool
}

func NewReader(filename string) *Reader {
	return &Reader{
		filename: filename,
	}
}

// Fixed switches from free to fixed (deck) MPS format.
func (r *Reader) Fixed() *Reader {
	r.fixed = true
	return r
}

// ConstructModelFromFile returns a *Model in inequality form A·x <= b.
// Rows bounded below are negated, ranged rows become two rows and finite
// column bounds are appended as rows. The objective is copied as is, so the
// solver lowers it, matching the minimisation sense of MPS.
func (r *Reader) ConstructModelFromFile() (*model.Model, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	lp := glpk.New()
	defer lp.Delete()

	format := glpk.MPS_FILE
	if r.fixed {
		format = glpk.MPS_DECK
	}
	if err := lp.ReadMPS(format, nil, r.filename); err != nil {
		return nil, fmt.Errorf("ConstructModelFromFile %s: %w", r.filename, err)
	}

	numCols := lp.NumCols()
	if numCols == 0 {
		return nil, fmt.Errorf("ConstructModelFromFile: %s has no columns: %w", r.filename, model.ErrShape)
	}
	m := model.NewModel(0, numCols)
	m.Name = lp.ProbName()

	//populate obj function
	cVec := make([]float64, numCols)
	for c := range numCols {
		cVec[c] = lp.ObjCoef(c + 1)
	}
	if err := m.SetC(cVec); err != nil {
		return nil, fmt.Errorf("ConstructModelFromFile: %w", err)
	}

	//populate constraints
	for row := 1; row <= lp.NumRows(); row++ {
		rowVec := make([]float64, numCols)
		idxs, vals := lp.MatRow(row)
		for i, v := range idxs {
			if v == 0 {
				continue
			}
			rowVec[v-1] = vals[i]
		}
		if err := addBounded(m, rowVec, lp.RowType(row), lp.RowLB(row), lp.RowUB(row)); err != nil {
			return nil, fmt.Errorf("ConstructModelFromFile: row %q: %w", lp.RowName(row), err)
		}
	}

	for c := range numCols {
		rowVec := make([]float64, numCols)
		rowVec[c] = 1
		if err := addBounded(m, rowVec, lp.ColType(c+1), lp.ColLB(c+1), lp.ColUB(c+1)); err != nil {
			return nil, fmt.Errorf("ConstructModelFromFile: column %q: %w", lp.ColName(c+1), err)
		}
	}

	if m.NumRows == 0 {
		return nil, fmt.Errorf("ConstructModelFromFile: %s has no constraints", r.filename)
	}
	return m, nil
}

// addBounded appends lb <= row·x <= ub as up to two <= rows.
func addBounded(m *model.Model, rowVec []float64, typ glpk.BndsType, lb, ub float64) error {
	switch typ {
	case glpk.FR:
		return nil
	case glpk.FX:
		return ErrEquality
	}
	if typ == glpk.UP || typ == glpk.DB {
		if err := m.AddRow(rowVec, ub); err != nil {
			return err
		}
	}
	if typ == glpk.LO || typ == glpk.DB {
		neg := make([]float64, len(rowVec))
		for i, v := range rowVec {
			neg[i] = -v
		}
		if err := m.AddRow(neg, -lb); err != nil {
			return err
		}
	}
	return nil
}

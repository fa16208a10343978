package karmarkar

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// PseudoInverse returns the Moore–Penrose inverse of a computed from its thin
// SVD. Singular values not greater than tol are treated as zero.
func PseudoInverse(a mat.Matrix, tol float64) (*mat.Dense, error) {
	if tol < 0 {
		return nil, fmt.Errorf("PseudoInverse: tolerance %g: %w", tol, ErrSettings)
	}
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := a.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("PseudoInverse: non-finite entry at (%d,%d): %w", i, j, ErrNumerical)
			}
		}
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, fmt.Errorf("PseudoInverse: SVD did not converge: %w", ErrNumerical)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	sigma := svd.Values(nil)
	for i, s := range sigma {
		if s > tol {
			sigma[i] = 1 / s
		} else {
			sigma[i] = 0
		}
	}

	// A⁺ = V·Σ⁺·Uᵀ
	pinv := mat.NewDense(c, r, nil)
	pinv.Product(&v, mat.NewDiagDense(len(sigma), sigma), u.T())
	return pinv, nil
}

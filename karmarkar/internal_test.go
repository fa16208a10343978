package karmarkar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestRatioTest(t *testing.T) {
	for _, tc := range []struct {
		name   string
		vk, hv []float64
		want   float64
		ok     bool
	}{
		{"min over positive rows", []float64{4, 1, 3}, []float64{2, -1, 3}, 1, true},
		{"no positive rows", []float64{1, 1}, []float64{0, -2}, math.Inf(1), false},
		{"nan slack", []float64{math.NaN(), 1}, []float64{1, -1}, math.Inf(1), false},
		{"infinite slack", []float64{math.Inf(1)}, []float64{1}, math.Inf(1), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sa, ok := ratioTest(tc.vk, tc.hv)
			require.Equal(t, tc.ok, ok)
			if ok {
				require.Equal(t, tc.want, sa)
			}
		})
	}
}

func TestScaleWeights(t *testing.T) {
	w := make([]float64, 2)
	require.NoError(t, scaleWeights(w, []float64{2, 4}, ScaleSquaredSlack))
	require.Equal(t, []float64{0.25, 0.0625}, w)

	require.NoError(t, scaleWeights(w, []float64{2, 4}, ScaleSlack))
	require.Equal(t, []float64{0.5, 0.25}, w)

	for _, bad := range [][]float64{{1, 0}, {-1, 1}, {math.NaN(), 1}, {1e-200, 1}} {
		require.ErrorIs(t, scaleWeights(w, bad, ScaleSquaredSlack), ErrSingularScaling, "%v", bad)
	}
}

func TestPseudoInverse(t *testing.T) {
	for _, tc := range []struct {
		name string
		a    *mat.Dense
		want *mat.Dense
	}{
		{
			name: "invertible",
			a:    mat.NewDense(2, 2, []float64{1, 2, 3, 4}),
			want: mat.NewDense(2, 2, []float64{-2, 1, 1.5, -0.5}),
		},
		{
			name: "singular",
			a:    mat.NewDense(2, 2, []float64{2, 0, 0, 0}),
			want: mat.NewDense(2, 2, []float64{0.5, 0, 0, 0}),
		},
		{
			name: "rank one",
			a:    mat.NewDense(2, 2, []float64{1, 1, 1, 1}),
			want: mat.NewDense(2, 2, []float64{0.25, 0.25, 0.25, 0.25}),
		},
		{
			name: "tall",
			a:    mat.NewDense(2, 1, []float64{1, 1}),
			want: mat.NewDense(1, 2, []float64{0.5, 0.5}),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PseudoInverse(tc.a, 1e-9)
			require.NoError(t, err)
			require.True(t, mat.EqualApprox(got, tc.want, 1e-12), "got\n%v", mat.Formatted(got))
		})
	}

	_, err := PseudoInverse(mat.NewDense(1, 1, []float64{math.NaN()}), 1e-9)
	require.ErrorIs(t, err, ErrNumerical)

	_, err = PseudoInverse(mat.NewDense(1, 1, []float64{1}), -1)
	require.ErrorIs(t, err, ErrSettings)
}

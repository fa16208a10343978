package instance_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"q.log/karmarkar/instance"
	"q.log/karmarkar/karmarkar"
)

func TestConstructModelFromFile(t *testing.T) {
	m, s, err := instance.NewReader("testdata/reference.yaml").ConstructModelFromFile()
	require.NoError(t, err)
	require.Equal(t, "reference", m.Name)
	require.Equal(t, 2, m.NumRows)
	require.Equal(t, 2, m.NumCols)
	require.Equal(t, []float64{1, -1}, mat.Row(nil, 1, m.A))
	require.Equal(t, []float64{0.5, 1}, mat.Col(nil, 0, m.B))
	require.Equal(t, []float64{-2, -2}, mat.Col(nil, 0, m.X))
	require.Equal(t, 30, s.MaxIterations)
	require.Equal(t, karmarkar.ScaleSquaredSlack, s.Scaling)

	res, err := m.Solve(s)
	require.NoError(t, err)
	require.InDelta(t, 0.23242187, res.X[0], 1e-6)
}

func TestMissingFile(t *testing.T) {
	_, _, err := instance.NewReader("testdata/missing.yaml").ConstructModelFromFile()
	require.Error(t, err)
}

func TestDefaultsWithoutSolverSection(t *testing.T) {
	doc := `
objective: [1, 2]
constraints:
  - {coefs: [1, 0], rhs: 1}
`
	m, s, err := instance.Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, karmarkar.DefaultSettings(), s)
	require.Equal(t, []float64{0, 0}, mat.Col(nil, 0, m.X))
}

func TestPartialSolverSection(t *testing.T) {
	doc := `
objective: [1]
constraints:
  - {coefs: [1], rhs: 1}
solver: {gamma: 0.9, scaling: slack}
`
	_, s, err := instance.Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, 0.9, s.Gamma)
	require.Equal(t, karmarkar.ScaleSlack, s.Scaling)
	require.Equal(t, karmarkar.DefaultSettings().Epsilon, s.Epsilon)
}

func TestMalformed(t *testing.T) {
	for name, doc := range map[string]string{
		"not yaml":      "objective: [1, 2",
		"unknown field": "objective: [1]\nconstraints: [{coefs: [1], rhs: 1}]\nextra: 1\n",
		"no objective":  "constraints: [{coefs: [1], rhs: 1}]\n",
		"no rows":       "objective: [1]\n",
		"ragged row":    "objective: [1, 2]\nconstraints: [{coefs: [1], rhs: 1}]\n",
		"bad start":     "objective: [1]\nconstraints: [{coefs: [1], rhs: 1}]\nstart: [0, 0]\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := instance.Decode(strings.NewReader(doc))
			require.ErrorIs(t, err, instance.ErrInstance)
		})
	}

	doc := "objective: [1]\nconstraints: [{coefs: [1], rhs: 1}]\nsolver: {gamma: 2}\n"
	_, _, err := instance.Decode(strings.NewReader(doc))
	require.ErrorIs(t, err, karmarkar.ErrSettings)
}

func TestEncodeRoundTrip(t *testing.T) {
	m, s, err := instance.NewReader("testdata/reference.yaml").ConstructModelFromFile()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, instance.Encode(&buf, m, s))

	back, s2, err := instance.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, s, s2)
	require.True(t, mat.Equal(m.A, back.A))
	require.True(t, mat.Equal(m.B, back.B))
	require.True(t, mat.Equal(m.C, back.C))
	require.True(t, mat.Equal(m.X, back.X))
}

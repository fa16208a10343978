//go:build glpk

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"q.log/karmarkar/instance"
)

func TestExampleCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := exampleCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.Contains(t, out.String(), "Z = -0.46484")
}

func TestSolveCommandSaves(t *testing.T) {
	saved := filepath.Join(t.TempDir(), "solved.yaml")
	var out bytes.Buffer
	cmd := solveCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"instance/testdata/reference.yaml", "--trace", "--nloop", "3", "--save", saved})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.Contains(t, out.String(), "   3  z=")

	m, s, err := instance.NewReader(saved).ConstructModelFromFile()
	require.NoError(t, err)
	require.Equal(t, 3, s.MaxIterations)
	require.InDelta(t, -0.03125, m.X.AtVec(0), 1e-9)
}

func TestSolveCommandMPS(t *testing.T) {
	var out bytes.Buffer
	cmd := solveCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"mps/testdata/rows.mps", "--start", "2,0", "--eps", "1e-9", "--nloop", "200"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.Contains(t, out.String(), "Z = -3.99")
}

func TestSolveCommandMPSNeedsFeasibleStart(t *testing.T) {
	cmd := solveCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"mps/testdata/rows.mps"})
	require.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestSaveReportsErrors(t *testing.T) {
	m, s, err := instance.NewReader("instance/testdata/reference.yaml").ConstructModelFromFile()
	require.NoError(t, err)

	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "out.yaml")
	require.Error(t, save(missing, m, s))

	ok := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, save(ok, m, s))
	_, _, err = instance.NewReader(ok).ConstructModelFromFile()
	require.NoError(t, err)
}

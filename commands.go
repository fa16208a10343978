package main

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"q.log/karmarkar/instance"
	"q.log/karmarkar/karmarkar"
	"q.log/karmarkar/model"
	"q.log/karmarkar/mps"
	"q.log/karmarkar/simplex"
)

//go:embed example.yaml
var exampleYAML []byte

func Execute(ctx context.Context, level *slog.LevelVar) error {
	var verbose bool
	root := &cobra.Command{
		Use:           "karmarkar",
		Short:         "Affine-scaling solver for A·x <= b",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				level.Set(slog.LevelDebug)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every iteration")
	root.AddCommand(solveCmd(), exampleCmd())
	return root.ExecuteContext(ctx)
}

type solveOptions struct {
	start   []float64
	gamma   float64
	eps     float64
	nloop   int
	tol     float64
	scaling string
	fixed   bool
	trace   bool
	verify  bool
	save    string
}

func solveCmd() *cobra.Command {
	var opts solveOptions
	cmd := &cobra.Command{
		Use:   "solve <problem.yaml|problem.mps>",
		Short: "Solve a problem file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, s, err := load(args[0], opts.fixed)
			if err != nil {
				return err
			}
			if err := opts.apply(cmd.Flags(), m, &s); err != nil {
				return err
			}
			return run(cmd, m, s, opts)
		},
	}
	f := cmd.Flags()
	f.Float64SliceVar(&opts.start, "start", nil, "strictly feasible start point")
	f.Float64Var(&opts.gamma, "gamma", 0, "step damping factor in (0, 1]")
	f.Float64Var(&opts.eps, "eps", 0, "stop when the direction norm is below eps")
	f.IntVar(&opts.nloop, "nloop", 0, "maximum number of iterations")
	f.Float64Var(&opts.tol, "tolerance", 0, "pseudo-inverse singular value cutoff")
	f.StringVar(&opts.scaling, "scaling", "", "scaling diagonal: squared or slack")
	f.BoolVar(&opts.fixed, "fixed", false, "read MPS files in fixed format")
	f.BoolVar(&opts.trace, "trace", false, "print every iterate")
	f.BoolVar(&opts.verify, "verify", false, "compare against the GLPK simplex optimum")
	f.StringVar(&opts.save, "save", "", "write the solved problem as YAML to this file")
	return cmd
}

func exampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Solve the built-in two-variable example",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, s, err := instance.Decode(bytes.NewReader(exampleYAML))
			if err != nil {
				return fmt.Errorf("example: %w", err)
			}
			return run(cmd, m, s, solveOptions{})
		},
	}
}

func load(path string, fixed bool) (*model.Model, karmarkar.Settings, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mps":
		r := mps.NewReader(path)
		if fixed {
			r.Fixed()
		}
		m, err := r.ConstructModelFromFile()
		return m, karmarkar.DefaultSettings(), err
	default:
		return instance.NewReader(path).ConstructModelFromFile()
	}
}

// apply overrides the file settings with the flags the user set.
func (o solveOptions) apply(flags *pflag.FlagSet, m *model.Model, s *karmarkar.Settings) error {
	if flags.Changed("start") {
		if err := m.SetX(o.start); err != nil {
			return err
		}
	}
	if flags.Changed("gamma") {
		s.Gamma = o.gamma
	}
	if flags.Changed("eps") {
		s.Epsilon = o.eps
	}
	if flags.Changed("nloop") {
		s.MaxIterations = o.nloop
	}
	if flags.Changed("tolerance") {
		s.Tolerance = o.tol
	}
	if flags.Changed("scaling") {
		scaling, err := karmarkar.ParseScaling(o.scaling)
		if err != nil {
			return err
		}
		s.Scaling = scaling
	}
	return s.Validate()
}

func run(cmd *cobra.Command, m *model.Model, s karmarkar.Settings, o solveOptions) error {
	out := cmd.OutOrStdout()
	log := slog.Default().With("problem", m.Name)
	s.Logger = log
	if o.trace {
		s.Observer = func(it karmarkar.Iteration) {
			fmt.Fprintf(out, "%4d  z=%-14.8g step=%-12.6g |d|=%-12.6g x=%v\n",
				it.Index, it.Objective, it.Step, it.Norm, it.X)
		}
	}

	m.PrintC(out)
	m.PrintA(out)
	m.PrintB(out)

	log.Info("solving", "rows", m.NumRows, "cols", m.NumCols,
		"gamma", s.Gamma, "eps", s.Epsilon, "nloop", s.MaxIterations, "scaling", s.Scaling)
	res, err := m.Solve(s)
	if err != nil {
		return err
	}
	log.Info("finished", "status", res.Status, "iterations", res.Iterations, "objective", res.Objective)
	if res.Status != karmarkar.Converged {
		log.Warn("result did not meet the tolerance", "status", res.Status)
	}
	m.PrintSolution(out)

	if o.verify {
		ref, err := simplex.Solve(m)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		log.Info("reference simplex", "objective", ref.Objective, "gap", ref.Gap(res.Objective))
	}

	if o.save != "" {
		if err := save(o.save, m, s); err != nil {
			return err
		}
		log.Info("saved", "file", o.save)
	}
	return nil
}

func save(path string, m *model.Model, s karmarkar.Settings) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := instance.Encode(f, m, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

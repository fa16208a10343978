package instance

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"q.log/karmarkar/karmarkar"
	"q.log/karmarkar/model"
)

var ErrInstance = errors.New("instance: malformed problem file")

// File is the YAML layout of a problem file.
type File struct {
	Name        string       `yaml:"name,omitempty"`
	Objective   []float64    `yaml:"objective"`
	Constraints []Constraint `yaml:"constraints"`
	Start       []float64    `yaml:"start"`
	Solver      *Solver      `yaml:"solver,omitempty"`
}

// Constraint is one row coefs·x <= rhs.
type Constraint struct {
	Coefs []float64 `yaml:"coefs,flow"`
	RHS   float64   `yaml:"rhs"`
}

// Solver overrides karmarkar.DefaultSettings field by field.
type Solver struct {
	Gamma     *float64 `yaml:"gamma,omitempty"`
	Eps       *float64 `yaml:"eps,omitempty"`
	NLoop     *int     `yaml:"nloop,omitempty"`
	Tolerance *float64 `yaml:"tolerance,omitempty"`
	Scaling   string   `yaml:"scaling,omitempty"`
}

// Reader reads a YAML problem file to construct a model
type Reader struct {
	filename string
}

func NewReader(filename string) *Reader {
	return &Reader{
		filename: filename,
	}
}

// ConstructModelFromFile returns the model and the solver settings of the file.
func (r *Reader) ConstructModelFromFile() (*model.Model, karmarkar.Settings, error) {
	f, err := os.Open(r.filename)
	if err != nil {
		return nil, karmarkar.Settings{}, fmt.Errorf("ConstructModelFromFile: %w", err)
	}
	defer f.Close()

	m, s, err := Decode(f)
	if err != nil {
		return nil, karmarkar.Settings{}, fmt.Errorf("ConstructModelFromFile %s: %w", r.filename, err)
	}
	return m, s, nil
}

// Decode reads one problem document from r.
func Decode(r io.Reader) (*model.Model, karmarkar.Settings, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, karmarkar.Settings{}, fmt.Errorf("Decode: %v: %w", err, ErrInstance)
	}
	return file.Model()
}

// Model validates the file and builds the model it describes.
func (f *File) Model() (*model.Model, karmarkar.Settings, error) {
	numCols := len(f.Objective)
	if numCols == 0 {
		return nil, karmarkar.Settings{}, fmt.Errorf("objective is empty: %w", ErrInstance)
	}
	if len(f.Constraints) == 0 {
		return nil, karmarkar.Settings{}, fmt.Errorf("no constraints: %w", ErrInstance)
	}

	m := model.NewModel(0, numCols)
	m.Name = f.Name
	if err := m.SetC(f.Objective); err != nil {
		return nil, karmarkar.Settings{}, fmt.Errorf("objective: %v: %w", err, ErrInstance)
	}
	for i, c := range f.Constraints {
		if err := m.AddRow(c.Coefs, c.RHS); err != nil {
			return nil, karmarkar.Settings{}, fmt.Errorf("constraint %d: %v: %w", i, err, ErrInstance)
		}
	}
	if f.Start != nil {
		if err := m.SetX(f.Start); err != nil {
			return nil, karmarkar.Settings{}, fmt.Errorf("start: %v: %w", err, ErrInstance)
		}
	}

	s, err := f.Solver.Settings()
	if err != nil {
		return nil, karmarkar.Settings{}, err
	}
	return m, s, nil
}

// Settings applies the overrides to karmarkar.DefaultSettings. A nil Solver
// returns the defaults.
func (s *Solver) Settings() (karmarkar.Settings, error) {
	set := karmarkar.DefaultSettings()
	if s == nil {
		return set, nil
	}
	if s.Gamma != nil {
		set.Gamma = *s.Gamma
	}
	if s.Eps != nil {
		set.Epsilon = *s.Eps
	}
	if s.NLoop != nil {
		set.MaxIterations = *s.NLoop
	}
	if s.Tolerance != nil {
		set.Tolerance = *s.Tolerance
	}
	scaling, err := karmarkar.ParseScaling(s.Scaling)
	if err != nil {
		return karmarkar.Settings{}, fmt.Errorf("solver: %w", err)
	}
	set.Scaling = scaling
	if err := set.Validate(); err != nil {
		return karmarkar.Settings{}, fmt.Errorf("solver: %w", err)
	}
	return set, nil
}

// Encode writes m and s as a problem file.
func Encode(w io.Writer, m *model.Model, s karmarkar.Settings) error {
	f := File{
		Name:      m.Name,
		Objective: append([]float64(nil), m.C.RawVector().Data...),
		Start:     append([]float64(nil), m.X.RawVector().Data...),
		Solver: &Solver{
			Gamma:     &s.Gamma,
			Eps:       &s.Epsilon,
			NLoop:     &s.MaxIterations,
			Tolerance: &s.Tolerance,
			Scaling:   s.Scaling.String(),
		},
	}
	for r := range m.NumRows {
		f.Constraints = append(f.Constraints, Constraint{
			Coefs: append([]float64(nil), m.A.RawRowView(r)...),
			RHS:   m.B.AtVec(r),
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("Encode: %w", err)
	}
	return enc.Close()
}

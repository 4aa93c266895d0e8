/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/molel-gt/ffcx/assembler"
	"github.com/molel-gt/ffcx/config"
	"github.com/molel-gt/ffcx/formlib"
	"github.com/molel-gt/ffcx/forms"
	"github.com/molel-gt/ffcx/mesh"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/molel-gt/ffcx/utils"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
)

// AssembleCmd represents the assemble command
var AssembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble a form over a mesh described by a YAML problem file",
	Long: `
Builds the mesh of a problem file, assembles its form and optional right hand
side, applies Dirichlet values on tagged boundaries and solves small systems
densely.

ffcx assemble -I problem.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			file string
			p    *config.Problem
		)
		if file, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			return
		}
		if len(file) == 0 {
			fmt.Printf("must supply an input parameters file (-I, --inputConditionsFile), for example:\n%s", exampleProblem)
			return fmt.Errorf("no problem file")
		}
		if p, err = config.ReadFile(file); err != nil {
			return
		}
		p.Print(os.Stdout)
		return runProblem(os.Stdout, p)
	},
}

var exampleProblem = `
########################################
Title: "Poisson on the unit square"
Form: poisson_a
Linear: poisson_L
Mesh:
  Generator: unit_square
  Shape: triangle
  Divisions: 16
Workers: 4
Partitioner: metis
NamedCoefficients: {kappa: 1.0, f: 1.0, g: 0.0}
Dirichlet:
  1: 0.0
  2: 0.0
Solve: true
########################################
`

func init() {
	rootCmd.AddCommand(AssembleCmd)
	AssembleCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for the problem parameters")
}

func runProblem(w io.Writer, p *config.Problem) (err error) {
	var (
		m      *mesh.Mesh
		A, b   *assembler.Tensor
		aA     *assembler.Assembler
		fa, fL *forms.Form
		values map[int]float64
	)
	if m, err = p.BuildMesh(); err != nil {
		return
	}
	fmt.Fprintf(w, "mesh: %d %s cells, %d vertices, %d partitions\n", m.NumCells(), m.Shape, m.NumVertices(),
		len(m.PartitionCells()))
	if fa, err = formlib.Get(p.Form, m.Shape); err != nil {
		return
	}
	if p.Linear != "" {
		if fL, err = formlib.Get(p.Linear, m.Shape); err != nil {
			return
		}
	}
	if err = checkCoefficientNames(p.NamedCoefficients, fa, fL); err != nil {
		return
	}
	if values, err = coefficientValues(fa, p.Coefficients, p.NamedCoefficients); err != nil {
		return
	}
	if aA, A, err = assembleNamed(w, m, p.Form, p.Workers, values); err != nil {
		return
	}
	if fL != nil {
		if values, err = coefficientValues(fL, p.LinearCoefficients, p.NamedCoefficients); err != nil {
			return
		}
		if _, b, err = assembleNamed(w, m, p.Linear, p.Workers, values); err != nil {
			return
		}
	}
	if !p.Solve {
		return
	}
	if b == nil {
		return fmt.Errorf("solve needs a right hand side form")
	}
	var (
		dofs []int
		bcs  []float64
	)
	for _, tag := range p.DirichletTags() {
		for _, dof := range assembler.DirichletDofs(m, aA.Dofmap(0), tag) {
			dofs = append(dofs, dof)
			bcs = append(bcs, p.Dirichlet[tag])
		}
	}
	if err = assembler.ApplyDirichlet(A, b, dofs, bcs); err != nil {
		return
	}
	start := time.Now()
	var x []float64
	if x, err = assembler.SolveDense(A, b); err != nil {
		return
	}
	fmt.Fprintf(w, "solved %d dofs with %d constrained in %v: min %8.5f, max %8.5f, |x| = %g\n",
		len(x), len(dofs), time.Since(start), floats.Min(x), floats.Max(x), floats.Norm(x, 2))
	return
}

// checkCoefficientNames fails for a name that no form has.
func checkCoefficientNames(named map[string]float64, fs ...*forms.Form) error {
	for name := range named {
		found := false
		for _, f := range fs {
			if f == nil {
				continue
			}
			if _, err := f.CoefficientNumber(name); err == nil {
				found = true
			}
		}
		if !found {
			return fmt.Errorf("coefficient %q: %w", name, ufc.ErrNotRegistered)
		}
	}
	return nil
}

// coefficientValues numbers the coefficient values of f, named values
// overriding positional ones. Names belonging to another form are skipped.
func coefficientValues(f *forms.Form, positional []float64, named map[string]float64) (values map[int]float64, err error) {
	if len(positional) > f.NumCoefficients() {
		return nil, fmt.Errorf("%d coefficient values for %s with %d coefficients", len(positional),
			f.Name(), f.NumCoefficients())
	}
	values = make(map[int]float64, f.NumCoefficients())
	for j, val := range positional {
		values[j] = val
	}
	for name, val := range named {
		if j, nerr := f.CoefficientNumber(name); nerr == nil {
			values[j] = val
		}
	}
	return
}

func assembleNamed(w io.Writer, m *mesh.Mesh, name string, workers int, coefficients map[int]float64) (a *assembler.Assembler, t *assembler.Tensor, err error) {
	f, err := formlib.Get(name, m.Shape)
	if err != nil {
		return
	}
	if a, err = assembler.New(m, f); err != nil {
		return
	}
	a.Workers = workers
	for j, val := range coefficients {
		if j < 0 || j >= f.NumCoefficients() {
			return nil, nil, fmt.Errorf("coefficient %d of %s with %d coefficients", j, f.Name(), f.NumCoefficients())
		}
		if err = a.SetCoefficient(j, utils.ConstArray(a.Dimension(f.Rank()+j), val)); err != nil {
			return
		}
	}
	start := time.Now()
	if t, err = a.Assemble(); err != nil {
		return
	}
	fmt.Fprintf(w, "%s: %s in %v\n", f.Name(), describe(t), time.Since(start))
	return
}

func describe(t *assembler.Tensor) string {
	switch t.Rank {
	case 0:
		return fmt.Sprintf("scalar %g", t.Scalar)
	case 1:
		return fmt.Sprintf("vector of %d, |b| = %g", len(t.Vector), floats.Norm(t.Vector, 2))
	}
	var frob float64
	t.Matrix.DoNonZero(func(_, _ int, v float64) { frob += v * v })
	return fmt.Sprintf("%d x %d matrix, %d nonzeros, |A|_F = %g", t.Dims[0], t.Dims[1], t.Matrix.NNZ(),
		math.Sqrt(frob))
}

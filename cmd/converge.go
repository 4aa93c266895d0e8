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

	"github.com/molel-gt/ffcx/assembler"
	"github.com/molel-gt/ffcx/formlib"
	"github.com/molel-gt/ffcx/mesh"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/molel-gt/ffcx/utils"
	"github.com/spf13/cobra"
)

// ConvergeCmd runs a manufactured solution study of the Poisson forms
var ConvergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Observed order of convergence of the Poisson forms under refinement",
	Long: `
Solves -div(grad(u)) = f on the unit square or cube with the exact solution
u = sin(pi x) sin(pi y) [sin(pi z)] on a sequence of refined meshes and prints
the maximum nodal error with the observed order.

ffcx converge -s quadrilateral -n 4 -l 3`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			shapeName string
			shape     ufc.Shape
			n, levels int
			workers   int
		)
		if shapeName, err = cmd.Flags().GetString("shape"); err != nil {
			return
		}
		if n, err = cmd.Flags().GetInt("n"); err != nil {
			return
		}
		if levels, err = cmd.Flags().GetInt("levels"); err != nil {
			return
		}
		if workers, err = cmd.Flags().GetInt("workers"); err != nil {
			return
		}
		if shape, err = ufc.ParseShape(shapeName); err != nil {
			return
		}
		var cs *utils.ConvergenceStudy
		if cs, err = convergence(shape, n, levels, workers); err != nil {
			return
		}
		cs.Print(os.Stdout)
		return
	},
}

func init() {
	rootCmd.AddCommand(ConvergeCmd)
	ConvergeCmd.Flags().StringP("shape", "s", "triangle", "cell shape")
	ConvergeCmd.Flags().IntP("n", "n", 4, "cells per side of the coarsest mesh")
	ConvergeCmd.Flags().IntP("levels", "l", 3, "number of uniform refinements")
	ConvergeCmd.Flags().IntP("workers", "w", 1, "number of assembly workers")
}

func sines(x []float64, tdim int) (u float64) {
	u = 1
	for j := 0; j < tdim; j++ {
		u *= math.Sin(math.Pi * x[j])
	}
	return
}

func convergence(shape ufc.Shape, n, levels, workers int) (cs *utils.ConvergenceStudy, err error) {
	var (
		tdim  = shape.TopologicalDimension()
		exact = ufc.FunctionFunc(func(values, x []float64, _ *ufc.Cell) {
			values[0] = sines(x, tdim)
		})
		source = ufc.FunctionFunc(func(values, x []float64, _ *ufc.Cell) {
			values[0] = float64(tdim) * math.Pi * math.Pi * sines(x, tdim)
		})
	)
	cs = utils.NewConvergenceStudy(fmt.Sprintf("poisson P1 on %s, max nodal error", shape))
	for level := 0; level < levels; level++ {
		b := &Bench{Shape: shape, N: n << level}
		var m *mesh.Mesh
		if m, err = b.mesh(); err != nil {
			return
		}
		var maxErr float64
		if maxErr, err = solvePoisson(m, workers, exact, source); err != nil {
			return
		}
		cs.Add(1/float64(b.N), maxErr)
	}
	return
}

func solvePoisson(m *mesh.Mesh, workers int, exact, source ufc.Function) (maxErr float64, err error) {
	var (
		aa, aL *assembler.Assembler
		A, b   *assembler.Tensor
		x      []float64
	)
	if aa, A, err = assembleNamed(io.Discard, m, "poisson_a", workers, map[int]float64{0: 1}); err != nil {
		return
	}
	fL, err := formlib.Get("poisson_L", m.Shape)
	if err != nil {
		return
	}
	if aL, err = assembler.New(m, fL); err != nil {
		return
	}
	aL.Workers = workers
	var (
		dm = aa.Dofmap(0)
		p1 = fL.CreateFiniteElement(0)
	)
	if err = aL.SetCoefficient(0, assembler.Interpolate(m, p1, dm, source)); err != nil {
		return
	}
	if err = aL.SetCoefficient(1, make([]float64, aL.Dimension(2))); err != nil {
		return
	}
	if b, err = aL.Assemble(); err != nil {
		return
	}
	bcs := assembler.DirichletDofs(m, dm)
	if err = assembler.ApplyDirichlet(A, b, bcs, make([]float64, len(bcs))); err != nil {
		return
	}
	if x, err = assembler.SolveDense(A, b); err != nil {
		return
	}
	for i, u := range assembler.Interpolate(m, p1, dm, exact) {
		maxErr = math.Max(maxErr, math.Abs(u-x[i]))
	}
	return
}

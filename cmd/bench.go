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
	"os"
	"time"

	"github.com/hodgesds/perf-utils"
	"github.com/molel-gt/ffcx/formlib"
	"github.com/molel-gt/ffcx/mesh"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/spf13/cobra"
)

type Bench struct {
	Form    string
	Shape   ufc.Shape
	N       int
	Workers int
	Repeat  int
	Perf    bool
}

// BenchCmd represents the bench command
var BenchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure assembly throughput on generated meshes",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			b     = &Bench{}
			shape string
		)
		if b.Form, err = cmd.Flags().GetString("form"); err != nil {
			return
		}
		if shape, err = cmd.Flags().GetString("shape"); err != nil {
			return
		}
		if b.N, err = cmd.Flags().GetInt("n"); err != nil {
			return
		}
		if b.Workers, err = cmd.Flags().GetInt("workers"); err != nil {
			return
		}
		if b.Repeat, err = cmd.Flags().GetInt("repeat"); err != nil {
			return
		}
		if b.Perf, err = cmd.Flags().GetBool("perf"); err != nil {
			return
		}
		if b.Shape, err = ufc.ParseShape(shape); err != nil {
			return
		}
		return b.Run(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(BenchCmd)
	BenchCmd.Flags().StringP("form", "f", "poisson_a", "form to assemble")
	BenchCmd.Flags().StringP("shape", "s", "triangle", "cell shape of the generated mesh")
	BenchCmd.Flags().IntP("n", "n", 32, "cells per side of the generated mesh")
	BenchCmd.Flags().IntP("workers", "w", 4, "number of assembly workers")
	BenchCmd.Flags().IntP("repeat", "r", 5, "number of timed assemblies")
	BenchCmd.Flags().Bool("perf", false, "count instructions and cycles with hardware counters (linux)")
}

func (b *Bench) mesh() (m *mesh.Mesh, err error) {
	switch b.Shape.TopologicalDimension() {
	case 1:
		return mesh.UnitInterval(b.N)
	case 2:
		return mesh.UnitSquare(b.N, b.N, b.Shape)
	default:
		return mesh.UnitCube(b.N, b.Shape)
	}
}

func (b *Bench) Run(w io.Writer) (err error) {
	var m *mesh.Mesh
	if m, err = b.mesh(); err != nil {
		return
	}
	if b.Workers > 1 {
		if err = m.Partition(mesh.DefaultPartitionConfig(int32(b.Workers))); err != nil {
			return
		}
	}
	f, err := formlib.Get(b.Form, b.Shape)
	if err != nil {
		return
	}
	coefficients := make(map[int]float64, f.NumCoefficients())
	for j := 0; j < f.NumCoefficients(); j++ {
		coefficients[j] = 1
	}
	once := func() error {
		_, _, err := assembleNamed(io.Discard, m, b.Form, b.Workers, coefficients)
		return err
	}
	var best, total time.Duration
	for r := 0; r < b.Repeat; r++ {
		start := time.Now()
		if err = once(); err != nil {
			return
		}
		elapsed := time.Since(start)
		total += elapsed
		if r == 0 || elapsed < best {
			best = elapsed
		}
	}
	if b.Repeat > 0 {
		fmt.Fprintf(w, "%s on %d %s cells, %d workers: best %v, mean %v, %.0f cells/s\n", b.Form, m.NumCells(), b.Shape,
			b.Workers, best, total/time.Duration(b.Repeat), float64(m.NumCells())/best.Seconds())
	}
	if !b.Perf {
		return
	}
	instructions, err := perf.CPUInstructions(once)
	if err != nil {
		fmt.Fprintf(w, "hardware counters unavailable: %v\n", err)
		return nil
	}
	cycles, err := perf.CPUCycles(once)
	if err != nil {
		fmt.Fprintf(w, "hardware counters unavailable: %v\n", err)
		return nil
	}
	fmt.Fprintf(w, "%d instructions, %d cycles, %.2f instructions per cycle, %.0f instructions per cell\n",
		instructions.Value, cycles.Value, float64(instructions.Value)/float64(cycles.Value),
		float64(instructions.Value)/float64(m.NumCells()))
	return
}


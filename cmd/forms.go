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

	"github.com/molel-gt/ffcx/formlib"
	"github.com/molel-gt/ffcx/forms"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/spf13/cobra"
)

// FormsCmd lists the registered forms
var FormsCmd = &cobra.Command{
	Use:   "forms",
	Short: "List the registered forms with their signature hashes",
	Run: func(cmd *cobra.Command, args []string) {
		listForms(os.Stdout)
	},
}

// InspectCmd prints the spaces and integral tables of one form
var InspectCmd = &cobra.Command{
	Use:   "inspect <form>_<shape>",
	Short: "Describe the function spaces and integrals of a registered form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := formlib.Registry.Lookup(args[0])
		if err != nil {
			return err
		}
		inspect(os.Stdout, f)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(FormsCmd)
	rootCmd.AddCommand(InspectCmd)
}

func listForms(w io.Writer) {
	for _, name := range formlib.Registry.Names() {
		f, _ := formlib.Registry.Lookup(name)
		fmt.Fprintf(w, "%-36s %s rank %d\n", name, forms.Hash(f.Signature()), f.Rank())
	}
	fmt.Fprintf(w, "%d forms\n", formlib.Registry.Len())
}

func inspect(w io.Writer, f *forms.Form) {
	fmt.Fprintf(w, "%s\n", f.Signature())
	fmt.Fprintf(w, "hash %s, rank %d, %d coefficients\n", forms.Hash(f.Signature()), f.Rank(), f.NumCoefficients())
	ce := f.CreateCoordinateFiniteElement()
	fmt.Fprintf(w, "coordinates: %s\n", ce.Signature())
	for i := 0; i < f.Rank()+f.NumCoefficients(); i++ {
		var (
			e    = f.CreateFiniteElement(i)
			dm   = f.CreateDofmap(i)
			role = "argument"
		)
		if i >= f.Rank() {
			role = fmt.Sprintf("coefficient (original position %d)", f.OriginalCoefficientPosition(i-f.Rank()))
		}
		fmt.Fprintf(w, "space %d, %s: %s\n", i, role, e.Signature())
		fmt.Fprintf(w, "\t%d element dofs, %d facet dofs, value size %d, entity dofs", dm.NumElementDofs(),
			dm.NumFacetDofs(), e.ValueSize())
		for d := 0; d <= dm.TopologicalDimension(); d++ {
			fmt.Fprintf(w, " %d", dm.NumEntityDofs(d))
		}
		fmt.Fprintln(w)
	}
	var (
		maxes = []int{f.MaxCellSubdomainID(), f.MaxExteriorFacetSubdomainID(), f.MaxInteriorFacetSubdomainID(),
			f.MaxVertexSubdomainID(), f.MaxCustomSubdomainID()}
	)
	for i, kind := range ufc.IntegralTypes {
		if !forms.HasIntegrals(f, kind) {
			continue
		}
		_, err := forms.CreateIntegral(f, kind, -1)
		fmt.Fprintf(w, "%-15s subdomains [0, %d), default %t\n", kind, maxes[i], err == nil)
	}
}

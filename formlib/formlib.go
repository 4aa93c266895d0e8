// Package formlib holds the concrete forms shipped with the module, one per
// name and cell shape, registered when the package is initialized.
package formlib

import (
	"fmt"
	"sort"

	"github.com/molel-gt/ffcx/elements"
	"github.com/molel-gt/ffcx/forms"
	"github.com/molel-gt/ffcx/integrals"
	"github.com/molel-gt/ffcx/ufc"
)

// Builder creates a form on a cell shape, failing with an error wrapping
// ufc.ErrUnsupported when its elements do not exist there.
type Builder func(shape ufc.Shape) (*forms.Form, error)

var (
	builders = map[string]Builder{
		"poisson_a":       poissonA,
		"poisson_L":       poissonL,
		"poisson_neumann": poissonNeumann,
		"mass":            mass,
		"jump_penalty":    jumpPenalty,
		"point_source":    pointSource,
		"mixed_poisson":   mixedPoisson,
		"mixed_poisson_L": mixedPoissonL,
		"cut_cell_mass":   cutCellMass,
		"vector_mass":     vectorMass,
		"curl_curl":       curlCurl,
		"functional":      functional,
	}
	shapes = []ufc.Shape{ufc.Interval, ufc.Triangle, ufc.Quadrilateral, ufc.Tetrahedron, ufc.Hexahedron}

	// Registry holds every form on every shape it supports, named
	// <form>_<shape>.
	Registry *forms.Registry
)

func init() {
	var all []*forms.Form
	for _, name := range Names() {
		for _, shape := range shapes {
			f, err := builders[name](shape)
			if err != nil {
				continue
			}
			all = append(all, f)
		}
	}
	var err error
	if Registry, err = forms.NewRegistry(all...); err != nil {
		panic(err)
	}
}

// Names lists the form builders.
func Names() (names []string) {
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// Key is the registry name of a form on a shape.
func Key(name string, shape ufc.Shape) string { return name + "_" + shape.String() }

// Get returns a registered form.
func Get(name string, shape ufc.Shape) (*forms.Form, error) {
	return Registry.Lookup(Key(name, shape))
}

// Build creates a fresh form outside the registry.
func Build(name string, shape ufc.Shape) (*forms.Form, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("form %q: %w", name, ufc.ErrNotRegistered)
	}
	return b(shape)
}

func lagrange(shape ufc.Shape, degree int) (ufc.FiniteElement, error) {
	return elements.New(elements.FamilyLagrange, shape, degree)
}

func definition(name string, shape ufc.Shape, rank int, els ...ufc.FiniteElement) forms.Definition {
	return forms.Definition{
		Name:              Key(name, shape),
		Rank:              rank,
		Elements:          els,
		CoordinateElement: elements.Coordinate(shape, shape.TopologicalDimension()),
	}
}

func setup(shape ufc.Shape, degree int, k integrals.Kernel, args []ufc.FiniteElement, coefs ...ufc.FiniteElement) integrals.Setup {
	return integrals.Setup{
		Shape:        shape,
		Arguments:    args,
		Coefficients: coefs,
		Degree:       degree,
		Gradients:    true,
		Kernel:       k,
	}
}

func cells(s integrals.Setup) func() ufc.CellIntegral {
	return func() ufc.CellIntegral { return integrals.NewCell(s) }
}

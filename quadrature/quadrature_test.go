package quadrature

import (
	"math"
	"testing"

	"github.com/molel-gt/ffcx/reference"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/molel-gt/ffcx/utils"
	"github.com/stretchr/testify/assert"
)

func monomialIntegral(shape ufc.Shape, alpha []int) float64 {
	// Exact integrals of x^a y^b z^c over the reference cells
	switch shape {
	case ufc.Interval, ufc.Quadrilateral, ufc.Hexahedron:
		val := 1.
		for _, a := range alpha {
			val /= float64(a + 1)
		}
		return val
	default:
		num, sum := 1., 0
		for _, a := range alpha {
			num *= utils.Factorial(a)
			sum += a
		}
		return num / utils.Factorial(sum+len(alpha))
	}
}

func TestNew(t *testing.T) {
	shapes := []ufc.Shape{ufc.Interval, ufc.Triangle, ufc.Quadrilateral, ufc.Tetrahedron, ufc.Hexahedron}
	for _, shape := range shapes {
		tdim := shape.TopologicalDimension()
		for degree := 0; degree <= 6; degree++ {
			r := New(shape, degree)
			assert.Equal(t, tdim, r.Dim())
			var sum float64
			for _, w := range r.Weights {
				sum += w
			}
			assert.InDelta(t, reference.Volume(shape), sum, 1.e-13)
			// Every monomial of total degree <= degree
			for _, alpha := range exponents(tdim, degree) {
				var got float64
				for q := 0; q < r.NumPoints(); q++ {
					x := r.Point(q)
					val := r.Weights[q]
					for j, a := range alpha {
						val *= math.Pow(x[j], float64(a))
					}
					got += val
				}
				assert.InDeltaf(t, monomialIntegral(shape, alpha), got, 1.e-13,
					"%s degree %d monomial %v", shape, degree, alpha)
			}
		}
	}
	assert.Panics(t, func() { New(ufc.Shape(9), 1) })
}

func TestFacet(t *testing.T) {
	{ // Points lie on the facet
		for f := 0; f < 3; f++ {
			r := Facet(ufc.Triangle, f, 3)
			n := reference.FacetNormal(ufc.Triangle, f)
			v := reference.Vertices(ufc.Triangle)[reference.EntityVertices(ufc.Triangle, 1, f)[0]]
			for q := 0; q < r.NumPoints(); q++ {
				x := r.Point(q)
				assert.InDelta(t, 0., (x[0]-v[0])*n[0]+(x[1]-v[1])*n[1], 1.e-14)
			}
		}
	}
	{ // Parameter domain measure
		r := Facet(ufc.Tetrahedron, 0, 2)
		var sum float64
		for _, w := range r.Weights {
			sum += w
		}
		assert.InDelta(t, 0.5, sum, 1.e-14)
		r = Facet(ufc.Hexahedron, 3, 2)
		for q := 0; q < r.NumPoints(); q++ {
			assert.InDelta(t, 1., r.Point(q)[0], 1.e-14)
		}
	}
	{ // Interval facets are single points
		r := Facet(ufc.Interval, 1, 4)
		assert.Equal(t, 1, r.NumPoints())
		assert.Equal(t, 1., r.Point(0)[0])
	}
}

func exponents(dim, degree int) (alphas [][]int) {
	var rec func(prefix []int, remaining int)
	rec = func(prefix []int, remaining int) {
		if len(prefix) == dim {
			alphas = append(alphas, append([]int(nil), prefix...))
			return
		}
		for a := 0; a <= remaining; a++ {
			rec(append(prefix, a), remaining-a)
		}
	}
	rec(nil, degree)
	return
}

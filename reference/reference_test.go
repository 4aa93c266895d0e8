package reference

import (
	"math"
	"testing"

	"github.com/molel-gt/ffcx/ufc"
	"github.com/stretchr/testify/assert"
)

var shapes = []ufc.Shape{ufc.Interval, ufc.Triangle, ufc.Quadrilateral, ufc.Tetrahedron, ufc.Hexahedron}

func TestTopology(t *testing.T) {
	{ // Entity counts
		assert.Equal(t, 3, NumEntities(ufc.Triangle, 1))
		assert.Equal(t, 6, NumEntities(ufc.Tetrahedron, 1))
		assert.Equal(t, 12, NumEntities(ufc.Hexahedron, 1))
		assert.Equal(t, 6, NumFacets(ufc.Hexahedron))
		assert.Equal(t, 2, NumFacets(ufc.Interval))
		assert.Panics(t, func() { NumEntities(ufc.Triangle, 3) })
	}
	{ // Simplex facet i is opposite vertex i
		for _, shape := range []ufc.Shape{ufc.Triangle, ufc.Tetrahedron} {
			tdim := shape.TopologicalDimension()
			for f := 0; f < NumFacets(shape); f++ {
				assert.NotContains(t, EntityVertices(shape, tdim-1, f), f)
			}
		}
	}
	{ // Interval facet i is vertex i
		for f := 0; f < NumFacets(ufc.Interval); f++ {
			assert.Equal(t, []int{f}, EntityVertices(ufc.Interval, 0, f))
		}
	}
	{ // Closure of facets
		assert.Equal(t, []int{1, 2}, SubEntities(ufc.Triangle, 1, 0, 0))
		assert.Equal(t, []int{0, 1, 2}, SubEntities(ufc.Tetrahedron, 2, 0, 1))
		assert.Equal(t, []int{0, 1, 3, 5}, SubEntities(ufc.Hexahedron, 2, 0, 1))
		assert.Equal(t, []int{2}, SubEntities(ufc.Triangle, 1, 2, 1))
	}
}

func TestFacetNormals(t *testing.T) {
	{
		s := 1. / math.Sqrt(2)
		assert.InDeltaSlice(t, []float64{s, s}, FacetNormal(ufc.Triangle, 0), 1.e-14)
		assert.InDeltaSlice(t, []float64{-1, 0}, FacetNormal(ufc.Triangle, 1), 1.e-14)
		assert.InDeltaSlice(t, []float64{0, -1}, FacetNormal(ufc.Triangle, 2), 1.e-14)
		assert.InDeltaSlice(t, []float64{1, 1}, ScaledFacetNormal(ufc.Triangle, 0), 1.e-14)
		assert.InDeltaSlice(t, []float64{-1}, FacetNormal(ufc.Interval, 0), 1.e-14)
		assert.InDeltaSlice(t, []float64{1}, FacetNormal(ufc.Interval, 1), 1.e-14)
		assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5}, ScaledFacetNormal(ufc.Tetrahedron, 0), 1.e-14)
		assert.InDeltaSlice(t, []float64{0, 0, 1}, FacetNormal(ufc.Hexahedron, 5), 1.e-14)
		assert.InDeltaSlice(t, []float64{1, 0}, FacetNormal(ufc.Quadrilateral, 2), 1.e-14)
	}
	{ // Divergence theorem: sum of scaled normals vanishes
		for _, shape := range shapes[1:] {
			tdim := shape.TopologicalDimension()
			sum := make([]float64, tdim)
			for f := 0; f < NumFacets(shape); f++ {
				for j, val := range ScaledFacetNormal(shape, f) {
					sum[j] += val
				}
			}
			assert.InDeltaSlice(t, make([]float64, tdim), sum, 1.e-14, shape.String())
		}
	}
	assert.InDelta(t, math.Sqrt(3)/2, FacetMeasure(ufc.Tetrahedron, 0), 1.e-14)
	assert.InDelta(t, 1., FacetMeasure(ufc.Hexahedron, 3), 1.e-14)
}

func TestVertexBasis(t *testing.T) {
	for _, shape := range shapes {
		var (
			nv   = NumVertices(shape)
			tdim = shape.TopologicalDimension()
			phi  = make([]float64, nv)
			dphi = make([]float64, nv*tdim)
		)
		for v, X := range Vertices(shape) {
			VertexBasis(shape, X, phi)
			for w := 0; w < nv; w++ {
				if v == w {
					assert.InDelta(t, 1., phi[w], 1.e-14)
				} else {
					assert.InDelta(t, 0., phi[w], 1.e-14)
				}
			}
		}
		// Gradients sum to zero at any point
		X := Midpoint(shape, tdim, 0)
		VertexBasisGrad(shape, X, dphi)
		for j := 0; j < tdim; j++ {
			var sum float64
			for v := 0; v < nv; v++ {
				sum += dphi[v*tdim+j]
			}
			assert.InDelta(t, 0., sum, 1.e-14)
		}
	}
	assert.True(t, IsAffine(ufc.Tetrahedron))
	assert.False(t, IsAffine(ufc.Quadrilateral))
}

func TestDerivativeCombinations(t *testing.T) {
	assert.Equal(t, [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, DerivativeCombinations(2, 2))
	assert.Equal(t, [][]int{{}}, DerivativeCombinations(3, 0))
	c := DerivativeCombinations(3, 2)
	assert.Len(t, c, 9)
	assert.Equal(t, []int{1, 2}, c[5])
}

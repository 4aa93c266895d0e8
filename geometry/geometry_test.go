package geometry

import (
	"math"
	"testing"

	"github.com/molel-gt/ffcx/ufc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	{ // Affine triangle
		cd := []float64{1, 1, 3, 1, 1, 2}
		m := Evaluate(ufc.Triangle, 2, cd, []float64{0.5, 0.5})
		assert.InDeltaSlice(t, []float64{2, 1.5}, m.X, 1.e-14)
		assert.InDeltaSlice(t, []float64{2, 0, 0, 1}, m.J, 1.e-14)
		assert.InDeltaSlice(t, []float64{0.5, 0, 0, 1}, m.K, 1.e-14)
		assert.InDelta(t, 2., m.DetJ, 1.e-14)
		assert.InDelta(t, 1., CellVolume(ufc.Triangle, 2, cd), 1.e-14)
	}
	{ // Reflected vertex order gives a negative determinant
		cd := []float64{0, 0, 0, 1, 1, 0}
		m := Evaluate(ufc.Triangle, 2, cd, []float64{0, 0})
		assert.InDelta(t, -1., m.DetJ, 1.e-14)
		assert.InDelta(t, 0.5, CellVolume(ufc.Triangle, 2, cd), 1.e-14)
	}
	{ // Tetrahedron inverse
		cd := []float64{0, 0, 0, 2, 0, 0, 0, 3, 0, 1, 1, 4}
		m := Evaluate(ufc.Tetrahedron, 3, cd, []float64{0.1, 0.2, 0.3})
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				var sum float64
				for k := 0; k < 3; k++ {
					sum += m.Jac(i, k) * m.Inv(k, j)
				}
				if i == j {
					assert.InDelta(t, 1., sum, 1.e-13)
				} else {
					assert.InDelta(t, 0., sum, 1.e-13)
				}
			}
		}
		assert.InDelta(t, 24./6., CellVolume(ufc.Tetrahedron, 3, cd), 1.e-13)
	}
	{ // Non affine quadrilateral
		cd := []float64{0, 0, 2, 0, 0, 1, 3, 2}
		assert.InDelta(t, 3.5, CellVolume(ufc.Quadrilateral, 2, cd), 1.e-13)
	}
	{ // Interval embedded in 2D
		cd := []float64{0, 0, 3, 4}
		m := Evaluate(ufc.Interval, 2, cd, []float64{0.5})
		assert.InDelta(t, 5., m.DetJ, 1.e-13)
		assert.InDelta(t, 3./25., m.Inv(0, 0), 1.e-13)
	}
	assert.Panics(t, func() { Evaluate(ufc.Triangle, 2, []float64{0, 0, 1, 0}, []float64{0, 0}) })
	assert.Panics(t, func() { Evaluate(ufc.Triangle, 2, []float64{0, 0, 1, 0, 2, 0}, []float64{0, 0}) })
}

func TestPullBack(t *testing.T) {
	{
		cd := []float64{0, 0, 2, 0, 0, 1, 3, 2}
		X := []float64{0.3, 0.7}
		x := Push(ufc.Quadrilateral, 2, cd, X)
		Xp, err := PullBack(ufc.Quadrilateral, 2, cd, x)
		require.NoError(t, err)
		assert.InDeltaSlice(t, X, Xp, 1.e-12)
	}
	{
		cd := []float64{0, 0, 0, 2, 0, 0, 0, 3, 0, 1, 1, 4}
		X := []float64{0.1, 0.2, 0.3}
		Xp, err := PullBack(ufc.Tetrahedron, 3, cd, Push(ufc.Tetrahedron, 3, cd, X))
		require.NoError(t, err)
		assert.InDeltaSlice(t, X, Xp, 1.e-12)
	}
}

func TestFacets(t *testing.T) {
	{ // Triangle with vertices (0,0), (2,0), (0,2)
		cd := []float64{0, 0, 2, 0, 0, 2}
		m := Evaluate(ufc.Triangle, 2, cd, []float64{0.2, 0.2})
		s := 1. / math.Sqrt(2)
		assert.InDeltaSlice(t, []float64{s, s}, FacetNormal(m, 0), 1.e-14)
		assert.InDeltaSlice(t, []float64{-1, 0}, FacetNormal(m, 1), 1.e-14)
		assert.InDelta(t, 2., FacetScale(m, 1), 1.e-14)
		assert.InDelta(t, 2*math.Sqrt(2), FacetScale(m, 0), 1.e-14)
	}
	{ // Normals stay outward for reflected orderings
		cd := []float64{0, 0, 0, 1, 1, 0}
		m := Evaluate(ufc.Triangle, 2, cd, []float64{0.2, 0.2})
		// facet 1 joins vertices 0 and 2, the segment on the x axis
		assert.InDeltaSlice(t, []float64{0, -1}, FacetNormal(m, 1), 1.e-14)
	}
	{ // Hexahedron face area
		cd := []float64{0, 0, 0, 2, 0, 0, 0, 3, 0, 2, 3, 0, 0, 0, 1, 2, 0, 1, 0, 3, 1, 2, 3, 1}
		m := Evaluate(ufc.Hexahedron, 3, cd, []float64{0.5, 0.5, 0.5})
		assert.InDelta(t, 6., FacetScale(m, 0), 1.e-13)
		assert.InDeltaSlice(t, []float64{0, 0, -1}, FacetNormal(m, 0), 1.e-14)
		assert.InDelta(t, 1., FacetScale(Evaluate(ufc.Interval, 1, []float64{0, 3}, []float64{0}), 0), 1.e-14)
	}
}

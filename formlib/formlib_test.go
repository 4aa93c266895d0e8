package formlib

import (
	"errors"
	"testing"

	"github.com/molel-gt/ffcx/ufc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refTriangle = []float64{0, 0, 1, 0, 0, 1}

func cellTensor(t *testing.T, name string, w [][]float64) (A []float64, n int) {
	f, err := Get(name, ufc.Triangle)
	require.NoError(t, err)
	ci, ok := f.CreateDefaultCellIntegral()
	require.True(t, ok)
	n = f.CreateFiniteElement(0).SpaceDimension()
	size := 1
	for i := 0; i < f.Rank(); i++ {
		size *= n
	}
	A = make([]float64, size)
	ci.TabulateTensor(A, w, refTriangle, 0)
	return
}

func TestRegistryContents(t *testing.T) {
	for _, name := range []string{"poisson_a", "poisson_L", "mass", "jump_penalty", "point_source", "functional",
		"cut_cell_mass", "vector_mass", "poisson_neumann"} {
		for _, shape := range shapes {
			_, err := Get(name, shape)
			assert.NoError(t, err, Key(name, shape))
		}
	}
	for _, name := range []string{"mixed_poisson", "mixed_poisson_L", "curl_curl"} {
		for _, shape := range []ufc.Shape{ufc.Triangle, ufc.Tetrahedron} {
			_, err := Get(name, shape)
			assert.NoError(t, err)
		}
		_, err := Get(name, ufc.Quadrilateral)
		assert.True(t, errors.Is(err, ufc.ErrNotRegistered))
		_, err = Build(name, ufc.Interval)
		assert.True(t, errors.Is(err, ufc.ErrUnsupported))
	}
	_, err := Build("nonsense", ufc.Triangle)
	assert.True(t, errors.Is(err, ufc.ErrNotRegistered))
	assert.Len(t, Names(), len(builders))
}

func TestPoissonSubdomains(t *testing.T) {
	f, err := Get("poisson_a", ufc.Triangle)
	require.NoError(t, err)
	assert.Equal(t, 2, f.MaxCellSubdomainID())
	assert.Equal(t, 2, f.Rank())
	assert.Equal(t, 1, f.NumCoefficients())
	plain, err := f.CreateCellIntegral(0)
	require.NoError(t, err)
	weighted, err := f.CreateCellIntegral(1)
	require.NoError(t, err)
	_, err = f.CreateCellIntegral(2)
	assert.True(t, errors.Is(err, ufc.ErrNotRegistered))
	assert.Equal(t, []bool{false}, plain.EnabledCoefficients())
	assert.Equal(t, []bool{true}, weighted.EnabledCoefficients())

	A, B := make([]float64, 9), make([]float64, 9)
	plain.TabulateTensor(A, [][]float64{nil}, refTriangle, 0)
	weighted.TabulateTensor(B, [][]float64{{3, 3, 3}}, refTriangle, 0)
	for i := range A {
		assert.InDelta(t, 3*A[i], B[i], 1.e-13)
	}
	assert.InDelta(t, 1., A[0], 1.e-14)
}

func TestPoissonRHS(t *testing.T) {
	f, err := Get("poisson_L", ufc.Triangle)
	require.NoError(t, err)
	assert.Equal(t, 2, f.NumCoefficients())
	assert.True(t, f.HasExteriorFacetIntegrals())
	assert.Equal(t, 1, f.MaxExteriorFacetSubdomainID())
	b, _ := cellTensor(t, "poisson_L", [][]float64{{6, 6, 6}, nil})
	assert.InDeltaSlice(t, []float64{1, 1, 1}, b, 1.e-14)

	ei, err := f.CreateExteriorFacetIntegral(0)
	require.NoError(t, err)
	ei.TabulateTensor(b, [][]float64{nil, {2, 2, 2}}, refTriangle, 2, 0)
	// facet 2 is the unit edge from vertex 0 to vertex 1
	assert.InDeltaSlice(t, []float64{1, 1, 0}, b, 1.e-14)
}

func TestMixedPoisson(t *testing.T) {
	A, n := cellTensor(t, "mixed_poisson", nil)
	require.Equal(t, 4, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			assert.InDelta(t, A[i*n+j], A[j*n+i], 1.e-13)
		}
	}
	// no scalar-scalar coupling
	assert.InDelta(t, 0, A[3*n+3], 1.e-14)
	// div of the flux basis is the facet measure over the cell area, weighted
	// by the unit DG0 function and the area
	for i := 0; i < 3; i++ {
		assert.NotZero(t, A[i*n+3])
	}
	assert.Greater(t, A[0], 0.)
}

func TestNeumannPoisson(t *testing.T) {
	A, n := cellTensor(t, "poisson_neumann", nil)
	require.Equal(t, 4, n)
	for i := 0; i < 3; i++ {
		var row float64
		for j := 0; j < 3; j++ {
			row += A[i*n+j]
		}
		assert.InDelta(t, 0, row, 1.e-14)
		assert.InDelta(t, 1./6, A[i*n+3], 1.e-14)
		assert.InDelta(t, 1./6, A[3*n+i], 1.e-14)
	}
	assert.InDelta(t, 0, A[3*n+3], 1.e-14)
}

func TestVectorMassAndFunctional(t *testing.T) {
	A, _ := cellTensor(t, "vector_mass", nil)
	var sum float64
	for _, a := range A {
		sum += a
	}
	assert.InDelta(t, 1., sum, 1.e-14)

	J, _ := cellTensor(t, "functional", [][]float64{{1, 1, 1}})
	assert.Len(t, J, 1)
	assert.InDelta(t, 0.5, J[0], 1.e-14)
}

func TestCurlCurl(t *testing.T) {
	A, n := cellTensor(t, "curl_curl", nil)
	require.Equal(t, 3, n)
	for i := 0; i < n; i++ {
		assert.Greater(t, A[i*n+i], 0.)
		for j := 0; j < n; j++ {
			assert.InDelta(t, A[i*n+j], A[j*n+i], 1.e-13)
		}
	}
}

func TestPointSource(t *testing.T) {
	f, err := Get("point_source", ufc.Triangle)
	require.NoError(t, err)
	assert.True(t, f.HasVertexIntegrals())
	vi, err := f.CreateVertexIntegral(0)
	require.NoError(t, err)
	b := make([]float64, 3)
	vi.TabulateTensor(b, [][]float64{{1, 2, 4}}, refTriangle, 2, 0)
	assert.InDeltaSlice(t, []float64{0, 0, 4}, b, 1.e-14)
}

func TestCutCellMass(t *testing.T) {
	f, err := Get("cut_cell_mass", ufc.Triangle)
	require.NoError(t, err)
	cu, ok := f.CreateDefaultCustomIntegral()
	require.True(t, ok)
	assert.Equal(t, 1, cu.NumCells())
	// one point rule at the centroid of the lower half of the cell
	A := make([]float64, 9)
	cu.TabulateTensor(A, nil, refTriangle, 1, []float64{1. / 3, 1. / 3}, []float64{0.5}, nil, nil)
	for _, a := range A {
		assert.InDelta(t, 0.5/9, a, 1.e-14)
	}
}

func TestCoefficientNames(t *testing.T) {
	f, err := Get("poisson_L", ufc.Quadrilateral)
	require.NoError(t, err)
	j, err := f.CoefficientNumber("g")
	require.NoError(t, err)
	assert.Equal(t, 1, j)
	assert.Equal(t, "f", f.CoefficientName(0))

	f, err = Get("poisson_a", ufc.Triangle)
	require.NoError(t, err)
	assert.Equal(t, "kappa", f.CoefficientName(0))
	_, err = f.CoefficientNumber("f")
	assert.True(t, errors.Is(err, ufc.ErrNotRegistered))

	f, err = Get("mass", ufc.Triangle)
	require.NoError(t, err)
	assert.Equal(t, 0, f.NumCoefficients())
}

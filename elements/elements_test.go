package elements

import (
	"math"
	"testing"

	"github.com/molel-gt/ffcx/reference"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceCoordinates(shape ufc.Shape) (cd []float64) {
	for _, v := range reference.Vertices(shape) {
		cd = append(cd, v...)
	}
	return
}

var physicalCoordinates = map[ufc.Shape][]float64{
	ufc.Interval:      {0.5, 2},
	ufc.Triangle:      {0, 0, 2, 0.5, 0.5, 1.5},
	ufc.Quadrilateral: {0, 0, 2, 0, 0.5, 1, 2.5, 1},
	ufc.Tetrahedron:   {0, 0, 0, 1, 0.2, 0, 0.1, 1.2, 0, 0.3, 0.1, 0.9},
	ufc.Hexahedron:    {0, 0, 0, 2, 0, 0, 0, 1, 0, 2, 1, 0, 0, 0, 3, 2, 0, 3, 0, 1, 3, 2, 1, 3},
}

func allElements(t *testing.T) (els []ufc.FiniteElement) {
	for _, shape := range []ufc.Shape{ufc.Interval, ufc.Triangle, ufc.Quadrilateral, ufc.Tetrahedron, ufc.Hexahedron} {
		for degree := 1; degree <= maxDegree[shape]; degree++ {
			e, err := Lagrange(shape, degree)
			require.NoError(t, err)
			els = append(els, e)
		}
		for degree := 0; degree <= maxDegree[shape]; degree++ {
			e, err := DiscontinuousLagrange(shape, degree)
			require.NoError(t, err)
			els = append(els, e)
		}
		els = append(els, Real(shape))
	}
	for _, shape := range []ufc.Shape{ufc.Triangle, ufc.Tetrahedron} {
		rt, err := RaviartThomas(shape, 1)
		require.NoError(t, err)
		ned, err := Nedelec(shape, 1)
		require.NoError(t, err)
		els = append(els, rt, ned)
	}
	return
}

func TestSpaceDimensions(t *testing.T) {
	dims := map[string]int{
		"FiniteElement('Lagrange', interval, 3)":                 4,
		"FiniteElement('Lagrange', triangle, 1)":                 3,
		"FiniteElement('Lagrange', triangle, 2)":                 6,
		"FiniteElement('Lagrange', triangle, 3)":                 10,
		"FiniteElement('Lagrange', tetrahedron, 2)":              10,
		"FiniteElement('Lagrange', tetrahedron, 3)":              20,
		"FiniteElement('Q', quadrilateral, 2)":                   9,
		"FiniteElement('Q', hexahedron, 2)":                      27,
		"FiniteElement('Discontinuous Lagrange', triangle, 0)":   1,
		"FiniteElement('DQ', hexahedron, 1)":                     8,
		"FiniteElement('Raviart-Thomas', triangle, 1)":           3,
		"FiniteElement('Raviart-Thomas', tetrahedron, 1)":        4,
		"FiniteElement('Nedelec 1st kind H(curl)', triangle, 1)": 3,
		"FiniteElement('Nedelec 1st kind H(curl)', tetrahedron, 1)": 6,
		"FiniteElement('Real', hexahedron, 0)":                   1,
	}
	found := 0
	for _, e := range allElements(t) {
		if dim, ok := dims[e.Signature()]; ok {
			assert.Equal(t, dim, e.SpaceDimension(), e.Signature())
			found++
		}
		l := e.(LayoutProvider).Layout()
		assert.Equal(t, e.SpaceDimension(), l.NumDofs(), e.Signature())
	}
	assert.Equal(t, len(dims), found)
	{ // Unavailable degrees
		_, err := Lagrange(ufc.Triangle, 0)
		assert.Error(t, err)
		_, err = Lagrange(ufc.Quadrilateral, 3)
		assert.Error(t, err)
		_, err = RaviartThomas(ufc.Quadrilateral, 1)
		assert.Error(t, err)
		_, err = Nedelec(ufc.Triangle, 2)
		assert.Error(t, err)
		_, err = New("Crouzeix-Raviart", ufc.Triangle, 1)
		assert.Error(t, err)
		fe, err := New("P", ufc.Triangle, 9)
		assert.Error(t, err)
		assert.Nil(t, fe)
	}
}

// Every basis function is dual to the nodal functionals on every cell.
func TestDuality(t *testing.T) {
	for _, e := range allElements(t) {
		for _, cd := range [][]float64{referenceCoordinates(e.CellShape()), physicalCoordinates[e.CellShape()]} {
			dim := e.SpaceDimension()
			for i := 0; i < dim; i++ {
				var (
					bi = i
					f  = ufc.FunctionFunc(func(values, x []float64, c *ufc.Cell) {
						X := pullBack(t, e.CellShape(), cd, x)
						e.EvaluateBasis(bi, values, X, cd, 0)
					})
				)
				for j := 0; j < dim; j++ {
					want := 0.
					if i == j {
						want = 1
					}
					assert.InDeltaf(t, want, e.EvaluateDof(j, f, cd, 0, nil), 1.e-10,
						"%s: l_%d(phi_%d)", e.Signature(), j, i)
				}
			}
		}
	}
}

func TestEvaluateBasisAll(t *testing.T) {
	for _, e := range allElements(t) {
		var (
			shape = e.CellShape()
			tdim  = shape.TopologicalDimension()
			cd    = physicalCoordinates[shape]
			x     = []float64{0.21, 0.17, 0.13}[:tdim]
			vs    = e.ValueSize()
			dim   = e.SpaceDimension()
		)
		for n := 0; n <= 2; n++ {
			nd := ufc.NumDerivatives(tdim, n)
			all := make([]float64, dim*vs*nd)
			e.EvaluateBasisDerivativesAll(n, all, x, cd, 0)
			one := make([]float64, vs*nd)
			for i := 0; i < dim; i++ {
				e.EvaluateBasisDerivatives(i, n, one, x, cd, 0)
				assert.InDeltaSlicef(t, one, all[i*vs*nd:(i+1)*vs*nd], 1.e-14, "%s, n = %d", e.Signature(), n)
			}
		}
		all := make([]float64, dim*vs)
		e.EvaluateBasisAll(all, x, cd, 0)
		one := make([]float64, vs)
		d0 := make([]float64, vs)
		for i := 0; i < dim; i++ {
			e.EvaluateBasis(i, one, x, cd, 0)
			e.EvaluateBasisDerivatives(i, 0, d0, x, cd, 0)
			assert.Equal(t, one, all[i*vs:(i+1)*vs])
			assert.Equal(t, one, d0)
		}
		assert.Panics(t, func() { e.EvaluateBasis(dim, one, x, cd, 0) })
		assert.Panics(t, func() { e.EvaluateDof(-1, ufc.Constant(1, 1, 1), cd, 0, nil) })
	}
}

func TestLagrange(t *testing.T) {
	{ // Partition of unity and vanishing gradient sum
		for _, e := range allElements(t) {
			el := e.(*Element)
			if el.Mapping() != Identity || el.Family() == FamilyReal {
				continue
			}
			var (
				shape = e.CellShape()
				tdim  = shape.TopologicalDimension()
				cd    = physicalCoordinates[shape]
				x     = []float64{0.3, 0.1, 0.2}[:tdim]
				dim   = e.SpaceDimension()
				vals  = make([]float64, dim)
				grads = make([]float64, dim*tdim)
			)
			e.EvaluateBasisAll(vals, x, cd, 0)
			e.EvaluateBasisDerivativesAll(1, grads, x, cd, 0)
			var sum float64
			for _, v := range vals {
				sum += v
			}
			assert.InDelta(t, 1., sum, 1.e-12, e.Signature())
			for k := 0; k < tdim; k++ {
				var gsum float64
				for i := 0; i < dim; i++ {
					gsum += grads[i*tdim+k]
				}
				assert.InDelta(t, 0., gsum, 1.e-11, e.Signature())
			}
		}
	}
	{ // P2 reproduces a quadratic and its derivatives on an affine triangle
		e, err := Lagrange(ufc.Triangle, 2)
		require.NoError(t, err)
		cd := physicalCoordinates[ufc.Triangle]
		u := func(x []float64) float64 { return 1 + 2*x[0] - x[1] + 3*x[0]*x[1] - x[1]*x[1] }
		dofs := make([]float64, 6)
		e.EvaluateDofs(dofs, ufc.FunctionFunc(func(values, x []float64, _ *ufc.Cell) {
			values[0] = u(x)
		}), cd, 0, nil)
		X := []float64{0.2, 0.3}
		xp := physicalPoint(ufc.Triangle, cd, X)
		vals := make([]float64, 6)
		e.EvaluateBasisAll(vals, X, cd, 0)
		var uh float64
		for i, v := range vals {
			uh += dofs[i] * v
		}
		assert.InDelta(t, u(xp), uh, 1.e-12)
		d2 := make([]float64, 6*4)
		e.EvaluateBasisDerivativesAll(2, d2, X, cd, 0)
		hess := make([]float64, 4)
		for i := 0; i < 6; i++ {
			for k := 0; k < 4; k++ {
				hess[k] += dofs[i] * d2[i*4+k]
			}
		}
		// u_xx, u_xy, u_yx, u_yy
		assert.InDeltaSlice(t, []float64{0, 3, 3, -2}, hess, 1.e-10)
	}
	{ // Vertex values of a linear function
		e, err := Lagrange(ufc.Tetrahedron, 2)
		require.NoError(t, err)
		cd := physicalCoordinates[ufc.Tetrahedron]
		u := func(x []float64) float64 { return 1 + x[0] - 2*x[1] + 0.5*x[2] }
		dofs := make([]float64, 10)
		e.EvaluateDofs(dofs, ufc.FunctionFunc(func(values, x []float64, _ *ufc.Cell) {
			values[0] = u(x)
		}), cd, 0, nil)
		vv := make([]float64, 4)
		e.InterpolateVertexValues(vv, dofs, cd, 0, nil)
		for v := 0; v < 4; v++ {
			assert.InDelta(t, u(cd[v*3:v*3+3]), vv[v], 1.e-12)
		}
	}
	{ // Gradient against finite differences on a non affine quadrilateral
		e, err := Lagrange(ufc.Quadrilateral, 2)
		require.NoError(t, err)
		cd := []float64{0, 0, 2, 0, 0, 1, 3, 2}
		X := []float64{0.4, 0.6}
		x := physicalPoint(ufc.Quadrilateral, cd, X)
		grads := make([]float64, 9*2)
		e.EvaluateBasisDerivativesAll(1, grads, X, cd, 0)
		h := 1.e-6
		for k := 0; k < 2; k++ {
			xp := append([]float64(nil), x...)
			xm := append([]float64(nil), x...)
			xp[k] += h
			xm[k] -= h
			vp, vm := make([]float64, 9), make([]float64, 9)
			e.EvaluateBasisAll(vp, pullBack(t, ufc.Quadrilateral, cd, xp), cd, 0)
			e.EvaluateBasisAll(vm, pullBack(t, ufc.Quadrilateral, cd, xm), cd, 0)
			for i := 0; i < 9; i++ {
				assert.InDelta(t, (vp[i]-vm[i])/(2*h), grads[i*2+k], 1.e-6)
			}
		}
	}
}

func TestRaviartThomas(t *testing.T) {
	e, err := RaviartThomas(ufc.Triangle, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, e.ValueRank())
	assert.Equal(t, 2, e.ValueDimension(0))
	assert.Panics(t, func() { e.ValueDimension(1) })
	cd := physicalCoordinates[ufc.Triangle]
	{ // Physical flux of basis i through facet f is delta_if
		for f := 0; f < 3; f++ {
			verts := reference.EntityVertices(ufc.Triangle, 1, f)
			a, b := cd[verts[0]*2:verts[0]*2+2], cd[verts[1]*2:verts[1]*2+2]
			// outward normal scaled by the edge length
			n := []float64{b[1] - a[1], -(b[0] - a[0])}
			opp := cd[f*2 : f*2+2]
			if n[0]*(opp[0]-a[0])+n[1]*(opp[1]-a[1]) > 0 {
				n[0], n[1] = -n[0], -n[1]
			}
			X := reference.Midpoint(ufc.Triangle, 1, f)
			vals := make([]float64, 6)
			e.EvaluateBasisAll(vals, X, cd, 0)
			for i := 0; i < 3; i++ {
				flux := vals[i*2]*n[0] + vals[i*2+1]*n[1]
				want := 0.
				if i == f {
					want = 1
				}
				assert.InDeltaf(t, want, flux, 1.e-12, "basis %d facet %d", i, f)
			}
		}
	}
	{ // Divergence is constant 1/|T|
		grads := make([]float64, 3*2*2)
		e.EvaluateBasisDerivativesAll(1, grads, []float64{0.3, 0.3}, cd, 0)
		area := 0.5 * math.Abs(2*1.5-0.5*0.5)
		for i := 0; i < 3; i++ {
			div := grads[i*4+0] + grads[i*4+3]
			assert.InDelta(t, 1/area, div, 1.e-12)
		}
	}
	{ // Orientation bit f flips basis function f
		one, flipped := make([]float64, 2), make([]float64, 2)
		X := []float64{0.25, 0.25}
		e.EvaluateBasis(1, one, X, cd, 0)
		e.EvaluateBasis(1, flipped, X, cd, 1<<1)
		assert.InDeltaSlice(t, []float64{-one[0], -one[1]}, flipped, 1.e-15)
		e.EvaluateBasis(1, flipped, X, cd, 1<<0|1<<2)
		assert.Equal(t, one, flipped)
		f := ufc.Constant(1, 2)
		assert.InDelta(t, -e.EvaluateDof(1, f, cd, 0, nil), e.EvaluateDof(1, f, cd, 1<<1, nil), 1.e-15)
	}
}

func TestNedelec(t *testing.T) {
	e, err := Nedelec(ufc.Tetrahedron, 1)
	require.NoError(t, err)
	cd := physicalCoordinates[ufc.Tetrahedron]
	{ // Circulation of basis i along edge k is delta_ik
		for k := 0; k < 6; k++ {
			verts := reference.EntityVertices(ufc.Tetrahedron, 1, k)
			tangent := make([]float64, 3)
			for j := range tangent {
				tangent[j] = cd[verts[1]*3+j] - cd[verts[0]*3+j]
			}
			vals := make([]float64, 6*3)
			e.EvaluateBasisAll(vals, reference.Midpoint(ufc.Tetrahedron, 1, k), cd, 0)
			for i := 0; i < 6; i++ {
				var circ float64
				for j := range tangent {
					circ += vals[i*3+j] * tangent[j]
				}
				want := 0.
				if i == k {
					want = 1
				}
				assert.InDeltaf(t, want, circ, 1.e-12, "basis %d edge %d", i, k)
			}
		}
	}
	{ // Edge bits follow the facet bits
		one, flipped := make([]float64, 3), make([]float64, 3)
		X := []float64{0.1, 0.2, 0.3}
		e.EvaluateBasis(2, one, X, cd, 0)
		e.EvaluateBasis(2, flipped, X, cd, 1<<(4+2))
		for j := range one {
			assert.InDelta(t, -one[j], flipped[j], 1.e-15)
		}
	}
	{ // Gradients of constant fields interpolate exactly
		dofs := make([]float64, 6)
		e.EvaluateDofs(dofs, ufc.Constant(1, -2, 0.5), cd, 0, nil)
		vv := make([]float64, 4*3)
		e.InterpolateVertexValues(vv, dofs, cd, 0, nil)
		for v := 0; v < 4; v++ {
			assert.InDeltaSlice(t, []float64{1, -2, 0.5}, vv[v*3:v*3+3], 1.e-12)
		}
	}
}

func TestMixed(t *testing.T) {
	{ // Sub elements of dimension 3 and 4
		p2, err := Lagrange(ufc.Interval, 2)
		require.NoError(t, err)
		p3, err := Lagrange(ufc.Interval, 3)
		require.NoError(t, err)
		me, err := NewMixed(p2, p3)
		require.NoError(t, err)
		assert.Equal(t, 2, me.NumSubElements())
		assert.Equal(t, 7, me.SpaceDimension())
		assert.Equal(t, 2, me.ValueSize())
		assert.Equal(t, 1, me.ValueRank())
		assert.Equal(t, 3, me.SubDofOffset(1))
		assert.Equal(t, "MixedElement(FiniteElement('Lagrange', interval, 2), FiniteElement('Lagrange', interval, 3))",
			me.Signature())
		assert.Equal(t, 4, me.CreateSubElement(1).SpaceDimension())
		assert.Panics(t, func() { me.CreateSubElement(2) })
		cp := me.Create()
		assert.Equal(t, me.Signature(), cp.Signature())
		assert.NotSame(t, me, cp)
	}
	{ // Mixed RT x DG0: values and derivatives land in the sub element blocks
		rt, _ := RaviartThomas(ufc.Triangle, 1)
		dg, _ := DiscontinuousLagrange(ufc.Triangle, 0)
		me, err := NewMixed(rt, dg)
		require.NoError(t, err)
		assert.Equal(t, 4, me.SpaceDimension())
		assert.Equal(t, 3, me.ValueSize())
		cd := physicalCoordinates[ufc.Triangle]
		X := []float64{0.2, 0.5}
		vals := make([]float64, 3)
		me.EvaluateBasis(3, vals, X, cd, 0)
		assert.Equal(t, []float64{0, 0, 1}, vals)
		me.EvaluateBasis(0, vals, X, cd, 0)
		ref := make([]float64, 2)
		rt.EvaluateBasis(0, ref, X, cd, 0)
		assert.Equal(t, []float64{ref[0], ref[1], 0}, vals)
		grads := make([]float64, 3*2)
		me.EvaluateBasisDerivatives(1, 1, grads, X, cd, 0)
		rg := make([]float64, 2*2)
		rt.EvaluateBasisDerivatives(1, 1, rg, X, cd, 0)
		assert.Equal(t, append(rg, 0, 0), grads)
		// dofs see only their sub element components
		f := ufc.Constant(1, 2, 7)
		assert.InDelta(t, 7., me.EvaluateDof(3, f, cd, 0, nil), 1.e-14)
		assert.InDelta(t, rt.EvaluateDof(2, ufc.Constant(1, 2), cd, 0, nil), me.EvaluateDof(2, f, cd, 0, nil), 1.e-14)
		vv := make([]float64, 3*3)
		dofs := make([]float64, 4)
		me.EvaluateDofs(dofs, f, cd, 0, nil)
		me.InterpolateVertexValues(vv, dofs, cd, 0, nil)
		for v := 0; v < 3; v++ {
			assert.InDeltaSlice(t, []float64{1, 2, 7}, vv[v*3:v*3+3], 1.e-12)
		}
	}
	{ // Vector and coordinate elements
		c := Coordinate(ufc.Hexahedron, 3)
		assert.Equal(t, 24, c.SpaceDimension())
		assert.Equal(t, 3, c.ValueDimension(0))
		assert.Equal(t, "VectorElement(FiniteElement('Q', hexahedron, 1), dim=3)", c.Signature())
		rt, _ := RaviartThomas(ufc.Triangle, 1)
		_, err := NewVector(rt, 2)
		assert.Error(t, err)
		q1, _ := Lagrange(ufc.Quadrilateral, 1)
		_, err = NewMixed(q1, rt)
		assert.Error(t, err)
		_, err = NewMixed()
		assert.Error(t, err)
	}
}

func TestCreate(t *testing.T) {
	e, err := Lagrange(ufc.Triangle, 3)
	require.NoError(t, err)
	cp := e.Create().(*Element)
	assert.Equal(t, e.Signature(), cp.Signature())
	assert.NotSame(t, e, cp)
	assert.Equal(t, e.basis.Data(), cp.basis.Data())
	cp.layout.EntityDofs[0][0][0] = 99
	assert.Equal(t, 0, e.layout.EntityDofs[0][0][0])
	assert.Panics(t, func() { e.CreateSubElement(0) })
	assert.Equal(t, 0, e.NumSubElements())
}

func physicalPoint(shape ufc.Shape, cd, X []float64) (x []float64) {
	var (
		nv   = reference.NumVertices(shape)
		gdim = len(cd) / nv
		phi  = make([]float64, nv)
	)
	reference.VertexBasis(shape, X, phi)
	x = make([]float64, gdim)
	for v := 0; v < nv; v++ {
		for j := 0; j < gdim; j++ {
			x[j] += phi[v] * cd[v*gdim+j]
		}
	}
	return
}

func pullBack(t *testing.T, shape ufc.Shape, cd, x []float64) []float64 {
	var (
		tdim = shape.TopologicalDimension()
		X    = reference.Midpoint(shape, tdim, 0)
		h    = 1.e-7
	)
	// Newton with a finite difference Jacobian keeps this independent of
	// the geometry package
	for iter := 0; iter < 50; iter++ {
		F := physicalPoint(shape, cd, X)
		J := make([][]float64, tdim)
		for k := 0; k < tdim; k++ {
			Xh := append([]float64(nil), X...)
			Xh[k] += h
			Fh := physicalPoint(shape, cd, Xh)
			J[k] = make([]float64, tdim)
			for j := 0; j < tdim; j++ {
				J[k][j] = (Fh[j] - F[j]) / h
			}
		}
		r := make([]float64, tdim)
		for j := range r {
			r[j] = x[j] - F[j]
		}
		dX := solve(J, r)
		var step float64
		for k := range X {
			X[k] += dX[k]
			step = math.Max(step, math.Abs(dX[k]))
		}
		if step < 1.e-14 {
			break
		}
	}
	require.NotNil(t, X)
	return X
}

// solve sum_k J[k][j] dX[k] = r[j] by Cramer's rule, tdim <= 3
func solve(J [][]float64, r []float64) (dX []float64) {
	n := len(r)
	A := func(j, k int) float64 { return J[k][j] }
	switch n {
	case 1:
		return []float64{r[0] / A(0, 0)}
	case 2:
		det := A(0, 0)*A(1, 1) - A(0, 1)*A(1, 0)
		return []float64{
			(r[0]*A(1, 1) - A(0, 1)*r[1]) / det,
			(A(0, 0)*r[1] - r[0]*A(1, 0)) / det,
		}
	}
	det3 := func(c0, c1, c2 [3]float64) float64 {
		return c0[0]*(c1[1]*c2[2]-c1[2]*c2[1]) - c1[0]*(c0[1]*c2[2]-c0[2]*c2[1]) + c2[0]*(c0[1]*c1[2]-c0[2]*c1[1])
	}
	var cols [3][3]float64
	for k := 0; k < 3; k++ {
		for j := 0; j < 3; j++ {
			cols[k][j] = A(j, k)
		}
	}
	rv := [3]float64{r[0], r[1], r[2]}
	det := det3(cols[0], cols[1], cols[2])
	return []float64{
		det3(rv, cols[1], cols[2]) / det,
		det3(cols[0], rv, cols[2]) / det,
		det3(cols[0], cols[1], rv) / det,
	}
}

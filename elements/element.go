// Package elements implements finite element families on the reference
// cells: continuous and discontinuous Lagrange, Raviart-Thomas, Nedelec
// (first kind), the global constant space and their mixed and vector
// compositions.
package elements

import (
	"fmt"

	"github.com/molel-gt/ffcx/geometry"
	"github.com/molel-gt/ffcx/reference"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/molel-gt/ffcx/utils"
)

// Mapping is the push forward of reference values to a physical cell.
type Mapping uint8

const (
	Identity Mapping = iota
	ContravariantPiola
	CovariantPiola
)

func (m Mapping) String() string {
	switch m {
	case Identity:
		return "identity"
	case ContravariantPiola:
		return "contravariant Piola"
	case CovariantPiola:
		return "covariant Piola"
	}
	return "unknown"
}

// functional evaluates sum_c weights[c] f_c(point) on reference values.
type functional struct {
	point   []float64
	weights []float64
	// bit of the cell orientation flipping this dof, -1 if none
	bit int
}

// Element is a finite element whose basis spans a polynomial space given
// in monomial coefficients and is dual to a set of point functionals.
type Element struct {
	family    string
	shape     ufc.Shape
	degree    int
	mapping   Mapping
	rvs       int // reference value size
	exps      monomials
	basis     utils.Matrix // row i holds the coefficients [c*len(exps)+m] of basis function i
	dofs      []functional
	layout    Layout
	signature string
}

// newElement inverts the generalized Vandermonde matrix V[j][k] = l_j(p_k)
// of the spanning set to obtain the nodal basis.
func newElement(family string, shape ufc.Shape, degree int, mapping Mapping, rvs int,
	exps monomials, span utils.Matrix, dofs []functional, layout Layout) (e *Element) {
	var (
		nspan, _ = span.Dims()
		nmono    = len(exps)
		vals     = make([]float64, nmono)
	)
	if nspan != len(dofs) {
		panic(fmt.Errorf("%s: %d spanning polynomials for %d dofs", family, nspan, len(dofs)))
	}
	V := utils.NewMatrix(len(dofs), nspan)
	for j, dof := range dofs {
		exps.derivative(dof.point, nil, vals)
		for k := 0; k < nspan; k++ {
			p := span.RawRow(k)
			var sum float64
			for c := 0; c < rvs; c++ {
				for m := 0; m < nmono; m++ {
					sum += dof.weights[c] * p[c*nmono+m] * vals[m]
				}
			}
			V.Set(j, k, sum)
		}
	}
	Vinv := V.InverseWithCheck()
	e = &Element{
		family:  family,
		shape:   shape,
		degree:  degree,
		mapping: mapping,
		rvs:     rvs,
		exps:    exps,
		basis:   Vinv.Transpose().Mul(span),
		dofs:    dofs,
		layout:  layout,
	}
	e.basis.SetReadOnly(family + " basis")
	e.signature = fmt.Sprintf("FiniteElement('%s', %s, %d)", family, shape, degree)
	return
}

func (e *Element) Signature() string         { return e.signature }
func (e *Element) Family() string            { return e.family }
func (e *Element) Degree() int               { return e.degree }
func (e *Element) Mapping() Mapping          { return e.mapping }
func (e *Element) CellShape() ufc.Shape      { return e.shape }
func (e *Element) TopologicalDimension() int { return e.shape.TopologicalDimension() }
func (e *Element) GeometricDimension() int   { return e.shape.TopologicalDimension() }
func (e *Element) SpaceDimension() int       { return len(e.dofs) }
func (e *Element) ReferenceValueSize() int   { return e.rvs }
func (e *Element) ValueSize() int            { return e.rvs }
func (e *Element) NumSubElements() int       { return 0 }
func (e *Element) Layout() Layout            { return e.layout }

func (e *Element) CreateSubElement(i int) ufc.FiniteElement {
	panic(fmt.Errorf("%s has no sub elements, index %d", e.signature, i))
}

func (e *Element) ValueRank() int {
	if e.mapping == Identity {
		return 0
	}
	return 1
}

func (e *Element) ValueDimension(i int) int {
	ufc.CheckIndex("value dimension", i, e.ValueRank())
	return e.rvs
}

func (e *Element) ReferenceValueRank() int { return e.ValueRank() }

func (e *Element) ReferenceValueDimension(i int) int {
	ufc.CheckIndex("reference value dimension", i, e.ReferenceValueRank())
	return e.rvs
}

// Create returns an independent copy.
func (e *Element) Create() ufc.FiniteElement {
	cp := *e
	cp.basis = e.basis.Copy()
	cp.basis.SetReadOnly(e.family + " basis")
	cp.exps = make(monomials, len(e.exps))
	for m, alpha := range e.exps {
		cp.exps[m] = append([]int(nil), alpha...)
	}
	cp.dofs = make([]functional, len(e.dofs))
	for j, dof := range e.dofs {
		cp.dofs[j] = functional{
			point:   append([]float64(nil), dof.point...),
			weights: append([]float64(nil), dof.weights...),
			bit:     dof.bit,
		}
	}
	cp.layout = e.layout.Clone()
	return &cp
}

func (e *Element) EvaluateBasis(i int, values, x, coordinateDofs []float64, cellOrientation int) {
	ufc.CheckIndex("basis", i, len(e.dofs))
	e.tabulate(i, 0, values, x, coordinateDofs, cellOrientation)
}

func (e *Element) EvaluateBasisAll(values, x, coordinateDofs []float64, cellOrientation int) {
	e.tabulate(-1, 0, values, x, coordinateDofs, cellOrientation)
}

func (e *Element) EvaluateBasisDerivatives(i, n int, values, x, coordinateDofs []float64, cellOrientation int) {
	ufc.CheckIndex("basis", i, len(e.dofs))
	e.tabulate(i, n, values, x, coordinateDofs, cellOrientation)
}

func (e *Element) EvaluateBasisDerivativesAll(n int, values, x, coordinateDofs []float64, cellOrientation int) {
	e.tabulate(-1, n, values, x, coordinateDofs, cellOrientation)
}

// tabulate writes derivatives of order n of basis function only, or of all
// basis functions when only is negative, as values[(i*vs+c)*nd+k].
//
// Physical derivatives use K at the point. On non affine cells the second
// derivatives of the coordinate map are not included for n > 1.
func (e *Element) tabulate(only, n int, values, x, coordinateDofs []float64, cellOrientation int) {
	var (
		tdim       = e.shape.TopologicalDimension()
		gdim       = tdim
		m          = geometry.Evaluate(e.shape, gdim, coordinateDofs, x)
		refCombos  = reference.DerivativeCombinations(tdim, n)
		physCombos = reference.DerivativeCombinations(gdim, n)
		ndRef      = len(refCombos)
		ndPhys     = len(physCombos)
		nmono      = len(e.exps)
		dmono      = utils.NewMatrix(ndRef, nmono)
		T          = utils.NewMatrix(ndPhys, ndRef)
		refDerivs  = make([]float64, e.rvs*ndRef)
		first      = 0
		last       = len(e.dofs)
	)
	if n < 0 {
		panic(fmt.Errorf("negative derivative order %d", n))
	}
	if only >= 0 {
		first, last = only, only+1
	}
	for r, combo := range refCombos {
		e.exps.derivative(x, combo, dmono.RawRow(r))
	}
	// d/dx_j = sum_k K[k][j] d/dX_k, applied once per derivative order
	for k, pc := range physCombos {
		for r, rc := range refCombos {
			val := 1.
			for p := 0; p < n; p++ {
				val *= m.Inv(rc[p], pc[p])
			}
			T.Set(k, r, val)
		}
	}
	out := values
	for i := first; i < last; i++ {
		coef := e.basis.RawRow(i)
		for c := 0; c < e.rvs; c++ {
			for r := 0; r < ndRef; r++ {
				row := dmono.RawRow(r)
				var sum float64
				for mm := 0; mm < nmono; mm++ {
					sum += coef[c*nmono+mm] * row[mm]
				}
				refDerivs[c*ndRef+r] = sum
			}
		}
		sign := e.sign(i, cellOrientation)
		block := out[(i-first)*e.rvs*ndPhys : (i-first+1)*e.rvs*ndPhys]
		for c := 0; c < e.rvs; c++ {
			for k := 0; k < ndPhys; k++ {
				var sum float64
				for cc := 0; cc < e.rvs; cc++ {
					mc := e.pushForward(m, c, cc)
					if mc == 0 {
						continue
					}
					for r := 0; r < ndRef; r++ {
						sum += mc * T.At(k, r) * refDerivs[cc*ndRef+r]
					}
				}
				block[c*ndPhys+k] = sign * sum
			}
		}
	}
}

// pushForward returns the entry (c, cc) of the value map.
func (e *Element) pushForward(m geometry.Map, c, cc int) float64 {
	switch e.mapping {
	case ContravariantPiola:
		return m.Jac(c, cc) / m.DetJ
	case CovariantPiola:
		return m.Inv(cc, c)
	}
	if c == cc {
		return 1
	}
	return 0
}

// pullBack maps physical values of a function to reference values.
func (e *Element) pullBack(m geometry.Map, vals, ref []float64) {
	for k := 0; k < e.rvs; k++ {
		var sum float64
		switch e.mapping {
		case ContravariantPiola:
			for j := 0; j < m.GDim; j++ {
				sum += m.Inv(k, j) * vals[j]
			}
			sum *= m.DetJ
		case CovariantPiola:
			for j := 0; j < m.GDim; j++ {
				sum += m.Jac(j, k) * vals[j]
			}
		default:
			sum = vals[k]
		}
		ref[k] = sum
	}
}

func (e *Element) sign(i, cellOrientation int) float64 {
	bit := e.dofs[i].bit
	if bit < 0 || cellOrientation <= 0 {
		return 1
	}
	if cellOrientation&(1<<uint(bit)) != 0 {
		return -1
	}
	return 1
}

func (e *Element) EvaluateDof(i int, f ufc.Function, coordinateDofs []float64, cellOrientation int, c *ufc.Cell) float64 {
	ufc.CheckIndex("dof", i, len(e.dofs))
	var (
		gdim = e.GeometricDimension()
		dof  = e.dofs[i]
		m    = geometry.Evaluate(e.shape, gdim, coordinateDofs, dof.point)
		vals = make([]float64, e.rvs)
		ref  = make([]float64, e.rvs)
	)
	f.Evaluate(vals, m.X, c)
	e.pullBack(m, vals, ref)
	var sum float64
	for k, w := range dof.weights {
		sum += w * ref[k]
	}
	return e.sign(i, cellOrientation) * sum
}

func (e *Element) EvaluateDofs(values []float64, f ufc.Function, coordinateDofs []float64, cellOrientation int, c *ufc.Cell) {
	for i := range e.dofs {
		values[i] = e.EvaluateDof(i, f, coordinateDofs, cellOrientation, c)
	}
}

func (e *Element) InterpolateVertexValues(vertexValues, dofValues, coordinateDofs []float64, cellOrientation int, c *ufc.Cell) {
	interpolateVertexValues(e, vertexValues, dofValues, coordinateDofs, cellOrientation)
}

func interpolateVertexValues(e ufc.FiniteElement, vertexValues, dofValues, coordinateDofs []float64, cellOrientation int) {
	var (
		vs   = e.ValueSize()
		dim  = e.SpaceDimension()
		phi  = make([]float64, dim*vs)
		vals = reference.Vertices(e.CellShape())
	)
	if len(dofValues) < dim {
		panic(fmt.Errorf("%d dof values for %d dofs", len(dofValues), dim))
	}
	for v, X := range vals {
		e.EvaluateBasisAll(phi, X, coordinateDofs, cellOrientation)
		for c := 0; c < vs; c++ {
			var sum float64
			for i := 0; i < dim; i++ {
				sum += dofValues[i] * phi[i*vs+c]
			}
			vertexValues[v*vs+c] = sum
		}
	}
}

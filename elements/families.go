package elements

import (
	"fmt"

	"github.com/molel-gt/ffcx/reference"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/molel-gt/ffcx/utils"
)

const (
	FamilyLagrange      = "Lagrange"
	FamilyQ             = "Q"
	FamilyDG            = "Discontinuous Lagrange"
	FamilyDQ            = "DQ"
	FamilyRaviartThomas = "Raviart-Thomas"
	FamilyNedelec       = "Nedelec 1st kind H(curl)"
	FamilyReal          = "Real"
)

var maxDegree = map[ufc.Shape]int{
	ufc.Interval:      3,
	ufc.Triangle:      3,
	ufc.Tetrahedron:   3,
	ufc.Quadrilateral: 2,
	ufc.Hexahedron:    2,
}

// Lagrange returns the continuous nodal element of the given degree on
// equispaced points, P_k on simplices and Q_k on quadrilaterals and
// hexahedra. Dofs are ordered by entity dimension, then entity.
func Lagrange(shape ufc.Shape, degree int) (e *Element, err error) {
	if degree < 1 || degree > maxDegree[shape] {
		err = fmt.Errorf("Lagrange degree %d on %s not in [1, %d]: %w", degree, shape, maxDegree[shape], ufc.ErrUnsupported)
		return
	}
	var (
		tdim   = shape.TopologicalDimension()
		layout = newLayout(shape)
		dofs   []functional
	)
	for d := 0; d <= tdim; d++ {
		for ent := 0; ent < reference.NumEntities(shape, d); ent++ {
			for _, pt := range latticePoints(shape, d, ent, degree) {
				layout.EntityDofs[d][ent] = append(layout.EntityDofs[d][ent], len(dofs))
				layout.Points = append(layout.Points, pt)
				dofs = append(dofs, functional{point: pt, weights: []float64{1}, bit: -1})
			}
		}
	}
	family := FamilyLagrange
	if !shape.IsSimplex() {
		family = FamilyQ
	}
	e = newScalar(family, shape, degree, dofs, layout)
	return
}

// DiscontinuousLagrange returns the nodal element with all dofs interior to
// the cell. Degree 0 has a single dof at the cell midpoint.
func DiscontinuousLagrange(shape ufc.Shape, degree int) (e *Element, err error) {
	if degree < 0 || degree > maxDegree[shape] {
		err = fmt.Errorf("discontinuous Lagrange degree %d on %s not in [0, %d]: %w", degree, shape, maxDegree[shape],
			ufc.ErrUnsupported)
		return
	}
	var (
		tdim   = shape.TopologicalDimension()
		layout = newLayout(shape)
		dofs   []functional
		points [][]float64
	)
	if degree == 0 {
		points = [][]float64{reference.Midpoint(shape, tdim, 0)}
	} else {
		for d := 0; d <= tdim; d++ {
			for ent := 0; ent < reference.NumEntities(shape, d); ent++ {
				points = append(points, latticePoints(shape, d, ent, degree)...)
			}
		}
	}
	for _, pt := range points {
		layout.EntityDofs[tdim][0] = append(layout.EntityDofs[tdim][0], len(dofs))
		layout.Points = append(layout.Points, pt)
		dofs = append(dofs, functional{point: pt, weights: []float64{1}, bit: -1})
	}
	family := FamilyDG
	if !shape.IsSimplex() {
		family = FamilyDQ
	}
	e = newScalar(family, shape, degree, dofs, layout)
	return
}

// Real returns the space of global constants, one dof shared by all cells.
func Real(shape ufc.Shape) (e *Element) {
	var (
		tdim   = shape.TopologicalDimension()
		layout = newLayout(shape)
		dofs   = []functional{{point: reference.Midpoint(shape, tdim, 0), weights: []float64{1}, bit: -1}}
	)
	layout.GlobalDofs = []int{0}
	return newScalar(FamilyReal, shape, 0, dofs, layout)
}

func newScalar(family string, shape ufc.Shape, degree int, dofs []functional, layout Layout) *Element {
	var (
		tdim = shape.TopologicalDimension()
		exps monomials
	)
	if shape.IsSimplex() {
		exps = totalDegree(tdim, degree)
	} else {
		exps = tensorDegree(tdim, degree)
	}
	span := utils.NewMatrix(len(exps), len(exps))
	for m := range exps {
		span.Set(m, m, 1)
	}
	return newElement(family, shape, degree, Identity, 1, exps, span, dofs, layout)
}

// RaviartThomas returns the lowest order H(div) element on a triangle or
// tetrahedron. Dof f is the flux through facet f, the reference value at
// the facet midpoint dotted with the outward normal scaled by the facet
// measure. Bit f of the cell orientation flips the sign of dof f.
func RaviartThomas(shape ufc.Shape, degree int) (e *Element, err error) {
	if degree != 1 || (shape != ufc.Triangle && shape != ufc.Tetrahedron) {
		err = fmt.Errorf("Raviart-Thomas degree %d on %s: %w", degree, shape, ufc.ErrUnsupported)
		return
	}
	var (
		tdim    = shape.TopologicalDimension()
		nfacets = reference.NumFacets(shape)
		layout  = newLayout(shape)
		exps    = totalDegree(tdim, 1)
		nmono   = len(exps)
		span    = utils.NewMatrix(tdim+1, tdim*nmono)
		dofs    []functional
		zero    = make([]int, tdim)
	)
	// constants e_c and the field x
	for c := 0; c < tdim; c++ {
		span.Set(c, c*nmono+exps.index(zero...), 1)
		alpha := make([]int, tdim)
		alpha[c] = 1
		span.Set(tdim, c*nmono+exps.index(alpha...), 1)
	}
	for f := 0; f < nfacets; f++ {
		pt := reference.Midpoint(shape, tdim-1, f)
		layout.EntityDofs[tdim-1][f] = []int{len(dofs)}
		layout.Points = append(layout.Points, pt)
		dofs = append(dofs, functional{
			point:   pt,
			weights: reference.ScaledFacetNormal(shape, f),
			bit:     f,
		})
	}
	e = newElement(FamilyRaviartThomas, shape, degree, ContravariantPiola, tdim, exps, span, dofs, layout)
	return
}

// Nedelec returns the lowest order H(curl) element of the first kind on a
// triangle or tetrahedron. Dof k is the circulation along edge k, the
// reference value at the edge midpoint dotted with the edge vector. Bit
// nfacets+k of the cell orientation flips the sign of dof k.
func Nedelec(shape ufc.Shape, degree int) (e *Element, err error) {
	if degree != 1 || (shape != ufc.Triangle && shape != ufc.Tetrahedron) {
		err = fmt.Errorf("Nedelec degree %d on %s: %w", degree, shape, ufc.ErrUnsupported)
		return
	}
	var (
		tdim    = shape.TopologicalDimension()
		nfacets = reference.NumFacets(shape)
		nedges  = reference.NumEntities(shape, 1)
		layout  = newLayout(shape)
		exps    = totalDegree(tdim, 1)
		nmono   = len(exps)
		span    = utils.NewMatrix(nedges, tdim*nmono)
		dofs    []functional
		zero    = make([]int, tdim)
		X       = reference.Vertices(shape)
	)
	linear := func(axis int) int {
		alpha := make([]int, tdim)
		alpha[axis] = 1
		return exps.index(alpha...)
	}
	for c := 0; c < tdim; c++ {
		span.Set(c, c*nmono+exps.index(zero...), 1)
	}
	if tdim == 2 {
		// (-y, x)
		span.Set(2, 0*nmono+linear(1), -1)
		span.Set(2, 1*nmono+linear(0), 1)
	} else {
		// e_k x X for k = 0, 1, 2
		span.Set(3, 1*nmono+linear(2), -1)
		span.Set(3, 2*nmono+linear(1), 1)
		span.Set(4, 0*nmono+linear(2), 1)
		span.Set(4, 2*nmono+linear(0), -1)
		span.Set(5, 0*nmono+linear(1), -1)
		span.Set(5, 1*nmono+linear(0), 1)
	}
	for k := 0; k < nedges; k++ {
		verts := reference.EntityVertices(shape, 1, k)
		pt := reference.Midpoint(shape, 1, k)
		layout.EntityDofs[1][k] = []int{len(dofs)}
		layout.Points = append(layout.Points, pt)
		dofs = append(dofs, functional{
			point:   pt,
			weights: sub(X[verts[1]], X[verts[0]]),
			bit:     nfacets + k,
		})
	}
	e = newElement(FamilyNedelec, shape, degree, CovariantPiola, tdim, exps, span, dofs, layout)
	return
}

// New creates a simple element by family name.
func New(family string, shape ufc.Shape, degree int) (fe ufc.FiniteElement, err error) {
	var e *Element
	switch family {
	case FamilyLagrange, FamilyQ, "P", "CG":
		e, err = Lagrange(shape, degree)
	case FamilyDG, FamilyDQ, "DG", "DP":
		e, err = DiscontinuousLagrange(shape, degree)
	case FamilyRaviartThomas, "RT":
		e, err = RaviartThomas(shape, degree)
	case FamilyNedelec, "N1curl":
		e, err = Nedelec(shape, degree)
	case FamilyReal, "R":
		e = Real(shape)
	default:
		err = fmt.Errorf("element family %q: %w", family, ufc.ErrUnsupported)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// MustNew is New for statically known element choices.
func MustNew(family string, shape ufc.Shape, degree int) ufc.FiniteElement {
	e, err := New(family, shape, degree)
	if err != nil {
		panic(err)
	}
	return e
}

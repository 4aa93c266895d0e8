// Package quadrature provides Gauss type rules on the reference cells and
// their facets.
package quadrature

import (
	"fmt"

	"github.com/molel-gt/ffcx/jacobi"
	"github.com/molel-gt/ffcx/reference"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/molel-gt/ffcx/utils"
)

// Rule is a set of points in reference coordinates with weights. Rules are
// read only once created.
type Rule struct {
	Points  utils.Matrix // NumPoints x Dim
	Weights []float64
}

func (r Rule) NumPoints() int { return len(r.Weights) }

func (r Rule) Dim() int { return r.Points.Cols() }

// Point returns a read only view of point q.
func (r Rule) Point(q int) []float64 { return r.Points.RawRow(q) }

// NumPoints1D is the number of Gauss points per direction needed to
// integrate polynomials of the given degree exactly.
func NumPoints1D(degree int) int {
	if degree < 0 {
		degree = 0
	}
	return degree/2 + 1
}

// New returns a rule on the reference cell exact for polynomials of the
// given total degree (per direction degree on quadrilaterals and hexahedra).
//
// Simplices use collapsed coordinate (Stroud) conical products of
// Gauss-Jacobi rules, tensor cells use products of Gauss-Legendre rules.
func New(shape ufc.Shape, degree int) (r Rule) {
	var (
		n = NumPoints1D(degree)
	)
	switch shape {
	case ufc.Interval:
		x, w := gauss(0, n)
		r = newRule(1, len(w))
		for q := range w {
			r.Points.Set(q, 0, x[q])
			r.Weights[q] = w[q]
		}
	case ufc.Quadrilateral:
		x, w := gauss(0, n)
		r = newRule(2, n*n)
		var q int
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				r.Points.Set(q, 0, x[i])
				r.Points.Set(q, 1, x[j])
				r.Weights[q] = w[i] * w[j]
				q++
			}
		}
	case ufc.Hexahedron:
		x, w := gauss(0, n)
		r = newRule(3, n*n*n)
		var q int
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				for k := 0; k < n; k++ {
					r.Points.Set(q, 0, x[i])
					r.Points.Set(q, 1, x[j])
					r.Points.Set(q, 2, x[k])
					r.Weights[q] = w[i] * w[j] * w[k]
					q++
				}
			}
		}
	case ufc.Triangle:
		a, wa := jacobi.GQ(0, 0, n-1)
		b, wb := jacobi.GQ(1, 0, n-1)
		r = newRule(2, n*n)
		var q int
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				ai, bj := a.AtVec(i), b.AtVec(j)
				r.Points.Set(q, 0, (1+ai)*(1-bj)/4)
				r.Points.Set(q, 1, (1+bj)/2)
				r.Weights[q] = wa.AtVec(i) * wb.AtVec(j) / 8
				q++
			}
		}
	case ufc.Tetrahedron:
		a, wa := jacobi.GQ(0, 0, n-1)
		b, wb := jacobi.GQ(1, 0, n-1)
		c, wc := jacobi.GQ(2, 0, n-1)
		r = newRule(3, n*n*n)
		var q int
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				for k := 0; k < n; k++ {
					ai, bj, ck := a.AtVec(i), b.AtVec(j), c.AtVec(k)
					r.Points.Set(q, 0, (1+ai)*(1-bj)*(1-ck)/8)
					r.Points.Set(q, 1, (1+bj)*(1-ck)/4)
					r.Points.Set(q, 2, (1+ck)/2)
					r.Weights[q] = wa.AtVec(i) * wb.AtVec(j) * wc.AtVec(k) / 64
					q++
				}
			}
		}
	default:
		panic(fmt.Errorf("no quadrature for cell shape %v", shape))
	}
	r.Points.SetReadOnly("quadrature points")
	return
}

// Facet returns a rule on local facet f of the reference cell. Points are in
// the coordinates of the cell, weights sum to the reference measure of the
// facet parameter domain (1 for segments and quadrilaterals, 1/2 for
// triangles, 1 for the point facets of an interval).
func Facet(shape ufc.Shape, f, degree int) (r Rule) {
	var (
		tdim  = shape.TopologicalDimension()
		verts = reference.EntityVertices(shape, tdim-1, f)
		X     = reference.Vertices(shape)
	)
	fs, ok := reference.FacetShape(shape)
	if !ok {
		r = newRule(1, 1)
		r.Points.Set(0, 0, X[verts[0]][0])
		r.Weights[0] = 1
		r.Points.SetReadOnly("facet quadrature points")
		return
	}
	var (
		fr       = New(fs, degree)
		tangents = reference.FacetJacobian(shape, f)
	)
	r = newRule(tdim, fr.NumPoints())
	copy(r.Weights, fr.Weights)
	for q := 0; q < fr.NumPoints(); q++ {
		xi := fr.Point(q)
		for j := 0; j < tdim; j++ {
			x := X[verts[0]][j]
			for k, t := range tangents {
				x += xi[k] * t[j]
			}
			r.Points.Set(q, j, x)
		}
	}
	r.Points.SetReadOnly("facet quadrature points")
	return
}

func newRule(dim, npts int) Rule {
	return Rule{
		Points:  utils.NewMatrix(npts, dim),
		Weights: make([]float64, npts),
	}
}

// gauss returns the n point Gauss-Jacobi rule mapped to [0, 1]
func gauss(alpha float64, n int) (x, w []float64) {
	X, W := jacobi.GQ(alpha, 0, n-1)
	x, w = make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = (1 + X.AtVec(i)) / 2
		w[i] = W.AtVec(i) / 2
	}
	return
}

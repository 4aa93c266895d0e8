// Package geometry evaluates the map from the reference cell to a physical
// cell given its vertex coordinates.
package geometry

import (
	"fmt"
	"math"

	"github.com/molel-gt/ffcx/reference"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/molel-gt/ffcx/utils"
	"gonum.org/v1/gonum/mat"
)

// Map is the coordinate map and its derivatives at one reference point.
// J is gdim x tdim and K is its (pseudo) inverse, tdim x gdim, both row
// major. For gdim > tdim DetJ is the volume scaling sqrt(det(J^T J)).
type Map struct {
	Shape      ufc.Shape
	GDim, TDim int
	X          []float64
	J, K       []float64
	DetJ       float64
}

// Evaluate computes the coordinate map of a cell at reference point X.
// coordinateDofs is vertex major, one gdim coordinate block per vertex.
func Evaluate(shape ufc.Shape, gdim int, coordinateDofs, X []float64) (m Map) {
	var (
		tdim = shape.TopologicalDimension()
		nv   = reference.NumVertices(shape)
		phi  = make([]float64, nv)
		dphi = make([]float64, nv*tdim)
	)
	if len(coordinateDofs) < nv*gdim {
		panic(fmt.Errorf("%d coordinate dofs for a %s in %d dimensions", len(coordinateDofs), shape, gdim))
	}
	if gdim < tdim {
		panic(fmt.Errorf("geometric dimension %d below topological dimension %d", gdim, tdim))
	}
	reference.VertexBasis(shape, X, phi)
	reference.VertexBasisGrad(shape, X, dphi)
	m = Map{
		Shape: shape,
		GDim:  gdim,
		TDim:  tdim,
		X:     make([]float64, gdim),
		J:     make([]float64, gdim*tdim),
		K:     make([]float64, tdim*gdim),
	}
	for v := 0; v < nv; v++ {
		c := coordinateDofs[v*gdim : (v+1)*gdim]
		for j := 0; j < gdim; j++ {
			m.X[j] += phi[v] * c[j]
			for k := 0; k < tdim; k++ {
				m.J[j*tdim+k] += dphi[v*tdim+k] * c[j]
			}
		}
	}
	m.invert()
	return
}

func (m *Map) invert() {
	var (
		J = m.J
		K = m.K
	)
	if m.GDim == m.TDim {
		switch m.TDim {
		case 1:
			m.DetJ = J[0]
			K[0] = 1 / J[0]
		case 2:
			m.DetJ = J[0]*J[3] - J[1]*J[2]
			d := 1 / m.DetJ
			K[0], K[1], K[2], K[3] = J[3]*d, -J[1]*d, -J[2]*d, J[0]*d
		case 3:
			m.DetJ = J[0]*(J[4]*J[8]-J[5]*J[7]) - J[1]*(J[3]*J[8]-J[5]*J[6]) + J[2]*(J[3]*J[7]-J[4]*J[6])
			d := 1 / m.DetJ
			K[0] = (J[4]*J[8] - J[5]*J[7]) * d
			K[1] = (J[2]*J[7] - J[1]*J[8]) * d
			K[2] = (J[1]*J[5] - J[2]*J[4]) * d
			K[3] = (J[5]*J[6] - J[3]*J[8]) * d
			K[4] = (J[0]*J[8] - J[2]*J[6]) * d
			K[5] = (J[2]*J[3] - J[0]*J[5]) * d
			K[6] = (J[3]*J[7] - J[4]*J[6]) * d
			K[7] = (J[1]*J[6] - J[0]*J[7]) * d
			K[8] = (J[0]*J[4] - J[1]*J[3]) * d
		}
		if m.DetJ == 0 {
			panic(fmt.Errorf("degenerate %s: zero Jacobian determinant", m.Shape))
		}
		return
	}
	// Manifold: K = (J^T J)^-1 J^T
	var (
		Jm  = utils.NewMatrix(m.GDim, m.TDim, J)
		JTJ = Jm.Transpose().Mul(Jm)
	)
	m.DetJ = math.Sqrt(mat.Det(JTJ.M))
	Km := JTJ.InverseWithCheck().Mul(Jm.Transpose())
	copy(K, Km.Data())
}

// Jac returns J[j][k] = dx_j/dX_k.
func (m Map) Jac(j, k int) float64 { return m.J[j*m.TDim+k] }

// Inv returns K[k][j] = dX_k/dx_j.
func (m Map) Inv(k, j int) float64 { return m.K[k*m.GDim+j] }

// Push maps reference point X to physical coordinates.
func Push(shape ufc.Shape, gdim int, coordinateDofs, X []float64) (x []float64) {
	var (
		nv  = reference.NumVertices(shape)
		phi = make([]float64, nv)
	)
	reference.VertexBasis(shape, X, phi)
	x = make([]float64, gdim)
	for v := 0; v < nv; v++ {
		for j := 0; j < gdim; j++ {
			x[j] += phi[v] * coordinateDofs[v*gdim+j]
		}
	}
	return
}

// PullBack finds the reference point mapped to the physical point x by
// Newton iteration, exact after one step on affine cells.
func PullBack(shape ufc.Shape, gdim int, coordinateDofs, x []float64) (X []float64, err error) {
	var (
		tdim = shape.TopologicalDimension()
	)
	X = reference.Midpoint(shape, tdim, 0)
	for iter := 0; iter < 25; iter++ {
		m := Evaluate(shape, gdim, coordinateDofs, X)
		var step float64
		for k := 0; k < tdim; k++ {
			var dX float64
			for j := 0; j < gdim; j++ {
				dX += m.Inv(k, j) * (x[j] - m.X[j])
			}
			X[k] += dX
			step = math.Max(step, math.Abs(dX))
		}
		if step < 1.e-13 {
			return
		}
	}
	err = fmt.Errorf("pull back of %v into %s did not converge", x, shape)
	return
}

// FacetScale is the ratio of the physical facet measure element to that
// of the facet parameter domain at the point of m.
func FacetScale(m Map, facet int) float64 {
	var (
		tangents = reference.FacetJacobian(m.Shape, facet)
	)
	mapped := make([][]float64, len(tangents))
	for i, t := range tangents {
		mapped[i] = make([]float64, m.GDim)
		for j := 0; j < m.GDim; j++ {
			for k := 0; k < m.TDim; k++ {
				mapped[i][j] += m.Jac(j, k) * t[k]
			}
		}
	}
	switch len(mapped) {
	case 0:
		return 1
	case 1:
		return reference.Norm(mapped[0])
	default:
		return reference.Norm(reference.Cross(mapped[0], mapped[1]))
	}
}

// FacetNormal returns the physical unit outward normal of a local facet,
// requires gdim == tdim.
func FacetNormal(m Map, facet int) (n []float64) {
	var (
		nref = reference.FacetNormal(m.Shape, facet)
	)
	if m.GDim != m.TDim {
		panic(fmt.Errorf("facet normals need gdim == tdim, have %d and %d", m.GDim, m.TDim))
	}
	n = make([]float64, m.GDim)
	for j := 0; j < m.GDim; j++ {
		for k := 0; k < m.TDim; k++ {
			n[j] += m.Inv(k, j) * nref[k]
		}
	}
	norm := reference.Norm(n)
	for j := range n {
		n[j] /= norm
	}
	return
}

// CellVolume integrates |det J| over the reference cell with the vertex
// rule of the shape, exact for affine cells and parallelepipeds.
func CellVolume(shape ufc.Shape, gdim int, coordinateDofs []float64) (vol float64) {
	var (
		tdim = shape.TopologicalDimension()
	)
	if reference.IsAffine(shape) {
		m := Evaluate(shape, gdim, coordinateDofs, reference.Midpoint(shape, tdim, 0))
		return math.Abs(m.DetJ) * reference.Volume(shape)
	}
	// 2 point Gauss rule per direction integrates the multilinear det J exactly
	g := []float64{0.5 - 0.5/math.Sqrt(3), 0.5 + 0.5/math.Sqrt(3)}
	X := make([]float64, tdim)
	var rec func(k int, w float64)
	rec = func(k int, w float64) {
		if k == tdim {
			vol += w * math.Abs(Evaluate(shape, gdim, coordinateDofs, X).DetJ)
			return
		}
		for _, gx := range g {
			X[k] = gx
			rec(k+1, w*0.5)
		}
	}
	rec(0, 1)
	return
}

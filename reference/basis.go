package reference

import (
	"github.com/molel-gt/ffcx/ufc"
)

// VertexBasis evaluates the degree one vertex basis (P1 on simplices, Q1 on
// quadrilaterals and hexahedra) at the reference point X. phi has one entry
// per vertex.
func VertexBasis(shape ufc.Shape, X, phi []float64) {
	switch shape {
	case ufc.Interval:
		phi[0], phi[1] = 1-X[0], X[0]
	case ufc.Triangle:
		phi[0], phi[1], phi[2] = 1-X[0]-X[1], X[0], X[1]
	case ufc.Tetrahedron:
		phi[0], phi[1], phi[2], phi[3] = 1-X[0]-X[1]-X[2], X[0], X[1], X[2]
	case ufc.Quadrilateral, ufc.Hexahedron:
		for v, xv := range Vertices(shape) {
			phi[v] = 1
			for j, c := range xv {
				phi[v] *= hat(c, X[j])
			}
		}
	default:
		checkShape(shape)
	}
}

// VertexBasisGrad evaluates the reference gradients of the vertex basis,
// dphi[v*tdim+j] = d(phi_v)/dX_j.
func VertexBasisGrad(shape ufc.Shape, X, dphi []float64) {
	var (
		tdim = shape.TopologicalDimension()
	)
	switch shape {
	case ufc.Interval, ufc.Triangle, ufc.Tetrahedron:
		for i := range dphi[:(tdim+1)*tdim] {
			dphi[i] = 0
		}
		for j := 0; j < tdim; j++ {
			dphi[j] = -1
			dphi[(j+1)*tdim+j] = 1
		}
	case ufc.Quadrilateral, ufc.Hexahedron:
		for v, xv := range Vertices(shape) {
			for j := 0; j < tdim; j++ {
				g := 1.
				for k, c := range xv {
					if k == j {
						g *= dhat(c)
					} else {
						g *= hat(c, X[k])
					}
				}
				dphi[v*tdim+j] = g
			}
		}
	default:
		checkShape(shape)
	}
}

// IsAffine reports whether the vertex basis has constant gradients.
func IsAffine(shape ufc.Shape) bool {
	return shape.IsSimplex()
}

func hat(vertexCoord, x float64) float64 {
	if vertexCoord == 0 {
		return 1 - x
	}
	return x
}

func dhat(vertexCoord float64) float64 {
	if vertexCoord == 0 {
		return -1
	}
	return 1
}

// DerivativeCombinations lists the axes of every mixed partial of order n
// in dim dimensions, lexicographically with the last derivative fastest.
// For dim = 2, n = 2 the order is xx, xy, yx, yy.
func DerivativeCombinations(dim, n int) (combinations [][]int) {
	num := ufc.NumDerivatives(dim, n)
	combinations = make([][]int, num)
	for k := 0; k < num; k++ {
		combination := make([]int, n)
		rem := k
		for p := n - 1; p >= 0; p-- {
			combination[p] = rem % dim
			rem /= dim
		}
		combinations[k] = combination
	}
	return
}

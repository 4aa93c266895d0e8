package elements

import (
	"github.com/molel-gt/ffcx/reference"
	"github.com/molel-gt/ffcx/ufc"
)

// latticePoints returns the equispaced points of spacing 1/degree strictly
// inside entity e of dimension d, ordered from the first entity vertex.
func latticePoints(shape ufc.Shape, d, e, degree int) (points [][]float64) {
	var (
		verts = reference.EntityVertices(shape, d, e)
		X     = reference.Vertices(shape)
		tdim  = shape.TopologicalDimension()
		dirs  [][]float64
	)
	if degree < 1 {
		return
	}
	if d == 0 {
		return [][]float64{append([]float64(nil), X[verts[0]]...)}
	}
	simplex := len(verts) == d+1
	if simplex {
		for p := 1; p <= d; p++ {
			dirs = append(dirs, sub(X[verts[p]], X[verts[0]]))
		}
	} else {
		for _, p := range []int{1, 2, 4}[:d] {
			dirs = append(dirs, sub(X[verts[p]], X[verts[0]]))
		}
	}
	var rec func(prefix []int, sum int)
	rec = func(prefix []int, sum int) {
		if len(prefix) == d {
			pt := append([]float64(nil), X[verts[0]]...)
			for p, i := range prefix {
				for j := 0; j < tdim; j++ {
					pt[j] += float64(i) / float64(degree) * dirs[p][j]
				}
			}
			points = append(points, pt)
			return
		}
		for i := 1; i < degree; i++ {
			if simplex && sum+i > degree-1 {
				break
			}
			rec(append(prefix, i), sum+i)
		}
	}
	rec(nil, 0)
	return
}

func sub(a, b []float64) (c []float64) {
	c = make([]float64, len(a))
	for i := range a {
		c[i] = a[i] - b[i]
	}
	return
}

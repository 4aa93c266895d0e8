// Package reference describes the reference cells: vertex coordinates,
// local entity numbering, facet normals and the degree one vertex basis.
//
// Simplices use the unit simplex with facet i opposite vertex i. The
// quadrilateral and hexahedron are the unit square and cube with vertex
// v = x + 2y + 4z.
package reference

import (
	"fmt"
	"math"

	"github.com/molel-gt/ffcx/ufc"
)

var (
	vertices = map[ufc.Shape][][]float64{
		ufc.Interval:      {{0}, {1}},
		ufc.Triangle:      {{0, 0}, {1, 0}, {0, 1}},
		ufc.Quadrilateral: {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		ufc.Tetrahedron:   {{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		ufc.Hexahedron: {{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
			{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1}},
	}
	// topology[shape][d][e] lists the local vertices of entity e of dimension d
	topology = map[ufc.Shape][][][]int{
		ufc.Interval: {
			{{0}, {1}},
			{{0, 1}},
		},
		ufc.Triangle: {
			{{0}, {1}, {2}},
			{{1, 2}, {0, 2}, {0, 1}},
			{{0, 1, 2}},
		},
		ufc.Quadrilateral: {
			{{0}, {1}, {2}, {3}},
			{{0, 1}, {0, 2}, {1, 3}, {2, 3}},
			{{0, 1, 2, 3}},
		},
		ufc.Tetrahedron: {
			{{0}, {1}, {2}, {3}},
			{{2, 3}, {1, 3}, {1, 2}, {0, 3}, {0, 2}, {0, 1}},
			{{1, 2, 3}, {0, 2, 3}, {0, 1, 3}, {0, 1, 2}},
			{{0, 1, 2, 3}},
		},
		ufc.Hexahedron: {
			{{0}, {1}, {2}, {3}, {4}, {5}, {6}, {7}},
			{{0, 1}, {0, 2}, {0, 4}, {1, 3}, {1, 5}, {2, 3},
				{2, 6}, {3, 7}, {4, 5}, {4, 6}, {5, 7}, {6, 7}},
			{{0, 1, 2, 3}, {0, 1, 4, 5}, {0, 2, 4, 6},
				{1, 3, 5, 7}, {2, 3, 6, 7}, {4, 5, 6, 7}},
			{{0, 1, 2, 3, 4, 5, 6, 7}},
		},
	}
	volumes = map[ufc.Shape]float64{
		ufc.Interval:      1,
		ufc.Triangle:      0.5,
		ufc.Quadrilateral: 1,
		ufc.Tetrahedron:   1. / 6.,
		ufc.Hexahedron:    1,
	}
	facetShapes = map[ufc.Shape]ufc.Shape{
		ufc.Triangle:      ufc.Interval,
		ufc.Quadrilateral: ufc.Interval,
		ufc.Tetrahedron:   ufc.Triangle,
		ufc.Hexahedron:    ufc.Quadrilateral,
	}
)

func checkShape(shape ufc.Shape) {
	if _, ok := vertices[shape]; !ok {
		panic(fmt.Errorf("unknown cell shape %d", uint8(shape)))
	}
}

// Vertices returns the reference vertex coordinates. The result must not be
// modified.
func Vertices(shape ufc.Shape) [][]float64 {
	checkShape(shape)
	return vertices[shape]
}

func NumVertices(shape ufc.Shape) int {
	return len(Vertices(shape))
}

func NumEntities(shape ufc.Shape, d int) int {
	checkShape(shape)
	ufc.CheckIndex("entity dimension", d, shape.TopologicalDimension()+1)
	return len(topology[shape][d])
}

func NumFacets(shape ufc.Shape) int {
	return NumEntities(shape, shape.TopologicalDimension()-1)
}

// EntityVertices returns the local vertices of entity e of dimension d.
func EntityVertices(shape ufc.Shape, d, e int) []int {
	ufc.CheckIndex("entity", e, NumEntities(shape, d))
	return topology[shape][d][e]
}

// FacetShape returns the shape of the facets of a 2D or 3D cell. Interval
// facets are points and have no shape.
func FacetShape(shape ufc.Shape) (fs ufc.Shape, ok bool) {
	fs, ok = facetShapes[shape]
	return
}

func Volume(shape ufc.Shape) float64 {
	checkShape(shape)
	return volumes[shape]
}

// SubEntities returns the local indices of the entities of dimension d2
// contained in entity e of dimension d, including e itself when d2 == d.
func SubEntities(shape ufc.Shape, d, e, d2 int) (sub []int) {
	var (
		verts = EntityVertices(shape, d, e)
	)
	for e2 := 0; e2 < NumEntities(shape, d2); e2++ {
		if containsAll(verts, topology[shape][d2][e2]) {
			sub = append(sub, e2)
		}
	}
	return
}

// Midpoint returns the barycenter of entity e of dimension d.
func Midpoint(shape ufc.Shape, d, e int) (x []float64) {
	var (
		verts = EntityVertices(shape, d, e)
		tdim  = shape.TopologicalDimension()
	)
	x = make([]float64, tdim)
	for _, v := range verts {
		for j := 0; j < tdim; j++ {
			x[j] += vertices[shape][v][j]
		}
	}
	for j := range x {
		x[j] /= float64(len(verts))
	}
	return
}

// FacetNormal returns the unit outward normal of facet f.
func FacetNormal(shape ufc.Shape, f int) (n []float64) {
	n, _ = facetNormalAndMeasure(shape, f)
	return
}

// FacetMeasure returns the length or area of facet f, 1 for interval facets.
func FacetMeasure(shape ufc.Shape, f int) (measure float64) {
	_, measure = facetNormalAndMeasure(shape, f)
	return
}

// ScaledFacetNormal is the outward normal scaled by the facet measure.
func ScaledFacetNormal(shape ufc.Shape, f int) (n []float64) {
	var measure float64
	n, measure = facetNormalAndMeasure(shape, f)
	for j := range n {
		n[j] *= measure
	}
	return
}

// FacetJacobian returns the tangent vectors t_k = v_k - v_0 spanning facet
// f, v_1 and v_2 being the second and third facet vertices.
func FacetJacobian(shape ufc.Shape, f int) (tangents [][]float64) {
	var (
		tdim  = shape.TopologicalDimension()
		verts = EntityVertices(shape, tdim-1, f)
		X     = vertices[shape]
	)
	for k := 1; k < tdim; k++ {
		t := make([]float64, tdim)
		for j := range t {
			t[j] = X[verts[k]][j] - X[verts[0]][j]
		}
		tangents = append(tangents, t)
	}
	return
}

func facetNormalAndMeasure(shape ufc.Shape, f int) (n []float64, measure float64) {
	var (
		tdim     = shape.TopologicalDimension()
		verts    = EntityVertices(shape, tdim-1, f)
		X        = vertices[shape]
		centroid = Midpoint(shape, tdim, 0)
		tangents = FacetJacobian(shape, f)
	)
	switch tdim {
	case 1:
		n = []float64{1}
		measure = 1
	case 2:
		t := tangents[0]
		n = []float64{t[1], -t[0]}
		measure = math.Hypot(t[0], t[1])
	case 3:
		n = Cross(tangents[0], tangents[1])
		measure = Norm(n)
		if len(verts) == 3 {
			measure *= 0.5
		}
	}
	// Orient away from the cell centroid
	var dot float64
	for j := 0; j < tdim; j++ {
		dot += n[j] * (X[verts[0]][j] - centroid[j])
	}
	scale := 1. / Norm(n)
	if dot < 0 {
		scale = -scale
	}
	for j := range n {
		n[j] *= scale
	}
	return
}

func Cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func Norm(a []float64) float64 {
	var sum float64
	for _, val := range a {
		sum += val * val
	}
	return math.Sqrt(sum)
}

func containsAll(set, subset []int) bool {
	for _, s := range subset {
		found := false
		for _, v := range set {
			if v == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

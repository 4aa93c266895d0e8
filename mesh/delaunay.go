package mesh

import (
	"fmt"

	"github.com/molel-gt/ffcx/ufc"
	"github.com/pradeep-pyro/triangle"
)

// Delaunay triangulates a planar point cloud. Exterior facets are left
// untagged.
func Delaunay(points [][2]float64) (m *Mesh, err error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("delaunay triangulation of %d points", len(points))
	}
	tris := triangle.Delaunay(points)
	if len(tris) == 0 {
		return nil, fmt.Errorf("delaunay triangulation of %d points produced no triangles", len(points))
	}
	var (
		verts = make([][]float64, len(points))
		cells = make([][]int, len(tris))
	)
	for i, p := range points {
		verts[i] = []float64{p[0], p[1]}
	}
	for k, t := range tris {
		cells[k] = []int{int(t[0]), int(t[1]), int(t[2])}
	}
	return New(ufc.Triangle, 2, verts, cells, nil)
}

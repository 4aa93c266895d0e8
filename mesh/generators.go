package mesh

import (
	"fmt"

	"github.com/molel-gt/ffcx/ufc"
	"github.com/molel-gt/ffcx/utils"
)

// Boundary tags set by the unit generators, one per side of the box.
const (
	TagLeft   = 1 // x = 0
	TagRight  = 2 // x = 1
	TagBottom = 3 // y = 0
	TagTop    = 4 // y = 1
	TagBack   = 5 // z = 0
	TagFront  = 6 // z = 1
)

func tagBox(m *Mesh) {
	for axis := 0; axis < m.GDim; axis++ {
		m.TagBoundary(TagLeft+2*axis, func(x []float64) bool { return utils.Near(x[axis], 0) })
		m.TagBoundary(TagRight+2*axis, func(x []float64) bool { return utils.Near(x[axis], 1) })
	}
}

// UnitInterval divides [0,1] into n cells.
func UnitInterval(n int) (m *Mesh, err error) {
	if n < 1 {
		return nil, fmt.Errorf("unit interval with %d cells", n)
	}
	var (
		verts = make([][]float64, n+1)
		cells = make([][]int, n)
	)
	for i := range verts {
		verts[i] = []float64{float64(i) / float64(n)}
	}
	for i := range cells {
		cells[i] = []int{i, i + 1}
	}
	if m, err = New(ufc.Interval, 1, verts, cells, nil); err != nil {
		return
	}
	tagBox(m)
	return
}

// UnitSquare divides the unit square into nx by ny quadrilaterals, or two
// triangles per quadrilateral.
func UnitSquare(nx, ny int, shape ufc.Shape) (m *Mesh, err error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("unit square with %d x %d cells", nx, ny)
	}
	if shape != ufc.Triangle && shape != ufc.Quadrilateral {
		return nil, fmt.Errorf("unit square of %s cells: %w", shape, ufc.ErrUnsupported)
	}
	var (
		verts [][]float64
		cells [][]int
		vid   = func(i, j int) int { return j*(nx+1) + i }
	)
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			verts = append(verts, []float64{float64(i) / float64(nx), float64(j) / float64(ny)})
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v00, v10, v01, v11 := vid(i, j), vid(i+1, j), vid(i, j+1), vid(i+1, j+1)
			if shape == ufc.Quadrilateral {
				cells = append(cells, []int{v00, v10, v01, v11})
			} else {
				cells = append(cells, []int{v00, v10, v11}, []int{v00, v01, v11})
			}
		}
	}
	if m, err = New(shape, 2, verts, cells, nil); err != nil {
		return
	}
	tagBox(m)
	return
}

// UnitCube divides the unit cube into n^3 hexahedra, or six tetrahedra per
// hexahedron along its main diagonal.
func UnitCube(n int, shape ufc.Shape) (m *Mesh, err error) {
	if n < 1 {
		return nil, fmt.Errorf("unit cube with %d cells per side", n)
	}
	if shape != ufc.Tetrahedron && shape != ufc.Hexahedron {
		return nil, fmt.Errorf("unit cube of %s cells: %w", shape, ufc.ErrUnsupported)
	}
	var (
		verts [][]float64
		cells [][]int
		vid   = func(i, j, k int) int { return (k*(n+1)+j)*(n+1) + i }
		h     = 1 / float64(n)
	)
	for k := 0; k <= n; k++ {
		for j := 0; j <= n; j++ {
			for i := 0; i <= n; i++ {
				verts = append(verts, []float64{float64(i) * h, float64(j) * h, float64(k) * h})
			}
		}
	}
	// paths from corner 0 to corner 7 of the cube, one tetrahedron each
	paths := [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				corner := func(c int) int { return vid(i+c&1, j+c>>1&1, k+c>>2&1) }
				if shape == ufc.Hexahedron {
					hex := make([]int, 8)
					for c := range hex {
						hex[c] = corner(c)
					}
					cells = append(cells, hex)
					continue
				}
				for _, p := range paths {
					c := 0
					tet := []int{corner(c)}
					for _, axis := range p {
						c |= 1 << axis
						tet = append(tet, corner(c))
					}
					cells = append(cells, tet)
				}
			}
		}
	}
	if m, err = New(shape, 3, verts, cells, nil); err != nil {
		return
	}
	tagBox(m)
	return
}

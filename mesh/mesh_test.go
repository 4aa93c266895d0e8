package mesh

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/molel-gt/ffcx/elements"
	"github.com/molel-gt/ffcx/geometry"
	"github.com/molel-gt/ffcx/reference"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitSquareTopology(t *testing.T) {
	{ // triangles
		m, err := UnitSquare(2, 2, ufc.Triangle)
		require.NoError(t, err)
		assert.Equal(t, []int{9, 16, 8}, m.NumGlobalEntities())
		assert.Len(t, m.ExteriorFacets(), 8)
		assert.Len(t, m.InteriorFacets(), 8)
		for _, c := range m.Cells {
			assert.True(t, c[0] < c[1] && c[1] < c[2])
		}
		var left int
		for _, tag := range m.FacetTags {
			if tag == TagLeft {
				left++
			}
		}
		assert.Equal(t, 2, left)
		assert.Len(t, m.FacetTags, 8)
	}
	{ // quadrilaterals
		m, err := UnitSquare(2, 2, ufc.Quadrilateral)
		require.NoError(t, err)
		assert.Equal(t, []int{9, 12, 4}, m.NumGlobalEntities())
		var area float64
		for k := range m.Cells {
			cd := m.CoordinateDofs(k, nil)
			area += geometry.CellVolume(m.Shape, m.GDim, cd)
			jac := geometry.Evaluate(m.Shape, m.GDim, cd, []float64{0.5, 0.5})
			assert.InDelta(t, 0.25, jac.DetJ, 1.e-14)
		}
		assert.InDelta(t, 1., area, 1.e-14)
	}
	_, err := UnitSquare(2, 2, ufc.Tetrahedron)
	assert.True(t, errors.Is(err, ufc.ErrUnsupported))
}

func TestUnitCube(t *testing.T) {
	for _, shape := range []ufc.Shape{ufc.Tetrahedron, ufc.Hexahedron} {
		m, err := UnitCube(2, shape)
		require.NoError(t, err)
		assert.Equal(t, 27, m.NumVertices())
		var vol float64
		for k := range m.Cells {
			vol += geometry.CellVolume(m.Shape, m.GDim, m.CoordinateDofs(k, nil))
		}
		assert.InDelta(t, 1., vol, 1.e-13, shape.String())
		// 4 boundary facets of the hexahedra per side, 8 for tetrahedra
		perSide := 4
		if shape == ufc.Tetrahedron {
			perSide = 8
		}
		assert.Len(t, m.ExteriorFacets(), 6*perSide)
		assert.Len(t, m.FacetTags, 6*perSide)
	}
	m, err := UnitCube(1, ufc.Hexahedron)
	require.NoError(t, err)
	assert.Equal(t, []int{8, 12, 6, 1}, m.NumGlobalEntities())
	m, err = UnitCube(1, ufc.Tetrahedron)
	require.NoError(t, err)
	assert.Equal(t, 6, m.NumCells())
	// 12 cube edges, 6 face diagonals, 1 main diagonal
	assert.Equal(t, 19, m.NumEntities(1))
}

func TestCellDescription(t *testing.T) {
	m, err := UnitSquare(1, 1, ufc.Triangle)
	require.NoError(t, err)
	c := m.Cell(1)
	require.NoError(t, c.Validate())
	assert.Equal(t, 1, c.Index)
	assert.Equal(t, -1, c.LocalFacet)
	assert.Equal(t, m.Cells[1], c.EntityIndices[0])
	assert.Equal(t, []int{1}, c.EntityIndices[2])
	c.EntityIndices[0][0] = 99
	assert.NotEqual(t, 99, m.Cells[1][0])

	fc := m.FacetCell(0, 2)
	assert.Equal(t, 2, fc.LocalFacet)
	assert.Panics(t, func() { m.FacetCell(0, 3) })

	buf := make([]float64, 0, 6)
	cd := m.CoordinateDofs(0, buf)
	assert.Len(t, cd, 6)
	for i, v := range m.Cells[0] {
		assert.Equal(t, m.Vertices[v], cd[2*i:2*i+2])
	}

	diag, ok := m.FindEntity(1, []int{3, 0})
	require.True(t, ok)
	assert.Len(t, m.FacetCells(diag), 2)
	_, ok = m.FindEntity(1, []int{1, 2})
	assert.False(t, ok)
	k, ok := m.FindEntity(2, m.Cells[1])
	assert.True(t, ok)
	assert.Equal(t, 1, k)
}

// normal components of RT basis functions agree across interior facets and
// tangential components of Nedelec functions across interior edges
func TestOrientationConformity(t *testing.T) {
	pts := [][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0.4, 0.6}, {0.7, 0.2}, {0.2, 0.3}}
	m, err := Delaunay(pts)
	require.NoError(t, err)
	var (
		rt  = elements.MustNew("RT", ufc.Triangle, 1)
		ned = elements.MustNew("N1curl", ufc.Triangle, 1)
	)
	values := func(e ufc.FiniteElement, ce CellEntity, x []float64) []float64 {
		cd := m.CoordinateDofs(ce.Cell, nil)
		X, err := geometry.PullBack(m.Shape, m.GDim, cd, x)
		require.NoError(t, err)
		v := make([]float64, 2)
		e.EvaluateBasis(ce.Local, v, X, cd, m.Orientation(ce.Cell))
		return v
	}
	require.NotEmpty(t, m.InteriorFacets())
	for _, f := range m.InteriorFacets() {
		var (
			cells = m.FacetCells(f)
			verts = m.FacetVertices(f)
			a, b  = m.Vertices[verts[0]], m.Vertices[verts[1]]
			x     = []float64{0.5 * (a[0] + b[0]), 0.5 * (a[1] + b[1])}
			tan   = []float64{b[0] - a[0], b[1] - a[1]}
			n     = []float64{-tan[1], tan[0]}
		)
		v0, v1 := values(rt, cells[0], x), values(rt, cells[1], x)
		flux0, flux1 := v0[0]*n[0]+v0[1]*n[1], v1[0]*n[0]+v1[1]*n[1]
		assert.NotZero(t, flux0)
		assert.InDelta(t, flux0, flux1, 1.e-12)

		// facets are edges on triangles, with the same local number
		w0, w1 := values(ned, cells[0], x), values(ned, cells[1], x)
		circ0, circ1 := w0[0]*tan[0]+w0[1]*tan[1], w1[0]*tan[0]+w1[1]*tan[1]
		assert.NotZero(t, circ0)
		assert.InDelta(t, circ0, circ1, 1.e-12)
	}
	nf := reference.NumFacets(ufc.Triangle)
	for k := range m.Cells {
		assert.Zero(t, m.Orientation(k)>>nf, "sorted cells carry no edge flips")
	}
}

func TestUnitInterval(t *testing.T) {
	m, err := UnitInterval(4)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 4}, m.NumGlobalEntities())
	assert.Equal(t, []int{0, 4}, m.ExteriorFacets())
	assert.Len(t, m.InteriorFacets(), 3)
	tag, ok := m.FacetTag(4)
	assert.True(t, ok)
	assert.Equal(t, TagRight, tag)
	_, ok = m.FacetTag(2)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Orientation(2))
	assert.Len(t, m.VertexCells(2), 2)
	assert.Len(t, m.VertexCells(0), 1)
}

func TestNewErrors(t *testing.T) {
	_, err := New(ufc.Triangle, 2, [][]float64{{0, 0}, {1, 0}, {0, 1}}, [][]int{{0, 1}}, nil)
	assert.Error(t, err)
	_, err = New(ufc.Triangle, 2, [][]float64{{0, 0}, {1, 0}, {0, 1}}, [][]int{{0, 1, 3}}, nil)
	assert.Error(t, err)
	_, err = New(ufc.Triangle, 1, [][]float64{{0}, {1}, {2}}, [][]int{{0, 1, 2}}, nil)
	assert.Error(t, err)
	_, err = New(ufc.Interval, 1, [][]float64{{0}, {1}, {2}}, [][]int{{0, 1}, {1, 2}}, []int{1})
	assert.Error(t, err)
	// three triangles on one edge
	_, err = New(ufc.Triangle, 2, [][]float64{{0, 0}, {1, 0}, {0, 1}, {0, -1}, {1, 1}},
		[][]int{{0, 1, 2}, {0, 1, 3}, {0, 1, 4}}, nil)
	assert.Error(t, err)
}

const squareGmsh = `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
2
1 7 "wall"
2 9 "fluid"
$EndPhysicalNames
$Nodes
5
1 0 0 0
2 1 0 0
3 1 1 0
4 0 1 0
10 5 5 0
$EndNodes
$Elements
5
1 15 2 0 1 10
2 1 2 7 1 1 2
3 1 2 7 1 4 1
4 2 2 9 1 1 2 3
5 2 2 9 1 1 3 4
$EndElements
`

func TestReadGmsh22(t *testing.T) {
	m, err := ReadGmsh22(strings.NewReader(squareGmsh))
	require.NoError(t, err)
	assert.Equal(t, ufc.Triangle, m.Shape)
	assert.Equal(t, 2, m.GDim)
	assert.Equal(t, 4, m.NumVertices(), "the stray point node is dropped")
	assert.Equal(t, 2, m.NumCells())
	assert.Equal(t, []int{9, 9}, m.CellTags)
	assert.Equal(t, "wall", m.TagNames[7])
	assert.Len(t, m.FacetTags, 2)
	for f, tag := range m.FacetTags {
		assert.Equal(t, 7, tag)
		assert.Len(t, m.FacetCells(f), 1)
	}
	var area float64
	for k := range m.Cells {
		area += geometry.CellVolume(m.Shape, m.GDim, m.CoordinateDofs(k, nil))
	}
	assert.InDelta(t, 1., area, 1.e-14)
}

func TestReadGmsh22Quad(t *testing.T) {
	const quad = `$MeshFormat
2.2 0 8
$EndMeshFormat
$Nodes
4
1 0 0 0
2 2 0 0
3 2 1 0
4 0 1 0
$EndNodes
$Elements
1
1 3 0 1 2 3 4
$EndElements
`
	m, err := ReadGmsh22(strings.NewReader(quad))
	require.NoError(t, err)
	assert.Equal(t, ufc.Quadrilateral, m.Shape)
	assert.Equal(t, [][]int{{0, 1, 3, 2}}, m.Cells)
	jac := geometry.Evaluate(m.Shape, m.GDim, m.CoordinateDofs(0, nil), []float64{0.5, 0.5})
	assert.InDelta(t, 2., jac.DetJ, 1.e-14)
}

func TestReadGmsh22Errors(t *testing.T) {
	_, err := ReadGmsh22(strings.NewReader("$MeshFormat\n4.1 0 8\n$EndMeshFormat\n"))
	assert.True(t, errors.Is(err, ufc.ErrUnsupported))
	_, err = ReadGmsh22(strings.NewReader("$MeshFormat\n2.2 1 8\n$EndMeshFormat\n"))
	assert.True(t, errors.Is(err, ufc.ErrUnsupported))
	_, err = ReadGmsh22(strings.NewReader("$Nodes\n1\n1 0 0 0\n$EndNodes\n$Elements\n1\n1 2 0 1 2 3\n$EndElements\n"))
	assert.Error(t, err)
	_, err = ReadGmsh22(strings.NewReader("$Nodes\n1\n1 0 0 0\n$EndNodes\n"))
	assert.Error(t, err)
	_, err = ReadGmsh22File("does-not-exist.msh")
	assert.Error(t, err)
}

func TestDelaunay(t *testing.T) {
	m, err := Delaunay([][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 0.5}})
	require.NoError(t, err)
	assert.Equal(t, 4, m.NumCells())
	var area float64
	for k := range m.Cells {
		area += geometry.CellVolume(m.Shape, m.GDim, m.CoordinateDofs(k, nil))
	}
	assert.InDelta(t, 1., area, 1.e-14)
	_, err = Delaunay([][2]float64{{0, 0}, {1, 0}})
	assert.Error(t, err)
}

func TestPartition(t *testing.T) {
	m, err := UnitSquare(2, 2, ufc.Triangle)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2, 3, 4, 5, 6, 7}}, m.PartitionCells())
	require.NoError(t, m.Partition(DefaultPartitionConfig(3)))
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1, 2, 2}, m.EToP)
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7}}, m.PartitionCells())

	xadj, adjncy, adjwgt := m.DualGraph()
	assert.Len(t, xadj, 9)
	assert.Equal(t, int32(2*len(m.InteriorFacets())), xadj[8])
	assert.Len(t, adjwgt, len(adjncy))
	for k := 0; k < 8; k++ {
		for _, nb := range adjncy[xadj[k]:xadj[k+1]] {
			found := false
			for _, back := range adjncy[xadj[nb]:xadj[nb+1]] {
				found = found || int(back) == k
			}
			assert.True(t, found)
		}
	}
	assert.Error(t, m.Partition(&PartitionConfig{NumPartitions: 2, Method: "spectral"}))
	assert.Error(t, m.Partition(&PartitionConfig{NumPartitions: 0}))

	{ // more partitions than cells leaves the last ones empty
		assert.Equal(t, []int{0, 1}, blockPartition(2, 4))
		assert.Equal(t, []int{0, 0, 0, 0, 1, 1, 1, 2, 2, 2}, blockPartition(10, 3))
	}
}

func TestMetisPartition(t *testing.T) {
	m, err := UnitSquare(8, 8, ufc.Triangle)
	require.NoError(t, err)
	config := DefaultPartitionConfig(4)
	config.Method = "metis"
	require.NoError(t, m.Partition(config))
	var counts [4]int
	for _, p := range m.EToP {
		require.True(t, p >= 0 && p < 4)
		counts[p]++
	}
	for _, c := range counts {
		assert.InDelta(t, 32, c, math.Ceil(32*0.1))
	}
}

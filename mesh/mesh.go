// Package mesh holds unstructured meshes of a single cell shape with the
// entity numbering, cell descriptions and orientations needed to drive
// element tensor assembly.
package mesh

import (
	"fmt"
	"sort"

	"github.com/molel-gt/ffcx/reference"
	"github.com/molel-gt/ffcx/types"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("ffcx.mesh")
}

// CellEntity locates a local entity of a cell, a facet or a vertex.
type CellEntity struct {
	Cell, Local int
}

// Mesh is a conforming mesh. Cells list global vertices in the local order
// of the reference cell; simplex cells are stored with ascending vertices.
type Mesh struct {
	Shape     ufc.Shape
	GDim      int
	Vertices  [][]float64 // [nvertices][gdim]
	Cells     [][]int     // [ncells][nverts per cell]
	CellTags  []int
	FacetTags map[int]int    // global facet index -> tag
	TagNames  map[int]string // physical names of tags, from mesh files
	EToP      []int          // cell -> partition, set by a partitioner

	numEntities  []int
	entityKeys   []map[types.EntityKey]int
	cellEntities [][][]int // [cell][d][local entity]
	facetCells   [][]CellEntity
	vertexCells  [][]CellEntity
}

// New builds the topology of a mesh. cellTags may be nil.
func New(shape ufc.Shape, gdim int, vertices [][]float64, cells [][]int, cellTags []int) (m *Mesh, err error) {
	var (
		tdim = shape.TopologicalDimension()
		nv   = reference.NumVertices(shape)
	)
	if gdim < tdim {
		err = fmt.Errorf("%s mesh in %d dimensions", shape, gdim)
		return
	}
	if cellTags == nil {
		cellTags = make([]int, len(cells))
	}
	if len(cellTags) != len(cells) {
		err = fmt.Errorf("%d cell tags for %d cells", len(cellTags), len(cells))
		return
	}
	m = &Mesh{
		Shape:     shape,
		GDim:      gdim,
		Vertices:  make([][]float64, len(vertices)),
		Cells:     make([][]int, len(cells)),
		CellTags:  append([]int(nil), cellTags...),
		FacetTags: make(map[int]int),
		TagNames:  make(map[int]string),
	}
	for v, x := range vertices {
		if len(x) < gdim {
			return nil, fmt.Errorf("vertex %d has %d coordinates, need %d", v, len(x), gdim)
		}
		m.Vertices[v] = append([]float64(nil), x[:gdim]...)
	}
	for k, c := range cells {
		if len(c) != nv {
			return nil, fmt.Errorf("cell %d has %d vertices, a %s has %d", k, len(c), shape, nv)
		}
		for _, v := range c {
			if v < 0 || v >= len(vertices) {
				return nil, fmt.Errorf("cell %d references vertex %d of %d", k, v, len(vertices))
			}
		}
		m.Cells[k] = append([]int(nil), c...)
		if shape.IsSimplex() {
			sort.Ints(m.Cells[k])
		}
	}
	if err = m.buildTopology(); err != nil {
		return nil, err
	}
	tracer().Debugf("%s mesh: %d vertices, %d cells, %d facets", shape, len(vertices), len(cells), m.NumEntities(tdim-1))
	return
}

func (m *Mesh) buildTopology() (err error) {
	var (
		tdim = m.Shape.TopologicalDimension()
		nc   = len(m.Cells)
	)
	m.numEntities = make([]int, tdim+1)
	m.numEntities[0] = len(m.Vertices)
	m.numEntities[tdim] = nc
	m.entityKeys = make([]map[types.EntityKey]int, tdim+1)
	m.cellEntities = make([][][]int, nc)
	for d := 1; d < tdim; d++ {
		m.entityKeys[d] = make(map[types.EntityKey]int)
	}
	m.vertexCells = make([][]CellEntity, len(m.Vertices))
	for k, verts := range m.Cells {
		ce := make([][]int, tdim+1)
		ce[0] = append([]int(nil), verts...)
		ce[tdim] = []int{k}
		for d := 1; d < tdim; d++ {
			ne := reference.NumEntities(m.Shape, d)
			ce[d] = make([]int, ne)
			for e := 0; e < ne; e++ {
				key := m.entityKey(verts, d, e)
				idx, ok := m.entityKeys[d][key]
				if !ok {
					idx = m.numEntities[d]
					m.entityKeys[d][key] = idx
					m.numEntities[d]++
				}
				ce[d][e] = idx
			}
		}
		m.cellEntities[k] = ce
		for lv, v := range verts {
			m.vertexCells[v] = append(m.vertexCells[v], CellEntity{Cell: k, Local: lv})
		}
	}
	m.facetCells = make([][]CellEntity, m.numEntities[tdim-1])
	for k := range m.Cells {
		for lf, f := range m.cellEntities[k][tdim-1] {
			m.facetCells[f] = append(m.facetCells[f], CellEntity{Cell: k, Local: lf})
			if len(m.facetCells[f]) > 2 {
				return fmt.Errorf("facet %d shared by more than two cells, mesh is not conforming", f)
			}
		}
	}
	return
}

func (m *Mesh) entityKey(verts []int, d, e int) types.EntityKey {
	local := reference.EntityVertices(m.Shape, d, e)
	global := make([]int, len(local))
	for i, lv := range local {
		global[i] = verts[lv]
	}
	return types.NewEntityKey(global)
}

func (m *Mesh) TopologicalDimension() int { return m.Shape.TopologicalDimension() }
func (m *Mesh) NumCells() int             { return len(m.Cells) }
func (m *Mesh) NumVertices() int          { return len(m.Vertices) }

// NumEntities is the number of global entities of dimension d.
func (m *Mesh) NumEntities(d int) int {
	return m.numEntities[ufc.CheckIndex("dimension", d, len(m.numEntities))]
}

// NumGlobalEntities lists the entity counts of every dimension, the input
// of ufc.Dofmap GlobalDimension and TabulateDofs.
func (m *Mesh) NumGlobalEntities() []int { return append([]int(nil), m.numEntities...) }

// EntityIndices returns the global entity indices of cell k per dimension.
// The result is shared and must not be modified.
func (m *Mesh) EntityIndices(k int) [][]int {
	return m.cellEntities[ufc.CheckIndex("cell", k, len(m.Cells))]
}

// FindEntity returns the index of the entity of dimension d spanned by the
// given global vertices.
func (m *Mesh) FindEntity(d int, verts []int) (idx int, ok bool) {
	tdim := m.TopologicalDimension()
	switch {
	case d == 0 && len(verts) == 1:
		return verts[0], verts[0] >= 0 && verts[0] < len(m.Vertices)
	case d == tdim:
		want := sorted(verts)
		for k, c := range m.Cells {
			if equal(sorted(c), want) {
				return k, true
			}
		}
		return
	case d > 0 && d < tdim:
		idx, ok = m.entityKeys[d][types.NewEntityKey(verts)]
	}
	return
}

// FacetCells returns the one or two cells sharing facet f, lowest cell
// first.
func (m *Mesh) FacetCells(f int) []CellEntity {
	return m.facetCells[ufc.CheckIndex("facet", f, len(m.facetCells))]
}

// VertexCells returns the cells containing vertex v with its local index.
func (m *Mesh) VertexCells(v int) []CellEntity {
	return m.vertexCells[ufc.CheckIndex("vertex", v, len(m.vertexCells))]
}

// ExteriorFacets lists the facets with a single cell, in facet order.
func (m *Mesh) ExteriorFacets() (facets []int) {
	for f, cells := range m.facetCells {
		if len(cells) == 1 {
			facets = append(facets, f)
		}
	}
	return
}

// InteriorFacets lists the facets shared by two cells, in facet order.
func (m *Mesh) InteriorFacets() (facets []int) {
	for f, cells := range m.facetCells {
		if len(cells) == 2 {
			facets = append(facets, f)
		}
	}
	return
}

// FacetVertices returns the global vertices of facet f.
func (m *Mesh) FacetVertices(f int) []int {
	var (
		ce    = m.FacetCells(f)[0]
		tdim  = m.TopologicalDimension()
		local = reference.EntityVertices(m.Shape, tdim-1, ce.Local)
		verts = make([]int, len(local))
	)
	for i, lv := range local {
		verts[i] = m.Cells[ce.Cell][lv]
	}
	return verts
}

// TagBoundary tags every exterior facet whose vertices all satisfy inside.
// It returns the number of facets tagged.
func (m *Mesh) TagBoundary(tag int, inside func(x []float64) bool) (n int) {
	for _, f := range m.ExteriorFacets() {
		all := true
		for _, v := range m.FacetVertices(f) {
			if !inside(m.Vertices[v]) {
				all = false
				break
			}
		}
		if all {
			m.FacetTags[f] = tag
			n++
		}
	}
	return
}

// FacetTag returns the tag of facet f, ok false when it is untagged.
func (m *Mesh) FacetTag(f int) (tag int, ok bool) {
	tag, ok = m.FacetTags[f]
	return
}

func sorted(a []int) []int {
	s := append([]int(nil), a...)
	sort.Ints(s)
	return s
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

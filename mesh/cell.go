package mesh

import (
	"github.com/molel-gt/ffcx/geometry"
	"github.com/molel-gt/ffcx/reference"
	"github.com/molel-gt/ffcx/ufc"
)

// Cell builds the description of cell k for a tabulation call.
func (m *Mesh) Cell(k int) (c *ufc.Cell) {
	var (
		tdim = m.TopologicalDimension()
		ce   = m.EntityIndices(k)
	)
	c = ufc.NewCell(m.Shape, m.GDim)
	for d := 0; d <= tdim; d++ {
		c.EntityIndices[d] = append([]int(nil), ce[d]...)
	}
	c.Index = k
	c.Orientation = m.Orientation(k)
	return
}

// FacetCell is Cell with the local facet through which cell k is visited.
func (m *Mesh) FacetCell(k, localFacet int) (c *ufc.Cell) {
	c = m.Cell(k)
	c.LocalFacet = ufc.CheckIndex("local facet", localFacet, reference.NumFacets(m.Shape))
	return
}

// CoordinateDofs fills buf, grown as needed, with the vertex coordinates of
// cell k, vertex major.
func (m *Mesh) CoordinateDofs(k int, buf []float64) []float64 {
	var (
		verts = m.Cells[ufc.CheckIndex("cell", k, len(m.Cells))]
		n     = len(verts) * m.GDim
	)
	if cap(buf) < n {
		buf = make([]float64, n)
	}
	buf = buf[:n]
	for i, v := range verts {
		copy(buf[i*m.GDim:(i+1)*m.GDim], m.Vertices[v])
	}
	return buf
}

// Orientation returns the reflection bitmask of cell k. Bit f flips facet f
// unless the cell is the lowest indexed cell of the facet and has a
// positive Jacobian determinant, so neighbours agree on the direction of
// facet normal dofs. Bit nfacets+e flips edge e when its first local vertex
// has the larger global index.
func (m *Mesh) Orientation(k int) (o int) {
	var (
		tdim = m.TopologicalDimension()
		nf   = reference.NumFacets(m.Shape)
		cd   = m.CoordinateDofs(k, nil)
	)
	if tdim < 2 {
		return
	}
	jac := geometry.Evaluate(m.Shape, m.GDim, cd, reference.Midpoint(m.Shape, tdim, 0))
	positive := jac.DetJ > 0
	for lf, f := range m.cellEntities[k][tdim-1] {
		owner := m.facetCells[f][0].Cell == k
		if owner != positive {
			o |= 1 << lf
		}
	}
	verts := m.Cells[k]
	for e := 0; e < reference.NumEntities(m.Shape, 1); e++ {
		lv := reference.EntityVertices(m.Shape, 1, e)
		if verts[lv[0]] > verts[lv[1]] {
			o |= 1 << (nf + e)
		}
	}
	return
}

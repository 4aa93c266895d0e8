package ufc

import "fmt"

// Cell describes one mesh cell for the duration of a single tabulation call.
type Cell struct {
	CellShape            Shape
	TopologicalDimension int
	GeometricDimension   int
	// EntityIndices[d][i] is the global index of local entity i of dimension d
	EntityIndices  [][]int
	Index          int
	LocalFacet     int // -1 when the cell is not visited through a facet
	Orientation    int
	MeshIdentifier int
}

// NewCell returns a cell with room for the entity indices of every dimension
// and no local facet.
func NewCell(shape Shape, gdim int) (c *Cell) {
	tdim := shape.TopologicalDimension()
	c = &Cell{
		CellShape:            shape,
		TopologicalDimension: tdim,
		GeometricDimension:   gdim,
		EntityIndices:        make([][]int, tdim+1),
		LocalFacet:           -1,
	}
	return
}

// Validate checks the structural invariants of the cell.
func (c *Cell) Validate() (err error) {
	if c.TopologicalDimension != c.CellShape.TopologicalDimension() {
		return fmt.Errorf("cell %d: topological dimension %d does not match %s",
			c.Index, c.TopologicalDimension, c.CellShape)
	}
	if len(c.EntityIndices) != c.TopologicalDimension+1 {
		return fmt.Errorf("cell %d: entity indices for %d dimensions, need %d",
			c.Index, len(c.EntityIndices), c.TopologicalDimension+1)
	}
	top := c.EntityIndices[c.TopologicalDimension]
	if len(top) != 1 || top[0] != c.Index {
		return fmt.Errorf("cell %d: entity indices of dimension %d are %v",
			c.Index, c.TopologicalDimension, top)
	}
	if c.LocalFacet < -1 {
		return fmt.Errorf("cell %d: invalid local facet %d", c.Index, c.LocalFacet)
	}
	return
}

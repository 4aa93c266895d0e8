package ufc

// Dofmap maps the local dofs of a cell to global dof numbers.
//
// Global numbers are grouped by entity dimension, then by the global index of
// the entity, then by the local offset within the entity. The order of
// TabulateDofs matches the basis order of the paired FiniteElement.
type Dofmap interface {
	Signature() string
	NeedsMeshEntities(d int) bool
	TopologicalDimension() int
	GeometricDimension() int

	// GlobalDimension takes the number of global mesh entities of every
	// dimension 0..tdim.
	GlobalDimension(numGlobalEntities []int) int
	NumElementDofs() int
	NumFacetDofs() int
	NumEntityDofs(d int) int

	TabulateDofs(dofs []int, numGlobalEntities []int, entityIndices [][]int)
	TabulateFacetDofs(dofs []int, facet int)
	TabulateEntityDofs(dofs []int, d, i int)
	// TabulateCoordinates fills dofCoordinates[i*gdim+j]. It returns an error
	// wrapping ErrUnsupported for dofs without an associated point.
	TabulateCoordinates(dofCoordinates, coordinateDofs []float64) error

	NumSubDofmaps() int
	CreateSubDofmap(i int) Dofmap
	Create() Dofmap
}

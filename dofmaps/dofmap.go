// Package dofmaps numbers the dofs of an element layout over a mesh.
package dofmaps

import (
	"fmt"

	"github.com/molel-gt/ffcx/elements"
	"github.com/molel-gt/ffcx/geometry"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/molel-gt/ffcx/utils"
)

// New returns the dofmap paired with an element, mirroring its sub element
// tree.
func New(e ufc.FiniteElement) (dm ufc.Dofmap, err error) {
	if lp, ok := e.(elements.LayoutProvider); ok {
		var edm *EntityDofmap
		if edm, err = NewEntityDofmap(e.Signature(), lp.Layout(), e.GeometricDimension()); err != nil {
			return nil, err
		}
		return edm, nil
	}
	if e.NumSubElements() == 0 {
		err = fmt.Errorf("%s has no dof layout", e.Signature())
		return
	}
	subs := make([]ufc.Dofmap, e.NumSubElements())
	for i := range subs {
		if subs[i], err = New(e.CreateSubElement(i)); err != nil {
			return nil, err
		}
	}
	var mdm *Mixed
	if mdm, err = NewMixed(e.Signature(), subs...); err != nil {
		return nil, err
	}
	return mdm, nil
}

// MustNew is New for statically known elements.
func MustNew(e ufc.FiniteElement) ufc.Dofmap {
	dm, err := New(e)
	if err != nil {
		panic(err)
	}
	return dm
}

// EntityDofmap numbers dofs attached to mesh entities: global numbers are
// grouped by entity dimension, then by global entity index, then by the
// local offset on the entity. Dofs attached to no entity come last.
type EntityDofmap struct {
	signature     string
	layout        elements.Layout
	gdim          int
	numEntityDofs utils.Index
	facetDofs     [][]int
}

func NewEntityDofmap(elementSignature string, layout elements.Layout, gdim int) (dm *EntityDofmap, err error) {
	var (
		tdim = layout.Shape.TopologicalDimension()
	)
	dm = &EntityDofmap{
		signature:     "FFC dofmap for " + elementSignature,
		layout:        layout,
		gdim:          gdim,
		numEntityDofs: make(utils.Index, tdim+1),
	}
	for d := 0; d <= tdim; d++ {
		n := layout.NumEntityDofs(d)
		for e, dofs := range layout.EntityDofs[d] {
			if len(dofs) != n {
				err = fmt.Errorf("%s: %d dofs on entity (%d, %d), %d on entity (%d, 0)",
					elementSignature, len(dofs), d, e, n, d)
				return nil, err
			}
		}
		dm.numEntityDofs[d] = n
	}
	nfacets := len(layout.EntityDofs[tdim-1])
	dm.facetDofs = make([][]int, nfacets)
	for f := 0; f < nfacets; f++ {
		dm.facetDofs[f] = layout.ClosureDofs(tdim-1, f)
	}
	return
}

func (dm *EntityDofmap) Signature() string         { return dm.signature }
func (dm *EntityDofmap) TopologicalDimension() int { return len(dm.numEntityDofs) - 1 }
func (dm *EntityDofmap) GeometricDimension() int   { return dm.gdim }
func (dm *EntityDofmap) NumElementDofs() int       { return dm.layout.NumDofs() }
func (dm *EntityDofmap) NumFacetDofs() int         { return len(dm.facetDofs[0]) }
func (dm *EntityDofmap) NumSubDofmaps() int        { return 0 }

func (dm *EntityDofmap) NeedsMeshEntities(d int) bool {
	return dm.NumEntityDofs(d) > 0
}

func (dm *EntityDofmap) NumEntityDofs(d int) int {
	ufc.CheckIndex("entity dimension", d, len(dm.numEntityDofs))
	return dm.numEntityDofs[d]
}

func (dm *EntityDofmap) GlobalDimension(numGlobalEntities []int) (dim int) {
	if len(numGlobalEntities) < len(dm.numEntityDofs) {
		panic(fmt.Errorf("entity counts for %d dimensions, need %d", len(numGlobalEntities), len(dm.numEntityDofs)))
	}
	for d, n := range dm.numEntityDofs {
		dim += numGlobalEntities[d] * n
	}
	return dim + len(dm.layout.GlobalDofs)
}

func (dm *EntityDofmap) TabulateDofs(dofs []int, numGlobalEntities []int, entityIndices [][]int) {
	var (
		offset int
	)
	for d, n := range dm.numEntityDofs {
		if n == 0 {
			continue
		}
		for e, local := range dm.layout.EntityDofs[d] {
			base := offset + entityIndices[d][e]*n
			for k, i := range local {
				dofs[i] = base + k
			}
		}
		offset += numGlobalEntities[d] * n
	}
	for k, i := range dm.layout.GlobalDofs {
		dofs[i] = offset + k
	}
}

func (dm *EntityDofmap) TabulateFacetDofs(dofs []int, facet int) {
	ufc.CheckIndex("facet", facet, len(dm.facetDofs))
	copy(dofs, dm.facetDofs[facet])
}

func (dm *EntityDofmap) TabulateEntityDofs(dofs []int, d, i int) {
	ufc.CheckIndex("entity dimension", d, len(dm.numEntityDofs))
	ufc.CheckIndex("entity", i, len(dm.layout.EntityDofs[d]))
	copy(dofs, dm.layout.EntityDofs[d][i])
}

func (dm *EntityDofmap) TabulateCoordinates(dofCoordinates, coordinateDofs []float64) error {
	if dm.layout.Points == nil {
		return fmt.Errorf("%s: dof coordinates: %w", dm.signature, ufc.ErrUnsupported)
	}
	for i, X := range dm.layout.Points {
		x := geometry.Push(dm.layout.Shape, dm.gdim, coordinateDofs, X)
		copy(dofCoordinates[i*dm.gdim:(i+1)*dm.gdim], x)
	}
	return nil
}

func (dm *EntityDofmap) CreateSubDofmap(i int) ufc.Dofmap {
	panic(fmt.Errorf("%s has no sub dofmaps, index %d", dm.signature, i))
}

func (dm *EntityDofmap) Create() ufc.Dofmap {
	cp := *dm
	cp.numEntityDofs = dm.numEntityDofs.Copy()
	cp.facetDofs = make([][]int, len(dm.facetDofs))
	for f, dofs := range dm.facetDofs {
		cp.facetDofs[f] = append([]int(nil), dofs...)
	}
	cp.layout = dm.layout.Clone()
	return &cp
}

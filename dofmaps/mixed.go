package dofmaps

import (
	"fmt"

	"github.com/molel-gt/ffcx/ufc"
	"github.com/molel-gt/ffcx/utils"
)

// Mixed concatenates sub dofmaps. Local dofs follow the sub element order;
// global dofs of sub dofmap k are offset by the global dimensions of the
// sub dofmaps before it.
type Mixed struct {
	signature    string
	subs         []ufc.Dofmap
	localOffsets utils.Index
}

func NewMixed(elementSignature string, subs ...ufc.Dofmap) (dm *Mixed, err error) {
	if len(subs) == 0 {
		err = fmt.Errorf("mixed dofmap needs at least one sub dofmap")
		return
	}
	sizes := make(utils.Index, len(subs))
	for k, s := range subs {
		if s.TopologicalDimension() != subs[0].TopologicalDimension() {
			err = fmt.Errorf("mixed dofmap over cells of dimension %d and %d",
				subs[0].TopologicalDimension(), s.TopologicalDimension())
			return
		}
		sizes[k] = s.NumElementDofs()
	}
	dm = &Mixed{
		signature:    "FFC dofmap for " + elementSignature,
		subs:         subs,
		localOffsets: sizes.PrefixSums(),
	}
	return
}

func (dm *Mixed) Signature() string         { return dm.signature }
func (dm *Mixed) TopologicalDimension() int { return dm.subs[0].TopologicalDimension() }
func (dm *Mixed) GeometricDimension() int   { return dm.subs[0].GeometricDimension() }
func (dm *Mixed) NumElementDofs() int       { return dm.localOffsets[len(dm.subs)] }
func (dm *Mixed) NumSubDofmaps() int        { return len(dm.subs) }

func (dm *Mixed) NeedsMeshEntities(d int) bool {
	for _, s := range dm.subs {
		if s.NeedsMeshEntities(d) {
			return true
		}
	}
	return false
}

func (dm *Mixed) NumEntityDofs(d int) (n int) {
	for _, s := range dm.subs {
		n += s.NumEntityDofs(d)
	}
	return
}

func (dm *Mixed) NumFacetDofs() (n int) {
	for _, s := range dm.subs {
		n += s.NumFacetDofs()
	}
	return
}

func (dm *Mixed) GlobalDimension(numGlobalEntities []int) (dim int) {
	for _, s := range dm.subs {
		dim += s.GlobalDimension(numGlobalEntities)
	}
	return
}

// SubGlobalOffset returns the first global dof of sub dofmap k.
func (dm *Mixed) SubGlobalOffset(k int, numGlobalEntities []int) (offset int) {
	ufc.CheckIndex("sub dofmap", k, len(dm.subs))
	for _, s := range dm.subs[:k] {
		offset += s.GlobalDimension(numGlobalEntities)
	}
	return
}

func (dm *Mixed) TabulateDofs(dofs []int, numGlobalEntities []int, entityIndices [][]int) {
	var (
		offset int
	)
	for k, s := range dm.subs {
		block := dofs[dm.localOffsets[k]:dm.localOffsets[k+1]]
		s.TabulateDofs(block, numGlobalEntities, entityIndices)
		for i := range block {
			block[i] += offset
		}
		offset += s.GlobalDimension(numGlobalEntities)
	}
}

func (dm *Mixed) TabulateFacetDofs(dofs []int, facet int) {
	var (
		n int
	)
	for k, s := range dm.subs {
		block := dofs[n : n+s.NumFacetDofs()]
		s.TabulateFacetDofs(block, facet)
		for i := range block {
			block[i] += dm.localOffsets[k]
		}
		n += len(block)
	}
}

func (dm *Mixed) TabulateEntityDofs(dofs []int, d, i int) {
	var (
		n int
	)
	for k, s := range dm.subs {
		block := dofs[n : n+s.NumEntityDofs(d)]
		s.TabulateEntityDofs(block, d, i)
		for j := range block {
			block[j] += dm.localOffsets[k]
		}
		n += len(block)
	}
}

func (dm *Mixed) TabulateCoordinates(dofCoordinates, coordinateDofs []float64) (err error) {
	var (
		gdim = dm.GeometricDimension()
	)
	for k, s := range dm.subs {
		block := dofCoordinates[dm.localOffsets[k]*gdim : dm.localOffsets[k+1]*gdim]
		if err = s.TabulateCoordinates(block, coordinateDofs); err != nil {
			return fmt.Errorf("sub dofmap %d: %w", k, err)
		}
	}
	return
}

func (dm *Mixed) CreateSubDofmap(i int) ufc.Dofmap {
	ufc.CheckIndex("sub dofmap", i, len(dm.subs))
	return dm.subs[i].Create()
}

func (dm *Mixed) Create() ufc.Dofmap {
	subs := make([]ufc.Dofmap, len(dm.subs))
	for k, s := range dm.subs {
		subs[k] = s.Create()
	}
	return &Mixed{
		signature:    dm.signature,
		subs:         subs,
		localOffsets: dm.localOffsets.Copy(),
	}
}

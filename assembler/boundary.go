package assembler

import (
	"fmt"
	"sort"

	"github.com/molel-gt/ffcx/mesh"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/molel-gt/ffcx/utils"
	"gonum.org/v1/gonum/mat"
)

// Interpolate returns the global dofs of f in the space of element e
// numbered by dm, evaluating the dof functionals cell by cell.
func Interpolate(m *mesh.Mesh, e ufc.FiniteElement, dm ufc.Dofmap, f ufc.Function) (u []float64) {
	var (
		numGlobal = m.NumGlobalEntities()
		n         = dm.NumElementDofs()
		dofs      = make([]int, n)
		vals      = make([]float64, n)
		cd        []float64
	)
	u = make([]float64, dm.GlobalDimension(numGlobal))
	for k := 0; k < m.NumCells(); k++ {
		cd = m.CoordinateDofs(k, cd)
		c := m.Cell(k)
		e.EvaluateDofs(vals, f, cd, c.Orientation, c)
		dm.TabulateDofs(dofs, numGlobal, c.EntityIndices)
		for i, dof := range dofs {
			u[dof] = vals[i]
		}
	}
	return
}

// DirichletDofs returns the sorted global dofs on the closure of the
// exterior facets carrying one of the tags, every exterior facet when no
// tag is given.
func DirichletDofs(m *mesh.Mesh, dm ufc.Dofmap, tags ...int) (dofs []int) {
	var (
		numGlobal = m.NumGlobalEntities()
		cellDofs  = make([]int, dm.NumElementDofs())
		local     = make([]int, dm.NumFacetDofs())
		seen      = make(map[int]bool)
		wanted    = make(map[int]bool, len(tags))
	)
	for _, tag := range tags {
		wanted[tag] = true
	}
	for _, f := range m.ExteriorFacets() {
		if len(tags) != 0 {
			if tag, ok := m.FacetTag(f); !ok || !wanted[tag] {
				continue
			}
		}
		ce := m.FacetCells(f)[0]
		dm.TabulateDofs(cellDofs, numGlobal, m.EntityIndices(ce.Cell))
		dm.TabulateFacetDofs(local, ce.Local)
		for _, i := range local {
			if dof := cellDofs[i]; !seen[dof] {
				seen[dof] = true
				dofs = append(dofs, dof)
			}
		}
	}
	sort.Ints(dofs)
	return
}

// ApplyDirichlet replaces the rows of the constrained dofs of a linear
// system by identity rows and sets the right hand side to the prescribed
// values, values[i] belonging to dofs[i].
func ApplyDirichlet(A, b *Tensor, dofs []int, values []float64) (err error) {
	if A.Rank != 2 || b.Rank != 1 {
		return fmt.Errorf("need a matrix and a vector, have ranks %d and %d", A.Rank, b.Rank)
	}
	if len(dofs) != len(values) {
		return fmt.Errorf("%d values for %d constrained dofs", len(values), len(dofs))
	}
	var (
		nr, nc = A.Matrix.Dims()
		fixed  = make(map[int]bool, len(dofs))
		dok    = utils.NewDOK(nr, nc)
	)
	if nr != nc || nr != len(b.Vector) {
		return fmt.Errorf("system of %d x %d with %d right hand side entries", nr, nc, len(b.Vector))
	}
	for i, dof := range dofs {
		if dof < 0 || dof >= nr {
			return fmt.Errorf("constrained dof %d outside [0, %d)", dof, nr)
		}
		fixed[dof] = true
		b.Vector[dof] = values[i]
	}
	A.Matrix.DoNonZero(func(i, j int, v float64) {
		if !fixed[i] {
			dok.Set(i, j, v)
		}
	})
	for dof := range fixed {
		dok.Set(dof, dof, 1)
	}
	A.Matrix = dok.ToCSR()
	return
}

// SolveDense solves a small assembled system with a dense LU factorization.
func SolveDense(A, b *Tensor) (x []float64, err error) {
	if A.Rank != 2 || b.Rank != 1 {
		return nil, fmt.Errorf("need a matrix and a vector, have ranks %d and %d", A.Rank, b.Rank)
	}
	var (
		Ad = A.Matrix.ToDense()
		bv = mat.NewVecDense(len(b.Vector), append([]float64(nil), b.Vector...))
		xv mat.VecDense
	)
	if err = xv.SolveVec(Ad.M, bv); err != nil {
		return nil, fmt.Errorf("dense solve: %w", err)
	}
	x = append([]float64(nil), xv.RawVector().Data...)
	return
}

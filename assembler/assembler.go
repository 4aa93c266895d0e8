// Package assembler drives the integrals of a form over a mesh and
// accumulates the element tensors into global scalars, vectors or sparse
// matrices.
package assembler

import (
	"fmt"
	"sync"

	"github.com/molel-gt/ffcx/forms"
	"github.com/molel-gt/ffcx/mesh"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/molel-gt/ffcx/utils"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("ffcx.assembler")
}

// CustomQuadrature is caller supplied quadrature on one cell, or on the two
// cells of an interface, for a custom integral. Points are reference
// coordinates laid out [cell][point][tdim], weights are physical.
type CustomQuadrature struct {
	Cells       []int
	SubdomainID int // negative selects the default integral
	NumPoints   int
	Points      []float64
	Weights     []float64
	Normals     []float64 // may be nil
}

// Assembler holds a form bound to a mesh. Coefficients are global dof
// vectors, one per form coefficient.
type Assembler struct {
	Mesh         *mesh.Mesh
	Form         ufc.Form
	Workers      int
	VertexTags   map[int]int // vertex -> subdomain id for vertex integrals
	Custom       []CustomQuadrature
	coefficients [][]float64
	dofmaps      []ufc.Dofmap
	dims         []int
}

func New(m *mesh.Mesh, f ufc.Form) (a *Assembler, err error) {
	if f.Rank() > 2 {
		return nil, fmt.Errorf("assembly of rank %d forms: %w", f.Rank(), ufc.ErrUnsupported)
	}
	a = &Assembler{
		Mesh:         m,
		Form:         f,
		Workers:      1,
		VertexTags:   make(map[int]int),
		coefficients: make([][]float64, f.NumCoefficients()),
	}
	n := f.Rank() + f.NumCoefficients()
	a.dofmaps = make([]ufc.Dofmap, n)
	a.dims = make([]int, n)
	for i := 0; i < n; i++ {
		e := f.CreateFiniteElement(i)
		if e.CellShape() != m.Shape {
			return nil, fmt.Errorf("space %d of %s is on %s, mesh is %s", i, f.Signature(), e.CellShape(), m.Shape)
		}
		if e.GeometricDimension() != m.GDim {
			return nil, fmt.Errorf("space %d is in %d dimensions, mesh in %d", i, e.GeometricDimension(), m.GDim)
		}
		a.dofmaps[i] = f.CreateDofmap(i)
		a.dims[i] = a.dofmaps[i].GlobalDimension(m.NumGlobalEntities())
	}
	return
}

// Dimension is the global dimension of space i, arguments first.
func (a *Assembler) Dimension(i int) int { return a.dims[ufc.CheckIndex("space", i, len(a.dims))] }

// Dofmap returns the dofmap of space i, arguments first.
func (a *Assembler) Dofmap(i int) ufc.Dofmap { return a.dofmaps[ufc.CheckIndex("space", i, len(a.dofmaps))] }

// SetCoefficient binds the global dofs of coefficient j.
func (a *Assembler) SetCoefficient(j int, w []float64) error {
	ufc.CheckIndex("coefficient", j, len(a.coefficients))
	if dim := a.dims[a.Form.Rank()+j]; len(w) != dim {
		return fmt.Errorf("coefficient %d has %d dofs, its space has %d", j, len(w), dim)
	}
	a.coefficients[j] = w
	return nil
}

// Tensor is an assembled global tensor of rank 0, 1 or 2.
type Tensor struct {
	Rank   int
	Dims   []int
	Scalar float64
	Vector []float64
	Matrix utils.CSR
}

// contribution is one local tensor with the global dofs of every axis.
type contribution struct {
	dofs [][]int
	A    []float64
}

// Assemble runs every integral of the form over the mesh. Local tensors are
// computed by one goroutine per partition and accumulated by the caller's
// goroutine.
func (a *Assembler) Assemble() (t *Tensor, err error) {
	if err = a.checkCoefficients(); err != nil {
		return
	}
	var (
		rank  = a.Form.Rank()
		parts = a.partitions()
		owner = make([]int, a.Mesh.NumCells())
		out   = make(chan contribution, 64)
		errs  = make(chan error, len(parts))
		wg    = sync.WaitGroup{}
		dok   utils.DOK
	)
	for np, cells := range parts {
		for _, k := range cells {
			owner[k] = np
		}
	}
	t = &Tensor{Rank: rank, Dims: append([]int(nil), a.dims[:rank]...)}
	switch rank {
	case 1:
		t.Vector = make([]float64, a.dims[0])
	case 2:
		dok = utils.NewDOK(a.dims[0], a.dims[1])
	}
	for np := range parts {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			w := newWorker(a, np, parts[np], owner, out)
			if err := w.run(); err != nil {
				errs <- fmt.Errorf("partition %d: %w", np, err)
			}
		}(np)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	var count int
	for c := range out {
		count++
		switch rank {
		case 0:
			t.Scalar += c.A[0]
		case 1:
			for i, dof := range c.dofs[0] {
				t.Vector[dof] += c.A[i]
			}
		case 2:
			dok.AddBlock(c.dofs[0], c.dofs[1], c.A)
		}
	}
	close(errs)
	for e := range errs {
		return nil, e
	}
	if rank == 2 {
		t.Matrix = dok.ToCSR()
	}
	tracer().Infof("assembled %s over %d cells in %d partitions: %d local tensors",
		a.Form.Signature(), a.Mesh.NumCells(), len(parts), count)
	return
}

func (a *Assembler) checkCoefficients() error {
	for j, w := range a.coefficients {
		if w == nil && a.coefficientUsed(j) {
			return fmt.Errorf("coefficient %d is not set", j)
		}
	}
	return nil
}

// coefficientUsed reports whether any integral of the form enables
// coefficient j.
func (a *Assembler) coefficientUsed(j int) bool {
	for _, kind := range ufc.IntegralTypes {
		if !forms.HasIntegrals(a.Form, kind) {
			continue
		}
		for id := -1; id < forms.MaxSubdomainID(a.Form, kind); id++ {
			it, err := forms.CreateIntegral(a.Form, kind, id)
			if err != nil {
				continue
			}
			if it.EnabledCoefficients()[j] {
				return true
			}
		}
	}
	return false
}

func (a *Assembler) partitions() (parts [][]int) {
	parts = a.Mesh.PartitionCells()
	if len(parts) > 1 || a.Workers <= 1 {
		return
	}
	pm := utils.NewPartitionMap(a.Workers, a.Mesh.NumCells())
	parts = make([][]int, 0, pm.ParallelDegree)
	for np := 0; np < pm.ParallelDegree; np++ {
		if pm.GetBucketDimension(np) == 0 {
			continue
		}
		kMin, kMax := pm.GetBucketRange(np)
		parts = append(parts, utils.NewRange(kMin, kMax))
	}
	return
}

package assembler

import (
	"fmt"

	"github.com/molel-gt/ffcx/forms"
	"github.com/molel-gt/ffcx/mesh"
	"github.com/molel-gt/ffcx/ufc"
)

type integralKey struct {
	kind ufc.IntegralType
	id   int
}

// worker computes the local tensors of the cells of one partition and of
// the facets, vertices and custom rules owned by them.
type worker struct {
	a         *Assembler
	m         *mesh.Mesh
	np        int
	cells     []int
	owner     []int
	out       chan<- contribution
	integrals map[integralKey]ufc.Integral
	numGlobal []int
}

func newWorker(a *Assembler, np int, cells, owner []int, out chan<- contribution) *worker {
	return &worker{
		a:         a,
		m:         a.Mesh,
		np:        np,
		cells:     cells,
		owner:     owner,
		out:       out,
		integrals: make(map[integralKey]ufc.Integral),
		numGlobal: a.Mesh.NumGlobalEntities(),
	}
}

// integral selects the integral for a subdomain id, falling back to the
// default integral of the kind. ok is false when neither exists.
func (w *worker) integral(kind ufc.IntegralType, id int, tagged bool) (it ufc.Integral, ok bool) {
	if tagged && id >= 0 && id < forms.MaxSubdomainID(w.a.Form, kind) {
		if it, ok = w.cached(kind, id); ok {
			return
		}
	}
	return w.cached(kind, -1)
}

func (w *worker) cached(kind ufc.IntegralType, id int) (it ufc.Integral, ok bool) {
	key := integralKey{kind: kind, id: id}
	if it, ok = w.integrals[key]; ok {
		return it, it != nil
	}
	it, err := forms.CreateIntegral(w.a.Form, kind, id)
	if err != nil {
		it = nil
	}
	w.integrals[key] = it
	return it, it != nil
}

func (w *worker) run() (err error) {
	f := w.a.Form
	if f.HasCellIntegrals() {
		for _, k := range w.cells {
			w.cell(k)
		}
	}
	if f.HasExteriorFacetIntegrals() {
		for _, fc := range w.m.ExteriorFacets() {
			if w.owns(w.m.FacetCells(fc)[0].Cell) {
				w.exteriorFacet(fc)
			}
		}
	}
	if f.HasInteriorFacetIntegrals() {
		for _, fc := range w.m.InteriorFacets() {
			if w.owns(w.m.FacetCells(fc)[0].Cell) {
				w.interiorFacet(fc)
			}
		}
	}
	if f.HasVertexIntegrals() {
		for v := 0; v < w.m.NumVertices(); v++ {
			if vc := w.m.VertexCells(v); len(vc) > 0 && w.owns(vc[0].Cell) {
				w.vertex(v, vc[0])
			}
		}
	}
	if f.HasCustomIntegrals() {
		for i, q := range w.a.Custom {
			if len(q.Cells) == 0 || len(q.Cells) > 2 {
				return fmt.Errorf("custom quadrature %d on %d cells", i, len(q.Cells))
			}
			if w.owns(q.Cells[0]) {
				if err = w.custom(q); err != nil {
					return fmt.Errorf("custom quadrature %d: %w", i, err)
				}
			}
		}
	}
	return
}

func (w *worker) owns(k int) bool { return w.owner[k] == w.np }

// local gathers the global dofs of every space on the given cells,
// concatenated across cells.
func (w *worker) local(cells ...int) (dofs [][]int) {
	dofs = make([][]int, len(w.a.dofmaps))
	for i, dm := range w.a.dofmaps {
		n := dm.NumElementDofs()
		dofs[i] = make([]int, n*len(cells))
		for c, k := range cells {
			dm.TabulateDofs(dofs[i][c*n:(c+1)*n], w.numGlobal, w.m.EntityIndices(k))
		}
	}
	return
}

func (w *worker) coefficients(it ufc.Integral, dofs [][]int) (wc [][]float64) {
	var (
		rank    = w.a.Form.Rank()
		enabled = it.EnabledCoefficients()
	)
	wc = make([][]float64, len(w.a.coefficients))
	for j, global := range w.a.coefficients {
		if !enabled[j] {
			continue
		}
		d := dofs[rank+j]
		wc[j] = make([]float64, len(d))
		for i, dof := range d {
			wc[j][i] = global[dof]
		}
	}
	return
}

func (w *worker) emit(dofs [][]int) []float64 {
	var (
		rank = w.a.Form.Rank()
		size = 1
	)
	for i := 0; i < rank; i++ {
		size *= len(dofs[i])
	}
	return make([]float64, size)
}

func (w *worker) send(dofs [][]int, A []float64) {
	w.out <- contribution{dofs: dofs[:w.a.Form.Rank()], A: A}
}

func (w *worker) cell(k int) {
	it, ok := w.integral(ufc.CellIntegralType, w.m.CellTags[k], true)
	if !ok {
		return
	}
	var (
		dofs = w.local(k)
		A    = w.emit(dofs)
	)
	it.(ufc.CellIntegral).TabulateTensor(A, w.coefficients(it, dofs), w.m.CoordinateDofs(k, nil), w.m.Orientation(k))
	w.send(dofs, A)
}

func (w *worker) exteriorFacet(f int) {
	tag, tagged := w.m.FacetTag(f)
	it, ok := w.integral(ufc.ExteriorFacetIntegralType, tag, tagged)
	if !ok {
		return
	}
	var (
		ce   = w.m.FacetCells(f)[0]
		dofs = w.local(ce.Cell)
		A    = w.emit(dofs)
	)
	it.(ufc.ExteriorFacetIntegral).TabulateTensor(A, w.coefficients(it, dofs), w.m.CoordinateDofs(ce.Cell, nil),
		ce.Local, w.m.Orientation(ce.Cell))
	w.send(dofs, A)
}

func (w *worker) interiorFacet(f int) {
	tag, tagged := w.m.FacetTag(f)
	it, ok := w.integral(ufc.InteriorFacetIntegralType, tag, tagged)
	if !ok {
		return
	}
	var (
		ces  = w.m.FacetCells(f)
		dofs = w.local(ces[0].Cell, ces[1].Cell)
		A    = w.emit(dofs)
	)
	it.(ufc.InteriorFacetIntegral).TabulateTensor(A, w.coefficients(it, dofs),
		w.m.CoordinateDofs(ces[0].Cell, nil), w.m.CoordinateDofs(ces[1].Cell, nil),
		ces[0].Local, ces[1].Local, w.m.Orientation(ces[0].Cell), w.m.Orientation(ces[1].Cell))
	w.send(dofs, A)
}

func (w *worker) vertex(v int, ce mesh.CellEntity) {
	tag, tagged := w.a.VertexTags[v]
	it, ok := w.integral(ufc.VertexIntegralType, tag, tagged)
	if !ok {
		return
	}
	var (
		dofs = w.local(ce.Cell)
		A    = w.emit(dofs)
	)
	it.(ufc.VertexIntegral).TabulateTensor(A, w.coefficients(it, dofs), w.m.CoordinateDofs(ce.Cell, nil),
		ce.Local, w.m.Orientation(ce.Cell))
	w.send(dofs, A)
}

func (w *worker) custom(q CustomQuadrature) error {
	it, ok := w.integral(ufc.CustomIntegralType, q.SubdomainID, q.SubdomainID >= 0)
	if !ok {
		return nil
	}
	ci := it.(ufc.CustomIntegral)
	if ci.NumCells() != len(q.Cells) {
		return fmt.Errorf("integral over %d cells given %d", ci.NumCells(), len(q.Cells))
	}
	var (
		dofs         = w.local(q.Cells...)
		A            = w.emit(dofs)
		cd           []float64
		orientations = make([]int, len(q.Cells))
	)
	for c, k := range q.Cells {
		cd = append(cd, w.m.CoordinateDofs(k, nil)...)
		orientations[c] = w.m.Orientation(k)
	}
	ci.TabulateTensor(A, w.coefficients(it, dofs), cd, q.NumPoints, q.Points, q.Weights, q.Normals, orientations)
	w.send(dofs, A)
	return nil
}

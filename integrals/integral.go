// Package integrals implements the integral kinds of the contract on top
// of numerical quadrature and a pointwise kernel.
package integrals

import (
	"fmt"
	"math"

	"github.com/molel-gt/ffcx/geometry"
	"github.com/molel-gt/ffcx/quadrature"
	"github.com/molel-gt/ffcx/reference"
	"github.com/molel-gt/ffcx/ufc"
)

// Setup describes an integral: the elements of its arguments, the elements
// of every coefficient of the owning form and the kernel evaluated at each
// quadrature point.
type Setup struct {
	Shape        ufc.Shape
	GDim         int
	Arguments    []ufc.FiniteElement
	Coefficients []ufc.FiniteElement
	Enabled      []bool
	Degree       int
	Gradients    bool
	Kernel       Kernel
	NumCells     int // custom integrals only, 1 or 2
}

type base struct {
	Setup
	rank int
}

func newBase(s Setup) (b base) {
	if s.Kernel == nil {
		panic(fmt.Errorf("integral without kernel"))
	}
	for _, e := range s.Arguments {
		if e.CellShape() != s.Shape {
			panic(fmt.Errorf("argument on %s in integral over %s", e.CellShape(), s.Shape))
		}
	}
	if s.Enabled == nil {
		s.Enabled = make([]bool, len(s.Coefficients))
		for j := range s.Enabled {
			s.Enabled[j] = true
		}
	}
	if len(s.Enabled) != len(s.Coefficients) {
		panic(fmt.Errorf("%d enabled flags for %d coefficients", len(s.Enabled), len(s.Coefficients)))
	}
	if s.GDim == 0 {
		s.GDim = s.Shape.TopologicalDimension()
	}
	b = base{Setup: s, rank: len(s.Arguments)}
	return
}

func (b *base) EnabledCoefficients() []bool {
	en := make([]bool, len(b.Enabled))
	copy(en, b.Enabled)
	return en
}

// TensorSize is the number of entries of the element tensor on one cell.
func (b *base) TensorSize() (size int) {
	size = 1
	for _, e := range b.Arguments {
		size *= e.SpaceDimension()
	}
	return
}

func (b *base) nodes() int { return reference.NumVertices(b.Shape) * b.GDim }

func zero(A []float64, n int) {
	if len(A) < n {
		panic(fmt.Errorf("element tensor of length %d, need %d", len(A), n))
	}
	for i := range A[:n] {
		A[i] = 0
	}
}

// side tabulates arguments and enabled coefficients of one cell at X.
func (b *base) side(X, coordinateDofs []float64, cellOrientation int, w [][]float64) (args []Tabulation, coefs []Coefficient) {
	args = make([]Tabulation, b.rank)
	for a, e := range b.Arguments {
		args[a] = tabulate(e, X, coordinateDofs, cellOrientation, b.Gradients)
	}
	coefs = make([]Coefficient, len(b.Coefficients))
	for j, e := range b.Coefficients {
		if !b.Enabled[j] {
			continue
		}
		coefs[j] = evaluate(tabulate(e, X, coordinateDofs, cellOrientation, b.Gradients), w[j])
	}
	return
}

// Cell integrates the kernel over the cell with a degree exact rule.
type Cell struct {
	base
	rule quadrature.Rule
}

func NewCell(s Setup) *Cell {
	b := newBase(s)
	return &Cell{base: b, rule: quadrature.New(b.Shape, b.Degree)}
}

func (ci *Cell) TabulateTensor(A []float64, w [][]float64, coordinateDofs []float64, cellOrientation int) {
	zero(A, ci.TensorSize())
	vol := geometry.CellVolume(ci.Shape, ci.GDim, coordinateDofs)
	for q := 0; q < ci.rule.NumPoints(); q++ {
		X := ci.rule.Point(q)
		m := geometry.Evaluate(ci.Shape, ci.GDim, coordinateDofs, X)
		p := &Point{
			X:          m.X,
			Weight:     ci.rule.Weights[q] * math.Abs(m.DetJ),
			CellVolume: vol,
		}
		p.Args, p.W = ci.side(X, coordinateDofs, cellOrientation, w)
		ci.Kernel(A, p)
	}
}

// ExteriorFacet integrates over one facet of the cell, with the outward
// normal available to the kernel.
type ExteriorFacet struct {
	base
	rules []quadrature.Rule
}

func NewExteriorFacet(s Setup) *ExteriorFacet {
	b := newBase(s)
	return &ExteriorFacet{base: b, rules: facetRules(b.Shape, b.Degree)}
}

func facetRules(shape ufc.Shape, degree int) (rules []quadrature.Rule) {
	rules = make([]quadrature.Rule, reference.NumFacets(shape))
	for f := range rules {
		rules[f] = quadrature.Facet(shape, f, degree)
	}
	return
}

func (ei *ExteriorFacet) TabulateTensor(A []float64, w [][]float64, coordinateDofs []float64, facet, cellOrientation int) {
	zero(A, ei.TensorSize())
	rule := ei.rules[ufc.CheckIndex("facet", facet, len(ei.rules))]
	vol := geometry.CellVolume(ei.Shape, ei.GDim, coordinateDofs)
	for q := 0; q < rule.NumPoints(); q++ {
		X := rule.Point(q)
		m := geometry.Evaluate(ei.Shape, ei.GDim, coordinateDofs, X)
		p := &Point{
			X:          m.X,
			Normal:     geometry.FacetNormal(m, facet),
			Weight:     rule.Weights[q] * geometry.FacetScale(m, facet),
			CellVolume: vol,
		}
		p.Args, p.W = ei.side(X, coordinateDofs, cellOrientation, w)
		ei.Kernel(A, p)
	}
}

// InteriorFacet integrates over a facet shared by two cells. The element
// tensor is over the macro element whose first dofs are those of cell 0.
type InteriorFacet struct {
	base
	rules []quadrature.Rule
}

func NewInteriorFacet(s Setup) *InteriorFacet {
	b := newBase(s)
	return &InteriorFacet{base: b, rules: facetRules(b.Shape, b.Degree)}
}

func (ii *InteriorFacet) TensorSize() int { return ii.base.TensorSize() << ii.rank }

func (ii *InteriorFacet) TabulateTensor(A []float64, w [][]float64, coordinateDofs0, coordinateDofs1 []float64,
	facet0, facet1, cellOrientation0, cellOrientation1 int) {
	zero(A, ii.TensorSize())
	ufc.CheckIndex("facet", facet1, len(ii.rules))
	rule := ii.rules[ufc.CheckIndex("facet", facet0, len(ii.rules))]
	vol := 0.5 * (geometry.CellVolume(ii.Shape, ii.GDim, coordinateDofs0) +
		geometry.CellVolume(ii.Shape, ii.GDim, coordinateDofs1))
	w0, w1 := ii.split(w)
	for q := 0; q < rule.NumPoints(); q++ {
		X0 := rule.Point(q)
		m := geometry.Evaluate(ii.Shape, ii.GDim, coordinateDofs0, X0)
		X1, err := geometry.PullBack(ii.Shape, ii.GDim, coordinateDofs1, m.X)
		if err != nil {
			panic(fmt.Errorf("facet %d of cell 0 against facet %d of cell 1: %w", facet0, facet1, err))
		}
		p := &Point{
			X:          m.X,
			Normal:     geometry.FacetNormal(m, facet0),
			Weight:     rule.Weights[q] * geometry.FacetScale(m, facet0),
			CellVolume: vol,
		}
		a0, c0 := ii.side(X0, coordinateDofs0, cellOrientation0, w0)
		a1, c1 := ii.side(X1, coordinateDofs1, cellOrientation1, w1)
		p.Args, p.Minus = macroArgs(a0, a1)
		p.W, p.WMinus = c0, c1
		ii.Kernel(A, p)
	}
}

// split divides macro coefficient dofs into the halves of each cell.
func (b *base) split(w [][]float64) (w0, w1 [][]float64) {
	w0 = make([][]float64, len(w))
	w1 = make([][]float64, len(w))
	for j, e := range b.Coefficients {
		if !b.Enabled[j] {
			continue
		}
		n := e.SpaceDimension()
		w0[j], w1[j] = w[j][:n], w[j][n:2*n]
	}
	return
}

func macroArgs(a0, a1 []Tabulation) (plus, minus []Tabulation) {
	plus = make([]Tabulation, len(a0))
	minus = make([]Tabulation, len(a1))
	for a := range a0 {
		plus[a], minus[a] = macro(a0[a], 0), macro(a1[a], 1)
	}
	return
}

// Vertex evaluates the kernel once at a vertex of the cell with unit
// weight.
type Vertex struct {
	base
}

func NewVertex(s Setup) *Vertex { return &Vertex{base: newBase(s)} }

func (vi *Vertex) TabulateTensor(A []float64, w [][]float64, coordinateDofs []float64, vertex, cellOrientation int) {
	zero(A, vi.TensorSize())
	var (
		verts = reference.Vertices(vi.Shape)
		X     = verts[ufc.CheckIndex("vertex", vertex, len(verts))]
	)
	p := &Point{
		X:          coordinateDofs[vertex*vi.GDim : (vertex+1)*vi.GDim],
		Weight:     1,
		CellVolume: geometry.CellVolume(vi.Shape, vi.GDim, coordinateDofs),
	}
	p.Args, p.W = vi.side(X, coordinateDofs, cellOrientation, w)
	vi.Kernel(A, p)
}

// Custom evaluates the kernel on caller provided reference points with
// physical weights, for one cell or the two cells of a cut interface.
type Custom struct {
	base
}

func NewCustom(s Setup) *Custom {
	if s.NumCells == 0 {
		s.NumCells = 1
	}
	if s.NumCells > 2 {
		panic(fmt.Errorf("custom integral over %d cells", s.NumCells))
	}
	return &Custom{base: newBase(s)}
}

func (cu *Custom) NumCells() int { return cu.Setup.NumCells }

func (cu *Custom) TensorSize() int {
	if cu.NumCells() == 2 {
		return cu.base.TensorSize() << cu.rank
	}
	return cu.base.TensorSize()
}

// TabulateTensor takes quadraturePoints as [cell][point][tdim] reference
// coordinates and facetNormals, when not nil, as [point][gdim].
func (cu *Custom) TabulateTensor(A []float64, w [][]float64, coordinateDofs []float64, numQuadraturePoints int,
	quadraturePoints, quadratureWeights, facetNormals []float64, cellOrientations []int) {
	zero(A, cu.TensorSize())
	var (
		tdim = cu.Shape.TopologicalDimension()
		nd   = cu.nodes()
		cd0  = coordinateDofs[:nd]
	)
	vol := geometry.CellVolume(cu.Shape, cu.GDim, cd0)
	w0, w1 := w, [][]float64(nil)
	if cu.NumCells() == 2 {
		w0, w1 = cu.split(w)
	}
	for q := 0; q < numQuadraturePoints; q++ {
		X0 := quadraturePoints[q*tdim : (q+1)*tdim]
		p := &Point{
			X:          geometry.Push(cu.Shape, cu.GDim, cd0, X0),
			Weight:     quadratureWeights[q],
			CellVolume: vol,
		}
		if facetNormals != nil {
			p.Normal = facetNormals[q*cu.GDim : (q+1)*cu.GDim]
		}
		a0, c0 := cu.side(X0, cd0, orientation(cellOrientations, 0), w0)
		if cu.NumCells() == 1 {
			p.Args, p.W = a0, c0
		} else {
			off := (numQuadraturePoints + q) * tdim
			X1 := quadraturePoints[off : off+tdim]
			a1, c1 := cu.side(X1, coordinateDofs[nd:2*nd], orientation(cellOrientations, 1), w1)
			p.Args, p.Minus = macroArgs(a0, a1)
			p.W, p.WMinus = c0, c1
		}
		cu.Kernel(A, p)
	}
}

func orientation(cellOrientations []int, c int) int {
	if c < len(cellOrientations) {
		return cellOrientations[c]
	}
	return 0
}

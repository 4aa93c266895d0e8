package elements

import (
	"fmt"
	"strings"

	"github.com/molel-gt/ffcx/ufc"
	"github.com/molel-gt/ffcx/utils"
)

// Mixed is the composite of its sub elements. Basis functions are numbered
// sub element by sub element and value components are concatenated.
type Mixed struct {
	subs       []ufc.FiniteElement
	dofOffsets utils.Index
	valOffsets utils.Index
	refOffsets utils.Index
	valueShape []int
	refShape   []int
	signature  string
}

// NewMixed composes sub elements defined on the same cell shape.
func NewMixed(subs ...ufc.FiniteElement) (me *Mixed, err error) {
	if len(subs) == 0 {
		err = fmt.Errorf("mixed element needs at least one sub element")
		return
	}
	var (
		names = make([]string, len(subs))
	)
	for i, s := range subs {
		if s.CellShape() != subs[0].CellShape() {
			err = fmt.Errorf("mixed element on %s and %s", subs[0].CellShape(), s.CellShape())
			return
		}
		names[i] = s.Signature()
	}
	me = newMixed(subs, fmt.Sprintf("MixedElement(%s)", strings.Join(names, ", ")))
	return
}

// NewVector returns dim copies of a scalar element, one per component.
func NewVector(sub ufc.FiniteElement, dim int) (me *Mixed, err error) {
	if sub.ValueSize() != 1 {
		err = fmt.Errorf("vector element of non scalar %s", sub.Signature())
		return
	}
	if dim < 1 {
		err = fmt.Errorf("vector element of dimension %d", dim)
		return
	}
	subs := make([]ufc.FiniteElement, dim)
	for i := range subs {
		subs[i] = sub.Create()
	}
	me = newMixed(subs, fmt.Sprintf("VectorElement(%s, dim=%d)", sub.Signature(), dim))
	return
}

// Coordinate returns the vector valued degree one Lagrange element
// describing the geometry of cells of the given shape.
func Coordinate(shape ufc.Shape, gdim int) *Mixed {
	p1, err := Lagrange(shape, 1)
	if err != nil {
		panic(err)
	}
	me, err := NewVector(p1, gdim)
	if err != nil {
		panic(err)
	}
	return me
}

func newMixed(subs []ufc.FiniteElement, signature string) (me *Mixed) {
	var (
		dims = make(utils.Index, len(subs))
		vals = make(utils.Index, len(subs))
		refs = make(utils.Index, len(subs))
	)
	for i, s := range subs {
		dims[i] = s.SpaceDimension()
		vals[i] = s.ValueSize()
		refs[i] = s.ReferenceValueSize()
	}
	me = &Mixed{
		subs:       subs,
		dofOffsets: dims.PrefixSums(),
		valOffsets: vals.PrefixSums(),
		refOffsets: refs.PrefixSums(),
		valueShape: []int{vals.Sum()},
		refShape:   []int{refs.Sum()},
		signature:  signature,
	}
	return
}

func (me *Mixed) Signature() string         { return me.signature }
func (me *Mixed) CellShape() ufc.Shape      { return me.subs[0].CellShape() }
func (me *Mixed) TopologicalDimension() int { return me.subs[0].TopologicalDimension() }
func (me *Mixed) GeometricDimension() int   { return me.subs[0].GeometricDimension() }
func (me *Mixed) SpaceDimension() int       { return me.dofOffsets[len(me.subs)] }
func (me *Mixed) ValueRank() int            { return len(me.valueShape) }
func (me *Mixed) ValueSize() int            { return me.valueShape[0] }
func (me *Mixed) ReferenceValueRank() int   { return len(me.refShape) }
func (me *Mixed) ReferenceValueSize() int   { return me.refShape[0] }
func (me *Mixed) NumSubElements() int       { return len(me.subs) }

func (me *Mixed) ValueDimension(i int) int {
	ufc.CheckIndex("value dimension", i, len(me.valueShape))
	return me.valueShape[i]
}

func (me *Mixed) ReferenceValueDimension(i int) int {
	ufc.CheckIndex("reference value dimension", i, len(me.refShape))
	return me.refShape[i]
}

func (me *Mixed) CreateSubElement(i int) ufc.FiniteElement {
	ufc.CheckIndex("sub element", i, len(me.subs))
	return me.subs[i].Create()
}

func (me *Mixed) Create() ufc.FiniteElement {
	subs := make([]ufc.FiniteElement, len(me.subs))
	for i, s := range me.subs {
		subs[i] = s.Create()
	}
	return newMixed(subs, me.signature)
}

// SubDofOffset returns the index of the first basis function of sub element k.
func (me *Mixed) SubDofOffset(k int) int {
	ufc.CheckIndex("sub element", k, len(me.subs))
	return me.dofOffsets[k]
}

// locate returns the sub element holding basis function i and its local index.
func (me *Mixed) locate(i int) (k, local int) {
	ufc.CheckIndex("basis", i, me.SpaceDimension())
	for k = 0; k < len(me.subs); k++ {
		if i < me.dofOffsets[k+1] {
			return k, i - me.dofOffsets[k]
		}
	}
	return
}

func (me *Mixed) EvaluateBasis(i int, values, x, coordinateDofs []float64, cellOrientation int) {
	me.EvaluateBasisDerivatives(i, 0, values, x, coordinateDofs, cellOrientation)
}

func (me *Mixed) EvaluateBasisAll(values, x, coordinateDofs []float64, cellOrientation int) {
	me.EvaluateBasisDerivativesAll(0, values, x, coordinateDofs, cellOrientation)
}

// Derivatives are component major, so sub element components occupy a
// contiguous block of the output.
func (me *Mixed) EvaluateBasisDerivatives(i, n int, values, x, coordinateDofs []float64, cellOrientation int) {
	var (
		k, local = me.locate(i)
		nd       = ufc.NumDerivatives(me.GeometricDimension(), n)
		vs       = me.ValueSize()
	)
	for j := range values[:vs*nd] {
		values[j] = 0
	}
	block := values[me.valOffsets[k]*nd : me.valOffsets[k+1]*nd]
	me.subs[k].EvaluateBasisDerivatives(local, n, block, x, coordinateDofs, cellOrientation)
}

func (me *Mixed) EvaluateBasisDerivativesAll(n int, values, x, coordinateDofs []float64, cellOrientation int) {
	var (
		nd   = ufc.NumDerivatives(me.GeometricDimension(), n)
		size = me.ValueSize() * nd
	)
	for i := 0; i < me.SpaceDimension(); i++ {
		me.EvaluateBasisDerivatives(i, n, values[i*size:(i+1)*size], x, coordinateDofs, cellOrientation)
	}
}

// subFunction restricts a function to the value components of one sub element.
type subFunction struct {
	f                  ufc.Function
	size, first, count int
}

func (sf subFunction) Evaluate(values, x []float64, c *ufc.Cell) {
	full := make([]float64, sf.size)
	sf.f.Evaluate(full, x, c)
	copy(values[:sf.count], full[sf.first:sf.first+sf.count])
}

func (me *Mixed) EvaluateDof(i int, f ufc.Function, coordinateDofs []float64, cellOrientation int, c *ufc.Cell) float64 {
	var (
		k, local = me.locate(i)
		sf       = subFunction{
			f:     f,
			size:  me.ValueSize(),
			first: me.valOffsets[k],
			count: me.valOffsets[k+1] - me.valOffsets[k],
		}
	)
	return me.subs[k].EvaluateDof(local, sf, coordinateDofs, cellOrientation, c)
}

func (me *Mixed) EvaluateDofs(values []float64, f ufc.Function, coordinateDofs []float64, cellOrientation int, c *ufc.Cell) {
	for i := 0; i < me.SpaceDimension(); i++ {
		values[i] = me.EvaluateDof(i, f, coordinateDofs, cellOrientation, c)
	}
}

func (me *Mixed) InterpolateVertexValues(vertexValues, dofValues, coordinateDofs []float64, cellOrientation int, c *ufc.Cell) {
	interpolateVertexValues(me, vertexValues, dofValues, coordinateDofs, cellOrientation)
}

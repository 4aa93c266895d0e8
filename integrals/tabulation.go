package integrals

import (
	"github.com/molel-gt/ffcx/ufc"
)

// Tabulation holds the physical values and gradients of every basis
// function of an element at one point.
type Tabulation struct {
	Dim, ValueSize, GDim int
	Values               []float64 // [i*ValueSize+c]
	Grads                []float64 // [(i*ValueSize+c)*GDim+k], nil unless requested
}

func (t *Tabulation) Value(i, c int) float64 { return t.Values[i*t.ValueSize+c] }

func (t *Tabulation) Grad(i, c, k int) float64 { return t.Grads[(i*t.ValueSize+c)*t.GDim+k] }

// Div returns the divergence of a vector valued basis function whose
// components first..first+GDim-1 form the vector.
func (t *Tabulation) Div(i, first int) (div float64) {
	for k := 0; k < t.GDim; k++ {
		div += t.Grad(i, first+k, k)
	}
	return
}

// Curl returns the curl of the vector formed by components
// first..first+GDim-1, a single value in 2D.
func (t *Tabulation) Curl(i, first int, curl []float64) {
	g := func(c, k int) float64 { return t.Grad(i, first+c, k) }
	switch t.GDim {
	case 2:
		curl[0] = g(1, 0) - g(0, 1)
	case 3:
		curl[0] = g(2, 1) - g(1, 2)
		curl[1] = g(0, 2) - g(2, 0)
		curl[2] = g(1, 0) - g(0, 1)
	}
}

// Coefficient is the value and gradient of a coefficient field at a point.
type Coefficient struct {
	ValueSize, GDim int
	Values          []float64
	Grads           []float64
}

func (c *Coefficient) Value(comp int) float64 { return c.Values[comp] }

func (c *Coefficient) Grad(comp, k int) float64 { return c.Grads[comp*c.GDim+k] }

func tabulate(e ufc.FiniteElement, X, coordinateDofs []float64, cellOrientation int, grads bool) (t Tabulation) {
	var (
		dim  = e.SpaceDimension()
		vs   = e.ValueSize()
		gdim = e.GeometricDimension()
	)
	t = Tabulation{
		Dim:       dim,
		ValueSize: vs,
		GDim:      gdim,
		Values:    make([]float64, dim*vs),
	}
	e.EvaluateBasisAll(t.Values, X, coordinateDofs, cellOrientation)
	if grads {
		t.Grads = make([]float64, dim*vs*gdim)
		e.EvaluateBasisDerivativesAll(1, t.Grads, X, coordinateDofs, cellOrientation)
	}
	return
}

// macro embeds the tabulation of one side of a facet into the basis of the
// two cell macro element, side 0 occupying the first half.
func macro(t Tabulation, side int) (m Tabulation) {
	m = Tabulation{
		Dim:       2 * t.Dim,
		ValueSize: t.ValueSize,
		GDim:      t.GDim,
		Values:    make([]float64, 2*len(t.Values)),
	}
	copy(m.Values[side*len(t.Values):], t.Values)
	if t.Grads != nil {
		m.Grads = make([]float64, 2*len(t.Grads))
		copy(m.Grads[side*len(t.Grads):], t.Grads)
	}
	return
}

// evaluate sums the dofs w against a tabulation.
func evaluate(t Tabulation, w []float64) (c Coefficient) {
	c = Coefficient{
		ValueSize: t.ValueSize,
		GDim:      t.GDim,
		Values:    make([]float64, t.ValueSize),
	}
	for i := 0; i < t.Dim; i++ {
		for comp := 0; comp < t.ValueSize; comp++ {
			c.Values[comp] += w[i] * t.Value(i, comp)
		}
	}
	if t.Grads != nil {
		c.Grads = make([]float64, t.ValueSize*t.GDim)
		for i := 0; i < t.Dim; i++ {
			for comp := 0; comp < t.ValueSize; comp++ {
				for k := 0; k < t.GDim; k++ {
					c.Grads[comp*t.GDim+k] += w[i] * t.Grad(i, comp, k)
				}
			}
		}
	}
	return
}

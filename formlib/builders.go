package formlib

import (
	"github.com/molel-gt/ffcx/elements"
	"github.com/molel-gt/ffcx/forms"
	"github.com/molel-gt/ffcx/integrals"
	"github.com/molel-gt/ffcx/ufc"
)

// poissonA is grad(u).grad(v) dx(0) + kappa grad(u).grad(v) dx(1), the
// plain stiffness on unmarked cells.
func poissonA(shape ufc.Shape) (f *forms.Form, err error) {
	var p1 ufc.FiniteElement
	if p1, err = lagrange(shape, 1); err != nil {
		return
	}
	var (
		args     = []ufc.FiniteElement{p1, p1}
		plain    = setup(shape, 2, integrals.Stiffness, args, p1)
		weighted = setup(shape, 3, integrals.WeightedStiffness(0), args, p1)
		def      = definition("poisson_a", shape, 2, p1, p1, p1)
	)
	plain.Enabled = []bool{false}
	def.CoefficientNames = []string{"kappa"}
	def.Cell = forms.IntegralTable[ufc.CellIntegral]{
		Max:        2,
		Subdomains: map[int]func() ufc.CellIntegral{0: cells(plain), 1: cells(weighted)},
		Default:    cells(plain),
	}
	return forms.New(def)
}

// poissonL is f v dx + g v ds(0).
func poissonL(shape ufc.Shape) (f *forms.Form, err error) {
	var p1 ufc.FiniteElement
	if p1, err = lagrange(shape, 1); err != nil {
		return
	}
	var (
		args   = []ufc.FiniteElement{p1}
		source = setup(shape, 2, integrals.Source(0), args, p1, p1)
		flux   = setup(shape, 2, integrals.Source(1), args, p1, p1)
		def    = definition("poisson_L", shape, 1, p1, p1, p1)
	)
	source.Enabled, flux.Enabled = []bool{true, false}, []bool{false, true}
	def.CoefficientNames = []string{"f", "g"}
	def.Cell = forms.IntegralTable[ufc.CellIntegral]{Default: cells(source)}
	def.ExteriorFacet = forms.IntegralTable[ufc.ExteriorFacetIntegral]{
		Max: 1,
		Subdomains: map[int]func() ufc.ExteriorFacetIntegral{
			0: func() ufc.ExteriorFacetIntegral { return integrals.NewExteriorFacet(flux) },
		},
	}
	return forms.New(def)
}

// poissonNeumann is the pure Neumann problem with the mean fixed by a
// global Lagrange multiplier.
func poissonNeumann(shape ufc.Shape) (f *forms.Form, err error) {
	var p1 ufc.FiniteElement
	if p1, err = lagrange(shape, 1); err != nil {
		return
	}
	me, err := elements.NewMixed(p1, elements.Real(shape))
	if err != nil {
		return
	}
	var (
		s   = setup(shape, 2, integrals.NeumannPoisson, []ufc.FiniteElement{me, me})
		def = definition("poisson_neumann", shape, 2, me, me)
	)
	def.Cell = forms.IntegralTable[ufc.CellIntegral]{Default: cells(s)}
	return forms.New(def)
}

func mass(shape ufc.Shape) (f *forms.Form, err error) {
	var p1 ufc.FiniteElement
	if p1, err = lagrange(shape, 1); err != nil {
		return
	}
	var (
		s   = setup(shape, 2, integrals.Mass, []ufc.FiniteElement{p1, p1})
		def = definition("mass", shape, 2, p1, p1)
	)
	s.Gradients = false
	def.Cell = forms.IntegralTable[ufc.CellIntegral]{Default: cells(s)}
	return forms.New(def)
}

// jumpPenalty is u v dx + alpha/h [u][v] dS on discontinuous linears.
func jumpPenalty(shape ufc.Shape) (f *forms.Form, err error) {
	dg1, err := elements.New(elements.FamilyDG, shape, 1)
	if err != nil {
		return
	}
	var (
		args    = []ufc.FiniteElement{dg1, dg1}
		cell    = setup(shape, 2, integrals.Mass, args)
		penalty = setup(shape, 2, integrals.JumpPenalty(10), args)
		def     = definition("jump_penalty", shape, 2, dg1, dg1)
	)
	cell.Gradients, penalty.Gradients = false, false
	interior := func() ufc.InteriorFacetIntegral { return integrals.NewInteriorFacet(penalty) }
	def.Cell = forms.IntegralTable[ufc.CellIntegral]{Default: cells(cell)}
	def.InteriorFacet = forms.IntegralTable[ufc.InteriorFacetIntegral]{
		Max:        1,
		Subdomains: map[int]func() ufc.InteriorFacetIntegral{0: interior},
		Default:    interior,
	}
	return forms.New(def)
}

// pointSource is f v dP(0), the source evaluated at marked vertices.
func pointSource(shape ufc.Shape) (f *forms.Form, err error) {
	var p1 ufc.FiniteElement
	if p1, err = lagrange(shape, 1); err != nil {
		return
	}
	var (
		s   = setup(shape, 0, integrals.Source(0), []ufc.FiniteElement{p1}, p1)
		def = definition("point_source", shape, 1, p1, p1)
	)
	s.Gradients = false
	def.CoefficientNames = []string{"f"}
	def.Vertex = forms.IntegralTable[ufc.VertexIntegral]{
		Max: 1,
		Subdomains: map[int]func() ufc.VertexIntegral{
			0: func() ufc.VertexIntegral { return integrals.NewVertex(s) },
		},
	}
	return forms.New(def)
}

func raviartThomasPair(shape ufc.Shape) (me ufc.FiniteElement, err error) {
	rt, err := elements.New(elements.FamilyRaviartThomas, shape, 1)
	if err != nil {
		return
	}
	dg0, err := elements.New(elements.FamilyDG, shape, 0)
	if err != nil {
		return
	}
	mixed, err := elements.NewMixed(rt, dg0)
	if err != nil {
		return
	}
	return mixed, nil
}

// mixedPoisson is sigma.tau + u div(tau) + div(sigma) v on RT1 x DG0.
func mixedPoisson(shape ufc.Shape) (f *forms.Form, err error) {
	me, err := raviartThomasPair(shape)
	if err != nil {
		return
	}
	var (
		s   = setup(shape, 2, integrals.MixedPoisson, []ufc.FiniteElement{me, me})
		def = definition("mixed_poisson", shape, 2, me, me)
	)
	def.Cell = forms.IntegralTable[ufc.CellIntegral]{Default: cells(s)}
	return forms.New(def)
}

// mixedPoissonL is -f v dx on the scalar part of RT1 x DG0.
func mixedPoissonL(shape ufc.Shape) (f *forms.Form, err error) {
	me, err := raviartThomasPair(shape)
	if err != nil {
		return
	}
	dg0 := me.CreateSubElement(1)
	var (
		s   = setup(shape, 1, integrals.MixedSource(0), []ufc.FiniteElement{me}, dg0)
		def = definition("mixed_poisson_L", shape, 1, me, dg0)
	)
	s.Gradients = false
	def.CoefficientNames = []string{"f"}
	def.Cell = forms.IntegralTable[ufc.CellIntegral]{Default: cells(s)}
	return forms.New(def)
}

// cutCellMass is the mass matrix over caller supplied quadrature.
func cutCellMass(shape ufc.Shape) (f *forms.Form, err error) {
	var p1 ufc.FiniteElement
	if p1, err = lagrange(shape, 1); err != nil {
		return
	}
	var (
		s   = setup(shape, 0, integrals.Mass, []ufc.FiniteElement{p1, p1})
		def = definition("cut_cell_mass", shape, 2, p1, p1)
	)
	s.Gradients = false
	custom := func() ufc.CustomIntegral { return integrals.NewCustom(s) }
	def.Custom = forms.IntegralTable[ufc.CustomIntegral]{
		Max:        1,
		Subdomains: map[int]func() ufc.CustomIntegral{0: custom},
		Default:    custom,
	}
	return forms.New(def)
}

func vectorMass(shape ufc.Shape) (f *forms.Form, err error) {
	var p1 ufc.FiniteElement
	if p1, err = lagrange(shape, 1); err != nil {
		return
	}
	ve, err := elements.NewVector(p1, shape.TopologicalDimension())
	if err != nil {
		return
	}
	var (
		s   = setup(shape, 2, integrals.Mass, []ufc.FiniteElement{ve, ve})
		def = definition("vector_mass", shape, 2, ve, ve)
	)
	s.Gradients = false
	def.Cell = forms.IntegralTable[ufc.CellIntegral]{Default: cells(s)}
	return forms.New(def)
}

// curlCurl is curl(u).curl(v) + u.v on first kind Nedelec edges.
func curlCurl(shape ufc.Shape) (f *forms.Form, err error) {
	ned, err := elements.New(elements.FamilyNedelec, shape, 1)
	if err != nil {
		return
	}
	var (
		s   = setup(shape, 2, integrals.CurlCurl, []ufc.FiniteElement{ned, ned})
		def = definition("curl_curl", shape, 2, ned, ned)
	)
	def.Cell = forms.IntegralTable[ufc.CellIntegral]{Default: cells(s)}
	return forms.New(def)
}

// functional is the integral of f dx, a rank 0 form.
func functional(shape ufc.Shape) (f *forms.Form, err error) {
	var p1 ufc.FiniteElement
	if p1, err = lagrange(shape, 1); err != nil {
		return
	}
	var (
		s   = setup(shape, 1, integrals.Functional(0), nil, p1)
		def = definition("functional", shape, 0, p1)
	)
	s.Gradients = false
	def.CoefficientNames = []string{"f"}
	def.Cell = forms.IntegralTable[ufc.CellIntegral]{Default: cells(s)}
	return forms.New(def)
}

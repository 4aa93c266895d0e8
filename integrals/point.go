package integrals

// Point carries everything a kernel needs at one quadrature point. On
// interior facets and two cell custom integrals Args are macro tabulations
// restricted to cell 0 and Minus to cell 1; W and WMinus are the
// coefficient values on each side. Disabled coefficients are left empty.
type Point struct {
	X          []float64
	Normal     []float64 // outward normal of cell 0, nil inside cells
	Weight     float64   // quadrature weight including the measure scaling
	CellVolume float64
	Args       []Tabulation
	Minus      []Tabulation
	W          []Coefficient
	WMinus     []Coefficient
}

// Kernel adds the contribution of one quadrature point to the element
// tensor A.
type Kernel func(A []float64, p *Point)

// Jump returns the jump [v] = v(+) - v(-) of component c of basis function
// i of argument a.
func (p *Point) Jump(a, i, c int) float64 {
	if p.Minus == nil {
		return p.Args[a].Value(i, c)
	}
	return p.Args[a].Value(i, c) - p.Minus[a].Value(i, c)
}

// AvgGrad returns the average gradient {dv/dx_k} across a facet.
func (p *Point) AvgGrad(a, i, c, k int) float64 {
	if p.Minus == nil {
		return p.Args[a].Grad(i, c, k)
	}
	return 0.5 * (p.Args[a].Grad(i, c, k) + p.Minus[a].Grad(i, c, k))
}

package ufc

// Integral kinds. Every TabulateTensor overwrites A. The tensor is row major
// over the arguments, test function first. w[j] holds the local dofs of
// coefficient j; for interior facets w[j] holds the dofs of cell 0 followed
// by those of cell 1.
type (
	Integral interface {
		// EnabledCoefficients has one entry per form coefficient.
		EnabledCoefficients() []bool
	}

	CellIntegral interface {
		Integral
		TabulateTensor(A []float64, w [][]float64, coordinateDofs []float64, cellOrientation int)
	}

	ExteriorFacetIntegral interface {
		Integral
		TabulateTensor(A []float64, w [][]float64, coordinateDofs []float64, facet, cellOrientation int)
	}

	// InteriorFacetIntegral produces the macro tensor of the two cells
	// sharing a facet, with the dofs of cell 0 ordered first on every axis.
	InteriorFacetIntegral interface {
		Integral
		TabulateTensor(A []float64, w [][]float64, coordinateDofs0, coordinateDofs1 []float64,
			facet0, facet1, cellOrientation0, cellOrientation1 int)
	}

	VertexIntegral interface {
		Integral
		TabulateTensor(A []float64, w [][]float64, coordinateDofs []float64, vertex, cellOrientation int)
	}

	// CustomIntegral integrates over caller supplied quadrature. Points are
	// in reference coordinates of each cell, laid out [cell][point][tdim],
	// weights are physical and facetNormals [point][gdim] may be nil.
	// cellOrientations holds one orientation per cell; nil means no flips.
	CustomIntegral interface {
		Integral
		NumCells() int
		TabulateTensor(A []float64, w [][]float64, coordinateDofs []float64, numQuadraturePoints int,
			quadraturePoints, quadratureWeights, facetNormals []float64, cellOrientations []int)
	}
)

// IntegralType enumerates the integral kinds of a form.
type IntegralType uint8

const (
	CellIntegralType IntegralType = iota
	ExteriorFacetIntegralType
	InteriorFacetIntegralType
	VertexIntegralType
	CustomIntegralType
)

var IntegralTypes = []IntegralType{
	CellIntegralType,
	ExteriorFacetIntegralType,
	InteriorFacetIntegralType,
	VertexIntegralType,
	CustomIntegralType,
}

func (t IntegralType) String() string {
	switch t {
	case CellIntegralType:
		return "cell"
	case ExteriorFacetIntegralType:
		return "exterior_facet"
	case InteriorFacetIntegralType:
		return "interior_facet"
	case VertexIntegralType:
		return "vertex"
	case CustomIntegralType:
		return "custom"
	}
	return "unknown"
}

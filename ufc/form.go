package ufc

// Form is the factory for everything needed to assemble one weak form of
// rank r with n coefficients. Finite elements and dofmaps 0..r-1 are the
// argument spaces, r..r+n-1 the coefficient spaces.
//
// Create*Integral returns an error wrapping ErrNotRegistered when no
// integral exists for the id. CreateDefault*Integral reports absence with
// its second result.
type Form interface {
	Signature() string
	Rank() int
	NumCoefficients() int
	OriginalCoefficientPosition(i int) int

	CreateCoordinateFiniteElement() FiniteElement
	CreateCoordinateDofmap() Dofmap
	CreateFiniteElement(i int) FiniteElement
	CreateDofmap(i int) Dofmap

	MaxCellSubdomainID() int
	MaxExteriorFacetSubdomainID() int
	MaxInteriorFacetSubdomainID() int
	MaxVertexSubdomainID() int
	MaxCustomSubdomainID() int

	HasCellIntegrals() bool
	HasExteriorFacetIntegrals() bool
	HasInteriorFacetIntegrals() bool
	HasVertexIntegrals() bool
	HasCustomIntegrals() bool

	CreateCellIntegral(subdomainID int) (CellIntegral, error)
	CreateExteriorFacetIntegral(subdomainID int) (ExteriorFacetIntegral, error)
	CreateInteriorFacetIntegral(subdomainID int) (InteriorFacetIntegral, error)
	CreateVertexIntegral(subdomainID int) (VertexIntegral, error)
	CreateCustomIntegral(subdomainID int) (CustomIntegral, error)

	CreateDefaultCellIntegral() (CellIntegral, bool)
	CreateDefaultExteriorFacetIntegral() (ExteriorFacetIntegral, bool)
	CreateDefaultInteriorFacetIntegral() (InteriorFacetIntegral, bool)
	CreateDefaultVertexIntegral() (VertexIntegral, bool)
	CreateDefaultCustomIntegral() (CustomIntegral, bool)
}

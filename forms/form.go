// Package forms implements ufc.Form from a declarative definition and keeps
// a registry of forms keyed by a hash of their signature.
package forms

import (
	"fmt"
	"sort"
	"strings"

	"github.com/molel-gt/ffcx/dofmaps"
	"github.com/molel-gt/ffcx/ufc"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("ffcx.forms")
}

// IntegralTable holds the integrals of one kind. Subdomain ids run from 0 to
// Max-1; an id without a factory is not registered.
type IntegralTable[T ufc.Integral] struct {
	Max        int
	Subdomains map[int]func() T
	Default    func() T
}

func (tab IntegralTable[T]) validate(kind ufc.IntegralType) error {
	for id := range tab.Subdomains {
		if id < 0 || id >= tab.Max {
			return fmt.Errorf("%s integral with subdomain id %d outside [0,%d)", kind, id, tab.Max)
		}
	}
	return nil
}

func (tab IntegralTable[T]) create(kind ufc.IntegralType, id int) (it T, err error) {
	if factory, ok := tab.Subdomains[id]; ok {
		return factory(), nil
	}
	err = fmt.Errorf("%s integral for subdomain %d: %w", kind, id, ufc.ErrNotRegistered)
	return
}

func (tab IntegralTable[T]) createDefault() (it T, ok bool) {
	if tab.Default == nil {
		return
	}
	return tab.Default(), true
}

func (tab IntegralTable[T]) has() bool { return tab.Max > 0 || tab.Default != nil }

func (tab IntegralTable[T]) describe() string {
	ids := make([]int, 0, len(tab.Subdomains))
	for id := range tab.Subdomains {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	desc := fmt.Sprint(ids)
	if tab.Default != nil {
		desc += "+default"
	}
	return desc
}

// Definition declares a form. Elements lists the argument spaces followed by
// the coefficient spaces; it and the coordinate element act as prototypes
// that the form copies on every Create call.
type Definition struct {
	Name              string
	Signature         string // derived from the rest of the definition when empty
	Rank              int
	Elements          []ufc.FiniteElement
	CoordinateElement ufc.FiniteElement
	OriginalPositions []int    // defaults to the identity
	CoefficientNames  []string // defaults to w0, w1, ...

	Cell          IntegralTable[ufc.CellIntegral]
	ExteriorFacet IntegralTable[ufc.ExteriorFacetIntegral]
	InteriorFacet IntegralTable[ufc.InteriorFacetIntegral]
	Vertex        IntegralTable[ufc.VertexIntegral]
	Custom        IntegralTable[ufc.CustomIntegral]
}

// Form is an immutable ufc.Form, safe for concurrent use.
type Form struct {
	def     Definition
	dofmaps []ufc.Dofmap
	coord   ufc.Dofmap
}

func New(def Definition) (f *Form, err error) {
	if def.Rank < 0 || def.Rank > len(def.Elements) {
		err = fmt.Errorf("form %s: rank %d with %d elements", def.Name, def.Rank, len(def.Elements))
		return
	}
	if def.CoordinateElement == nil {
		err = fmt.Errorf("form %s: no coordinate element", def.Name)
		return
	}
	shape := def.CoordinateElement.CellShape()
	for i, e := range def.Elements {
		if e.CellShape() != shape {
			err = fmt.Errorf("form %s: element %d on %s, coordinates on %s", def.Name, i, e.CellShape(), shape)
			return
		}
	}
	nc := len(def.Elements) - def.Rank
	if def.OriginalPositions == nil {
		def.OriginalPositions = make([]int, nc)
		for j := range def.OriginalPositions {
			def.OriginalPositions[j] = j
		}
	}
	if len(def.OriginalPositions) != nc {
		err = fmt.Errorf("form %s: %d original positions for %d coefficients", def.Name, len(def.OriginalPositions), nc)
		return
	}
	if def.CoefficientNames == nil {
		def.CoefficientNames = make([]string, nc)
		for j := range def.CoefficientNames {
			def.CoefficientNames[j] = fmt.Sprintf("w%d", j)
		}
	}
	if len(def.CoefficientNames) != nc {
		err = fmt.Errorf("form %s: %d coefficient names for %d coefficients", def.Name, len(def.CoefficientNames), nc)
		return
	}
	for j, name := range def.CoefficientNames {
		for _, other := range def.CoefficientNames[:j] {
			if name == other {
				err = fmt.Errorf("form %s: coefficient name %q used twice", def.Name, name)
				return
			}
		}
	}
	for _, verr := range []error{
		def.Cell.validate(ufc.CellIntegralType),
		def.ExteriorFacet.validate(ufc.ExteriorFacetIntegralType),
		def.InteriorFacet.validate(ufc.InteriorFacetIntegralType),
		def.Vertex.validate(ufc.VertexIntegralType),
		def.Custom.validate(ufc.CustomIntegralType),
	} {
		if verr != nil {
			err = fmt.Errorf("form %s: %w", def.Name, verr)
			return
		}
	}
	f = &Form{def: def}
	if f.coord, err = dofmaps.New(def.CoordinateElement); err != nil {
		return nil, fmt.Errorf("form %s: %w", def.Name, err)
	}
	f.dofmaps = make([]ufc.Dofmap, len(def.Elements))
	for i, e := range def.Elements {
		if f.dofmaps[i], err = dofmaps.New(e); err != nil {
			return nil, fmt.Errorf("form %s: space %d: %w", def.Name, i, err)
		}
	}
	if f.def.Signature == "" {
		f.def.Signature = f.deriveSignature()
	}
	tracer().Debugf("form %s: rank %d, %d coefficients", def.Name, def.Rank, nc)
	return
}

func MustNew(def Definition) *Form {
	f, err := New(def)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Form) deriveSignature() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Form(%s, rank=%d, coordinates=%s", f.def.Name, f.def.Rank, f.def.CoordinateElement.Signature())
	for _, e := range f.def.Elements {
		fmt.Fprintf(&sb, ", %s", e.Signature())
	}
	kinds := []struct {
		kind ufc.IntegralType
		has  bool
		desc string
	}{
		{ufc.CellIntegralType, f.def.Cell.has(), f.def.Cell.describe()},
		{ufc.ExteriorFacetIntegralType, f.def.ExteriorFacet.has(), f.def.ExteriorFacet.describe()},
		{ufc.InteriorFacetIntegralType, f.def.InteriorFacet.has(), f.def.InteriorFacet.describe()},
		{ufc.VertexIntegralType, f.def.Vertex.has(), f.def.Vertex.describe()},
		{ufc.CustomIntegralType, f.def.Custom.has(), f.def.Custom.describe()},
	}
	for _, k := range kinds {
		if k.has {
			fmt.Fprintf(&sb, ", %s%s", k.kind, k.desc)
		}
	}
	sb.WriteString(")")
	return sb.String()
}

func (f *Form) Name() string         { return f.def.Name }
func (f *Form) Signature() string    { return f.def.Signature }
func (f *Form) Rank() int            { return f.def.Rank }
func (f *Form) NumCoefficients() int { return len(f.def.Elements) - f.def.Rank }

func (f *Form) OriginalCoefficientPosition(i int) int {
	return f.def.OriginalPositions[ufc.CheckIndex("coefficient", i, f.NumCoefficients())]
}

// CoefficientName returns the name of coefficient i.
func (f *Form) CoefficientName(i int) string {
	return f.def.CoefficientNames[ufc.CheckIndex("coefficient", i, f.NumCoefficients())]
}

// CoefficientNumber returns the index of the named coefficient, or an error
// wrapping ufc.ErrNotRegistered when the form has no such coefficient.
func (f *Form) CoefficientNumber(name string) (int, error) {
	for j, n := range f.def.CoefficientNames {
		if n == name {
			return j, nil
		}
	}
	return -1, fmt.Errorf("form %s: coefficient %q: %w", f.def.Name, name, ufc.ErrNotRegistered)
}

func (f *Form) CreateCoordinateFiniteElement() ufc.FiniteElement { return f.def.CoordinateElement.Create() }
func (f *Form) CreateCoordinateDofmap() ufc.Dofmap               { return f.coord.Create() }

func (f *Form) CreateFiniteElement(i int) ufc.FiniteElement {
	return f.def.Elements[ufc.CheckIndex("finite element", i, len(f.def.Elements))].Create()
}

func (f *Form) CreateDofmap(i int) ufc.Dofmap {
	return f.dofmaps[ufc.CheckIndex("dofmap", i, len(f.dofmaps))].Create()
}

func (f *Form) MaxCellSubdomainID() int          { return f.def.Cell.Max }
func (f *Form) MaxExteriorFacetSubdomainID() int { return f.def.ExteriorFacet.Max }
func (f *Form) MaxInteriorFacetSubdomainID() int { return f.def.InteriorFacet.Max }
func (f *Form) MaxVertexSubdomainID() int        { return f.def.Vertex.Max }
func (f *Form) MaxCustomSubdomainID() int        { return f.def.Custom.Max }

func (f *Form) HasCellIntegrals() bool          { return f.def.Cell.has() }
func (f *Form) HasExteriorFacetIntegrals() bool { return f.def.ExteriorFacet.has() }
func (f *Form) HasInteriorFacetIntegrals() bool { return f.def.InteriorFacet.has() }
func (f *Form) HasVertexIntegrals() bool        { return f.def.Vertex.has() }
func (f *Form) HasCustomIntegrals() bool        { return f.def.Custom.has() }

func (f *Form) CreateCellIntegral(id int) (ufc.CellIntegral, error) {
	return f.def.Cell.create(ufc.CellIntegralType, id)
}

func (f *Form) CreateExteriorFacetIntegral(id int) (ufc.ExteriorFacetIntegral, error) {
	return f.def.ExteriorFacet.create(ufc.ExteriorFacetIntegralType, id)
}

func (f *Form) CreateInteriorFacetIntegral(id int) (ufc.InteriorFacetIntegral, error) {
	return f.def.InteriorFacet.create(ufc.InteriorFacetIntegralType, id)
}

func (f *Form) CreateVertexIntegral(id int) (ufc.VertexIntegral, error) {
	return f.def.Vertex.create(ufc.VertexIntegralType, id)
}

func (f *Form) CreateCustomIntegral(id int) (ufc.CustomIntegral, error) {
	return f.def.Custom.create(ufc.CustomIntegralType, id)
}

func (f *Form) CreateDefaultCellIntegral() (ufc.CellIntegral, bool) { return f.def.Cell.createDefault() }

func (f *Form) CreateDefaultExteriorFacetIntegral() (ufc.ExteriorFacetIntegral, bool) {
	return f.def.ExteriorFacet.createDefault()
}

func (f *Form) CreateDefaultInteriorFacetIntegral() (ufc.InteriorFacetIntegral, bool) {
	return f.def.InteriorFacet.createDefault()
}

func (f *Form) CreateDefaultVertexIntegral() (ufc.VertexIntegral, bool) {
	return f.def.Vertex.createDefault()
}

func (f *Form) CreateDefaultCustomIntegral() (ufc.CustomIntegral, bool) {
	return f.def.Custom.createDefault()
}

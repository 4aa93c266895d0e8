package forms

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/molel-gt/ffcx/ufc"
)

// Hash is the stable content key of a form signature.
func Hash(signature string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(signature))
}

// Registry maps names and signature hashes to forms. It is read only after
// NewRegistry returns.
type Registry struct {
	byName map[string]*Form
	byHash map[uuid.UUID]*Form
	names  []string
}

func NewRegistry(forms ...*Form) (r *Registry, err error) {
	r = &Registry{
		byName: make(map[string]*Form, len(forms)),
		byHash: make(map[uuid.UUID]*Form, len(forms)),
	}
	for _, f := range forms {
		h := Hash(f.Signature())
		if _, dup := r.byName[f.Name()]; dup {
			return nil, fmt.Errorf("form %s registered twice", f.Name())
		}
		if g, dup := r.byHash[h]; dup {
			return nil, fmt.Errorf("forms %s and %s share signature %q", g.Name(), f.Name(), f.Signature())
		}
		r.byName[f.Name()], r.byHash[h] = f, f
		r.names = append(r.names, f.Name())
		tracer().Debugf("registered form %s as %s", f.Name(), h)
	}
	sort.Strings(r.names)
	return
}

// Names lists the registered forms in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

func (r *Registry) Len() int { return len(r.names) }

func (r *Registry) Lookup(name string) (*Form, error) {
	if f, ok := r.byName[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("form %q: %w", name, ufc.ErrNotRegistered)
}

func (r *Registry) LookupHash(h uuid.UUID) (*Form, error) {
	if f, ok := r.byHash[h]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("form %s: %w", h, ufc.ErrNotRegistered)
}

func (r *Registry) LookupSignature(signature string) (*Form, error) {
	return r.LookupHash(Hash(signature))
}

// CreateIntegral creates the integral of a kind for a subdomain id of any
// form, the default integral when id is negative.
func CreateIntegral(f ufc.Form, kind ufc.IntegralType, id int) (it ufc.Integral, err error) {
	if id < 0 {
		var ok bool
		switch kind {
		case ufc.CellIntegralType:
			it, ok = asIntegral(f.CreateDefaultCellIntegral())
		case ufc.ExteriorFacetIntegralType:
			it, ok = asIntegral(f.CreateDefaultExteriorFacetIntegral())
		case ufc.InteriorFacetIntegralType:
			it, ok = asIntegral(f.CreateDefaultInteriorFacetIntegral())
		case ufc.VertexIntegralType:
			it, ok = asIntegral(f.CreateDefaultVertexIntegral())
		case ufc.CustomIntegralType:
			it, ok = asIntegral(f.CreateDefaultCustomIntegral())
		}
		if !ok {
			err = fmt.Errorf("default %s integral: %w", kind, ufc.ErrNotRegistered)
		}
		return
	}
	switch kind {
	case ufc.CellIntegralType:
		return asIntegralErr(f.CreateCellIntegral(id))
	case ufc.ExteriorFacetIntegralType:
		return asIntegralErr(f.CreateExteriorFacetIntegral(id))
	case ufc.InteriorFacetIntegralType:
		return asIntegralErr(f.CreateInteriorFacetIntegral(id))
	case ufc.VertexIntegralType:
		return asIntegralErr(f.CreateVertexIntegral(id))
	case ufc.CustomIntegralType:
		return asIntegralErr(f.CreateCustomIntegral(id))
	}
	return nil, fmt.Errorf("integral type %s: %w", kind, ufc.ErrUnsupported)
}

func asIntegral[T ufc.Integral](it T, ok bool) (ufc.Integral, bool) {
	if !ok {
		return nil, false
	}
	return it, true
}

func asIntegralErr[T ufc.Integral](it T, err error) (ufc.Integral, error) {
	if err != nil {
		return nil, err
	}
	return it, nil
}

// MaxSubdomainID returns the subdomain id bound of a kind.
func MaxSubdomainID(f ufc.Form, kind ufc.IntegralType) int {
	switch kind {
	case ufc.CellIntegralType:
		return f.MaxCellSubdomainID()
	case ufc.ExteriorFacetIntegralType:
		return f.MaxExteriorFacetSubdomainID()
	case ufc.InteriorFacetIntegralType:
		return f.MaxInteriorFacetSubdomainID()
	case ufc.VertexIntegralType:
		return f.MaxVertexSubdomainID()
	case ufc.CustomIntegralType:
		return f.MaxCustomSubdomainID()
	}
	return 0
}

// HasIntegrals reports whether a form has integrals of a kind.
func HasIntegrals(f ufc.Form, kind ufc.IntegralType) bool {
	switch kind {
	case ufc.CellIntegralType:
		return f.HasCellIntegrals()
	case ufc.ExteriorFacetIntegralType:
		return f.HasExteriorFacetIntegrals()
	case ufc.InteriorFacetIntegralType:
		return f.HasInteriorFacetIntegrals()
	case ufc.VertexIntegralType:
		return f.HasVertexIntegrals()
	case ufc.CustomIntegralType:
		return f.HasCustomIntegrals()
	}
	return false
}

package elements

import (
	"github.com/molel-gt/ffcx/reference"
	"github.com/molel-gt/ffcx/ufc"
)

// Layout attaches the dofs of an element to the entities of its reference
// cell. EntityDofs[d][e] lists the element dofs on entity e of dimension d.
// GlobalDofs are attached to no mesh entity. Points holds the reference
// point of every dof, nil when dofs have no associated point.
type Layout struct {
	Shape      ufc.Shape
	EntityDofs [][][]int
	GlobalDofs []int
	Points     [][]float64
}

// LayoutProvider is implemented by elements that are not composites.
type LayoutProvider interface {
	Layout() Layout
}

func newLayout(shape ufc.Shape) (l Layout) {
	var (
		tdim = shape.TopologicalDimension()
	)
	l = Layout{
		Shape:      shape,
		EntityDofs: make([][][]int, tdim+1),
	}
	for d := 0; d <= tdim; d++ {
		l.EntityDofs[d] = make([][]int, reference.NumEntities(shape, d))
	}
	return
}

// NumEntityDofs returns the number of dofs on each entity of dimension d.
func (l Layout) NumEntityDofs(d int) int {
	ufc.CheckIndex("entity dimension", d, len(l.EntityDofs))
	if len(l.EntityDofs[d]) == 0 {
		return 0
	}
	return len(l.EntityDofs[d][0])
}

func (l Layout) NumDofs() (n int) {
	for _, ents := range l.EntityDofs {
		for _, dofs := range ents {
			n += len(dofs)
		}
	}
	return n + len(l.GlobalDofs)
}

// ClosureDofs lists the dofs on entity e of dimension d and on all of its
// sub entities, ordered by dimension then entity.
func (l Layout) ClosureDofs(d, e int) (dofs []int) {
	for d2 := 0; d2 <= d; d2++ {
		for _, e2 := range reference.SubEntities(l.Shape, d, e, d2) {
			dofs = append(dofs, l.EntityDofs[d2][e2]...)
		}
	}
	return
}

// Clone returns a deep copy.
func (l Layout) Clone() (c Layout) {
	c = Layout{
		Shape:      l.Shape,
		EntityDofs: make([][][]int, len(l.EntityDofs)),
		GlobalDofs: append([]int(nil), l.GlobalDofs...),
	}
	for d, ents := range l.EntityDofs {
		c.EntityDofs[d] = make([][]int, len(ents))
		for e, dofs := range ents {
			c.EntityDofs[d][e] = append([]int(nil), dofs...)
		}
	}
	if l.Points != nil {
		c.Points = make([][]float64, len(l.Points))
		for i, p := range l.Points {
			c.Points[i] = append([]float64(nil), p...)
		}
	}
	return
}

package types

import (
	"fmt"
	"math"
	"sort"
)

/*
EdgeKey is an always positive number that stores an edge's vertices as indices in a way that can be compared
An edge between vertices [4] and [0] will always be stored as [0,4], in the ascending order of the index values
*/
type EdgeKey uint64

func NewEdgeKey(verts [2]int) (packed EdgeKey) {
	// This packs two index coordinates into two 32 bit unsigned integers to act as a hash and an indirect access method
	var (
		limit = math.MaxUint32
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	var i1, i2 int
	if verts[0] <= verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeKey(uint64(i1) + uint64(i2)<<32)
	return
}

func (ek EdgeKey) GetVertices() (verts [2]int) {
	verts[1] = int(ek >> 32)
	verts[0] = int(ek & math.MaxUint32)
	return
}

/*
EntityKey identifies a mesh entity of any dimension by its sorted global
vertices. Unused slots hold -1, so a triangle face and a quadrilateral face
sharing three vertices never collide.
*/
type EntityKey [4]int

func NewEntityKey(verts []int) (key EntityKey) {
	if len(verts) == 0 || len(verts) > 4 {
		panic(fmt.Errorf("entity keys hold 1 to 4 vertices, have %d", len(verts)))
	}
	sorted := make([]int, len(verts))
	copy(sorted, verts)
	sort.Ints(sorted)
	for i := range key {
		key[i] = -1
	}
	copy(key[:], sorted)
	return
}

func (key EntityKey) NumVertices() (n int) {
	for _, v := range key {
		if v >= 0 {
			n++
		}
	}
	return
}

func (key EntityKey) Vertices() []int {
	return append([]int(nil), key[:key.NumVertices()]...)
}

func (key EntityKey) String() string {
	return fmt.Sprintf("%v", key.Vertices())
}

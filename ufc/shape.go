package ufc

import "fmt"

// Shape is the closed set of reference cell shapes.
type Shape uint8

const (
	Interval Shape = iota
	Triangle
	Quadrilateral
	Tetrahedron
	Hexahedron
)

var (
	shapeNames = map[Shape]string{
		Interval:      "interval",
		Triangle:      "triangle",
		Quadrilateral: "quadrilateral",
		Tetrahedron:   "tetrahedron",
		Hexahedron:    "hexahedron",
	}
	shapeDims = map[Shape]int{
		Interval:      1,
		Triangle:      2,
		Quadrilateral: 2,
		Tetrahedron:   3,
		Hexahedron:    3,
	}
)

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// TopologicalDimension is implied by the shape.
func (s Shape) TopologicalDimension() (dim int) {
	var ok bool
	if dim, ok = shapeDims[s]; !ok {
		panic(fmt.Errorf("unknown cell shape %d", uint8(s)))
	}
	return
}

// IsSimplex reports whether the shape is an interval, triangle or tetrahedron.
func (s Shape) IsSimplex() bool {
	return s == Interval || s == Triangle || s == Tetrahedron
}

func ParseShape(name string) (s Shape, err error) {
	for s, n := range shapeNames {
		if n == name {
			return s, nil
		}
	}
	err = fmt.Errorf("unknown cell shape: %q", name)
	return
}

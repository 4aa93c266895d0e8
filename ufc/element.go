package ufc

// FiniteElement is the immutable descriptor of a finite element function
// space on a reference cell, together with the map to a physical cell.
//
// Evaluation points x are given in reference coordinates. Values and
// derivatives are returned in physical coordinates. All output buffers are
// caller allocated:
//
//	EvaluateBasis                values[c]                      c < ValueSize
//	EvaluateBasisAll             values[i*ValueSize+c]
//	EvaluateBasisDerivatives     values[c*gdim^n+k]             k lexicographic over axes
//	EvaluateBasisDerivativesAll  values[(i*ValueSize+c)*gdim^n+k]
//	InterpolateVertexValues      vertexValues[v*ValueSize+c]
//
// coordinateDofs holds the cell vertex coordinates, vertex major.
type FiniteElement interface {
	Signature() string
	CellShape() Shape
	TopologicalDimension() int
	GeometricDimension() int
	SpaceDimension() int

	ValueRank() int
	ValueDimension(i int) int
	ValueSize() int
	ReferenceValueRank() int
	ReferenceValueDimension(i int) int
	ReferenceValueSize() int

	EvaluateBasis(i int, values, x, coordinateDofs []float64, cellOrientation int)
	EvaluateBasisAll(values, x, coordinateDofs []float64, cellOrientation int)
	EvaluateBasisDerivatives(i, n int, values, x, coordinateDofs []float64, cellOrientation int)
	EvaluateBasisDerivativesAll(n int, values, x, coordinateDofs []float64, cellOrientation int)

	EvaluateDof(i int, f Function, coordinateDofs []float64, cellOrientation int, c *Cell) float64
	EvaluateDofs(values []float64, f Function, coordinateDofs []float64, cellOrientation int, c *Cell)
	InterpolateVertexValues(vertexValues, dofValues, coordinateDofs []float64, cellOrientation int, c *Cell)

	NumSubElements() int
	CreateSubElement(i int) FiniteElement
	Create() FiniteElement
}

// NumDerivatives is the number of mixed partials of order n in gdim dimensions.
func NumDerivatives(gdim, n int) (num int) {
	num = 1
	for k := 0; k < n; k++ {
		num *= gdim
	}
	return
}

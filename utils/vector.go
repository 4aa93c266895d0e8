package utils

import (
	"gonum.org/v1/gonum/mat"
)

type Vector struct {
	V *mat.VecDense
}

func NewVector(n int, dataO ...[]float64) Vector {
	if len(dataO) != 0 {
		return Vector{mat.NewVecDense(n, dataO[0])}
	}
	return Vector{mat.NewVecDense(n, make([]float64, n))}
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (v Vector) Dims() (r, c int)    { return v.V.Dims() }
func (v Vector) At(i, j int) float64 { return v.V.At(i, j) }
func (v Vector) T() mat.Matrix       { return v.V.T() }
func (v Vector) AtVec(i int) float64 { return v.V.AtVec(i) }
func (v Vector) Len() int            { return v.V.Len() }
func (v Vector) Data() []float64     { return v.V.RawVector().Data }

// Chainable methods, all change the receiver
func (v Vector) Set(val float64) Vector {
	data := v.Data()
	for i := range data {
		data[i] = val
	}
	return v
}

func (v Vector) Add(a Vector) Vector { v.V.AddVec(v.V, a.V); return v }

func (v Vector) AddScalar(a float64) Vector {
	return v.Apply(func(x float64) float64 { return x + a })
}

func (v Vector) Scale(a float64) Vector { v.V.ScaleVec(a, v.V); return v }

func (v Vector) Apply(f func(float64) float64) Vector {
	data := v.Data()
	for i, val := range data {
		data[i] = f(val)
	}
	return v
}

func (v Vector) POW(p int) Vector {
	return v.Apply(func(x float64) float64 { return POW(x, p) })
}

func (v Vector) Copy() Vector {
	data := make([]float64, v.Len())
	copy(data, v.Data())
	return NewVector(len(data), data)
}

func (v Vector) Dot(a Vector) float64 { return mat.Dot(v.V, a.V) }

func (v Vector) Norm() float64 { return mat.Norm(v.V, 2) }

func (v Vector) Min() (min float64) {
	return mat.Min(v.V)
}

func (v Vector) Max() (max float64) {
	return mat.Max(v.V)
}

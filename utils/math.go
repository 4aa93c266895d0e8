package utils

import (
	"math"
)

const NODETOL = 1.e-12

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

func POW(x float64, pp int) (y float64) {
	var (
		p       = pp
		flipped bool
	)
	if p < 0 {
		p = -pp
		flipped = true
	}
	switch p {
	case 0:
		y = 1
	case 1:
		y = x
	case 2:
		y = x * x
	case 3:
		y = x * x * x
	case 4:
		y = x * x
		y = y * y
	default:
		y = math.Pow(x, float64(p))
	}
	if flipped {
		y = 1. / y
	}
	return
}

// Factorial of small non-negative integers.
func Factorial(n int) (f float64) {
	f = 1
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return
}

// FallingFactorial returns n*(n-1)*...*(n-k+1), zero when k > n.
func FallingFactorial(n, k int) (f float64) {
	if k > n {
		return 0
	}
	f = 1
	for i := 0; i < k; i++ {
		f *= float64(n - i)
	}
	return
}

func Near(a, b float64, tolI ...float64) bool {
	tol := NODETOL
	if len(tolI) != 0 {
		tol = tolI[0]
	}
	return math.Abs(a-b) <= tol*(1+math.Max(math.Abs(a), math.Abs(b)))
}

package utils

import "gonum.org/v1/gonum/mat"

// NewSymTriDiagonal returns the symmetric tridiagonal matrix with main
// diagonal d0 and first off diagonal d1.
func NewSymTriDiagonal(d0, d1 []float64) (R *mat.SymDense) {
	var (
		n = len(d0)
	)
	if len(d1) != n-1 && !(n == 0 && len(d1) == 0) {
		panic("off diagonal length must be one less than the diagonal")
	}
	R = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		R.SetSym(i, i, d0[i])
		if i < n-1 {
			R.SetSym(i, i+1, d1[i])
		}
	}
	return
}

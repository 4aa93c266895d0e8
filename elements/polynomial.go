package elements

import (
	"github.com/molel-gt/ffcx/utils"
)

// Monomials x^alpha are indexed by their exponent vectors.
type monomials [][]int

// totalDegree lists every exponent with |alpha| <= degree.
func totalDegree(dim, degree int) (exps monomials) {
	var rec func(prefix []int, remaining int)
	rec = func(prefix []int, remaining int) {
		if len(prefix) == dim {
			exps = append(exps, append([]int(nil), prefix...))
			return
		}
		for a := 0; a <= remaining; a++ {
			rec(append(prefix, a), remaining-a)
		}
	}
	rec(nil, degree)
	return
}

// tensorDegree lists every exponent with max(alpha) <= degree.
func tensorDegree(dim, degree int) (exps monomials) {
	var rec func(prefix []int)
	rec = func(prefix []int) {
		if len(prefix) == dim {
			exps = append(exps, append([]int(nil), prefix...))
			return
		}
		for a := 0; a <= degree; a++ {
			rec(append(prefix, a))
		}
	}
	rec(nil)
	return
}

func (exps monomials) index(alpha ...int) int {
	for m, e := range exps {
		match := true
		for j := range e {
			if e[j] != alpha[j] {
				match = false
				break
			}
		}
		if match {
			return m
		}
	}
	panic("monomial not in span")
}

// derivative evaluates d^combination x^alpha at X for every monomial, where
// combination lists the differentiation axes.
func (exps monomials) derivative(X []float64, combination []int, out []float64) {
	var (
		dim   = len(X)
		order = make([]int, dim)
	)
	for _, axis := range combination {
		order[axis]++
	}
	for m, alpha := range exps {
		val := 1.
		for j := 0; j < dim && val != 0; j++ {
			val *= utils.FallingFactorial(alpha[j], order[j])
			if val != 0 {
				val *= utils.POW(X[j], alpha[j]-order[j])
			}
		}
		out[m] = val
	}
}

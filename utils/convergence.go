package utils

import (
	"fmt"
	"io"
	"math"
)

// ConvergenceStudy collects errors of a sequence of refined discretizations.
type ConvergenceStudy struct {
	Title  string
	Sizes  []float64 // mesh size h of each run
	Errors []float64
}

func NewConvergenceStudy(title string) *ConvergenceStudy {
	return &ConvergenceStudy{Title: title}
}

func (cs *ConvergenceStudy) Add(h, err float64) {
	cs.Sizes = append(cs.Sizes, h)
	cs.Errors = append(cs.Errors, err)
}

// Orders returns the observed order of convergence between consecutive runs,
// log(e0/e1)/log(h0/h1).
func (cs *ConvergenceStudy) Orders() (orders []float64) {
	for i := 1; i < len(cs.Sizes); i++ {
		orders = append(orders, math.Log(cs.Errors[i-1]/cs.Errors[i])/math.Log(cs.Sizes[i-1]/cs.Sizes[i]))
	}
	return
}

func (cs *ConvergenceStudy) Print(w io.Writer) {
	fmt.Fprintf(w, "Title = %s\n", cs.Title)
	orders := cs.Orders()
	for i := range cs.Sizes {
		if i == 0 {
			fmt.Fprintf(w, "%10.6f, %12.5e\n", cs.Sizes[i], cs.Errors[i])
			continue
		}
		fmt.Fprintf(w, "%10.6f, %12.5e, %5.2f\n", cs.Sizes[i], cs.Errors[i], orders[i-1])
	}
}

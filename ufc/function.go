package ufc

// Function is a tensor valued field evaluated at physical points. It is
// the argument of the nodal functionals of a finite element.
type Function interface {
	Evaluate(values, coordinates []float64, c *Cell)
}

// FunctionFunc adapts an ordinary function to the Function interface.
type FunctionFunc func(values, coordinates []float64, c *Cell)

func (f FunctionFunc) Evaluate(values, coordinates []float64, c *Cell) {
	f(values, coordinates, c)
}

// Constant returns a Function with the given constant component values.
func Constant(vals ...float64) Function {
	return FunctionFunc(func(values, _ []float64, _ *Cell) {
		copy(values, vals)
	})
}

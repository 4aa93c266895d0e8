package integrals

import "math"

// Mass is the kernel of the inner product of two arguments with matching
// value size.
func Mass(A []float64, p *Point) {
	var (
		v, u = p.Args[0], p.Args[1]
	)
	for i := 0; i < v.Dim; i++ {
		for j := 0; j < u.Dim; j++ {
			var s float64
			for c := 0; c < v.ValueSize; c++ {
				s += v.Value(i, c) * u.Value(j, c)
			}
			A[i*u.Dim+j] += p.Weight * s
		}
	}
}

// Stiffness is the kernel of grad(u) : grad(v), needs gradients.
func Stiffness(A []float64, p *Point) {
	stiffness(A, p, 1)
}

// WeightedStiffness scales the stiffness kernel by the value of coefficient
// j, a scalar conductivity.
func WeightedStiffness(j int) Kernel {
	return func(A []float64, p *Point) {
		stiffness(A, p, p.W[j].Value(0))
	}
}

func stiffness(A []float64, p *Point, kappa float64) {
	var (
		v, u = p.Args[0], p.Args[1]
		wt   = p.Weight * kappa
	)
	for i := 0; i < v.Dim; i++ {
		for j := 0; j < u.Dim; j++ {
			var s float64
			for c := 0; c < v.ValueSize; c++ {
				for k := 0; k < v.GDim; k++ {
					s += v.Grad(i, c, k) * u.Grad(j, c, k)
				}
			}
			A[i*u.Dim+j] += wt * s
		}
	}
}

// Source is the linear kernel f . v for coefficient j. It serves cell
// sources, boundary fluxes and point sources alike.
func Source(j int) Kernel {
	return func(A []float64, p *Point) {
		var (
			v = p.Args[0]
			f = p.W[j]
		)
		for i := 0; i < v.Dim; i++ {
			var s float64
			for c := 0; c < v.ValueSize; c++ {
				s += f.Value(c) * v.Value(i, c)
			}
			A[i] += p.Weight * s
		}
	}
}

// JumpPenalty is the interior penalty kernel alpha/h [u][v] with h taken
// from the mean volume of the two cells.
func JumpPenalty(alpha float64) Kernel {
	return func(A []float64, p *Point) {
		var (
			v, u = p.Args[0], p.Args[1]
			h    = math.Pow(p.CellVolume, 1/float64(v.GDim))
			wt   = p.Weight * alpha / h
		)
		for i := 0; i < v.Dim; i++ {
			for j := 0; j < u.Dim; j++ {
				var s float64
				for c := 0; c < v.ValueSize; c++ {
					s += p.Jump(0, i, c) * p.Jump(1, j, c)
				}
				A[i*u.Dim+j] += wt * s
			}
		}
	}
}

// MixedPoisson is the kernel of sigma.tau + u div(tau) + div(sigma) v on a
// mixed element whose first gdim components are the flux and whose last
// component is the scalar.
func MixedPoisson(A []float64, p *Point) {
	var (
		v, u = p.Args[0], p.Args[1]
		gdim = v.GDim
	)
	for i := 0; i < v.Dim; i++ {
		divTau := v.Div(i, 0)
		for j := 0; j < u.Dim; j++ {
			var s float64
			for c := 0; c < gdim; c++ {
				s += v.Value(i, c) * u.Value(j, c)
			}
			s += u.Value(j, gdim)*divTau + u.Div(j, 0)*v.Value(i, gdim)
			A[i*u.Dim+j] += p.Weight * s
		}
	}
}

// MixedSource is -f v on the scalar component of the mixed Poisson element.
func MixedSource(j int) Kernel {
	return func(A []float64, p *Point) {
		var (
			v = p.Args[0]
			f = p.W[j].Value(0)
		)
		for i := 0; i < v.Dim; i++ {
			A[i] -= p.Weight * f * v.Value(i, v.GDim)
		}
	}
}

// NeumannPoisson is the pure Neumann Poisson kernel with a global
// multiplier, grad(u).grad(v) + c v + u d on a (scalar, real) pair.
func NeumannPoisson(A []float64, p *Point) {
	var (
		v, u = p.Args[0], p.Args[1]
	)
	for i := 0; i < v.Dim; i++ {
		for j := 0; j < u.Dim; j++ {
			var s float64
			for k := 0; k < v.GDim; k++ {
				s += v.Grad(i, 0, k) * u.Grad(j, 0, k)
			}
			s += u.Value(j, 1)*v.Value(i, 0) + u.Value(j, 0)*v.Value(i, 1)
			A[i*u.Dim+j] += p.Weight * s
		}
	}
}

// CurlCurl is the kernel of curl(u).curl(v) + u.v for curl conforming
// vector elements.
func CurlCurl(A []float64, p *Point) {
	var (
		v, u = p.Args[0], p.Args[1]
		nc   = 1
	)
	if v.GDim == 3 {
		nc = 3
	}
	cv, cu := make([]float64, nc), make([]float64, nc)
	for i := 0; i < v.Dim; i++ {
		v.Curl(i, 0, cv)
		for j := 0; j < u.Dim; j++ {
			u.Curl(j, 0, cu)
			var s float64
			for c := 0; c < nc; c++ {
				s += cv[c] * cu[c]
			}
			for c := 0; c < v.ValueSize; c++ {
				s += v.Value(i, c) * u.Value(j, c)
			}
			A[i*u.Dim+j] += p.Weight * s
		}
	}
}

// Functional integrates coefficient j, a rank 0 kernel.
func Functional(j int) Kernel {
	return func(A []float64, p *Point) {
		A[0] += p.Weight * p.W[j].Value(0)
	}
}

package factor

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	varimaxMaxIterations = 100
	varimaxTolerance     = 1e-8
)

// Varimax applies orthogonal varimax rotation with Kaiser normalization.
// Rotation redistributes variance among the factors so each variable
// loads strongly on few of them; communalities are unchanged.
func Varimax(loadings *mat.Dense) *mat.Dense {
	p, k := loadings.Dims()

	rotated := mat.DenseCopyOf(loadings)
	if k < 2 {
		return rotated
	}

	// Kaiser normalization: scale rows to unit communality so variables
	// with small communalities do not dominate the criterion
	norms := make([]float64, p)
	for i := 0; i < p; i++ {
		var sum float64
		for f := 0; f < k; f++ {
			sum += rotated.At(i, f) * rotated.At(i, f)
		}
		norms[i] = math.Sqrt(sum)
		if norms[i] == 0 {
			norms[i] = 1
		}
		for f := 0; f < k; f++ {
			rotated.Set(i, f, rotated.At(i, f)/norms[i])
		}
	}

	// Pairwise Jacobi sweeps until no pair needs a meaningful rotation
	for iter := 0; iter < varimaxMaxIterations; iter++ {
		maxAngle := 0.0

		for a := 0; a < k-1; a++ {
			for b := a + 1; b < k; b++ {
				var A, B, C, D float64
				for i := 0; i < p; i++ {
					x := rotated.At(i, a)
					y := rotated.At(i, b)
					u := x*x - y*y
					v := 2 * x * y
					A += u
					B += v
					C += u*u - v*v
					D += 2 * u * v
				}

				num := D - 2*A*B/float64(p)
				den := C - (A*A-B*B)/float64(p)
				angle := 0.25 * math.Atan2(num, den)

				if math.Abs(angle) < varimaxTolerance {
					continue
				}
				if math.Abs(angle) > maxAngle {
					maxAngle = math.Abs(angle)
				}

				cos, sin := math.Cos(angle), math.Sin(angle)
				for i := 0; i < p; i++ {
					x := rotated.At(i, a)
					y := rotated.At(i, b)
					rotated.Set(i, a, cos*x+sin*y)
					rotated.Set(i, b, -sin*x+cos*y)
				}
			}
		}

		if maxAngle < varimaxTolerance {
			break
		}
	}

	// Undo normalization
	for i := 0; i < p; i++ {
		for f := 0; f < k; f++ {
			rotated.Set(i, f, rotated.At(i, f)*norms[i])
		}
	}

	// Column sign convention: dominant loading positive
	for f := 0; f < k; f++ {
		maxAbs, sign := 0.0, 1.0
		for i := 0; i < p; i++ {
			if a := math.Abs(rotated.At(i, f)); a > maxAbs {
				maxAbs = a
				if rotated.At(i, f) < 0 {
					sign = -1
				} else {
					sign = 1
				}
			}
		}
		if sign < 0 {
			for i := 0; i < p; i++ {
				rotated.Set(i, f, -rotated.At(i, f))
			}
		}
	}

	return rotated
}

package factor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Bartlett computes Bartlett's test of sphericity: the null hypothesis is
// that the correlation matrix is the identity, i.e. the variables are
// uncorrelated and factor analysis is pointless. n is the number of
// observations behind the correlation matrix.
func Bartlett(corr *mat.SymDense, n int) (BartlettResult, error) {
	p, _ := corr.Dims()
	if n <= p {
		return BartlettResult{}, fmt.Errorf("%w: %d observations for %d variables", ErrTooFewRows, n, p)
	}

	logDet, sign := mat.LogDet(corr)
	if sign <= 0 {
		return BartlettResult{}, fmt.Errorf("%w: non-positive determinant", ErrSingular)
	}

	chi2 := -(float64(n-1) - (2*float64(p)+5)/6) * logDet
	if chi2 < 0 {
		chi2 = 0
	}
	df := p * (p - 1) / 2

	dist := distuv.ChiSquared{K: float64(df)}

	return BartlettResult{
		ChiSquare:        chi2,
		DegreesOfFreedom: df,
		PValue:           dist.Survival(chi2),
	}, nil
}

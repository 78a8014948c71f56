package factor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// KMO computes the Kaiser-Meyer-Olkin measure of sampling adequacy from a
// correlation matrix: the ratio of squared correlations to squared
// correlations plus squared partial correlations. Values near 1 mean the
// variables share enough common variance to be worth factoring.
func KMO(corr *mat.SymDense) (KMOResult, error) {
	p, _ := corr.Dims()

	var inv mat.Dense
	if err := inv.Inverse(corr); err != nil {
		return KMOResult{}, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	// Partial correlation of i and j given all other variables, from the
	// inverse correlation matrix
	partial := func(i, j int) float64 {
		return -inv.At(i, j) / math.Sqrt(inv.At(i, i)*inv.At(j, j))
	}

	var sumR2, sumP2 float64
	perVarR2 := make([]float64, p)
	perVarP2 := make([]float64, p)

	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			if i == j {
				continue
			}
			r2 := corr.At(i, j) * corr.At(i, j)
			p2 := partial(i, j) * partial(i, j)

			sumR2 += r2
			sumP2 += p2
			perVarR2[i] += r2
			perVarP2[i] += p2
		}
	}

	denom := sumR2 + sumP2
	if denom == 0 {
		return KMOResult{}, fmt.Errorf("all off-diagonal correlations are zero")
	}

	result := KMOResult{
		Overall:     sumR2 / denom,
		PerVariable: make([]float64, p),
	}
	for i := 0; i < p; i++ {
		d := perVarR2[i] + perVarP2[i]
		if d == 0 {
			// Variable shares no variance with the rest; its MSA is 0
			result.PerVariable[i] = 0
			continue
		}
		result.PerVariable[i] = perVarR2[i] / d
	}

	return result, nil
}

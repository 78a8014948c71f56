package factor

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Eigen decomposes a correlation matrix and returns its eigenvalues in
// descending order with the matching eigenvectors as columns.
func Eigen(corr *mat.SymDense) ([]float64, *mat.Dense, error) {
	var es mat.EigenSym
	if ok := es.Factorize(corr, true); !ok {
		return nil, nil, fmt.Errorf("eigendecomposition failed")
	}

	p, _ := corr.Dims()
	values := es.Values(nil)
	var vectors mat.Dense
	es.VectorsTo(&vectors)

	// EigenSym reports ascending order; analyses want descending
	order := make([]int, p)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return values[order[a]] > values[order[b]]
	})

	sortedValues := make([]float64, p)
	sortedVectors := mat.NewDense(p, p, nil)
	for k, idx := range order {
		sortedValues[k] = values[idx]
		for i := 0; i < p; i++ {
			sortedVectors.Set(i, k, vectors.At(i, idx))
		}
	}

	return sortedValues, sortedVectors, nil
}

// RetainCount applies the retention rule: an explicit factor count when
// given, otherwise the Kaiser criterion against minEigenvalue. The count
// never exceeds the number of variables and is never below 1.
func RetainCount(eigenvalues []float64, numFactors int, minEigenvalue float64) int {
	p := len(eigenvalues)

	if numFactors > 0 {
		if numFactors > p {
			return p
		}
		return numFactors
	}

	count := 0
	for _, v := range eigenvalues {
		if v >= minEigenvalue {
			count++
		}
	}
	if count == 0 {
		count = 1
	}
	return count
}

// Loadings builds the principal component loading matrix for the first k
// factors: loading[i][k] = eigvec[i][k] * sqrt(eigval[k]). Each column is
// sign-fixed so its largest-magnitude loading is positive.
func Loadings(eigenvalues []float64, eigenvectors *mat.Dense, k int) *mat.Dense {
	p, _ := eigenvectors.Dims()
	loadings := mat.NewDense(p, k, nil)

	for f := 0; f < k; f++ {
		scale := math.Sqrt(math.Max(eigenvalues[f], 0))

		// Eigenvector sign is arbitrary; anchor on the dominant variable
		maxAbs, sign := 0.0, 1.0
		for i := 0; i < p; i++ {
			if a := math.Abs(eigenvectors.At(i, f)); a > maxAbs {
				maxAbs = a
				if eigenvectors.At(i, f) < 0 {
					sign = -1
				} else {
					sign = 1
				}
			}
		}

		for i := 0; i < p; i++ {
			loadings.Set(i, f, sign*eigenvectors.At(i, f)*scale)
		}
	}

	return loadings
}

// Communalities returns the row sums of squared loadings: the share of
// each variable's variance reproduced by the retained factors.
func Communalities(loadings *mat.Dense) []float64 {
	p, k := loadings.Dims()
	communalities := make([]float64, p)

	for i := 0; i < p; i++ {
		var sum float64
		for f := 0; f < k; f++ {
			sum += loadings.At(i, f) * loadings.At(i, f)
		}
		communalities[i] = sum
	}

	return communalities
}

// ExplainedVariance returns per-factor and cumulative variance
// proportions for the retained factors of a p-variable analysis.
func ExplainedVariance(eigenvalues []float64, k int) (perFactor, cumulative []float64) {
	p := float64(len(eigenvalues))
	perFactor = make([]float64, k)
	cumulative = make([]float64, k)

	var running float64
	for f := 0; f < k; f++ {
		perFactor[f] = eigenvalues[f] / p
		running += perFactor[f]
		cumulative[f] = running
	}

	return perFactor, cumulative
}

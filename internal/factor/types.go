package factor

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors callers branch on
var (
	// ErrTooFewRows means there are not enough observations for the
	// number of variables
	ErrTooFewRows = errors.New("not enough observations for factor analysis")
	// ErrConstantColumn means a variable has zero variance
	ErrConstantColumn = errors.New("variable has zero variance")
	// ErrSingular means the correlation matrix cannot be inverted
	ErrSingular = errors.New("correlation matrix is singular")
)

// ConstantColumnError reports which column of the observation matrix has
// zero variance. It unwraps to ErrConstantColumn.
type ConstantColumnError struct {
	Index int
}

func (e *ConstantColumnError) Error() string {
	return fmt.Sprintf("variable has zero variance: column index %d", e.Index)
}

func (e *ConstantColumnError) Unwrap() error { return ErrConstantColumn }

// RotationMethod selects the loading rotation applied after extraction
type RotationMethod string

const (
	// RotationNone keeps the unrotated principal component loadings
	RotationNone RotationMethod = "none"
	// RotationVarimax applies orthogonal varimax rotation
	RotationVarimax RotationMethod = "varimax"
)

// Options configures an analysis run
type Options struct {
	// NumFactors fixes the number of retained factors; 0 applies the
	// Kaiser criterion (eigenvalue >= MinEigenvalue)
	NumFactors int
	// MinEigenvalue is the Kaiser retention threshold, normally 1.0
	MinEigenvalue float64
	// Rotation selects the post-extraction rotation
	Rotation RotationMethod
}

// DefaultOptions returns the conventional settings: Kaiser retention at
// eigenvalue 1.0 with varimax rotation
func DefaultOptions() Options {
	return Options{
		NumFactors:    0,
		MinEigenvalue: 1.0,
		Rotation:      RotationVarimax,
	}
}

// KMOResult holds the Kaiser-Meyer-Olkin sampling adequacy measures
type KMOResult struct {
	// Overall is the KMO statistic for the whole variable set, in [0,1]
	Overall float64
	// PerVariable holds the MSA of each variable, same order as the input
	PerVariable []float64
}

// Adequacy returns Kaiser's verbal label for the overall KMO value
func (k KMOResult) Adequacy() string {
	switch {
	case k.Overall >= 0.9:
		return "marvelous"
	case k.Overall >= 0.8:
		return "meritorious"
	case k.Overall >= 0.7:
		return "middling"
	case k.Overall >= 0.6:
		return "mediocre"
	case k.Overall >= 0.5:
		return "miserable"
	default:
		return "unacceptable"
	}
}

// BartlettResult holds Bartlett's test of sphericity
type BartlettResult struct {
	ChiSquare        float64
	DegreesOfFreedom int
	PValue           float64
}

// Result is the complete output of one analysis run
type Result struct {
	// Variables are the column names, defining row order of the loadings
	Variables []string
	// Observations is the number of rows analyzed
	Observations int

	Correlation *mat.SymDense
	KMO         KMOResult
	Bartlett    BartlettResult

	// Eigenvalues of the correlation matrix, descending, one per variable
	Eigenvalues []float64
	// NumFactors is the number of retained factors
	NumFactors int
	// Loadings is variables x factors, rotated when rotation was requested
	Loadings *mat.Dense
	// Unrotated preserves the principal component loadings
	Unrotated *mat.Dense
	// Communalities per variable: row sums of squared loadings
	Communalities []float64
	// ExplainedVariance per retained factor, as a proportion of total
	ExplainedVariance []float64
	// CumulativeVariance is the running sum of ExplainedVariance
	CumulativeVariance []float64
	// Rotation records the rotation that produced Loadings
	Rotation RotationMethod
}

package factor

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"edacli/internal/shared/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// syntheticData builds a deterministic 40x5 observation matrix with two
// underlying factors: columns 0-1 follow the first, 2-3 the second, and
// column 4 mixes both.
func syntheticData() (*mat.Dense, []string) {
	const rows = 40
	names := []string{"a1", "a2", "b1", "b2", "mix"}

	data := mat.NewDense(rows, len(names), nil)
	for i := 0; i < rows; i++ {
		t := float64(i)
		f1 := math.Sin(0.7 * t)
		f2 := math.Cos(1.3 * t)

		data.Set(i, 0, f1+0.1*math.Sin(3.1*t))
		data.Set(i, 1, f1+0.1*math.Cos(2.3*t))
		data.Set(i, 2, f2+0.1*math.Sin(4.7*t))
		data.Set(i, 3, f2+0.1*math.Cos(5.1*t))
		data.Set(i, 4, 0.5*f1+0.5*f2+0.1*math.Sin(6.3*t))
	}

	return data, names
}

func TestCorrelationMatrixHandComputed(t *testing.T) {
	// a=[1,2,3], b=[1,3,2] have Pearson correlation exactly 0.5
	data := mat.NewDense(3, 2, []float64{
		1, 1,
		2, 3,
		3, 2,
	})

	corr, err := CorrelationMatrix(data)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, corr.At(0, 0), 1e-12)
	assert.InDelta(t, 1.0, corr.At(1, 1), 1e-12)
	assert.InDelta(t, 0.5, corr.At(0, 1), 1e-12)
	assert.InDelta(t, corr.At(0, 1), corr.At(1, 0), 1e-12)
}

func TestCorrelationMatrixInvariants(t *testing.T) {
	data, _ := syntheticData()
	corr, err := CorrelationMatrix(data)
	require.NoError(t, err)

	p, _ := corr.Dims()
	for i := 0; i < p; i++ {
		assert.InDelta(t, 1.0, corr.At(i, i), 1e-10, "unit diagonal")
		for j := 0; j < p; j++ {
			assert.LessOrEqual(t, math.Abs(corr.At(i, j)), 1.0+1e-10)
			assert.InDelta(t, corr.At(i, j), corr.At(j, i), 1e-12, "symmetry")
		}
	}
}

func TestCorrelationMatrixRejectsConstantColumn(t *testing.T) {
	data := mat.NewDense(5, 2, []float64{
		1, 3,
		2, 3,
		3, 3,
		4, 3,
		5, 3,
	})

	_, err := CorrelationMatrix(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstantColumn)

	var cce *ConstantColumnError
	require.ErrorAs(t, err, &cce)
	assert.Equal(t, 1, cce.Index)
}

func TestCorrelationMatrixRejectsTooFewRows(t *testing.T) {
	data := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})

	_, err := CorrelationMatrix(data)
	assert.ErrorIs(t, err, ErrTooFewRows)
}

func TestKMOTwoVariablesIsHalf(t *testing.T) {
	// For any 2-variable correlation matrix the partial correlation
	// equals the correlation, so KMO is exactly 0.5
	corr := mat.NewSymDense(2, []float64{1, 0.5, 0.5, 1})

	kmo, err := KMO(corr)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, kmo.Overall, 1e-12)
	require.Len(t, kmo.PerVariable, 2)
	assert.InDelta(t, 0.5, kmo.PerVariable[0], 1e-12)
}

func TestKMOBounds(t *testing.T) {
	data, _ := syntheticData()
	corr, err := CorrelationMatrix(data)
	require.NoError(t, err)

	kmo, err := KMO(corr)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, kmo.Overall, 0.0)
	assert.LessOrEqual(t, kmo.Overall, 1.0)
	for _, msa := range kmo.PerVariable {
		assert.GreaterOrEqual(t, msa, 0.0)
		assert.LessOrEqual(t, msa, 1.0)
	}
}

func TestKMOUncorrelatedVariableMSA(t *testing.T) {
	// The third variable is orthogonal to the other two: both its
	// correlations and partial correlations are zero, so its MSA has a
	// zero denominator and must come back as 0, never NaN
	corr := mat.NewSymDense(3, []float64{
		1, 0.8, 0,
		0.8, 1, 0,
		0, 0, 1,
	})

	kmo, err := KMO(corr)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, kmo.Overall, 1e-12)
	assert.InDelta(t, 0.5, kmo.PerVariable[0], 1e-12)
	assert.InDelta(t, 0.5, kmo.PerVariable[1], 1e-12)
	assert.Zero(t, kmo.PerVariable[2])
	for _, msa := range kmo.PerVariable {
		assert.False(t, math.IsNaN(msa))
	}
}

func TestKMOSingularMatrix(t *testing.T) {
	corr := mat.NewSymDense(2, []float64{1, 1, 1, 1})
	_, err := KMO(corr)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSingular)
}

func TestAdequacyLabels(t *testing.T) {
	tests := []struct {
		kmo   float64
		label string
	}{
		{0.95, "marvelous"},
		{0.85, "meritorious"},
		{0.75, "middling"},
		{0.65, "mediocre"},
		{0.55, "miserable"},
		{0.3, "unacceptable"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			k := KMOResult{Overall: tt.kmo}
			assert.Equal(t, tt.label, k.Adequacy())
		})
	}
}

func TestBartlettHandComputed(t *testing.T) {
	// p=2, r=0.5, n=10: chi2 = -(9 - 9/6) * ln(0.75)
	corr := mat.NewSymDense(2, []float64{1, 0.5, 0.5, 1})

	result, err := Bartlett(corr, 10)
	require.NoError(t, err)

	expected := -(9.0 - 1.5) * math.Log(0.75)
	assert.InDelta(t, expected, result.ChiSquare, 1e-9)
	assert.Equal(t, 1, result.DegreesOfFreedom)
	assert.Greater(t, result.PValue, 0.0)
	assert.Less(t, result.PValue, 1.0)
}

func TestBartlettStrongStructureRejectsSphericity(t *testing.T) {
	data, _ := syntheticData()
	corr, err := CorrelationMatrix(data)
	require.NoError(t, err)

	result, err := Bartlett(corr, 40)
	require.NoError(t, err)

	assert.Equal(t, 10, result.DegreesOfFreedom)
	assert.Less(t, result.PValue, 0.05, "correlated data should reject the identity hypothesis")
}

func TestEigenDescendingAndTracePreserving(t *testing.T) {
	data, _ := syntheticData()
	corr, err := CorrelationMatrix(data)
	require.NoError(t, err)

	values, vectors, err := Eigen(corr)
	require.NoError(t, err)

	p, _ := corr.Dims()
	require.Len(t, values, p)

	var sum float64
	for i, v := range values {
		sum += v
		assert.GreaterOrEqual(t, v, -1e-10, "correlation eigenvalues are non-negative")
		if i > 0 {
			assert.LessOrEqual(t, v, values[i-1], "descending order")
		}
	}
	assert.InDelta(t, float64(p), sum, 1e-9, "eigenvalues sum to the trace")

	rows, cols := vectors.Dims()
	assert.Equal(t, p, rows)
	assert.Equal(t, p, cols)
}

func TestRetainCount(t *testing.T) {
	values := []float64{2.5, 1.2, 0.8, 0.5}

	tests := []struct {
		name       string
		numFactors int
		minEigen   float64
		expected   int
	}{
		{"kaiser default", 0, 1.0, 2},
		{"explicit count", 3, 1.0, 3},
		{"explicit count capped at variables", 10, 1.0, 4},
		{"lower threshold retains more", 0, 0.6, 3},
		{"nothing passes keeps one", 0, 5.0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RetainCount(values, tt.numFactors, tt.minEigen))
		})
	}
}

func TestLoadingsFullExtractionReproducesVariance(t *testing.T) {
	data, _ := syntheticData()
	corr, err := CorrelationMatrix(data)
	require.NoError(t, err)

	values, vectors, err := Eigen(corr)
	require.NoError(t, err)

	p, _ := corr.Dims()
	loadings := Loadings(values, vectors, p)

	// Retaining every factor reproduces each variable completely
	for i, h := range Communalities(loadings) {
		assert.InDelta(t, 1.0, h, 1e-9, "communality of variable %d", i)
	}
}

func TestLoadingsBounded(t *testing.T) {
	data, _ := syntheticData()
	corr, err := CorrelationMatrix(data)
	require.NoError(t, err)

	values, vectors, err := Eigen(corr)
	require.NoError(t, err)

	loadings := Loadings(values, vectors, 2)
	p, k := loadings.Dims()
	assert.Equal(t, 2, k)

	for i := 0; i < p; i++ {
		for f := 0; f < k; f++ {
			assert.LessOrEqual(t, math.Abs(loadings.At(i, f)), 1.0+1e-9)
		}
	}
}

func TestVarimaxPreservesCommunalities(t *testing.T) {
	data, _ := syntheticData()
	corr, err := CorrelationMatrix(data)
	require.NoError(t, err)

	values, vectors, err := Eigen(corr)
	require.NoError(t, err)

	loadings := Loadings(values, vectors, 2)
	before := Communalities(loadings)

	rotated := Varimax(loadings)
	after := Communalities(rotated)

	require.Len(t, after, len(before))
	for i := range before {
		assert.InDelta(t, before[i], after[i], 1e-8, "communality %d invariant under rotation", i)
	}
}

func TestVarimaxSignConvention(t *testing.T) {
	data, _ := syntheticData()
	corr, err := CorrelationMatrix(data)
	require.NoError(t, err)

	values, vectors, err := Eigen(corr)
	require.NoError(t, err)

	rotated := Varimax(Loadings(values, vectors, 2))

	p, k := rotated.Dims()
	for f := 0; f < k; f++ {
		maxAbs, maxVal := 0.0, 0.0
		for i := 0; i < p; i++ {
			if a := math.Abs(rotated.At(i, f)); a > maxAbs {
				maxAbs = a
				maxVal = rotated.At(i, f)
			}
		}
		assert.Greater(t, maxVal, 0.0, "dominant loading of factor %d is positive", f)
	}
}

func TestVarimaxSingleFactorIsIdentity(t *testing.T) {
	loadings := mat.NewDense(3, 1, []float64{0.9, 0.8, 0.7})
	rotated := Varimax(loadings)
	assert.True(t, mat.EqualApprox(loadings, rotated, 1e-12))
}

func TestExplainedVariance(t *testing.T) {
	values := []float64{2.0, 1.5, 1.0, 0.5}

	perFactor, cumulative := ExplainedVariance(values, 2)
	require.Len(t, perFactor, 2)

	assert.InDelta(t, 0.5, perFactor[0], 1e-12)
	assert.InDelta(t, 0.375, perFactor[1], 1e-12)
	assert.InDelta(t, 0.5, cumulative[0], 1e-12)
	assert.InDelta(t, 0.875, cumulative[1], 1e-12)
}

func TestAnalyzerFullRun(t *testing.T) {
	data, names := syntheticData()

	logger, logs := testutil.NewTestLogger(t)
	analyzer := NewAnalyzer(DefaultOptions(), logger)
	result, err := analyzer.Analyze(context.Background(), data, names)
	require.NoError(t, err)

	testutil.AssertLogContains(t, logs, slog.LevelInfo, "sampling adequacy computed")
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "varimax rotation applied")
	testutil.AssertNoErrors(t, logs)

	assert.Equal(t, names, result.Variables)
	assert.Equal(t, 40, result.Observations)
	assert.Len(t, result.Eigenvalues, 5)
	assert.Equal(t, RotationVarimax, result.Rotation)

	// Two planted factors should be retained under the Kaiser criterion
	assert.Equal(t, 2, result.NumFactors)

	rows, cols := result.Loadings.Dims()
	assert.Equal(t, 5, rows)
	assert.Equal(t, result.NumFactors, cols)

	require.Len(t, result.CumulativeVariance, result.NumFactors)
	last := result.CumulativeVariance[result.NumFactors-1]
	assert.Greater(t, last, 0.5, "two factors should explain most of the variance")
	assert.LessOrEqual(t, last, 1.0+1e-9)
}

func TestAnalyzerNamesConstantColumn(t *testing.T) {
	data := mat.NewDense(10, 3, nil)
	for i := 0; i < 10; i++ {
		data.Set(i, 0, float64(i))
		data.Set(i, 1, 7) // constant
		data.Set(i, 2, math.Sin(float64(i)))
	}

	analyzer := NewAnalyzer(DefaultOptions(), nil)
	_, err := analyzer.Analyze(context.Background(), data, []string{"x", "seven", "z"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstantColumn)
	assert.Contains(t, err.Error(), "seven")
}

func TestAnalyzerRejectsNameMismatch(t *testing.T) {
	data, _ := syntheticData()
	analyzer := NewAnalyzer(DefaultOptions(), nil)
	_, err := analyzer.Analyze(context.Background(), data, []string{"only", "two"})
	assert.Error(t, err)
}

func TestAnalyzerNoRotation(t *testing.T) {
	data, names := syntheticData()

	analyzer := NewAnalyzer(Options{MinEigenvalue: 1.0, Rotation: RotationNone}, nil)
	result, err := analyzer.Analyze(context.Background(), data, names)
	require.NoError(t, err)

	assert.Equal(t, RotationNone, result.Rotation)
	assert.True(t, mat.EqualApprox(result.Loadings, result.Unrotated, 1e-12))
}

package factor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"
)

// Analyzer runs the full exploratory factor analysis pipeline
type Analyzer struct {
	opts   Options
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer with the given options
func NewAnalyzer(opts Options, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MinEigenvalue <= 0 {
		opts.MinEigenvalue = 1.0
	}
	if opts.Rotation == "" {
		opts.Rotation = RotationNone
	}

	return &Analyzer{opts: opts, logger: logger}
}

// Analyze runs correlation, adequacy tests, extraction and rotation over a
// rows-by-variables observation matrix. names must match the matrix
// columns and is used for error messages and the Result.
func (a *Analyzer) Analyze(ctx context.Context, data mat.Matrix, names []string) (*Result, error) {
	rows, cols := data.Dims()
	if len(names) != cols {
		return nil, fmt.Errorf("have %d column names for %d columns", len(names), cols)
	}

	a.logger.InfoContext(ctx, "starting factor analysis",
		slog.Int("observations", rows),
		slog.Int("variables", cols),
		slog.Int("requested_factors", a.opts.NumFactors),
		slog.String("rotation", string(a.opts.Rotation)),
	)

	corr, err := CorrelationMatrix(data)
	if err != nil {
		// Name the offending column instead of leaking its index
		var cce *ConstantColumnError
		if errors.As(err, &cce) && cce.Index < len(names) {
			return nil, fmt.Errorf("%w: %s", ErrConstantColumn, names[cce.Index])
		}
		return nil, fmt.Errorf("correlation matrix: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kmo, err := KMO(corr)
	if err != nil {
		return nil, fmt.Errorf("KMO: %w", err)
	}
	a.logger.InfoContext(ctx, "sampling adequacy computed",
		slog.Float64("kmo", kmo.Overall),
		slog.String("adequacy", kmo.Adequacy()),
	)

	bartlett, err := Bartlett(corr, rows)
	if err != nil {
		return nil, fmt.Errorf("Bartlett test: %w", err)
	}
	a.logger.InfoContext(ctx, "sphericity test computed",
		slog.Float64("chi_square", bartlett.ChiSquare),
		slog.Int("df", bartlett.DegreesOfFreedom),
		slog.Float64("p_value", bartlett.PValue),
	)

	eigenvalues, eigenvectors, err := Eigen(corr)
	if err != nil {
		return nil, fmt.Errorf("eigendecomposition: %w", err)
	}

	k := RetainCount(eigenvalues, a.opts.NumFactors, a.opts.MinEigenvalue)
	unrotated := Loadings(eigenvalues, eigenvectors, k)
	a.logger.InfoContext(ctx, "factors extracted",
		slog.Int("retained", k),
		slog.Float64("top_eigenvalue", eigenvalues[0]),
	)

	loadings := unrotated
	rotation := RotationNone
	if a.opts.Rotation == RotationVarimax && k > 1 {
		loadings = Varimax(unrotated)
		rotation = RotationVarimax
		a.logger.InfoContext(ctx, "varimax rotation applied", slog.Int("factors", k))
	}

	perFactor, cumulative := ExplainedVariance(eigenvalues, k)

	return &Result{
		Variables:          names,
		Observations:       rows,
		Correlation:        corr,
		KMO:                kmo,
		Bartlett:           bartlett,
		Eigenvalues:        eigenvalues,
		NumFactors:         k,
		Loadings:           loadings,
		Unrotated:          unrotated,
		Communalities:      Communalities(loadings),
		ExplainedVariance:  perFactor,
		CumulativeVariance: cumulative,
		Rotation:           rotation,
	}, nil
}

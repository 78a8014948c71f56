package factor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix computes the Pearson correlation matrix of a
// rows-by-variables observation matrix. Zero-variance columns are
// rejected because they make the matrix undefined.
func CorrelationMatrix(data mat.Matrix) (*mat.SymDense, error) {
	rows, cols := data.Dims()
	if cols < 2 {
		return nil, fmt.Errorf("need at least 2 variables, have %d", cols)
	}
	if rows <= cols {
		return nil, fmt.Errorf("%w: %d observations for %d variables", ErrTooFewRows, rows, cols)
	}

	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, data)
		if stat.Variance(col, nil) == 0 {
			return nil, &ConstantColumnError{Index: j}
		}
	}

	corr := mat.NewSymDense(cols, nil)
	stat.CorrelationMatrix(corr, data, nil)
	return corr, nil
}

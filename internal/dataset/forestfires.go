package dataset

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ExpectedColumns is the schema of the UCI forest-fires CSV, in file order
var ExpectedColumns = []string{
	"X", "Y", "month", "day",
	"FFMC", "DMC", "DC", "ISI",
	"temp", "RH", "wind", "rain", "area",
}

// NumericColumns are the columns usable for correlation and factor analysis
var NumericColumns = []string{
	"X", "Y", "FFMC", "DMC", "DC", "ISI",
	"temp", "RH", "wind", "rain", "area",
}

var monthIndex = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var dayIndex = map[string]int{
	"mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6, "sun": 7,
}

// ForestFires wraps the loaded dataframe
type ForestFires struct {
	df dataframe.DataFrame
}

// Load reads the forest-fires CSV from r and validates its schema
func Load(r io.Reader) (*ForestFires, error) {
	df := dataframe.ReadCSV(r)
	if df.Error() != nil {
		return nil, fmt.Errorf("read CSV: %w", df.Error())
	}

	if err := validateSchema(df); err != nil {
		return nil, err
	}

	return &ForestFires{df: df}, nil
}

// LoadFile reads the forest-fires CSV from a file path
func LoadFile(path string) (*ForestFires, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	d, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return d, nil
}

// validateSchema checks the expected 13 columns are present
func validateSchema(df dataframe.DataFrame) error {
	if df.Nrow() == 0 {
		return fmt.Errorf("dataset has no rows")
	}

	have := map[string]bool{}
	for _, name := range df.Names() {
		have[name] = true
	}

	var missing []string
	for _, name := range ExpectedColumns {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("dataset missing columns: %s", strings.Join(missing, ", "))
	}

	return nil
}

// Rows returns the number of observations
func (d *ForestFires) Rows() int {
	return d.df.Nrow()
}

// Frame returns the underlying dataframe
func (d *ForestFires) Frame() dataframe.DataFrame {
	return d.df
}

// WithOrdinalTime returns a frame with month_num and day_num columns
// appended (jan=1..dec=12, mon=1..sun=7) for analyses that want the
// categorical time columns as ordinals.
func (d *ForestFires) WithOrdinalTime() (dataframe.DataFrame, error) {
	months := d.df.Col("month").Records()
	days := d.df.Col("day").Records()

	monthNums := make([]int, len(months))
	for i, m := range months {
		n, ok := monthIndex[strings.ToLower(m)]
		if !ok {
			return dataframe.DataFrame{}, fmt.Errorf("row %d: unknown month %q", i+1, m)
		}
		monthNums[i] = n
	}

	dayNums := make([]int, len(days))
	for i, day := range days {
		n, ok := dayIndex[strings.ToLower(day)]
		if !ok {
			return dataframe.DataFrame{}, fmt.Errorf("row %d: unknown day %q", i+1, day)
		}
		dayNums[i] = n
	}

	df := d.df.Mutate(series.New(monthNums, series.Int, "month_num")).
		Mutate(series.New(dayNums, series.Int, "day_num"))
	if df.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("append ordinal columns: %w", df.Error())
	}

	return df, nil
}

// Matrix extracts the numeric analysis columns as a dense matrix with one
// row per observation. Columns named in exclude are left out.
func (d *ForestFires) Matrix(exclude ...string) (*mat.Dense, []string, error) {
	excluded := map[string]bool{}
	for _, name := range exclude {
		excluded[strings.ToLower(name)] = true
	}

	var cols []string
	for _, name := range NumericColumns {
		if !excluded[strings.ToLower(name)] {
			cols = append(cols, name)
		}
	}
	if len(cols) < 2 {
		return nil, nil, fmt.Errorf("need at least 2 numeric columns, have %d after exclusions", len(cols))
	}

	rows := d.df.Nrow()
	m := mat.NewDense(rows, len(cols), nil)

	for j, name := range cols {
		values := d.df.Col(name).Float()
		for i, v := range values {
			if math.IsNaN(v) {
				return nil, nil, fmt.Errorf("column %s row %d: non-numeric value", name, i+1)
			}
			m.Set(i, j, v)
		}
	}

	return m, cols, nil
}

// ColumnSummary holds descriptive statistics for one numeric column
type ColumnSummary struct {
	Name   string
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summary computes descriptive statistics for every numeric column
func (d *ForestFires) Summary() []ColumnSummary {
	summaries := make([]ColumnSummary, 0, len(NumericColumns))

	for _, name := range NumericColumns {
		values := d.df.Col(name).Float()

		min, max := math.Inf(1), math.Inf(-1)
		for _, v := range values {
			min = math.Min(min, v)
			max = math.Max(max, v)
		}

		summaries = append(summaries, ColumnSummary{
			Name:   name,
			Count:  len(values),
			Mean:   stat.Mean(values, nil),
			StdDev: stat.StdDev(values, nil),
			Min:    min,
			Max:    max,
		})
	}

	return summaries
}

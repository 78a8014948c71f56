package exporter

import (
	"fmt"
)

// formatFloat formats a float64 value for CSV output with 4 decimal
// places; correlations and loadings need more precision than 2
func formatFloat(f float64) string {
	return fmt.Sprintf("%.4f", f)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}

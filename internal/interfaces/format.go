package interfaces

import "github.com/bobmcallan/strata/internal/models"

// Formatter turns chart values into legend text.
type Formatter interface {
	// FormatValue renders a y value with prefix/suffix, rounded to whole
	// units when rounded is set.
	FormatValue(value float64, prefix, suffix string, rounded bool) string

	// FormatDate renders an x key in the long form used by the legend date label.
	FormatDate(x models.XValue) string
}

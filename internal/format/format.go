// Package format renders chart values and dates for legend readouts.
package format

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bobmcallan/strata/internal/interfaces"
	"github.com/bobmcallan/strata/internal/models"
)

// DefaultDateLayout is the long date form used by the legend date label.
const DefaultDateLayout = "January 2006"

// Formatter formats numbers with locale grouping and dates with a fixed layout.
type Formatter struct {
	printer    *message.Printer
	dateLayout string
}

var _ interfaces.Formatter = (*Formatter)(nil)

// NewFormatter creates a formatter for the given BCP 47 locale. Unknown or
// empty locales fall back to English.
func NewFormatter(locale, dateLayout string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.English
	}
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	return &Formatter{
		printer:    message.NewPrinter(tag),
		dateLayout: dateLayout,
	}
}

// FormatValue renders value as <sign><prefix><number><suffix>. Rounded values
// have no decimals; otherwise up to two decimals are kept.
func (f *Formatter) FormatValue(value float64, prefix, suffix string, rounded bool) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return prefix + "-" + suffix
	}

	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	var num string
	if rounded {
		value = math.Round(value)
		num = f.printer.Sprintf("%.0f", value)
	} else {
		num = f.printer.Sprintf("%.2f", value)
		num = trimZeros(num)
	}
	if num == "0" {
		sign = ""
	}
	return sign + prefix + num + suffix
}

// trimZeros drops a trailing all-zero fraction ("20.00" -> "20") but keeps
// meaningful decimals ("20.50").
func trimZeros(s string) string {
	i := strings.LastIndexAny(s, ".,")
	if i < 0 || len(s)-i != 3 {
		return s
	}
	if s[i+1:] == "00" {
		return s[:i]
	}
	return s
}

// FormatDate renders temporal keys with the long layout and ordinals verbatim.
func (f *Formatter) FormatDate(x models.XValue) string {
	if !x.Temporal {
		return x.Ordinal
	}
	return x.Time.Format(f.dateLayout)
}

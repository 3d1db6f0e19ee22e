package syncclient

import (
	"math"
	"time"
)

// Canonical value formatting for records crossing service boundaries. Every
// producer that pushes the same kind of value should format it the same way,
// otherwise consumers reading the aggregated table have to special-case each
// source.

// Money renders a monetary amount as a float rounded to two decimal places.
func Money(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Date renders a calendar date as ISO-8601 (YYYY-MM-DD).
func Date(t time.Time) string {
	return t.Format("2006-01-02")
}

// DateTime renders a timestamp as ISO-8601 in UTC.
func DateTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Choice maps an enumeration code to its display label. Unknown codes pass
// through unchanged so consumers still see something identifiable.
func Choice(code string, labels map[string]string) string {
	if label, ok := labels[code]; ok {
		return label
	}
	return code
}

package domain

import (
	"regexp"
	"time"
)

// forecastDatePattern matches YYYY-MM-DD tokens for years 2000 through 2029.
// Dates outside that window are treated as deliberate fixtures and left alone.
var forecastDatePattern = regexp.MustCompile(`20[0-2][0-9]-[0-9]{2}-[0-9]{2}`)

// RefreshForecastDates replaces every matching date token in the forecast
// document with the given day, formatted as YYYY-MM-DD. The document is
// treated as plain text; a fixed-width date-for-date substitution cannot
// break the surrounding JSON syntax.
func RefreshForecastDates(text string, today time.Time) string {
	return forecastDatePattern.ReplaceAllString(text, today.Format("2006-01-02"))
}

package starschema

import (
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// exactDecimal parses the literal text of a JSON number and renders it in its
// shortest exact decimal form, so "200.5", "200.50" and "2.005e2" share a form
// while literals which merely round to the same float64 do not.
func exactDecimal(text string) (string, bool) {
	d, _, err := apd.NewFromString(text)
	if err != nil || d.Form != apd.Finite {
		return "", false
	}
	d.Reduce(d)
	return d.Text('f'), true
}

// floatDecimal is exactDecimal for values which only exist as a float64, such
// as records built in code rather than read from a dataset. The shortest
// representation that round trips is taken as the literal.
func floatDecimal(f float64) string {
	s, ok := exactDecimal(strconv.FormatFloat(f, 'g', -1, 64))
	if !ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return s
}

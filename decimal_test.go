package starschema

import (
	"testing"
)

func TestExactDecimal(t *testing.T) {
	tests := []struct {
		in  string
		exp string
		ok  bool
	}{
		{"200.5", "200.5", true},
		{"200.50", "200.5", true},
		{"2.005e2", "200.5", true},
		{"200", "200", true},
		{"200.000", "200", true},
		{"218.93179", "218.93179", true},
		// the same float64 as 218.93179, but not the same decimal
		{"218.931790000000000001", "218.931790000000000001", true},
		{"0", "0", true},
		{"NaN", "", false},
		{"Infinity", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tst := range tests {
		got, ok := exactDecimal(tst.in)
		if got != tst.exp || ok != tst.ok {
			t.Errorf("exactDecimal(%q) = %q, %v, expected %q, %v", tst.in, got, ok, tst.exp, tst.ok)
		}
	}
}

func TestFloatDecimal(t *testing.T) {
	tests := []struct {
		in  float64
		exp string
	}{
		{200.5, "200.5"},
		{200, "200"},
		{218.93179, "218.93179"},
		{1e21, "1000000000000000000000"},
	}
	for _, tst := range tests {
		if got := floatDecimal(tst.in); got != tst.exp {
			t.Errorf("floatDecimal(%v) = %q, expected %q", tst.in, got, tst.exp)
		}
	}
}

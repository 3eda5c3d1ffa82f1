package starschema

import (
	"io"
	"strconv"
	"strings"
)

const (
	kibibyte = 1 << (10 * (iota + 1))
	mebibyte
	gibibyte
	tebibyte
)

// Bytes is a byte count which prints in a short human readable form such as
// 512B, 12.5K or 3M.
type Bytes uint64

// String uses the largest unit the value is at least one of.
func (b Bytes) String() string {
	if b == 0 {
		return "0"
	}
	value, unit := float64(b), "B"
	switch {
	case b >= tebibyte:
		value, unit = value/tebibyte, "T"
	case b >= gibibyte:
		value, unit = value/gibibyte, "G"
	case b >= mebibyte:
		value, unit = value/mebibyte, "M"
	case b >= kibibyte:
		value, unit = value/kibibyte, "K"
	}
	return strings.TrimSuffix(strconv.FormatFloat(value, 'f', 1, 64), ".0") + unit
}

// countingWriter tallies the bytes written through it.
type countingWriter struct {
	w io.Writer
	n Bytes
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += Bytes(n)
	return n, err
}

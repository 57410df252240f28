// Package output writes mapping results to disk.
//
// The text format has one entry per line, "<key>: <value>", where value is a
// bracketed list of floats for word mode, or a list of such lists for phrase
// mode:
//
//	cell: [0.418, 0.24968, -0.41242]
//	cell cycle: [[0.418, 0.24968, -0.41242], [1.0, 0.0, 0.5]]
//
// Keys may contain any text including ": ", because the value always starts
// at the last ": [" on the line.
package output

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"termvec/internal/domain"
)

const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatYAML}

// FormatFloat renders f in shortest round-trip form. Integral values keep a
// trailing ".0"; very small or very large magnitudes use exponent notation.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatVector renders v as "[a, b, c]".
func FormatVector(v domain.Vector) string {
	var b strings.Builder
	writeVector(&b, v)
	return b.String()
}

// FormatVectors renders vs as "[[a, b], [c, d]]".
func FormatVectors(vs []domain.Vector) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vs {
		if i > 0 {
			b.WriteString(", ")
		}
		writeVector(&b, v)
	}
	b.WriteByte(']')
	return b.String()
}

func writeVector(b *strings.Builder, v domain.Vector) {
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(FormatFloat(f))
	}
	b.WriteByte(']')
}

// FormatEntry renders one text-format line without the newline.
func FormatEntry(mode domain.Mode, e domain.Entry) string {
	if mode == domain.PhraseMode {
		return e.Key + ": " + FormatVectors(e.Vectors)
	}
	var v domain.Vector
	if len(e.Vectors) > 0 {
		v = e.Vectors[0]
	}
	return e.Key + ": " + FormatVector(v)
}

// ValidateFormat rejects unknown output formats.
func ValidateFormat(format string) error {
	for _, f := range Formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q: must be one of %s", format, strings.Join(Formats, ", "))
}

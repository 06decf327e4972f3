// Package decode extracts positional values from the comma-joined
// multi-value fields the intake forms pack into single columns, and
// coerces the loosely typed numeric fields they emit.
package decode

import (
	"strconv"
	"strings"
)

// At splits field on commas, trims each part and returns the i-th one.
// An out-of-range index returns the last part: buyers routinely
// under-fill multi-value fields relative to the declared quantity, and
// attributing the last entered value to the missing positions is the
// documented fallback. An empty or absent field returns "".
func At(field string, i int) string {
	if strings.TrimSpace(field) == "" {
		return ""
	}
	parts := strings.Split(field, ",")
	if i < 0 || i >= len(parts) {
		i = len(parts) - 1
	}
	return strings.TrimSpace(parts[i])
}

// Count returns the number of positions in field, 0 when empty/absent.
func Count(field string) int {
	if strings.TrimSpace(field) == "" {
		return 0
	}
	return len(strings.Split(field, ","))
}

// Int coerces s to a non-negative integer. Garbage, blanks and negative
// values all coerce to 0; no error is ever raised.
func Int(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0
		}
		n = int(f)
	}
	if n < 0 {
		return 0
	}
	return n
}

// Cents coerces a money string to integer cents. It accepts the formats
// the forms produced over time: "150", "150.00", "150,00", "1.234,56"
// and "R$ 150,00". Garbage coerces to 0.
func Cents(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		// Brazilian format: dot is a thousands separator.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int64(f*100 + 0.5)
}

// BaseName strips a trailing parenthetical from a combined
// "name (category)" value: "Ana (Jogador)" -> "Ana".
func BaseName(s string) string {
	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

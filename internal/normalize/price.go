package normalize

import (
	"strconv"
	"strings"
)

var currencySymbols = []string{"R$", "$", "€", "£"}

// ParsePrice converts a Brazilian-locale price string to a float. It accepts
// "R$ 57,62", "1.234,56" and plain "1234.56". The zero value with ok=false
// means the cell held no parseable number; callers keep the row for audit but
// exclude it from structured price queries.
func ParsePrice(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return 0, false
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		// The rightmost separator is the decimal mark.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Package normalize maps the wildly inconsistent headers, codes and price
// formats found in government spreadsheets onto a canonical schema.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s, strips diacritics and collapses runs of whitespace so
// that "Descrição ", "DESCRICAO" and "descricao" all compare equal.
func Fold(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// IsHeaderLike reports whether a data row looks like a repeated header: every
// non-empty cell is textual. Some workbooks carry the header twice, once as
// the sheet header and once as the first data row.
func IsHeaderLike(row []string) bool {
	nonEmpty := 0
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		nonEmpty++
		if isNumeric(cell) {
			return false
		}
	}
	return nonEmpty > 0
}

func isNumeric(s string) bool {
	seenDigit := false
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			seenDigit = true
		case r == '.' || r == ',' || r == '-' || r == '+' || r == ' ':
		default:
			return false
		}
	}
	return seenDigit
}

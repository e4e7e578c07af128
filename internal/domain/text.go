package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanText trims surrounding whitespace and applies Unicode NFC
// normalization, so a composed and a decomposed "é" compare equal in SQL.
func CleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold normalises a name for search and uniqueness checks:
// "  Nguyễn Nhật Ánh " -> "nguyen nhat anh".
func Fold(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, input)
	if err != nil {
		ascii = input
	}

	// đ has no decomposition
	ascii = strings.NewReplacer("đ", "d", "Đ", "D").Replace(ascii)

	return strings.Join(strings.Fields(strings.ToLower(ascii)), " ")
}

// Contains reports whether query occurs in s after folding both.
func Contains(s, query string) bool {
	return strings.Contains(Fold(s), Fold(query))
}
